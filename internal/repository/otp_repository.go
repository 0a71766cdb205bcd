package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// ErrOTPNotFound is returned when no code is stored for a phone number.
var ErrOTPNotFound = errors.New("otp not found")

// OTPRepository stores verification codes in Redis with a TTL, so expiry
// needs no sweeper.
type OTPRepository struct {
	client *redis.Client
	ttl    time.Duration
}

// NewOTPRepository constructs an OTPRepository.
func NewOTPRepository(client *redis.Client, ttl time.Duration) *OTPRepository {
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	return &OTPRepository{client: client, ttl: ttl}
}

func otpKey(phone string) string {
	return "otp:" + phone
}

// Store saves the code for the phone number, replacing any previous one.
func (r *OTPRepository) Store(ctx context.Context, phone, code string) error {
	if err := r.client.Set(ctx, otpKey(phone), code, r.ttl).Err(); err != nil {
		return fmt.Errorf("store otp for %s: %w", phone, err)
	}
	return nil
}

// Get returns the currently stored code for the phone number.
func (r *OTPRepository) Get(ctx context.Context, phone string) (string, error) {
	code, err := r.client.Get(ctx, otpKey(phone)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return "", ErrOTPNotFound
		}
		return "", fmt.Errorf("get otp for %s: %w", phone, err)
	}
	return code, nil
}

// Delete removes the stored code once it has been used.
func (r *OTPRepository) Delete(ctx context.Context, phone string) error {
	if err := r.client.Del(ctx, otpKey(phone)).Err(); err != nil {
		return fmt.Errorf("delete otp for %s: %w", phone, err)
	}
	return nil
}
