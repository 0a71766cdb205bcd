package service

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"

	"github.com/jucampus/registrar-api/internal/dto"
	"github.com/jucampus/registrar-api/internal/repository"
	appErrors "github.com/jucampus/registrar-api/pkg/errors"
)

type memoryOTPStore struct {
	codes    map[string]string
	storeErr error
}

func (m *memoryOTPStore) Store(ctx context.Context, phone, code string) error {
	if m.storeErr != nil {
		return m.storeErr
	}
	if m.codes == nil {
		m.codes = make(map[string]string)
	}
	m.codes[phone] = code
	return nil
}

func (m *memoryOTPStore) Get(ctx context.Context, phone string) (string, error) {
	code, ok := m.codes[phone]
	if !ok {
		return "", repository.ErrOTPNotFound
	}
	return code, nil
}

func (m *memoryOTPStore) Delete(ctx context.Context, phone string) error {
	delete(m.codes, phone)
	return nil
}

type recordingSender struct {
	messages []string
	to       []string
	err      error
}

func (r *recordingSender) Send(to, body string) error {
	if r.err != nil {
		return r.err
	}
	r.to = append(r.to, to)
	r.messages = append(r.messages, body)
	return nil
}

type phoneFlagUpdater struct {
	updates map[string]bson.M
}

func (p *phoneFlagUpdater) UpdateFields(ctx context.Context, studentID string, fields bson.M) error {
	if p.updates == nil {
		p.updates = make(map[string]bson.M)
	}
	p.updates[studentID] = fields
	return nil
}

func TestOTPSendStoresAndDelivers(t *testing.T) {
	store := &memoryOTPStore{}
	sender := &recordingSender{}
	svc := NewOTPService(store, sender, nil, 6, nil, nil, nil)

	err := svc.Send(context.Background(), dto.SendOTPRequest{Phone: "9876543210"})
	require.NoError(t, err)

	code, ok := store.codes["9876543210"]
	require.True(t, ok)
	assert.Len(t, code, 6)
	require.Len(t, sender.messages, 1)
	assert.Contains(t, sender.messages[0], code)
	assert.Equal(t, "9876543210", sender.to[0])
}

func TestOTPSendCountsTowardMetrics(t *testing.T) {
	metrics := NewMetricsService()
	svc := NewOTPService(&memoryOTPStore{}, &recordingSender{}, nil, 6, metrics, nil, nil)

	require.NoError(t, svc.Send(context.Background(), dto.SendOTPRequest{Phone: "9876543210"}))
	assert.Equal(t, uint64(1), metrics.Snapshot().OTPSentTotal)
}

func TestOTPSendDeliveryFailure(t *testing.T) {
	store := &memoryOTPStore{}
	sender := &recordingSender{err: errors.New("twilio down")}
	svc := NewOTPService(store, sender, nil, 6, nil, nil, nil)

	err := svc.Send(context.Background(), dto.SendOTPRequest{Phone: "9876543210"})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrSMSDeliveryFailed.Code, appErrors.FromError(err).Code)
}

func TestOTPResendReplacesCode(t *testing.T) {
	store := &memoryOTPStore{}
	sender := &recordingSender{}
	svc := NewOTPService(store, sender, nil, 6, nil, nil, nil)

	require.NoError(t, svc.Send(context.Background(), dto.SendOTPRequest{Phone: "9876543210"}))
	first := store.codes["9876543210"]
	require.NoError(t, svc.Send(context.Background(), dto.SendOTPRequest{Phone: "9876543210"}))
	second := store.codes["9876543210"]

	err := svc.Verify(context.Background(), dto.VerifyOTPRequest{Phone: "9876543210", Code: first}, "")
	if first != second {
		require.Error(t, err)
		assert.Equal(t, appErrors.ErrOTPMismatch.Code, appErrors.FromError(err).Code)
	}
}

func TestOTPVerifyConsumesCodeAndFlagsStudent(t *testing.T) {
	store := &memoryOTPStore{codes: map[string]string{"9876543210": "123456"}}
	updater := &phoneFlagUpdater{}
	svc := NewOTPService(store, &recordingSender{}, updater, 6, nil, nil, nil)

	err := svc.Verify(context.Background(), dto.VerifyOTPRequest{Phone: "9876543210", Code: "123456"}, "STU11111111")
	require.NoError(t, err)
	assert.Equal(t, bson.M{"phoneVerified": true}, updater.updates["STU11111111"])

	_, stillThere := store.codes["9876543210"]
	assert.False(t, stillThere)

	err = svc.Verify(context.Background(), dto.VerifyOTPRequest{Phone: "9876543210", Code: "123456"}, "")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrOTPExpired.Code, appErrors.FromError(err).Code)
}

func TestOTPVerifyMismatch(t *testing.T) {
	store := &memoryOTPStore{codes: map[string]string{"9876543210": "123456"}}
	svc := NewOTPService(store, &recordingSender{}, nil, 6, nil, nil, nil)

	err := svc.Verify(context.Background(), dto.VerifyOTPRequest{Phone: "9876543210", Code: "654321"}, "")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrOTPMismatch.Code, appErrors.FromError(err).Code)
}
