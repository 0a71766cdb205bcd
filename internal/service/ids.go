package service

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"strings"
	"time"
)

func randomHex(n int) string {
	buf := make([]byte, (n+1)/2)
	if _, err := rand.Read(buf); err != nil {
		// crypto/rand only fails when the OS entropy source is broken;
		// fall back to a timestamp so registration still proceeds.
		return fmt.Sprintf("%x", time.Now().UnixNano())[:n]
	}
	return hex.EncodeToString(buf)[:n]
}

// NewStudentID returns an id like STU1A2B3C4D.
func NewStudentID() string {
	return "STU" + strings.ToUpper(randomHex(8))
}

// NewApplicationNumber returns a number like APP20240601A1B2C3.
func NewApplicationNumber(now time.Time) string {
	return "APP" + now.Format("20060102") + strings.ToUpper(randomHex(6))
}

// NewTempApplicationNumber is used when no real application number exists yet.
func NewTempApplicationNumber() string {
	return "TEMP_" + strings.ToUpper(randomHex(8))
}

// NewOTPCode returns a zero-padded numeric code of the given length.
func NewOTPCode(length int) string {
	if length < 4 || length > 8 {
		length = 6
	}
	const digits = "0123456789"
	buf := make([]byte, length)
	raw := make([]byte, length)
	if _, err := rand.Read(raw); err != nil {
		for i := range raw {
			raw[i] = byte(time.Now().UnixNano() >> (i * 8))
		}
	}
	for i := range buf {
		buf[i] = digits[int(raw[i])%len(digits)]
	}
	return string(buf)
}
