package repository

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
)

// ErrOTPNotFound is returned when no passcode is pending for the subject,
// which also covers expiry since keys carry a TTL.
var ErrOTPNotFound = errors.New("otp not found or expired")

// OTPStore keeps one-time passcodes with automatic expiry.
type OTPStore interface {
	Put(ctx context.Context, subject, email, code string, ttl time.Duration) error
	Verify(ctx context.Context, subject, email, code string) (bool, error)
	Clear(ctx context.Context, subject, email string) error
}

type redisOTPStore struct {
	client *redis.Client
}

// NewOTPStore builds a Redis-backed OTP store.
func NewOTPStore(client *redis.Client) OTPStore {
	return &redisOTPStore{client: client}
}

func otpKey(subject, email string) string {
	return "otp:" + subject + ":" + email
}

func (s *redisOTPStore) Put(ctx context.Context, subject, email, code string, ttl time.Duration) error {
	return s.client.Set(ctx, otpKey(subject, email), code, ttl).Err()
}

// Verify compares the stored passcode. A match does not consume the code;
// callers Clear after a successful flow.
func (s *redisOTPStore) Verify(ctx context.Context, subject, email, code string) (bool, error) {
	stored, err := s.client.Get(ctx, otpKey(subject, email)).Result()
	if errors.Is(err, redis.Nil) {
		return false, ErrOTPNotFound
	}
	if err != nil {
		return false, err
	}
	return stored == code, nil
}

func (s *redisOTPStore) Clear(ctx context.Context, subject, email string) error {
	return s.client.Del(ctx, otpKey(subject, email)).Err()
}
