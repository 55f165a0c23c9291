package ports

import (
	"context"

	"github.com/nirmaanhq/chatbot-system/internal/core/domain"
)

// OTPRepository persists one-time verification codes, at most one per phone.
type OTPRepository interface {
	// Get returns domain.ErrOTPNotFound when no record exists.
	Get(ctx context.Context, phone string) (*domain.OTPCode, error)
	// Put upserts the record for its phone, replacing any prior code.
	Put(ctx context.Context, code *domain.OTPCode) error
	Delete(ctx context.Context, phone string) error
	// IncrementAttempts atomically bumps the attempt counter and returns the
	// new value.
	IncrementAttempts(ctx context.Context, phone string) (int, error)
}
