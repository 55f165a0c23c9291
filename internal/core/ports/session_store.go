package ports

import (
	"context"

	"github.com/nirmaanhq/chatbot-system/internal/core/domain"
)

// SessionStore holds the single active conversation session per phone.
type SessionStore interface {
	// Get returns domain.ErrSessionNotFound when no session exists.
	Get(ctx context.Context, phone string) (*domain.Session, error)
	Save(ctx context.Context, session *domain.Session) error
	Clear(ctx context.Context, phone string) error
}
