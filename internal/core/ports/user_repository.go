package ports

import (
	"context"

	"github.com/nirmaanhq/chatbot-system/internal/core/domain"
)

// UserRepository defines persistence for chat identities, keyed by
// normalized phone.
type UserRepository interface {
	// FindByPhone returns domain.ErrUserNotFound when no identity exists.
	FindByPhone(ctx context.Context, phone string) (*domain.User, error)
	Create(ctx context.Context, user *domain.User) (*domain.User, error)
	Update(ctx context.Context, user *domain.User) error
}
