package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/nirmaanhq/chatbot-system/internal/core/domain"
	"github.com/nirmaanhq/chatbot-system/internal/core/ports"
)

// UserService resolves chat identities by normalized phone.
type UserService struct {
	repo ports.UserRepository
	log  zerolog.Logger
}

func NewUserService(repo ports.UserRepository, log zerolog.Logger) *UserService {
	return &UserService{repo: repo, log: log}
}

// GetOrCreate returns the identity for phone, creating it on first contact.
// New identities default to an auto-verified customer.
func (s *UserService) GetOrCreate(ctx context.Context, phone string) (*domain.User, error) {
	user, err := s.repo.FindByPhone(ctx, phone)
	if err == nil {
		return user, nil
	}
	if !errors.Is(err, domain.ErrUserNotFound) {
		return nil, fmt.Errorf("get or create user: %w", err)
	}

	now := time.Now().UTC()
	created, err := s.repo.Create(ctx, &domain.User{
		Phone:      phone,
		Role:       domain.RoleCustomer,
		Verified:   true,
		VerifiedAt: &now,
		CreatedAt:  now,
		UpdatedAt:  now,
	})
	if err != nil {
		return nil, fmt.Errorf("get or create user: %w", err)
	}
	s.log.Info().Str("phone", phone).Msg("user created on first contact")
	return created, nil
}

// GetByPhone returns the identity for phone or domain.ErrUserNotFound.
func (s *UserService) GetByPhone(ctx context.Context, phone string) (*domain.User, error) {
	return s.repo.FindByPhone(ctx, phone)
}

// ChangeRole promotes or demotes an identity. Promotion to employee clears
// the verification flag so the user must re-verify over chat; demotion back
// to customer restores auto-verification.
func (s *UserService) ChangeRole(ctx context.Context, phone string, role domain.Role) (*domain.User, error) {
	if !domain.ValidRole(role) {
		return nil, domain.ErrInvalidRole
	}

	user, err := s.repo.FindByPhone(ctx, phone)
	if err != nil {
		return nil, fmt.Errorf("change role: %w", err)
	}

	now := time.Now().UTC()
	user.Role = role
	user.UpdatedAt = now
	switch role {
	case domain.RoleEmployee:
		user.Verified = false
		user.VerifiedAt = nil
	case domain.RoleCustomer:
		user.Verified = true
		user.VerifiedAt = &now
	}

	if err := s.repo.Update(ctx, user); err != nil {
		return nil, fmt.Errorf("change role: %w", err)
	}
	s.log.Info().Str("phone", phone).Str("role", string(role)).Msg("user role changed")
	return user, nil
}
