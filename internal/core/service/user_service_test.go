package service

import (
	"context"
	"errors"
	"testing"

	"github.com/rs/zerolog"

	"github.com/nirmaanhq/chatbot-system/internal/core/domain"
)

func TestUserServiceGetOrCreate(t *testing.T) {
	repo := newUserRepoStub()
	svc := NewUserService(repo, zerolog.Nop())
	ctx := context.Background()

	created, err := svc.GetOrCreate(ctx, testPhone)
	if err != nil {
		t.Fatalf("get or create: %v", err)
	}
	if created.Role != domain.RoleCustomer || !created.Verified || created.VerifiedAt == nil {
		t.Fatalf("first contact must yield an auto-verified customer: %+v", created)
	}

	again, err := svc.GetOrCreate(ctx, testPhone)
	if err != nil {
		t.Fatalf("second resolve: %v", err)
	}
	if again.ID != created.ID {
		t.Fatalf("second resolve created a new identity: %q vs %q", again.ID, created.ID)
	}
}

func TestUserServiceChangeRole(t *testing.T) {
	repo := newUserRepoStub()
	svc := NewUserService(repo, zerolog.Nop())
	ctx := context.Background()

	if _, err := svc.GetOrCreate(ctx, testPhone); err != nil {
		t.Fatalf("seed: %v", err)
	}

	// Promotion to employee revokes verification so the OTP gate re-engages.
	u, err := svc.ChangeRole(ctx, testPhone, domain.RoleEmployee)
	if err != nil {
		t.Fatalf("promote: %v", err)
	}
	if u.Role != domain.RoleEmployee || u.Verified || u.VerifiedAt != nil {
		t.Fatalf("promotion left verification intact: %+v", u)
	}

	// Demotion back to customer restores auto-verification.
	u, err = svc.ChangeRole(ctx, testPhone, domain.RoleCustomer)
	if err != nil {
		t.Fatalf("demote: %v", err)
	}
	if u.Role != domain.RoleCustomer || !u.Verified {
		t.Fatalf("demotion did not restore verification: %+v", u)
	}
}

func TestUserServiceChangeRoleRejectsUnknownRole(t *testing.T) {
	repo := newUserRepoStub()
	svc := NewUserService(repo, zerolog.Nop())

	if _, err := svc.ChangeRole(context.Background(), testPhone, domain.Role("superuser")); !errors.Is(err, domain.ErrInvalidRole) {
		t.Fatalf("expected ErrInvalidRole, got %v", err)
	}
}

func TestUserServiceChangeRoleUnknownUser(t *testing.T) {
	repo := newUserRepoStub()
	svc := NewUserService(repo, zerolog.Nop())

	if _, err := svc.ChangeRole(context.Background(), testPhone, domain.RoleEmployee); !errors.Is(err, domain.ErrUserNotFound) {
		t.Fatalf("expected ErrUserNotFound, got %v", err)
	}
}
