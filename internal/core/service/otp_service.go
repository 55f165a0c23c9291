package service

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"math/big"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"

	"github.com/nirmaanhq/chatbot-system/internal/core/domain"
	"github.com/nirmaanhq/chatbot-system/internal/core/ports"
	"github.com/nirmaanhq/chatbot-system/internal/core/replies"
)

var otpCodeSpace = big.NewInt(1000000)

// OTPService issues and verifies one-time codes for employee identity
// verification. Codes are stored bcrypt-hashed; the plaintext only ever
// travels through the outbound transport.
type OTPService struct {
	repo      ports.OTPRepository
	users     ports.UserRepository
	messenger ports.Messenger
	log       zerolog.Logger
}

func NewOTPService(repo ports.OTPRepository, users ports.UserRepository, messenger ports.Messenger, log zerolog.Logger) *OTPService {
	return &OTPService{repo: repo, users: users, messenger: messenger, log: log}
}

// Issue replaces any existing code for phone with a fresh uniform 6-digit
// code (leading zeros allowed), valid for domain.OTPTTL, and delivers it.
// When delivery fails the stored record is rolled back and false is returned.
func (s *OTPService) Issue(ctx context.Context, phone string) bool {
	if err := s.repo.Delete(ctx, phone); err != nil {
		s.log.Warn().Err(err).Str("phone", phone).Msg("failed to clear prior otp record")
	}

	code, err := generateCode()
	if err != nil {
		s.log.Error().Err(err).Msg("otp code generation failed")
		return false
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(code), bcrypt.DefaultCost)
	if err != nil {
		s.log.Error().Err(err).Msg("otp hashing failed")
		return false
	}

	now := time.Now().UTC()
	rec := &domain.OTPCode{
		Phone:     phone,
		CodeHash:  string(hash),
		Attempts:  0,
		ExpiresAt: now.Add(domain.OTPTTL),
		CreatedAt: now,
	}
	if err := s.repo.Put(ctx, rec); err != nil {
		s.log.Error().Err(err).Str("phone", phone).Msg("failed to store otp record")
		return false
	}

	if err := s.messenger.SendText(ctx, phone, replies.OTPMessage(code)); err != nil {
		s.log.Error().Err(err).Str("phone", phone).Msg("otp delivery failed, rolling back record")
		if delErr := s.repo.Delete(ctx, phone); delErr != nil {
			s.log.Warn().Err(delErr).Str("phone", phone).Msg("otp rollback failed")
		}
		return false
	}

	s.log.Info().Str("phone", phone).Time("expires_at", rec.ExpiresAt).Msg("otp issued")
	return true
}

// Verify checks candidate against the stored hash. The returned string is the
// user-facing reply; accepted is true only on a match, which also marks the
// identity verified and burns the record.
func (s *OTPService) Verify(ctx context.Context, phone, candidate string) (accepted bool, reply string) {
	rec, err := s.repo.Get(ctx, phone)
	if err != nil {
		if !errors.Is(err, domain.ErrOTPNotFound) {
			s.log.Warn().Err(err).Str("phone", phone).Msg("otp lookup failed")
		}
		return false, replies.OTPNotFound
	}

	now := time.Now().UTC()
	if rec.Expired(now) {
		s.deleteRecord(ctx, phone)
		return false, replies.OTPExpired
	}
	if rec.Attempts >= domain.OTPMaxAttempts {
		s.deleteRecord(ctx, phone)
		return false, replies.OTPTooMany
	}

	if bcrypt.CompareHashAndPassword([]byte(rec.CodeHash), []byte(candidate)) != nil {
		attempts, incErr := s.repo.IncrementAttempts(ctx, phone)
		if incErr != nil {
			s.log.Warn().Err(incErr).Str("phone", phone).Msg("failed to count otp attempt")
			attempts = rec.Attempts + 1
		}
		remaining := domain.OTPMaxAttempts - attempts
		if remaining < 0 {
			remaining = 0
		}
		s.log.Info().Str("phone", phone).Int("attempts", attempts).Msg("otp rejected")
		return false, replies.OTPWrongCode(remaining)
	}

	s.deleteRecord(ctx, phone)
	if err := s.markVerified(ctx, phone); err != nil {
		s.log.Error().Err(err).Str("phone", phone).Msg("failed to mark user verified")
	}
	s.log.Info().Str("phone", phone).Msg("otp accepted")
	return true, replies.OTPVerified
}

// HasActive reports whether a live, unexpired code exists for phone. Expired
// records are deleted as a side effect of the check.
func (s *OTPService) HasActive(ctx context.Context, phone string) bool {
	rec, err := s.repo.Get(ctx, phone)
	if err != nil {
		return false
	}
	if rec.Expired(time.Now().UTC()) {
		s.deleteRecord(ctx, phone)
		return false
	}
	return true
}

func (s *OTPService) deleteRecord(ctx context.Context, phone string) {
	if err := s.repo.Delete(ctx, phone); err != nil {
		s.log.Warn().Err(err).Str("phone", phone).Msg("failed to delete otp record")
	}
}

func (s *OTPService) markVerified(ctx context.Context, phone string) error {
	user, err := s.users.FindByPhone(ctx, phone)
	if err != nil {
		return fmt.Errorf("mark verified: %w", err)
	}
	now := time.Now().UTC()
	user.Verified = true
	user.VerifiedAt = &now
	user.UpdatedAt = now
	return s.users.Update(ctx, user)
}

// generateCode draws a uniform 6-digit code from crypto/rand.
func generateCode() (string, error) {
	n, err := rand.Int(rand.Reader, otpCodeSpace)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%06d", n.Int64()), nil
}
