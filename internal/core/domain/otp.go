package domain

import (
	"errors"
	"time"
)

const (
	// OTPLength is the number of digits in a verification code.
	OTPLength = 6
	// OTPMaxAttempts is the number of failed verifications before lockout.
	OTPMaxAttempts = 3
	// OTPTTL is how long a freshly issued code stays valid.
	OTPTTL = 10 * time.Minute
)

var ErrOTPNotFound = errors.New("verification code not found")
var ErrOTPExpired = errors.New("verification code expired")
var ErrTooManyAttempts = errors.New("too many verification attempts")

// OTPCode is a one-time verification code at rest. Only the bcrypt hash of
// the code is stored, never the plaintext. At most one live code exists per
// phone; issuing a new one replaces the prior record.
type OTPCode struct {
	Phone     string    `json:"phone" bson:"phone"`
	CodeHash  string    `json:"-" bson:"code_hash"`
	Attempts  int       `json:"attempts" bson:"attempts"`
	ExpiresAt time.Time `json:"expires_at" bson:"expires_at"`
	CreatedAt time.Time `json:"created_at" bson:"created_at"`
}

// Expired reports whether the code is no longer usable at the given instant.
func (c *OTPCode) Expired(now time.Time) bool {
	return !now.Before(c.ExpiresAt)
}
