package domain

import "strings"

// defaultCountryCode is prepended to bare 10-digit subscriber numbers.
const defaultCountryCode = "91"

// NormalizePhone canonicalizes a raw sender identifier to "+<digits>".
//
// Rules, in order: strip everything that is not a digit; keep the result if it
// already carries the country code at the expected total length (12 digits);
// prepend the country code to a bare 10-digit subscriber number; render with a
// leading "+". Idempotent, and never fails — malformed input still yields a
// best-effort canonical string for downstream validation to reject.
func NormalizePhone(raw string) string {
	var b strings.Builder
	for _, r := range raw {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	digits := b.String()

	switch {
	case len(digits) == len(defaultCountryCode)+10 && strings.HasPrefix(digits, defaultCountryCode):
		// already fully qualified
	case len(digits) == 10:
		digits = defaultCountryCode + digits
	}
	return "+" + digits
}
