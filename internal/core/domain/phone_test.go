package domain

import "testing"

func TestNormalizePhone(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"9876543210", "+919876543210"},        // bare local number
		{"919876543210", "+919876543210"},      // country code, no plus
		{"+919876543210", "+919876543210"},     // already canonical
		{"+91 98765 43210", "+919876543210"},   // spaces
		{"091-98765-43210", "+0919876543210"}, // punctuation stripped, digits kept as-is
		{"98765 43210", "+919876543210"},
	}
	for _, tc := range cases {
		if got := NormalizePhone(tc.in); got != tc.want {
			t.Errorf("NormalizePhone(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestNormalizePhoneIdempotent(t *testing.T) {
	inputs := []string{"9876543210", "+919876543210", "1555123", ""}
	for _, in := range inputs {
		once := NormalizePhone(in)
		if twice := NormalizePhone(once); twice != once {
			t.Errorf("not idempotent for %q: %q then %q", in, once, twice)
		}
	}
}
