package repository

import (
	"errors"
	"regexp"
	"strings"
)

var ErrInvalidPhone = errors.New("invalid phone number")

// phonePattern is what the admin/import surface accepts after
// canonicalization.
var phonePattern = regexp.MustCompile(`^\+?91?\d{9,15}$`)

// CanonicalizePhone strips everything but digits (keeping a leading +) and
// prefixes the 91 country code when the remainder is too short to be a full
// number. It is idempotent: a string it produced comes back unchanged.
func CanonicalizePhone(raw string) string {
	var sb strings.Builder
	for i, r := range raw {
		if r >= '0' && r <= '9' {
			sb.WriteRune(r)
		} else if r == '+' && i == 0 {
			sb.WriteRune(r)
		}
	}
	s := sb.String()

	digits := strings.TrimPrefix(s, "+")
	if len(digits) < 10 && !strings.HasPrefix(digits, "91") {
		if strings.HasPrefix(s, "+") {
			return "+91" + digits
		}
		return "91" + digits
	}
	return s
}

// ValidatePhone canonicalizes and checks the result against the accepted
// pattern. Inbound SMS numbers skip this; they were already dialable.
func ValidatePhone(raw string) (string, error) {
	canonical := CanonicalizePhone(raw)
	if !phonePattern.MatchString(canonical) {
		return "", ErrInvalidPhone
	}
	return canonical, nil
}
