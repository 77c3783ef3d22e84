// Package phone normalizes and validates caller phone numbers.
package phone

import (
	"errors"
	"regexp"
	"strings"

	"github.com/nyaruka/phonenumbers"
)

var ErrInvalidNumber = errors.New("invalid phone number")

var e164Pattern = regexp.MustCompile(`^\+\d{10,15}$`)

// NormalizeE164 parses a raw phone number and returns its E.164 form.
// Numbers without a country code are interpreted as US.
func NormalizeE164(raw string) (string, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return "", ErrInvalidNumber
	}
	number, err := phonenumbers.Parse(trimmed, "US")
	if err != nil {
		return "", ErrInvalidNumber
	}
	if !phonenumbers.IsValidNumber(number) {
		return "", ErrInvalidNumber
	}
	return phonenumbers.Format(number, phonenumbers.E164), nil
}

// IsE164 reports whether s already matches the strict wire format.
func IsE164(s string) bool {
	return e164Pattern.MatchString(s)
}
