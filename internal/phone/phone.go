// Package phone normalises user-entered US phone numbers.
package phone

import (
	"errors"
	"strings"
)

// ErrInvalidNumber is returned when the input does not contain exactly ten digits.
var ErrInvalidNumber = errors.New("phone number must have 10 digits")

// Digits strips every non-digit character.
func Digits(raw string) string {
	var b strings.Builder
	b.Grow(len(raw))
	for _, r := range raw {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// ValidateUS returns the ten national digits of raw or ErrInvalidNumber.
func ValidateUS(raw string) (string, error) {
	digits := Digits(raw)
	if len(digits) != 10 {
		return "", ErrInvalidNumber
	}
	return digits, nil
}

// ToE164 converts a number to E.164. Ten digits get the +1 country code.
// Any other digit string is taken to already carry its country code, and
// input that already starts with + is returned unchanged.
func ToE164(raw string) string {
	if strings.HasPrefix(raw, "+") {
		return raw
	}
	digits := Digits(raw)
	if len(digits) == 10 {
		return "+1" + digits
	}
	return "+" + digits
}

// FormatDisplay renders ten national digits (or a +1 number) as (555) 123-4567.
func FormatDisplay(number string) string {
	digits := Digits(number)
	if len(digits) == 11 && strings.HasPrefix(digits, "1") {
		digits = digits[1:]
	}
	if len(digits) != 10 {
		return number
	}
	return "(" + digits[:3] + ") " + digits[3:6] + "-" + digits[6:]
}

// FormatTyping groups a partially typed number as 555-123-4567.
func FormatTyping(raw string) string {
	digits := Digits(raw)
	if len(digits) > 10 {
		return raw
	}
	var groups []string
	for _, bounds := range [][2]int{{0, 3}, {3, 6}, {6, 10}} {
		if len(digits) <= bounds[0] {
			break
		}
		end := bounds[1]
		if end > len(digits) {
			end = len(digits)
		}
		groups = append(groups, digits[bounds[0]:end])
	}
	return strings.Join(groups, "-")
}

// Mask hides all but the last four digits, for logs.
func Mask(number string) string {
	if len(number) <= 4 {
		return number
	}
	prefix := ""
	rest := number
	if strings.HasPrefix(number, "+1") && len(number) > 6 {
		prefix, rest = "+1", number[2:]
	}
	return prefix + strings.Repeat("*", len(rest)-4) + rest[len(rest)-4:]
}
