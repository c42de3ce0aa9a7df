package forms

import (
	"regexp"
	"strconv"
	"strings"
)

var emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

var leadingInt = regexp.MustCompile(`^[+-]?\d+`)

// Clean trims surrounding whitespace. Clean(Clean(s)) == Clean(s).
func Clean(value string) string {
	return strings.TrimSpace(value)
}

// IsValidEmail is intentionally permissive: a local part, an @ and a dotted domain.
func IsValidEmail(email string) bool {
	return emailPattern.MatchString(email)
}

// ParseRating parses the leading integer of value and accepts 1 through 5.
func ParseRating(value string) (int, bool) {
	digits := leadingInt.FindString(strings.TrimSpace(value))
	if digits == "" {
		return 0, false
	}
	parsed, err := strconv.Atoi(digits)
	if err != nil || parsed < 1 || parsed > 5 {
		return 0, false
	}
	return parsed, true
}

// ParseBool matches checkbox style literals: true, on, 1, yes.
func ParseBool(value string) bool {
	switch strings.ToLower(Clean(value)) {
	case "true", "on", "1", "yes":
		return true
	}
	return false
}

// CollapseSpace trims value and folds internal whitespace runs into a single space.
func CollapseSpace(value string) string {
	return strings.Join(strings.Fields(value), " ")
}
