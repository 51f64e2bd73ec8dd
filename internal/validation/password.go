package validation

import (
	"errors"
	"strings"
	"unicode"
)

// commonPasswords is a local stand-in for a breach corpus lookup: a
// password containing any of these fragments is rejected outright.
var commonPasswords = []string{
	"password", "123456", "qwerty", "admin", "letmein",
	"welcome", "monkey", "dragon", "master", "sunshine",
}

// ValidatePassword enforces the account password policy: minimum 8
// characters, mixed case, at least one digit and one symbol, and not a
// known-breached pattern.
func ValidatePassword(password string) error {
	if len(password) < 8 {
		return errors.New("password must be at least 8 characters")
	}

	// bcrypt silently truncates beyond 72 bytes; refuse instead
	if len(password) > 72 {
		return errors.New("password must not exceed 72 characters")
	}

	var hasUpper, hasLower, hasDigit, hasSymbol bool
	for _, r := range password {
		switch {
		case unicode.IsUpper(r):
			hasUpper = true
		case unicode.IsLower(r):
			hasLower = true
		case unicode.IsDigit(r):
			hasDigit = true
		case unicode.IsPunct(r) || unicode.IsSymbol(r):
			hasSymbol = true
		}
	}

	if !hasUpper || !hasLower {
		return errors.New("password must contain both upper and lower case letters")
	}
	if !hasDigit {
		return errors.New("password must contain at least one number")
	}
	if !hasSymbol {
		return errors.New("password must contain at least one symbol")
	}

	lower := strings.ToLower(password)
	for _, pattern := range commonPasswords {
		if strings.Contains(lower, pattern) {
			return errors.New("password has appeared in a data breach, please choose a different one")
		}
	}

	return nil
}
