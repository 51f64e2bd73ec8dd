package validation

import (
	"errors"
	"strings"
)

// ValidateName validates the account display name
func ValidateName(name string) error {
	trimmed := strings.TrimSpace(name)

	if trimmed == "" {
		return errors.New("name is required")
	}

	if len(trimmed) > 255 {
		return errors.New("name is too long (max 255 characters)")
	}

	return nil
}
