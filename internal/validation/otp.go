package validation

import (
	"errors"

	"github.com/wrappedlabs/wrapped/internal/model"
)

// ValidateOTP checks the shape of a submitted reset code: exactly six
// ASCII digits. Anything else is rejected before any database lookup.
func ValidateOTP(code string) error {
	if len(code) != model.OTPLength {
		return errors.New("code must be 6 digits")
	}
	for _, r := range code {
		if r < '0' || r > '9' {
			return errors.New("code must be 6 digits")
		}
	}
	return nil
}
