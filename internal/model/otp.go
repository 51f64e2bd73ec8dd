package model

import (
	"time"
)

// OTPLength is the fixed length of password reset codes. Codes are purely
// numeric; any other length or alphabet is rejected before lookup.
const OTPLength = 6

// PasswordResetOTP is a single-use numeric code authorizing a password
// reset. The email column is the table's primary key, so at most one live
// code can exist per address.
type PasswordResetOTP struct {
	Email     string    `db:"email"`
	Code      string    `db:"code"`
	ExpiresAt time.Time `db:"expires_at"`
	CreatedAt time.Time `db:"created_at"`
}

func (o *PasswordResetOTP) IsExpired() bool {
	return time.Now().After(o.ExpiresAt)
}
