package model

import (
	"time"
)

// Session is server-side authentication state referenced by an opaque
// cookie-held token. Login replaces the row wholesale (new token), which
// is what makes session fixation attacks moot.
type Session struct {
	ID        string    `db:"id" json:"id"`
	Token     string    `db:"token" json:"-"`
	UserID    string    `db:"user_id" json:"user_id"`
	IPAddress *string   `db:"ip_address" json:"-"`
	UserAgent *string   `db:"user_agent" json:"-"`
	ExpiresAt time.Time `db:"expires_at" json:"expires_at"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}

func (s *Session) IsExpired() bool {
	return time.Now().After(s.ExpiresAt)
}
