package model

import (
	"time"

	"github.com/jmoiron/sqlx/types"
)

// Integration providers. Fixed set; re-linking an already linked provider
// updates the existing row instead of creating a second one.
const (
	ProviderGitHub   = "github"
	ProviderSpotify  = "spotify"
	ProviderLinkedIn = "linkedin"
	ProviderGoogle   = "google"
)

var Providers = []string{
	ProviderGitHub,
	ProviderSpotify,
	ProviderLinkedIn,
	ProviderGoogle,
}

func ValidProvider(provider string) bool {
	for _, p := range Providers {
		if p == provider {
			return true
		}
	}
	return false
}

// Integration holds per-user, per-provider OAuth credentials. AccessToken
// and RefreshToken carry plaintext values in memory; the repository
// encrypts on write and decrypts on read. Both are excluded from every
// serialized representation.
type Integration struct {
	ID             string         `db:"id" json:"id"`
	UserID         string         `db:"user_id" json:"user_id"`
	Provider       string         `db:"provider" json:"provider"`
	ProviderUserID string         `db:"provider_user_id" json:"provider_user_id"`
	AccessToken    string         `db:"access_token" json:"-"`
	RefreshToken   *string        `db:"refresh_token" json:"-"`
	TokenExpiresAt *time.Time     `db:"token_expires_at" json:"token_expires_at"`
	Scopes         types.JSONText `db:"scopes" json:"scopes"`
	Metadata       types.JSONText `db:"metadata" json:"metadata"`
	LastSyncedAt   *time.Time     `db:"last_synced_at" json:"last_synced_at"`
	IsActive       bool           `db:"is_active" json:"is_active"`
	CreatedAt      time.Time      `db:"created_at" json:"created_at"`
	UpdatedAt      time.Time      `db:"updated_at" json:"updated_at"`
}

// IsTokenExpired reports whether the access token's expiry has passed.
// A missing expiry means the token never expires.
func (i *Integration) IsTokenExpired() bool {
	if i.TokenExpiresAt == nil {
		return false
	}
	return i.TokenExpiresAt.Before(time.Now())
}
