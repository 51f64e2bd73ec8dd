package model

import (
	"time"

	"github.com/jmoiron/sqlx/types"
)

// Activity log actions.
const (
	ActionUserRegistered     = "user.registered"
	ActionEmailVerified      = "user.email_verified"
	ActionUserLoggedIn       = "user.logged_in"
	ActionUserLoginFailed    = "user.login_failed"
	ActionUserLoggedOut      = "user.logged_out"
	ActionPasswordReset      = "user.password_reset"
	ActionIntegrationLinked  = "integration.linked"
	ActionIntegrationRemoved = "integration.removed"
	ActionStoryPublished     = "story.published"
	ActionStoryUnpublished   = "story.unpublished"
)

// ActivityLog is an append-only audit record. UserID is nullable so the
// trail survives user deletion.
type ActivityLog struct {
	ID          int64          `db:"id" json:"id"`
	UserID      *string        `db:"user_id" json:"user_id"`
	Action      string         `db:"action" json:"action"`
	SubjectType *string        `db:"subject_type" json:"subject_type"`
	SubjectID   *string        `db:"subject_id" json:"subject_id"`
	Properties  types.JSONText `db:"properties" json:"properties"`
	IPAddress   *string        `db:"ip_address" json:"ip_address"`
	UserAgent   *string        `db:"user_agent" json:"user_agent"`
	CreatedAt   time.Time      `db:"created_at" json:"created_at"`
}
