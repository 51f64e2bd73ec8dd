package model

import (
	"time"

	"github.com/jmoiron/sqlx/types"
)

// WrappedStory is a generated yearly summary. The public slug is assigned
// once at creation and gates unauthenticated access together with the
// explicit is_public flag.
type WrappedStory struct {
	ID          string         `db:"id" json:"id"`
	UserID      string         `db:"user_id" json:"user_id"`
	Year        int            `db:"year" json:"year"`
	Title       *string        `db:"title" json:"title"`
	StoryData   types.JSONText `db:"story_data" json:"story_data"`
	PublicSlug  string         `db:"public_slug" json:"public_slug"`
	IsPublic    bool           `db:"is_public" json:"is_public"`
	ViewCount   int            `db:"view_count" json:"view_count"`
	ShareCount  int            `db:"share_count" json:"share_count"`
	GeneratedAt time.Time      `db:"generated_at" json:"generated_at"`
	CreatedAt   time.Time      `db:"created_at" json:"created_at"`
	UpdatedAt   time.Time      `db:"updated_at" json:"-"`
}

// PublicURL returns the shareable URL for a published story, or "" when
// the story is not public.
func (s *WrappedStory) PublicURL(appURL string) string {
	if !s.IsPublic || s.PublicSlug == "" {
		return ""
	}
	return appURL + "/wrapped/" + s.PublicSlug
}
