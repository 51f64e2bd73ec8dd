package model

import (
	"strings"
	"time"

	"github.com/jmoiron/sqlx/types"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// BadgeTypes maps each badge type to its display name. The set is fixed;
// a user holds at most one badge of each type.
var BadgeTypes = map[string]string{
	"streak_master":    "Streak Master",
	"night_owl":        "Night Owl",
	"early_bird":       "Early Bird",
	"code_machine":     "Code Machine",
	"music_enthusiast": "Music Enthusiast",
	"networking_pro":   "Networking Pro",
	"meeting_warrior":  "Meeting Warrior",
	"first_wrapped":    "First Wrapped",
	"social_butterfly": "Social Butterfly",
	"consistency_king": "Consistency King",
}

var badgeTitle = cases.Title(language.English)

// BadgeName returns the display name for a badge type, falling back to a
// title-cased form of the raw type for anything not in the table.
func BadgeName(badgeType string) string {
	if name, ok := BadgeTypes[badgeType]; ok {
		return name
	}
	return badgeTitle.String(strings.ReplaceAll(badgeType, "_", " "))
}

// Achievement is an immutable per-user badge.
type Achievement struct {
	ID         string         `db:"id" json:"id"`
	UserID     string         `db:"user_id" json:"user_id"`
	BadgeType  string         `db:"badge_type" json:"badge_type"`
	BadgeData  types.JSONText `db:"badge_data" json:"badge_data"`
	UnlockedAt time.Time      `db:"unlocked_at" json:"unlocked_at"`
	Year       *int           `db:"year" json:"year"`
}

func (a *Achievement) BadgeName() string {
	return BadgeName(a.BadgeType)
}
