package model

import (
	"crypto/sha256"
	"encoding/hex"
	"time"

	"github.com/jmoiron/sqlx/types"
)

// Snapshot types produced by the sync jobs.
const (
	SnapshotDaily   = "daily"
	SnapshotWeekly  = "weekly"
	SnapshotMonthly = "monthly"
	SnapshotYearly  = "yearly"
)

// AnalyticsSnapshot is an immutable aggregated data blob for one
// integration over one period. The checksum is computed once at creation
// from the stored payload bytes; it detects accidental corruption and is
// never recomputed automatically on read.
type AnalyticsSnapshot struct {
	ID            string         `db:"id" json:"id"`
	UserID        string         `db:"user_id" json:"user_id"`
	IntegrationID string         `db:"integration_id" json:"integration_id"`
	SnapshotType  string         `db:"snapshot_type" json:"snapshot_type"`
	Data          types.JSONText `db:"data" json:"data"`
	PeriodStart   time.Time      `db:"period_start" json:"period_start"`
	PeriodEnd     time.Time      `db:"period_end" json:"period_end"`
	Checksum      string         `db:"checksum" json:"checksum"`
	CreatedAt     time.Time      `db:"created_at" json:"created_at"`
}

// Checksum computes the hex SHA-256 digest of a snapshot payload.
func ChecksumData(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}

// VerifyChecksum recomputes the digest over the stored payload. Callers
// invoke this on demand; reads do not verify automatically.
func (s *AnalyticsSnapshot) VerifyChecksum() bool {
	return ChecksumData(s.Data) == s.Checksum
}
