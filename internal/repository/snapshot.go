package repository

import (
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/wrappedlabs/wrapped/internal/model"
)

var ErrSnapshotNotFound = errors.New("snapshot not found")

type SnapshotRepository interface {
	Create(snapshot *model.AnalyticsSnapshot) error
	ByID(id string) (*model.AnalyticsSnapshot, error)
	ListByUser(userID, snapshotType string) ([]*model.AnalyticsSnapshot, error)
	ListByIntegration(integrationID string) ([]*model.AnalyticsSnapshot, error)
}

type snapshotRepository struct {
	db *sqlx.DB
}

func NewSnapshotRepository(db *sqlx.DB) SnapshotRepository {
	return &snapshotRepository{db: db}
}

// Create inserts an immutable snapshot row. The checksum is derived from
// the payload bytes exactly once, here, if the caller did not set it.
func (r *snapshotRepository) Create(snapshot *model.AnalyticsSnapshot) error {
	if snapshot.ID == "" {
		snapshot.ID = uuid.New().String()
	}
	if snapshot.CreatedAt.IsZero() {
		snapshot.CreatedAt = time.Now().UTC()
	}
	if snapshot.Checksum == "" {
		snapshot.Checksum = model.ChecksumData(snapshot.Data)
	}

	query := `
		INSERT INTO analytics_snapshots (id, user_id, integration_id, snapshot_type, data,
			period_start, period_end, checksum, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`
	_, err := r.db.Exec(query,
		snapshot.ID,
		snapshot.UserID,
		snapshot.IntegrationID,
		snapshot.SnapshotType,
		snapshot.Data,
		snapshot.PeriodStart,
		snapshot.PeriodEnd,
		snapshot.Checksum,
		snapshot.CreatedAt,
	)
	return err
}

func (r *snapshotRepository) ByID(id string) (*model.AnalyticsSnapshot, error) {
	snapshot := &model.AnalyticsSnapshot{}
	query := `SELECT * FROM analytics_snapshots WHERE id = $1`

	err := r.db.Get(snapshot, query, id)
	if err == sql.ErrNoRows {
		return nil, ErrSnapshotNotFound
	}

	return snapshot, err
}

func (r *snapshotRepository) ListByUser(userID, snapshotType string) ([]*model.AnalyticsSnapshot, error) {
	snapshots := []*model.AnalyticsSnapshot{}
	query := `SELECT * FROM analytics_snapshots WHERE user_id = $1 AND snapshot_type = $2 ORDER BY period_start`

	err := r.db.Select(&snapshots, query, userID, snapshotType)
	return snapshots, err
}

func (r *snapshotRepository) ListByIntegration(integrationID string) ([]*model.AnalyticsSnapshot, error) {
	snapshots := []*model.AnalyticsSnapshot{}
	query := `SELECT * FROM analytics_snapshots WHERE integration_id = $1 ORDER BY period_start`

	err := r.db.Select(&snapshots, query, integrationID)
	return snapshots, err
}
