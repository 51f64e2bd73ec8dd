package repository

import (
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/wrappedlabs/wrapped/internal/model"
)

type ActivityRepository interface {
	Create(entry *model.ActivityLog) error
	CreateTx(tx *sqlx.Tx, entry *model.ActivityLog) error
	ListByUser(userID string, limit int) ([]*model.ActivityLog, error)
}

// activityRepository is append-only: entries are never updated or
// deleted, and the FK nulls user_id instead of cascading so the trail
// outlives its users.
type activityRepository struct {
	db *sqlx.DB
}

func NewActivityRepository(db *sqlx.DB) ActivityRepository {
	return &activityRepository{db: db}
}

func (r *activityRepository) Create(entry *model.ActivityLog) error {
	return insertActivity(r.db, entry)
}

func (r *activityRepository) CreateTx(tx *sqlx.Tx, entry *model.ActivityLog) error {
	return insertActivity(tx, entry)
}

func insertActivity(e sqlx.Ext, entry *model.ActivityLog) error {
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = time.Now().UTC()
	}

	query := `
		INSERT INTO activity_logs (user_id, action, subject_type, subject_id, properties, ip_address, user_agent, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`
	_, err := e.Exec(query,
		entry.UserID,
		entry.Action,
		entry.SubjectType,
		entry.SubjectID,
		entry.Properties,
		entry.IPAddress,
		entry.UserAgent,
		entry.CreatedAt,
	)
	return err
}

func (r *activityRepository) ListByUser(userID string, limit int) ([]*model.ActivityLog, error) {
	entries := []*model.ActivityLog{}
	query := `SELECT * FROM activity_logs WHERE user_id = $1 ORDER BY id DESC LIMIT $2`

	err := r.db.Select(&entries, query, userID, limit)
	return entries, err
}
