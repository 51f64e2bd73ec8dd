package repository

import (
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/wrappedlabs/wrapped/internal/model"
)

var (
	ErrAchievementNotFound  = errors.New("achievement not found")
	ErrDuplicateAchievement = errors.New("achievement already unlocked")
)

type AchievementRepository interface {
	Create(achievement *model.Achievement) error
	ByUserAndType(userID, badgeType string) (*model.Achievement, error)
	ListByUser(userID string) ([]*model.Achievement, error)
}

type achievementRepository struct {
	db *sqlx.DB
}

func NewAchievementRepository(db *sqlx.DB) AchievementRepository {
	return &achievementRepository{db: db}
}

func (r *achievementRepository) Create(achievement *model.Achievement) error {
	if achievement.ID == "" {
		achievement.ID = uuid.New().String()
	}
	if achievement.UnlockedAt.IsZero() {
		achievement.UnlockedAt = time.Now().UTC()
	}

	query := `
		INSERT INTO achievements (id, user_id, badge_type, badge_data, unlocked_at, year)
		VALUES ($1, $2, $3, $4, $5, $6)
	`
	_, err := r.db.Exec(query,
		achievement.ID,
		achievement.UserID,
		achievement.BadgeType,
		achievement.BadgeData,
		achievement.UnlockedAt,
		achievement.Year,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return ErrDuplicateAchievement
		}
		return err
	}

	return nil
}

func (r *achievementRepository) ByUserAndType(userID, badgeType string) (*model.Achievement, error) {
	achievement := &model.Achievement{}
	query := `SELECT * FROM achievements WHERE user_id = $1 AND badge_type = $2`

	err := r.db.Get(achievement, query, userID, badgeType)
	if err == sql.ErrNoRows {
		return nil, ErrAchievementNotFound
	}

	return achievement, err
}

func (r *achievementRepository) ListByUser(userID string) ([]*model.Achievement, error) {
	achievements := []*model.Achievement{}
	query := `SELECT * FROM achievements WHERE user_id = $1 ORDER BY unlocked_at DESC`

	err := r.db.Select(&achievements, query, userID)
	return achievements, err
}
