package repository

import (
	"crypto/rand"
	"database/sql"
	"encoding/base64"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/wrappedlabs/wrapped/internal/model"
)

var (
	ErrStoryNotFound  = errors.New("wrapped story not found")
	ErrDuplicateStory = errors.New("wrapped story already exists for this year")
)

// slugBytes yields 12 base64url characters, the slug length the share
// links are built from.
const slugBytes = 9

type StoryRepository interface {
	Create(story *model.WrappedStory) error
	ByUserAndYear(userID string, year int) (*model.WrappedStory, error)
	BySlug(slug string) (*model.WrappedStory, error)
	ListByUser(userID string) ([]*model.WrappedStory, error)
	SetPublic(userID string, year int, public bool) (*model.WrappedStory, error)
	IncrementViews(slug string) error
	IncrementShares(slug string) error
}

type storyRepository struct {
	db *sqlx.DB
}

func NewStoryRepository(db *sqlx.DB) StoryRepository {
	return &storyRepository{db: db}
}

// Create inserts a story, assigning a random public slug when the caller
// left it empty. The slug is generated exactly once and never rotated.
func (r *storyRepository) Create(story *model.WrappedStory) error {
	if story.ID == "" {
		story.ID = uuid.New().String()
	}
	if story.PublicSlug == "" {
		slug, err := generateSlug()
		if err != nil {
			return err
		}
		story.PublicSlug = slug
	}
	now := time.Now().UTC()
	if story.GeneratedAt.IsZero() {
		story.GeneratedAt = now
	}
	if story.CreatedAt.IsZero() {
		story.CreatedAt = now
	}
	story.UpdatedAt = now

	query := `
		INSERT INTO wrapped_stories (id, user_id, year, title, story_data, public_slug,
			is_public, view_count, share_count, generated_at, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
	`
	_, err := r.db.Exec(query,
		story.ID,
		story.UserID,
		story.Year,
		story.Title,
		story.StoryData,
		story.PublicSlug,
		story.IsPublic,
		story.ViewCount,
		story.ShareCount,
		story.GeneratedAt,
		story.CreatedAt,
		story.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return ErrDuplicateStory
		}
		return err
	}

	return nil
}

func (r *storyRepository) ByUserAndYear(userID string, year int) (*model.WrappedStory, error) {
	story := &model.WrappedStory{}
	query := `SELECT * FROM wrapped_stories WHERE user_id = $1 AND year = $2`

	err := r.db.Get(story, query, userID, year)
	if err == sql.ErrNoRows {
		return nil, ErrStoryNotFound
	}

	return story, err
}

func (r *storyRepository) BySlug(slug string) (*model.WrappedStory, error) {
	story := &model.WrappedStory{}
	query := `SELECT * FROM wrapped_stories WHERE public_slug = $1`

	err := r.db.Get(story, query, slug)
	if err == sql.ErrNoRows {
		return nil, ErrStoryNotFound
	}

	return story, err
}

func (r *storyRepository) ListByUser(userID string) ([]*model.WrappedStory, error) {
	stories := []*model.WrappedStory{}
	query := `SELECT * FROM wrapped_stories WHERE user_id = $1 ORDER BY year DESC`

	err := r.db.Select(&stories, query, userID)
	return stories, err
}

func (r *storyRepository) SetPublic(userID string, year int, public bool) (*model.WrappedStory, error) {
	story := &model.WrappedStory{}
	query := `
		UPDATE wrapped_stories
		SET is_public = $1, updated_at = $2
		WHERE user_id = $3 AND year = $4
		RETURNING *
	`

	err := r.db.Get(story, query, public, time.Now().UTC(), userID, year)
	if err == sql.ErrNoRows {
		return nil, ErrStoryNotFound
	}

	return story, err
}

// IncrementViews bumps the view counter in a single UPDATE. The counter
// contract is "increment by one"; exactness under concurrent increments
// is whatever the store's atomicity provides.
func (r *storyRepository) IncrementViews(slug string) error {
	query := `UPDATE wrapped_stories SET view_count = view_count + 1 WHERE public_slug = $1`
	return r.increment(query, slug)
}

func (r *storyRepository) IncrementShares(slug string) error {
	query := `UPDATE wrapped_stories SET share_count = share_count + 1 WHERE public_slug = $1`
	return r.increment(query, slug)
}

func (r *storyRepository) increment(query, slug string) error {
	result, err := r.db.Exec(query, slug)
	if err != nil {
		return err
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return ErrStoryNotFound
	}

	return nil
}

func generateSlug() (string, error) {
	b := make([]byte, slugBytes)
	_, err := rand.Read(b)
	if err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}
