package repository

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/wrappedlabs/wrapped/internal/model"
)

func TestAchievementUnlockOnce(t *testing.T) {
	conn := newTestDB(t)
	repo := NewAchievementRepository(conn)
	user := newTestUser(t, conn)

	require.NoError(t, repo.Create(&model.Achievement{
		UserID:    user.ID,
		BadgeType: "night_owl",
	}))

	err := repo.Create(&model.Achievement{
		UserID:    user.ID,
		BadgeType: "night_owl",
	})
	assert.ErrorIs(t, err, ErrDuplicateAchievement)

	// a different badge is a separate row
	require.NoError(t, repo.Create(&model.Achievement{
		UserID:    user.ID,
		BadgeType: "early_bird",
	}))

	list, err := repo.ListByUser(user.ID)
	require.NoError(t, err)
	assert.Len(t, list, 2)
}

func TestAchievementByUserAndType(t *testing.T) {
	conn := newTestDB(t)
	repo := NewAchievementRepository(conn)
	user := newTestUser(t, conn)

	year := 2025
	require.NoError(t, repo.Create(&model.Achievement{
		UserID:    user.ID,
		BadgeType: "first_wrapped",
		BadgeData: []byte(`{"stories":1}`),
		Year:      &year,
	}))

	found, err := repo.ByUserAndType(user.ID, "first_wrapped")
	require.NoError(t, err)
	assert.Equal(t, "First Wrapped", found.BadgeName())
	require.NotNil(t, found.Year)
	assert.Equal(t, 2025, *found.Year)

	_, err = repo.ByUserAndType(user.ID, "streak_master")
	assert.ErrorIs(t, err, ErrAchievementNotFound)
}
