package repository

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/wrappedlabs/wrapped/internal/model"
)

func TestUserCreateAndFetch(t *testing.T) {
	conn := newTestDB(t)
	repo := NewUserRepository(conn)

	user := &model.User{
		Name:         "Ada",
		Email:        "ada@example.com",
		PasswordHash: "hash",
	}
	require.NoError(t, repo.Create(user))
	assert.NotEmpty(t, user.ID)
	assert.False(t, user.CreatedAt.IsZero())

	byID, err := repo.ByID(user.ID)
	require.NoError(t, err)
	assert.Equal(t, "ada@example.com", byID.Email)

	byEmail, err := repo.ByEmail("ada@example.com")
	require.NoError(t, err)
	assert.Equal(t, user.ID, byEmail.ID)

	_, err = repo.ByEmail("nobody@example.com")
	assert.ErrorIs(t, err, ErrUserNotFound)
}

func TestUserDuplicateEmail(t *testing.T) {
	conn := newTestDB(t)
	repo := NewUserRepository(conn)

	require.NoError(t, repo.Create(&model.User{Name: "Ada", Email: "ada@example.com", PasswordHash: "hash"}))

	err := repo.Create(&model.User{Name: "Other", Email: "ada@example.com", PasswordHash: "hash"})
	assert.ErrorIs(t, err, ErrDuplicateEmail)
}

func TestUserUpdatePassword(t *testing.T) {
	conn := newTestDB(t)
	repo := NewUserRepository(conn)
	user := newTestUser(t, conn)

	require.NoError(t, repo.UpdatePassword(user.ID, "newhash"))

	updated, err := repo.ByID(user.ID)
	require.NoError(t, err)
	assert.Equal(t, "newhash", updated.PasswordHash)

	err = repo.UpdatePassword("missing-id", "newhash")
	assert.ErrorIs(t, err, ErrUserNotFound)
}

func TestUserDeleteCascadesSessions(t *testing.T) {
	conn := newTestDB(t)
	userRepo := NewUserRepository(conn)
	sessionRepo := NewSessionRepository(conn)
	user := newTestUser(t, conn)

	session := newTestSession(t, conn, user.ID)
	require.NoError(t, userRepo.Delete(user.ID))

	_, err := sessionRepo.ByToken(session.Token)
	assert.ErrorIs(t, err, ErrSessionNotFound)
}
