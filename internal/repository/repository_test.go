package repository

import (
	"testing"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/require"
	"github.com/wrappedlabs/wrapped/internal/db"
	"github.com/wrappedlabs/wrapped/internal/model"
)

// newTestDB opens a fresh in-memory database with the full migration set
// applied. One connection only: each sqlite :memory: connection is its
// own database.
func newTestDB(t *testing.T) *sqlx.DB {
	t.Helper()

	conn, err := sqlx.Connect("sqlite", "file::memory:?_pragma=foreign_keys(1)")
	require.NoError(t, err)
	conn.SetMaxOpenConns(1)
	t.Cleanup(func() { conn.Close() })

	require.NoError(t, db.RunMigrations(conn.DB, "sqlite"))
	return conn
}

func newTestUser(t *testing.T, conn *sqlx.DB) *model.User {
	t.Helper()

	user := &model.User{
		Name:         "Test User",
		Email:        uuid.New().String() + "@example.com",
		PasswordHash: "$2a$10$fakefakefakefakefakefakefakefakefakefakefakefakefakef",
	}
	require.NoError(t, NewUserRepository(conn).Create(user))
	return user
}
