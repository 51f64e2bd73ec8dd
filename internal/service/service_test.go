package service

import (
	"testing"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/require"
	"github.com/wrappedlabs/wrapped/internal/db"
	"github.com/wrappedlabs/wrapped/internal/model"
	"github.com/wrappedlabs/wrapped/internal/repository"
)

type testEnv struct {
	db            *sqlx.DB
	userRepo      repository.UserRepository
	sessionRepo   repository.SessionRepository
	otpRepo       repository.OTPRepository
	activityRepo  repository.ActivityRepository
	auth          *AuthService
	passwordReset *PasswordResetService
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	conn, err := sqlx.Connect("sqlite", "file::memory:?_pragma=foreign_keys(1)")
	require.NoError(t, err)
	conn.SetMaxOpenConns(1)
	t.Cleanup(func() { conn.Close() })
	require.NoError(t, db.RunMigrations(conn.DB, "sqlite"))

	userRepo := repository.NewUserRepository(conn)
	sessionRepo := repository.NewSessionRepository(conn)
	otpRepo := repository.NewOTPRepository(conn)
	activityRepo := repository.NewActivityRepository(conn)

	emailService := NewEmailService("", "test@example.com", "Wrapped Test", true)
	auth := NewAuthService(conn, userRepo, sessionRepo, activityRepo, false, 24*time.Hour)
	passwordReset := NewPasswordResetService(
		userRepo, otpRepo, sessionRepo, activityRepo, emailService, auth, 10*time.Minute,
	)

	return &testEnv{
		db:            conn,
		userRepo:      userRepo,
		sessionRepo:   sessionRepo,
		otpRepo:       otpRepo,
		activityRepo:  activityRepo,
		auth:          auth,
		passwordReset: passwordReset,
	}
}

const testPassword = "Corr3ct!horse"

func (e *testEnv) registerUser(t *testing.T, email string) *model.User {
	t.Helper()

	user, errs, err := e.auth.Register("Test User", email, testPassword, testPassword, "127.0.0.1", "go-test")
	require.NoError(t, err)
	require.Empty(t, errs)
	require.NotNil(t, user)
	return user
}
