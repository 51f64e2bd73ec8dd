package service

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/wrappedlabs/wrapped/internal/model"
)

func TestRegisterHashesPassword(t *testing.T) {
	env := newTestEnv(t)

	user := env.registerUser(t, "ada@example.com")
	assert.NotEmpty(t, user.ID)
	assert.NotEqual(t, testPassword, user.PasswordHash)
	assert.NoError(t, env.auth.ComparePassword(testPassword, user.PasswordHash))
}

func TestRegisterNormalizesEmail(t *testing.T) {
	env := newTestEnv(t)

	user, errs, err := env.auth.Register("Ada", "  Ada@Example.COM ", testPassword, testPassword, "", "")
	require.NoError(t, err)
	require.Empty(t, errs)
	assert.Equal(t, "ada@example.com", user.Email)
}

func TestRegisterValidation(t *testing.T) {
	env := newTestEnv(t)

	tests := []struct {
		name         string
		userName     string
		email        string
		password     string
		confirmation string
		field        string
	}{
		{"empty name", "", "ada@example.com", testPassword, testPassword, "name"},
		{"bad email", "Ada", "not-an-email", testPassword, testPassword, "email"},
		{"weak password", "Ada", "ada@example.com", "short", "short", "password"},
		{"confirmation mismatch", "Ada", "ada@example.com", testPassword, "Other3nough!", "password"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			user, errs, err := env.auth.Register(tt.userName, tt.email, tt.password, tt.confirmation, "", "")
			require.NoError(t, err)
			assert.Nil(t, user)
			assert.Contains(t, errs, tt.field)
		})
	}
}

func TestRegisterDuplicateEmail(t *testing.T) {
	env := newTestEnv(t)
	env.registerUser(t, "ada@example.com")

	user, errs, err := env.auth.Register("Other", "ada@example.com", testPassword, testPassword, "", "")
	require.NoError(t, err)
	assert.Nil(t, user)
	assert.Contains(t, errs, "email")

	// the rejected attempt must leave nothing behind, neither a user
	// row nor its registration activity
	var users int
	require.NoError(t, env.db.Get(&users, `SELECT COUNT(*) FROM users WHERE email = $1`, "ada@example.com"))
	assert.Equal(t, 1, users)

	var registrations int
	require.NoError(t, env.db.Get(&registrations, `SELECT COUNT(*) FROM activity_logs WHERE action = $1`, model.ActionUserRegistered))
	assert.Equal(t, 1, registrations)
}

func TestRegisterRecordsActivity(t *testing.T) {
	env := newTestEnv(t)
	user := env.registerUser(t, "ada@example.com")

	entries, err := env.activityRepo.ListByUser(user.ID, 10)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, model.ActionUserRegistered, entries[0].Action)
}

func TestVerifyEmail(t *testing.T) {
	env := newTestEnv(t)
	user := env.registerUser(t, "ada@example.com")
	require.Nil(t, user.EmailVerifiedAt)

	hash := VerificationHash(user.Email)

	assert.ErrorIs(t, env.auth.VerifyEmail(user, user.ID, "0000deadbeef"), ErrInvalidVerification)
	assert.ErrorIs(t, env.auth.VerifyEmail(user, "other-id", hash), ErrInvalidVerification)
	assert.Nil(t, user.EmailVerifiedAt)

	require.NoError(t, env.auth.VerifyEmail(user, user.ID, hash))
	require.NotNil(t, user.EmailVerifiedAt)

	stored, err := env.userRepo.ByID(user.ID)
	require.NoError(t, err)
	require.NotNil(t, stored.EmailVerifiedAt)
	assert.True(t, stored.IsEmailVerified())

	// a second visit to the link is a no-op, not a second activity row
	require.NoError(t, env.auth.VerifyEmail(user, user.ID, hash))

	var verifications int
	require.NoError(t, env.db.Get(&verifications, `SELECT COUNT(*) FROM activity_logs WHERE action = $1`, model.ActionEmailVerified))
	assert.Equal(t, 1, verifications)
}

func TestLoginFailuresAreIndistinguishable(t *testing.T) {
	env := newTestEnv(t)
	env.registerUser(t, "ada@example.com")

	_, wrongPassword := env.auth.Login("ada@example.com", "Wr0ng!pass99", "", "")
	_, unknownEmail := env.auth.Login("nobody@example.com", testPassword, "", "")

	assert.ErrorIs(t, wrongPassword, ErrInvalidCredentials)
	assert.ErrorIs(t, unknownEmail, ErrInvalidCredentials)
	assert.Equal(t, wrongPassword.Error(), unknownEmail.Error())
}

func TestLoginSuccess(t *testing.T) {
	env := newTestEnv(t)
	registered := env.registerUser(t, "ada@example.com")

	user, err := env.auth.Login("Ada@Example.com", testPassword, "", "")
	require.NoError(t, err)
	assert.Equal(t, registered.ID, user.ID)
}

func TestStartSessionReplacesPrior(t *testing.T) {
	env := newTestEnv(t)
	user := env.registerUser(t, "ada@example.com")

	first, err := env.auth.StartSession(user, "127.0.0.1", "go-test")
	require.NoError(t, err)
	second, err := env.auth.StartSession(user, "127.0.0.1", "go-test")
	require.NoError(t, err)
	assert.NotEqual(t, first.Token, second.Token)

	// the first token died when the second was issued
	gone, _, err := env.auth.UserBySessionToken(first.Token)
	require.NoError(t, err)
	assert.Nil(t, gone)

	resolved, session, err := env.auth.UserBySessionToken(second.Token)
	require.NoError(t, err)
	require.NotNil(t, resolved)
	assert.Equal(t, user.ID, resolved.ID)
	assert.Equal(t, second.Token, session.Token)
}

func TestEndSession(t *testing.T) {
	env := newTestEnv(t)
	user := env.registerUser(t, "ada@example.com")

	session, err := env.auth.StartSession(user, "", "")
	require.NoError(t, err)
	require.NoError(t, env.auth.EndSession(session.Token))

	resolved, _, err := env.auth.UserBySessionToken(session.Token)
	require.NoError(t, err)
	assert.Nil(t, resolved)
}

func TestUserJSONOmitsPasswordHash(t *testing.T) {
	env := newTestEnv(t)
	user := env.registerUser(t, "ada@example.com")

	body, err := json.Marshal(user)
	require.NoError(t, err)

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(body, &decoded))
	assert.NotContains(t, decoded, "password_hash")
	assert.NotContains(t, string(body), user.PasswordHash)
}

func TestGenerateTokenIsUnique(t *testing.T) {
	first, err := GenerateToken()
	require.NoError(t, err)
	second, err := GenerateToken()
	require.NoError(t, err)

	assert.Len(t, first, 64)
	assert.NotEqual(t, first, second)
}
