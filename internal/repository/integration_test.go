package repository

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/wrappedlabs/wrapped/internal/cryptox"
	"github.com/wrappedlabs/wrapped/internal/model"
)

func newTestCipher(t *testing.T) *cryptox.Cipher {
	t.Helper()

	key := make([]byte, 32)
	for i := range key {
		key[i] = byte(i)
	}
	cipher, err := cryptox.New(key)
	require.NoError(t, err)
	return cipher
}

func newTestIntegrationRepo(t *testing.T, conn *sqlx.DB) IntegrationRepository {
	t.Helper()
	return NewIntegrationRepository(conn, newTestCipher(t))
}

func stringPtr(s string) *string { return &s }

func TestIntegrationTokensEncryptedAtRest(t *testing.T) {
	conn := newTestDB(t)
	repo := newTestIntegrationRepo(t, conn)
	user := newTestUser(t, conn)

	integration := &model.Integration{
		UserID:       user.ID,
		Provider:     model.ProviderGitHub,
		AccessToken:  "gho_plaintext_access",
		RefreshToken: stringPtr("ghr_plaintext_refresh"),
	}
	require.NoError(t, repo.Create(integration))

	var stored struct {
		AccessToken  string  `db:"access_token"`
		RefreshToken *string `db:"refresh_token"`
	}
	require.NoError(t, conn.Get(&stored,
		`SELECT access_token, refresh_token FROM integrations WHERE id = $1`, integration.ID))
	assert.NotEqual(t, "gho_plaintext_access", stored.AccessToken)
	require.NotNil(t, stored.RefreshToken)
	assert.NotEqual(t, "ghr_plaintext_refresh", *stored.RefreshToken)

	// reads hand plaintext back
	fetched, err := repo.ByID(integration.ID)
	require.NoError(t, err)
	assert.Equal(t, "gho_plaintext_access", fetched.AccessToken)
	require.NotNil(t, fetched.RefreshToken)
	assert.Equal(t, "ghr_plaintext_refresh", *fetched.RefreshToken)
}

func TestIntegrationDuplicateProvider(t *testing.T) {
	conn := newTestDB(t)
	repo := newTestIntegrationRepo(t, conn)
	user := newTestUser(t, conn)

	require.NoError(t, repo.Create(&model.Integration{
		UserID:      user.ID,
		Provider:    model.ProviderSpotify,
		AccessToken: "token-a",
	}))

	err := repo.Create(&model.Integration{
		UserID:      user.ID,
		Provider:    model.ProviderSpotify,
		AccessToken: "token-b",
	})
	assert.ErrorIs(t, err, ErrDuplicateIntegration)

	// a different provider for the same user is fine
	require.NoError(t, repo.Create(&model.Integration{
		UserID:      user.ID,
		Provider:    model.ProviderGitHub,
		AccessToken: "token-c",
	}))
}

func TestIntegrationUpsertReplacesInPlace(t *testing.T) {
	conn := newTestDB(t)
	repo := newTestIntegrationRepo(t, conn)
	user := newTestUser(t, conn)

	require.NoError(t, repo.Upsert(&model.Integration{
		UserID:      user.ID,
		Provider:    model.ProviderGoogle,
		AccessToken: "first-token",
	}))
	require.NoError(t, repo.Upsert(&model.Integration{
		UserID:      user.ID,
		Provider:    model.ProviderGoogle,
		AccessToken: "second-token",
	}))

	list, err := repo.ListByUser(user.ID)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "second-token", list[0].AccessToken)
}

func TestIntegrationJSONOmitsTokens(t *testing.T) {
	conn := newTestDB(t)
	repo := newTestIntegrationRepo(t, conn)
	user := newTestUser(t, conn)

	integration := &model.Integration{
		UserID:       user.ID,
		Provider:     model.ProviderLinkedIn,
		AccessToken:  "secret-access",
		RefreshToken: stringPtr("secret-refresh"),
	}
	require.NoError(t, repo.Create(integration))

	fetched, err := repo.ByID(integration.ID)
	require.NoError(t, err)

	body, err := json.Marshal(fetched)
	require.NoError(t, err)
	assert.NotContains(t, string(body), "secret-access")
	assert.NotContains(t, string(body), "secret-refresh")
	assert.Contains(t, string(body), model.ProviderLinkedIn)
}

func TestIntegrationTouchSyncedAndDelete(t *testing.T) {
	conn := newTestDB(t)
	repo := newTestIntegrationRepo(t, conn)
	user := newTestUser(t, conn)

	integration := &model.Integration{
		UserID:      user.ID,
		Provider:    model.ProviderGitHub,
		AccessToken: "token",
	}
	require.NoError(t, repo.Create(integration))
	assert.Nil(t, integration.LastSyncedAt)

	at := time.Now().UTC()
	require.NoError(t, repo.TouchSynced(integration.ID, at))

	fetched, err := repo.ByID(integration.ID)
	require.NoError(t, err)
	require.NotNil(t, fetched.LastSyncedAt)

	require.NoError(t, repo.Delete(user.ID, model.ProviderGitHub))
	_, err = repo.ByUserAndProvider(user.ID, model.ProviderGitHub)
	assert.ErrorIs(t, err, ErrIntegrationNotFound)

	err = repo.Delete(user.ID, model.ProviderGitHub)
	assert.ErrorIs(t, err, ErrIntegrationNotFound)
}
