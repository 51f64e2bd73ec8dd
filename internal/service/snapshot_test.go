package service

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/wrappedlabs/wrapped/internal/cryptox"
	"github.com/wrappedlabs/wrapped/internal/model"
	"github.com/wrappedlabs/wrapped/internal/repository"
)

func TestSnapshotRecordStampsSyncTime(t *testing.T) {
	env := newTestEnv(t)
	user := env.registerUser(t, "ada@example.com")

	key := make([]byte, 32)
	cipher, err := cryptox.New(key)
	require.NoError(t, err)

	integrationRepo := repository.NewIntegrationRepository(env.db, cipher)
	integration := &model.Integration{
		UserID:      user.ID,
		Provider:    model.ProviderGitHub,
		AccessToken: "token",
	}
	require.NoError(t, integrationRepo.Create(integration))

	service := NewSnapshotService(repository.NewSnapshotRepository(env.db), integrationRepo)

	snapshot, err := service.Record(
		user.ID,
		integration.ID,
		model.SnapshotWeekly,
		[]byte(`{"commits":7}`),
		time.Now().UTC().Add(-7*24*time.Hour),
		time.Now().UTC(),
	)
	require.NoError(t, err)
	assert.NotEmpty(t, snapshot.Checksum)
	assert.True(t, snapshot.VerifyChecksum())

	synced, err := integrationRepo.ByID(integration.ID)
	require.NoError(t, err)
	assert.NotNil(t, synced.LastSyncedAt)

	listed, err := service.ListByUser(user.ID, model.SnapshotWeekly)
	require.NoError(t, err)
	assert.Len(t, listed, 1)
}
