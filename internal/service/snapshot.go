package service

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/wrappedlabs/wrapped/internal/model"
	"github.com/wrappedlabs/wrapped/internal/repository"
)

// SnapshotService records aggregated analytics blobs produced by the
// provider sync jobs. Snapshots are immutable once written.
type SnapshotService struct {
	snapshotRepository    repository.SnapshotRepository
	integrationRepository repository.IntegrationRepository
}

func NewSnapshotService(
	snapshotRepository repository.SnapshotRepository,
	integrationRepository repository.IntegrationRepository,
) *SnapshotService {
	return &SnapshotService{
		snapshotRepository:    snapshotRepository,
		integrationRepository: integrationRepository,
	}
}

// Record stores a snapshot for an integration period and stamps the
// integration's last sync time. The checksum over the payload bytes is
// computed at creation and never recomputed afterwards.
func (s *SnapshotService) Record(userID, integrationID, snapshotType string, data []byte, periodStart, periodEnd time.Time) (*model.AnalyticsSnapshot, error) {
	snapshot := &model.AnalyticsSnapshot{
		UserID:        userID,
		IntegrationID: integrationID,
		SnapshotType:  snapshotType,
		Data:          data,
		PeriodStart:   periodStart,
		PeriodEnd:     periodEnd,
	}

	err := s.snapshotRepository.Create(snapshot)
	if err != nil {
		return nil, fmt.Errorf("failed to store snapshot: %w", err)
	}

	err = s.integrationRepository.TouchSynced(integrationID, snapshot.CreatedAt)
	if err != nil {
		slog.Warn("failed to stamp integration sync time", "error", err, "integration_id", integrationID)
	}

	return snapshot, nil
}

func (s *SnapshotService) ListByUser(userID, snapshotType string) ([]*model.AnalyticsSnapshot, error) {
	return s.snapshotRepository.ListByUser(userID, snapshotType)
}

func (s *SnapshotService) ListByIntegration(integrationID string) ([]*model.AnalyticsSnapshot, error) {
	return s.snapshotRepository.ListByIntegration(integrationID)
}
