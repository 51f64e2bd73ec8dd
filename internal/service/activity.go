package service

import (
	"log/slog"

	"github.com/wrappedlabs/wrapped/internal/model"
	"github.com/wrappedlabs/wrapped/internal/repository"
)

// ActivityService appends audit entries. Failures are logged, never
// surfaced: audit writes must not fail the request they accompany
// (except at registration, where the event is part of the transaction).
type ActivityService struct {
	activityRepository repository.ActivityRepository
}

func NewActivityService(activityRepository repository.ActivityRepository) *ActivityService {
	return &ActivityService{activityRepository: activityRepository}
}

func (s *ActivityService) Record(userID *string, action, ip, userAgent string) {
	err := s.activityRepository.Create(&model.ActivityLog{
		UserID:    userID,
		Action:    action,
		IPAddress: optional(ip),
		UserAgent: optional(userAgent),
	})
	if err != nil {
		slog.Warn("failed to record activity", "error", err, "action", action)
	}
}

func (s *ActivityService) ListByUser(userID string, limit int) ([]*model.ActivityLog, error) {
	if limit <= 0 || limit > 100 {
		limit = 50
	}
	return s.activityRepository.ListByUser(userID, limit)
}
