package service

import (
	"errors"
	"log/slog"

	"github.com/wrappedlabs/wrapped/internal/model"
	"github.com/wrappedlabs/wrapped/internal/repository"
)

// AchievementService fronts the badge store. Unlock conditions are
// evaluated by an external job; this service only records the result and
// enforces one badge of each type per user.
type AchievementService struct {
	achievementRepository repository.AchievementRepository
}

func NewAchievementService(achievementRepository repository.AchievementRepository) *AchievementService {
	return &AchievementService{achievementRepository: achievementRepository}
}

// Unlock awards a badge. Awarding an already held badge type returns
// the existing row alongside repository.ErrDuplicateAchievement so the
// caller can tell a repeat award from a failure.
func (s *AchievementService) Unlock(achievement *model.Achievement) (*model.Achievement, error) {
	err := s.achievementRepository.Create(achievement)
	if err != nil {
		if errors.Is(err, repository.ErrDuplicateAchievement) {
			existing, lookupErr := s.achievementRepository.ByUserAndType(achievement.UserID, achievement.BadgeType)
			if lookupErr != nil {
				return nil, lookupErr
			}
			return existing, repository.ErrDuplicateAchievement
		}
		return nil, err
	}

	slog.Info("achievement unlocked", "user_id", achievement.UserID, "badge", achievement.BadgeType)
	return achievement, nil
}

func (s *AchievementService) ListByUser(userID string) ([]*model.Achievement, error) {
	return s.achievementRepository.ListByUser(userID)
}
