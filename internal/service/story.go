package service

import (
	"fmt"
	"log/slog"

	"github.com/wrappedlabs/wrapped/internal/model"
	"github.com/wrappedlabs/wrapped/internal/repository"
)

// StoryService fronts the wrapped story store. Story generation itself
// happens in an external job; this service stores its output and handles
// publishing and the public share surface.
type StoryService struct {
	storyRepository    repository.StoryRepository
	activityRepository repository.ActivityRepository
	appURL             string
}

func NewStoryService(
	storyRepository repository.StoryRepository,
	activityRepository repository.ActivityRepository,
	appURL string,
) *StoryService {
	return &StoryService{
		storyRepository:    storyRepository,
		activityRepository: activityRepository,
		appURL:             appURL,
	}
}

// Create stores a generated story for (user, year). The repository
// assigns the public slug if the story arrives without one.
func (s *StoryService) Create(story *model.WrappedStory) error {
	return s.storyRepository.Create(story)
}

func (s *StoryService) ListByUser(userID string) ([]*model.WrappedStory, error) {
	return s.storyRepository.ListByUser(userID)
}

func (s *StoryService) ByUserAndYear(userID string, year int) (*model.WrappedStory, error) {
	return s.storyRepository.ByUserAndYear(userID, year)
}

// SetPublic flips the visibility flag and records the change.
func (s *StoryService) SetPublic(userID string, year int, public bool) (*model.WrappedStory, error) {
	story, err := s.storyRepository.SetPublic(userID, year, public)
	if err != nil {
		return nil, err
	}

	action := model.ActionStoryPublished
	if !public {
		action = model.ActionStoryUnpublished
	}
	err = s.activityRepository.Create(&model.ActivityLog{
		UserID:      &userID,
		Action:      action,
		SubjectType: optional("wrapped_story"),
		SubjectID:   &story.ID,
		Properties:  []byte(fmt.Sprintf(`{"year":%d}`, year)),
	})
	if err != nil {
		slog.Warn("failed to record story visibility change", "error", err, "user_id", userID)
	}

	return story, nil
}

// PublicBySlug fetches a published story for unauthenticated viewing and
// bumps its view counter. Unpublished stories are indistinguishable from
// missing ones to the caller.
func (s *StoryService) PublicBySlug(slug string) (*model.WrappedStory, error) {
	story, err := s.storyRepository.BySlug(slug)
	if err != nil {
		return nil, err
	}
	if !story.IsPublic {
		return nil, repository.ErrStoryNotFound
	}

	err = s.storyRepository.IncrementViews(slug)
	if err != nil {
		slog.Warn("failed to increment story views", "error", err, "slug", slug)
	} else {
		story.ViewCount++
	}

	return story, nil
}

// RecordShare bumps the share counter for a published story.
func (s *StoryService) RecordShare(slug string) error {
	story, err := s.storyRepository.BySlug(slug)
	if err != nil {
		return err
	}
	if !story.IsPublic {
		return repository.ErrStoryNotFound
	}

	return s.storyRepository.IncrementShares(slug)
}

// PublicURL builds the shareable link for a story, or "" when private.
func (s *StoryService) PublicURL(story *model.WrappedStory) string {
	return story.PublicURL(s.appURL)
}
