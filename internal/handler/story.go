package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/wrappedlabs/wrapped/internal/ctxkeys"
	"github.com/wrappedlabs/wrapped/internal/model"
	"github.com/wrappedlabs/wrapped/internal/repository"
	"github.com/wrappedlabs/wrapped/internal/service"
)

type storyHandler struct {
	storyService *service.StoryService
}

func NewStoryHandler(storyService *service.StoryService) *storyHandler {
	return &storyHandler{storyService: storyService}
}

// storyResponse decorates a story with its share URL, which is empty
// while the story is private.
type storyResponse struct {
	*model.WrappedStory
	PublicURL string `json:"public_url,omitempty"`
}

func (h *storyHandler) response(story *model.WrappedStory) storyResponse {
	return storyResponse{
		WrappedStory: story,
		PublicURL:    h.storyService.PublicURL(story),
	}
}

func (h *storyHandler) List(w http.ResponseWriter, r *http.Request) {
	user := ctxkeys.User(r.Context())

	stories, err := h.storyService.ListByUser(user.ID)
	if err != nil {
		respondInternalError(w, err)
		return
	}

	responses := make([]storyResponse, 0, len(stories))
	for _, story := range stories {
		responses = append(responses, h.response(story))
	}
	respondJSON(w, http.StatusOK, map[string]any{"stories": responses})
}

func (h *storyHandler) ByYear(w http.ResponseWriter, r *http.Request) {
	user := ctxkeys.User(r.Context())

	year, err := strconv.Atoi(r.PathValue("year"))
	if err != nil {
		respondFieldError(w, "year", "Year must be a number.")
		return
	}

	story, err := h.storyService.ByUserAndYear(user.ID, year)
	if err != nil {
		if errors.Is(err, repository.ErrStoryNotFound) {
			respondMessage(w, http.StatusNotFound, "No wrapped story for that year.")
			return
		}
		respondInternalError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]any{"story": h.response(story)})
}

func (h *storyHandler) Publish(w http.ResponseWriter, r *http.Request) {
	h.setPublic(w, r, true)
}

func (h *storyHandler) Unpublish(w http.ResponseWriter, r *http.Request) {
	h.setPublic(w, r, false)
}

func (h *storyHandler) setPublic(w http.ResponseWriter, r *http.Request, public bool) {
	user := ctxkeys.User(r.Context())

	year, err := strconv.Atoi(r.PathValue("year"))
	if err != nil {
		respondFieldError(w, "year", "Year must be a number.")
		return
	}

	story, err := h.storyService.SetPublic(user.ID, year, public)
	if err != nil {
		if errors.Is(err, repository.ErrStoryNotFound) {
			respondMessage(w, http.StatusNotFound, "No wrapped story for that year.")
			return
		}
		respondInternalError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]any{"story": h.response(story)})
}

// PublicShow serves a published story by slug without authentication and
// counts the view. Private and missing stories are both 404.
func (h *storyHandler) PublicShow(w http.ResponseWriter, r *http.Request) {
	slug := r.PathValue("slug")

	story, err := h.storyService.PublicBySlug(slug)
	if err != nil {
		if errors.Is(err, repository.ErrStoryNotFound) {
			respondMessage(w, http.StatusNotFound, "Story not found.")
			return
		}
		respondInternalError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]any{"story": h.response(story)})
}

// PublicShare counts a share of a published story.
func (h *storyHandler) PublicShare(w http.ResponseWriter, r *http.Request) {
	slug := r.PathValue("slug")

	err := h.storyService.RecordShare(slug)
	if err != nil {
		if errors.Is(err, repository.ErrStoryNotFound) {
			respondMessage(w, http.StatusNotFound, "Story not found.")
			return
		}
		respondInternalError(w, err)
		return
	}

	respondMessage(w, http.StatusOK, "Share recorded.")
}
