package handler

import (
	"net/http"

	"github.com/wrappedlabs/wrapped/internal/ctxkeys"
	"github.com/wrappedlabs/wrapped/internal/model"
	"github.com/wrappedlabs/wrapped/internal/service"
)

type achievementHandler struct {
	achievementService *service.AchievementService
}

func NewAchievementHandler(achievementService *service.AchievementService) *achievementHandler {
	return &achievementHandler{achievementService: achievementService}
}

type achievementResponse struct {
	*model.Achievement
	BadgeName string `json:"badge_name"`
}

func (h *achievementHandler) List(w http.ResponseWriter, r *http.Request) {
	user := ctxkeys.User(r.Context())

	achievements, err := h.achievementService.ListByUser(user.ID)
	if err != nil {
		respondInternalError(w, err)
		return
	}

	responses := make([]achievementResponse, 0, len(achievements))
	for _, achievement := range achievements {
		responses = append(responses, achievementResponse{
			Achievement: achievement,
			BadgeName:   achievement.BadgeName(),
		})
	}
	respondJSON(w, http.StatusOK, map[string]any{"achievements": responses})
}
