package handler

import (
	"net/http"
	"strconv"

	"github.com/wrappedlabs/wrapped/internal/ctxkeys"
	"github.com/wrappedlabs/wrapped/internal/service"
)

type activityHandler struct {
	activityService *service.ActivityService
}

func NewActivityHandler(activityService *service.ActivityService) *activityHandler {
	return &activityHandler{activityService: activityService}
}

// List returns the user's recent audit entries, newest first.
func (h *activityHandler) List(w http.ResponseWriter, r *http.Request) {
	user := ctxkeys.User(r.Context())

	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))

	entries, err := h.activityService.ListByUser(user.ID, limit)
	if err != nil {
		respondInternalError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]any{"activity": entries})
}
