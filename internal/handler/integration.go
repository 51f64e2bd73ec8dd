package handler

import (
	"errors"
	"net/http"
	"time"

	"github.com/wrappedlabs/wrapped/internal/ctxkeys"
	"github.com/wrappedlabs/wrapped/internal/middleware"
	"github.com/wrappedlabs/wrapped/internal/repository"
	"github.com/wrappedlabs/wrapped/internal/service"
)

const oauthStateCookie = "oauth_state"

type integrationHandler struct {
	integrationService *service.IntegrationService
	appURL             string
	isProduction       bool
}

func NewIntegrationHandler(integrationService *service.IntegrationService, appURL string, isProduction bool) *integrationHandler {
	return &integrationHandler{
		integrationService: integrationService,
		appURL:             appURL,
		isProduction:       isProduction,
	}
}

// List returns the user's linked integrations. Access and refresh tokens
// are excluded from serialization at the model level.
func (h *integrationHandler) List(w http.ResponseWriter, r *http.Request) {
	user := ctxkeys.User(r.Context())

	integrations, err := h.integrationService.List(user.ID)
	if err != nil {
		respondInternalError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]any{"integrations": integrations})
}

// Connect starts the OAuth consent flow for a provider.
func (h *integrationHandler) Connect(w http.ResponseWriter, r *http.Request) {
	provider := r.PathValue("provider")

	state, err := service.GenerateToken()
	if err != nil {
		respondInternalError(w, err)
		return
	}

	authURL, err := h.integrationService.AuthURL(provider, state)
	if err != nil {
		if errors.Is(err, service.ErrUnknownProvider) {
			respondFieldError(w, "provider", "Unknown provider.")
			return
		}
		respondInternalError(w, err)
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     oauthStateCookie,
		Value:    state,
		Path:     "/integrations",
		HttpOnly: true,
		Secure:   h.isProduction,
		SameSite: http.SameSiteLaxMode,
		MaxAge:   int((10 * time.Minute).Seconds()),
	})

	http.Redirect(w, r, authURL, http.StatusFound)
}

// Callback completes the linking flow: state check, code exchange,
// credential upsert, then a redirect back into the app.
func (h *integrationHandler) Callback(w http.ResponseWriter, r *http.Request) {
	user := ctxkeys.User(r.Context())
	provider := r.PathValue("provider")

	cookie, err := r.Cookie(oauthStateCookie)
	if err != nil || cookie.Value == "" || cookie.Value != r.URL.Query().Get("state") {
		respondMessage(w, http.StatusForbidden, "Invalid OAuth state.")
		return
	}

	// State cookie is single use
	http.SetCookie(w, &http.Cookie{
		Name:    oauthStateCookie,
		Value:   "",
		Path:    "/integrations",
		Expires: time.Unix(0, 0),
	})

	code := r.URL.Query().Get("code")
	if code == "" {
		respondMessage(w, http.StatusBadRequest, "Missing authorization code.")
		return
	}

	_, err = h.integrationService.Link(r.Context(), user.ID, provider, code, middleware.ClientIP(r), r.UserAgent())
	if err != nil {
		if errors.Is(err, service.ErrUnknownProvider) {
			respondFieldError(w, "provider", "Unknown provider.")
			return
		}
		respondInternalError(w, err)
		return
	}

	http.Redirect(w, r, h.appURL+"/dashboard?linked="+provider, http.StatusSeeOther)
}

// Disconnect removes a linked provider.
func (h *integrationHandler) Disconnect(w http.ResponseWriter, r *http.Request) {
	user := ctxkeys.User(r.Context())
	provider := r.PathValue("provider")

	err := h.integrationService.Disconnect(user.ID, provider, middleware.ClientIP(r), r.UserAgent())
	if err != nil {
		if errors.Is(err, service.ErrUnknownProvider) {
			respondFieldError(w, "provider", "Unknown provider.")
			return
		}
		if errors.Is(err, repository.ErrIntegrationNotFound) {
			respondMessage(w, http.StatusNotFound, "Integration not found.")
			return
		}
		respondInternalError(w, err)
		return
	}

	respondMessage(w, http.StatusOK, "Integration removed.")
}
