package handler

import (
	"errors"
	"net/http"

	"github.com/wrappedlabs/wrapped/internal/ctxkeys"
	"github.com/wrappedlabs/wrapped/internal/middleware"
	"github.com/wrappedlabs/wrapped/internal/model"
	"github.com/wrappedlabs/wrapped/internal/service"
)

type authHandler struct {
	authService     *service.AuthService
	emailService    *service.EmailService
	activityService *service.ActivityService
	appURL          string
}

func NewAuthHandler(
	authService *service.AuthService,
	emailService *service.EmailService,
	activityService *service.ActivityService,
	appURL string,
) *authHandler {
	return &authHandler{
		authService:     authService,
		emailService:    emailService,
		activityService: activityService,
		appURL:          appURL,
	}
}

type registerRequest struct {
	Name                 string `json:"name"`
	Email                string `json:"email"`
	Password             string `json:"password"`
	PasswordConfirmation string `json:"password_confirmation"`
}

// Register creates the account, establishes a session immediately and
// returns the public user representation.
func (h *authHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	err := decodeBody(r, &req)
	if err != nil {
		respondFieldError(w, "body", err.Error())
		return
	}

	ip := middleware.ClientIP(r)
	userAgent := r.UserAgent()

	user, errs, err := h.authService.Register(req.Name, req.Email, req.Password, req.PasswordConfirmation, ip, userAgent)
	if err != nil {
		respondInternalError(w, err)
		return
	}
	if errs.Any() {
		respondValidation(w, errs)
		return
	}

	session, err := h.authService.StartSession(user, ip, userAgent)
	if err != nil {
		respondInternalError(w, err)
		return
	}
	h.authService.SetSessionCookie(w, session)

	// Welcome and verification emails are best effort; errors are
	// already logged downstream
	_ = h.emailService.SendWelcomeEmail(user.Email, user.Name)
	_ = h.emailService.SendVerificationEmail(user.Email, user.Name, h.verificationURL(user))

	respondJSON(w, http.StatusCreated, map[string]any{"user": user})
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Login authenticates and regenerates the session. The error body is
// identical for unknown email and wrong password.
func (h *authHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	err := decodeBody(r, &req)
	if err != nil {
		respondFieldError(w, "body", err.Error())
		return
	}

	ip := middleware.ClientIP(r)
	userAgent := r.UserAgent()

	user, err := h.authService.Login(req.Email, req.Password, ip, userAgent)
	if err != nil {
		if errors.Is(err, service.ErrInvalidCredentials) {
			respondFieldError(w, "email", "Invalid credentials provided.")
			return
		}
		respondInternalError(w, err)
		return
	}

	session, err := h.authService.StartSession(user, ip, userAgent)
	if err != nil {
		respondInternalError(w, err)
		return
	}
	h.authService.SetSessionCookie(w, session)

	h.activityService.Record(&user.ID, model.ActionUserLoggedIn, ip, userAgent)

	respondJSON(w, http.StatusOK, map[string]any{"user": user})
}

// Logout destroys the session row, clears the cookie and rotates the
// anti-forgery token.
func (h *authHandler) Logout(w http.ResponseWriter, r *http.Request) {
	user := ctxkeys.User(r.Context())
	session := ctxkeys.Session(r.Context())

	if session != nil {
		err := h.authService.EndSession(session.Token)
		if err != nil {
			respondInternalError(w, err)
			return
		}
	}
	h.authService.ClearSessionCookie(w)
	middleware.RotateCSRFToken(w, r)

	if user != nil {
		h.activityService.Record(&user.ID, model.ActionUserLoggedOut, middleware.ClientIP(r), r.UserAgent())
	}

	respondMessage(w, http.StatusOK, "Logged out successfully")
}

// CurrentUser returns the authenticated user.
func (h *authHandler) CurrentUser(w http.ResponseWriter, r *http.Request) {
	user := ctxkeys.User(r.Context())
	respondJSON(w, http.StatusOK, map[string]any{"user": user})
}

// VerifyEmail consumes the link from the verification email and sends
// the browser on to the frontend's confirmation page. A link minted for
// a different account than the session's is rejected.
func (h *authHandler) VerifyEmail(w http.ResponseWriter, r *http.Request) {
	user := ctxkeys.User(r.Context())

	err := h.authService.VerifyEmail(user, r.PathValue("id"), r.PathValue("hash"))
	if err != nil {
		if errors.Is(err, service.ErrInvalidVerification) {
			respondMessage(w, http.StatusForbidden, "Invalid verification link.")
			return
		}
		respondInternalError(w, err)
		return
	}

	http.Redirect(w, r, h.appURL+"/email-verified", http.StatusSeeOther)
}

// ResendVerification mails a fresh verification link to the session's
// account.
func (h *authHandler) ResendVerification(w http.ResponseWriter, r *http.Request) {
	user := ctxkeys.User(r.Context())

	if user.IsEmailVerified() {
		respondMessage(w, http.StatusOK, "Email already verified.")
		return
	}

	err := h.emailService.SendVerificationEmail(user.Email, user.Name, h.verificationURL(user))
	if err != nil {
		respondInternalError(w, err)
		return
	}

	respondMessage(w, http.StatusOK, "Verification link sent.")
}

func (h *authHandler) verificationURL(user *model.User) string {
	return h.appURL + "/email/verify/" + user.ID + "/" + service.VerificationHash(user.Email)
}
