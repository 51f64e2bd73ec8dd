package handler

import (
	"errors"
	"net/http"
	"strings"

	"github.com/wrappedlabs/wrapped/internal/service"
	"github.com/wrappedlabs/wrapped/internal/validation"
)

type passwordResetHandler struct {
	passwordResetService *service.PasswordResetService
}

func NewPasswordResetHandler(passwordResetService *service.PasswordResetService) *passwordResetHandler {
	return &passwordResetHandler{passwordResetService: passwordResetService}
}

type forgotPasswordRequest struct {
	Email string `json:"email"`
}

// ForgotPassword issues a reset code for an existing account. The success
// body is generic; whether the email actually went out is the mail
// collaborator's concern.
func (h *passwordResetHandler) ForgotPassword(w http.ResponseWriter, r *http.Request) {
	var req forgotPasswordRequest
	err := decodeBody(r, &req)
	if err != nil {
		respondFieldError(w, "body", err.Error())
		return
	}

	email := strings.TrimSpace(req.Email)
	if validation.ValidateEmail(email) != nil {
		respondFieldError(w, "email", "Please provide a valid email address.")
		return
	}

	err = h.passwordResetService.RequestOTP(email)
	if err != nil {
		if errors.Is(err, service.ErrUnknownEmail) {
			respondFieldError(w, "email", "No account found for this email address.")
			return
		}
		respondInternalError(w, err)
		return
	}

	respondMessage(w, http.StatusOK, "OTP sent to your email address.")
}

type verifyOTPRequest struct {
	Email string `json:"email"`
	OTP   string `json:"otp"`
}

// VerifyOTP checks a code without consuming it. The failure body never
// distinguishes a wrong code from an expired one.
func (h *passwordResetHandler) VerifyOTP(w http.ResponseWriter, r *http.Request) {
	var req verifyOTPRequest
	err := decodeBody(r, &req)
	if err != nil {
		respondFieldError(w, "body", err.Error())
		return
	}

	err = h.passwordResetService.VerifyOTP(req.Email, req.OTP)
	if err != nil {
		if errors.Is(err, service.ErrInvalidOTP) {
			respondFieldError(w, "otp", "Invalid or expired OTP code.")
			return
		}
		respondInternalError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]any{
		"message": "OTP verified successfully.",
		"valid":   true,
	})
}

type resetPasswordRequest struct {
	Email                string `json:"email"`
	OTP                  string `json:"otp"`
	Password             string `json:"password"`
	PasswordConfirmation string `json:"password_confirmation"`
}

// ResetPassword consumes the code and sets the new password.
func (h *passwordResetHandler) ResetPassword(w http.ResponseWriter, r *http.Request) {
	var req resetPasswordRequest
	err := decodeBody(r, &req)
	if err != nil {
		respondFieldError(w, "body", err.Error())
		return
	}

	errs, err := h.passwordResetService.ResetPassword(req.Email, req.OTP, req.Password, req.PasswordConfirmation)
	if err != nil {
		if errors.Is(err, service.ErrInvalidOTP) {
			respondFieldError(w, "otp", "Invalid or expired OTP code.")
			return
		}
		respondInternalError(w, err)
		return
	}
	if errs.Any() {
		respondValidation(w, errs)
		return
	}

	respondMessage(w, http.StatusOK, "Password reset successfully.")
}
