package service

import (
	"crypto/rand"
	"errors"
	"fmt"
	"log/slog"
	"math/big"
	"strings"
	"time"

	"github.com/wrappedlabs/wrapped/internal/model"
	"github.com/wrappedlabs/wrapped/internal/repository"
	"github.com/wrappedlabs/wrapped/internal/validation"
)

var (
	// ErrInvalidOTP covers wrong code and expired code alike, so neither
	// the response nor its timing reveals which one it was.
	ErrInvalidOTP   = errors.New("invalid or expired code")
	ErrUnknownEmail = errors.New("no account found for this email address")
	otpCeiling      = big.NewInt(1000000)
)

// PasswordResetService drives the OTP state machine:
// no request -> code issued -> (advisory verify) -> consumed on reset.
//
// VerifyOTP is read-only; ResetPassword independently re-checks and then
// deletes the code. A code verified as valid can therefore still fail at
// reset time (expiry elapsed in between, or a concurrent reset consumed
// it first). Verification is advisory, reset is authoritative.
type PasswordResetService struct {
	userRepository     repository.UserRepository
	otpRepository      repository.OTPRepository
	sessionRepository  repository.SessionRepository
	activityRepository repository.ActivityRepository
	emailService       *EmailService
	authService        *AuthService
	otpExpiry          time.Duration
}

func NewPasswordResetService(
	userRepository repository.UserRepository,
	otpRepository repository.OTPRepository,
	sessionRepository repository.SessionRepository,
	activityRepository repository.ActivityRepository,
	emailService *EmailService,
	authService *AuthService,
	otpExpiry time.Duration,
) *PasswordResetService {
	return &PasswordResetService{
		userRepository:     userRepository,
		otpRepository:      otpRepository,
		sessionRepository:  sessionRepository,
		activityRepository: activityRepository,
		emailService:       emailService,
		authService:        authService,
		otpExpiry:          otpExpiry,
	}
}

// RequestOTP issues a fresh 6-digit code for an existing account,
// replacing any previously issued one, and dispatches it by email.
// Delivery is best effort: a send failure is logged but the caller still
// gets a success acknowledgment, and the stored code stays valid.
func (s *PasswordResetService) RequestOTP(email string) error {
	email = strings.TrimSpace(strings.ToLower(email))

	_, err := s.userRepository.ByEmail(email)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return ErrUnknownEmail
		}
		return fmt.Errorf("failed to look up user: %w", err)
	}

	code, err := generateOTP()
	if err != nil {
		return fmt.Errorf("failed to generate code: %w", err)
	}

	otp := &model.PasswordResetOTP{
		Email:     email,
		Code:      code,
		ExpiresAt: time.Now().UTC().Add(s.otpExpiry),
	}
	err = s.otpRepository.ReplaceForEmail(otp)
	if err != nil {
		return fmt.Errorf("failed to store code: %w", err)
	}

	err = s.emailService.SendPasswordResetOTP(email, code, s.otpExpiry)
	if err != nil {
		slog.Warn("failed to send password reset code", "error", err, "email", email)
	}

	slog.Info("password reset code issued", "email", email)
	return nil
}

// VerifyOTP reports whether a code is currently valid for the address.
// It does not consume or mark the code: repeated calls with a still-valid
// code all succeed until expiry or an actual reset.
func (s *PasswordResetService) VerifyOTP(email, code string) error {
	email = strings.TrimSpace(strings.ToLower(email))

	if validation.ValidateOTP(code) != nil {
		return ErrInvalidOTP
	}

	_, err := s.otpRepository.Match(email, code)
	if err != nil {
		if errors.Is(err, repository.ErrOTPNotFound) {
			return ErrInvalidOTP
		}
		return fmt.Errorf("failed to look up code: %w", err)
	}

	return nil
}

// ResetPassword re-validates the code from scratch (a prior VerifyOTP
// call counts for nothing), updates the password hash, consumes the code
// and revokes every live session for the account.
func (s *PasswordResetService) ResetPassword(email, code, newPassword, confirmation string) (validation.Errors, error) {
	email = strings.TrimSpace(strings.ToLower(email))

	if validation.ValidateOTP(code) != nil {
		return nil, ErrInvalidOTP
	}

	_, err := s.otpRepository.Match(email, code)
	if err != nil {
		if errors.Is(err, repository.ErrOTPNotFound) {
			return nil, ErrInvalidOTP
		}
		return nil, fmt.Errorf("failed to look up code: %w", err)
	}

	errs := validation.Errors{}
	errs.AddError("password", validation.ValidatePassword(newPassword))
	if newPassword != confirmation {
		errs.Add("password", "password confirmation does not match")
	}
	if errs.Any() {
		return errs, nil
	}

	user, err := s.userRepository.ByEmail(email)
	if err != nil {
		return nil, fmt.Errorf("failed to look up user: %w", err)
	}

	hash, err := s.authService.HashPassword(newPassword)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	err = s.userRepository.UpdatePassword(user.ID, hash)
	if err != nil {
		return nil, fmt.Errorf("failed to update password: %w", err)
	}

	// Single-use enforcement lives here, not in VerifyOTP. If the code
	// expired or a concurrent reset consumed it since the check above,
	// the caller gets the same generic error.
	err = s.otpRepository.Consume(email, code)
	if err != nil {
		if errors.Is(err, repository.ErrOTPNotFound) {
			return nil, ErrInvalidOTP
		}
		return nil, fmt.Errorf("failed to consume code: %w", err)
	}

	err = s.sessionRepository.DeleteByUser(user.ID)
	if err != nil {
		slog.Warn("failed to revoke sessions after password reset", "error", err, "user_id", user.ID)
	}

	err = s.activityRepository.Create(&model.ActivityLog{
		UserID: &user.ID,
		Action: model.ActionPasswordReset,
	})
	if err != nil {
		slog.Warn("failed to record password reset", "error", err, "user_id", user.ID)
	}

	slog.Info("password reset completed", "user_id", user.ID)
	return nil, nil
}

// generateOTP draws a uniform value in [0, 1000000) from crypto/rand and
// left-pads it to the fixed 6-digit width.
func generateOTP() (string, error) {
	n, err := rand.Int(rand.Reader, otpCeiling)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%06d", n.Int64()), nil
}
