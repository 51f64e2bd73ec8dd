package service

import (
	"crypto/rand"
	"crypto/sha1"
	"crypto/subtle"
	"encoding/hex"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/wrappedlabs/wrapped/internal/model"
	"github.com/wrappedlabs/wrapped/internal/repository"
	"github.com/wrappedlabs/wrapped/internal/validation"
	"golang.org/x/crypto/bcrypt"
)

var (
	// ErrInvalidCredentials deliberately covers both unknown-email and
	// wrong-password so responses cannot be used to enumerate accounts.
	ErrInvalidCredentials  = errors.New("invalid credentials provided")
	ErrInvalidVerification = errors.New("invalid verification link")
)

const sessionCookieName = "wrapped_session"

type AuthService struct {
	db                 *sqlx.DB
	userRepository     repository.UserRepository
	sessionRepository  repository.SessionRepository
	activityRepository repository.ActivityRepository
	isProduction       bool
	sessionExpiry      time.Duration
}

func NewAuthService(
	db *sqlx.DB,
	userRepository repository.UserRepository,
	sessionRepository repository.SessionRepository,
	activityRepository repository.ActivityRepository,
	isProduction bool,
	sessionExpiry time.Duration,
) *AuthService {
	return &AuthService{
		db:                 db,
		userRepository:     userRepository,
		sessionRepository:  sessionRepository,
		activityRepository: activityRepository,
		isProduction:       isProduction,
		sessionExpiry:      sessionExpiry,
	}
}

// Register validates the input, then creates the user and its
// registered-event audit row in a single transaction: a failed insert
// leaves neither a partial user nor a spurious event behind.
func (s *AuthService) Register(name, email, password, confirmation, ip, userAgent string) (*model.User, validation.Errors, error) {
	name = strings.TrimSpace(name)
	email = strings.TrimSpace(strings.ToLower(email))

	errs := validation.Errors{}
	errs.AddError("name", validation.ValidateName(name))
	errs.AddError("email", validation.ValidateEmail(email))
	errs.AddError("password", validation.ValidatePassword(password))
	if password != confirmation {
		errs.Add("password", "password confirmation does not match")
	}
	if errs.Any() {
		return nil, errs, nil
	}

	hash, err := s.HashPassword(password)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := &model.User{
		Name:         name,
		Email:        email,
		PasswordHash: hash,
	}

	tx, err := s.db.Beginx()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	err = s.userRepository.CreateTx(tx, user)
	if err != nil {
		if errors.Is(err, repository.ErrDuplicateEmail) {
			errs.Add("email", "email has already been taken")
			return nil, errs, nil
		}
		return nil, nil, fmt.Errorf("failed to create user: %w", err)
	}

	err = s.activityRepository.CreateTx(tx, &model.ActivityLog{
		UserID:    &user.ID,
		Action:    model.ActionUserRegistered,
		IPAddress: optional(ip),
		UserAgent: optional(userAgent),
	})
	if err != nil {
		return nil, nil, fmt.Errorf("failed to record registration: %w", err)
	}

	err = tx.Commit()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to commit registration: %w", err)
	}

	slog.Info("user registered", "user_id", user.ID, "email", user.Email)
	return user, nil, nil
}

// Login verifies credentials and returns the user. Unknown email and
// wrong password both come back as ErrInvalidCredentials; failed
// attempts are logged with the source address for audit.
func (s *AuthService) Login(email, password, ip, userAgent string) (*model.User, error) {
	email = strings.TrimSpace(strings.ToLower(email))

	user, err := s.userRepository.ByEmail(email)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			s.recordFailedLogin(email, ip, userAgent)
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}

	err = s.ComparePassword(password, user.PasswordHash)
	if err != nil {
		s.recordFailedLogin(email, ip, userAgent)
		return nil, ErrInvalidCredentials
	}

	slog.Info("user logged in", "user_id", user.ID, "email", user.Email)
	return user, nil
}

func (s *AuthService) recordFailedLogin(email, ip, userAgent string) {
	slog.Warn("failed login attempt", "email", email, "ip", ip)

	err := s.activityRepository.Create(&model.ActivityLog{
		Action:     model.ActionUserLoginFailed,
		Properties: []byte(fmt.Sprintf(`{"email":%q}`, email)),
		IPAddress:  optional(ip),
		UserAgent:  optional(userAgent),
	})
	if err != nil {
		slog.Warn("failed to record login attempt", "error", err)
	}
}

// StartSession issues a fresh session for the user, discarding every
// prior one. Issuing a brand-new token on each login is the session
// fixation mitigation: a token handed out pre-authentication never
// becomes authenticated.
func (s *AuthService) StartSession(user *model.User, ip, userAgent string) (*model.Session, error) {
	err := s.sessionRepository.DeleteByUser(user.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to clear old sessions: %w", err)
	}

	token, err := GenerateToken()
	if err != nil {
		return nil, fmt.Errorf("failed to generate session token: %w", err)
	}

	session := &model.Session{
		Token:     token,
		UserID:    user.ID,
		IPAddress: optional(ip),
		UserAgent: optional(userAgent),
		ExpiresAt: time.Now().UTC().Add(s.sessionExpiry),
	}
	err = s.sessionRepository.Create(session)
	if err != nil {
		return nil, fmt.Errorf("failed to create session: %w", err)
	}

	return session, nil
}

// EndSession destroys the server-side session row.
func (s *AuthService) EndSession(token string) error {
	return s.sessionRepository.Delete(token)
}

// UserBySessionToken resolves a cookie token to its user, or nil when the
// session is missing or expired.
func (s *AuthService) UserBySessionToken(token string) (*model.User, *model.Session, error) {
	session, err := s.sessionRepository.ByToken(token)
	if err != nil {
		if errors.Is(err, repository.ErrSessionNotFound) {
			return nil, nil, nil
		}
		return nil, nil, err
	}

	user, err := s.userRepository.ByID(session.UserID)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return nil, nil, nil
		}
		return nil, nil, err
	}

	return user, session, nil
}

// VerificationHash derives the value embedded in a verification link:
// the hex SHA-1 of the address. The link only proves control of the
// mailbox, so a fast non-secret digest is enough.
func VerificationHash(email string) string {
	sum := sha1.Sum([]byte(email))
	return hex.EncodeToString(sum[:])
}

// VerifyEmail marks the account's address as verified once the link's id
// and hash match the session's user. Re-verifying an already verified
// address is a no-op.
func (s *AuthService) VerifyEmail(user *model.User, id, hash string) error {
	expected := VerificationHash(user.Email)
	if user.ID != id || subtle.ConstantTimeCompare([]byte(expected), []byte(hash)) != 1 {
		return ErrInvalidVerification
	}
	if user.EmailVerifiedAt != nil {
		return nil
	}

	now := time.Now().UTC()
	err := s.userRepository.MarkEmailVerified(user.ID, now)
	if err != nil {
		return fmt.Errorf("failed to mark email verified: %w", err)
	}
	user.EmailVerifiedAt = &now

	err = s.activityRepository.Create(&model.ActivityLog{
		UserID: &user.ID,
		Action: model.ActionEmailVerified,
	})
	if err != nil {
		slog.Warn("failed to record email verification", "error", err, "user_id", user.ID)
	}

	slog.Info("email verified", "user_id", user.ID)
	return nil
}

func (s *AuthService) HashPassword(password string) (string, error) {
	hashedBytes, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hashedBytes), nil
}

func (s *AuthService) ComparePassword(password, hash string) error {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password))
}

// GenerateToken returns 32 random bytes hex encoded, the opaque value
// held by the session cookie.
func GenerateToken() (string, error) {
	bytes := make([]byte, 32)
	_, err := rand.Read(bytes)
	if err != nil {
		return "", err
	}
	return hex.EncodeToString(bytes), nil
}

func (s *AuthService) SetSessionCookie(w http.ResponseWriter, session *model.Session) {
	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookieName,
		Value:    session.Token,
		Expires:  session.ExpiresAt,
		Path:     "/",
		HttpOnly: true,
		Secure:   s.isProduction,
		SameSite: http.SameSiteLaxMode,
	})
}

func (s *AuthService) ClearSessionCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookieName,
		Value:    "",
		Expires:  time.Unix(0, 0),
		Path:     "/",
		HttpOnly: true,
		Secure:   s.isProduction,
		SameSite: http.SameSiteLaxMode,
	})
}

func (s *AuthService) SessionCookieName() string {
	return sessionCookieName
}

func optional(v string) *string {
	if v == "" {
		return nil
	}
	return &v
}
