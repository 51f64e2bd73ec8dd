package repository

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/wrappedlabs/wrapped/internal/model"
)

var ErrOTPNotFound = errors.New("otp not found")

type OTPRepository interface {
	ReplaceForEmail(otp *model.PasswordResetOTP) error
	Match(email, code string) (*model.PasswordResetOTP, error)
	Consume(email, code string) error
	ByEmail(email string) (*model.PasswordResetOTP, error)
	DeleteExpired(olderThan time.Duration) (int64, error)
}

type otpRepository struct {
	db *sqlx.DB
}

func NewOTPRepository(db *sqlx.DB) OTPRepository {
	return &otpRepository{db: db}
}

// ReplaceForEmail installs a fresh code for the address, discarding any
// previously issued one. Delete and insert run in a single transaction so
// a crash between the two can never leave the address without a row it
// was promised, and the email primary key rules out two live codes.
func (r *otpRepository) ReplaceForEmail(otp *model.PasswordResetOTP) error {
	if otp.CreatedAt.IsZero() {
		otp.CreatedAt = time.Now().UTC()
	}

	tx, err := r.db.Beginx()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.Exec(`DELETE FROM password_reset_otps WHERE email = $1`, otp.Email)
	if err != nil {
		return err
	}

	_, err = tx.Exec(
		`INSERT INTO password_reset_otps (email, code, expires_at, created_at) VALUES ($1, $2, $3, $4)`,
		otp.Email, otp.Code, otp.ExpiresAt, otp.CreatedAt,
	)
	if err != nil {
		return err
	}

	return tx.Commit()
}

// Match finds a live code by exact email and code match. Expiry is
// compared against the current time at call time; expired rows never
// match even if not yet garbage collected. Match is read-only: it does
// not consume or mark the code.
func (r *otpRepository) Match(email, code string) (*model.PasswordResetOTP, error) {
	otp := &model.PasswordResetOTP{}
	query := `SELECT * FROM password_reset_otps WHERE email = $1 AND code = $2 AND expires_at > $3`

	err := r.db.Get(otp, query, email, code, time.Now().UTC())
	if err == sql.ErrNoRows {
		return nil, ErrOTPNotFound
	}

	return otp, err
}

// Consume deletes a still-live code, enforcing single use. Only one of
// two racing resets can observe the deleted row; the loser gets
// ErrOTPNotFound.
func (r *otpRepository) Consume(email, code string) error {
	query := `DELETE FROM password_reset_otps WHERE email = $1 AND code = $2 AND expires_at > $3`

	result, err := r.db.Exec(query, email, code, time.Now().UTC())
	if err != nil {
		return err
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return ErrOTPNotFound
	}

	return nil
}

func (r *otpRepository) ByEmail(email string) (*model.PasswordResetOTP, error) {
	otp := &model.PasswordResetOTP{}
	query := `SELECT * FROM password_reset_otps WHERE email = $1`

	err := r.db.Get(otp, query, email)
	if err == sql.ErrNoRows {
		return nil, ErrOTPNotFound
	}

	return otp, err
}

// DeleteExpired removes codes whose expiry passed more than olderThan
// ago. Optional maintenance; expired rows are inert either way.
func (r *otpRepository) DeleteExpired(olderThan time.Duration) (int64, error) {
	cutoff := time.Now().UTC().Add(-olderThan)

	result, err := r.db.Exec(`DELETE FROM password_reset_otps WHERE expires_at < $1`, cutoff)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}
