package repository

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/wrappedlabs/wrapped/internal/cryptox"
	"github.com/wrappedlabs/wrapped/internal/model"
)

var (
	ErrIntegrationNotFound  = errors.New("integration not found")
	ErrDuplicateIntegration = errors.New("integration already exists for this provider")
)

type IntegrationRepository interface {
	Create(integration *model.Integration) error
	Upsert(integration *model.Integration) error
	ByID(id string) (*model.Integration, error)
	ByUserAndProvider(userID, provider string) (*model.Integration, error)
	ListByUser(userID string) ([]*model.Integration, error)
	TouchSynced(id string, at time.Time) error
	Delete(userID, provider string) error
}

// integrationRepository persists OAuth credentials. Tokens are encrypted
// here, at the persistence boundary: rows in the database only ever hold
// ciphertext, and every model handed back to callers holds plaintext.
type integrationRepository struct {
	db     *sqlx.DB
	cipher *cryptox.Cipher
}

func NewIntegrationRepository(db *sqlx.DB, cipher *cryptox.Cipher) IntegrationRepository {
	return &integrationRepository{db: db, cipher: cipher}
}

func (r *integrationRepository) Create(integration *model.Integration) error {
	prepare(integration)

	enc, err := r.encrypt(integration)
	if err != nil {
		return err
	}

	query := `
		INSERT INTO integrations (id, user_id, provider, provider_user_id, access_token, refresh_token,
			token_expires_at, scopes, metadata, last_synced_at, is_active, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
	`
	_, err = r.db.Exec(query,
		integration.ID,
		integration.UserID,
		integration.Provider,
		integration.ProviderUserID,
		enc.accessToken,
		enc.refreshToken,
		integration.TokenExpiresAt,
		integration.Scopes,
		integration.Metadata,
		integration.LastSyncedAt,
		integration.IsActive,
		integration.CreatedAt,
		integration.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return ErrDuplicateIntegration
		}
		return err
	}

	return nil
}

// Upsert creates the credential row or, when the (user, provider) pair
// already exists, replaces its tokens and metadata in place. Re-linking a
// provider must never produce a second row.
func (r *integrationRepository) Upsert(integration *model.Integration) error {
	prepare(integration)

	enc, err := r.encrypt(integration)
	if err != nil {
		return err
	}

	query := `
		INSERT INTO integrations (id, user_id, provider, provider_user_id, access_token, refresh_token,
			token_expires_at, scopes, metadata, last_synced_at, is_active, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
		ON CONFLICT (user_id, provider) DO UPDATE SET
			provider_user_id = excluded.provider_user_id,
			access_token = excluded.access_token,
			refresh_token = excluded.refresh_token,
			token_expires_at = excluded.token_expires_at,
			scopes = excluded.scopes,
			metadata = excluded.metadata,
			is_active = excluded.is_active,
			updated_at = excluded.updated_at
	`
	_, err = r.db.Exec(query,
		integration.ID,
		integration.UserID,
		integration.Provider,
		integration.ProviderUserID,
		enc.accessToken,
		enc.refreshToken,
		integration.TokenExpiresAt,
		integration.Scopes,
		integration.Metadata,
		integration.LastSyncedAt,
		integration.IsActive,
		integration.CreatedAt,
		integration.UpdatedAt,
	)
	return err
}

func (r *integrationRepository) ByID(id string) (*model.Integration, error) {
	integration := &model.Integration{}
	query := `SELECT * FROM integrations WHERE id = $1`

	err := r.db.Get(integration, query, id)
	if err == sql.ErrNoRows {
		return nil, ErrIntegrationNotFound
	}
	if err != nil {
		return nil, err
	}

	err = r.decrypt(integration)
	if err != nil {
		return nil, err
	}
	return integration, nil
}

func (r *integrationRepository) ByUserAndProvider(userID, provider string) (*model.Integration, error) {
	integration := &model.Integration{}
	query := `SELECT * FROM integrations WHERE user_id = $1 AND provider = $2`

	err := r.db.Get(integration, query, userID, provider)
	if err == sql.ErrNoRows {
		return nil, ErrIntegrationNotFound
	}
	if err != nil {
		return nil, err
	}

	err = r.decrypt(integration)
	if err != nil {
		return nil, err
	}
	return integration, nil
}

func (r *integrationRepository) ListByUser(userID string) ([]*model.Integration, error) {
	integrations := []*model.Integration{}
	query := `SELECT * FROM integrations WHERE user_id = $1 ORDER BY provider`

	err := r.db.Select(&integrations, query, userID)
	if err != nil {
		return nil, err
	}

	for _, integration := range integrations {
		err = r.decrypt(integration)
		if err != nil {
			return nil, err
		}
	}
	return integrations, nil
}

func (r *integrationRepository) TouchSynced(id string, at time.Time) error {
	query := `UPDATE integrations SET last_synced_at = $1, updated_at = $2 WHERE id = $3`
	_, err := r.db.Exec(query, at, time.Now().UTC(), id)
	return err
}

func (r *integrationRepository) Delete(userID, provider string) error {
	query := `DELETE FROM integrations WHERE user_id = $1 AND provider = $2`

	result, err := r.db.Exec(query, userID, provider)
	if err != nil {
		return err
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return ErrIntegrationNotFound
	}

	return nil
}

func prepare(integration *model.Integration) {
	if integration.ID == "" {
		integration.ID = uuid.New().String()
	}
	now := time.Now().UTC()
	if integration.CreatedAt.IsZero() {
		integration.CreatedAt = now
	}
	integration.UpdatedAt = now
	if len(integration.Scopes) == 0 {
		integration.Scopes = []byte(`[]`)
	}
	if len(integration.Metadata) == 0 {
		integration.Metadata = []byte(`{}`)
	}
}

type encryptedTokens struct {
	accessToken  string
	refreshToken *string
}

func (r *integrationRepository) encrypt(integration *model.Integration) (*encryptedTokens, error) {
	accessToken, err := r.cipher.EncryptString(integration.AccessToken)
	if err != nil {
		return nil, fmt.Errorf("failed to encrypt access token: %w", err)
	}

	enc := &encryptedTokens{accessToken: accessToken}
	if integration.RefreshToken != nil {
		refreshToken, err := r.cipher.EncryptString(*integration.RefreshToken)
		if err != nil {
			return nil, fmt.Errorf("failed to encrypt refresh token: %w", err)
		}
		enc.refreshToken = &refreshToken
	}
	return enc, nil
}

func (r *integrationRepository) decrypt(integration *model.Integration) error {
	accessToken, err := r.cipher.DecryptString(integration.AccessToken)
	if err != nil {
		return fmt.Errorf("failed to decrypt access token for integration %s: %w", integration.ID, err)
	}
	integration.AccessToken = accessToken

	if integration.RefreshToken != nil {
		refreshToken, err := r.cipher.DecryptString(*integration.RefreshToken)
		if err != nil {
			return fmt.Errorf("failed to decrypt refresh token for integration %s: %w", integration.ID, err)
		}
		integration.RefreshToken = &refreshToken
	}
	return nil
}
