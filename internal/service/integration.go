package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/wrappedlabs/wrapped/internal/config"
	"github.com/wrappedlabs/wrapped/internal/model"
	"github.com/wrappedlabs/wrapped/internal/repository"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/endpoints"
)

var ErrUnknownProvider = errors.New("unknown integration provider")

// IntegrationService drives the OAuth linking flow and fronts the
// credential store. One credential set exists per (user, provider);
// re-linking updates the row in place.
type IntegrationService struct {
	integrationRepository repository.IntegrationRepository
	activityRepository    repository.ActivityRepository
	configs               map[string]*oauth2.Config
}

func NewIntegrationService(
	cfg *config.Config,
	integrationRepository repository.IntegrationRepository,
	activityRepository repository.ActivityRepository,
) *IntegrationService {
	callback := func(provider string) string {
		return cfg.AppURL + "/integrations/" + provider + "/callback"
	}

	configs := map[string]*oauth2.Config{
		model.ProviderGitHub: {
			ClientID:     cfg.GitHubClientID,
			ClientSecret: cfg.GitHubClientSecret,
			RedirectURL:  callback(model.ProviderGitHub),
			Scopes:       []string{"read:user", "repo"},
			Endpoint:     endpoints.GitHub,
		},
		model.ProviderSpotify: {
			ClientID:     cfg.SpotifyClientID,
			ClientSecret: cfg.SpotifyClientSecret,
			RedirectURL:  callback(model.ProviderSpotify),
			Scopes:       []string{"user-top-read", "user-read-recently-played"},
			Endpoint:     endpoints.Spotify,
		},
		model.ProviderLinkedIn: {
			ClientID:     cfg.LinkedInClientID,
			ClientSecret: cfg.LinkedInClientSecret,
			RedirectURL:  callback(model.ProviderLinkedIn),
			Scopes:       []string{"r_liteprofile"},
			Endpoint:     endpoints.LinkedIn,
		},
		model.ProviderGoogle: {
			ClientID:     cfg.GoogleClientID,
			ClientSecret: cfg.GoogleClientSecret,
			RedirectURL:  callback(model.ProviderGoogle),
			Scopes:       []string{"openid", "profile"},
			Endpoint:     endpoints.Google,
		},
	}

	return &IntegrationService{
		integrationRepository: integrationRepository,
		activityRepository:    activityRepository,
		configs:               configs,
	}
}

// AuthURL returns the provider's consent URL for the given state value.
func (s *IntegrationService) AuthURL(provider, state string) (string, error) {
	oauthConfig, ok := s.configs[provider]
	if !ok {
		return "", ErrUnknownProvider
	}
	return oauthConfig.AuthCodeURL(state, oauth2.AccessTypeOffline), nil
}

// Link exchanges the authorization code and upserts the credential row
// for (user, provider). Tokens are encrypted by the repository before
// they touch the database.
func (s *IntegrationService) Link(ctx context.Context, userID, provider, code, ip, userAgent string) (*model.Integration, error) {
	oauthConfig, ok := s.configs[provider]
	if !ok {
		return nil, ErrUnknownProvider
	}

	token, err := oauthConfig.Exchange(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("failed to exchange authorization code: %w", err)
	}

	scopes, err := json.Marshal(oauthConfig.Scopes)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal scopes: %w", err)
	}

	integration := &model.Integration{
		UserID:      userID,
		Provider:    provider,
		AccessToken: token.AccessToken,
		Scopes:      scopes,
		IsActive:    true,
	}
	if token.RefreshToken != "" {
		integration.RefreshToken = &token.RefreshToken
	}
	if !token.Expiry.IsZero() {
		expiry := token.Expiry.UTC()
		integration.TokenExpiresAt = &expiry
	}

	err = s.integrationRepository.Upsert(integration)
	if err != nil {
		return nil, fmt.Errorf("failed to store integration: %w", err)
	}

	err = s.activityRepository.Create(&model.ActivityLog{
		UserID:      &userID,
		Action:      model.ActionIntegrationLinked,
		SubjectType: optional("integration"),
		SubjectID:   &integration.ID,
		Properties:  []byte(fmt.Sprintf(`{"provider":%q}`, provider)),
		IPAddress:   optional(ip),
		UserAgent:   optional(userAgent),
	})
	if err != nil {
		slog.Warn("failed to record integration link", "error", err, "user_id", userID)
	}

	slog.Info("integration linked", "user_id", userID, "provider", provider)
	return integration, nil
}

func (s *IntegrationService) List(userID string) ([]*model.Integration, error) {
	return s.integrationRepository.ListByUser(userID)
}

func (s *IntegrationService) ByUserAndProvider(userID, provider string) (*model.Integration, error) {
	return s.integrationRepository.ByUserAndProvider(userID, provider)
}

func (s *IntegrationService) Disconnect(userID, provider, ip, userAgent string) error {
	if !model.ValidProvider(provider) {
		return ErrUnknownProvider
	}

	err := s.integrationRepository.Delete(userID, provider)
	if err != nil {
		return err
	}

	err = s.activityRepository.Create(&model.ActivityLog{
		UserID:      &userID,
		Action:      model.ActionIntegrationRemoved,
		SubjectType: optional("integration"),
		Properties:  []byte(fmt.Sprintf(`{"provider":%q}`, provider)),
		IPAddress:   optional(ip),
		UserAgent:   optional(userAgent),
	})
	if err != nil {
		slog.Warn("failed to record integration removal", "error", err, "user_id", userID)
	}

	slog.Info("integration removed", "user_id", userID, "provider", provider)
	return nil
}
