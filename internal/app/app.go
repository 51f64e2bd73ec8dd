package app

import (
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/wrappedlabs/wrapped/internal/config"
	"github.com/wrappedlabs/wrapped/internal/cryptox"
	"github.com/wrappedlabs/wrapped/internal/db"
	"github.com/wrappedlabs/wrapped/internal/repository"
	"github.com/wrappedlabs/wrapped/internal/service"
)

type App struct {
	Cfg                  *config.Config
	DB                   *sqlx.DB
	AuthService          *service.AuthService
	PasswordResetService *service.PasswordResetService
	EmailService         *service.EmailService
	IntegrationService   *service.IntegrationService
	SnapshotService      *service.SnapshotService
	StoryService         *service.StoryService
	AchievementService   *service.AchievementService
	ActivityService      *service.ActivityService
}

func New(cfg *config.Config) (*App, error) {
	database, err := db.Init(cfg.DBDriver, cfg.DBConnection)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	err = db.RunMigrations(database.DB, cfg.DBDriver)
	if err != nil {
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	cipher, err := cryptox.New(cfg.EncryptionKey)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize token cipher: %w", err)
	}

	// Repositories
	userRepository := repository.NewUserRepository(database)
	sessionRepository := repository.NewSessionRepository(database)
	otpRepository := repository.NewOTPRepository(database)
	integrationRepository := repository.NewIntegrationRepository(database, cipher)
	snapshotRepository := repository.NewSnapshotRepository(database)
	storyRepository := repository.NewStoryRepository(database)
	achievementRepository := repository.NewAchievementRepository(database)
	activityRepository := repository.NewActivityRepository(database)

	// Services
	emailService := service.NewEmailService(cfg.ResendAPIKey, cfg.EmailFrom, cfg.AppName, cfg.IsDevelopment())
	authService := service.NewAuthService(
		database,
		userRepository,
		sessionRepository,
		activityRepository,
		cfg.IsProduction(),
		cfg.SessionExpiry,
	)
	passwordResetService := service.NewPasswordResetService(
		userRepository,
		otpRepository,
		sessionRepository,
		activityRepository,
		emailService,
		authService,
		cfg.OTPExpiry,
	)
	integrationService := service.NewIntegrationService(cfg, integrationRepository, activityRepository)
	snapshotService := service.NewSnapshotService(snapshotRepository, integrationRepository)
	storyService := service.NewStoryService(storyRepository, activityRepository, cfg.AppURL)
	achievementService := service.NewAchievementService(achievementRepository)
	activityService := service.NewActivityService(activityRepository)

	return &App{
		Cfg:                  cfg,
		DB:                   database,
		AuthService:          authService,
		PasswordResetService: passwordResetService,
		EmailService:         emailService,
		IntegrationService:   integrationService,
		SnapshotService:      snapshotService,
		StoryService:         storyService,
		AchievementService:   achievementService,
		ActivityService:      activityService,
	}, nil
}

func (a *App) Close() error {
	return db.Close(a.DB)
}
