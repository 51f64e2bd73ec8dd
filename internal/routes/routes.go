package routes

import (
	"net/http"
	"time"

	"github.com/wrappedlabs/wrapped/internal/app"
	"github.com/wrappedlabs/wrapped/internal/handler"
	"github.com/wrappedlabs/wrapped/internal/middleware"
)

func SetupRoutes(a *app.App) http.Handler {
	// Handlers
	auth := handler.NewAuthHandler(a.AuthService, a.EmailService, a.ActivityService, a.Cfg.AppURL)
	passwordReset := handler.NewPasswordResetHandler(a.PasswordResetService)
	integration := handler.NewIntegrationHandler(a.IntegrationService, a.Cfg.AppURL, a.Cfg.IsProduction())
	story := handler.NewStoryHandler(a.StoryService)
	achievement := handler.NewAchievementHandler(a.AchievementService)
	activity := handler.NewActivityHandler(a.ActivityService)

	mux := http.NewServeMux()

	// Unauthenticated account endpoints, throttled to 6 requests per
	// minute per client
	throttle := middleware.ThrottleAuth()

	mux.HandleFunc("POST /register", throttle(middleware.RequireGuest(auth.Register)))
	mux.HandleFunc("POST /login", throttle(middleware.RequireGuest(auth.Login)))
	mux.HandleFunc("POST /forgot-password", throttle(passwordReset.ForgotPassword))
	mux.HandleFunc("POST /verify-otp", throttle(passwordReset.VerifyOTP))
	mux.HandleFunc("POST /reset-password", throttle(passwordReset.ResetPassword))

	// Session-authenticated endpoints
	mux.HandleFunc("POST /logout", middleware.RequireAuth(auth.Logout))
	mux.HandleFunc("GET /user", middleware.RequireAuth(auth.CurrentUser))
	mux.HandleFunc("GET /email/verify/{id}/{hash}", throttle(middleware.RequireAuth(auth.VerifyEmail)))
	mux.HandleFunc("POST /email/verification-notification", throttle(middleware.RequireAuth(auth.ResendVerification)))

	mux.HandleFunc("GET /integrations", middleware.RequireAuth(integration.List))
	mux.HandleFunc("GET /integrations/{provider}/connect", middleware.RequireAuth(integration.Connect))
	mux.HandleFunc("GET /integrations/{provider}/callback", middleware.RequireAuth(integration.Callback))
	mux.HandleFunc("DELETE /integrations/{provider}", middleware.RequireAuth(integration.Disconnect))

	mux.HandleFunc("GET /wrapped", middleware.RequireAuth(story.List))
	mux.HandleFunc("GET /wrapped/{year}", middleware.RequireAuth(story.ByYear))
	mux.HandleFunc("POST /wrapped/{year}/publish", middleware.RequireAuth(story.Publish))
	mux.HandleFunc("POST /wrapped/{year}/unpublish", middleware.RequireAuth(story.Unpublish))

	mux.HandleFunc("GET /achievements", middleware.RequireAuth(achievement.List))
	mux.HandleFunc("GET /activity", middleware.RequireAuth(activity.List))

	// Public story sharing (slug gated by is_public), throttled more
	// loosely than the account endpoints
	publicThrottle := middleware.Throttle(middleware.NewRateLimiter(60, time.Minute))

	mux.HandleFunc("GET /wrapped/public/{slug}", publicThrottle(story.PublicShow))
	mux.HandleFunc("POST /wrapped/public/{slug}/share", publicThrottle(story.PublicShare))

	// Global middleware - executed in order (top to bottom)
	return middleware.Chain(
		mux,
		middleware.Config(a.Cfg),
		middleware.RequestLogging,
		middleware.CSRFProtection,
		middleware.SessionAuth(a.AuthService),
	)
}
