package api

import (
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/fluentphrases/backend/internal/api/handlers"
	"github.com/fluentphrases/backend/internal/auth"
	"github.com/fluentphrases/backend/internal/billing"
	"github.com/fluentphrases/backend/internal/cache"
	"github.com/fluentphrases/backend/internal/config"
	"github.com/fluentphrases/backend/internal/database"
	"github.com/fluentphrases/backend/internal/entitlement"
	"github.com/fluentphrases/backend/internal/mailer"
	"github.com/fluentphrases/backend/internal/middleware"
	"github.com/fluentphrases/backend/internal/models"
	"github.com/fluentphrases/backend/internal/ratelimit"
	"github.com/fluentphrases/backend/internal/repository"
	"github.com/fluentphrases/backend/internal/service"
)

// NewRouter creates and configures the main router
func NewRouter(cfg *config.Config, db *database.DB, redisCache *cache.Redis, m mailer.Mailer) *chi.Mux {
	r := chi.NewRouter()

	// Repositories
	userRepo := repository.NewUserRepository(db)
	phraseRepo := repository.NewPhraseRepository(db)
	readingRepo := repository.NewReadingRepository(db)

	// Auth
	jwtService := auth.NewJWTService(cfg.JWTSecret, 24*time.Hour)
	authMiddleware := auth.NewMiddleware(jwtService)

	// Entitlement gate. The user repository doubles as its counter store.
	gate := entitlement.New(entitlement.Config{
		FreeCategories: cfg.FreeCategories,
		DailyLimit:     cfg.DailyPhraseLimit,
	}, userRepo)

	// Rate limiter
	limiter := ratelimit.NewRateLimiterWithLimits(redisCache, map[string]ratelimit.Limit{
		models.PlanFree:      {RequestsPerMinute: cfg.RateLimitPerMinute},
		models.PlanPremium:   {RequestsPerMinute: cfg.RateLimitPerMinute * 3},
		models.PlanAdmin:     {RequestsPerMinute: cfg.RateLimitPerMinute * 6},
		models.PlanAnonymous: {RequestsPerMinute: cfg.RateLimitPerMinute / 2},
	})

	// Global middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.Timing)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.SecurityHeaders)
	r.Use(middleware.CORSWithOrigins(cfg.CORSOrigins))
	r.Use(authMiddleware.OptionalAuth) // identify for rate limiting without requiring auth
	r.Use(limiter.Middleware)

	// Services
	cacheTTL := time.Duration(cfg.CacheTTL) * time.Second
	phraseService := service.NewPhraseService(phraseRepo, redisCache, cacheTTL)
	readingService := service.NewReadingService(readingRepo, redisCache, cacheTTL)

	paymentClient := billing.NewClient(cfg.MercadoPagoToken)

	// Handlers
	healthHandler := handlers.NewHealthChecker(db, redisCache)
	authHandler := handlers.NewAuthHandler(userRepo, jwtService, m, cfg.FrontendURL, cfg.BackendURL, cfg.ResetTokenTTL)
	phrasesHandler := handlers.NewPhrasesHandler(phraseService, userRepo, gate)
	readingsHandler := handlers.NewReadingsHandler(readingService, userRepo, gate)
	categoriesHandler := handlers.NewCategoriesHandler(gate)
	usageHandler := handlers.NewUsageHandler(userRepo, gate)
	billingHandler := handlers.NewBillingHandler(paymentClient, userRepo, cfg.FrontendURL, cfg.BackendURL)
	adminHandler := handlers.NewAdminHandler(phraseService, readingService, userRepo)

	// Health endpoints
	r.Get("/health", healthHandler.Health)
	r.Get("/health/live", handlers.LivenessProbe)
	r.Get("/health/ready", healthHandler.ReadinessProbe)

	// API v1
	r.Route("/api/v1", func(r chi.Router) {
		// Public auth endpoints
		r.Post("/auth/signup", authHandler.Signup)
		r.Post("/auth/signin", authHandler.Signin)
		r.Post("/auth/refresh", authHandler.RefreshToken)
		r.Post("/auth/forgot-password", authHandler.ForgotPassword)
		r.Post("/auth/reset-password", authHandler.ResetPassword)
		r.Get("/auth/verify-email", authHandler.VerifyEmail)

		// Category catalog is public; lock flags depend on the optional auth
		r.Get("/categories", categoriesHandler.List)

		// Payment notifications arrive unauthenticated
		r.Post("/billing/webhook", billingHandler.Webhook)

		// Gated content endpoints
		r.Group(func(r chi.Router) {
			r.Use(authMiddleware.Authenticate)

			r.Get("/phrases", phrasesHandler.List)
			r.Post("/phrases/increment", phrasesHandler.Increment)
			r.Get("/readings", readingsHandler.List)
			r.Get("/readings/{id}", readingsHandler.Get)

			r.Post("/billing/preference", billingHandler.CreatePreference)

			r.Route("/user", func(r chi.Router) {
				r.Get("/me", authHandler.GetCurrentUser)
				r.Get("/usage", usageHandler.Get)
			})
		})

		// Content management
		r.Route("/admin", func(r chi.Router) {
			r.Use(authMiddleware.Authenticate)
			r.Use(authMiddleware.RequireAdmin)

			r.Post("/phrases", adminHandler.CreatePhrase)
			r.Put("/phrases/{id}", adminHandler.UpdatePhrase)
			r.Delete("/phrases/{id}", adminHandler.DeletePhrase)
			r.Post("/readings", adminHandler.CreateReading)
			r.Put("/readings/{id}", adminHandler.UpdateReading)
			r.Delete("/readings/{id}", adminHandler.DeleteReading)
			r.Put("/users/{id}/plan", adminHandler.SetUserPlan)
		})
	})

	return r
}
