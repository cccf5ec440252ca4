package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/fluentphrases/backend/internal/api"
	"github.com/fluentphrases/backend/internal/cache"
	"github.com/fluentphrases/backend/internal/config"
	"github.com/fluentphrases/backend/internal/database"
	"github.com/fluentphrases/backend/internal/mailer"
)

func main() {
	// .env is optional; real deployments set the environment directly
	_ = godotenv.Load()

	cfg := config.Load()

	log.Printf("[main] Starting Fluent Phrases API (env=%s)", cfg.Env)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Connect to database
	dbCfg := database.DefaultConfig(cfg.DatabaseURL)
	db, err := database.New(ctx, dbCfg)
	if err != nil {
		log.Fatalf("[main] Failed to connect to database: %v", err)
	}
	defer db.Close()

	// Connect to Redis
	redisCache, err := cache.NewRedisFromURL(cfg.RedisURL)
	if err != nil {
		log.Fatalf("[main] Failed to connect to Redis: %v", err)
	}
	defer redisCache.Close()

	// Pick a mailer. Without a sender address there is nothing to send
	// from, so development falls back to logging.
	var m mailer.Mailer
	if cfg.EmailFrom != "" {
		sesMailer, err := mailer.NewSESMailer(ctx, cfg.AWSRegion, cfg.EmailFrom)
		if err != nil {
			log.Fatalf("[main] Failed to create SES mailer: %v", err)
		}
		m = mailer.NewProtectedMailer(sesMailer, mailer.ProtectedMailerConfig{})
	} else {
		log.Println("[main] EMAIL_FROM not set, using log mailer")
		m = mailer.NewLogMailer()
	}

	router := api.NewRouter(cfg, db, redisCache, m)

	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Printf("[main] Server listening on port %s", cfg.Port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("[main] Server error: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("[main] Shutting down server...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Printf("[main] Server forced to shutdown: %v", err)
	}

	log.Println("[main] Server stopped")
}
