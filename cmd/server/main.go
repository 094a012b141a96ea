package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog"

	"github.com/KevinHdezVaz/Lumorah-back/internal/api"
	"github.com/KevinHdezVaz/Lumorah-back/internal/config"
	"github.com/KevinHdezVaz/Lumorah-back/internal/database"
	"github.com/KevinHdezVaz/Lumorah-back/internal/health"
	"github.com/KevinHdezVaz/Lumorah-back/internal/jobs"
	"github.com/KevinHdezVaz/Lumorah-back/internal/logger"
	"github.com/KevinHdezVaz/Lumorah-back/internal/services"
	"github.com/KevinHdezVaz/Lumorah-back/internal/websocket"
)

func main() {
	// Missing .env is fine; production uses real env vars.
	_ = godotenv.Load()

	cfg := config.Load()

	logger.Init(logger.Config{
		Level:  getEnvOrDefault("LOG_LEVEL", "info"),
		Pretty: cfg.IsDevelopment(),
	})

	log := logger.Get()
	log.Info().
		Str("env", cfg.Env).
		Msg("starting lumorah backend")

	validateConfig(cfg, log)

	db, err := database.Connect(cfg.DatabaseURL)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to database")
	}
	log.Info().Msg("connected to postgres")

	if err := database.Migrate(db); err != nil {
		log.Fatal().Err(err).Msg("failed to run migrations")
	}

	var redisClient *redis.Client
	if cfg.RedisURL != "" {
		redisClient = database.ConnectRedis(cfg.RedisURL)
		if redisClient != nil {
			log.Info().Msg("connected to redis")
		} else {
			log.Warn().Msg("redis unavailable, rate limiting disabled")
		}
	}

	wsHub := websocket.NewHub()
	go wsHub.Run()

	svc := services.NewContainer(cfg, db, redisClient, wsHub)

	scheduler := jobs.NewScheduler(svc.Rewards, svc.Auth)
	if err := scheduler.Start(); err != nil {
		log.Fatal().Err(err).Msg("failed to start scheduler")
	}

	checker := health.NewChecker(db, redisClient)
	server := api.NewServer(svc, checker)

	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      server.Handler(),
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	go func() {
		log.Info().Str("addr", srv.Addr).Msg("http server listening")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("http server failed")
		}
	}()

	checker.SetReady(true)
	log.Info().Msg("service is ready")

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit

	log.Info().Str("signal", sig.String()).Msg("shutting down")
	checker.SetReady(false)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Error().Err(err).Msg("server shutdown error")
	}

	scheduler.Stop()

	if sqlDB, err := db.DB(); err == nil {
		if err := sqlDB.Close(); err != nil {
			log.Error().Err(err).Msg("database close error")
		}
	}

	if redisClient != nil {
		if err := redisClient.Close(); err != nil {
			log.Error().Err(err).Msg("redis close error")
		}
	}

	log.Info().Msg("shutdown complete")
}

func validateConfig(cfg *config.Config, log *zerolog.Logger) {
	var problems []string

	if cfg.DatabaseURL == "" {
		problems = append(problems, "DATABASE_URL is required")
	}

	if cfg.JWTSecret == "" || cfg.JWTSecret == "change-me-in-production" {
		if cfg.IsDevelopment() {
			log.Warn().Msg("using default JWT_SECRET, not safe for production")
		} else {
			problems = append(problems, "JWT_SECRET must be set in production")
		}
	}

	if cfg.OpenAIKey == "" {
		if cfg.IsDevelopment() {
			log.Warn().Msg("OPENAI_API_KEY not set, chat replies fall back to canned messages")
		} else {
			problems = append(problems, "OPENAI_API_KEY must be set in production")
		}
	}

	if cfg.GoogleClientID == "" {
		log.Warn().Msg("GOOGLE_CLIENT_ID not set, google login disabled")
	}
	if cfg.FacebookAppID == "" {
		log.Warn().Msg("FACEBOOK_APP_ID not set, facebook login disabled")
	}

	if len(problems) > 0 {
		for _, p := range problems {
			log.Error().Msg(p)
		}
		log.Fatal().Msg("configuration validation failed")
	}
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
