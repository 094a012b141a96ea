package services

import (
	"github.com/go-redis/redis/v8"
	"gorm.io/gorm"

	"github.com/KevinHdezVaz/Lumorah-back/internal/auth"
	"github.com/KevinHdezVaz/Lumorah-back/internal/config"
	"github.com/KevinHdezVaz/Lumorah-back/internal/storage"
	"github.com/KevinHdezVaz/Lumorah-back/internal/websocket"
)

// Container holds all service instances
type Container struct {
	Config *config.Config
	DB     *gorm.DB
	Redis  *redis.Client
	WSHub  *websocket.Hub

	Auth        *auth.AuthService
	Google      auth.GoogleVerifier
	Facebook    auth.FacebookVerifier
	Chat        *ChatService
	Completions CompletionClient
	Rewards     *RewardsService
	Images      *storage.ImageStore
	RateLimiter *auth.RateLimiter
}

func NewContainer(cfg *config.Config, db *gorm.DB, redisClient *redis.Client, wsHub *websocket.Hub) *Container {
	images := storage.NewImageStore(cfg.ImageStoragePath)
	completions := NewCompletionService(cfg)

	c := &Container{
		Config: cfg,
		DB:     db,
		Redis:  redisClient,
		WSHub:  wsHub,
		Images: images,
	}

	c.RateLimiter = auth.NewRateLimiter(redisClient)
	c.Auth = auth.NewAuthService(db, cfg.JWTSecret)
	if cfg.GoogleClientID != "" {
		c.Google = auth.NewGoogleVerifier(cfg.GoogleClientID)
	}
	if cfg.FacebookAppID != "" {
		c.Facebook = auth.NewFacebookVerifier(cfg.FacebookAppID, cfg.FacebookAppSecret)
	}

	c.Completions = completions
	c.Chat = NewChatService(db, completions)

	var notifier PointsNotifier
	if wsHub != nil {
		notifier = wsHub
	}
	c.Rewards = NewRewardsService(db, images, notifier)

	return c
}
