package database

import (
	"context"
	"log"

	"github.com/go-redis/redis/v8"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/KevinHdezVaz/Lumorah-back/internal/auth"
	"github.com/KevinHdezVaz/Lumorah-back/internal/models"
)

func Connect(databaseURL string) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.Open(databaseURL), &gorm.Config{
		Logger:         gormlogger.Default.LogMode(gormlogger.Warn),
		TranslateError: true,
	})
	if err != nil {
		return nil, err
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}

	// Connection pool settings
	sqlDB.SetMaxIdleConns(10)
	sqlDB.SetMaxOpenConns(100)

	return db, nil
}

func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		// Accounts and credentials
		&models.User{},
		&auth.AccessToken{},

		// Chat
		&models.ChatSession{},
		&models.Message{},

		// Loyalty
		&models.Promocion{},
		&models.Ticket{},
		&models.Premio{},
		&models.CanjePremio{},
		&models.TransaccionPuntos{},
	)
}

func ConnectRedis(redisURL string) *redis.Client {
	opt, err := redis.ParseURL(redisURL)
	if err != nil {
		log.Printf("invalid Redis URL, using default: %v", err)
		opt = &redis.Options{Addr: "localhost:6379"}
	}

	client := redis.NewClient(opt)

	// Redis only backs rate limiting; run without it rather than fail.
	if err := client.Ping(context.Background()).Err(); err != nil {
		log.Printf("Redis connection failed, continuing without it: %v", err)
		client.Close()
		return nil
	}

	return client
}
