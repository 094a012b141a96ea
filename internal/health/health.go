package health

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	"gorm.io/gorm"
)

// Checker answers liveness and readiness probes.
type Checker struct {
	db          *gorm.DB
	redis       *redis.Client
	isReady     bool
	readyMu     sync.RWMutex
	startupTime time.Time
}

func NewChecker(db *gorm.DB, redisClient *redis.Client) *Checker {
	return &Checker{
		db:          db,
		redis:       redisClient,
		startupTime: time.Now(),
	}
}

// SetReady marks the service as ready to accept traffic.
func (c *Checker) SetReady(ready bool) {
	c.readyMu.Lock()
	defer c.readyMu.Unlock()
	c.isReady = ready
}

func (c *Checker) IsReady() bool {
	c.readyMu.RLock()
	defer c.readyMu.RUnlock()
	return c.isReady
}

// Check is the result of probing one dependency.
type Check struct {
	Status   string `json:"status"`
	Message  string `json:"message,omitempty"`
	Duration string `json:"duration,omitempty"`
}

// Health handles the liveness probe.
func (c *Checker) Health(ctx *gin.Context) {
	ctx.JSON(http.StatusOK, gin.H{
		"status":    "alive",
		"uptime":    time.Since(c.startupTime).Round(time.Second).String(),
		"timestamp": time.Now().UTC(),
	})
}

// Ready handles the readiness probe, checking the database and Redis.
func (c *Checker) Ready(ctx *gin.Context) {
	if !c.IsReady() {
		ctx.JSON(http.StatusServiceUnavailable, gin.H{
			"status":  "not_ready",
			"message": "service is starting up",
		})
		return
	}

	checks := map[string]Check{
		"database": c.checkDatabase(),
		"redis":    c.checkRedis(),
	}

	status := "ready"
	code := http.StatusOK
	for _, check := range checks {
		if check.Status == "unhealthy" {
			status = "degraded"
			code = http.StatusServiceUnavailable
		}
	}

	ctx.JSON(code, gin.H{
		"status":    status,
		"timestamp": time.Now().UTC(),
		"checks":    checks,
	})
}

func (c *Checker) checkDatabase() Check {
	if c.db == nil {
		return Check{Status: "unhealthy", Message: "not configured"}
	}

	start := time.Now()
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	sqlDB, err := c.db.DB()
	if err != nil {
		return Check{Status: "unhealthy", Message: err.Error()}
	}
	if err := sqlDB.PingContext(ctx); err != nil {
		return Check{Status: "unhealthy", Message: err.Error()}
	}

	return Check{Status: "healthy", Duration: time.Since(start).String()}
}

func (c *Checker) checkRedis() Check {
	// Redis is optional; absence only disables rate limiting.
	if c.redis == nil {
		return Check{Status: "healthy", Message: "not configured"}
	}

	start := time.Now()
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	if err := c.redis.Ping(ctx).Err(); err != nil {
		return Check{Status: "unhealthy", Message: err.Error()}
	}

	return Check{Status: "healthy", Duration: time.Since(start).String()}
}
