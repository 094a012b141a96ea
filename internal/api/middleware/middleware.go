package middleware

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/KevinHdezVaz/Lumorah-back/internal/auth"
	"github.com/KevinHdezVaz/Lumorah-back/internal/models"
)

// AdminCookieName is the session cookie set by admin login.
const AdminCookieName = "lumorah_admin"

// Auth returns a Gin middleware validating opaque bearer tokens.
func Auth(authService *auth.AuthService) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := bearerToken(c)
		if token == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"success": false,
				"error":   "authorization required",
			})
			return
		}

		user, err := authService.Authenticate(c.Request.Context(), token)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"success": false,
				"error":   "invalid or expired token",
			})
			return
		}

		c.Set("user", user)
		c.Set("user_id", user.ID)
		c.Next()
	}
}

// AdminAuth validates the admin session cookie.
func AdminAuth(authService *auth.AuthService) gin.HandlerFunc {
	return func(c *gin.Context) {
		cookie, err := c.Cookie(AdminCookieName)
		if err != nil || cookie == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"success": false,
				"error":   "admin session required",
			})
			return
		}

		claims, err := authService.ValidateAdminSession(cookie)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"success": false,
				"error":   "invalid or expired admin session",
			})
			return
		}

		c.Set("admin_id", claims.UserID)
		c.Next()
	}
}

// RateLimit limits requests by client IP.
func RateLimit(limiter *auth.RateLimiter, config auth.RateLimitConfig) gin.HandlerFunc {
	return func(c *gin.Context) {
		result, err := limiter.CheckIP(c.Request.Context(), c.ClientIP(), config)
		if err != nil {
			// Limiter failure must not take the API down
			c.Next()
			return
		}

		c.Header("X-RateLimit-Limit", fmt.Sprintf("%d", result.Limit))
		c.Header("X-RateLimit-Remaining", fmt.Sprintf("%d", result.Remaining))

		if !result.Allowed {
			c.Header("Retry-After", fmt.Sprintf("%d", int(result.RetryAfter.Seconds())))
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
				"success":     false,
				"error":       "rate limit exceeded",
				"retry_after": result.RetryAfter.Seconds(),
			})
			return
		}

		c.Next()
	}
}

// UserRateLimit limits requests per authenticated user, falling back to IP.
func UserRateLimit(limiter *auth.RateLimiter, config auth.RateLimitConfig) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := GetUserID(c)
		if !ok {
			RateLimit(limiter, config)(c)
			return
		}

		result, err := limiter.CheckUser(c.Request.Context(), userID.String(), config)
		if err != nil {
			c.Next()
			return
		}

		if !result.Allowed {
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
				"success":     false,
				"error":       "rate limit exceeded",
				"retry_after": result.RetryAfter.Seconds(),
			})
			return
		}

		c.Next()
	}
}

// CORS applies the configured allowed origin.
func CORS(origin string) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("Access-Control-Allow-Origin", origin)
		c.Header("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		c.Header("Access-Control-Allow-Headers", "Authorization, Content-Type, X-Request-ID")
		c.Header("Access-Control-Allow-Credentials", "true")

		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	}
}

// GetUser extracts the authenticated user from the gin context.
func GetUser(c *gin.Context) (*models.User, bool) {
	v, exists := c.Get("user")
	if !exists {
		return nil, false
	}
	user, ok := v.(*models.User)
	return user, ok
}

// GetUserID extracts the authenticated user ID from the gin context.
func GetUserID(c *gin.Context) (uuid.UUID, bool) {
	v, exists := c.Get("user_id")
	if !exists {
		return uuid.Nil, false
	}
	id, ok := v.(uuid.UUID)
	return id, ok
}

func bearerToken(c *gin.Context) string {
	header := c.GetHeader("Authorization")
	if header != "" {
		parts := strings.SplitN(header, " ", 2)
		if len(parts) == 2 && strings.EqualFold(parts[0], "Bearer") {
			return parts[1]
		}
		return ""
	}
	// Websocket clients cannot set headers, so the upgrade route may pass
	// the token as a query parameter. Other routes must not, because query
	// strings end up in access logs.
	if strings.HasSuffix(c.FullPath(), "/ws") {
		return c.Query("token")
	}
	return ""
}
