package handlers

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/KevinHdezVaz/Lumorah-back/internal/api/middleware"
	"github.com/KevinHdezVaz/Lumorah-back/internal/auth"
	"github.com/KevinHdezVaz/Lumorah-back/internal/logger"
	"github.com/KevinHdezVaz/Lumorah-back/internal/lumorah"
	"github.com/KevinHdezVaz/Lumorah-back/internal/services"
)

type AuthHandler struct {
	services *services.Container
}

func NewAuthHandler(s *services.Container) *AuthHandler {
	return &AuthHandler{services: s}
}

func (h *AuthHandler) Register(c *gin.Context) {
	var req auth.RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"success": false, "error": err.Error()})
		return
	}

	resp, err := h.services.Auth.Register(c.Request.Context(), &req, c.ClientIP(), c.Request.UserAgent())
	if err != nil {
		if errors.Is(err, auth.ErrEmailExists) {
			c.JSON(http.StatusUnprocessableEntity, gin.H{"success": false, "error": "email already registered"})
			return
		}
		internalError(c, err, "register failed")
		return
	}

	c.JSON(http.StatusCreated, gin.H{"success": true, "user": resp.User, "token": resp.Token})
}

func (h *AuthHandler) Login(c *gin.Context) {
	var req auth.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"success": false, "error": err.Error()})
		return
	}

	resp, err := h.services.Auth.Login(c.Request.Context(), &req, c.ClientIP(), c.Request.UserAgent())
	if err != nil {
		if errors.Is(err, auth.ErrInvalidCredentials) {
			c.JSON(http.StatusUnauthorized, gin.H{"success": false, "error": "invalid credentials"})
			return
		}
		internalError(c, err, "login failed")
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "user": resp.User, "token": resp.Token})
}

type federatedRequest struct {
	Token string `json:"token" binding:"required"`
}

func (h *AuthHandler) GoogleLogin(c *gin.Context) {
	if h.services.Google == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"success": false, "error": "google login not configured"})
		return
	}
	h.federatedLogin(c, h.services.Google.Verify)
}

func (h *AuthHandler) FacebookLogin(c *gin.Context) {
	if h.services.Facebook == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"success": false, "error": "facebook login not configured"})
		return
	}
	h.federatedLogin(c, h.services.Facebook.Verify)
}

func (h *AuthHandler) federatedLogin(c *gin.Context, verify func(context.Context, string) (*auth.Identity, error)) {
	var req federatedRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"success": false, "error": err.Error()})
		return
	}

	identity, err := verify(c.Request.Context(), req.Token)
	if err != nil {
		log := logger.FromContext(c.Request.Context())
		log.Warn().Err(err).Msg("federated token rejected")
		c.JSON(http.StatusUnauthorized, gin.H{"success": false, "error": "invalid provider token"})
		return
	}

	resp, err := h.services.Auth.FederatedLogin(c.Request.Context(), identity, c.ClientIP(), c.Request.UserAgent())
	if err != nil {
		internalError(c, err, "federated login failed")
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "user": resp.User, "token": resp.Token})
}

func (h *AuthHandler) Logout(c *gin.Context) {
	token := bearerToken(c)
	if err := h.services.Auth.Logout(c.Request.Context(), token); err != nil {
		if errors.Is(err, auth.ErrInvalidToken) {
			c.JSON(http.StatusUnauthorized, gin.H{"success": false, "error": "invalid or expired token"})
			return
		}
		internalError(c, err, "logout failed")
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "message": "logged out"})
}

func (h *AuthHandler) Profile(c *gin.Context) {
	user, ok := middleware.GetUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"success": false, "error": "authorization required"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "user": user})
}

type updateNameRequest struct {
	Name     string `json:"name" binding:"required,max=100"`
	Language string `json:"language"`
}

func (h *AuthHandler) UpdateName(c *gin.Context) {
	user, ok := middleware.GetUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"success": false, "error": "authorization required"})
		return
	}

	var req updateNameRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"success": false, "error": err.Error()})
		return
	}

	updated, err := h.services.Auth.UpdateName(c.Request.Context(), user.ID, req.Name)
	if err != nil {
		internalError(c, err, "update name failed")
		return
	}

	lang := lumorah.ParseLanguage(req.Language)
	if req.Language == "" {
		lang = lumorah.ParseLanguage(updated.Language)
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"user":    updated,
		"message": lumorah.NameUpdatedMessage(lang, updated.Name),
	})
}

func (h *AuthHandler) AdminLogin(c *gin.Context) {
	var req auth.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"success": false, "error": err.Error()})
		return
	}

	session, user, err := h.services.Auth.AdminLogin(c.Request.Context(), &req)
	if err != nil {
		if errors.Is(err, auth.ErrInvalidCredentials) || errors.Is(err, auth.ErrNotAdmin) {
			c.JSON(http.StatusUnauthorized, gin.H{"success": false, "error": "invalid credentials"})
			return
		}
		internalError(c, err, "admin login failed")
		return
	}

	secure := !h.services.Config.IsDevelopment()
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(middleware.AdminCookieName, session, 12*3600, "/", "", secure, true)

	c.JSON(http.StatusOK, gin.H{"success": true, "user": user})
}

func (h *AuthHandler) AdminLogout(c *gin.Context) {
	secure := !h.services.Config.IsDevelopment()
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(middleware.AdminCookieName, "", -1, "/", "", secure, true)

	c.JSON(http.StatusOK, gin.H{"success": true, "message": "logged out"})
}

func internalError(c *gin.Context, err error, msg string) {
	log := logger.FromContext(c.Request.Context())
	log.Error().Err(err).Msg(msg)
	c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": "internal server error"})
}

func bearerToken(c *gin.Context) string {
	header := c.GetHeader("Authorization")
	if len(header) > 7 && header[:7] == "Bearer " {
		return header[7:]
	}
	return ""
}
