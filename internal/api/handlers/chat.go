package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/KevinHdezVaz/Lumorah-back/internal/api/middleware"
	"github.com/KevinHdezVaz/Lumorah-back/internal/services"
)

type ChatHandler struct {
	services *services.Container
}

func NewChatHandler(s *services.Container) *ChatHandler {
	return &ChatHandler{services: s}
}

// SendMessage runs one persisted conversational turn.
func (h *ChatHandler) SendMessage(c *gin.Context) {
	h.sendMessage(c, false)
}

// SendTemporaryMessage runs a turn that leaves no stored rows.
func (h *ChatHandler) SendTemporaryMessage(c *gin.Context) {
	h.sendMessage(c, true)
}

func (h *ChatHandler) sendMessage(c *gin.Context, temporary bool) {
	user, ok := middleware.GetUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"success": false, "error": "authorization required"})
		return
	}

	var req services.SendMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"success": false, "error": err.Error()})
		return
	}
	if temporary {
		req.IsTemporary = true
	}

	result, err := h.services.Chat.SendMessage(c.Request.Context(), user, &req)
	if err != nil {
		if errors.Is(err, services.ErrSessionNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"success": false, "error": "session not found"})
			return
		}
		internalError(c, err, "send message failed")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":    true,
		"ai_message": result.AIMessage,
		"session_id": result.SessionID,
	})
}

func (h *ChatHandler) ListSessions(c *gin.Context) {
	user, ok := middleware.GetUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"success": false, "error": "authorization required"})
		return
	}

	savedOnly := c.Query("saved") == "true" || c.Query("saved") == "1"

	sessions, err := h.services.Chat.GetSessions(c.Request.Context(), user.ID, savedOnly)
	if err != nil {
		internalError(c, err, "list sessions failed")
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "sessions": sessions})
}

func (h *ChatHandler) GetSessionMessages(c *gin.Context) {
	user, ok := middleware.GetUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"success": false, "error": "authorization required"})
		return
	}

	sessionID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"success": false, "error": "invalid session id"})
		return
	}

	messages, err := h.services.Chat.GetSessionMessages(c.Request.Context(), user.ID, sessionID)
	if err != nil {
		if errors.Is(err, services.ErrSessionNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"success": false, "error": "session not found"})
			return
		}
		internalError(c, err, "get session messages failed")
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "messages": messages})
}

func (h *ChatHandler) SaveSession(c *gin.Context) {
	user, ok := middleware.GetUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"success": false, "error": "authorization required"})
		return
	}

	var req services.SaveSessionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"success": false, "error": err.Error()})
		return
	}

	session, err := h.services.Chat.SaveSession(c.Request.Context(), user.ID, &req)
	if err != nil {
		if errors.Is(err, services.ErrSessionNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"success": false, "error": "session not found"})
			return
		}
		internalError(c, err, "save session failed")
		return
	}

	c.JSON(http.StatusCreated, gin.H{"success": true, "session": session})
}

func (h *ChatHandler) DeleteSession(c *gin.Context) {
	user, ok := middleware.GetUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"success": false, "error": "authorization required"})
		return
	}

	sessionID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"success": false, "error": "invalid session id"})
		return
	}

	if err := h.services.Chat.DeleteSession(c.Request.Context(), user.ID, sessionID); err != nil {
		if errors.Is(err, services.ErrSessionNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"success": false, "error": "session not found"})
			return
		}
		internalError(c, err, "delete session failed")
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "message": "session deleted"})
}

type startSessionRequest struct {
	Language string `json:"language"`
}

// StartSession returns the localized welcome message without touching the
// database. The session row is only created on the first real turn.
func (h *ChatHandler) StartSession(c *gin.Context) {
	user, ok := middleware.GetUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"success": false, "error": "authorization required"})
		return
	}

	// Body is optional; clients may just POST with no payload.
	var req startSessionRequest
	_ = c.ShouldBindJSON(&req)

	welcome := h.services.Chat.StartSession(user, req.Language)

	c.JSON(http.StatusOK, gin.H{"success": true, "ai_message": welcome})
}

type summarizeRequest struct {
	Messages []services.SavedMessage `json:"messages" binding:"required"`
	Language string                  `json:"language"`
}

func (h *ChatHandler) Summarize(c *gin.Context) {
	user, ok := middleware.GetUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"success": false, "error": "authorization required"})
		return
	}

	var req summarizeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"success": false, "error": err.Error()})
		return
	}

	summary := h.services.Chat.Summarize(c.Request.Context(), user, req.Messages, req.Language)

	c.JSON(http.StatusOK, gin.H{"success": true, "summary": summary})
}

// ServeWs upgrades the connection for push notifications.
func (h *ChatHandler) ServeWs(c *gin.Context) {
	user, ok := middleware.GetUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"success": false, "error": "authorization required"})
		return
	}
	if h.services.WSHub == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"success": false, "error": "websocket unavailable"})
		return
	}

	h.services.WSHub.ServeWs(c.Writer, c.Request, user.ID)
}
