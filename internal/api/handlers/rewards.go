package handlers

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/KevinHdezVaz/Lumorah-back/internal/api/middleware"
	"github.com/KevinHdezVaz/Lumorah-back/internal/models"
	"github.com/KevinHdezVaz/Lumorah-back/internal/services"
	"github.com/KevinHdezVaz/Lumorah-back/internal/storage"
)

type RewardsHandler struct {
	services *services.Container
}

func NewRewardsHandler(s *services.Container) *RewardsHandler {
	return &RewardsHandler{services: s}
}

func (h *RewardsHandler) ListPromociones(c *gin.Context) {
	promos, err := h.services.Rewards.ListPromociones(c.Request.Context())
	if err != nil {
		internalError(c, err, "list promotions failed")
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "promociones": promos})
}

func (h *RewardsHandler) CreatePromocion(c *gin.Context) {
	var req services.CreatePromocionRequest
	if err := c.ShouldBind(&req); err != nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"success": false, "error": err.Error()})
		return
	}

	imagen, ok := h.saveImage(c, "promociones")
	if !ok {
		return
	}

	promo, err := h.services.Rewards.CreatePromocion(c.Request.Context(), &req, imagen)
	if err != nil {
		if errors.Is(err, services.ErrFechasInvalidas) {
			c.JSON(http.StatusUnprocessableEntity, gin.H{"success": false, "error": "fecha_fin must be after fecha_inicio"})
			return
		}
		internalError(c, err, "create promotion failed")
		return
	}

	c.JSON(http.StatusCreated, gin.H{"success": true, "promocion": promo})
}

func (h *RewardsHandler) DeletePromocion(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"success": false, "error": "invalid promotion id"})
		return
	}

	if err := h.services.Rewards.DeletePromocion(c.Request.Context(), id); err != nil {
		if errors.Is(err, services.ErrPromocionNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"success": false, "error": "promotion not found"})
			return
		}
		internalError(c, err, "delete promotion failed")
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "message": "promotion deleted"})
}

func (h *RewardsHandler) ListPremios(c *gin.Context) {
	premios, err := h.services.Rewards.ListPremios(c.Request.Context())
	if err != nil {
		internalError(c, err, "list prizes failed")
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "premios": premios})
}

func (h *RewardsHandler) CreatePremio(c *gin.Context) {
	var req services.CreatePremioRequest
	if err := c.ShouldBind(&req); err != nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"success": false, "error": err.Error()})
		return
	}

	imagen, ok := h.saveImage(c, "premios")
	if !ok {
		return
	}

	premio, err := h.services.Rewards.CreatePremio(c.Request.Context(), &req, imagen)
	if err != nil {
		internalError(c, err, "create prize failed")
		return
	}

	c.JSON(http.StatusCreated, gin.H{"success": true, "premio": premio})
}

func (h *RewardsHandler) DeletePremio(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"success": false, "error": "invalid prize id"})
		return
	}

	if err := h.services.Rewards.DeletePremio(c.Request.Context(), id); err != nil {
		if errors.Is(err, services.ErrPremioNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"success": false, "error": "prize not found"})
			return
		}
		internalError(c, err, "delete prize failed")
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "message": "prize deleted"})
}

func (h *RewardsHandler) SubmitTicket(c *gin.Context) {
	user, ok := middleware.GetUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"success": false, "error": "authorization required"})
		return
	}

	var req services.SubmitTicketRequest
	if err := c.ShouldBind(&req); err != nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"success": false, "error": err.Error()})
		return
	}

	imagen, ok := h.saveImage(c, "tickets")
	if !ok {
		return
	}

	ticket, err := h.services.Rewards.SubmitTicket(c.Request.Context(), user.ID, &req, imagen)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrPromocionNotFound):
			c.JSON(http.StatusNotFound, gin.H{"success": false, "error": "promotion not found"})
		case errors.Is(err, services.ErrPromocionInactiva):
			c.JSON(http.StatusUnprocessableEntity, gin.H{"success": false, "error": "promotion is not active"})
		default:
			internalError(c, err, "submit ticket failed")
		}
		return
	}

	c.JSON(http.StatusCreated, gin.H{"success": true, "ticket": ticket})
}

func (h *RewardsHandler) ListTickets(c *gin.Context) {
	user, ok := middleware.GetUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"success": false, "error": "authorization required"})
		return
	}

	tickets, err := h.services.Rewards.ListTickets(c.Request.Context(), user.ID)
	if err != nil {
		internalError(c, err, "list tickets failed")
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "tickets": tickets})
}

func (h *RewardsHandler) ListTicketsAdmin(c *gin.Context) {
	tickets, err := h.services.Rewards.ListTicketsAdmin(c.Request.Context(), c.Query("estado"))
	if err != nil {
		internalError(c, err, "list tickets failed")
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "tickets": tickets})
}

func (h *RewardsHandler) ApproveTicket(c *gin.Context) {
	h.resolveTicket(c, h.services.Rewards.ApproveTicket)
}

func (h *RewardsHandler) RejectTicket(c *gin.Context) {
	h.resolveTicket(c, h.services.Rewards.RejectTicket)
}

func (h *RewardsHandler) RedeemPremio(c *gin.Context) {
	user, ok := middleware.GetUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"success": false, "error": "authorization required"})
		return
	}

	premioID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"success": false, "error": "invalid prize id"})
		return
	}

	canje, err := h.services.Rewards.RedeemPremio(c.Request.Context(), user.ID, premioID)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrPremioNotFound):
			c.JSON(http.StatusNotFound, gin.H{"success": false, "error": "prize not found"})
		case errors.Is(err, services.ErrPremioNoDisponible):
			c.JSON(http.StatusUnprocessableEntity, gin.H{"success": false, "error": "prize is not available"})
		case errors.Is(err, services.ErrSinStock):
			c.JSON(http.StatusUnprocessableEntity, gin.H{"success": false, "error": "prize is out of stock"})
		case errors.Is(err, services.ErrPuntosInsuficientes):
			c.JSON(http.StatusUnprocessableEntity, gin.H{"success": false, "error": "insufficient points"})
		default:
			internalError(c, err, "redeem prize failed")
		}
		return
	}

	c.JSON(http.StatusCreated, gin.H{"success": true, "canje": canje})
}

func (h *RewardsHandler) GetBalance(c *gin.Context) {
	user, ok := middleware.GetUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"success": false, "error": "authorization required"})
		return
	}

	balance, err := h.services.Rewards.GetBalance(c.Request.Context(), user.ID)
	if err != nil {
		internalError(c, err, "get balance failed")
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "balance": balance})
}

func (h *RewardsHandler) resolveTicket(c *gin.Context, resolve func(ctx context.Context, id uuid.UUID) (*models.Ticket, error)) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"success": false, "error": "invalid ticket id"})
		return
	}

	ticket, err := resolve(c.Request.Context(), id)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrTicketNotFound):
			c.JSON(http.StatusNotFound, gin.H{"success": false, "error": "ticket not found"})
		case errors.Is(err, services.ErrTicketYaResuelto):
			c.JSON(http.StatusUnprocessableEntity, gin.H{"success": false, "error": "ticket already resolved"})
		default:
			internalError(c, err, "resolve ticket failed")
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "ticket": ticket})
}

// saveImage stores an optional "imagen" multipart file. A missing file is
// fine; an unsupported type aborts the request.
func (h *RewardsHandler) saveImage(c *gin.Context, collection string) (string, bool) {
	file, err := c.FormFile("imagen")
	if err != nil {
		return "", true
	}

	path, err := h.services.Images.Save(c, file, collection)
	if err != nil {
		if errors.Is(err, storage.ErrUnsupportedImageType) {
			c.JSON(http.StatusUnprocessableEntity, gin.H{"success": false, "error": "unsupported image type"})
			return "", false
		}
		internalError(c, err, "store image failed")
		return "", false
	}

	return path, true
}
