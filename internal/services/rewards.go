package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/KevinHdezVaz/Lumorah-back/internal/auth"
	"github.com/KevinHdezVaz/Lumorah-back/internal/models"
	"github.com/KevinHdezVaz/Lumorah-back/internal/storage"
)

var (
	ErrPromocionNotFound   = errors.New("promotion not found")
	ErrPremioNotFound      = errors.New("prize not found")
	ErrTicketNotFound      = errors.New("ticket not found")
	ErrFechasInvalidas     = errors.New("fecha_fin must be after fecha_inicio")
	ErrPromocionInactiva   = errors.New("promotion is not active")
	ErrTicketYaResuelto    = errors.New("ticket already resolved")
	ErrPremioNoDisponible  = errors.New("prize is not available")
	ErrSinStock            = errors.New("prize is out of stock")
	ErrPuntosInsuficientes = errors.New("insufficient points balance")
)

// PointsNotifier pushes balance changes to connected clients. It may be
// nil when no push transport is configured.
type PointsNotifier interface {
	NotifyPoints(userID uuid.UUID, balance int, reason string)
}

// RewardsService owns the loyalty module: admin-authored promotions and
// prizes, user tickets, redemptions, and the append-only points ledger.
type RewardsService struct {
	db       *gorm.DB
	images   *storage.ImageStore
	notifier PointsNotifier
}

func NewRewardsService(db *gorm.DB, images *storage.ImageStore, notifier PointsNotifier) *RewardsService {
	return &RewardsService{db: db, images: images, notifier: notifier}
}

type CreatePromocionRequest struct {
	Titulo          string    `form:"titulo" binding:"required,max=255"`
	Descripcion     string    `form:"descripcion"`
	FechaInicio     time.Time `form:"fecha_inicio" time_format:"2006-01-02" binding:"required"`
	FechaFin        time.Time `form:"fecha_fin" time_format:"2006-01-02" binding:"required"`
	PuntosPorTicket int       `form:"puntos_por_ticket" binding:"required,min=1"`
	MontoMinimo     *float64  `form:"monto_minimo" binding:"omitempty,min=0"`
	Estado          string    `form:"estado" binding:"required,oneof=activa inactiva expirada"`
}

func (s *RewardsService) ListPromociones(ctx context.Context) ([]models.Promocion, error) {
	var promos []models.Promocion
	err := s.db.WithContext(ctx).Order("created_at DESC").Find(&promos).Error
	return promos, err
}

func (s *RewardsService) CreatePromocion(ctx context.Context, req *CreatePromocionRequest, imagen string) (*models.Promocion, error) {
	if !req.FechaFin.After(req.FechaInicio) {
		return nil, ErrFechasInvalidas
	}

	promo := &models.Promocion{
		ID:              uuid.New(),
		Titulo:          req.Titulo,
		Descripcion:     req.Descripcion,
		FechaInicio:     req.FechaInicio,
		FechaFin:        req.FechaFin,
		PuntosPorTicket: req.PuntosPorTicket,
		MontoMinimo:     req.MontoMinimo,
		Estado:          req.Estado,
		Imagen:          imagen,
	}
	if err := s.db.WithContext(ctx).Create(promo).Error; err != nil {
		return nil, err
	}
	return promo, nil
}

// DeletePromocion removes the record and its stored image.
func (s *RewardsService) DeletePromocion(ctx context.Context, id uuid.UUID) error {
	var promo models.Promocion
	if err := s.db.WithContext(ctx).First(&promo, "id = ?", id).Error; err != nil {
		return ErrPromocionNotFound
	}
	if err := s.db.WithContext(ctx).Delete(&promo).Error; err != nil {
		return err
	}
	return s.images.Delete(promo.Imagen)
}

// ExpirePromociones marks active promotions whose window has closed. Run
// from the scheduler.
func (s *RewardsService) ExpirePromociones(ctx context.Context) (int64, error) {
	result := s.db.WithContext(ctx).Model(&models.Promocion{}).
		Where("estado = ? AND fecha_fin < ?", models.PromocionActiva, time.Now()).
		Update("estado", models.PromocionExpirada)
	return result.RowsAffected, result.Error
}

type CreatePremioRequest struct {
	Titulo           string `form:"titulo" binding:"required,max=255"`
	Descripcion      string `form:"descripcion"`
	PuntosRequeridos int    `form:"puntos_requeridos" binding:"required,min=1"`
	Stock            *int   `form:"stock" binding:"omitempty,min=0"`
	Estado           string `form:"estado" binding:"required,oneof=activo inactivo sin_stock"`
}

func (s *RewardsService) ListPremios(ctx context.Context) ([]models.Premio, error) {
	var premios []models.Premio
	err := s.db.WithContext(ctx).Order("created_at DESC").Find(&premios).Error
	return premios, err
}

func (s *RewardsService) CreatePremio(ctx context.Context, req *CreatePremioRequest, imagen string) (*models.Premio, error) {
	estado := req.Estado
	if req.Stock != nil && *req.Stock == 0 {
		estado = models.PremioSinStock
	}

	premio := &models.Premio{
		ID:               uuid.New(),
		Titulo:           req.Titulo,
		Descripcion:      req.Descripcion,
		PuntosRequeridos: req.PuntosRequeridos,
		Stock:            req.Stock,
		Estado:           estado,
		Imagen:           imagen,
	}
	if err := s.db.WithContext(ctx).Create(premio).Error; err != nil {
		return nil, err
	}
	return premio, nil
}

func (s *RewardsService) DeletePremio(ctx context.Context, id uuid.UUID) error {
	var premio models.Premio
	if err := s.db.WithContext(ctx).First(&premio, "id = ?", id).Error; err != nil {
		return ErrPremioNotFound
	}
	if err := s.db.WithContext(ctx).Delete(&premio).Error; err != nil {
		return err
	}
	return s.images.Delete(premio.Imagen)
}

type SubmitTicketRequest struct {
	PromocionID  uuid.UUID `form:"promocion_id" binding:"required"`
	NumeroTicket string    `form:"numero_ticket" binding:"required,max=100"`
	Monto        float64   `form:"monto" binding:"required,gt=0"`
}

// SubmitTicket registers a scanned purchase ticket against an active
// promotion. Points are only assigned on admin approval.
func (s *RewardsService) SubmitTicket(ctx context.Context, userID uuid.UUID, req *SubmitTicketRequest, imagen string) (*models.Ticket, error) {
	var promo models.Promocion
	if err := s.db.WithContext(ctx).First(&promo, "id = ?", req.PromocionID).Error; err != nil {
		return nil, ErrPromocionNotFound
	}
	now := time.Now()
	if promo.Estado != models.PromocionActiva || now.Before(promo.FechaInicio) || now.After(promo.FechaFin) {
		return nil, ErrPromocionInactiva
	}

	promoID := promo.ID
	ticket := &models.Ticket{
		ID:              uuid.New(),
		UsuarioID:       userID,
		PromocionID:     &promoID,
		NumeroTicket:    req.NumeroTicket,
		Monto:           req.Monto,
		ImagenEscaneada: imagen,
		Estado:          models.TicketPendiente,
		EscaneadoEn:     now,
	}
	if err := s.db.WithContext(ctx).Create(ticket).Error; err != nil {
		return nil, err
	}
	return ticket, nil
}

func (s *RewardsService) ListTickets(ctx context.Context, userID uuid.UUID) ([]models.Ticket, error) {
	var tickets []models.Ticket
	err := s.db.WithContext(ctx).
		Where("usuario_id = ?", userID).
		Order("created_at DESC").
		Find(&tickets).Error
	return tickets, err
}

func (s *RewardsService) ListTicketsAdmin(ctx context.Context, estado string) ([]models.Ticket, error) {
	query := s.db.WithContext(ctx).Order("created_at ASC")
	if estado != "" {
		query = query.Where("estado = ?", estado)
	}
	var tickets []models.Ticket
	err := query.Find(&tickets).Error
	return tickets, err
}

// ApproveTicket credits the promotion's points in one transaction: ticket
// state, user balance, and a ledger entry move together. A ticket whose
// amount is below the promotion minimum is approved with zero points.
func (s *RewardsService) ApproveTicket(ctx context.Context, ticketID uuid.UUID) (*models.Ticket, error) {
	var ticket models.Ticket

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&ticket, "id = ?", ticketID).Error; err != nil {
			return ErrTicketNotFound
		}
		if ticket.Estado != models.TicketPendiente {
			return ErrTicketYaResuelto
		}

		puntos := 0
		if ticket.PromocionID != nil {
			var promo models.Promocion
			if err := tx.First(&promo, "id = ?", *ticket.PromocionID).Error; err != nil {
				return ErrPromocionNotFound
			}
			if promo.MontoMinimo == nil || ticket.Monto >= *promo.MontoMinimo {
				puntos = promo.PuntosPorTicket
			}
		}

		if err := tx.Model(&ticket).Updates(map[string]interface{}{
			"estado":         models.TicketAprobado,
			"puntos_ganados": puntos,
		}).Error; err != nil {
			return err
		}

		if puntos == 0 {
			return nil
		}

		ticketRef := ticket.ID
		entry := &models.TransaccionPuntos{
			ID:          uuid.New(),
			UsuarioID:   ticket.UsuarioID,
			TicketID:    &ticketRef,
			Puntos:      puntos,
			Tipo:        models.TransaccionGanado,
			Descripcion: fmt.Sprintf("Ticket %s aprobado", ticket.NumeroTicket),
		}
		if err := tx.Create(entry).Error; err != nil {
			return err
		}

		return tx.Model(&models.User{}).
			Where("id = ?", ticket.UsuarioID).
			UpdateColumn("saldo_puntos", gorm.Expr("saldo_puntos + ?", puntos)).Error
	})
	if err != nil {
		return nil, err
	}

	s.notifyBalance(ctx, ticket.UsuarioID, "ticket_aprobado")
	return &ticket, nil
}

// RejectTicket marks a pending ticket as rejected. No points move.
func (s *RewardsService) RejectTicket(ctx context.Context, ticketID uuid.UUID) (*models.Ticket, error) {
	var ticket models.Ticket
	if err := s.db.WithContext(ctx).First(&ticket, "id = ?", ticketID).Error; err != nil {
		return nil, ErrTicketNotFound
	}
	if ticket.Estado != models.TicketPendiente {
		return nil, ErrTicketYaResuelto
	}
	if err := s.db.WithContext(ctx).Model(&ticket).Update("estado", models.TicketRechazado).Error; err != nil {
		return nil, err
	}
	return &ticket, nil
}

// RedeemPremio spends points on a prize. Balance deduction, stock
// decrement, the redemption record, and the ledger entry commit together;
// both decrements are guarded so concurrent redemptions cannot drive
// stock or the balance negative.
func (s *RewardsService) RedeemPremio(ctx context.Context, userID, premioID uuid.UUID) (*models.CanjePremio, error) {
	var canje *models.CanjePremio

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var premio models.Premio
		if err := tx.First(&premio, "id = ?", premioID).Error; err != nil {
			return ErrPremioNotFound
		}
		if premio.Estado != models.PremioActivo {
			return ErrPremioNoDisponible
		}

		var user models.User
		if err := tx.First(&user, "id = ?", userID).Error; err != nil {
			return auth.ErrUserNotFound
		}
		if user.SaldoPuntos < premio.PuntosRequeridos {
			return ErrPuntosInsuficientes
		}

		if premio.Stock != nil {
			result := tx.Model(&models.Premio{}).
				Where("id = ? AND stock > 0", premio.ID).
				UpdateColumn("stock", gorm.Expr("stock - 1"))
			if result.Error != nil {
				return result.Error
			}
			if result.RowsAffected == 0 {
				return ErrSinStock
			}

			var remaining models.Premio
			if err := tx.First(&remaining, "id = ?", premio.ID).Error; err != nil {
				return err
			}
			if remaining.Stock != nil && *remaining.Stock == 0 {
				if err := tx.Model(&remaining).Update("estado", models.PremioSinStock).Error; err != nil {
					return err
				}
			}
		}

		deduction := tx.Model(&models.User{}).
			Where("id = ? AND saldo_puntos >= ?", userID, premio.PuntosRequeridos).
			UpdateColumn("saldo_puntos", gorm.Expr("saldo_puntos - ?", premio.PuntosRequeridos))
		if deduction.Error != nil {
			return deduction.Error
		}
		if deduction.RowsAffected == 0 {
			return ErrPuntosInsuficientes
		}

		canje = &models.CanjePremio{
			ID:             uuid.New(),
			UsuarioID:      userID,
			PremioID:       premio.ID,
			PuntosGastados: premio.PuntosRequeridos,
			Estado:         models.CanjeCompletado,
			CanjeadoEn:     time.Now(),
		}
		if err := tx.Create(canje).Error; err != nil {
			return err
		}

		premioRef := premio.ID
		entry := &models.TransaccionPuntos{
			ID:          uuid.New(),
			UsuarioID:   userID,
			PremioID:    &premioRef,
			Puntos:      -premio.PuntosRequeridos,
			Tipo:        models.TransaccionGastado,
			Descripcion: fmt.Sprintf("Canje de premio: %s", premio.Titulo),
		}
		return tx.Create(entry).Error
	})
	if err != nil {
		return nil, err
	}

	s.notifyBalance(ctx, userID, "canje_completado")
	return canje, nil
}

type PointsBalance struct {
	SaldoPuntos   int                        `json:"saldo_puntos"`
	Transacciones []models.TransaccionPuntos `json:"transacciones"`
}

// GetBalance returns the current balance and the ledger, newest first.
func (s *RewardsService) GetBalance(ctx context.Context, userID uuid.UUID) (*PointsBalance, error) {
	var user models.User
	if err := s.db.WithContext(ctx).First(&user, "id = ?", userID).Error; err != nil {
		return nil, auth.ErrUserNotFound
	}

	transacciones := make([]models.TransaccionPuntos, 0)
	err := s.db.WithContext(ctx).
		Where("usuario_id = ?", userID).
		Order("created_at DESC").
		Find(&transacciones).Error
	if err != nil {
		return nil, err
	}

	return &PointsBalance{SaldoPuntos: user.SaldoPuntos, Transacciones: transacciones}, nil
}

// RefreshPremioStates re-derives prize states from stock. Run from the
// scheduler to repair any drift.
func (s *RewardsService) RefreshPremioStates(ctx context.Context) (int64, error) {
	result := s.db.WithContext(ctx).Model(&models.Premio{}).
		Where("stock = 0 AND estado = ?", models.PremioActivo).
		Update("estado", models.PremioSinStock)
	return result.RowsAffected, result.Error
}

func (s *RewardsService) notifyBalance(ctx context.Context, userID uuid.UUID, reason string) {
	if s.notifier == nil {
		return
	}
	balance, err := s.GetBalance(ctx, userID)
	if err != nil {
		return
	}
	s.notifier.NotifyPoints(userID, balance.SaldoPuntos, reason)
}
