package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Promotion states
const (
	PromocionActiva   = "activa"
	PromocionInactiva = "inactiva"
	PromocionExpirada = "expirada"
)

// Ticket states
const (
	TicketPendiente = "pendiente"
	TicketAprobado  = "aprobado"
	TicketRechazado = "rechazado"
)

// Prize states
const (
	PremioActivo   = "activo"
	PremioInactivo = "inactivo"
	PremioSinStock = "sin_stock"
)

// Redemption states
const (
	CanjePendiente  = "pendiente"
	CanjeCompletado = "completado"
	CanjeCancelado  = "cancelado"
)

// Ledger entry types
const (
	TransaccionGanado   = "ganado"
	TransaccionGastado  = "gastado"
	TransaccionAjustado = "ajustado"
)

type Promocion struct {
	ID              uuid.UUID `gorm:"type:uuid;primary_key" json:"id"`
	Titulo          string    `gorm:"size:255;not null" json:"titulo"`
	Descripcion     string    `gorm:"type:text" json:"descripcion"`
	FechaInicio     time.Time `gorm:"not null" json:"fecha_inicio"`
	FechaFin        time.Time `gorm:"not null" json:"fecha_fin"`
	PuntosPorTicket int       `gorm:"not null" json:"puntos_por_ticket"`
	MontoMinimo     *float64  `gorm:"type:decimal(8,2)" json:"monto_minimo,omitempty"`
	Estado          string    `gorm:"size:20;default:inactiva" json:"estado"`
	Imagen          string    `gorm:"size:255" json:"imagen,omitempty"`

	Tickets []Ticket `gorm:"foreignKey:PromocionID" json:"-"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type Ticket struct {
	ID              uuid.UUID  `gorm:"type:uuid;primary_key" json:"id"`
	UsuarioID       uuid.UUID  `gorm:"type:uuid;not null;index" json:"usuario_id"`
	PromocionID     *uuid.UUID `gorm:"type:uuid;index" json:"promocion_id"`
	NumeroTicket    string     `gorm:"size:100;not null" json:"numero_ticket"`
	Monto           float64    `gorm:"type:decimal(8,2);not null" json:"monto"`
	ImagenEscaneada string     `gorm:"size:255" json:"imagen_escaneada,omitempty"`
	Estado          string     `gorm:"size:20;default:pendiente" json:"estado"`
	PuntosGanados   int        `gorm:"default:0" json:"puntos_ganados"`
	EscaneadoEn     time.Time  `json:"escaneado_en"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type Premio struct {
	ID               uuid.UUID `gorm:"type:uuid;primary_key" json:"id"`
	Titulo           string    `gorm:"size:255;not null" json:"titulo"`
	Descripcion      string    `gorm:"type:text" json:"descripcion"`
	PuntosRequeridos int       `gorm:"not null" json:"puntos_requeridos"`
	// Nil stock means unlimited
	Stock  *int   `json:"stock,omitempty"`
	Imagen string `gorm:"size:255" json:"imagen,omitempty"`
	Estado string `gorm:"size:20;default:activo" json:"estado"`

	Canjes []CanjePremio `gorm:"foreignKey:PremioID" json:"-"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type CanjePremio struct {
	ID             uuid.UUID `gorm:"type:uuid;primary_key" json:"id"`
	UsuarioID      uuid.UUID `gorm:"type:uuid;not null;index" json:"usuario_id"`
	PremioID       uuid.UUID `gorm:"type:uuid;not null;index" json:"premio_id"`
	PuntosGastados int       `gorm:"not null" json:"puntos_gastados"`
	Estado         string    `gorm:"size:20;default:pendiente" json:"estado"`
	CanjeadoEn     time.Time `json:"canjeado_en"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TransaccionPuntos is an append-only ledger entry. Puntos is signed:
// positive for ganado/ajustado credits, negative for gastado.
type TransaccionPuntos struct {
	ID          uuid.UUID  `gorm:"type:uuid;primary_key" json:"id"`
	UsuarioID   uuid.UUID  `gorm:"type:uuid;not null;index" json:"usuario_id"`
	TicketID    *uuid.UUID `gorm:"type:uuid" json:"ticket_id,omitempty"`
	PremioID    *uuid.UUID `gorm:"type:uuid" json:"premio_id,omitempty"`
	Puntos      int        `gorm:"not null" json:"puntos"`
	Tipo        string     `gorm:"size:20;not null" json:"tipo"`
	Descripcion string     `gorm:"size:255" json:"descripcion,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"-"`
}

func (p *Promocion) BeforeCreate(tx *gorm.DB) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	return nil
}

func (t *Ticket) BeforeCreate(tx *gorm.DB) error {
	if t.ID == uuid.Nil {
		t.ID = uuid.New()
	}
	return nil
}

func (p *Premio) BeforeCreate(tx *gorm.DB) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	return nil
}

func (c *CanjePremio) BeforeCreate(tx *gorm.DB) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	return nil
}

func (t *TransaccionPuntos) BeforeCreate(tx *gorm.DB) error {
	if t.ID == uuid.Nil {
		t.ID = uuid.New()
	}
	return nil
}
