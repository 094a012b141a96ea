package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Auth providers for federated accounts.
const (
	ProviderLocal    = "local"
	ProviderGoogle   = "google"
	ProviderFacebook = "facebook"
)

type User struct {
	ID           uuid.UUID `gorm:"type:uuid;primary_key" json:"id"`
	Email        string    `gorm:"size:255;uniqueIndex;not null" json:"email"`
	PasswordHash string    `gorm:"size:255" json:"-"`
	Name         string    `gorm:"size:100" json:"name"`

	// Preferred conversation language (es, en, fr, pt)
	Language string `gorm:"size:5;default:es" json:"language"`

	// Federated identity binding
	Provider   string `gorm:"size:20;default:local" json:"provider"`
	ProviderID string `gorm:"size:255;index" json:"-"`

	// Loyalty balance, mutated only through the points ledger
	SaldoPuntos int `gorm:"default:0" json:"saldo_puntos"`

	IsAdmin     bool       `gorm:"default:false" json:"-"`
	IsActive    bool       `gorm:"default:true" json:"is_active"`
	LastLoginAt *time.Time `json:"last_login_at,omitempty"`

	// Relations
	ChatSessions  []ChatSession       `gorm:"foreignKey:UserID" json:"-"`
	Tickets       []Ticket            `gorm:"foreignKey:UsuarioID" json:"-"`
	Canjes        []CanjePremio       `gorm:"foreignKey:UsuarioID" json:"-"`
	Transacciones []TransaccionPuntos `gorm:"foreignKey:UsuarioID" json:"-"`

	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

func (u *User) BeforeCreate(tx *gorm.DB) error {
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	return nil
}
