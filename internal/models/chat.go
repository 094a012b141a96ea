package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type ChatSession struct {
	ID      uuid.UUID `gorm:"type:uuid;primary_key" json:"id"`
	UserID  uuid.UUID `gorm:"type:uuid;not null;index" json:"user_id"`
	Title   string    `gorm:"size:100" json:"title"`
	IsSaved bool      `gorm:"default:false" json:"is_saved"`

	Messages []Message `gorm:"foreignKey:ChatSessionID" json:"messages,omitempty"`

	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`
}

// Message is one turn half. UserID is nil for AI replies.
type Message struct {
	ID            uuid.UUID  `gorm:"type:uuid;primary_key" json:"id"`
	ChatSessionID uuid.UUID  `gorm:"type:uuid;not null;index" json:"chat_session_id"`
	UserID        *uuid.UUID `gorm:"type:uuid" json:"user_id"`
	Text          string     `gorm:"type:text;not null" json:"text"`
	IsUser        bool       `gorm:"not null" json:"is_user"`

	// Classification captured when the turn was composed
	EmotionalState    string `gorm:"size:20;default:neutral" json:"emotional_state"`
	ConversationLevel string `gorm:"size:20;default:basic" json:"conversation_level"`

	// Ordering by CreatedAt defines conversation order
	CreatedAt time.Time `gorm:"index" json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (s *ChatSession) BeforeCreate(tx *gorm.DB) error {
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	return nil
}

func (m *Message) BeforeCreate(tx *gorm.DB) error {
	if m.ID == uuid.Nil {
		m.ID = uuid.New()
	}
	return nil
}
