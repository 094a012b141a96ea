package services

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/KevinHdezVaz/Lumorah-back/internal/logger"
	"github.com/KevinHdezVaz/Lumorah-back/internal/lumorah"
	"github.com/KevinHdezVaz/Lumorah-back/internal/models"
)

// ErrSessionNotFound covers both a missing session and one owned by
// another user; callers must not be able to tell the two apart.
var ErrSessionNotFound = errors.New("chat session not found")

// At most this many prior messages are sent to the model as context.
const contextWindow = 10

// ChatService coordinates conversational turns: prompt composition, the
// completion call, and transactional persistence.
type ChatService struct {
	db          *gorm.DB
	completions CompletionClient
}

func NewChatService(db *gorm.DB, completions CompletionClient) *ChatService {
	return &ChatService{db: db, completions: completions}
}

type SendMessageRequest struct {
	Message     string     `json:"message" binding:"required"`
	SessionID   *uuid.UUID `json:"session_id"`
	IsTemporary bool       `json:"is_temporary"`
	Language    string     `json:"language"`
}

// AIMessage is the reply half of a turn as returned to clients.
type AIMessage struct {
	Text              string `json:"text"`
	IsUser            bool   `json:"is_user"`
	EmotionalState    string `json:"emotional_state"`
	ConversationLevel string `json:"conversation_level"`
	IsWelcome         bool   `json:"is_welcome,omitempty"`
}

type SendMessageResult struct {
	AIMessage AIMessage  `json:"ai_message"`
	SessionID *uuid.UUID `json:"session_id"`
}

// SendMessage handles one conversational turn. A completion failure does
// not fail the turn: the localized fallback reply is used instead. Unless
// the turn is temporary, the user message and the reply are persisted in
// one transaction, creating the session on the first turn.
func (s *ChatService) SendMessage(ctx context.Context, user *models.User, req *SendMessageRequest) (*SendMessageResult, error) {
	lang := s.resolveLanguage(user, req.Language)
	prompt := lumorah.Compose(lumorah.TurnContext{UserName: user.Name, Language: lang}, req.Message)

	var history []ChatTurn
	if req.SessionID != nil && !req.IsTemporary {
		if _, err := s.ownedSession(ctx, s.db, user.ID, *req.SessionID); err != nil {
			return nil, err
		}
		var err error
		history, err = s.conversationContext(ctx, *req.SessionID)
		if err != nil {
			return nil, err
		}
	}

	reply, err := s.completions.Complete(ctx, prompt.SystemPrompt, history, req.Message)
	if err != nil {
		log := logger.FromContext(ctx)
		log.Warn().Err(err).Msg("completion failed, using fallback reply")
		reply = lumorah.FallbackMessage(lang)
	}
	reply = lumorah.EndearmentGuard(lang, reply)

	aiMessage := AIMessage{
		Text:              reply,
		IsUser:            false,
		EmotionalState:    string(prompt.EmotionalState),
		ConversationLevel: string(prompt.ConversationLevel),
	}

	if req.IsTemporary {
		return &SendMessageResult{AIMessage: aiMessage, SessionID: nil}, nil
	}

	sessionID := req.SessionID
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if sessionID == nil {
			session := &models.ChatSession{
				ID:      uuid.New(),
				UserID:  user.ID,
				Title:   lumorah.SessionTitle(lang, req.Message),
				IsSaved: false,
			}
			if err := tx.Create(session).Error; err != nil {
				return err
			}
			sessionID = &session.ID
		}

		userID := user.ID
		pair := []models.Message{
			{
				ID:                uuid.New(),
				ChatSessionID:     *sessionID,
				UserID:            &userID,
				Text:              req.Message,
				IsUser:            true,
				EmotionalState:    string(prompt.EmotionalState),
				ConversationLevel: string(prompt.ConversationLevel),
			},
			{
				ID:                uuid.New(),
				ChatSessionID:     *sessionID,
				Text:              reply,
				IsUser:            false,
				EmotionalState:    string(prompt.EmotionalState),
				ConversationLevel: string(prompt.ConversationLevel),
			},
		}
		return tx.Create(&pair).Error
	})
	if err != nil {
		return nil, err
	}

	return &SendMessageResult{AIMessage: aiMessage, SessionID: sessionID}, nil
}

// GetSessions lists the caller's sessions, newest first.
func (s *ChatService) GetSessions(ctx context.Context, userID uuid.UUID, savedOnly bool) ([]models.ChatSession, error) {
	query := s.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC")
	if savedOnly {
		query = query.Where("is_saved = ?", true)
	}

	var sessions []models.ChatSession
	if err := query.Find(&sessions).Error; err != nil {
		return nil, err
	}
	return sessions, nil
}

// GetSessionMessages returns the ordered messages of a session the caller
// owns. A deleted session resolves to an empty list; a session that never
// existed, or belongs to someone else, is not found.
func (s *ChatService) GetSessionMessages(ctx context.Context, userID, sessionID uuid.UUID) ([]models.Message, error) {
	var session models.ChatSession
	err := s.db.WithContext(ctx).Unscoped().
		Where("id = ? AND user_id = ?", sessionID, userID).
		First(&session).Error
	if err != nil {
		return nil, ErrSessionNotFound
	}

	messages := make([]models.Message, 0)
	err = s.db.WithContext(ctx).
		Where("chat_session_id = ?", sessionID).
		Order("created_at ASC").
		Find(&messages).Error
	if err != nil {
		return nil, err
	}
	return messages, nil
}

// DeleteSession removes a session and all its messages atomically.
func (s *ChatService) DeleteSession(ctx context.Context, userID, sessionID uuid.UUID) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		session, err := s.ownedSession(ctx, tx, userID, sessionID)
		if err != nil {
			return err
		}
		if err := tx.Where("chat_session_id = ?", sessionID).Delete(&models.Message{}).Error; err != nil {
			return err
		}
		return tx.Delete(session).Error
	})
}

type SavedMessage struct {
	Text      string    `json:"text" binding:"required"`
	IsUser    bool      `json:"is_user"`
	CreatedAt time.Time `json:"created_at" binding:"required"`
}

type SaveSessionRequest struct {
	SessionID *uuid.UUID     `json:"session_id"`
	Title     string         `json:"title" binding:"required,max=100"`
	Messages  []SavedMessage `json:"messages" binding:"required,dive"`
}

// SaveSession persists or renames a session from a client-supplied message
// list, replacing any prior messages on ownership match.
func (s *ChatService) SaveSession(ctx context.Context, userID uuid.UUID, req *SaveSessionRequest) (*models.ChatSession, error) {
	var session *models.ChatSession

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if req.SessionID != nil {
			existing, err := s.ownedSession(ctx, tx, userID, *req.SessionID)
			if err != nil {
				return err
			}
			if err := tx.Model(existing).Updates(map[string]interface{}{
				"title":    req.Title,
				"is_saved": true,
			}).Error; err != nil {
				return err
			}
			if err := tx.Where("chat_session_id = ?", existing.ID).Delete(&models.Message{}).Error; err != nil {
				return err
			}
			session = existing
		} else {
			session = &models.ChatSession{
				ID:      uuid.New(),
				UserID:  userID,
				Title:   req.Title,
				IsSaved: true,
			}
			if err := tx.Create(session).Error; err != nil {
				return err
			}
		}

		messages := make([]models.Message, 0, len(req.Messages))
		for _, msg := range req.Messages {
			var msgUserID *uuid.UUID
			if msg.IsUser {
				id := userID
				msgUserID = &id
			}
			messages = append(messages, models.Message{
				ID:            uuid.New(),
				ChatSessionID: session.ID,
				UserID:        msgUserID,
				Text:          msg.Text,
				IsUser:        msg.IsUser,
				CreatedAt:     msg.CreatedAt,
				UpdatedAt:     msg.CreatedAt,
			})
		}
		if len(messages) == 0 {
			return nil
		}
		return tx.Create(&messages).Error
	})
	if err != nil {
		return nil, err
	}

	return session, nil
}

// Summarize condenses a client-supplied transcript. Failures degrade to a
// localized default summary.
func (s *ChatService) Summarize(ctx context.Context, user *models.User, messages []SavedMessage, language string) string {
	lang := s.resolveLanguage(user, language)

	transcript := make([]ChatTurn, 0, len(messages))
	for _, msg := range messages {
		transcript = append(transcript, ChatTurn{Text: msg.Text, IsUser: msg.IsUser})
	}

	summary, err := s.completions.Summarize(ctx, lumorah.SummaryPrompt(lang), transcript)
	if err != nil || summary == "" {
		log := logger.FromContext(ctx)
		log.Warn().Err(err).Msg("summary failed, using default")
		return lumorah.DefaultSummary(lang)
	}
	return summary
}

// StartSession composes the localized welcome without creating any rows.
func (s *ChatService) StartSession(user *models.User, language string) AIMessage {
	lang := s.resolveLanguage(user, language)
	return AIMessage{
		Text:              lumorah.WelcomeMessage(lumorah.TurnContext{UserName: user.Name, Language: lang}),
		IsUser:            false,
		EmotionalState:    string(lumorah.StateNeutral),
		ConversationLevel: string(lumorah.LevelBasic),
		IsWelcome:         true,
	}
}

func (s *ChatService) resolveLanguage(user *models.User, requested string) lumorah.Language {
	if requested != "" {
		return lumorah.ParseLanguage(requested)
	}
	return lumorah.ParseLanguage(user.Language)
}

// conversationContext fetches up to the last contextWindow messages,
// oldest first.
func (s *ChatService) conversationContext(ctx context.Context, sessionID uuid.UUID) ([]ChatTurn, error) {
	var recent []models.Message
	err := s.db.WithContext(ctx).
		Where("chat_session_id = ?", sessionID).
		Order("created_at DESC").
		Limit(contextWindow).
		Find(&recent).Error
	if err != nil {
		return nil, err
	}

	turns := make([]ChatTurn, len(recent))
	for i, msg := range recent {
		turns[len(recent)-1-i] = ChatTurn{Text: msg.Text, IsUser: msg.IsUser}
	}
	return turns, nil
}

func (s *ChatService) ownedSession(ctx context.Context, tx *gorm.DB, userID, sessionID uuid.UUID) (*models.ChatSession, error) {
	var session models.ChatSession
	err := tx.WithContext(ctx).
		Where("id = ? AND user_id = ?", sessionID, userID).
		First(&session).Error
	if err != nil {
		return nil, ErrSessionNotFound
	}
	return &session, nil
}
