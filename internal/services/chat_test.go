package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/google/uuid"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/KevinHdezVaz/Lumorah-back/internal/lumorah"
	"github.com/KevinHdezVaz/Lumorah-back/internal/models"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger:         gormlogger.Default.LogMode(gormlogger.Silent),
		TranslateError: true,
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	err = db.AutoMigrate(
		&models.User{},
		&models.ChatSession{},
		&models.Message{},
		&models.Promocion{},
		&models.Ticket{},
		&models.Premio{},
		&models.CanjePremio{},
		&models.TransaccionPuntos{},
	)
	if err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return db
}

func newTestUser(t *testing.T, db *gorm.DB, name string) *models.User {
	t.Helper()

	user := &models.User{
		ID:       uuid.New(),
		Email:    uuid.NewString() + "@example.com",
		Name:     name,
		Language: "es",
		IsActive: true,
	}
	if err := db.Create(user).Error; err != nil {
		t.Fatalf("create user: %v", err)
	}
	return user
}

// fakeCompletions is a scriptable CompletionClient.
type fakeCompletions struct {
	reply   string
	summary string
	err     error

	lastSystem  string
	lastHistory []ChatTurn
	lastMessage string
}

func (f *fakeCompletions) Complete(ctx context.Context, systemPrompt string, history []ChatTurn, userMessage string) (string, error) {
	f.lastSystem = systemPrompt
	f.lastHistory = history
	f.lastMessage = userMessage
	return f.reply, f.err
}

func (f *fakeCompletions) Summarize(ctx context.Context, summaryPrompt string, transcript []ChatTurn) (string, error) {
	f.lastSystem = summaryPrompt
	f.lastHistory = transcript
	return f.summary, f.err
}

func TestSendMessageFirstTurnCreatesSession(t *testing.T) {
	db := newTestDB(t)
	user := newTestUser(t, db, "Ana")
	fake := &fakeCompletions{reply: "Entiendo, gracias por compartirlo."}
	svc := NewChatService(db, fake)

	result, err := svc.SendMessage(context.Background(), user, &SendMessageRequest{
		Message: "hola, quiero hablar de mi semana",
	})
	if err != nil {
		t.Fatalf("send message: %v", err)
	}
	if result.SessionID == nil {
		t.Fatal("no session id returned")
	}
	if result.AIMessage.Text != fake.reply {
		t.Errorf("reply = %q", result.AIMessage.Text)
	}
	if result.AIMessage.IsUser {
		t.Error("reply marked as user message")
	}

	var session models.ChatSession
	if err := db.First(&session, "id = ?", *result.SessionID).Error; err != nil {
		t.Fatalf("session not persisted: %v", err)
	}
	if session.Title != "Conversación: hola, quiero hablar de mi..." {
		t.Errorf("title = %q", session.Title)
	}
	if session.IsSaved {
		t.Error("fresh session marked saved")
	}

	var count int64
	db.Model(&models.Message{}).Where("chat_session_id = ?", session.ID).Count(&count)
	if count != 2 {
		t.Errorf("message count = %d, want 2", count)
	}
}

// A first turn that fails while persisting the message pair must leave no
// trace: no session, no messages. The session insert must not survive a
// failed message insert.
func TestSendMessageFirstTurnRollsBackOnPersistFailure(t *testing.T) {
	db := newTestDB(t)
	user := newTestUser(t, db, "Ana")
	svc := NewChatService(db, &fakeCompletions{reply: "Entiendo."})

	err := db.Callback().Create().Before("gorm:create").Register("reject_message_insert", func(tx *gorm.DB) {
		if tx.Statement.Schema != nil && tx.Statement.Schema.Table == "messages" {
			tx.AddError(errors.New("disk full"))
		}
	})
	if err != nil {
		t.Fatalf("register callback: %v", err)
	}

	result, err := svc.SendMessage(context.Background(), user, &SendMessageRequest{
		Message: "hola, quiero hablar de mi semana",
	})
	if err == nil {
		t.Fatalf("send message succeeded, result = %+v", result)
	}

	var sessions, messages int64
	db.Model(&models.ChatSession{}).Count(&sessions)
	db.Model(&models.Message{}).Count(&messages)
	if sessions != 0 || messages != 0 {
		t.Errorf("leftover rows after failed turn: %d sessions, %d messages", sessions, messages)
	}
}

func TestSendMessageContinuesExistingSession(t *testing.T) {
	db := newTestDB(t)
	user := newTestUser(t, db, "Ana")
	fake := &fakeCompletions{reply: "Sigo aquí contigo."}
	svc := NewChatService(db, fake)

	first, err := svc.SendMessage(context.Background(), user, &SendMessageRequest{Message: "hola"})
	if err != nil {
		t.Fatalf("first turn: %v", err)
	}

	second, err := svc.SendMessage(context.Background(), user, &SendMessageRequest{
		Message:   "sigo pensando en eso",
		SessionID: first.SessionID,
	})
	if err != nil {
		t.Fatalf("second turn: %v", err)
	}
	if *second.SessionID != *first.SessionID {
		t.Error("second turn opened a new session")
	}

	var sessionCount int64
	db.Model(&models.ChatSession{}).Count(&sessionCount)
	if sessionCount != 1 {
		t.Errorf("session count = %d, want 1", sessionCount)
	}

	var messageCount int64
	db.Model(&models.Message{}).Count(&messageCount)
	if messageCount != 4 {
		t.Errorf("message count = %d, want 4", messageCount)
	}
}

func TestSendMessageTemporaryLeavesNoRows(t *testing.T) {
	db := newTestDB(t)
	user := newTestUser(t, db, "Ana")
	svc := NewChatService(db, &fakeCompletions{reply: "ok"})

	result, err := svc.SendMessage(context.Background(), user, &SendMessageRequest{
		Message:     "esto es privado",
		IsTemporary: true,
	})
	if err != nil {
		t.Fatalf("send message: %v", err)
	}
	if result.SessionID != nil {
		t.Error("temporary turn returned a session id")
	}

	var sessions, messages int64
	db.Model(&models.ChatSession{}).Count(&sessions)
	db.Model(&models.Message{}).Count(&messages)
	if sessions != 0 || messages != 0 {
		t.Errorf("rows persisted for temporary turn: %d sessions, %d messages", sessions, messages)
	}
}

func TestSendMessageFallsBackOnCompletionFailure(t *testing.T) {
	db := newTestDB(t)
	user := newTestUser(t, db, "Ana")
	svc := NewChatService(db, &fakeCompletions{err: errors.New("upstream down")})

	result, err := svc.SendMessage(context.Background(), user, &SendMessageRequest{Message: "hola"})
	if err != nil {
		t.Fatalf("send message: %v", err)
	}
	if result.AIMessage.Text != lumorah.FallbackMessage(lumorah.LanguageES) {
		t.Errorf("reply = %q, want localized fallback", result.AIMessage.Text)
	}

	// The fallback turn is persisted like any other.
	var count int64
	db.Model(&models.Message{}).Count(&count)
	if count != 2 {
		t.Errorf("message count = %d, want 2", count)
	}
}

func TestSendMessageGuardsEndearments(t *testing.T) {
	db := newTestDB(t)
	user := newTestUser(t, db, "Ana")
	svc := NewChatService(db, &fakeCompletions{reply: "Claro, cariño, cuéntame."})

	result, err := svc.SendMessage(context.Background(), user, &SendMessageRequest{Message: "hola"})
	if err != nil {
		t.Fatalf("send message: %v", err)
	}
	if result.AIMessage.Text != "Estoy contigo… ¿cómo quieres seguir explorando esto?" {
		t.Errorf("reply = %q, endearment not redirected", result.AIMessage.Text)
	}
}

func TestSendMessageStoresClassification(t *testing.T) {
	db := newTestDB(t)
	user := newTestUser(t, db, "Ana")
	svc := NewChatService(db, &fakeCompletions{reply: "Estoy aquí."})

	result, err := svc.SendMessage(context.Background(), user, &SendMessageRequest{
		Message: "me siento muy triste y sin esperanza",
	})
	if err != nil {
		t.Fatalf("send message: %v", err)
	}
	if result.AIMessage.EmotionalState != "crisis" {
		t.Errorf("state = %q, want crisis", result.AIMessage.EmotionalState)
	}
	if result.AIMessage.ConversationLevel != "advanced" {
		t.Errorf("level = %q, want advanced", result.AIMessage.ConversationLevel)
	}

	var stored models.Message
	if err := db.Where("is_user = ?", true).First(&stored).Error; err != nil {
		t.Fatalf("user message not persisted: %v", err)
	}
	if stored.EmotionalState != "crisis" || stored.ConversationLevel != "advanced" {
		t.Errorf("stored classification = %s/%s", stored.EmotionalState, stored.ConversationLevel)
	}
}

func TestSendMessageRejectsForeignSession(t *testing.T) {
	db := newTestDB(t)
	owner := newTestUser(t, db, "Ana")
	intruder := newTestUser(t, db, "Eva")
	svc := NewChatService(db, &fakeCompletions{reply: "ok"})

	first, err := svc.SendMessage(context.Background(), owner, &SendMessageRequest{Message: "hola"})
	if err != nil {
		t.Fatalf("owner turn: %v", err)
	}

	_, err = svc.SendMessage(context.Background(), intruder, &SendMessageRequest{
		Message:   "hola",
		SessionID: first.SessionID,
	})
	if !errors.Is(err, ErrSessionNotFound) {
		t.Errorf("err = %v, want ErrSessionNotFound", err)
	}
}

func TestConversationContextWindow(t *testing.T) {
	db := newTestDB(t)
	user := newTestUser(t, db, "Ana")
	fake := &fakeCompletions{reply: "ok"}
	svc := NewChatService(db, fake)

	session := &models.ChatSession{ID: uuid.New(), UserID: user.ID, Title: "test"}
	if err := db.Create(session).Error; err != nil {
		t.Fatalf("create session: %v", err)
	}

	base := time.Now().Add(-time.Hour)
	for i := 0; i < 15; i++ {
		msg := models.Message{
			ID:            uuid.New(),
			ChatSessionID: session.ID,
			Text:          string(rune('a' + i)),
			IsUser:        i%2 == 0,
			CreatedAt:     base.Add(time.Duration(i) * time.Minute),
		}
		if err := db.Create(&msg).Error; err != nil {
			t.Fatalf("seed message: %v", err)
		}
	}

	_, err := svc.SendMessage(context.Background(), user, &SendMessageRequest{
		Message:   "y ahora qué",
		SessionID: &session.ID,
	})
	if err != nil {
		t.Fatalf("send message: %v", err)
	}

	if len(fake.lastHistory) != 10 {
		t.Fatalf("history length = %d, want 10", len(fake.lastHistory))
	}
	// Oldest of the window first: messages 5..14, i.e. "f" through "o".
	if fake.lastHistory[0].Text != "f" {
		t.Errorf("first context turn = %q, want %q", fake.lastHistory[0].Text, "f")
	}
	if fake.lastHistory[9].Text != "o" {
		t.Errorf("last context turn = %q, want %q", fake.lastHistory[9].Text, "o")
	}
}

func TestGetSessions(t *testing.T) {
	db := newTestDB(t)
	user := newTestUser(t, db, "Ana")
	other := newTestUser(t, db, "Eva")
	svc := NewChatService(db, &fakeCompletions{reply: "ok"})

	sessions := []models.ChatSession{
		{ID: uuid.New(), UserID: user.ID, Title: "primera", IsSaved: true, CreatedAt: time.Now().Add(-2 * time.Hour)},
		{ID: uuid.New(), UserID: user.ID, Title: "segunda", CreatedAt: time.Now().Add(-time.Hour)},
		{ID: uuid.New(), UserID: other.ID, Title: "ajena", CreatedAt: time.Now()},
	}
	if err := db.Create(&sessions).Error; err != nil {
		t.Fatalf("seed sessions: %v", err)
	}

	all, err := svc.GetSessions(context.Background(), user.ID, false)
	if err != nil {
		t.Fatalf("get sessions: %v", err)
	}
	if len(all) != 2 {
		t.Fatalf("session count = %d, want 2", len(all))
	}
	if all[0].Title != "segunda" {
		t.Errorf("first session = %q, want newest first", all[0].Title)
	}

	saved, err := svc.GetSessions(context.Background(), user.ID, true)
	if err != nil {
		t.Fatalf("get saved sessions: %v", err)
	}
	if len(saved) != 1 || saved[0].Title != "primera" {
		t.Errorf("saved filter returned %d sessions", len(saved))
	}
}

func TestDeleteSession(t *testing.T) {
	db := newTestDB(t)
	user := newTestUser(t, db, "Ana")
	svc := NewChatService(db, &fakeCompletions{reply: "ok"})

	result, err := svc.SendMessage(context.Background(), user, &SendMessageRequest{Message: "hola"})
	if err != nil {
		t.Fatalf("send message: %v", err)
	}
	sessionID := *result.SessionID

	if err := svc.DeleteSession(context.Background(), user.ID, sessionID); err != nil {
		t.Fatalf("delete session: %v", err)
	}

	// Hidden from listings.
	sessions, err := svc.GetSessions(context.Background(), user.ID, false)
	if err != nil {
		t.Fatalf("get sessions: %v", err)
	}
	if len(sessions) != 0 {
		t.Errorf("deleted session still listed")
	}

	// Reading a deleted session yields an empty list, not an error.
	messages, err := svc.GetSessionMessages(context.Background(), user.ID, sessionID)
	if err != nil {
		t.Fatalf("get messages after delete: %v", err)
	}
	if len(messages) != 0 {
		t.Errorf("message count after delete = %d, want 0", len(messages))
	}

	// Deleting twice is not possible: the soft-deleted session no longer
	// resolves for ownership.
	if err := svc.DeleteSession(context.Background(), user.ID, sessionID); !errors.Is(err, ErrSessionNotFound) {
		t.Errorf("second delete err = %v, want ErrSessionNotFound", err)
	}
}

func TestGetSessionMessagesUnknownSession(t *testing.T) {
	db := newTestDB(t)
	user := newTestUser(t, db, "Ana")
	svc := NewChatService(db, &fakeCompletions{reply: "ok"})

	_, err := svc.GetSessionMessages(context.Background(), user.ID, uuid.New())
	if !errors.Is(err, ErrSessionNotFound) {
		t.Errorf("err = %v, want ErrSessionNotFound", err)
	}
}

func TestSaveSession(t *testing.T) {
	db := newTestDB(t)
	user := newTestUser(t, db, "Ana")
	svc := NewChatService(db, &fakeCompletions{reply: "ok"})

	base := time.Now().Add(-time.Hour)
	req := &SaveSessionRequest{
		Title: "mi conversación",
		Messages: []SavedMessage{
			{Text: "hola", IsUser: true, CreatedAt: base},
			{Text: "hola, bienvenida", IsUser: false, CreatedAt: base.Add(time.Minute)},
		},
	}

	session, err := svc.SaveSession(context.Background(), user.ID, req)
	if err != nil {
		t.Fatalf("save session: %v", err)
	}
	if !session.IsSaved {
		t.Error("session not marked saved")
	}

	messages, err := svc.GetSessionMessages(context.Background(), user.ID, session.ID)
	if err != nil {
		t.Fatalf("get messages: %v", err)
	}
	if len(messages) != 2 {
		t.Fatalf("message count = %d, want 2", len(messages))
	}
	if messages[0].Text != "hola" || messages[0].UserID == nil {
		t.Error("user message not attributed to the caller")
	}
	if messages[1].UserID != nil {
		t.Error("assistant message attributed to a user")
	}

	// Saving again with the session id replaces content and renames.
	second := &SaveSessionRequest{
		SessionID: &session.ID,
		Title:     "renombrada",
		Messages: []SavedMessage{
			{Text: "solo esto", IsUser: true, CreatedAt: base},
		},
	}
	if _, err := svc.SaveSession(context.Background(), user.ID, second); err != nil {
		t.Fatalf("re-save session: %v", err)
	}

	var reloaded models.ChatSession
	if err := db.First(&reloaded, "id = ?", session.ID).Error; err != nil {
		t.Fatalf("reload session: %v", err)
	}
	if reloaded.Title != "renombrada" {
		t.Errorf("title = %q", reloaded.Title)
	}

	messages, err = svc.GetSessionMessages(context.Background(), user.ID, session.ID)
	if err != nil {
		t.Fatalf("get messages: %v", err)
	}
	if len(messages) != 1 || messages[0].Text != "solo esto" {
		t.Errorf("messages not replaced, got %d", len(messages))
	}
}

func TestSaveSessionForeignSession(t *testing.T) {
	db := newTestDB(t)
	owner := newTestUser(t, db, "Ana")
	intruder := newTestUser(t, db, "Eva")
	svc := NewChatService(db, &fakeCompletions{reply: "ok"})

	session := &models.ChatSession{ID: uuid.New(), UserID: owner.ID, Title: "privada"}
	if err := db.Create(session).Error; err != nil {
		t.Fatalf("seed session: %v", err)
	}

	_, err := svc.SaveSession(context.Background(), intruder.ID, &SaveSessionRequest{
		SessionID: &session.ID,
		Title:     "robada",
		Messages:  []SavedMessage{{Text: "x", IsUser: true, CreatedAt: time.Now()}},
	})
	if !errors.Is(err, ErrSessionNotFound) {
		t.Errorf("err = %v, want ErrSessionNotFound", err)
	}
}

func TestSummarize(t *testing.T) {
	db := newTestDB(t)
	user := newTestUser(t, db, "Ana")
	transcript := []SavedMessage{{Text: "hola", IsUser: true}}

	t.Run("returns model summary", func(t *testing.T) {
		svc := NewChatService(db, &fakeCompletions{summary: "Hablamos de la semana."})
		got := svc.Summarize(context.Background(), user, transcript, "es")
		if got != "Hablamos de la semana." {
			t.Errorf("summary = %q", got)
		}
	})

	t.Run("degrades to default on failure", func(t *testing.T) {
		svc := NewChatService(db, &fakeCompletions{err: errors.New("down")})
		got := svc.Summarize(context.Background(), user, transcript, "es")
		if got != lumorah.DefaultSummary(lumorah.LanguageES) {
			t.Errorf("summary = %q, want localized default", got)
		}
	})
}

func TestStartSession(t *testing.T) {
	db := newTestDB(t)
	user := newTestUser(t, db, "Ana")
	svc := NewChatService(db, &fakeCompletions{})

	welcome := svc.StartSession(user, "")
	if !welcome.IsWelcome {
		t.Error("welcome flag not set")
	}
	if welcome.Text != lumorah.WelcomeMessage(lumorah.TurnContext{UserName: "Ana", Language: lumorah.LanguageES}) {
		t.Errorf("welcome = %q", welcome.Text)
	}

	var sessions int64
	db.Model(&models.ChatSession{}).Count(&sessions)
	if sessions != 0 {
		t.Error("start session created rows")
	}
}

func TestRequestLanguageOverridesProfile(t *testing.T) {
	db := newTestDB(t)
	user := newTestUser(t, db, "Ana")
	svc := NewChatService(db, &fakeCompletions{err: errors.New("down")})

	result, err := svc.SendMessage(context.Background(), user, &SendMessageRequest{
		Message:     "hello",
		Language:    "en",
		IsTemporary: true,
	})
	if err != nil {
		t.Fatalf("send message: %v", err)
	}
	if result.AIMessage.Text != lumorah.FallbackMessage(lumorah.LanguageEN) {
		t.Errorf("reply = %q, want english fallback", result.AIMessage.Text)
	}
}
