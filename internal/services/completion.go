package services

import (
	"context"
	"errors"
	"time"

	openai "github.com/sashabaranov/go-openai"

	"github.com/KevinHdezVaz/Lumorah-back/internal/config"
)

// ErrCompletionUnavailable is returned for any upstream failure; callers
// degrade to a localized fallback instead of surfacing it.
var ErrCompletionUnavailable = errors.New("completion API unavailable")

// ChatTurn is one prior exchange half passed as model context.
type ChatTurn struct {
	Text   string
	IsUser bool
}

// CompletionClient produces assistant replies. It exists as an interface so
// the chat service can be tested without the network.
type CompletionClient interface {
	Complete(ctx context.Context, systemPrompt string, history []ChatTurn, userMessage string) (string, error)
	Summarize(ctx context.Context, summaryPrompt string, transcript []ChatTurn) (string, error)
}

// CompletionService wraps the OpenAI chat-completion endpoint with a
// bounded token budget and timeout.
type CompletionService struct {
	client      *openai.Client
	model       string
	maxTokens   int
	temperature float32
	timeout     time.Duration
}

func NewCompletionService(cfg *config.Config) *CompletionService {
	if cfg.OpenAIKey == "" {
		return nil
	}

	clientConfig := openai.DefaultConfig(cfg.OpenAIKey)
	if cfg.OpenAIBaseURL != "" {
		clientConfig.BaseURL = cfg.OpenAIBaseURL
	}

	return &CompletionService{
		client:      openai.NewClientWithConfig(clientConfig),
		model:       cfg.OpenAIModel,
		maxTokens:   250,
		temperature: 0.7,
		timeout:     time.Duration(cfg.OpenAITimeout) * time.Second,
	}
}

// Complete sends system + history + user messages and returns the reply
// text. Any transport or API failure maps to ErrCompletionUnavailable.
func (s *CompletionService) Complete(ctx context.Context, systemPrompt string, history []ChatTurn, userMessage string) (string, error) {
	if s == nil || s.client == nil {
		return "", ErrCompletionUnavailable
	}

	messages := make([]openai.ChatCompletionMessage, 0, len(history)+2)
	messages = append(messages, openai.ChatCompletionMessage{
		Role:    openai.ChatMessageRoleSystem,
		Content: systemPrompt,
	})
	for _, turn := range history {
		role := openai.ChatMessageRoleAssistant
		if turn.IsUser {
			role = openai.ChatMessageRoleUser
		}
		messages = append(messages, openai.ChatCompletionMessage{Role: role, Content: turn.Text})
	}
	messages = append(messages, openai.ChatCompletionMessage{
		Role:    openai.ChatMessageRoleUser,
		Content: userMessage,
	})

	return s.create(ctx, messages, s.maxTokens, s.temperature)
}

// Summarize condenses a transcript; the summary instruction goes last as a
// system message, matching how the summarization prompt was designed.
func (s *CompletionService) Summarize(ctx context.Context, summaryPrompt string, transcript []ChatTurn) (string, error) {
	if s == nil || s.client == nil {
		return "", ErrCompletionUnavailable
	}

	messages := make([]openai.ChatCompletionMessage, 0, len(transcript)+1)
	for _, turn := range transcript {
		role := openai.ChatMessageRoleAssistant
		if turn.IsUser {
			role = openai.ChatMessageRoleUser
		}
		messages = append(messages, openai.ChatCompletionMessage{Role: role, Content: turn.Text})
	}
	messages = append(messages, openai.ChatCompletionMessage{
		Role:    openai.ChatMessageRoleSystem,
		Content: summaryPrompt,
	})

	return s.create(ctx, messages, 100, 0.5)
}

func (s *CompletionService) create(ctx context.Context, messages []openai.ChatCompletionMessage, maxTokens int, temperature float32) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	resp, err := s.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:       s.model,
		Messages:    messages,
		MaxTokens:   maxTokens,
		Temperature: temperature,
	})
	if err != nil {
		return "", ErrCompletionUnavailable
	}
	if len(resp.Choices) == 0 || resp.Choices[0].Message.Content == "" {
		return "", ErrCompletionUnavailable
	}

	return resp.Choices[0].Message.Content, nil
}
