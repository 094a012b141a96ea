package lumorah

import (
	"fmt"
	"strings"
	"unicode/utf8"
)

// EmotionalState classifies the user's last message.
type EmotionalState string

const (
	StateNeutral   EmotionalState = "neutral"
	StateSensitive EmotionalState = "sensitive"
	StateCrisis    EmotionalState = "crisis"
)

// ConversationLevel controls how abstract the assistant's register may be.
type ConversationLevel string

const (
	LevelBasic    ConversationLevel = "basic"
	LevelAdvanced ConversationLevel = "advanced"
)

// Messages longer than this are treated as reflective regardless of wording.
const reflectiveLengthThreshold = 280

// TurnContext carries everything about the caller that classification and
// rendering may depend on. It is built per turn; the composer holds no state.
type TurnContext struct {
	UserName string
	Language Language
}

// Prompt is the composed bundle for one turn.
type Prompt struct {
	SystemPrompt      string            `json:"system_prompt"`
	UserPrompt        string            `json:"user_prompt"`
	EmotionalState    EmotionalState    `json:"emotional_state"`
	ConversationLevel ConversationLevel `json:"conversation_level"`
	Language          Language          `json:"language"`
}

// Classify derives the emotional state and conversation depth of a message.
// Crisis keywords take precedence over sensitive keywords. Depth is elevated
// to advanced by reflective indicator words or unusually long messages.
func Classify(lang Language, message string) (EmotionalState, ConversationLevel) {
	loc := localeFor(lang)
	lower := strings.ToLower(message)

	state := StateNeutral
	if containsAny(lower, loc.sensitiveKeywords) {
		state = StateSensitive
	}
	if containsAny(lower, loc.crisisKeywords) {
		state = StateCrisis
	}

	level := LevelBasic
	if containsAny(lower, loc.reflectiveWords) || utf8.RuneCountInString(message) > reflectiveLengthThreshold {
		level = LevelAdvanced
	}

	return state, level
}

// Compose classifies the message and renders the localized system prompt.
// It is a pure function of its inputs and never fails: unsupported languages
// were already folded into the default by ParseLanguage, and an empty name
// degrades to anonymous phrasing.
func Compose(tc TurnContext, message string) Prompt {
	lang := tc.Language
	if _, ok := locales[lang]; !ok {
		lang = DefaultLanguage
	}
	loc := localeFor(lang)

	state, level := Classify(lang, message)

	var sb strings.Builder
	sb.WriteString(loc.systemPromptHeader)
	sb.WriteString("\n")

	if level == LevelAdvanced {
		sb.WriteString("- " + loc.advancedStyle + "\n")
	} else {
		sb.WriteString("- " + loc.basicStyle + "\n")
	}

	switch state {
	case StateCrisis:
		sb.WriteString("- " + loc.crisisGuidance + "\n")
	case StateSensitive:
		sb.WriteString("- " + loc.sensitiveGuidance + "\n")
	default:
		sb.WriteString("- " + loc.neutralGuidance + "\n")
	}

	if name := strings.TrimSpace(tc.UserName); name != "" {
		sb.WriteString("- " + fmt.Sprintf(loc.namedGuidance, name) + "\n")
	} else {
		sb.WriteString("- " + loc.anonymousGuidance + "\n")
	}

	sb.WriteString("- " + loc.promptRules)

	return Prompt{
		SystemPrompt:      sb.String(),
		UserPrompt:        message,
		EmotionalState:    state,
		ConversationLevel: level,
		Language:          lang,
	}
}

// WelcomeMessage renders the opening assistant message for a new session.
func WelcomeMessage(tc TurnContext) string {
	loc := localeFor(tc.Language)
	if name := strings.TrimSpace(tc.UserName); name != "" {
		return fmt.Sprintf(loc.welcomeNamed, name)
	}
	return loc.welcomeAnonymous
}

// FallbackMessage is the deterministic reply used when the completion API
// is unavailable.
func FallbackMessage(lang Language) string {
	return localeFor(lang).fallback
}

// EndearmentGuard replaces replies that slipped into generic terms of
// endearment with a fixed redirect phrase.
func EndearmentGuard(lang Language, reply string) string {
	lower := strings.ToLower(reply)
	for _, term := range []string{"cariño", "amor"} {
		if strings.Contains(lower, term) {
			return localeFor(lang).endearmentTurn
		}
	}
	return reply
}

// SummaryPrompt is the system instruction for transcript summaries.
func SummaryPrompt(lang Language) string {
	return localeFor(lang).summaryPrompt
}

// DefaultSummary is returned when the completion API cannot summarize.
func DefaultSummary(lang Language) string {
	return localeFor(lang).defaultSummary
}

// NameUpdatedMessage acknowledges a display-name change.
func NameUpdatedMessage(lang Language, name string) string {
	return fmt.Sprintf(localeFor(lang).nameUpdated, name)
}

// SessionTitle derives a session title from the first words of the opening
// message.
func SessionTitle(lang Language, firstMessage string) string {
	words := strings.Fields(firstMessage)
	if len(words) > 5 {
		words = words[:5]
	}
	return localeFor(lang).sessionTitlePrefix + ": " + strings.Join(words, " ") + "..."
}

func containsAny(haystack string, needles []string) bool {
	for _, n := range needles {
		if strings.Contains(haystack, n) {
			return true
		}
	}
	return false
}
