package lumorah

import (
	"strings"
	"testing"
)

func TestParseLanguage(t *testing.T) {
	tests := []struct {
		name string
		code string
		want Language
	}{
		{"spanish", "es", LanguageES},
		{"english", "en", LanguageEN},
		{"french", "fr", LanguageFR},
		{"portuguese", "pt", LanguagePT},
		{"uppercase", "EN", LanguageEN},
		{"padded", " fr ", LanguageFR},
		{"empty falls back", "", LanguageES},
		{"unsupported falls back", "de", LanguageES},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ParseLanguage(tt.code); got != tt.want {
				t.Errorf("ParseLanguage(%q) = %q, want %q", tt.code, got, tt.want)
			}
		})
	}
}

func TestClassify(t *testing.T) {
	tests := []struct {
		name      string
		lang      Language
		message   string
		wantState EmotionalState
		wantLevel ConversationLevel
	}{
		{
			name:      "neutral basic spanish",
			lang:      LanguageES,
			message:   "hola, ¿cómo estás?",
			wantState: StateNeutral,
			wantLevel: LevelBasic,
		},
		{
			name:      "sensitive spanish",
			lang:      LanguageES,
			message:   "hoy estoy muy triste",
			wantState: StateSensitive,
			wantLevel: LevelBasic,
		},
		{
			name:      "crisis wins over sensitive",
			lang:      LanguageES,
			message:   "me siento muy triste y sin esperanza",
			wantState: StateCrisis,
			wantLevel: LevelAdvanced,
		},
		{
			name:      "sensitive english",
			lang:      LanguageEN,
			message:   "I am so sad today",
			wantState: StateSensitive,
			wantLevel: LevelBasic,
		},
		{
			name:      "crisis english with reflective phrasing",
			lang:      LanguageEN,
			message:   "I feel hopeless",
			wantState: StateCrisis,
			wantLevel: LevelAdvanced,
		},
		{
			name:      "crisis french",
			lang:      LanguageFR,
			message:   "je veux me tuer",
			wantState: StateCrisis,
			wantLevel: LevelBasic,
		},
		{
			name:      "sensitive portuguese",
			lang:      LanguagePT,
			message:   "estou muito triste hoje",
			wantState: StateSensitive,
			wantLevel: LevelBasic,
		},
		{
			name:      "long message elevates level",
			lang:      LanguageES,
			message:   strings.Repeat("palabras tranquilas ", 20),
			wantState: StateNeutral,
			wantLevel: LevelAdvanced,
		},
		{
			name:      "keyword match is case insensitive",
			lang:      LanguageEN,
			message:   "I WANT TO DIE",
			wantState: StateCrisis,
			wantLevel: LevelBasic,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			state, level := Classify(tt.lang, tt.message)
			if state != tt.wantState {
				t.Errorf("state = %q, want %q", state, tt.wantState)
			}
			if level != tt.wantLevel {
				t.Errorf("level = %q, want %q", level, tt.wantLevel)
			}
		})
	}
}

func TestComposeIsPure(t *testing.T) {
	tc := TurnContext{UserName: "Ana", Language: LanguageES}
	msg := "me siento muy triste y sin esperanza"

	first := Compose(tc, msg)
	second := Compose(tc, msg)

	if first != second {
		t.Errorf("same inputs produced different prompts:\n%v\n%v", first, second)
	}
}

func TestCompose(t *testing.T) {
	t.Run("crisis prompt carries crisis guidance and name", func(t *testing.T) {
		p := Compose(TurnContext{UserName: "Ana", Language: LanguageES}, "ya no quiero vivir")

		if p.EmotionalState != StateCrisis {
			t.Fatalf("state = %q, want crisis", p.EmotionalState)
		}
		if !strings.Contains(p.SystemPrompt, locales[LanguageES].crisisGuidance) {
			t.Error("system prompt missing crisis guidance")
		}
		if !strings.Contains(p.SystemPrompt, "Ana") {
			t.Error("system prompt missing user name")
		}
		if p.UserPrompt != "ya no quiero vivir" {
			t.Errorf("user prompt = %q", p.UserPrompt)
		}
	})

	t.Run("anonymous prompt avoids invented names", func(t *testing.T) {
		p := Compose(TurnContext{Language: LanguageEN}, "hello there")

		if !strings.Contains(p.SystemPrompt, locales[LanguageEN].anonymousGuidance) {
			t.Error("system prompt missing anonymous guidance")
		}
	})

	t.Run("whitespace-only name is anonymous", func(t *testing.T) {
		p := Compose(TurnContext{UserName: "   ", Language: LanguageEN}, "hello there")

		if !strings.Contains(p.SystemPrompt, locales[LanguageEN].anonymousGuidance) {
			t.Error("system prompt missing anonymous guidance")
		}
	})

	t.Run("unsupported language folds to spanish", func(t *testing.T) {
		p := Compose(TurnContext{Language: Language("it")}, "ciao")

		if p.Language != LanguageES {
			t.Errorf("language = %q, want es", p.Language)
		}
		if !strings.Contains(p.SystemPrompt, locales[LanguageES].systemPromptHeader) {
			t.Error("system prompt not rendered from spanish table")
		}
	})

	t.Run("advanced style replaces basic style", func(t *testing.T) {
		p := Compose(TurnContext{Language: LanguageEN}, "what is the meaning of all this")

		if p.ConversationLevel != LevelAdvanced {
			t.Fatalf("level = %q, want advanced", p.ConversationLevel)
		}
		if !strings.Contains(p.SystemPrompt, locales[LanguageEN].advancedStyle) {
			t.Error("system prompt missing advanced style")
		}
		if strings.Contains(p.SystemPrompt, locales[LanguageEN].basicStyle) {
			t.Error("system prompt still carries basic style")
		}
	})
}

func TestWelcomeMessage(t *testing.T) {
	named := WelcomeMessage(TurnContext{UserName: "Luc", Language: LanguageFR})
	if !strings.Contains(named, "Luc") {
		t.Errorf("named welcome missing name: %q", named)
	}

	anon := WelcomeMessage(TurnContext{Language: LanguageFR})
	if anon != locales[LanguageFR].welcomeAnonymous {
		t.Errorf("anonymous welcome = %q", anon)
	}
}

func TestEndearmentGuard(t *testing.T) {
	tests := []struct {
		name  string
		reply string
		want  string
	}{
		{"clean reply passes", "Entiendo lo que dices.", "Entiendo lo que dices."},
		{"carino replaced", "Claro, cariño, cuéntame más.", locales[LanguageES].endearmentTurn},
		{"amor replaced", "Sí, amor.", locales[LanguageES].endearmentTurn},
		{"case insensitive", "CARIÑO, sigue.", locales[LanguageES].endearmentTurn},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := EndearmentGuard(LanguageES, tt.reply); got != tt.want {
				t.Errorf("EndearmentGuard() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestSessionTitle(t *testing.T) {
	tests := []struct {
		name    string
		lang    Language
		message string
		want    string
	}{
		{
			name:    "truncates to five words",
			lang:    LanguageES,
			message: "hola quiero hablar de mi familia hoy",
			want:    "Conversación: hola quiero hablar de mi...",
		},
		{
			name:    "short message kept whole",
			lang:    LanguageEN,
			message: "hello",
			want:    "Conversation: hello...",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := SessionTitle(tt.lang, tt.message); got != tt.want {
				t.Errorf("SessionTitle() = %q, want %q", got, tt.want)
			}
		})
	}
}
