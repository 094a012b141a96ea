package lumorah

import (
	"strings"
	"testing"
)

// Every supported language must carry a complete phrase table. A missing
// phrase would surface as an empty string in a live conversation.
func TestLocaleTablesComplete(t *testing.T) {
	for _, lang := range []Language{LanguageES, LanguageEN, LanguageFR, LanguagePT} {
		t.Run(string(lang), func(t *testing.T) {
			loc, ok := locales[lang]
			if !ok {
				t.Fatalf("no locale entry for %q", lang)
			}

			if len(loc.crisisKeywords) == 0 {
				t.Error("crisis keyword list is empty")
			}
			if len(loc.sensitiveKeywords) == 0 {
				t.Error("sensitive keyword list is empty")
			}
			if len(loc.reflectiveWords) == 0 {
				t.Error("reflective word list is empty")
			}

			phrases := map[string]string{
				"systemPromptHeader": loc.systemPromptHeader,
				"basicStyle":         loc.basicStyle,
				"advancedStyle":      loc.advancedStyle,
				"neutralGuidance":    loc.neutralGuidance,
				"sensitiveGuidance":  loc.sensitiveGuidance,
				"crisisGuidance":     loc.crisisGuidance,
				"namedGuidance":      loc.namedGuidance,
				"anonymousGuidance":  loc.anonymousGuidance,
				"promptRules":        loc.promptRules,
				"welcomeNamed":       loc.welcomeNamed,
				"welcomeAnonymous":   loc.welcomeAnonymous,
				"fallback":           loc.fallback,
				"endearmentTurn":     loc.endearmentTurn,
				"summaryPrompt":      loc.summaryPrompt,
				"defaultSummary":     loc.defaultSummary,
				"nameUpdated":        loc.nameUpdated,
				"sessionTitlePrefix": loc.sessionTitlePrefix,
			}
			for name, phrase := range phrases {
				if strings.TrimSpace(phrase) == "" {
					t.Errorf("%s is empty", name)
				}
			}

			for _, templated := range []string{loc.namedGuidance, loc.welcomeNamed, loc.nameUpdated} {
				if !strings.Contains(templated, "%s") {
					t.Errorf("templated phrase missing name placeholder: %q", templated)
				}
			}
		})
	}
}

func TestLocaleForFallsBack(t *testing.T) {
	got := localeFor(Language("xx"))
	want := locales[DefaultLanguage]

	if got.systemPromptHeader != want.systemPromptHeader {
		t.Errorf("unknown language did not fall back to default table")
	}
}

func TestKeywordsAreLowercase(t *testing.T) {
	for lang, loc := range locales {
		lists := [][]string{loc.crisisKeywords, loc.sensitiveKeywords, loc.reflectiveWords}
		for _, list := range lists {
			for _, kw := range list {
				if kw != strings.ToLower(kw) {
					t.Errorf("%s: keyword %q is not lowercase, matching is case sensitive after fold", lang, kw)
				}
			}
		}
	}
}
