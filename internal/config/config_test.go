package config

import "testing"

func TestLoadDefaults(t *testing.T) {
	cfg := Load()

	if cfg.Env != "development" {
		t.Errorf("Env = %q, want development", cfg.Env)
	}
	if cfg.Port != "8080" {
		t.Errorf("Port = %q, want 8080", cfg.Port)
	}
	if cfg.OpenAIModel != "gpt-3.5-turbo" {
		t.Errorf("OpenAIModel = %q", cfg.OpenAIModel)
	}
	if cfg.OpenAITimeout != 30 {
		t.Errorf("OpenAITimeout = %d, want 30", cfg.OpenAITimeout)
	}
	if !cfg.IsDevelopment() {
		t.Error("default env should be development")
	}
}

func TestLoadFromEnvironment(t *testing.T) {
	t.Setenv("ENV", "production")
	t.Setenv("PORT", "9000")
	t.Setenv("OPENAI_TIMEOUT_SECONDS", "60")

	cfg := Load()

	if cfg.Env != "production" {
		t.Errorf("Env = %q, want production", cfg.Env)
	}
	if cfg.Port != "9000" {
		t.Errorf("Port = %q, want 9000", cfg.Port)
	}
	if cfg.OpenAITimeout != 60 {
		t.Errorf("OpenAITimeout = %d, want 60", cfg.OpenAITimeout)
	}
	if cfg.IsDevelopment() {
		t.Error("production env reported as development")
	}
}

func TestLoadIgnoresMalformedInt(t *testing.T) {
	t.Setenv("OPENAI_TIMEOUT_SECONDS", "not-a-number")

	if cfg := Load(); cfg.OpenAITimeout != 30 {
		t.Errorf("OpenAITimeout = %d, want default 30", cfg.OpenAITimeout)
	}
}
