package config

import (
	"testing"
)

// memBackend is an in-memory Backend for tests.
type memBackend struct {
	data map[string]any
}

func newMemBackend() *memBackend {
	return &memBackend{data: make(map[string]any)}
}

func (b *memBackend) GetString(key string) (string, bool, error) {
	v, ok := b.data[key]
	if !ok {
		return "", false, nil
	}
	s, _ := v.(string)
	return s, true, nil
}

func (b *memBackend) GetInt(key string) (int, bool, error) {
	v, ok := b.data[key]
	if !ok {
		return 0, false, nil
	}
	i, _ := v.(int)
	return i, true, nil
}

func (b *memBackend) SetString(key, val string) error { b.data[key] = val; return nil }
func (b *memBackend) SetInt(key string, val int) error { b.data[key] = val; return nil }
func (b *memBackend) Delete(key string) error          { delete(b.data, key); return nil }

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("FAIRWAY_OPENAI_API_KEY", "sk-test")

	cfg, err := loadWith(newMemBackend())
	if err != nil {
		t.Fatalf("loadWith error: %v", err)
	}

	if cfg.Server.Port != 7600 {
		t.Errorf("expected default port 7600, got %d", cfg.Server.Port)
	}
	if cfg.OpenAI.Model != "gpt-4o-mini" {
		t.Errorf("expected default model gpt-4o-mini, got %q", cfg.OpenAI.Model)
	}
	if cfg.OpenAI.Temperature != 0.2 {
		t.Errorf("expected default temperature 0.2, got %v", cfg.OpenAI.Temperature)
	}
	if cfg.Coach.HistoryWindow != 20 {
		t.Errorf("expected default history window 20, got %d", cfg.Coach.HistoryWindow)
	}
	if cfg.Coach.ExtractEvery != 3 {
		t.Errorf("expected default extract cadence 3, got %d", cfg.Coach.ExtractEvery)
	}
}

func TestLoad_MissingAPIKey(t *testing.T) {
	t.Setenv("FAIRWAY_OPENAI_API_KEY", "")

	if _, err := loadWith(newMemBackend()); err == nil {
		t.Fatal("expected error when API key is missing")
	}
}

func TestLoad_BackendValues(t *testing.T) {
	t.Setenv("FAIRWAY_OPENAI_API_KEY", "sk-test")

	b := newMemBackend()
	b.SetInt("server.port", 9900)
	b.SetString("openai.model", "gpt-4o")
	b.SetString("openai.temperature", "0.7")
	b.SetInt("coach.extract_every", 5)

	cfg, err := loadWith(b)
	if err != nil {
		t.Fatalf("loadWith error: %v", err)
	}

	if cfg.Server.Port != 9900 {
		t.Errorf("expected backend port 9900, got %d", cfg.Server.Port)
	}
	if cfg.OpenAI.Model != "gpt-4o" {
		t.Errorf("expected backend model, got %q", cfg.OpenAI.Model)
	}
	if cfg.OpenAI.Temperature != 0.7 {
		t.Errorf("expected backend temperature 0.7, got %v", cfg.OpenAI.Temperature)
	}
	if cfg.Coach.ExtractEvery != 5 {
		t.Errorf("expected backend cadence 5, got %d", cfg.Coach.ExtractEvery)
	}
}

func TestLoad_EnvOverridesBackend(t *testing.T) {
	t.Setenv("FAIRWAY_OPENAI_API_KEY", "sk-test")
	t.Setenv("FAIRWAY_SERVER_PORT", "8111")
	t.Setenv("FAIRWAY_OPENAI_TEMPERATURE", "0.5")

	b := newMemBackend()
	b.SetInt("server.port", 9900)

	cfg, err := loadWith(b)
	if err != nil {
		t.Fatalf("loadWith error: %v", err)
	}

	if cfg.Server.Port != 8111 {
		t.Errorf("expected env port 8111 to win, got %d", cfg.Server.Port)
	}
	if cfg.OpenAI.Temperature != 0.5 {
		t.Errorf("expected env temperature 0.5, got %v", cfg.OpenAI.Temperature)
	}
}

func TestLoad_InvalidEnvIntKeepsDefault(t *testing.T) {
	t.Setenv("FAIRWAY_OPENAI_API_KEY", "sk-test")
	t.Setenv("FAIRWAY_SERVER_PORT", "not-a-number")

	cfg, err := loadWith(newMemBackend())
	if err != nil {
		t.Fatalf("loadWith error: %v", err)
	}
	if cfg.Server.Port != 7600 {
		t.Errorf("expected default port to survive bad env value, got %d", cfg.Server.Port)
	}
}

func TestEnsureAPIToken_Configured(t *testing.T) {
	cfg := defaults()
	cfg.Server.APIToken = "explicit-token"

	token, err := EnsureAPIToken(cfg)
	if err != nil {
		t.Fatalf("EnsureAPIToken error: %v", err)
	}
	if token != "explicit-token" {
		t.Errorf("expected configured token to win, got %q", token)
	}
}

func TestEnsureAPIToken_GeneratesAndPersists(t *testing.T) {
	cfg := defaults()
	cfg.Storage.DataDir = t.TempDir()

	first, err := EnsureAPIToken(cfg)
	if err != nil {
		t.Fatalf("EnsureAPIToken error: %v", err)
	}
	if len(first) != 64 {
		t.Errorf("expected 64-char hex token, got %d chars", len(first))
	}

	second, err := EnsureAPIToken(cfg)
	if err != nil {
		t.Fatalf("EnsureAPIToken (second call) error: %v", err)
	}
	if second != first {
		t.Errorf("expected persisted token %q, got %q", first, second)
	}
}

func TestShowAll_ExcludesSecrets(t *testing.T) {
	t.Setenv("FAIRWAY_OPENAI_API_KEY", "sk-test")

	cfg, err := loadWith(newMemBackend())
	if err != nil {
		t.Fatalf("loadWith error: %v", err)
	}

	for _, k := range ShowAll(cfg) {
		if k.Key == "openai.api_key" {
			t.Error("secret key must not appear in ShowAll output")
		}
	}
}
