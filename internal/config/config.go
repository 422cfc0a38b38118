// Package config loads Fairway configuration from a JSON file backend with
// FAIRWAY_* environment variable overrides layered on top.
package config

import (
	"fmt"
)

type Config struct {
	Server    ServerConfig
	OpenAI    OpenAIConfig
	Ollama    OllamaConfig
	Storage   StorageConfig
	Coach     CoachConfig
	Retrieval RetrievalConfig
	Log       LogConfig
}

type ServerConfig struct {
	Port    int
	MCPPort int
	// APIToken protects the management API. Env-only; when empty a random
	// token is generated and persisted in the data dir.
	APIToken string
}

// OpenAIConfig points at the cloud completion service. BaseURL accepts any
// OpenAI-compatible endpoint (OpenAI, OpenRouter, a local proxy).
type OpenAIConfig struct {
	BaseURL     string
	APIKey      string
	Model       string
	Temperature float64
	MaxTokens   int
}

// OllamaConfig points at the optional local model used for profile
// extraction and drill embeddings.
type OllamaConfig struct {
	BaseURL    string
	FastModel  string
	EmbedModel string
}

type StorageConfig struct {
	DataDir string
}

type CoachConfig struct {
	HistoryWindow int // turns of history included per completion request
	ExtractEvery  int // interactions between profile extractions
}

type RetrievalConfig struct {
	TopK int
}

type LogConfig struct {
	Level string
}

func defaults() Config {
	return Config{
		Server: ServerConfig{
			Port:    7600,
			MCPPort: 7601,
		},
		OpenAI: OpenAIConfig{
			BaseURL:     "https://api.openai.com/v1",
			Model:       "gpt-4o-mini",
			Temperature: 0.2,
			MaxTokens:   1000,
		},
		Ollama: OllamaConfig{
			BaseURL:    "http://localhost:11434",
			FastModel:  "phi3.5",
			EmbedModel: "nomic-embed-text",
		},
		Storage: StorageConfig{
			DataDir: defaultDataDir(),
		},
		Coach: CoachConfig{
			HistoryWindow: 20,
			ExtractEvery:  3,
		},
		Retrieval: RetrievalConfig{
			TopK: 3,
		},
		Log: LogConfig{
			Level: "info",
		},
	}
}

// Load reads configuration from the JSON file backend
// ($XDG_CONFIG_HOME/fairway/config.json) and applies FAIRWAY_* environment
// overrides. The OpenAI API key is env-only and required.
func Load() (Config, error) {
	return loadWith(newFileBackend())
}

func loadWith(b Backend) (Config, error) {
	cfg := defaults()

	if err := applyBackend(&cfg, b); err != nil {
		return Config{}, err
	}

	applyEnvOverrides(&cfg)

	if cfg.OpenAI.APIKey == "" {
		return Config{}, fmt.Errorf("missing required config: completion API key. Set it via environment variable FAIRWAY_OPENAI_API_KEY")
	}

	return cfg, nil
}
