// Package llm defines the completion-service boundary: typed chat messages,
// optional JSON-schema constrained output, and the client interfaces the rest
// of the application consumes. Two backends implement them — an
// OpenAI-compatible cloud client and a local Ollama client.
package llm

import "context"

// Message is a role-tagged chat message.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Schema describes the expected JSON output structure for structured
// completion responses.
type Schema struct {
	Type       string                    `json:"type"`
	Properties map[string]SchemaProperty `json:"properties"`
	Required   []string                  `json:"required,omitempty"`
}

// SchemaProperty describes a single field within a Schema.
type SchemaProperty struct {
	Type        string          `json:"type"`
	Description string          `json:"description,omitempty"`
	Items       *SchemaProperty `json:"items,omitempty"`
}

// Chatter is the completion-service interface. When jsonSchema is non-nil the
// backend is asked for schema-conforming JSON output.
type Chatter interface {
	Chat(ctx context.Context, messages []Message, jsonSchema *Schema) (string, error)
}

// Embedder generates an embedding vector for a single text.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
}
