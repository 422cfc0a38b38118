// Package extract turns raw coaching conversation into structured profile
// updates using a schema-constrained model call.
package extract

import (
	"context"
	"encoding/json"
	"log/slog"
	"strings"
	"time"

	"github.com/fairwaylabs/fairway/internal/llm"
	"github.com/fairwaylabs/fairway/internal/profile"
)

const extractionTimeout = 10 * time.Second

// Result is the structured output of one extraction pass: a partial profile
// update plus free-form notes worth remembering long term.
type Result struct {
	Delta profile.Delta
	Notes []string
}

// Extractor analyses conversation text and proposes profile updates. It
// prefers a local model when one is configured and falls back to the cloud
// client otherwise.
type Extractor struct {
	client llm.Chatter
}

// NewExtractor creates an Extractor backed by the given chat client.
func NewExtractor(client llm.Chatter) *Extractor {
	return &Extractor{client: client}
}

// Extract analyses the conversation and returns what it learned about the
// golfer. On any failure (timeout, model error, malformed JSON) it returns a
// zero Result — extraction must never break the coaching session.
func (e *Extractor) Extract(ctx context.Context, conversation string) Result {
	if strings.TrimSpace(conversation) == "" {
		return Result{}
	}

	ctx, cancel := context.WithTimeout(ctx, extractionTimeout)
	defer cancel()

	raw, err := e.client.Chat(ctx, buildPrompt(conversation), extractionSchema())
	if err != nil {
		slog.Warn("profile extraction chat failed", "error", err)
		return Result{}
	}

	var parsed struct {
		SkillLevel  string   `json:"skill_level"`
		SwingIssues []string `json:"swing_issues"`
		Goals       []string `json:"goals"`
		MemoryNotes []string `json:"memory_notes"`
	}
	if err := json.Unmarshal([]byte(raw), &parsed); err != nil {
		slog.Warn("failed to unmarshal extraction response", "error", err, "response", raw)
		return Result{}
	}

	return Result{
		Delta: profile.Delta{
			SkillLevel:  normalizeSkillLevel(parsed.SkillLevel),
			SwingIssues: cleanList(parsed.SwingIssues),
			Goals:       cleanList(parsed.Goals),
		},
		Notes: cleanList(parsed.MemoryNotes),
	}
}

// extractionSchema constrains the model to the exact fields we merge.
func extractionSchema() *llm.Schema {
	return &llm.Schema{
		Type: "object",
		Properties: map[string]llm.SchemaProperty{
			"skill_level": {
				Type:        "string",
				Description: "One of: beginner, intermediate, advanced. Empty string if the golfer did not state or clearly imply it.",
			},
			"swing_issues": {
				Type:        "array",
				Description: "Swing or technique problems the golfer mentioned, short lowercase phrases",
				Items:       &llm.SchemaProperty{Type: "string"},
			},
			"goals": {
				Type:        "array",
				Description: "Goals the golfer stated, short lowercase phrases",
				Items:       &llm.SchemaProperty{Type: "string"},
			},
			"memory_notes": {
				Type:        "array",
				Description: "Short standalone facts about this golfer worth remembering across sessions",
				Items:       &llm.SchemaProperty{Type: "string"},
			},
		},
		Required: []string{"skill_level", "swing_issues", "goals", "memory_notes"},
	}
}

var skillLevels = map[string]string{
	"beginner":     "beginner",
	"novice":       "beginner",
	"intermediate": "intermediate",
	"advanced":     "advanced",
	"expert":       "advanced",
}

// normalizeSkillLevel maps model output onto the canonical levels, dropping
// anything unrecognized rather than polluting the profile.
func normalizeSkillLevel(s string) string {
	return skillLevels[strings.ToLower(strings.TrimSpace(s))]
}

func cleanList(items []string) []string {
	var out []string
	for _, s := range items {
		if t := strings.TrimSpace(s); t != "" {
			out = append(out, t)
		}
	}
	return out
}
