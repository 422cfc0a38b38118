// Package composer assembles the chat messages sent to the coaching model:
// persona, golfer profile, remembered notes, relevant drill material, and the
// rolling conversation history.
package composer

import (
	"fmt"
	"sort"
	"strings"

	"github.com/fairwaylabs/fairway/internal/llm"
	"github.com/fairwaylabs/fairway/internal/retrieval"
	"github.com/fairwaylabs/fairway/internal/session"
)

const defaultMaxContextTokens = 4000

const personaPrompt = `You are GolfPro AI, an experienced golf coach. You give specific, actionable advice in a friendly and encouraging tone. Keep answers focused on the golfer's question, reference their known issues and goals when relevant, and suggest concrete drills when they help. Never invent facts about the golfer that are not in their profile.`

// Composer builds enriched chat requests within a token budget for injected
// context.
type Composer struct {
	MaxContextTokens int
}

// New creates a Composer with the given token budget for injected context.
// If maxContextTokens <= 0, the default (4000) is used.
func New(maxContextTokens int) *Composer {
	if maxContextTokens <= 0 {
		maxContextTokens = defaultMaxContextTokens
	}
	return &Composer{MaxContextTokens: maxContextTokens}
}

// Compose builds the full message list for one coaching turn: a system
// message carrying persona, profile, notes, and drill excerpts, followed by
// the history window and the golfer's new question.
func (c *Composer) Compose(profileSummary string, notes []string, chunks []retrieval.DrillChunk, history []session.Turn, userInput string) []llm.Message {
	messages := []llm.Message{
		{Role: "system", Content: c.buildSystemMessage(profileSummary, notes, chunks)},
	}

	for _, turn := range history {
		role := "user"
		if turn.Role == session.RoleCoach {
			role = "assistant"
		}
		messages = append(messages, llm.Message{Role: role, Content: turn.Text})
	}

	messages = append(messages, llm.Message{Role: "user", Content: userInput})
	return messages
}

// buildSystemMessage constructs the system message content, respecting the
// token budget by dropping lowest-scoring drill chunks first.
func (c *Composer) buildSystemMessage(profileSummary string, notes []string, chunks []retrieval.DrillChunk) string {
	var sb strings.Builder
	sb.WriteString(personaPrompt)

	if profileSummary != "" {
		sb.WriteString("\n\n[Golfer Profile]\n")
		sb.WriteString(profileSummary)
	}

	if len(notes) > 0 {
		sb.WriteString("\n\n[Remembered Notes]\n")
		for _, note := range notes {
			sb.WriteString("- ")
			sb.WriteString(note)
			sb.WriteString("\n")
		}
	}

	if len(chunks) == 0 {
		return sb.String()
	}

	// Sort chunks by score descending.
	sorted := make([]retrieval.DrillChunk, len(chunks))
	copy(sorted, chunks)
	sort.Slice(sorted, func(i, j int) bool {
		return sorted[i].Score > sorted[j].Score
	})

	// Budget: total injected content must stay under MaxContextTokens.
	usedTokens := EstimateTokens(sb.String())
	drillHeader := "\n\n[Relevant Drills]\n"
	remaining := c.MaxContextTokens - usedTokens - EstimateTokens(drillHeader)

	var selected []string
	for _, ch := range sorted {
		entry := formatChunk(ch)
		tokens := EstimateTokens(entry)
		if tokens > remaining {
			continue
		}
		selected = append(selected, entry)
		remaining -= tokens
	}

	if len(selected) > 0 {
		sb.WriteString(drillHeader)
		for _, entry := range selected {
			sb.WriteString(entry)
		}
	}

	return sb.String()
}

func formatChunk(ch retrieval.DrillChunk) string {
	return fmt.Sprintf("(Relevance: %.2f)\n%s\n\n", ch.Score, ch.Text)
}

// EstimateTokens provides a rough token count using 4 chars per token heuristic.
func EstimateTokens(text string) int {
	return (len(text) + 3) / 4
}
