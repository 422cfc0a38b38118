// Package insight produces short coaching reflections from session
// transcripts: what the golfer is working on and what the coach should focus
// on next time.
package insight

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/fairwaylabs/fairway/internal/llm"
)

const reflectionTimeout = 15 * time.Second

const reflectionPrompt = `You are reviewing a golf coaching conversation. Write ONE short paragraph (2-4 sentences) of coaching notes: what the golfer is struggling with, what progress they made, and what the coach should focus on next session. Write in plain prose addressed to the coach. Do not use lists or headers.`

// Generator derives coaching insights from conversation transcripts.
type Generator struct {
	client llm.Chatter
}

// NewGenerator creates a Generator backed by the given chat client.
func NewGenerator(client llm.Chatter) *Generator {
	return &Generator{client: client}
}

// Reflect analyses the transcript and returns a one-paragraph coaching
// insight. On any failure it returns an empty string — reflection is
// best-effort and must never break the session.
func (g *Generator) Reflect(ctx context.Context, transcript string) string {
	if strings.TrimSpace(transcript) == "" {
		return ""
	}

	ctx, cancel := context.WithTimeout(ctx, reflectionTimeout)
	defer cancel()

	messages := []llm.Message{
		{Role: "system", Content: reflectionPrompt},
		{Role: "user", Content: "Conversation transcript:\n\n" + transcript},
	}

	out, err := g.client.Chat(ctx, messages, nil)
	if err != nil {
		slog.Warn("insight reflection failed", "error", err)
		return ""
	}
	return strings.TrimSpace(out)
}
