// Package coach orchestrates one coaching conversation: it enriches each
// question with the golfer's profile, remembered notes, and relevant drills,
// calls the completion model, and keeps the durable record up to date.
package coach

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/fairwaylabs/fairway/internal/composer"
	"github.com/fairwaylabs/fairway/internal/extract"
	"github.com/fairwaylabs/fairway/internal/insight"
	"github.com/fairwaylabs/fairway/internal/llm"
	"github.com/fairwaylabs/fairway/internal/profile"
	"github.com/fairwaylabs/fairway/internal/retrieval"
	"github.com/fairwaylabs/fairway/internal/session"
	"github.com/fairwaylabs/fairway/internal/storage"
)

// DrillRetriever finds drill material relevant to a question. Nil means
// retrieval is disabled (no local embedding model available).
type DrillRetriever interface {
	Retrieve(ctx context.Context, query string, topK int) ([]retrieval.DrillChunk, error)
}

// Store is the durable record the coach writes to between and during
// sessions. Implemented by storage.Store.
type Store interface {
	AddMemory(m storage.Memory) error
	GetMemories(golferID string, limit int) ([]storage.Memory, error)
	AddInsight(i storage.Insight) error
	SaveInteraction(ix storage.Interaction) error
}

// Clock abstracts time for testability.
type Clock interface {
	Now() time.Time
}

type realClock struct{}

func (realClock) Now() time.Time { return time.Now() }

// Options tunes coach behavior. Zero values fall back to sensible defaults.
type Options struct {
	// HistoryWindow is how many recent turns are replayed to the model.
	HistoryWindow int
	// ExtractEvery runs profile extraction after every Nth interaction.
	ExtractEvery int
	// TopK is how many drill chunks to retrieve per question.
	TopK int
	// MemoryLimit caps how many remembered notes are injected per turn.
	MemoryLimit int
}

func (o Options) withDefaults() Options {
	if o.HistoryWindow <= 0 {
		o.HistoryWindow = 20
	}
	if o.ExtractEvery <= 0 {
		o.ExtractEvery = 3
	}
	if o.TopK <= 0 {
		o.TopK = 3
	}
	if o.MemoryLimit <= 0 {
		o.MemoryLimit = 5
	}
	return o
}

// Coach answers golfer questions and maintains their profile as a side
// effect of the conversation.
type Coach struct {
	client    llm.Chatter
	profiles  *profile.Manager
	extractor *extract.Extractor
	insights  *insight.Generator
	composer  *composer.Composer
	retriever DrillRetriever
	store     Store
	clock     Clock
	opts      Options
}

// New creates a Coach. retriever may be nil when drill retrieval is
// unavailable; everything else is required.
func New(client llm.Chatter, profiles *profile.Manager, extractor *extract.Extractor, insights *insight.Generator, comp *composer.Composer, retriever DrillRetriever, store Store, opts Options) *Coach {
	return &Coach{
		client:    client,
		profiles:  profiles,
		extractor: extractor,
		insights:  insights,
		composer:  comp,
		retriever: retriever,
		store:     store,
		clock:     realClock{},
		opts:      opts.withDefaults(),
	}
}

// Respond answers one question within the session. The profile, remembered
// notes, and drill lookups all degrade gracefully: only a completion failure
// surfaces as an error, and in that case the conversation history is left
// untouched so the golfer can simply retry.
func (c *Coach) Respond(ctx context.Context, sess *session.Session, input string) (string, error) {
	input = strings.TrimSpace(input)
	if input == "" {
		return "", fmt.Errorf("empty input")
	}

	golferID := sess.GolferID

	prof, err := c.profiles.Load(golferID)
	if err != nil {
		slog.Warn("profile load failed, continuing without it", "golfer_id", golferID, "error", err)
		prof = profile.Profile{GolferID: golferID}
	}

	notes := c.rememberedNotes(golferID)
	chunks := c.relevantDrills(ctx, input)

	messages := c.composer.Compose(profile.Summary(prof), notes, chunks, sess.Window(c.opts.HistoryWindow), input)

	reply, err := c.client.Chat(ctx, messages, nil)
	if err != nil {
		return "", fmt.Errorf("completing coach reply: %w", err)
	}
	reply = strings.TrimSpace(reply)

	sess.Append(session.RoleUser, input)
	sess.Append(session.RoleCoach, reply)

	c.recordExchange(golferID, input, reply)

	updated, err := c.profiles.RecordInteraction(golferID, input)
	if err != nil {
		slog.Warn("recording interaction failed", "golfer_id", golferID, "error", err)
		updated = prof
	}

	if updated.InteractionCount > 0 && updated.InteractionCount%c.opts.ExtractEvery == 0 {
		c.learn(ctx, sess)
	}

	return reply, nil
}

// EndSession runs a final extraction and reflection pass over the
// conversation and marks the session ended. Best effort: failures are logged
// and the session still closes.
func (c *Coach) EndSession(ctx context.Context, sess *session.Session) {
	if sess.Len() > 0 && !sess.Ended() {
		c.learn(ctx, sess)
		c.reflect(ctx, sess)
	}
	sess.End()
}

// learn runs one extraction pass over the recent conversation and folds the
// result into the durable profile and memory.
func (c *Coach) learn(ctx context.Context, sess *session.Session) {
	golferID := sess.GolferID
	transcript := Transcript(sess.Window(c.opts.HistoryWindow))

	res := c.extractor.Extract(ctx, transcript)

	if !res.Delta.Empty() {
		if _, err := c.profiles.Apply(golferID, res.Delta); err != nil {
			slog.Warn("applying extracted profile delta failed", "golfer_id", golferID, "error", err)
		}
	}

	for _, note := range res.Notes {
		m := storage.Memory{
			ID:        uuid.NewString(),
			GolferID:  golferID,
			Note:      note,
			CreatedAt: c.clock.Now().UTC(),
		}
		if err := c.store.AddMemory(m); err != nil {
			slog.Warn("saving memory note failed", "golfer_id", golferID, "error", err)
		}
	}
}

// reflect produces a coaching insight for the session and stores it.
func (c *Coach) reflect(ctx context.Context, sess *session.Session) {
	golferID := sess.GolferID
	note := c.insights.Reflect(ctx, Transcript(sess.History()))
	if note == "" {
		return
	}
	ins := storage.Insight{
		ID:        uuid.NewString(),
		GolferID:  golferID,
		Insight:   note,
		CreatedAt: c.clock.Now().UTC(),
	}
	if err := c.store.AddInsight(ins); err != nil {
		slog.Warn("saving insight failed", "golfer_id", golferID, "error", err)
	}
}

func (c *Coach) rememberedNotes(golferID string) []string {
	memories, err := c.store.GetMemories(golferID, c.opts.MemoryLimit)
	if err != nil {
		slog.Warn("loading memories failed", "golfer_id", golferID, "error", err)
		return nil
	}
	notes := make([]string, 0, len(memories))
	for _, m := range memories {
		notes = append(notes, m.Note)
	}
	return notes
}

func (c *Coach) relevantDrills(ctx context.Context, query string) []retrieval.DrillChunk {
	if c.retriever == nil {
		return nil
	}
	chunks, err := c.retriever.Retrieve(ctx, query, c.opts.TopK)
	if err != nil {
		slog.Warn("drill retrieval failed", "error", err)
		return nil
	}
	return chunks
}

func (c *Coach) recordExchange(golferID, input, reply string) {
	ix := storage.Interaction{
		ID:         uuid.NewString(),
		GolferID:   golferID,
		UserInput:  input,
		CoachReply: reply,
		CreatedAt:  c.clock.Now().UTC(),
	}
	if err := c.store.SaveInteraction(ix); err != nil {
		slog.Warn("saving interaction failed", "golfer_id", golferID, "error", err)
	}
}

// Transcript renders turns as plain text for extraction and reflection.
func Transcript(turns []session.Turn) string {
	var sb strings.Builder
	for _, t := range turns {
		if t.Role == session.RoleCoach {
			sb.WriteString("Coach: ")
		} else {
			sb.WriteString("Golfer: ")
		}
		sb.WriteString(t.Text)
		sb.WriteString("\n")
	}
	return sb.String()
}
