// Package profile owns the golfer profile: loading it from storage, merging
// extracted deltas into it, and summarizing it for prompt injection.
package profile

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/fairwaylabs/fairway/internal/storage"
)

// Store defines the storage operations the Manager needs.
// Implemented by storage.Store.
type Store interface {
	GetProfile(golferID string) (storage.ProfileRow, error)
	UpsertProfile(row storage.ProfileRow) error
}

// Clock abstracts time for testability.
type Clock interface {
	Now() time.Time
}

type realClock struct{}

func (realClock) Now() time.Time { return time.Now() }

type cachedProfile struct {
	profile  Profile
	cachedAt time.Time
}

// Manager provides cached access to golfer profiles stored in SQLite.
type Manager struct {
	store Store
	clock Clock
	ttl   time.Duration

	mu     sync.Mutex
	cached map[string]cachedProfile
}

// NewManager creates a Manager with a 60-second cache TTL.
func NewManager(store Store) *Manager {
	return NewManagerWithClock(store, realClock{}, 60*time.Second)
}

// NewManagerWithClock creates a Manager with a custom clock (for testing).
func NewManagerWithClock(store Store, clock Clock, ttl time.Duration) *Manager {
	return &Manager{
		store:  store,
		clock:  clock,
		ttl:    ttl,
		cached: make(map[string]cachedProfile),
	}
}

// Load returns the stored profile for golferID. A golfer never seen before
// gets a fresh empty profile carrying that ID — first contact is not an
// error.
func (m *Manager) Load(golferID string) (Profile, error) {
	m.mu.Lock()
	if c, ok := m.cached[golferID]; ok && m.clock.Now().Before(c.cachedAt.Add(m.ttl)) {
		p := copyProfile(c.profile)
		m.mu.Unlock()
		return p, nil
	}
	m.mu.Unlock()

	row, err := m.store.GetProfile(golferID)
	if errors.Is(err, storage.ErrNotFound) {
		return Profile{GolferID: golferID}, nil
	}
	if err != nil {
		return Profile{}, fmt.Errorf("loading profile %q: %w", golferID, err)
	}

	p := fromRow(row)

	m.mu.Lock()
	m.cached[golferID] = cachedProfile{profile: copyProfile(p), cachedAt: m.clock.Now()}
	m.mu.Unlock()
	return p, nil
}

// Save durably writes the profile and refreshes the cache. Single writer;
// last write wins.
func (m *Manager) Save(p Profile) error {
	if p.GolferID == "" {
		return fmt.Errorf("saving profile: golfer id is empty")
	}

	row, err := toRow(p)
	if err != nil {
		return fmt.Errorf("encoding profile %q: %w", p.GolferID, err)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if err := m.store.UpsertProfile(row); err != nil {
		return fmt.Errorf("saving profile %q: %w", p.GolferID, err)
	}

	m.cached[p.GolferID] = cachedProfile{profile: copyProfile(p), cachedAt: m.clock.Now()}
	return nil
}

// Merge folds a delta into the profile: set fields are unioned (monotonic,
// no duplicates), SkillLevel is overwritten when the delta carries one, and
// LastUpdated is refreshed. The input profile is not mutated.
func (m *Manager) Merge(p Profile, d Delta) Profile {
	out := copyProfile(p)
	if d.SkillLevel != "" {
		out.SkillLevel = d.SkillLevel
	}
	out.SwingIssues = unionStrings(out.SwingIssues, d.SwingIssues)
	out.Goals = unionStrings(out.Goals, d.Goals)
	out.LastUpdated = m.clock.Now()
	return out
}

// Apply loads, merges, and saves in one step. Used after each extraction.
func (m *Manager) Apply(golferID string, d Delta) (Profile, error) {
	p, err := m.Load(golferID)
	if err != nil {
		return Profile{}, err
	}
	merged := m.Merge(p, d)
	if err := m.Save(merged); err != nil {
		return Profile{}, err
	}
	return merged, nil
}

// RecordInteraction bumps the interaction counter and remembers the last
// question asked, persisting the result.
func (m *Manager) RecordInteraction(golferID, lastMessage string) (Profile, error) {
	p, err := m.Load(golferID)
	if err != nil {
		return Profile{}, err
	}
	p.InteractionCount++
	p.LastMessage = lastMessage
	p.LastUpdated = m.clock.Now()
	if err := m.Save(p); err != nil {
		return Profile{}, err
	}
	return p, nil
}

// maxSummaryChars caps the summary to stay under ~500 tokens (4 chars/token).
const maxSummaryChars = 2000

// Summary returns a compact string representation of the profile suitable
// for injection into the coaching system prompt.
func Summary(p Profile) string {
	var parts []string

	if p.SkillLevel != "" {
		parts = append(parts, fmt.Sprintf("Skill level: %s.", p.SkillLevel))
	}
	if len(p.SwingIssues) > 0 {
		parts = append(parts, fmt.Sprintf("Known swing issues: %s.", strings.Join(p.SwingIssues, ", ")))
	}
	if len(p.Goals) > 0 {
		parts = append(parts, fmt.Sprintf("Goals: %s.", strings.Join(p.Goals, ", ")))
	}
	if p.InteractionCount > 0 {
		parts = append(parts, fmt.Sprintf("You have coached this golfer %d times before.", p.InteractionCount))
	}

	if len(parts) == 0 {
		return "New golfer: no profile yet."
	}

	summary := strings.Join(parts, " ")
	if len(summary) > maxSummaryChars {
		if idx := strings.LastIndex(summary[:maxSummaryChars], " "); idx > 0 {
			summary = summary[:idx]
		} else {
			summary = summary[:maxSummaryChars]
		}
	}
	return summary
}

// unionStrings appends items from add that are not already present in base,
// comparing trimmed and case-folded. Order is base first, then new items in
// their given order.
func unionStrings(base, add []string) []string {
	out := make([]string, 0, len(base)+len(add))
	seen := make(map[string]bool, len(base)+len(add))
	for _, s := range base {
		key := normalizeItem(s)
		if key == "" || seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, s)
	}
	for _, s := range add {
		key := normalizeItem(s)
		if key == "" || seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, strings.TrimSpace(s))
	}
	return out
}

func normalizeItem(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

func copyProfile(p Profile) Profile {
	cp := p
	if p.SwingIssues != nil {
		cp.SwingIssues = make([]string, len(p.SwingIssues))
		copy(cp.SwingIssues, p.SwingIssues)
	}
	if p.Goals != nil {
		cp.Goals = make([]string, len(p.Goals))
		copy(cp.Goals, p.Goals)
	}
	return cp
}

func fromRow(row storage.ProfileRow) Profile {
	p := Profile{
		GolferID:         row.GolferID,
		SkillLevel:       row.SkillLevel,
		InteractionCount: row.InteractionCount,
		LastMessage:      row.LastMessage,
		LastUpdated:      row.UpdatedAt,
	}
	unmarshalList(row.GolferID, "swing_issues", row.SwingIssues, &p.SwingIssues)
	unmarshalList(row.GolferID, "goals", row.Goals, &p.Goals)
	return p
}

func toRow(p Profile) (storage.ProfileRow, error) {
	issues, err := marshalList(p.SwingIssues)
	if err != nil {
		return storage.ProfileRow{}, err
	}
	goals, err := marshalList(p.Goals)
	if err != nil {
		return storage.ProfileRow{}, err
	}
	return storage.ProfileRow{
		GolferID:         p.GolferID,
		SkillLevel:       p.SkillLevel,
		SwingIssues:      issues,
		Goals:            goals,
		InteractionCount: p.InteractionCount,
		LastMessage:      p.LastMessage,
		UpdatedAt:        p.LastUpdated,
	}, nil
}

func marshalList(items []string) (string, error) {
	if items == nil {
		return "[]", nil
	}
	b, err := json.Marshal(items)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// unmarshalList decodes a JSON string array, logging a warning if the stored
// value is malformed instead of failing the load.
func unmarshalList(golferID, field, raw string, target *[]string) {
	if raw == "" {
		return
	}
	if err := json.Unmarshal([]byte(raw), target); err != nil {
		slog.Warn("malformed profile field, skipping", "golfer_id", golferID, "field", field, "error", err)
	}
}
