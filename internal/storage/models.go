package storage

import (
	"errors"
	"time"
)

// ErrNotFound is returned when a requested record does not exist.
var ErrNotFound = errors.New("not found")

// ProfileRow is the stored form of a golfer profile. Set-valued fields are
// JSON arrays stored as text; the profile package owns the typed view.
type ProfileRow struct {
	GolferID         string
	SkillLevel       string
	SwingIssues      string // JSON array stored as text
	Goals            string // JSON array stored as text
	InteractionCount int
	LastMessage      string
	UpdatedAt        time.Time
}

// Memory is one long-term memory note the coach keeps about a golfer.
type Memory struct {
	ID        string    `json:"id"`
	GolferID  string    `json:"golfer_id"`
	Note      string    `json:"note"`
	CreatedAt time.Time `json:"created_at"`
}

// Insight is one coaching insight produced by periodic self-reflection.
type Insight struct {
	ID        string    `json:"id"`
	GolferID  string    `json:"golfer_id"`
	Insight   string    `json:"insight"`
	CreatedAt time.Time `json:"created_at"`
}

// Interaction records one completed coach exchange.
type Interaction struct {
	ID         string    `json:"id"`
	GolferID   string    `json:"golfer_id"`
	UserInput  string    `json:"user_input"`
	CoachReply string    `json:"coach_reply"`
	CreatedAt  time.Time `json:"created_at"`
}

// DrillDoc is a coaching document in the drill library.
type DrillDoc struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	Content   string    `json:"content"`
	Source    string    `json:"source"`
	Tags      string    `json:"tags"` // JSON array stored as text
	CreatedAt time.Time `json:"created_at"`
	VectorID  string    `json:"vector_id"`
}

// Job is a queued background task (drill embedding).
type Job struct {
	ID          string
	Type        string
	PayloadJSON string
	Status      string // "pending", "running", "completed", "failed"
	Attempts    int
	MaxAttempts int
	RunAfter    time.Time
	CreatedAt   time.Time
	UpdatedAt   time.Time
	LastError   string
}
