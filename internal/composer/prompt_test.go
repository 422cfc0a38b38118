package composer

import (
	"strings"
	"testing"

	"github.com/fairwaylabs/fairway/internal/retrieval"
	"github.com/fairwaylabs/fairway/internal/session"
)

func TestComposeBasicShape(t *testing.T) {
	c := New(0)

	sess := session.New("abc123")
	sess.Append(session.RoleUser, "I keep slicing my driver")
	sess.Append(session.RoleCoach, "Let's check your grip first.")

	messages := c.Compose("Skill level: beginner.", nil, nil, sess.History(), "What about my stance?")

	if len(messages) != 4 {
		t.Fatalf("expected system + 2 history + user, got %d messages", len(messages))
	}
	if messages[0].Role != "system" {
		t.Errorf("first message should be system, got %q", messages[0].Role)
	}
	if !strings.Contains(messages[0].Content, "GolfPro AI") {
		t.Errorf("system message missing persona: %q", messages[0].Content)
	}
	if !strings.Contains(messages[0].Content, "Skill level: beginner.") {
		t.Errorf("system message missing profile summary")
	}
	if messages[1].Role != "user" || messages[1].Content != "I keep slicing my driver" {
		t.Errorf("unexpected first history message %+v", messages[1])
	}
	if messages[2].Role != "assistant" {
		t.Errorf("coach turns must map to assistant role, got %q", messages[2].Role)
	}
	if last := messages[len(messages)-1]; last.Role != "user" || last.Content != "What about my stance?" {
		t.Errorf("unexpected final message %+v", last)
	}
}

func TestComposeIncludesNotesAndDrills(t *testing.T) {
	c := New(0)

	notes := []string{"plays weekly at a links course"}
	chunks := []retrieval.DrillChunk{
		{Text: "Alignment stick drill: place two sticks...", Score: 0.9},
	}

	messages := c.Compose("", notes, chunks, nil, "help")
	sys := messages[0].Content

	if !strings.Contains(sys, "plays weekly at a links course") {
		t.Errorf("system message missing note: %q", sys)
	}
	if !strings.Contains(sys, "Alignment stick drill") {
		t.Errorf("system message missing drill chunk: %q", sys)
	}
	if !strings.Contains(sys, "[Relevant Drills]") {
		t.Errorf("missing drill header: %q", sys)
	}
}

func TestComposeBudgetDropsLowestScoringChunks(t *testing.T) {
	// Budget fits roughly one chunk beyond the persona.
	c := New(EstimateTokens(personaPrompt) + 60)

	big := strings.Repeat("putting tempo drill ", 10) // ~200 chars, ~50 tokens
	chunks := []retrieval.DrillChunk{
		{Text: "low " + big, Score: 0.2},
		{Text: "high " + big, Score: 0.9},
	}

	sys := c.Compose("", nil, chunks, nil, "help")[0].Content

	if !strings.Contains(sys, "high ") {
		t.Errorf("highest-scoring chunk should survive the budget: %q", sys)
	}
	if strings.Contains(sys, "low ") {
		t.Errorf("lowest-scoring chunk should be dropped: %q", sys)
	}
}

func TestComposeNoContextOmitsHeaders(t *testing.T) {
	c := New(0)

	sys := c.Compose("", nil, nil, nil, "hi")[0].Content
	if strings.Contains(sys, "[Golfer Profile]") || strings.Contains(sys, "[Relevant Drills]") || strings.Contains(sys, "[Remembered Notes]") {
		t.Errorf("empty context should not emit section headers: %q", sys)
	}
}

func TestEstimateTokens(t *testing.T) {
	cases := map[string]int{
		"":      0,
		"abcd":  1,
		"abcde": 2,
	}
	for text, want := range cases {
		if got := EstimateTokens(text); got != want {
			t.Errorf("EstimateTokens(%q) = %d, want %d", text, got, want)
		}
	}
}
