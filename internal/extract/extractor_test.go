package extract

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/fairwaylabs/fairway/internal/llm"
)

type mockChatter struct {
	response string
	err      error
	calls    int
	messages []llm.Message
	schema   *llm.Schema
}

func (m *mockChatter) Chat(ctx context.Context, messages []llm.Message, schema *llm.Schema) (string, error) {
	m.calls++
	m.messages = messages
	m.schema = schema
	if m.err != nil {
		return "", m.err
	}
	return m.response, nil
}

func TestExtractParsesStructuredOutput(t *testing.T) {
	mock := &mockChatter{response: `{
		"skill_level": "beginner",
		"swing_issues": ["slice"],
		"goals": ["break 90"],
		"memory_notes": ["plays weekly at a links course"]
	}`}
	e := NewExtractor(mock)

	res := e.Extract(context.Background(), "User: I keep slicing my driver. I just started playing and want to break 90.")

	if res.Delta.SkillLevel != "beginner" {
		t.Errorf("expected skill level beginner, got %q", res.Delta.SkillLevel)
	}
	if len(res.Delta.SwingIssues) != 1 || res.Delta.SwingIssues[0] != "slice" {
		t.Errorf("unexpected swing issues %v", res.Delta.SwingIssues)
	}
	if len(res.Delta.Goals) != 1 || res.Delta.Goals[0] != "break 90" {
		t.Errorf("unexpected goals %v", res.Delta.Goals)
	}
	if len(res.Notes) != 1 || res.Notes[0] != "plays weekly at a links course" {
		t.Errorf("unexpected notes %v", res.Notes)
	}
}

func TestExtractSendsSchemaAndTranscript(t *testing.T) {
	mock := &mockChatter{response: `{"skill_level":"","swing_issues":[],"goals":[],"memory_notes":[]}`}
	e := NewExtractor(mock)

	e.Extract(context.Background(), "User: hello coach")

	if mock.schema == nil {
		t.Fatal("expected a schema-constrained call")
	}
	for _, field := range []string{"skill_level", "swing_issues", "goals", "memory_notes"} {
		if _, ok := mock.schema.Properties[field]; !ok {
			t.Errorf("schema missing field %q", field)
		}
	}
	if len(mock.messages) != 2 || mock.messages[0].Role != "system" {
		t.Fatalf("unexpected messages %+v", mock.messages)
	}
	if !strings.Contains(mock.messages[1].Content, "hello coach") {
		t.Errorf("transcript not forwarded: %q", mock.messages[1].Content)
	}
}

func TestExtractEmptyConversationSkipsModel(t *testing.T) {
	mock := &mockChatter{}
	e := NewExtractor(mock)

	res := e.Extract(context.Background(), "   ")
	if !res.Delta.Empty() || len(res.Notes) != 0 {
		t.Errorf("expected zero result, got %+v", res)
	}
	if mock.calls != 0 {
		t.Errorf("model should not be called for empty input, got %d calls", mock.calls)
	}
}

func TestExtractFailsSoftOnChatError(t *testing.T) {
	mock := &mockChatter{err: errors.New("model unavailable")}
	e := NewExtractor(mock)

	res := e.Extract(context.Background(), "User: my grip feels off")
	if !res.Delta.Empty() || len(res.Notes) != 0 {
		t.Errorf("expected zero result on chat failure, got %+v", res)
	}
}

func TestExtractFailsSoftOnMalformedJSON(t *testing.T) {
	mock := &mockChatter{response: "Sure! Here is what I found: slice, break 90"}
	e := NewExtractor(mock)

	res := e.Extract(context.Background(), "User: my grip feels off")
	if !res.Delta.Empty() {
		t.Errorf("expected zero result on malformed response, got %+v", res)
	}
}

func TestExtractNormalizesSkillLevel(t *testing.T) {
	cases := map[string]string{
		"Beginner":     "beginner",
		"  NOVICE ":    "beginner",
		"intermediate": "intermediate",
		"expert":       "advanced",
		"tour pro":     "",
		"":             "",
	}
	for input, want := range cases {
		if got := normalizeSkillLevel(input); got != want {
			t.Errorf("normalizeSkillLevel(%q) = %q, want %q", input, got, want)
		}
	}
}

func TestExtractDropsBlankListItems(t *testing.T) {
	mock := &mockChatter{response: `{"skill_level":"","swing_issues":[" slice ","","  "],"goals":[],"memory_notes":[""]}`}
	e := NewExtractor(mock)

	res := e.Extract(context.Background(), "User: still slicing")
	if len(res.Delta.SwingIssues) != 1 || res.Delta.SwingIssues[0] != "slice" {
		t.Errorf("expected trimmed single issue, got %v", res.Delta.SwingIssues)
	}
	if len(res.Notes) != 0 {
		t.Errorf("expected blank notes dropped, got %v", res.Notes)
	}
}
