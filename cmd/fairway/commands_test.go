package main

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/fairwaylabs/fairway/internal/config"
)

type recordedRequest struct {
	Method string
	Path   string
	Body   string
	Auth   string
}

type testServer struct {
	server   *httptest.Server
	requests []recordedRequest
}

func newTestServer(t *testing.T, responses map[string]string) *testServer {
	t.Helper()
	ts := &testServer{}

	ts.server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var body bytes.Buffer
		body.ReadFrom(r.Body)

		ts.requests = append(ts.requests, recordedRequest{
			Method: r.Method,
			Path:   r.URL.RequestURI(),
			Body:   body.String(),
			Auth:   r.Header.Get("Authorization"),
		})

		key := r.Method + " " + r.URL.Path
		if resp, ok := responses[key]; ok {
			w.Header().Set("Content-Type", "application/json")
			w.Write([]byte(resp))
			return
		}

		w.WriteHeader(404)
		w.Write([]byte(`{"error":{"message":"not found","type":"not_found"}}`))
	}))

	t.Cleanup(ts.server.Close)
	return ts
}

func (ts *testServer) client() *apiClient {
	return &apiClient{
		baseURL:    ts.server.URL,
		token:      "test-token",
		httpClient: ts.server.Client(),
	}
}

var ctx = context.Background()

func TestChatPost(t *testing.T) {
	ts := newTestServer(t, map[string]string{
		"POST /v1/chat": `{"golfer_id":"sam","reply":"Slow your tempo down."}`,
	})

	client := ts.client()
	resp, err := client.post(ctx, "/v1/chat", map[string]string{
		"golfer_id": "sam",
		"message":   "I keep slicing my driver",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	var reply struct {
		Reply string `json:"reply"`
	}
	if err := decodeJSON(resp, &reply); err != nil {
		t.Fatalf("decode error: %v", err)
	}
	if reply.Reply != "Slow your tempo down." {
		t.Errorf("reply = %q, want coach reply", reply.Reply)
	}

	if len(ts.requests) != 1 {
		t.Fatalf("expected 1 request, got %d", len(ts.requests))
	}
	r := ts.requests[0]
	if r.Auth != "Bearer test-token" {
		t.Errorf("auth = %q, want Bearer test-token", r.Auth)
	}

	var body map[string]any
	if err := json.Unmarshal([]byte(r.Body), &body); err != nil {
		t.Fatalf("body parse error: %v", err)
	}
	if body["golfer_id"] != "sam" {
		t.Errorf("body.golfer_id = %v, want sam", body["golfer_id"])
	}
}

func TestDrillsAdd_Text(t *testing.T) {
	ts := newTestServer(t, map[string]string{
		"POST /v1/drills": `{"id":"drill-123","status":"queued"}`,
	})

	client := ts.client()
	req := map[string]any{
		"type":    "text",
		"title":   "Gate drill",
		"content": "Set up two tees as a gate for the putter head.",
		"tags":    []string{"putting"},
	}

	resp, err := client.post(ctx, "/v1/drills", req)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	var result map[string]string
	if err := decodeJSON(resp, &result); err != nil {
		t.Fatalf("decode error: %v", err)
	}
	if result["status"] != "queued" {
		t.Errorf("status = %q, want queued", result["status"])
	}
	if result["id"] != "drill-123" {
		t.Errorf("id = %q, want drill-123", result["id"])
	}

	var body map[string]any
	if err := json.Unmarshal([]byte(ts.requests[0].Body), &body); err != nil {
		t.Fatalf("body parse error: %v", err)
	}
	if body["type"] != "text" {
		t.Errorf("body.type = %v, want text", body["type"])
	}
	if body["content"] != "Set up two tees as a gate for the putter head." {
		t.Errorf("body.content = %v", body["content"])
	}
}

func TestDrillsAdd_MissingArgs(t *testing.T) {
	defer rootCmd.SetArgs(nil)

	rootCmd.SetArgs([]string{"drills", "add"})
	err := rootCmd.Execute()
	if err == nil {
		t.Fatal("expected error for missing args")
	}
	if !strings.Contains(err.Error(), "required") {
		t.Errorf("error = %q, want it to mention 'required'", err.Error())
	}
}

func TestProfileShow(t *testing.T) {
	ts := newTestServer(t, map[string]string{
		"GET /v1/golfers/sam/profile": `{"golfer_id":"sam","skill_level":"beginner","swing_issues":["slice"]}`,
	})

	client := ts.client()
	resp, err := client.get(ctx, "/v1/golfers/sam/profile")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	var p map[string]any
	if err := decodeJSON(resp, &p); err != nil {
		t.Fatalf("decode error: %v", err)
	}
	if p["skill_level"] != "beginner" {
		t.Errorf("skill_level = %v, want beginner", p["skill_level"])
	}
}

func TestProfileSet(t *testing.T) {
	ts := newTestServer(t, map[string]string{
		"PATCH /v1/golfers/sam/profile": `{"golfer_id":"sam","skill_level":"intermediate"}`,
	})

	client := ts.client()
	body := map[string]any{"skill_level": "intermediate"}
	resp, err := client.patch(ctx, "/v1/golfers/sam/profile", body)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	var updated map[string]any
	if err := decodeJSON(resp, &updated); err != nil {
		t.Fatalf("decode error: %v", err)
	}
	if updated["skill_level"] != "intermediate" {
		t.Errorf("skill_level = %v, want intermediate", updated["skill_level"])
	}

	var sentBody map[string]any
	if err := json.Unmarshal([]byte(ts.requests[0].Body), &sentBody); err != nil {
		t.Fatalf("body parse error: %v", err)
	}
	if sentBody["skill_level"] != "intermediate" {
		t.Errorf("body key = %v, want intermediate", sentBody["skill_level"])
	}
}

func TestMemoryList(t *testing.T) {
	ts := newTestServer(t, map[string]string{
		"GET /v1/golfers/sam/memory": `{"golfer_id":"sam","memories":[{"note":"plays twice a week","created_at":"2026-01-01T00:00:00Z"}]}`,
	})

	client := ts.client()
	resp, err := client.get(ctx, "/v1/golfers/sam/memory?limit=20")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	var body struct {
		Memories []struct {
			Note string `json:"note"`
		} `json:"memories"`
	}
	if err := decodeJSON(resp, &body); err != nil {
		t.Fatalf("decode error: %v", err)
	}
	if len(body.Memories) != 1 || body.Memories[0].Note != "plays twice a week" {
		t.Errorf("unexpected memories %+v", body.Memories)
	}
}

func TestStatusCommand_Stopped(t *testing.T) {
	ts := newTestServer(t, map[string]string{})
	ts.server.Close()

	client := ts.client()
	_, err := client.get(ctx, "/health")
	if err == nil {
		t.Fatal("expected error for stopped server")
	}
	if !strings.Contains(err.Error(), "not reachable") {
		t.Errorf("error = %q, want it to mention 'not reachable'", err.Error())
	}
}

func TestNoColorFlag(t *testing.T) {
	old := noColor
	defer func() { noColor = old }()

	noColor = true
	result := colorize(colorGreen, "test message")
	if strings.Contains(result, "\033[") {
		t.Errorf("colorize with noColor=true should not contain ANSI codes, got %q", result)
	}
	if result != "test message" {
		t.Errorf("result = %q, want %q", result, "test message")
	}

	noColor = false
	result = colorize(colorGreen, "test message")
	if !strings.Contains(result, "\033[") {
		t.Errorf("colorize with noColor=false should contain ANSI codes, got %q", result)
	}
}

func TestAPIClientAuth(t *testing.T) {
	ts := newTestServer(t, map[string]string{
		"GET /health": `{"status":"ok"}`,
	})

	client := ts.client()
	client.token = "my-secret-token"

	resp, err := client.get(ctx, "/health")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	resp.Body.Close()

	if len(ts.requests) != 1 {
		t.Fatalf("expected 1 request, got %d", len(ts.requests))
	}
	if ts.requests[0].Auth != "Bearer my-secret-token" {
		t.Errorf("auth = %q, want 'Bearer my-secret-token'", ts.requests[0].Auth)
	}
}

func TestDecodeJSON_ErrorResponse(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(401)
		w.Write([]byte(`{"error":{"message":"unauthorized","type":"auth_error"}}`))
	}))
	defer ts.Close()

	client := &apiClient{
		baseURL:    ts.URL,
		token:      "bad-token",
		httpClient: ts.Client(),
	}

	resp, err := client.get(ctx, "/v1/golfers/sam/profile")
	if err != nil {
		t.Fatalf("unexpected transport error: %v", err)
	}

	var result any
	err = decodeJSON(resp, &result)
	if err == nil {
		t.Fatal("expected error for 401 response")
	}
	if !strings.Contains(err.Error(), "401") {
		t.Errorf("error = %q, want it to contain '401'", err.Error())
	}
}

func TestConfigShowAll(t *testing.T) {
	cfg := config.Config{}
	cfg.Server.Port = 4000
	cfg.Ollama.FastModel = "phi3.5"

	keys := config.ShowAll(cfg)
	if len(keys) == 0 {
		t.Fatal("expected non-empty keys from ShowAll")
	}

	found := false
	for _, k := range keys {
		if k.Key == "server.port" && k.Value == "4000" {
			found = true
		}
	}
	if !found {
		t.Error("expected to find server.port=4000 in ShowAll output")
	}
}

func TestCountLabel(t *testing.T) {
	tests := []struct {
		count, limit int
		want         string
	}{
		{5, 100, "5"},
		{0, 100, "0"},
		{100, 100, "100+"},
		{150, 100, "150+"},
	}
	for _, tt := range tests {
		got := countLabel(tt.count, tt.limit)
		if got != tt.want {
			t.Errorf("countLabel(%d, %d) = %q, want %q", tt.count, tt.limit, got, tt.want)
		}
	}
}
