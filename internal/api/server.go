// Package api exposes the coaching service over HTTP: a chat endpoint, the
// golfer profile and memory resources, drill library management, and the
// embedded web dashboard.
package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/fairwaylabs/fairway/internal/profile"
	"github.com/fairwaylabs/fairway/internal/session"
	"github.com/fairwaylabs/fairway/internal/storage"
)

const maxRequestBodySize = 1 << 20 // 1MB

// Responder answers a golfer question within a session. Implemented by
// coach.Coach.
type Responder interface {
	Respond(ctx context.Context, sess *session.Session, input string) (string, error)
	EndSession(ctx context.Context, sess *session.Session)
}

// VectorDeleter removes drill vectors when their source document is deleted.
type VectorDeleter interface {
	DeleteBySource(sourceID string) error
}

// AppDeps carries everything the HTTP layer needs.
type AppDeps struct {
	Store    *storage.Store
	Profiles *profile.Manager
	Coach    Responder
	Sessions *session.Registry
	Vectors  VectorDeleter // optional; if nil, vector cleanup is skipped on delete
	Token    string
}

// NewHandler builds the full HTTP handler: unauthenticated health and
// dashboard, bearer-authenticated API under /v1.
func NewHandler(deps AppDeps) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)

	r.Get("/health", handleHealth)
	r.Get("/", DashboardIndex())
	r.Handle("/static/*", DashboardStatic())

	r.Route("/v1", func(r chi.Router) {
		r.Use(BearerAuth(deps.Token))

		r.Post("/chat", handleChat(deps))
		r.Post("/sessions/{golferID}/end", handleEndSession(deps))

		r.Get("/golfers", handleListGolfers(deps))
		r.Get("/golfers/{golferID}/profile", handleGetProfile(deps))
		r.Patch("/golfers/{golferID}/profile", handlePatchProfile(deps))
		r.Get("/golfers/{golferID}/memory", handleGetMemory(deps))
		r.Get("/golfers/{golferID}/insights", handleGetInsights(deps))
		r.Get("/golfers/{golferID}/interactions", handleGetInteractions(deps))

		r.Post("/drills", handleAddDrill(deps))
		r.Get("/drills", handleListDrills(deps))
		r.Delete("/drills/{id}", handleDeleteDrill(deps))
	})

	return r
}

func handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.Write([]byte(`{"status":"ok"}`))
}

func httpError(w http.ResponseWriter, code int, errType string, format string, args ...any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	msg := fmt.Sprintf(format, args...)
	json.NewEncoder(w).Encode(map[string]any{
		"error": map[string]any{
			"message": msg,
			"type":    errType,
		},
	})
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(v)
}

func parseIntParam(r *http.Request, key string, defaultVal, maxVal int) int {
	s := r.URL.Query().Get(key)
	if s == "" {
		return defaultVal
	}
	v, err := strconv.Atoi(s)
	if err != nil || v < 0 {
		return defaultVal
	}
	if maxVal > 0 && v > maxVal {
		return maxVal
	}
	return v
}
