package api

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/fairwaylabs/fairway/internal/storage"
)

func handleListGolfers(deps AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ids, err := deps.Store.ListGolferIDs()
		if err != nil {
			httpError(w, http.StatusInternalServerError, "api_error", "failed to list golfers: %v", err)
			return
		}
		if ids == nil {
			ids = []string{}
		}
		writeJSON(w, map[string]any{"golfers": ids})
	}
}

func handleGetProfile(deps AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		golferID := chi.URLParam(r, "golferID")

		p, err := deps.Profiles.Load(golferID)
		if err != nil {
			httpError(w, http.StatusInternalServerError, "api_error", "failed to load profile: %v", err)
			return
		}
		writeJSON(w, p)
	}
}

// profilePatch is the set of fields PATCH may change. Slice fields replace
// the stored value wholesale; use the chat flow for incremental learning.
type profilePatch struct {
	SkillLevel  *string   `json:"skill_level"`
	SwingIssues *[]string `json:"swing_issues"`
	Goals       *[]string `json:"goals"`
}

func handlePatchProfile(deps AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		golferID := chi.URLParam(r, "golferID")

		r.Body = http.MaxBytesReader(w, r.Body, maxRequestBodySize)
		var patch profilePatch
		if err := json.NewDecoder(r.Body).Decode(&patch); err != nil {
			httpError(w, http.StatusBadRequest, "invalid_request_error", "invalid request body: %v", err)
			return
		}

		p, err := deps.Profiles.Load(golferID)
		if err != nil {
			httpError(w, http.StatusInternalServerError, "api_error", "failed to load profile: %v", err)
			return
		}

		if patch.SkillLevel != nil {
			level := strings.ToLower(strings.TrimSpace(*patch.SkillLevel))
			switch level {
			case "", "beginner", "intermediate", "advanced":
				p.SkillLevel = level
			default:
				httpError(w, http.StatusBadRequest, "invalid_request_error", "skill_level must be beginner, intermediate, or advanced")
				return
			}
		}
		if patch.SwingIssues != nil {
			p.SwingIssues = *patch.SwingIssues
		}
		if patch.Goals != nil {
			p.Goals = *patch.Goals
		}

		if err := deps.Profiles.Save(p); err != nil {
			httpError(w, http.StatusInternalServerError, "api_error", "failed to save profile: %v", err)
			return
		}
		writeJSON(w, p)
	}
}

func handleGetMemory(deps AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		golferID := chi.URLParam(r, "golferID")
		limit := parseIntParam(r, "limit", 20, 100)

		memories, err := deps.Store.GetMemories(golferID, limit)
		if err != nil {
			httpError(w, http.StatusInternalServerError, "api_error", "failed to load memories: %v", err)
			return
		}
		if memories == nil {
			memories = []storage.Memory{}
		}
		writeJSON(w, map[string]any{"golfer_id": golferID, "memories": memories})
	}
}

func handleGetInsights(deps AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		golferID := chi.URLParam(r, "golferID")
		limit := parseIntParam(r, "limit", 20, 100)

		insights, err := deps.Store.GetInsights(golferID, limit)
		if err != nil {
			httpError(w, http.StatusInternalServerError, "api_error", "failed to load insights: %v", err)
			return
		}
		if insights == nil {
			insights = []storage.Insight{}
		}
		writeJSON(w, map[string]any{"golfer_id": golferID, "insights": insights})
	}
}

func handleGetInteractions(deps AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		golferID := chi.URLParam(r, "golferID")
		limit := parseIntParam(r, "limit", 20, 100)

		interactions, err := deps.Store.GetRecentInteractions(golferID, limit)
		if err != nil {
			httpError(w, http.StatusInternalServerError, "api_error", "failed to load interactions: %v", err)
			return
		}
		if interactions == nil {
			interactions = []storage.Interaction{}
		}
		writeJSON(w, map[string]any{"golfer_id": golferID, "interactions": interactions})
	}
}
