package api

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
)

// ChatRequest is one golfer question addressed to the coach.
type ChatRequest struct {
	GolferID string `json:"golfer_id"`
	Message  string `json:"message"`
}

// ChatResponse carries the coach's reply.
type ChatResponse struct {
	GolferID string `json:"golfer_id"`
	Reply    string `json:"reply"`
}

func handleChat(deps AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		r.Body = http.MaxBytesReader(w, r.Body, maxRequestBodySize)
		defer r.Body.Close()

		var req ChatRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			httpError(w, http.StatusBadRequest, "invalid_request_error", "invalid request body: %v", err)
			return
		}

		req.GolferID = strings.TrimSpace(req.GolferID)
		if req.GolferID == "" {
			httpError(w, http.StatusBadRequest, "invalid_request_error", "golfer_id is required")
			return
		}
		if strings.TrimSpace(req.Message) == "" {
			httpError(w, http.StatusBadRequest, "invalid_request_error", "message is required")
			return
		}

		sess := deps.Sessions.Get(req.GolferID)
		reply, err := deps.Coach.Respond(r.Context(), sess, req.Message)
		if err != nil {
			httpError(w, http.StatusBadGateway, "api_error", "coach unavailable: %v", err)
			return
		}

		writeJSON(w, ChatResponse{GolferID: req.GolferID, Reply: reply})
	}
}

func handleEndSession(deps AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		golferID := chi.URLParam(r, "golferID")

		sess, ok := deps.Sessions.Lookup(golferID)
		if !ok {
			httpError(w, http.StatusNotFound, "not_found", "no active session for golfer %s", golferID)
			return
		}

		deps.Coach.EndSession(r.Context(), sess)
		deps.Sessions.Drop(golferID)

		writeJSON(w, map[string]string{"status": "ended"})
	}
}
