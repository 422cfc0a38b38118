package api

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/fairwaylabs/fairway/internal/ingest"
	"github.com/fairwaylabs/fairway/internal/storage"
)

const maxDrillBodySize = 10 << 20 // 10MB

// DrillRequest submits drill material for the library. Exactly one of
// Content or URL must be set. Type "pdf" means Content carries a
// base64-encoded PDF.
type DrillRequest struct {
	Type    string   `json:"type"` // text | url | pdf
	Title   string   `json:"title"`
	Content string   `json:"content"`
	URL     string   `json:"url"`
	Tags    []string `json:"tags"`
}

func handleAddDrill(deps AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		r.Body = http.MaxBytesReader(w, r.Body, maxDrillBodySize)
		defer r.Body.Close()

		var req DrillRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			httpError(w, http.StatusBadRequest, "invalid_request_error", "invalid request body: %v", err)
			return
		}

		if req.Content == "" && req.URL == "" {
			httpError(w, http.StatusBadRequest, "invalid_request_error", "at least one of content or url is required")
			return
		}
		if req.Type == "" {
			req.Type = "text"
		}

		var resolvedContent string
		switch req.Type {
		case "url":
			if req.URL == "" {
				httpError(w, http.StatusBadRequest, "invalid_request_error", "url is required for type url")
				return
			}
			text, err := ingest.FetchURL(r.Context(), req.URL)
			if err != nil {
				httpError(w, http.StatusBadGateway, "api_error", "failed to fetch url: %v", err)
				return
			}
			resolvedContent = text
			if req.Title == "" {
				req.Title = req.URL
			}

		case "pdf":
			decoded, err := base64.StdEncoding.DecodeString(req.Content)
			if err != nil {
				httpError(w, http.StatusBadRequest, "invalid_request_error", "invalid base64 content")
				return
			}
			text, err := ingest.ExtractPDF(bytes.NewReader(decoded), int64(len(decoded)))
			if err != nil {
				httpError(w, http.StatusBadRequest, "invalid_request_error", "failed to extract pdf text: %v", err)
				return
			}
			resolvedContent = text

		case "text":
			resolvedContent = req.Content

		default:
			httpError(w, http.StatusBadRequest, "invalid_request_error", "type must be text, url, or pdf")
			return
		}

		tagsJSON := "[]"
		if req.Tags != nil {
			b, err := json.Marshal(req.Tags)
			if err != nil {
				httpError(w, http.StatusInternalServerError, "api_error", "failed to marshal tags: %v", err)
				return
			}
			tagsJSON = string(b)
		}

		doc := storage.DrillDoc{
			ID:        uuid.NewString(),
			Title:     req.Title,
			Content:   resolvedContent,
			Source:    req.Type,
			Tags:      tagsJSON,
			CreatedAt: time.Now().UTC(),
		}
		if err := deps.Store.SaveDrillDoc(doc); err != nil {
			httpError(w, http.StatusInternalServerError, "api_error", "failed to save drill: %v", err)
			return
		}

		payload, err := json.Marshal(ingest.EmbedPayload{DrillDocID: doc.ID})
		if err != nil {
			httpError(w, http.StatusInternalServerError, "api_error", "failed to create job payload: %v", err)
			return
		}
		job := storage.Job{
			ID:          uuid.NewString(),
			Type:        ingest.JobTypeDrillEmbed,
			PayloadJSON: string(payload),
		}
		if err := deps.Store.EnqueueJob(job); err != nil {
			httpError(w, http.StatusInternalServerError, "api_error", "failed to enqueue job: %v", err)
			return
		}

		writeJSON(w, map[string]string{
			"id":     doc.ID,
			"status": "queued",
		})
	}
}

func handleListDrills(deps AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		limit := parseIntParam(r, "limit", 20, 100)

		docs, err := deps.Store.ListDrillDocs(limit)
		if err != nil {
			httpError(w, http.StatusInternalServerError, "api_error", "failed to list drills: %v", err)
			return
		}
		if docs == nil {
			docs = []storage.DrillDoc{}
		}
		writeJSON(w, docs)
	}
}

func handleDeleteDrill(deps AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "id")

		// Vectors go first so a failed doc delete leaves no orphaned chunks
		// pointing at a missing doc.
		if deps.Vectors != nil {
			if err := deps.Vectors.DeleteBySource(id); err != nil {
				httpError(w, http.StatusInternalServerError, "api_error", "failed to delete drill vectors: %v", err)
				return
			}
		}

		err := deps.Store.DeleteDrillDoc(id)
		if errors.Is(err, storage.ErrNotFound) {
			httpError(w, http.StatusNotFound, "not_found", "drill not found")
			return
		}
		if err != nil {
			httpError(w, http.StatusInternalServerError, "api_error", "failed to delete drill: %v", err)
			return
		}

		writeJSON(w, map[string]string{"status": "deleted"})
	}
}
