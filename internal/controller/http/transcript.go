package http

import (
	"context"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/vadim/supportbot/internal/domain/chat/entity"
	"github.com/vadim/supportbot/internal/domain/chat/service"
	"github.com/vadim/supportbot/internal/httpx/response"
	"github.com/vadim/supportbot/internal/storage"
)

// TranscriptService defines the interface for transcript administration
type TranscriptService interface {
	ListTranscripts(ctx context.Context, in service.ListTranscriptsInput) (*service.ListTranscriptsOutput, error)
	GetTranscript(ctx context.Context, sessionID string) (*entity.Transcript, error)
	ExportTranscript(ctx context.Context, sessionID string) (*storage.UploadOutput, error)
}

// TranscriptHandler handles admin HTTP requests for chat transcripts
type TranscriptHandler struct {
	svc TranscriptService
}

// NewTranscriptHandler creates a new transcript handler
func NewTranscriptHandler(svc TranscriptService) *TranscriptHandler {
	return &TranscriptHandler{svc: svc}
}

// RegisterRoutes registers transcript routes
func (h *TranscriptHandler) RegisterRoutes(r chi.Router) {
	r.Route("/transcripts", func(r chi.Router) {
		r.Get("/", h.ListTranscripts())
		r.Get("/{sessionId}", h.GetTranscript())
		r.Post("/{sessionId}/export", h.ExportTranscript())
	})
}

// ListTranscriptsResponse represents the response for listing transcripts
type ListTranscriptsResponse struct {
	Transcripts []entity.TranscriptSummary `json:"transcripts"`
	Total       int64                      `json:"total"`
	HasMore     bool                       `json:"hasMore"`
	Limit       int                        `json:"limit"`
	Offset      int                        `json:"offset"`
}

// ListTranscripts handles GET /transcripts
func (h *TranscriptHandler) ListTranscripts() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		limit := 50
		if l := r.URL.Query().Get("limit"); l != "" {
			if parsed, err := strconv.Atoi(l); err == nil && parsed > 0 {
				limit = parsed
				if limit > 100 {
					limit = 100
				}
			}
		}

		offset := 0
		if o := r.URL.Query().Get("offset"); o != "" {
			if parsed, err := strconv.Atoi(o); err == nil && parsed >= 0 {
				offset = parsed
			}
		}

		out, err := h.svc.ListTranscripts(r.Context(), service.ListTranscriptsInput{
			Limit:  limit,
			Offset: offset,
		})
		if err != nil {
			handleChatError(w, err)
			return
		}

		response.OK(w, ListTranscriptsResponse{
			Transcripts: out.Transcripts,
			Total:       out.Total,
			HasMore:     out.HasMore,
			Limit:       limit,
			Offset:      offset,
		})
	}
}

// GetTranscript handles GET /transcripts/{sessionId}
func (h *TranscriptHandler) GetTranscript() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		tr, err := h.svc.GetTranscript(r.Context(), chi.URLParam(r, "sessionId"))
		if err != nil {
			handleChatError(w, err)
			return
		}

		response.OK(w, tr)
	}
}

// ExportTranscript handles POST /transcripts/{sessionId}/export
func (h *TranscriptHandler) ExportTranscript() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		out, err := h.svc.ExportTranscript(r.Context(), chi.URLParam(r, "sessionId"))
		if err != nil {
			handleChatError(w, err)
			return
		}

		response.Created(w, out)
	}
}
