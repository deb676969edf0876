package http

import (
	"context"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/vadim/supportbot/internal/domain/intent/entity"
	"github.com/vadim/supportbot/internal/httpx/response"
)

// IntentService defines the interface for the read-only intent catalog
type IntentService interface {
	ListIntents(ctx context.Context) ([]entity.Intent, error)
	GetIntent(ctx context.Context, id string) (*entity.Intent, error)
}

// IntentHandler handles HTTP requests for intents
type IntentHandler struct {
	svc IntentService
}

// NewIntentHandler creates a new intent handler
func NewIntentHandler(svc IntentService) *IntentHandler {
	return &IntentHandler{svc: svc}
}

// RegisterRoutes registers intent routes
func (h *IntentHandler) RegisterRoutes(r chi.Router) {
	r.Route("/intents", func(r chi.Router) {
		r.Get("/", h.ListIntents())
		r.Get("/{id}", h.GetIntent())
	})
}

// ListIntents handles GET /intents
func (h *IntentHandler) ListIntents() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		intents, err := h.svc.ListIntents(r.Context())
		if err != nil {
			handleIntentError(w, err)
			return
		}

		response.OK(w, intents)
	}
}

// GetIntent handles GET /intents/{id}
func (h *IntentHandler) GetIntent() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		intent, err := h.svc.GetIntent(r.Context(), chi.URLParam(r, "id"))
		if err != nil {
			handleIntentError(w, err)
			return
		}

		response.OK(w, intent)
	}
}

func handleIntentError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, entity.ErrInvalidIntentID):
		response.BadRequest(w, err.Error())
	case errors.Is(err, entity.ErrIntentNotFound):
		response.NotFound(w, err.Error())
	default:
		response.InternalError(w, "failed to fetch intents")
	}
}
