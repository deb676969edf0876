package http

import (
	"context"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/vadim/supportbot/internal/auth"
	"github.com/vadim/supportbot/internal/domain/analytics/entity"
	"github.com/vadim/supportbot/internal/domain/analytics/policy"
	"github.com/vadim/supportbot/internal/httpx/response"
)

// AnalyticsPolicy defines the interface for analytics operations
type AnalyticsPolicy interface {
	GetAnalytics(ctx context.Context, in policy.GetAnalyticsInput) (*entity.Report, error)
}

// AnalyticsHandler handles HTTP requests for the analytics dashboard
type AnalyticsHandler struct {
	policy AnalyticsPolicy
}

// NewAnalyticsHandler creates a new analytics handler
func NewAnalyticsHandler(p AnalyticsPolicy) *AnalyticsHandler {
	return &AnalyticsHandler{policy: p}
}

// RegisterRoutes registers analytics routes
func (h *AnalyticsHandler) RegisterRoutes(r chi.Router) {
	r.Get("/analytics", h.GetAnalytics())
}

// GetAnalytics handles GET /analytics?range=day|week|month
func (h *AnalyticsHandler) GetAnalytics() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		subject, _ := auth.Subject(r.Context())

		report, err := h.policy.GetAnalytics(r.Context(), policy.GetAnalyticsInput{
			Range:       r.URL.Query().Get("range"),
			RequestedBy: subject,
		})
		if err != nil {
			handleAnalyticsError(w, err)
			return
		}

		response.OK(w, report)
	}
}

// handleAnalyticsError hides the failing source from the client; the policy logs it
func handleAnalyticsError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, entity.ErrRetrievalFailed):
		response.InternalError(w, "failed to get analytics")
	default:
		response.InternalError(w, "internal server error")
	}
}
