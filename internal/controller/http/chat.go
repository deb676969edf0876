package http

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/vadim/supportbot/internal/domain/chat/entity"
	"github.com/vadim/supportbot/internal/domain/chat/service"
	"github.com/vadim/supportbot/internal/httpx/response"
)

// ChatService defines the interface for public chat operations
type ChatService interface {
	SendMessage(ctx context.Context, in service.SendMessageInput) (*service.SendMessageOutput, error)
	RateMessage(ctx context.Context, in service.RateMessageInput) error
}

// ChatHandler handles HTTP requests from the chat widget
type ChatHandler struct {
	svc ChatService
}

// NewChatHandler creates a new chat handler
func NewChatHandler(svc ChatService) *ChatHandler {
	return &ChatHandler{svc: svc}
}

// RegisterRoutes registers chat routes
func (h *ChatHandler) RegisterRoutes(r chi.Router) {
	r.Route("/chat", func(r chi.Router) {
		r.Post("/", h.SendMessage())
		r.Post("/{sessionId}/messages/{messageId}/feedback", h.RateMessage())
	})
}

// SendChatMessageRequest represents the request body for a chat turn
type SendChatMessageRequest struct {
	SessionID string `json:"sessionId"`
	Message   string `json:"message"`
}

// SendChatMessageResponse represents the response for a chat turn
type SendChatMessageResponse struct {
	Reply         string `json:"reply"`
	SessionID     string `json:"sessionId"`
	Intent        string `json:"intent,omitempty"`
	DisplayName   string `json:"displayName,omitempty"`
	UserMessageID int64  `json:"userMessageId"`
	BotMessageID  int64  `json:"botMessageId"`
}

// SendMessage handles POST /chat
func (h *ChatHandler) SendMessage() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req SendChatMessageRequest
		if err := response.Decode(w, r, &req); err != nil {
			response.BadRequest(w, err.Error())
			return
		}

		out, err := h.svc.SendMessage(r.Context(), service.SendMessageInput{
			SessionID: req.SessionID,
			Text:      req.Message,
		})
		if err != nil {
			handleChatError(w, err)
			return
		}

		response.OK(w, SendChatMessageResponse{
			Reply:         out.Reply,
			SessionID:     out.SessionID,
			Intent:        out.Intent,
			DisplayName:   out.DisplayName,
			UserMessageID: out.UserMessageID,
			BotMessageID:  out.BotMessageID,
		})
	}
}

// FeedbackRequest represents the request body for turn feedback
type FeedbackRequest struct {
	Score *float64 `json:"score"`
}

// RateMessage handles POST /chat/{sessionId}/messages/{messageId}/feedback
func (h *ChatHandler) RateMessage() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		messageID, err := strconv.ParseInt(chi.URLParam(r, "messageId"), 10, 64)
		if err != nil || messageID <= 0 {
			response.BadRequest(w, "invalid message id")
			return
		}

		var req FeedbackRequest
		if err := response.Decode(w, r, &req); err != nil {
			response.BadRequest(w, err.Error())
			return
		}
		if req.Score == nil {
			response.BadRequest(w, "score is required")
			return
		}

		err = h.svc.RateMessage(r.Context(), service.RateMessageInput{
			SessionID: chi.URLParam(r, "sessionId"),
			MessageID: messageID,
			Score:     *req.Score,
		})
		if err != nil {
			handleChatError(w, err)
			return
		}

		response.NoContent(w)
	}
}

func handleChatError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, entity.ErrEmptyMessage),
		errors.Is(err, entity.ErrMessageTooLong),
		errors.Is(err, entity.ErrInvalidScore),
		errors.Is(err, entity.ErrInvalidSessionID):
		response.BadRequest(w, err.Error())
	case errors.Is(err, entity.ErrTranscriptNotFound),
		errors.Is(err, entity.ErrMessageNotFound):
		response.NotFound(w, err.Error())
	case errors.Is(err, entity.ErrNLUFailed):
		response.InternalError(w, entity.ErrNLUFailed.Error())
	default:
		response.InternalError(w, "internal server error")
	}
}
