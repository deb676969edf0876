package http

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/vadim/supportbot/internal/auth"
	"github.com/vadim/supportbot/internal/httpx/response"
)

// Authenticator checks admin credentials and issues tokens
type Authenticator interface {
	Login(username, password string) (*auth.Token, error)
}

// AuthHandler handles admin login
type AuthHandler struct {
	auth Authenticator
}

// NewAuthHandler creates a new auth handler
func NewAuthHandler(a Authenticator) *AuthHandler {
	return &AuthHandler{auth: a}
}

// RegisterRoutes registers auth routes
func (h *AuthHandler) RegisterRoutes(r chi.Router) {
	r.Post("/login", h.Login())
}

// LoginRequest represents the request body for admin login
type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// Login handles POST /login
func (h *AuthHandler) Login() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req LoginRequest
		if err := response.Decode(w, r, &req); err != nil {
			response.BadRequest(w, err.Error())
			return
		}
		if req.Username == "" || req.Password == "" {
			response.BadRequest(w, "username and password are required")
			return
		}

		token, err := h.auth.Login(req.Username, req.Password)
		if err != nil {
			if errors.Is(err, auth.ErrInvalidCredentials) {
				response.Unauthorized(w, err.Error())
				return
			}
			response.InternalError(w, "internal server error")
			return
		}

		response.OK(w, token)
	}
}
