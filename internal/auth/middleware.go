package auth

import (
	"context"
	"net/http"
	"strings"

	"github.com/vadim/supportbot/internal/httpx/response"
)

type contextKey struct{}

// Validator checks a bearer token and returns its subject
type Validator interface {
	Validate(token string) (string, error)
}

// Middleware rejects requests without a valid "Authorization: Bearer" token
func Middleware(v Validator) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			subject, err := v.Validate(bearerToken(r))
			if err != nil {
				response.Unauthorized(w, err.Error())
				return
			}
			ctx := context.WithValue(r.Context(), contextKey{}, subject)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// Subject returns the authenticated subject stored by Middleware
func Subject(ctx context.Context) (string, bool) {
	s, ok := ctx.Value(contextKey{}).(string)
	return s, ok
}

func bearerToken(r *http.Request) string {
	header := r.Header.Get("Authorization")
	scheme, token, ok := strings.Cut(header, " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return ""
	}
	return strings.TrimSpace(token)
}
