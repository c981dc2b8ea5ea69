package api

import (
	"context"
	"net/http"
	"strings"

	"github.com/danielgtaylor/huma/v2"

	"github.com/recipeapp/recipe-server/internal/domain"
	"github.com/recipeapp/recipe-server/internal/http/response"
)

// ctxKey is the type for context keys to avoid collisions.
type ctxKey string

// userKey is the context key for the authenticated user.
const userKey ctxKey = "user"

// GetUser returns the authenticated user from context.
// Returns 401 error if user is not authenticated.
func GetUser(ctx context.Context) (*domain.User, error) {
	user, ok := ctx.Value(userKey).(*domain.User)
	if !ok || user == nil {
		return nil, huma.Error401Unauthorized("authentication credentials were not provided")
	}
	return user, nil
}

// GetUserID returns the authenticated user ID from context.
func GetUserID(ctx context.Context) (int64, error) {
	user, err := GetUser(ctx)
	if err != nil {
		return 0, err
	}
	return user.ID, nil
}

func setUser(ctx context.Context, user *domain.User) context.Context {
	return context.WithValue(ctx, userKey, user)
}

// requiresAuth reports whether path belongs to an endpoint that needs a bearer token.
func requiresAuth(path string) bool {
	return strings.HasPrefix(path, "/recipe/") || path == "/user/me"
}

// authMiddleware validates Bearer tokens and stores the user in context.
// Protected paths are rejected with 401 before routing, so unauthenticated
// callers never reach body validation. Token failures keep the service's message
// ("token expired"); other paths pass through without a user.
func (s *Server) authMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !requiresAuth(r.URL.Path) {
			next.ServeHTTP(w, r)
			return
		}

		header := r.Header.Get("Authorization")
		if header == "" {
			response.Unauthorized(w, "authentication credentials were not provided", s.logger)
			return
		}

		scheme, token, ok := strings.Cut(header, " ")
		if !ok || !isTokenScheme(scheme) || strings.TrimSpace(token) == "" {
			response.Unauthorized(w, "invalid authorization header format", s.logger)
			return
		}

		user, err := s.services.Auth.VerifyToken(r.Context(), strings.TrimSpace(token))
		if err != nil {
			response.HandleError(w, err, s.logger)
			return
		}

		next.ServeHTTP(w, r.WithContext(setUser(r.Context(), user)))
	})
}

// isTokenScheme accepts "Bearer" and the "Token" keyword older clients send.
func isTokenScheme(scheme string) bool {
	return strings.EqualFold(scheme, "Bearer") || strings.EqualFold(scheme, "Token")
}
