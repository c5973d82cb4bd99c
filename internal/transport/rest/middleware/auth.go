package middleware

import (
	"context"
	"net/http"
	"strings"

	"predictbattle/internal/model"
	"predictbattle/internal/service"
)

type contextKey string

const (
	UserIDKey   contextKey = "userId"
	UsernameKey contextKey = "username"
	IsGuestKey  contextKey = "isGuest"
)

// AuthMiddleware resolves bearer tokens into actor identities.
type AuthMiddleware struct {
	authSvc *service.AuthService
}

// NewAuthMiddleware creates the auth middleware.
func NewAuthMiddleware(authSvc *service.AuthService) *AuthMiddleware {
	return &AuthMiddleware{authSvc: authSvc}
}

// RequireUser validates the JWT from the Authorization header and puts
// the actor identity on the request context.
func (m *AuthMiddleware) RequireUser(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token := extractBearerToken(r)
		if token == "" {
			http.Error(w, `{"error":"missing authorization header"}`, http.StatusUnauthorized)
			return
		}

		claims, err := m.authSvc.VerifyToken(token)
		if err != nil {
			http.Error(w, `{"error":"invalid or expired token"}`, http.StatusUnauthorized)
			return
		}

		ctx := r.Context()
		ctx = context.WithValue(ctx, UserIDKey, claims.UserID)
		ctx = context.WithValue(ctx, UsernameKey, claims.Username)
		ctx = context.WithValue(ctx, IsGuestKey, claims.IsGuest)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// GetActor extracts the authenticated actor from the context. The zero
// Actor means the request was not authenticated.
func GetActor(ctx context.Context) model.Actor {
	actor := model.Actor{}
	if v := ctx.Value(UserIDKey); v != nil {
		actor.ID = v.(string)
	}
	if v := ctx.Value(UsernameKey); v != nil {
		actor.Name = v.(string)
	}
	return actor
}

// IsGuest reports whether the authenticated actor is a guest account.
func IsGuest(ctx context.Context) bool {
	if v := ctx.Value(IsGuestKey); v != nil {
		return v.(bool)
	}
	return false
}

func extractBearerToken(r *http.Request) string {
	auth := r.Header.Get("Authorization")
	if auth == "" {
		return ""
	}
	parts := strings.SplitN(auth, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
		return ""
	}
	return parts[1]
}
