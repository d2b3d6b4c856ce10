package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/pratik-mahalle/linkboost/internal/auth"
	"github.com/pratik-mahalle/linkboost/internal/domain/user"
	"github.com/pratik-mahalle/linkboost/internal/pkg/errors"
	"github.com/pratik-mahalle/linkboost/internal/pkg/utils"
)

// ContextKey is a custom type for context keys
type ContextKey string

const (
	// IdentityKey is the context key for the authenticated caller
	IdentityKey ContextKey = "identity"
)

// Identity is the caller attached to a request by AuthMiddleware
type Identity struct {
	UserID string
	Email  string
	Tier   user.SubscriptionLevel
}

// AuthMiddleware returns a middleware that validates bearer JWTs
func AuthMiddleware(jwtSecret string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			tokenStr := BearerToken(r)
			if tokenStr == "" {
				utils.WriteError(w, errors.AuthenticationRequired("Authentication required"))
				return
			}

			claims, err := auth.ParseClaims(tokenStr, jwtSecret)
			if err != nil {
				utils.WriteError(w, errors.AuthenticationRequired("Invalid or expired token"))
				return
			}

			id := Identity{UserID: claims.UserID, Email: claims.Email, Tier: claims.Tier}

			AddLogField(w, "user_id", id.UserID)
			AddLogField(w, "tier", string(id.Tier))

			next.ServeHTTP(w, r.WithContext(WithIdentity(r.Context(), id)))
		})
	}
}

// BearerToken extracts the token from "Authorization: Bearer <token>"
func BearerToken(r *http.Request) string {
	parts := strings.SplitN(r.Header.Get("Authorization"), " ", 2)
	if len(parts) == 2 && strings.EqualFold(parts[0], "Bearer") {
		return strings.TrimSpace(parts[1])
	}
	return ""
}

// WithIdentity stores the caller in ctx
func WithIdentity(ctx context.Context, id Identity) context.Context {
	return context.WithValue(ctx, IdentityKey, id)
}

// GetIdentity extracts the caller from the request context
func GetIdentity(r *http.Request) (Identity, bool) {
	id, ok := r.Context().Value(IdentityKey).(Identity)
	if !ok || id.UserID == "" {
		return Identity{}, false
	}
	return id, true
}
