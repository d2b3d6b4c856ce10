package middleware

import (
	"fmt"
	"net/http"

	"github.com/pratik-mahalle/linkboost/internal/domain/user"
	"github.com/pratik-mahalle/linkboost/internal/pkg/errors"
	"github.com/pratik-mahalle/linkboost/internal/pkg/utils"
)

// RequireSubscription rejects callers whose tier is below required with 403.
// It must run after AuthMiddleware; a request without identity gets 401.
func RequireSubscription(required user.SubscriptionLevel) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id, ok := GetIdentity(r)
			if !ok {
				utils.WriteError(w, errors.AuthenticationRequired("Authentication required"))
				return
			}
			if !id.Tier.AtLeast(required) {
				utils.WriteError(w, errors.AuthorizationError(
					fmt.Sprintf("This feature requires a %s subscription", required),
				).WithDetails(map[string]string{
					"requiredLevel": string(required),
					"currentLevel":  string(id.Tier),
				}))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
