package middleware

import (
	"net/http"

	"github.com/frahmantamala/fleet-management/internal"
	"github.com/frahmantamala/fleet-management/internal/core/identity"
	"github.com/frahmantamala/fleet-management/internal/transport"
)

// RequirePermission rejects callers the policy does not allow to perform
// action on resource. It must run after the auth middleware.
func RequirePermission(policy identity.Authorizer, resource, action string) func(http.Handler) http.Handler {
	base := transport.NewBaseHandler(nil)
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			caller, ok := identity.FromContext(r.Context())
			if !ok {
				base.WriteAppError(w, internal.ErrMissingCredentials)
				return
			}
			if err := policy.Authorize(caller, resource, action); err != nil {
				base.HandleServiceError(w, err)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
