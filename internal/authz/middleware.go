package authz

import (
	"net/http"

	"github.com/atelierhq/curator-api/internal/models"
)

// RequireRole gates a route at the given tier. Tiers are ordered
// viewer < admin < superadmin; any held role at or above the requirement
// passes. Requests without an identity get 401, an insufficient tier 403.
func RequireRole(required models.AdminRole) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			roles, ok := RolesFromRequest(r)
			if !ok {
				http.Error(w, "operator identity missing", http.StatusUnauthorized)
				return
			}
			if !models.HasAtLeast(roles, required) {
				http.Error(w, "insufficient permissions", http.StatusForbidden)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
