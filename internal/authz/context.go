package authz

import (
	"context"
	"net/http"

	"github.com/atelierhq/curator-api/internal/models"
)

type contextKey string

const (
	adminIDKey    contextKey = "admin_id"
	adminRolesKey contextKey = "admin_roles"
)

// WithIdentity stores the authenticated operator and roles on the context.
func WithIdentity(ctx context.Context, adminID string, roles []models.AdminRole) context.Context {
	if adminID != "" {
		ctx = context.WithValue(ctx, adminIDKey, adminID)
	}
	normalized := models.EnsureDefaultRole(models.NormalizeRoles(roles))
	return context.WithValue(ctx, adminRolesKey, normalized)
}

// AdminIDFromRequest returns the operator id attached by the JWT middleware.
// It is the reviewedBy/createdBy attribution for every command.
func AdminIDFromRequest(r *http.Request) (string, bool) {
	id, ok := r.Context().Value(adminIDKey).(string)
	if !ok || id == "" {
		return "", false
	}
	return id, true
}

func RolesFromRequest(r *http.Request) ([]models.AdminRole, bool) {
	roles, ok := r.Context().Value(adminRolesKey).([]models.AdminRole)
	if !ok || !models.IsValidRoleList(roles) {
		return nil, false
	}
	return roles, true
}
