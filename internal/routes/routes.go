package routes

import (
	"net/http"

	"github.com/gorilla/mux"

	"github.com/atelierhq/curator-api/internal/authz"
	"github.com/atelierhq/curator-api/internal/handlers"
	"github.com/atelierhq/curator-api/internal/models"
)

// NewRouter sets up the API routes
func NewRouter(
	auth *handlers.AuthHandler,
	admin *handlers.AdminHandler,
	verification *handlers.VerificationHandler,
	invite *handlers.InviteHandler,
	onboarding *handlers.OnboardingHandler,
	events *handlers.EventsHandler,
) *mux.Router {
	router := mux.NewRouter()

	// Health check route
	router.HandleFunc("/health", handlers.HealthCheck).Methods(http.MethodGet)

	// Public auth endpoint
	router.HandleFunc("/api/login", auth.Login).Methods(http.MethodPost)

	// Public onboarding endpoints; the invite token is the credential.
	router.HandleFunc("/api/onboarding/artist/{token}", onboarding.PreviewInvite).Methods(http.MethodGet)
	router.HandleFunc("/api/onboarding/artist/{token}/redeem", onboarding.RedeemInvite).Methods(http.MethodPost)

	// Console endpoints require a valid operator token.
	console := router.PathPrefix("/api").Subrouter()
	console.Use(auth.JWTMiddleware)

	view := authz.RequireRole(models.RoleViewer)
	operate := authz.RequireRole(models.RoleAdmin)
	manage := authz.RequireRole(models.RoleSuperAdmin)

	// Operator account management; superadmins only.
	console.Handle("/admins", manage(http.HandlerFunc(admin.CreateAdmin))).Methods(http.MethodPost)
	console.Handle("/admins/{id}", manage(http.HandlerFunc(admin.GetAdmin))).Methods(http.MethodGet)
	console.Handle("/admins/{id}/deactivate", manage(http.HandlerFunc(admin.DeactivateAdmin))).Methods(http.MethodPost)

	console.Handle("/requests", view(http.HandlerFunc(verification.ListRequests))).Methods(http.MethodGet)
	console.Handle("/requests/{id}", view(http.HandlerFunc(verification.GetRequest))).Methods(http.MethodGet)
	console.Handle("/requests/{id}/approve", operate(http.HandlerFunc(verification.Approve))).Methods(http.MethodPost)
	console.Handle("/requests/{id}/reject", operate(http.HandlerFunc(verification.Reject))).Methods(http.MethodPost)
	console.Handle("/requests/{id}/suspend", operate(http.HandlerFunc(verification.Suspend))).Methods(http.MethodPost)
	console.Handle("/requests/{id}/reinstate", operate(http.HandlerFunc(verification.Reinstate))).Methods(http.MethodPost)
	console.Handle("/requests/{id}/remove", operate(http.HandlerFunc(verification.Remove))).Methods(http.MethodPost)

	console.Handle("/invites", view(http.HandlerFunc(invite.ListInvites))).Methods(http.MethodGet)
	console.Handle("/invites", operate(http.HandlerFunc(invite.CreateInvite))).Methods(http.MethodPost)
	console.Handle("/invites/{token}/resend", operate(http.HandlerFunc(invite.ResendInvite))).Methods(http.MethodPost)
	console.Handle("/invites/{token}/revoke", operate(http.HandlerFunc(invite.RevokeInvite))).Methods(http.MethodPost)
	console.Handle("/invites/{token}/archive", operate(http.HandlerFunc(invite.ArchiveInvite))).Methods(http.MethodPost)
	console.Handle("/invites/{token}", operate(http.HandlerFunc(invite.DeleteInvite))).Methods(http.MethodDelete)

	console.Handle("/events", view(http.HandlerFunc(events.Stream))).Methods(http.MethodGet)

	return router
}
