package handlers

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/gorilla/mux"
	"github.com/rs/zerolog"

	"github.com/atelierhq/curator-api/internal/authz"
	"github.com/atelierhq/curator-api/internal/coordinator"
	"github.com/atelierhq/curator-api/internal/invites"
	"github.com/atelierhq/curator-api/internal/lifecycle"
)

type InviteHandler struct {
	coord   *coordinator.Coordinator
	invites *invites.Lifecycle
	logger  zerolog.Logger
}

func NewInviteHandler(coord *coordinator.Coordinator, lifecycle *invites.Lifecycle, logger zerolog.Logger) *InviteHandler {
	return &InviteHandler{
		coord:   coord,
		invites: lifecycle,
		logger:  logger,
	}
}

func (h *InviteHandler) ListInvites(w http.ResponseWriter, r *http.Request) {
	all, err := h.invites.List(r.Context())
	if err != nil {
		http.Error(w, "Failed to list invites: "+err.Error(), http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, all)
}

func (h *InviteHandler) CreateInvite(w http.ResponseWriter, r *http.Request) {
	createdBy, ok := authz.AdminIDFromRequest(r)
	if !ok {
		http.Error(w, "operator identity missing", http.StatusUnauthorized)
		return
	}

	var payload struct {
		Email   string `json:"email"`
		Name    string `json:"name"`
		Message string `json:"message"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		http.Error(w, "Invalid request payload", http.StatusBadRequest)
		return
	}

	result, invite := h.coord.CreateInvite(r.Context(), payload.Email, payload.Name, payload.Message, createdBy)
	if result.Outcome == lifecycle.OutcomeApplied {
		writeJSON(w, http.StatusCreated, invite)
		return
	}
	// A failed send still leaves a pending invite behind; the partial result
	// tells the console the operator should resend.
	writeResult(w, result)
}

func (h *InviteHandler) ResendInvite(w http.ResponseWriter, r *http.Request) {
	writeResult(w, h.coord.ResendInvite(r.Context(), strings.TrimSpace(mux.Vars(r)["token"])))
}

func (h *InviteHandler) RevokeInvite(w http.ResponseWriter, r *http.Request) {
	writeResult(w, h.coord.RevokeInvite(r.Context(), strings.TrimSpace(mux.Vars(r)["token"])))
}

func (h *InviteHandler) ArchiveInvite(w http.ResponseWriter, r *http.Request) {
	writeResult(w, h.coord.ArchiveInvite(r.Context(), strings.TrimSpace(mux.Vars(r)["token"])))
}

// DeleteInvite archives in place; audit history is retained.
func (h *InviteHandler) DeleteInvite(w http.ResponseWriter, r *http.Request) {
	writeResult(w, h.coord.DeleteInvite(r.Context(), strings.TrimSpace(mux.Vars(r)["token"])))
}
