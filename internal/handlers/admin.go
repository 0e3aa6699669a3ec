package handlers

import (
	"database/sql"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/gorilla/mux"
	"github.com/rs/zerolog"

	"github.com/atelierhq/curator-api/internal/models"
	"github.com/atelierhq/curator-api/internal/repository"
)

// AdminHandler manages console operator accounts. All routes are gated to
// superadmins; the first account comes from the bootstrap seed.
type AdminHandler struct {
	adminRepo repository.AdminRepository
	logger    zerolog.Logger
}

type createAdminRequest struct {
	Email       string   `json:"email"`
	Password    string   `json:"password"`
	DisplayName string   `json:"display_name"`
	Roles       []string `json:"roles"`
}

func NewAdminHandler(adminRepo repository.AdminRepository, logger zerolog.Logger) *AdminHandler {
	return &AdminHandler{
		adminRepo: adminRepo,
		logger:    logger,
	}
}

func (h *AdminHandler) CreateAdmin(w http.ResponseWriter, r *http.Request) {
	var req createAdminRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	roles := make([]models.AdminRole, 0, len(req.Roles))
	for _, role := range req.Roles {
		roles = append(roles, models.AdminRole(strings.TrimSpace(role)))
	}
	if len(roles) > 0 && !models.IsValidRoleList(roles) {
		http.Error(w, "Invalid roles", http.StatusBadRequest)
		return
	}

	admin, err := h.adminRepo.CreateAdmin(req.Email, req.Password, req.DisplayName, roles)
	if err != nil {
		http.Error(w, "Failed to create admin: "+err.Error(), http.StatusBadRequest)
		return
	}

	writeJSON(w, http.StatusCreated, admin)
}

func (h *AdminHandler) GetAdmin(w http.ResponseWriter, r *http.Request) {
	admin, err := h.adminRepo.GetAdminByID(mux.Vars(r)["id"])
	if err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, sql.ErrNoRows) {
			status = http.StatusNotFound
		}
		http.Error(w, "Failed to load admin", status)
		return
	}
	writeJSON(w, http.StatusOK, admin)
}

// DeactivateAdmin disables the account; tokens already issued expire on their
// own, but a deactivated operator can no longer log in.
func (h *AdminHandler) DeactivateAdmin(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	if err := h.adminRepo.DeactivateAdmin(id); err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, sql.ErrNoRows) {
			status = http.StatusNotFound
		}
		http.Error(w, "Failed to deactivate admin", status)
		return
	}
	h.logger.Info().Str("admin_id", id).Msg("admin account deactivated")
	w.WriteHeader(http.StatusNoContent)
}
