package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"

	"github.com/gorilla/mux"
	"github.com/rs/zerolog"

	"github.com/atelierhq/curator-api/internal/coordinator"
	"github.com/atelierhq/curator-api/internal/invites"
	"github.com/atelierhq/curator-api/internal/models"
	"github.com/atelierhq/curator-api/internal/rate"
)

// OnboardingHandler serves the public endpoints behind the invite link. The
// token in the URL is the bearer credential; there is no other auth, only
// rate limiting.
type OnboardingHandler struct {
	coord   *coordinator.Coordinator
	invites *invites.Lifecycle
	limiter *rate.Limiter
	logger  zerolog.Logger
}

func NewOnboardingHandler(coord *coordinator.Coordinator, lifecycle *invites.Lifecycle, limiter *rate.Limiter, logger zerolog.Logger) *OnboardingHandler {
	return &OnboardingHandler{
		coord:   coord,
		invites: lifecycle,
		limiter: limiter,
		logger:  logger,
	}
}

// PreviewInvite renders the invite to the invited party and records the
// access time.
func (h *OnboardingHandler) PreviewInvite(w http.ResponseWriter, r *http.Request) {
	if !h.allow(w, r) {
		return
	}

	token := strings.TrimSpace(mux.Vars(r)["token"])
	invite, err := h.invites.Touch(r.Context(), token)
	if err != nil {
		http.Error(w, "invite not found", notFoundStatus(err))
		return
	}

	writeJSON(w, http.StatusOK, struct {
		Email      string              `json:"email"`
		Name       string              `json:"name,omitempty"`
		Message    string              `json:"message,omitempty"`
		Status     models.InviteStatus `json:"status"`
		Redeemable bool                `json:"redeemable"`
	}{
		Email:      invite.Email,
		Name:       invite.Name,
		Message:    invite.Message,
		Status:     invite.Status,
		Redeemable: invite.IsRedeemable(),
	})
}

// RedeemInvite is the one lifecycle transition triggered by the invited
// party rather than an operator.
func (h *OnboardingHandler) RedeemInvite(w http.ResponseWriter, r *http.Request) {
	if !h.allow(w, r) {
		return
	}

	var payload struct {
		UserID string `json:"user_id"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		http.Error(w, "Invalid request payload", http.StatusBadRequest)
		return
	}
	payload.UserID = strings.TrimSpace(payload.UserID)
	if payload.UserID == "" {
		http.Error(w, "user_id is required", http.StatusBadRequest)
		return
	}

	token := strings.TrimSpace(mux.Vars(r)["token"])
	writeResult(w, h.coord.RedeemInvite(r.Context(), token, payload.UserID))
}

func (h *OnboardingHandler) allow(w http.ResponseWriter, r *http.Request) bool {
	if h.limiter == nil {
		return true
	}
	allowed, retryAfter, err := h.limiter.Allow(r.Context(), "onboarding:"+clientIP(r))
	if err != nil {
		h.logger.Warn().Err(err).Msg("onboarding rate check failed; allowing request")
		return true
	}
	if !allowed {
		w.Header().Set("Retry-After", strconv.FormatInt(retryAfter, 10))
		http.Error(w, "too many requests", http.StatusTooManyRequests)
		return false
	}
	return true
}
