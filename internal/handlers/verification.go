package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/rs/zerolog"

	"github.com/atelierhq/curator-api/internal/authz"
	"github.com/atelierhq/curator-api/internal/blob"
	"github.com/atelierhq/curator-api/internal/coordinator"
	"github.com/atelierhq/curator-api/internal/lifecycle"
	"github.com/atelierhq/curator-api/internal/repository"
)

type VerificationHandler struct {
	coord       *coordinator.Coordinator
	requestRepo repository.RequestRepository
	media       blob.Storage
	logger      zerolog.Logger
}

func NewVerificationHandler(coord *coordinator.Coordinator, requestRepo repository.RequestRepository, media blob.Storage, logger zerolog.Logger) *VerificationHandler {
	return &VerificationHandler{
		coord:       coord,
		requestRepo: requestRepo,
		media:       media,
		logger:      logger,
	}
}

func (h *VerificationHandler) ListRequests(w http.ResponseWriter, r *http.Request) {
	requests, err := h.requestRepo.ListRequests(r.Context())
	if err != nil {
		http.Error(w, "Failed to list requests: "+err.Error(), http.StatusInternalServerError)
		return
	}

	// ?pending=true narrows the list to the review queue.
	if r.URL.Query().Get("pending") == "true" {
		pending := requests[:0]
		for _, request := range requests {
			if !request.IsReviewed() {
				pending = append(pending, request)
			}
		}
		requests = pending
	}

	writeJSON(w, http.StatusOK, requests)
}

func (h *VerificationHandler) GetRequest(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	request, err := h.requestRepo.GetRequest(r.Context(), id)
	if err != nil {
		http.Error(w, "Failed to load request", notFoundStatus(err))
		return
	}
	writeJSON(w, http.StatusOK, request)
}

func (h *VerificationHandler) Approve(w http.ResponseWriter, r *http.Request) {
	reviewerID, ok := authz.AdminIDFromRequest(r)
	if !ok {
		http.Error(w, "operator identity missing", http.StatusUnauthorized)
		return
	}

	var payload struct {
		Notes string `json:"notes"`
	}
	if r.Body != nil {
		_ = json.NewDecoder(r.Body).Decode(&payload)
	}

	result := h.coord.Approve(r.Context(), mux.Vars(r)["id"], reviewerID, payload.Notes)
	writeResult(w, result)
}

func (h *VerificationHandler) Reject(w http.ResponseWriter, r *http.Request) {
	reviewerID, ok := authz.AdminIDFromRequest(r)
	if !ok {
		http.Error(w, "operator identity missing", http.StatusUnauthorized)
		return
	}

	var payload struct {
		Reason string `json:"reason"`
		Notes  string `json:"notes"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		http.Error(w, "Invalid request payload", http.StatusBadRequest)
		return
	}

	result := h.coord.Reject(r.Context(), mux.Vars(r)["id"], reviewerID, payload.Reason, payload.Notes)
	writeResult(w, result)
}

func (h *VerificationHandler) Suspend(w http.ResponseWriter, r *http.Request) {
	reviewerID, ok := authz.AdminIDFromRequest(r)
	if !ok {
		http.Error(w, "operator identity missing", http.StatusUnauthorized)
		return
	}
	result := h.coord.Suspend(r.Context(), mux.Vars(r)["id"], reviewerID)
	writeResult(w, result)
}

func (h *VerificationHandler) Reinstate(w http.ResponseWriter, r *http.Request) {
	reviewerID, ok := authz.AdminIDFromRequest(r)
	if !ok {
		http.Error(w, "operator identity missing", http.StatusUnauthorized)
		return
	}
	result := h.coord.Reinstate(r.Context(), mux.Vars(r)["id"], reviewerID)
	writeResult(w, result)
}

func (h *VerificationHandler) Remove(w http.ResponseWriter, r *http.Request) {
	reviewerID, ok := authz.AdminIDFromRequest(r)
	if !ok {
		http.Error(w, "operator identity missing", http.StatusUnauthorized)
		return
	}

	id := mux.Vars(r)["id"]

	// Grab the portfolio keys before the request is mutated; media cleanup
	// happens after the lifecycle has finished and never fails the call.
	var portfolio []string
	if request, err := h.requestRepo.GetRequest(r.Context(), id); err == nil {
		portfolio = request.PortfolioImages
	}

	result := h.coord.Remove(r.Context(), id, reviewerID)
	if result.Outcome == lifecycle.OutcomeApplied && h.media != nil {
		for _, key := range portfolio {
			if err := h.media.Delete(r.Context(), key); err != nil {
				h.logger.Warn().Err(err).Str("key", key).Msg("portfolio media cleanup failed")
			}
		}
	}
	writeResult(w, result)
}
