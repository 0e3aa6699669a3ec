package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/pkg/errors"

	"github.com/atelierhq/curator-api/internal/lifecycle"
	"github.com/atelierhq/curator-api/internal/store"
)

func writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(payload)
}

type resultResponse struct {
	Operation    string `json:"operation"`
	Outcome      string `json:"outcome"`
	StepsApplied int    `json:"steps_applied"`
	FailedStep   string `json:"failed_step,omitempty"`
	Error        string `json:"error,omitempty"`
}

// writeResult maps a coordinator result onto the HTTP surface: 200 applied,
// 400/404/409 for rejected preconditions, 500 when nothing committed, and
// 502 for partial application so the console can surface the repair point.
func writeResult(w http.ResponseWriter, result lifecycle.Result) {
	resp := resultResponse{
		Operation:    result.Operation,
		Outcome:      string(result.Outcome),
		StepsApplied: result.StepsApplied,
		FailedStep:   result.FailedStep,
	}
	if result.Err != nil {
		resp.Error = result.Err.Error()
	}

	switch result.Outcome {
	case lifecycle.OutcomeApplied:
		writeJSON(w, http.StatusOK, resp)
	case lifecycle.OutcomeRejected:
		writeJSON(w, rejectionStatus(result.Err), resp)
	case lifecycle.OutcomeFailed:
		writeJSON(w, http.StatusInternalServerError, resp)
	case lifecycle.OutcomePartial:
		writeJSON(w, http.StatusBadGateway, resp)
	default:
		writeJSON(w, http.StatusInternalServerError, resp)
	}
}

func rejectionStatus(err error) int {
	if !lifecycle.IsPrecondition(err) {
		return http.StatusInternalServerError
	}
	switch {
	case errors.Is(err, lifecycle.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, lifecycle.ErrInvalidTransition):
		return http.StatusConflict
	default:
		return http.StatusBadRequest
	}
}

func notFoundStatus(err error) int {
	if errors.Is(err, store.ErrNotFound) || errors.Is(err, lifecycle.ErrNotFound) {
		return http.StatusNotFound
	}
	return http.StatusInternalServerError
}
