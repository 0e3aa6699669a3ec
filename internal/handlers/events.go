package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/rs/zerolog"

	"github.com/atelierhq/curator-api/internal/store"
)

// EventsHandler streams store change events to the console over SSE so the
// UI can re-render without polling. The lifecycle logic never depends on
// this feed; only the console does.
type EventsHandler struct {
	store  store.Store
	logger zerolog.Logger
}

func NewEventsHandler(s store.Store, logger zerolog.Logger) *EventsHandler {
	return &EventsHandler{store: s, logger: logger}
}

func (h *EventsHandler) Stream(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "streaming unsupported", http.StatusInternalServerError)
		return
	}

	collection := r.URL.Query().Get("collection")
	events, cancel := h.store.Subscribe(r.Context(), collection)
	defer cancel()

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)
	flusher.Flush()

	for {
		select {
		case <-r.Context().Done():
			return
		case evt, ok := <-events:
			if !ok {
				return
			}
			payload, err := json.Marshal(evt)
			if err != nil {
				h.logger.Warn().Err(err).Msg("failed to encode change event")
				continue
			}
			fmt.Fprintf(w, "id: %s\nevent: change\ndata: %s\n\n", evt.ID, payload)
			flusher.Flush()
		}
	}
}
