package httpapi

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"leadgen-engine/internal/events"
)

const sseHeartbeat = 15 * time.Second

type EventsHandler struct {
	Hub *events.Hub
}

// ServeSSE streams run events. ?run=<id> limits the stream to one run.
func (h EventsHandler) ServeSSE(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("Access-Control-Allow-Origin", "*")

	flusher, ok := w.(http.Flusher)
	if !ok {
		WriteError(w, r, http.StatusInternalServerError, CodeStreamUnsupported, "Streaming unsupported")
		return
	}

	only := r.URL.Query().Get("run")

	ch := h.Hub.Subscribe()
	defer h.Hub.Unsubscribe(ch)

	// Ping as a proper event envelope
	reqID := RequestIDFrom(r.Context())
	ping := events.MakeEvent(reqID, "ping", events.Version, nil)
	fmt.Fprintf(w, "event: message\ndata: %s\n\n", ping)
	flusher.Flush()

	tick := time.NewTicker(sseHeartbeat)
	defer tick.Stop()

	for {
		select {
		case <-r.Context().Done():
			return
		case <-tick.C:
			fmt.Fprint(w, ": keep-alive\n\n")
			flusher.Flush()
		case msg, ok := <-ch:
			if !ok {
				return
			}
			if only != "" && runOf(msg) != only {
				continue
			}
			fmt.Fprintf(w, "event: message\ndata: %s\n\n", msg)
			flusher.Flush()
		}
	}
}

func runOf(msg string) string {
	var e events.Event
	if err := json.Unmarshal([]byte(msg), &e); err != nil {
		return ""
	}
	return e.RequestID
}
