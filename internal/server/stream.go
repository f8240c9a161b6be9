package server

import (
	"fmt"
	"net/http"
	"time"
)

// handleStream serves a server-sent-events feed that ticks whenever the
// store changes. Events carry no payload; a consumer re-runs its query
// on each tick, which is what makes live queries cheap to implement on
// top of a coalescing notification.
func (s *Server) handleStream(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, `{"error":"streaming unsupported"}`, http.StatusInternalServerError)
		return
	}

	changes, cancel := s.db.Subscribe()
	defer cancel()

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	fmt.Fprintf(w, "event: ready\ndata: {}\n\n")
	flusher.Flush()

	// Heartbeats keep intermediaries from timing the connection out.
	heartbeat := time.NewTicker(30 * time.Second)
	defer heartbeat.Stop()

	for {
		select {
		case <-r.Context().Done():
			return
		case <-changes:
			fmt.Fprintf(w, "event: change\ndata: {\"at\": %d}\n\n", time.Now().UnixMilli())
			flusher.Flush()
		case <-heartbeat.C:
			fmt.Fprintf(w, ": ping\n\n")
			flusher.Flush()
		}
	}
}
