package http

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
)

// SubscribeEvents handles the GET /documents/{id}/events request (SSE).
// Each saved change is sent as one DocumentDiff. The optional "watch" query
// ("added,removed,updated,viewport") drops diffs touching none of the fields.
func (s *Server) SubscribeEvents(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "Streaming not supported", http.StatusInternalServerError)
		s.logger.Error("SubscribeEvents: Streaming not supported")
		return
	}

	id := chi.URLParam(r, "id")
	var watchList []string
	if watch := r.URL.Query().Get("watch"); watch != "" {
		watchList = strings.Split(watch, ",")
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	diffs, stop := s.Sessions.Subscribe(id)
	defer stop()
	s.logger.Info("SSE: Subscribing to document updates", "document", id)

	fmt.Fprintf(w, "event: ping\ndata: connected\n\n")
	flusher.Flush()

	for {
		select {
		case <-r.Context().Done():
			s.logger.Info("SSE Client Disconnected", "document", id)
			return
		case diff, ok := <-diffs:
			if !ok {
				return
			}
			if len(watchList) > 0 {
				keep := false
				for _, field := range watchList {
					switch strings.TrimSpace(field) {
					case "added":
						keep = keep || len(diff.Added) > 0
					case "removed":
						keep = keep || len(diff.Removed) > 0
					case "updated":
						keep = keep || len(diff.Updated) > 0
					case "viewport":
						keep = keep || diff.Viewport != nil
					}
				}
				if !keep {
					continue
				}
			}

			data, err := json.Marshal(diff)
			if err != nil {
				s.logger.Error("SSE: Diff encode failed", "error", err)
				continue
			}
			fmt.Fprintf(w, "data: %s\n\n", data)
			flusher.Flush()
		}
	}
}
