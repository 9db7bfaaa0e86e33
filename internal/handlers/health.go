package handlers

import (
	"net/http"
	"time"
)

// Health reports liveness and process uptime in seconds.
func Health(started time.Time) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		now := time.Now()
		writeJSON(w, http.StatusOK, map[string]any{
			"status":    "ok",
			"uptime":    now.Sub(started).Seconds(),
			"timestamp": now.UTC().Format(time.RFC3339),
		})
	}
}

func APIInfo(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"message": "Feedback Portal API v1"})
}
