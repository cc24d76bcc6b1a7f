// Package statusapi serves the serve subcommand's read-only local status
// endpoint, adapted from the teacher's internal/web package but
// repointed at AppHealth and the scheduler's last known window instead of
// a SQL-backed report.
package statusapi

import (
	"encoding/json"
	"log"
	"net/http"
	"time"

	"github.com/clepsy/deskagent/internal/events"
	"github.com/clepsy/deskagent/internal/health"
)

var logger = log.New(log.Writer(), "statusapi: ", log.LstdFlags)

// WindowSource supplies the scheduler's last observed window; it's a
// narrow interface so this package doesn't import internal/scheduler.
type WindowSource interface {
	LastWindow() (events.WindowInfo, bool)
}

type Server struct {
	health  *health.Store
	windows WindowSource
}

func New(store *health.Store, windows WindowSource) *Server {
	return &Server{health: store, windows: windows}
}

func (s *Server) Routes() *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("/status", s.handleStatus)
	mux.HandleFunc("/health", s.handleHealth)
	return mux
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	status := map[string]any{
		"health": s.health.Snapshot(),
	}
	if wi, ok := s.windows.LastWindow(); ok {
		status["active_window"] = wi
	}

	respondJSON(w, status)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, map[string]string{
		"status": "healthy",
		"time":   time.Now().Format(time.RFC3339),
	})
}

func respondJSON(w http.ResponseWriter, data any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(data); err != nil {
		logger.Printf("encode response: %v", err)
		http.Error(w, "Internal server error", http.StatusInternalServerError)
	}
}
