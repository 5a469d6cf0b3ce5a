package collector

import (
	"crypto/subtle"
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/groblegark/proctor/internal/audit"
)

// NewHTTPHandler returns an http.Handler exposing the collector REST API.
// When authToken is non-empty, requests (except GET /v1/health and
// GET /metrics) must include a valid Authorization: Bearer <token> header.
func (s *Server) NewHTTPHandler(authToken string) http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /v1/audit/logs", s.handleSubmitBatch)
	mux.HandleFunc("GET /v1/audit/logs", s.handleGetLogs)
	mux.HandleFunc("DELETE /v1/audit/logs", s.handleClearLogs)
	mux.HandleFunc("GET /v1/health", s.handleHealth)
	mux.Handle("GET /metrics", promhttp.Handler())
	return AuthMiddleware(authToken, mux)
}

func (s *Server) handleSubmitBatch(w http.ResponseWriter, r *http.Request) {
	var payload audit.SyncPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		writeJSON(w, http.StatusBadRequest, audit.SyncResponse{
			Success: false,
			Errors:  []string{"invalid request body"},
		})
		return
	}

	res, err := s.Ingest(r.Context(), &payload)
	if err == errEmptyBatch {
		errs := res.Errors
		if len(errs) == 0 {
			errs = []string{"no events in payload"}
		}
		writeJSON(w, http.StatusBadRequest, audit.SyncResponse{
			Success: false,
			Errors:  errs,
		})
		return
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to store events")
		return
	}

	writeJSON(w, http.StatusOK, audit.SyncResponse{
		Success:         true,
		SyncedCount:     res.Accepted,
		ServerTimestamp: time.Now().UnixMilli(),
		Errors:          res.Errors,
	})
}

func (s *Server) handleGetLogs(w http.ResponseWriter, r *http.Request) {
	logs, err := s.Logs(r.Context(), r.URL.Query().Get("attemptId"))
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to read events")
		return
	}
	if logs == nil {
		logs = []*audit.Event{}
	}
	writeJSON(w, http.StatusOK, audit.LogsResponse{Logs: logs, Count: len(logs)})
}

func (s *Server) handleClearLogs(w http.ResponseWriter, r *http.Request) {
	if _, err := s.Clear(r.Context(), r.URL.Query().Get("attemptId")); err != nil {
		writeError(w, http.StatusInternalServerError, "failed to delete events")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if err := s.Healthy(r.Context()); err != nil {
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "unavailable"})
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// AuthMiddleware enforces a static bearer token. Health and metrics stay
// reachable without credentials so probes and scrapers keep working.
func AuthMiddleware(token string, next http.Handler) http.Handler {
	if token == "" {
		return next
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodGet && (r.URL.Path == "/v1/health" || r.URL.Path == "/metrics") {
			next.ServeHTTP(w, r)
			return
		}

		auth := r.Header.Get("Authorization")
		if auth == "" {
			writeError(w, http.StatusUnauthorized, "missing authorization header")
			return
		}

		if !strings.HasPrefix(auth, "Bearer ") {
			writeError(w, http.StatusUnauthorized, "invalid authorization scheme")
			return
		}

		provided := strings.TrimPrefix(auth, "Bearer ")
		if subtle.ConstantTimeCompare([]byte(provided), []byte(token)) != 1 {
			writeError(w, http.StatusUnauthorized, "invalid token")
			return
		}

		next.ServeHTTP(w, r)
	})
}

// writeJSON writes a JSON response with the given status code.
func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

// writeError writes a JSON error response.
func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}
