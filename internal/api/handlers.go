// internal/api/handlers.go
package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"

	"symptom-pipeline/internal/common/metrics"
	"symptom-pipeline/internal/common/validation"
	"symptom-pipeline/internal/models"
	"symptom-pipeline/internal/session"
	resolvelocation "symptom-pipeline/internal/steps/resolve-location"

	"github.com/go-chi/chi/v5"
)

const maxRequestBodyBytes = 4 << 20 // generous room for inline documents

// handleAnalyze accepts a symptom submission, creates a session, and starts
// the pipeline in the background. The response carries only the session id;
// everything else arrives through polling.
func (s *Server) handleAnalyze(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(io.LimitReader(r.Body, maxRequestBodyBytes))
	if err != nil {
		s.writeError(w, "analyze", http.StatusBadRequest, "unable to read request body")
		return
	}

	var payload map[string]interface{}
	if err := json.Unmarshal(body, &payload); err != nil {
		s.writeError(w, "analyze", http.StatusBadRequest, "request body must be valid JSON")
		return
	}

	if err := validation.ValidateAnalyzeRequest(payload); err != nil {
		s.writeError(w, "analyze", http.StatusBadRequest, err.Error())
		return
	}

	var req models.AnalysisRequest
	if err := json.Unmarshal(body, &req); err != nil {
		s.writeError(w, "analyze", http.StatusBadRequest, "malformed request fields")
		return
	}

	if len(strings.TrimSpace(req.Symptoms)) < s.cfg.Pipeline.MinSymptomLength {
		s.writeError(w, "analyze", http.StatusBadRequest,
			fmt.Sprintf("symptoms must be at least %d characters", s.cfg.Pipeline.MinSymptomLength))
		return
	}

	req.ClientIP = resolvelocation.ClientIP(r)

	sess, err := s.store.Create(r.Context())
	if err != nil {
		s.logger.Error("failed to create session", map[string]interface{}{"error": err.Error()})
		s.writeError(w, "analyze", http.StatusInternalServerError, "unable to start analysis")
		return
	}

	// The run outlives this request, so it gets a fresh context.
	go s.orch.Run(context.Background(), sess.ID, &req)

	s.writeJSON(w, "analyze", http.StatusOK, map[string]string{"session_id": sess.ID})
}

// handleStatus returns the current session snapshot. The result field is
// populated only for completed sessions.
func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "sessionID")

	sess, err := s.store.Get(r.Context(), sessionID)
	if err != nil {
		if errors.Is(err, session.ErrSessionNotFound) {
			s.writeError(w, "status", http.StatusNotFound, "session not found or expired")
			return
		}
		s.logger.Error("session lookup failed", map[string]interface{}{
			"sessionId": sessionID,
			"error":     err.Error(),
		})
		s.writeError(w, "status", http.StatusInternalServerError, "unable to read session")
		return
	}

	snapshot := map[string]interface{}{
		"status":   sess.Status,
		"progress": sess.Progress,
		"error":    nil,
		"result":   nil,
	}
	if sess.Error != "" {
		snapshot["error"] = sess.Error
	}
	if sess.Status == models.StatusCompleted && sess.Result != nil {
		snapshot["result"] = sess.Result
	}

	s.writeJSON(w, "status", http.StatusOK, snapshot)
}

// handlePipeline describes the stage sequence so the frontend can label
// progress without hardcoding the state machine.
func (s *Server) handlePipeline(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, "pipeline", http.StatusOK, s.stages)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if err := s.redis.Ping(r.Context()); err != nil {
		s.writeJSON(w, "health", http.StatusServiceUnavailable, map[string]string{
			"status": "degraded",
			"redis":  err.Error(),
		})
		return
	}
	s.writeJSON(w, "health", http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) writeJSON(w http.ResponseWriter, endpoint string, status int, body interface{}) {
	metrics.HTTPRequestsTotal.WithLabelValues(endpoint, strconv.Itoa(status)).Inc()
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		s.logger.Error("failed to encode response", map[string]interface{}{"error": err.Error()})
	}
}

func (s *Server) writeError(w http.ResponseWriter, endpoint string, status int, message string) {
	s.writeJSON(w, endpoint, status, map[string]string{"error": message})
}
