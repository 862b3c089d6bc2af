package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/aristath/glucotrix/internal/config"
	"github.com/aristath/glucotrix/internal/display"
	"github.com/aristath/glucotrix/internal/domain"
	"github.com/aristath/glucotrix/internal/glucose"
)

// GlucoseClient is the data capability the handlers depend on. The concrete
// implementation is the rate-limited glucose client; tests supply fakes.
type GlucoseClient interface {
	GetCurrentReading(ctx context.Context) (glucose.Result, error)
	SecondsUntilNextCall() int
	RefreshProgress() int
	Statistics() glucose.Statistics
}

// DisplayFormatter turns a reading into a device display command.
type DisplayFormatter func(reading *domain.Reading, cfg *config.Config, refreshProgress int) *display.Command

// Stable error codes carried in error response bodies.
const (
	codeAuthFailed = "DEXCOM_1001"
	codeAPIError   = "DEXCOM_1002"
	codeNoData     = "DEXCOM_1003"
)

// errorResponse is the JSON body returned for every failed request.
type errorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
	Details string `json:"details,omitempty"`
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		s.log.Error().Err(err).Msg("Failed to encode response")
	}
}

// writeError maps a domain error to an HTTP status and a stable error code.
func (s *Server) writeError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, domain.ErrAuthFailed):
		s.writeJSON(w, http.StatusUnauthorized, errorResponse{
			Error:   codeAuthFailed,
			Message: "Authentication with the glucose source failed",
			Details: err.Error(),
		})
	case errors.Is(err, domain.ErrNoData):
		s.writeJSON(w, http.StatusServiceUnavailable, errorResponse{
			Error:   codeNoData,
			Message: "No glucose readings available",
			Details: err.Error(),
		})
	case errors.Is(err, domain.ErrNoCachedFallback):
		s.writeJSON(w, http.StatusServiceUnavailable, errorResponse{
			Error:   codeAPIError,
			Message: "Glucose source unavailable and no cached reading exists",
			Details: err.Error(),
		})
	default:
		s.writeJSON(w, http.StatusInternalServerError, errorResponse{
			Error:   codeAPIError,
			Message: "Failed to fetch glucose reading",
			Details: err.Error(),
		})
	}
}

// Version is the build version, overridable at link time with
// -ldflags "-X .../internal/server.Version=v1.2.3".
var Version = "dev"

// handleServiceInfo describes the service and its endpoints.
func (s *Server) handleServiceInfo(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]any{
		"service":     "glucotrix",
		"description": "Glucose readings formatted for AWTRIX3 LED matrix displays",
		"status":      "ok",
		"version":     Version,
		"instance_id": s.instanceID,
		"uptime_sec":  int(time.Since(s.startedAt).Seconds()),
		"endpoints": map[string]string{
			"/glucose":            "Display-ready AWTRIX3 command for the current reading",
			"/glucose/raw":        "Current reading as structured data",
			"/glucose/status":     "Rate limit state and client statistics",
			"/glucose/statistics": "Client statistics only",
			"/health":             "Health check",
		},
	})
}

// handleHealth is the liveness endpoint.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]any{
		"status":    "healthy",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}

// handleGlucose returns the current reading rendered as a display command.
func (s *Server) handleGlucose(w http.ResponseWriter, r *http.Request) {
	result, err := s.glucose.GetCurrentReading(r.Context())
	if err != nil {
		s.writeError(w, err)
		return
	}

	cmd := s.display(result.Reading, s.cfg, result.Progress)
	s.writeJSON(w, http.StatusOK, cmd)
}

// handleGlucoseRaw returns the current reading as structured data.
func (s *Server) handleGlucoseRaw(w http.ResponseWriter, r *http.Request) {
	result, err := s.glucose.GetCurrentReading(r.Context())
	if err != nil {
		s.writeError(w, err)
		return
	}

	s.writeJSON(w, http.StatusOK, result.Reading)
}

// handleGlucoseStatus reports rate limit state alongside statistics.
func (s *Server) handleGlucoseStatus(w http.ResponseWriter, r *http.Request) {
	seconds := s.glucose.SecondsUntilNextCall()

	s.writeJSON(w, http.StatusOK, map[string]any{
		"seconds_until_next_refresh": seconds,
		"refresh_progress_percent":   s.glucose.RefreshProgress(),
		"can_refresh_now":            seconds == 0,
		"next_refresh_at":            time.Now().UTC().Add(time.Duration(seconds) * time.Second).Format(time.RFC3339),
		"statistics":                 s.glucose.Statistics(),
	})
}

// handleGlucoseStatistics exposes the client counters.
func (s *Server) handleGlucoseStatistics(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, s.glucose.Statistics())
}
