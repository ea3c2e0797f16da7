package server

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/a-h/templ"

	"github.com/conneroisu/formpulse/internal/form"
	"github.com/conneroisu/formpulse/internal/page"
	"github.com/conneroisu/formpulse/internal/version"
	"github.com/conneroisu/formpulse/internal/widgets"
)

// maxBodyBytes bounds JSON request bodies.
const maxBodyBytes = 64 << 10

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	ws, err := widgets.NewSession(r.Context(), s.store, s.tabIDs, s.faqItems)
	if err != nil {
		s.logger.Error(r.Context(), err, "Failed to load widget state")
		http.Error(w, "state unavailable", http.StatusInternalServerError)
		return
	}
	lang := s.catalog(r).Language().String()
	templ.Handler(page.Page(page.NewData(ws.Snapshot(), lang))).ServeHTTP(w, r)
}

// HealthResponse is the body of GET /health.
type HealthResponse struct {
	Status    string            `json:"status"`
	Timestamp time.Time         `json:"timestamp"`
	Uptime    string            `json:"uptime"`
	Version   version.BuildInfo `json:"version"`
	Sessions  int               `json:"sessions"`
	Storage   string            `json:"storage"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, HealthResponse{
		Status:    "healthy",
		Timestamp: time.Now().UTC(),
		Uptime:    time.Since(s.started).Round(time.Second).String(),
		Version:   version.Get(),
		Sessions:  s.hub.Count(),
		Storage:   s.config.Storage.Driver,
	})
}

func (s *Server) handleValidate(w http.ResponseWriter, r *http.Request) {
	var sub form.Submission
	if !s.decode(w, r, &sub) {
		return
	}
	report := form.Check(sub, form.NewRules(s.catalog(r)))

	status := http.StatusOK
	if !report.Valid {
		status = http.StatusUnprocessableEntity
	}
	writeJSON(w, status, report)
}

// StrengthRequest is the body of POST /api/strength.
type StrengthRequest struct {
	Password string `json:"password"`
}

// StrengthResponse is either a strength or {"suppressed": true}.
type StrengthResponse struct {
	Suppressed bool `json:"suppressed,omitempty"`
	*form.PasswordStrength
}

func (s *Server) handleStrength(w http.ResponseWriter, r *http.Request) {
	var req StrengthRequest
	if !s.decode(w, r, &req) {
		return
	}
	strength, ok := form.ScoreStrength(req.Password)
	if !ok {
		writeJSON(w, http.StatusOK, StrengthResponse{Suppressed: true})
		return
	}
	writeJSON(w, http.StatusOK, StrengthResponse{PasswordStrength: &strength})
}

// ErrorResponse is the body of every 4xx/5xx JSON reply.
type ErrorResponse struct {
	Error string `json:"error"`
}

func (s *Server) decode(w http.ResponseWriter, r *http.Request, v interface{}) bool {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		status := http.StatusBadRequest
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			status = http.StatusRequestEntityTooLarge
		}
		if errors.Is(err, io.EOF) {
			err = errors.New("empty body")
		}
		writeJSON(w, status, ErrorResponse{Error: err.Error()})
		return false
	}
	return true
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
