package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/couchcryptid/wind-weibull-service/internal/domain"
	"github.com/couchcryptid/wind-weibull-service/internal/output"
	"github.com/couchcryptid/wind-weibull-service/internal/session"
)

var errBadRequest = errors.New("bad request")

type sessionResponse struct {
	ID      string              `json:"id"`
	Scale   float64             `json:"scale"`
	Shape   float64             `json:"shape"`
	Range   domain.DisplayRange `json:"range"`
	Mean    float64             `json:"mean"`
	Summary string              `json:"summary"`
}

type valueRequest struct {
	Value *float64 `json:"value"`
}

type rangeRequest struct {
	Low  *float64 `json:"low"`
	High *float64 `json:"high"`
}

type summaryResponse struct {
	Text string `json:"text"`
}

func (s *Server) handleCreate(w http.ResponseWriter, _ *http.Request) {
	sess, err := s.sessions.Create()
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, toResponse(sess))
}

func (s *Server) handleGet(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.lookup(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, toResponse(sess))
}

func (s *Server) handleDelete(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if !s.sessions.Delete(id) {
		s.writeError(w, fmt.Errorf("%w: %s", session.ErrNotFound, id))
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleScale(w http.ResponseWriter, r *http.Request) {
	s.handleValue(w, r, domain.ValidateScale, (*session.Session).SetScale)
}

func (s *Server) handleShape(w http.ResponseWriter, r *http.Request) {
	s.handleValue(w, r, domain.ValidateShape, (*session.Session).SetShape)
}

// handleValue applies a scaleChanged or shapeChanged event after enforcing
// positivity at the boundary.
func (s *Server) handleValue(w http.ResponseWriter, r *http.Request, validate func(float64) error, set func(*session.Session, float64) error) {
	sess, ok := s.lookup(w, r)
	if !ok {
		return
	}
	var req valueRequest
	if err := decode(w, r, &req); err != nil {
		s.writeError(w, err)
		return
	}
	if req.Value == nil {
		s.writeError(w, fmt.Errorf("%w: missing value", errBadRequest))
		return
	}
	if err := validate(*req.Value); err != nil {
		s.writeError(w, err)
		return
	}
	if err := set(sess, *req.Value); err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toResponse(sess))
}

// handleRange applies a rangeChanged event; the boundary accepts
// 0 <= low <= high <= RangeLimit.
func (s *Server) handleRange(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.lookup(w, r)
	if !ok {
		return
	}
	var req rangeRequest
	if err := decode(w, r, &req); err != nil {
		s.writeError(w, err)
		return
	}
	if req.Low == nil || req.High == nil {
		s.writeError(w, fmt.Errorf("%w: low and high are required", errBadRequest))
		return
	}
	rng := domain.DisplayRange{Low: *req.Low, High: *req.High}
	if err := rng.Validate(); err != nil {
		s.writeError(w, err)
		return
	}
	if rng.High > domain.RangeLimit {
		s.writeError(w, fmt.Errorf("%w: high %g exceeds %g", domain.ErrInvalidRange, rng.High, domain.RangeLimit))
		return
	}
	if err := sess.SetDisplayRange(rng.Low, rng.High); err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toResponse(sess))
}

func (s *Server) handleCurve(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.lookup(w, r)
	if !ok {
		return
	}
	plot, err := sess.Plot()
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, plot)
}

func (s *Server) handleSummary(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.lookup(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, summaryResponse{Text: sess.Summary()})
}

func (s *Server) lookup(w http.ResponseWriter, r *http.Request) (*session.Session, bool) {
	sess, err := s.sessions.Get(r.PathValue("id"))
	if err != nil {
		s.writeError(w, err)
		return nil, false
	}
	return sess, true
}

func decode(w http.ResponseWriter, r *http.Request, v any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, 1<<12))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return fmt.Errorf("%w: %w", errBadRequest, err)
	}
	return nil
}

func (s *Server) writeError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, errBadRequest):
		status = http.StatusBadRequest
	case errors.Is(err, session.ErrNotFound):
		status = http.StatusNotFound
	case errors.Is(err, domain.ErrDomain), errors.Is(err, domain.ErrInvalidRange):
		status = http.StatusUnprocessableEntity
	case errors.Is(err, session.ErrClosed):
		status = http.StatusServiceUnavailable
	default:
		s.logger.Error("request failed", "error", err)
	}
	writeJSON(w, status, map[string]string{"error": err.Error()})
}

func toResponse(sess *session.Session) sessionResponse {
	snap := sess.Snapshot()
	return sessionResponse{
		ID:      snap.ID,
		Scale:   snap.Params.Scale,
		Shape:   snap.Params.Shape,
		Range:   snap.Params.Range,
		Mean:    snap.Mean,
		Summary: output.Summary(snap.Mean),
	}
}
