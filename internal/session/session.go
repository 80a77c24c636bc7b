package session

import (
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/couchcryptid/wind-weibull-service/internal/domain"
	"github.com/couchcryptid/wind-weibull-service/internal/observability"
	"github.com/couchcryptid/wind-weibull-service/internal/output"
	"github.com/couchcryptid/wind-weibull-service/internal/reactive"
)

// Session is one interactive view: a store and its scheduler. All access to
// the store is serialized, so each input change runs as a single
// uninterrupted chain of store update, notification and recomputation.
type Session struct {
	id      string
	created time.Time

	mu    sync.Mutex
	store *reactive.Store

	metrics *observability.Metrics
	logger  *slog.Logger
}

// Snapshot is a consistent copy of a session's state.
type Snapshot struct {
	ID      string
	Created time.Time
	Params  domain.Params
	Mean    float64
}

// ID returns the session identifier.
func (s *Session) ID() string { return s.id }

// SetScale handles a scaleChanged event.
func (s *Session) SetScale(c float64) error {
	return s.update(reactive.ParamScale, func(st *reactive.Store) error { return st.SetScale(c) })
}

// SetShape handles a shapeChanged event.
func (s *Session) SetShape(k float64) error {
	return s.update(reactive.ParamShape, func(st *reactive.Store) error { return st.SetShape(k) })
}

// SetDisplayRange handles a rangeChanged event.
func (s *Session) SetDisplayRange(lo, hi float64) error {
	return s.update(reactive.ParamDisplayRange, func(st *reactive.Store) error { return st.SetDisplayRange(lo, hi) })
}

func (s *Session) update(p reactive.Parameter, fn func(*reactive.Store) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := fn(s.store); err != nil {
		if errors.Is(err, domain.ErrDomain) {
			s.metrics.DomainErrors.Inc()
		}
		s.logger.Warn("parameter update rejected", "session_id", s.id, "parameter", p.String(), "error", err)
		return err
	}
	s.metrics.ParameterUpdates.WithLabelValues(p.String()).Inc()
	s.logger.Debug("parameter updated", "session_id", s.id, "parameter", p.String(), "mean", s.store.Mean())
	return nil
}

// Snapshot returns the current inputs and cached mean.
func (s *Session) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return Snapshot{
		ID:      s.id,
		Created: s.created,
		Params:  s.store.Params(),
		Mean:    s.store.Mean(),
	}
}

// Plot recomputes the full curve from current state.
func (s *Session) Plot() (output.Plot, error) {
	params := s.Snapshot().Params

	start := time.Now()
	plot, err := output.BuildPlot(params)
	if err != nil {
		return output.Plot{}, err
	}
	s.metrics.CurveGeneration.Observe(time.Since(start).Seconds())
	s.metrics.OutputRequests.WithLabelValues("curve").Inc()
	return plot, nil
}

// Summary formats the cached mean.
func (s *Session) Summary() string {
	mean := s.Snapshot().Mean
	s.metrics.OutputRequests.WithLabelValues("summary").Inc()
	return output.Summary(mean)
}
