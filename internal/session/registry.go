package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/couchcryptid/wind-weibull-service/internal/domain"
	"github.com/couchcryptid/wind-weibull-service/internal/observability"
	"github.com/couchcryptid/wind-weibull-service/internal/reactive"
	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
)

var (
	ErrNotFound = errors.New("session not found")
	ErrClosed   = errors.New("session registry closed")
)

// EventSink receives recomputation events. Enqueue must not block.
type EventSink interface {
	Enqueue(ev domain.RecomputeEvent) bool
}

// Options configures a Registry.
type Options struct {
	MaxSessions int
	Defaults    domain.Params
	// Sink is optional; nil disables the event stream.
	Sink    EventSink
	Clock   clockwork.Clock
	Metrics *observability.Metrics
	Logger  *slog.Logger
}

// Registry owns the live sessions, evicting the least recently used one
// when MaxSessions is exceeded. Sessions share only the immutable dependency
// table.
type Registry struct {
	table    reactive.Table
	defaults domain.Params
	sink     EventSink
	clock    clockwork.Clock
	metrics  *observability.Metrics
	logger   *slog.Logger

	mu       sync.Mutex
	sessions *lru
	closed   bool
}

// NewRegistry creates an empty registry. Defaults must be valid params.
func NewRegistry(opts Options) (*Registry, error) {
	if err := opts.Defaults.Validate(); err != nil {
		return nil, fmt.Errorf("session defaults: %w", err)
	}
	if opts.MaxSessions <= 0 {
		return nil, fmt.Errorf("max sessions must be positive, got %d", opts.MaxSessions)
	}
	if opts.Clock == nil {
		opts.Clock = clockwork.NewRealClock()
	}

	r := &Registry{
		table:    reactive.DefaultTable(),
		defaults: opts.Defaults,
		sink:     opts.Sink,
		clock:    opts.Clock,
		metrics:  opts.Metrics,
		logger:   opts.Logger,
	}
	r.sessions = newLRU(opts.MaxSessions, r.evicted)
	return r, nil
}

// Create starts a session with the default params and an eagerly computed mean.
func (r *Registry) Create() (*Session, error) {
	id := uuid.NewString()
	store, err := reactive.NewStore(reactive.NewScheduler(r.table, r.observer(id)), r.defaults)
	if err != nil {
		return nil, err
	}
	s := &Session{
		id:      id,
		created: r.clock.Now(),
		store:   store,
		metrics: r.metrics,
		logger:  r.logger,
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if r.closed {
		return nil, ErrClosed
	}
	r.sessions.put(id, s)
	r.metrics.SessionsActive.Set(float64(r.sessions.len()))
	r.logger.Info("session created", "session_id", id, "mean", store.Mean())
	return s, nil
}

// Get returns the session with the given id and marks it recently used.
func (r *Registry) Get(id string) (*Session, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.closed {
		return nil, ErrClosed
	}
	s, ok := r.sessions.get(id)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return s, nil
}

// Delete ends a session. It reports whether the session existed.
func (r *Registry) Delete(id string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if !r.sessions.delete(id) {
		return false
	}
	r.metrics.SessionsActive.Set(float64(r.sessions.len()))
	r.logger.Info("session deleted", "session_id", id)
	return true
}

// Len returns the number of live sessions.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.sessions.len()
}

// CheckReadiness returns an error once the registry has been closed.
func (r *Registry) CheckReadiness(_ context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.closed {
		return ErrClosed
	}
	return nil
}

// Close stops accepting requests. Existing sessions are discarded.
func (r *Registry) Close() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.closed = true
	r.sessions = newLRU(r.sessions.maxEntries, nil)
	r.metrics.SessionsActive.Set(0)
}

// evicted runs under r.mu from lru.put.
func (r *Registry) evicted(s *Session) {
	r.metrics.SessionsEvicted.Inc()
	r.logger.Info("session evicted", "session_id", s.id, "created", s.created)
}

// observer feeds every recomputation in session id to metrics and the sink.
func (r *Registry) observer(id string) reactive.Observer {
	return func(st *reactive.Store, rc reactive.Recomputation) {
		r.metrics.Recomputations.WithLabelValues(string(rc.Computation)).Inc()
		if r.sink == nil {
			return
		}
		ev := domain.RecomputeEvent{
			SessionID:   id,
			Computation: string(rc.Computation),
			Trigger:     rc.Trigger.String(),
			Scale:       st.Scale(),
			Shape:       st.Shape(),
			Mean:        st.Mean(),
			At:          rc.At,
		}
		if rc.Err != nil {
			ev.Error = rc.Err.Error()
		}
		if !r.sink.Enqueue(ev) {
			r.logger.Warn("recomputation event dropped", "session_id", id, "computation", ev.Computation)
		}
	}
}
