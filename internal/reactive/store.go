package reactive

import (
	"fmt"

	"github.com/couchcryptid/wind-weibull-service/internal/domain"
)

// Store holds one session's inputs and the cached mean wind speed. Inputs
// change only through the Set methods; the mean changes only through
// scheduled computations. A Store is not safe for concurrent use.
type Store struct {
	params    domain.Params
	mean      float64
	scheduler *Scheduler
}

// NewStore validates initial and computes the initial mean before returning,
// so Mean never reports a placeholder value.
func NewStore(scheduler *Scheduler, initial domain.Params) (*Store, error) {
	if err := initial.Validate(); err != nil {
		return nil, fmt.Errorf("initial params: %w", err)
	}
	s := &Store{params: initial, scheduler: scheduler}
	if err := recomputeMean(s); err != nil {
		return nil, err
	}
	return s, nil
}

// SetScale commits c and notifies the scheduler, even if c is unchanged.
// An invalid c is rejected before anything is committed.
func (s *Store) SetScale(c float64) error {
	if err := domain.ValidateScale(c); err != nil {
		return err
	}
	next := s.params
	next.Scale = c
	return s.commit(next, ParamScale)
}

// SetShape commits k and notifies the scheduler, even if k is unchanged.
func (s *Store) SetShape(k float64) error {
	if err := domain.ValidateShape(k); err != nil {
		return err
	}
	next := s.params
	next.Shape = k
	return s.commit(next, ParamShape)
}

// SetDisplayRange commits [lo, hi] and notifies the scheduler.
func (s *Store) SetDisplayRange(lo, hi float64) error {
	r := domain.DisplayRange{Low: lo, High: hi}
	if err := r.Validate(); err != nil {
		return err
	}
	next := s.params
	next.Range = r
	return s.commit(next, ParamDisplayRange)
}

// commit installs next and runs the dependents of p. If a dependent fails,
// the inputs and the mean are rolled back to their values before the set.
func (s *Store) commit(next domain.Params, p Parameter) error {
	prevParams, prevMean := s.params, s.mean
	s.params = next
	if err := s.scheduler.Notify(s, p); err != nil {
		s.params, s.mean = prevParams, prevMean
		return err
	}
	return nil
}

// Scale returns the current scale factor c.
func (s *Store) Scale() float64 { return s.params.Scale }

// Shape returns the current shape factor k.
func (s *Store) Shape() float64 { return s.params.Shape }

// DisplayRange returns the current visible window.
func (s *Store) DisplayRange() domain.DisplayRange { return s.params.Range }

// Mean returns the cached mean wind speed.
func (s *Store) Mean() float64 { return s.mean }

// Params returns a copy of all current inputs.
func (s *Store) Params() domain.Params { return s.params }

func recomputeMean(s *Store) error {
	m, err := domain.Mean(s.params.Scale, s.params.Shape)
	if err != nil {
		return err
	}
	s.mean = m
	return nil
}
