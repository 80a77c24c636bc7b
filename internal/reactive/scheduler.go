package reactive

import (
	"fmt"
	"slices"
	"time"
)

// Parameter identifies one user-controlled input.
type Parameter int

const (
	ParamScale Parameter = iota
	ParamShape
	ParamDisplayRange
)

func (p Parameter) String() string {
	switch p {
	case ParamScale:
		return "scale"
	case ParamShape:
		return "shape"
	case ParamDisplayRange:
		return "display_range"
	default:
		return fmt.Sprintf("parameter(%d)", int(p))
	}
}

// ComputationID names a derived-value computation.
type ComputationID string

// The mean has one updater per triggering parameter.
const (
	MeanOnScale ComputationID = "mean_on_scale"
	MeanOnShape ComputationID = "mean_on_shape"
)

// Computation is a unit of recomputation. Run reads current store state when
// it executes, never a snapshot taken at notification time.
type Computation struct {
	ID  ComputationID
	Run func(s *Store) error
}

// Declaration binds a computation to the parameters it depends on.
type Declaration struct {
	Computation Computation
	On          []Parameter
}

// Table maps each parameter to the ordered computations declared on it.
// A Table is immutable once built and may be shared between sessions.
type Table struct {
	deps map[Parameter][]Computation
}

// NewTable builds a table from declarations, preserving declaration order per
// parameter.
func NewTable(decls ...Declaration) Table {
	deps := make(map[Parameter][]Computation)
	for _, d := range decls {
		for _, p := range d.On {
			deps[p] = append(deps[p], d.Computation)
		}
	}
	return Table{deps: deps}
}

// Dependents returns a copy of the computations declared on p, in order.
func (t Table) Dependents(p Parameter) []Computation {
	return slices.Clone(t.deps[p])
}

var defaultTable = NewTable(
	Declaration{Computation: Computation{ID: MeanOnScale, Run: recomputeMean}, On: []Parameter{ParamScale}},
	Declaration{Computation: Computation{ID: MeanOnShape, Run: recomputeMean}, On: []Parameter{ParamShape}},
)

// DefaultTable returns the dependency table of the wind-speed view: the mean
// is recomputed on scale and on shape changes, and nothing runs on display
// range changes.
func DefaultTable() Table {
	return defaultTable
}

// Recomputation describes one executed computation.
type Recomputation struct {
	Computation ComputationID
	Trigger     Parameter
	At          time.Time
	Err         error
}

// Observer is told about every executed computation, in execution order.
type Observer func(store *Store, r Recomputation)

// Scheduler fans change notifications out to dependent computations.
type Scheduler struct {
	table     Table
	observers []Observer
}

// NewScheduler creates a Scheduler over an immutable table.
func NewScheduler(table Table, observers ...Observer) *Scheduler {
	return &Scheduler{table: table, observers: observers}
}

// Notify runs every computation declared on p, in declared order. Execution
// stops at the first failing computation; its error is returned wrapped.
// Restoring state after a failure is left to the caller (see Store).
func (s *Scheduler) Notify(store *Store, p Parameter) error {
	for _, c := range s.table.deps[p] {
		err := c.Run(store)
		r := Recomputation{Computation: c.ID, Trigger: p, At: clock.Now(), Err: err}
		for _, obs := range s.observers {
			obs(store, r)
		}
		if err != nil {
			return fmt.Errorf("recompute %s on %s: %w", c.ID, p, err)
		}
	}
	return nil
}
