package domain

import (
	"errors"
	"fmt"
	"math"
)

// Sampling domain for the curve series. The full curve is always sampled over
// this interval; the display range only selects the visible window.
const (
	SampleStart = 0.0
	SampleEnd   = 30.0
	SampleStep  = 0.1

	// RangeLimit is the largest display range bound the boundary accepts.
	RangeLimit = 30.0
)

// YRange is the fixed probability axis handed to the renderer.
var YRange = [2]float64{0, 0.3}

// ErrInvalidRange is returned for display ranges that are not 0 <= low <= high.
var ErrInvalidRange = errors.New("invalid display range")

// DisplayRange is the visible wind-speed window in m/s.
type DisplayRange struct {
	Low  float64 `json:"low"`
	High float64 `json:"high"`
}

// Validate checks 0 <= Low <= High.
func (r DisplayRange) Validate() error {
	if math.IsNaN(r.Low) || math.IsNaN(r.High) {
		return fmt.Errorf("%w: NaN bound", ErrInvalidRange)
	}
	if r.Low < 0 {
		return fmt.Errorf("%w: low %g is negative", ErrInvalidRange, r.Low)
	}
	if r.Low > r.High {
		return fmt.Errorf("%w: low %g exceeds high %g", ErrInvalidRange, r.Low, r.High)
	}
	return nil
}

// Params is the full set of user-controlled inputs.
type Params struct {
	Scale float64      `json:"scale"`
	Shape float64      `json:"shape"`
	Range DisplayRange `json:"range"`
}

// Validate checks every input.
func (p Params) Validate() error {
	if err := validate(p.Scale, p.Shape); err != nil {
		return err
	}
	return p.Range.Validate()
}

// DefaultParams returns the initial control values: c=7.0, k=2.0, range [0,25].
func DefaultParams() Params {
	return Params{
		Scale: 7.0,
		Shape: 2.0,
		Range: DisplayRange{Low: 0, High: 25},
	}
}

// Point is one sample of the density curve.
type Point struct {
	WindSpeed   float64 `json:"wind_speed"`
	Probability float64 `json:"probability"`
}
