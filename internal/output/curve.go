package output

import (
	"iter"
	"math"

	"github.com/couchcryptid/wind-weibull-service/internal/domain"
)

// sampleCount is the number of points in [SampleStart, SampleEnd) at SampleStep.
var sampleCount = int(math.Round((domain.SampleEnd - domain.SampleStart) / domain.SampleStep))

// Curve returns the density curve for (c, k) as a lazy sequence of points
// over the fixed sampling domain. Wind speeds are computed as start + i*step
// so they do not drift. The divergent sample at w = 0 for k < 1 is skipped.
func Curve(c, k float64) (iter.Seq[domain.Point], error) {
	if _, err := domain.Density(c, k, domain.SampleStart); err != nil {
		return nil, err
	}
	return func(yield func(domain.Point) bool) {
		for i := range sampleCount {
			w := domain.SampleStart + float64(i)*domain.SampleStep
			p, err := domain.Density(c, k, w)
			if err != nil {
				// c and k were validated above; Density only fails on them.
				return
			}
			if math.IsInf(p, 1) {
				continue
			}
			if !yield(domain.Point{WindSpeed: w, Probability: p}) {
				return
			}
		}
	}, nil
}
