package output

import (
	"fmt"
	"math"
	"slices"

	"github.com/couchcryptid/wind-weibull-service/internal/domain"
)

// Plot styling handed to the rendering collaborator.
const (
	PlotTitle  = "Weibull distribution"
	XAxisLabel = "Wind speed (m/s)"
	YAxisLabel = "Probability"
	LineColor  = "#A52A2A"

	xTickStep = 5.0
	yTickStep = 0.05

	maxTicks = 1000
)

// Plot is a complete render request: the full curve plus the visible window
// and axis decoration.
type Plot struct {
	Title   string              `json:"title"`
	XLabel  string              `json:"x_label"`
	YLabel  string              `json:"y_label"`
	Legend  string              `json:"legend"`
	Color   string              `json:"color"`
	Points  []domain.Point      `json:"points"`
	Visible domain.DisplayRange `json:"visible_range"`
	YRange  [2]float64          `json:"y_range"`
	XTicks  []float64           `json:"x_ticks"`
	YTicks  []float64           `json:"y_ticks"`
}

// BuildPlot samples the full curve for p and frames it to p.Range.
func BuildPlot(p domain.Params) (Plot, error) {
	seq, err := Curve(p.Scale, p.Shape)
	if err != nil {
		return Plot{}, err
	}
	return Plot{
		Title:   PlotTitle,
		XLabel:  XAxisLabel,
		YLabel:  YAxisLabel,
		Legend:  fmt.Sprintf("Weibull distribution\nc=%.2f\nk=%.2f", p.Scale, p.Shape),
		Color:   LineColor,
		Points:  slices.Collect(seq),
		Visible: p.Range,
		YRange:  domain.YRange,
		XTicks:  ticks(p.Range.Low, p.Range.High, xTickStep),
		YTicks:  ticks(domain.YRange[0], domain.YRange[1], yTickStep),
	}, nil
}

// ticks returns lo, lo+step, ... strictly below hi. It returns nil when the
// span is non-finite or would need more than maxTicks ticks.
func ticks(lo, hi, step float64) []float64 {
	span := math.Ceil((hi-lo)/step - 1e-9)
	if math.IsNaN(span) || math.IsInf(span, 0) || span > maxTicks {
		return nil
	}
	n := int(span)
	out := make([]float64, 0, max(n, 0))
	for i := range n {
		out = append(out, math.Round((lo+float64(i)*step)*1e6)/1e6)
	}
	return out
}
