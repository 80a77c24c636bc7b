// Command curve prints the Weibull wind-speed curve and mean summary for a
// single set of parameters, using the same store, scheduler and output
// producers as the service.
//
// Usage:
//
//	go run ./cmd/curve -c 7.0 -k 2.0 -lo 0 -hi 25 -format csv
//	go run ./cmd/curve -c 9.5 -k 1.8 -format json > plot.json
//
// CSV output starts with the summary as a comment line, followed by the
// samples inside the display range. JSON output is the full plot request.
package main

import (
	"encoding/csv"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strconv"

	"github.com/couchcryptid/wind-weibull-service/internal/domain"
	"github.com/couchcryptid/wind-weibull-service/internal/output"
	"github.com/couchcryptid/wind-weibull-service/internal/reactive"
)

func main() {
	def := domain.DefaultParams()
	scale := flag.Float64("c", def.Scale, "scale factor c (m/s), > 0")
	shape := flag.Float64("k", def.Shape, "shape factor k, > 0")
	lo := flag.Float64("lo", def.Range.Low, "lower bound of the visible wind-speed range")
	hi := flag.Float64("hi", def.Range.High, "upper bound of the visible wind-speed range, at most 30")
	format := flag.String("format", "csv", "output format: csv or json")
	verbose := flag.Bool("v", false, "log recomputations to stderr")
	flag.Parse()

	level := slog.LevelWarn
	if *verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))

	if err := run(os.Stdout, logger, domain.Params{
		Scale: *scale,
		Shape: *shape,
		Range: domain.DisplayRange{Low: *lo, High: *hi},
	}, *format); err != nil {
		logger.Error("curve failed", "error", err)
		os.Exit(1)
	}
}

// run applies p to a fresh store as a sequence of input changes, then pulls
// both outputs.
func run(w io.Writer, logger *slog.Logger, p domain.Params, format string) error {
	if format != "csv" && format != "json" {
		return fmt.Errorf("unknown format %q", format)
	}
	if p.Range.High > domain.RangeLimit {
		return fmt.Errorf("range: %w: high %g exceeds %g", domain.ErrInvalidRange, p.Range.High, domain.RangeLimit)
	}

	sched := reactive.NewScheduler(reactive.DefaultTable(), func(s *reactive.Store, r reactive.Recomputation) {
		logger.Debug("recomputed", "computation", r.Computation, "trigger", r.Trigger.String(), "mean", s.Mean())
	})
	store, err := reactive.NewStore(sched, domain.DefaultParams())
	if err != nil {
		return err
	}
	if err := store.SetScale(p.Scale); err != nil {
		return fmt.Errorf("scale: %w", err)
	}
	if err := store.SetShape(p.Shape); err != nil {
		return fmt.Errorf("shape: %w", err)
	}
	if err := store.SetDisplayRange(p.Range.Low, p.Range.High); err != nil {
		return fmt.Errorf("range: %w", err)
	}

	plot, err := output.BuildPlot(store.Params())
	if err != nil {
		return err
	}
	summary := output.Summary(store.Mean())

	if format == "json" {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(struct {
			Summary string      `json:"summary"`
			Plot    output.Plot `json:"plot"`
		}{summary, plot})
	}
	return writeCSV(w, summary, plot)
}

// clipEpsilon absorbs accumulated sampling error at the window edges.
const clipEpsilon = 1e-9

func writeCSV(w io.Writer, summary string, plot output.Plot) error {
	if _, err := fmt.Fprintf(w, "# %s\n", summary); err != nil {
		return err
	}
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"wind_speed", "probability"}); err != nil {
		return err
	}
	for _, pt := range plot.Points {
		if pt.WindSpeed < plot.Visible.Low-clipEpsilon || pt.WindSpeed > plot.Visible.High+clipEpsilon {
			continue
		}
		if err := cw.Write([]string{
			strconv.FormatFloat(pt.WindSpeed, 'f', 1, 64),
			strconv.FormatFloat(pt.Probability, 'f', 6, 64),
		}); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}
