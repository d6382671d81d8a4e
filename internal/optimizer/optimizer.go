// Package optimizer searches the tilt and azimuth that collect the most
// irradiance over a day.
package optimizer

import (
	"context"
	"errors"
	"fmt"
	"math"
	"runtime"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"

	"github.com/chrissnell/pvsizer/internal/readings"
	"github.com/chrissnell/pvsizer/pkg/solar"
)

// Sample sources reported in Result.Source.
const (
	SourceReadings = "readings"
	SourceClearSky = "clear-sky"
)

// ErrInvalidGrid is returned for an empty or malformed search grid.
var ErrInvalidGrid = errors.New("invalid search grid")

// Grid is the set of orientations searched, in degrees.
type Grid struct {
	TiltMin     float64 `json:"tilt_min"`
	TiltMax     float64 `json:"tilt_max"`
	TiltStep    float64 `json:"tilt_step"`
	AzimuthMin  float64 `json:"azimuth_min"`
	AzimuthMax  float64 `json:"azimuth_max"`
	AzimuthStep float64 `json:"azimuth_step"`
}

// DefaultGrid covers tilt 0..90 and azimuth -90..90 in 1 degree steps.
func DefaultGrid() Grid {
	return Grid{TiltMin: 0, TiltMax: 90, TiltStep: 1, AzimuthMin: -90, AzimuthMax: 90, AzimuthStep: 1}
}

func (g Grid) axes() (tilts, azimuths []float64, err error) {
	if tilts, err = axis("tilt", g.TiltMin, g.TiltMax, g.TiltStep); err != nil {
		return nil, nil, err
	}
	if azimuths, err = axis("azimuth", g.AzimuthMin, g.AzimuthMax, g.AzimuthStep); err != nil {
		return nil, nil, err
	}
	return tilts, azimuths, nil
}

func axis(name string, min, max, step float64) ([]float64, error) {
	for _, v := range []float64{min, max, step} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return nil, fmt.Errorf("%w: %s bounds must be finite", ErrInvalidGrid, name)
		}
	}
	if step <= 0 {
		return nil, fmt.Errorf("%w: %s step must be positive", ErrInvalidGrid, name)
	}
	if max < min {
		return nil, fmt.Errorf("%w: %s max is below min", ErrInvalidGrid, name)
	}
	// Tolerate steps that do not divide the range exactly.
	n := int(math.Floor((max-min)/step+1e-9)) + 1
	if n == 1 {
		return []float64{min}, nil
	}
	return floats.Span(make([]float64, n), min, min+float64(n-1)*step), nil
}

// Result holds the irradiance total for every orientation and the best one.
type Result struct {
	RunID    string    `json:"run_id"`
	Day      time.Time `json:"day"`
	Source   string    `json:"source"`
	Samples  int       `json:"samples"`
	Tilts    []float64 `json:"tilts"`
	Azimuths []float64 `json:"azimuths"`
	// Totals[i][j] is the sum of incident irradiance samples (W/m²) at
	// Tilts[i], Azimuths[j].
	Totals      *mat.Dense `json:"-"`
	BestTilt    float64    `json:"best_tilt"`
	BestAzimuth float64    `json:"best_azimuth"`
	BestTotal   float64    `json:"best_total"`
}

// TotalsRows returns Totals as a slice of rows.
func (r *Result) TotalsRows() [][]float64 {
	rows, _ := r.Totals.Dims()
	out := make([][]float64, rows)
	for i := range out {
		out[i] = mat.Row(nil, i, r.Totals)
	}
	return out
}

type sample struct {
	t time.Time
	g float64
}

type options struct {
	workers int
	logger  *zap.SugaredLogger
}

// Option configures Optimize.
type Option func(*options)

// WithWorkers limits the number of tilts evaluated concurrently.
func WithWorkers(n int) Option {
	return func(o *options) { o.workers = n }
}

// WithLogger sets the logger used for progress messages.
func WithLogger(logger *zap.SugaredLogger) Option {
	return func(o *options) { o.logger = logger }
}

// Optimize sums the incident irradiance of every sample of day for each
// orientation in grid. Samples come from src; when src is nil or has nothing
// for day, clear-sky GHI between sunrise and sunset at one-minute resolution
// is used instead. Ties keep the lowest tilt, then the lowest azimuth.
func Optimize(ctx context.Context, src readings.Source, day time.Time, site solar.Site, grid Grid, opts ...Option) (*Result, error) {
	o := options{workers: runtime.GOMAXPROCS(0), logger: zap.NewNop().Sugar()}
	for _, opt := range opts {
		opt(&o)
	}
	if o.workers < 1 {
		o.workers = 1
	}
	if o.logger == nil {
		o.logger = zap.NewNop().Sugar()
	}

	tilts, azimuths, err := grid.axes()
	if err != nil {
		return nil, err
	}

	samples, source, err := loadSamples(ctx, src, day, site)
	if err != nil {
		return nil, err
	}

	r := &Result{
		RunID:    uuid.New().String(),
		Day:      time.Date(day.Year(), day.Month(), day.Day(), 0, 0, 0, 0, time.UTC),
		Source:   source,
		Samples:  len(samples),
		Tilts:    tilts,
		Azimuths: azimuths,
		Totals:   mat.NewDense(len(tilts), len(azimuths), nil),
	}
	o.logger.Infow("starting orientation search",
		"run_id", r.RunID, "source", source, "samples", len(samples),
		"tilts", len(tilts), "azimuths", len(azimuths), "workers", o.workers)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(o.workers)
	for i := range tilts {
		// Each worker owns one row, so writes never overlap.
		g.Go(func() error {
			row := make([]float64, len(azimuths))
			for j, az := range azimuths {
				if err := gctx.Err(); err != nil {
					return err
				}
				orient := solar.Orientation{Tilt: tilts[i], Azimuth: az}
				for _, s := range samples {
					row[j] += solar.Incidence(s.t, s.g, site, orient).IncidentIrradiance
				}
			}
			r.Totals.SetRow(i, row)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("orientation search %s aborted: %w", r.RunID, err)
	}

	r.BestTilt, r.BestAzimuth, r.BestTotal = tilts[0], azimuths[0], r.Totals.At(0, 0)
	for i := range tilts {
		row := r.Totals.RawRowView(i)
		j := floats.MaxIdx(row)
		if row[j] > r.BestTotal {
			r.BestTilt, r.BestAzimuth, r.BestTotal = tilts[i], azimuths[j], row[j]
		}
	}

	o.logger.Infow("orientation search complete",
		"run_id", r.RunID, "best_tilt", r.BestTilt, "best_azimuth", r.BestAzimuth, "best_total", r.BestTotal)
	return r, nil
}

func loadSamples(ctx context.Context, src readings.Source, day time.Time, site solar.Site) ([]sample, string, error) {
	if src != nil {
		rs, err := src.Day(ctx, day)
		if err != nil {
			return nil, "", fmt.Errorf("failed to load readings for %s: %w", day.Format("2006-01-02"), err)
		}
		if len(rs) > 0 {
			samples := make([]sample, 0, len(rs))
			for _, r := range rs {
				samples = append(samples, sample{t: r.Time, g: r.Irradiance})
			}
			return samples, SourceReadings, nil
		}
	}
	return clearSkySamples(day, site), SourceClearSky, nil
}

// clearSkySamples returns one clear-sky sample per minute between sunrise
// and sunset. During polar day or night the whole day is scanned and only
// minutes with the sun up are kept.
func clearSkySamples(day time.Time, site solar.Site) []sample {
	loc := site.Location()
	start := time.Date(day.Year(), day.Month(), day.Day(), 0, 0, 0, 0, loc)
	end := start.AddDate(0, 0, 1).Add(-time.Minute)
	if sunrise, sunset, ok := solar.SunriseSunset(day, site); ok {
		start, end = sunrise, sunset
	}

	var samples []sample
	for t := start; !t.After(end); t = t.Add(time.Minute) {
		if g := solar.ClearSkyGHI(t, site); g > 0 {
			samples = append(samples, sample{t: t, g: g})
		}
	}
	return samples
}
