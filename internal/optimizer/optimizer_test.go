package optimizer

import (
	"context"
	"errors"
	"math"
	"testing"
	"time"

	"github.com/chrissnell/pvsizer/internal/readings"
	"github.com/chrissnell/pvsizer/pkg/solar"
)

var saoPaulo = solar.Site{Latitude: -23.5, Longitude: -46.6, Meridian: -45}

type fakeSource struct {
	day []readings.Reading
	err error
}

func (f *fakeSource) At(ctx context.Context, t time.Time) (readings.Reading, error) {
	return readings.Reading{}, readings.ErrNoReading
}

func (f *fakeSource) Day(ctx context.Context, day time.Time) ([]readings.Reading, error) {
	return f.day, f.err
}

func (f *fakeSource) Close() error { return nil }

func coarseGrid() Grid {
	return Grid{TiltMin: 0, TiltMax: 90, TiltStep: 10, AzimuthMin: -90, AzimuthMax: 90, AzimuthStep: 10}
}

func TestOptimizeReadings(t *testing.T) {
	day := time.Date(2019, 11, 1, 0, 0, 0, 0, time.UTC)
	src := &fakeSource{day: []readings.Reading{
		{Time: day.Add(11 * time.Hour), Irradiance: 600},
		{Time: day.Add(12 * time.Hour), Irradiance: 900},
		{Time: day.Add(13 * time.Hour), Irradiance: 700},
	}}

	r, err := Optimize(context.Background(), src, day, saoPaulo, coarseGrid(), WithWorkers(3))
	if err != nil {
		t.Fatalf("Optimize: %v", err)
	}

	if r.Source != SourceReadings || r.Samples != 3 {
		t.Errorf("source = %s with %d samples, expected readings with 3", r.Source, r.Samples)
	}
	if len(r.Tilts) != 10 || len(r.Azimuths) != 19 {
		t.Fatalf("grid = %dx%d, expected 10x19", len(r.Tilts), len(r.Azimuths))
	}
	if r.BestTilt != 10 || r.BestAzimuth != 90 {
		t.Errorf("best = (%v, %v), expected (10, 90)", r.BestTilt, r.BestAzimuth)
	}
	if math.Abs(r.BestTotal-2134.861) > 0.01 {
		t.Errorf("BestTotal = %v, expected 2134.861", r.BestTotal)
	}

	// A flat panel does not depend on azimuth.
	for j := range r.Azimuths {
		if got := r.Totals.At(0, j); math.Abs(got-2126.945) > 0.01 {
			t.Errorf("Totals[0][%d] = %v, expected 2126.945", j, got)
		}
	}

	rows := r.TotalsRows()
	if len(rows) != 10 || len(rows[3]) != 19 || rows[3][5] != r.Totals.At(3, 5) {
		t.Errorf("TotalsRows does not mirror Totals")
	}
	if r.RunID == "" {
		t.Error("expected a run ID")
	}
}

func TestOptimizeTieKeepsFirst(t *testing.T) {
	day := time.Date(2019, 11, 1, 0, 0, 0, 0, time.UTC)
	src := &fakeSource{day: []readings.Reading{{Time: day.Add(12 * time.Hour), Irradiance: 0}}}

	r, err := Optimize(context.Background(), src, day, saoPaulo, coarseGrid())
	if err != nil {
		t.Fatalf("Optimize: %v", err)
	}
	if r.BestTilt != 0 || r.BestAzimuth != -90 || r.BestTotal != 0 {
		t.Errorf("best = (%v, %v, %v), expected (0, -90, 0)", r.BestTilt, r.BestAzimuth, r.BestTotal)
	}
}

func TestOptimizeClearSkyFallback(t *testing.T) {
	day := time.Date(2019, 11, 1, 0, 0, 0, 0, time.UTC)

	for name, src := range map[string]readings.Source{"empty source": &fakeSource{}, "nil source": nil} {
		t.Run(name, func(t *testing.T) {
			r, err := Optimize(context.Background(), src, day, saoPaulo, coarseGrid())
			if err != nil {
				t.Fatalf("Optimize: %v", err)
			}
			if r.Source != SourceClearSky {
				t.Errorf("Source = %s, expected %s", r.Source, SourceClearSky)
			}
			if r.Samples < 700 || r.Samples > 850 {
				t.Errorf("Samples = %d, expected roughly one per daylight minute", r.Samples)
			}
			if r.BestTotal <= 0 {
				t.Errorf("BestTotal = %v, expected positive", r.BestTotal)
			}
		})
	}
}

func TestOptimizeErrors(t *testing.T) {
	day := time.Date(2019, 11, 1, 0, 0, 0, 0, time.UTC)
	sourceErr := errors.New("boom")

	if _, err := Optimize(context.Background(), &fakeSource{err: sourceErr}, day, saoPaulo, coarseGrid()); !errors.Is(err, sourceErr) {
		t.Errorf("error = %v, expected the source error", err)
	}

	bad := coarseGrid()
	bad.TiltStep = 0
	if _, err := Optimize(context.Background(), nil, day, saoPaulo, bad); !errors.Is(err, ErrInvalidGrid) {
		t.Errorf("error = %v, expected ErrInvalidGrid", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := Optimize(ctx, nil, day, saoPaulo, DefaultGrid()); !errors.Is(err, context.Canceled) {
		t.Errorf("error = %v, expected context.Canceled", err)
	}
}

func TestGridAxes(t *testing.T) {
	tests := []struct {
		name          string
		grid          Grid
		expectTilts   []float64
		expectAzimuth int
	}{
		{"default", DefaultGrid(), nil, 181},
		{"uneven step", Grid{TiltMin: 0, TiltMax: 10, TiltStep: 4, AzimuthMin: 0, AzimuthMax: 0, AzimuthStep: 1}, []float64{0, 4, 8}, 1},
		{"single tilt", Grid{TiltMin: 20, TiltMax: 20, TiltStep: 5, AzimuthMin: -10, AzimuthMax: 10, AzimuthStep: 5}, []float64{20}, 5},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tilts, azimuths, err := tt.grid.axes()
			if err != nil {
				t.Fatalf("axes: %v", err)
			}
			if tt.expectTilts != nil {
				if len(tilts) != len(tt.expectTilts) {
					t.Fatalf("tilts = %v, expected %v", tilts, tt.expectTilts)
				}
				for i := range tilts {
					if math.Abs(tilts[i]-tt.expectTilts[i]) > 1e-9 {
						t.Errorf("tilts = %v, expected %v", tilts, tt.expectTilts)
					}
				}
			} else if len(tilts) != 91 || tilts[90] != 90 {
				t.Errorf("default tilts = %d ending at %v, expected 91 ending at 90", len(tilts), tilts[len(tilts)-1])
			}
			if len(azimuths) != tt.expectAzimuth {
				t.Errorf("got %d azimuths, expected %d", len(azimuths), tt.expectAzimuth)
			}
		})
	}
}
