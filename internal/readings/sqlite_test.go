package readings

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/chrissnell/pvsizer/pkg/config"
)

func openTestStore(t *testing.T) *SQLiteStore {
	t.Helper()
	s, err := OpenSQLite(filepath.Join(t.TempDir(), "readings.db"), zap.NewNop().Sugar())
	if err != nil {
		t.Fatalf("OpenSQLite: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestSQLiteStore(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	base := time.Date(2019, 11, 1, 12, 0, 0, 0, time.UTC)
	in := []Reading{
		{Time: base.Add(2 * time.Minute), Irradiance: 840, CellTemperature: 46.5, AmbientTemperature: 30, Demand: 2300},
		{Time: base, Irradiance: 850.25, CellTemperature: 47.1, AmbientTemperature: 30.2, Demand: 2350.5},
		{Time: base.Add(time.Minute), Irradiance: 845, CellTemperature: 46.9, AmbientTemperature: 30.1, Demand: 2320},
		{Time: base.AddDate(0, 0, 1), Irradiance: 420, CellTemperature: 31.5, AmbientTemperature: 24, Demand: 1200},
	}

	n, err := s.Insert(ctx, in...)
	if err != nil {
		t.Fatalf("Insert: %v", err)
	}
	if n != len(in) {
		t.Errorf("Insert wrote %d, expected %d", n, len(in))
	}

	count, err := s.Count(ctx)
	if err != nil {
		t.Fatalf("Count: %v", err)
	}
	if count != 4 {
		t.Errorf("Count = %d, expected 4", count)
	}

	r, err := s.At(ctx, base.Add(30*time.Second))
	if err != nil {
		t.Fatalf("At: %v", err)
	}
	if r != in[1] {
		t.Errorf("At = %+v, expected %+v", r, in[1])
	}

	if _, err := s.At(ctx, base.Add(time.Hour)); !errors.Is(err, ErrNoReading) {
		t.Errorf("At(missing) error = %v, expected ErrNoReading", err)
	}

	day, err := s.Day(ctx, base)
	if err != nil {
		t.Fatalf("Day: %v", err)
	}
	if len(day) != 3 {
		t.Fatalf("Day returned %d readings, expected 3", len(day))
	}
	for i := 1; i < len(day); i++ {
		if !day[i].Time.After(day[i-1].Time) {
			t.Errorf("Day not ascending at %d", i)
		}
	}
}

func TestSQLiteStoreUpsert(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	at := time.Date(2019, 11, 1, 12, 0, 0, 0, time.UTC)
	if _, err := s.Insert(ctx, Reading{Time: at, Irradiance: 100, CellTemperature: 20}); err != nil {
		t.Fatalf("Insert: %v", err)
	}
	if _, err := s.Insert(ctx, Reading{Time: at, Irradiance: 200, CellTemperature: 25}); err != nil {
		t.Fatalf("Insert: %v", err)
	}

	count, _ := s.Count(ctx)
	if count != 1 {
		t.Errorf("Count = %d, expected 1 after upsert", count)
	}
	r, err := s.At(ctx, at)
	if err != nil {
		t.Fatalf("At: %v", err)
	}
	if r.Irradiance != 200 {
		t.Errorf("Irradiance = %v, expected the second insert to win", r.Irradiance)
	}
}

func TestOpen(t *testing.T) {
	logger := zap.NewNop().Sugar()

	if _, err := Open(config.ReadingsData{}, logger); !errors.Is(err, ErrNoSource) {
		t.Errorf("Open(empty) error = %v, expected ErrNoSource", err)
	}

	src, err := Open(config.ReadingsData{
		SQLite: filepath.Join(t.TempDir(), "r.db"),
		CSV:    "/does/not/exist.csv",
	}, logger)
	if err != nil {
		t.Fatalf("Open(sqlite): %v", err)
	}
	defer src.Close()
	if _, ok := src.(*SQLiteStore); !ok {
		t.Errorf("Open picked %T, expected *SQLiteStore", src)
	}

	if _, err := Open(config.ReadingsData{CSV: "/does/not/exist.csv"}, logger); err == nil {
		t.Error("expected an error for a missing CSV file")
	}
}
