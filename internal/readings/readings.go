// Package readings loads per-minute irradiance, temperature and demand
// samples from the supported backends.
package readings

import (
	"context"
	"errors"
	"time"

	"github.com/chrissnell/pvsizer/pkg/singlediode"
)

// ErrNoReading is returned when no sample exists for the requested minute.
var ErrNoReading = errors.New("no reading for the requested time")

// Reading is one logged minute. Time carries the local wall clock of the
// logger in a UTC location; see Minute.
type Reading struct {
	Time               time.Time `json:"time"`
	Irradiance         float64   `json:"irradiance"`          // W/m²
	CellTemperature    float64   `json:"cell_temperature"`    // °C
	AmbientTemperature float64   `json:"ambient_temperature"` // °C
	Demand             float64   `json:"demand"`              // W
}

// OperatingTemperature returns the cell temperature in Kelvin.
func (r Reading) OperatingTemperature() float64 {
	return singlediode.CelsiusToKelvin(r.CellTemperature)
}

// Source provides readings by minute.
type Source interface {
	// At returns the reading logged at the minute of t, or ErrNoReading.
	At(ctx context.Context, t time.Time) (Reading, error)
	// Day returns every reading on the calendar day of day, ascending.
	Day(ctx context.Context, day time.Time) ([]Reading, error)
	Close() error
}

// Minute drops seconds and the location from t, keeping its wall clock.
// Data loggers record local time without a zone, so every backend keys
// readings this way.
func Minute(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), t.Hour(), t.Minute(), 0, 0, time.UTC)
}

// dayBounds returns [start, end) of the calendar day of t.
func dayBounds(t time.Time) (time.Time, time.Time) {
	start := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
	return start, start.AddDate(0, 0, 1)
}
