// Package report exports solved curves as CSV and PNG.
package report

import (
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/gocarina/gocsv"

	"github.com/chrissnell/pvsizer/pkg/singlediode"
)

// ErrEmptyCurve is returned when there is nothing to export.
var ErrEmptyCurve = errors.New("curve has no samples")

// curveRow is one CSV line.
type curveRow struct {
	Voltage float64 `csv:"voltage"`
	Current float64 `csv:"current"`
	Power   float64 `csv:"power"`
}

// WriteCurveCSV writes the curve as voltage,current,power rows with a header.
func WriteCurveCSV(w io.Writer, c *singlediode.Curve) error {
	if c == nil || c.Len() == 0 {
		return ErrEmptyCurve
	}
	rows := make([]curveRow, c.Len())
	for i := range rows {
		rows[i] = curveRow{Voltage: c.Voltages[i], Current: c.Currents[i], Power: c.Powers[i]}
	}
	if err := gocsv.Marshal(rows, w); err != nil {
		return fmt.Errorf("failed to write curve CSV: %w", err)
	}
	return nil
}

var fileNameReplacer = strings.NewReplacer("/", "-", "\\", "-", " ", "-")

// CurveFileName returns <model>_YYYYMMDDHHMMSS.<ext>.
func CurveFileName(model string, now time.Time, ext string) string {
	if model == "" {
		model = "curve"
	}
	return fmt.Sprintf("%s_%s.%s", fileNameReplacer.Replace(model), now.Format("20060102150405"), strings.TrimPrefix(ext, "."))
}
