// Package sizing turns a logged reading into the number of modules needed
// to cover the demand at that minute.
package sizing

import (
	"errors"
	"fmt"
	"math"

	"github.com/chrissnell/pvsizer/internal/readings"
	"github.com/chrissnell/pvsizer/pkg/singlediode"
	"github.com/chrissnell/pvsizer/pkg/solar"
)

// ErrNoPower is returned when the module produces no power at the
// operating point.
var ErrNoPower = errors.New("module produces no power at the operating point")

// Report is the outcome of sizing against one reading.
type Report struct {
	Reading              readings.Reading      `json:"reading"`
	Orientation          solar.Orientation     `json:"orientation"`
	Incidence            solar.IncidenceResult `json:"incidence"`
	IncidentIrradiance   float64               `json:"incident_irradiance"` // clamped at zero
	OperatingTemperature float64               `json:"operating_temperature"`
	Curve                *singlediode.Curve    `json:"curve"`
	ModulePower          float64               `json:"module_power"`
	MaxPowerVoltage      float64               `json:"max_power_voltage"`
	MaxPowerCurrent      float64               `json:"max_power_current"`
	Panels               int                   `json:"panels"`
}

// Evaluate projects the reading's irradiance onto the panel, solves the
// module curve at the reading's cell temperature and sizes the array for
// the reading's demand. When the module yields no power the report is still
// returned together with ErrNoPower.
func Evaluate(solver *singlediode.Solver, reading readings.Reading, site solar.Site, orient solar.Orientation) (*Report, error) {
	inc := solar.Incidence(reading.Time, reading.Irradiance, site, orient)

	r := &Report{
		Reading:              reading,
		Orientation:          orient,
		Incidence:            inc,
		IncidentIrradiance:   math.Max(inc.IncidentIrradiance, 0),
		OperatingTemperature: reading.OperatingTemperature(),
	}

	curve, err := solver.Calculate(r.OperatingTemperature, r.IncidentIrradiance)
	if err != nil {
		return nil, fmt.Errorf("failed to solve module curve: %w", err)
	}
	r.Curve = curve

	_, r.MaxPowerVoltage, r.MaxPowerCurrent, r.ModulePower = curve.MaxPowerPoint()

	r.Panels, err = PanelCount(reading.Demand, r.ModulePower)
	if err != nil {
		return r, err
	}
	return r, nil
}

// PanelCount returns ceil(demand / modulePower). A non-positive demand needs
// no panels.
func PanelCount(demand, modulePower float64) (int, error) {
	if math.IsNaN(modulePower) || modulePower <= 0 {
		return 0, ErrNoPower
	}
	if math.IsNaN(demand) || demand <= 0 {
		return 0, nil
	}
	return int(math.Ceil(demand / modulePower)), nil
}
