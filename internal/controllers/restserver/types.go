package restserver

import (
	"time"

	"github.com/chrissnell/pvsizer/internal/sizing"
	"github.com/chrissnell/pvsizer/pkg/config"
	"github.com/chrissnell/pvsizer/pkg/singlediode"
)

// SizingTimeLayout is the format of the /sizing time parameter
const SizingTimeLayout = "2006-01-02T15:04"

// OptimizeDayLayout is the format of the /optimize day field
const OptimizeDayLayout = "2006-01-02"

type healthResponse struct {
	Status string `json:"status"`
}

// moduleResponse describes the configured module
type moduleResponse struct {
	Model                         string  `json:"model"`
	ShortCircuitCurrent           float64 `json:"short_circuit_current"`
	OpenCircuitVoltage            float64 `json:"open_circuit_voltage"`
	CellsInSeries                 int     `json:"cells_in_series"`
	TemperatureVoltageCoefficient float64 `json:"temperature_voltage_coefficient"`
	TemperatureCurrentCoefficient float64 `json:"temperature_current_coefficient"`
	SeriesResistance              float64 `json:"series_resistance"`
	ShuntResistance               float64 `json:"shunt_resistance"`
	DiodeQualityFactor            float64 `json:"diode_quality_factor"`
	VoltageDecimalDigits          int     `json:"voltage_decimal_digits"`
}

func newModuleResponse(model string, m *singlediode.ModuleParameters) moduleResponse {
	return moduleResponse{
		Model:                         model,
		ShortCircuitCurrent:           m.ShortCircuitCurrent(),
		OpenCircuitVoltage:            m.OpenCircuitVoltage(),
		CellsInSeries:                 m.CellsInSeries(),
		TemperatureVoltageCoefficient: m.TemperatureVoltageCoefficient(),
		TemperatureCurrentCoefficient: m.TemperatureCurrentCoefficient(),
		SeriesResistance:              m.SeriesResistance(),
		ShuntResistance:               m.ShuntResistance(),
		DiodeQualityFactor:            m.DiodeQualityFactor(),
		VoltageDecimalDigits:          m.VoltageDecimalDigits(),
	}
}

// curveRequest is the body of POST /curve. Temperature is in Kelvin.
type curveRequest struct {
	OperatingTemperature *float64           `json:"operating_temperature"`
	ActualIrradiance     *float64           `json:"actual_irradiance"`
	Module               *config.ModuleData `json:"module,omitempty"`
}

type maxPowerPoint struct {
	Index   int     `json:"index"`
	Voltage float64 `json:"voltage"`
	Current float64 `json:"current"`
	Power   float64 `json:"power"`
}

type curveResponse struct {
	Model    string             `json:"model"`
	Curve    *singlediode.Curve `json:"curve"`
	MaxPower maxPowerPoint      `json:"max_power"`
}

func newCurveResponse(model string, c *singlediode.Curve) curveResponse {
	var mpp maxPowerPoint
	mpp.Index, mpp.Voltage, mpp.Current, mpp.Power = c.MaxPowerPoint()
	return curveResponse{Model: model, Curve: c, MaxPower: mpp}
}

type sizingResponse struct {
	Report  *sizing.Report `json:"report"`
	Warning string         `json:"warning,omitempty"`
}

// optimizeRequest is the body of POST /optimize. Zero steps fall back to
// the configured ones.
type optimizeRequest struct {
	Day         string  `json:"day"`
	TiltStep    float64 `json:"tilt_step,omitempty"`
	AzimuthStep float64 `json:"azimuth_step,omitempty"`
}

type optimizeResponse struct {
	RunID       string      `json:"run_id"`
	Day         time.Time   `json:"day"`
	Source      string      `json:"source"`
	Samples     int         `json:"samples"`
	BestTilt    float64     `json:"best_tilt"`
	BestAzimuth float64     `json:"best_azimuth"`
	BestTotal   float64     `json:"best_total"`
	Tilts       []float64   `json:"tilts"`
	Azimuths    []float64   `json:"azimuths"`
	Totals      [][]float64 `json:"totals"`
}
