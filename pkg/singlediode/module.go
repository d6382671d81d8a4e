// Package singlediode estimates the I-V and P-V characteristic of a
// photovoltaic module from its single-diode equivalent circuit, corrected
// for operating temperature and irradiance.
package singlediode

import (
	"math"
	"strings"

	"github.com/spf13/cast"
)

// Defaults applied when the corresponding ModuleOption is not given
const (
	DefaultVoltageDecimalDigits          = 1
	DefaultTemperatureVoltageCoefficient = -0.123 // V/°C
	DefaultTemperatureCurrentCoefficient = 0.0032 // A/°C
	DefaultSeriesResistance              = 0.221
	DefaultShuntResistance               = 415.405
	DefaultDiodeQualityFactor            = 1.3

	maxVoltageDecimalDigits = 6
)

// MaxCurveSamples bounds the voltage grid of a single curve
const MaxCurveSamples = 1000000

// maxDiodeExponent is the largest argument math.Exp takes without overflow
var maxDiodeExponent = math.Log(math.MaxFloat64)

// ModuleParameters holds the equivalent-circuit parameters of a module at
// standard test conditions. It is immutable once built
type ModuleParameters struct {
	shortCircuitCurrent           float64
	openCircuitVoltage            float64
	cellsInSeries                 int
	temperatureVoltageCoefficient float64
	temperatureCurrentCoefficient float64
	seriesResistance              float64
	shuntResistance               float64
	diodeQualityFactor            float64
	voltageDecimalDigits          int
}

// ModuleOption overrides one of the optional module parameters
type ModuleOption func(*ModuleParameters)

// WithVoltageDecimalDigits sets the precision used to round the open-circuit
// voltage and to size the voltage grid
func WithVoltageDecimalDigits(digits int) ModuleOption {
	return func(m *ModuleParameters) { m.voltageDecimalDigits = digits }
}

// WithTemperatureVoltageCoefficient sets the Voc temperature coefficient in V/°C
func WithTemperatureVoltageCoefficient(v float64) ModuleOption {
	return func(m *ModuleParameters) { m.temperatureVoltageCoefficient = v }
}

// WithTemperatureCurrentCoefficient sets the Isc temperature coefficient in A/°C
func WithTemperatureCurrentCoefficient(v float64) ModuleOption {
	return func(m *ModuleParameters) { m.temperatureCurrentCoefficient = v }
}

// WithSeriesResistance sets the series resistance in ohms
func WithSeriesResistance(v float64) ModuleOption {
	return func(m *ModuleParameters) { m.seriesResistance = v }
}

// WithShuntResistance sets the shunt resistance in ohms
func WithShuntResistance(v float64) ModuleOption {
	return func(m *ModuleParameters) { m.shuntResistance = v }
}

// WithDiodeQualityFactor sets the diode ideality factor
func WithDiodeQualityFactor(v float64) ModuleOption {
	return func(m *ModuleParameters) { m.diodeQualityFactor = v }
}

// NewModuleParameters validates and normalises datasheet values.
// shortCircuitCurrent and openCircuitVoltage may be any numeric type or a
// numeric string; a decimal comma is accepted. The open-circuit voltage is
// rounded to the configured number of decimal digits
func NewModuleParameters(shortCircuitCurrent, openCircuitVoltage any, cellsInSeries int, opts ...ModuleOption) (*ModuleParameters, error) {
	m := &ModuleParameters{
		cellsInSeries:                 cellsInSeries,
		temperatureVoltageCoefficient: DefaultTemperatureVoltageCoefficient,
		temperatureCurrentCoefficient: DefaultTemperatureCurrentCoefficient,
		seriesResistance:              DefaultSeriesResistance,
		shuntResistance:               DefaultShuntResistance,
		diodeQualityFactor:            DefaultDiodeQualityFactor,
		voltageDecimalDigits:          DefaultVoltageDecimalDigits,
	}
	for _, opt := range opts {
		opt(m)
	}

	var err error
	if m.shortCircuitCurrent, err = toPositiveFloat("short_circuit_current", shortCircuitCurrent); err != nil {
		return nil, err
	}
	voc, err := toPositiveFloat("open_circuit_voltage", openCircuitVoltage)
	if err != nil {
		return nil, err
	}

	if m.voltageDecimalDigits < 0 || m.voltageDecimalDigits > maxVoltageDecimalDigits {
		return nil, &ParameterError{Field: "number_of_voltage_decimal_digits", Value: m.voltageDecimalDigits, Reason: "must be between 0 and 6"}
	}
	if m.cellsInSeries <= 0 {
		return nil, &ParameterError{Field: "number_of_cells_in_series", Value: m.cellsInSeries, Reason: "must be positive"}
	}
	checks := []struct {
		field string
		value float64
	}{
		{"series_resistance", m.seriesResistance},
		{"shunt_resistance", m.shuntResistance},
		{"diode_quality_factor", m.diodeQualityFactor},
	}
	for _, c := range checks {
		if !isFinite(c.value) || c.value <= 0 {
			return nil, &ParameterError{Field: c.field, Value: c.value, Reason: "must be a finite positive number"}
		}
	}
	if !isFinite(m.temperatureVoltageCoefficient) {
		return nil, &ParameterError{Field: "temperature_voltage_coefficient", Value: m.temperatureVoltageCoefficient, Reason: "must be finite"}
	}
	if !isFinite(m.temperatureCurrentCoefficient) {
		return nil, &ParameterError{Field: "temperature_current_coefficient", Value: m.temperatureCurrentCoefficient, Reason: "must be finite"}
	}

	m.openCircuitVoltage = roundTo(voc, m.voltageDecimalDigits)
	if m.openCircuitVoltage <= 0 {
		return nil, &ParameterError{Field: "open_circuit_voltage", Value: openCircuitVoltage, Reason: "rounds to zero at the configured precision"}
	}
	if gridSamples(m.openCircuitVoltage, m.voltageDecimalDigits) > MaxCurveSamples {
		return nil, &ParameterError{Field: "open_circuit_voltage", Value: openCircuitVoltage, Reason: "voltage grid exceeds the sample limit"}
	}
	vt := m.diodeQualityFactor * BoltzmannConstant * NominalTemperature / ElementaryCharge
	if m.openCircuitVoltage/(float64(m.cellsInSeries)*vt) > maxDiodeExponent {
		return nil, &ParameterError{Field: "number_of_cells_in_series", Value: m.cellsInSeries, Reason: "per-cell open-circuit voltage overflows the diode equation"}
	}

	return m, nil
}

func (m *ModuleParameters) ShortCircuitCurrent() float64           { return m.shortCircuitCurrent }
func (m *ModuleParameters) OpenCircuitVoltage() float64            { return m.openCircuitVoltage }
func (m *ModuleParameters) CellsInSeries() int                     { return m.cellsInSeries }
func (m *ModuleParameters) TemperatureVoltageCoefficient() float64 { return m.temperatureVoltageCoefficient }
func (m *ModuleParameters) TemperatureCurrentCoefficient() float64 { return m.temperatureCurrentCoefficient }
func (m *ModuleParameters) SeriesResistance() float64              { return m.seriesResistance }
func (m *ModuleParameters) ShuntResistance() float64               { return m.shuntResistance }
func (m *ModuleParameters) DiodeQualityFactor() float64            { return m.diodeQualityFactor }
func (m *ModuleParameters) VoltageDecimalDigits() int              { return m.voltageDecimalDigits }

func toPositiveFloat(field string, raw any) (float64, error) {
	switch v := raw.(type) {
	case string:
		raw = strings.ReplaceAll(strings.TrimSpace(v), ",", ".")
	case bool, nil:
		return 0, &ParameterError{Field: field, Value: raw, Reason: "not a number"}
	}
	v, err := cast.ToFloat64E(raw)
	if err != nil {
		return 0, &ParameterError{Field: field, Value: raw, Reason: "not a number"}
	}
	if !isFinite(v) || v <= 0 {
		return 0, &ParameterError{Field: field, Value: raw, Reason: "must be a finite positive number"}
	}
	return v, nil
}

func isFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

// roundTo rounds v to the given number of decimal digits, half away from zero
func roundTo(v float64, digits int) float64 {
	p := math.Pow10(digits)
	return math.Round(v*p) / p
}

// gridSamples is the number of voltage samples from 0 to voc in steps of
// 10^-digits, kept in float64 so oversized grids cannot overflow int
func gridSamples(voc float64, digits int) float64 {
	return math.Round(voc*math.Pow10(digits)) + 1
}
