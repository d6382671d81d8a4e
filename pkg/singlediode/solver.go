package singlediode

import (
	"math"

	"gonum.org/v1/gonum/floats"
)

// Physical constants used by every calculation
const (
	BoltzmannConstant  = 1.38065e-23 // J/K
	ElementaryCharge   = 1.602e-19   // C
	NominalTemperature = 298.15      // K, 25 °C
	NominalIrradiance  = 1000.0      // W/m²
)

// CelsiusToKelvin converts a cell temperature to the absolute scale used by
// Calculate
func CelsiusToKelvin(c float64) float64 {
	return c + 273.15
}

// Curve is a discretised I-V/P-V characteristic. The three slices always have
// the same length
type Curve struct {
	Voltages []float64 `json:"voltages"`
	Currents []float64 `json:"currents"`
	Powers   []float64 `json:"powers"`

	// ShortCircuitCurrent is the irradiance- and temperature-scaled Isc,
	// which is also the photo-current of the model
	ShortCircuitCurrent float64 `json:"short_circuit_current"`
	// OpenCircuitVoltage is the corrected, rounded Voc closing the grid
	OpenCircuitVoltage float64 `json:"open_circuit_voltage"`
}

// Len returns the number of samples in the curve
func (c *Curve) Len() int {
	return len(c.Voltages)
}

// MaxPowerPoint returns the sample with the highest power. The first sample
// wins ties
func (c *Curve) MaxPowerPoint() (index int, voltage, current, power float64) {
	if len(c.Powers) == 0 {
		return -1, 0, 0, 0
	}
	index = floats.MaxIdx(c.Powers)
	return index, c.Voltages[index], c.Currents[index], c.Powers[index]
}

// Solver evaluates the single-diode model of one module. It holds no mutable
// state and is safe for concurrent use
type Solver struct {
	params    *ModuleParameters
	corrector VoltageCorrectorFactory
}

// SolverOption configures a Solver
type SolverOption func(*Solver)

// WithCorrector replaces the default open-circuit voltage corrector
func WithCorrector(f VoltageCorrectorFactory) SolverOption {
	return func(s *Solver) { s.corrector = f }
}

// NewSolver returns a Solver for the given module
func NewSolver(params *ModuleParameters, opts ...SolverOption) *Solver {
	s := &Solver{
		params:    params,
		corrector: NewOpenCircuitCorrector,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Parameters returns the module the solver was built for
func (s *Solver) Parameters() *ModuleParameters {
	return s.params
}

// Calculate computes the curve of a module with the default corrector
func Calculate(params *ModuleParameters, operatingTemperature, actualIrradiance float64) (*Curve, error) {
	return NewSolver(params).Calculate(operatingTemperature, actualIrradiance)
}

// Calculate computes the I-V/P-V curve at the given cell temperature (Kelvin)
// and irradiance (W/m²).
//
// Current is resolved left to right with a single fixed-point substitution
// per sample, seeded by the previous sample's current. Negative currents are
// clamped to zero. The last sample is not solved: it keeps I = 0 and P = 0 so
// the open-circuit boundary holds exactly
func (s *Solver) Calculate(operatingTemperature, actualIrradiance float64) (*Curve, error) {
	if math.IsNaN(operatingTemperature) || math.IsInf(operatingTemperature, 0) || operatingTemperature <= 0 {
		return nil, &DomainError{Field: "operating_temperature", Value: operatingTemperature, Reason: "must be above absolute zero"}
	}
	if math.IsNaN(actualIrradiance) || math.IsInf(actualIrradiance, 0) || actualIrradiance < 0 {
		return nil, &DomainError{Field: "actual_irradiance", Value: actualIrradiance, Reason: "must be a finite non-negative number"}
	}

	p := s.params

	nominalThermalVoltage := s.thermalVoltage(NominalTemperature)
	operatingThermalVoltage := s.thermalVoltage(operatingTemperature)

	nominalSaturationCurrent := s.saturationCurrent(NominalTemperature, nominalThermalVoltage)
	saturationCurrent := s.saturationCurrent(operatingTemperature, operatingThermalVoltage)
	if !isFinite(saturationCurrent) || saturationCurrent == 0 {
		return nil, &DomainError{Field: "operating_temperature", Value: operatingTemperature, Reason: "diode saturation current is not representable"}
	}

	photoCurrent := s.actualShortCircuitCurrent(operatingTemperature, actualIrradiance)
	if photoCurrent < 0 {
		return nil, &DomainError{Field: "operating_temperature", Value: operatingTemperature, Reason: "temperature-adjusted short-circuit current is negative"}
	}

	corrector := s.corrector(CorrectorInputs{
		PhotoCurrent:      photoCurrent,
		SaturationCurrent: nominalSaturationCurrent,
		ShuntResistance:   p.shuntResistance,
		CellsInSeries:     p.cellsInSeries,
		ThermalVoltage:    nominalThermalVoltage,
	})
	voc := corrector.Correct(p.openCircuitVoltage) + p.temperatureVoltageCoefficient*(operatingTemperature-NominalTemperature)
	if math.IsNaN(voc) || math.IsInf(voc, 0) {
		return nil, &DomainError{Field: "operating_temperature", Value: operatingTemperature, Reason: "corrected open-circuit voltage is not finite"}
	}
	// A hot module in the dark has no open-circuit voltage left; the curve
	// collapses to the single short-circuit sample
	voc = math.Max(roundTo(voc, p.voltageDecimalDigits), 0)

	samples := gridSamples(voc, p.voltageDecimalDigits)
	if samples > MaxCurveSamples {
		return nil, &DomainError{Field: "operating_temperature", Value: operatingTemperature, Reason: "voltage grid exceeds the sample limit"}
	}
	n := int(samples)

	curve := &Curve{
		Voltages:            make([]float64, n),
		Currents:            make([]float64, n),
		Powers:              make([]float64, n),
		ShortCircuitCurrent: photoCurrent,
		OpenCircuitVoltage:  voc,
	}
	if n > 1 {
		floats.Span(curve.Voltages, 0, voc)
		curve.Voltages[n-1] = voc
	}
	curve.Currents[0] = photoCurrent

	scale := float64(p.cellsInSeries) * operatingThermalVoltage
	for i := 1; i < n-1; i++ {
		v := curve.Voltages[i]
		drop := v + curve.Currents[i-1]*p.seriesResistance
		current := photoCurrent - saturationCurrent*(math.Exp(drop/scale)-1) - drop/p.shuntResistance
		// Stopgap for partial-shading artefacts: the model has no shading
		// term, so negative currents are cut off
		if current < 0 {
			current = 0
		}
		curve.Currents[i] = current
		curve.Powers[i] = v * current
	}

	return curve, nil
}

func (s *Solver) thermalVoltage(temperature float64) float64 {
	return (s.params.diodeQualityFactor * BoltzmannConstant * temperature) / ElementaryCharge
}

// saturationCurrent evaluates the diode saturation current with Isc and Voc
// shifted linearly to the given temperature
func (s *Solver) saturationCurrent(temperature, thermalVoltage float64) float64 {
	p := s.params
	dt := temperature - NominalTemperature
	isc := p.shortCircuitCurrent + p.temperatureCurrentCoefficient*dt
	voc := p.openCircuitVoltage + p.temperatureVoltageCoefficient*dt
	return isc / (math.Exp(voc/(float64(p.cellsInSeries)*thermalVoltage)) - 1)
}

func (s *Solver) actualShortCircuitCurrent(temperature, irradiance float64) float64 {
	p := s.params
	return (irradiance / NominalIrradiance) * (p.shortCircuitCurrent + p.temperatureCurrentCoefficient*(temperature-NominalTemperature))
}
