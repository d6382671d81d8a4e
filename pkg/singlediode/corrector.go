package singlediode

import "math"

// CorrectorInputs are the quantities a VoltageCorrector is built from
type CorrectorInputs struct {
	PhotoCurrent      float64
	SaturationCurrent float64
	ShuntResistance   float64
	CellsInSeries     int
	ThermalVoltage    float64
}

// VoltageCorrector adjusts a nominal open-circuit voltage for the irradiance
// implied by its photo-current. Implementations must be deterministic and
// return a finite voltage no greater than the nominal one for sub-nominal
// irradiance
type VoltageCorrector interface {
	Correct(nominalOpenCircuitVoltage float64) float64
}

// VoltageCorrectorFactory builds a VoltageCorrector for one calculation
type VoltageCorrectorFactory func(CorrectorInputs) VoltageCorrector

const (
	correctorTolerance     = 1e-9
	correctorMaxIterations = 100
)

// OpenCircuitCorrector finds the voltage at which the diode and shunt
// currents balance the photo-current:
//
//	Iph - I0*(exp(V/(Ns*Vt)) - 1) - V/Rsh = 0
//
// searching [0, nominal] with Newton steps guarded by bisection
type OpenCircuitCorrector struct {
	in CorrectorInputs
}

// NewOpenCircuitCorrector is the default VoltageCorrectorFactory
func NewOpenCircuitCorrector(in CorrectorInputs) VoltageCorrector {
	return &OpenCircuitCorrector{in: in}
}

func (c *OpenCircuitCorrector) residual(v float64) (f, df float64) {
	scale := float64(c.in.CellsInSeries) * c.in.ThermalVoltage
	e := math.Exp(v / scale)
	f = c.in.PhotoCurrent - c.in.SaturationCurrent*(e-1) - v/c.in.ShuntResistance
	df = -c.in.SaturationCurrent*e/scale - 1/c.in.ShuntResistance
	return f, df
}

// Correct returns the irradiance-corrected open-circuit voltage
func (c *OpenCircuitCorrector) Correct(nominal float64) float64 {
	if c.in.PhotoCurrent <= 0 || nominal <= 0 {
		return 0
	}

	lo, hi := 0.0, nominal
	fhi, _ := c.residual(hi)
	if fhi >= 0 {
		// The balance point lies at or beyond the nominal voltage
		return nominal
	}

	v := hi
	for i := 0; i < correctorMaxIterations; i++ {
		f, df := c.residual(v)
		if f > 0 {
			lo = v
		} else {
			hi = v
		}

		next := v - f/df
		if df == 0 || math.IsNaN(next) || next <= lo || next >= hi {
			next = (lo + hi) / 2
		}
		if math.Abs(next-v) < correctorTolerance || hi-lo < correctorTolerance {
			return next
		}
		v = next
	}
	return v
}
