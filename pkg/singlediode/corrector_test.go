package singlediode

import (
	"math"
	"testing"
)

func hiku7CorrectorInputs(photoCurrent float64) CorrectorInputs {
	vt := 0.85 * BoltzmannConstant * NominalTemperature / ElementaryCharge
	return CorrectorInputs{
		PhotoCurrent:      photoCurrent,
		SaturationCurrent: 18.52 / (math.Exp(41.5/(60*vt)) - 1),
		ShuntResistance:   9.619,
		CellsInSeries:     60,
		ThermalVoltage:    vt,
	}
}

func TestOpenCircuitCorrector(t *testing.T) {
	tests := []struct {
		name         string
		photoCurrent float64
		min, max     float64
	}{
		{"full sun", 18.52, 41.1, 41.2},
		{"half sun", 9.26, 39.0, 41.0},
		{"overcast", 1.852, 15.0, 39.0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := NewOpenCircuitCorrector(hiku7CorrectorInputs(tt.photoCurrent)).(*OpenCircuitCorrector)
			v := c.Correct(41.5)
			if v < tt.min || v > tt.max {
				t.Errorf("Correct = %v, expected within [%v, %v]", v, tt.min, tt.max)
			}
			if f, _ := c.residual(v); math.Abs(f) > 1e-6 {
				t.Errorf("residual at %v = %v, expected about 0", v, f)
			}
		})
	}
}

func TestOpenCircuitCorrectorMonotonic(t *testing.T) {
	prev := 0.0
	for g := 50.0; g <= NominalIrradiance; g += 50 {
		v := NewOpenCircuitCorrector(hiku7CorrectorInputs(18.52 * g / NominalIrradiance)).Correct(41.5)
		if v < prev {
			t.Errorf("irradiance %v: Correct = %v, below %v at lower irradiance", g, v, prev)
		}
		if v > 41.5 {
			t.Errorf("irradiance %v: Correct = %v exceeds nominal", g, v)
		}
		prev = v
	}
}

func TestOpenCircuitCorrectorEdges(t *testing.T) {
	tests := []struct {
		name     string
		in       CorrectorInputs
		nominal  float64
		expected float64
	}{
		{"no light", hiku7CorrectorInputs(0), 41.5, 0},
		{"zero nominal", hiku7CorrectorInputs(18.52), 0, 0},
		{"balance beyond nominal", hiku7CorrectorInputs(40), 41.5, 41.5},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := NewOpenCircuitCorrector(tt.in).Correct(tt.nominal)
			if v != tt.expected {
				t.Errorf("Correct = %v, expected %v", v, tt.expected)
			}
		})
	}
}
