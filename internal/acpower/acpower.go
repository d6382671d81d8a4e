// Package acpower analyses the power triangle of a sinusoidal AC supply and
// the voltage a PV inverter sees behind a series inductor.
package acpower

import (
	"errors"
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// Defaults applied to zero-valued Input fields.
const (
	DefaultFrequency  = 60.0  // Hz
	DefaultInductance = 50e-3 // H
	DefaultSamples    = 200
)

// MaxSamples bounds Input.Samples.
const MaxSamples = 100000

// ErrInvalidInput is returned when the analysis cannot be run.
var ErrInvalidInput = errors.New("invalid AC power input")

// Input describes the supply. The analysis covers two periods.
type Input struct {
	MeanPower    float64 `json:"mean_power"`    // W
	RMSVoltage   float64 `json:"rms_voltage"`   // V
	PhaseDegrees float64 `json:"phase_degrees"` // current lead over voltage
	Frequency    float64 `json:"frequency,omitempty"`
	Inductance   float64 `json:"inductance,omitempty"`
	Samples      int     `json:"samples,omitempty"`
}

// Result carries the sampled waveforms and their summary values.
type Result struct {
	Time      []float64 `json:"time"` // s
	Voltage   []float64 `json:"voltage"`
	Current   []float64 `json:"current"`
	Power     []float64 `json:"power"`
	Active    []float64 `json:"active"`
	Reactive  []float64 `json:"reactive"`
	PVVoltage []float64 `json:"pv_voltage"`
	PVPower   []float64 `json:"pv_power"`

	PowerMax     float64 `json:"power_max"`
	PowerMean    float64 `json:"power_mean"`
	PowerMin     float64 `json:"power_min"`
	ActiveMean   float64 `json:"active_mean"`
	ReactiveMean float64 `json:"reactive_mean"`

	VoltageAmplitude float64 `json:"voltage_amplitude"`
	CurrentAmplitude float64 `json:"current_amplitude"`

	PVPowerMax         float64 `json:"pv_power_max"`
	PVPowerMean        float64 `json:"pv_power_mean"`
	PVPowerMin         float64 `json:"pv_power_min"`
	PVVoltageAmplitude float64 `json:"pv_voltage_amplitude"`
	PVCurrentAmplitude float64 `json:"pv_current_amplitude"`
}

func (in *Input) applyDefaults() {
	if in.Frequency == 0 {
		in.Frequency = DefaultFrequency
	}
	if in.Inductance == 0 {
		in.Inductance = DefaultInductance
	}
	if in.Samples == 0 {
		in.Samples = DefaultSamples
	}
}

func (in Input) validate() error {
	for name, v := range map[string]float64{
		"mean_power":    in.MeanPower,
		"rms_voltage":   in.RMSVoltage,
		"phase_degrees": in.PhaseDegrees,
		"frequency":     in.Frequency,
		"inductance":    in.Inductance,
	} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return fmt.Errorf("%w: %s must be finite", ErrInvalidInput, name)
		}
	}
	switch {
	case in.RMSVoltage <= 0:
		return fmt.Errorf("%w: rms_voltage must be positive", ErrInvalidInput)
	case in.Frequency <= 0:
		return fmt.Errorf("%w: frequency must be positive", ErrInvalidInput)
	case in.Inductance < 0:
		return fmt.Errorf("%w: inductance must not be negative", ErrInvalidInput)
	case in.Samples < 2:
		return fmt.Errorf("%w: at least 2 samples are required", ErrInvalidInput)
	case in.Samples > MaxSamples:
		return fmt.Errorf("%w: at most %d samples are allowed", ErrInvalidInput, MaxSamples)
	}
	return nil
}

// Analyze samples voltage, current and power over two periods of the supply.
// The current peak is chosen so that the mean power at unity power factor is
// MeanPower. The PV side adds the inductor drop -max(i)·ωL·sin(ωt) to the
// supply voltage and carries the reversed current.
func Analyze(in Input) (*Result, error) {
	in.applyDefaults()
	if err := in.validate(); err != nil {
		return nil, err
	}

	n := in.Samples
	w := 2 * math.Pi * in.Frequency
	vp := in.RMSVoltage * math.Sqrt2
	ip := 2 * in.MeanPower / vp
	ph := in.PhaseDegrees * math.Pi / 180
	half := vp * ip / 2

	r := &Result{
		Time:      floats.Span(make([]float64, n), 0, 2/in.Frequency),
		Voltage:   make([]float64, n),
		Current:   make([]float64, n),
		Power:     make([]float64, n),
		Active:    make([]float64, n),
		Reactive:  make([]float64, n),
		PVVoltage: make([]float64, n),
		PVPower:   make([]float64, n),
	}
	for k, t := range r.Time {
		r.Voltage[k] = vp * math.Cos(w*t)
		r.Current[k] = ip * math.Cos(w*t+ph)
		r.Power[k] = r.Voltage[k] * r.Current[k]
		r.Active[k] = half*math.Cos(2*w*t)*math.Cos(ph) + half*math.Cos(ph)
		r.Reactive[k] = -half * math.Sin(2*w*t) * math.Sin(ph)
	}

	drop := floats.Max(r.Current) * w * in.Inductance
	for k, t := range r.Time {
		r.PVVoltage[k] = r.Voltage[k] - drop*math.Sin(w*t)
		r.PVPower[k] = r.PVVoltage[k] * -r.Current[k]
	}

	r.PowerMax, r.PowerMean, r.PowerMin = floats.Max(r.Power), stat.Mean(r.Power, nil), floats.Min(r.Power)
	r.ActiveMean = stat.Mean(r.Active, nil)
	r.ReactiveMean = stat.Mean(r.Reactive, nil)
	r.VoltageAmplitude = floats.Norm(r.Voltage, math.Inf(1))
	r.CurrentAmplitude = floats.Norm(r.Current, math.Inf(1))

	r.PVPowerMax, r.PVPowerMean, r.PVPowerMin = floats.Max(r.PVPower), stat.Mean(r.PVPower, nil), floats.Min(r.PVPower)
	r.PVVoltageAmplitude = floats.Norm(r.PVVoltage, math.Inf(1))
	r.PVCurrentAmplitude = r.CurrentAmplitude

	return r, nil
}
