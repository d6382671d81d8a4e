package sizing

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
)

// ErrInvalidInput is returned for negative or out-of-range payback inputs.
var ErrInvalidInput = errors.New("invalid payback input")

// daysPerMonth is the billing month used by the payback estimate.
const daysPerMonth = 30

// MonthlyGeneration returns the energy in kWh a system of systemPowerKW
// produces in a month with sunHoursPerDay peak-sun hours at the given
// efficiency (0..1).
func MonthlyGeneration(systemPowerKW, sunHoursPerDay, efficiency float64) float64 {
	return systemPowerKW * sunHoursPerDay * efficiency * daysPerMonth
}

// MonthlyBill is the bill for consumption kWh without panels.
func MonthlyBill(consumption, tariff float64) float64 {
	return consumption * tariff
}

// MonthlyBillWithPanels is the bill after subtracting generation. It goes
// negative when generation exceeds consumption.
func MonthlyBillWithPanels(generation, consumption, tariff float64) float64 {
	return (consumption - generation) * tariff
}

// Payback returns the number of months needed to recover initialCost, or
// +Inf when there are no savings.
func Payback(initialCost, monthlySavings float64) float64 {
	if monthlySavings <= 0 {
		return math.Inf(1)
	}
	return initialCost / monthlySavings
}

// PaybackInput describes a proposed system and the household it serves.
type PaybackInput struct {
	InitialCost        float64 `json:"initial_cost"`
	SystemPowerKW      float64 `json:"system_power_kw"`
	SunHoursPerDay     float64 `json:"sun_hours_per_day"`
	EfficiencyPercent  float64 `json:"efficiency_percent"`
	Tariff             float64 `json:"tariff"`              // per kWh
	MonthlyConsumption float64 `json:"monthly_consumption"` // kWh
}

// Months is a duration in months that encodes +Inf as JSON null.
type Months float64

func (m Months) MarshalJSON() ([]byte, error) {
	if math.IsInf(float64(m), 0) || math.IsNaN(float64(m)) {
		return []byte("null"), nil
	}
	return json.Marshal(float64(m))
}

// PaybackResult is the outcome of EvaluatePayback.
type PaybackResult struct {
	MonthlyGeneration float64 `json:"monthly_generation"` // kWh
	BillWithoutPanels float64 `json:"bill_without_panels"`
	BillWithPanels    float64 `json:"bill_with_panels"`
	MonthlySavings    float64 `json:"monthly_savings"`
	PaybackMonths     Months  `json:"payback_months"`
}

// EvaluatePayback runs the monthly generation, bill and payback estimate.
// Savings are the difference between the two bills, so surplus generation
// counts at the full tariff.
func EvaluatePayback(in PaybackInput) (PaybackResult, error) {
	fields := []struct {
		name  string
		value float64
	}{
		{"initial_cost", in.InitialCost},
		{"system_power_kw", in.SystemPowerKW},
		{"sun_hours_per_day", in.SunHoursPerDay},
		{"efficiency_percent", in.EfficiencyPercent},
		{"tariff", in.Tariff},
		{"monthly_consumption", in.MonthlyConsumption},
	}
	for _, f := range fields {
		if math.IsNaN(f.value) || math.IsInf(f.value, 0) || f.value < 0 {
			return PaybackResult{}, fmt.Errorf("%w: %s must be a finite non-negative number", ErrInvalidInput, f.name)
		}
	}
	if in.SunHoursPerDay > 24 {
		return PaybackResult{}, fmt.Errorf("%w: sun_hours_per_day must not exceed 24", ErrInvalidInput)
	}
	if in.EfficiencyPercent > 100 {
		return PaybackResult{}, fmt.Errorf("%w: efficiency_percent must not exceed 100", ErrInvalidInput)
	}

	var r PaybackResult
	r.MonthlyGeneration = MonthlyGeneration(in.SystemPowerKW, in.SunHoursPerDay, in.EfficiencyPercent/100)
	r.BillWithoutPanels = MonthlyBill(in.MonthlyConsumption, in.Tariff)
	r.BillWithPanels = MonthlyBillWithPanels(r.MonthlyGeneration, in.MonthlyConsumption, in.Tariff)
	r.MonthlySavings = r.BillWithoutPanels - r.BillWithPanels
	r.PaybackMonths = Months(Payback(in.InitialCost, r.MonthlySavings))
	return r, nil
}
