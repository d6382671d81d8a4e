package sizing

import (
	"github.com/chrissnell/pvsizer/pkg/config"
	"github.com/chrissnell/pvsizer/pkg/singlediode"
)

// HiKu7Model names the preset returned by HiKu7.
const HiKu7Model = "HiKu7-Mono-PERC-605W"

// HiKu7 returns the Canadian Solar HiKu7 Mono PERC 605 W module. Series and
// shunt resistance and the ideality factor are fitted estimates.
func HiKu7() *singlediode.ModuleParameters {
	const isc = 18.52
	m, err := singlediode.NewModuleParameters(isc, 41.5, 60,
		singlediode.WithVoltageDecimalDigits(1),
		singlediode.WithTemperatureCurrentCoefficient(0.05/100*isc),
		singlediode.WithSeriesResistance(0.167),
		singlediode.WithShuntResistance(9.619),
		singlediode.WithDiodeQualityFactor(0.85),
	)
	if err != nil {
		panic("sizing: invalid HiKu7 preset: " + err.Error())
	}
	return m
}

// ModuleFromConfig builds module parameters from configuration. An empty
// module section selects the HiKu7 preset.
func ModuleFromConfig(cfg config.ModuleData) (*singlediode.ModuleParameters, string, error) {
	if cfg.IsZero() {
		return HiKu7(), HiKu7Model, nil
	}

	var opts []singlediode.ModuleOption
	if cfg.VoltageDecimalDigits != nil {
		opts = append(opts, singlediode.WithVoltageDecimalDigits(*cfg.VoltageDecimalDigits))
	}
	if cfg.TemperatureVoltageCoefficient != nil {
		opts = append(opts, singlediode.WithTemperatureVoltageCoefficient(*cfg.TemperatureVoltageCoefficient))
	}
	if cfg.TemperatureCurrentCoefficient != nil {
		opts = append(opts, singlediode.WithTemperatureCurrentCoefficient(*cfg.TemperatureCurrentCoefficient))
	}
	if cfg.SeriesResistance != nil {
		opts = append(opts, singlediode.WithSeriesResistance(*cfg.SeriesResistance))
	}
	if cfg.ShuntResistance != nil {
		opts = append(opts, singlediode.WithShuntResistance(*cfg.ShuntResistance))
	}
	if cfg.DiodeQualityFactor != nil {
		opts = append(opts, singlediode.WithDiodeQualityFactor(*cfg.DiodeQualityFactor))
	}

	m, err := singlediode.NewModuleParameters(cfg.ShortCircuitCurrent, cfg.OpenCircuitVoltage, cfg.CellsInSeries, opts...)
	if err != nil {
		return nil, "", err
	}

	model := cfg.Model
	if model == "" {
		model = "module"
	}
	return m, model, nil
}
