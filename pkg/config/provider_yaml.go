package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cast"
	"gopkg.in/yaml.v3"
)

// YAMLProvider implements ConfigProvider for YAML configuration files
type YAMLProvider struct {
	filename string
	config   *ConfigData
}

// NewYAMLProvider creates a new YAML configuration provider
func NewYAMLProvider(filename string) *YAMLProvider {
	return &YAMLProvider{
		filename: filename,
	}
}

// LoadConfig loads the complete configuration from YAML file
func (y *YAMLProvider) LoadConfig() (*ConfigData, error) {
	cfgFile, err := os.ReadFile(y.filename)
	if err != nil {
		return nil, err
	}

	config, err := ParseYAML(cfgFile)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", y.filename, err)
	}

	y.config = config
	return config, nil
}

// ParseYAML decodes a YAML document into ConfigData with defaults applied
func ParseYAML(data []byte) (*ConfigData, error) {
	// Load into temporary struct with YAML tags
	var yamlConfig struct {
		Module    ModuleYAML    `yaml:"module"`
		Site      SiteYAML      `yaml:"site"`
		Readings  ReadingsYAML  `yaml:"readings"`
		REST      RESTYAML      `yaml:"rest"`
		Optimizer OptimizerYAML `yaml:"optimizer"`
	}

	if err := yaml.Unmarshal(data, &yamlConfig); err != nil {
		return nil, err
	}

	module, err := yamlConfig.Module.convert()
	if err != nil {
		return nil, fmt.Errorf("module: %w", err)
	}

	config := &ConfigData{
		Module: module,
		Site: SiteData{
			Latitude:       yamlConfig.Site.Latitude,
			Longitude:      yamlConfig.Site.Longitude,
			Altitude:       yamlConfig.Site.Altitude,
			Meridian:       yamlConfig.Site.Meridian,
			DaylightSaving: yamlConfig.Site.DaylightSaving,
			Tilt:           yamlConfig.Site.Tilt,
			Azimuth:        yamlConfig.Site.Azimuth,
		},
		Readings: ReadingsData{
			CSV:         yamlConfig.Readings.CSV,
			SQLite:      yamlConfig.Readings.SQLite,
			TimescaleDB: yamlConfig.Readings.TimescaleDB,
		},
		REST: RESTServerData{
			Cert:       yamlConfig.REST.Cert,
			Key:        yamlConfig.REST.Key,
			Port:       yamlConfig.REST.Port,
			ListenAddr: yamlConfig.REST.ListenAddr,
		},
		Optimizer: OptimizerData{
			TiltStep:    yamlConfig.Optimizer.TiltStep,
			AzimuthStep: yamlConfig.Optimizer.AzimuthStep,
			Workers:     yamlConfig.Optimizer.Workers,
		},
	}
	config.applyDefaults()

	return config, nil
}

// IsReadOnly returns true since YAML files are read-only through this interface
func (y *YAMLProvider) IsReadOnly() bool {
	return true
}

// Close is a no-op for YAML provider
func (y *YAMLProvider) Close() error {
	return nil
}

// ModuleYAML mirrors ModuleData. Numeric fields are left untyped so that
// datasheet values can be written as numbers or as strings with a decimal
// comma.
type ModuleYAML struct {
	Model                                string `yaml:"model,omitempty"`
	ShortCircuitCurrent                  any    `yaml:"short_circuit_current,omitempty"`
	OpenCircuitVoltage                   any    `yaml:"open_circuit_voltage,omitempty"`
	CellsInSeries                        any    `yaml:"cells_in_series,omitempty"`
	TemperatureVoltageCoefficient        any    `yaml:"temperature_voltage_coefficient,omitempty"`
	TemperatureCurrentCoefficient        any    `yaml:"temperature_current_coefficient,omitempty"`
	TemperatureCurrentCoefficientPercent any    `yaml:"temperature_current_coefficient_percent,omitempty"`
	SeriesResistance                     any    `yaml:"series_resistance,omitempty"`
	ShuntResistance                      any    `yaml:"shunt_resistance,omitempty"`
	DiodeQualityFactor                   any    `yaml:"diode_quality_factor,omitempty"`
	VoltageDecimalDigits                 any    `yaml:"voltage_decimal_digits,omitempty"`
}

type SiteYAML struct {
	Latitude       float64 `yaml:"latitude"`
	Longitude      float64 `yaml:"longitude"`
	Altitude       float64 `yaml:"altitude"`
	Meridian       float64 `yaml:"meridian"`
	DaylightSaving float64 `yaml:"daylight_saving,omitempty"`
	Tilt           float64 `yaml:"tilt"`
	Azimuth        float64 `yaml:"azimuth"`
}

type ReadingsYAML struct {
	CSV         string `yaml:"csv,omitempty"`
	SQLite      string `yaml:"sqlite,omitempty"`
	TimescaleDB string `yaml:"timescaledb,omitempty"`
}

type RESTYAML struct {
	Cert       string `yaml:"cert,omitempty"`
	Key        string `yaml:"key,omitempty"`
	Port       int    `yaml:"port,omitempty"`
	ListenAddr string `yaml:"listen_addr,omitempty"`
}

type OptimizerYAML struct {
	TiltStep    float64 `yaml:"tilt_step,omitempty"`
	AzimuthStep float64 `yaml:"azimuth_step,omitempty"`
	Workers     int     `yaml:"workers,omitempty"`
}

func (m ModuleYAML) convert() (ModuleData, error) {
	out := ModuleData{Model: m.Model}

	var err error
	if out.ShortCircuitCurrent, err = number("short_circuit_current", m.ShortCircuitCurrent); err != nil {
		return out, err
	}
	if out.OpenCircuitVoltage, err = number("open_circuit_voltage", m.OpenCircuitVoltage); err != nil {
		return out, err
	}
	if m.CellsInSeries != nil {
		if out.CellsInSeries, err = cast.ToIntE(m.CellsInSeries); err != nil {
			return out, fmt.Errorf("cells_in_series: %w", err)
		}
	}

	optional := []struct {
		field string
		raw   any
		dst   **float64
	}{
		{"temperature_voltage_coefficient", m.TemperatureVoltageCoefficient, &out.TemperatureVoltageCoefficient},
		{"temperature_current_coefficient", m.TemperatureCurrentCoefficient, &out.TemperatureCurrentCoefficient},
		{"series_resistance", m.SeriesResistance, &out.SeriesResistance},
		{"shunt_resistance", m.ShuntResistance, &out.ShuntResistance},
		{"diode_quality_factor", m.DiodeQualityFactor, &out.DiodeQualityFactor},
	}
	for _, o := range optional {
		if o.raw == nil {
			continue
		}
		v, err := number(o.field, o.raw)
		if err != nil {
			return out, err
		}
		*o.dst = &v
	}

	// Datasheets usually quote the current coefficient in %/°C of Isc.
	if m.TemperatureCurrentCoefficientPercent != nil {
		if out.TemperatureCurrentCoefficient != nil {
			return out, fmt.Errorf("temperature_current_coefficient and temperature_current_coefficient_percent are mutually exclusive")
		}
		pct, err := number("temperature_current_coefficient_percent", m.TemperatureCurrentCoefficientPercent)
		if err != nil {
			return out, err
		}
		ki := pct / 100 * out.ShortCircuitCurrent
		out.TemperatureCurrentCoefficient = &ki
	}

	if m.VoltageDecimalDigits != nil {
		d, err := cast.ToIntE(m.VoltageDecimalDigits)
		if err != nil {
			return out, fmt.Errorf("voltage_decimal_digits: %w", err)
		}
		out.VoltageDecimalDigits = &d
	}

	return out, nil
}

// number decodes a YAML scalar that may be a number or a numeric string
func number(field string, raw any) (float64, error) {
	if raw == nil {
		return 0, nil
	}
	if s, ok := raw.(string); ok {
		raw = strings.ReplaceAll(strings.TrimSpace(s), ",", ".")
	}
	v, err := cast.ToFloat64E(raw)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", field, err)
	}
	return v, nil
}
