package config

import "runtime"

// ConfigProvider defines the interface for configuration data sources
type ConfigProvider interface {
	// Load complete configuration
	LoadConfig() (*ConfigData, error)

	IsReadOnly() bool
	Close() error
}

// ConfigData represents the complete configuration structure
type ConfigData struct {
	Module    ModuleData     `json:"module"`
	Site      SiteData       `json:"site"`
	Readings  ReadingsData   `json:"readings"`
	REST      RESTServerData `json:"rest"`
	Optimizer OptimizerData  `json:"optimizer"`
}

// ModuleData holds the datasheet of the PV module being sized. Optional
// coefficients are nil when not configured so the solver's own defaults
// apply.
type ModuleData struct {
	Model                         string   `json:"model,omitempty"`
	ShortCircuitCurrent           float64  `json:"short_circuit_current"`
	OpenCircuitVoltage            float64  `json:"open_circuit_voltage"`
	CellsInSeries                 int      `json:"cells_in_series"`
	TemperatureVoltageCoefficient *float64 `json:"temperature_voltage_coefficient,omitempty"`
	TemperatureCurrentCoefficient *float64 `json:"temperature_current_coefficient,omitempty"`
	SeriesResistance              *float64 `json:"series_resistance,omitempty"`
	ShuntResistance               *float64 `json:"shunt_resistance,omitempty"`
	DiodeQualityFactor            *float64 `json:"diode_quality_factor,omitempty"`
	VoltageDecimalDigits          *int     `json:"voltage_decimal_digits,omitempty"`
}

// IsZero reports whether no module was configured.
func (m ModuleData) IsZero() bool {
	return m.ShortCircuitCurrent == 0 && m.OpenCircuitVoltage == 0 && m.CellsInSeries == 0
}

// SiteData holds the installation location and the fixed panel orientation
type SiteData struct {
	Latitude       float64 `json:"latitude"`
	Longitude      float64 `json:"longitude"`
	Altitude       float64 `json:"altitude"`
	Meridian       float64 `json:"meridian"`
	DaylightSaving float64 `json:"daylight_saving,omitempty"`
	Tilt           float64 `json:"tilt"`
	Azimuth        float64 `json:"azimuth"`
}

// ReadingsData selects where weather and demand readings come from. The
// first non-empty backend wins in the order TimescaleDB, SQLite, CSV.
type ReadingsData struct {
	CSV         string `json:"csv,omitempty"`
	SQLite      string `json:"sqlite,omitempty"`
	TimescaleDB string `json:"timescaledb,omitempty"`
}

type RESTServerData struct {
	Cert       string `json:"cert,omitempty"`
	Key        string `json:"key,omitempty"`
	Port       int    `json:"port,omitempty"`
	ListenAddr string `json:"listen_addr,omitempty"`
}

type OptimizerData struct {
	TiltStep    float64 `json:"tilt_step,omitempty"`
	AzimuthStep float64 `json:"azimuth_step,omitempty"`
	Workers     int     `json:"workers,omitempty"`
}

const (
	DefaultListenAddr = "0.0.0.0"
	DefaultPort       = 8080
)

// applyDefaults fills in unset values shared by every provider
func (c *ConfigData) applyDefaults() {
	if c.REST.ListenAddr == "" {
		c.REST.ListenAddr = DefaultListenAddr
	}
	if c.REST.Port == 0 {
		c.REST.Port = DefaultPort
	}
	if c.Optimizer.TiltStep <= 0 {
		c.Optimizer.TiltStep = 1
	}
	if c.Optimizer.AzimuthStep <= 0 {
		c.Optimizer.AzimuthStep = 1
	}
	if c.Optimizer.Workers <= 0 {
		c.Optimizer.Workers = runtime.GOMAXPROCS(0)
	}
}
