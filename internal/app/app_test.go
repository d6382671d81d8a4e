package app

import (
	"os"
	"path/filepath"
	"testing"

	"go.uber.org/zap"

	"github.com/chrissnell/pvsizer/internal/readings"
	"github.com/chrissnell/pvsizer/internal/sizing"
	"github.com/chrissnell/pvsizer/pkg/config"
)

func writeConfig(t *testing.T, body string) config.ConfigProvider {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	return config.NewYAMLProvider(path)
}

func TestDependenciesDefaults(t *testing.T) {
	a := New(writeConfig(t, "site:\n  latitude: -23.5\n  longitude: -46.6\n  meridian: -45\n  tilt: 30\n  azimuth: 17\n"), zap.NewNop().Sugar())

	cfg, deps, err := a.Dependencies()
	if err != nil {
		t.Fatalf("Dependencies: %v", err)
	}
	if deps.Model != sizing.HiKu7Model {
		t.Errorf("Model = %q, expected the HiKu7 preset", deps.Model)
	}
	if deps.Readings != nil {
		t.Errorf("Readings = %T, expected nil without a readings section", deps.Readings)
	}
	if deps.Site.Latitude != -23.5 || deps.Orientation.Tilt != 30 || deps.Orientation.Azimuth != 17 {
		t.Errorf("site = %+v, orientation = %+v", deps.Site, deps.Orientation)
	}
	if cfg.REST.Port != config.DefaultPort || deps.Optimizer.TiltStep != 1 {
		t.Errorf("defaults not applied: port %d, tilt step %v", cfg.REST.Port, deps.Optimizer.TiltStep)
	}
}

func TestDependenciesCustomModuleAndReadings(t *testing.T) {
	db := filepath.Join(t.TempDir(), "readings.db")
	a := New(writeConfig(t, `
module:
  model: test-module
  short_circuit_current: "9,5"
  open_circuit_voltage: 37.2
  cells_in_series: 60
readings:
  sqlite: `+db+`
`), zap.NewNop().Sugar())

	_, deps, err := a.Dependencies()
	if err != nil {
		t.Fatalf("Dependencies: %v", err)
	}
	defer deps.Readings.Close()

	if deps.Model != "test-module" || deps.Solver.Parameters().ShortCircuitCurrent() != 9.5 {
		t.Errorf("module = %s with Isc %v", deps.Model, deps.Solver.Parameters().ShortCircuitCurrent())
	}
	if _, ok := deps.Readings.(*readings.SQLiteStore); !ok {
		t.Errorf("Readings = %T, expected *readings.SQLiteStore", deps.Readings)
	}
}

func TestDependenciesInvalidModule(t *testing.T) {
	a := New(writeConfig(t, "module:\n  short_circuit_current: 9.5\n  open_circuit_voltage: 37.2\n  cells_in_series: 0\n"), zap.NewNop().Sugar())
	if _, _, err := a.Dependencies(); err == nil {
		t.Error("expected an error for zero cells in series")
	}
}
