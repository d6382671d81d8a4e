package report

import (
	"bytes"
	"errors"
	"image/png"
	"strings"
	"testing"
	"time"

	"gonum.org/v1/plot/vg"

	"github.com/chrissnell/pvsizer/pkg/singlediode"
)

func testCurve() *singlediode.Curve {
	return &singlediode.Curve{
		Voltages:            []float64{0, 0.5, 1},
		Currents:            []float64{2, 1.5, 0},
		Powers:              []float64{0, 0.75, 0},
		ShortCircuitCurrent: 2,
		OpenCircuitVoltage:  1,
	}
}

func TestWriteCurveCSV(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteCurveCSV(&buf, testCurve()); err != nil {
		t.Fatalf("WriteCurveCSV: %v", err)
	}

	expected := "voltage,current,power\n0,2,0\n0.5,1.5,0.75\n1,0,0\n"
	if got := buf.String(); got != expected {
		t.Errorf("CSV = %q, expected %q", got, expected)
	}

	if err := WriteCurveCSV(&buf, &singlediode.Curve{}); !errors.Is(err, ErrEmptyCurve) {
		t.Errorf("empty curve error = %v, expected ErrEmptyCurve", err)
	}
}

func TestCurveFileName(t *testing.T) {
	now := time.Date(2024, 3, 9, 7, 5, 3, 0, time.UTC)

	tests := []struct {
		model, ext, expected string
	}{
		{"HiKu7", "csv", "HiKu7_20240309070503.csv"},
		{"HiKu7 Mono/PERC", ".png", "HiKu7-Mono-PERC_20240309070503.png"},
		{"", "csv", "curve_20240309070503.csv"},
	}

	for _, tt := range tests {
		if got := CurveFileName(tt.model, now, tt.ext); got != tt.expected {
			t.Errorf("CurveFileName(%q, %q) = %q, expected %q", tt.model, tt.ext, got, tt.expected)
		}
	}
}

func TestRenderCurvePNG(t *testing.T) {
	params, err := singlediode.NewModuleParameters(18.52, 41.5, 60)
	if err != nil {
		t.Fatalf("NewModuleParameters: %v", err)
	}
	curve, err := singlediode.Calculate(params, 298.15, 1000)
	if err != nil {
		t.Fatalf("Calculate: %v", err)
	}

	for name, c := range map[string]*singlediode.Curve{"solved": curve, "small": testCurve()} {
		t.Run(name, func(t *testing.T) {
			var buf bytes.Buffer
			if err := RenderCurvePNG(&buf, c, 6*vg.Inch, 8*vg.Inch); err != nil {
				t.Fatalf("RenderCurvePNG: %v", err)
			}
			if !strings.HasPrefix(buf.String(), "\x89PNG") {
				t.Fatal("output is not a PNG")
			}
			cfg, err := png.DecodeConfig(&buf)
			if err != nil {
				t.Fatalf("DecodeConfig: %v", err)
			}
			if cfg.Height <= cfg.Width {
				t.Errorf("image is %dx%d, expected a portrait layout", cfg.Width, cfg.Height)
			}
		})
	}

	if err := RenderCurvePNG(&bytes.Buffer{}, nil, vg.Inch, vg.Inch); !errors.Is(err, ErrEmptyCurve) {
		t.Errorf("nil curve error = %v, expected ErrEmptyCurve", err)
	}
}
