package main

import (
	"flag"
	"fmt"
	"os"
	"time"

	"gonum.org/v1/plot/vg"

	"github.com/chrissnell/pvsizer/internal/report"
	"github.com/chrissnell/pvsizer/internal/sizing"
	"github.com/chrissnell/pvsizer/pkg/singlediode"
)

func main() {
	preset := sizing.HiKu7()

	var (
		model       = flag.String("model", sizing.HiKu7Model, "Module name used in output file names")
		isc         = flag.String("isc", fmt.Sprint(preset.ShortCircuitCurrent()), "Short-circuit current at STC [A]")
		voc         = flag.String("voc", fmt.Sprint(preset.OpenCircuitVoltage()), "Open-circuit voltage at STC [V]")
		cells       = flag.Int("cells", preset.CellsInSeries(), "Cells in series")
		kv          = flag.Float64("kv", preset.TemperatureVoltageCoefficient(), "Voc temperature coefficient [V/°C]")
		ki          = flag.Float64("ki", preset.TemperatureCurrentCoefficient(), "Isc temperature coefficient [A/°C]")
		rs          = flag.Float64("rs", preset.SeriesResistance(), "Series resistance [ohm]")
		rsh         = flag.Float64("rsh", preset.ShuntResistance(), "Shunt resistance [ohm]")
		n           = flag.Float64("n", preset.DiodeQualityFactor(), "Diode ideality factor")
		digits      = flag.Int("digits", preset.VoltageDecimalDigits(), "Voltage decimal digits")
		temperature = flag.Float64("temperature", 25, "Cell temperature [°C]")
		irradiance  = flag.Float64("irradiance", singlediode.NominalIrradiance, "Irradiance on the module [W/m²]")
		csvOut      = flag.String("csv", "", "Write the curve as CSV; a directory gets a generated file name")
		pngOut      = flag.String("png", "", "Render the I-V and P-V curves as PNG; a directory gets a generated file name")
	)
	flag.Parse()

	params, err := singlediode.NewModuleParameters(*isc, *voc, *cells,
		singlediode.WithTemperatureVoltageCoefficient(*kv),
		singlediode.WithTemperatureCurrentCoefficient(*ki),
		singlediode.WithSeriesResistance(*rs),
		singlediode.WithShuntResistance(*rsh),
		singlediode.WithDiodeQualityFactor(*n),
		singlediode.WithVoltageDecimalDigits(*digits),
	)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	curve, err := singlediode.Calculate(params, singlediode.CelsiusToKelvin(*temperature), *irradiance)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	_, vmp, imp, pmax := curve.MaxPowerPoint()

	fmt.Printf("%s at %.1f°C, %.0f W/m²\n", *model, *temperature, *irradiance)
	fmt.Printf("  Voc:     %.*f V\n", params.VoltageDecimalDigits(), curve.OpenCircuitVoltage)
	fmt.Printf("  Isc:     %.3f A\n", curve.ShortCircuitCurrent)
	fmt.Printf("  Pmax:    %.2f W\n", pmax)
	fmt.Printf("  Vmp:     %.*f V\n", params.VoltageDecimalDigits(), vmp)
	fmt.Printf("  Imp:     %.3f A\n", imp)
	fmt.Printf("  Samples: %d\n", curve.Len())

	now := time.Now()
	if *csvOut != "" {
		path := outputPath(*csvOut, *model, now, "csv")
		if err := writeFile(path, func(f *os.File) error { return report.WriteCurveCSV(f, curve) }); err != nil {
			fmt.Fprintf(os.Stderr, "Error writing CSV: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("  CSV:     %s\n", path)
	}
	if *pngOut != "" {
		path := outputPath(*pngOut, *model, now, "png")
		if err := writeFile(path, func(f *os.File) error { return report.RenderCurvePNG(f, curve, 6*vg.Inch, 8*vg.Inch) }); err != nil {
			fmt.Fprintf(os.Stderr, "Error writing PNG: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("  PNG:     %s\n", path)
	}
}

// outputPath appends a generated file name when target is a directory
func outputPath(target, model string, now time.Time, ext string) string {
	if fi, err := os.Stat(target); err == nil && fi.IsDir() {
		return target + string(os.PathSeparator) + report.CurveFileName(model, now, ext)
	}
	return target
}

func writeFile(path string, write func(*os.File) error) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := write(f); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
