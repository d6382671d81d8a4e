package report

import (
	"fmt"
	"image/color"
	"io"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
	"gonum.org/v1/plot/vg/vgimg"

	"github.com/chrissnell/pvsizer/pkg/singlediode"
)

var (
	currentColor = color.RGBA{R: 31, G: 119, B: 180, A: 255}
	powerColor   = color.RGBA{R: 214, G: 39, B: 40, A: 255}
	markerColor  = color.RGBA{A: 255}
)

// RenderCurvePNG draws the I-V curve above the P-V curve and writes them as
// one PNG. The maximum power point is marked on the P-V panel.
func RenderCurvePNG(w io.Writer, c *singlediode.Curve, width, height vg.Length) error {
	if c == nil || c.Len() == 0 {
		return ErrEmptyCurve
	}

	iv := make(plotter.XYs, c.Len())
	pv := make(plotter.XYs, c.Len())
	for i := range iv {
		iv[i].X, iv[i].Y = c.Voltages[i], c.Currents[i]
		pv[i].X, pv[i].Y = c.Voltages[i], c.Powers[i]
	}

	ivPlot, err := linePlot("I-V curve", "Current [A]", iv, currentColor)
	if err != nil {
		return err
	}
	pvPlot, err := linePlot("P-V curve", "Power [W]", pv, powerColor)
	if err != nil {
		return err
	}

	_, vmp, _, pmax := c.MaxPowerPoint()
	marker, err := plotter.NewScatter(plotter.XYs{{X: vmp, Y: pmax}})
	if err != nil {
		return fmt.Errorf("failed to build max power marker: %w", err)
	}
	marker.GlyphStyle.Shape = draw.CircleGlyph{}
	marker.GlyphStyle.Radius = vg.Points(4)
	marker.GlyphStyle.Color = markerColor
	pvPlot.Add(marker)
	pvPlot.Legend.Add(fmt.Sprintf("Pmax = %.2f W", pmax), marker)
	pvPlot.Legend.Top = true

	img := vgimg.New(width, height)
	dc := draw.New(img)
	plots := [][]*plot.Plot{{ivPlot}, {pvPlot}}
	canvases := plot.Align(plots, draw.Tiles{Rows: 2, Cols: 1}, dc)
	for i := range plots {
		plots[i][0].Draw(canvases[i][0])
	}

	png := vgimg.PngCanvas{Canvas: img}
	if _, err := png.WriteTo(w); err != nil {
		return fmt.Errorf("failed to write curve PNG: %w", err)
	}
	return nil
}

func linePlot(title, yLabel string, pts plotter.XYs, c color.Color) (*plot.Plot, error) {
	p := plot.New()
	p.Title.Text = title
	p.X.Label.Text = "Voltage [V]"
	p.Y.Label.Text = yLabel
	p.Add(plotter.NewGrid())

	line, err := plotter.NewLine(pts)
	if err != nil {
		return nil, fmt.Errorf("failed to build %s: %w", title, err)
	}
	line.LineStyle.Color = c
	line.LineStyle.Width = vg.Points(1.5)
	p.Add(line)
	return p, nil
}
