// Package plot renders simulation runs with gonum/plot.
package plot

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/plotutil"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"

	"example.com/fuzzy-hvac/core/sim"
)

const (
	width       = 8.5 * vg.Inch
	panelHeight = 3 * vg.Inch
)

func series(xs, ys []float64) plotter.XYs {
	data := make(plotter.XYs, len(xs))
	for i := range xs {
		data[i] = plotter.XY{X: xs[i], Y: ys[i]}
	}
	return data
}

func newPanel(title, ylabel string) *plot.Plot {
	p := plot.New()
	p.Title.Text = title
	p.X.Label.Text = "Time [min]"
	p.X.Label.Padding = vg.Points(5)
	p.Y.Label.Text = ylabel
	p.Y.Label.Padding = vg.Points(5)
	p.Legend.Top = true
	p.Add(plotter.NewGrid())
	return p
}

func addLine(p *plot.Plot, i int, label string, data plotter.XYs) error {
	line, err := plotter.NewLine(data)
	if err != nil {
		return err
	}
	line.Color = plotutil.Color(i)
	p.Add(line)
	p.Legend.Add(label, line)
	return nil
}

// Panels returns the temperature, power and error plots of runs.
func Panels(runs ...sim.Run) ([]*plot.Plot, error) {
	if len(runs) == 0 {
		return nil, fmt.Errorf("no runs to plot")
	}
	temp := newPanel("Temperature", "Temperature [°C]")
	power := newPanel("Control effort", "Power [%]")
	errp := newPanel("Error", "Error [°C]")
	for i, run := range runs {
		r := run.Result
		if r == nil || r.Len() == 0 {
			return nil, fmt.Errorf("run %q has no samples", run.Label)
		}
		if err := addLine(temp, i, run.Label, series(r.Time, r.Temperature)); err != nil {
			return nil, err
		}
		if err := addLine(power, i, run.Label, series(r.Time, r.Power)); err != nil {
			return nil, err
		}
		if err := addLine(errp, i, run.Label, series(r.Time, r.Error)); err != nil {
			return nil, err
		}
	}

	r := runs[0].Result
	sp, err := plotter.NewLine(plotter.XYs{
		{X: r.Time[0], Y: r.Setpoint},
		{X: r.Time[r.Len()-1], Y: r.Setpoint},
	})
	if err != nil {
		return nil, err
	}
	sp.Dashes = []vg.Length{vg.Points(4), vg.Points(2)}
	temp.Add(sp)
	temp.Legend.Add("Setpoint", sp)

	return []*plot.Plot{temp, power, errp}, nil
}

// WriteComparison stacks the panels of runs into one figure. The format is
// chosen by the file extension (pdf, png, svg, ...).
func WriteComparison(path string, runs ...sim.Run) error {
	ps, err := Panels(runs...)
	if err != nil {
		return err
	}
	format := strings.TrimPrefix(strings.ToLower(filepath.Ext(path)), ".")
	if format == "" {
		return fmt.Errorf("no file extension in %q", path)
	}
	c, err := draw.NewFormattedCanvas(width, vg.Length(len(ps))*panelHeight, format)
	if err != nil {
		return err
	}
	dc := draw.New(c)
	dc = draw.Crop(dc, 1*vg.Millimeter, -1*vg.Millimeter, 1*vg.Millimeter, -1*vg.Millimeter)

	tiles := draw.Tiles{
		Rows:      len(ps),
		Cols:      1,
		PadY:      vg.Millimeter,
		PadTop:    vg.Millimeter,
		PadBottom: vg.Millimeter,
	}
	grid := make([][]*plot.Plot, len(ps))
	for i, p := range ps {
		grid[i] = []*plot.Plot{p}
	}
	canvases := plot.Align(grid, tiles, dc)
	for i, p := range ps {
		p.Draw(canvases[i][0])
	}

	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	_, err = c.WriteTo(f)
	if err != nil {
		return err
	}
	return f.Close()
}
