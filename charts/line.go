// charts/line.go
package charts

import (
	"fmt"
	"image/color"

	"github.com/gewnthar/co2scope/analysis"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/plotutil"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
)

// LineOptions controls a per-country line chart. Zero axis bounds are computed from data.
type LineOptions struct {
	Title  string
	YLabel string

	XMin, XMax float64
	YMin, YMax float64

	LogY    bool
	Markers bool

	// Reference draws dashed horizontal guide lines at these values.
	Reference []float64
}

// LineChart draws one line per series, labelled with the country name at its last point.
// Gaps (nil values) split a line into segments. Empty series are skipped.
func LineChart(series []analysis.CountrySeries, opts LineOptions) (*plot.Plot, error) {
	p := plot.New()
	p.Title.Text = opts.Title
	p.Title.TextStyle.Font.Size = vg.Points(14)
	p.X.Label.Text = "Year"
	p.Y.Label.Text = opts.YLabel
	if opts.LogY {
		p.Y.Scale = plot.LogScale{}
		p.Y.Tick.Marker = plot.LogTicks{Prec: -1}
	}

	var labelXYs []plotter.XY
	var labels []string
	for i, s := range series {
		c := plotutil.Color(i)
		segs := segments(s, opts.LogY)
		if len(segs) == 0 {
			continue
		}
		for j, seg := range segs {
			line, points, err := plotter.NewLinePoints(seg)
			if err != nil {
				return nil, fmt.Errorf("failed to build line for %s: %w", s.CountryCode, err)
			}
			line.Color = c
			line.Width = vg.Points(1.5)
			p.Add(line)
			if opts.Markers {
				points.Shape = draw.CircleGlyph{}
				points.Color = c
				p.Add(points)
			}
			if j == 0 {
				p.Legend.Add(s.CountryName, line)
			}
		}
		tail := segs[len(segs)-1]
		last := tail[len(tail)-1]
		labelXYs = append(labelXYs, plotter.XY{X: last.X + 0.5, Y: last.Y})
		labels = append(labels, s.CountryName)
	}

	for _, y := range opts.Reference {
		guide, err := referenceLine(y, opts)
		if err != nil {
			return nil, err
		}
		p.Add(guide)
	}

	if len(labels) > 0 {
		names, err := plotter.NewLabels(plotter.XYLabels{XYs: labelXYs, Labels: labels})
		if err != nil {
			return nil, fmt.Errorf("failed to build country labels: %w", err)
		}
		p.Add(names)
	}

	p.Legend.Top = true
	applyBounds(p, opts)
	return p, nil
}

// segments splits a series at missing values. Non-positive values are dropped on a
// log axis.
func segments(s analysis.CountrySeries, logY bool) []plotter.XYs {
	var out []plotter.XYs
	var cur plotter.XYs
	for _, pt := range s.Points {
		if pt.Value == nil || (logY && *pt.Value <= 0) {
			if len(cur) > 0 {
				out = append(out, cur)
				cur = nil
			}
			continue
		}
		cur = append(cur, plotter.XY{X: float64(pt.Year), Y: *pt.Value})
	}
	if len(cur) > 0 {
		out = append(out, cur)
	}
	return out
}

func referenceLine(y float64, opts LineOptions) (*plotter.Line, error) {
	xmin, xmax := opts.XMin, opts.XMax
	if xmin == 0 && xmax == 0 {
		xmin, xmax = 1960, 2020
	}
	line, err := plotter.NewLine(plotter.XYs{{X: xmin, Y: y}, {X: xmax, Y: y}})
	if err != nil {
		return nil, fmt.Errorf("failed to build reference line at %v: %w", y, err)
	}
	line.Color = color.Gray{Y: 160}
	line.Width = vg.Points(1)
	line.Dashes = []vg.Length{vg.Points(4), vg.Points(4)}
	return line, nil
}

func applyBounds(p *plot.Plot, opts LineOptions) {
	if opts.XMin != 0 || opts.XMax != 0 {
		p.X.Min, p.X.Max = opts.XMin, opts.XMax
	}
	if opts.YMin != 0 || opts.YMax != 0 {
		p.Y.Min, p.Y.Max = opts.YMin, opts.YMax
	}
}
