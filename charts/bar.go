// charts/bar.go
package charts

import (
	"fmt"
	"io"
	"math"
	"strings"

	"github.com/gewnthar/co2scope/analysis"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
	"gonum.org/v1/plot/vg/vgimg"
)

// Row is one country on a bar chart.
type Row struct {
	Code string
	Name string
}

// SectorBars draws a horizontal bar chart of one sector's shares. Countries without a
// value get an empty bar labelled "n/a" rather than a zero.
func SectorBars(share analysis.SectorShare, rows []Row, showNames bool, xMax float64) (*plot.Plot, error) {
	if len(rows) == 0 {
		return nil, fmt.Errorf("no countries to plot for %s", share.Sector.Key)
	}

	p := plot.New()
	p.Title.Text = wrap(share.Sector.Title, 15)
	p.Title.TextStyle.Font.Size = vg.Points(10)

	values := make(plotter.Values, len(rows))
	labelXYs := make([]plotter.XY, len(rows))
	labels := make([]string, len(rows))
	for i, r := range rows {
		v, ok := share.Values[r.Code]
		labelXYs[i] = plotter.XY{X: v + 1, Y: float64(i)}
		if !ok {
			labels[i] = "n/a"
			continue
		}
		values[i] = v
		labels[i] = fmt.Sprintf("%d%%", int(math.Round(v)))
	}

	bars, err := plotter.NewBarChart(values, vg.Points(12))
	if err != nil {
		return nil, fmt.Errorf("failed to build bars for %s: %w", share.Sector.Key, err)
	}
	bars.Horizontal = true
	bars.LineStyle.Width = vg.Length(0)
	p.Add(bars)

	valueLabels, err := plotter.NewLabels(plotter.XYLabels{XYs: labelXYs, Labels: labels})
	if err != nil {
		return nil, fmt.Errorf("failed to build bar labels: %w", err)
	}
	p.Add(valueLabels)

	if showNames {
		names := make([]string, len(rows))
		for i, r := range rows {
			names[i] = r.Name
		}
		p.NominalY(names...)
	} else {
		p.NominalY(make([]string, len(rows))...)
	}
	p.X.Min = 0
	if xMax > 0 {
		p.X.Max = xMax
	}
	return p, nil
}

// WriteSectorPanel renders one bar chart per sector side by side, country names on the
// first panel only, and writes the PNG to w.
func WriteSectorPanel(w io.Writer, breakdown []analysis.SectorShare, rows []Row, width, height vg.Length) error {
	if len(breakdown) == 0 {
		return fmt.Errorf("empty sector breakdown")
	}

	panel := make([][]*plot.Plot, 1)
	panel[0] = make([]*plot.Plot, len(breakdown))
	for i, share := range breakdown {
		p, err := SectorBars(share, rows, i == 0, 60)
		if err != nil {
			return err
		}
		panel[0][i] = p
	}

	img := vgimg.New(width, height)
	dc := draw.New(img)
	tiles := draw.Tiles{
		Rows: 1,
		Cols: len(breakdown),
		PadX: vg.Millimeter,
		PadY: vg.Millimeter,
	}
	canvases := plot.Align(panel, tiles, dc)
	for i, p := range panel[0] {
		p.Draw(canvases[0][i])
	}

	png := vgimg.PngCanvas{Canvas: img}
	if _, err := png.WriteTo(w); err != nil {
		return fmt.Errorf("failed to write sector panel: %w", err)
	}
	return nil
}

// wrap breaks s into lines of at most width characters on word boundaries.
func wrap(s string, width int) string {
	var lines []string
	var cur string
	for _, word := range strings.Fields(s) {
		switch {
		case cur == "":
			cur = word
		case len(cur)+1+len(word) <= width:
			cur += " " + word
		default:
			lines = append(lines, cur)
			cur = word
		}
	}
	if cur != "" {
		lines = append(lines, cur)
	}
	return strings.Join(lines, "\n")
}
