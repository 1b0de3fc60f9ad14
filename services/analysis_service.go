// services/analysis_service.go
package services

import (
	"errors"
	"fmt"
	"io"
	"log"
	"path/filepath"
	"time"

	"github.com/gewnthar/co2scope/analysis"
	"github.com/gewnthar/co2scope/charts"
	"github.com/gewnthar/co2scope/config"
	"github.com/gewnthar/co2scope/models"
	"github.com/gewnthar/co2scope/report"
	"github.com/google/uuid"
	"gonum.org/v1/plot/vg"
)

// Chart names, also used as file names.
const (
	ChartPerCapitaHistory = "co2_per_capita_history"
	ChartTopPerCapita     = "top_per_capita"
	ChartTopKilotons      = "top_kilotons"
	ChartSectorBreakdown  = "sector_breakdown"

	ReportFileName = "co2_analysis.xlsx"
)

// ChartNames lists every chart an analysis run renders.
var ChartNames = []string{ChartPerCapitaHistory, ChartTopPerCapita, ChartTopKilotons, ChartSectorBreakdown}

// ErrUnknownChart is returned by RenderChart for a name not in ChartNames.
var ErrUnknownChart = errors.New("unknown chart")

// AnalysisResult holds every subset an analysis run derives from a dataset.
type AnalysisResult struct {
	RunID       string
	GeneratedAt time.Time
	Config      config.AnalysisConfig

	Overview         []models.IndicatorRecord
	PerCapitaHistory []analysis.CountrySeries

	TopPerCapita       []models.CountryValue
	TopPerCapitaSeries []analysis.CountrySeries
	TopKilotons        []models.CountryValue
	TopKilotonsSeries  []analysis.CountrySeries

	Breakdown     []analysis.SectorShare
	CombinedShare *float64

	Changes []report.ChangeTable
}

// RunAnalysis derives the overview table, the trend series, the top emitters and the
// sector breakdown from ds.
func RunAnalysis(ds *Dataset, cfg config.AnalysisConfig) *AnalysisResult {
	res := &AnalysisResult{
		RunID:       uuid.NewString(),
		GeneratedAt: time.Now().UTC(),
		Config:      cfg,
	}
	log.Printf("Service: Starting analysis run %s over %d records\n", res.RunID, len(ds.Records))

	res.Overview = analysis.Select(ds.Records, analysis.OverviewPolicy(cfg.Countries, cfg.Years))

	perCapita := analysis.MatchIndicator(ds.Records, analysis.CO2PerCapita)
	history := analysis.Select(perCapita, analysis.Policy{
		Indicators: []string{analysis.CO2PerCapita},
		Countries:  cfg.Countries,
		Years:      analysis.Years(perCapita),
	})
	res.PerCapitaHistory = analysis.OrderSeries(analysis.Series(history), cfg.Countries)

	trendYear := latest(cfg.TrendYears)
	res.TopPerCapita = analysis.TopEmitters(perCapita, analysis.CO2PerCapita, trendYear, cfg.TopN)
	res.TopPerCapitaSeries = topSeries(perCapita, analysis.CO2PerCapita, res.TopPerCapita, cfg.TrendYears)

	kilotons := analysis.MatchIndicator(ds.Records, analysis.CO2Kilotons)
	res.TopKilotons = analysis.TopEmitters(kilotons, analysis.CO2Kilotons, trendYear, cfg.TopN)
	res.TopKilotonsSeries = topSeries(kilotons, analysis.CO2Kilotons, res.TopKilotons, cfg.TrendYears)

	res.Breakdown = analysis.SectorBreakdown(ds.Records, analysis.Codes(res.TopKilotons), cfg.SectorYear)
	if share, ok := analysis.CombinedShare(res.Breakdown, analysis.SectorTransport, analysis.SectorElectricityHeat); ok {
		res.CombinedShare = &share
	} else {
		log.Printf("WARN Service: No country reports both transport and electricity/heat shares for %d.\n", cfg.SectorYear)
	}

	earliest := first(cfg.TrendYears)
	for _, c := range []struct {
		title, pattern string
		records        []models.IndicatorRecord
	}{
		{"CO2 per capita", analysis.CO2PerCapita, perCapita},
		{"CO2 kt", analysis.CO2Kilotons, kilotons},
	} {
		for _, from := range []int{earliest, 1970} {
			res.Changes = append(res.Changes, report.ChangeTable{
				Title:   c.title,
				From:    from,
				To:      trendYear,
				Changes: analysis.Change(c.records, c.pattern, from, trendYear),
			})
		}
	}

	log.Printf("Service: Analysis run %s: %d overview records, %d history series, %d/%d top emitters.\n",
		res.RunID, len(res.Overview), len(res.PerCapitaHistory), len(res.TopPerCapita), len(res.TopKilotons))
	return res
}

// RenderChart writes the named chart as PNG to w.
func RenderChart(w io.Writer, name string, res *AnalysisResult) error {
	trendMin := float64(first(res.Config.TrendYears)) - 0.5
	trendMax := float64(latest(res.Config.TrendYears)) + 1

	var opts charts.LineOptions
	var series []analysis.CountrySeries
	width, height := 5*vg.Inch, 7*vg.Inch

	switch name {
	case ChartPerCapitaHistory:
		series = res.PerCapitaHistory
		opts = charts.LineOptions{
			Title: "CO2 Emissions (metric tons per capita)",
			XMin:  1960, XMax: 2020, YMin: 0, YMax: 25,
			Reference: []float64{5, 10, 15, 20, 25},
		}
		width = 10 * vg.Inch
	case ChartTopPerCapita:
		series = res.TopPerCapitaSeries
		opts = charts.LineOptions{
			YLabel:  indicatorLabel(series),
			XMin:    trendMin, XMax: trendMax, YMin: 0, YMax: 70,
			Markers: true,
		}
	case ChartTopKilotons:
		series = res.TopKilotonsSeries
		opts = charts.LineOptions{
			YLabel:  indicatorLabel(series),
			XMin:    trendMin, XMax: trendMax, YMin: 1e5, YMax: 1.3e7,
			LogY:    true,
			Markers: true,
		}
	case ChartSectorBreakdown:
		rows := make([]charts.Row, len(res.TopKilotons))
		for i, c := range res.TopKilotons {
			rows[i] = charts.Row{Code: c.CountryCode, Name: c.CountryName}
		}
		return charts.WriteSectorPanel(w, res.Breakdown, rows, 10*vg.Inch, 7*vg.Inch)
	default:
		return fmt.Errorf("%w: %s", ErrUnknownChart, name)
	}

	p, err := charts.LineChart(series, opts)
	if err != nil {
		return fmt.Errorf("failed to build chart %s: %w", name, err)
	}
	return charts.WritePNG(w, p, width, height)
}

// WriteOutputs renders every chart and the workbook into dir and returns the paths written.
func WriteOutputs(res *AnalysisResult, dir string) ([]string, error) {
	var written []string
	for _, name := range ChartNames {
		path := filepath.Join(dir, name+".png")
		err := charts.SaveFile(path, func(w io.Writer) error { return RenderChart(w, name, res) })
		if err != nil {
			return written, fmt.Errorf("failed to write chart %s: %w", name, err)
		}
		written = append(written, path)
	}

	path := filepath.Join(dir, ReportFileName)
	if err := charts.SaveFile(path, func(w io.Writer) error { return report.Write(w, res.ReportInput()) }); err != nil {
		return written, fmt.Errorf("failed to write report: %w", err)
	}
	written = append(written, path)

	log.Printf("Service: Analysis run %s wrote %d files to %s\n", res.RunID, len(written), dir)
	return written, nil
}

// ReportInput maps the result onto the workbook layout.
func (res *AnalysisResult) ReportInput() report.Input {
	return report.Input{
		RunID:           res.RunID,
		GeneratedAt:     res.GeneratedAt,
		Overview:        res.Overview,
		TopPerCapita:    res.TopPerCapita,
		TopKilotons:     res.TopKilotons,
		TrendYear:       latest(res.Config.TrendYears),
		SectorYear:      res.Config.SectorYear,
		SectorCountries: res.TopKilotons,
		Breakdown:       res.Breakdown,
		CombinedShare:   res.CombinedShare,
		Changes:         res.Changes,
	}
}

func topSeries(records []models.IndicatorRecord, pattern string, top []models.CountryValue, years []int) []analysis.CountrySeries {
	codes := analysis.Codes(top)
	selected := analysis.Select(records, analysis.Policy{
		Indicators: []string{pattern},
		Countries:  codes,
		Years:      years,
	})
	return analysis.OrderSeries(analysis.Series(selected), codes)
}

func indicatorLabel(series []analysis.CountrySeries) string {
	if len(series) == 0 {
		return ""
	}
	return series[0].IndicatorName
}

func first(years []int) int {
	if len(years) == 0 {
		return 0
	}
	m := years[0]
	for _, y := range years[1:] {
		if y < m {
			m = y
		}
	}
	return m
}

func latest(years []int) int {
	m := 0
	for _, y := range years {
		if y > m {
			m = y
		}
	}
	return m
}
