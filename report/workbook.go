// report/workbook.go
package report

import (
	"fmt"
	"io"
	"time"

	"github.com/gewnthar/co2scope/analysis"
	"github.com/gewnthar/co2scope/models"
	"github.com/xuri/excelize/v2"
)

const (
	SheetSummary  = "Summary"
	SheetOverview = "Overview"
	SheetTop      = "Top_Emitters"
	SheetSectors  = "Sectors"
	SheetChanges  = "Changes"
)

// ChangeTable is a titled list of per-country changes between two years.
type ChangeTable struct {
	Title    string
	From, To int
	Changes  []models.CountryChange
}

// Input is everything the workbook reports on.
type Input struct {
	RunID       string
	GeneratedAt time.Time

	Overview     []models.IndicatorRecord
	TopPerCapita []models.CountryValue
	TopKilotons  []models.CountryValue
	TrendYear    int

	SectorYear      int
	SectorCountries []models.CountryValue // row order and names
	Breakdown       []analysis.SectorShare
	CombinedShare   *float64 // transport + electricity/heat, nil if unknown

	Changes []ChangeTable
}

// Build assembles the workbook. Missing values are left as empty cells.
func Build(in Input) (*excelize.File, error) {
	f := excelize.NewFile()
	if err := f.SetSheetName("Sheet1", SheetSummary); err != nil {
		f.Close()
		return nil, fmt.Errorf("failed to rename default sheet: %w", err)
	}
	for _, name := range []string{SheetOverview, SheetTop, SheetSectors, SheetChanges} {
		if _, err := f.NewSheet(name); err != nil {
			f.Close()
			return nil, fmt.Errorf("failed to add sheet %s: %w", name, err)
		}
	}

	steps := []func(*excelize.File, Input) error{
		writeSummary, writeOverview, writeTop, writeSectors, writeChanges,
	}
	for _, step := range steps {
		if err := step(f, in); err != nil {
			f.Close()
			return nil, err
		}
	}
	return f, nil
}

// Write builds the workbook and writes it as XLSX to w.
func Write(w io.Writer, in Input) error {
	f, err := Build(in)
	if err != nil {
		return err
	}
	defer f.Close()
	if err := f.Write(w); err != nil {
		return fmt.Errorf("failed to write workbook: %w", err)
	}
	return nil
}

func writeSummary(f *excelize.File, in Input) error {
	rows := [][]interface{}{
		{"Run ID", in.RunID},
		{"Generated at", in.GeneratedAt.UTC().Format(time.RFC3339)},
		{"Overview records", len(in.Overview)},
		{"Sector year", in.SectorYear},
	}
	if in.CombinedShare != nil {
		rows = append(rows, []interface{}{"Transport + electricity/heat share (%)", *in.CombinedShare})
	}
	for _, t := range in.Changes {
		rows = append(rows, []interface{}{fmt.Sprintf("Share increased %s %d-%d", t.Title, t.From, t.To), analysis.ShareIncreased(t.Changes)})
	}
	if err := writeRows(f, SheetSummary, rows); err != nil {
		return err
	}
	return f.SetColWidth(SheetSummary, "A", "A", 40)
}

func writeOverview(f *excelize.File, in Input) error {
	rows := [][]interface{}{{"Country Code", "Country Name", "Indicator", "Year", "Value"}}
	for _, r := range in.Overview {
		rows = append(rows, []interface{}{r.CountryCode, r.CountryName, r.IndicatorName, r.Year, optional(r.Value)})
	}
	if err := writeRows(f, SheetOverview, rows); err != nil {
		return err
	}
	return f.SetColWidth(SheetOverview, "C", "C", 60)
}

func writeTop(f *excelize.File, in Input) error {
	rows := [][]interface{}{
		{fmt.Sprintf("Rank (%d)", in.TrendYear), "Per capita: Country", "Metric tons per capita", "Kilotons: Country", "kt"},
	}
	n := len(in.TopPerCapita)
	if len(in.TopKilotons) > n {
		n = len(in.TopKilotons)
	}
	for i := 0; i < n; i++ {
		row := []interface{}{i + 1, nil, nil, nil, nil}
		if i < len(in.TopPerCapita) {
			row[1], row[2] = in.TopPerCapita[i].CountryName, in.TopPerCapita[i].Value
		}
		if i < len(in.TopKilotons) {
			row[3], row[4] = in.TopKilotons[i].CountryName, in.TopKilotons[i].Value
		}
		rows = append(rows, row)
	}
	return writeRows(f, SheetTop, rows)
}

func writeSectors(f *excelize.File, in Input) error {
	header := []interface{}{"Country"}
	for _, share := range in.Breakdown {
		header = append(header, share.Sector.Title)
	}
	rows := [][]interface{}{header}
	for _, c := range in.SectorCountries {
		row := []interface{}{c.CountryName}
		for _, share := range in.Breakdown {
			if v, ok := share.Values[c.CountryCode]; ok {
				row = append(row, v)
			} else {
				row = append(row, nil)
			}
		}
		rows = append(rows, row)
	}
	return writeRows(f, SheetSectors, rows)
}

func writeChanges(f *excelize.File, in Input) error {
	var rows [][]interface{}
	for _, t := range in.Changes {
		rows = append(rows,
			[]interface{}{fmt.Sprintf("%s %d-%d", t.Title, t.From, t.To)},
			[]interface{}{"Country Code", "Country Name", t.From, t.To, "Change"},
		)
		for _, c := range t.Changes {
			rows = append(rows, []interface{}{c.CountryCode, c.CountryName, c.From, c.To, c.Delta()})
		}
		rows = append(rows, []interface{}{})
	}
	return writeRows(f, SheetChanges, rows)
}

func writeRows(f *excelize.File, sheet string, rows [][]interface{}) error {
	for i, row := range rows {
		if len(row) == 0 {
			continue
		}
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			return err
		}
		r := row
		if err := f.SetSheetRow(sheet, cell, &r); err != nil {
			return fmt.Errorf("failed to write %s row %d: %w", sheet, i+1, err)
		}
	}
	return nil
}

func optional(v *float64) interface{} {
	if v == nil {
		return nil
	}
	return *v
}
