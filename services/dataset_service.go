// services/dataset_service.go
package services

import (
	"context"
	"fmt"
	"log"
	"sort"

	"github.com/gewnthar/co2scope/analysis"
	"github.com/gewnthar/co2scope/config"
	"github.com/gewnthar/co2scope/database"
	"github.com/gewnthar/co2scope/models"
	"github.com/gewnthar/co2scope/scraper"
)

// Dataset is the cleaned indicator table together with the metadata used to clean it.
type Dataset struct {
	Records []models.IndicatorRecord // aggregates removed
	Meta    []models.CountryMeta
	Dropped int // aggregate rows removed
}

// NewDataset removes aggregate rows from raw using meta.
func NewDataset(raw []models.IndicatorRecord, meta []models.CountryMeta) *Dataset {
	cleaned := analysis.RemoveAggregates(raw, meta)
	return &Dataset{
		Records: cleaned,
		Meta:    meta,
		Dropped: len(raw) - len(cleaned),
	}
}

// LoadDatasetFromFiles parses both CSV files and removes aggregates.
// A missing file is an error; there is no partial mode.
func LoadDatasetFromFiles(dataPath, countryPath string) (*Dataset, error) {
	log.Printf("Service: Loading dataset from %s and %s\n", dataPath, countryPath)

	meta, err := scraper.LoadCountryFile(countryPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load country metadata: %w", err)
	}
	raw, err := scraper.LoadIndicatorFile(dataPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load indicators: %w", err)
	}

	ds := NewDataset(raw, meta)
	log.Printf("Service: Dataset ready: %d records, %d aggregate rows removed.\n", len(ds.Records), ds.Dropped)
	return ds, nil
}

// LoadDatasetFromDB reads the rows needed for an analysis run from the store:
// every year for the configured countries, plus every country for the snapshot,
// trend and sector years.
func LoadDatasetFromDB(ctx context.Context, cfg config.AnalysisConfig) (*Dataset, error) {
	meta, err := database.GetCountryMeta(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load country metadata: %w", err)
	}

	byCountry, err := database.GetIndicatorRecords(ctx, cfg.Countries, nil)
	if err != nil {
		return nil, err
	}
	years := append(append(append([]int{}, cfg.Years...), cfg.TrendYears...), cfg.SectorYear)
	byYear, err := database.GetIndicatorRecords(ctx, nil, years)
	if err != nil {
		return nil, err
	}

	return NewDataset(mergeByID(byCountry, byYear), meta), nil
}

// SelectRecords answers a selection against the store. Countries and years narrow
// the SQL query; indicator patterns are matched in Go so labels stay literal.
func SelectRecords(ctx context.Context, p analysis.Policy) ([]models.IndicatorRecord, error) {
	if len(p.Countries) == 0 || len(p.Years) == 0 {
		return nil, nil
	}
	meta, err := database.GetCountryMeta(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load country metadata: %w", err)
	}
	raw, err := database.GetIndicatorRecords(ctx, p.Countries, p.Years)
	if err != nil {
		return nil, err
	}
	return analysis.Select(analysis.RemoveAggregates(raw, meta), p), nil
}

// SectorBreakdownFor looks up the sector shares of countries in year from the store.
func SectorBreakdownFor(ctx context.Context, countries []string, year int) ([]analysis.SectorShare, error) {
	meta, err := database.GetCountryMeta(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load country metadata: %w", err)
	}
	var raw []models.IndicatorRecord
	if len(countries) > 0 {
		raw, err = database.GetIndicatorRecords(ctx, countries, []int{year})
		if err != nil {
			return nil, err
		}
	}
	return analysis.SectorBreakdown(analysis.RemoveAggregates(raw, meta), countries, year), nil
}

// TopEmittersFor ranks every country on the indicator matching pattern in year.
func TopEmittersFor(ctx context.Context, pattern string, year, n int) ([]models.CountryValue, error) {
	meta, err := database.GetCountryMeta(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load country metadata: %w", err)
	}
	raw, err := database.GetIndicatorRecords(ctx, nil, []int{year})
	if err != nil {
		return nil, err
	}
	return analysis.TopEmitters(analysis.RemoveAggregates(raw, meta), pattern, year, n), nil
}

// SeriesFor builds per-country series of the indicator matching pattern, in the
// order of countries. Empty years means every year on record.
func SeriesFor(ctx context.Context, pattern string, countries []string, years []int) ([]analysis.CountrySeries, error) {
	if len(countries) == 0 {
		return nil, nil
	}
	meta, err := database.GetCountryMeta(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load country metadata: %w", err)
	}
	raw, err := database.GetIndicatorRecords(ctx, countries, years)
	if err != nil {
		return nil, err
	}
	matched := analysis.MatchIndicator(analysis.RemoveAggregates(raw, meta), pattern)
	if len(years) == 0 {
		years = analysis.Years(matched)
	}
	selected := analysis.Select(matched, analysis.Policy{
		Indicators: []string{pattern},
		Countries:  countries,
		Years:      years,
	})
	return analysis.OrderSeries(analysis.Series(selected), countries), nil
}

func mergeByID(sets ...[]models.IndicatorRecord) []models.IndicatorRecord {
	seen := make(map[int64]struct{})
	var merged []models.IndicatorRecord
	for _, set := range sets {
		for _, r := range set {
			if _, dup := seen[r.ID]; dup {
				continue
			}
			seen[r.ID] = struct{}{}
			merged = append(merged, r)
		}
	}
	sort.SliceStable(merged, func(i, j int) bool { return merged[i].ID < merged[j].ID })
	return merged
}
