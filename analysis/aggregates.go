// analysis/aggregates.go
package analysis

import (
	"github.com/gewnthar/co2scope/models"
)

// ExcludedCodes returns the codes of entries without a currency unit.
// These are regions and groupings ("WLD", "OED", "HIC"...), not countries.
func ExcludedCodes(meta []models.CountryMeta) map[string]struct{} {
	excluded := make(map[string]struct{})
	for _, m := range meta {
		if m.IsAggregate() {
			excluded[m.CountryCode] = struct{}{}
		}
	}
	return excluded
}

// RemoveAggregates drops every record whose country code has no currency unit in meta.
// Records for codes missing from meta are kept. Order is preserved.
func RemoveAggregates(records []models.IndicatorRecord, meta []models.CountryMeta) []models.IndicatorRecord {
	excluded := ExcludedCodes(meta)
	if len(excluded) == 0 {
		return records
	}

	cleaned := make([]models.IndicatorRecord, 0, len(records))
	for _, r := range records {
		if _, skip := excluded[r.CountryCode]; skip {
			continue
		}
		cleaned = append(cleaned, r)
	}
	return cleaned
}
