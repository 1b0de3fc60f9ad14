// analysis/select.go
package analysis

import (
	"strings"

	"github.com/gewnthar/co2scope/models"
)

// Select returns the records matching p, in input order.
//
// A record matches when its IndicatorName contains at least one of p.Indicators
// (case-sensitive, literal substring), its CountryCode is in p.Countries and its
// Year is in p.Years. An empty dimension matches nothing. Blank patterns are ignored.
func Select(records []models.IndicatorRecord, p Policy) []models.IndicatorRecord {
	patterns := nonBlank(p.Indicators)
	if len(patterns) == 0 || len(p.Countries) == 0 || len(p.Years) == 0 {
		return nil
	}

	countries := stringSet(p.Countries)
	years := intSet(p.Years)

	var selected []models.IndicatorRecord
	for _, r := range records {
		if _, ok := years[r.Year]; !ok {
			continue
		}
		if _, ok := countries[r.CountryCode]; !ok {
			continue
		}
		if !containsAny(r.IndicatorName, patterns) {
			continue
		}
		selected = append(selected, r)
	}
	return selected
}

// MatchIndicator returns every record whose IndicatorName contains any pattern,
// regardless of country and year.
func MatchIndicator(records []models.IndicatorRecord, patterns ...string) []models.IndicatorRecord {
	patterns = nonBlank(patterns)
	if len(patterns) == 0 {
		return nil
	}
	var matched []models.IndicatorRecord
	for _, r := range records {
		if containsAny(r.IndicatorName, patterns) {
			matched = append(matched, r)
		}
	}
	return matched
}

func containsAny(s string, patterns []string) bool {
	for _, p := range patterns {
		if strings.Contains(s, p) {
			return true
		}
	}
	return false
}

func nonBlank(patterns []string) []string {
	out := make([]string, 0, len(patterns))
	for _, p := range patterns {
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}

func stringSet(items []string) map[string]struct{} {
	set := make(map[string]struct{}, len(items))
	for _, item := range items {
		set[item] = struct{}{}
	}
	return set
}

func intSet(items []int) map[int]struct{} {
	set := make(map[int]struct{}, len(items))
	for _, item := range items {
		set[item] = struct{}{}
	}
	return set
}
