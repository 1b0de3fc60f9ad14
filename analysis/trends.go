// analysis/trends.go
package analysis

import (
	"sort"
	"strings"

	"github.com/gewnthar/co2scope/models"
)

// TopEmitters ranks countries by the value of the indicator matching pattern in year,
// highest first. Records without a value are skipped. n <= 0 returns every country.
func TopEmitters(records []models.IndicatorRecord, pattern string, year, n int) []models.CountryValue {
	if pattern == "" {
		return nil
	}
	seen := make(map[string]struct{})
	var ranked []models.CountryValue
	for _, r := range records {
		if r.Year != year || !r.HasValue() || !strings.Contains(r.IndicatorName, pattern) {
			continue
		}
		if _, dup := seen[r.CountryCode]; dup {
			continue
		}
		seen[r.CountryCode] = struct{}{}
		ranked = append(ranked, models.CountryValue{
			CountryCode: r.CountryCode,
			CountryName: r.CountryName,
			Value:       *r.Value,
		})
	}

	sort.SliceStable(ranked, func(i, j int) bool {
		if ranked[i].Value != ranked[j].Value {
			return ranked[i].Value > ranked[j].Value
		}
		return ranked[i].CountryCode < ranked[j].CountryCode
	})
	if n > 0 && len(ranked) > n {
		ranked = ranked[:n]
	}
	return ranked
}

// Codes returns the country codes of values, in order.
func Codes(values []models.CountryValue) []string {
	codes := make([]string, len(values))
	for i, v := range values {
		codes[i] = v.CountryCode
	}
	return codes
}

// Change pairs each country's value in from and to for the indicator matching pattern.
// Countries missing either value are left out. The result is ordered by country code.
func Change(records []models.IndicatorRecord, pattern string, from, to int) []models.CountryChange {
	if pattern == "" {
		return nil
	}
	type pair struct {
		name     string
		from, to *float64
	}
	pairs := make(map[string]*pair)
	for _, r := range records {
		if !r.HasValue() || (r.Year != from && r.Year != to) || !strings.Contains(r.IndicatorName, pattern) {
			continue
		}
		p, ok := pairs[r.CountryCode]
		if !ok {
			p = &pair{name: r.CountryName}
			pairs[r.CountryCode] = p
		}
		v := *r.Value
		if r.Year == from && p.from == nil {
			p.from = &v
		}
		if r.Year == to && p.to == nil {
			p.to = &v
		}
	}

	var changes []models.CountryChange
	for code, p := range pairs {
		if p.from == nil || p.to == nil {
			continue
		}
		changes = append(changes, models.CountryChange{
			CountryCode: code,
			CountryName: p.name,
			From:        *p.from,
			To:          *p.to,
		})
	}
	sort.Slice(changes, func(i, j int) bool { return changes[i].CountryCode < changes[j].CountryCode })
	return changes
}

// ShareIncreased returns the fraction of changes whose value rose, or 0 when empty.
func ShareIncreased(changes []models.CountryChange) float64 {
	if len(changes) == 0 {
		return 0
	}
	rose := 0
	for _, c := range changes {
		if c.Increased() {
			rose++
		}
	}
	return float64(rose) / float64(len(changes))
}
