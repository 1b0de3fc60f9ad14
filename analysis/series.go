// analysis/series.go
package analysis

import (
	"sort"

	"github.com/gewnthar/co2scope/models"
)

// Point is one observation of a series. Value is nil for a gap.
type Point struct {
	Year  int      `json:"year"`
	Value *float64 `json:"value"`
}

// CountrySeries is a single country's observations of one indicator, ordered by year.
type CountrySeries struct {
	CountryCode   string  `json:"country_code"`
	CountryName   string  `json:"country_name"`
	IndicatorName string  `json:"indicator_name"`
	Points        []Point `json:"points"`
}

// Last returns the latest point that has a value.
func (s CountrySeries) Last() (Point, bool) {
	for i := len(s.Points) - 1; i >= 0; i-- {
		if s.Points[i].Value != nil {
			return s.Points[i], true
		}
	}
	return Point{}, false
}

// Len returns the number of points with a value.
func (s CountrySeries) Len() int {
	n := 0
	for _, p := range s.Points {
		if p.Value != nil {
			n++
		}
	}
	return n
}

// Series groups records by country, in the order countries first appear.
// Callers select a single indicator first; the series takes the first record's name.
func Series(records []models.IndicatorRecord) []CountrySeries {
	index := make(map[string]int)
	var out []CountrySeries
	for _, r := range records {
		i, ok := index[r.CountryCode]
		if !ok {
			i = len(out)
			index[r.CountryCode] = i
			out = append(out, CountrySeries{
				CountryCode:   r.CountryCode,
				CountryName:   r.CountryName,
				IndicatorName: r.IndicatorName,
			})
		}
		out[i].Points = append(out[i].Points, Point{Year: r.Year, Value: r.Value})
	}
	for i := range out {
		points := out[i].Points
		sort.SliceStable(points, func(a, b int) bool { return points[a].Year < points[b].Year })
	}
	return out
}

// OrderSeries reorders series to follow codes. Codes without a series are skipped
// and series not named in codes are dropped.
func OrderSeries(series []CountrySeries, codes []string) []CountrySeries {
	byCode := make(map[string]CountrySeries, len(series))
	for _, s := range series {
		byCode[s.CountryCode] = s
	}
	ordered := make([]CountrySeries, 0, len(codes))
	for _, code := range codes {
		if s, ok := byCode[code]; ok {
			ordered = append(ordered, s)
		}
	}
	return ordered
}

// Years returns the distinct years present in records, ascending.
func Years(records []models.IndicatorRecord) []int {
	seen := make(map[int]struct{})
	var years []int
	for _, r := range records {
		if _, ok := seen[r.Year]; ok {
			continue
		}
		seen[r.Year] = struct{}{}
		years = append(years, r.Year)
	}
	sort.Ints(years)
	return years
}
