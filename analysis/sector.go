// analysis/sector.go
package analysis

import (
	"strings"

	"github.com/gewnthar/co2scope/models"
)

// Sector is a category of emission source. Label is matched against IndicatorName;
// the "of total fuel combustion" variants report each sector as a percentage.
type Sector struct {
	Key   string `json:"key"`
	Label string `json:"label"`
	Title string `json:"title"`
}

const (
	SectorElectricityHeat = "electricity_heat"
	SectorManufacturing   = "manufacturing_construction"
	SectorTransport       = "transport"
	SectorResidential     = "residential"
	SectorOther           = "other"
)

// Sectors lists the five sector categories in chart order.
var Sectors = []Sector{
	{
		Key:   SectorElectricityHeat,
		Label: "CO2 emissions from electricity and heat production",
		Title: "Electricity and Heat production",
	},
	{
		Key:   SectorTransport,
		Label: "CO2 emissions from transport",
		Title: "Transport",
	},
	{
		Key:   SectorManufacturing,
		Label: "CO2 emissions from manufacturing industries and construction",
		Title: "Manufacturing Industries and Construction",
	},
	{
		Key:   SectorResidential,
		Label: "CO2 emissions from residential buildings and commercial and public services",
		Title: "Residential Buildings and Commercial and Public Services",
	},
	{
		Key:   SectorOther,
		Label: "CO2 emissions from other sectors, excluding residential buildings and commercial and public services",
		Title: "Other sectors, excluding Residential Buildings and Commercial and Public Services",
	},
}

// SectorByKey returns the sector with the given key.
func SectorByKey(key string) (Sector, bool) {
	for _, s := range Sectors {
		if s.Key == key {
			return s, true
		}
	}
	return Sector{}, false
}

// SectorValues maps country code to the value of the first record in year whose
// IndicatorName contains sectorLabel. Countries without such a record, or whose record
// has no value, are absent from the result.
func SectorValues(records []models.IndicatorRecord, sectorLabel string, countries []string, year int) map[string]float64 {
	values := make(map[string]float64)
	if sectorLabel == "" {
		return values
	}
	allowed := stringSet(countries)
	for _, r := range records {
		if r.Year != year || !r.HasValue() {
			continue
		}
		if _, ok := allowed[r.CountryCode]; !ok {
			continue
		}
		if !strings.Contains(r.IndicatorName, sectorLabel) {
			continue
		}
		if _, seen := values[r.CountryCode]; seen {
			continue
		}
		values[r.CountryCode] = *r.Value
	}
	return values
}

// SectorShare is one sector's values for a set of countries.
type SectorShare struct {
	Sector Sector             `json:"sector"`
	Values map[string]float64 `json:"values"`
}

// SectorBreakdown looks up every sector for countries in year. Only the
// "of total fuel combustion" records are considered so values are percentages.
func SectorBreakdown(records []models.IndicatorRecord, countries []string, year int) []SectorShare {
	shares := MatchIndicator(records, OfTotalFuelCombustion)
	breakdown := make([]SectorShare, 0, len(Sectors))
	for _, s := range Sectors {
		breakdown = append(breakdown, SectorShare{
			Sector: s,
			Values: SectorValues(shares, s.Label, countries, year),
		})
	}
	return breakdown
}

// CombinedShare averages, over the countries that report every requested sector,
// the sum of those sectors' values. It returns false when no country qualifies.
func CombinedShare(breakdown []SectorShare, keys ...string) (float64, bool) {
	var picked []map[string]float64
	for _, key := range keys {
		for _, share := range breakdown {
			if share.Sector.Key == key {
				picked = append(picked, share.Values)
				break
			}
		}
	}
	if len(picked) == 0 || len(picked) != len(keys) {
		return 0, false
	}

	var total float64
	var n int
	for code, first := range picked[0] {
		sum := first
		complete := true
		for _, values := range picked[1:] {
			v, ok := values[code]
			if !ok {
				complete = false
				break
			}
			sum += v
		}
		if complete {
			total += sum
			n++
		}
	}
	if n == 0 {
		return 0, false
	}
	return total / float64(n), true
}
