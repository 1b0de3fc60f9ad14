// analysis/policy.go
package analysis

// Indicator label fragments. WDI has no stable indicator IDs across exports,
// so selection is done on these substrings of IndicatorName. Parentheses are literal.
const (
	CO2PerCapita          = "CO2 emissions (metric"
	CO2Kilotons           = "CO2 emissions (kt"
	TotalGHG              = "Total greenhouse gas emissions (kt of CO2"
	GaseousFuel           = "CO2 emissions from gaseous fuel consumption"
	LiquidFuel            = "CO2 emissions from liquid fuel consumption"
	SolidFuel             = "CO2 emissions from solid fuel consumption"
	OfTotalFuelCombustion = "of total fuel combustion"
)

// SectorYear is the latest year with complete sector attribution in the dataset.
const SectorYear = 2014

// DefaultCountries are the ten largest economies by GDP.
var DefaultCountries = []string{"USA", "GBR", "FRA", "CHN", "JPN", "DEU", "IND", "ITA", "BRA", "CAN"}

// DefaultYears are the snapshot years of the overview table.
var DefaultYears = []int{1960, 1970, 2006, 2011, 2016}

// TrendYears are the years plotted for the top-emitter charts.
var TrendYears = []int{2006, 2011, 2016}

// Policy selects records by indicator, country and year.
// Indicators are OR-combined substrings; the three dimensions are AND-combined.
type Policy struct {
	Indicators []string `json:"indicators" yaml:"indicators"`
	Countries  []string `json:"countries" yaml:"countries"`
	Years      []int    `json:"years" yaml:"years"`
}

// FuelIndicators returns the three fuel-consumption patterns.
func FuelIndicators() []string {
	return []string{GaseousFuel, LiquidFuel, SolidFuel}
}

// OverviewPolicy returns the selection behind the overview table: per-capita and
// absolute CO2, total greenhouse gases and the fuel breakdown.
func OverviewPolicy(countries []string, years []int) Policy {
	indicators := []string{CO2PerCapita, CO2Kilotons, TotalGHG}
	indicators = append(indicators, FuelIndicators()...)
	return Policy{
		Indicators: indicators,
		Countries:  countries,
		Years:      years,
	}
}
