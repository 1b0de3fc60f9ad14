// models/indicator.go
package models

// IndicatorRecord is one row of the WDI indicator table (WDIData_T.csv).
// Value is nil when the source has no observation for the country/indicator/year.
type IndicatorRecord struct {
	ID int64 `csv:"-" db:"id" json:"-"`

	CountryCode   string   `csv:"CountryCode" db:"country_code" json:"country_code"`
	CountryName   string   `csv:"CountryName" db:"country_name" json:"country_name"`
	IndicatorName string   `csv:"IndicatorName" db:"indicator_name" json:"indicator_name"`
	IndicatorCode string   `csv:"IndicatorCode,omitempty" db:"indicator_code" json:"indicator_code,omitempty"` // not present in every export
	Year          int      `csv:"Year" db:"year" json:"year"`
	Value         *float64 `csv:"Value" db:"value" json:"value"`
}

// HasValue reports whether the record carries an observation.
func (r IndicatorRecord) HasValue() bool {
	return r.Value != nil
}

// CountryMeta is one row of WDICountry.csv. Aggregates such as "World" or
// "OECD members" have no currency unit.
type CountryMeta struct {
	CountryCode  string  `csv:"Country Code" db:"country_code" json:"country_code"`
	ShortName    string  `csv:"Short Name,omitempty" db:"short_name" json:"short_name,omitempty"`
	Region       string  `csv:"Region,omitempty" db:"region" json:"region,omitempty"`
	IncomeGroup  string  `csv:"Income Group,omitempty" db:"income_group" json:"income_group,omitempty"`
	CurrencyUnit *string `csv:"Currency Unit" db:"currency_unit" json:"currency_unit"`
}

// IsAggregate reports whether the entry is a region or grouping rather than a country.
func (m CountryMeta) IsAggregate() bool {
	return m.CurrencyUnit == nil || *m.CurrencyUnit == ""
}
