// models/api_models.go
package models

// SelectRequest is the expected JSON body for the /api/records/select endpoint.
type SelectRequest struct {
	Indicators []string `json:"indicators"` // substrings, e.g. "CO2 emissions (metric"
	Countries  []string `json:"countries"`  // e.g. "USA"
	Years      []int    `json:"years"`
}

// CountryValue is a single country's value for one indicator and year.
type CountryValue struct {
	CountryCode string  `json:"country_code"`
	CountryName string  `json:"country_name"`
	Value       float64 `json:"value"`
}

// CountryChange is the change of an indicator between two years for one country.
type CountryChange struct {
	CountryCode string  `json:"country_code"`
	CountryName string  `json:"country_name"`
	From        float64 `json:"from"`
	To          float64 `json:"to"`
}

// Delta returns To - From.
func (c CountryChange) Delta() float64 {
	return c.To - c.From
}

// Increased reports whether the value rose between the two years.
func (c CountryChange) Increased() bool {
	return c.To > c.From
}
