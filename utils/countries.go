// utils/countries.go
package utils

import (
	"fmt"
	"strconv"
	"strings"
)

// NormalizeCountryCode trims and upper-cases an ISO3 country code ("usa " -> "USA").
func NormalizeCountryCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}

// NormalizeCountryCodes normalizes every code, dropping blanks and duplicates.
// Order of first appearance is kept.
func NormalizeCountryCodes(codes []string) []string {
	seen := make(map[string]struct{}, len(codes))
	var out []string
	for _, c := range codes {
		c = NormalizeCountryCode(c)
		if c == "" {
			continue
		}
		if _, dup := seen[c]; dup {
			continue
		}
		seen[c] = struct{}{}
		out = append(out, c)
	}
	return out
}

// ParseCountryList splits a comma separated list such as "USA,chn, JPN".
func ParseCountryList(v string) []string {
	return NormalizeCountryCodes(strings.Split(v, ","))
}

// ParseYearList splits a comma separated list of years. Blank entries are skipped.
func ParseYearList(v string) ([]int, error) {
	var years []int
	for _, part := range strings.Split(v, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		y, err := strconv.Atoi(part)
		if err != nil {
			return nil, fmt.Errorf("invalid year %q", part)
		}
		years = append(years, y)
	}
	return years, nil
}
