package utils

import (
	"reflect"
	"testing"
)

func TestNormalizeCountryCode(t *testing.T) {
	tests := map[string]string{
		"usa":   "USA",
		" chn ": "CHN",
		"DEU":   "DEU",
		"":      "",
	}
	for in, want := range tests {
		if got := NormalizeCountryCode(in); got != want {
			t.Errorf("NormalizeCountryCode(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestParseCountryList(t *testing.T) {
	tests := []struct {
		in   string
		want []string
	}{
		{"USA,chn, JPN", []string{"USA", "CHN", "JPN"}},
		{"usa,USA,,", []string{"USA"}},
		{"", nil},
	}
	for _, tt := range tests {
		if got := ParseCountryList(tt.in); !reflect.DeepEqual(got, tt.want) {
			t.Errorf("ParseCountryList(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestParseYearList(t *testing.T) {
	got, err := ParseYearList("1960, 2016,")
	if err != nil {
		t.Fatalf("ParseYearList failed: %v", err)
	}
	if !reflect.DeepEqual(got, []int{1960, 2016}) {
		t.Errorf("ParseYearList = %v", got)
	}
	if _, err := ParseYearList("1960,sixties"); err == nil {
		t.Error("Expected error for non-numeric year")
	}
}
