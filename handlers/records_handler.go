// handlers/records_handler.go
package handlers

import (
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"strconv"
	"strings"

	"github.com/gewnthar/co2scope/analysis"
	"github.com/gewnthar/co2scope/config"
	"github.com/gewnthar/co2scope/models"
	"github.com/gewnthar/co2scope/services"
	"github.com/gewnthar/co2scope/utils"
)

// SelectRecordsHandler returns the records matching a selection.
// Expects POST to /api/records/select
// with JSON body: {"indicators": ["CO2 emissions (metric"], "countries": ["USA"], "years": [1960, 2016]}
func SelectRecordsHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		respondWithError(w, http.StatusMethodNotAllowed, "Only POST method is allowed")
		return
	}

	var req models.SelectRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return
	}
	defer r.Body.Close()

	policy := analysis.Policy{
		Indicators: req.Indicators,
		Countries:  utils.NormalizeCountryCodes(req.Countries),
		Years:      req.Years,
	}
	log.Printf("Handler: Received select request: %d indicators, %d countries, %d years\n",
		len(policy.Indicators), len(policy.Countries), len(policy.Years))

	records, err := services.SelectRecords(r.Context(), policy)
	if err != nil {
		respondWithError(w, http.StatusInternalServerError, fmt.Sprintf("Failed to select records: %v", err))
		return
	}
	if records == nil {
		records = []models.IndicatorRecord{}
	}
	respondWithJSON(w, http.StatusOK, records)
}

type sectorsResponse struct {
	Year          int                    `json:"year"`
	Countries     []string               `json:"countries"`
	Combined      []string               `json:"combined_sectors"`
	Breakdown     []analysis.SectorShare `json:"breakdown"`
	CombinedShare *float64               `json:"combined_share"`
}

// SectorsHandler returns the sector breakdown for a set of countries.
// Expects GET to /api/sectors?year=2014&countries=USA,CHN&combine=transport,electricity_heat
// year and countries default to the analysis configuration; combine picks the sectors
// summed into combined_share and defaults to transport plus electricity/heat.
func SectorsHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		respondWithError(w, http.StatusMethodNotAllowed, "Only GET method is allowed")
		return
	}
	cfg := config.AppConfig.Analysis

	year, err := intParam(r, "year", cfg.SectorYear)
	if err != nil {
		respondWithError(w, http.StatusBadRequest, err.Error())
		return
	}
	countries := cfg.Countries
	if v := r.URL.Query().Get("countries"); v != "" {
		countries = utils.ParseCountryList(v)
	}
	combine := []string{analysis.SectorTransport, analysis.SectorElectricityHeat}
	if v := r.URL.Query().Get("combine"); v != "" {
		combine = nil
		for _, key := range strings.Split(v, ",") {
			sector, ok := analysis.SectorByKey(strings.TrimSpace(key))
			if !ok {
				respondWithError(w, http.StatusBadRequest, fmt.Sprintf("Unknown sector '%s'", strings.TrimSpace(key)))
				return
			}
			combine = append(combine, sector.Key)
		}
	}

	breakdown, err := services.SectorBreakdownFor(r.Context(), countries, year)
	if err != nil {
		respondWithError(w, http.StatusInternalServerError, fmt.Sprintf("Failed to get sector breakdown: %v", err))
		return
	}

	resp := sectorsResponse{Year: year, Countries: countries, Combined: combine, Breakdown: breakdown}
	if resp.Countries == nil {
		resp.Countries = []string{}
	}
	if share, ok := analysis.CombinedShare(breakdown, combine...); ok {
		resp.CombinedShare = &share
	}
	respondWithJSON(w, http.StatusOK, resp)
}

// TopEmittersHandler ranks countries on one indicator.
// Expects GET to /api/top-emitters?indicator=CO2 emissions (kt&year=2016&n=10
func TopEmittersHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		respondWithError(w, http.StatusMethodNotAllowed, "Only GET method is allowed")
		return
	}
	cfg := config.AppConfig.Analysis

	indicator := r.URL.Query().Get("indicator")
	if indicator == "" {
		indicator = analysis.CO2Kilotons
	}
	defaultYear := 0
	for _, y := range cfg.TrendYears {
		if y > defaultYear {
			defaultYear = y
		}
	}
	year, err := intParam(r, "year", defaultYear)
	if err != nil {
		respondWithError(w, http.StatusBadRequest, err.Error())
		return
	}
	n, err := intParam(r, "n", cfg.TopN)
	if err != nil {
		respondWithError(w, http.StatusBadRequest, err.Error())
		return
	}

	top, err := services.TopEmittersFor(r.Context(), indicator, year, n)
	if err != nil {
		respondWithError(w, http.StatusInternalServerError, fmt.Sprintf("Failed to rank emitters: %v", err))
		return
	}
	if top == nil {
		top = []models.CountryValue{}
	}
	respondWithJSON(w, http.StatusOK, top)
}

// SeriesHandler returns per-country series of one indicator.
// Expects GET to /api/series?indicator=CO2 emissions (metric&countries=USA,CHN&years=1960,2016
// Without years every year on record is returned.
func SeriesHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		respondWithError(w, http.StatusMethodNotAllowed, "Only GET method is allowed")
		return
	}
	q := r.URL.Query()

	indicator := q.Get("indicator")
	if indicator == "" {
		indicator = analysis.CO2PerCapita
	}
	countries := config.AppConfig.Analysis.Countries
	if v := q.Get("countries"); v != "" {
		countries = utils.ParseCountryList(v)
	}
	years, err := utils.ParseYearList(q.Get("years"))
	if err != nil {
		respondWithError(w, http.StatusBadRequest, err.Error())
		return
	}

	series, err := services.SeriesFor(r.Context(), indicator, countries, years)
	if err != nil {
		respondWithError(w, http.StatusInternalServerError, fmt.Sprintf("Failed to build series: %v", err))
		return
	}
	if series == nil {
		series = []analysis.CountrySeries{}
	}
	respondWithJSON(w, http.StatusOK, series)
}

func intParam(r *http.Request, name string, fallback int) (int, error) {
	v := r.URL.Query().Get(name)
	if v == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("invalid '%s' parameter: %q", name, v)
	}
	return n, nil
}
