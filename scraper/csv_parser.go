// scraper/csv_parser.go
package scraper

import (
	"bufio"
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"log"
	"os"

	"github.com/gewnthar/co2scope/models"
	"github.com/jszwec/csvutil"
)

// ParseIndicatorCsv decodes the long-format WDI table. Headers are matched against
// the csv tags of models.IndicatorRecord; extra columns are ignored and an empty
// Value cell decodes to nil.
func ParseIndicatorCsv(reader io.Reader) ([]models.IndicatorRecord, error) {
	var records []models.IndicatorRecord

	decoder, err := csvutil.NewDecoder(withoutBOM(reader))
	if err != nil {
		return nil, fmt.Errorf("failed to create CSV decoder for indicators: %w", err)
	}
	if err := requireHeaders(decoder.Header(), "CountryCode", "CountryName", "IndicatorName", "Year", "Value"); err != nil {
		return nil, fmt.Errorf("indicator CSV: %w", err)
	}

	if err := decoder.Decode(&records); err != nil {
		return nil, fmt.Errorf("failed to decode indicator CSV data: %w", err)
	}

	log.Printf("Scraper: Successfully parsed %d indicator records from CSV.\n", len(records))
	return records, nil
}

// ParseCountryCsv decodes WDICountry.csv. An empty "Currency Unit" cell decodes to nil.
func ParseCountryCsv(reader io.Reader) ([]models.CountryMeta, error) {
	var meta []models.CountryMeta

	decoder, err := csvutil.NewDecoder(withoutBOM(reader))
	if err != nil {
		return nil, fmt.Errorf("failed to create CSV decoder for countries: %w", err)
	}
	if err := requireHeaders(decoder.Header(), "Country Code", "Currency Unit"); err != nil {
		return nil, fmt.Errorf("country CSV: %w", err)
	}

	if err := decoder.Decode(&meta); err != nil {
		return nil, fmt.Errorf("failed to decode country CSV data: %w", err)
	}

	log.Printf("Scraper: Successfully parsed %d country rows from CSV.\n", len(meta))
	return meta, nil
}

// LoadIndicatorFile opens and parses an indicator CSV on disk.
func LoadIndicatorFile(path string) ([]models.IndicatorRecord, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open indicator file %s: %w", path, err)
	}
	defer file.Close()
	return ParseIndicatorCsv(file)
}

// LoadCountryFile opens and parses a country CSV on disk.
func LoadCountryFile(path string) ([]models.CountryMeta, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open country file %s: %w", path, err)
	}
	defer file.Close()
	return ParseCountryCsv(file)
}

// World Bank exports start with a UTF-8 byte order mark, which would otherwise
// stick to the first header name.
func withoutBOM(r io.Reader) *csv.Reader {
	br := bufio.NewReader(r)
	if prefix, err := br.Peek(3); err == nil && bytes.Equal(prefix, []byte{0xEF, 0xBB, 0xBF}) {
		br.Discard(3)
	}
	return csv.NewReader(br)
}

func requireHeaders(header []string, required ...string) error {
	present := make(map[string]bool, len(header))
	for _, h := range header {
		present[h] = true
	}
	for _, r := range required {
		if !present[r] {
			return fmt.Errorf("missing required column %q", r)
		}
	}
	return nil
}
