package services

import (
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/gewnthar/co2scope/analysis"
	"github.com/gewnthar/co2scope/config"
	"github.com/gewnthar/co2scope/database"
)

type wdiServer struct {
	*httptest.Server
	downloads atomic.Int32
	released  string
	dataBody  string // served instead of indicatorCSV when set
}

func newWDIServer(t *testing.T, released string) *wdiServer {
	t.Helper()
	s := &wdiServer{released: released}
	mux := http.NewServeMux()
	mux.HandleFunc("/WDIData.csv", func(w http.ResponseWriter, r *http.Request) {
		s.downloads.Add(1)
		if s.dataBody != "" {
			fmt.Fprint(w, s.dataBody)
			return
		}
		fmt.Fprint(w, indicatorCSV)
	})
	mux.HandleFunc("/WDICountry.csv", func(w http.ResponseWriter, r *http.Request) {
		s.downloads.Add(1)
		fmt.Fprint(w, countryCSV)
	})
	mux.HandleFunc("/catalog", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprintf(w, `<html><body><div id="details"><ul><li>Last Updated: %s</li></ul></div></body></html>`, s.released)
	})
	s.Server = httptest.NewServer(mux)
	t.Cleanup(s.Close)
	return s
}

func useServerConfig(t *testing.T, srv *wdiServer) {
	t.Helper()
	prev := config.AppConfig
	t.Cleanup(func() { config.AppConfig = prev })

	dir := t.TempDir()
	config.AppConfig = config.Config{
		WDIURLs: config.WDIURLsConfig{
			DataCSV:     srv.URL + "/WDIData.csv",
			CountryCSV:  srv.URL + "/WDICountry.csv",
			CatalogPage: srv.URL + "/catalog",
		},
		LocalCSVPaths: config.LocalCSVPathsConfig{
			Data:    filepath.Join(dir, "WDIData.csv"),
			Country: filepath.Join(dir, "WDICountry.csv"),
		},
		DataFreshness: config.DataFreshnessConfig{
			DownloadTimeout:     5 * time.Second,
			CatalogCheckTimeout: 5 * time.Second,
		},
		ScraperSelectors: config.ScraperSelectorsConfig{ReleaseDate: "#details"},
	}
}

func TestForceUpdateSource(t *testing.T) {
	ctx := openTestDB(t)
	srv := newWDIServer(t, "12/16/2022")
	useServerConfig(t, srv)

	if err := ForceUpdateAll(ctx); err != nil {
		t.Fatalf("ForceUpdateAll failed: %v", err)
	}

	count, err := database.CountIndicatorRecords(ctx)
	if err != nil {
		t.Fatalf("CountIndicatorRecords failed: %v", err)
	}
	if count != 19 {
		t.Errorf("Expected 19 stored records, got %d", count)
	}

	v, err := database.GetDataSourceVersion(ctx, SourceIndicators)
	if err != nil || v == nil {
		t.Fatalf("Expected a version row, got %v, %v", v, err)
	}
	if v.RowCount != 19 || len(v.DataHash) != 64 || v.LastSuccessfullyDownloadedAt == nil {
		t.Errorf("Unexpected version row: %+v", v)
	}
	if v.ReleaseDate != nil {
		t.Errorf("Manual refresh without catalog data should leave release date empty, got %v", v.ReleaseDate)
	}
}

func TestForceUpdateSource_Errors(t *testing.T) {
	ctx := openTestDB(t)
	srv := newWDIServer(t, "12/16/2022")
	useServerConfig(t, srv)

	if err := ForceUpdateSource(ctx, "WDI_FOOTNOTES", nil); !errors.Is(err, ErrUnknownSource) {
		t.Errorf("Expected ErrUnknownSource, got %v", err)
	}

	config.AppConfig.WDIURLs.DataCSV = srv.URL + "/missing.csv"
	if err := ForceUpdateSource(ctx, SourceIndicators, nil); err == nil {
		t.Error("Expected error for failed download")
	}
	v, err := database.GetDataSourceVersion(ctx, SourceIndicators)
	if err != nil {
		t.Fatalf("GetDataSourceVersion failed: %v", err)
	}
	if v != nil {
		t.Errorf("Failed refresh must not record a version, got %+v", v)
	}
}

func TestUpdateIfNeeded(t *testing.T) {
	ctx := openTestDB(t)
	srv := newWDIServer(t, "12/16/2022")
	useServerConfig(t, srv)

	if err := UpdateIfNeeded(ctx); err != nil {
		t.Fatalf("first UpdateIfNeeded failed: %v", err)
	}
	if got := srv.downloads.Load(); got != 2 {
		t.Fatalf("Expected both sources downloaded, got %d downloads", got)
	}
	v, err := database.GetDataSourceVersion(ctx, SourceCountries)
	if err != nil || v == nil || v.ReleaseDate == nil {
		t.Fatalf("Expected release date recorded, got %+v, %v", v, err)
	}
	if !v.ReleaseDate.Equal(time.Date(2022, 12, 16, 0, 0, 0, 0, time.UTC)) {
		t.Errorf("Unexpected release date %v", v.ReleaseDate)
	}

	if err := UpdateIfNeeded(ctx); err != nil {
		t.Fatalf("second UpdateIfNeeded failed: %v", err)
	}
	if got := srv.downloads.Load(); got != 2 {
		t.Errorf("Unchanged release should not download again, got %d downloads", got)
	}

	srv.released = "06/30/2023"
	if err := UpdateIfNeeded(ctx); err != nil {
		t.Fatalf("third UpdateIfNeeded failed: %v", err)
	}
	if got := srv.downloads.Load(); got != 4 {
		t.Errorf("Newer release should download both sources, got %d downloads", got)
	}

	// a newer release replaces the stored rows instead of adding to them
	count, err := database.CountIndicatorRecords(ctx)
	if err != nil {
		t.Fatalf("CountIndicatorRecords failed: %v", err)
	}
	if count != 19 {
		t.Errorf("Expected 19 stored records after three loads, got %d", count)
	}
	selected, err := SelectRecords(ctx, analysis.Policy{
		Indicators: []string{analysis.CO2PerCapita},
		Countries:  []string{"USA"},
		Years:      []int{1960, 2016},
	})
	if err != nil {
		t.Fatalf("SelectRecords failed: %v", err)
	}
	if len(selected) != 2 {
		t.Errorf("Expected 2 USA records, got %d", len(selected))
	}
}

func TestForceUpdateSource_KeepsLocalFileOnBadDownload(t *testing.T) {
	ctx := openTestDB(t)
	srv := newWDIServer(t, "12/16/2022")
	useServerConfig(t, srv)

	if err := ForceUpdateSource(ctx, SourceIndicators, nil); err != nil {
		t.Fatalf("first ForceUpdateSource failed: %v", err)
	}
	localPath := config.AppConfig.LocalCSVPaths.Data

	srv.dataBody = "<html><body>Service temporarily unavailable</body></html>"
	if err := ForceUpdateSource(ctx, SourceIndicators, nil); err == nil {
		t.Fatal("Expected error for a non-CSV response")
	}

	content, err := os.ReadFile(localPath)
	if err != nil {
		t.Fatalf("Local CSV missing after failed refresh: %v", err)
	}
	if string(content) != indicatorCSV {
		t.Errorf("Local CSV replaced by a failed download: %q", content)
	}
	if _, err := os.Stat(localPath + ".new"); !os.IsNotExist(err) {
		t.Error("Staged download should be removed after a failed load")
	}
	count, err := database.CountIndicatorRecords(ctx)
	if err != nil {
		t.Fatalf("CountIndicatorRecords failed: %v", err)
	}
	if count != 19 {
		t.Errorf("Failed refresh must keep the stored rows, got %d", count)
	}
	if _, err := LoadDatasetFromFiles(localPath, writeCountryFixture(t)); err != nil {
		t.Errorf("Local CSV no longer loads: %v", err)
	}
}

func TestStartScheduler_InvalidSpec(t *testing.T) {
	if _, err := StartScheduler(testContext(), "every tuesday"); err == nil {
		t.Error("Expected error for invalid cron spec")
	}
}
