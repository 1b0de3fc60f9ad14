package scraper

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/gewnthar/co2scope/config"
)

func TestDownloadFile(t *testing.T) {
	body := "CountryCode,CountryName,IndicatorName,Year,Value\n"
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(body))
	}))
	defer srv.Close()

	dest := filepath.Join(t.TempDir(), "nested", "data.csv")
	res, err := DownloadFile(context.Background(), srv.URL, dest, 5*time.Second)
	if err != nil {
		t.Fatalf("DownloadFile failed: %v", err)
	}

	got, err := os.ReadFile(dest)
	if err != nil {
		t.Fatalf("Downloaded file missing: %v", err)
	}
	if string(got) != body {
		t.Errorf("Unexpected content %q", got)
	}
	sum := sha256.Sum256([]byte(body))
	if res.SHA256 != hex.EncodeToString(sum[:]) {
		t.Errorf("Hash mismatch: %s", res.SHA256)
	}
	if res.Bytes != int64(len(body)) {
		t.Errorf("Expected %d bytes, got %d", len(body), res.Bytes)
	}
	if _, err := os.Stat(dest + ".part"); !os.IsNotExist(err) {
		t.Error("Temporary file left behind")
	}
}

func TestDownloadFile_BadStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "gone", http.StatusNotFound)
	}))
	defer srv.Close()

	dest := filepath.Join(t.TempDir(), "data.csv")
	if _, err := DownloadFile(context.Background(), srv.URL, dest, 5*time.Second); err == nil {
		t.Fatal("Expected an error for a 404")
	}
	if _, err := os.Stat(dest); !os.IsNotExist(err) {
		t.Error("No file should be written on failure")
	}
}

func TestDownloadIndicatorCsv_NotConfigured(t *testing.T) {
	saved := config.AppConfig
	defer func() { config.AppConfig = saved }()
	config.AppConfig = config.Config{}

	_, err := DownloadIndicatorCsv(context.Background())
	if !errors.Is(err, ErrNotConfigured) {
		t.Errorf("Expected ErrNotConfigured, got %v", err)
	}
	config.AppConfig.WDIURLs.CountryCSV = "http://example.invalid/country.csv"
	_, err = DownloadCountryCsv(context.Background())
	if !errors.Is(err, ErrNotConfigured) {
		t.Errorf("Expected ErrNotConfigured for missing path, got %v", err)
	}
}

func TestDownloadIndicatorCsv_StagedUntilPromoted(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, "CountryCode,CountryName,IndicatorName,Year,Value\nUSA,United States,CO2 emissions (kt),2016,4981300\n")
	}))
	defer srv.Close()

	saved := config.AppConfig
	defer func() { config.AppConfig = saved }()
	dest := filepath.Join(t.TempDir(), "WDIData.csv")
	if err := os.WriteFile(dest, []byte("previous"), 0644); err != nil {
		t.Fatal(err)
	}
	config.AppConfig = config.Config{
		WDIURLs:       config.WDIURLsConfig{DataCSV: srv.URL},
		LocalCSVPaths: config.LocalCSVPathsConfig{Data: dest},
		DataFreshness: config.DataFreshnessConfig{DownloadTimeout: 5 * time.Second},
	}

	res, err := DownloadIndicatorCsv(context.Background())
	if err != nil {
		t.Fatalf("DownloadIndicatorCsv failed: %v", err)
	}
	if res.LocalPath == dest || res.FinalPath() != dest {
		t.Fatalf("Expected a staged download for %s, got %+v", dest, res)
	}
	if content, _ := os.ReadFile(dest); string(content) != "previous" {
		t.Errorf("Target replaced before promotion: %q", content)
	}

	if err := res.Promote(); err != nil {
		t.Fatalf("Promote failed: %v", err)
	}
	if content, _ := os.ReadFile(dest); !strings.HasPrefix(string(content), "CountryCode") {
		t.Errorf("Target not replaced after promotion: %q", content)
	}
	if _, err := os.Stat(dest + ".new"); !os.IsNotExist(err) {
		t.Error("Staged file should be gone after promotion")
	}
}

func TestDownloadResult_Discard(t *testing.T) {
	dir := t.TempDir()
	target := filepath.Join(dir, "WDICountry.csv")
	staged := target + ".new"
	for path, content := range map[string]string{target: "good", staged: "<html>oops</html>"} {
		if err := os.WriteFile(path, []byte(content), 0644); err != nil {
			t.Fatal(err)
		}
	}

	res := &DownloadResult{LocalPath: staged, TargetPath: target}
	res.Discard()
	if _, err := os.Stat(staged); !os.IsNotExist(err) {
		t.Error("Staged file should be removed")
	}
	if content, _ := os.ReadFile(target); string(content) != "good" {
		t.Errorf("Target must be untouched, got %q", content)
	}
}
