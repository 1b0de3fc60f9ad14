package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestParse_Defaults(t *testing.T) {
	cfg, err := Parse([]byte("server:\n  port: \"9000\"\n"))
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	if cfg.Server.Port != "9000" {
		t.Errorf("Expected port 9000, got %s", cfg.Server.Port)
	}
	if cfg.Database.Driver != "sqlite" {
		t.Errorf("Expected sqlite default driver, got %s", cfg.Database.Driver)
	}
	if len(cfg.Analysis.Countries) != 10 {
		t.Errorf("Expected 10 default countries, got %d", len(cfg.Analysis.Countries))
	}
	if cfg.Analysis.SectorYear != 2014 {
		t.Errorf("Expected sector year 2014, got %d", cfg.Analysis.SectorYear)
	}
	if cfg.DataFreshness.DownloadTimeout != 10*time.Minute {
		t.Errorf("Expected 10m download timeout, got %v", cfg.DataFreshness.DownloadTimeout)
	}
}

func TestParse_Values(t *testing.T) {
	data := []byte(`
database:
  driver: MySQL
  host: db
analysis:
  countries: [" usa", "chn "]
  years: [2000]
data_freshness:
  download_timeout: "90s"
`)
	cfg, err := Parse(data)
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	if cfg.Database.Driver != "mysql" {
		t.Errorf("Expected lower-cased driver, got %s", cfg.Database.Driver)
	}
	if cfg.Database.Path != "" {
		t.Errorf("mysql config should not get a sqlite path, got %q", cfg.Database.Path)
	}
	if got := cfg.Analysis.Countries; len(got) != 2 || got[0] != "USA" || got[1] != "CHN" {
		t.Errorf("Expected normalized countries, got %v", got)
	}
	if cfg.DataFreshness.DownloadTimeout != 90*time.Second {
		t.Errorf("Expected 90s, got %v", cfg.DataFreshness.DownloadTimeout)
	}
}

func TestParse_Errors(t *testing.T) {
	tests := []struct {
		name string
		data string
	}{
		{"bad yaml", "server: [unclosed"},
		{"bad duration", "data_freshness:\n  download_timeout: soon\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := Parse([]byte(tt.data)); err == nil {
				t.Error("Expected an error")
			}
		})
	}
}

func TestLoadConfig_EnvOverrides(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	if err := os.WriteFile(path, []byte("server:\n  port: \"8080\"\n"), 0644); err != nil {
		t.Fatal(err)
	}
	t.Setenv("WDI_SERVER_PORT", "7070")
	t.Setenv("WDI_COUNTRIES", "usa, gbr")

	if err := LoadConfig(path); err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}
	if AppConfig.Server.Port != "7070" {
		t.Errorf("Expected env port 7070, got %s", AppConfig.Server.Port)
	}
	if got := AppConfig.Analysis.Countries; len(got) != 2 || got[1] != "GBR" {
		t.Errorf("Expected env countries, got %v", got)
	}
}

func TestLoadConfig_MissingFile(t *testing.T) {
	if err := LoadConfig(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Error("Expected an error for a missing file")
	}
}

func TestEnsureDirs(t *testing.T) {
	dir := t.TempDir()
	cfg, _ := Parse(nil)
	cfg.LocalCSVPaths.Data = filepath.Join(dir, "csv", "data.csv")
	cfg.Database.Path = filepath.Join(dir, "db", "wdi.db")
	cfg.Analysis.OutputDir = filepath.Join(dir, "out")

	if err := EnsureDirs(cfg); err != nil {
		t.Fatalf("EnsureDirs failed: %v", err)
	}
	for _, d := range []string{"csv", "db", "out"} {
		if _, err := os.Stat(filepath.Join(dir, d)); err != nil {
			t.Errorf("Expected %s to exist: %v", d, err)
		}
	}
}
