// config/config.go
package config

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/gewnthar/co2scope/analysis"
	"github.com/gewnthar/co2scope/utils"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

type ServerConfig struct {
	Port string `yaml:"port"`
}

type DatabaseConfig struct {
	Driver   string `yaml:"driver"` // "mysql" or "sqlite"
	Host     string `yaml:"host"`
	Port     string `yaml:"port"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	DBName   string `yaml:"dbname"`
	Path     string `yaml:"path"` // sqlite file, ":memory:" allowed
}

type WDIURLsConfig struct {
	DataCSV     string `yaml:"data_csv"`
	CountryCSV  string `yaml:"country_csv"`
	CatalogPage string `yaml:"catalog_page"`
}

type LocalCSVPathsConfig struct {
	Data    string `yaml:"data"`
	Country string `yaml:"country"`
}

type DataFreshnessConfig struct {
	CheckSchedule       string `yaml:"check_schedule"` // cron spec for serve mode
	DownloadTimeoutStr  string `yaml:"download_timeout"`
	DownloadTimeout     time.Duration
	CatalogCheckTimeout time.Duration
}

type ScraperSelectorsConfig struct {
	ReleaseDate string `yaml:"release_date"`
}

type AnalysisConfig struct {
	Countries  []string `yaml:"countries"`
	Years      []int    `yaml:"years"`
	TrendYears []int    `yaml:"trend_years"`
	SectorYear int      `yaml:"sector_year"`
	TopN       int      `yaml:"top_n"`
	OutputDir  string   `yaml:"output_dir"`
}

type Config struct {
	Server           ServerConfig           `yaml:"server"`
	Database         DatabaseConfig         `yaml:"database"`
	WDIURLs          WDIURLsConfig          `yaml:"wdi_urls"`
	LocalCSVPaths    LocalCSVPathsConfig    `yaml:"local_csv_paths"`
	DataFreshness    DataFreshnessConfig    `yaml:"data_freshness"`
	ScraperSelectors ScraperSelectorsConfig `yaml:"scraper_selectors"`
	Analysis         AnalysisConfig         `yaml:"analysis"`
}

var AppConfig Config

// FindConfigPath returns the first config.yaml found in the usual locations.
func FindConfigPath() (string, error) {
	if p := os.Getenv("WDI_CONFIG"); p != "" {
		return p, nil
	}
	potentialPaths := []string{
		"config/config.yaml", // running from the repo root
		"config.yaml",        // running from config/
	}
	for _, p := range potentialPaths {
		if _, err := os.Stat(p); err == nil {
			return p, nil
		}
	}
	return "", fmt.Errorf("config.yaml not found in standard locations")
}

// LoadConfig reads the YAML file at configPath into AppConfig, then applies
// .env and WDI_* environment overrides and fills defaults.
func LoadConfig(configPath string) error {
	file, err := os.ReadFile(configPath)
	if err != nil {
		return fmt.Errorf("failed to read config file: %w", err)
	}

	cfg, err := Parse(file)
	if err != nil {
		return err
	}

	// .env is optional; a missing file is not an error.
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		log.Printf("WARN Config: could not load .env: %v", err)
	}
	applyEnv(&cfg)

	if err := finalize(&cfg); err != nil {
		return err
	}
	AppConfig = cfg
	return nil
}

// Parse decodes YAML config bytes and fills defaults, without touching the environment.
func Parse(data []byte) (Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	return cfg, finalize(&cfg)
}

func applyEnv(cfg *Config) {
	overrides := map[string]*string{
		"WDI_SERVER_PORT":  &cfg.Server.Port,
		"WDI_DB_DRIVER":    &cfg.Database.Driver,
		"WDI_DB_HOST":      &cfg.Database.Host,
		"WDI_DB_PORT":      &cfg.Database.Port,
		"WDI_DB_USER":      &cfg.Database.User,
		"WDI_DB_PASSWORD":  &cfg.Database.Password,
		"WDI_DB_NAME":      &cfg.Database.DBName,
		"WDI_DB_PATH":      &cfg.Database.Path,
		"WDI_DATA_CSV":     &cfg.LocalCSVPaths.Data,
		"WDI_COUNTRY_CSV":  &cfg.LocalCSVPaths.Country,
		"WDI_OUTPUT_DIR":   &cfg.Analysis.OutputDir,
		"WDI_DATA_URL":     &cfg.WDIURLs.DataCSV,
		"WDI_COUNTRY_URL":  &cfg.WDIURLs.CountryCSV,
		"WDI_CATALOG_PAGE": &cfg.WDIURLs.CatalogPage,
	}
	for key, target := range overrides {
		if v, ok := os.LookupEnv(key); ok {
			*target = v
		}
	}
	if v, ok := os.LookupEnv("WDI_COUNTRIES"); ok {
		cfg.Analysis.Countries = utils.ParseCountryList(v)
	}
}

func finalize(cfg *Config) error {
	if cfg.Server.Port == "" {
		cfg.Server.Port = "8080"
	}
	if cfg.Database.Driver == "" {
		cfg.Database.Driver = "sqlite"
	}
	cfg.Database.Driver = strings.ToLower(cfg.Database.Driver)
	if cfg.Database.Driver == "sqlite" && cfg.Database.Path == "" {
		cfg.Database.Path = "./temp_data/wdi.db"
	}

	var err error
	if cfg.DataFreshness.DownloadTimeoutStr != "" {
		cfg.DataFreshness.DownloadTimeout, err = time.ParseDuration(cfg.DataFreshness.DownloadTimeoutStr)
		if err != nil {
			return fmt.Errorf("failed to parse DownloadTimeout: %w", err)
		}
	} else {
		cfg.DataFreshness.DownloadTimeout = 10 * time.Minute // the indicator file is large
	}
	cfg.DataFreshness.CatalogCheckTimeout = 20 * time.Second
	if cfg.DataFreshness.CheckSchedule == "" {
		cfg.DataFreshness.CheckSchedule = "@daily"
	}

	a := &cfg.Analysis
	if len(a.Countries) == 0 {
		a.Countries = append([]string(nil), analysis.DefaultCountries...)
	}
	a.Countries = utils.NormalizeCountryCodes(a.Countries)
	if len(a.Years) == 0 {
		a.Years = append([]int(nil), analysis.DefaultYears...)
	}
	if len(a.TrendYears) == 0 {
		a.TrendYears = append([]int(nil), analysis.TrendYears...)
	}
	if a.SectorYear == 0 {
		a.SectorYear = analysis.SectorYear
	}
	if a.TopN <= 0 {
		a.TopN = 10
	}
	if a.OutputDir == "" {
		a.OutputDir = "./output"
	}
	return nil
}

// EnsureDirs creates the directories that hold downloaded CSVs, the sqlite file
// and the analysis output.
func EnsureDirs(cfg Config) error {
	paths := []string{cfg.LocalCSVPaths.Data, cfg.LocalCSVPaths.Country}
	if cfg.Database.Driver == "sqlite" && cfg.Database.Path != ":memory:" {
		paths = append(paths, cfg.Database.Path)
	}
	for _, p := range paths {
		if p == "" {
			continue
		}
		if err := os.MkdirAll(filepath.Dir(p), 0755); err != nil {
			return fmt.Errorf("failed to create directory for %s: %w", p, err)
		}
	}
	if err := os.MkdirAll(cfg.Analysis.OutputDir, 0755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}
	return nil
}
