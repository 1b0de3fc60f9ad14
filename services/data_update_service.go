// services/data_update_service.go
package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"time"

	"github.com/gewnthar/co2scope/config"
	"github.com/gewnthar/co2scope/database"
	"github.com/gewnthar/co2scope/models"
	"github.com/gewnthar/co2scope/scraper"
	"github.com/robfig/cron/v3"
)

const (
	SourceIndicators = "WDI_INDICATORS"
	SourceCountries  = "WDI_COUNTRIES"
)

// Sources lists the data sources in refresh order. Country metadata goes first
// so aggregate exclusion never runs against a stale country table.
var Sources = []string{SourceCountries, SourceIndicators}

// ErrUnknownSource is returned for a source name not in Sources.
var ErrUnknownSource = errors.New("unknown data source")

// ForceUpdateSource downloads, parses and stores one source, then records the new
// version. release may be nil when the catalog page was not consulted.
func ForceUpdateSource(ctx context.Context, sourceName string, release *models.ReleaseInfo) error {
	log.Printf("Service: Forcing update for %s data...\n", sourceName)

	var csvURL string
	var downloadFunc func(context.Context) (*scraper.DownloadResult, error)
	var loadFunc func(ctx context.Context, path, sourceFile string) (int, error)

	switch sourceName {
	case SourceIndicators:
		csvURL = config.AppConfig.WDIURLs.DataCSV
		downloadFunc = scraper.DownloadIndicatorCsv
		loadFunc = func(ctx context.Context, path, sf string) (int, error) {
			records, err := scraper.LoadIndicatorFile(path)
			if err != nil {
				return 0, err
			}
			return len(records), database.SaveIndicatorRecords(ctx, records, sf)
		}
	case SourceCountries:
		csvURL = config.AppConfig.WDIURLs.CountryCSV
		downloadFunc = scraper.DownloadCountryCsv
		loadFunc = func(ctx context.Context, path, sf string) (int, error) {
			meta, err := scraper.LoadCountryFile(path)
			if err != nil {
				return 0, err
			}
			return len(meta), database.SaveCountryMeta(ctx, meta, sf)
		}
	default:
		return fmt.Errorf("%w: %s", ErrUnknownSource, sourceName)
	}

	if prev, err := database.GetDataSourceVersion(ctx, sourceName); err != nil {
		log.Printf("WARN Service: Could not read previous version of %s: %v\n", sourceName, err)
	} else if prev != nil && release == nil && prev.ReleaseDate != nil {
		// A manual refresh keeps the last known release date.
		release = &models.ReleaseInfo{SourceName: sourceName, ReleaseDate: *prev.ReleaseDate}
	}

	log.Printf("Service: Downloading %s CSV from %s\n", sourceName, csvURL)
	dl, err := downloadFunc(ctx)
	if err != nil {
		return fmt.Errorf("failed to download %s CSV: %w", sourceName, err)
	}
	log.Printf("Service: Downloaded %s to %s (%d bytes, sha256 %s)\n", sourceName, dl.LocalPath, dl.Bytes, dl.SHA256)

	sourceFileForDB := filepath.Base(dl.FinalPath())
	if release != nil {
		sourceFileForDB = fmt.Sprintf("%s_%s", sourceFileForDB, release.ReleaseDate.Format("20060102"))
	}

	// the staged file only replaces the local copy once it has parsed and stored
	rows, err := loadFunc(ctx, dl.LocalPath, sourceFileForDB)
	if err != nil {
		dl.Discard()
		return fmt.Errorf("failed to load %s (source file: %s): %w", sourceName, sourceFileForDB, err)
	}
	if err := dl.Promote(); err != nil {
		return fmt.Errorf("failed to keep downloaded %s CSV: %w", sourceName, err)
	}

	now := time.Now().UTC()
	version := models.DataSourceVersion{
		SourceName:                   sourceName,
		SourceFileURL:                csvURL,
		LastDownloadedFilename:       sourceFileForDB,
		LastSuccessfullyDownloadedAt: &now,
		RowCount:                     rows,
		DataHash:                     dl.SHA256,
	}
	if release != nil {
		released := release.ReleaseDate
		version.ReleaseDate = &released
		if !release.LastChecked.IsZero() {
			checked := release.LastChecked
			version.LastCheckedOnCatalog = &checked
		}
	}
	if err := database.LogDataSourceVersionUpdate(ctx, version); err != nil {
		return fmt.Errorf("failed to record version for %s: %w", sourceName, err)
	}

	log.Printf("Service: Successfully forced update for %s data: %d rows.\n", sourceName, rows)
	return nil
}

// ForceUpdateAll refreshes every source in order, stopping at the first failure.
func ForceUpdateAll(ctx context.Context) error {
	for _, name := range Sources {
		if err := ForceUpdateSource(ctx, name, nil); err != nil {
			return err
		}
	}
	return nil
}

// UpdateIfNeeded scrapes the catalog page and refreshes every source whose stored
// release date is older than the published one, or that was never loaded.
func UpdateIfNeeded(ctx context.Context) error {
	cfg := config.AppConfig
	log.Printf("Service: Checking if update is needed (selector: '%s')...\n", cfg.ScraperSelectors.ReleaseDate)

	release, err := scraper.GetReleaseInfo(ctx, "WDI", cfg.WDIURLs.CatalogPage, cfg.ScraperSelectors.ReleaseDate, cfg.DataFreshness.CatalogCheckTimeout)
	if err != nil {
		return fmt.Errorf("failed to check release date: %w", err)
	}
	log.Printf("Service: Current WDI release date: %s\n", release.ReleaseDate.Format("2006-01-02"))

	for _, name := range Sources {
		prev, err := database.GetDataSourceVersion(ctx, name)
		if err != nil {
			return err
		}
		if !updateNeeded(prev, release.ReleaseDate) {
			log.Printf("Service: No update deemed necessary for %s.\n", name)
			continue
		}
		log.Printf("Service: Update detected as needed for %s.\n", name)
		info := *release
		info.SourceName = name
		if err := ForceUpdateSource(ctx, name, &info); err != nil {
			return err
		}
	}
	return nil
}

func updateNeeded(prev *models.DataSourceVersion, released time.Time) bool {
	if prev == nil || prev.ReleaseDate == nil {
		return true
	}
	return released.After(*prev.ReleaseDate)
}

// StartScheduler runs UpdateIfNeeded on spec until ctx is done. A failed run is
// logged; the next one tries again.
func StartScheduler(ctx context.Context, spec string) (*cron.Cron, error) {
	c := cron.New(cron.WithLogger(cron.VerbosePrintfLogger(log.New(os.Stderr, "cron: ", log.LstdFlags))))
	_, err := c.AddFunc(spec, func() {
		runCtx, cancel := context.WithTimeout(ctx, config.AppConfig.DataFreshness.DownloadTimeout*2)
		defer cancel()
		if err := UpdateIfNeeded(runCtx); err != nil {
			log.Printf("ERROR Service: Scheduled update failed: %v\n", err)
		}
	})
	if err != nil {
		return nil, fmt.Errorf("invalid check schedule %q: %w", spec, err)
	}
	c.Start()
	log.Printf("Service: Release check scheduled (%s).\n", spec)

	go func() {
		<-ctx.Done()
		<-c.Stop().Done()
		log.Println("Service: Release check scheduler stopped.")
	}()
	return c, nil
}
