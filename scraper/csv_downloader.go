// scraper/csv_downloader.go
package scraper

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/gewnthar/co2scope/config"
)

// ErrNotConfigured is returned when a URL or local path needed for a download is empty.
var ErrNotConfigured = errors.New("not configured")

// DownloadResult describes a completed download. When TargetPath is set the file
// sits at a staging LocalPath until Promote moves it over TargetPath.
type DownloadResult struct {
	LocalPath  string
	TargetPath string
	Bytes      int64
	SHA256     string
}

// FinalPath is where the file ends up once promoted.
func (r *DownloadResult) FinalPath() string {
	if r.TargetPath != "" {
		return r.TargetPath
	}
	return r.LocalPath
}

// Promote replaces TargetPath with the staged download.
func (r *DownloadResult) Promote() error {
	if r.TargetPath == "" || r.TargetPath == r.LocalPath {
		return nil
	}
	if err := os.Rename(r.LocalPath, r.TargetPath); err != nil {
		return fmt.Errorf("failed to move %s into place: %w", r.LocalPath, err)
	}
	r.LocalPath = r.TargetPath
	return nil
}

// Discard removes a staged download, leaving TargetPath untouched.
func (r *DownloadResult) Discard() {
	if r.TargetPath == "" || r.TargetPath == r.LocalPath {
		return
	}
	if err := os.Remove(r.LocalPath); err != nil && !os.IsNotExist(err) {
		log.Printf("ERROR Scraper: Failed to remove staged file %s: %v\n", r.LocalPath, err)
	}
}

// DownloadFile downloads url to localSavePath, hashing the content on the way.
// The file is written to a temporary name first and renamed once complete.
func DownloadFile(ctx context.Context, url, localSavePath string, timeout time.Duration) (*DownloadResult, error) {
	log.Printf("Scraper: Attempting to download file from URL: %s to local path: %s\n", url, localSavePath)

	client := http.Client{Timeout: timeout}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build GET request for %s: %w", url, err)
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to make GET request to %s: %w", url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("failed to download file from %s: received status code %d", url, resp.StatusCode)
	}

	dir := filepath.Dir(localSavePath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create directory %s: %w", dir, err)
	}

	tmpPath := localSavePath + ".part"
	outFile, err := os.Create(tmpPath)
	if err != nil {
		return nil, fmt.Errorf("failed to create local file %s: %w", tmpPath, err)
	}

	hasher := sha256.New()
	n, err := io.Copy(io.MultiWriter(outFile, hasher), resp.Body)
	closeErr := outFile.Close()
	if err == nil {
		err = closeErr
	}
	if err != nil {
		os.Remove(tmpPath)
		return nil, fmt.Errorf("failed to copy downloaded content to %s: %w", tmpPath, err)
	}
	if err := os.Rename(tmpPath, localSavePath); err != nil {
		os.Remove(tmpPath)
		return nil, fmt.Errorf("failed to move %s into place: %w", tmpPath, err)
	}

	log.Printf("Scraper: Successfully downloaded %s to %s (%d bytes)\n", url, localSavePath, n)
	return &DownloadResult{
		LocalPath: localSavePath,
		Bytes:     n,
		SHA256:    hex.EncodeToString(hasher.Sum(nil)),
	}, nil
}

// DownloadIndicatorCsv downloads the WDI indicator CSV configured in AppConfig.
// The result is staged; call Promote or Discard.
func DownloadIndicatorCsv(ctx context.Context) (*DownloadResult, error) {
	return downloadConfigured(ctx, "indicator", config.AppConfig.WDIURLs.DataCSV, config.AppConfig.LocalCSVPaths.Data)
}

// DownloadCountryCsv downloads the WDI country metadata CSV configured in AppConfig.
// The result is staged; call Promote or Discard.
func DownloadCountryCsv(ctx context.Context) (*DownloadResult, error) {
	return downloadConfigured(ctx, "country", config.AppConfig.WDIURLs.CountryCSV, config.AppConfig.LocalCSVPaths.Country)
}

func downloadConfigured(ctx context.Context, kind, url, localPath string) (*DownloadResult, error) {
	if url == "" {
		return nil, fmt.Errorf("%s CSV URL: %w", kind, ErrNotConfigured)
	}
	if localPath == "" {
		return nil, fmt.Errorf("local save path for %s CSV: %w", kind, ErrNotConfigured)
	}
	// staged next to the target; the caller promotes it once the file has loaded
	res, err := DownloadFile(ctx, url, localPath+".new", config.AppConfig.DataFreshness.DownloadTimeout)
	if err != nil {
		return nil, fmt.Errorf("failed to download %s CSV: %w", kind, err)
	}
	res.TargetPath = localPath
	return res, nil
}
