// models/meta.go
package models

import "time"

// DataSourceVersion tracks the freshness of a downloaded WDI file.
type DataSourceVersion struct {
	ID                           int        `db:"id" json:"id"`
	SourceName                   string     `db:"source_name" json:"source_name"` // "WDI_INDICATORS", "WDI_COUNTRIES"
	SourceFileURL                string     `db:"source_file_url" json:"source_file_url"`
	LastDownloadedFilename       string     `db:"last_downloaded_filename" json:"last_downloaded_filename,omitempty"`
	ReleaseDate                  *time.Time `db:"release_date" json:"release_date,omitempty"`
	LastCheckedOnCatalog         *time.Time `db:"last_checked_on_catalog" json:"last_checked_on_catalog,omitempty"`
	LastSuccessfullyDownloadedAt *time.Time `db:"last_successfully_downloaded_at" json:"last_successfully_downloaded_at,omitempty"`
	RowCount                     int        `db:"row_count" json:"row_count"`
	DataHash                     string     `db:"data_hash" json:"data_hash,omitempty"` // SHA-256 of the file
	CreatedAt                    time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt                    time.Time  `db:"updated_at" json:"updated_at"`
}

// ReleaseInfo holds the release date scraped from the WDI catalog page.
type ReleaseInfo struct {
	SourceName    string
	ReleaseDate   time.Time
	RawDateString string    // the text the date was parsed from
	LastChecked   time.Time // when the catalog page was scraped
}
