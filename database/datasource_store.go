// database/datasource_store.go
package database

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"time"

	"github.com/gewnthar/co2scope/models"
)

// LogDataSourceVersionUpdate inserts or updates the data_source_versions row for
// v.SourceName. Nil time pointers are stored as NULL.
func LogDataSourceVersionUpdate(ctx context.Context, v models.DataSourceVersion) error {
	if DB == nil {
		return fmt.Errorf("database connection is not initialized")
	}

	upsert := `
		ON DUPLICATE KEY UPDATE
			source_file_url = VALUES(source_file_url),
			last_downloaded_filename = VALUES(last_downloaded_filename),
			release_date = VALUES(release_date),
			last_checked_on_catalog = VALUES(last_checked_on_catalog),
			last_successfully_downloaded_at = VALUES(last_successfully_downloaded_at),
			row_count = VALUES(row_count),
			data_hash = VALUES(data_hash),
			updated_at = VALUES(updated_at)`
	if driver == "sqlite" {
		upsert = `
		ON CONFLICT(source_name) DO UPDATE SET
			source_file_url = excluded.source_file_url,
			last_downloaded_filename = excluded.last_downloaded_filename,
			release_date = excluded.release_date,
			last_checked_on_catalog = excluded.last_checked_on_catalog,
			last_successfully_downloaded_at = excluded.last_successfully_downloaded_at,
			row_count = excluded.row_count,
			data_hash = excluded.data_hash,
			updated_at = excluded.updated_at`
	}

	query := `
		INSERT INTO data_source_versions (
			source_name, source_file_url, last_downloaded_filename,
			release_date, last_checked_on_catalog, last_successfully_downloaded_at,
			row_count, data_hash, created_at, updated_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)` + upsert

	now := time.Now().UTC()
	_, err := DB.ExecContext(ctx, query,
		v.SourceName, v.SourceFileURL, nullString(v.LastDownloadedFilename),
		nullTime(v.ReleaseDate), nullTime(v.LastCheckedOnCatalog), nullTime(v.LastSuccessfullyDownloadedAt),
		v.RowCount, nullString(v.DataHash), now, now,
	)
	if err != nil {
		log.Printf("ERROR Database: Failed to log/update data source version for '%s': %v", v.SourceName, err)
		return fmt.Errorf("failed to log data source version for %s: %w", v.SourceName, err)
	}

	log.Printf("Database: Successfully logged/updated data source version for '%s'. Release: %v, Rows: %d\n",
		v.SourceName, v.ReleaseDate, v.RowCount)
	return nil
}

// GetDataSourceVersions retrieves all records from the data_source_versions table.
func GetDataSourceVersions(ctx context.Context) ([]models.DataSourceVersion, error) {
	if DB == nil {
		return nil, fmt.Errorf("database connection is not initialized")
	}

	rows, err := DB.QueryContext(ctx, `
		SELECT id, source_name, source_file_url, last_downloaded_filename,
		       release_date, last_checked_on_catalog, last_successfully_downloaded_at,
		       row_count, data_hash, created_at, updated_at
		FROM data_source_versions
		ORDER BY source_name
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to query data_source_versions: %w", err)
	}
	defer rows.Close()

	var versions []models.DataSourceVersion
	for rows.Next() {
		var v models.DataSourceVersion
		var release, lastChecked, lastDownloaded sql.NullTime
		var lastDownloadedFilename, dataHash sql.NullString

		err := rows.Scan(
			&v.ID, &v.SourceName, &v.SourceFileURL, &lastDownloadedFilename,
			&release, &lastChecked, &lastDownloaded,
			&v.RowCount, &dataHash, &v.CreatedAt, &v.UpdatedAt,
		)
		if err != nil {
			log.Printf("ERROR Database: Failed to scan data_source_version row: %v", err)
			continue
		}
		v.LastDownloadedFilename = lastDownloadedFilename.String
		v.DataHash = dataHash.String
		v.ReleaseDate = timePtr(release)
		v.LastCheckedOnCatalog = timePtr(lastChecked)
		v.LastSuccessfullyDownloadedAt = timePtr(lastDownloaded)
		versions = append(versions, v)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating data_source_version rows: %w", err)
	}
	return versions, nil
}

// GetDataSourceVersion returns the row for sourceName, or nil when none exists.
func GetDataSourceVersion(ctx context.Context, sourceName string) (*models.DataSourceVersion, error) {
	versions, err := GetDataSourceVersions(ctx)
	if err != nil {
		return nil, err
	}
	for i := range versions {
		if versions[i].SourceName == sourceName {
			return &versions[i], nil
		}
	}
	return nil, nil
}

func nullTime(t *time.Time) sql.NullTime {
	if t == nil {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: t.UTC(), Valid: true}
}

func timePtr(t sql.NullTime) *time.Time {
	if !t.Valid {
		return nil
	}
	v := t.Time
	return &v
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
