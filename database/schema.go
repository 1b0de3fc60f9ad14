// database/schema.go
package database

import (
	"context"
	"fmt"
)

var mysqlSchema = []string{
	`CREATE TABLE IF NOT EXISTS indicator_records (
		id BIGINT AUTO_INCREMENT PRIMARY KEY,
		country_code VARCHAR(8) NOT NULL,
		country_name VARCHAR(128) NOT NULL,
		indicator_name VARCHAR(255) NOT NULL,
		indicator_code VARCHAR(64) NOT NULL DEFAULT '',
		year INT NOT NULL,
		value DOUBLE NULL,
		source_file VARCHAR(255) NOT NULL,
		created_at DATETIME NOT NULL,
		INDEX idx_indicator_country_year (country_code, year),
		INDEX idx_indicator_source (source_file)
	) CHARACTER SET utf8mb4`,
	`CREATE TABLE IF NOT EXISTS country_meta (
		country_code VARCHAR(8) PRIMARY KEY,
		short_name VARCHAR(128) NOT NULL DEFAULT '',
		region VARCHAR(128) NOT NULL DEFAULT '',
		income_group VARCHAR(64) NOT NULL DEFAULT '',
		currency_unit VARCHAR(128) NULL,
		source_file VARCHAR(255) NOT NULL,
		updated_at DATETIME NOT NULL
	) CHARACTER SET utf8mb4`,
	`CREATE TABLE IF NOT EXISTS data_source_versions (
		id INT AUTO_INCREMENT PRIMARY KEY,
		source_name VARCHAR(64) NOT NULL UNIQUE,
		source_file_url VARCHAR(512) NOT NULL,
		last_downloaded_filename VARCHAR(255) NULL,
		release_date DATETIME NULL,
		last_checked_on_catalog DATETIME NULL,
		last_successfully_downloaded_at DATETIME NULL,
		row_count INT NOT NULL DEFAULT 0,
		data_hash VARCHAR(64) NULL,
		created_at DATETIME NOT NULL,
		updated_at DATETIME NOT NULL
	) CHARACTER SET utf8mb4`,
}

var sqliteSchema = []string{
	`CREATE TABLE IF NOT EXISTS indicator_records (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		country_code TEXT NOT NULL,
		country_name TEXT NOT NULL,
		indicator_name TEXT NOT NULL,
		indicator_code TEXT NOT NULL DEFAULT '',
		year INTEGER NOT NULL,
		value REAL,
		source_file TEXT NOT NULL,
		created_at DATETIME NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS idx_indicator_country_year ON indicator_records(country_code, year)`,
	`CREATE INDEX IF NOT EXISTS idx_indicator_source ON indicator_records(source_file)`,
	`CREATE TABLE IF NOT EXISTS country_meta (
		country_code TEXT PRIMARY KEY,
		short_name TEXT NOT NULL DEFAULT '',
		region TEXT NOT NULL DEFAULT '',
		income_group TEXT NOT NULL DEFAULT '',
		currency_unit TEXT,
		source_file TEXT NOT NULL,
		updated_at DATETIME NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS data_source_versions (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		source_name TEXT NOT NULL UNIQUE,
		source_file_url TEXT NOT NULL,
		last_downloaded_filename TEXT,
		release_date DATETIME,
		last_checked_on_catalog DATETIME,
		last_successfully_downloaded_at DATETIME,
		row_count INTEGER NOT NULL DEFAULT 0,
		data_hash TEXT,
		created_at DATETIME NOT NULL,
		updated_at DATETIME NOT NULL
	)`,
}

func migrate(ctx context.Context) error {
	statements := mysqlSchema
	if driver == "sqlite" {
		statements = sqliteSchema
	}
	for _, stmt := range statements {
		if _, err := DB.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("schema statement failed: %w", err)
		}
	}
	return nil
}
