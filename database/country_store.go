// database/country_store.go
package database

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"time"

	"github.com/gewnthar/co2scope/models"
)

// SaveCountryMeta replaces the country metadata table with meta.
func SaveCountryMeta(ctx context.Context, meta []models.CountryMeta, sourceFile string) error {
	if DB == nil {
		return fmt.Errorf("database connection is not initialized")
	}
	if len(meta) == 0 {
		log.Println("Database: No country rows provided to save.")
		return nil
	}

	tx, err := DB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction for country meta: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, "DELETE FROM country_meta"); err != nil {
		return fmt.Errorf("failed to clear country meta: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO country_meta (
			country_code, short_name, region, income_group, currency_unit, source_file, updated_at
		) VALUES (?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare country insert statement: %w", err)
	}
	defer stmt.Close()

	now := time.Now().UTC()
	seen := make(map[string]bool, len(meta))
	for _, m := range meta {
		if m.CountryCode == "" || seen[m.CountryCode] {
			continue
		}
		seen[m.CountryCode] = true

		var currency sql.NullString
		if m.CurrencyUnit != nil {
			currency = sql.NullString{String: *m.CurrencyUnit, Valid: true}
		}
		if _, err := stmt.ExecContext(ctx, m.CountryCode, m.ShortName, m.Region, m.IncomeGroup, currency, sourceFile, now); err != nil {
			return fmt.Errorf("failed to insert country %s: %w", m.CountryCode, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction for country meta: %w", err)
	}
	log.Printf("Database: Successfully saved %d countries from source: %s\n", len(seen), sourceFile)
	return nil
}

// GetCountryMeta returns every stored country row, ordered by code.
func GetCountryMeta(ctx context.Context) ([]models.CountryMeta, error) {
	if DB == nil {
		return nil, fmt.Errorf("database connection is not initialized")
	}
	rows, err := DB.QueryContext(ctx, `
		SELECT country_code, short_name, region, income_group, currency_unit
		FROM country_meta
		ORDER BY country_code
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to query country meta: %w", err)
	}
	defer rows.Close()

	var meta []models.CountryMeta
	for rows.Next() {
		var m models.CountryMeta
		var currency sql.NullString
		if err := rows.Scan(&m.CountryCode, &m.ShortName, &m.Region, &m.IncomeGroup, &currency); err != nil {
			return nil, fmt.Errorf("failed to scan country meta row: %w", err)
		}
		if currency.Valid {
			c := currency.String
			m.CurrencyUnit = &c
		}
		meta = append(meta, m)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating country meta rows: %w", err)
	}
	return meta, nil
}
