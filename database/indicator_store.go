// database/indicator_store.go
package database

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/gewnthar/co2scope/models"
)

// SaveIndicatorRecords replaces the indicator table with records, in a single
// transaction. sourceFile is kept on each row for provenance only; the table
// always holds exactly one load.
func SaveIndicatorRecords(ctx context.Context, records []models.IndicatorRecord, sourceFile string) error {
	if DB == nil {
		return fmt.Errorf("database connection is not initialized")
	}
	if len(records) == 0 {
		log.Println("Database: No indicator records provided to save.")
		return nil
	}

	tx, err := DB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction for indicator records: %w", err)
	}
	defer tx.Rollback()

	// Step 1: clear the previous load, whatever release it came from
	res, err := tx.ExecContext(ctx, "DELETE FROM indicator_records")
	if err != nil {
		return fmt.Errorf("failed to clear indicator records: %w", err)
	}
	if cleared, err := res.RowsAffected(); err == nil {
		log.Printf("Database: Cleared %d existing indicator records before loading %s\n", cleared, sourceFile)
	}

	// Step 2: insert
	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO indicator_records (
			country_code, country_name, indicator_name, indicator_code,
			year, value, source_file, created_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare indicator insert statement: %w", err)
	}
	defer stmt.Close()

	now := time.Now().UTC()
	for _, r := range records {
		var value sql.NullFloat64
		if r.Value != nil {
			value = sql.NullFloat64{Float64: *r.Value, Valid: true}
		}
		_, err := stmt.ExecContext(ctx,
			r.CountryCode, r.CountryName, r.IndicatorName, r.IndicatorCode,
			r.Year, value, sourceFile, now,
		)
		if err != nil {
			log.Printf("ERROR Database: saving indicator record: %+v, Error: %v", r, err)
			return fmt.Errorf("failed to insert indicator record %s/%s/%d: %w", r.CountryCode, r.IndicatorName, r.Year, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction for indicator records: %w", err)
	}

	log.Printf("Database: Successfully saved %d indicator records from source: %s\n", len(records), sourceFile)
	return nil
}

// GetIndicatorRecords returns the stored records for the given countries and years,
// ordered by id (load order). Empty countries or years means no restriction on that
// dimension. Indicator matching is left to the caller: LIKE would treat '_' and '%'
// in labels as wildcards.
func GetIndicatorRecords(ctx context.Context, countries []string, years []int) ([]models.IndicatorRecord, error) {
	if DB == nil {
		return nil, fmt.Errorf("database connection is not initialized")
	}

	query := `
		SELECT id, country_code, country_name, indicator_name, indicator_code, year, value
		FROM indicator_records`
	var where []string
	var args []interface{}
	if len(countries) > 0 {
		where = append(where, "country_code IN ("+placeholders(len(countries))+")")
		for _, c := range countries {
			args = append(args, c)
		}
	}
	if len(years) > 0 {
		where = append(where, "year IN ("+placeholders(len(years))+")")
		for _, y := range years {
			args = append(args, y)
		}
	}
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	query += " ORDER BY id"

	rows, err := DB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query indicator records: %w", err)
	}
	defer rows.Close()

	var records []models.IndicatorRecord
	for rows.Next() {
		var r models.IndicatorRecord
		var value sql.NullFloat64
		if err := rows.Scan(&r.ID, &r.CountryCode, &r.CountryName, &r.IndicatorName, &r.IndicatorCode, &r.Year, &value); err != nil {
			return nil, fmt.Errorf("failed to scan indicator record row: %w", err)
		}
		if value.Valid {
			v := value.Float64
			r.Value = &v
		}
		records = append(records, r)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating indicator record rows: %w", err)
	}
	log.Printf("Database: Retrieved %d indicator records (%d countries, %d years filter).\n", len(records), len(countries), len(years))
	return records, nil
}

// CountIndicatorRecords returns the number of stored indicator rows.
func CountIndicatorRecords(ctx context.Context) (int, error) {
	if DB == nil {
		return 0, fmt.Errorf("database connection is not initialized")
	}
	var n int
	if err := DB.QueryRowContext(ctx, "SELECT COUNT(*) FROM indicator_records").Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count indicator records: %w", err)
	}
	return n, nil
}

func placeholders(n int) string {
	if n <= 0 {
		return ""
	}
	return strings.TrimSuffix(strings.Repeat("?, ", n), ", ")
}
