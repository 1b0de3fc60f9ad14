// database/connection.go
package database

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"time"

	"github.com/gewnthar/co2scope/config"
	_ "github.com/go-sql-driver/mysql" // MariaDB driver
	_ "modernc.org/sqlite"             // local runs and tests
)

var (
	DB     *sql.DB
	driver string
)

// DSN builds the data source name for cfg.
func DSN(cfg config.DatabaseConfig) (string, error) {
	switch cfg.Driver {
	case "mysql":
		// username:password@protocol(address)/dbname?param=value
		return fmt.Sprintf("%s:%s@tcp(%s:%s)/%s?parseTime=true&charset=utf8mb4",
			cfg.User,
			cfg.Password,
			cfg.Host,
			cfg.Port,
			cfg.DBName,
		), nil
	case "sqlite":
		if cfg.Path == "" {
			return "", fmt.Errorf("sqlite database path is empty")
		}
		if cfg.Path == ":memory:" {
			return cfg.Path, nil
		}
		return cfg.Path + "?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)", nil
	default:
		return "", fmt.Errorf("unsupported database driver %q", cfg.Driver)
	}
}

// InitDB opens the connection pool and creates missing tables.
func InitDB(ctx context.Context, cfg config.DatabaseConfig) error {
	dsn, err := DSN(cfg)
	if err != nil {
		return err
	}

	db, err := sql.Open(cfg.Driver, dsn)
	if err != nil {
		return fmt.Errorf("failed to open database connection: %w", err)
	}

	if cfg.Driver == "sqlite" {
		// one writer; an in-memory database also lives on a single connection
		db.SetMaxOpenConns(1)
	} else {
		db.SetMaxOpenConns(25)
		db.SetMaxIdleConns(25)
		db.SetConnMaxLifetime(5 * time.Minute)
	}

	pingCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		db.Close()
		return fmt.Errorf("failed to ping database: %w", err)
	}

	DB = db
	driver = cfg.Driver
	if err := migrate(ctx); err != nil {
		CloseDB()
		return fmt.Errorf("failed to migrate database: %w", err)
	}

	log.Printf("Database: Successfully connected (%s)!", cfg.Driver)
	return nil
}

// CloseDB closes the database connection pool.
func CloseDB() {
	if DB != nil {
		DB.Close()
		DB = nil
		log.Println("Database: connection closed.")
	}
}

// Ping checks the connection, for health endpoints.
func Ping(ctx context.Context) error {
	if DB == nil {
		return fmt.Errorf("database connection is not initialized")
	}
	return DB.PingContext(ctx)
}
