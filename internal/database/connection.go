package database

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"

	"github.com/Capstone-E1/soilsense_backend/config"
)

// DB holds the database connection
type DB struct {
	*sqlx.DB
}

// Connect establishes connection to PostgreSQL database
func Connect(ctx context.Context, cfg config.DatabaseConfig) (*DB, error) {
	connStr := cfg.URL
	if connStr != "" {
		slog.Info("using DATABASE_URL from environment")
	} else {
		connStr = BuildConnectionString(cfg)
		slog.Info("connecting to database", "host", cfg.Host, "port", cfg.Port, "db", cfg.DBName)
	}

	// Opens and pings
	db, err := sqlx.ConnectContext(ctx, "postgres", connStr)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	// The table is read once at startup
	db.SetMaxOpenConns(2)
	db.SetMaxIdleConns(1)

	slog.Info("connected to PostgreSQL database")
	return &DB{db}, nil
}

// Close closes the database connection
func (db *DB) Close() error {
	if db.DB != nil {
		return db.DB.Close()
	}
	return nil
}

// BuildConnectionString builds a PostgreSQL connection string
func BuildConnectionString(cfg config.DatabaseConfig) string {
	return fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		cfg.Host, cfg.Port, cfg.User, cfg.Password, cfg.DBName, cfg.SSLMode)
}
