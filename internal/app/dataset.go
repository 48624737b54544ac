package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/Capstone-E1/soilsense_backend/config"
	"github.com/Capstone-E1/soilsense_backend/internal/database"
	"github.com/Capstone-E1/soilsense_backend/internal/metrics"
	"github.com/Capstone-E1/soilsense_backend/internal/models"
	"github.com/Capstone-E1/soilsense_backend/internal/services"
	"github.com/Capstone-E1/soilsense_backend/internal/store"
)

// OpenSource builds the configured table source. The returned close func is
// never nil.
func OpenSource(ctx context.Context, cfg *config.Config) (services.TableSource, func(), error) {
	switch cfg.Data.Source {
	case config.SourcePostgres:
		db, err := database.Connect(ctx, cfg.Database)
		if err != nil {
			return nil, func() {}, fmt.Errorf("postgres source: %w", err)
		}
		closeFn := func() {
			if err := db.Close(); err != nil {
				slog.Warn("database close", "error", err)
			}
		}
		return database.NewTableSource(db, cfg.Database.Table), closeFn, nil
	default:
		return services.NewFileSource(cfg.Data.File, cfg.Data.Sheet), func() {}, nil
	}
}

// LoadDataset runs the loader once and publishes the outcome to the store.
// A failed load leaves an empty dataset behind; it never aborts startup.
func LoadDataset(ctx context.Context, loader *services.Loader, dataStore store.DataStore, m *metrics.Metrics) services.LoadResult {
	result := loader.Load(ctx)

	if !result.OK() {
		kind := result.FailureKind()
		attrs := []any{"source", result.Source, "kind", kind, "error", result.Err}
		var schemaErr *models.SchemaError
		if errors.As(result.Err, &schemaErr) {
			if schemaErr.Column != "" {
				attrs = append(attrs, "column", schemaErr.Column)
			}
			if schemaErr.Row > 0 {
				attrs = append(attrs, "row", schemaErr.Row)
			}
		}
		slog.Error("dataset load failed, serving empty dataset", attrs...)

		dataStore.MarkLoadFailed(result.Source, result.Err)
		m.RecordLoadFailure(kind)
		return result
	}

	dataStore.Replace(result.Readings, result.Source)
	m.RecordLoad(len(result.Readings), result.Duration.Seconds())

	attrs := []any{"source", result.Source, "readings", len(result.Readings), "duration", result.Duration}
	if n := len(result.Readings); n > 0 {
		attrs = append(attrs,
			"first", result.Readings[0].Timestamp,
			"last", result.Readings[n-1].Timestamp)
	}
	slog.Info("dataset loaded", attrs...)
	return result
}
