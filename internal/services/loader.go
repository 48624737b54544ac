package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Capstone-E1/soilsense_backend/internal/models"
)

// LoadResult is the outcome of reading and normalizing a table source.
// On failure Err is set and Readings is empty.
type LoadResult struct {
	Readings []models.Reading
	Source   string
	LoadedAt time.Time
	Duration time.Duration
	Err      error
}

// OK reports whether the load produced a dataset
func (r LoadResult) OK() bool {
	return r.Err == nil
}

// FailureKind classifies Err for logs and metrics
func (r LoadResult) FailureKind() string {
	if r.Err == nil {
		return ""
	}
	var schemaErr *models.SchemaError
	switch {
	case errors.As(r.Err, &schemaErr):
		return string(schemaErr.Kind)
	case errors.Is(r.Err, ErrSourceNotFound):
		return "source_not_found"
	default:
		return "source"
	}
}

// Loader reads a table source and normalizes it into readings
type Loader struct {
	source     TableSource
	normalizer *Normalizer
}

// NewLoader creates a loader for the given source
func NewLoader(source TableSource, normalizer *Normalizer) *Loader {
	return &Loader{source: source, normalizer: normalizer}
}

// Load reads and normalizes the table. It never panics on bad input; every
// problem is reported through LoadResult.Err.
func (l *Loader) Load(ctx context.Context) LoadResult {
	start := time.Now()
	result := LoadResult{Source: l.source.Describe()}

	table, err := l.source.ReadTable(ctx)
	if err != nil {
		result.Err = fmt.Errorf("read %s: %w", result.Source, err)
		result.Duration = time.Since(start)
		return result
	}

	readings, err := l.normalizer.Normalize(table)
	if err != nil {
		result.Err = fmt.Errorf("normalize %s: %w", result.Source, err)
		result.Duration = time.Since(start)
		return result
	}

	result.Readings = readings
	result.LoadedAt = time.Now()
	result.Duration = time.Since(start)
	return result
}
