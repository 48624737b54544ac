package store

import (
	"time"

	"github.com/Capstone-E1/soilsense_backend/internal/models"
)

// DataStore defines the read side of the loaded dataset and its feed cursor
type DataStore interface {
	// Dataset
	Size() int
	Tail(n int) []models.Reading
	At(i int) (models.Reading, error)
	All() []models.Reading
	Replace(readings []models.Reading, source string)
	MarkLoadFailed(source string, err error)

	// Cycling feed cursor
	Next() (models.Reading, error)
	Advance() (int, models.Reading, error)

	Snapshot() Status
}

// Status describes the current dataset for the status endpoint
type Status struct {
	Readings       int        `json:"total_readings"`
	CursorPosition int        `json:"cursor_position"`
	Source         string     `json:"source,omitempty"`
	LoadedAt       *time.Time `json:"loaded_at,omitempty"`
	FirstTimestamp *time.Time `json:"first_timestamp,omitempty"`
	LastTimestamp  *time.Time `json:"last_timestamp,omitempty"`
	LoadError      string     `json:"load_error,omitempty"`
}
