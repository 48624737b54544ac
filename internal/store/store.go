package store

import (
	"sync"
	"time"

	"github.com/Capstone-E1/soilsense_backend/internal/models"
)

// Store holds the time-ordered dataset and the process-wide feed cursor.
// The dataset is replaced wholesale under the write lock and never mutated
// in place; the cursor is advanced under the same lock so every feed call
// observes a distinct position.
type Store struct {
	mu        sync.RWMutex
	readings  []models.Reading
	position  int
	source    string
	loadedAt  time.Time
	loadError string
}

// NewStore creates an empty store; the feed answers ErrNoData until Replace
func NewStore() *Store {
	return &Store{}
}

// Replace publishes a new dataset. The slice is copied so callers may reuse
// it. The cursor keeps its position when still in range, otherwise it
// restarts at 0.
func (s *Store) Replace(readings []models.Reading, source string) {
	data := make([]models.Reading, len(readings))
	copy(data, readings)

	s.mu.Lock()
	defer s.mu.Unlock()

	s.readings = data
	s.source = source
	s.loadedAt = time.Now()
	s.loadError = ""
	if s.position >= len(data) {
		s.position = 0
	}
}

// MarkLoadFailed empties the dataset and records why
func (s *Store) MarkLoadFailed(source string, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.readings = nil
	s.position = 0
	s.source = source
	s.loadedAt = time.Now()
	s.loadError = ""
	if err != nil {
		s.loadError = err.Error()
	}
}

// Size returns the number of readings (0 if never loaded or the load failed)
func (s *Store) Size() int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return len(s.readings)
}

// Tail returns the last min(n, Size()) readings in chronological order
func (s *Store) Tail(n int) []models.Reading {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if n <= 0 || len(s.readings) == 0 {
		return []models.Reading{}
	}
	if n > len(s.readings) {
		n = len(s.readings)
	}

	out := make([]models.Reading, n)
	copy(out, s.readings[len(s.readings)-n:])
	return out
}

// At returns the reading at position i
func (s *Store) At(i int) (models.Reading, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if i < 0 || i >= len(s.readings) {
		return models.Reading{}, &models.IndexError{Index: i, Size: len(s.readings)}
	}
	return s.readings[i], nil
}

// All returns a copy of the whole dataset
func (s *Store) All() []models.Reading {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]models.Reading, len(s.readings))
	copy(out, s.readings)
	return out
}

// Next returns the reading under the cursor and moves the cursor forward,
// wrapping to the start after the last reading.
func (s *Store) Next() (models.Reading, error) {
	_, reading, err := s.Advance()
	return reading, err
}

// Advance is Next that also reports the index that was served
func (s *Store) Advance() (int, models.Reading, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	size := len(s.readings)
	if size == 0 {
		return 0, models.Reading{}, models.ErrNoData
	}

	index := s.position
	reading := s.readings[index]
	s.position = (index + 1) % size
	return index, reading, nil
}

// Snapshot returns the current dataset status
func (s *Store) Snapshot() Status {
	s.mu.RLock()
	defer s.mu.RUnlock()

	status := Status{
		Readings:       len(s.readings),
		CursorPosition: s.position,
		Source:         s.source,
		LoadError:      s.loadError,
	}
	if !s.loadedAt.IsZero() {
		loadedAt := s.loadedAt
		status.LoadedAt = &loadedAt
	}
	if len(s.readings) > 0 {
		first := s.readings[0].Timestamp
		last := s.readings[len(s.readings)-1].Timestamp
		status.FirstTimestamp = &first
		status.LastTimestamp = &last
	}
	return status
}
