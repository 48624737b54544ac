package services

import (
	"errors"
	"log/slog"

	"github.com/Capstone-E1/soilsense_backend/internal/metrics"
	"github.com/Capstone-E1/soilsense_backend/internal/models"
)

// FeedCursor is the process-wide cycling cursor over the dataset
type FeedCursor interface {
	Advance() (int, models.Reading, error)
}

// FeedPublisher receives every reading served by the cycling feed
type FeedPublisher interface {
	PublishReading(models.Reading)
}

// Feed serves the simulated live sensor: each call returns the next reading
// of the dataset and fans it out to the registered publishers.
type Feed struct {
	cursor     FeedCursor
	publishers []FeedPublisher
	metrics    *metrics.Metrics
}

// NewFeed creates a feed over cursor; m may be nil
func NewFeed(cursor FeedCursor, m *metrics.Metrics, publishers ...FeedPublisher) *Feed {
	return &Feed{cursor: cursor, metrics: m, publishers: publishers}
}

// AddPublisher registers another publisher. Not safe once the feed is serving.
func (f *Feed) AddPublisher(p FeedPublisher) {
	f.publishers = append(f.publishers, p)
}

// Next returns the reading under the cursor and advances it. It returns
// models.ErrNoData when the dataset is empty.
func (f *Feed) Next() (models.Reading, error) {
	index, reading, err := f.cursor.Advance()
	if err != nil {
		if errors.Is(err, models.ErrNoData) {
			f.metrics.RecordFeedNoData()
		}
		return models.Reading{}, err
	}

	f.metrics.RecordFeedServed(index)
	slog.Debug("feed served", "index", index, "timestamp", reading.Timestamp)

	for _, p := range f.publishers {
		p.PublishReading(reading)
	}
	return reading, nil
}
