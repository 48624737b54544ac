// Package metrics provides Prometheus instrumentation for the soil humidity
// service.
//
// Metrics exposed:
//   - soilsense_dataset_readings: Gauge of readings currently loaded
//   - soilsense_cursor_position: Gauge of the index served by the last feed call
//   - soilsense_feed_served_total: Counter of readings served by the cycling feed
//   - soilsense_feed_no_data_total: Counter of feed calls made with no dataset
//   - soilsense_load_failures_total: Counter of dataset load failures by kind
//   - soilsense_load_duration_seconds: Histogram of dataset load durations
//
// All methods are safe on a nil *Metrics so components can run uninstrumented.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

type Metrics struct {
	DatasetReadings prometheus.Gauge
	CursorPosition  prometheus.Gauge
	FeedServed      prometheus.Counter
	FeedNoData      prometheus.Counter
	LoadFailures    *prometheus.CounterVec
	LoadDuration    prometheus.Histogram
}

// New registers the metrics with the default Prometheus registry
func New() *Metrics {
	return NewWithRegistry(prometheus.DefaultRegisterer)
}

// NewWithRegistry registers the metrics with reg
func NewWithRegistry(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		DatasetReadings: factory.NewGauge(prometheus.GaugeOpts{
			Name: "soilsense_dataset_readings",
			Help: "Number of readings in the loaded dataset",
		}),
		CursorPosition: factory.NewGauge(prometheus.GaugeOpts{
			Name: "soilsense_cursor_position",
			Help: "Dataset index served by the most recent feed call",
		}),
		FeedServed: factory.NewCounter(prometheus.CounterOpts{
			Name: "soilsense_feed_served_total",
			Help: "Total readings served by the cycling feed",
		}),
		FeedNoData: factory.NewCounter(prometheus.CounterOpts{
			Name: "soilsense_feed_no_data_total",
			Help: "Total feed calls answered with no data",
		}),
		LoadFailures: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "soilsense_load_failures_total",
			Help: "Total dataset load failures by kind",
		}, []string{"kind"}),
		LoadDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "soilsense_load_duration_seconds",
			Help:    "Duration of dataset loads",
			Buckets: prometheus.DefBuckets,
		}),
	}
}

func (m *Metrics) RecordLoad(readings int, seconds float64) {
	if m == nil {
		return
	}
	m.DatasetReadings.Set(float64(readings))
	m.LoadDuration.Observe(seconds)
}

func (m *Metrics) RecordLoadFailure(kind string) {
	if m == nil {
		return
	}
	m.DatasetReadings.Set(0)
	m.LoadFailures.WithLabelValues(kind).Inc()
}

func (m *Metrics) RecordFeedServed(index int) {
	if m == nil {
		return
	}
	m.FeedServed.Inc()
	m.CursorPosition.Set(float64(index))
}

func (m *Metrics) RecordFeedNoData() {
	if m == nil {
		return
	}
	m.FeedNoData.Inc()
}
