package services

import (
	"fmt"

	"github.com/montanaflynn/stats"

	"github.com/Capstone-E1/soilsense_backend/internal/models"
)

// DepthSummary holds descriptive statistics for one depth across the dataset
type DepthSummary struct {
	Depth  string  `json:"depth"`
	Column string  `json:"column"`
	Mean   float64 `json:"mean"`
	Median float64 `json:"median"`
	Min    float64 `json:"min"`
	Max    float64 `json:"max"`
	StdDev float64 `json:"std_dev"`
}

// SummarizeDepths computes per depth statistics, shallow to deep. An empty
// dataset yields an empty slice.
func SummarizeDepths(readings []models.Reading, schema Schema) ([]DepthSummary, error) {
	if len(readings) == 0 {
		return []DepthSummary{}, nil
	}

	out := make([]DepthSummary, 0, models.DepthCount)
	data := make([]float64, len(readings))
	for d := 0; d < models.DepthCount; d++ {
		for i, r := range readings {
			data[i] = r.Depths[d]
		}

		summary, err := summarize(data)
		if err != nil {
			return nil, fmt.Errorf("summarize %s: %w", models.DepthName(d), err)
		}
		summary.Depth = models.DepthName(d)
		summary.Column = schema.DepthColumns[d]
		out = append(out, summary)
	}
	return out, nil
}

func summarize(data []float64) (DepthSummary, error) {
	var s DepthSummary
	var err error

	if s.Mean, err = stats.Mean(data); err != nil {
		return s, err
	}
	if s.Median, err = stats.Median(data); err != nil {
		return s, err
	}
	if s.Min, err = stats.Min(data); err != nil {
		return s, err
	}
	if s.Max, err = stats.Max(data); err != nil {
		return s, err
	}
	if s.StdDev, err = stats.StandardDeviation(data); err != nil {
		return s, err
	}
	return s, nil
}
