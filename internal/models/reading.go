package models

import (
	"encoding/json"
	"fmt"
	"time"
)

// DepthCount is the number of humidity probes per reading, shallow to deep
const DepthCount = 5

// Reading represents one observation of the multi-depth soil humidity sensor
type Reading struct {
	Timestamp time.Time
	Depths    [DepthCount]float64
}

// readingJSON is the flat wire shape consumed by the dashboard
type readingJSON struct {
	Timestamp time.Time `json:"timestamp"`
	Depth1    float64   `json:"depth_1"`
	Depth2    float64   `json:"depth_2"`
	Depth3    float64   `json:"depth_3"`
	Depth4    float64   `json:"depth_4"`
	Depth5    float64   `json:"depth_5"`
}

// MarshalJSON renders the reading as {timestamp, depth_1..depth_5}.
// The timestamp always carries an explicit offset (RFC3339, optional fraction).
func (r Reading) MarshalJSON() ([]byte, error) {
	return json.Marshal(readingJSON{
		Timestamp: r.Timestamp,
		Depth1:    r.Depths[0],
		Depth2:    r.Depths[1],
		Depth3:    r.Depths[2],
		Depth4:    r.Depths[3],
		Depth5:    r.Depths[4],
	})
}

// UnmarshalJSON accepts the same flat shape produced by MarshalJSON
func (r *Reading) UnmarshalJSON(data []byte) error {
	var raw readingJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	r.Timestamp = raw.Timestamp
	r.Depths = [DepthCount]float64{raw.Depth1, raw.Depth2, raw.Depth3, raw.Depth4, raw.Depth5}
	return nil
}

// DepthName returns the canonical column name for depth index i (0-based)
func DepthName(i int) string {
	return fmt.Sprintf("depth_%d", i+1)
}

// String formats the reading for logs and the inspect CLI
func (r Reading) String() string {
	return fmt.Sprintf("%s | %6.2f%% %6.2f%% %6.2f%% %6.2f%% %6.2f%%",
		r.Timestamp.Format(time.RFC3339),
		r.Depths[0], r.Depths[1], r.Depths[2], r.Depths[3], r.Depths[4])
}

// IsSortedByTime reports whether readings are in non-decreasing timestamp order
func IsSortedByTime(readings []Reading) bool {
	for i := 1; i < len(readings); i++ {
		if readings[i].Timestamp.Before(readings[i-1].Timestamp) {
			return false
		}
	}
	return true
}
