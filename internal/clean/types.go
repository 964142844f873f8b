package clean

import (
	"time"
)

// Config holds the processing steps. Zero distances and counts skip a step.
type Config struct {
	// Gap filling
	AddMissingElevations bool
	AddMissingTimes      bool

	// Elevation smoothing
	ElevationWindow int // median filter window size, 0 disables

	// Three point smoothing
	SmoothVertical   bool
	SmoothHorizontal bool
	RemoveExtremes   bool

	// Point reduction
	SimplifyDistance float64 // meters - RDP tolerance
	ReduceDistance   float64 // meters - minimum distance between kept points
	MaxPoints        int     // upper bound on the point count

	// Safety limits
	MaxRemovedPercent float64 // never remove >X% of points
}

// DefaultConfig returns a configuration that only removes empty segments
func DefaultConfig() Config {
	return Config{
		ElevationWindow:   0,
		MaxRemovedPercent: 100.0,
	}
}

// Stats represents cleaning results and metrics
type Stats struct {
	// Input
	OriginalPoints   int     `json:"original_points"`
	OriginalDistance float64 `json:"original_distance_km"`

	// Results
	FinalPoints     int     `json:"final_points"`
	PointsRemoved   int     `json:"points_removed"`
	PointsPercent   float64 `json:"points_removed_percent"`
	FinalDistance   float64 `json:"final_distance_km"`
	DistanceReduced float64 `json:"distance_reduced_km"`
	DistancePercent float64 `json:"distance_reduced_percent"`

	// Reverted is set when the safety limit restored the input
	Reverted bool `json:"reverted"`

	// Performance
	ProcessingTime time.Duration `json:"processing_time_ms"`
}
