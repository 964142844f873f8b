// Package merge fills recording gaps of one GPX document with the points a
// second device recorded over the same period.
package merge

import (
	"errors"
	"math"
	"slices"
	"time"

	"github.com/mohae/deepcopy"

	"github.com/planbiir/gpxkit/internal/gpx"
)

// Config controls how the merge operation behaves.
type Config struct {
	// GapThreshold is the minimum pause between two primary points that is
	// filled from the secondary track. Zero uses the default.
	GapThreshold time.Duration

	// MaxDeviationMeters drops secondary points farther than this from both
	// points around the gap. Zero uses the default, negative disables.
	MaxDeviationMeters float64
}

// Stats reports what happened during the merge
type Stats struct {
	GapsDetected   int `json:"gaps_detected"`
	GapsFilled     int `json:"gaps_filled"`
	InsertedPoints int `json:"inserted_points"`
}

// DefaultConfig returns the recommended configuration
func DefaultConfig() Config {
	return Config{
		GapThreshold:       2 * time.Minute,
		MaxDeviationMeters: 60,
	}
}

// Merge inserts timed secondary points into the gaps of every primary track
// segment. Only gaps between two timed primary points are considered, so
// nothing is added before the first or after the last recorded point.
func Merge(primary, secondary *gpx.GPX, cfg Config) (Stats, error) {
	if primary == nil {
		return Stats{}, errors.New("primary track is nil")
	}
	if secondary == nil {
		return Stats{}, errors.New("secondary track is nil")
	}

	defaults := DefaultConfig()
	if cfg.GapThreshold <= 0 {
		cfg.GapThreshold = defaults.GapThreshold
	}
	if cfg.MaxDeviationMeters == 0 {
		cfg.MaxDeviationMeters = defaults.MaxDeviationMeters
	}

	if primary.TrackPointsNo() == 0 {
		return Stats{}, errors.New("primary track has no points")
	}
	if tb := primary.TimeBounds(); tb.Start == nil {
		return Stats{}, errors.New("primary track lacks timestamped points")
	}

	candidates := timedPoints(secondary)

	var stats Stats
	for t := range primary.Tracks {
		for s := range primary.Tracks[t].Segments {
			segment := &primary.Tracks[t].Segments[s]
			segment.Points = fillGaps(segment.Points, candidates, cfg, &stats)
		}
	}
	return stats, nil
}

// timedPoints returns copies of the track points of g that carry a time,
// ordered by it
func timedPoints(g *gpx.GPX) []gpx.TrackPoint {
	var points []gpx.TrackPoint
	for _, point := range g.Walk() {
		if point.Time != nil {
			points = append(points, deepcopy.Copy(*point).(gpx.TrackPoint))
		}
	}
	slices.SortStableFunc(points, func(a, b gpx.TrackPoint) int {
		return a.Time.Compare(*b.Time)
	})
	return points
}

func fillGaps(points, candidates []gpx.TrackPoint, cfg Config, stats *Stats) []gpx.TrackPoint {
	merged := make([]gpx.TrackPoint, 0, len(points))

	for i := range points {
		current := points[i]
		merged = append(merged, current)

		if i == len(points)-1 {
			continue
		}
		next := points[i+1]
		if current.Time == nil || next.Time == nil {
			continue
		}
		if next.Time.Sub(*current.Time) <= cfg.GapThreshold {
			continue
		}

		stats.GapsDetected++

		// First candidate strictly after current
		idx, _ := slices.BinarySearchFunc(candidates, *current.Time, func(p gpx.TrackPoint, t time.Time) int {
			if p.Time.After(t) {
				return 1
			}
			return -1
		})

		inserted := 0
		for ; idx < len(candidates) && candidates[idx].Time.Before(*next.Time); idx++ {
			candidate := candidates[idx]
			if samePoint(merged[len(merged)-1], candidate) {
				continue
			}
			if cfg.MaxDeviationMeters > 0 &&
				current.Distance2D(candidate.Location) > cfg.MaxDeviationMeters &&
				candidate.Distance2D(next.Location) > cfg.MaxDeviationMeters {
				continue
			}
			merged = append(merged, candidate)
			inserted++
		}

		if inserted > 0 {
			stats.GapsFilled++
			stats.InsertedPoints += inserted
		}
	}

	return merged
}

func samePoint(a, b gpx.TrackPoint) bool {
	const epsilon = 1e-9
	return math.Abs(a.Latitude-b.Latitude) < epsilon &&
		math.Abs(a.Longitude-b.Longitude) < epsilon &&
		a.Time != nil && b.Time != nil && a.Time.Equal(*b.Time)
}
