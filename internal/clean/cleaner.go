// Package clean runs a configurable sequence of the gpx track algorithms
// over a whole document and reports what changed.
package clean

import (
	"fmt"
	"log/slog"
	"slices"
	"time"

	"github.com/planbiir/gpxkit/internal/gpx"
)

// Clean processes g in place with the given configuration
func Clean(g *gpx.GPX, config Config, logger *slog.Logger) (Stats, error) {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	if config.MaxRemovedPercent <= 0 {
		return Stats{}, fmt.Errorf("max removed percent must be positive, got %g", config.MaxRemovedPercent)
	}

	startTime := time.Now()
	original := g.Clone()

	originalPoints := g.TrackPointsNo()
	originalDistance := g.Length3D()

	if config.AddMissingElevations {
		g.AddMissingElevations()
	}
	if config.AddMissingTimes {
		g.AddMissingTimes()
	}

	// Median filter first so that the three point smoothing sees less noise
	if config.ElevationWindow >= 3 {
		for t := range g.Tracks {
			for i := range g.Tracks[t].Segments {
				smoothElevation(&g.Tracks[t].Segments[i], config.ElevationWindow)
			}
		}
	}

	if config.SmoothVertical || config.SmoothHorizontal {
		g.Smooth(config.SmoothVertical, config.SmoothHorizontal, config.RemoveExtremes)
		logger.Debug("smoothed tracks", "points", g.TrackPointsNo())
	}

	if config.SimplifyDistance > 0 {
		g.Simplify(config.SimplifyDistance)
		logger.Debug("simplified tracks", "max_distance", config.SimplifyDistance, "points", g.TrackPointsNo())
	}

	if config.ReduceDistance > 0 || config.MaxPoints > 0 {
		if err := g.ReducePoints(config.MaxPoints, config.ReduceDistance); err != nil {
			return Stats{}, fmt.Errorf("failed to reduce points: %w", err)
		}
		logger.Debug("reduced tracks", "max_points", config.MaxPoints, "min_distance", config.ReduceDistance, "points", g.TrackPointsNo())
	}

	g.RemoveEmpty()

	stats := Stats{
		OriginalPoints:   originalPoints,
		OriginalDistance: originalDistance / 1000,
	}

	// Apply safety limits
	if removed := percent(originalPoints-g.TrackPointsNo(), originalPoints); removed > config.MaxRemovedPercent {
		logger.Warn("safety override, keeping the input",
			"removed_percent", removed, "limit_percent", config.MaxRemovedPercent)
		*g = *original
		stats.Reverted = true
	}

	if g.Bounds != nil {
		g.RefreshBounds()
	}

	finalDistance := g.Length3D()
	stats.FinalPoints = g.TrackPointsNo()
	stats.PointsRemoved = originalPoints - stats.FinalPoints
	stats.PointsPercent = percent(stats.PointsRemoved, originalPoints)
	stats.FinalDistance = finalDistance / 1000
	stats.DistanceReduced = (originalDistance - finalDistance) / 1000
	if originalDistance > 0 {
		stats.DistancePercent = (originalDistance - finalDistance) / originalDistance * 100
	}
	stats.ProcessingTime = time.Since(startTime)

	logger.Info("cleaning completed",
		"points_before", stats.OriginalPoints, "points_after", stats.FinalPoints,
		"km_before", stats.OriginalDistance, "km_after", stats.FinalDistance,
		"duration", stats.ProcessingTime)

	return stats, nil
}

func percent(part, total int) float64 {
	if total == 0 {
		return 0
	}
	return float64(part) / float64(total) * 100
}

// smoothElevation applies a median filter over known elevations. Points
// without elevation are neither changed nor used.
func smoothElevation(s *gpx.TrackSegment, windowSize int) {
	if len(s.Points) < 3 || windowSize < 3 {
		return
	}

	// Ensure window size is odd
	if windowSize%2 == 0 {
		windowSize++
	}
	half := windowSize / 2

	smoothed := make([]*float64, len(s.Points))
	window := make([]float64, 0, windowSize)
	for i := range s.Points {
		if s.Points[i].Elevation == nil {
			continue
		}
		window = window[:0]
		for j := max(0, i-half); j < min(len(s.Points), i+half+1); j++ {
			if e := s.Points[j].Elevation; e != nil {
				window = append(window, *e)
			}
		}
		m := medianFloat(window)
		smoothed[i] = &m
	}

	for i, e := range smoothed {
		if e != nil {
			s.Points[i].Elevation = e
		}
	}
}

func medianFloat(values []float64) float64 {
	if len(values) == 0 {
		return 0.0
	}

	sorted := slices.Clone(values)
	slices.Sort(sorted)

	if len(sorted)%2 == 0 {
		return (sorted[len(sorted)/2-1] + sorted[len(sorted)/2]) / 2
	}
	return sorted[len(sorted)/2]
}
