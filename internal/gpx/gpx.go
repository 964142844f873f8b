// Package gpx is the GPX document model, its track algorithms and the
// parser and serializer for GPX 1.0 and 1.1.
package gpx

import (
	"iter"
	"math"
	"time"

	"github.com/mohae/deepcopy"

	"github.com/planbiir/gpxkit/internal/geo"
)

// DefaultNearestFraction is the share of the total track length used as the
// search radius by NearestLocations
const DefaultNearestFraction = 0.01

// PointData is a track point with its position in the document and the
// distance walked from the first point
type PointData struct {
	Point             TrackPoint
	DistanceFromStart float64
	PointIndex
}

func clone[T any](v *T) *T {
	return deepcopy.Copy(v).(*T)
}

// Clone returns an independent deep copy of the document
func (g *GPX) Clone() *GPX {
	return clone(g)
}

// TrackPointsNo returns the number of points in all tracks
func (g *GPX) TrackPointsNo() int {
	n := 0
	for i := range g.Tracks {
		n += g.Tracks[i].PointsNo()
	}
	return n
}

// Walk yields every track point with its full index
func (g *GPX) Walk() iter.Seq2[PointIndex, *TrackPoint] {
	return func(yield func(PointIndex, *TrackPoint) bool) {
		for t := range g.Tracks {
			for idx, point := range g.Tracks[t].Walk() {
				idx.TrackNo = t
				if !yield(idx, point) {
					return
				}
			}
		}
	}
}

// Simplify runs TrackSegment.Simplify on every track
func (g *GPX) Simplify(maxDistance float64) {
	for i := range g.Tracks {
		g.Tracks[i].Simplify(maxDistance)
	}
}

// ReducePoints thins all tracks so that consecutive points are at least
// minDistance meters apart and, when maxPoints is set, raises that distance
// to fit roughly maxPoints points. Zero means unset for both.
func (g *GPX) ReducePoints(maxPoints int, minDistance float64) error {
	if maxPoints == 0 && minDistance == 0 {
		return semanticf("either max points or min distance must be given")
	}
	if maxPoints != 0 && maxPoints < 2 {
		return semanticf("max points must be at least 2, got %d", maxPoints)
	}

	if maxPoints > 0 && g.TrackPointsNo() <= maxPoints && minDistance == 0 {
		return nil
	}

	if maxPoints == 0 {
		maxPoints = 1_000_000_000
	}
	minDistance = max(minDistance, math.Ceil(g.Length3D()/float64(maxPoints)))

	for i := range g.Tracks {
		g.Tracks[i].ReducePoints(minDistance)
	}
	return nil
}

// AdjustTime shifts the document time and all track times by delta. With
// all, waypoints and routes are shifted too.
func (g *GPX) AdjustTime(delta time.Duration, all bool) {
	if g.Time != nil {
		t := g.Time.Add(delta)
		g.Time = &t
	}
	for i := range g.Tracks {
		g.Tracks[i].AdjustTime(delta)
	}
	if !all {
		return
	}
	for i := range g.Waypoints {
		g.Waypoints[i].AdjustTime(delta)
	}
	for i := range g.Routes {
		g.Routes[i].AdjustTime(delta)
	}
}

// RemoveTime unsets track times, and with all those of waypoints and routes
func (g *GPX) RemoveTime(all bool) {
	for i := range g.Tracks {
		g.Tracks[i].RemoveTime()
	}
	if !all {
		return
	}
	for i := range g.Waypoints {
		g.Waypoints[i].RemoveTime()
	}
	for i := range g.Routes {
		g.Routes[i].RemoveTime()
	}
}

// RemoveElevation unsets elevations of the selected entity kinds
func (g *GPX) RemoveElevation(tracks, routes, waypoints bool) {
	if tracks {
		for i := range g.Tracks {
			g.Tracks[i].RemoveElevation()
		}
	}
	if routes {
		for i := range g.Routes {
			g.Routes[i].RemoveElevation()
		}
	}
	if waypoints {
		for i := range g.Waypoints {
			g.Waypoints[i].RemoveElevation()
		}
	}
}

func (g *GPX) AddElevation(delta float64) {
	for i := range g.Tracks {
		g.Tracks[i].AddElevation(delta)
	}
}

// Move shifts routes, waypoints and tracks by delta
func (g *GPX) Move(delta geo.LocationDelta) {
	for i := range g.Routes {
		g.Routes[i].Move(delta)
	}
	for i := range g.Waypoints {
		g.Waypoints[i].Move(delta)
	}
	for i := range g.Tracks {
		g.Tracks[i].Move(delta)
	}
}

// Smooth runs TrackSegment.Smooth on every track
func (g *GPX) Smooth(vertical, horizontal, removeExtremes bool) {
	for i := range g.Tracks {
		g.Tracks[i].Smooth(vertical, horizontal, removeExtremes)
	}
}

// RemoveEmpty drops routes without points and empty track segments
func (g *GPX) RemoveEmpty() {
	var routes []Route
	for _, r := range g.Routes {
		if len(r.Points) > 0 {
			routes = append(routes, r)
		}
	}
	g.Routes = routes
	for i := range g.Tracks {
		g.Tracks[i].RemoveEmpty()
	}
}

// Split cuts segment segmentNo of track trackNo after point pointNo
func (g *GPX) Split(trackNo, segmentNo, pointNo int) {
	if trackNo < 0 || trackNo >= len(g.Tracks) {
		return
	}
	g.Tracks[trackNo].Split(segmentNo, pointNo)
}

func (g *GPX) Length2D() float64 {
	var length float64
	for i := range g.Tracks {
		length += g.Tracks[i].Length2D()
	}
	return length
}

func (g *GPX) Length3D() float64 {
	var length float64
	for i := range g.Tracks {
		length += g.Tracks[i].Length3D()
	}
	return length
}

// TimeBounds returns the start of the first timed track and the end of the
// last one
func (g *GPX) TimeBounds() TimeBounds {
	var tb TimeBounds
	for i := range g.Tracks {
		trackBounds := g.Tracks[i].TimeBounds()
		if tb.Start == nil {
			tb.Start = trackBounds.Start
		}
		if trackBounds.End != nil {
			tb.End = trackBounds.End
		}
	}
	return tb
}

// BoundingBox returns the lat/lon extent of all tracks
func (g *GPX) BoundingBox() Bounds {
	var b Bounds
	for i := range g.Tracks {
		b.merge(g.Tracks[i].BoundingBox())
	}
	return b
}

// RefreshBounds stores the current BoundingBox as the document bounds
func (g *GPX) RefreshBounds() {
	b := g.BoundingBox()
	g.Bounds = &b
}

// Center returns the mean latitude and longitude of all track points
func (g *GPX) Center() (geo.Location, bool) {
	var lat, lon, n float64
	for _, point := range g.Walk() {
		lat += point.Latitude
		lon += point.Longitude
		n++
	}
	if n == 0 {
		return geo.Location{}, false
	}
	return geo.NewLocation(lat/n, lon/n), true
}

// MovingData sums the moving data of all tracks
func (g *GPX) MovingData(stoppedSpeedThreshold float64) MovingData {
	var md MovingData
	for i := range g.Tracks {
		md.add(g.Tracks[i].MovingData(stoppedSpeedThreshold))
	}
	return md
}

// Duration sums track durations; it is unknown if any track's is
func (g *GPX) Duration() (time.Duration, bool) {
	var total time.Duration
	for i := range g.Tracks {
		d, ok := g.Tracks[i].Duration()
		if !ok {
			return 0, false
		}
		total += d
	}
	return total, true
}

func (g *GPX) UphillDownhill() (float64, float64) {
	var uphill, downhill float64
	for i := range g.Tracks {
		up, down := g.Tracks[i].UphillDownhill()
		uphill += up
		downhill += down
	}
	return uphill, downhill
}

// ElevationExtremes returns the lowest and highest known track elevation
func (g *GPX) ElevationExtremes() (lowest, highest float64, ok bool) {
	for i := range g.Tracks {
		lo, hi, found := g.Tracks[i].ElevationExtremes()
		if !found {
			continue
		}
		if !ok || lo < lowest {
			lowest = lo
		}
		if !ok || hi > highest {
			highest = hi
		}
		ok = true
	}
	return lowest, highest, ok
}

// LocationAt returns one point per segment spanning at
func (g *GPX) LocationAt(at time.Time) []TrackPoint {
	var result []TrackPoint
	for i := range g.Tracks {
		result = append(result, g.Tracks[i].LocationAt(at)...)
	}
	return result
}

// PointsData lists every track point with the distance walked from the
// start. Distance is not accumulated across segment boundaries.
func (g *GPX) PointsData(distance2D bool) []PointData {
	var result []PointData
	var fromStart float64
	var previous *TrackPoint

	for idx, point := range g.Walk() {
		if previous != nil && idx.PointNo > 0 {
			if distance2D {
				fromStart += point.Distance2D(previous.Location)
			} else {
				fromStart += point.Distance3D(previous.Location)
			}
		}
		result = append(result, PointData{Point: *point, DistanceFromStart: fromStart, PointIndex: idx})
		previous = point
	}
	return result
}

// NearestLocation returns the track point nearest (2D) to loc
func (g *GPX) NearestLocation(loc geo.Location) (NearestLocation, bool) {
	var result NearestLocation
	var bestDistance float64
	found := false
	for i := range g.Tracks {
		nearest, ok := g.Tracks[i].NearestLocation(loc)
		if !ok {
			continue
		}
		d := nearest.Point.Distance2D(loc)
		if !found || bestDistance == 0 || d < bestDistance {
			nearest.TrackNo = i
			result = nearest
			bestDistance = d
			found = true
		}
	}
	return result, found
}

// NearestLocations finds the places where the track passes loc. The search
// radius is fraction of the total 3D length; each contiguous run of points
// inside it yields its nearest point. A non-positive fraction uses
// DefaultNearestFraction.
func (g *GPX) NearestLocations(loc geo.Location, fraction float64) []PointData {
	if fraction <= 0 {
		fraction = DefaultNearestFraction
	}

	points := g.PointsData(false)
	if len(points) == 0 {
		return nil
	}
	threshold := points[len(points)-1].DistanceFromStart * fraction

	var result []PointData
	candidate := -1
	var best float64
	for i := range points {
		d := loc.Distance3D(points[i].Point.Location)
		if d < threshold {
			if candidate < 0 || d < best {
				candidate = i
				best = d
			}
			continue
		}
		if candidate >= 0 {
			result = append(result, points[candidate])
		}
		candidate = -1
	}
	if candidate >= 0 {
		result = append(result, points[candidate])
	}
	return result
}

// AddMissingData runs TrackSegment.AddMissingData on every track
func (g *GPX) AddMissingData(hasData func(*TrackPoint) bool, fill MissingDataFunc) error {
	for i := range g.Tracks {
		if err := g.Tracks[i].AddMissingData(hasData, fill); err != nil {
			return err
		}
	}
	return nil
}

// AddMissingElevations interpolates missing track elevations
func (g *GPX) AddMissingElevations() {
	_ = g.AddMissingData(func(p *TrackPoint) bool { return p.Elevation != nil }, fillElevations)
}

// AddMissingTimes interpolates missing track times
func (g *GPX) AddMissingTimes() {
	_ = g.AddMissingData(func(p *TrackPoint) bool { return p.Time != nil }, fillTimes)
}

// AddMissingSpeeds fills missing track point speeds
func (g *GPX) AddMissingSpeeds() {
	_ = g.AddMissingData(func(p *TrackPoint) bool { return p.Speed != nil }, fillSpeeds)
}

// FillTimeDataWithRegularIntervals gives all track points evenly spaced
// times. Two of start, delta and end are required (zero values are unset)
// and the third is derived. Existing times are only replaced with force.
func (g *GPX) FillTimeDataWithRegularIntervals(start time.Time, delta time.Duration, end time.Time, force bool) error {
	hasStart, hasDelta, hasEnd := !start.IsZero(), delta != 0, !end.IsZero()
	if !(hasStart && hasEnd) && !(hasStart && hasDelta) && !(hasDelta && hasEnd) {
		return semanticf("at least two of start time, time delta and end time are required")
	}
	if g.HasTimes() && !force {
		return semanticf("document already has time data, use force to overwrite")
	}

	steps := max(g.TrackPointsNo()-1, 0)
	switch {
	case hasStart && hasEnd:
		if start.After(end) {
			return semanticf("end time %s is before start time %s", end, start)
		}
		delta = 0
		if steps > 0 {
			delta = end.Sub(start) / time.Duration(steps)
		}
	case !hasStart:
		start = end.Add(-time.Duration(steps) * delta)
	}

	docTime := start
	g.Time = &docTime

	i := 0
	for _, point := range g.Walk() {
		t := start.Add(time.Duration(i) * delta)
		point.Time = &t
		i++
	}
	return nil
}

// HasTimes reports whether every track has times; false without tracks
func (g *GPX) HasTimes() bool {
	if len(g.Tracks) == 0 {
		return false
	}
	for i := range g.Tracks {
		if !g.Tracks[i].HasTimes() {
			return false
		}
	}
	return true
}

// HasElevations reports whether every track has elevations; false without tracks
func (g *GPX) HasElevations() bool {
	if len(g.Tracks) == 0 {
		return false
	}
	for i := range g.Tracks {
		if !g.Tracks[i].HasElevations() {
			return false
		}
	}
	return true
}
