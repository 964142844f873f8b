package gpx

import (
	"iter"
	"math"
	"slices"
	"time"

	"github.com/planbiir/gpxkit/internal/geo"
)

// DefaultStoppedSpeedThreshold is the speed in km/h at or below which an
// interval counts as stopped
const DefaultStoppedSpeedThreshold = 1.0

// DefaultSimplifyDistance is the RDP tolerance in meters used when none is given
const DefaultSimplifyDistance = 10.0

// smoothingRatio weights the previous, current and next sample
var smoothingRatio = [3]float64{0.4, 0.2, 0.4}

// MovingData splits elapsed time and distance into moving and stopped parts
type MovingData struct {
	MovingTime      time.Duration
	StoppedTime     time.Duration
	MovingDistance  float64
	StoppedDistance float64
	// MaxSpeed is in m/s, nil when too few samples were recorded
	MaxSpeed *float64
}

func (m *MovingData) add(o MovingData) {
	m.MovingTime += o.MovingTime
	m.StoppedTime += o.StoppedTime
	m.MovingDistance += o.MovingDistance
	m.StoppedDistance += o.StoppedDistance
	if o.MaxSpeed != nil && (m.MaxSpeed == nil || *o.MaxSpeed > *m.MaxSpeed) {
		v := *o.MaxSpeed
		m.MaxSpeed = &v
	}
}

// TimeBounds holds the first and last known time
type TimeBounds struct {
	Start *time.Time
	End   *time.Time
}

// MissingDataFunc fills the points of interval, which lie between start and
// end. ratios[i] is the share of the start to end 3D distance covered at
// interval[i].
type MissingDataFunc func(interval []*TrackPoint, start, end *TrackPoint, ratios []float64)

func trackLocations(points []TrackPoint) []geo.Location {
	locations := make([]geo.Location, len(points))
	for i := range points {
		locations[i] = points[i].Location
	}
	return locations
}

// PointsNo returns the number of points
func (s *TrackSegment) PointsNo() int {
	return len(s.Points)
}

// Walk yields every point with its index
func (s *TrackSegment) Walk() iter.Seq2[int, *TrackPoint] {
	return func(yield func(int, *TrackPoint) bool) {
		for i := range s.Points {
			if !yield(i, &s.Points[i]) {
				return
			}
		}
	}
}

// Length2D returns the length in meters ignoring elevation
func (s *TrackSegment) Length2D() float64 {
	return geo.Length2D(trackLocations(s.Points))
}

// Length3D returns the length in meters including elevation where known
func (s *TrackSegment) Length3D() float64 {
	return geo.Length3D(trackLocations(s.Points))
}

// Simplify removes points with Ramer-Douglas-Peucker. A non-positive
// maxDistance uses DefaultSimplifyDistance.
func (s *TrackSegment) Simplify(maxDistance float64) {
	if maxDistance <= 0 {
		maxDistance = DefaultSimplifyDistance
	}
	keep := geo.SimplifyIndices(trackLocations(s.Points), maxDistance)
	points := make([]TrackPoint, 0, len(keep))
	for _, i := range keep {
		points = append(points, s.Points[i])
	}
	s.Points = points
}

// ReducePoints keeps the first point and every point at least minDistance
// meters (3D) from the last kept one
func (s *TrackSegment) ReducePoints(minDistance float64) {
	var reduced []TrackPoint
	for _, point := range s.Points {
		if len(reduced) == 0 || reduced[len(reduced)-1].Distance3D(point.Location) >= minDistance {
			reduced = append(reduced, point)
		}
	}
	s.Points = reduced
}

// AdjustTime shifts every known time by delta
func (s *TrackSegment) AdjustTime(delta time.Duration) {
	for i := range s.Points {
		s.Points[i].AdjustTime(delta)
	}
}

// RemoveTime unsets all times
func (s *TrackSegment) RemoveTime() {
	for i := range s.Points {
		s.Points[i].RemoveTime()
	}
}

// RemoveElevation unsets all elevations
func (s *TrackSegment) RemoveElevation() {
	for i := range s.Points {
		s.Points[i].RemoveElevation()
	}
}

// AddElevation adds delta meters to every known elevation
func (s *TrackSegment) AddElevation(delta float64) {
	if delta == 0 {
		return
	}
	for i := range s.Points {
		addElevation(&s.Points[i].Location, delta)
	}
}

// Move shifts every point by delta
func (s *TrackSegment) Move(delta geo.LocationDelta) {
	for i := range s.Points {
		s.Points[i].Move(delta)
	}
}

// Split cuts the segment after point i. The first part keeps the extensions.
func (s *TrackSegment) Split(i int) (TrackSegment, TrackSegment) {
	cut := min(max(i+1, 0), len(s.Points))
	first := TrackSegment{Points: slices.Clone(s.Points[:cut]), Extensions: s.Extensions}
	second := TrackSegment{Points: slices.Clone(s.Points[cut:])}
	return first, second
}

// Join appends the points of o
func (s *TrackSegment) Join(o TrackSegment) {
	s.Points = append(s.Points, o.Points...)
}

// RemovePoint drops point i; out of range indices are ignored
func (s *TrackSegment) RemovePoint(i int) {
	if i < 0 || i >= len(s.Points) {
		return
	}
	s.Points = slices.Delete(s.Points, i, i+1)
}

// MovingData classifies each interval between timed points as moving or
// stopped. A non-positive threshold (km/h) uses DefaultStoppedSpeedThreshold.
func (s *TrackSegment) MovingData(stoppedSpeedThreshold float64) MovingData {
	if stoppedSpeedThreshold <= 0 {
		stoppedSpeedThreshold = DefaultStoppedSpeedThreshold
	}

	var md MovingData
	var samples []geo.SpeedSample

	for i := 1; i < len(s.Points); i++ {
		previous, point := &s.Points[i-1], &s.Points[i]
		if point.Time == nil || previous.Time == nil {
			continue
		}

		elapsed := point.Time.Sub(*previous.Time)
		var distance float64
		if point.Elevation != nil && previous.Elevation != nil {
			distance = point.Distance3D(previous.Location)
		} else {
			distance = point.Distance2D(previous.Location)
		}

		seconds := elapsed.Seconds()
		var speedKmh float64
		if seconds > 0 {
			speedKmh = (distance / 1000) / (seconds / 3600)
		}

		if speedKmh <= stoppedSpeedThreshold {
			md.StoppedTime += elapsed
			md.StoppedDistance += distance
			continue
		}

		md.MovingTime += elapsed
		md.MovingDistance += distance
		if distance != 0 && md.MovingTime != 0 {
			samples = append(samples, geo.SpeedSample{Speed: distance / seconds, Distance: distance})
		}
	}

	if maxSpeed, ok := geo.CalculateMaxSpeed(samples); ok {
		md.MaxSpeed = &maxSpeed
	}
	return md
}

// TimeBounds returns the first and last known point time
func (s *TrackSegment) TimeBounds() TimeBounds {
	var tb TimeBounds
	for i := range s.Points {
		if t := s.Points[i].Time; t != nil {
			if tb.Start == nil {
				tb.Start = t
			}
			tb.End = t
		}
	}
	return tb
}

// BoundingBox returns the lat/lon extent; all sides are unset without points
func (s *TrackSegment) BoundingBox() Bounds {
	var b Bounds
	for i := range s.Points {
		b.extend(s.Points[i].Latitude, s.Points[i].Longitude)
	}
	return b
}

// Center returns the mean latitude and longitude
func (s *TrackSegment) Center() (geo.Location, bool) {
	if len(s.Points) == 0 {
		return geo.Location{}, false
	}
	var lat, lon float64
	for i := range s.Points {
		lat += s.Points[i].Latitude
		lon += s.Points[i].Longitude
	}
	n := float64(len(s.Points))
	return geo.NewLocation(lat/n, lon/n), true
}

// Speed returns the speed at point i in m/s, averaging the speeds to its
// neighbours when both are known
func (s *TrackSegment) Speed(i int) (float64, bool) {
	if i < 0 || i >= len(s.Points) {
		return 0, false
	}
	point := &s.Points[i]

	var previous, next *TrackPoint
	if i > 0 {
		previous = &s.Points[i-1]
	}
	if i < len(s.Points)-1 {
		next = &s.Points[i+1]
	}

	before, okBefore := point.SpeedBetween(previous)
	after, okAfter := point.SpeedBetween(next)
	before, after = math.Abs(before), math.Abs(after)
	okBefore = okBefore && before != 0

	switch {
	case okBefore && okAfter && after != 0:
		return (before + after) / 2, true
	case okBefore:
		return before, true
	}
	return after, okAfter
}

// Duration is the time between the first and last point. The second and the
// next to last points stand in for endpoints without time. It is unknown when
// no usable times are found or they run backwards.
func (s *TrackSegment) Duration() (time.Duration, bool) {
	n := len(s.Points)
	if n < 2 {
		return 0, true
	}

	first := &s.Points[0]
	if first.Time == nil {
		first = &s.Points[1]
	}
	last := &s.Points[n-1]
	if last.Time == nil {
		last = &s.Points[n-2]
	}

	if first.Time == nil || last.Time == nil || last.Time.Before(*first.Time) {
		return 0, false
	}
	return last.Time.Sub(*first.Time), true
}

// UphillDownhill returns the total climb and descent in meters
func (s *TrackSegment) UphillDownhill() (float64, float64) {
	if len(s.Points) == 0 {
		return 0, 0
	}
	elevations := make([]*float64, len(s.Points))
	for i := range s.Points {
		elevations[i] = s.Points[i].Elevation
	}
	return geo.CalculateUphillDownhill(elevations)
}

// ElevationExtremes returns the lowest and highest known elevation
func (s *TrackSegment) ElevationExtremes() (lowest, highest float64, ok bool) {
	for i := range s.Points {
		e := s.Points[i].Elevation
		if e == nil {
			continue
		}
		if !ok || *e < lowest {
			lowest = *e
		}
		if !ok || *e > highest {
			highest = *e
		}
		ok = true
	}
	return lowest, highest, ok
}

// LocationAt returns the first point at or after t. t must lie between the
// times of the first and the last point.
func (s *TrackSegment) LocationAt(t time.Time) (TrackPoint, bool) {
	if len(s.Points) == 0 {
		return TrackPoint{}, false
	}
	first, last := s.Points[0].Time, s.Points[len(s.Points)-1].Time
	if first == nil || last == nil || t.Before(*first) || t.After(*last) {
		return TrackPoint{}, false
	}
	for _, point := range s.Points {
		if point.Time != nil && !t.After(*point.Time) {
			return point, true
		}
	}
	return TrackPoint{}, false
}

// NearestLocation returns the point with the smallest 2D distance to loc
// and its index. A best distance of exactly zero is replaced by the next
// point scanned.
func (s *TrackSegment) NearestLocation(loc geo.Location) (TrackPoint, int, bool) {
	best := -1
	var bestDistance float64
	for i := range s.Points {
		d := s.Points[i].Distance2D(loc)
		if best < 0 || bestDistance == 0 || d < bestDistance {
			best = i
			bestDistance = d
		}
	}
	if best < 0 {
		return TrackPoint{}, -1, false
	}
	return s.Points[best], best, true
}

// Smooth averages elevations (vertical) and/or coordinates (horizontal) over
// three points. With removeExtremes, outliers are dropped instead of moved.
// Endpoints are always kept and segments of three points or fewer are left
// as they are.
func (s *TrackSegment) Smooth(vertical, horizontal, removeExtremes bool) {
	n := len(s.Points)
	if n <= 3 {
		return
	}

	elevations := make([]*float64, n)
	latitudes := make([]float64, n)
	longitudes := make([]float64, n)
	for i := range s.Points {
		elevations[i] = s.Points[i].Elevation
		latitudes[i] = s.Points[i].Latitude
		longitudes[i] = s.Points[i].Longitude
	}

	avgDistance := 0.0
	avgElevationDelta := 1.0
	if removeExtremes {
		var distanceSum, deltaSum float64
		var deltas int
		for i := 1; i < n; i++ {
			distanceSum += s.Points[i].Distance2D(s.Points[i-1].Location)
			if elevations[i] != nil && elevations[i-1] != nil {
				deltaSum += math.Abs(*elevations[i] - *elevations[i-1])
				deltas++
			}
		}
		avgDistance = distanceSum / float64(n-1)
		if deltas > 0 {
			avgElevationDelta = deltaSum / float64(deltas)
		}
	}

	// Points that moved more than these thresholds are outliers
	remove2DThreshold := 1.75 * avgDistance
	removeElevationThreshold := 5 * avgElevationDelta

	smoothed := []TrackPoint{s.Points[0]}
	for i := 1; i < n-1; i++ {
		point := &s.Points[i]
		removed := false

		if vertical && elevations[i-1] != nil && elevations[i] != nil && elevations[i+1] != nil {
			old := *elevations[i]
			smooth := smoothingRatio[0]**elevations[i-1] + smoothingRatio[1]*old + smoothingRatio[2]**elevations[i+1]
			if removeExtremes {
				// Must be far from both neighbours to be an outlier
				d1 := math.Abs(old - *elevations[i-1])
				d2 := math.Abs(old - *elevations[i+1])
				if min(d1, d2) >= removeElevationThreshold || math.Abs(old-smooth) >= remove2DThreshold {
					removed = true
				}
			} else {
				setElevation(&point.Location, smooth)
			}
		}

		if horizontal {
			newLat := smoothingRatio[0]*latitudes[i-1] + smoothingRatio[1]*latitudes[i] + smoothingRatio[2]*latitudes[i+1]
			newLon := smoothingRatio[0]*longitudes[i-1] + smoothingRatio[1]*longitudes[i] + smoothingRatio[2]*longitudes[i+1]
			if !removeExtremes {
				point.Latitude = newLat
				point.Longitude = newLon
			} else {
				d1 := geo.Distance(latitudes[i-1], longitudes[i-1], nil, latitudes[i], longitudes[i], nil, false)
				d2 := geo.Distance(latitudes[i+1], longitudes[i+1], nil, latitudes[i], longitudes[i], nil, false)
				d := geo.Distance(latitudes[i-1], longitudes[i-1], nil, latitudes[i+1], longitudes[i+1], nil, false)
				if d1+d2 > d*1.5 {
					moved := geo.Distance(latitudes[i], longitudes[i], nil, newLat, newLon, nil, false)
					if moved >= remove2DThreshold {
						removed = true
					}
				}
			}
		}

		if !removed {
			smoothed = append(smoothed, *point)
		}
	}
	smoothed = append(smoothed, s.Points[n-1])
	s.Points = smoothed
}

// AddMissingData calls fill for every run of points without data that has a
// point on both sides. Runs at the end of the segment are left alone.
func (s *TrackSegment) AddMissingData(hasData func(*TrackPoint) bool, fill MissingDataFunc) error {
	if hasData == nil {
		return semanticf("missing data predicate")
	}
	if fill == nil {
		return semanticf("missing fill function")
	}

	var interval []*TrackPoint
	var start, previous *TrackPoint
	for i := range s.Points {
		point := &s.Points[i]
		if !hasData(point) && previous != nil {
			if start == nil {
				start = previous
			}
			interval = append(interval, point)
		} else if len(interval) > 0 {
			fill(interval, start, point, intervalRatios(interval, start, point))
			start = nil
			interval = nil
		}
		previous = point
	}
	return nil
}

// intervalRatios returns the cumulative 3D distance from start to each point
// of interval as a share of the whole start to end distance
func intervalRatios(interval []*TrackPoint, start, end *TrackPoint) []float64 {
	distances := make([]float64, len(interval))
	var fromStart float64
	previous := start
	for i, point := range interval {
		fromStart += point.Distance3D(previous.Location)
		distances[i] = fromStart
		previous = point
	}

	total := distances[len(distances)-1] + interval[len(interval)-1].Distance3D(end.Location)
	for i := range distances {
		if total == 0 {
			distances[i] = 0
		} else {
			distances[i] /= total
		}
	}
	return distances
}

// AddMissingElevations interpolates elevations linearly by distance
func (s *TrackSegment) AddMissingElevations() {
	_ = s.AddMissingData(func(p *TrackPoint) bool { return p.Elevation != nil }, fillElevations)
}

// AddMissingTimes interpolates times linearly by distance
func (s *TrackSegment) AddMissingTimes() {
	_ = s.AddMissingData(func(p *TrackPoint) bool { return p.Time != nil }, fillTimes)
}

// AddMissingSpeeds sets speeds from the distance and time to the neighbours
func (s *TrackSegment) AddMissingSpeeds() {
	_ = s.AddMissingData(func(p *TrackPoint) bool { return p.Speed != nil }, fillSpeeds)
}

func fillElevations(interval []*TrackPoint, start, end *TrackPoint, ratios []float64) {
	if start.Elevation == nil || end.Elevation == nil {
		return
	}
	from, to := *start.Elevation, *end.Elevation
	for i, point := range interval {
		setElevation(&point.Location, from+ratios[i]*(to-from))
	}
}

func fillTimes(interval []*TrackPoint, start, end *TrackPoint, ratios []float64) {
	if start.Time == nil || end.Time == nil {
		return
	}
	between := end.Time.Sub(*start.Time).Seconds()
	for i, point := range interval {
		t := start.Time.Add(time.Duration(ratios[i] * between * float64(time.Second)))
		point.Time = &t
	}
}

func fillSpeeds(interval []*TrackPoint, start, end *TrackPoint, _ []float64) {
	if start.Time == nil || end.Time == nil {
		return
	}

	type step struct {
		elapsed  time.Duration
		known    bool
		distance float64
	}
	// neighbours[i] is the step before interval[i], neighbours[i+1] the one after
	chain := slices.Concat([]*TrackPoint{start}, interval, []*TrackPoint{end})
	neighbours := make([]step, len(chain)-1)
	for i := range neighbours {
		elapsed, ok := chain[i+1].TimeDifference(chain[i])
		neighbours[i] = step{elapsed: elapsed, known: ok, distance: chain[i+1].Distance3D(chain[i].Location)}
	}

	for i, point := range interval {
		left, right := neighbours[i], neighbours[i+1]
		seconds := (left.elapsed + right.elapsed).Seconds()
		if !left.known || !right.known || seconds == 0 {
			continue
		}
		speed := (left.distance + right.distance) / seconds
		point.Speed = &speed
	}
}

// HasTimes reports whether more than 75% of the points have a time. An
// empty segment counts as timed so it does not change its track's answer.
func (s *TrackSegment) HasTimes() bool {
	return s.coverage(func(p *TrackPoint) bool { return p.Time != nil })
}

// HasElevations is HasTimes for elevations
func (s *TrackSegment) HasElevations() bool {
	return s.coverage(func(p *TrackPoint) bool { return p.Elevation != nil })
}

func (s *TrackSegment) coverage(has func(*TrackPoint) bool) bool {
	if len(s.Points) == 0 {
		return true
	}
	found := 0
	for i := range s.Points {
		if has(&s.Points[i]) {
			found++
		}
	}
	return len(s.Points) > 2 && float64(found)/float64(len(s.Points)) > 0.75
}

// Clone returns an independent deep copy
func (s *TrackSegment) Clone() *TrackSegment {
	return clone(s)
}
