package gpx

import (
	"iter"
	"time"

	"github.com/planbiir/gpxkit/internal/geo"
)

// PointIndex locates a track point inside a document
type PointIndex struct {
	TrackNo   int
	SegmentNo int
	PointNo   int
}

// NearestLocation is the result of a nearest point search
type NearestLocation struct {
	Point TrackPoint
	PointIndex
}

func (b *Bounds) extend(lat, lon float64) {
	b.merge(Bounds{MinLatitude: &lat, MaxLatitude: &lat, MinLongitude: &lon, MaxLongitude: &lon})
}

// merge widens b to cover o; unset sides of o are ignored
func (b *Bounds) merge(o Bounds) {
	lower := func(dst **float64, v *float64) {
		if v != nil && (*dst == nil || *v < **dst) {
			x := *v
			*dst = &x
		}
	}
	upper := func(dst **float64, v *float64) {
		if v != nil && (*dst == nil || *v > **dst) {
			x := *v
			*dst = &x
		}
	}
	lower(&b.MinLatitude, o.MinLatitude)
	upper(&b.MaxLatitude, o.MaxLatitude)
	lower(&b.MinLongitude, o.MinLongitude)
	upper(&b.MaxLongitude, o.MaxLongitude)
}

// PointsNo returns the number of points in all segments
func (t *Track) PointsNo() int {
	n := 0
	for i := range t.Segments {
		n += t.Segments[i].PointsNo()
	}
	return n
}

// Walk yields every point with its segment and point index
func (t *Track) Walk() iter.Seq2[PointIndex, *TrackPoint] {
	return func(yield func(PointIndex, *TrackPoint) bool) {
		for s := range t.Segments {
			for p := range t.Segments[s].Points {
				if !yield(PointIndex{SegmentNo: s, PointNo: p}, &t.Segments[s].Points[p]) {
					return
				}
			}
		}
	}
}

// Simplify runs TrackSegment.Simplify on every segment
func (t *Track) Simplify(maxDistance float64) {
	for i := range t.Segments {
		t.Segments[i].Simplify(maxDistance)
	}
}

// ReducePoints runs TrackSegment.ReducePoints on every segment
func (t *Track) ReducePoints(minDistance float64) {
	for i := range t.Segments {
		t.Segments[i].ReducePoints(minDistance)
	}
}

func (t *Track) AdjustTime(delta time.Duration) {
	for i := range t.Segments {
		t.Segments[i].AdjustTime(delta)
	}
}

func (t *Track) RemoveTime() {
	for i := range t.Segments {
		t.Segments[i].RemoveTime()
	}
}

func (t *Track) RemoveElevation() {
	for i := range t.Segments {
		t.Segments[i].RemoveElevation()
	}
}

func (t *Track) AddElevation(delta float64) {
	for i := range t.Segments {
		t.Segments[i].AddElevation(delta)
	}
}

func (t *Track) Move(delta geo.LocationDelta) {
	for i := range t.Segments {
		t.Segments[i].Move(delta)
	}
}

// Smooth runs TrackSegment.Smooth on every segment
func (t *Track) Smooth(vertical, horizontal, removeExtremes bool) {
	for i := range t.Segments {
		t.Segments[i].Smooth(vertical, horizontal, removeExtremes)
	}
}

// RemoveEmpty drops segments without points
func (t *Track) RemoveEmpty() {
	var segments []TrackSegment
	for _, s := range t.Segments {
		if len(s.Points) > 0 {
			segments = append(segments, s)
		}
	}
	t.Segments = segments
}

// Length2D sums the 2D length of all segments
func (t *Track) Length2D() float64 {
	var length float64
	for i := range t.Segments {
		length += t.Segments[i].Length2D()
	}
	return length
}

// Length3D sums the 3D length of all segments
func (t *Track) Length3D() float64 {
	var length float64
	for i := range t.Segments {
		length += t.Segments[i].Length3D()
	}
	return length
}

// TimeBounds returns the first start and the last end over all segments
func (t *Track) TimeBounds() TimeBounds {
	var tb TimeBounds
	for i := range t.Segments {
		sb := t.Segments[i].TimeBounds()
		if tb.Start == nil {
			tb.Start = sb.Start
		}
		if sb.End != nil {
			tb.End = sb.End
		}
	}
	return tb
}

// BoundingBox returns the lat/lon extent of all segments
func (t *Track) BoundingBox() Bounds {
	var b Bounds
	for i := range t.Segments {
		b.merge(t.Segments[i].BoundingBox())
	}
	return b
}

// Split cuts segment segmentNo after point pointNo. Empty parts are dropped.
func (t *Track) Split(segmentNo, pointNo int) {
	if segmentNo < 0 || segmentNo >= len(t.Segments) {
		return
	}
	first, second := t.Segments[segmentNo].Split(pointNo)

	var parts []TrackSegment
	for _, part := range []TrackSegment{first, second} {
		if len(part.Points) > 0 {
			parts = append(parts, part)
		}
	}
	t.Segments = append(t.Segments[:segmentNo:segmentNo], append(parts, t.Segments[segmentNo+1:]...)...)
}

// Join appends segment j to segment i and removes j
func (t *Track) Join(i, j int) {
	if i < 0 || i >= len(t.Segments) || j < 0 || j >= len(t.Segments) || i == j {
		return
	}
	t.Segments[i].Join(t.Segments[j])
	t.Segments = append(t.Segments[:j:j], t.Segments[j+1:]...)
}

// JoinNext joins segment i with the one after it
func (t *Track) JoinNext(i int) {
	t.Join(i, i+1)
}

// MovingData sums the moving data of all segments
func (t *Track) MovingData(stoppedSpeedThreshold float64) MovingData {
	var md MovingData
	for i := range t.Segments {
		md.add(t.Segments[i].MovingData(stoppedSpeedThreshold))
	}
	return md
}

// Duration sums segment durations; it is unknown if any segment's is
func (t *Track) Duration() (time.Duration, bool) {
	var total time.Duration
	for i := range t.Segments {
		d, ok := t.Segments[i].Duration()
		if !ok {
			return 0, false
		}
		total += d
	}
	return total, true
}

// UphillDownhill sums the climb and descent of all segments
func (t *Track) UphillDownhill() (float64, float64) {
	var uphill, downhill float64
	for i := range t.Segments {
		up, down := t.Segments[i].UphillDownhill()
		uphill += up
		downhill += down
	}
	return uphill, downhill
}

// ElevationExtremes returns the lowest and highest known elevation
func (t *Track) ElevationExtremes() (lowest, highest float64, ok bool) {
	for i := range t.Segments {
		lo, hi, found := t.Segments[i].ElevationExtremes()
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

// LocationAt returns one point per segment that spans t
func (t *Track) LocationAt(at time.Time) []TrackPoint {
	var result []TrackPoint
	for i := range t.Segments {
		if point, ok := t.Segments[i].LocationAt(at); ok {
			result = append(result, point)
		}
	}
	return result
}

// Center returns the mean latitude and longitude of all points, or 0,0 for
// a track whose segments are all empty
func (t *Track) Center() (geo.Location, bool) {
	if len(t.Segments) == 0 {
		return geo.Location{}, false
	}
	var lat, lon, n float64
	for _, point := range t.Walk() {
		lat += point.Latitude
		lon += point.Longitude
		n++
	}
	if n == 0 {
		return geo.NewLocation(0, 0), true
	}
	return geo.NewLocation(lat/n, lon/n), true
}

// NearestLocation searches all segments. SegmentNo and PointNo are set;
// TrackNo is left for the caller.
func (t *Track) NearestLocation(loc geo.Location) (NearestLocation, bool) {
	var result NearestLocation
	var bestDistance float64
	found := false
	for i := range t.Segments {
		point, pointNo, ok := t.Segments[i].NearestLocation(loc)
		if !ok {
			continue
		}
		d := point.Distance2D(loc)
		if !found || bestDistance == 0 || d < bestDistance {
			result = NearestLocation{Point: point, PointIndex: PointIndex{SegmentNo: i, PointNo: pointNo}}
			bestDistance = d
			found = true
		}
	}
	return result, found
}

// AddMissingData runs TrackSegment.AddMissingData on every segment
func (t *Track) AddMissingData(hasData func(*TrackPoint) bool, fill MissingDataFunc) error {
	for i := range t.Segments {
		if err := t.Segments[i].AddMissingData(hasData, fill); err != nil {
			return err
		}
	}
	return nil
}

// HasTimes reports whether every segment has times; false without segments
func (t *Track) HasTimes() bool {
	if len(t.Segments) == 0 {
		return false
	}
	for i := range t.Segments {
		if !t.Segments[i].HasTimes() {
			return false
		}
	}
	return true
}

// HasElevations reports whether every segment has elevations; false without segments
func (t *Track) HasElevations() bool {
	if len(t.Segments) == 0 {
		return false
	}
	for i := range t.Segments {
		if !t.Segments[i].HasElevations() {
			return false
		}
	}
	return true
}

// Clone returns an independent deep copy
func (t *Track) Clone() *Track {
	return clone(t)
}
