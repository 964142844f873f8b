package gpx

import (
	"errors"
	"math"
	"testing"
	"time"

	"github.com/planbiir/gpxkit/internal/geo"
)

var t0 = time.Date(2025, 1, 1, 10, 0, 0, 0, time.UTC)

func ptr[T any](v T) *T { return &v }

// equatorSegment returns n points along the equator, 0.001 degrees of
// longitude (about 111 m) and step apart
func equatorSegment(n int, step time.Duration) TrackSegment {
	var s TrackSegment
	for i := range n {
		at := t0.Add(time.Duration(i) * step)
		s.Points = append(s.Points, NewTrackPoint(0, float64(i)*0.001, nil, &at))
	}
	return s
}

// elevationSegment returns points 0.0001 degrees of latitude apart with the
// given elevations
func elevationSegment(elevations ...*float64) TrackSegment {
	var s TrackSegment
	for i, e := range elevations {
		s.Points = append(s.Points, NewTrackPoint(float64(i)*0.0001, 0, e, nil))
	}
	return s
}

func TestMovingDataStopped(t *testing.T) {
	var s TrackSegment
	for i := range 5 {
		at := t0.Add(time.Duration(i) * 10 * time.Second)
		s.Points = append(s.Points, NewTrackPoint(46, 7, nil, &at))
	}

	md := s.MovingData(0)
	if md.MovingTime != 0 || md.MovingDistance != 0 {
		t.Errorf("Expected no movement, got %+v", md)
	}
	if md.StoppedTime != 40*time.Second {
		t.Errorf("Expected 40s stopped, got %v", md.StoppedTime)
	}
	if md.MaxSpeed != nil {
		t.Errorf("Expected unknown max speed, got %v", *md.MaxSpeed)
	}
}

func TestMovingDataMoving(t *testing.T) {
	s := equatorSegment(25, 10*time.Second)

	md := s.MovingData(DefaultStoppedSpeedThreshold)
	if md.MovingTime != 240*time.Second || md.StoppedTime != 0 {
		t.Errorf("Expected 240s moving, got %+v", md)
	}
	if math.Abs(md.MovingDistance-24*111.3195) > 0.5 {
		t.Errorf("Expected ~2671.7 m moving, got %f", md.MovingDistance)
	}
	if md.MaxSpeed == nil || math.Abs(*md.MaxSpeed-11.13195) > 0.01 {
		t.Errorf("Expected max speed ~11.13 m/s, got %v", md.MaxSpeed)
	}

	// 40 km/h is below a 50 km/h threshold
	md = s.MovingData(50)
	if md.MovingTime != 0 || md.StoppedTime != 240*time.Second {
		t.Errorf("Expected everything stopped, got %+v", md)
	}
}

func TestSimplify(t *testing.T) {
	s := equatorSegment(11, time.Second)
	s.Points[5].Latitude = 0.00001
	last := s.Points[10]

	s.Simplify(0)
	if len(s.Points) != 2 {
		t.Fatalf("Expected endpoints only, got %d points", len(s.Points))
	}
	if s.Points[1].Longitude != last.Longitude {
		t.Errorf("Expected the last point to be kept, got lon=%f", s.Points[1].Longitude)
	}
}

func TestReducePoints(t *testing.T) {
	s := equatorSegment(11, time.Second)

	s.ReducePoints(0)
	if len(s.Points) != 11 {
		t.Errorf("Expected no change with 0, got %d points", len(s.Points))
	}

	s.ReducePoints(200)
	if len(s.Points) != 6 {
		t.Errorf("Expected every other point, got %d points", len(s.Points))
	}
}

func TestSmoothVertical(t *testing.T) {
	s := elevationSegment(ptr(100.0), ptr(200.0), ptr(100.0), ptr(100.0), ptr(100.0))

	s.Smooth(true, false, false)

	want := []float64{100, 120, 140, 100, 100}
	for i, w := range want {
		if got := *s.Points[i].Elevation; math.Abs(got-w) > 1e-9 {
			t.Errorf("point %d: expected %f, got %f", i, w, got)
		}
	}
}

func TestSmoothRemoveExtremes(t *testing.T) {
	s := elevationSegment(ptr(100.0), ptr(101.0), ptr(100.0), ptr(101.0), ptr(500.0), ptr(101.0), ptr(100.0), ptr(101.0))

	s.Smooth(true, false, true)

	want := []float64{100, 101, 100, 100, 101}
	if len(s.Points) != len(want) {
		t.Fatalf("Expected %d points, got %d", len(want), len(s.Points))
	}
	for i, w := range want {
		if got := *s.Points[i].Elevation; got != w {
			t.Errorf("point %d: expected %f, got %f", i, w, got)
		}
	}
}

func TestSmoothShortSegment(t *testing.T) {
	s := elevationSegment(ptr(100.0), ptr(200.0), ptr(100.0))
	s.Smooth(true, true, false)
	if *s.Points[1].Elevation != 200 {
		t.Errorf("Expected segments of 3 points to be left alone")
	}
}

func TestAddMissingElevations(t *testing.T) {
	s := elevationSegment(ptr(100.0), nil, nil, ptr(130.0))
	s.AddMissingElevations()

	for i, w := range []float64{100, 110, 120, 130} {
		e := s.Points[i].Elevation
		if e == nil || math.Abs(*e-w) > 1e-6 {
			t.Errorf("point %d: expected %f, got %v", i, w, e)
		}
	}

	s = elevationSegment(nil, ptr(100.0), nil, ptr(130.0), nil)
	s.AddMissingElevations()
	if s.Points[0].Elevation != nil || s.Points[4].Elevation != nil {
		t.Errorf("Expected leading and trailing gaps to stay empty")
	}
	if e := s.Points[2].Elevation; e == nil || math.Abs(*e-115) > 1e-6 {
		t.Errorf("Expected 115, got %v", e)
	}
}

func TestAddMissingTimes(t *testing.T) {
	s := equatorSegment(3, 10*time.Second)
	s.Points[1].Time = nil

	s.AddMissingTimes()

	got := s.Points[1].Time
	if got == nil {
		t.Fatal("Expected a time to be filled")
	}
	if d := got.Sub(t0.Add(10 * time.Second)); d > time.Millisecond || d < -time.Millisecond {
		t.Errorf("Expected 10:00:10, got %v", got)
	}
}

func TestAddMissingSpeeds(t *testing.T) {
	s := equatorSegment(3, 10*time.Second)
	s.Points[0].Speed = ptr(11.0)
	s.Points[2].Speed = ptr(11.0)

	s.AddMissingSpeeds()

	got := s.Points[1].Speed
	if got == nil || math.Abs(*got-11.132) > 0.01 {
		t.Errorf("Expected ~11.132 m/s, got %v", got)
	}
}

func TestAddMissingDataRequiresFunctions(t *testing.T) {
	s := equatorSegment(3, time.Second)
	var semanticErr *SemanticError

	if err := s.AddMissingData(nil, fillTimes); !errors.As(err, &semanticErr) {
		t.Errorf("Expected *SemanticError for a nil predicate, got %v", err)
	}
	if err := s.AddMissingData(func(*TrackPoint) bool { return true }, nil); !errors.As(err, &semanticErr) {
		t.Errorf("Expected *SemanticError for a nil fill function, got %v", err)
	}
}

func TestDuration(t *testing.T) {
	s := equatorSegment(4, 10*time.Second)
	if d, ok := s.Duration(); !ok || d != 30*time.Second {
		t.Errorf("Expected 30s, got %v %v", d, ok)
	}

	s.Points[0].Time = nil
	if d, ok := s.Duration(); !ok || d != 20*time.Second {
		t.Errorf("Expected 20s from the second point, got %v %v", d, ok)
	}

	s.Points[1].Time = nil
	if _, ok := s.Duration(); ok {
		t.Errorf("Expected unknown duration")
	}

	single := equatorSegment(1, time.Second)
	if d, ok := single.Duration(); !ok || d != 0 {
		t.Errorf("Expected 0 for a single point, got %v %v", d, ok)
	}
}

func TestHasTimes(t *testing.T) {
	s := equatorSegment(4, time.Second)
	s.Points[3].Time = nil
	if s.HasTimes() {
		t.Errorf("75%% coverage must not count as timed")
	}

	s = equatorSegment(5, time.Second)
	s.Points[4].Time = nil
	if !s.HasTimes() {
		t.Errorf("80%% coverage must count as timed")
	}

	s = equatorSegment(2, time.Second)
	if s.HasTimes() {
		t.Errorf("Two points are too few")
	}

	var empty TrackSegment
	if !empty.HasTimes() {
		t.Errorf("An empty segment counts as timed")
	}
}

func TestSpeed(t *testing.T) {
	s := equatorSegment(3, 10*time.Second)
	for i := range 3 {
		v, ok := s.Speed(i)
		if !ok || math.Abs(v-11.132) > 0.01 {
			t.Errorf("point %d: expected ~11.132 m/s, got %f %v", i, v, ok)
		}
	}
	if _, ok := s.Speed(3); ok {
		t.Errorf("Expected unknown speed out of range")
	}
}

func TestNearestLocationZeroDistance(t *testing.T) {
	s := equatorSegment(3, time.Second)

	// An exact hit on the first point gives way to the next point scanned
	_, i, ok := s.NearestLocation(geo.NewLocation(0, 0))
	if !ok || i != 1 {
		t.Errorf("Expected index 1, got %d %v", i, ok)
	}

	_, i, ok = s.NearestLocation(geo.NewLocation(0.0001, 0.0021))
	if !ok || i != 2 {
		t.Errorf("Expected index 2, got %d %v", i, ok)
	}

	var empty TrackSegment
	if _, _, ok := empty.NearestLocation(geo.NewLocation(0, 0)); ok {
		t.Errorf("Expected no result for an empty segment")
	}
}

func TestNearestLocationFirstPoint(t *testing.T) {
	s := equatorSegment(3, time.Second)

	// the first point takes part in the distance comparison
	_, i, ok := s.NearestLocation(geo.NewLocation(0.0001, -0.001))
	if !ok || i != 0 {
		t.Errorf("Expected index 0, got %d %v", i, ok)
	}

	single := equatorSegment(1, time.Second)
	if _, i, ok := single.NearestLocation(geo.NewLocation(1, 1)); !ok || i != 0 {
		t.Errorf("Expected the only point, got %d %v", i, ok)
	}
}

func TestLocationAt(t *testing.T) {
	s := equatorSegment(3, 10*time.Second)

	p, ok := s.LocationAt(t0.Add(5 * time.Second))
	if !ok || p.Longitude != 0.001 {
		t.Errorf("Expected the second point, got %+v %v", p.Location, ok)
	}
	if _, ok := s.LocationAt(t0.Add(time.Minute)); ok {
		t.Errorf("Expected nothing after the last point")
	}
}

func TestUphillDownhillAndExtremes(t *testing.T) {
	s := elevationSegment(ptr(100.0), ptr(110.0), ptr(120.0), ptr(110.0), ptr(100.0))

	up, down := s.UphillDownhill()
	if math.Abs(up-14) > 1e-9 || math.Abs(down-14) > 1e-9 {
		t.Errorf("Expected 14/14, got %f/%f", up, down)
	}

	lo, hi, ok := s.ElevationExtremes()
	if !ok || lo != 100 || hi != 120 {
		t.Errorf("Expected 100..120, got %f..%f %v", lo, hi, ok)
	}

	s.RemoveElevation()
	if _, _, ok := s.ElevationExtremes(); ok {
		t.Errorf("Expected no extremes without elevations")
	}
}

func TestAdjustTimeSharedPointer(t *testing.T) {
	shared := t0
	s := TrackSegment{Points: []TrackPoint{
		NewTrackPoint(0, 0, nil, &shared),
		NewTrackPoint(0, 0.001, nil, &shared),
	}}

	s.AdjustTime(time.Hour)

	for i, p := range s.Points {
		if !p.Time.Equal(t0.Add(time.Hour)) {
			t.Errorf("point %d: expected one hour shift, got %v", i, p.Time)
		}
	}
	if !shared.Equal(t0) {
		t.Errorf("the original time value was modified: %v", shared)
	}
}

func TestSplitAndJoin(t *testing.T) {
	track := Track{Segments: []TrackSegment{equatorSegment(5, time.Second)}}

	track.Split(0, 1)
	if len(track.Segments) != 2 || track.Segments[0].PointsNo() != 2 || track.Segments[1].PointsNo() != 3 {
		t.Fatalf("Expected 2+3 points, got %d segments", len(track.Segments))
	}

	track.JoinNext(0)
	if len(track.Segments) != 1 || track.Segments[0].PointsNo() != 5 {
		t.Fatalf("Expected one segment of 5 points after join, got %d segments", len(track.Segments))
	}

	track.Split(0, 4)
	if len(track.Segments) != 1 {
		t.Errorf("Splitting after the last point must not add an empty segment")
	}
}

func TestBoundingBoxAndCenter(t *testing.T) {
	s := equatorSegment(3, time.Second)

	b := s.BoundingBox()
	if *b.MinLongitude != 0 || *b.MaxLongitude != 0.002 || *b.MinLatitude != 0 || *b.MaxLatitude != 0 {
		t.Errorf("Unexpected bounds %v %v %v %v", *b.MinLatitude, *b.MaxLatitude, *b.MinLongitude, *b.MaxLongitude)
	}

	c, ok := s.Center()
	if !ok || math.Abs(c.Longitude-0.001) > 1e-12 {
		t.Errorf("Expected center at lon 0.001, got %+v", c)
	}

	var empty Track
	if _, ok := empty.Center(); ok {
		t.Errorf("Expected no center without segments")
	}
}
