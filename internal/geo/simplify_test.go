package geo

import (
	"math"
	"testing"
)

func zigzag() []Location {
	return []Location{
		NewLocation(0, 0),
		NewLocation(0.0005, 0.001),
		NewLocation(0.00001, 0.002),
		NewLocation(0.0008, 0.003),
		NewLocation(0, 0.004),
		NewLocation(-0.0003, 0.005),
		NewLocation(0, 0.006),
	}
}

func TestDistanceFromLine(t *testing.T) {
	p1 := NewLocation(0, 0)
	p2 := NewLocation(0, 0.01)
	point := NewLocation(0.001, 0.005)

	d := DistanceFromLine(point, p1, p2)
	expected := 0.001 * OneDegree
	if math.Abs(d-expected)/expected > 0.001 {
		t.Errorf("Expected ~%f, got %f", expected, d)
	}

	// Degenerate line
	if d := DistanceFromLine(point, p1, p1); d != p1.Distance2D(point) {
		t.Errorf("Expected point distance for degenerate line, got %f", d)
	}
}

func TestLineEquationCoefficients(t *testing.T) {
	a, b, c := LineEquationCoefficients(NewLocation(1, 5), NewLocation(3, 5))
	if a != 0 || b != 1 || c != -5 {
		t.Errorf("Unexpected vertical line coefficients %f %f %f", a, b, c)
	}

	l1, l2 := NewLocation(1, 1), NewLocation(3, 2)
	a, b, c = LineEquationCoefficients(l1, l2)
	for _, l := range []Location{l1, l2} {
		if v := a*l.Latitude + b*l.Longitude + c; math.Abs(v) > 1e-12 {
			t.Errorf("Point %+v not on line: %f", l, v)
		}
	}
}

func TestSimplifyStraightLine(t *testing.T) {
	var line []Location
	for i := 0; i < 25; i++ {
		line = append(line, NewLocation(0.0001*float64(i), 0.0002*float64(i)))
	}

	result := SimplifyPolyline(line, 0.5)
	if len(result) != 2 {
		t.Fatalf("Expected 2 endpoints, got %d points", len(result))
	}
	if result[0] != line[0] || result[1] != line[len(line)-1] {
		t.Errorf("Endpoints not preserved: %+v", result)
	}
}

func TestSimplifyShortInput(t *testing.T) {
	two := []Location{NewLocation(0, 0), NewLocation(1, 1)}
	if got := SimplifyPolyline(two, 10); len(got) != 2 {
		t.Errorf("Expected 2 points untouched, got %d", len(got))
	}
	if got := SimplifyPolyline(nil, 10); len(got) != 0 {
		t.Errorf("Expected empty result, got %d", len(got))
	}
}

func TestSimplifyKeepsDeviations(t *testing.T) {
	points := zigzag()

	all := SimplifyPolyline(points, 1)
	if len(all) != len(points) {
		t.Errorf("Expected every zigzag point with 1 m tolerance, got %d", len(all))
	}

	none := SimplifyPolyline(points, 1000)
	if len(none) != 2 {
		t.Errorf("Expected only endpoints with 1 km tolerance, got %d", len(none))
	}
}

func TestSimplifyIdempotent(t *testing.T) {
	points := zigzag()
	for _, tolerance := range []float64{5, 20, 40, 60, 100} {
		once := SimplifyPolyline(points, tolerance)
		twice := SimplifyPolyline(once, tolerance)
		if len(once) != len(twice) {
			t.Fatalf("tolerance %f: %d points then %d points", tolerance, len(once), len(twice))
		}
		for i := range once {
			if once[i] != twice[i] {
				t.Errorf("tolerance %f: point %d differs", tolerance, i)
			}
		}
	}
}

func TestSimplifyDeepSplit(t *testing.T) {
	// Every point deviates, so every span is split
	var points []Location
	for i := 0; i < 5000; i++ {
		points = append(points, NewLocation(0.01*float64(i%2), 0.0001*float64(i)))
	}
	if got := SimplifyIndices(points, 1); len(got) != len(points) {
		t.Errorf("Expected all %d points, got %d", len(points), len(got))
	}
}
