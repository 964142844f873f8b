package gpx

import (
	"math"
	"testing"
	"time"

	gpxgo "github.com/tkrajina/gpxgo/gpx"
)

func TestOutputReadableByGpxgo(t *testing.T) {
	var s TrackSegment
	for i := range 11 {
		at := t0.Add(time.Duration(i) * 10 * time.Second)
		s.Points = append(s.Points, NewTrackPoint(45, 7+float64(i)*0.001, ptr(500+float64(i)), &at))
	}
	g := singleTrack(s)
	g.Name = ptr("interop")

	for _, version := range []string{"1.0", "1.1"} {
		out, err := g.ToXML(XMLVersion(version))
		if err != nil {
			t.Fatalf("ToXML %s failed: %v", version, err)
		}

		other, err := gpxgo.ParseString(out)
		if err != nil {
			t.Fatalf("gpxgo could not read %s output: %v\n%s", version, err, out)
		}
		if len(other.Tracks) != 1 || len(other.Tracks[0].Segments) != 1 {
			t.Fatalf("%s: expected 1 track with 1 segment", version)
		}
		points := other.Tracks[0].Segments[0].Points
		if len(points) != 11 {
			t.Fatalf("%s: expected 11 points, got %d", version, len(points))
		}
		if !points[3].Timestamp.Equal(t0.Add(30 * time.Second)) {
			t.Errorf("%s: expected time %v, got %v", version, t0.Add(30*time.Second), points[3].Timestamp)
		}
		if points[3].Elevation.Value() != 503 {
			t.Errorf("%s: expected elevation 503, got %f", version, points[3].Elevation.Value())
		}

		ours, theirs := g.Length2D(), other.Length2D()
		if math.Abs(ours-theirs)/ours > 0.005 {
			t.Errorf("%s: length differs, ours %f, gpxgo %f", version, ours, theirs)
		}
	}
}

func TestParseGpxgoOutput(t *testing.T) {
	doc := &gpxgo.GPX{Name: "from gpxgo"}
	doc.AppendTrack(&gpxgo.GPXTrack{Name: "track"})
	for i := range 5 {
		doc.AppendPoint(&gpxgo.GPXPoint{
			Point:     gpxgo.Point{Latitude: 46, Longitude: 7 + float64(i)*0.001},
			Timestamp: t0.Add(time.Duration(i) * time.Minute),
		})
	}

	data, err := doc.ToXml(gpxgo.ToXmlParams{Version: "1.1", Indent: true})
	if err != nil {
		t.Fatalf("gpxgo ToXml failed: %v", err)
	}

	g, err := ParseBytes(data)
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	if g.Name == nil || *g.Name != "from gpxgo" {
		t.Errorf("Expected name, got %v", g.Name)
	}
	if g.TrackPointsNo() != 5 {
		t.Fatalf("Expected 5 points, got %d", g.TrackPointsNo())
	}
	if d, ok := g.Duration(); !ok || d != 4*time.Minute {
		t.Errorf("Expected 4 minutes, got %v %v", d, ok)
	}
}
