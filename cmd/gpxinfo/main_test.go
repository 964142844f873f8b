package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"

	"github.com/planbiir/gpxkit/internal/gpx"
)

const testGPX = `<?xml version="1.0" encoding="UTF-8"?>
<gpx xmlns="http://www.topografix.com/GPX/1/1" version="1.1" creator="test">
  <wpt lat="0.0005" lon="0.001"><name>Spring</name><ele>12</ele></wpt>
  <rte><name>Plan</name>
    <rtept lat="0" lon="0"></rtept>
    <rtept lat="0" lon="0.004"></rtept>
  </rte>
  <trk><name>Morning</name><trkseg>
    <trkpt lat="0" lon="0"><ele>10</ele><time>2025-01-01T10:00:00Z</time></trkpt>
    <trkpt lat="0" lon="0.001"><ele>15</ele><time>2025-01-01T10:00:10Z</time></trkpt>
    <trkpt lat="0" lon="0.002"><ele>12</ele><time>2025-01-01T10:00:20Z</time></trkpt>
    <trkpt lat="0" lon="0.003"><ele>20</ele><time>2025-01-01T10:00:30Z</time></trkpt>
  </trkseg></trk>
</gpx>
`

// writeTestFile chdirs into a fresh directory so no gpxinfo.yaml is picked up
func writeTestFile(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	t.Chdir(dir)
	path := filepath.Join(dir, "test.gpx")
	if err := os.WriteFile(path, []byte(testGPX), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func run(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	err := newApp(&stdout, &stderr).Run(append([]string{"gpxinfo"}, args...))
	return stdout.String(), stderr.String(), err
}

func TestInfo(t *testing.T) {
	path := writeTestFile(t)

	out, _, err := run(t, "info", "--tracks", path)
	if err != nil {
		t.Fatalf("info failed: %v", err)
	}

	for _, want := range []string{
		"File: " + path,
		"Length 2D: 0.334 km",
		"Moving time: 00:00:30",
		"Total uphill: 10.00 m",
		"Total downhill: 0.00 m",
		"Started: 2025-01-01T10:00:00Z",
		"Ended: 2025-01-01T10:00:30Z",
		"Points: 4",
		"Track #0 Morning",
		"Segment #0",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("Expected %q in output:\n%s", want, out)
		}
	}
}

func TestInfoLanguage(t *testing.T) {
	path := writeTestFile(t)

	out, _, err := run(t, "info", "--lang", "de", path)
	if err != nil {
		t.Fatalf("info failed: %v", err)
	}
	if !strings.Contains(out, "Length 2D: 0,334 km") {
		t.Errorf("Expected a decimal comma:\n%s", out)
	}

	if _, _, err := run(t, "info", "--lang", "not a tag!", path); err == nil {
		t.Errorf("Expected an error for an invalid language")
	}
}

func TestInfoBackends(t *testing.T) {
	path := writeTestFile(t)

	encoding, _, err := run(t, "info", path)
	if err != nil {
		t.Fatalf("info failed: %v", err)
	}
	tokenizer, _, err := run(t, "--backend", "tokenizer", "info", path)
	if err != nil {
		t.Fatalf("info with tokenizer failed: %v", err)
	}
	if encoding != tokenizer {
		t.Errorf("Backends disagree:\n%s\n%s", encoding, tokenizer)
	}

	if _, _, err := run(t, "--backend", "sax", "info", path); err == nil {
		t.Errorf("Expected an error for an unknown backend")
	}
}

func TestInfoErrors(t *testing.T) {
	path := writeTestFile(t)

	if _, _, err := run(t, "info"); err == nil {
		t.Errorf("Expected an error without files")
	}
	if _, _, err := run(t, "info", path+".missing"); err == nil {
		t.Errorf("Expected an error for a missing file")
	}

	broken := filepath.Join(filepath.Dir(path), "broken.gpx")
	if err := os.WriteFile(broken, []byte(`<gpx version="1.1"><trk>`), 0o644); err != nil {
		t.Fatal(err)
	}
	_, _, err := run(t, "info", broken)
	if err == nil || !strings.Contains(err.Error(), "broken.gpx") {
		t.Errorf("Expected an error naming the file, got %v", err)
	}
}

func TestConvert(t *testing.T) {
	path := writeTestFile(t)
	output := filepath.Join(filepath.Dir(path), "out.gpx")

	if _, _, err := run(t, "convert", "--gpx-version", "1.0", "-o", output, path); err != nil {
		t.Fatalf("convert failed: %v", err)
	}

	data, err := os.ReadFile(output)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(data), `version="1.0"`) {
		t.Errorf("Expected GPX 1.0 output:\n%s", data)
	}

	g, err := gpx.ParseBytes(data)
	if err != nil {
		t.Fatalf("Output does not parse: %v", err)
	}
	if g.TrackPointsNo() != 4 || len(g.Waypoints) != 1 || len(g.Routes) != 1 {
		t.Errorf("Unexpected content: %d points, %d waypoints, %d routes",
			g.TrackPointsNo(), len(g.Waypoints), len(g.Routes))
	}
}

func TestConvertStats(t *testing.T) {
	path := writeTestFile(t)

	out, errOut, err := run(t, "convert", "--reduce", "200", "--compact", "--stats", path)
	if err != nil {
		t.Fatalf("convert failed: %v", err)
	}

	var stats struct {
		OriginalPoints int `json:"original_points"`
		FinalPoints    int `json:"final_points"`
	}
	if err := json.Unmarshal([]byte(errOut), &stats); err != nil {
		t.Fatalf("Stats are not JSON: %v\n%s", err, errOut)
	}
	// 111 m steps, the third point is the first one 200 m away and the
	// last is too close to it
	if stats.OriginalPoints != 4 || stats.FinalPoints != 2 {
		t.Errorf("Unexpected stats %+v", stats)
	}

	if strings.Contains(out, "\n  <") {
		t.Errorf("Expected compact output:\n%s", out)
	}
	g, err := gpx.ParseString(out)
	if err != nil {
		t.Fatalf("Output does not parse: %v", err)
	}
	if g.TrackPointsNo() != 2 {
		t.Errorf("Expected 2 points, got %d", g.TrackPointsNo())
	}
}

func TestConvertInvalidFlags(t *testing.T) {
	path := writeTestFile(t)

	if _, _, err := run(t, "convert", "--gpx-version", "2.0", path); err == nil {
		t.Errorf("Expected an error for version 2.0")
	}
	if _, _, err := run(t, "convert", "--max-points", "1", path); err == nil {
		t.Errorf("Expected an error for max points 1")
	}
	if _, _, err := run(t, "convert", path, path); err == nil {
		t.Errorf("Expected an error for two inputs")
	}
}

func TestConvertConfigFile(t *testing.T) {
	path := writeTestFile(t)
	config := filepath.Join(filepath.Dir(path), "gpxinfo.yaml")
	content := "output:\n  version: \"1.0\"\n"
	if err := os.WriteFile(config, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	out, _, err := run(t, "convert", path)
	if err != nil {
		t.Fatalf("convert failed: %v", err)
	}
	if !strings.Contains(out, `version="1.0"`) {
		t.Errorf("Expected the configured version:\n%s", out)
	}

	out, _, err = run(t, "convert", "--gpx-version", "1.1", path)
	if err != nil {
		t.Fatalf("convert failed: %v", err)
	}
	if !strings.Contains(out, `version="1.1"`) {
		t.Errorf("Expected the flag to win:\n%s", out)
	}
}

func TestGeoJSON(t *testing.T) {
	path := writeTestFile(t)

	out, _, err := run(t, "geojson", path)
	if err != nil {
		t.Fatalf("geojson failed: %v", err)
	}

	fc, err := geojson.UnmarshalFeatureCollection([]byte(out))
	if err != nil {
		t.Fatalf("Output is not GeoJSON: %v", err)
	}
	if len(fc.Features) != 3 {
		t.Fatalf("Expected 3 features, got %d", len(fc.Features))
	}

	point, ok := fc.Features[0].Geometry.(orb.Point)
	if !ok || point.Lon() != 0.001 || point.Lat() != 0.0005 {
		t.Errorf("Expected the waypoint first, got %v", fc.Features[0].Geometry)
	}
	if fc.Features[0].Properties["name"] != "Spring" {
		t.Errorf("Expected the waypoint name, got %v", fc.Features[0].Properties)
	}

	if _, ok := fc.Features[1].Geometry.(orb.LineString); !ok {
		t.Errorf("Expected a route line, got %T", fc.Features[1].Geometry)
	}

	line, ok := fc.Features[2].Geometry.(orb.LineString)
	if !ok || len(line) != 4 {
		t.Fatalf("Expected a track line of 4 points, got %v", fc.Features[2].Geometry)
	}
	times, ok := fc.Features[2].Properties["coordTimes"].([]any)
	if !ok || len(times) != 4 {
		t.Errorf("Expected 4 coordTimes, got %v", fc.Features[2].Properties["coordTimes"])
	}
}

func TestMerge(t *testing.T) {
	path := writeTestFile(t)
	secondary := filepath.Join(filepath.Dir(path), "watch.gpx")
	content := `<gpx version="1.1" creator="watch"><trk><trkseg>
  <trkpt lat="0" lon="0.0015"><time>2025-01-01T10:00:15Z</time></trkpt>
  <trkpt lat="0" lon="0.0025"><time>2025-01-01T10:00:25Z</time></trkpt>
</trkseg></trk></gpx>`
	if err := os.WriteFile(secondary, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	out, errOut, err := run(t, "merge", "--gap", "5s", "--stats", path, secondary)
	if err != nil {
		t.Fatalf("merge failed: %v", err)
	}

	g, err := gpx.ParseString(out)
	if err != nil {
		t.Fatalf("Output does not parse: %v", err)
	}
	if g.TrackPointsNo() != 6 {
		t.Errorf("Expected 6 points, got %d", g.TrackPointsNo())
	}

	var stats struct {
		GapsDetected   int `json:"gaps_detected"`
		InsertedPoints int `json:"inserted_points"`
	}
	if err := json.Unmarshal([]byte(errOut), &stats); err != nil {
		t.Fatalf("Stats are not JSON: %v\n%s", err, errOut)
	}
	if stats.GapsDetected != 3 || stats.InsertedPoints != 2 {
		t.Errorf("Unexpected stats %+v", stats)
	}

	if _, _, err := run(t, "merge", path); err == nil {
		t.Errorf("Expected an error for a single file")
	}
}

func TestFormatDuration(t *testing.T) {
	tests := []struct {
		d    time.Duration
		want string
	}{
		{0, "00:00:00"},
		{90 * time.Second, "00:01:30"},
		{25*time.Hour + 61*time.Second, "25:01:01"},
		{1500 * time.Millisecond, "00:00:02"},
	}
	for _, tt := range tests {
		if got := formatDuration(tt.d); got != tt.want {
			t.Errorf("formatDuration(%v) = %q, want %q", tt.d, got, tt.want)
		}
	}
}
