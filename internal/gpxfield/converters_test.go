package gpxfield

import (
	"testing"
	"time"
)

func TestParseTime(t *testing.T) {
	cases := []struct {
		in   string
		want time.Time
	}{
		{"2024-05-17T08:30:15Z", time.Date(2024, 5, 17, 8, 30, 15, 0, time.UTC)},
		{"2024-05-17 08:30:15", time.Date(2024, 5, 17, 8, 30, 15, 0, time.UTC)},
		{"2024-5-7T8:03:05Z", time.Date(2024, 5, 7, 8, 3, 5, 0, time.UTC)},
		{"2024-05-17T08:30:15.123456789Z", time.Date(2024, 5, 17, 8, 30, 15, 123456000, time.UTC)},
		{"2024-05-17T08:30:15.5Z", time.Date(2024, 5, 17, 8, 30, 15, 500000000, time.UTC)},
		{"2024-05-17T10:30:15+02:00", time.Date(2024, 5, 17, 8, 30, 15, 0, time.UTC)},
		{"2024-05-17T03:00:15-0530", time.Date(2024, 5, 17, 8, 30, 15, 0, time.UTC)},
		{"2024-05-17T10:30:15+02", time.Date(2024, 5, 17, 8, 30, 15, 0, time.UTC)},
	}

	for _, c := range cases {
		got := ParseTime(c.in)
		if got == nil {
			t.Errorf("%s: expected a time", c.in)
			continue
		}
		if !got.Equal(c.want) {
			t.Errorf("%s: expected %v, got %v", c.in, c.want, got)
		}
	}
}

func TestParseTimeLenient(t *testing.T) {
	for _, in := range []string{"", "yesterday", "2024-13-01T00:00:00Z", "2024-02-30T00:00:00Z", "2024-05-17T08:30"} {
		if got := ParseTime(in); got != nil {
			t.Errorf("%q: expected unset, got %v", in, got)
		}
	}
}

func TestFormatTime(t *testing.T) {
	utc := time.Date(2024, 5, 17, 8, 30, 15, 0, time.UTC)
	if got := FormatTime(utc); got != "2024-05-17T08:30:15Z" {
		t.Errorf("Unexpected %s", got)
	}

	micros := time.Date(2024, 5, 17, 8, 30, 15, 1500, time.UTC)
	if got := FormatTime(micros); got != "2024-05-17T08:30:15.000001Z" {
		t.Errorf("Unexpected %s", got)
	}

	zone := time.Date(2024, 5, 17, 10, 30, 15, 0, time.FixedZone("", 7200))
	got := FormatTime(zone)
	if got != "2024-05-17T10:30:15+0200" {
		t.Errorf("Unexpected %s", got)
	}
	if back := ParseTime(got); back == nil || !back.Equal(zone) {
		t.Errorf("Offset did not survive: %v", back)
	}
}

func TestFloatConverter(t *testing.T) {
	var c FloatConverter
	for in, want := range map[float64]string{
		46:         "46",
		7.25:       "7.25",
		0.0000001:  "0.0000001",
		-12.5:      "-12.5",
		1234567890: "1234567890",
	} {
		if got := c.Format(in); got != want {
			t.Errorf("%v: expected %s, got %s", in, want, got)
		}
	}

	v, err := c.Parse(" 12.5 ")
	if err != nil || *v != 12.5 {
		t.Errorf("Expected 12.5, got %v (%v)", v, err)
	}
	if _, err := c.Parse("1,5"); err == nil {
		t.Errorf("Expected error for malformed float")
	}
}

func TestIntConverter(t *testing.T) {
	var c IntConverter
	v, err := c.Parse(" 12 ")
	if err != nil || *v != 12 {
		t.Errorf("Expected 12, got %v (%v)", v, err)
	}
	if _, err := c.Parse("12.5"); err == nil {
		t.Errorf("Expected error for non-integer")
	}
	if got := c.Format(-3); got != "-3" {
		t.Errorf("Unexpected %s", got)
	}
}
