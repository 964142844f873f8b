package gpx

import (
	"time"

	"github.com/planbiir/gpxkit/internal/geo"
)

// AdjustTime shifts the time, if set, by delta
func (p *Point) AdjustTime(delta time.Duration) {
	if p.Time == nil {
		return
	}
	t := p.Time.Add(delta)
	p.Time = &t
}

// RemoveTime unsets the time
func (p *Point) RemoveTime() {
	p.Time = nil
}

// MaxDilutionOfPrecision returns the largest of hdop, vdop and pdop. ok is
// false when none is set.
func (p *Point) MaxDilutionOfPrecision() (float64, bool) {
	var result float64
	var found bool
	for _, v := range []*float64{p.HorizontalDilution, p.VerticalDilution, p.PositionDilution} {
		if v != nil && (!found || *v > result) {
			result = *v
			found = true
		}
	}
	return result, found
}

// TimeDifference returns the absolute time between p and o
func (p *TrackPoint) TimeDifference(o *TrackPoint) (time.Duration, bool) {
	if p.Time == nil || o == nil || o.Time == nil {
		return 0, false
	}
	d := p.Time.Sub(*o.Time)
	if d < 0 {
		d = -d
	}
	return d, true
}

// SpeedBetween returns the computed speed in m/s between p and o. It is
// unknown when either time is missing or both times are equal.
func (p *TrackPoint) SpeedBetween(o *TrackPoint) (float64, bool) {
	if o == nil {
		return 0, false
	}
	elapsed, ok := p.TimeDifference(o)
	if !ok || elapsed == 0 {
		return 0, false
	}

	length := p.Distance3D(o.Location)
	if length == 0 {
		length = p.Distance2D(o.Location)
	}
	return length / elapsed.Seconds(), true
}

func setElevation(l *geo.Location, v float64) {
	l.Elevation = &v
}

func addElevation(l *geo.Location, delta float64) {
	if l.Elevation != nil {
		setElevation(l, *l.Elevation+delta)
	}
}
