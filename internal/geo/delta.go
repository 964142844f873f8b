package geo

import (
	"errors"
	"math"
)

// Compass bearings in degrees from north
const (
	North = 0.0
	East  = 90.0
	South = 180.0
	West  = 270.0
)

// ErrInvalidDelta is returned by NewLocationDelta when the arguments do not
// describe exactly one kind of delta
var ErrInvalidDelta = errors.New("location delta needs either distance+angle or latitude+longitude diff")

// LocationDelta moves a location. Implementations are BearingDelta and LatLonDelta.
type LocationDelta interface {
	// Move returns the latitude and longitude change to apply at from
	Move(from Location) (dLat, dLon float64)
}

// BearingDelta moves Distance meters towards Angle degrees from north
type BearingDelta struct {
	Distance float64
	Angle    float64
}

// Move implements LocationDelta
func (d BearingDelta) Move(from Location) (float64, float64) {
	coef := math.Cos(from.Latitude / 180 * math.Pi)
	heading := (90 - d.Angle) / 180 * math.Pi

	vertical := math.Sin(heading) / OneDegree
	horizontal := math.Cos(heading) / OneDegree

	return d.Distance * vertical, d.Distance * horizontal / coef
}

// LatLonDelta moves by a fixed number of degrees
type LatLonDelta struct {
	Latitude  float64
	Longitude float64
}

// Move implements LocationDelta
func (d LatLonDelta) Move(Location) (float64, float64) {
	return d.Latitude, d.Longitude
}

// NewLocationDelta builds a delta from optional arguments. Exactly one of the
// pairs (distance, angle) or (latDiff, lonDiff) must be given.
func NewLocationDelta(distance, angle, latDiff, lonDiff *float64) (LocationDelta, error) {
	bearing := distance != nil && angle != nil
	diff := latDiff != nil && lonDiff != nil

	switch {
	case bearing && latDiff == nil && lonDiff == nil:
		return BearingDelta{Distance: *distance, Angle: *angle}, nil
	case diff && distance == nil && angle == nil:
		return LatLonDelta{Latitude: *latDiff, Longitude: *lonDiff}, nil
	}
	return nil, ErrInvalidDelta
}
