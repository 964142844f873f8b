package geo

import (
	"math"
)

// EarthRadius is the WGS84 equatorial radius in meters
const EarthRadius = 6378137.0

// OneDegree is the length of one degree of arc on the equator in meters
const OneDegree = 2 * math.Pi * EarthRadius / 360

// planarLimit is the lat/lon difference (degrees) above which the planar
// approximation is no longer used
const planarLimit = 0.2

// Location is a point on the earth with an optional elevation
type Location struct {
	Latitude  float64
	Longitude float64
	Elevation *float64
}

// NewLocation returns a location without elevation
func NewLocation(lat, lon float64) Location {
	return Location{Latitude: lat, Longitude: lon}
}

// HasElevation reports whether the elevation is set
func (l *Location) HasElevation() bool {
	return l.Elevation != nil
}

// RemoveElevation unsets the elevation
func (l *Location) RemoveElevation() {
	l.Elevation = nil
}

// Distance2D returns the distance to o ignoring elevation
func (l Location) Distance2D(o Location) float64 {
	return Distance(l.Latitude, l.Longitude, nil, o.Latitude, o.Longitude, nil, false)
}

// Distance3D returns the distance to o, including elevation when both are set
func (l Location) Distance3D(o Location) float64 {
	return Distance(l.Latitude, l.Longitude, l.Elevation, o.Latitude, o.Longitude, o.Elevation, false)
}

// ElevationAngle returns the climb angle from l to o
func (l Location) ElevationAngle(o Location, radians bool) (float64, bool) {
	return ElevationAngle(l, o, radians)
}

// Move shifts the location by delta
func (l *Location) Move(delta LocationDelta) {
	dLat, dLon := delta.Move(*l)
	l.Latitude += dLat
	l.Longitude += dLon
}

// HaversineDistance calculates great-circle distance in meters
func HaversineDistance(lat1, lon1, lat2, lon2 float64) float64 {
	lat1Rad := lat1 * math.Pi / 180
	lat2Rad := lat2 * math.Pi / 180
	deltaLat := (lat1 - lat2) * math.Pi / 180
	deltaLon := (lon1 - lon2) * math.Pi / 180

	a := math.Sin(deltaLat/2)*math.Sin(deltaLat/2) +
		math.Sin(deltaLon/2)*math.Sin(deltaLon/2)*
			math.Cos(lat1Rad)*math.Cos(lat2Rad)
	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))

	return EarthRadius * c
}

// Distance returns the distance in meters between two positions. Haversine is
// used when requested or when the points are far apart, in which case the
// elevations are ignored.
func Distance(lat1, lon1 float64, ele1 *float64, lat2, lon2 float64, ele2 *float64, haversine bool) float64 {
	if haversine || math.Abs(lat1-lat2) > planarLimit || math.Abs(lon1-lon2) > planarLimit {
		return HaversineDistance(lat1, lon1, lat2, lon2)
	}

	coef := math.Cos(lat1 * math.Pi / 180)
	x := lat1 - lat2
	y := (lon1 - lon2) * coef

	distance2D := math.Sqrt(x*x+y*y) * OneDegree

	if ele1 == nil || ele2 == nil || *ele1 == *ele2 {
		return distance2D
	}

	dEle := *ele1 - *ele2
	return math.Sqrt(distance2D*distance2D + dEle*dEle)
}

// DistanceBetween is Distance for optional locations; ok is false when
// either side is missing
func DistanceBetween(a, b *Location, haversine bool) (float64, bool) {
	if a == nil || b == nil {
		return 0, false
	}
	return Distance(a.Latitude, a.Longitude, a.Elevation, b.Latitude, b.Longitude, b.Elevation, haversine), true
}

// ElevationAngle returns atan(Δelevation / 2D distance), in degrees unless
// radians is set. ok is false when an elevation is missing.
func ElevationAngle(a, b Location, radians bool) (float64, bool) {
	if a.Elevation == nil || b.Elevation == nil {
		return 0, false
	}

	rise := *b.Elevation - *a.Elevation
	run := b.Distance2D(a)
	if run == 0 {
		return 0, true
	}

	angle := math.Atan(rise / run)
	if radians {
		return angle, true
	}
	return angle * 180 / math.Pi, true
}

// Length2D sums the 2D distances between consecutive locations
func Length2D(locations []Location) float64 {
	return length(locations, false)
}

// Length3D sums the 3D distances between consecutive locations
func Length3D(locations []Location) float64 {
	return length(locations, true)
}

func length(locations []Location, threeD bool) float64 {
	var total float64
	for i := 1; i < len(locations); i++ {
		if threeD {
			total += locations[i].Distance3D(locations[i-1])
		} else {
			total += locations[i].Distance2D(locations[i-1])
		}
	}
	return total
}
