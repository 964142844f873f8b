package gpx

import (
	"iter"
	"time"

	"github.com/planbiir/gpxkit/internal/geo"
)

// PointsNo returns the number of route points
func (r *Route) PointsNo() int {
	return len(r.Points)
}

// Walk yields every route point with its index
func (r *Route) Walk() iter.Seq2[int, *RoutePoint] {
	return func(yield func(int, *RoutePoint) bool) {
		for i := range r.Points {
			if !yield(i, &r.Points[i]) {
				return
			}
		}
	}
}

// Length returns the 2D length of the route in meters
func (r *Route) Length() float64 {
	locations := make([]geo.Location, len(r.Points))
	for i := range r.Points {
		locations[i] = r.Points[i].Location
	}
	return geo.Length2D(locations)
}

// Center returns the mean latitude and longitude of the route points
func (r *Route) Center() (geo.Location, bool) {
	if len(r.Points) == 0 {
		return geo.Location{}, false
	}
	var lat, lon float64
	for i := range r.Points {
		lat += r.Points[i].Latitude
		lon += r.Points[i].Longitude
	}
	n := float64(len(r.Points))
	return geo.NewLocation(lat/n, lon/n), true
}

func (r *Route) AdjustTime(delta time.Duration) {
	for i := range r.Points {
		r.Points[i].AdjustTime(delta)
	}
}

func (r *Route) RemoveTime() {
	for i := range r.Points {
		r.Points[i].RemoveTime()
	}
}

func (r *Route) RemoveElevation() {
	for i := range r.Points {
		r.Points[i].RemoveElevation()
	}
}

func (r *Route) Move(delta geo.LocationDelta) {
	for i := range r.Points {
		r.Points[i].Move(delta)
	}
}

// Clone returns an independent deep copy
func (r *Route) Clone() *Route {
	return clone(r)
}
