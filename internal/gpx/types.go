package gpx

import (
	"time"

	"github.com/planbiir/gpxkit/internal/geo"
	"github.com/planbiir/gpxkit/internal/xmlnode"
)

// Fix types accepted in <fix>
const (
	FixNone = "none"
	Fix2D   = "2d"
	Fix3D   = "3d"
	FixDGPS = "dgps"
	FixPPS  = "pps"
)

// Bounds is the bounding box of a document or track. Any side may be unset.
type Bounds struct {
	MinLatitude  *float64
	MaxLatitude  *float64
	MinLongitude *float64
	MaxLongitude *float64
}

// Point holds the fields shared by waypoints, route points and track points
type Point struct {
	geo.Location

	Time               *time.Time
	MagneticVariation  *float64
	GeoidHeight        *float64
	Name               *string
	Comment            *string
	Description        *string
	Source             *string
	Link               *string
	LinkText           *string
	LinkType           *string
	Symbol             *string
	Type               *string
	TypeOfGPXFix       *string
	Satellites         *int
	HorizontalDilution *float64
	VerticalDilution   *float64
	PositionDilution   *float64
	AgeOfDGPSData      *float64
	DGPSID             *string
	Extensions         []*xmlnode.Element
}

// Waypoint is a standalone point of interest
type Waypoint struct {
	Point
}

// RoutePoint is a planned point of a route
type RoutePoint struct {
	Point
}

// TrackPoint is a recorded point; GPX 1.0 also carries course and speed
type TrackPoint struct {
	Point
	Course *float64
	Speed  *float64
}

// Route is a planned, ordered list of points
type Route struct {
	Name        *string
	Comment     *string
	Description *string
	Source      *string
	Link        *string
	LinkText    *string
	LinkType    *string
	Number      *int
	Type        *string
	Points      []RoutePoint
	Extensions  []*xmlnode.Element
}

// TrackSegment is a continuous run of recorded points
type TrackSegment struct {
	Points     []TrackPoint
	Extensions []*xmlnode.Element
}

// Track is a recorded path made of one or more segments
type Track struct {
	Name        *string
	Comment     *string
	Description *string
	Source      *string
	Link        *string
	LinkText    *string
	LinkType    *string
	Number      *int
	Type        *string
	Segments    []TrackSegment
	Extensions  []*xmlnode.Element
}

// GPX is the document root
type GPX struct {
	Version *string
	Creator *string

	Name             *string
	Description      *string
	AuthorName       *string
	AuthorEmail      *string
	AuthorLink       *string
	AuthorLinkText   *string
	AuthorLinkType   *string
	CopyrightAuthor  *string
	CopyrightYear    *string
	CopyrightLicense *string
	Link             *string
	LinkText         *string
	LinkType         *string
	Time             *time.Time
	Keywords         *string
	Bounds           *Bounds

	Waypoints []Waypoint
	Routes    []Route
	Tracks    []Track

	Extensions         []*xmlnode.Element
	MetadataExtensions []*xmlnode.Element

	// Namespaces maps prefixes to URIs as declared on the root element; ""
	// is the default namespace
	Namespaces      map[string]string
	SchemaLocations []string
}

// NewTrackPoint returns a point at lat/lon with an optional elevation
func NewTrackPoint(lat, lon float64, elevation *float64, t *time.Time) TrackPoint {
	return TrackPoint{Point: Point{
		Location: geo.Location{Latitude: lat, Longitude: lon, Elevation: elevation},
		Time:     t,
	}}
}
