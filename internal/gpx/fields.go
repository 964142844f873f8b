package gpx

import (
	"slices"
	"time"

	"github.com/planbiir/gpxkit/internal/gpxfield"
	"github.com/planbiir/gpxkit/internal/xmlnode"
)

var pointAttrs = []string{
	"latitude", "longitude", "elevation", "time", "magnetic_variation", "geoid_height",
	"name", "comment", "description", "source", "link", "link_text", "link_type",
	"symbol", "type", "type_of_gpx_fix", "satellites", "horizontal_dilution",
	"vertical_dilution", "position_dilution", "age_of_dgps_data", "dgps_id", "extensions",
}

var fixTypes = []string{FixNone, Fix2D, Fix3D, FixDGPS, FixPPS}

// pointHead is lat, lon, ele and time, shared by every point table
func pointHead[T any](p func(*T) *Point) []gpxfield.Field[T] {
	return []gpxfield.Field[T]{
		gpxfield.FloatValue("latitude", func(e *T) *float64 { return &p(e).Latitude }).Attr("lat"),
		gpxfield.FloatValue("longitude", func(e *T) *float64 { return &p(e).Longitude }).Attr("lon"),
		gpxfield.Float("elevation", func(e *T) **float64 { return &p(e).Elevation }).Tag("ele"),
		gpxfield.Time("time", func(e *T) **time.Time { return &p(e).Time }),
	}
}

// pointTail is everything after time in GPX 1.0
func pointTail10[T any](p func(*T) *Point) []gpxfield.Field[T] {
	return []gpxfield.Field[T]{
		gpxfield.Float("magnetic_variation", func(e *T) **float64 { return &p(e).MagneticVariation }).Tag("magvar"),
		gpxfield.Float("geoid_height", func(e *T) **float64 { return &p(e).GeoidHeight }).Tag("geoidheight"),
		gpxfield.String("name", func(e *T) **string { return &p(e).Name }),
		gpxfield.String("comment", func(e *T) **string { return &p(e).Comment }).Tag("cmt"),
		gpxfield.String("description", func(e *T) **string { return &p(e).Description }).Tag("desc"),
		gpxfield.String("source", func(e *T) **string { return &p(e).Source }).Tag("src"),
		gpxfield.String("link", func(e *T) **string { return &p(e).Link }).Tag("url"),
		gpxfield.String("link_text", func(e *T) **string { return &p(e).LinkText }).Tag("urlname"),
		gpxfield.String("symbol", func(e *T) **string { return &p(e).Symbol }).Tag("sym"),
		gpxfield.String("type", func(e *T) **string { return &p(e).Type }),
		gpxfield.String("type_of_gpx_fix", func(e *T) **string { return &p(e).TypeOfGPXFix }).Tag("fix").Allowed(fixTypes...),
		gpxfield.Int("satellites", func(e *T) **int { return &p(e).Satellites }).Tag("sat"),
		gpxfield.Float("horizontal_dilution", func(e *T) **float64 { return &p(e).HorizontalDilution }).Tag("hdop"),
		gpxfield.Float("vertical_dilution", func(e *T) **float64 { return &p(e).VerticalDilution }).Tag("vdop"),
		gpxfield.Float("position_dilution", func(e *T) **float64 { return &p(e).PositionDilution }).Tag("pdop"),
		gpxfield.Float("age_of_dgps_data", func(e *T) **float64 { return &p(e).AgeOfDGPSData }).Tag("ageofdgpsdata"),
		gpxfield.String("dgps_id", func(e *T) **string { return &p(e).DGPSID }).Tag("dgpsid"),
	}
}

// pointTail11 replaces url/urlname with a <link> group and adds extensions
func pointTail11[T any](p func(*T) *Point) []gpxfield.Field[T] {
	return []gpxfield.Field[T]{
		gpxfield.Float("magnetic_variation", func(e *T) **float64 { return &p(e).MagneticVariation }).Tag("magvar"),
		gpxfield.Float("geoid_height", func(e *T) **float64 { return &p(e).GeoidHeight }).Tag("geoidheight"),
		gpxfield.String("name", func(e *T) **string { return &p(e).Name }),
		gpxfield.String("comment", func(e *T) **string { return &p(e).Comment }).Tag("cmt"),
		gpxfield.String("description", func(e *T) **string { return &p(e).Description }).Tag("desc"),
		gpxfield.String("source", func(e *T) **string { return &p(e).Source }).Tag("src"),
		gpxfield.GroupStart[T]("link", []string{"link"}),
		gpxfield.String("link", func(e *T) **string { return &p(e).Link }).Attr("href"),
		gpxfield.String("link_text", func(e *T) **string { return &p(e).LinkText }).Tag("text"),
		gpxfield.String("link_type", func(e *T) **string { return &p(e).LinkType }).Tag("type"),
		gpxfield.GroupEnd[T]("link"),
		gpxfield.String("symbol", func(e *T) **string { return &p(e).Symbol }).Tag("sym"),
		gpxfield.String("type", func(e *T) **string { return &p(e).Type }),
		gpxfield.String("type_of_gpx_fix", func(e *T) **string { return &p(e).TypeOfGPXFix }).Tag("fix").Allowed(fixTypes...),
		gpxfield.Int("satellites", func(e *T) **int { return &p(e).Satellites }).Tag("sat"),
		gpxfield.Float("horizontal_dilution", func(e *T) **float64 { return &p(e).HorizontalDilution }).Tag("hdop"),
		gpxfield.Float("vertical_dilution", func(e *T) **float64 { return &p(e).VerticalDilution }).Tag("vdop"),
		gpxfield.Float("position_dilution", func(e *T) **float64 { return &p(e).PositionDilution }).Tag("pdop"),
		gpxfield.Float("age_of_dgps_data", func(e *T) **float64 { return &p(e).AgeOfDGPSData }).Tag("ageofdgpsdata"),
		gpxfield.String("dgps_id", func(e *T) **string { return &p(e).DGPSID }).Tag("dgpsid"),
		gpxfield.Extensions("extensions", func(e *T) *[]*xmlnode.Element { return &p(e).Extensions }),
	}
}

func pointSchema[T any](entity string, newFn func() *T, p func(*T) *Point) *gpxfield.Schema[T] {
	return gpxfield.NewSchema(entity, newFn, pointAttrs...).
		Define("1.0", append(pointHead(p), pointTail10(p)...)...).
		Define("1.1", append(pointHead(p), pointTail11(p)...)...)
}

var waypointSchema = pointSchema("Waypoint",
	func() *Waypoint { return &Waypoint{} },
	func(w *Waypoint) *Point { return &w.Point })

var routePointSchema = pointSchema("RoutePoint",
	func() *RoutePoint { return &RoutePoint{} },
	func(r *RoutePoint) *Point { return &r.Point })

var trackPointSchema = func() *gpxfield.Schema[TrackPoint] {
	p := func(t *TrackPoint) *Point { return &t.Point }

	fields10 := pointHead(p)
	fields10 = append(fields10,
		gpxfield.Float("course", func(t *TrackPoint) **float64 { return &t.Course }),
		gpxfield.Float("speed", func(t *TrackPoint) **float64 { return &t.Speed }),
	)
	fields10 = append(fields10, pointTail10(p)...)

	return gpxfield.NewSchema("TrackPoint", func() *TrackPoint { return &TrackPoint{} },
		slices.Concat(pointAttrs, []string{"course", "speed"})...).
		Define("1.0", fields10...).
		Define("1.1", append(pointHead(p), pointTail11(p)...)...)
}()

var boundsSchema = func() *gpxfield.Schema[Bounds] {
	fields := func() []gpxfield.Field[Bounds] {
		return []gpxfield.Field[Bounds]{
			gpxfield.Float("min_latitude", func(b *Bounds) **float64 { return &b.MinLatitude }).Attr("minlat"),
			gpxfield.Float("max_latitude", func(b *Bounds) **float64 { return &b.MaxLatitude }).Attr("maxlat"),
			gpxfield.Float("min_longitude", func(b *Bounds) **float64 { return &b.MinLongitude }).Attr("minlon"),
			gpxfield.Float("max_longitude", func(b *Bounds) **float64 { return &b.MaxLongitude }).Attr("maxlon"),
		}
	}
	return gpxfield.NewSchema("Bounds", func() *Bounds { return &Bounds{} },
		"min_latitude", "max_latitude", "min_longitude", "max_longitude").
		Define("1.0", fields()...).
		Define("1.1", fields()...)
}()

// pathHeader is the metadata shared by routes and tracks
type pathHeader struct {
	Name, Comment, Description, Source, Link, LinkText, LinkType, Type **string
	Number                                                           **int
	Extensions                                                       *[]*xmlnode.Element
}

func routeHeader(r *Route) pathHeader {
	return pathHeader{&r.Name, &r.Comment, &r.Description, &r.Source, &r.Link, &r.LinkText, &r.LinkType, &r.Type, &r.Number, &r.Extensions}
}

func trackHeader(t *Track) pathHeader {
	return pathHeader{&t.Name, &t.Comment, &t.Description, &t.Source, &t.Link, &t.LinkText, &t.LinkType, &t.Type, &t.Number, &t.Extensions}
}

var pathAttrs = []string{
	"name", "comment", "description", "source", "link", "link_text", "link_type", "number", "type", "extensions",
}

func pathFields10[T any](h func(*T) pathHeader) []gpxfield.Field[T] {
	return []gpxfield.Field[T]{
		gpxfield.String("name", func(e *T) **string { return h(e).Name }),
		gpxfield.String("comment", func(e *T) **string { return h(e).Comment }).Tag("cmt"),
		gpxfield.String("description", func(e *T) **string { return h(e).Description }).Tag("desc"),
		gpxfield.String("source", func(e *T) **string { return h(e).Source }).Tag("src"),
		gpxfield.String("link", func(e *T) **string { return h(e).Link }).Tag("url"),
		gpxfield.String("link_text", func(e *T) **string { return h(e).LinkText }).Tag("urlname"),
		gpxfield.Int("number", func(e *T) **int { return h(e).Number }),
	}
}

func pathFields11[T any](h func(*T) pathHeader) []gpxfield.Field[T] {
	return []gpxfield.Field[T]{
		gpxfield.String("name", func(e *T) **string { return h(e).Name }),
		gpxfield.String("comment", func(e *T) **string { return h(e).Comment }).Tag("cmt"),
		gpxfield.String("description", func(e *T) **string { return h(e).Description }).Tag("desc"),
		gpxfield.String("source", func(e *T) **string { return h(e).Source }).Tag("src"),
		gpxfield.GroupStart[T]("link", []string{"link"}),
		gpxfield.String("link", func(e *T) **string { return h(e).Link }).Attr("href"),
		gpxfield.String("link_text", func(e *T) **string { return h(e).LinkText }).Tag("text"),
		gpxfield.String("link_type", func(e *T) **string { return h(e).LinkType }).Tag("type"),
		gpxfield.GroupEnd[T]("link"),
		gpxfield.Int("number", func(e *T) **int { return h(e).Number }),
		gpxfield.String("type", func(e *T) **string { return h(e).Type }),
		gpxfield.Extensions("extensions", func(e *T) *[]*xmlnode.Element { return h(e).Extensions }),
	}
}

var routeSchema = func() *gpxfield.Schema[Route] {
	points := func() gpxfield.Field[Route] {
		return gpxfield.List("points", "rtept", routePointSchema, func(r *Route) *[]RoutePoint { return &r.Points })
	}
	return gpxfield.NewSchema("Route", func() *Route { return &Route{} }, slices.Concat(pathAttrs, []string{"points"})...).
		Define("1.0", append(pathFields10(routeHeader), points())...).
		Define("1.1", append(pathFields11(routeHeader), points())...)
}()

var trackSegmentSchema = func() *gpxfield.Schema[TrackSegment] {
	points := func() gpxfield.Field[TrackSegment] {
		return gpxfield.List("points", "trkpt", trackPointSchema, func(s *TrackSegment) *[]TrackPoint { return &s.Points })
	}
	return gpxfield.NewSchema("TrackSegment", func() *TrackSegment { return &TrackSegment{} }, "points", "extensions").
		Define("1.0", points()).
		Define("1.1", points(),
			gpxfield.Extensions("extensions", func(s *TrackSegment) *[]*xmlnode.Element { return &s.Extensions }))
}()

var trackSchema = func() *gpxfield.Schema[Track] {
	segments := func() gpxfield.Field[Track] {
		return gpxfield.List("segments", "trkseg", trackSegmentSchema, func(t *Track) *[]TrackSegment { return &t.Segments })
	}
	return gpxfield.NewSchema("Track", func() *Track { return &Track{} }, slices.Concat(pathAttrs, []string{"segments"})...).
		Define("1.0", append(pathFields10(trackHeader), segments())...).
		Define("1.1", append(pathFields11(trackHeader), segments())...)
}()

var gpxAttrs = []string{
	"version", "creator", "name", "description", "author_name", "author_email", "author_link",
	"author_link_text", "author_link_type", "copyright_author", "copyright_year", "copyright_license",
	"link", "link_text", "link_type", "time", "keywords", "bounds", "metadata_extensions",
	"waypoints", "routes", "tracks", "extensions",
}

func gpxChildren() []gpxfield.Field[GPX] {
	return []gpxfield.Field[GPX]{
		gpxfield.List("waypoints", "wpt", waypointSchema, func(g *GPX) *[]Waypoint { return &g.Waypoints }),
		gpxfield.List("routes", "rte", routeSchema, func(g *GPX) *[]Route { return &g.Routes }),
		gpxfield.List("tracks", "trk", trackSchema, func(g *GPX) *[]Track { return &g.Tracks }),
	}
}

func gpxVersionCreator() []gpxfield.Field[GPX] {
	return []gpxfield.Field[GPX]{
		gpxfield.String("version", func(g *GPX) **string { return &g.Version }).Attr("version"),
		gpxfield.String("creator", func(g *GPX) **string { return &g.Creator }).Attr("creator"),
	}
}

var gpxSchema = func() *gpxfield.Schema[GPX] {
	fields10 := gpxVersionCreator()
	fields10 = append(fields10,
		gpxfield.String("name", func(g *GPX) **string { return &g.Name }),
		gpxfield.String("description", func(g *GPX) **string { return &g.Description }).Tag("desc"),
		gpxfield.String("author_name", func(g *GPX) **string { return &g.AuthorName }).Tag("author"),
		gpxfield.String("author_email", func(g *GPX) **string { return &g.AuthorEmail }).Tag("email"),
		gpxfield.String("link", func(g *GPX) **string { return &g.Link }).Tag("url"),
		gpxfield.String("link_text", func(g *GPX) **string { return &g.LinkText }).Tag("urlname"),
		gpxfield.Time("time", func(g *GPX) **time.Time { return &g.Time }),
		gpxfield.String("keywords", func(g *GPX) **string { return &g.Keywords }),
		gpxfield.Nested("bounds", "bounds", boundsSchema, func(g *GPX) **Bounds { return &g.Bounds }),
	)
	fields10 = append(fields10, gpxChildren()...)

	fields11 := gpxVersionCreator()
	fields11 = append(fields11,
		gpxfield.GroupStart[GPX]("metadata", nil,
			"name", "description", "author_name", "author_email", "author_link", "copyright_author",
			"copyright_year", "copyright_license", "link", "time", "keywords", "bounds", "metadata_extensions"),
		gpxfield.String("name", func(g *GPX) **string { return &g.Name }),
		gpxfield.String("description", func(g *GPX) **string { return &g.Description }).Tag("desc"),
		gpxfield.GroupStart[GPX]("author", nil, "author_name", "author_email", "author_link"),
		gpxfield.String("author_name", func(g *GPX) **string { return &g.AuthorName }).Tag("name"),
		gpxfield.Email("author_email", "email", func(g *GPX) **string { return &g.AuthorEmail }),
		gpxfield.GroupStart[GPX]("link", []string{"author_link"}),
		gpxfield.String("author_link", func(g *GPX) **string { return &g.AuthorLink }).Attr("href"),
		gpxfield.String("author_link_text", func(g *GPX) **string { return &g.AuthorLinkText }).Tag("text"),
		gpxfield.String("author_link_type", func(g *GPX) **string { return &g.AuthorLinkType }).Tag("type"),
		gpxfield.GroupEnd[GPX]("link"),
		gpxfield.GroupEnd[GPX]("author"),
		gpxfield.GroupStart[GPX]("copyright", nil, "copyright_author", "copyright_year", "copyright_license"),
		gpxfield.String("copyright_author", func(g *GPX) **string { return &g.CopyrightAuthor }).Attr("author"),
		gpxfield.String("copyright_year", func(g *GPX) **string { return &g.CopyrightYear }).Tag("year"),
		gpxfield.String("copyright_license", func(g *GPX) **string { return &g.CopyrightLicense }).Tag("license"),
		gpxfield.GroupEnd[GPX]("copyright"),
		gpxfield.GroupStart[GPX]("link", []string{"link"}),
		gpxfield.String("link", func(g *GPX) **string { return &g.Link }).Attr("href"),
		gpxfield.String("link_text", func(g *GPX) **string { return &g.LinkText }).Tag("text"),
		gpxfield.String("link_type", func(g *GPX) **string { return &g.LinkType }).Tag("type"),
		gpxfield.GroupEnd[GPX]("link"),
		gpxfield.Time("time", func(g *GPX) **time.Time { return &g.Time }),
		gpxfield.String("keywords", func(g *GPX) **string { return &g.Keywords }),
		gpxfield.Nested("bounds", "bounds", boundsSchema, func(g *GPX) **Bounds { return &g.Bounds }),
		gpxfield.Extensions("metadata_extensions", func(g *GPX) *[]*xmlnode.Element { return &g.MetadataExtensions }),
		gpxfield.GroupEnd[GPX]("metadata"),
	)
	fields11 = append(fields11, gpxChildren()...)
	fields11 = append(fields11,
		gpxfield.Extensions("extensions", func(g *GPX) *[]*xmlnode.Element { return &g.Extensions }))

	return gpxfield.NewSchema("GPX", func() *GPX { return &GPX{} }, gpxAttrs...).
		Define("1.0", fields10...).
		Define("1.1", fields11...)
}()

// CheckSchemas verifies every entity's field tables
func CheckSchemas() error {
	checks := []func() error{
		waypointSchema.Check, routePointSchema.Check, trackPointSchema.Check, boundsSchema.Check,
		routeSchema.Check, trackSegmentSchema.Check, trackSchema.Check, gpxSchema.Check,
	}
	for _, check := range checks {
		if err := check(); err != nil {
			return err
		}
	}
	return nil
}

func init() {
	if err := CheckSchemas(); err != nil {
		panic(err)
	}
}
