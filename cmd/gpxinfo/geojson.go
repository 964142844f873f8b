package main

import (
	"fmt"
	"os"
	"time"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
	"github.com/urfave/cli/v2"

	"github.com/planbiir/gpxkit/internal/gpx"
)

func geojsonCommand(r *runner) *cli.Command {
	return &cli.Command{
		Name:      "geojson",
		Usage:     "Export waypoints, routes and track segments as a GeoJSON FeatureCollection",
		ArgsUsage: "FILE",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "output",
				Aliases: []string{"o"},
				Usage:   "Output file, stdout when empty",
			},
		},
		Action: r.geojson,
	}
}

func (r *runner) geojson(c *cli.Context) error {
	if c.NArg() != 1 {
		return fmt.Errorf("expected exactly one input file, got %d", c.NArg())
	}

	g, err := r.parseFile(c.Args().First())
	if err != nil {
		return err
	}

	data, err := toFeatureCollection(g).MarshalJSON()
	if err != nil {
		return fmt.Errorf("marshal geojson: %w", err)
	}

	if path := c.String("output"); path != "" {
		return os.WriteFile(path, data, 0o644)
	}
	_, err = fmt.Fprintln(r.stdout, string(data))
	return err
}

// toFeatureCollection maps every waypoint to a Point and every route and
// track segment to a LineString. Segments with all times known carry them in
// a coordTimes property.
func toFeatureCollection(g *gpx.GPX) *geojson.FeatureCollection {
	fc := geojson.NewFeatureCollection()

	for i := range g.Waypoints {
		w := &g.Waypoints[i]
		f := geojson.NewFeature(orb.Point{w.Longitude, w.Latitude})
		f.Properties["type"] = "waypoint"
		setName(f, w.Name)
		if w.Elevation != nil {
			f.Properties["ele"] = *w.Elevation
		}
		if w.Time != nil {
			f.Properties["time"] = w.Time.UTC().Format(time.RFC3339)
		}
		fc.Append(f)
	}

	for i := range g.Routes {
		route := &g.Routes[i]
		if len(route.Points) < 2 {
			continue
		}
		line := make(orb.LineString, len(route.Points))
		for j := range route.Points {
			line[j] = orb.Point{route.Points[j].Longitude, route.Points[j].Latitude}
		}
		f := geojson.NewFeature(line)
		f.Properties["type"] = "route"
		f.Properties["route"] = i
		setName(f, route.Name)
		fc.Append(f)
	}

	for i := range g.Tracks {
		track := &g.Tracks[i]
		for j := range track.Segments {
			points := track.Segments[j].Points
			if len(points) < 2 {
				continue
			}
			line := make(orb.LineString, len(points))
			times := make([]string, 0, len(points))
			for k := range points {
				line[k] = orb.Point{points[k].Longitude, points[k].Latitude}
				if points[k].Time != nil {
					times = append(times, points[k].Time.UTC().Format(time.RFC3339))
				}
			}
			f := geojson.NewFeature(line)
			f.Properties["type"] = "track"
			f.Properties["track"] = i
			f.Properties["segment"] = j
			setName(f, track.Name)
			if len(times) == len(points) {
				f.Properties["coordTimes"] = times
			}
			fc.Append(f)
		}
	}

	return fc
}

func setName(f *geojson.Feature, name *string) {
	if name != nil {
		f.Properties["name"] = *name
	}
}
