package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/urfave/cli/v2"

	"github.com/planbiir/gpxkit/internal/clean"
	"github.com/planbiir/gpxkit/internal/config"
	"github.com/planbiir/gpxkit/internal/gpx"
)

func convertCommand(r *runner) *cli.Command {
	return &cli.Command{
		Name:      "convert",
		Usage:     "Clean a GPX file and write it as GPX 1.0 or 1.1",
		ArgsUsage: "FILE",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "output",
				Aliases: []string{"o"},
				Usage:   "Output file, stdout when empty",
			},
			&cli.StringFlag{
				Name:  "gpx-version",
				Usage: "Output GPX version, 1.0 or 1.1 (default: keep the input version)",
			},
			&cli.BoolFlag{
				Name:  "compact",
				Usage: "Write without indentation",
			},
			&cli.Float64Flag{
				Name:  "simplify",
				Usage: "Ramer-Douglas-Peucker tolerance in meters",
			},
			&cli.Float64Flag{
				Name:  "reduce",
				Usage: "Minimum distance in meters between kept points",
			},
			&cli.IntFlag{
				Name:  "max-points",
				Usage: "Upper bound on the number of track points",
			},
			&cli.BoolFlag{
				Name:  "smooth",
				Usage: "Smooth elevations and coordinates",
			},
			&cli.BoolFlag{
				Name:  "remove-extremes",
				Usage: "Drop points far off the smoothed line",
			},
			&cli.BoolFlag{
				Name:  "add-missing",
				Usage: "Interpolate missing elevations and times",
			},
			&cli.IntFlag{
				Name:  "median-window",
				Usage: "Median filter window for elevations, 0 disables",
			},
			&cli.Float64Flag{
				Name:  "max-removed",
				Usage: "Keep the input when more than this percentage of points would be removed",
			},
			&cli.BoolFlag{
				Name:  "stats",
				Usage: "Print processing statistics as JSON on stderr",
			},
		},
		Action: r.convert,
	}
}

func (r *runner) convert(c *cli.Context) error {
	if c.NArg() != 1 {
		return fmt.Errorf("expected exactly one input file, got %d", c.NArg())
	}

	cfg := *r.cfg
	applyConvertFlags(c, &cfg)
	if err := cfg.Validate(); err != nil {
		return err
	}

	g, err := r.parseFile(c.Args().First())
	if err != nil {
		return err
	}

	stats, err := clean.Clean(g, cleanConfig(cfg.Convert), r.logger)
	if err != nil {
		return err
	}

	out, err := g.ToXML(gpx.XMLVersion(cfg.Output.Version), gpx.PrettyPrint(cfg.Output.Pretty))
	if err != nil {
		return err
	}

	if path := c.String("output"); path != "" {
		if err := os.WriteFile(path, []byte(out), 0o644); err != nil {
			return fmt.Errorf("write %s: %w", path, err)
		}
	} else if _, err := fmt.Fprintln(r.stdout, out); err != nil {
		return err
	}

	if c.Bool("stats") {
		enc := json.NewEncoder(r.stderr)
		enc.SetIndent("", "  ")
		return enc.Encode(stats)
	}
	return nil
}

// applyConvertFlags overrides the configured values with the flags given on
// the command line
func applyConvertFlags(c *cli.Context, cfg *config.Config) {
	if c.IsSet("gpx-version") {
		cfg.Output.Version = c.String("gpx-version")
	}
	if c.IsSet("compact") {
		cfg.Output.Pretty = !c.Bool("compact")
	}
	if c.IsSet("simplify") {
		cfg.Convert.SimplifyDistance = c.Float64("simplify")
	}
	if c.IsSet("reduce") {
		cfg.Convert.ReduceDistance = c.Float64("reduce")
	}
	if c.IsSet("max-points") {
		cfg.Convert.MaxPoints = c.Int("max-points")
	}
	if c.IsSet("smooth") {
		cfg.Convert.Smooth = c.Bool("smooth")
	}
	if c.IsSet("remove-extremes") {
		cfg.Convert.RemoveExtremes = c.Bool("remove-extremes")
	}
	if c.IsSet("add-missing") {
		cfg.Convert.AddMissing = c.Bool("add-missing")
	}
	if c.IsSet("median-window") {
		cfg.Convert.MedianWindow = c.Int("median-window")
	}
	if c.IsSet("max-removed") {
		cfg.Convert.MaxRemovedPercent = c.Float64("max-removed")
	}
}

func cleanConfig(cc config.ConvertConfig) clean.Config {
	cleanCfg := clean.DefaultConfig()
	cleanCfg.AddMissingElevations = cc.AddMissing
	cleanCfg.AddMissingTimes = cc.AddMissing
	cleanCfg.ElevationWindow = cc.MedianWindow
	cleanCfg.SmoothVertical = cc.Smooth
	cleanCfg.SmoothHorizontal = cc.Smooth
	cleanCfg.RemoveExtremes = cc.RemoveExtremes
	cleanCfg.SimplifyDistance = cc.SimplifyDistance
	cleanCfg.ReduceDistance = cc.ReduceDistance
	cleanCfg.MaxPoints = cc.MaxPoints
	cleanCfg.MaxRemovedPercent = cc.MaxRemovedPercent
	return cleanCfg
}
