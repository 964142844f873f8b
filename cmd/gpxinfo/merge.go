package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/urfave/cli/v2"

	"github.com/planbiir/gpxkit/internal/gpx"
	"github.com/planbiir/gpxkit/internal/merge"
)

func mergeCommand(r *runner) *cli.Command {
	defaults := merge.DefaultConfig()
	return &cli.Command{
		Name:      "merge",
		Usage:     "Fill recording gaps of PRIMARY with the timed points of SECONDARY",
		ArgsUsage: "PRIMARY SECONDARY",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "output",
				Aliases: []string{"o"},
				Usage:   "Output file, stdout when empty",
			},
			&cli.DurationFlag{
				Name:  "gap",
				Usage: "Minimum pause between two primary points that is filled",
				Value: defaults.GapThreshold,
			},
			&cli.Float64Flag{
				Name:  "max-deviation",
				Usage: "Drop secondary points farther than this many meters from the gap, negative disables",
				Value: defaults.MaxDeviationMeters,
			},
			&cli.BoolFlag{
				Name:  "stats",
				Usage: "Print merge statistics as JSON on stderr",
			},
		},
		Action: r.merge,
	}
}

func (r *runner) merge(c *cli.Context) error {
	if c.NArg() != 2 {
		return fmt.Errorf("expected a primary and a secondary file, got %d files", c.NArg())
	}

	primary, err := r.parseFile(c.Args().Get(0))
	if err != nil {
		return err
	}
	secondary, err := r.parseFile(c.Args().Get(1))
	if err != nil {
		return err
	}

	stats, err := merge.Merge(primary, secondary, merge.Config{
		GapThreshold:       c.Duration("gap"),
		MaxDeviationMeters: c.Float64("max-deviation"),
	})
	if err != nil {
		return err
	}
	r.logger.Info("merged tracks", "gaps", stats.GapsDetected, "filled", stats.GapsFilled, "inserted", stats.InsertedPoints)

	if primary.Bounds != nil {
		primary.RefreshBounds()
	}
	out, err := primary.ToXML(gpx.XMLVersion(r.cfg.Output.Version), gpx.PrettyPrint(r.cfg.Output.Pretty))
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
		return json.NewEncoder(r.stderr).Encode(stats)
	}
	return nil
}
