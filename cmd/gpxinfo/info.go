package main

import (
	"fmt"
	"io"
	"time"

	"github.com/schollz/progressbar/v3"
	"github.com/urfave/cli/v2"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/planbiir/gpxkit/internal/gpx"
)

// measurable is implemented by documents, tracks and segments
type measurable interface {
	Length2D() float64
	Length3D() float64
	MovingData(stoppedSpeedThreshold float64) gpx.MovingData
	UphillDownhill() (float64, float64)
	TimeBounds() gpx.TimeBounds
}

func infoCommand(r *runner) *cli.Command {
	return &cli.Command{
		Name:      "info",
		Usage:     "Print length, timing and elevation statistics",
		ArgsUsage: "FILE...",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "lang",
				Usage: "Language tag used to format numbers",
				Value: "en",
			},
			&cli.BoolFlag{
				Name:    "tracks",
				Aliases: []string{"t"},
				Usage:   "Also print every track and segment",
			},
			&cli.BoolFlag{
				Name:  "progress",
				Usage: "Show a progress bar on stderr when reading several files",
			},
		},
		Action: r.info,
	}
}

func (r *runner) info(c *cli.Context) error {
	files := c.Args().Slice()
	if len(files) == 0 {
		return fmt.Errorf("no input files")
	}

	tag, err := language.Parse(c.String("lang"))
	if err != nil {
		return fmt.Errorf("invalid language %q: %w", c.String("lang"), err)
	}
	p := &statsPrinter{
		w:         r.stdout,
		lp:        message.NewPrinter(tag),
		threshold: r.cfg.StoppedSpeedThreshold,
	}

	var bar *progressbar.ProgressBar
	if c.Bool("progress") && len(files) > 1 {
		bar = progressbar.NewOptions(len(files),
			progressbar.OptionSetWriter(r.stderr),
			progressbar.OptionSetTheme(progressbar.Theme{
				Saucer:        "=",
				SaucerHead:    ">",
				SaucerPadding: " ",
				BarStart:      "[",
				BarEnd:        "]",
			}),
			progressbar.OptionSetDescription("[GPX] Reading files"),
			progressbar.OptionShowCount(),
			progressbar.OptionSetPredictTime(true),
			progressbar.OptionThrottle(100*time.Millisecond),
		)
	}

	for _, file := range files {
		g, err := r.parseFile(file)
		if err != nil {
			return err
		}

		fmt.Fprintf(p.w, "File: %s\n", file)
		p.print(g, g.TrackPointsNo(), "    ")

		if c.Bool("tracks") {
			for i := range g.Tracks {
				track := &g.Tracks[i]
				name := ""
				if track.Name != nil {
					name = " " + *track.Name
				}
				fmt.Fprintf(p.w, "    Track #%d%s\n", i, name)
				p.print(track, track.PointsNo(), "        ")

				for j := range track.Segments {
					segment := &track.Segments[j]
					fmt.Fprintf(p.w, "        Segment #%d\n", j)
					p.print(segment, segment.PointsNo(), "            ")
				}
			}
		}

		if bar != nil {
			_ = bar.Add(1)
		}
	}

	if bar != nil {
		_ = bar.Finish()
	}
	return nil
}

type statsPrinter struct {
	w         io.Writer
	lp        *message.Printer
	threshold float64
}

func (p *statsPrinter) print(m measurable, points int, indent string) {
	length2D, length3D := m.Length2D(), m.Length3D()
	fmt.Fprintf(p.w, "%sLength 2D: %s km\n", indent, p.lp.Sprintf("%.3f", length2D/1000))
	fmt.Fprintf(p.w, "%sLength 3D: %s km\n", indent, p.lp.Sprintf("%.3f", length3D/1000))

	md := m.MovingData(p.threshold)
	fmt.Fprintf(p.w, "%sMoving time: %s\n", indent, formatDuration(md.MovingTime))
	fmt.Fprintf(p.w, "%sStopped time: %s\n", indent, formatDuration(md.StoppedTime))
	if md.MaxSpeed != nil {
		fmt.Fprintf(p.w, "%sMax speed: %s m/s = %s km/h\n", indent,
			p.lp.Sprintf("%.2f", *md.MaxSpeed), p.lp.Sprintf("%.2f", *md.MaxSpeed*3.6))
	} else {
		fmt.Fprintf(p.w, "%sMax speed: n/a\n", indent)
	}

	uphill, downhill := m.UphillDownhill()
	fmt.Fprintf(p.w, "%sTotal uphill: %s m\n", indent, p.lp.Sprintf("%.2f", uphill))
	fmt.Fprintf(p.w, "%sTotal downhill: %s m\n", indent, p.lp.Sprintf("%.2f", downhill))

	tb := m.TimeBounds()
	fmt.Fprintf(p.w, "%sStarted: %s\n", indent, formatTime(tb.Start))
	fmt.Fprintf(p.w, "%sEnded: %s\n", indent, formatTime(tb.End))

	fmt.Fprintf(p.w, "%sPoints: %s\n", indent, p.lp.Sprintf("%d", points))
	if points > 1 {
		fmt.Fprintf(p.w, "%sAvg distance between points: %s m\n", indent,
			p.lp.Sprintf("%.2f", length2D/float64(points-1)))
	}
}

// formatDuration prints d as hh:mm:ss
func formatDuration(d time.Duration) string {
	s := int64(d.Round(time.Second) / time.Second)
	return fmt.Sprintf("%02d:%02d:%02d", s/3600, s%3600/60, s%60)
}

func formatTime(t *time.Time) string {
	if t == nil {
		return "n/a"
	}
	return t.UTC().Format(time.RFC3339)
}
