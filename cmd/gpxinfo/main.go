// Command gpxinfo prints statistics about GPX files, converts them between
// GPX versions with optional cleaning, merges two recordings and exports
// GeoJSON.
package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/urfave/cli/v2"

	"github.com/planbiir/gpxkit/internal/config"
	"github.com/planbiir/gpxkit/internal/gpx"
	"github.com/planbiir/gpxkit/internal/xmlnode"
)

func main() {
	app := newApp(os.Stdout, os.Stderr)
	if err := app.Run(os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// runner carries the state shared by all commands
type runner struct {
	cfg    *config.Config
	logger *slog.Logger
	stdout io.Writer
	stderr io.Writer
}

func newApp(stdout, stderr io.Writer) *cli.App {
	r := &runner{stdout: stdout, stderr: stderr}

	return &cli.App{
		Name:      "gpxinfo",
		Usage:     "Inspect, clean and convert GPX files",
		Writer:    stdout,
		ErrWriter: stderr,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "YAML configuration file (default ./gpxinfo.yaml if present)",
			},
			&cli.StringFlag{
				Name:  "backend",
				Usage: "XML decoder, encoding or tokenizer",
			},
			&cli.Float64Flag{
				Name:  "threshold",
				Usage: "Stopped speed threshold in km/h",
			},
			&cli.BoolFlag{
				Name:    "verbose",
				Aliases: []string{"v"},
				Usage:   "Debug logging on stderr",
			},
		},
		Before: r.setup,
		Commands: []*cli.Command{
			infoCommand(r),
			convertCommand(r),
			geojsonCommand(r),
			mergeCommand(r),
		},
	}
}

// setup loads the configuration and applies the global flag overrides
func (r *runner) setup(c *cli.Context) error {
	cfg, err := config.Load(c.String("config"))
	if err != nil {
		return err
	}
	if c.IsSet("backend") {
		cfg.Backend = c.String("backend")
	}
	if c.IsSet("threshold") {
		cfg.StoppedSpeedThreshold = c.Float64("threshold")
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	level := slog.LevelWarn
	if c.Bool("verbose") {
		level = slog.LevelDebug
	}
	r.cfg = cfg
	r.logger = slog.New(slog.NewTextHandler(r.stderr, &slog.HandlerOptions{Level: level}))
	return nil
}

func (r *runner) decoder() xmlnode.Decoder {
	if r.cfg.Backend == config.BackendTokenizer {
		return xmlnode.Tokenizer{}
	}
	return xmlnode.EncodingXML{}
}

// parseFile reads and parses a single GPX file
func (r *runner) parseFile(path string) (*gpx.GPX, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	g, err := gpx.Parse(f, gpx.WithDecoder(r.decoder()), gpx.WithLogger(r.logger.With("file", path)))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return g, nil
}
