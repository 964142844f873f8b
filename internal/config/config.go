// Package config loads the gpxinfo settings from defaults, an optional YAML
// file and GPXINFO_* environment variables.
package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

// XML backends accepted in Config.Backend
const (
	BackendEncoding  = "encoding"
	BackendTokenizer = "tokenizer"
)

// Config holds the CLI settings
type Config struct {
	// Backend selects the XML decoder
	Backend string `mapstructure:"backend"`
	// StoppedSpeedThreshold is in km/h
	StoppedSpeedThreshold float64 `mapstructure:"threshold"`

	Output  OutputConfig  `mapstructure:"output"`
	Convert ConvertConfig `mapstructure:"convert"`
}

// OutputConfig controls serialization
type OutputConfig struct {
	// Version is "1.0", "1.1" or empty to keep the input version
	Version string `mapstructure:"version"`
	Pretty  bool   `mapstructure:"pretty"`
}

// ConvertConfig holds the processing steps of the convert command. Zero
// distances and counts disable a step.
type ConvertConfig struct {
	SimplifyDistance  float64 `mapstructure:"simplify"`
	ReduceDistance    float64 `mapstructure:"reduce"`
	MaxPoints         int     `mapstructure:"max_points"`
	Smooth            bool    `mapstructure:"smooth"`
	RemoveExtremes    bool    `mapstructure:"remove_extremes"`
	AddMissing        bool    `mapstructure:"add_missing"`
	MedianWindow      int     `mapstructure:"median_window"`
	MaxRemovedPercent float64 `mapstructure:"max_removed_percent"`
}

// Load reads the configuration. file may be empty, in which case
// gpxinfo.yaml is looked up in the working directory and ignored if missing.
func Load(file string) (*Config, error) {
	v := viper.New()

	v.SetDefault("backend", BackendEncoding)
	v.SetDefault("threshold", 1.0)
	v.SetDefault("output.version", "")
	v.SetDefault("output.pretty", true)
	v.SetDefault("convert.simplify", 0.0)
	v.SetDefault("convert.reduce", 0.0)
	v.SetDefault("convert.max_points", 0)
	v.SetDefault("convert.smooth", false)
	v.SetDefault("convert.remove_extremes", false)
	v.SetDefault("convert.add_missing", false)
	v.SetDefault("convert.median_window", 0)
	v.SetDefault("convert.max_removed_percent", 100.0)

	v.SetConfigType("yaml")
	if file != "" {
		v.SetConfigFile(file)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config %s: %w", file, err)
		}
	} else {
		v.SetConfigName("gpxinfo")
		v.AddConfigPath(".")
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) {
				return nil, fmt.Errorf("read config: %w", err)
			}
		}
	}

	// GPXINFO_OUTPUT_VERSION → output.version
	v.SetEnvPrefix("GPXINFO")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks that the settings are usable
func (c *Config) Validate() error {
	var errs []string

	if c.Backend != BackendEncoding && c.Backend != BackendTokenizer {
		errs = append(errs, fmt.Sprintf("backend must be %q or %q, got %q", BackendEncoding, BackendTokenizer, c.Backend))
	}
	if c.StoppedSpeedThreshold < 0 {
		errs = append(errs, fmt.Sprintf("threshold must not be negative, got %g", c.StoppedSpeedThreshold))
	}
	switch c.Output.Version {
	case "", "1.0", "1.1":
	default:
		errs = append(errs, fmt.Sprintf("output.version must be 1.0 or 1.1, got %q", c.Output.Version))
	}
	if c.Convert.SimplifyDistance < 0 || c.Convert.ReduceDistance < 0 {
		errs = append(errs, "convert distances must not be negative")
	}
	if c.Convert.MaxPoints != 0 && c.Convert.MaxPoints < 2 {
		errs = append(errs, fmt.Sprintf("convert.max_points must be at least 2, got %d", c.Convert.MaxPoints))
	}
	if c.Convert.MedianWindow != 0 && c.Convert.MedianWindow < 3 {
		errs = append(errs, fmt.Sprintf("convert.median_window must be 0 or at least 3, got %d", c.Convert.MedianWindow))
	}
	if c.Convert.MaxRemovedPercent <= 0 || c.Convert.MaxRemovedPercent > 100 {
		errs = append(errs, fmt.Sprintf("convert.max_removed_percent must be in (0, 100], got %g", c.Convert.MaxRemovedPercent))
	}

	if len(errs) > 0 {
		return fmt.Errorf("config validation failed:\n  - %s", strings.Join(errs, "\n  - "))
	}
	return nil
}
