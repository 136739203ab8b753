// Package config defines target-tools configuration and how it is loaded.
//
// Values are layered from built-in defaults, an optional YAML file and
// TARGET_ environment variables. Command-line flags are applied on top by
// the caller.
package config

import (
	"strings"

	"github.com/hyp3rd/ewrap"

	"github.com/ironsheep/target-tools-mcp/internal/annotate"
	"github.com/ironsheep/target-tools-mcp/internal/detection"
	"github.com/ironsheep/target-tools-mcp/internal/metrics"
	"github.com/ironsheep/target-tools-mcp/internal/precision"
	"github.com/ironsheep/target-tools-mcp/internal/units"
)

// Config contains process configuration.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// DistanceYards is the default range to the target for MOA figures.
	DistanceYards float64 `koanf:"distance_yards"`

	// Unit is the native unit of shot coordinates (px, in, mm, cm, pt, pc, ft).
	Unit string `koanf:"unit"`

	// DPI is the resolution used when Unit is px.
	DPI float64 `koanf:"dpi"`

	// Annotation styling.
	AnnotationColor string  `koanf:"annotation_color"`
	StrokeWidth     int     `koanf:"stroke_width"`
	FontSize        float64 `koanf:"font_size"`
	PlusSize        float64 `koanf:"plus_size"`

	// Hole detection tuning.
	DetectThreshold int     `koanf:"detect_threshold"`
	DetectBlur      float64 `koanf:"detect_blur"`
	DetectMinRadius float64 `koanf:"detect_min_radius"`
	DetectMaxRadius float64 `koanf:"detect_max_radius"`

	// MetricsAddr enables a Prometheus endpoint when non-empty, e.g. ":9464".
	MetricsAddr string `koanf:"metrics_addr"`

	// Metric naming and histogram buckets. Empty values keep the
	// target_tools_* names and the built-in buckets.
	MetricsNamespace   string    `koanf:"metrics_namespace"`
	MetricsSubsystem   string    `koanf:"metrics_subsystem"`
	MetricsShotBuckets []float64 `koanf:"metrics_shot_buckets"`
}

// New returns a Config populated with defaults.
func New() *Config {
	style := annotate.DefaultStyle()
	det := detection.DefaultOptions()

	return &Config{
		LogLevel:        "info",
		DistanceYards:   precision.DefaultDistanceYards,
		Unit:            string(units.Pixel),
		DPI:             units.DefaultDPI,
		AnnotationColor: style.Color,
		StrokeWidth:     style.StrokeWidth,
		FontSize:        style.FontSize,
		PlusSize:        style.PlusSize,
		DetectThreshold: int(det.Threshold),
		DetectBlur:      det.BlurRadius,
		DetectMinRadius: det.MinRadius,
		DetectMaxRadius: det.MaxRadius,
	}
}

// Validate reports the first invalid field, wrapped in ErrInvalidConfig.
func (c *Config) Validate() error {
	switch strings.ToLower(c.LogLevel) {
	case "debug", "info", "warn", "error":
	default:
		return ewrap.Wrapf(ErrInvalidConfig, "log_level %q", c.LogLevel)
	}

	if err := precision.CheckDistance(c.DistanceYards); err != nil {
		return ewrap.Wrap(ErrInvalidConfig, err.Error())
	}
	if _, err := c.Converter(); err != nil {
		return ewrap.Wrap(ErrInvalidConfig, err.Error())
	}
	if _, err := annotate.ParseColor(c.AnnotationColor); err != nil {
		return ewrap.Wrap(ErrInvalidConfig, err.Error())
	}
	if c.StrokeWidth <= 0 || !(c.FontSize > 0) || !(c.PlusSize > 0) {
		return ewrap.Wrap(ErrInvalidConfig, "stroke_width, font_size and plus_size must be positive")
	}
	if c.DetectThreshold < 0 || c.DetectThreshold > 255 {
		return ewrap.Wrapf(ErrInvalidConfig, "detect_threshold %d outside 0-255", c.DetectThreshold)
	}
	if err := c.DetectionOptions().Validate(); err != nil {
		return ewrap.Wrap(ErrInvalidConfig, err.Error())
	}
	for i := 1; i < len(c.MetricsShotBuckets); i++ {
		if c.MetricsShotBuckets[i] <= c.MetricsShotBuckets[i-1] {
			return ewrap.Wrap(ErrInvalidConfig, "metrics_shot_buckets must be strictly increasing")
		}
	}
	return nil
}

// Converter returns the native-to-inches conversion for Unit and DPI.
func (c *Config) Converter() (precision.Converter, error) {
	u, err := units.ParseUnit(c.Unit)
	if err != nil {
		return nil, err
	}
	return units.ToInches(u, c.DPI)
}

// Style returns the annotation style.
func (c *Config) Style() annotate.Style {
	return annotate.Style{
		Color:       c.AnnotationColor,
		StrokeWidth: c.StrokeWidth,
		FontSize:    c.FontSize,
		PlusSize:    c.PlusSize,
	}
}

// DetectionOptions returns hole detection options. Settings without a config
// key keep their defaults.
func (c *Config) DetectionOptions() detection.Options {
	opts := detection.DefaultOptions()
	opts.Threshold = uint8(c.DetectThreshold)
	opts.BlurRadius = c.DetectBlur
	opts.MinRadius = c.DetectMinRadius
	opts.MaxRadius = c.DetectMaxRadius
	return opts
}

// MetricsOptions returns the metrics manager options for the metrics_* keys.
func (c *Config) MetricsOptions() []metrics.Option {
	return []metrics.Option{
		metrics.WithNamespace(c.MetricsNamespace),
		metrics.WithSubsystem(c.MetricsSubsystem),
		metrics.WithShotBuckets(c.MetricsShotBuckets),
	}
}
