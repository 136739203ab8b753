package config_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/smartystreets/goconvey/convey"

	"github.com/ironsheep/target-tools-mcp/internal/config"
	"github.com/ironsheep/target-tools-mcp/internal/metrics"
)

var configEnvVars = []string{
	"TARGET_CONFIG",
	"TARGET_LOG_LEVEL",
	"TARGET_DISTANCE_YARDS",
	"TARGET_UNIT",
	"TARGET_DPI",
	"TARGET_ANNOTATION_COLOR",
	"TARGET_DETECT_THRESHOLD",
	"TARGET_DETECT_MAX_RADIUS",
	"TARGET_METRICS_ADDR",
}

func clearConfigEnvVars() {
	for _, name := range configEnvVars {
		_ = os.Unsetenv(name)
	}
}

func writeConfigFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "target.yaml")
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("failed to write config file: %v", err)
	}
	return path
}

func TestConfigLoader(t *testing.T) {
	convey.Convey("Given a config loader", t, func() {
		ctx := context.Background()
		clearConfigEnvVars()
		defer clearConfigEnvVars()

		convey.Convey("When loading config with defaults only", func() {
			cfg, err := config.Load(ctx, "")

			convey.Convey("Then it should load successfully with defaults", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg.LogLevel, convey.ShouldEqual, "info")
				convey.So(cfg.DistanceYards, convey.ShouldEqual, 100)
				convey.So(cfg.Unit, convey.ShouldEqual, "px")
				convey.So(cfg.DPI, convey.ShouldEqual, 96)
				convey.So(cfg.AnnotationColor, convey.ShouldEqual, "#ff0000")
				convey.So(cfg.StrokeWidth, convey.ShouldEqual, 1)
				convey.So(cfg.FontSize, convey.ShouldEqual, 10)
				convey.So(cfg.PlusSize, convey.ShouldEqual, 20)
				convey.So(cfg.DetectThreshold, convey.ShouldEqual, 96)
				convey.So(cfg.DetectMaxRadius, convey.ShouldEqual, 60)
				convey.So(cfg.MetricsAddr, convey.ShouldBeEmpty)
			})
		})

		convey.Convey("When loading config with environment variables", func() {
			_ = os.Setenv("TARGET_DISTANCE_YARDS", "200")
			_ = os.Setenv("TARGET_UNIT", "mm")
			_ = os.Setenv("TARGET_DETECT_THRESHOLD", "120")
			_ = os.Setenv("TARGET_METRICS_ADDR", ":9464")

			cfg, err := config.Load(ctx, "")

			convey.Convey("Then it should override defaults with env vars", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg.DistanceYards, convey.ShouldEqual, 200)
				convey.So(cfg.Unit, convey.ShouldEqual, "mm")
				convey.So(cfg.DetectThreshold, convey.ShouldEqual, 120)
				convey.So(cfg.MetricsAddr, convey.ShouldEqual, ":9464")
			})
		})

		convey.Convey("When loading config with a YAML file", func() {
			path := writeConfigFile(t, `
distance_yards: 50
unit: in
annotation_color: "#00ff00"
font_size: 14
`)
			cfg, err := config.Load(ctx, path)

			convey.Convey("Then it should load from the file and keep other defaults", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg.DistanceYards, convey.ShouldEqual, 50)
				convey.So(cfg.Unit, convey.ShouldEqual, "in")
				convey.So(cfg.AnnotationColor, convey.ShouldEqual, "#00ff00")
				convey.So(cfg.FontSize, convey.ShouldEqual, 14)
				convey.So(cfg.PlusSize, convey.ShouldEqual, 20)
			})
		})

		convey.Convey("When the file comes from TARGET_CONFIG and env also sets a value", func() {
			path := writeConfigFile(t, "distance_yards: 50\ndpi: 300\n")
			_ = os.Setenv("TARGET_CONFIG", path)
			_ = os.Setenv("TARGET_DISTANCE_YARDS", "25")

			cfg, err := config.Load(ctx, "")

			convey.Convey("Then environment variables should override file values", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg.DistanceYards, convey.ShouldEqual, 25) // env
				convey.So(cfg.DPI, convey.ShouldEqual, 300)          // file
			})
		})

		convey.Convey("When the file names the metrics", func() {
			path := writeConfigFile(t, `
metrics_namespace: range
metrics_subsystem: lane
metrics_shot_buckets: [3, 10, 30]
`)
			cfg, err := config.Load(ctx, path)

			convey.Convey("Then the metrics manager uses those names and buckets", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg.MetricsShotBuckets, convey.ShouldResemble, []float64{3, 10, 30})

				m := metrics.NewManager(cfg.MetricsOptions()...)
				m.RecordAnalysis(4)
				families, err := m.Registry().Gather()
				convey.So(err, convey.ShouldBeNil)

				buckets := -1
				for _, f := range families {
					if f.GetName() == "range_lane_shots_per_group" {
						buckets = len(f.GetMetric()[0].GetHistogram().GetBucket())
					}
				}
				convey.So(buckets, convey.ShouldEqual, 3)
			})
		})

		convey.Convey("When the file does not exist", func() {
			_, err := config.Load(ctx, filepath.Join(t.TempDir(), "missing.yaml"))

			convey.Convey("Then loading fails", func() {
				convey.So(err, convey.ShouldNotBeNil)
			})
		})

		convey.Convey("When a value is invalid", func() {
			_ = os.Setenv("TARGET_DISTANCE_YARDS", "0")

			_, err := config.Load(ctx, "")

			convey.Convey("Then validation fails with ErrInvalidConfig", func() {
				convey.So(errors.Is(err, config.ErrInvalidConfig), convey.ShouldBeTrue)
			})
		})

		convey.Convey("When the context is already cancelled", func() {
			cancelled, cancel := context.WithCancel(ctx)
			cancel()

			_, err := config.Load(cancelled, "")

			convey.Convey("Then loading is abandoned", func() {
				convey.So(errors.Is(err, context.Canceled), convey.ShouldBeTrue)
			})
		})
	})
}

func TestConfigValidate(t *testing.T) {
	convey.Convey("Given default config", t, func() {
		cfg := config.New()

		convey.Convey("It is valid", func() {
			convey.So(cfg.Validate(), convey.ShouldBeNil)
		})

		convey.Convey("An unknown unit is rejected", func() {
			cfg.Unit = "furlong"
			convey.So(errors.Is(cfg.Validate(), config.ErrInvalidConfig), convey.ShouldBeTrue)
		})

		convey.Convey("A bad colour is rejected", func() {
			cfg.AnnotationColor = "reddish"
			convey.So(errors.Is(cfg.Validate(), config.ErrInvalidConfig), convey.ShouldBeTrue)
		})

		convey.Convey("A bad log level is rejected", func() {
			cfg.LogLevel = "chatty"
			convey.So(errors.Is(cfg.Validate(), config.ErrInvalidConfig), convey.ShouldBeTrue)
		})

		convey.Convey("An out of range threshold is rejected", func() {
			cfg.DetectThreshold = 300
			convey.So(errors.Is(cfg.Validate(), config.ErrInvalidConfig), convey.ShouldBeTrue)
		})

		convey.Convey("Unordered metric buckets are rejected", func() {
			cfg.MetricsShotBuckets = []float64{5, 3}
			convey.So(errors.Is(cfg.Validate(), config.ErrInvalidConfig), convey.ShouldBeTrue)
		})

		convey.Convey("Derived values follow the fields", func() {
			cfg.Unit = "in"
			toInches, err := cfg.Converter()
			convey.So(err, convey.ShouldBeNil)
			convey.So(toInches(2.5), convey.ShouldEqual, 2.5)

			convey.So(cfg.Style().PlusSize, convey.ShouldEqual, 20)
			convey.So(cfg.DetectionOptions().Threshold, convey.ShouldEqual, uint8(96))
		})
	})
}
