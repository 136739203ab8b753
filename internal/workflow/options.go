package workflow

import (
	"go.uber.org/zap"

	"github.com/ironsheep/target-tools-mcp/internal/annotate"
	"github.com/ironsheep/target-tools-mcp/internal/detection"
	"github.com/ironsheep/target-tools-mcp/internal/metrics"
	"github.com/ironsheep/target-tools-mcp/internal/precision"
)

// Option configures a Runner.
type Option func(*Runner)

// WithConverter sets the native-units-to-inches conversion.
func WithConverter(toInches precision.Converter) Option {
	return func(r *Runner) {
		if toInches != nil {
			r.toInches = toInches
		}
	}
}

// WithDistance sets the target distance in yards. Invalid distances are kept
// so that Run can report them.
func WithDistance(yards float64) Option {
	return func(r *Runner) {
		r.yards = yards
	}
}

// WithStyle sets the annotation style.
func WithStyle(style annotate.Style) Option {
	return func(r *Runner) {
		r.style = style
	}
}

// WithDetection sets the hole detection options used by RunImage.
func WithDetection(opts detection.Options) Option {
	return func(r *Runner) {
		r.detect = opts
	}
}

// WithLogger sets the logger. Nil keeps the current one.
func WithLogger(logger *zap.Logger) Option {
	return func(r *Runner) {
		if logger != nil {
			r.logger = logger
		}
	}
}

// WithMetrics sets the metrics manager. Nil disables metrics.
func WithMetrics(m *metrics.Manager) Option {
	return func(r *Runner) {
		r.metrics = m
	}
}
