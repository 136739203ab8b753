// Package workflow runs a complete shot group analysis: ingest records,
// check the group, compute statistics and draw the annotations.
package workflow

import (
	"context"
	"image"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/ironsheep/target-tools-mcp/internal/annotate"
	"github.com/ironsheep/target-tools-mcp/internal/detection"
	"github.com/ironsheep/target-tools-mcp/internal/metrics"
	"github.com/ironsheep/target-tools-mcp/internal/precision"
	"github.com/ironsheep/target-tools-mcp/internal/shotgroup"
	"github.com/ironsheep/target-tools-mcp/internal/units"
)

// Runner holds the settings for analyses. A Runner is immutable after
// construction and safe for concurrent use.
type Runner struct {
	toInches precision.Converter
	yards    float64
	style    annotate.Style
	detect   detection.Options
	logger   *zap.Logger
	metrics  *metrics.Manager
}

// Report is the outcome of one successful run.
type Report struct {
	RunID   string            `json:"run_id"`
	Result  *precision.Result `json:"result"`
	Summary string            `json:"summary"`
	Plan    annotate.Plan     `json:"plan"`

	// Dropped lists records that did not become shots.
	Dropped []shotgroup.Dropped `json:"dropped,omitempty"`

	// Holes is set by RunImage.
	Holes *detection.HolesResult `json:"holes,omitempty"`
}

// New returns a Runner for pixel coordinates at 96 DPI and 100 yards unless
// options say otherwise.
func New(opts ...Option) *Runner {
	toInches, _ := units.ToInches(units.Pixel, units.DefaultDPI)
	r := &Runner{
		toInches: toInches,
		yards:    precision.DefaultDistanceYards,
		style:    annotate.DefaultStyle(),
		detect:   detection.DefaultOptions(),
		logger:   zap.NewNop(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// With returns a copy of r with opts applied.
func (r *Runner) With(opts ...Option) *Runner {
	c := *r
	for _, opt := range opts {
		opt(&c)
	}
	return &c
}

// Style returns the annotation style.
func (r *Runner) Style() annotate.Style { return r.style }

// Run analyses the shots described by records and draws the annotations on
// sink. A nil sink skips drawing.
//
// When fewer than three records survive ingestion Run returns an error
// wrapping precision.ErrTooFewShots and sink receives nothing.
func (r *Runner) Run(ctx context.Context, records []shotgroup.Record, sink annotate.Sink) (*Report, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	runID := uuid.NewString()
	log := r.logger.With(zap.String("run_id", runID))

	g, dropped := shotgroup.Ingest(records)
	for _, d := range dropped {
		log.Debug("record dropped",
			zap.Int("index", d.Index),
			zap.String("id", d.ID),
			zap.String("reason", d.Reason))
	}
	r.metrics.RecordDropped(len(dropped))

	if err := precision.CheckGroup(g); err != nil {
		r.metrics.RecordRejectedGroup()
		log.Info("group rejected",
			zap.Int("records", len(records)),
			zap.Int("shots", g.Len()),
			zap.Error(err))
		return nil, err
	}

	result, err := precision.Analyze(g, r.toInches, r.yards)
	if err != nil {
		return nil, err
	}

	plan := annotate.NewPlan(result, r.style)
	if sink != nil {
		plan.Apply(sink)
	}
	r.metrics.RecordAnalysis(result.Shots)

	log.Info("group analysed",
		zap.Int("shots", result.Shots),
		zap.Int("dropped", len(dropped)),
		zap.Float64("distance_yards", result.DistanceYards),
		zap.Float64("group_size_moa", result.GroupSize.MOA))

	return &Report{
		RunID:   runID,
		Result:  result,
		Summary: plan.Summary,
		Plan:    plan,
		Dropped: dropped,
	}, nil
}

// RunImage detects bullet holes in img and runs the analysis on them.
func (r *Runner) RunImage(ctx context.Context, img image.Image, sink annotate.Sink) (*Report, error) {
	holes, err := detection.DetectHoles(img, r.detect)
	if err != nil {
		return nil, err
	}
	r.metrics.RecordHoles(holes.Count)
	r.logger.Debug("holes detected",
		zap.Int("count", holes.Count),
		zap.Int("rejected", holes.Rejected))

	report, err := r.Run(ctx, holes.Records(), sink)
	if err != nil {
		return nil, err
	}
	report.Holes = holes
	return report, nil
}
