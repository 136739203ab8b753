package precision

import (
	"math"

	"github.com/hyp3rd/ewrap"

	"github.com/ironsheep/target-tools-mcp/internal/shotgroup"
)

const (
	// MinShots is the smallest group that can be analyzed.
	MinShots = 3

	// DefaultDistanceYards is used when no distance is configured.
	DefaultDistanceYards = 100.0

	// inchesPerMOA is the size of one minute of angle at 100 yards.
	inchesPerMOA = 1.047
)

// Converter maps a length in native units to inches.
type Converter func(native float64) float64

// Identity is the Converter for groups already measured in inches.
func Identity(v float64) float64 { return v }

// Circle is a center and radius.
type Circle struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	R float64 `json:"r"`
}

// Span is a linear size in inches together with its angular size.
type Span struct {
	Inches float64 `json:"inches"`
	MOA    float64 `json:"moa"`
}

// MOA converts a span in inches at the given distance in yards to minutes
// of angle.
func MOA(spanInches, yards float64) float64 {
	return spanInches / (inchesPerMOA * yards / 100)
}

func span(native float64, toInches Converter, yards float64) Span {
	in := toInches(native)
	return Span{Inches: in, MOA: MOA(in, yards)}
}

// Center returns the group's average center.
func Center(g *shotgroup.Group) shotgroup.Point {
	return g.Center()
}

// MeanPrecisionRadius returns the mean distance of the shots from the group
// center, in native units.
func MeanPrecisionRadius(g *shotgroup.Group) float64 {
	c := g.Center()
	total := shotgroup.Fold(g, 0.0, func(acc float64, s shotgroup.Sample) float64 {
		return acc + c.Dist(s.Point())
	})
	return total / float64(g.Len())
}

// AveragePrecisionCircle returns the circle at the group center whose radius
// is the mean precision radius, in native units.
func AveragePrecisionCircle(g *shotgroup.Group) Circle {
	c := g.Center()
	return Circle{X: c.X, Y: c.Y, R: MeanPrecisionRadius(g)}
}

// MeanHorizontalVertical returns twice the mean absolute offset from the
// center along X (horizontal) and Y (vertical).
func MeanHorizontalVertical(g *shotgroup.Group, toInches Converter, yards float64) (horizontal, vertical Span) {
	c := g.Center()
	n := float64(g.Len())
	dx := shotgroup.Fold(g, 0.0, func(acc float64, s shotgroup.Sample) float64 {
		return acc + math.Abs(c.X-s.X)
	})
	dy := shotgroup.Fold(g, 0.0, func(acc float64, s shotgroup.Sample) float64 {
		return acc + math.Abs(c.Y-s.Y)
	})
	return span(2*dx/n, toInches, yards), span(2*dy/n, toInches, yards)
}

// ExtremeSpread returns the largest center-to-center distance between any
// two shots.
func ExtremeSpread(g *shotgroup.Group, toInches Converter, yards float64) Span {
	return span(maxPairwiseDistance(g), toInches, yards)
}

// maxPairwiseDistance scans every ordered pair, self pairs included.
func maxPairwiseDistance(g *shotgroup.Group) float64 {
	return shotgroup.Fold(g, 0.0, func(best float64, a shotgroup.Sample) float64 {
		return shotgroup.Fold(g, best, func(best float64, b shotgroup.Sample) float64 {
			return math.Max(best, a.Point().Dist(b.Point()))
		})
	})
}

// CircleInches converts every component of c to inches.
func CircleInches(c Circle, toInches Converter) Circle {
	return Circle{X: toInches(c.X), Y: toInches(c.Y), R: toInches(c.R)}
}

// CheckGroup reports whether g is large enough to analyze.
func CheckGroup(g *shotgroup.Group) error {
	n := 0
	if g != nil {
		n = g.Len()
	}
	if n < MinShots {
		return ewrap.Wrapf(ErrTooFewShots, "group has %d valid shots", n)
	}
	return nil
}

// CheckDistance reports whether yards is a usable target distance.
func CheckDistance(yards float64) error {
	if !(yards > 0) || math.IsInf(yards, 0) {
		return ewrap.Wrapf(ErrInvalidDistance, "got %v yards", yards)
	}
	return nil
}

// Result is the full set of statistics for one group.
type Result struct {
	Shots         int             `json:"shots"`
	DistanceYards float64         `json:"distance_yards"`
	Center        shotgroup.Point `json:"center"`

	// MeanRadius is the mean precision radius in native units.
	MeanRadius float64 `json:"mean_radius"`

	// Circle is the average precision circle in native units; CircleInches
	// is the same circle converted to inches.
	Circle       Circle `json:"circle"`
	CircleInches Circle `json:"circle_inches"`

	// GroupSize is the average precision diameter (twice the mean radius).
	GroupSize     Span `json:"group_size"`
	Horizontal    Span `json:"horizontal"`
	Vertical      Span `json:"vertical"`
	ExtremeSpread Span `json:"extreme_spread"`
}

// Analyze checks the preconditions and computes every statistic for g.
func Analyze(g *shotgroup.Group, toInches Converter, yards float64) (*Result, error) {
	if toInches == nil {
		return nil, ErrNoConverter
	}
	if err := CheckDistance(yards); err != nil {
		return nil, err
	}
	if err := CheckGroup(g); err != nil {
		return nil, err
	}

	circle := AveragePrecisionCircle(g)
	circleIn := CircleInches(circle, toInches)
	horizontal, vertical := MeanHorizontalVertical(g, toInches, yards)

	return &Result{
		Shots:         g.Len(),
		DistanceYards: yards,
		Center:        g.Center(),
		MeanRadius:    circle.R,
		Circle:        circle,
		CircleInches:  circleIn,
		GroupSize:     Span{Inches: 2 * circleIn.R, MOA: MOA(2*circleIn.R, yards)},
		Horizontal:    horizontal,
		Vertical:      vertical,
		ExtremeSpread: ExtremeSpread(g, toInches, yards),
	}, nil
}
