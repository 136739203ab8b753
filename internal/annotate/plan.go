package annotate

import (
	"strings"

	"github.com/ironsheep/target-tools-mcp/internal/precision"
	"github.com/ironsheep/target-tools-mcp/internal/shotgroup"
)

// Label tags every element drawn for an analysis.
const Label = "target-average-precision"

// Style controls how a Plan is laid out and drawn.
type Style struct {
	// Color is "#RRGGBB" or "#RRGGBBAA".
	Color string `json:"color"`

	StrokeWidth int `json:"stroke_width"`

	// FontSize doubles as the distance between text baselines.
	FontSize float64 `json:"font_size"`

	// PlusSize is the full length of each arm of the center plus.
	PlusSize float64 `json:"plus_size"`
}

// DefaultStyle is red, one pixel wide, 10 point text, 20 unit plus.
func DefaultStyle() Style {
	return Style{Color: "#ff0000", StrokeWidth: 1, FontSize: 10, PlusSize: 20}
}

// Sink receives drawing commands.
type Sink interface {
	DrawCircle(c precision.Circle)
	DrawLine(from, to shotgroup.Point)
	DrawText(at shotgroup.Point, lines []string, lineHeight float64)
}

// Segment is a straight line between two points.
type Segment struct {
	From shotgroup.Point `json:"from"`
	To   shotgroup.Point `json:"to"`
}

// TextBlock is left-aligned text whose first baseline sits at At.
type TextBlock struct {
	At         shotgroup.Point `json:"at"`
	Lines      []string        `json:"lines"`
	LineHeight float64         `json:"line_height"`
}

// Plan is everything drawn for one analysis.
type Plan struct {
	Circle  precision.Circle `json:"circle"`
	Plus    [2]Segment       `json:"plus"`
	Text    TextBlock        `json:"text"`
	Summary string           `json:"summary"`
}

// NewPlan lays out the annotations for r.
func NewPlan(r *precision.Result, style Style) Plan {
	c := r.Center
	half := style.PlusSize / 2
	summary := precision.Summary(r)

	return Plan{
		Circle: r.Circle,
		Plus: [2]Segment{
			{From: shotgroup.Point{X: c.X - half, Y: c.Y}, To: shotgroup.Point{X: c.X + half, Y: c.Y}},
			{From: shotgroup.Point{X: c.X, Y: c.Y - half}, To: shotgroup.Point{X: c.X, Y: c.Y + half}},
		},
		Text: TextBlock{
			At:         shotgroup.Point{X: c.X + 2, Y: c.Y + 10},
			Lines:      strings.Split(summary, "\n"),
			LineHeight: style.FontSize,
		},
		Summary: summary,
	}
}

// Apply sends the plan to s: circle, then plus, then text.
func (p Plan) Apply(s Sink) {
	s.DrawCircle(p.Circle)
	for _, seg := range p.Plus {
		s.DrawLine(seg.From, seg.To)
	}
	s.DrawText(p.Text.At, p.Text.Lines, p.Text.LineHeight)
}
