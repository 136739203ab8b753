package annotate

import (
	"github.com/ironsheep/target-tools-mcp/internal/precision"
	"github.com/ironsheep/target-tools-mcp/internal/shotgroup"
)

// Command ops.
const (
	OpCircle = "circle"
	OpLine   = "line"
	OpText   = "text"
)

// Command is one recorded drawing call. Only the fields for Op are set.
// Label lets a host find and replace the elements of an earlier analysis.
type Command struct {
	Op         string            `json:"op"`
	Label      string            `json:"label"`
	Circle     *precision.Circle `json:"circle,omitempty"`
	From       *shotgroup.Point  `json:"from,omitempty"`
	To         *shotgroup.Point  `json:"to,omitempty"`
	At         *shotgroup.Point  `json:"at,omitempty"`
	Lines      []string          `json:"lines,omitempty"`
	LineHeight float64           `json:"line_height,omitempty"`
}

// Recorder is a Sink that remembers every command it receives.
type Recorder struct {
	Commands []Command `json:"commands"`
}

func (r *Recorder) DrawCircle(c precision.Circle) {
	r.Commands = append(r.Commands, Command{Op: OpCircle, Label: Label, Circle: &c})
}

func (r *Recorder) DrawLine(from, to shotgroup.Point) {
	r.Commands = append(r.Commands, Command{Op: OpLine, Label: Label, From: &from, To: &to})
}

func (r *Recorder) DrawText(at shotgroup.Point, lines []string, lineHeight float64) {
	r.Commands = append(r.Commands, Command{
		Op:         OpText,
		Label:      Label,
		At:         &at,
		Lines:      append([]string(nil), lines...),
		LineHeight: lineHeight,
	})
}

// Fanout forwards every command to each of its sinks in order.
type Fanout []Sink

func (f Fanout) DrawCircle(c precision.Circle) {
	for _, s := range f {
		s.DrawCircle(c)
	}
}

func (f Fanout) DrawLine(from, to shotgroup.Point) {
	for _, s := range f {
		s.DrawLine(from, to)
	}
}

func (f Fanout) DrawText(at shotgroup.Point, lines []string, lineHeight float64) {
	for _, s := range f {
		s.DrawText(at, lines, lineHeight)
	}
}
