package shotgroup

import "math"

// Point is a 2D position in native units.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Dist returns the Euclidean distance between p and q.
func (p Point) Dist(q Point) float64 {
	return math.Hypot(p.X-q.X, p.Y-q.Y)
}

// Sample is one observed shot mark.
type Sample struct {
	// ID identifies the source record. Diagnostics only.
	ID string `json:"id"`

	X float64 `json:"x"`
	Y float64 `json:"y"`

	// R is the mark's radius. It plays no part in the statistics.
	R float64 `json:"r"`
}

// Point returns the sample's center.
func (s Sample) Point() Point {
	return Point{X: s.X, Y: s.Y}
}

// Group is an ordered, immutable collection of samples.
type Group struct {
	samples []Sample
	center  Point
}

// New builds a Group from samples, copying the slice. The center is computed
// here once; an empty group has its center at the origin.
func New(samples []Sample) *Group {
	g := &Group{samples: append([]Sample(nil), samples...)}
	if len(g.samples) > 0 {
		g.center = g.averageCenter()
	}
	return g
}

// Ingest validates every record and collects the survivors in input order.
// It never fails; malformed records are returned as Dropped.
func Ingest(records []Record) (*Group, []Dropped) {
	samples := make([]Sample, 0, len(records))
	var dropped []Dropped
	for i, rec := range records {
		s, d := Validate(i, rec)
		if d != nil {
			dropped = append(dropped, *d)
			continue
		}
		samples = append(samples, s)
	}
	return New(samples), dropped
}

// Len returns the number of samples.
func (g *Group) Len() int { return len(g.samples) }

// Samples returns a copy of the samples in ingestion order.
func (g *Group) Samples() []Sample {
	return append([]Sample(nil), g.samples...)
}

// Center returns the memoized group center.
func (g *Group) Center() Point { return g.center }

// Fold reduces the samples in order without mutating the group.
func Fold[T any](g *Group, init T, f func(acc T, s Sample) T) T {
	acc := init
	for _, s := range g.samples {
		acc = f(acc, s)
	}
	return acc
}

// MinByX returns the sample with the smallest X. Among ties the last one
// wins. Panics on an empty group.
func (g *Group) MinByX() Sample {
	return g.minBy(func(s Sample) float64 { return s.X })
}

// MinByY returns the sample with the smallest Y. Among ties the last one
// wins. Panics on an empty group.
func (g *Group) MinByY() Sample {
	return g.minBy(func(s Sample) float64 { return s.Y })
}

func (g *Group) minBy(key func(Sample) float64) Sample {
	first := g.samples[0]
	return Fold(g, first, func(best, s Sample) Sample {
		if key(s) <= key(best) {
			return s
		}
		return best
	})
}

// averageCenter offsets every coordinate by the group minimum before
// averaging. The divisor is N.
func (g *Group) averageCenter() Point {
	n := float64(len(g.samples))
	minX := g.MinByX().X
	minY := g.MinByY().Y
	dx := Fold(g, 0.0, func(acc float64, s Sample) float64 { return acc + (s.X - minX) })
	dy := Fold(g, 0.0, func(acc float64, s Sample) float64 { return acc + (s.Y - minY) })
	return Point{X: minX + dx/n, Y: minY + dy/n}
}
