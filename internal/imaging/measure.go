package imaging

import (
	"math"

	"github.com/ironsheep/target-tools-mcp/internal/precision"
	"github.com/ironsheep/target-tools-mcp/internal/shotgroup"
)

// DistanceResult is a measurement between two points on a target.
type DistanceResult struct {
	// Distance is in native units (pixels for raster targets).
	Distance float64 `json:"distance"`
	DeltaX   float64 `json:"delta_x"`
	DeltaY   float64 `json:"delta_y"`

	// AngleDegrees is 0 for a horizontal line to the right, 90 straight down.
	AngleDegrees float64 `json:"angle_degrees"`

	Inches float64 `json:"inches"`
	MOA    float64 `json:"moa"`
}

// MeasureDistance measures from p1 to p2 and converts the length to inches
// and to MOA at yards.
func MeasureDistance(p1, p2 shotgroup.Point, toInches precision.Converter, yards float64) (*DistanceResult, error) {
	if toInches == nil {
		return nil, precision.ErrNoConverter
	}
	if err := precision.CheckDistance(yards); err != nil {
		return nil, err
	}

	dx := p2.X - p1.X
	dy := p2.Y - p1.Y
	distance := p1.Dist(p2)
	angle := math.Atan2(dy, dx) * 180 / math.Pi
	inches := toInches(distance)

	return &DistanceResult{
		Distance:     math.Round(distance*100) / 100,
		DeltaX:       dx,
		DeltaY:       dy,
		AngleDegrees: math.Round(angle*10) / 10,
		Inches:       math.Round(inches*1000) / 1000,
		MOA:          math.Round(precision.MOA(inches, yards)*100) / 100,
	}, nil
}
