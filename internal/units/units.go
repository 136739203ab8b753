// Package units converts document lengths to inches.
//
// Pixel lengths depend on the resolution of the source: 96 for SVG user
// units, or the scan resolution of a photographed or scanned target.
package units

import (
	"errors"
	"math"
	"strings"

	"github.com/hyp3rd/ewrap"

	"github.com/ironsheep/target-tools-mcp/internal/precision"
)

// DefaultDPI is the SVG/CSS reference resolution.
const DefaultDPI = 96.0

// Unit is a document length unit.
type Unit string

const (
	Pixel      Unit = "px"
	Inch       Unit = "in"
	Millimeter Unit = "mm"
	Centimeter Unit = "cm"
	Point      Unit = "pt"
	Pica       Unit = "pc"
	Foot       Unit = "ft"
)

var (
	// ErrUnknownUnit is returned for a unit name ParseUnit does not recognise.
	ErrUnknownUnit = errors.New("unknown unit")

	// ErrInvalidDPI is returned when a pixel resolution is not positive.
	ErrInvalidDPI = errors.New("dpi must be greater than zero")
)

// inchesPer holds the length of one unit in inches; px is resolved from dpi.
var inchesPer = map[Unit]float64{
	Inch:       1,
	Millimeter: 1 / 25.4,
	Centimeter: 1 / 2.54,
	Point:      1.0 / 72,
	Pica:       1.0 / 6,
	Foot:       12,
}

// ParseUnit accepts a unit abbreviation, case-insensitively. An empty
// string means pixels.
func ParseUnit(s string) (Unit, error) {
	u := Unit(strings.ToLower(strings.TrimSpace(s)))
	if u == "" {
		return Pixel, nil
	}
	if u == Pixel {
		return u, nil
	}
	if _, ok := inchesPer[u]; ok {
		return u, nil
	}
	return "", ewrap.Wrap(ErrUnknownUnit, s)
}

// InchesPerUnit returns the length of one u in inches. dpi is only consulted
// for pixels.
func InchesPerUnit(u Unit, dpi float64) (float64, error) {
	if u == Pixel || u == "" {
		if !(dpi > 0) || math.IsInf(dpi, 0) {
			return 0, ewrap.Wrapf(ErrInvalidDPI, "got %v", dpi)
		}
		return 1 / dpi, nil
	}
	f, ok := inchesPer[u]
	if !ok {
		return 0, ewrap.Wrap(ErrUnknownUnit, string(u))
	}
	return f, nil
}

// ToInches returns a linear converter from u to inches.
func ToInches(u Unit, dpi float64) (precision.Converter, error) {
	f, err := InchesPerUnit(u, dpi)
	if err != nil {
		return nil, err
	}
	return func(v float64) float64 { return v * f }, nil
}
