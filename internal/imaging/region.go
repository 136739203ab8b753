package imaging

import (
	"image"

	"github.com/disintegration/imaging"
	"github.com/hyp3rd/ewrap"
)

// Region is a rectangle in image coordinates. (X1,Y1) is inclusive, (X2,Y2)
// exclusive.
type Region struct {
	X1 int `json:"x1"`
	Y1 int `json:"y1"`
	X2 int `json:"x2"`
	Y2 int `json:"y2"`
}

// Rect returns r as an image.Rectangle.
func (r Region) Rect() image.Rectangle {
	return image.Rect(r.X1, r.Y1, r.X2, r.Y2)
}

// NamedRegion resolves a region name relative to bounds. Names are
// top-left, top-right, bottom-left, bottom-right, top-half, bottom-half,
// left-half, right-half, center (middle 50%) and full.
func NamedRegion(bounds image.Rectangle, name string) (Region, error) {
	x0, y0 := bounds.Min.X, bounds.Min.Y
	w, h := bounds.Dx(), bounds.Dy()
	midX, midY := x0+w/2, y0+h/2
	x3, y3 := bounds.Max.X, bounds.Max.Y

	switch name {
	case "full", "":
		return Region{x0, y0, x3, y3}, nil
	case "top-left":
		return Region{x0, y0, midX, midY}, nil
	case "top-right":
		return Region{midX, y0, x3, midY}, nil
	case "bottom-left":
		return Region{x0, midY, midX, y3}, nil
	case "bottom-right":
		return Region{midX, midY, x3, y3}, nil
	case "top-half":
		return Region{x0, y0, x3, midY}, nil
	case "bottom-half":
		return Region{x0, midY, x3, y3}, nil
	case "left-half":
		return Region{x0, y0, midX, y3}, nil
	case "right-half":
		return Region{midX, y0, x3, y3}, nil
	case "center":
		qW, qH := w/4, h/4
		return Region{x0 + qW, y0 + qH, x3 - qW, y3 - qH}, nil
	default:
		return Region{}, ewrap.Newf("unknown region: %s", name)
	}
}

// Crop cuts r out of img. The result keeps the source coordinate space, so a
// point found at (x, y) in the crop is at (x, y) in img as well.
func Crop(img image.Image, r Region) (image.Image, error) {
	bounds := img.Bounds()
	rect := r.Rect()

	if r.X1 >= r.X2 || r.Y1 >= r.Y2 {
		return nil, ewrap.New("invalid crop region: x1 must be < x2, y1 must be < y2")
	}
	if !rect.In(bounds) {
		return nil, ewrap.Newf("crop region (%d,%d)-(%d,%d) outside image bounds (%d,%d)-(%d,%d)",
			r.X1, r.Y1, r.X2, r.Y2, bounds.Min.X, bounds.Min.Y, bounds.Max.X, bounds.Max.Y)
	}

	cropped := imaging.Crop(img, rect)
	cropped.Rect = cropped.Rect.Add(rect.Min)
	return cropped, nil
}
