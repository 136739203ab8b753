package detection

import (
	"fmt"
	"image"
	"math"
	"sort"

	"github.com/anthonynsimon/bild/blur"
	"github.com/anthonynsimon/bild/effect"
	"github.com/anthonynsimon/bild/segment"
	"github.com/hyp3rd/ewrap"

	"github.com/ironsheep/target-tools-mcp/internal/shotgroup"
)

// Bounds is an inclusive bounding box in pixel coordinates.
type Bounds struct {
	X1 int `json:"x1"` // Left edge
	Y1 int `json:"y1"` // Top edge
	X2 int `json:"x2"` // Right edge
	Y2 int `json:"y2"` // Bottom edge
}

// Options tunes hole detection.
type Options struct {
	// Threshold is the luminance (0-255) below which a pixel counts as part
	// of a hole.
	Threshold uint8 `json:"threshold"`

	// BlurRadius is the Gaussian blur applied before thresholding. Zero
	// disables blurring.
	BlurRadius float64 `json:"blur_radius"`

	// MinRadius and MaxRadius bound the equivalent radius, in pixels.
	MinRadius float64 `json:"min_radius"`
	MaxRadius float64 `json:"max_radius"`

	// MinFill is the smallest accepted ratio of blob area to bounding box
	// area. A perfect disk fills pi/4 of its box.
	MinFill float64 `json:"min_fill"`

	// MaxAspect is the largest accepted ratio of bounding box sides.
	MaxAspect float64 `json:"max_aspect"`

	// KeepBorder keeps blobs that touch the image edge.
	KeepBorder bool `json:"keep_border"`
}

// DefaultOptions suits black holes on a light target scanned at 96-300 dpi.
func DefaultOptions() Options {
	return Options{
		Threshold:  96,
		BlurRadius: 1.0,
		MinRadius:  2,
		MaxRadius:  60,
		MinFill:    0.5,
		MaxAspect:  2.0,
	}
}

// Validate rejects option sets that cannot match anything.
func (o Options) Validate() error {
	switch {
	case o.MinRadius < 0 || o.MaxRadius <= 0:
		return ewrap.Newf("radius bounds must be positive (min %v, max %v)", o.MinRadius, o.MaxRadius)
	case o.MinRadius > o.MaxRadius:
		return ewrap.Newf("min radius %v exceeds max radius %v", o.MinRadius, o.MaxRadius)
	case o.BlurRadius < 0:
		return ewrap.Newf("blur radius must not be negative, got %v", o.BlurRadius)
	case o.MaxAspect < 1:
		return ewrap.Newf("max aspect must be at least 1, got %v", o.MaxAspect)
	}
	return nil
}

// Hole is one detected bullet hole.
type Hole struct {
	// ID is "hole-N", numbered in scan order (top to bottom, left to right).
	ID string `json:"id"`

	// X and Y are the centroid of the hole's pixels.
	X float64 `json:"x"`
	Y float64 `json:"y"`

	// Radius is the radius of a disk with the same area.
	Radius float64 `json:"radius"`

	// Area is the number of pixels in the hole.
	Area int `json:"area"`

	Bounds Bounds `json:"bounds"`

	// Confidence is how disk-like the blob is (0.0 to 1.0), from its fill
	// ratio and aspect.
	Confidence float64 `json:"confidence"`
}

// HolesResult contains every hole found in an image.
type HolesResult struct {
	// Holes is sorted by confidence, highest first.
	Holes []Hole `json:"holes"`

	Count int `json:"count"`

	// Rejected counts dark blobs discarded by the size and shape filters.
	Rejected int `json:"rejected"`
}

// Records converts the holes into shot group source records.
func (r *HolesResult) Records() []shotgroup.Record {
	records := make([]shotgroup.Record, len(r.Holes))
	for i, h := range r.Holes {
		records[i] = shotgroup.Record{
			"id":   h.ID,
			"kind": shotgroup.KindCircle,
			"x":    h.X,
			"y":    h.Y,
			"r":    h.Radius,
		}
	}
	return records
}

// DetectHoles finds dark, roughly circular blobs in img.
//
// # Algorithm
//
//  1. Optional Gaussian blur to close up ragged hole edges
//  2. Grayscale and threshold: pixels darker than opts.Threshold are hole pixels
//  3. Flood fill groups 8-connected hole pixels into blobs
//  4. Each blob gives a centroid, an equivalent radius sqrt(area/pi), and a
//     bounding box
//  5. Blobs outside the radius range, too sparse, too elongated, or touching
//     the border are rejected
//  6. Holes whose centers fall within their mean radius of a stronger hole
//     are dropped as duplicates
//
// # Limitations
//
//   - Touching holes merge into one elongated blob and are usually rejected
//   - Holes inside a solid black bull are not visible to a dark-pixel threshold
func DetectHoles(img image.Image, opts Options) (*HolesResult, error) {
	if err := opts.Validate(); err != nil {
		return nil, err
	}

	src := img
	if opts.BlurRadius > 0 {
		src = blur.Gaussian(img, opts.BlurRadius)
	}
	bin := segment.Threshold(effect.Grayscale(src), opts.Threshold)

	bb := bin.Bounds()
	width, height := bb.Dx(), bb.Dy()
	dark := make([]bool, width*height)
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			dark[y*width+x] = bin.GrayAt(bb.Min.X+x, bb.Min.Y+y).Y == 0
		}
	}

	origin := img.Bounds().Min
	holes := make([]Hole, 0)
	rejected := 0

	for _, blob := range findBlobs(dark, width, height) {
		h, ok := measureBlob(blob, width, height, opts)
		if !ok {
			rejected++
			continue
		}
		h.ID = fmt.Sprintf("hole-%d", len(holes)+1)
		h.X += float64(origin.X)
		h.Y += float64(origin.Y)
		h.Bounds.X1 += origin.X
		h.Bounds.X2 += origin.X
		h.Bounds.Y1 += origin.Y
		h.Bounds.Y2 += origin.Y
		holes = append(holes, h)
	}

	sort.SliceStable(holes, func(i, j int) bool {
		return holes[i].Confidence > holes[j].Confidence
	})
	filtered := filterDuplicateHoles(holes)

	return &HolesResult{
		Holes:    filtered,
		Count:    len(filtered),
		Rejected: rejected + len(holes) - len(filtered),
	}, nil
}

type pixel struct{ x, y int }

// findBlobs groups 8-connected dark pixels. Blobs are returned in scan order
// of their first pixel.
func findBlobs(dark []bool, width, height int) [][]pixel {
	visited := make([]bool, len(dark))
	blobs := make([][]pixel, 0)

	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			i := y*width + x
			if dark[i] && !visited[i] {
				blobs = append(blobs, floodFill(dark, visited, x, y, width, height))
			}
		}
	}
	return blobs
}

// floodFill collects the blob containing (startX, startY) with an explicit
// stack.
func floodFill(dark, visited []bool, startX, startY, width, height int) []pixel {
	var blob []pixel
	stack := []pixel{{startX, startY}}

	for len(stack) > 0 {
		p := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		if p.x < 0 || p.x >= width || p.y < 0 || p.y >= height {
			continue
		}
		i := p.y*width + p.x
		if visited[i] || !dark[i] {
			continue
		}
		visited[i] = true
		blob = append(blob, p)

		for dy := -1; dy <= 1; dy++ {
			for dx := -1; dx <= 1; dx++ {
				if dx != 0 || dy != 0 {
					stack = append(stack, pixel{p.x + dx, p.y + dy})
				}
			}
		}
	}
	return blob
}

// measureBlob computes a Hole in image-relative coordinates and reports
// whether it passes the shape filters.
func measureBlob(blob []pixel, width, height int, opts Options) (Hole, bool) {
	minX, minY := width, height
	maxX, maxY := -1, -1
	var sumX, sumY float64
	for _, p := range blob {
		sumX += float64(p.x)
		sumY += float64(p.y)
		minX = min(minX, p.x)
		maxX = max(maxX, p.x)
		minY = min(minY, p.y)
		maxY = max(maxY, p.y)
	}

	area := len(blob)
	radius := math.Sqrt(float64(area) / math.Pi)
	if radius < opts.MinRadius || radius > opts.MaxRadius {
		return Hole{}, false
	}
	if !opts.KeepBorder && (minX == 0 || minY == 0 || maxX == width-1 || maxY == height-1) {
		return Hole{}, false
	}

	boxW := float64(maxX - minX + 1)
	boxH := float64(maxY - minY + 1)
	fill := float64(area) / (boxW * boxH)
	aspect := math.Max(boxW, boxH) / math.Min(boxW, boxH)
	if fill < opts.MinFill || aspect > opts.MaxAspect {
		return Hole{}, false
	}

	diskFill := math.Pi / 4
	fillScore := 1 - math.Abs(fill-diskFill)/diskFill
	confidence := math.Max(0, math.Min(1, fillScore/aspect))

	return Hole{
		X:          sumX / float64(area),
		Y:          sumY / float64(area),
		Radius:     radius,
		Area:       area,
		Bounds:     Bounds{X1: minX, Y1: minY, X2: maxX, Y2: maxY},
		Confidence: math.Round(confidence*1000) / 1000,
	}, true
}

// filterDuplicateHoles keeps the first of any holes whose centers are closer
// than the mean of their radii. Input must be sorted by confidence.
func filterDuplicateHoles(holes []Hole) []Hole {
	filtered := make([]Hole, 0, len(holes))
	for _, h := range holes {
		isDuplicate := false
		for _, f := range filtered {
			if math.Hypot(h.X-f.X, h.Y-f.Y) < (h.Radius+f.Radius)/2 {
				isDuplicate = true
				break
			}
		}
		if !isDuplicate {
			filtered = append(filtered, h)
		}
	}
	return filtered
}
