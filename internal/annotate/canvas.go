package annotate

import (
	"bytes"
	"encoding/base64"
	"errors"
	"image"
	"image/color"
	"image/draw"
	"math"
	"strconv"
	"strings"

	"github.com/disintegration/imaging"
	"github.com/hyp3rd/ewrap"
	"github.com/lucasb-eyer/go-colorful"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"

	"github.com/ironsheep/target-tools-mcp/internal/precision"
	"github.com/ironsheep/target-tools-mcp/internal/shotgroup"
)

// ErrInvalidColor is returned for a colour string ParseColor cannot read.
var ErrInvalidColor = errors.New("invalid color")

// ParseColor reads "#RGB", "#RRGGBB" or "#RRGGBBAA".
func ParseColor(s string) (color.NRGBA, error) {
	hex := strings.TrimSpace(s)
	if !strings.HasPrefix(hex, "#") {
		hex = "#" + hex
	}

	alpha := uint8(255)
	if len(hex) == 9 {
		a, err := strconv.ParseUint(hex[7:], 16, 8)
		if err != nil {
			return color.NRGBA{}, ewrap.Wrap(ErrInvalidColor, s)
		}
		alpha = uint8(a)
		hex = hex[:7]
	}

	c, err := colorful.Hex(hex)
	if err != nil {
		return color.NRGBA{}, ewrap.Wrap(ErrInvalidColor, s)
	}
	r, g, b := c.RGB255()
	return color.NRGBA{R: r, G: g, B: b, A: alpha}, nil
}

// Canvas is a raster Sink drawing onto a private copy of a target image.
type Canvas struct {
	img    *image.NRGBA
	origin image.Point
	ink    *image.Uniform
	stroke int
	face   font.Face
}

// NewCanvas copies src and prepares to draw on it in the given style. The
// source image is never modified.
func NewCanvas(src image.Image, style Style) (*Canvas, error) {
	ink, err := ParseColor(style.Color)
	if err != nil {
		return nil, err
	}
	stroke := style.StrokeWidth
	if stroke < 1 {
		stroke = 1
	}
	return &Canvas{
		img:    imaging.Clone(src),
		origin: src.Bounds().Min,
		ink:    image.NewUniform(ink),
		stroke: stroke,
		face:   basicfont.Face7x13,
	}, nil
}

// Image returns the annotated image. Its bounds start at (0,0).
func (c *Canvas) Image() *image.NRGBA { return c.img }

// DrawCircle strokes the outline of circ.
func (c *Canvas) DrawCircle(circ precision.Circle) {
	steps := int(math.Ceil(2 * math.Pi * circ.R * 2))
	if steps < 16 {
		steps = 16
	}
	for i := 0; i < steps; i++ {
		a := 2 * math.Pi * float64(i) / float64(steps)
		c.stamp(circ.X+circ.R*math.Cos(a), circ.Y+circ.R*math.Sin(a))
	}
}

// DrawLine strokes a straight segment.
func (c *Canvas) DrawLine(from, to shotgroup.Point) {
	steps := int(math.Ceil(from.Dist(to) * 2))
	if steps < 1 {
		steps = 1
	}
	for i := 0; i <= steps; i++ {
		t := float64(i) / float64(steps)
		c.stamp(from.X+(to.X-from.X)*t, from.Y+(to.Y-from.Y)*t)
	}
}

// DrawText writes each line with its baseline lineHeight below the previous
// one. The built-in face is taller than small font sizes, so the spacing
// never drops below the face height.
func (c *Canvas) DrawText(at shotgroup.Point, lines []string, lineHeight float64) {
	if h := float64(c.face.Metrics().Height.Ceil()); lineHeight < h {
		lineHeight = h
	}
	d := &font.Drawer{Dst: c.img, Src: c.ink, Face: c.face}
	for i, line := range lines {
		x := int(math.Round(at.X)) - c.origin.X
		y := int(math.Round(at.Y+float64(i)*lineHeight)) - c.origin.Y
		d.Dot = fixed.P(x, y)
		d.DrawString(line)
	}
}

// stamp paints a stroke-sized square centered on (x, y).
func (c *Canvas) stamp(x, y float64) {
	px := int(math.Round(x)) - c.origin.X - (c.stroke-1)/2
	py := int(math.Round(y)) - c.origin.Y - (c.stroke-1)/2
	r := image.Rect(px, py, px+c.stroke, py+c.stroke).Intersect(c.img.Bounds())
	if r.Empty() {
		return
	}
	draw.Draw(c.img, r, c.ink, image.Point{}, draw.Over)
}

// EncodedImage is a PNG ready to hand back to an MCP client.
type EncodedImage struct {
	Width       int    `json:"width"`
	Height      int    `json:"height"`
	ImageBase64 string `json:"image_base64"`
	MimeType    string `json:"mime_type"`
}

// EncodePNG returns the annotated image as base64 PNG.
func (c *Canvas) EncodePNG() (*EncodedImage, error) {
	var buf bytes.Buffer
	if err := imaging.Encode(&buf, c.img, imaging.PNG); err != nil {
		return nil, ewrap.Wrap(err, "failed to encode annotated image")
	}
	b := c.img.Bounds()
	return &EncodedImage{
		Width:       b.Dx(),
		Height:      b.Dy(),
		ImageBase64: base64.StdEncoding.EncodeToString(buf.Bytes()),
		MimeType:    "image/png",
	}, nil
}

// Save writes the annotated image; the format follows the file extension.
func (c *Canvas) Save(path string) error {
	if err := imaging.Save(c.img, path); err != nil {
		return ewrap.Wrapf(err, "failed to save %s", path)
	}
	return nil
}
