package imaging

import (
	"image"
	"math"
	"os"
	"strings"
	"sync"

	"github.com/disintegration/imaging"
	"github.com/hyp3rd/ewrap"
)

// ImageCache provides thread-safe caching of decoded target images.
//
// Images are keyed by the exact path string used to load them. Photos are
// rotated according to their EXIF orientation on load, so hole coordinates
// match what the shooter sees.
//
// Cached images remain in memory until Evict or Clear is called.
type ImageCache struct {
	mu     sync.RWMutex
	images map[string]image.Image
}

// NewImageCache creates an empty cache.
func NewImageCache() *ImageCache {
	return &ImageCache{
		images: make(map[string]image.Image),
	}
}

// Load returns the cached image for path, decoding it from disk on first use.
//
// Supported formats are those of disintegration/imaging: JPEG, PNG, GIF,
// TIFF and BMP.
func (c *ImageCache) Load(path string) (image.Image, error) {
	c.mu.RLock()
	if img, ok := c.images[path]; ok {
		c.mu.RUnlock()
		return img, nil
	}
	c.mu.RUnlock()

	img, err := imaging.Open(path, imaging.AutoOrientation(true))
	if err != nil {
		return nil, ewrap.Wrapf(err, "failed to open target image %s", path)
	}

	c.mu.Lock()
	c.images[path] = img
	c.mu.Unlock()

	return img, nil
}

// Len reports how many images are cached.
func (c *ImageCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.images)
}

// Clear removes all images from the cache.
func (c *ImageCache) Clear() {
	c.mu.Lock()
	c.images = make(map[string]image.Image)
	c.mu.Unlock()
}

// Evict removes one image. Unknown paths are ignored.
func (c *ImageCache) Evict(path string) {
	c.mu.Lock()
	delete(c.images, path)
	c.mu.Unlock()
}

// TargetInfo describes a target image and its physical size.
type TargetInfo struct {
	// Width and Height are in pixels.
	Width  int `json:"width"`
	Height int `json:"height"`

	// Format is the lower-case format name from the file extension, or
	// "unknown".
	Format string `json:"format"`

	// DPI is the resolution used for the inch dimensions.
	DPI float64 `json:"dpi"`

	WidthInches  float64 `json:"width_inches"`
	HeightInches float64 `json:"height_inches"`

	FileSizeBytes int64 `json:"file_size_bytes"`
}

// LoadTargetInfo loads the image at path through cache and reports its pixel
// and physical dimensions at dpi.
func LoadTargetInfo(cache *ImageCache, path string, dpi float64) (*TargetInfo, error) {
	if !(dpi > 0) {
		return nil, ewrap.Newf("dpi must be greater than zero, got %v", dpi)
	}

	img, err := cache.Load(path)
	if err != nil {
		return nil, err
	}

	stat, err := os.Stat(path)
	if err != nil {
		return nil, ewrap.Wrap(err, "failed to stat file")
	}

	format := "unknown"
	if f, err := imaging.FormatFromFilename(path); err == nil {
		format = strings.ToLower(f.String())
	}

	bounds := img.Bounds()
	return &TargetInfo{
		Width:         bounds.Dx(),
		Height:        bounds.Dy(),
		Format:        format,
		DPI:           dpi,
		WidthInches:   math.Round(float64(bounds.Dx())/dpi*100) / 100,
		HeightInches:  math.Round(float64(bounds.Dy())/dpi*100) / 100,
		FileSizeBytes: stat.Size(),
	}, nil
}
