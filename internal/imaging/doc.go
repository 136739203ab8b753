// Package imaging loads target images and takes measurements on them.
//
// All pixel coordinates are 0-based with (0,0) at the top-left corner, X
// increasing rightward and Y increasing downward. For regions, (x1,y1) is
// inclusive and (x2,y2) exclusive.
//
// # Thread Safety
//
// ImageCache is safe for concurrent use. Cached images are shared between
// callers and must be treated as read-only; annotation works on a copy.
//
// # Physical Units
//
// Pixel lengths become inches through a precision.Converter, normally built
// by the units package from the image resolution. MeasureDistance also
// reports the angular size in MOA at a given range.
//
// # Memory
//
// Images stay cached until Evict or Clear is called. Long-running servers
// that see many targets should evict images they are done with.
package imaging
