// Package detection finds bullet holes in a raster image of a target.
//
// It is the shape source for raster targets: every accepted hole becomes a
// shotgroup.Record with its centroid and equivalent radius in pixels.
//
// # Algorithm Overview
//
// Detection treats holes as dark blobs on light paper:
//
//  1. Preprocessing: optional Gaussian blur, then grayscale (bild)
//  2. Segmentation: a luminance threshold splits hole pixels from paper
//  3. Blob extraction: 8-connected flood fill
//  4. Filtering: size, fill ratio, aspect ratio and border contact
//  5. Result formatting: holes sorted by confidence, ids in scan order
//
// # Coordinate System
//
// All coordinates use the standard image convention:
//   - Origin (0, 0) at top-left corner
//   - X increases rightward
//   - Y increases downward
//
// Hole centers are sub-pixel: the mean of the blob's pixel coordinates.
//
// # Confidence Scores
//
// Confidence (0.0 to 1.0) measures how disk-like a blob is. A disk covers
// pi/4 of its bounding box; the score falls off as the fill ratio departs
// from that and is divided by the bounding box aspect ratio.
//
// # Limitations
//
// Works best on clean scans with good contrast. Holes that touch merge into a
// single blob, and holes inside a solid black aiming mark need a different
// threshold (or manual selection) to be found.
package detection
