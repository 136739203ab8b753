// Package annotate turns precision results into drawing commands and renders
// them.
//
// A Plan says exactly what to draw for a group: the average precision circle,
// a plus marking the group center, and the summary text anchored just below
// and to the right of the center. A Plan is applied to a Sink, which does the
// drawing:
//
//   - Recorder keeps the commands, for JSON output and tests
//   - Canvas rasterises them onto a copy of the target image
//
// Coordinates are in the target's native units, which for raster targets are
// pixels with (0,0) at the top-left corner.
package annotate
