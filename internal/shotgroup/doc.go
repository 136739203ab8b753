// Package shotgroup holds the marks (bullet holes) that make up a shot group.
//
// A Group is built once from raw source records and never changes afterwards.
// Records come from whatever selected the marks: detected holes in a scanned
// target, circles picked in a drawing, or JSON supplied by an MCP client.
//
// # Ingestion Policy
//
// Ingestion is best effort. Each record is validated on its own and either
// becomes a Sample or is reported as Dropped with a reason:
//   - a required field (x, y, r) is missing
//   - a field is not numeric, or is NaN/Inf
//   - the radius is zero or negative
//   - the record declares a kind other than "circle"
//
// Dropping a record never fails the batch. A Group may therefore hold fewer
// than three samples; rejecting such groups is the job of the analysis entry
// points in package precision.
//
// # Coordinates
//
// Coordinates and radii are kept in the source's native length unit (pixels
// for raster targets). Conversion to inches happens only in the analyzer.
package shotgroup
