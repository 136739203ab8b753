// Package precision computes shot-group precision statistics.
//
// Every function here is a pure computation over an immutable
// shotgroup.Group. Nothing is cached or shared, so groups can be analyzed
// concurrently.
//
// # Units
//
// Groups are measured in their native unit. A Converter maps native lengths
// to inches and is assumed linear; the target distance is given in yards.
// Angular sizes use the shooter's minute of angle:
//
//	MOA = inches / (1.047 * yards / 100)
//
// # Statistics
//
//   - Center: mean position of all shot centers
//   - MeanPrecisionRadius: mean distance of shots from the center; reported
//     doubled as the group size
//   - MeanHorizontalVertical: twice the mean absolute offset from the center
//     along each axis
//   - ExtremeSpread: largest center-to-center distance between two shots
//
// # Preconditions
//
// The primitives assume a group of at least MinShots samples. Analyze and
// CheckGroup enforce that, along with a positive distance and a non-nil
// converter, and report violations as ErrTooFewShots, ErrInvalidDistance and
// ErrNoConverter.
package precision
