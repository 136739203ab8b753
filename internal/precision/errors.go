package precision

import "errors"

var (
	// ErrTooFewShots is returned when a group has fewer than MinShots samples.
	ErrTooFewShots = errors.New("select more than 2 shots")

	// ErrInvalidDistance is returned when the target distance is not a positive number.
	ErrInvalidDistance = errors.New("distance must be greater than zero")

	// ErrNoConverter is returned when no unit converter is supplied.
	ErrNoConverter = errors.New("unit converter is required")
)
