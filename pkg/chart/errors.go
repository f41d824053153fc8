package chart

import "errors"

var (
	// ErrInvalidResolution is returned for a resolution that is not positive
	ErrInvalidResolution = errors.New("invalid resolution")

	// ErrResolutionTooHigh is returned when merging lanes would push a
	// measure past MaxResolution rows
	ErrResolutionTooHigh = errors.New("resolution too high")

	// ErrResolutionMismatch is returned when a note resolution does not
	// evenly divide the measure resolution
	ErrResolutionMismatch = errors.New("resolution mismatch")

	// ErrIndexOutOfRange is returned for measure, row, beat or lane indexes
	// outside their valid range
	ErrIndexOutOfRange = errors.New("index out of range")
)
