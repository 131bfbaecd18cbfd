package ir

import "errors"

var (
	// ErrInvalidArgument marks a parameter outside its accepted domain:
	// an unsupported transform axis, a non-positive gamma, a grid shape that
	// does not match the tile list.
	ErrInvalidArgument = errors.New("invalid argument")

	// ErrShapeMismatch marks an image or channel whose block grid cannot be
	// computed under the requested truncation policy.
	ErrShapeMismatch = errors.New("shape mismatch")
)
