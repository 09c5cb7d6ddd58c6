package sim

import "errors"

var (
	// ErrUnrecognizedController is returned when the loop is handed a
	// controller it cannot step.
	ErrUnrecognizedController = errors.New("unrecognized controller type")
	ErrInvalidParameters      = errors.New("invalid simulation parameters")
)
