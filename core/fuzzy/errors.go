package fuzzy

import (
	"errors"
	"fmt"
)

var (
	// ErrConfiguration is the root of every rule base, variable or term
	// lookup failure; all other errors in this package wrap it.
	ErrConfiguration = errors.New("fuzzy configuration error")

	ErrUnknownVariable = fmt.Errorf("%w: unknown variable", ErrConfiguration)
	ErrUnknownTerm     = fmt.Errorf("%w: unknown term", ErrConfiguration)
	ErrDuplicateTerm   = fmt.Errorf("%w: duplicate term", ErrConfiguration)
	ErrNoTerms         = fmt.Errorf("%w: variable has no terms", ErrConfiguration)
	ErrInvalidShape    = fmt.Errorf("%w: invalid membership function parameters", ErrConfiguration)
	ErrUnknownMethod   = fmt.Errorf("%w: unknown method", ErrConfiguration)
	ErrNonFiniteInput  = fmt.Errorf("%w: non-finite input", ErrConfiguration)
	ErrInvalidWeight   = fmt.Errorf("%w: rule weight outside [0, 1]", ErrConfiguration)
)
