package fuzzy

import (
	"fmt"

	"example.com/fuzzy-hvac/base/floats"
)

// DefaultResolution is the number of points used to discretize an output
// universe.
const DefaultResolution = 1000

// Variable is a linguistic variable: named terms over a bounded universe.
// Terms are added at setup time; the variable is read-only afterwards.
type Variable struct {
	name   string
	lo, hi float64
	names  []string
	terms  map[string]MembershipFunction
}

func NewVariable(name string, lo, hi float64) (*Variable, error) {
	if name == "" || !finite(lo, hi) || lo > hi {
		return nil, fmt.Errorf("%w: variable %q over [%v, %v]", ErrConfiguration, name, lo, hi)
	}
	return &Variable{
		name:  name,
		lo:    lo,
		hi:    hi,
		terms: make(map[string]MembershipFunction),
	}, nil
}

func (v *Variable) Name() string { return v.name }

func (v *Variable) Range() (lo, hi float64) { return v.lo, v.hi }

func (v *Variable) AddTerm(name string, mf MembershipFunction) error {
	if mf == nil {
		return fmt.Errorf("%w: term %q of %q has no membership function", ErrConfiguration, name, v.name)
	}
	if _, ok := v.terms[name]; ok {
		return fmt.Errorf("%w: %q in %q", ErrDuplicateTerm, name, v.name)
	}
	v.names = append(v.names, name)
	v.terms[name] = mf
	return nil
}

// Terms returns the term names in insertion order.
func (v *Variable) Terms() []string {
	return append([]string(nil), v.names...)
}

func (v *Variable) NumTerms() int { return len(v.names) }

func (v *Variable) Term(name string) (MembershipFunction, error) {
	mf, ok := v.terms[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q in %q", ErrUnknownTerm, name, v.name)
	}
	return mf, nil
}

// Fuzzify evaluates every term at x. Zero degrees are kept.
func (v *Variable) Fuzzify(x float64) map[string]float64 {
	m := make(map[string]float64, len(v.terms))
	for name, mf := range v.terms {
		m[name] = mf.Evaluate(x)
	}
	return m
}

// Universe returns n evenly spaced points over [lo, hi], both inclusive.
func (v *Variable) Universe(n int) []float64 {
	return floats.Linspace(v.lo, v.hi, n)
}
