package fuzzy

import (
	"fmt"
	"slices"
	"strings"
)

type Consequent struct {
	Variable string
	Term     string
}

// Rule is a weighted IF-AND-THEN rule. Antecedents map an input variable name
// to the term it must match; all antecedents are combined with min.
type Rule struct {
	Antecedents map[string]string
	Consequent  Consequent
	Weight      float64
}

// NewRule copies the antecedents and uses weight 1.
func NewRule(antecedents map[string]string, consequent Consequent) Rule {
	return NewWeightedRule(antecedents, consequent, 1.0)
}

func NewWeightedRule(antecedents map[string]string, consequent Consequent, weight float64) Rule {
	a := make(map[string]string, len(antecedents))
	for k, v := range antecedents {
		a[k] = v
	}
	return Rule{Antecedents: a, Consequent: consequent, Weight: weight}
}

// Validate reports a weight outside [0, 1].
func (r Rule) Validate() error {
	if !(r.Weight >= 0 && r.Weight <= 1) {
		return fmt.Errorf("%w: %v in rule %s", ErrInvalidWeight, r.Weight, r)
	}
	return nil
}

func (r Rule) antecedentVars() []string {
	vs := make([]string, 0, len(r.Antecedents))
	for v := range r.Antecedents {
		vs = append(vs, v)
	}
	slices.Sort(vs)
	return vs
}

func (r Rule) String() string {
	var b strings.Builder
	b.WriteString("IF ")
	for i, v := range r.antecedentVars() {
		if i != 0 {
			b.WriteString(" AND ")
		}
		fmt.Fprintf(&b, "%s is '%s'", v, r.Antecedents[v])
	}
	fmt.Fprintf(&b, " THEN %s is '%s'", r.Consequent.Variable, r.Consequent.Term)
	if r.Weight != 1.0 {
		fmt.Fprintf(&b, " (weight %g)", r.Weight)
	}
	return b.String()
}
