package fuzzy

import (
	"cmp"
	"fmt"
	"math"
	"slices"
	"strings"
)

type Implication int

const (
	Minimum Implication = iota
	Product
)

func (m Implication) String() string {
	switch m {
	case Minimum:
		return "minimum"
	case Product:
		return "product"
	default:
		return fmt.Sprintf("Implication(%d)", int(m))
	}
}

func ParseImplication(s string) (Implication, error) {
	switch strings.ToLower(s) {
	case "minimum", "min", "":
		return Minimum, nil
	case "product", "prod":
		return Product, nil
	}
	return Minimum, fmt.Errorf("%w: implication %q", ErrUnknownMethod, s)
}

func (m Implication) apply(shape, strength float64) float64 {
	if m == Product {
		return shape * strength
	}
	return math.Min(shape, strength)
}

// Engine is a Mamdani inference engine. Rules are added at setup time and
// the engine is read-only while a simulation runs.
type Engine struct {
	implication Implication
	rules       []Rule
}

func NewEngine(implication Implication) *Engine {
	return &Engine{implication: implication}
}

func (e *Engine) Implication() Implication { return e.implication }

func (e *Engine) AddRule(r Rule) {
	e.rules = append(e.rules, r)
}

func (e *Engine) AddRules(rs ...Rule) {
	e.rules = append(e.rules, rs...)
}

func (e *Engine) Rules() []Rule {
	return append([]Rule(nil), e.rules...)
}

// FiringStrength combines the antecedent degrees of r with min and scales the
// result by the rule weight. A rule without antecedents never fires.
func FiringStrength(r Rule, memberships map[string]map[string]float64) (float64, error) {
	if err := r.Validate(); err != nil {
		return 0, err
	}
	if len(r.Antecedents) == 0 {
		return 0, nil
	}
	strength := math.Inf(1)
	for _, v := range r.antecedentVars() {
		degrees, ok := memberships[v]
		if !ok {
			return 0, fmt.Errorf("%w: %q in rule %s", ErrUnknownVariable, v, r)
		}
		d, ok := degrees[r.Antecedents[v]]
		if !ok {
			return 0, fmt.Errorf("%w: %q of %q in rule %s", ErrUnknownTerm, r.Antecedents[v], v, r)
		}
		strength = math.Min(strength, d)
	}
	return strength * r.Weight, nil
}

// FiringStrengths returns the activation of every rule, in rule order.
func (e *Engine) FiringStrengths(memberships map[string]map[string]float64) ([]float64, error) {
	ss := make([]float64, len(e.rules))
	for i, r := range e.rules {
		s, err := FiringStrength(r, memberships)
		if err != nil {
			return nil, err
		}
		ss[i] = s
	}
	return ss, nil
}

// Infer evaluates all rules against the fuzzified inputs and aggregates the
// implied consequents over universe with a pointwise max. The returned curve
// has one degree per universe point.
func (e *Engine) Infer(memberships map[string]map[string]float64, output *Variable,
	universe []float64) ([]float64, error) {
	aggregated := make([]float64, len(universe))
	shapes := make(map[string][]float64)
	for _, r := range e.rules {
		if r.Consequent.Variable != output.Name() {
			return nil, fmt.Errorf("%w: %q is not the output variable %q",
				ErrUnknownVariable, r.Consequent.Variable, output.Name())
		}
		mf, err := output.Term(r.Consequent.Term)
		if err != nil {
			return nil, err
		}
		strength, err := FiringStrength(r, memberships)
		if err != nil {
			return nil, err
		}
		if !(strength > 0) {
			continue
		}
		shape, ok := shapes[r.Consequent.Term]
		if !ok {
			shape = make([]float64, len(universe))
			for i, x := range universe {
				shape[i] = mf.Evaluate(x)
			}
			shapes[r.Consequent.Term] = shape
		}
		for i, m := range shape {
			aggregated[i] = math.Max(aggregated[i], e.implication.apply(m, strength))
		}
	}
	return aggregated, nil
}

type Activation struct {
	Index    int
	Rule     Rule
	Strength float64
}

// Activations returns the rules firing above floor, strongest first.
func (e *Engine) Activations(memberships map[string]map[string]float64, floor float64) ([]Activation, error) {
	ss, err := e.FiringStrengths(memberships)
	if err != nil {
		return nil, err
	}
	var as []Activation
	for i, s := range ss {
		if s > floor {
			as = append(as, Activation{Index: i, Rule: e.rules[i], Strength: s})
		}
	}
	slices.SortStableFunc(as, func(a, b Activation) int {
		return cmp.Compare(b.Strength, a.Strength)
	})
	return as, nil
}
