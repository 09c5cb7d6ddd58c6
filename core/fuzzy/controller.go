package fuzzy

import (
	"fmt"
	"maps"
	"math"
	"slices"

	"go.uber.org/zap"

	"example.com/fuzzy-hvac/base/zaplog"
	"example.com/fuzzy-hvac/core/control"
)

// Controller runs fuzzification, inference and defuzzification for one
// control step.
type Controller struct {
	// Log receives one Debug record per step; nil means the process logger.
	Log *zap.Logger
	// History receives one entry per step; nil disables recording.
	History *History
	// Resolution is the number of points of the output universe.
	Resolution int

	inputs map[string]*Variable
	output *Variable
	engine *Engine
	method Method
}

var _ control.Controller = (*Controller)(nil)

func NewController(inputs []*Variable, output *Variable, engine *Engine, method Method) (*Controller, error) {
	if output == nil || engine == nil {
		return nil, fmt.Errorf("%w: controller needs an output variable and an engine", ErrConfiguration)
	}
	if !slices.Contains(methods, method) {
		return nil, fmt.Errorf("%w: defuzzification %q", ErrUnknownMethod, string(method))
	}
	c := &Controller{
		History:    NewHistory(),
		Resolution: DefaultResolution,
		inputs:     make(map[string]*Variable, len(inputs)),
		output:     output,
		engine:     engine,
		method:     method,
	}
	for _, v := range inputs {
		if _, ok := c.inputs[v.Name()]; ok {
			return nil, fmt.Errorf("%w: input %q registered twice", ErrConfiguration, v.Name())
		}
		c.inputs[v.Name()] = v
	}
	return c, nil
}

func (c *Controller) Method() Method { return c.method }

func (c *Controller) Engine() *Engine { return c.engine }

func (c *Controller) Output() *Variable { return c.output }

// Input returns the registered input variable called name.
func (c *Controller) Input(name string) (*Variable, error) {
	v, ok := c.inputs[name]
	if !ok {
		return nil, fmt.Errorf("%w: input %q", ErrUnknownVariable, name)
	}
	return v, nil
}

// InputNames returns the input variable names, sorted.
func (c *Controller) InputNames() []string {
	return slices.Sorted(maps.Keys(c.inputs))
}

func (c *Controller) resolution() int {
	if c.Resolution <= 0 {
		return DefaultResolution
	}
	return c.Resolution
}

// Fuzzify maps every crisp input to its term degrees.
func (c *Controller) Fuzzify(crisp map[string]float64) (map[string]map[string]float64, error) {
	ms := make(map[string]map[string]float64, len(crisp))
	for name, x := range crisp {
		v, ok := c.inputs[name]
		if !ok {
			return nil, fmt.Errorf("%w: input %q", ErrUnknownVariable, name)
		}
		if v.NumTerms() == 0 {
			return nil, fmt.Errorf("%w: %q", ErrNoTerms, name)
		}
		if math.IsNaN(x) || math.IsInf(x, 0) {
			return nil, fmt.Errorf("%w: %s = %v", ErrNonFiniteInput, name, x)
		}
		ms[name] = v.Fuzzify(x)
	}
	return ms, nil
}

func (c *Controller) infer(crisp map[string]float64) (ms map[string]map[string]float64,
	universe, curve []float64, err error) {
	ms, err = c.Fuzzify(crisp)
	if err != nil {
		return nil, nil, nil, err
	}
	if c.output.NumTerms() == 0 {
		return nil, nil, nil, fmt.Errorf("%w: %q", ErrNoTerms, c.output.Name())
	}
	universe = c.output.Universe(c.resolution())
	curve, err = c.engine.Infer(ms, c.output, universe)
	if err != nil {
		return nil, nil, nil, err
	}
	return ms, universe, curve, nil
}

// Aggregate returns the output universe and the aggregated membership curve
// for the crisp inputs. Nothing is recorded.
func (c *Controller) Aggregate(crisp map[string]float64) (universe, membership []float64, err error) {
	_, universe, membership, err = c.infer(crisp)
	return universe, membership, err
}

// Compute returns the crisp output for the given inputs and appends the step
// to the history.
func (c *Controller) Compute(crisp map[string]float64) (float64, error) {
	ms, universe, curve, err := c.infer(crisp)
	if err != nil {
		return 0, err
	}
	y, err := Defuzzify(c.method, universe, curve)
	if err != nil {
		return 0, err
	}
	if c.History != nil {
		c.History.Append(Entry{
			Inputs:      maps.Clone(crisp),
			Output:      y,
			Memberships: ms,
		})
	}
	zaplog.Or(c.Log).Debug("fuzzy inference",
		zap.Any("inputs", crisp),
		zap.String("method", string(c.method)),
		zap.Float64("output", y),
	)
	return y, nil
}

// Step feeds the sample's temperature and error to the Temperature and Error
// inputs.
func (c *Controller) Step(s control.Sample) (float64, error) {
	in := make(map[string]float64, 2)
	if _, ok := c.inputs[TemperatureVar]; ok {
		in[TemperatureVar] = s.Temperature
	}
	if _, ok := c.inputs[ErrorVar]; ok {
		in[ErrorVar] = s.Error
	}
	return c.Compute(in)
}

func (c *Controller) Kind() string { return "fuzzy" }
