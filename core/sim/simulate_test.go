package sim_test

import (
	"errors"
	"math"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"example.com/fuzzy-hvac/core/control"
	"example.com/fuzzy-hvac/core/pid"
	"example.com/fuzzy-hvac/core/plant"
	"example.com/fuzzy-hvac/core/sim"
)

type constController struct {
	power   float64
	samples []control.Sample
}

func (c *constController) Step(s control.Sample) (float64, error) {
	c.samples = append(c.samples, s)
	return c.power, nil
}

func (c *constController) Kind() string { return "const" }

type failingController struct{ after int }

func (c *failingController) Step(s control.Sample) (float64, error) {
	if c.after == 0 {
		return 0, errors.New("actuator offline")
	}
	c.after--
	return 0, nil
}

func (c *failingController) Kind() string { return "failing" }

func newPlant(t *testing.T, p plant.Params) *plant.HVACSystem {
	t.Helper()
	s, err := plant.New(p)
	require.NoError(t, err)
	return s
}

func TestSimulatePIDDefaultPlant(t *testing.T) {
	// Ambient is above the setpoint and the actuator can only heat, so the
	// zone drifts to ambient and never settles.
	c := pid.New(8, 0.3, 2, 0, 100)
	r, err := sim.Simulate(c, newPlant(t, plant.DefaultParams()), sim.Options{
		Setpoint: 22, Duration: 100, Dt: 0.5,
	})
	require.NoError(t, err)
	require.Equal(t, 201, r.Len())
	assert.Equal(t, "pid", r.Controller)
	assert.NotEmpty(t, r.ID)
	assert.Equal(t, 0.0, r.Time[0])
	assert.Equal(t, 100.0, r.Time[200])
	assert.Equal(t, 20.0, r.Temperature[0])
	assert.Equal(t, 2.0, r.Error[0])
	assert.InDelta(t, 30.0, r.Temperature[200], 1e-6)

	pm, err := sim.Evaluate(r)
	require.NoError(t, err)
	assert.Nil(t, pm.SettlingTime)
	require.NotNil(t, pm.RiseTime)
	assert.Equal(t, 0.0, *pm.RiseTime)
	assert.InDelta(t, 36.3636, pm.Overshoot, 1e-3)
	assert.InDelta(t, 8.0, pm.SteadyStateError, 1e-6)
	assert.InDelta(t, 755.0603, pm.IAE, 1e-3)
	assert.InDelta(t, 5882.7262, pm.ISE, 1e-3)
	assert.InDelta(t, 39778.8856, pm.ITAE, 1e-2)
}

func TestSimulatePIDSettles(t *testing.T) {
	c := pid.New(8, 0.3, 2, 0, 100)
	p := plant.DefaultParams()
	p.AmbientTemp = 18
	p.Gain = 0.05
	r, err := sim.Simulate(c, newPlant(t, p), sim.Options{
		Setpoint: 22, Duration: 100, Dt: 0.5,
	})
	require.NoError(t, err)

	pm, err := sim.Evaluate(r)
	require.NoError(t, err)
	require.NotNil(t, pm.SettlingTime)
	assert.Equal(t, 43.5, *pm.SettlingTime)
	assert.Equal(t, 0.0, pm.Overshoot)
	assert.InDelta(t, 0.1063, pm.SteadyStateError, 1e-3)
	assert.InDelta(t, 48.9915, pm.IAE, 1e-3)
	for _, temp := range r.Temperature[87:] {
		assert.InDelta(t, 22.0, temp, 0.44)
	}
}

func TestSimulateDisturbanceExactMatch(t *testing.T) {
	run := func(dist map[float64]float64) *sim.Result {
		r, err := sim.Simulate(&constController{power: 10}, newPlant(t, plant.DefaultParams()),
			sim.Options{Setpoint: 22, Duration: 10, Dt: 0.5, Disturbances: dist})
		require.NoError(t, err)
		return r
	}
	without := run(nil)
	with := run(map[float64]float64{3.0: 3.0})

	k := 6 // time 3.0
	require.Equal(t, 3.0, with.Time[k])
	for i := 0; i < k; i++ {
		assert.Equal(t, without.Temperature[i], with.Temperature[i])
	}
	assert.Equal(t, without.Temperature[k]+3.0, with.Temperature[k])
	// The error at the disturbance step already sees the disturbed temperature.
	assert.Equal(t, 22-with.Temperature[k], with.Error[k])
}

func TestSimulateDisturbanceFloatDrift(t *testing.T) {
	run := func(dist map[float64]float64) *sim.Result {
		r, err := sim.Simulate(&constController{power: 10}, newPlant(t, plant.DefaultParams()),
			sim.Options{Setpoint: 22, Duration: 1, Dt: 0.1, Disturbances: dist})
		require.NoError(t, err)
		return r
	}
	without := run(nil)

	// 0.1+0.1+0.1 accumulates to 0.30000000000000004, so 0.3 never matches.
	drift := run(map[float64]float64{0.3: 3.0})
	assert.Equal(t, without.Temperature, drift.Temperature)

	third := 0.0
	for range 3 {
		third += 0.1
	}
	exact := run(map[float64]float64{third: 3.0})
	assert.Equal(t, without.Temperature[3]+3.0, exact.Temperature[3])
}

func TestSimulateInclusiveHorizon(t *testing.T) {
	c := &constController{}
	r, err := sim.Simulate(c, newPlant(t, plant.DefaultParams()),
		sim.Options{Setpoint: 22, Duration: 1, Dt: 0.1})
	require.NoError(t, err)
	// The accumulated time after ten steps is 0.9999999999999999, so an
	// eleventh sample is still inside the horizon and 1.0999999999999999 is not.
	require.Equal(t, 11, r.Len())
	assert.InDelta(t, 1.0, r.Time[10], 1e-12)
	require.Len(t, c.samples, 11)
	assert.Equal(t, 0.1, c.samples[0].Dt)

	r, err = sim.Simulate(&constController{}, newPlant(t, plant.DefaultParams()),
		sim.Options{Setpoint: 22, Duration: 0, Dt: 0.5})
	require.NoError(t, err)
	assert.Equal(t, 1, r.Len())
}

func TestSimulateSampleContents(t *testing.T) {
	c := &constController{power: 50}
	_, err := sim.Simulate(c, newPlant(t, plant.DefaultParams()),
		sim.Options{Setpoint: 25, Duration: 0.5, Dt: 0.5})
	require.NoError(t, err)
	require.Len(t, c.samples, 2)
	assert.Equal(t, control.Sample{Time: 0, Temperature: 20, Error: 5, Dt: 0.5}, c.samples[0])
	assert.Equal(t, 0.5, c.samples[1].Time)
	assert.Equal(t, 21.25, c.samples[1].Temperature)
}

func TestSimulateErrors(t *testing.T) {
	p := newPlant(t, plant.DefaultParams())
	_, err := sim.Simulate(nil, p, sim.Options{Setpoint: 22, Duration: 1, Dt: 0.5})
	assert.ErrorIs(t, err, sim.ErrUnrecognizedController)

	_, err = sim.Simulate(&constController{}, p, sim.Options{Setpoint: 22, Duration: 1, Dt: 0})
	assert.ErrorIs(t, err, sim.ErrInvalidParameters)

	_, err = sim.Simulate(&constController{}, p, sim.Options{Setpoint: 22, Duration: -1, Dt: 0.5})
	assert.ErrorIs(t, err, sim.ErrInvalidParameters)

	before := testutil.ToFloat64(sim.Runs("failing"))
	r, err := sim.Simulate(&failingController{after: 3}, p, sim.Options{Setpoint: 22, Duration: 10, Dt: 0.5})
	assert.Error(t, err)
	assert.Nil(t, r)
	assert.Equal(t, before, testutil.ToFloat64(sim.Runs("failing")))
}

func TestSimulateDivergingPlant(t *testing.T) {
	// Forward Euler with dt >= 2*tau grows the error threefold per step
	// until the temperature overflows.
	c := pid.New(8, 0.3, 2, 0, 100)
	p := newPlant(t, plant.DefaultParams())
	before := testutil.ToFloat64(sim.Runs("pid"))
	r, err := sim.Simulate(c, p, sim.Options{Setpoint: 22, Duration: 20000, Dt: 20})
	assert.ErrorIs(t, err, sim.ErrInvalidParameters)
	assert.Nil(t, r)
	assert.Equal(t, before, testutil.ToFloat64(sim.Runs("pid")))

	p = newPlant(t, plant.DefaultParams())
	p.AddDisturbance(math.NaN())
	cc := &constController{power: 50}
	_, err = sim.Simulate(cc, p, sim.Options{Setpoint: 22, Duration: 10, Dt: 0.5})
	assert.ErrorIs(t, err, sim.ErrInvalidParameters)
	assert.Empty(t, cc.samples)
}

func TestSimulateMetrics(t *testing.T) {
	runs := testutil.ToFloat64(sim.Runs("const"))
	steps := testutil.ToFloat64(sim.Steps("const"))
	_, err := sim.Simulate(&constController{}, newPlant(t, plant.DefaultParams()),
		sim.Options{Setpoint: 22, Duration: 2, Dt: 0.5})
	require.NoError(t, err)
	assert.Equal(t, runs+1, testutil.ToFloat64(sim.Runs("const")))
	assert.Equal(t, steps+5, testutil.ToFloat64(sim.Steps("const")))
}
