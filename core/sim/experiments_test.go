package sim_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"example.com/fuzzy-hvac/core/fuzzy"
	"example.com/fuzzy-hvac/core/sim"
)

func TestCompareControllers(t *testing.T) {
	s := sim.DefaultSetup()
	s.Fuzzy.Resolution = 200
	runs, err := s.CompareControllers(zap.NewNop())
	require.NoError(t, err)
	require.Len(t, runs, 2)
	assert.Equal(t, "Fuzzy", runs[0].Label)
	assert.Equal(t, "fuzzy", runs[0].Result.Controller)
	assert.Equal(t, "PID", runs[1].Label)
	assert.Equal(t, "pid", runs[1].Result.Controller)
	assert.NotEqual(t, runs[0].Result.ID, runs[1].Result.ID)
	for _, r := range runs {
		assert.Equal(t, 201, r.Result.Len())
		for _, p := range r.Result.Power {
			assert.GreaterOrEqual(t, p, 0.0)
			assert.LessOrEqual(t, p, 100.0)
		}
	}
	assert.InDelta(t, 755.0603, runs[1].Performance.IAE, 1e-3)
}

func TestCompareControllersIsRepeatable(t *testing.T) {
	s := sim.DefaultSetup()
	s.Duration = 20
	s.Fuzzy.Resolution = 100
	a, err := s.CompareControllers(nil)
	require.NoError(t, err)
	b, err := s.CompareControllers(nil)
	require.NoError(t, err)
	for i := range a {
		assert.Equal(t, a[i].Result.Temperature, b[i].Result.Temperature)
		assert.Equal(t, a[i].Result.Power, b[i].Result.Power)
	}
}

func TestCompareDisturbances(t *testing.T) {
	s := sim.DefaultSetup()
	s.Fuzzy.Resolution = 100
	plain, err := s.CompareControllers(nil)
	require.NoError(t, err)
	disturbed, err := s.CompareDisturbances(nil)
	require.NoError(t, err)
	assert.Nil(t, s.Disturbances)

	k := 60 // time 30
	for i := range plain {
		p, d := plain[i].Result, disturbed[i].Result
		require.Equal(t, 30.0, d.Time[k])
		assert.Equal(t, p.Temperature[k-1], d.Temperature[k-1])
		assert.Equal(t, p.Temperature[k]+3.0, d.Temperature[k])
	}
}

func TestCompareMethods(t *testing.T) {
	s := sim.DefaultSetup()
	s.Duration = 10
	s.Fuzzy.Resolution = 100
	runs, err := s.CompareMethods(nil)
	require.NoError(t, err)
	require.Len(t, runs, len(fuzzy.Methods()))
	for i, m := range fuzzy.Methods() {
		assert.Equal(t, string(m), runs[i].Label)
		assert.Equal(t, 21, runs[i].Result.Len())
	}
}

func TestRunOne(t *testing.T) {
	s := sim.DefaultSetup()
	s.Duration = 5
	run, err := s.RunOne("pid", nil)
	require.NoError(t, err)
	assert.Equal(t, 11, run.Result.Len())

	_, err = s.RunOne("mpc", nil)
	assert.ErrorIs(t, err, sim.ErrUnrecognizedController)

	s.Plant.TimeConstant = 0
	_, err = s.RunOne("fuzzy", nil)
	assert.Error(t, err)
}

func TestRunOneDivergingPlant(t *testing.T) {
	for _, m := range fuzzy.Methods() {
		t.Run(string(m), func(t *testing.T) {
			s := sim.DefaultSetup()
			s.Dt = 20
			s.Duration = 20000
			s.Fuzzy.Method = m
			s.Fuzzy.Resolution = 100
			_, err := s.RunOne("fuzzy", nil)
			assert.ErrorIs(t, err, sim.ErrInvalidParameters)
		})
	}
}
