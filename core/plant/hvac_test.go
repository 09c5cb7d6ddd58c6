package plant_test

import (
	"errors"
	"math"
	"testing"

	"example.com/fuzzy-hvac/core/plant"
)

func newDefault(t *testing.T) *plant.HVACSystem {
	t.Helper()
	s, err := plant.New(plant.DefaultParams())
	if err != nil {
		t.Fatal(err)
	}
	return s
}

func TestResetZeroPowerStep(t *testing.T) {
	tests := []struct {
		t0, dt float64
	}{
		{t0: 20, dt: 0.5},
		{t0: 35, dt: 1},
		{t0: 30, dt: 0.1},
		{t0: -5, dt: 2},
	}
	for _, test := range tests {
		s := newDefault(t)
		s.Update(100, 0.5)
		s.AddDisturbance(4)
		s.Reset(test.t0)

		got := s.Update(0, test.dt)
		want := test.t0 + (-(test.t0-30.0)/5.0)*test.dt
		if got != want {
			t.Errorf("Reset(%v); Update(0, %v) = %v; want %v", test.t0, test.dt, got, want)
		}
		if math.Abs((got-test.t0)/test.dt-(-(test.t0-30.0)/5.0)) > 1e-12 {
			t.Errorf("dT/dt = %v; want %v", (got-test.t0)/test.dt, -(test.t0-30.0)/5.0)
		}
	}
}

func TestUpdate(t *testing.T) {
	s := newDefault(t)
	// dT/dt = -(20-30)/5 + 0.01*50 = 2.5
	if got := s.Update(50, 0.5); got != 21.25 {
		t.Errorf("Update(50, 0.5) = %v; want 21.25", got)
	}
	if got := s.Temperature(); got != 21.25 {
		t.Errorf("Temperature() = %v; want 21.25", got)
	}
}

func TestDisturbanceAndAmbient(t *testing.T) {
	s := newDefault(t)
	s.AddDisturbance(3)
	if got := s.Temperature(); got != 23 {
		t.Errorf("Temperature() after disturbance = %v; want 23", got)
	}
	s.SetAmbientTemp(23)
	if got := s.Update(0, 1); got != 23 {
		t.Errorf("Update at equilibrium = %v; want 23", got)
	}
}

func TestHistory(t *testing.T) {
	s := newDefault(t)
	s.Update(10, 0.5)
	s.Update(20, 0.5)
	h := s.History()
	if len(h.Time) != 3 || h.Time[0] != 0 || h.Time[2] != 1 {
		t.Errorf("History().Time = %v; want [0 0.5 1]", h.Time)
	}
	if h.Power[0] != 0 || h.Power[1] != 10 || h.Power[2] != 20 {
		t.Errorf("History().Power = %v; want [0 10 20]", h.Power)
	}
	if h.Temperature[0] != 20 {
		t.Errorf("History().Temperature[0] = %v; want 20", h.Temperature[0])
	}
	h.Time[0] = 42
	if s.History().Time[0] != 0 {
		t.Errorf("History() exposes internal state")
	}
	s.Reset(25)
	if h := s.History(); len(h.Time) != 1 || h.Temperature[0] != 25 {
		t.Errorf("History() after Reset = %+v", h)
	}
}

func TestInvalidParams(t *testing.T) {
	p := plant.DefaultParams()
	p.TimeConstant = 0
	if _, err := plant.New(p); !errors.Is(err, plant.ErrInvalidParams) {
		t.Errorf("New(tau = 0) err = %v; want ErrInvalidParams", err)
	}
}
