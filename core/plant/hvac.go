// Package plant models an HVAC zone as a first-order thermal system.
package plant

import (
	"errors"
	"fmt"
	"math"
)

var ErrInvalidParams = errors.New("invalid plant parameters")

type Params struct {
	InitialTemp  float64 // °C
	AmbientTemp  float64 // °C
	TimeConstant float64 // tau, in simulation time units
	Gain         float64 // °C per time unit per % of power
}

func DefaultParams() Params {
	return Params{
		InitialTemp:  20.0,
		AmbientTemp:  30.0,
		TimeConstant: 5.0,
		Gain:         0.01,
	}
}

func (p Params) Validate() error {
	for _, x := range []float64{p.InitialTemp, p.AmbientTemp, p.TimeConstant, p.Gain} {
		if math.IsNaN(x) || math.IsInf(x, 0) {
			return fmt.Errorf("%w: non-finite value in %+v", ErrInvalidParams, p)
		}
	}
	if p.TimeConstant <= 0 {
		return fmt.Errorf("%w: time constant %v", ErrInvalidParams, p.TimeConstant)
	}
	return nil
}

// History holds one sample per update, starting with the initial state at
// time 0 and zero power.
type History struct {
	Temperature []float64
	Power       []float64
	Time        []float64
}

func newHistory(t0 float64) History {
	return History{
		Temperature: []float64{t0},
		Power:       []float64{0},
		Time:        []float64{0},
	}
}

// HVACSystem integrates
//
//	dT/dt = -(T - T_ambient)/tau + gain*power
//
// with explicit Euler steps.
type HVACSystem struct {
	temperature  float64
	ambientTemp  float64
	timeConstant float64
	gain         float64

	history History
}

func New(p Params) (*HVACSystem, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}
	return &HVACSystem{
		temperature:  p.InitialTemp,
		ambientTemp:  p.AmbientTemp,
		timeConstant: p.TimeConstant,
		gain:         p.Gain,
		history:      newHistory(p.InitialTemp),
	}, nil
}

func (s *HVACSystem) Temperature() float64 { return s.temperature }

func (s *HVACSystem) AmbientTemp() float64 { return s.ambientTemp }

// Derivative returns dT/dt at the current state for the given power.
func (s *HVACSystem) Derivative(power float64) float64 {
	return -(s.temperature-s.ambientTemp)/s.timeConstant + s.gain*power
}

// Update advances the plant by dt with constant power and returns the new
// temperature.
func (s *HVACSystem) Update(power, dt float64) float64 {
	s.temperature += s.Derivative(power) * dt
	last := s.history.Time[len(s.history.Time)-1]
	s.history.Temperature = append(s.history.Temperature, s.temperature)
	s.history.Power = append(s.history.Power, power)
	s.history.Time = append(s.history.Time, last+dt)
	return s.temperature
}

// AddDisturbance shifts the temperature by delta immediately.
func (s *HVACSystem) AddDisturbance(delta float64) {
	s.temperature += delta
}

// SetAmbientTemp affects subsequent updates only.
func (s *HVACSystem) SetAmbientTemp(t float64) {
	s.ambientTemp = t
}

// Reset sets the temperature to t0 and restarts the history.
func (s *HVACSystem) Reset(t0 float64) {
	s.temperature = t0
	s.history = newHistory(t0)
}

// History returns a copy of the recorded samples.
func (s *HVACSystem) History() History {
	return History{
		Temperature: append([]float64(nil), s.history.Temperature...),
		Power:       append([]float64(nil), s.history.Power...),
		Time:        append([]float64(nil), s.history.Time...),
	}
}
