// Package pid implements a discrete PID controller with anti-windup.
package pid

import (
	"fmt"
	"math"

	"example.com/fuzzy-hvac/base/floats"
	"example.com/fuzzy-hvac/core/control"
)

// UnboundedIntegral is the integral bound used when Ki is zero. The integral
// term does not contribute in that case, so the bound only keeps the
// accumulator finite.
const UnboundedIntegral = 1e6

// History records every error seen and every output produced.
type History struct {
	Errors  []float64
	Outputs []float64
}

func (h *History) append(err, out float64) {
	h.Errors = append(h.Errors, err)
	h.Outputs = append(h.Outputs, out)
}

func (h *History) Len() int { return len(h.Outputs) }

func (h *History) Clear() {
	h.Errors = nil
	h.Outputs = nil
}

type Controller struct {
	Kp, Ki, Kd           float64
	OutputMin, OutputMax float64

	// History receives one entry per Compute; nil disables recording.
	History *History

	integral, prevErr float64
}

var _ control.Controller = (*Controller)(nil)

func New(kp, ki, kd, outputMin, outputMax float64) *Controller {
	if outputMin > outputMax {
		panic("invalid output limits")
	}
	return &Controller{
		Kp:        kp,
		Ki:        ki,
		Kd:        kd,
		OutputMin: outputMin,
		OutputMax: outputMax,
		History:   &History{},
	}
}

// IntegralBound returns the anti-windup limit of the integral accumulator.
func (c *Controller) IntegralBound() float64 {
	if c.Ki != 0 {
		return math.Abs(c.OutputMax / c.Ki)
	}
	return UnboundedIntegral
}

func (c *Controller) Integral() float64 { return c.integral }

// Compute returns the clamped control output for err over the interval dt.
// The previous error starts at 0, so the derivative term is active from the
// first call on.
func (c *Controller) Compute(err, dt float64) float64 {
	if dt <= 0 {
		panic("non-positive time step")
	}
	p := c.Kp * err

	bound := c.IntegralBound()
	c.integral = floats.Clamp(c.integral+err*dt, -bound, bound)
	i := c.Ki * c.integral

	d := c.Kd * (err - c.prevErr) / dt

	out := floats.Clamp(p+i+d, c.OutputMin, c.OutputMax)
	c.prevErr = err
	if c.History != nil {
		c.History.append(err, out)
	}
	return out
}

func (c *Controller) Step(s control.Sample) (float64, error) {
	if !(s.Dt > 0) {
		return 0, fmt.Errorf("pid: invalid time step %v", s.Dt)
	}
	return c.Compute(s.Error, s.Dt), nil
}

func (c *Controller) Kind() string { return "pid" }

// Reset zeroes the integral and the previous error and clears the history.
func (c *Controller) Reset() {
	c.integral = 0
	c.prevErr = 0
	if c.History != nil {
		c.History.Clear()
	}
}
