// Package sim runs the closed control loop and evaluates its step response.
package sim

import (
	"fmt"
	"math"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"example.com/fuzzy-hvac/base/zaplog"
	"example.com/fuzzy-hvac/core/control"
	"example.com/fuzzy-hvac/core/plant"
)

type Options struct {
	// RunID tags log records and the result; empty means a fresh UUID.
	RunID    string
	Setpoint float64
	Duration float64
	Dt       float64
	// Disturbances maps a simulation time to a temperature step. A
	// disturbance fires only if the accumulated time equals its key exactly.
	Disturbances map[float64]float64
	Log          *zap.Logger
}

func (o Options) Validate() error {
	for _, x := range []float64{o.Setpoint, o.Duration, o.Dt} {
		if math.IsNaN(x) || math.IsInf(x, 0) {
			return fmt.Errorf("%w: non-finite value", ErrInvalidParameters)
		}
	}
	if o.Dt <= 0 {
		return fmt.Errorf("%w: dt %v", ErrInvalidParameters, o.Dt)
	}
	if o.Duration < 0 {
		return fmt.Errorf("%w: duration %v", ErrInvalidParameters, o.Duration)
	}
	return nil
}

// Simulate drives p with c from time 0 while time <= opts.Duration, adding dt
// per step. Each step applies a scheduled disturbance first, then computes
// the error from the disturbed temperature, asks the controller for power
// and advances the plant. The controller and plant must not be shared with
// another run.
func Simulate(c control.Controller, p *plant.HVACSystem, opts Options) (*Result, error) {
	if c == nil {
		return nil, ErrUnrecognizedController
	}
	if p == nil {
		return nil, fmt.Errorf("%w: no plant", ErrInvalidParameters)
	}
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	id := opts.RunID
	if id == "" {
		id = uuid.NewString()
	}
	kind := c.Kind()
	log := zaplog.Or(opts.Log).With(zap.String("run", id), zap.String("controller", kind))
	mtrcs := runMetrics.Load()

	r := &Result{
		ID:         id,
		Controller: kind,
		Setpoint:   opts.Setpoint,
	}
	for t := 0.0; t <= opts.Duration; t += opts.Dt {
		if delta, ok := opts.Disturbances[t]; ok {
			p.AddDisturbance(delta)
			mtrcs.disturbances.WithLabelValues(kind).Inc()
			log.Info("disturbance applied",
				zap.Float64("time", t),
				zap.Float64("delta", delta))
		}

		temp := p.Temperature()
		if math.IsNaN(temp) || math.IsInf(temp, 0) {
			mtrcs.runErrors.WithLabelValues(kind).Inc()
			log.Info("simulation aborted", zap.Float64("time", t), zap.Float64("temperature", temp))
			return nil, fmt.Errorf("%w: plant temperature %v at time %v, dt %v may be too large for the plant",
				ErrInvalidParameters, temp, t, opts.Dt)
		}
		e := opts.Setpoint - temp
		power, err := c.Step(control.Sample{
			Time:        t,
			Temperature: temp,
			Error:       e,
			Dt:          opts.Dt,
		})
		if err != nil {
			mtrcs.runErrors.WithLabelValues(kind).Inc()
			log.Info("simulation aborted", zap.Float64("time", t), zap.Error(err))
			return nil, fmt.Errorf("step at time %v: %w", t, err)
		}
		p.Update(power, opts.Dt)
		r.append(t, temp, power, e)
		mtrcs.steps.WithLabelValues(kind).Inc()

		log.Debug("simulation step",
			zap.Float64("time", t),
			zap.Float64("temperature", temp),
			zap.Float64("error", e),
			zap.Float64("power", power),
		)
	}

	mtrcs.runs.WithLabelValues(kind).Inc()
	if n := r.Len(); n != 0 {
		mtrcs.lastTemp.WithLabelValues(kind).Set(r.Temperature[n-1])
		mtrcs.lastPower.WithLabelValues(kind).Set(r.Power[n-1])
	}
	if pm, err := Evaluate(r); err == nil {
		mtrcs.iae.WithLabelValues(kind).Set(pm.IAE)
	}
	log.Info("simulation completed", zap.Int("samples", r.Len()))
	return r, nil
}
