package sim

import (
	"errors"
	"fmt"
	"sync"

	"go.uber.org/zap"

	"example.com/fuzzy-hvac/core/control"
	"example.com/fuzzy-hvac/core/fuzzy"
	"example.com/fuzzy-hvac/core/pid"
	"example.com/fuzzy-hvac/core/plant"
)

type PIDGains struct {
	Kp, Ki, Kd           float64
	OutputMin, OutputMax float64
}

func DefaultPIDGains() PIDGains {
	return PIDGains{Kp: 8.0, Ki: 0.3, Kd: 2.0, OutputMin: 0, OutputMax: 100}
}

type FuzzySettings struct {
	Method      fuzzy.Method
	Implication fuzzy.Implication
	Simplified  bool
	Resolution  int
}

// Setup is the immutable description of an experiment. Every run built from
// it gets its own controller and plant.
type Setup struct {
	Plant        plant.Params
	Setpoint     float64
	Duration     float64
	Dt           float64
	Disturbances map[float64]float64
	PID          PIDGains
	Fuzzy        FuzzySettings
}

func DefaultSetup() Setup {
	return Setup{
		Plant:    plant.DefaultParams(),
		Setpoint: 22.0,
		Duration: 100.0,
		Dt:       0.5,
		PID:      DefaultPIDGains(),
		Fuzzy: FuzzySettings{
			Method:      fuzzy.Centroid,
			Implication: fuzzy.Minimum,
			Resolution:  fuzzy.DefaultResolution,
		},
	}
}

func (s Setup) NewPID() *pid.Controller {
	g := s.PID
	return pid.New(g.Kp, g.Ki, g.Kd, g.OutputMin, g.OutputMax)
}

func (s Setup) NewFuzzy(method fuzzy.Method, log *zap.Logger) (*fuzzy.Controller, error) {
	var c *fuzzy.Controller
	var err error
	if s.Fuzzy.Simplified {
		c, err = fuzzy.NewSimplifiedHVACController(method, s.Fuzzy.Implication)
	} else {
		c, err = fuzzy.NewHVACController(method, s.Fuzzy.Implication)
	}
	if err != nil {
		return nil, err
	}
	c.Log = log
	if s.Fuzzy.Resolution > 0 {
		c.Resolution = s.Fuzzy.Resolution
	}
	return c, nil
}

func (s Setup) NewPlant() (*plant.HVACSystem, error) {
	return plant.New(s.Plant)
}

func (s Setup) Options(log *zap.Logger) Options {
	return Options{
		Setpoint:     s.Setpoint,
		Duration:     s.Duration,
		Dt:           s.Dt,
		Disturbances: s.Disturbances,
		Log:          log,
	}
}

// Run is one labelled simulation with its metrics.
type Run struct {
	Label       string      `json:"label"`
	Result      *Result     `json:"result"`
	Performance Performance `json:"performance"`
}

type job struct {
	label string
	build func() (control.Controller, error)
	opts  Options
}

func (s Setup) pidJob(label string, opts Options) job {
	return job{
		label: label,
		build: func() (control.Controller, error) { return s.NewPID(), nil },
		opts:  opts,
	}
}

func (s Setup) fuzzyJob(label string, method fuzzy.Method, opts Options) job {
	return job{
		label: label,
		build: func() (control.Controller, error) { return s.NewFuzzy(method, opts.Log) },
		opts:  opts,
	}
}

// RunOne simulates a single controller built by s.
func (s Setup) RunOne(kind string, log *zap.Logger) (Run, error) {
	var j job
	switch kind {
	case "pid":
		j = s.pidJob("PID", s.Options(log))
	case "fuzzy":
		j = s.fuzzyJob("Fuzzy", s.Fuzzy.Method, s.Options(log))
	default:
		return Run{}, fmt.Errorf("%w: %q", ErrUnrecognizedController, kind)
	}
	runs, err := s.runAll([]job{j})
	if err != nil {
		return Run{}, err
	}
	return runs[0], nil
}

func (s Setup) runAll(jobs []job) ([]Run, error) {
	runs := make([]Run, len(jobs))
	errs := make([]error, len(jobs))
	var wg sync.WaitGroup
	for i, j := range jobs {
		wg.Add(1)
		go func(i int, j job) {
			defer wg.Done()
			defer func() {
				if r := recover(); r != nil {
					errs[i] = fmt.Errorf("%s: run aborted: %v", j.label, r)
				}
			}()
			c, err := j.build()
			if err != nil {
				errs[i] = fmt.Errorf("%s: %w", j.label, err)
				return
			}
			p, err := s.NewPlant()
			if err != nil {
				errs[i] = fmt.Errorf("%s: %w", j.label, err)
				return
			}
			r, err := Simulate(c, p, j.opts)
			if err != nil {
				errs[i] = fmt.Errorf("%s: %w", j.label, err)
				return
			}
			pm, err := Evaluate(r)
			if err != nil {
				errs[i] = fmt.Errorf("%s: %w", j.label, err)
				return
			}
			runs[i] = Run{Label: j.label, Result: r, Performance: pm}
		}(i, j)
	}
	wg.Wait()
	if err := errors.Join(errs...); err != nil {
		return nil, err
	}
	return runs, nil
}

// CompareControllers runs the fuzzy and the PID controller on the same setup.
func (s Setup) CompareControllers(log *zap.Logger) ([]Run, error) {
	opts := s.Options(log)
	return s.runAll([]job{
		s.fuzzyJob("Fuzzy", s.Fuzzy.Method, opts),
		s.pidJob("PID", opts),
	})
}

// DisturbanceSchedule returns a +3 °C step at 30 % and a -4 °C step at 60 %
// of duration.
func DisturbanceSchedule(duration float64) map[float64]float64 {
	return map[float64]float64{
		0.3 * duration: 3.0,
		0.6 * duration: -4.0,
	}
}

// CompareDisturbances is CompareControllers with DisturbanceSchedule
// replacing the configured disturbances.
func (s Setup) CompareDisturbances(log *zap.Logger) ([]Run, error) {
	s.Disturbances = DisturbanceSchedule(s.Duration)
	return s.CompareControllers(log)
}

// CompareMethods runs the fuzzy controller once per defuzzification method.
func (s Setup) CompareMethods(log *zap.Logger) ([]Run, error) {
	opts := s.Options(log)
	var jobs []job
	for _, m := range fuzzy.Methods() {
		jobs = append(jobs, s.fuzzyJob(string(m), m, opts))
	}
	return s.runAll(jobs)
}
