// Package config loads experiment configurations.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io/fs"
	"math"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"github.com/pelletier/go-toml/v2"

	"example.com/fuzzy-hvac/core/fuzzy"
	"example.com/fuzzy-hvac/core/plant"
	"example.com/fuzzy-hvac/core/sim"
)

var ErrInvalid = errors.New("invalid configuration")

const (
	RuleBaseFull       = "full"
	RuleBaseSimplified = "simplified"
)

// EnvPrefix prefixes every environment override.
const EnvPrefix = "HVACSIM_"

type PlantConfig struct {
	InitialTemp  float64 `toml:"initial_temp"`
	AmbientTemp  float64 `toml:"ambient_temp"`
	TimeConstant float64 `toml:"time_constant"`
	Gain         float64 `toml:"gain"`
}

type Disturbance struct {
	Time  float64 `toml:"time"`
	Delta float64 `toml:"delta"`
}

type SimulationConfig struct {
	Setpoint     float64       `toml:"setpoint"`
	Duration     float64       `toml:"duration"`
	Dt           float64       `toml:"dt"`
	Disturbances []Disturbance `toml:"disturbance,omitempty"`
}

type PIDConfig struct {
	Kp        float64 `toml:"kp"`
	Ki        float64 `toml:"ki"`
	Kd        float64 `toml:"kd"`
	OutputMin float64 `toml:"output_min"`
	OutputMax float64 `toml:"output_max"`
}

type FuzzyConfig struct {
	Method      string `toml:"method"`
	Implication string `toml:"implication"`
	RuleBase    string `toml:"rule_base"`
	Resolution  int    `toml:"resolution"`
}

type Experiment struct {
	Plant      PlantConfig      `toml:"plant"`
	Simulation SimulationConfig `toml:"simulation"`
	PID        PIDConfig        `toml:"pid"`
	Fuzzy      FuzzyConfig      `toml:"fuzzy"`
}

func Default() Experiment {
	return Experiment{
		Plant: PlantConfig{
			InitialTemp:  20.0,
			AmbientTemp:  30.0,
			TimeConstant: 5.0,
			Gain:         0.01,
		},
		Simulation: SimulationConfig{
			Setpoint: 22.0,
			Duration: 100.0,
			Dt:       0.5,
		},
		PID: PIDConfig{
			Kp:        8.0,
			Ki:        0.3,
			Kd:        2.0,
			OutputMin: 0,
			OutputMax: 100,
		},
		Fuzzy: FuzzyConfig{
			Method:      string(fuzzy.Centroid),
			Implication: fuzzy.Minimum.String(),
			RuleBase:    RuleBaseFull,
			Resolution:  fuzzy.DefaultResolution,
		},
	}
}

// Load decodes the TOML file at path on top of Default. Unknown keys are
// rejected. An empty path yields Default.
func Load(path string) (Experiment, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return Experiment{}, err
	}
	return Decode(raw)
}

func Decode(raw []byte) (Experiment, error) {
	cfg := Default()
	err := toml.NewDecoder(bytes.NewReader(raw)).DisallowUnknownFields().Decode(&cfg)
	if err != nil {
		return Experiment{}, err
	}
	return cfg, nil
}

// LoadDotEnv loads environment variables from the given files, ".env" by
// default. Missing files are ignored; variables already set win.
func LoadDotEnv(files ...string) error {
	if len(files) == 0 {
		files = []string{".env"}
	}
	for _, f := range files {
		err := godotenv.Load(f)
		if err != nil && !errors.Is(err, fs.ErrNotExist) {
			return err
		}
	}
	return nil
}

// ApplyEnv overrides fields from HVACSIM_* variables looked up with getenv.
func (e *Experiment) ApplyEnv(getenv func(string) string) error {
	floats := []struct {
		key string
		dst *float64
	}{
		{"SETPOINT", &e.Simulation.Setpoint},
		{"DURATION", &e.Simulation.Duration},
		{"DT", &e.Simulation.Dt},
		{"AMBIENT_TEMP", &e.Plant.AmbientTemp},
		{"INITIAL_TEMP", &e.Plant.InitialTemp},
		{"KP", &e.PID.Kp},
		{"KI", &e.PID.Ki},
		{"KD", &e.PID.Kd},
	}
	for _, f := range floats {
		s := getenv(EnvPrefix + f.key)
		if s == "" {
			continue
		}
		v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
		if err != nil {
			return fmt.Errorf("%w: %s%s: %v", ErrInvalid, EnvPrefix, f.key, err)
		}
		*f.dst = v
	}
	if s := getenv(EnvPrefix + "METHOD"); s != "" {
		e.Fuzzy.Method = s
	}
	if s := getenv(EnvPrefix + "IMPLICATION"); s != "" {
		e.Fuzzy.Implication = s
	}
	if s := getenv(EnvPrefix + "RULE_BASE"); s != "" {
		e.Fuzzy.RuleBase = s
	}
	return nil
}

func finite(xs ...float64) bool {
	for _, x := range xs {
		if math.IsNaN(x) || math.IsInf(x, 0) {
			return false
		}
	}
	return true
}

func (e Experiment) Validate() error {
	s := e.Simulation
	if !finite(s.Setpoint, s.Duration, s.Dt) {
		return fmt.Errorf("%w: non-finite simulation parameter", ErrInvalid)
	}
	if s.Dt <= 0 {
		return fmt.Errorf("%w: dt must be positive, got %v", ErrInvalid, s.Dt)
	}
	if s.Duration < 0 {
		return fmt.Errorf("%w: duration must not be negative, got %v", ErrInvalid, s.Duration)
	}
	for _, d := range s.Disturbances {
		if !finite(d.Time, d.Delta) {
			return fmt.Errorf("%w: non-finite disturbance %+v", ErrInvalid, d)
		}
	}
	if err := e.plantParams().Validate(); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalid, err)
	}
	if !finite(e.PID.Kp, e.PID.Ki, e.PID.Kd, e.PID.OutputMin, e.PID.OutputMax) {
		return fmt.Errorf("%w: non-finite pid parameter", ErrInvalid)
	}
	if e.PID.OutputMin > e.PID.OutputMax {
		return fmt.Errorf("%w: output_min %v > output_max %v", ErrInvalid, e.PID.OutputMin, e.PID.OutputMax)
	}
	if _, err := fuzzy.ParseMethod(e.Fuzzy.Method); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalid, err)
	}
	if _, err := fuzzy.ParseImplication(e.Fuzzy.Implication); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalid, err)
	}
	switch e.Fuzzy.RuleBase {
	case "", RuleBaseFull, RuleBaseSimplified:
	default:
		return fmt.Errorf("%w: rule_base %q", ErrInvalid, e.Fuzzy.RuleBase)
	}
	if e.Fuzzy.Resolution < 0 || e.Fuzzy.Resolution == 1 {
		return fmt.Errorf("%w: resolution %d", ErrInvalid, e.Fuzzy.Resolution)
	}
	return nil
}

func (e Experiment) plantParams() plant.Params {
	return plant.Params{
		InitialTemp:  e.Plant.InitialTemp,
		AmbientTemp:  e.Plant.AmbientTemp,
		TimeConstant: e.Plant.TimeConstant,
		Gain:         e.Plant.Gain,
	}
}

// Setup validates e and converts it into a simulation setup.
func (e Experiment) Setup() (sim.Setup, error) {
	if err := e.Validate(); err != nil {
		return sim.Setup{}, err
	}
	method, _ := fuzzy.ParseMethod(e.Fuzzy.Method)
	implication, _ := fuzzy.ParseImplication(e.Fuzzy.Implication)
	var dist map[float64]float64
	if len(e.Simulation.Disturbances) != 0 {
		dist = make(map[float64]float64, len(e.Simulation.Disturbances))
		for _, d := range e.Simulation.Disturbances {
			dist[d.Time] += d.Delta
		}
	}
	return sim.Setup{
		Plant:        e.plantParams(),
		Setpoint:     e.Simulation.Setpoint,
		Duration:     e.Simulation.Duration,
		Dt:           e.Simulation.Dt,
		Disturbances: dist,
		PID: sim.PIDGains{
			Kp:        e.PID.Kp,
			Ki:        e.PID.Ki,
			Kd:        e.PID.Kd,
			OutputMin: e.PID.OutputMin,
			OutputMax: e.PID.OutputMax,
		},
		Fuzzy: sim.FuzzySettings{
			Method:      method,
			Implication: implication,
			Simplified:  e.Fuzzy.RuleBase == RuleBaseSimplified,
			Resolution:  e.Fuzzy.Resolution,
		},
	}, nil
}
