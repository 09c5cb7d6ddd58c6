package sim

import (
	"fmt"
	"math"

	"example.com/fuzzy-hvac/base/floats"
)

const (
	RiseFraction       = 0.9
	SettlingBand       = 0.02
	SteadyStateSamples = 10
)

// Performance summarizes the step response of one run. RiseTime and
// SettlingTime are nil if the run never rose or never settled.
type Performance struct {
	RiseTime         *float64 `json:"rise_time"`
	Overshoot        float64  `json:"overshoot"`
	SettlingTime     *float64 `json:"settling_time"`
	SteadyStateError float64  `json:"steady_state_error"`
	IAE              float64  `json:"iae"`
	ISE              float64  `json:"ise"`
	ITAE             float64  `json:"itae"`
}

// Evaluate computes the performance metrics of r.
//
// Rise time is the first time the temperature reaches 90 % of the setpoint.
// Settling time is the first time the temperature is within ±2 % of the
// setpoint, provided it stays there until the end of the run; a run that
// enters the band and later leaves it for good has not settled. The steady
// state error is the mean absolute error over the last ten samples. The
// integral criteria use the trapezoidal rule over the time series.
func Evaluate(r *Result) (Performance, error) {
	n := r.Len()
	if n == 0 || len(r.Temperature) != n || len(r.Error) != n {
		return Performance{}, fmt.Errorf("%w: %d samples", ErrInvalidParameters, n)
	}
	var pm Performance

	for i, temp := range r.Temperature {
		if temp >= RiseFraction*r.Setpoint {
			t := r.Time[i]
			pm.RiseTime = &t
			break
		}
	}

	if r.Setpoint != 0 {
		pm.Overshoot = math.Max(0, (floats.Max(r.Temperature)-r.Setpoint)/r.Setpoint*100)
	}

	pm.SettlingTime = settlingTime(r)

	tail := r.Error[max(0, n-SteadyStateSamples):]
	abs := make([]float64, len(tail))
	for i, e := range tail {
		abs[i] = math.Abs(e)
	}
	pm.SteadyStateError = floats.Mean(abs)

	absErr := make([]float64, n)
	sqErr := make([]float64, n)
	timeAbsErr := make([]float64, n)
	for i, e := range r.Error {
		absErr[i] = math.Abs(e)
		sqErr[i] = e * e
		timeAbsErr[i] = r.Time[i] * math.Abs(e)
	}
	pm.IAE = floats.Trapz(absErr, r.Time)
	pm.ISE = floats.Trapz(sqErr, r.Time)
	pm.ITAE = floats.Trapz(timeAbsErr, r.Time)
	return pm, nil
}

func settlingTime(r *Result) *float64 {
	tol := math.Abs(SettlingBand * r.Setpoint)
	first := -1
	for i, temp := range r.Temperature {
		if math.Abs(temp-r.Setpoint) <= tol {
			first = i
			break
		}
	}
	if first < 0 {
		return nil
	}
	for _, temp := range r.Temperature[first:] {
		if math.Abs(temp-r.Setpoint) > tol {
			return nil
		}
	}
	t := r.Time[first]
	return &t
}
