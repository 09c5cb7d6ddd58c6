package sim

// Result holds the parallel time series of one closed-loop run. Temperature
// is the value the controller saw at each step, before the plant update.
type Result struct {
	ID          string    `json:"id"`
	Controller  string    `json:"controller"`
	Setpoint    float64   `json:"setpoint"`
	Time        []float64 `json:"time"`
	Temperature []float64 `json:"temperature"`
	Power       []float64 `json:"power"`
	Error       []float64 `json:"error"`
}

func (r *Result) Len() int { return len(r.Time) }

func (r *Result) append(t, temp, power, err float64) {
	r.Time = append(r.Time, t)
	r.Temperature = append(r.Temperature, temp)
	r.Power = append(r.Power, power)
	r.Error = append(r.Error, err)
}
