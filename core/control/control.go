// Package control defines the step interface shared by the closed-loop
// controllers.
package control

// Sample is what a controller sees at one simulation step. Each controller
// reads the fields it needs: PID uses Error and Dt, the fuzzy controller uses
// Temperature and Error.
type Sample struct {
	Time        float64
	Temperature float64
	Error       float64
	Dt          float64
}

type Controller interface {
	// Step returns the control effort to apply to the plant for this sample.
	Step(s Sample) (float64, error)
	// Kind names the controller family, e.g. "pid" or "fuzzy".
	Kind() string
}
