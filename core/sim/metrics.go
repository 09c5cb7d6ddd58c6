package sim

import (
	"sync/atomic"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"example.com/fuzzy-hvac/base/metrics"
)

type simMetrics struct {
	runs         *prometheus.CounterVec
	runErrors    *prometheus.CounterVec
	steps        *prometheus.CounterVec
	disturbances *prometheus.CounterVec
	lastTemp     *prometheus.GaugeVec
	lastPower    *prometheus.GaugeVec
	iae          *prometheus.GaugeVec
}

var runMetrics atomic.Pointer[simMetrics]

func init() {
	runMetrics.Store(newSimMetrics())
}

func newSimMetrics() *simMetrics {
	labels := []string{metrics.ControllerLabel}
	return &simMetrics{
		runs: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: metrics.SimRunsN,
			Help: metrics.SimRunsH,
		}, labels),
		runErrors: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: metrics.SimRunErrorsN,
			Help: metrics.SimRunErrorsH,
		}, labels),
		steps: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: metrics.SimStepsN,
			Help: metrics.SimStepsH,
		}, labels),
		disturbances: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: metrics.SimDisturbancesN,
			Help: metrics.SimDisturbancesH,
		}, labels),
		lastTemp: promauto.NewGaugeVec(prometheus.GaugeOpts{
			Name: metrics.SimLastTempN,
			Help: metrics.SimLastTempH,
		}, labels),
		lastPower: promauto.NewGaugeVec(prometheus.GaugeOpts{
			Name: metrics.SimLastPowerN,
			Help: metrics.SimLastPowerH,
		}, labels),
		iae: promauto.NewGaugeVec(prometheus.GaugeOpts{
			Name: metrics.SimIAEN,
			Help: metrics.SimIAEH,
		}, labels),
	}
}

// Runs returns the counter of completed runs for a controller kind.
func Runs(kind string) prometheus.Counter {
	return runMetrics.Load().runs.WithLabelValues(kind)
}

// Steps returns the counter of executed steps for a controller kind.
func Steps(kind string) prometheus.Counter {
	return runMetrics.Load().steps.WithLabelValues(kind)
}
