package benchmark

import (
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/HdrHistogram/hdrhistogram-go"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"go.uber.org/zap"

	"example.com/fuzzy-hvac/base/metrics"
	"example.com/fuzzy-hvac/base/zaplog"
	"example.com/fuzzy-hvac/core/control"
	"example.com/fuzzy-hvac/core/sim"
)

const (
	// Step latencies are recorded in nanoseconds and printed in microseconds.
	maxStepLatency = int64(10 * time.Second)
	latencyScale   = 1000.0
)

var benchmarkSteps = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: metrics.BenchmarkStepsN,
	Help: metrics.BenchmarkStepsH,
}, []string{metrics.ControllerLabel})

func newController(setup sim.Setup, kind string) (control.Controller, error) {
	switch kind {
	case metrics.ControllerLabelPID:
		return setup.NewPID(), nil
	case metrics.ControllerLabelFLC:
		c, err := setup.NewFuzzy(setup.Fuzzy.Method, nil)
		if err != nil {
			return nil, err
		}
		// Keep memory flat over long runs.
		c.History = nil
		return c, nil
	}
	return nil, fmt.Errorf("%w: %q", sim.ErrUnrecognizedController, kind)
}

// RunControllerBenchmark steps numGoroutine independent closed loops of the
// given controller kind numStep times each and writes one latency percentile
// table per goroutine to w. It returns the merged histogram.
func RunControllerBenchmark(log *zap.Logger, w io.Writer, setup sim.Setup, kind string,
	numGoroutine, numStep int) (*hdrhistogram.Histogram, error) {
	log = zaplog.Or(log)
	if _, err := newController(setup, kind); err != nil {
		return nil, err
	}
	if _, err := setup.NewPlant(); err != nil {
		return nil, err
	}
	if !(setup.Dt > 0) {
		return nil, fmt.Errorf("%w: dt %v", sim.ErrInvalidParameters, setup.Dt)
	}
	steps := benchmarkSteps.WithLabelValues(kind)

	var mu sync.Mutex
	merged := hdrhistogram.New(1, maxStepLatency, 3)
	errs := make([]error, numGoroutine)
	sg := make(chan struct{})
	var wg sync.WaitGroup
	wg.Add(numGoroutine)
	for i := 0; i < numGoroutine; i++ {
		go func(i int) {
			defer wg.Done()
			hg := hdrhistogram.New(1, maxStepLatency, 3)
			c, _ := newController(setup, kind)
			p, _ := setup.NewPlant()

			<-sg
			t := 0.0
			for j := numStep; j > 0; j-- {
				temp := p.Temperature()
				s := control.Sample{
					Time:        t,
					Temperature: temp,
					Error:       setup.Setpoint - temp,
					Dt:          setup.Dt,
				}
				t0 := time.Now()
				power, err := c.Step(s)
				d := time.Since(t0)
				if err != nil {
					errs[i] = err
					return
				}
				p.Update(power, setup.Dt)
				t += setup.Dt
				if err := hg.RecordValue(min(d.Nanoseconds(), maxStepLatency)); err != nil {
					log.Info("failed to record histogram value", zap.Error(err))
				}
				steps.Inc()
			}
			mu.Lock()
			defer mu.Unlock()
			merged.Merge(hg)
			_, _ = hg.PercentilesPrint(w, 1, latencyScale)
		}(i)
	}
	t0 := time.Now()
	close(sg)
	wg.Wait()
	log.Info("benchmark completed",
		zap.String("controller", kind),
		zap.Int("goroutines", numGoroutine),
		zap.Int("steps", numStep),
		zap.Duration("elapsed", time.Since(t0)))
	for _, err := range errs {
		if err != nil {
			return nil, err
		}
	}
	return merged, nil
}
