package benchmark_test

import (
	"bytes"
	"errors"
	"testing"

	"go.uber.org/zap"

	"example.com/fuzzy-hvac/benchmark"
	"example.com/fuzzy-hvac/core/sim"
)

func TestRunControllerBenchmark(t *testing.T) {
	setup := sim.DefaultSetup()
	setup.Fuzzy.Resolution = 100
	for _, kind := range []string{"pid", "fuzzy"} {
		t.Run(kind, func(t *testing.T) {
			var buf bytes.Buffer
			hg, err := benchmark.RunControllerBenchmark(zap.NewNop(), &buf, setup, kind, 2, 50)
			if err != nil {
				t.Fatal(err)
			}
			if got := hg.TotalCount(); got != 100 {
				t.Errorf("TotalCount() = %d; want 100", got)
			}
			if !bytes.Contains(buf.Bytes(), []byte("Percentile")) {
				t.Errorf("no percentile table written")
			}
		})
	}
}

func TestRunControllerBenchmarkUnknownKind(t *testing.T) {
	_, err := benchmark.RunControllerBenchmark(nil, &bytes.Buffer{}, sim.DefaultSetup(), "mpc", 1, 1)
	if !errors.Is(err, sim.ErrUnrecognizedController) {
		t.Errorf("err = %v; want ErrUnrecognizedController", err)
	}
}
