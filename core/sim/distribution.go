package sim

import (
	"io"
	"math"

	"github.com/HdrHistogram/hdrhistogram-go"
)

const (
	// errorScale converts °C to the integer unit recorded in the histogram.
	errorScale      = 1000
	maxRecordedErr  = 1_000_000
	errorSigFigures = 3
)

// Distribution is the distribution of absolute control error over a run,
// recorded in m°C.
type Distribution struct {
	h *hdrhistogram.Histogram
}

// ErrorDistribution records |error| of every sample of r. Errors above
// 1000 °C are recorded as 1000 °C.
func ErrorDistribution(r *Result) *Distribution {
	h := hdrhistogram.New(1, maxRecordedErr, errorSigFigures)
	for _, e := range r.Error {
		v := int64(math.Round(math.Abs(e) * errorScale))
		_ = h.RecordValue(min(v, maxRecordedErr))
	}
	return &Distribution{h: h}
}

func (d *Distribution) Count() int64 { return d.h.TotalCount() }

// Quantile returns the absolute error in °C below which q percent of the
// samples fall.
func (d *Distribution) Quantile(q float64) float64 {
	return float64(d.h.ValueAtQuantile(q)) / errorScale
}

func (d *Distribution) Max() float64 {
	return float64(d.h.Max()) / errorScale
}

// Print writes the percentile table in °C.
func (d *Distribution) Print(w io.Writer) error {
	_, err := d.h.PercentilesPrint(w, 1, errorScale)
	return err
}
