package floats

import (
	"math"
	"slices"
)

func midpoint(x, y float64) float64 {
	return x + (y-x)/2.0
}

// Linspace returns n evenly spaced values over [lo, hi], both ends included.
func Linspace(lo, hi float64, n int) []float64 {
	if n < 0 {
		panic("unexpected number of values")
	}
	fs := make([]float64, n)
	switch n {
	case 0:
		return fs
	case 1:
		fs[0] = lo
		return fs
	}
	step := (hi - lo) / float64(n-1)
	for i := range fs {
		fs[i] = lo + float64(i)*step
	}
	fs[n-1] = hi
	return fs
}

func Clamp(x, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, x))
}

func Mean(fs []float64) float64 {
	n := len(fs)
	if n == 0 {
		panic("unexpected number of values")
	}
	sum := 0.0
	for _, f := range fs {
		sum += f
	}
	return sum / float64(n)
}

func Max(fs []float64) float64 {
	if len(fs) == 0 {
		panic("unexpected number of values")
	}
	return slices.Max(fs)
}

// Trapz integrates ys over xs with the trapezoidal rule.
func Trapz(ys, xs []float64) float64 {
	if len(ys) != len(xs) {
		panic("mismatched number of values")
	}
	area := 0.0
	for i := 1; i < len(xs); i++ {
		area += (xs[i] - xs[i-1]) * (ys[i] + ys[i-1]) / 2.0
	}
	return area
}

// Median sorts a copy of fs; the argument is left untouched.
func Median(fs []float64) float64 {
	n := len(fs)
	if n == 0 {
		panic("unexpected number of values")
	}
	fs = slices.Clone(fs)
	slices.Sort(fs)
	i := n / 2
	if n%2 != 0 {
		return fs[i]
	}
	return midpoint(fs[i-1], fs[i])
}
