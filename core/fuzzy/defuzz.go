package fuzzy

import (
	"fmt"
	"math"
	"slices"
	"strings"
)

// Method selects a defuzzification strategy.
type Method string

const (
	Centroid          Method = "centroid"
	Bisector          Method = "bisector"
	MeanOfMaximum     Method = "mean_of_maximum"
	SmallestOfMaximum Method = "smallest_of_maximum"
	LargestOfMaximum  Method = "largest_of_maximum"
)

var methods = []Method{Centroid, Bisector, MeanOfMaximum, SmallestOfMaximum, LargestOfMaximum}

// Methods returns all supported strategies in a fixed order.
func Methods() []Method {
	return slices.Clone(methods)
}

func ParseMethod(s string) (Method, error) {
	m := Method(strings.ToLower(strings.TrimSpace(s)))
	switch m {
	case "":
		return Centroid, nil
	case "coa":
		return Centroid, nil
	case "boa":
		return Bisector, nil
	case "mom":
		return MeanOfMaximum, nil
	case "som":
		return SmallestOfMaximum, nil
	case "lom":
		return LargestOfMaximum, nil
	}
	if !slices.Contains(methods, m) {
		return "", fmt.Errorf("%w: defuzzification %q", ErrUnknownMethod, s)
	}
	return m, nil
}

func checkCurve(universe, membership []float64) {
	if len(universe) == 0 {
		panic("unexpected number of values")
	}
	if len(universe) != len(membership) {
		panic("mismatched number of values")
	}
}

// degree maps a membership value that cannot contribute to the output
// (NaN or infinite) to 0.
func degree(m float64) float64 {
	if math.IsNaN(m) || math.IsInf(m, 0) {
		return 0
	}
	return m
}

func universeMidpoint(universe []float64) float64 {
	return (universe[0] + universe[len(universe)-1]) / 2
}

// DefuzzifyCentroid returns sum(u*m)/sum(m), or the universe midpoint if the
// curve has no area.
func DefuzzifyCentroid(universe, membership []float64) float64 {
	checkCurve(universe, membership)
	var num, den float64
	for i, m := range membership {
		m = degree(m)
		num += universe[i] * m
		den += m
	}
	if den == 0 {
		return universeMidpoint(universe)
	}
	return num / den
}

// DefuzzifyBisector returns the first universe point at which the running sum
// of membership reaches half of the total. This is a discrete approximation
// of the area bisector.
func DefuzzifyBisector(universe, membership []float64) float64 {
	checkCurve(universe, membership)
	total := 0.0
	for _, m := range membership {
		total += degree(m)
	}
	if total == 0 {
		return universeMidpoint(universe)
	}
	half := total / 2
	sum := 0.0
	for i, m := range membership {
		sum += degree(m)
		if sum >= half {
			return universe[i]
		}
	}
	return universe[len(universe)-1]
}

// maxIndices returns the highest degree and the indices holding it. A curve
// without a positive finite degree has peak 0 and no indices.
func maxIndices(membership []float64) (peak float64, idx []int) {
	for _, m := range membership {
		peak = math.Max(peak, degree(m))
	}
	if peak == 0 {
		return 0, nil
	}
	for i, m := range membership {
		if m == peak {
			idx = append(idx, i)
		}
	}
	return peak, idx
}

func DefuzzifyMeanOfMaximum(universe, membership []float64) float64 {
	checkCurve(universe, membership)
	_, idx := maxIndices(membership)
	if len(idx) == 0 {
		return universeMidpoint(universe)
	}
	sum := 0.0
	for _, i := range idx {
		sum += universe[i]
	}
	return sum / float64(len(idx))
}

func DefuzzifySmallestOfMaximum(universe, membership []float64) float64 {
	checkCurve(universe, membership)
	_, idx := maxIndices(membership)
	if len(idx) == 0 {
		return universe[0]
	}
	return universe[idx[0]]
}

func DefuzzifyLargestOfMaximum(universe, membership []float64) float64 {
	checkCurve(universe, membership)
	_, idx := maxIndices(membership)
	if len(idx) == 0 {
		return universe[len(universe)-1]
	}
	return universe[idx[len(idx)-1]]
}

// Defuzzify reduces an aggregated curve to one crisp value. An all-zero
// curve yields the fallback of the chosen method, never an error or NaN.
// Empty or mismatched slices are a programming error and panic.
func Defuzzify(m Method, universe, membership []float64) (float64, error) {
	switch m {
	case Centroid:
		return DefuzzifyCentroid(universe, membership), nil
	case Bisector:
		return DefuzzifyBisector(universe, membership), nil
	case MeanOfMaximum:
		return DefuzzifyMeanOfMaximum(universe, membership), nil
	case SmallestOfMaximum:
		return DefuzzifySmallestOfMaximum(universe, membership), nil
	case LargestOfMaximum:
		return DefuzzifyLargestOfMaximum(universe, membership), nil
	}
	return 0, fmt.Errorf("%w: defuzzification %q", ErrUnknownMethod, string(m))
}

// CompareMethods defuzzifies the same curve with every method.
func CompareMethods(universe, membership []float64) map[Method]float64 {
	res := make(map[Method]float64, len(methods))
	for _, m := range methods {
		res[m], _ = Defuzzify(m, universe, membership)
	}
	return res
}
