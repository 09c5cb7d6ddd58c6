package fuzzy

import (
	"fmt"
	"math"
)

// MembershipFunction maps a crisp value to a degree of membership in [0, 1].
// Implementations are total, deterministic and immutable.
type MembershipFunction interface {
	Evaluate(x float64) float64
}

type Triangular struct {
	a, b, c float64
}

type Trapezoidal struct {
	a, b, c, d float64
}

type Gaussian struct {
	mean, sigma float64
}

var (
	_ MembershipFunction = Triangular{}
	_ MembershipFunction = Trapezoidal{}
	_ MembershipFunction = Gaussian{}
)

func finite(xs ...float64) bool {
	for _, x := range xs {
		if math.IsNaN(x) || math.IsInf(x, 0) {
			return false
		}
	}
	return true
}

// NewTriangular returns the triangle rising on (a, b] and falling on (b, c).
// a == b or b == c is allowed and yields a vertical edge.
func NewTriangular(a, b, c float64) (Triangular, error) {
	if !finite(a, b, c) || a > b || b > c {
		return Triangular{}, fmt.Errorf("%w: triangular(%v, %v, %v)", ErrInvalidShape, a, b, c)
	}
	return Triangular{a: a, b: b, c: c}, nil
}

func (f Triangular) Evaluate(x float64) float64 {
	if x <= f.a || x >= f.c {
		return 0
	}
	if x <= f.b {
		if f.b == f.a {
			return 1
		}
		return (x - f.a) / (f.b - f.a)
	}
	if f.c == f.b {
		return 0
	}
	return (f.c - x) / (f.c - f.b)
}

func (f Triangular) String() string {
	return fmt.Sprintf("triangular(%g, %g, %g)", f.a, f.b, f.c)
}

// NewTrapezoidal returns the trapezoid rising on (a, b], flat on (b, c] and
// falling on (c, d).
func NewTrapezoidal(a, b, c, d float64) (Trapezoidal, error) {
	if !finite(a, b, c, d) || a > b || b > c || c > d {
		return Trapezoidal{}, fmt.Errorf("%w: trapezoidal(%v, %v, %v, %v)", ErrInvalidShape, a, b, c, d)
	}
	return Trapezoidal{a: a, b: b, c: c, d: d}, nil
}

func (f Trapezoidal) Evaluate(x float64) float64 {
	if x <= f.a || x >= f.d {
		return 0
	}
	if x <= f.b {
		if f.b == f.a {
			return 1
		}
		return (x - f.a) / (f.b - f.a)
	}
	if x <= f.c {
		return 1
	}
	if f.d == f.c {
		return 0
	}
	return (f.d - x) / (f.d - f.c)
}

func (f Trapezoidal) String() string {
	return fmt.Sprintf("trapezoidal(%g, %g, %g, %g)", f.a, f.b, f.c, f.d)
}

func NewGaussian(mean, sigma float64) (Gaussian, error) {
	if !finite(mean, sigma) || sigma <= 0 {
		return Gaussian{}, fmt.Errorf("%w: gaussian(%v, %v)", ErrInvalidShape, mean, sigma)
	}
	return Gaussian{mean: mean, sigma: sigma}, nil
}

func (f Gaussian) Evaluate(x float64) float64 {
	z := (x - f.mean) / f.sigma
	return math.Exp(-0.5 * z * z)
}

func (f Gaussian) String() string {
	return fmt.Sprintf("gaussian(%g, %g)", f.mean, f.sigma)
}
