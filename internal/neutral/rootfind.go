package neutral

import (
	"errors"
	"math"
)

// ErrNoConvergence is returned when an iterative root-find exhausts its
// iteration budget. The matcher reacts by truncating the sweep for the
// column pair, never by failing the timestep.
var ErrNoConvergence = errors.New("neutral: root-find did not converge within iteration budget")

// RootMethod selects how the matcher inverts a cell's density polynomial.
type RootMethod int

const (
	// ClosedFormLinear inverts the secant through the bracket endpoints.
	// Exact for linear reconstructions.
	ClosedFormLinear RootMethod = iota

	// ClosedFormParabolic solves the quadratic of the PPM polynomial
	// directly. Exact for parabolic reconstructions.
	ClosedFormParabolic

	// Bisection halves the bracket until it is narrower than Tol.
	Bisection

	// Newton iterates Newton's method with bisection safeguarding.
	Newton
)

// String returns the config-file spelling of the method.
func (m RootMethod) String() string {
	switch m {
	case ClosedFormLinear:
		return "closed-form-linear"
	case ClosedFormParabolic:
		return "closed-form-parabolic"
	case Bisection:
		return "bisection"
	case Newton:
		return "newton"
	default:
		return "unknown"
	}
}

// RootFinder is a tagged-variant dispatch over the small fixed set of
// inversion strategies. Zero value is closed-form-linear.
type RootFinder struct {
	Method  RootMethod
	MaxIter int     // iteration cap for Bisection and Newton
	Tol     float64 // convergence tolerance in xi for Bisection and Newton
}

// DefaultRootFinder returns the stock configuration.
func DefaultRootFinder() RootFinder {
	return RootFinder{Method: ClosedFormParabolic, MaxIter: 50, Tol: 1e-10}
}

// segment is one cell's density polynomial in PPM form over xi in [0,1]:
// rho(xi) = top + xi*(delta + a6*(1-xi)).
type segment struct {
	top, delta, a6 float64
}

func (s segment) at(xi float64) float64 {
	return s.top + xi*(s.delta+s.a6*(1-xi))
}

func (s segment) deriv(xi float64) float64 {
	return s.delta + s.a6*(1-2*xi)
}

// Solve returns xi in [lo,hi] with rho(xi) = target. The bracket is assumed
// to contain the root: the matcher only calls Solve after establishing that
// rho(lo) <= target <= rho(hi) within a stable (monotone) cell.
func (rf RootFinder) Solve(seg segment, lo, hi, target float64) (float64, error) {
	if hi <= lo {
		return lo, nil
	}
	flo, fhi := seg.at(lo), seg.at(hi)
	if target <= flo {
		return lo, nil
	}
	if target >= fhi {
		return hi, nil
	}

	switch rf.Method {
	case ClosedFormLinear:
		return solveSecant(lo, hi, flo, fhi, target), nil
	case ClosedFormParabolic:
		return solveQuadratic(seg, lo, hi, flo, fhi, target), nil
	case Bisection:
		return rf.solveBisection(seg, lo, hi, target)
	case Newton:
		return rf.solveNewton(seg, lo, hi, target)
	default:
		return solveSecant(lo, hi, flo, fhi, target), nil
	}
}

func solveSecant(lo, hi, flo, fhi, target float64) float64 {
	df := fhi - flo
	if df == 0 {
		return lo
	}
	xi := lo + (hi-lo)*(target-flo)/df
	return clamp(xi, lo, hi)
}

// solveQuadratic solves top + (delta+a6)*xi - a6*xi^2 = target in closed
// form, picking the root inside the bracket. Falls back to the secant when
// the quadratic term vanishes or the discriminant is marginal.
func solveQuadratic(seg segment, lo, hi, flo, fhi, target float64) float64 {
	a := -seg.a6
	b := seg.delta + seg.a6
	c := seg.top - target
	if math.Abs(a) < 1e-14*(math.Abs(b)+1) {
		return solveSecant(lo, hi, flo, fhi, target)
	}
	disc := b*b - 4*a*c
	if disc < 0 {
		return solveSecant(lo, hi, flo, fhi, target)
	}
	sq := math.Sqrt(disc)
	// Stable quadratic formula: compute the larger-magnitude root first.
	q := -0.5 * (b + math.Copysign(sq, b))
	r1 := q / a
	r2 := c / q
	if r1 >= lo && r1 <= hi {
		return r1
	}
	if r2 >= lo && r2 <= hi {
		return r2
	}
	return solveSecant(lo, hi, flo, fhi, target)
}

func (rf RootFinder) solveBisection(seg segment, lo, hi, target float64) (float64, error) {
	maxIter, tol := rf.budget()
	a, b := lo, hi
	for i := 0; i < maxIter; i++ {
		mid := 0.5 * (a + b)
		if seg.at(mid) < target {
			a = mid
		} else {
			b = mid
		}
		if b-a <= tol {
			return 0.5 * (a + b), nil
		}
	}
	return 0.5 * (a + b), ErrNoConvergence
}

func (rf RootFinder) solveNewton(seg segment, lo, hi, target float64) (float64, error) {
	maxIter, tol := rf.budget()
	a, b := lo, hi
	xi := 0.5 * (a + b)
	for i := 0; i < maxIter; i++ {
		f := seg.at(xi) - target
		if f < 0 {
			a = xi
		} else {
			b = xi
		}
		d := seg.deriv(xi)
		var next float64
		if d != 0 {
			next = xi - f/d
		}
		if d == 0 || next <= a || next >= b {
			next = 0.5 * (a + b) // safeguard: bisect when Newton leaves the bracket
		}
		if math.Abs(next-xi) <= tol {
			return next, nil
		}
		xi = next
	}
	return xi, ErrNoConvergence
}

func (rf RootFinder) budget() (int, float64) {
	maxIter := rf.MaxIter
	if maxIter <= 0 {
		maxIter = 50
	}
	tol := rf.Tol
	if tol <= 0 {
		tol = 1e-10
	}
	return maxIter, tol
}

func clamp(x, lo, hi float64) float64 {
	if x < lo {
		return lo
	}
	if x > hi {
		return hi
	}
	return x
}
