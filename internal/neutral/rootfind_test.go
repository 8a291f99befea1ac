package neutral

import (
	"errors"
	"math"
	"testing"
)

func TestSolveLinearSegment(t *testing.T) {
	// rho(xi) = 1020 + 4*xi; root of target 1021 is xi = 0.25 exactly.
	seg := segment{top: 1020, delta: 4, a6: 0}

	for _, method := range []RootMethod{ClosedFormLinear, ClosedFormParabolic, Bisection, Newton} {
		t.Run(method.String(), func(t *testing.T) {
			rf := RootFinder{Method: method, MaxIter: 100, Tol: 1e-12}
			xi, err := rf.Solve(seg, 0, 1, 1021)
			if err != nil {
				t.Fatalf("Solve returned error: %v", err)
			}
			if math.Abs(xi-0.25) > 1e-9 {
				t.Errorf("Solve = %.12f, want 0.25", xi)
			}
		})
	}
}

func TestSolveParabolicSegment(t *testing.T) {
	// A genuinely curved monotone segment: top=1020, bot=1024, mean=1021.5
	// gives a6 = 6*1021.5 - 3*2044 = -3, so rho(xi) = 1020 + xi*(4 - 3*(1-xi)).
	seg := segment{top: 1020, delta: 4, a6: -3}
	if seg.at(0) != 1020 || seg.at(1) != 1024 {
		t.Fatalf("segment endpoints wrong: %f, %f", seg.at(0), seg.at(1))
	}

	target := 1022.0
	for _, method := range []RootMethod{ClosedFormLinear, ClosedFormParabolic, Bisection, Newton} {
		t.Run(method.String(), func(t *testing.T) {
			rf := RootFinder{Method: method, MaxIter: 200, Tol: 1e-12}
			xi, err := rf.Solve(seg, 0, 1, target)
			if err != nil {
				t.Fatalf("Solve returned error: %v", err)
			}
			got := seg.at(xi)
			// The secant is only an approximation on a curved segment; the
			// other methods must invert to tight tolerance.
			tol := 1e-8
			if method == ClosedFormLinear {
				tol = 1.0
			}
			if math.Abs(got-target) > tol {
				t.Errorf("rho(Solve()) = %.12f, want %.12f (xi=%f)", got, target, xi)
			}
		})
	}
}

func TestSolveClampsTargetOutsideBracket(t *testing.T) {
	seg := segment{top: 1020, delta: 4, a6: 0}
	rf := DefaultRootFinder()

	if xi, _ := rf.Solve(seg, 0.2, 0.8, 1000); xi != 0.2 {
		t.Errorf("target below bracket: xi = %f, want 0.2", xi)
	}
	if xi, _ := rf.Solve(seg, 0.2, 0.8, 2000); xi != 0.8 {
		t.Errorf("target above bracket: xi = %f, want 0.8", xi)
	}
	if xi, _ := rf.Solve(seg, 0.5, 0.5, 1021); xi != 0.5 {
		t.Errorf("degenerate bracket: xi = %f, want 0.5", xi)
	}
}

func TestSolveFlatSegment(t *testing.T) {
	// Constant reconstructions produce flat segments; any in-range target
	// must resolve without dividing by zero.
	seg := segment{top: 1021, delta: 0, a6: 0}
	rf := RootFinder{Method: ClosedFormLinear}

	xi, err := rf.Solve(seg, 0, 1, 1021)
	if err != nil {
		t.Fatalf("Solve returned error: %v", err)
	}
	if xi < 0 || xi > 1 {
		t.Errorf("xi = %f out of [0,1]", xi)
	}
}

func TestSolveExhaustedBudget(t *testing.T) {
	seg := segment{top: 1020, delta: 4, a6: -3}
	rf := RootFinder{Method: Bisection, MaxIter: 2, Tol: 1e-15}

	_, err := rf.Solve(seg, 0, 1, 1022)
	if !errors.Is(err, ErrNoConvergence) {
		t.Errorf("Solve with 2-iteration budget: err = %v, want ErrNoConvergence", err)
	}
}

func TestSolveZeroValueDefaults(t *testing.T) {
	// The zero RootFinder is usable: closed-form-linear with stock budget.
	var rf RootFinder
	if rf.Method != ClosedFormLinear {
		t.Fatalf("zero Method = %v, want ClosedFormLinear", rf.Method)
	}
	seg := segment{top: 1020, delta: 4, a6: 0}
	xi, err := rf.Solve(seg, 0, 1, 1022)
	if err != nil {
		t.Fatalf("Solve returned error: %v", err)
	}
	if math.Abs(xi-0.5) > 1e-12 {
		t.Errorf("Solve = %f, want 0.5", xi)
	}
}

func TestRootMethodString(t *testing.T) {
	tests := []struct {
		method RootMethod
		want   string
	}{
		{ClosedFormLinear, "closed-form-linear"},
		{ClosedFormParabolic, "closed-form-parabolic"},
		{Bisection, "bisection"},
		{Newton, "newton"},
		{RootMethod(99), "unknown"},
	}
	for _, tt := range tests {
		if got := tt.method.String(); got != tt.want {
			t.Errorf("String() = %q, want %q", got, tt.want)
		}
	}
}
