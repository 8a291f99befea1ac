package column

import (
	"math"
	"testing"
)

func TestInterfaceDepths(t *testing.T) {
	c := &Column{Thickness: []float64{10, 20, 30}}

	z := c.InterfaceDepths()
	want := []float64{0, 10, 30, 60}
	if len(z) != len(want) {
		t.Fatalf("InterfaceDepths() len = %d, want %d", len(z), len(want))
	}
	for i := range want {
		if z[i] != want[i] {
			t.Errorf("z[%d] = %f, want %f", i, z[i], want[i])
		}
	}
	if c.Depth() != 60 {
		t.Errorf("Depth() = %f, want 60", c.Depth())
	}
}

func TestCloneIsDeep(t *testing.T) {
	c := &Column{
		Thickness: []float64{10, 10},
		Temp:      []float64{18, 12},
		Salt:      []float64{35, 35.2},
		Tracers:   [][]float64{{1, 0}},
	}

	clone := c.Clone()
	clone.Temp[0] = 99
	clone.Tracers[0][0] = 99

	if c.Temp[0] != 18 {
		t.Errorf("mutating clone changed original Temp: %f", c.Temp[0])
	}
	if c.Tracers[0][0] != 1 {
		t.Errorf("mutating clone changed original Tracers: %f", c.Tracers[0][0])
	}
}

func TestReconstructPreservesMeans(t *testing.T) {
	mean := []float64{1020, 1022, 1023, 1025, 1026.5}

	for _, order := range []Order{Constant, Linear, Parabolic} {
		t.Run(order.String(), func(t *testing.T) {
			r := Reconstruct(mean, order)
			for k := range mean {
				got := r.MeanOver(k, 0, 1)
				if math.Abs(got-mean[k]) > 1e-12 {
					t.Errorf("cell %d: MeanOver(0,1) = %.15f, want %.15f", k, got, mean[k])
				}
			}
		})
	}
}

func TestReconstructBounds(t *testing.T) {
	// Edge values must never leave the range of the cell averages, for any
	// order and any profile shape, including ones with interior extrema.
	profiles := [][]float64{
		{1020, 1022, 1023, 1025},
		{1025, 1023, 1022, 1020},        // inverted
		{1020, 1025, 1021, 1026, 1022},  // oscillating
		{1020, 1020, 1020},              // uniform
		{1020, 1020.001, 1024, 1024.01}, // near-steps
	}

	for _, mean := range profiles {
		for _, order := range []Order{Constant, Linear, Parabolic} {
			r := Reconstruct(mean, order)
			lo, hi := Bounds(mean)
			rlo, rhi := r.Range()
			if rlo < lo-1e-12 || rhi > hi+1e-12 {
				t.Errorf("order %s, profile %v: reconstruction range [%f,%f] leaves data range [%f,%f]",
					order, mean, rlo, rhi, lo, hi)
			}
		}
	}
}

func TestReconstructExtremaDegradeToConstant(t *testing.T) {
	// The middle cell is a local maximum: no monotone profile fits, so both
	// linear and parabolic must reconstruct it as a constant.
	mean := []float64{1020, 1025, 1021}

	for _, order := range []Order{Linear, Parabolic} {
		r := Reconstruct(mean, order)
		if r.Top[1] != mean[1] || r.Bot[1] != mean[1] {
			t.Errorf("order %s: extremum cell Top=%f Bot=%f, want both %f", order, r.Top[1], r.Bot[1], mean[1])
		}
	}
}

func TestReconstructEndCellsConstantForLinear(t *testing.T) {
	mean := []float64{1020, 1022, 1025}
	r := Reconstruct(mean, Linear)

	if r.Top[0] != 1020 || r.Bot[0] != 1020 {
		t.Errorf("surface cell not constant: Top=%f Bot=%f", r.Top[0], r.Bot[0])
	}
	if r.Top[2] != 1025 || r.Bot[2] != 1025 {
		t.Errorf("bottom cell not constant: Top=%f Bot=%f", r.Top[2], r.Bot[2])
	}
	// Interior cell carries the MC slope 2.5.
	if math.Abs(r.Top[1]-1020.75) > 1e-12 || math.Abs(r.Bot[1]-1023.25) > 1e-12 {
		t.Errorf("interior cell edges = [%f,%f], want [1020.75,1023.25]", r.Top[1], r.Bot[1])
	}
}

func TestAtMatchesEdges(t *testing.T) {
	mean := []float64{1020, 1022, 1023.5, 1025}
	for _, order := range []Order{Constant, Linear, Parabolic} {
		r := Reconstruct(mean, order)
		for k := range mean {
			if got := r.At(k, 0); math.Abs(got-r.Top[k]) > 1e-12 {
				t.Errorf("order %s cell %d: At(0) = %f, want Top %f", order, k, got, r.Top[k])
			}
			if got := r.At(k, 1); math.Abs(got-r.Bot[k]) > 1e-12 {
				t.Errorf("order %s cell %d: At(1) = %f, want Bot %f", order, k, got, r.Bot[k])
			}
		}
	}
}

func TestMeanOverSubInterval(t *testing.T) {
	// For a linear cell profile the average over [a,b] is the midpoint value.
	mean := []float64{1020, 1022, 1025}
	r := Reconstruct(mean, Linear)

	got := r.MeanOver(1, 0.2, 0.6)
	want := r.At(1, 0.4)
	if math.Abs(got-want) > 1e-12 {
		t.Errorf("MeanOver(1, 0.2, 0.6) = %f, want midpoint value %f", got, want)
	}

	// Degenerate interval returns the point value.
	if got := r.MeanOver(1, 0.3, 0.3); math.Abs(got-r.At(1, 0.3)) > 1e-12 {
		t.Errorf("degenerate MeanOver = %f, want %f", got, r.At(1, 0.3))
	}
}

func TestClassify(t *testing.T) {
	tests := []struct {
		name string
		rho  *Recon
		want []bool
	}{
		{
			name: "all stable",
			rho:  Reconstruct([]float64{1020, 1022, 1025}, Linear),
			want: []bool{true, true, true},
		},
		{
			name: "density inversion below",
			rho:  Reconstruct([]float64{1020, 1025, 1022}, Constant),
			want: []bool{true, true, false},
		},
		{
			// Only the NaN cell itself is flagged; the sweep stops there via
			// StablePrefix anyway.
			name: "nan cell",
			rho:  Reconstruct([]float64{1020, math.NaN(), 1025}, Constant),
			want: []bool{true, false, true},
		},
		{
			name: "nonpositive density",
			rho:  Reconstruct([]float64{-5, 1020, 1025}, Constant),
			want: []bool{false, true, true},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Classify(tt.rho)
			if len(got) != len(tt.want) {
				t.Fatalf("Classify() len = %d, want %d", len(got), len(tt.want))
			}
			for k := range tt.want {
				if got[k] != tt.want[k] {
					t.Errorf("cell %d: stable = %v, want %v", k, got[k], tt.want[k])
				}
			}
		})
	}
}

func TestClassifyInCellInversion(t *testing.T) {
	// Force Bot < Top within a cell; Classify must flag it regardless of the
	// cell averages being ordered.
	r := &Recon{
		Mean: []float64{1020, 1022},
		Top:  []float64{1020, 1023},
		Bot:  []float64{1020, 1021},
	}
	got := Classify(r)
	if got[1] {
		t.Errorf("cell with internal inversion classified stable")
	}
}

func TestStablePrefix(t *testing.T) {
	tests := []struct {
		name   string
		stable []bool
		want   int
	}{
		{"all stable", []bool{true, true, true}, 3},
		{"none", []bool{false, true}, 0},
		{"stops at first unstable", []bool{true, true, false, true}, 2},
		{"empty", nil, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := StablePrefix(tt.stable); got != tt.want {
				t.Errorf("StablePrefix(%v) = %d, want %d", tt.stable, got, tt.want)
			}
		})
	}
}
