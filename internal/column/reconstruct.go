package column

import (
	"math"

	"gonum.org/v1/gonum/floats"
)

// Order selects the vertical reconstruction order.
type Order int

const (
	// Constant reconstructs each cell as its cell average.
	Constant Order = iota

	// Linear reconstructs each cell as a limited linear profile.
	Linear

	// Parabolic reconstructs each cell as a limited parabola (PPM).
	Parabolic
)

// String returns the config-file spelling of the order.
func (o Order) String() string {
	switch o {
	case Constant:
		return "constant"
	case Linear:
		return "linear"
	case Parabolic:
		return "parabolic"
	default:
		return "unknown"
	}
}

// Recon is a limited piecewise-polynomial reconstruction of one cell-average
// field. Within cell k the profile over the normalised coordinate xi in
// [0,1] (0 = top edge, 1 = bottom edge) is
//
//	p(xi) = Top[k] + xi*(delta + a6*(1-xi))
//
// with delta = Bot[k]-Top[k] and a6 = 6*Mean[k] - 3*(Top[k]+Bot[k]), which
// preserves the cell average exactly for all three orders. Reconstructions
// are intentionally discontinuous across cell boundaries: Bot[k] need not
// equal Top[k+1].
type Recon struct {
	Order Order
	Mean  []float64
	Top   []float64 // value at the top edge of each cell
	Bot   []float64 // value at the bottom edge of each cell
}

// Reconstruct builds a limited reconstruction of the cell averages. Edge
// values never leave [min, max] of the cell and its immediate neighbours,
// and cells where a monotone higher-order fit is impossible (local extrema
// of the input) degrade to piecewise constant.
func Reconstruct(mean []float64, order Order) *Recon {
	n := len(mean)
	r := &Recon{
		Order: order,
		Mean:  append([]float64(nil), mean...),
		Top:   make([]float64, n),
		Bot:   make([]float64, n),
	}
	if n == 0 {
		return r
	}

	switch order {
	case Constant:
		copy(r.Top, mean)
		copy(r.Bot, mean)
	case Linear:
		for k := 0; k < n; k++ {
			s := limitedSlope(mean, k)
			r.Top[k] = mean[k] - 0.5*s
			r.Bot[k] = mean[k] + 0.5*s
		}
	case Parabolic:
		reconstructParabolic(mean, r)
	default:
		copy(r.Top, mean)
		copy(r.Bot, mean)
	}

	clipToNeighbours(mean, r)
	return r
}

// limitedSlope returns a monotonised slope for cell k (monotonised central
// difference); zero at the column ends and at local extrema.
func limitedSlope(mean []float64, k int) float64 {
	n := len(mean)
	if k == 0 || k == n-1 {
		return 0
	}
	dl := mean[k] - mean[k-1]
	dr := mean[k+1] - mean[k]
	if dl*dr <= 0 {
		return 0 // local extremum: degrade to constant
	}
	dc := 0.5 * (mean[k+1] - mean[k-1])
	s := math.Min(math.Abs(dc), 2*math.Min(math.Abs(dl), math.Abs(dr)))
	return math.Copysign(s, dc)
}

// reconstructParabolic fills Top/Bot with monotonised PPM edge values.
func reconstructParabolic(mean []float64, r *Recon) {
	n := len(mean)

	// Edge estimates between cells k-1 and k. Interior edges use the
	// slope-corrected average of Colella & Woodward; boundary edges fall
	// back to the adjacent cell average.
	edge := make([]float64, n+1)
	edge[0] = mean[0]
	edge[n] = mean[n-1]
	for k := 1; k < n; k++ {
		sl := limitedSlope(mean, k-1)
		sr := limitedSlope(mean, k)
		e := 0.5*(mean[k-1]+mean[k]) + (sl-sr)/6.0
		// Keep the edge between the two adjacent averages.
		lo := math.Min(mean[k-1], mean[k])
		hi := math.Max(mean[k-1], mean[k])
		edge[k] = math.Min(math.Max(e, lo), hi)
	}

	for k := 0; k < n; k++ {
		top, bot := edge[k], edge[k+1]

		// A cell whose average is not between its edge values cannot hold
		// a monotone parabola: fall back to piecewise constant.
		if (bot-mean[k])*(mean[k]-top) <= 0 {
			r.Top[k] = mean[k]
			r.Bot[k] = mean[k]
			continue
		}

		// Pull one edge in when the parabola would overshoot inside the
		// cell (standard PPM monotonisation).
		delta := bot - top
		a6 := 6*mean[k] - 3*(top+bot)
		if delta*a6 > delta*delta {
			top = 3*mean[k] - 2*bot
		} else if -(delta * delta) > delta*a6 {
			bot = 3*mean[k] - 2*top
		}

		r.Top[k] = top
		r.Bot[k] = bot
	}
}

// clipToNeighbours enforces the hard bound that no reconstructed value
// leaves [min, max] of the cell and its immediate neighbours.
func clipToNeighbours(mean []float64, r *Recon) {
	n := len(mean)
	for k := 0; k < n; k++ {
		lo, hi := mean[k], mean[k]
		if k > 0 {
			lo = math.Min(lo, mean[k-1])
			hi = math.Max(hi, mean[k-1])
		}
		if k < n-1 {
			lo = math.Min(lo, mean[k+1])
			hi = math.Max(hi, mean[k+1])
		}
		r.Top[k] = math.Min(math.Max(r.Top[k], lo), hi)
		r.Bot[k] = math.Min(math.Max(r.Bot[k], lo), hi)
	}
}

// At evaluates the reconstruction of cell k at xi in [0,1].
func (r *Recon) At(k int, xi float64) float64 {
	top, bot, mean := r.Top[k], r.Bot[k], r.Mean[k]
	delta := bot - top
	a6 := 6*mean - 3*(top+bot)
	return top + xi*(delta+a6*(1-xi))
}

// MeanOver returns the average of the reconstruction of cell k over
// xi in [a,b]. For a degenerate interval it returns the point value at a.
func (r *Recon) MeanOver(k int, a, b float64) float64 {
	if b-a <= 0 {
		return r.At(k, a)
	}
	top, bot, mean := r.Top[k], r.Bot[k], r.Mean[k]
	delta := bot - top
	a6 := 6*mean - 3*(top+bot)
	// Antiderivative of p(xi) = top + (delta+a6)*xi - a6*xi^2.
	antideriv := func(x float64) float64 {
		return top*x + 0.5*(delta+a6)*x*x - a6*x*x*x/3.0
	}
	return (antideriv(b) - antideriv(a)) / (b - a)
}

// Range returns the smallest and largest values the reconstruction takes
// anywhere in the column. Used by tests to verify the no-new-extrema bound.
func (r *Recon) Range() (lo, hi float64) {
	if len(r.Mean) == 0 {
		return 0, 0
	}
	lo = math.Inf(1)
	hi = math.Inf(-1)
	for k := range r.Mean {
		// The monotonised polynomial attains its extrema at the edges.
		lo = math.Min(lo, math.Min(r.Top[k], r.Bot[k]))
		hi = math.Max(hi, math.Max(r.Top[k], r.Bot[k]))
	}
	return lo, hi
}

// Bounds returns [min, max] over the cell averages, a convenience for the
// extremum-preservation checks.
func Bounds(mean []float64) (lo, hi float64) {
	if len(mean) == 0 {
		return 0, 0
	}
	return floats.Min(mean), floats.Max(mean)
}
