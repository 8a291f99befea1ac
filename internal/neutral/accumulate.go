package neutral

import "math"

// FaceAccumulator collects sublayer flux contributions at one face into
// per-layer tracer content changes for the two adjacent columns. A face
// may receive contributions from several sublayers whose depth ranges only
// partially overlap a given model layer; each flux is distributed over the
// layers it overlaps, weighted by the fractional overlap of the sublayer's
// depth range with the layer. Accumulation is pure summation, so the order
// faces and sublayers are processed in does not affect the result.
type FaceAccumulator struct {
	// Left and Right hold per-layer tracer content changes (tracer units
	// times m^2 per unit face length). A positive sublayer flux moves
	// tracer from the left column to the right one.
	Left, Right []float64

	zL, zR []float64 // interface depths of the two columns
}

// NewFaceAccumulator returns an accumulator for the face between two
// columns with the given interface depths (len = layers+1).
func NewFaceAccumulator(zL, zR []float64) *FaceAccumulator {
	return &FaceAccumulator{
		Left:  make([]float64, len(zL)-1),
		Right: make([]float64, len(zR)-1),
		zL:    zL,
		zR:    zR,
	}
}

// Add distributes one sublayer's flux onto the per-layer budgets of both
// columns.
func (a *FaceAccumulator) Add(s Sublayer, flux float64) {
	if flux == 0 {
		return
	}
	distribute(a.Left, a.zL, s.Left, -flux)
	distribute(a.Right, a.zR, s.Right, +flux)
}

// distribute splits amount over the layers the span's depth range
// overlaps, weighted by fractional overlap. A degenerate span attributes
// the whole amount to its top layer.
func distribute(dst []float64, z []float64, s Span, amount float64) {
	total := s.Thickness()
	if total <= 0 {
		if s.Top.Layer < len(dst) {
			dst[s.Top.Layer] += amount
		}
		return
	}
	for k := s.Top.Layer; k <= s.Bot.Layer && k < len(dst); k++ {
		overlap := math.Min(s.ZBot, z[k+1]) - math.Max(s.ZTop, z[k])
		if overlap <= 0 {
			continue
		}
		dst[k] += amount * overlap / total
	}
}

// ApplyLimited applies accumulated per-layer content changes to a column's
// tracer values as a divergence, clipping each layer's update so the new
// value cannot leave the range implied by the layer and its vertical
// neighbours in the before state: a post-hoc limiter reinforcing the
// no-new-extrema property at the accumulation stage, not just at
// reconstruction. Returns the new tracer values and the number of clipped
// layers.
//
// before are the snapshot cell averages, delta the net per-layer content
// change (sum over the column's bounding faces), and volume the per-layer
// divisor turning content change into a concentration change.
func ApplyLimited(before, delta, volume []float64) (updated []float64, clipped int) {
	n := len(before)
	updated = make([]float64, n)
	for k := 0; k < n; k++ {
		v := before[k]
		if volume[k] > 0 {
			v += delta[k] / volume[k]
		}

		lo, hi := before[k], before[k]
		if k > 0 {
			lo = math.Min(lo, before[k-1])
			hi = math.Max(hi, before[k-1])
		}
		if k < n-1 {
			lo = math.Min(lo, before[k+1])
			hi = math.Max(hi, before[k+1])
		}
		if v < lo {
			v = lo
			clipped++
		} else if v > hi {
			v = hi
			clipped++
		}
		updated[k] = v
	}
	return updated, clipped
}
