package neutral

import "github.com/halocline-data/epineutral/internal/column"

// FluxParams are the externally supplied controls of a sublayer flux.
type FluxParams struct {
	Kappa float64 // lateral diffusivity (m^2/s)
	Dx    float64 // distance between column centers across the face (m)
	Dt    float64 // timestep (s)
}

// EffectiveThickness is the harmonic-mean-like combination of the two
// sides' sublayer thicknesses, 2*h1*h2/(h1+h2). It weights the narrower
// side more heavily and is defined as 0 when either side vanishes, which
// guards the division and makes zero-thickness sublayers contribute zero
// flux.
func EffectiveThickness(h1, h2 float64) float64 {
	if h1 <= 0 || h2 <= 0 {
		return 0
	}
	return 2 * h1 * h2 / (h1 + h2)
}

// SpanMean returns the thickness-weighted average of a reconstructed field
// over the span: the integral of the reconstruction restricted to the
// span's depth range divided by the span thickness, not the whole-cell
// average. h is the column's layer thicknesses. A degenerate span evaluates
// the reconstruction at its top position.
func SpanMean(r *column.Recon, s Span, h []float64) float64 {
	if s.Thickness() <= 0 {
		return r.At(s.Top.Layer, s.Top.Frac)
	}
	if s.Top.Layer == s.Bot.Layer {
		return r.MeanOver(s.Top.Layer, s.Top.Frac, s.Bot.Frac)
	}

	// A span can straddle a cell edge when a match snapped to a
	// discontinuity jump; accumulate the pieces layer by layer, weighted
	// by each piece's physical thickness.
	var sum, thick float64
	for k := s.Top.Layer; k <= s.Bot.Layer && k < len(h); k++ {
		a, b := 0.0, 1.0
		if k == s.Top.Layer {
			a = s.Top.Frac
		}
		if k == s.Bot.Layer {
			b = s.Bot.Frac
		}
		if b <= a {
			continue
		}
		w := (b - a) * h[k]
		sum += r.MeanOver(k, a, b) * w
		thick += w
	}
	if thick <= 0 {
		return r.At(s.Top.Layer, s.Top.Frac)
	}
	return sum / thick
}

// SublayerFlux computes the down-gradient tracer flux through one sublayer.
// cL and cR are the tracer reconstructions of the two columns, hL and hR
// their layer thicknesses. The result is the tracer amount per unit face
// length moved from left to right over the timestep (negative when the
// gradient points the other way); the orientation depends only on the
// tracer difference, never on which side was the density reference.
func SublayerFlux(s Sublayer, cL, cR *column.Recon, hL, hR []float64, p FluxParams) float64 {
	hEff := EffectiveThickness(s.Left.Thickness(), s.Right.Thickness())
	if hEff == 0 || p.Dx <= 0 {
		return 0
	}
	meanL := SpanMean(cL, s.Left, hL)
	meanR := SpanMean(cR, s.Right, hR)
	return p.Kappa * hEff * (meanL - meanR) / p.Dx * p.Dt
}
