// Package blmix implements the near-surface variant of lateral mixing: a
// per-layer flux within the boundary mixed layer of two adjacent columns
// whose mixed-layer depths, and hence layer counts, may differ. Layers
// already align by index near the surface, so no density matching or
// root-finding is involved.
package blmix

import (
	"github.com/halocline-data/epineutral/internal/column"
	"github.com/halocline-data/epineutral/internal/eos"
	"github.com/halocline-data/epineutral/internal/mld"
	"github.com/halocline-data/epineutral/internal/neutral"
)

// Scheme carries the configuration of the boundary-layer flux scheme.
type Scheme struct {
	Kappa  float64           // lateral diffusivity (m^2/s)
	Dt     float64           // timestep (s)
	Depths mld.DepthProvider // external mixed-layer-depth collaborator
}

// Taper returns the flux scale factor for layer k (1-based) given the
// layer counts within the two mixed layers. It is 1 for the common layer
// range (k <= nmin), decreases linearly below it, and reaches 0 at nmax+1,
// so the transition from full mixing to no mixing is continuous rather
// than a hard cutoff.
func Taper(k, nmin, nmax int) float64 {
	if k <= nmin {
		return 1
	}
	if k > nmax {
		return 0
	}
	return float64(nmax+1-k) / float64(nmax+1-nmin)
}

// Fluxes returns the per-layer tracer flux (tracer amount per unit face
// length, left to right) between two adjacent columns for tracer values
// phiL/phiR, over the layers reached by either column's mixed layer. dx is
// the distance between the column centers. The coefficient Kappa*hEff is
// always non-negative, so the flux sign is that of phiL(k)-phiR(k):
// always down-gradient.
func (s *Scheme) Fluxes(cL, cR *column.Column, phiL, phiR []float64, dx float64, e eos.EOS) []float64 {
	mldL := s.Depths.MixedLayerDepth(cL, e)
	mldR := s.Depths.MixedLayerDepth(cR, e)
	nL := mld.LayersWithin(cL.Thickness, mldL)
	nR := mld.LayersWithin(cR.Thickness, mldR)
	return s.FluxesForCounts(cL, cR, phiL, phiR, dx, nL, nR)
}

// FluxesForCounts is Fluxes with the per-column mixed-layer layer counts
// supplied directly. When nL == nR the scheme reduces exactly to the
// full-flux case with no tapered layers.
func (s *Scheme) FluxesForCounts(cL, cR *column.Column, phiL, phiR []float64, dx float64, nL, nR int) []float64 {
	nmin, nmax := nL, nR
	if nmax < nmin {
		nmin, nmax = nmax, nmin
	}
	limit := min(nmax, min(cL.NumLayers(), cR.NumLayers()))

	fluxes := make([]float64, limit)
	if dx <= 0 {
		return fluxes
	}
	for k := 0; k < limit; k++ {
		scale := Taper(k+1, nmin, nmax)
		if scale == 0 {
			continue
		}
		hEff := neutral.EffectiveThickness(cL.Thickness[k], cR.Thickness[k])
		if hEff == 0 {
			continue
		}
		fluxes[k] = scale * s.Kappa * hEff * (phiL[k] - phiR[k]) / dx * s.Dt
	}
	return fluxes
}
