package blmix

import (
	"github.com/halocline-data/epineutral/internal/column"
	"github.com/halocline-data/epineutral/internal/eos"
	"github.com/halocline-data/epineutral/internal/geom"
	"github.com/halocline-data/epineutral/internal/mld"
	"github.com/halocline-data/epineutral/internal/neutral"
)

// Diagnostics summarises one boundary-layer mixing pass.
type Diagnostics struct {
	TaperedLayers int
	LimiterHits   int
}

// Apply runs one explicit boundary-layer mixing step over a row of
// columns, diffusing every field the columns carry. Like the interior
// scheme it computes all fluxes from the fixed before state and reduces
// them into per-column updates afterwards; the input columns are not
// modified.
func (s *Scheme) Apply(cols []*column.Column, g *geom.Grid, e eos.EOS) ([]*column.Column, *Diagnostics) {
	n := len(cols)
	diag := &Diagnostics{}

	counts := make([]int, n)
	for c := 0; c < n; c++ {
		depth := s.Depths.MixedLayerDepth(cols[c], e)
		counts[c] = mld.LayersWithin(cols[c].Thickness, depth)
	}

	nt := numFields(cols[0])
	deltas := make([][][]float64, n)
	for c := 0; c < n; c++ {
		deltas[c] = make([][]float64, nt)
		for t := 0; t < nt; t++ {
			deltas[c][t] = make([]float64, cols[c].NumLayers())
		}
	}

	for f := 0; f < g.NumFaces(); f++ {
		l, r := f, f+1
		nmin, nmax := counts[l], counts[r]
		if nmax < nmin {
			nmin, nmax = nmax, nmin
		}
		diag.TaperedLayers += nmax - nmin

		for t := 0; t < nt; t++ {
			fluxes := s.FluxesForCounts(cols[l], cols[r], fieldOf(cols[l], t), fieldOf(cols[r], t),
				g.FaceDx[f], counts[l], counts[r])
			for k, fl := range fluxes {
				deltas[l][t][k] -= fl
				deltas[r][t][k] += fl
			}
		}
	}

	out := make([]*column.Column, n)
	for c := 0; c < n; c++ {
		out[c] = cols[c].Clone()
		volume := make([]float64, cols[c].NumLayers())
		for k, h := range cols[c].Thickness {
			volume[k] = g.Volume(c, h)
		}
		for t := 0; t < nt; t++ {
			updated, clipped := neutral.ApplyLimited(fieldOf(cols[c], t), deltas[c][t], volume)
			diag.LimiterHits += clipped
			setFieldOf(out[c], t, updated)
		}
	}

	return out, diag
}

func numFields(c *column.Column) int { return 2 + len(c.Tracers) }

func fieldOf(c *column.Column, t int) []float64 {
	switch t {
	case 0:
		return c.Temp
	case 1:
		return c.Salt
	default:
		return c.Tracers[t-2]
	}
}

func setFieldOf(c *column.Column, t int, v []float64) {
	switch t {
	case 0:
		c.Temp = v
	case 1:
		c.Salt = v
	default:
		c.Tracers[t-2] = v
	}
}
