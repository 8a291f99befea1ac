// Package mld provides the mixed-layer-depth collaborators consumed by the
// boundary-layer mixing scheme. Any model that can produce a depth for a
// column is a drop-in provider.
package mld

import (
	"github.com/halocline-data/epineutral/internal/column"
	"github.com/halocline-data/epineutral/internal/eos"
)

// DepthProvider maps a column's state to a boundary (mixed) layer depth in
// meters.
type DepthProvider interface {
	MixedLayerDepth(c *column.Column, e eos.EOS) float64
}

// DensityThreshold is the stock provider: the mixed layer extends to the
// first layer whose potential density exceeds the surface layer's by
// DeltaRho, a common diagnostic criterion.
type DensityThreshold struct {
	DeltaRho float64 // kg/m^3, typically 0.03-0.125
}

// DefaultDensityThreshold returns the conventional 0.03 kg/m^3 criterion.
func DefaultDensityThreshold() *DensityThreshold {
	return &DensityThreshold{DeltaRho: 0.03}
}

// MixedLayerDepth implements DepthProvider. Densities are evaluated at the
// surface reference pressure so compressibility does not masquerade as
// stratification.
func (d *DensityThreshold) MixedLayerDepth(c *column.Column, e eos.EOS) float64 {
	n := c.NumLayers()
	if n == 0 {
		return 0
	}
	surface := e.Density(c.Temp[0], c.Salt[0], 0)
	var depth float64
	for k := 0; k < n; k++ {
		rho := e.Density(c.Temp[k], c.Salt[k], 0)
		if rho > surface+d.DeltaRho {
			return depth
		}
		depth += c.Thickness[k]
	}
	return depth
}

// Fixed is a provider returning a constant depth, useful in tests and
// idealised runs.
type Fixed struct {
	Depth float64
}

// MixedLayerDepth implements DepthProvider.
func (f *Fixed) MixedLayerDepth(c *column.Column, e eos.EOS) float64 {
	return f.Depth
}

// LayersWithin returns how many whole model layers lie within the given
// depth, counting a layer as inside once more than half of it is above the
// depth.
func LayersWithin(thickness []float64, depth float64) int {
	var z float64
	for k, h := range thickness {
		if z+0.5*h > depth {
			return k
		}
		z += h
	}
	return len(thickness)
}
