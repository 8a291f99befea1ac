// Package column holds the per-column data model for the epineutral
// diffusion scheme: layer thicknesses and cell-average fields, the limited
// piecewise-polynomial reconstruction of those fields, and the static
// stability classification of the reconstructed density profile.
package column

// Column is one water column, ordered surface to bottom. A Column is read
// from the model's tracer state at the start of a diffusion step and is
// immutable during the pass; updates are accumulated separately and applied
// at the end of the step.
type Column struct {
	Thickness []float64 // layer thickness (m)
	Temp      []float64 // cell-average temperature (degC)
	Salt      []float64 // cell-average salinity (psu)

	// Tracers holds any additional cell-average tracer fields carried by
	// the column (biogeochemistry etc.), each of length NumLayers.
	Tracers [][]float64
}

// NumLayers returns the number of layers in the column.
func (c *Column) NumLayers() int { return len(c.Thickness) }

// InterfaceDepths returns the cumulative depth of each layer interface,
// surface first. The result has NumLayers+1 entries; entry 0 is 0.
func (c *Column) InterfaceDepths() []float64 {
	z := make([]float64, len(c.Thickness)+1)
	for k, h := range c.Thickness {
		z[k+1] = z[k] + h
	}
	return z
}

// Depth returns the total depth of the column.
func (c *Column) Depth() float64 {
	var d float64
	for _, h := range c.Thickness {
		d += h
	}
	return d
}

// Clone returns a deep copy of the column, used to snapshot the before
// state of a timestep.
func (c *Column) Clone() *Column {
	out := &Column{
		Thickness: append([]float64(nil), c.Thickness...),
		Temp:      append([]float64(nil), c.Temp...),
		Salt:      append([]float64(nil), c.Salt...),
	}
	for _, tr := range c.Tracers {
		out.Tracers = append(out.Tracers, append([]float64(nil), tr...))
	}
	return out
}
