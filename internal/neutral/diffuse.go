package neutral

import (
	"github.com/halocline-data/epineutral/internal/column"
	"github.com/halocline-data/epineutral/internal/eos"
	"github.com/halocline-data/epineutral/internal/geom"
)

// Config controls one epineutral diffusion pass.
type Config struct {
	Order column.Order
	Mode  eos.CoefficientMode

	// RefPressure is the pressure (dbar) densities are evaluated at in
	// ReferencePressure mode.
	RefPressure float64

	Root RootFinder

	// Kappa is the lateral diffusivity (m^2/s). KappaPerFace, when
	// non-nil, overrides it per face.
	Kappa        float64
	KappaPerFace []float64

	Dt float64 // timestep (s)
}

// DefaultConfig returns the stock configuration for interior mixing.
func DefaultConfig() Config {
	return Config{
		Order: column.Parabolic,
		Mode:  eos.Neutral,
		Root:  DefaultRootFinder(),
		Kappa: 1000.0,
		Dt:    3600.0,
	}
}

// FluxSample is one nonzero per-face, per-layer flux contribution recorded
// for inspection. Delta is the content change of the named column's layer.
type FluxSample struct {
	Face   int
	Column int
	Tracer int
	Layer  int
	Delta  float64
}

// Diagnostics summarises one diffusion pass.
type Diagnostics struct {
	Sublayers       int
	RootFinds       int
	Snaps           int
	TruncatedSweeps int
	LimiterHits     int
	UnstableCells   int
	Fluxes          []FluxSample
}

// Diffuse runs one explicit epineutral diffusion step over a row of
// columns. All fluxes are computed from the fixed before state; updates
// are accumulated per column and applied in a second pass, so
// face-processing order cannot affect the result. The input columns are
// not modified; the returned columns carry the updated tracer fields.
func Diffuse(cols []*column.Column, g *geom.Grid, e eos.EOS, cfg Config) ([]*column.Column, *Diagnostics) {
	n := len(cols)
	diag := &Diagnostics{}

	// Per-column reconstruction and classification (independent per
	// column; the before state is immutable from here on).
	recs := make([]*columnRecon, n)
	for c := 0; c < n; c++ {
		recs[c] = reconstructColumn(cols[c], e, cfg)
		for _, s := range recs[c].stable {
			if !s {
				diag.UnstableCells++
			}
		}
	}

	// Per-face matching and flux accumulation. Each column is a reduction
	// target of its two bounding faces; deltas are summed into a single
	// per-column accumulator before anything is applied.
	nt := numFields(cols[0])
	deltas := make([][][]float64, n) // [column][tracer][layer]
	for c := 0; c < n; c++ {
		deltas[c] = make([][]float64, nt)
		for t := 0; t < nt; t++ {
			deltas[c][t] = make([]float64, cols[c].NumLayers())
		}
	}

	for f := 0; f < g.NumFaces(); f++ {
		l, r := f, f+1
		match := MatchColumns(recs[l].rho, recs[r].rho, recs[l].z, recs[r].z,
			recs[l].stable, recs[r].stable, cfg.Root)

		diag.Sublayers += len(match.Sublayers)
		diag.RootFinds += match.RootFinds
		diag.Snaps += match.Snaps
		if match.Truncated {
			diag.TruncatedSweeps++
		}

		params := FluxParams{Kappa: cfg.Kappa, Dx: g.FaceDx[f], Dt: cfg.Dt}
		if cfg.KappaPerFace != nil {
			params.Kappa = cfg.KappaPerFace[f]
		}

		for t := 0; t < nt; t++ {
			acc := NewFaceAccumulator(recs[l].z, recs[r].z)
			for _, sub := range match.Sublayers {
				flux := SublayerFlux(sub, recs[l].fields[t], recs[r].fields[t],
					cols[l].Thickness, cols[r].Thickness, params)
				acc.Add(sub, flux)
			}
			for k, d := range acc.Left {
				deltas[l][t][k] += d
				if d != 0 {
					diag.Fluxes = append(diag.Fluxes, FluxSample{Face: f, Column: l, Tracer: t, Layer: k, Delta: d})
				}
			}
			for k, d := range acc.Right {
				deltas[r][t][k] += d
				if d != 0 {
					diag.Fluxes = append(diag.Fluxes, FluxSample{Face: f, Column: r, Tracer: t, Layer: k, Delta: d})
				}
			}
		}
	}

	// Apply accumulated deltas with the post-hoc extrema limiter.
	out := make([]*column.Column, n)
	for c := 0; c < n; c++ {
		out[c] = cols[c].Clone()
		volume := make([]float64, cols[c].NumLayers())
		for k, h := range cols[c].Thickness {
			volume[k] = g.Volume(c, h)
		}
		for t := 0; t < nt; t++ {
			updated, clipped := ApplyLimited(field(cols[c], t), deltas[c][t], volume)
			diag.LimiterHits += clipped
			setField(out[c], t, updated)
		}
	}

	return out, diag
}

// columnRecon bundles one column's reconstructed state for a pass.
type columnRecon struct {
	rho    *column.Recon
	fields []*column.Recon // Temp, Salt, then extra tracers
	stable []bool
	z      []float64
}

// reconstructColumn evaluates density from the cell-average state via the
// EOS and builds the limited reconstructions the matcher and flux
// calculator consume.
func reconstructColumn(c *column.Column, e eos.EOS, cfg Config) *columnRecon {
	n := c.NumLayers()
	z := c.InterfaceDepths()

	rhoMean := make([]float64, n)
	for k := 0; k < n; k++ {
		pres := cfg.RefPressure
		if cfg.Mode == eos.Neutral {
			pres = eos.PressureAtDepth(0.5 * (z[k] + z[k+1]))
		}
		rhoMean[k] = e.Density(c.Temp[k], c.Salt[k], pres)
	}

	cr := &columnRecon{
		rho: column.Reconstruct(rhoMean, cfg.Order),
		z:   z,
	}
	cr.stable = column.Classify(cr.rho)

	for t := 0; t < numFields(c); t++ {
		cr.fields = append(cr.fields, column.Reconstruct(field(c, t), cfg.Order))
	}
	return cr
}

// Fields are indexed temperature, salinity, then the extra tracers, so a
// single loop diffuses everything the column carries.
func numFields(c *column.Column) int { return 2 + len(c.Tracers) }

func field(c *column.Column, t int) []float64 {
	switch t {
	case 0:
		return c.Temp
	case 1:
		return c.Salt
	default:
		return c.Tracers[t-2]
	}
}

func setField(c *column.Column, t int, v []float64) {
	switch t {
	case 0:
		c.Temp = v
	case 1:
		c.Salt = v
	default:
		c.Tracers[t-2] = v
	}
}
