// Package neutral implements the interior epineutral mixing scheme: the
// density-matching sweep that builds sublayers spanning two mismatched
// column layerings, the per-sublayer down-gradient flux, and the
// flux accumulation onto per-layer tracer budgets at each face.
package neutral

import (
	"errors"

	"github.com/halocline-data/epineutral/internal/column"
)

// Position is a location within a column expressed as a layer index and a
// fraction through that layer (0 = top edge, 1 = bottom edge).
type Position struct {
	Layer int
	Frac  float64
}

// Depth returns the absolute depth of the position given the column's
// interface depths (len = layers+1).
func (p Position) Depth(z []float64) float64 {
	return z[p.Layer]*(1-p.Frac) + z[p.Layer+1]*p.Frac
}

// Span is a depth range within one column, bounded by two matched
// positions. ZTop/ZBot are absolute depths derived from the positions.
type Span struct {
	Top, Bot   Position
	ZTop, ZBot float64
}

// Thickness returns the vertical extent of the span in meters.
func (s Span) Thickness() float64 {
	if s.ZBot <= s.ZTop {
		return 0
	}
	return s.ZBot - s.ZTop
}

// Sublayer is one density-bounded matched interval between two adjacent
// columns. Sublayers are created transiently during matching and consumed
// immediately by flux calculation; they are not persisted across steps.
type Sublayer struct {
	Left, Right Span
}

// MatchResult is the output of one column-pair sweep.
type MatchResult struct {
	Sublayers []Sublayer

	// RootFinds counts polynomial inversions performed; Snaps counts
	// matches that landed on an existing interface with no root-find.
	RootFinds int
	Snaps     int

	// Truncated reports that a root-find failed to converge and the sweep
	// ended early. Layers below the truncation depth are left unmixed.
	Truncated bool
}

// matchState is the explicit two-pointer sweep state: the next unconsumed
// interface on each side plus the last matched position on each side.
type matchState struct {
	iL, iR       int
	prevL, prevR Position
}

// MatchColumns runs the density-matching sweep between two adjacent,
// reconstructed columns. rhoL/rhoR are the density reconstructions, zL/zR
// the interface depths (len = layers+1), stableL/stableR the stability
// masks. The sweep covers each column's contiguous stable region from the
// surface; it terminates when either region is exhausted.
//
// Each column contributes a doubled interface sequence (top and bottom edge
// of every cell, carrying the discontinuous reconstruction), and the sweep
// is a monotonic two-pointer merge on density: at each step the side whose
// next interface is lighter is the reference, and its interface density is
// located in the other column, either by snapping to an equal-density
// interface or discontinuity jump, or by a bounded root-find within the
// single spanning layer. Pointers only ever advance downward, so total work
// is O(n) per column pair.
func MatchColumns(rhoL, rhoR *column.Recon, zL, zR []float64, stableL, stableR []bool, rf RootFinder) MatchResult {
	var res MatchResult

	nL := column.StablePrefix(stableL)
	nR := column.StablePrefix(stableR)
	if nL == 0 || nR == 0 {
		return res
	}

	st := matchState{iL: 1, iR: 1} // interface 0 on both sides is the surface, matched trivially

	for st.iL < 2*nL && st.iR < 2*nR {
		dL := interfaceDensity(rhoL, st.iL)
		dR := interfaceDensity(rhoR, st.iR)

		var newL, newR Position
		switch {
		case dL == dR:
			// Tie: snap both sides to their own interfaces. No root-find
			// and no zero-width virtual interface.
			newL = interfacePosition(st.iL)
			newR = interfacePosition(st.iR)
			res.Snaps++
			st.iL++
			st.iR++
		case dL < dR:
			newL = interfacePosition(st.iL)
			pos, ok := res.locate(rhoR, st.prevR, st.iR, dL, rf)
			if !ok {
				res.Truncated = true
				return res
			}
			newR = pos
			st.iL++
		default:
			newR = interfacePosition(st.iR)
			pos, ok := res.locate(rhoL, st.prevL, st.iL, dR, rf)
			if !ok {
				res.Truncated = true
				return res
			}
			newL = pos
			st.iR++
		}

		sub := Sublayer{
			Left:  span(st.prevL, newL, zL),
			Right: span(st.prevR, newR, zR),
		}
		// Steps where neither side gained thickness are pure pointer
		// bookkeeping (edge jumps), not sublayers.
		if sub.Left.Thickness() > 0 || sub.Right.Thickness() > 0 {
			res.Sublayers = append(res.Sublayers, sub)
		}
		st.prevL, st.prevR = newL, newR
	}

	return res
}

// locate finds the position in the target column where the reconstructed
// density equals target, searching forward from prev. i is the target
// column's next unconsumed interface, whose density is known to exceed
// target. Returns ok=false when an iterative root-find fails to converge.
func (r *MatchResult) locate(rho *column.Recon, prev Position, i int, target float64, rf RootFinder) (Position, bool) {
	k := i / 2
	if i%2 == 0 {
		// The next interface is the top edge of layer k: target falls in
		// the density jump of the discontinuity at that depth. Snap the
		// virtual interface to the jump; the interface itself remains
		// unconsumed.
		r.Snaps++
		return Position{Layer: k, Frac: 0}, true
	}

	// The next interface is the bottom edge of layer k: the target density
	// is spanned by layer k's polynomial between the previous matched
	// fraction and the bottom edge.
	lo := 0.0
	if prev.Layer == k {
		lo = prev.Frac
	}
	top, bot, mean := rho.Top[k], rho.Bot[k], rho.Mean[k]
	seg := segment{top: top, delta: bot - top, a6: 6*mean - 3*(top+bot)}

	r.RootFinds++
	xi, err := rf.Solve(seg, lo, 1, target)
	if err != nil {
		if errors.Is(err, ErrNoConvergence) {
			return Position{}, false
		}
		return Position{}, false
	}
	return Position{Layer: k, Frac: xi}, true
}

// interfaceDensity returns the reconstructed density at doubled-interface
// index i: even indices are cell top edges, odd indices cell bottom edges.
func interfaceDensity(rho *column.Recon, i int) float64 {
	if i%2 == 0 {
		return rho.Top[i/2]
	}
	return rho.Bot[i/2]
}

// interfacePosition returns the Position of doubled-interface index i.
func interfacePosition(i int) Position {
	if i%2 == 0 {
		return Position{Layer: i / 2, Frac: 0}
	}
	return Position{Layer: i / 2, Frac: 1}
}

func span(top, bot Position, z []float64) Span {
	return Span{
		Top:  top,
		Bot:  bot,
		ZTop: top.Depth(z),
		ZBot: bot.Depth(z),
	}
}
