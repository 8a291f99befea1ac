package column

import "math"

// Classify flags each cell of a reconstructed density profile as stable or
// not. A cell is unstable when its density is not finite and positive, when
// the reconstruction inverts within the cell (denser water above lighter),
// or when its average density is lighter than the cell above it. Unstable
// cells are excluded from density matching entirely; the matcher treats
// them as the end of the column's stable region rather than filling them in.
func Classify(rho *Recon) []bool {
	n := len(rho.Mean)
	stable := make([]bool, n)
	for k := 0; k < n; k++ {
		if !validDensity(rho.Top[k]) || !validDensity(rho.Bot[k]) || !validDensity(rho.Mean[k]) {
			continue
		}
		if rho.Bot[k] < rho.Top[k] {
			continue // inversion within the cell
		}
		if k > 0 && rho.Mean[k] < rho.Mean[k-1] {
			continue // lighter than the cell above
		}
		stable[k] = true
	}
	return stable
}

// StablePrefix returns the number of contiguous stable cells from the
// surface down. The matcher's sweep covers exactly this region; anything
// below the first unstable cell is left unmixed for the step.
func StablePrefix(stable []bool) int {
	for k, s := range stable {
		if !s {
			return k
		}
	}
	return len(stable)
}

func validDensity(rho float64) bool {
	return !math.IsNaN(rho) && !math.IsInf(rho, 0) && rho > 0
}
