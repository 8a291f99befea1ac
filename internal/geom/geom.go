// Package geom supplies the grid geometry the diffusion core consumes:
// distances across faces and cell volumes. The core never derives geometry
// itself; it is an external collaborator of the surrounding circulation
// model.
package geom

// Grid is a one-dimensional row of columns with the faces between them.
// All quantities are per unit transverse width.
type Grid struct {
	// FaceDx is the distance between adjacent column centers (m),
	// len = columns-1.
	FaceDx []float64

	// CellWidth is each column's horizontal extent along the row (m),
	// len = columns.
	CellWidth []float64
}

// Uniform returns a grid of n equally spaced columns of equal width.
func Uniform(n int, dx, width float64) *Grid {
	g := &Grid{
		FaceDx:    make([]float64, n-1),
		CellWidth: make([]float64, n),
	}
	for i := range g.FaceDx {
		g.FaceDx[i] = dx
	}
	for i := range g.CellWidth {
		g.CellWidth[i] = width
	}
	return g
}

// NumColumns returns the number of columns.
func (g *Grid) NumColumns() int { return len(g.CellWidth) }

// NumFaces returns the number of interior faces.
func (g *Grid) NumFaces() int { return len(g.FaceDx) }

// Volume returns the volume of a cell of thickness h in the given column,
// per unit transverse width (m^2).
func (g *Grid) Volume(col int, h float64) float64 {
	return g.CellWidth[col] * h
}
