package monitor

import (
	"fmt"
	"image/color"
	"os"
	"path/filepath"
	"sync"

	"github.com/halocline-data/epineutral/internal/column"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
)

// ProfilePlotter records column profiles over a run for visualisation.
// Sample it once per step; after the run GeneratePlots writes PNG files:
// one density-profile plot of the final state and one surface-value time
// series per field.
type ProfilePlotter struct {
	mu        sync.Mutex
	enabled   bool
	outputDir string

	// samples holds per-step surface values. Key = field name.
	surface map[string]plotter.XYs

	// final state captured by the last Sample call
	cols []*column.Column
	rho  [][]float64
}

// NewProfilePlotter creates a plotter.
func NewProfilePlotter() *ProfilePlotter {
	return &ProfilePlotter{surface: make(map[string]plotter.XYs)}
}

// Start initializes the plotter for a new run. outputDir is created if
// missing.
func (pp *ProfilePlotter) Start(outputDir string) error {
	pp.mu.Lock()
	defer pp.mu.Unlock()

	if err := os.MkdirAll(outputDir, 0755); err != nil {
		return fmt.Errorf("failed to create output dir: %w", err)
	}
	pp.outputDir = outputDir
	pp.enabled = true
	pp.surface = make(map[string]plotter.XYs)
	pp.cols = nil
	pp.rho = nil
	return nil
}

// Sample captures the state after one step.
func (pp *ProfilePlotter) Sample(step int, cols []*column.Column, rho [][]float64) {
	pp.mu.Lock()
	defer pp.mu.Unlock()

	if !pp.enabled || len(cols) == 0 {
		return
	}
	pp.cols = cols
	pp.rho = rho

	x := float64(step)
	for c, col := range cols {
		if col.NumLayers() == 0 {
			continue
		}
		key := fmt.Sprintf("temp_col%d", c)
		pp.surface[key] = append(pp.surface[key], plotter.XY{X: x, Y: col.Temp[0]})
		key = fmt.Sprintf("salt_col%d", c)
		pp.surface[key] = append(pp.surface[key], plotter.XY{X: x, Y: col.Salt[0]})
	}
}

// GeneratePlots writes the PNG files and returns how many were produced.
func (pp *ProfilePlotter) GeneratePlots() (int, error) {
	pp.mu.Lock()
	defer pp.mu.Unlock()

	if pp.outputDir == "" {
		return 0, fmt.Errorf("no output directory configured")
	}
	if len(pp.cols) == 0 {
		return 0, nil
	}

	count := 0
	if err := pp.plotProfiles(); err != nil {
		return count, err
	}
	count++

	for _, field := range []string{"temp", "salt"} {
		if err := pp.plotSurfaceSeries(field); err != nil {
			return count, err
		}
		count++
	}
	return count, nil
}

// plotProfiles draws the final density profile of every column, depth
// increasing downward.
func (pp *ProfilePlotter) plotProfiles() error {
	p := plot.New()
	p.Title.Text = "Final density profiles"
	p.X.Label.Text = "Density (kg/m³)"
	p.Y.Label.Text = "Depth (m)"
	// Depth grows downward.
	p.Y.Scale = plot.InvertedScale{Normalizer: plot.LinearScale{}}

	colors := profileColors(len(pp.cols))
	for c, col := range pp.cols {
		if c >= len(pp.rho) {
			break
		}
		z := col.InterfaceDepths()
		pts := make(plotter.XYs, 0, col.NumLayers())
		for k := 0; k < col.NumLayers(); k++ {
			pts = append(pts, plotter.XY{X: pp.rho[c][k], Y: 0.5 * (z[k] + z[k+1])})
		}
		line, err := plotter.NewLine(pts)
		if err != nil {
			return err
		}
		line.Color = colors[c]
		line.Width = vg.Points(1)
		p.Add(line)
		p.Legend.Add(fmt.Sprintf("col %d", c), line)
	}

	file := filepath.Join(pp.outputDir, "density_profiles.png")
	return p.Save(8*vg.Inch, 6*vg.Inch, file)
}

// plotSurfaceSeries draws the surface value of one field over the run for
// every column.
func (pp *ProfilePlotter) plotSurfaceSeries(field string) error {
	p := plot.New()
	p.Title.Text = fmt.Sprintf("Surface %s over run", field)
	p.X.Label.Text = "Step"
	p.Y.Label.Text = field

	colors := profileColors(len(pp.cols))
	for c := range pp.cols {
		pts, ok := pp.surface[fmt.Sprintf("%s_col%d", field, c)]
		if !ok || len(pts) == 0 {
			continue
		}
		line, err := plotter.NewLine(pts)
		if err != nil {
			return err
		}
		line.Color = colors[c]
		line.Width = vg.Points(1)
		p.Add(line)
		p.Legend.Add(fmt.Sprintf("col %d", c), line)
	}

	file := filepath.Join(pp.outputDir, fmt.Sprintf("surface_%s.png", field))
	return p.Save(14*vg.Inch, 6*vg.Inch, file)
}

// profileColors returns n distinguishable colors.
func profileColors(n int) []color.Color {
	palette := []color.Color{
		color.RGBA{R: 0x1f, G: 0x77, B: 0xb4, A: 0xff},
		color.RGBA{R: 0xff, G: 0x7f, B: 0x0e, A: 0xff},
		color.RGBA{R: 0x2c, G: 0xa0, B: 0x2c, A: 0xff},
		color.RGBA{R: 0xd6, G: 0x27, B: 0x28, A: 0xff},
		color.RGBA{R: 0x94, G: 0x67, B: 0xbd, A: 0xff},
		color.RGBA{R: 0x8c, G: 0x56, B: 0x4b, A: 0xff},
	}
	out := make([]color.Color, n)
	for i := 0; i < n; i++ {
		out[i] = palette[i%len(palette)]
	}
	return out
}
