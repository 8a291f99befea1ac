package mld

import (
	"testing"

	"github.com/halocline-data/epineutral/internal/column"
	"github.com/halocline-data/epineutral/internal/eos"
)

func TestDensityThreshold(t *testing.T) {
	e := eos.DefaultLinear()

	// Uniform 18 degC over the top three 10 m layers, a sharp 4 degC drop
	// below: density crosses the 0.03 kg/m^3 threshold at layer 3.
	c := &column.Column{
		Thickness: []float64{10, 10, 10, 10, 10},
		Temp:      []float64{18, 18, 17.999, 14, 10},
		Salt:      []float64{35, 35, 35, 35, 35},
	}

	d := DefaultDensityThreshold()
	if got := d.MixedLayerDepth(c, e); got != 30 {
		t.Errorf("MixedLayerDepth = %f, want 30", got)
	}

	// A looser threshold reaches deeper.
	loose := &DensityThreshold{DeltaRho: 1.0}
	if got := loose.MixedLayerDepth(c, e); got != 40 {
		t.Errorf("loose MixedLayerDepth = %f, want 40", got)
	}
}

func TestDensityThresholdWholeColumn(t *testing.T) {
	e := eos.DefaultLinear()
	c := &column.Column{
		Thickness: []float64{10, 10},
		Temp:      []float64{18, 18},
		Salt:      []float64{35, 35},
	}
	if got := DefaultDensityThreshold().MixedLayerDepth(c, e); got != 20 {
		t.Errorf("unstratified column MixedLayerDepth = %f, want full depth 20", got)
	}
}

func TestDensityThresholdEmptyColumn(t *testing.T) {
	e := eos.DefaultLinear()
	if got := DefaultDensityThreshold().MixedLayerDepth(&column.Column{}, e); got != 0 {
		t.Errorf("empty column MixedLayerDepth = %f, want 0", got)
	}
}

func TestFixed(t *testing.T) {
	f := &Fixed{Depth: 42}
	if got := f.MixedLayerDepth(&column.Column{}, eos.DefaultLinear()); got != 42 {
		t.Errorf("Fixed MixedLayerDepth = %f, want 42", got)
	}
}

func TestLayersWithin(t *testing.T) {
	thickness := []float64{10, 10, 10, 10}

	tests := []struct {
		name  string
		depth float64
		want  int
	}{
		{"zero depth", 0, 0},
		{"shallower than half the first layer", 4, 0},
		{"past half the first layer", 6, 1},
		{"exactly one layer", 10, 1},
		{"past half the third layer", 26, 3},
		{"deeper than the column", 100, 4},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := LayersWithin(thickness, tt.depth); got != tt.want {
				t.Errorf("LayersWithin(%f) = %d, want %d", tt.depth, got, tt.want)
			}
		})
	}
}

func TestLayersWithinUnevenLayers(t *testing.T) {
	thickness := []float64{2, 6, 20}
	// Interfaces at 2, 8, 28; midpoints at 1, 5, 18.
	if got := LayersWithin(thickness, 10); got != 2 {
		t.Errorf("LayersWithin(10) = %d, want 2", got)
	}
	if got := LayersWithin(thickness, 20); got != 3 {
		t.Errorf("LayersWithin(20) = %d, want 3", got)
	}
}
