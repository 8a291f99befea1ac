package monitor

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/halocline-data/epineutral/internal/column"
	"github.com/halocline-data/epineutral/internal/diag"
	"github.com/halocline-data/epineutral/internal/neutral"
)

func testColumns() ([]*column.Column, [][]float64) {
	cols := []*column.Column{
		{
			Thickness: []float64{10, 10, 10},
			Temp:      []float64{18, 14, 10},
			Salt:      []float64{35, 35.1, 35.2},
			Tracers:   [][]float64{{1, 0.5, 0}},
		},
		{
			Thickness: []float64{10, 10, 10},
			Temp:      []float64{17, 13, 9},
			Salt:      []float64{35, 35.1, 35.2},
			Tracers:   [][]float64{{0.2, 0.1, 0}},
		},
	}
	rho := [][]float64{
		{1025.4, 1026.3, 1027.2},
		{1025.6, 1026.5, 1027.4},
	}
	return cols, rho
}

func TestHandleStateEmpty(t *testing.T) {
	ws := NewWebServer(WebServerConfig{ListenAddr: ":0"})

	rec := httptest.NewRecorder()
	ws.handleState(rec, httptest.NewRequest(http.MethodGet, "/monitor/state", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	var got struct {
		Step    int `json:"step"`
		Columns []struct {
			Layers int     `json:"layers"`
			Depth  float64 `json:"depth"`
		} `json:"columns"`
	}
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&got))
	assert.Equal(t, 0, got.Step)
	assert.Empty(t, got.Columns)
}

func TestHandleState(t *testing.T) {
	ws := NewWebServer(WebServerConfig{ListenAddr: ":0", RunID: "run-1"})
	cols, rho := testColumns()
	ws.Update(cols, rho, 7)

	rec := httptest.NewRecorder()
	ws.handleState(rec, httptest.NewRequest(http.MethodGet, "/monitor/state", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	var got struct {
		Step    int    `json:"step"`
		RunID   string `json:"run_id"`
		Columns []struct {
			Layers int     `json:"layers"`
			Depth  float64 `json:"depth"`
		} `json:"columns"`
	}
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&got))
	assert.Equal(t, 7, got.Step)
	assert.Equal(t, "run-1", got.RunID)
	require.Len(t, got.Columns, 2)
	assert.Equal(t, 3, got.Columns[0].Layers)
	assert.Equal(t, 30.0, got.Columns[0].Depth)
}

func TestHandleProfiles(t *testing.T) {
	ws := NewWebServer(WebServerConfig{ListenAddr: ":0"})
	cols, rho := testColumns()
	ws.Update(cols, rho, 3)

	tests := []struct {
		name       string
		url        string
		wantStatus int
	}{
		{"default density", "/monitor/profiles", http.StatusOK},
		{"temperature", "/monitor/profiles?field=temp", http.StatusOK},
		{"salinity", "/monitor/profiles?field=salt", http.StatusOK},
		{"tracer by index", "/monitor/profiles?field=tracer0", http.StatusOK},
		{"unknown field", "/monitor/profiles?field=vorticity", http.StatusBadRequest},
		{"tracer out of range", "/monitor/profiles?field=tracer5", http.StatusBadRequest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			ws.handleProfiles(rec, httptest.NewRequest(http.MethodGet, tt.url, nil))
			require.Equal(t, tt.wantStatus, rec.Code)
			if tt.wantStatus == http.StatusOK {
				assert.Contains(t, rec.Header().Get("Content-Type"), "text/html")
				assert.True(t, strings.Contains(rec.Body.String(), "echarts"), "response does not embed a chart")
			}
		})
	}
}

func TestHandleProfilesNoState(t *testing.T) {
	ws := NewWebServer(WebServerConfig{ListenAddr: ":0"})

	rec := httptest.NewRecorder()
	ws.handleProfiles(rec, httptest.NewRequest(http.MethodGet, "/monitor/profiles", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestHandleCountersWithStore(t *testing.T) {
	store, err := diag.Open(filepath.Join(t.TempDir(), "diag.db"))
	require.NoError(t, err)
	defer store.Close()

	runID, err := store.BeginRun(diag.RunInfo{Columns: 2, Order: "linear"})
	require.NoError(t, err)
	require.NoError(t, store.RecordStep(runID, 0, &neutral.Diagnostics{Sublayers: 6, RootFinds: 5, Snaps: 3}, false))
	require.NoError(t, store.RecordStep(runID, 1, &neutral.Diagnostics{Sublayers: 4, RootFinds: 2, Snaps: 4}, false))

	ws := NewWebServer(WebServerConfig{ListenAddr: ":0", Store: store, RunID: runID})

	rec := httptest.NewRecorder()
	ws.handleCounters(rec, httptest.NewRequest(http.MethodGet, "/monitor/counters", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "echarts")
}

func TestHandleFluxesWithStore(t *testing.T) {
	store, err := diag.Open(filepath.Join(t.TempDir(), "diag.db"))
	require.NoError(t, err)
	defer store.Close()

	runID, err := store.BeginRun(diag.RunInfo{Columns: 2, Order: "linear"})
	require.NoError(t, err)
	d := &neutral.Diagnostics{
		Sublayers: 2,
		Fluxes: []neutral.FluxSample{
			{Face: 0, Column: 0, Tracer: 0, Layer: 0, Delta: -0.5},
			{Face: 0, Column: 1, Tracer: 0, Layer: 0, Delta: 0.5},
		},
	}
	require.NoError(t, store.RecordStep(runID, 0, d, true))

	ws := NewWebServer(WebServerConfig{ListenAddr: ":0", Store: store, RunID: runID})
	ws.Update(nil, nil, 0)

	rec := httptest.NewRecorder()
	ws.handleFluxes(rec, httptest.NewRequest(http.MethodGet, "/monitor/fluxes?step=0", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "echarts")

	// A step with no samples reports not found.
	rec = httptest.NewRecorder()
	ws.handleFluxes(rec, httptest.NewRequest(http.MethodGet, "/monitor/fluxes?step=9", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestProfilePlotter(t *testing.T) {
	pp := NewProfilePlotter()
	dir := t.TempDir()
	require.NoError(t, pp.Start(dir))

	cols, rho := testColumns()
	for step := 0; step < 5; step++ {
		pp.Sample(step, cols, rho)
	}

	n, err := pp.GeneratePlots()
	require.NoError(t, err)
	assert.Equal(t, 3, n)

	for _, name := range []string{"density_profiles.png", "surface_temp.png", "surface_salt.png"} {
		assert.FileExists(t, filepath.Join(dir, name))
	}
}

func TestProfilePlotterNoSamples(t *testing.T) {
	pp := NewProfilePlotter()
	require.NoError(t, pp.Start(t.TempDir()))

	n, err := pp.GeneratePlots()
	require.NoError(t, err)
	assert.Zero(t, n)
}
