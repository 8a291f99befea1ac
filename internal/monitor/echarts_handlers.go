package monitor

import (
	"bytes"
	"fmt"
	"net/http"
	"strconv"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/opts"
)

// handleProfiles renders a quick HTML line chart of per-column vertical
// profiles using go-echarts. Query params:
//   - field (optional; one of density, temp, salt, tracerN; default density)
func (ws *WebServer) handleProfiles(w http.ResponseWriter, r *http.Request) {
	ws.mu.RLock()
	defer ws.mu.RUnlock()

	if len(ws.cols) == 0 {
		ws.writeJSONError(w, http.StatusNotFound, "no simulation state published yet")
		return
	}

	field := r.URL.Query().Get("field")
	if field == "" {
		field = "density"
	}

	line := charts.NewLine()
	line.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{PageTitle: "Column profiles", Theme: "dark", Width: "1100px", Height: "650px"}),
		charts.WithTitleOpts(opts.Title{Title: "Column profiles", Subtitle: fmt.Sprintf("field=%s step=%d", field, ws.step)}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true)}),
		charts.WithXAxisOpts(opts.XAxis{Name: "Depth (m)", NameLocation: "middle", NameGap: 25}),
		charts.WithYAxisOpts(opts.YAxis{Name: field, Scale: opts.Bool(true)}),
	)

	// All columns share one x axis; use the first column's layer midpoints
	// as the axis labels (idealised runs have aligned total depths).
	var axis []string
	z := ws.cols[0].InterfaceDepths()
	for k := 0; k < ws.cols[0].NumLayers(); k++ {
		axis = append(axis, fmt.Sprintf("%.0f", 0.5*(z[k]+z[k+1])))
	}
	line.SetXAxis(axis)

	for c := range ws.cols {
		values, err := ws.fieldValues(c, field)
		if err != nil {
			ws.writeJSONError(w, http.StatusBadRequest, err.Error())
			return
		}
		data := make([]opts.LineData, 0, len(values))
		for _, v := range values {
			data = append(data, opts.LineData{Value: v})
		}
		line.AddSeries(fmt.Sprintf("col %d", c), data)
	}

	var buf bytes.Buffer
	if err := line.Render(&buf); err != nil {
		ws.writeJSONError(w, http.StatusInternalServerError, fmt.Sprintf("failed to render chart: %v", err))
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = w.Write(buf.Bytes())
}

// fieldValues resolves a profile field name for column index c.
// Callers hold ws.mu.
func (ws *WebServer) fieldValues(c int, field string) ([]float64, error) {
	col := ws.cols[c]
	switch field {
	case "density":
		if c < len(ws.rho) {
			return ws.rho[c], nil
		}
		return nil, fmt.Errorf("no density published for column %d", c)
	case "temp":
		return col.Temp, nil
	case "salt":
		return col.Salt, nil
	}
	var idx int
	if n, err := fmt.Sscanf(field, "tracer%d", &idx); err == nil && n == 1 && idx >= 0 && idx < len(col.Tracers) {
		return col.Tracers[idx], nil
	}
	return nil, fmt.Errorf("unknown field %q (want density, temp, salt or tracerN)", field)
}

// handleFluxes renders a scatter of recorded per-face, per-layer flux
// samples for one step, coloured by magnitude. Query params:
//   - step (optional; default latest published step)
func (ws *WebServer) handleFluxes(w http.ResponseWriter, r *http.Request) {
	ws.mu.RLock()
	runID := ws.runID
	step := ws.step
	ws.mu.RUnlock()

	if st := r.URL.Query().Get("step"); st != "" {
		if v, err := strconv.Atoi(st); err == nil && v >= 0 {
			step = v
		}
	}

	if runID == "" {
		var err error
		runID, err = ws.store.LatestRun()
		if err != nil {
			ws.writeJSONError(w, http.StatusNotFound, "no runs recorded")
			return
		}
	}

	fluxes, err := ws.store.FluxesForStep(runID, step)
	if err != nil {
		ws.writeJSONError(w, http.StatusInternalServerError, fmt.Sprintf("failed to query fluxes: %v", err))
		return
	}
	if len(fluxes) == 0 {
		ws.writeJSONError(w, http.StatusNotFound, fmt.Sprintf("no flux samples for step %d", step))
		return
	}

	data := make([]opts.ScatterData, 0, len(fluxes))
	maxAbs := 0.0
	for _, f := range fluxes {
		d := f.Delta
		if d < 0 {
			d = -d
		}
		if d > maxAbs {
			maxAbs = d
		}
		data = append(data, opts.ScatterData{Value: []interface{}{f.Column, f.Layer, f.Delta}})
	}
	if maxAbs == 0 {
		maxAbs = 1
	}

	scatter := charts.NewScatter()
	scatter.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{PageTitle: "Face fluxes", Theme: "dark", Width: "900px", Height: "650px"}),
		charts.WithTitleOpts(opts.Title{Title: "Per-layer flux contributions", Subtitle: fmt.Sprintf("run=%s step=%d samples=%d", runID, step, len(data))}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true)}),
		charts.WithXAxisOpts(opts.XAxis{Name: "Column", NameLocation: "middle", NameGap: 25}),
		charts.WithYAxisOpts(opts.YAxis{Name: "Layer"}),
		charts.WithVisualMapOpts(opts.VisualMap{
			Show:       opts.Bool(true),
			Calculable: opts.Bool(true),
			Min:        float32(-maxAbs),
			Max:        float32(maxAbs),
			Dimension:  "2",
			InRange:    &opts.VisualMapInRange{Color: []string{"#313695", "#74add1", "#ffffbf", "#f46d43", "#a50026"}},
		}),
	)
	scatter.AddSeries("flux", data, charts.WithScatterChartOpts(opts.ScatterChart{SymbolSize: 12}))

	var buf bytes.Buffer
	if err := scatter.Render(&buf); err != nil {
		ws.writeJSONError(w, http.StatusInternalServerError, fmt.Sprintf("failed to render chart: %v", err))
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = w.Write(buf.Bytes())
}

// handleCounters renders the per-step sweep counters of the current run as
// a line chart.
func (ws *WebServer) handleCounters(w http.ResponseWriter, r *http.Request) {
	ws.mu.RLock()
	runID := ws.runID
	ws.mu.RUnlock()

	if runID == "" {
		var err error
		runID, err = ws.store.LatestRun()
		if err != nil {
			ws.writeJSONError(w, http.StatusNotFound, "no runs recorded")
			return
		}
	}

	steps, err := ws.store.StepSummaries(runID)
	if err != nil {
		ws.writeJSONError(w, http.StatusInternalServerError, fmt.Sprintf("failed to query steps: %v", err))
		return
	}
	if len(steps) == 0 {
		ws.writeJSONError(w, http.StatusNotFound, "no steps recorded")
		return
	}

	var axis []string
	sublayers := make([]opts.LineData, 0, len(steps))
	rootFinds := make([]opts.LineData, 0, len(steps))
	snaps := make([]opts.LineData, 0, len(steps))
	limiter := make([]opts.LineData, 0, len(steps))
	for _, st := range steps {
		axis = append(axis, strconv.Itoa(st.Step))
		sublayers = append(sublayers, opts.LineData{Value: st.Sublayers})
		rootFinds = append(rootFinds, opts.LineData{Value: st.RootFinds})
		snaps = append(snaps, opts.LineData{Value: st.Snaps})
		limiter = append(limiter, opts.LineData{Value: st.LimiterHits})
	}

	line := charts.NewLine()
	line.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{PageTitle: "Sweep counters", Theme: "dark", Width: "1100px", Height: "650px"}),
		charts.WithTitleOpts(opts.Title{Title: "Sweep counters per step", Subtitle: fmt.Sprintf("run=%s", runID)}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true)}),
		charts.WithXAxisOpts(opts.XAxis{Name: "Step", NameLocation: "middle", NameGap: 25}),
	)
	line.SetXAxis(axis)
	line.AddSeries("sublayers", sublayers)
	line.AddSeries("root finds", rootFinds)
	line.AddSeries("snaps", snaps)
	line.AddSeries("limiter hits", limiter)

	var buf bytes.Buffer
	if err := line.Render(&buf); err != nil {
		ws.writeJSONError(w, http.StatusInternalServerError, fmt.Sprintf("failed to render chart: %v", err))
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = w.Write(buf.Bytes())
}
