// Package main provides a reporting tool for diffusion diagnostics
// databases. It summarises a run's sweep counters, optionally exports the
// summary as JSON, and can render an HTML chart of the counters over the
// run.
package main

import (
	"bytes"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"strconv"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/opts"
	_ "modernc.org/sqlite"

	"github.com/halocline-data/epineutral/internal/diag"
)

// Config holds the report tool configuration.
type Config struct {
	DBFile     string
	RunID      string
	OutputJSON string
	OutputHTML string
}

// RunReport is the summary written for one run.
type RunReport struct {
	RunID           string  `json:"run_id"`
	Steps           int     `json:"steps"`
	TotalSublayers  int     `json:"total_sublayers"`
	TotalRootFinds  int     `json:"total_root_finds"`
	TotalSnaps      int     `json:"total_snaps"`
	TruncatedSweeps int     `json:"truncated_sweeps"`
	LimiterHits     int     `json:"limiter_hits"`
	UnstableCells   int     `json:"unstable_cells"`
	AvgSublayers    float64 `json:"avg_sublayers_per_step"`
	SnapRatio       float64 `json:"snap_ratio"` // snaps / (snaps + root finds)
}

func main() {
	cfg := parseFlags()

	if _, err := os.Stat(cfg.DBFile); os.IsNotExist(err) {
		log.Fatalf("diagnostics database not found: %s", cfg.DBFile)
	}

	store, err := diag.Open(cfg.DBFile)
	if err != nil {
		log.Fatalf("failed to open diagnostics database: %v", err)
	}
	defer store.Close()

	runID := cfg.RunID
	if runID == "" {
		runID, err = store.LatestRun()
		if err != nil {
			log.Fatalf("no runs recorded in %s", cfg.DBFile)
		}
	}

	steps, err := store.StepSummaries(runID)
	if err != nil {
		log.Fatalf("failed to query steps: %v", err)
	}
	if len(steps) == 0 {
		log.Fatalf("run %s has no recorded steps", runID)
	}

	report := buildReport(runID, steps)
	printReport(report)

	if cfg.OutputJSON != "" {
		if err := exportJSON(report, cfg.OutputJSON); err != nil {
			log.Printf("Warning: failed to export JSON: %v", err)
		} else {
			log.Printf("Report exported to: %s", cfg.OutputJSON)
		}
	}

	if cfg.OutputHTML != "" {
		if err := exportHTML(runID, steps, cfg.OutputHTML); err != nil {
			log.Printf("Warning: failed to render HTML report: %v", err)
		} else {
			log.Printf("Chart written to: %s", cfg.OutputHTML)
		}
	}
}

func parseFlags() Config {
	cfg := Config{}

	flag.StringVar(&cfg.DBFile, "db", "diagnostics.db", "Diagnostics database file")
	flag.StringVar(&cfg.RunID, "run", "", "Run ID to report on (default: latest run)")
	flag.StringVar(&cfg.OutputJSON, "json", "", "Output JSON filename (e.g., report.json)")
	flag.StringVar(&cfg.OutputHTML, "html", "", "Output HTML chart filename (e.g., report.html)")

	flag.Parse()

	return cfg
}

func buildReport(runID string, steps []diag.StepSummary) *RunReport {
	r := &RunReport{RunID: runID, Steps: len(steps)}
	for _, st := range steps {
		r.TotalSublayers += st.Sublayers
		r.TotalRootFinds += st.RootFinds
		r.TotalSnaps += st.Snaps
		r.TruncatedSweeps += st.TruncatedSweeps
		r.LimiterHits += st.LimiterHits
		r.UnstableCells += st.UnstableCells
	}
	r.AvgSublayers = float64(r.TotalSublayers) / float64(len(steps))
	if total := r.TotalSnaps + r.TotalRootFinds; total > 0 {
		r.SnapRatio = float64(r.TotalSnaps) / float64(total)
	}
	return r
}

func printReport(r *RunReport) {
	fmt.Println("\n=== Diffusion Run Report ===")
	fmt.Printf("Run: %s\n", r.RunID)
	fmt.Printf("Steps: %d\n", r.Steps)

	fmt.Println("\n--- Sweep Counters ---")
	fmt.Printf("Sublayers: %d (%.1f per step)\n", r.TotalSublayers, r.AvgSublayers)
	fmt.Printf("Root finds: %d\n", r.TotalRootFinds)
	fmt.Printf("Snaps: %d (%.1f%% of interface placements)\n", r.TotalSnaps, r.SnapRatio*100)
	fmt.Printf("Truncated sweeps: %d\n", r.TruncatedSweeps)

	fmt.Println("\n--- Health ---")
	fmt.Printf("Limiter hits: %d\n", r.LimiterHits)
	fmt.Printf("Unstable cells: %d\n", r.UnstableCells)
}

func exportJSON(r *RunReport, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	encoder := json.NewEncoder(f)
	encoder.SetIndent("", "  ")
	return encoder.Encode(r)
}

// exportHTML renders the counters over the run as a standalone HTML line
// chart.
func exportHTML(runID string, steps []diag.StepSummary, path string) error {
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
		charts.WithInitializationOpts(opts.Initialization{PageTitle: "Run report", Width: "1100px", Height: "650px"}),
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
		return err
	}
	return os.WriteFile(path, buf.Bytes(), 0644)
}
