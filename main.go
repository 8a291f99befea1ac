// epineutral runs an idealised multi-column lateral diffusion simulation:
// a row of stratified columns with mismatched layer grids, mixed along
// neutral density surfaces step by step. Diagnostics go to a SQLite
// database; an optional web monitor serves live charts while the run is
// in progress.
package main

import (
	"context"
	"flag"
	"log"
	"math"
	"os/signal"
	"sync"
	"syscall"

	_ "modernc.org/sqlite"

	"github.com/halocline-data/epineutral/internal/blmix"
	"github.com/halocline-data/epineutral/internal/column"
	"github.com/halocline-data/epineutral/internal/config"
	"github.com/halocline-data/epineutral/internal/diag"
	"github.com/halocline-data/epineutral/internal/eos"
	"github.com/halocline-data/epineutral/internal/geom"
	"github.com/halocline-data/epineutral/internal/mld"
	"github.com/halocline-data/epineutral/internal/monitor"
	"github.com/halocline-data/epineutral/internal/neutral"
	"github.com/halocline-data/epineutral/internal/units"
)

var (
	numColumns  = flag.Int("columns", 8, "Number of columns in the row")
	numLayers   = flag.Int("layers", 20, "Base number of layers per column")
	steps       = flag.Int("steps", 240, "Number of timesteps to run")
	dx          = flag.Float64("dx", 5000, "Distance between column centers (m)")
	kappaFlag   = flag.Float64("kappa", 0, "Interior diffusivity; 0 uses the config default")
	kappaUnits  = flag.String("kappa-units", units.M2PS, "Units of -kappa (m2s or cm2s)")
	orderFlag   = flag.String("order", "", "Reconstruction order (constant, linear, parabolic); empty uses the config default")
	configPath  = flag.String("config", "", "Optional JSON run configuration file")
	dbFile      = flag.String("db", "diagnostics.db", "Diagnostics database file")
	recordFlux  = flag.Bool("record-fluxes", false, "Persist per-face flux samples (large)")
	plotDir     = flag.String("plots", "", "Directory for PNG plots; empty disables plotting")
	listen      = flag.String("listen", "", "Monitor server listen address (e.g. :8080); empty disables the monitor")
	logInterval = flag.Int("log-interval", 24, "Steps between progress log lines")
)

func main() {
	flag.Parse()

	cfg := config.EmptyRunConfig()
	if *configPath != "" {
		var err error
		cfg, err = config.LoadRunConfig(*configPath)
		if err != nil {
			log.Fatalf("failed to load run config: %v", err)
		}
	}

	// Flags override the config file.
	if *kappaFlag > 0 {
		if !units.IsValidDiffusivity(*kappaUnits) {
			log.Fatalf("unknown diffusivity units %q (want one of %v)", *kappaUnits, units.ValidDiffusivityUnits)
		}
		kappa := units.ConvertDiffusivity(*kappaFlag, *kappaUnits)
		cfg.Kappa = &kappa
	}
	if *orderFlag != "" {
		if _, err := config.ParseOrder(*orderFlag); err != nil {
			log.Fatal(err)
		}
		cfg.ReconstructionOrder = orderFlag
	}

	interior := neutral.Config{
		Order:       cfg.GetOrder(),
		Mode:        cfg.GetCoefficientMode(),
		RefPressure: cfg.GetReferencePressure(),
		Root:        cfg.GetRootFinder(),
		Kappa:       cfg.GetKappa(),
		Dt:          cfg.GetDt(),
	}

	cols := syntheticBasin(*numColumns, *numLayers)
	grid := geom.Uniform(*numColumns, *dx, *dx)
	e := eos.DefaultLinear()

	var boundary *blmix.Scheme
	if cfg.GetBoundaryLayer() {
		boundary = &blmix.Scheme{
			Kappa:  cfg.GetBoundaryKappa(),
			Dt:     cfg.GetDt(),
			Depths: &mld.DensityThreshold{DeltaRho: cfg.GetMLDDensityDelta()},
		}
	}

	store, err := diag.Open(*dbFile)
	if err != nil {
		log.Fatalf("failed to open diagnostics database: %v", err)
	}
	defer store.Close()

	runID, err := store.BeginRun(diag.RunInfo{
		Columns:         *numColumns,
		Order:           interior.Order.String(),
		CoefficientMode: interior.Mode.String(),
		RootFindMethod:  interior.Root.Method.String(),
		Kappa:           interior.Kappa,
		Dt:              interior.Dt,
	})
	if err != nil {
		log.Fatalf("failed to record run: %v", err)
	}
	log.Printf("started run %s: %d columns, %d steps, order=%s kappa=%.0f dt=%.0f",
		runID, *numColumns, *steps, interior.Order, interior.Kappa, interior.Dt)

	var plotter *monitor.ProfilePlotter
	if *plotDir != "" {
		plotter = monitor.NewProfilePlotter()
		if err := plotter.Start(*plotDir); err != nil {
			log.Fatalf("failed to start plotter: %v", err)
		}
	}

	var wg sync.WaitGroup
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	var ws *monitor.WebServer
	if *listen != "" {
		ws = monitor.NewWebServer(monitor.WebServerConfig{
			ListenAddr: *listen,
			Store:      store,
			RunID:      runID,
		})
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := ws.Start(ctx); err != nil {
				log.Printf("monitor server error: %v", err)
			}
			log.Print("monitor server routine terminated")
		}()
	}

	// Step loop. Each step is interior mixing followed by the optional
	// boundary-layer pass; both snapshot the before state internally.
run:
	for step := 0; step < *steps; step++ {
		select {
		case <-ctx.Done():
			log.Printf("interrupted at step %d", step)
			break run
		default:
		}

		next, d := neutral.Diffuse(cols, grid, e, interior)
		if boundary != nil {
			next, _ = boundary.Apply(next, grid, e)
		}
		cols = next

		if err := store.RecordStep(runID, step, d, *recordFlux); err != nil {
			log.Printf("failed to record step %d: %v", step, err)
		}

		rho := densityField(cols, e, interior)
		if ws != nil {
			ws.Update(cols, rho, step)
		}
		if plotter != nil {
			plotter.Sample(step, cols, rho)
		}

		if *logInterval > 0 && step%*logInterval == 0 {
			log.Printf("step %d: sublayers=%d root_finds=%d snaps=%d limiter_hits=%d unstable=%d",
				step, d.Sublayers, d.RootFinds, d.Snaps, d.LimiterHits, d.UnstableCells)
		}
	}

	if plotter != nil {
		n, err := plotter.GeneratePlots()
		if err != nil {
			log.Printf("failed to generate plots: %v", err)
		} else {
			log.Printf("wrote %d plots to %s", n, *plotDir)
		}
	}

	stop()
	wg.Wait()
	log.Printf("run %s complete", runID)
}

// densityField evaluates the per-layer cell-average density of every
// column for monitoring, using the same pressure convention as the
// interior scheme.
func densityField(cols []*column.Column, e eos.EOS, cfg neutral.Config) [][]float64 {
	out := make([][]float64, len(cols))
	for c, col := range cols {
		z := col.InterfaceDepths()
		out[c] = make([]float64, col.NumLayers())
		for k := 0; k < col.NumLayers(); k++ {
			pres := cfg.RefPressure
			if cfg.Mode == eos.Neutral {
				pres = eos.PressureAtDepth(0.5 * (z[k] + z[k+1]))
			}
			out[c][k] = e.Density(col.Temp[k], col.Salt[k], pres)
		}
	}
	return out
}

// syntheticBasin builds a row of stratified columns with a warm fresh pool
// at the left end and deliberately mismatched layer grids, so density
// surfaces cut across layer boundaries from the first step. Every column
// carries one passive tracer, a patch released in the left quarter of the
// row.
func syntheticBasin(n, layers int) []*column.Column {
	cols := make([]*column.Column, n)
	for c := 0; c < n; c++ {
		// Alternate layer counts so adjacent columns never share a grid.
		nl := layers
		if c%2 == 1 {
			nl = layers + layers/4
		}

		col := &column.Column{
			Thickness: make([]float64, nl),
			Temp:      make([]float64, nl),
			Salt:      make([]float64, nl),
			Tracers:   [][]float64{make([]float64, nl)},
		}

		// Layers thicken with depth, total depth 400 m everywhere.
		total := 400.0
		sum := 0.0
		for k := 0; k < nl; k++ {
			col.Thickness[k] = 1 + float64(k)
			sum += col.Thickness[k]
		}
		for k := 0; k < nl; k++ {
			col.Thickness[k] *= total / sum
		}

		// Exponential thermocline, warmer and fresher toward the left.
		surfT := 18.0 + 4.0*math.Exp(-float64(c)/2.0)
		surfS := 35.0 - 0.5*math.Exp(-float64(c)/2.0)
		z := 0.0
		for k := 0; k < nl; k++ {
			mid := z + 0.5*col.Thickness[k]
			col.Temp[k] = 4.0 + (surfT-4.0)*math.Exp(-mid/120.0)
			col.Salt[k] = surfS + 0.3*(1.0-math.Exp(-mid/200.0))
			z += col.Thickness[k]
		}

		// Passive tracer patch in the upper thermocline of the left quarter.
		if c < max(1, n/4) {
			z = 0.0
			for k := 0; k < nl; k++ {
				mid := z + 0.5*col.Thickness[k]
				if mid > 50 && mid < 150 {
					col.Tracers[0][k] = 1.0
				}
				z += col.Thickness[k]
			}
		}
		cols[c] = col
	}
	return cols
}
