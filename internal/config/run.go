// Package config loads run configuration for the diffusion scheme from
// JSON files. Fields are pointers so partial configs are safe: anything
// omitted falls back to the defaults supplied by the Get* accessors.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/halocline-data/epineutral/internal/column"
	"github.com/halocline-data/epineutral/internal/eos"
	"github.com/halocline-data/epineutral/internal/neutral"
)

// RunConfig represents the recognized tuning options of a diffusion run.
// The schema matches the CLI flags so the same JSON can seed both.
type RunConfig struct {
	// Interior scheme params
	ReconstructionOrder *string  `json:"reconstruction_order,omitempty"` // constant | linear | parabolic
	CoefficientMode     *string  `json:"coefficient_mode,omitempty"`     // neutral | reference-pressure
	ReferencePressure   *float64 `json:"reference_pressure,omitempty"`   // dbar
	RootFindMethod      *string  `json:"rootfind_method,omitempty"`      // closed-form-linear | closed-form-parabolic | bisection | newton
	RootFindMaxIter     *int     `json:"rootfind_max_iter,omitempty"`
	RootFindTolerance   *float64 `json:"rootfind_tolerance,omitempty"`
	Kappa               *float64 `json:"kappa,omitempty"` // m^2/s
	Dt                  *float64 `json:"dt,omitempty"`    // s

	// Boundary-layer scheme params
	BoundaryLayer   *bool    `json:"boundary_layer,omitempty"`
	BoundaryKappa   *float64 `json:"boundary_kappa,omitempty"`    // m^2/s
	MLDDensityDelta *float64 `json:"mld_density_delta,omitempty"` // kg/m^3
}

// EmptyRunConfig returns a RunConfig with all fields set to nil.
func EmptyRunConfig() *RunConfig {
	return &RunConfig{}
}

// LoadRunConfig loads a RunConfig from a JSON file. The file is validated
// to ensure it has a .json extension; fields omitted from the file retain
// their default values.
func LoadRunConfig(path string) (*RunConfig, error) {
	cleanPath := filepath.Clean(path)
	if ext := filepath.Ext(cleanPath); ext != ".json" {
		return nil, fmt.Errorf("config file must have .json extension, got %q", ext)
	}

	data, err := os.ReadFile(cleanPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg := EmptyRunConfig()
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config JSON: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// Validate checks that the configuration values are valid.
func (c *RunConfig) Validate() error {
	if c.ReconstructionOrder != nil {
		if _, err := ParseOrder(*c.ReconstructionOrder); err != nil {
			return err
		}
	}
	if c.CoefficientMode != nil {
		if _, err := ParseCoefficientMode(*c.CoefficientMode); err != nil {
			return err
		}
	}
	if c.RootFindMethod != nil {
		if _, err := ParseRootMethod(*c.RootFindMethod); err != nil {
			return err
		}
	}
	if c.RootFindMaxIter != nil && *c.RootFindMaxIter <= 0 {
		return fmt.Errorf("rootfind_max_iter must be positive, got %d", *c.RootFindMaxIter)
	}
	if c.RootFindTolerance != nil && *c.RootFindTolerance <= 0 {
		return fmt.Errorf("rootfind_tolerance must be positive, got %g", *c.RootFindTolerance)
	}
	if c.Kappa != nil && *c.Kappa < 0 {
		return fmt.Errorf("kappa must be non-negative, got %g", *c.Kappa)
	}
	if c.Dt != nil && *c.Dt <= 0 {
		return fmt.Errorf("dt must be positive, got %g", *c.Dt)
	}
	if c.MLDDensityDelta != nil && *c.MLDDensityDelta <= 0 {
		return fmt.Errorf("mld_density_delta must be positive, got %g", *c.MLDDensityDelta)
	}
	return nil
}

// GetOrder returns the reconstruction order or the default (parabolic).
func (c *RunConfig) GetOrder() column.Order {
	if c.ReconstructionOrder == nil {
		return column.Parabolic
	}
	o, _ := ParseOrder(*c.ReconstructionOrder)
	return o
}

// GetCoefficientMode returns the coefficient mode or the default (neutral).
func (c *RunConfig) GetCoefficientMode() eos.CoefficientMode {
	if c.CoefficientMode == nil {
		return eos.Neutral
	}
	m, _ := ParseCoefficientMode(*c.CoefficientMode)
	return m
}

// GetReferencePressure returns the reference pressure or the default (0 dbar).
func (c *RunConfig) GetReferencePressure() float64 {
	if c.ReferencePressure == nil {
		return 0
	}
	return *c.ReferencePressure
}

// GetRootFinder returns the configured root finder.
func (c *RunConfig) GetRootFinder() neutral.RootFinder {
	rf := neutral.DefaultRootFinder()
	if c.RootFindMethod != nil {
		m, _ := ParseRootMethod(*c.RootFindMethod)
		rf.Method = m
	}
	if c.RootFindMaxIter != nil {
		rf.MaxIter = *c.RootFindMaxIter
	}
	if c.RootFindTolerance != nil {
		rf.Tol = *c.RootFindTolerance
	}
	return rf
}

// GetKappa returns the interior diffusivity or the default (1000 m^2/s).
func (c *RunConfig) GetKappa() float64 {
	if c.Kappa == nil {
		return 1000.0
	}
	return *c.Kappa
}

// GetDt returns the timestep or the default (3600 s).
func (c *RunConfig) GetDt() float64 {
	if c.Dt == nil {
		return 3600.0
	}
	return *c.Dt
}

// GetBoundaryLayer returns whether the boundary-layer scheme runs
// (default true).
func (c *RunConfig) GetBoundaryLayer() bool {
	if c.BoundaryLayer == nil {
		return true
	}
	return *c.BoundaryLayer
}

// GetBoundaryKappa returns the boundary-layer diffusivity; it defaults to
// the interior diffusivity.
func (c *RunConfig) GetBoundaryKappa() float64 {
	if c.BoundaryKappa == nil {
		return c.GetKappa()
	}
	return *c.BoundaryKappa
}

// GetMLDDensityDelta returns the mixed-layer density threshold or the
// default (0.03 kg/m^3).
func (c *RunConfig) GetMLDDensityDelta() float64 {
	if c.MLDDensityDelta == nil {
		return 0.03
	}
	return *c.MLDDensityDelta
}

// ParseOrder parses a reconstruction order name.
func ParseOrder(s string) (column.Order, error) {
	switch s {
	case "constant":
		return column.Constant, nil
	case "linear":
		return column.Linear, nil
	case "parabolic":
		return column.Parabolic, nil
	default:
		return 0, fmt.Errorf("unknown reconstruction order %q (want constant, linear or parabolic)", s)
	}
}

// ParseCoefficientMode parses a density-coefficient mode name.
func ParseCoefficientMode(s string) (eos.CoefficientMode, error) {
	switch s {
	case "neutral":
		return eos.Neutral, nil
	case "reference-pressure":
		return eos.ReferencePressure, nil
	default:
		return 0, fmt.Errorf("unknown coefficient mode %q (want neutral or reference-pressure)", s)
	}
}

// ParseRootMethod parses a root-find method name.
func ParseRootMethod(s string) (neutral.RootMethod, error) {
	switch s {
	case "closed-form-linear":
		return neutral.ClosedFormLinear, nil
	case "closed-form-parabolic":
		return neutral.ClosedFormParabolic, nil
	case "bisection":
		return neutral.Bisection, nil
	case "newton":
		return neutral.Newton, nil
	default:
		return 0, fmt.Errorf("unknown root-find method %q", s)
	}
}
