// Package eos provides the equation-of-state collaborators used by the
// epineutral diffusion core: evaluation of in-situ density and of the
// thermal expansion / haline contraction coefficients from temperature,
// salinity and pressure.
package eos

import "math"

// CoefficientMode selects the pressure at which density coefficients are
// evaluated when comparing water from two columns.
type CoefficientMode int

const (
	// Neutral evaluates coefficients at the midpoint pressure of the two
	// parcels being compared.
	Neutral CoefficientMode = iota

	// ReferencePressure evaluates coefficients at a fixed reference
	// pressure (isopycnal coordinates).
	ReferencePressure
)

// String returns the config-file spelling of the mode.
func (m CoefficientMode) String() string {
	switch m {
	case Neutral:
		return "neutral"
	case ReferencePressure:
		return "reference-pressure"
	default:
		return "unknown"
	}
}

// EOS evaluates seawater density and its first derivatives. Temperature is
// in degrees C, salinity in psu, pressure in dbar, density in kg/m^3.
type EOS interface {
	// Density returns in-situ density at the given state.
	Density(temp, salt, pres float64) float64

	// Coefficients returns the thermal expansion coefficient alpha
	// (-drho/dT, positive for water that expands when warmed) and the
	// haline contraction coefficient beta (drho/dS).
	Coefficients(temp, salt, pres float64) (alpha, beta float64)
}

// Linear is a linear equation of state with an optional compressibility
// term, adequate for idealised experiments and tests. Density varies
// linearly with temperature, salinity and pressure about a reference state.
type Linear struct {
	Rho0   float64 // reference density (kg/m^3)
	TRef   float64 // reference temperature (degC)
	SRef   float64 // reference salinity (psu)
	DRhoDT float64 // drho/dT (kg/m^3 per degC), negative for seawater
	DRhoDS float64 // drho/dS (kg/m^3 per psu)
	DRhoDP float64 // drho/dP (kg/m^3 per dbar), 0 for incompressible
}

// DefaultLinear returns coefficients representative of mid-latitude
// seawater near the surface.
func DefaultLinear() *Linear {
	return &Linear{
		Rho0:   1027.0,
		TRef:   10.0,
		SRef:   35.0,
		DRhoDT: -0.2,
		DRhoDS: 0.8,
		DRhoDP: 0.0,
	}
}

// Density implements EOS.
func (e *Linear) Density(temp, salt, pres float64) float64 {
	return e.Rho0 + e.DRhoDT*(temp-e.TRef) + e.DRhoDS*(salt-e.SRef) + e.DRhoDP*pres
}

// Coefficients implements EOS. For a linear EOS the coefficients are
// constant; the state arguments are accepted for interface compatibility.
func (e *Linear) Coefficients(temp, salt, pres float64) (alpha, beta float64) {
	return -e.DRhoDT, e.DRhoDS
}

// PairPressure returns the pressure at which the EOS should be evaluated
// when matching water at pressures pL and pR across a face, under the
// given coefficient mode. pRef is used only in ReferencePressure mode.
func PairPressure(mode CoefficientMode, pL, pR, pRef float64) float64 {
	if mode == ReferencePressure {
		return pRef
	}
	return 0.5 * (pL + pR)
}

// PressureAtDepth converts depth in meters to pressure in dbar using the
// standard oceanographic approximation 1 dbar per meter.
func PressureAtDepth(z float64) float64 {
	if z < 0 || math.IsNaN(z) {
		return 0
	}
	return z
}
