// Package units provides shared constants and validation for the units
// accepted by CLI flags and used in diagnostic output.
package units

// Diffusivity unit constants
const (
	M2PS  = "m2s"
	CM2PS = "cm2s"
)

// ValidDiffusivityUnits contains all valid diffusivity unit values
var ValidDiffusivityUnits = []string{M2PS, CM2PS}

// IsValidDiffusivity checks if the given unit is a valid diffusivity unit
func IsValidDiffusivity(unit string) bool {
	for _, validUnit := range ValidDiffusivityUnits {
		if unit == validUnit {
			return true
		}
	}
	return false
}

// ConvertDiffusivity converts a diffusivity to m^2/s from the given units.
// The core works in m^2/s throughout.
func ConvertDiffusivity(value float64, fromUnits string) float64 {
	switch fromUnits {
	case CM2PS:
		return value * 1e-4 // cm^2/s to m^2/s
	case M2PS:
		return value // no conversion needed
	default:
		return value // default to m^2/s if unknown unit
	}
}

// Temperature unit constants
const (
	Celsius = "degC"
	Kelvin  = "K"
)

// ToCelsius converts a temperature to degrees C from the given units.
func ToCelsius(value float64, fromUnits string) float64 {
	if fromUnits == Kelvin {
		return value - 273.15
	}
	return value
}

// Depth unit constants
const (
	Meters     = "m"
	Kilometers = "km"
)

// ToMeters converts a depth to meters from the given units.
func ToMeters(value float64, fromUnits string) float64 {
	if fromUnits == Kilometers {
		return value * 1000
	}
	return value
}
