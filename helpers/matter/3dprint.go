// Package matter compensates printed part dimensions for material behaviour.
package matter

import (
	"fmt"

	"github.com/soypat/implicit"
)

var (
	// PLA (polylactic acid) is the most widely used plastic filament material in 3D printing.
	PLA = ViscousMaterial{shrink: 0.2e-2} // 0.2% shrinkage
	// PETG shrinks a bit more than PLA once cooled.
	PETG = ViscousMaterial{shrink: 0.4e-2}
)

// Material is a printing material that shrinks once cooled.
type Material interface {
	// Dimension returns the modelled size that results in real once printed.
	Dimension(real float64) (float64, error)
}

// ByName returns the material by its common name.
func ByName(name string) (Material, error) {
	switch name {
	case "PLA", "pla":
		return PLA, nil
	case "PETG", "petg":
		return PETG, nil
	}
	return nil, fmt.Errorf("material %q: %w", name, implicit.ErrInvalidParameter)
}

// ViscousMaterial shrinks uniformly as it cools.
type ViscousMaterial struct {
	// shrink is the thermal contraction shrinkage of a material once the material
	// cools to room temperature after the heated bed is turned off.
	shrink float64
}

// Dimension returns the external dimension to model so that the
// printed part measures real after cooling.
func (m ViscousMaterial) Dimension(real float64) (float64, error) {
	if !(real > 0) {
		return 0, fmt.Errorf("dimension %g must be positive: %w", real, implicit.ErrInvalidParameter)
	}
	return real / (1 - m.shrink), nil
}
