package matter

import (
	"errors"
	"math"
	"testing"

	"github.com/soypat/implicit"
	"github.com/soypat/implicit/extract"
)

func TestViscousMaterial(t *testing.T) {
	for _, name := range []string{"PLA", "petg"} {
		m, err := ByName(name)
		if err != nil {
			t.Fatal(err)
		}
		vm := m.(ViscousMaterial)
		d, err := m.Dimension(20)
		if err != nil {
			t.Fatal(err)
		}
		if d <= 20 {
			t.Errorf("%s: modelled dimension %g not larger than printed", name, d)
		}
		// Printed part shrinks back to the real dimension.
		if got := d * (1 - vm.shrink); math.Abs(got-20) > 1e-12 {
			t.Errorf("%s: shrunk dimension %g, want 20", name, got)
		}
		if _, err := m.Dimension(-1); !errors.Is(err, implicit.ErrInvalidParameter) {
			t.Errorf("%s: want ErrInvalidParameter for negative dimension, got %v", name, err)
		}
	}
	if _, err := ByName("wood"); !errors.Is(err, implicit.ErrInvalidParameter) {
		t.Errorf("want ErrInvalidParameter for unknown material, got %v", err)
	}
}

func TestDimensionCompensatesMesh(t *testing.T) {
	const real = 40
	d, err := PLA.Dimension(real)
	if err != nil {
		t.Fatal(err)
	}
	mesh, err := extract.ExtractSurface("Gyroid", 1, 0.2, d, 0)
	if err != nil {
		t.Fatal(err)
	}
	var vmax float64
	for _, v := range mesh.Vertices {
		vmax = math.Max(vmax, math.Max(v.X, math.Max(v.Y, v.Z)))
	}
	if math.Abs(2*vmax-d) > 1e-9 {
		t.Errorf("mesh extent %g, want modelled %g", 2*vmax, d)
	}
	// Printed mesh shrinks back to the requested edge length.
	if got := 2 * vmax * (1 - PLA.shrink); math.Abs(got-real) > 1e-9 {
		t.Errorf("printed extent %g, want %d", got, real)
	}
}
