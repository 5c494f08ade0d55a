// Package extract turns a triply periodic implicit field into a triangle mesh
// scaled to fit a cube of given physical dimensions centered at the origin.
package extract

import (
	"fmt"
	"math"

	"github.com/soypat/implicit"
	"github.com/soypat/implicit/internal/d3"
	"github.com/soypat/implicit/render"
	"gonum.org/v1/gonum/spatial/r3"
)

// Request holds the parameters of a surface extraction.
type Request struct {
	Field implicit.Field
	// Periods is the amount of 2π periods sampled along each axis.
	Periods float64
	// Resolution is the sampling step in field space.
	Resolution float64
	// Dimensions is the edge length of the cube the result is scaled into.
	Dimensions float64
	// Offset is passed to the field evaluation. See implicit.Field.Evaluate.
	Offset float64

	// LineCount and LineWidth are accepted and validated but do not yet
	// alter the extracted surface.
	LineCount int
	LineWidth float64
}

// Validate checks the request parameters are usable for extraction.
func (req Request) Validate() error {
	switch {
	case !positive(req.Periods):
		return fmt.Errorf("periods=%g must be finite and positive: %w", req.Periods, implicit.ErrInvalidParameter)
	case !positive(req.Resolution):
		return fmt.Errorf("resolution=%g must be finite and positive: %w", req.Resolution, implicit.ErrInvalidParameter)
	case !positive(req.Dimensions):
		return fmt.Errorf("dimensions=%g must be finite and positive: %w", req.Dimensions, implicit.ErrInvalidParameter)
	case !finite(req.Offset):
		return fmt.Errorf("offset=%g must be finite: %w", req.Offset, implicit.ErrInvalidParameter)
	case req.LineCount < 0:
		return fmt.Errorf("negative line count %d: %w", req.LineCount, implicit.ErrInvalidParameter)
	case !finite(req.LineWidth) || req.LineWidth < 0:
		return fmt.Errorf("line width=%g must be finite and non-negative: %w", req.LineWidth, implicit.ErrInvalidParameter)
	}
	_, err := implicit.ParseField(req.Field.String())
	return err
}

// Surface samples the requested field over [0, 2π·Periods]³, extracts
// its zero level set and rescales the vertices into a cube of edge length
// Dimensions centered at the origin. Normals are left as extracted.
func Surface(req Request) (render.Mesh, error) {
	err := req.Validate()
	if err != nil {
		return render.Mesh{}, err
	}
	span := 2 * math.Pi * req.Periods
	vol, err := implicit.Sample(req.Field, span, req.Resolution, req.Offset)
	if err != nil {
		return render.Mesh{}, err
	}
	mesh, err := render.MarchingCubes(vol, 0)
	if err != nil {
		return render.Mesh{}, fmt.Errorf("%s over %g periods: %w", req.Field, req.Periods, err)
	}
	err = Rescale(mesh.Vertices, req.Dimensions)
	if err != nil {
		return render.Mesh{}, err
	}
	return mesh, nil
}

// ExtractSurface is Surface with the field selected by name.
func ExtractSurface(fieldName string, periods, resolution, dimensions, offset float64) (render.Mesh, error) {
	f, err := implicit.ParseField(fieldName)
	if err != nil {
		return render.Mesh{}, err
	}
	return Surface(Request{
		Field:      f,
		Periods:    periods,
		Resolution: resolution,
		Dimensions: dimensions,
		Offset:     offset,
	})
}

// Rescale maps every vertex component from [0, vmax] onto
// [-dimensions/2, dimensions/2] in place, where vmax is the largest
// component over all vertices. A single scale is used for all axes.
func Rescale(vertices []r3.Vec, dimensions float64) error {
	if !positive(dimensions) {
		return fmt.Errorf("dimensions=%g must be finite and positive: %w", dimensions, implicit.ErrInvalidParameter)
	}
	vmax := math.Inf(-1)
	for _, v := range vertices {
		vmax = math.Max(vmax, d3.Max(v))
	}
	if !(vmax > 0) {
		return fmt.Errorf("largest vertex component %g not positive: %w", vmax, implicit.ErrEmptyIsosurface)
	}
	lo, hi := -dimensions/2, dimensions/2
	for i, v := range vertices {
		vertices[i] = r3.Vec{
			X: implicit.MapRange(v.X, 0, vmax, lo, hi),
			Y: implicit.MapRange(v.Y, 0, vmax, lo, hi),
			Z: implicit.MapRange(v.Z, 0, vmax, lo, hi),
		}
	}
	return nil
}

func finite(v float64) bool { return !math.IsNaN(v) && !math.IsInf(v, 0) }

func positive(v float64) bool { return finite(v) && v > 0 }
