package render

import (
	"errors"
	"fmt"

	"github.com/soypat/implicit/internal/d3"
	"gonum.org/v1/gonum/spatial/r3"
)

// Mesh is an indexed triangle mesh with per-vertex normals.
type Mesh struct {
	Vertices []r3.Vec
	// Faces holds triangles as indices into Vertices.
	Faces   [][3]int
	Normals []r3.Vec
}

// Validate checks there is a normal per vertex and that all face
// indices reference a vertex.
func (m Mesh) Validate() error {
	if len(m.Normals) != len(m.Vertices) {
		return fmt.Errorf("mesh has %d normals for %d vertices", len(m.Normals), len(m.Vertices))
	}
	for i, face := range m.Faces {
		for _, idx := range face {
			if idx < 0 || idx >= len(m.Vertices) {
				return fmt.Errorf("face %d references vertex %d out of range [0,%d)", i, idx, len(m.Vertices))
			}
		}
	}
	return nil
}

// Empty returns true if the mesh has no triangles.
func (m Mesh) Empty() bool { return len(m.Faces) == 0 }

// Triangle returns the i'th face as a triangle.
func (m Mesh) Triangle(i int) r3.Triangle {
	f := m.Faces[i]
	return r3.Triangle{m.Vertices[f[0]], m.Vertices[f[1]], m.Vertices[f[2]]}
}

// Triangles returns the faces of the mesh as a triangle soup.
func (m Mesh) Triangles() []r3.Triangle {
	tris := make([]r3.Triangle, len(m.Faces))
	for i := range m.Faces {
		tris[i] = m.Triangle(i)
	}
	return tris
}

// Bounds returns the bounding box of the mesh vertices.
func (m Mesh) Bounds() (r3.Box, error) {
	if len(m.Vertices) == 0 {
		return r3.Box{}, errors.New("bounds of mesh without vertices")
	}
	return r3.Box(d3.Set(m.Vertices).BoundingBox()), nil
}

// Area returns the total surface area of the mesh.
func (m Mesh) Area() (area float64) {
	for i := range m.Faces {
		area += m.Triangle(i).Area()
	}
	return area
}
