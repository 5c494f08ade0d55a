// Package meshimport rebuilds indexed meshes from triangle soups such as
// the ones read from STL files.
package meshimport

import (
	"errors"
	"fmt"
	"math"

	"github.com/soypat/implicit/internal/d3"
	"github.com/soypat/implicit/render"
	"gonum.org/v1/gonum/spatial/kdtree"
	"gonum.org/v1/gonum/spatial/r3"
)

// ImportModel joins triangle corners closer than vertexTol into shared
// vertices and returns the resulting indexed mesh. Triangles that collapse
// after joining are dropped. Vertex normals are the angle weighted average
// of the normals of the faces sharing the vertex.
// vertexTol should be of the order of 1/1000th of the size of the smallest
// triangle in the model. If set to 0 then it is inferred automatically.
func ImportModel(model []r3.Triangle, vertexTolOrZero float64) (render.Mesh, error) {
	if len(model) == 0 {
		return render.Mesh{}, errors.New("empty triangle slice")
	}
	if vertexTolOrZero < 0 || math.IsNaN(vertexTolOrZero) {
		return render.Mesh{}, fmt.Errorf("invalid vertex tolerance %g", vertexTolOrZero)
	}
	minDist2 := math.MaxFloat64
	maxDist2 := 0.0
	for i := range model {
		for j, vert := range model[i] {
			if !d3.IsFinite(vert) {
				return render.Mesh{}, fmt.Errorf("triangle %d has non-finite vertex %v", i, vert)
			}
			side2 := r3.Norm2(r3.Sub(model[i][(j+1)%3], vert))
			if side2 > 0 {
				minDist2 = math.Min(minDist2, side2)
			}
			maxDist2 = math.Max(maxDist2, side2)
		}
	}
	if maxDist2 == 0 {
		return render.Mesh{}, errors.New("all triangles are degenerate")
	}
	tol := vertexTolOrZero
	suggested := math.Sqrt(minDist2) / 256
	if tol > math.Sqrt(maxDist2)/2 {
		return render.Mesh{}, fmt.Errorf("vertex tolerance is too large to generate appropiate mesh, suggested tolerance: %g", suggested)
	}
	if tol == 0 {
		tol = suggested
	}

	corners := make(cornerList, 0, 3*len(model))
	for i := range model {
		for j, vert := range model[i] {
			corners = append(corners, corner{V: vert, id: 3*i + j})
		}
	}
	// kdtree.New reorders the list it is given.
	tree := kdtree.New(append(cornerList(nil), corners...), false)
	vertexOf := make([]int, len(corners))
	for i := range vertexOf {
		vertexOf[i] = -1
	}
	var m render.Mesh
	for _, c := range corners {
		if vertexOf[c.id] >= 0 {
			continue
		}
		idx := len(m.Vertices)
		m.Vertices = append(m.Vertices, c.V)
		vertexOf[c.id] = idx
		keep := kdtree.NewDistKeeper(tol * tol)
		tree.NearestSet(keep, c)
		for _, near := range keep.Heap {
			if near.Comparable == nil {
				continue
			}
			if id := near.Comparable.(corner).id; vertexOf[id] < 0 {
				vertexOf[id] = idx
			}
		}
	}

	m.Normals = make([]r3.Vec, len(m.Vertices))
	for i, tri := range model {
		face := [3]int{vertexOf[3*i], vertexOf[3*i+1], vertexOf[3*i+2]}
		if face[0] == face[1] || face[1] == face[2] || face[2] == face[0] {
			continue
		}
		m.Faces = append(m.Faces, face)
		norm := d3.UnitOrZero(tri.Normal())
		for j, vert := range tri {
			// Weight face normal by the opening angle at the vertex.
			s1, s2 := r3.Sub(vert, tri[(j+1)%3]), r3.Sub(vert, tri[(j+2)%3])
			alpha := math.Acos(math.Max(-1, math.Min(1, r3.Cos(s1, s2))))
			if math.IsNaN(alpha) {
				continue
			}
			m.Normals[face[j]] = r3.Add(m.Normals[face[j]], r3.Scale(alpha, norm))
		}
	}
	if len(m.Faces) == 0 {
		return render.Mesh{}, errors.New("all triangles collapsed with vertex tolerance")
	}
	for i := range m.Normals {
		m.Normals[i] = d3.UnitOrZero(m.Normals[i])
	}
	return m, nil
}

// corner is a triangle vertex position tagged with its position in the
// triangle soup, 3*triangle + vertex.
type corner struct {
	V  r3.Vec
	id int
}

func (c corner) Compare(b kdtree.Comparable, d kdtree.Dim) float64 {
	q := b.(corner)
	switch d {
	case 0:
		return c.V.X - q.V.X
	case 1:
		return c.V.Y - q.V.Y
	case 2:
		return c.V.Z - q.V.Z
	}
	panic("unreachable")
}

func (c corner) Dims() int { return 3 }

func (c corner) Distance(b kdtree.Comparable) float64 {
	return r3.Norm2(r3.Sub(c.V, b.(corner).V))
}

type cornerList []corner

// Index returns the ith element of the list of points.
func (l cornerList) Index(i int) kdtree.Comparable { return l[i] }

// Len returns the length of the list.
func (l cornerList) Len() int { return len(l) }

// Pivot partitions the list based on the dimension specified.
func (l cornerList) Pivot(d kdtree.Dim) int {
	p := kdPlane{dim: d, corners: l}
	return kdtree.Partition(p, kdtree.MedianOfMedians(p))
}

// Slice returns a slice of the list using zero-based half
// open indexing equivalent to built-in slice indexing.
func (l cornerList) Slice(start, end int) kdtree.Interface { return l[start:end] }

type kdPlane struct {
	dim     kdtree.Dim
	corners cornerList
}

func (p kdPlane) Less(i, j int) bool {
	return p.corners[i].Compare(p.corners[j], p.dim) < 0
}
func (p kdPlane) Swap(i, j int) {
	p.corners[i], p.corners[j] = p.corners[j], p.corners[i]
}
func (p kdPlane) Len() int {
	return len(p.corners)
}
func (p kdPlane) Slice(start, end int) kdtree.SortSlicer {
	p.corners = p.corners[start:end]
	return p
}
