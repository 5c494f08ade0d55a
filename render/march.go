package render

import (
	"fmt"

	"github.com/soypat/implicit"
	"github.com/soypat/implicit/internal/d3"
	"gonum.org/v1/gonum/spatial/r3"
)

// marchingCubesMaxTriangles is the largest amount of triangles a single
// cube may produce.
const marchingCubesMaxTriangles = 5

// mcCorners are the corner offsets of a cube relative to its origin.
var mcCorners = [8]implicit.V3i{
	{0, 0, 0}, {1, 0, 0}, {1, 1, 0}, {0, 1, 0},
	{0, 0, 1}, {1, 0, 1}, {1, 1, 1}, {0, 1, 1},
}

// mcEdges are the pairs of corners joined by each of the 12 cube edges.
var mcEdges = [12][2]int{
	{0, 1}, {1, 2}, {2, 3}, {3, 0},
	{4, 5}, {5, 6}, {6, 7}, {7, 4},
	{0, 4}, {1, 5}, {2, 6}, {3, 7},
}

// mcFaces are the corners of each cube face, counter-clockwise as seen from
// outside the cube.
var mcFaces = [6][4]int{
	{0, 3, 2, 1}, // z=0
	{4, 5, 6, 7}, // z=1
	{0, 1, 5, 4}, // y=0
	{3, 7, 6, 2}, // y=1
	{0, 4, 7, 3}, // x=0
	{1, 2, 6, 5}, // x=1
}

// mcTriangleTable holds, for each of the 256 inside/outside corner
// configurations, the edge triplets of the triangles of that cube.
// Bit n of the configuration index is set when corner n is inside.
var mcTriangleTable = buildTriangleTable()

// buildTriangleTable traces the iso-contour across the six faces of the cube
// for every configuration and fans the resulting closed polygons into triangles.
// On faces with two inside corners on a diagonal the inside corners are joined.
// Since neighbouring cubes see a shared face with opposite orientation and
// the same rule, adjacent cubes always agree on the contour of a shared face.
func buildTriangleTable() (table [256][]uint8) {
	for config := range table {
		inside := func(corner int) bool { return config&(1<<corner) != 0 }
		// next maps a cut edge to the following cut edge of its contour polygon.
		next := [12]int{-1, -1, -1, -1, -1, -1, -1, -1, -1, -1, -1, -1}
		for _, face := range mcFaces {
			var cuts [4]int
			var exits [4]bool
			ncut := 0
			for k := range face {
				a, b := face[k], face[(k+1)%4]
				if inside(a) != inside(b) {
					cuts[ncut] = mcEdgeBetween(a, b)
					exits[ncut] = inside(a)
					ncut++
				}
			}
			for k := 0; k < ncut; k++ {
				if exits[k] {
					next[cuts[k]] = cuts[(k+1)%ncut]
				}
			}
		}
		var visited [12]bool
		var tris []uint8
		for start := range next {
			if next[start] < 0 || visited[start] {
				continue
			}
			var loop []uint8
			for e := start; !visited[e]; e = next[e] {
				visited[e] = true
				loop = append(loop, uint8(e))
			}
			// Wind triangles so their normal points away from the inside.
			for i := 1; i < len(loop)-1; i++ {
				tris = append(tris, loop[0], loop[i+1], loop[i])
			}
		}
		if len(tris) > 3*marchingCubesMaxTriangles {
			panic("bug: marching cubes configuration exceeds max triangles")
		}
		table[config] = tris
	}
	return table
}

func mcEdgeBetween(a, b int) int {
	for i, e := range mcEdges {
		if (e[0] == a && e[1] == b) || (e[0] == b && e[1] == a) {
			return i
		}
	}
	panic("bug: corners do not share a cube edge")
}

// MarchingCubes extracts the triangle mesh of the iso-surface where the
// sampled volume equals level. Samples below level are considered inside.
//
// Vertices are returned in grid index coordinates, that is, a vertex on the
// edge between samples (i,j,k) and (i+1,j,k) has X between i and i+1. Vertices
// on a grid edge are shared by all triangles touching the edge. Normals are the
// normalized finite difference gradient of the samples and point towards
// increasing values. Triangles wind counter-clockwise around the normals.
//
// If the level set does not cross the volume an empty mesh and
// [implicit.ErrEmptyIsosurface] are returned.
func MarchingCubes(vol *implicit.Volume, level float64) (Mesh, error) {
	if vol == nil {
		return Mesh{}, fmt.Errorf("nil volume: %w", implicit.ErrInvalidParameter)
	}
	if vol.Size[0] < 2 || vol.Size[1] < 2 || vol.Size[2] < 2 {
		return Mesh{}, fmt.Errorf("volume size %v needs 2 or more samples per axis: %w", vol.Size, implicit.ErrInvalidParameter)
	}
	if len(vol.Data) != vol.Size.Prod() {
		return Mesh{}, fmt.Errorf("volume has %d samples, size %v requires %d: %w", len(vol.Data), vol.Size, vol.Size.Prod(), implicit.ErrInvalidParameter)
	}
	mc := mcBuilder{
		vol:   vol,
		level: level,
		cache: make(map[int]int),
	}
	var values [8]float64
	for i := 0; i < vol.Size[0]-1; i++ {
		for j := 0; j < vol.Size[1]-1; j++ {
			for k := 0; k < vol.Size[2]-1; k++ {
				origin := implicit.V3i{i, j, k}
				config := 0
				for n, offset := range mcCorners {
					values[n] = vol.At(origin.Add(offset))
					if values[n] < level {
						config |= 1 << n
					}
				}
				mc.march(origin, &values, mcTriangleTable[config])
			}
		}
	}
	if len(mc.mesh.Faces) == 0 {
		return Mesh{}, fmt.Errorf("no triangles at level %g: %w", level, implicit.ErrEmptyIsosurface)
	}
	return mc.mesh, nil
}

// mcBuilder accumulates the mesh of a marching cubes run.
type mcBuilder struct {
	vol   *implicit.Volume
	level float64
	// cache maps a grid edge to the index of its vertex in mesh.
	cache map[int]int
	mesh  Mesh
}

func (mc *mcBuilder) march(origin implicit.V3i, values *[8]float64, edges []uint8) {
	for t := 0; t < len(edges); t += 3 {
		mc.mesh.Faces = append(mc.mesh.Faces, [3]int{
			mc.vertex(origin, values, edges[t]),
			mc.vertex(origin, values, edges[t+1]),
			mc.vertex(origin, values, edges[t+2]),
		})
	}
}

// vertex returns the mesh index of the vertex lying on cube edge e, creating
// it on first use.
func (mc *mcBuilder) vertex(origin implicit.V3i, values *[8]float64, e uint8) int {
	a, b := mcEdges[e][0], mcEdges[e][1]
	ia, ib := origin.Add(mcCorners[a]), origin.Add(mcCorners[b])
	// A grid edge is identified by its lowest grid point and its axis.
	base, axis := ia, 0
	for ax := 0; ax < 3; ax++ {
		if ia[ax] != ib[ax] {
			axis = ax
			if ib[ax] < ia[ax] {
				base = ib
			}
		}
	}
	key := 3*mc.vol.Index(base) + axis
	if idx, ok := mc.cache[key]; ok {
		return idx
	}
	va, vb := values[a], values[b]
	t := (mc.level - va) / (vb - va)
	pa, pb := ia.ToV3(), ib.ToV3()
	pos := r3.Add(pa, r3.Scale(t, r3.Sub(pb, pa)))
	ga, gb := mc.vol.Gradient(ia), mc.vol.Gradient(ib)
	normal := d3.UnitOrZero(r3.Add(ga, r3.Scale(t, r3.Sub(gb, ga))))

	idx := len(mc.mesh.Vertices)
	mc.mesh.Vertices = append(mc.mesh.Vertices, pos)
	mc.mesh.Normals = append(mc.mesh.Normals, normal)
	mc.cache[key] = idx
	return idx
}
