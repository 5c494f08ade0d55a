package render

import (
	"bytes"
	"errors"
	"math"
	"testing"

	"github.com/soypat/implicit"
	"github.com/soypat/implicit/internal/d3"
	"gonum.org/v1/gonum/spatial/r3"
)

func TestMarchingCubes(t *testing.T) {
	max := 0
	for _, tri := range mcTriangleTable {
		if len(tri) > max {
			max = len(tri)
		}
	}
	got := max / 3
	if got != marchingCubesMaxTriangles {
		t.Errorf("mismatch marching cubes max triangles. got %d. want %d", got, marchingCubesMaxTriangles)
	}
}

func TestTriangleTableCutEdges(t *testing.T) {
	for config, tris := range mcTriangleTable {
		if len(tris)%3 != 0 {
			t.Fatalf("config %#x: %d edges is not a multiple of 3", config, len(tris))
		}
		var used [12]bool
		for _, e := range tris {
			used[e] = true
		}
		for e, corners := range mcEdges {
			cut := (config>>corners[0])&1 != (config>>corners[1])&1
			if cut != used[e] {
				t.Errorf("config %#x: edge %d cut=%v but used=%v", config, e, cut, used[e])
			}
		}
	}
	if len(mcTriangleTable[0]) != 0 || len(mcTriangleTable[255]) != 0 {
		t.Error("all-outside or all-inside cube must produce no triangles")
	}
	for corner := 0; corner < 8; corner++ {
		if n := len(mcTriangleTable[1<<corner]) / 3; n != 1 {
			t.Errorf("single inside corner %d produced %d triangles, want 1", corner, n)
		}
	}
}

func TestMarchingCubesClosedSurfaces(t *testing.T) {
	center := d3.Elem(0.5)
	for _, test := range []struct {
		name  string
		fn    func(r3.Vec) float64
		step  float64
		euler int
	}{
		{
			name:  "sphere",
			fn:    func(p r3.Vec) float64 { return r3.Norm(r3.Sub(p, center)) - 0.37 },
			step:  0.05,
			euler: 2,
		},
		{
			name: "torus",
			fn: func(p r3.Vec) float64 {
				q := r3.Sub(p, center)
				return math.Hypot(math.Hypot(q.X, q.Y)-0.25, q.Z) - 0.1
			},
			step:  1. / 30,
			euler: 0,
		},
		{
			name: "two spheres",
			fn: func(p r3.Vec) float64 {
				a := r3.Norm(r3.Sub(p, d3.Elem(0.3))) - 0.22
				b := r3.Norm(r3.Sub(p, d3.Elem(0.7))) - 0.22
				return math.Min(a, b)
			},
			step:  1. / 14,
			euler: 4,
		},
	} {
		vol, err := implicit.SampleFunc(test.fn, 1, test.step)
		if err != nil {
			t.Fatal(err)
		}
		mesh, err := MarchingCubes(vol, 0)
		if err != nil {
			t.Fatal(test.name, err)
		}
		if err := mesh.Validate(); err != nil {
			t.Fatal(test.name, err)
		}
		directed := make(map[[2]int]int)
		undirected := make(map[[2]int]int)
		for _, f := range mesh.Faces {
			for i := 0; i < 3; i++ {
				a, b := f[i], f[(i+1)%3]
				directed[[2]int{a, b}]++
				if a > b {
					a, b = b, a
				}
				undirected[[2]int{a, b}]++
			}
		}
		for edge, count := range undirected {
			if count != 2 {
				t.Fatalf("%s: edge %v shared by %d faces, mesh not closed", test.name, edge, count)
			}
		}
		for edge, count := range directed {
			if count != 1 {
				t.Fatalf("%s: directed edge %v used %d times, inconsistent winding", test.name, edge, count)
			}
		}
		euler := len(mesh.Vertices) - len(undirected) + len(mesh.Faces)
		if euler != test.euler {
			t.Errorf("%s: euler characteristic got %d, want %d", test.name, euler, test.euler)
		}
	}
}

func TestMarchingCubesNormals(t *testing.T) {
	const radius = 0.37
	center := d3.Elem(0.5)
	vol, err := implicit.SampleFunc(func(p r3.Vec) float64 {
		return r3.Norm(r3.Sub(p, center)) - radius
	}, 1, 0.05)
	if err != nil {
		t.Fatal(err)
	}
	mesh, err := MarchingCubes(vol, 0)
	if err != nil {
		t.Fatal(err)
	}
	// Grid index coordinates of the sphere center.
	gridCenter := r3.Scale(1/vol.Step, center)
	for i, v := range mesh.Vertices {
		n := mesh.Normals[i]
		if math.Abs(r3.Norm(n)-1) > 1e-9 {
			t.Fatalf("vertex %d normal %v not unit length", i, n)
		}
		radial := r3.Unit(r3.Sub(v, gridCenter))
		if r3.Dot(n, radial) < 0.95 {
			t.Errorf("vertex %d normal %v deviates from radial direction %v", i, n, radial)
		}
		dist := r3.Norm(r3.Sub(r3.Scale(vol.Step, v), center))
		if math.Abs(dist-radius) > vol.Step {
			t.Errorf("vertex %d at distance %g from center, want %g", i, dist, radius)
		}
	}
	for i := range mesh.Faces {
		tri := mesh.Triangle(i)
		if tri.IsDegenerate(1e-9) {
			continue
		}
		outward := r3.Sub(tri.Centroid(), gridCenter)
		if r3.Dot(tri.Normal(), outward) <= 0 {
			t.Errorf("face %d winds inward", i)
		}
	}
}

func TestMarchingCubesEmpty(t *testing.T) {
	vol, err := implicit.SampleFunc(func(r3.Vec) float64 { return 1 }, 1, 0.25)
	if err != nil {
		t.Fatal(err)
	}
	mesh, err := MarchingCubes(vol, 0)
	if !errors.Is(err, implicit.ErrEmptyIsosurface) {
		t.Fatalf("want ErrEmptyIsosurface, got %v", err)
	}
	if !mesh.Empty() || len(mesh.Vertices) != 0 {
		t.Error("expected empty mesh")
	}
	_, err = MarchingCubes(&implicit.Volume{Size: implicit.V3i{1, 4, 4}, Step: 1, Data: make([]float64, 16)}, 0)
	if !errors.Is(err, implicit.ErrInvalidParameter) {
		t.Errorf("want ErrInvalidParameter for flat volume, got %v", err)
	}
	_, err = MarchingCubes(&implicit.Volume{Size: implicit.V3i{2, 2, 2}, Step: 1, Data: make([]float64, 7)}, 0)
	if !errors.Is(err, implicit.ErrInvalidParameter) {
		t.Errorf("want ErrInvalidParameter for short data, got %v", err)
	}
}

func TestSTLWriteReadback(t *testing.T) {
	const tol = 1e-5
	vol, err := implicit.Sample(implicit.Gyroid, 2*math.Pi, 0.25, 0)
	if err != nil {
		t.Fatal(err)
	}
	mesh, err := MarchingCubes(vol, 0)
	if err != nil {
		t.Fatal(err)
	}
	// Degenerate triangles where the surface crosses grid points exactly
	// are rejected by the STL validation, leave them out.
	var input []r3.Triangle
	for _, tri := range mesh.Triangles() {
		if !tri.IsDegenerate(1e-6) {
			input = append(input, tri)
		}
	}
	var b bytes.Buffer
	err = WriteSTL(&b, input)
	if err != nil {
		t.Fatal(err)
	}
	output, err := readBinarySTL(&b)
	if err != nil && !errors.Is(err, errCalculatedNormalMismatch) {
		t.Fatal(err)
	}
	if len(output) != len(input) {
		t.Fatal("length of triangles written/read not equal")
	}
	mismatches := 0
	for iface, expect := range input {
		got := output[iface]
		for i := range expect {
			if !d3.EqualWithin(got[i], expect[i], tol*d3.Max(d3.AbsElem(expect[i]))+tol) {
				mismatches++
				t.Errorf("%dth triangle equality out of tolerance. got vertex %0.5g, want %0.5g", iface, got[i], expect[i])
			}
		}
		if mismatches > 10 {
			t.Fatal("too many mismatches")
		}
	}
}

func TestWriteSTLHeader(t *testing.T) {
	var b bytes.Buffer
	if err := writeSTLHeader(&b, 3); err != nil {
		t.Fatal(err)
	}
	if b.Len() != 84 {
		t.Fatalf("header length %d, want 84", b.Len())
	}
	if got := b.Bytes()[80]; got != 3 {
		t.Errorf("triangle count byte %d, want 3", got)
	}
	b.Reset()
	if err := writeSTLHeader(&b, math.MaxUint32+1); err == nil {
		t.Error("expected error for count past uint32")
	}
	if b.Len() != 0 {
		t.Errorf("wrote %d bytes for rejected header", b.Len())
	}
}

func BenchmarkMarchingCubes(b *testing.B) {
	vol, err := implicit.Sample(implicit.Gyroid, 2*math.Pi, 0.05, 0)
	if err != nil {
		b.Fatal(err)
	}
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		MarchingCubes(vol, 0)
	}
}
