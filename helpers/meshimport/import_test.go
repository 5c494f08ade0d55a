package meshimport_test

import (
	"bytes"
	"math"
	"testing"

	"github.com/soypat/implicit"
	"github.com/soypat/implicit/helpers/meshimport"
	"github.com/soypat/implicit/internal/d3"
	"github.com/soypat/implicit/render"
	"gonum.org/v1/gonum/spatial/r3"
)

func sphereMesh(t testing.TB) render.Mesh {
	center := d3.Elem(0.5)
	vol, err := implicit.SampleFunc(func(p r3.Vec) float64 {
		return r3.Norm(r3.Sub(p, center)) - 0.37
	}, 1, 0.05)
	if err != nil {
		t.Fatal(err)
	}
	mesh, err := render.MarchingCubes(vol, 0)
	if err != nil {
		t.Fatal(err)
	}
	return mesh
}

func TestImportModelSTL(t *testing.T) {
	src := sphereMesh(t)
	var b bytes.Buffer
	err := render.WriteMeshSTL(&b, src)
	if err != nil {
		t.Fatal(err)
	}
	model, err := render.ReadSTL(&b)
	if err != nil {
		t.Fatal(err)
	}
	if len(model) != len(src.Faces) {
		t.Fatalf("read %d triangles, wrote %d", len(model), len(src.Faces))
	}
	mesh, err := meshimport.ImportModel(model, 1e-4)
	if err != nil {
		t.Fatal(err)
	}
	if err := mesh.Validate(); err != nil {
		t.Fatal(err)
	}
	if len(mesh.Vertices) != len(src.Vertices) || len(mesh.Faces) != len(src.Faces) {
		t.Fatalf("imported %d vertices %d faces, want %d vertices %d faces",
			len(mesh.Vertices), len(mesh.Faces), len(src.Vertices), len(src.Faces))
	}
	// Corners of the same face keep their order so vertex i of the import
	// matches the source vertex at the same face position.
	for i, face := range mesh.Faces {
		for j := range face {
			got := mesh.Vertices[face[j]]
			want := src.Vertices[src.Faces[i][j]]
			if !d3.EqualWithin(got, want, 1e-4) {
				t.Fatalf("face %d vertex %d: got %v, want %v", i, j, got, want)
			}
			n := mesh.Normals[face[j]]
			if math.Abs(r3.Norm(n)-1) > 1e-9 {
				t.Fatalf("normal %v not unit length", n)
			}
			if r3.Dot(n, src.Normals[src.Faces[i][j]]) < 0.7 {
				t.Errorf("face %d vertex %d: pseudo normal %v far from gradient normal %v", i, j, n, src.Normals[src.Faces[i][j]])
			}
		}
	}
}

func TestImportModelCollapse(t *testing.T) {
	model := []r3.Triangle{
		{{}, {X: 1}, {Y: 1}},
		{{X: 1}, {X: 1, Y: 1}, {Y: 1}},
		// Sliver that collapses at tolerance 0.01.
		{{}, {X: 1e-3}, {Y: 1}},
	}
	mesh, err := meshimport.ImportModel(model, 0.01)
	if err != nil {
		t.Fatal(err)
	}
	if len(mesh.Vertices) != 4 || len(mesh.Faces) != 2 {
		t.Fatalf("got %d vertices %d faces, want 4 vertices 2 faces", len(mesh.Vertices), len(mesh.Faces))
	}
	for i, n := range mesh.Normals {
		if !d3.EqualWithin(n, r3.Vec{Z: 1}, 1e-12) {
			t.Errorf("vertex %d normal %v, want +Z", i, n)
		}
	}
	for _, test := range []struct {
		name  string
		model []r3.Triangle
		tol   float64
	}{
		{name: "empty"},
		{name: "degenerate", model: []r3.Triangle{{{}, {}, {}}}},
		{name: "tolerance", model: model, tol: 10},
		{name: "negative tolerance", model: model, tol: -1},
		{name: "nan vertex", model: []r3.Triangle{{{X: math.NaN()}, {X: 1}, {Y: 1}}}},
	} {
		if _, err := meshimport.ImportModel(test.model, test.tol); err == nil {
			t.Errorf("%s: expected error", test.name)
		}
	}
}
