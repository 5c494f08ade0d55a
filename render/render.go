package render

import (
	"gonum.org/v1/gonum/spatial/r3"
)

// Renderer streams a model as triangles. ReadTriangles returns io.EOF
// once the model has been read in full.
type Renderer interface {
	ReadTriangles(t []r3.Triangle) (int, error)
}
