// Package preview renders meshes to images for quick visual inspection.
package preview

import (
	"errors"
	"fmt"
	"image"

	"github.com/fogleman/fauxgl"
	"github.com/nfnt/resize"
	"github.com/soypat/implicit/internal/d3"
	"github.com/soypat/implicit/render"
	"gonum.org/v1/gonum/spatial/r3"
)

const (
	supersample = 2  // render scale before downsampling
	fovy        = 30 // vertical field of view in degrees
)

// View configures the camera used to render a mesh. The mesh is fit
// in a bi-unit cube centered at the origin before rendering.
type View struct {
	// where the camera/eye located at (point)
	Eye r3.Vec
	// what position (point) to look at
	LookAt r3.Vec
	// which way is up (direction)
	Up        r3.Vec
	Near, Far float64
	// Output image size in pixels.
	Width, Height int
}

// DefaultView is an isometric view of the bi-unit cube.
var DefaultView = View{
	Eye:    d3.Elem(2.4),
	Up:     r3.Vec{Z: 1},
	Near:   1,
	Far:    10,
	Width:  768,
	Height: 432,
}

func (v View) validate() error {
	switch {
	case v.Width <= 0 || v.Height <= 0:
		return fmt.Errorf("bad image size %dx%d", v.Width, v.Height)
	case v.Near <= 0 || v.Far <= v.Near:
		return fmt.Errorf("bad clipping planes near=%g far=%g", v.Near, v.Far)
	case v.Eye == v.LookAt:
		return errors.New("eye and look at position coincide")
	case r3.Norm(v.Up) == 0:
		return errors.New("zero up vector")
	}
	return nil
}

// Image renders m as seen from v with Phong shading.
func Image(m render.Mesh, v View) (image.Image, error) {
	if err := v.validate(); err != nil {
		return nil, err
	}
	if m.Empty() {
		return nil, errors.New("cannot render mesh without faces")
	}
	if err := m.Validate(); err != nil {
		return nil, err
	}
	mesh := fauxglMesh(m)
	var (
		eye    = fauxglVec(v.Eye)
		center = fauxglVec(v.LookAt)
		up     = fauxglVec(v.Up)
		light  = fauxgl.V(-0.75, 1, 0.25).Normalize()
		color  = fauxgl.HexColor("#468966")
	)
	// fit mesh in a bi-unit cube centered at the origin
	mesh.BiUnitCube()
	context := fauxgl.NewContext(v.Width*supersample, v.Height*supersample)
	context.ClearColorBufferWith(fauxgl.HexColor("#FFF8E3"))
	aspect := float64(v.Width) / float64(v.Height)
	matrix := fauxgl.LookAt(eye, center, up).Perspective(fovy, aspect, v.Near, v.Far)
	shader := fauxgl.NewPhongShader(matrix, light, eye)
	shader.ObjectColor = color
	context.Shader = shader
	context.DrawMesh(mesh)
	// downsample image for antialiasing
	img := context.Image()
	return resize.Resize(uint(v.Width), uint(v.Height), img, resize.Bilinear), nil
}

// SavePNG renders m as seen from v and saves the result as a PNG file at path.
func SavePNG(path string, m render.Mesh, v View) error {
	img, err := Image(m, v)
	if err != nil {
		return err
	}
	return fauxgl.SavePNG(path, img)
}

func fauxglMesh(m render.Mesh) *fauxgl.Mesh {
	triangles := make([]*fauxgl.Triangle, len(m.Faces))
	for i, face := range m.Faces {
		t := fauxgl.NewTriangleForPoints(
			fauxglVec(m.Vertices[face[0]]),
			fauxglVec(m.Vertices[face[1]]),
			fauxglVec(m.Vertices[face[2]]),
		)
		t.V1.Normal = fauxglVec(m.Normals[face[0]])
		t.V2.Normal = fauxglVec(m.Normals[face[1]])
		t.V3.Normal = fauxglVec(m.Normals[face[2]])
		triangles[i] = t
	}
	return fauxgl.NewTriangleMesh(triangles)
}

func fauxglVec(v r3.Vec) fauxgl.Vector { return fauxgl.V(v.X, v.Y, v.Z) }
