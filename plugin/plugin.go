// Package plugin connects surface extraction to a slicer host application.
// The host is reached only through the interfaces defined here so that the
// modeller can be driven by any GUI toolkit or by tests.
package plugin

import (
	"errors"
	"fmt"
	"math"
	"path/filepath"
	"strconv"

	"github.com/google/uuid"
	"github.com/soypat/glgl/math/ms3"
	"github.com/soypat/implicit"
	"github.com/soypat/implicit/extract"
	"github.com/soypat/implicit/render"
)

const (
	// MenuName is the name of the menu entry that opens the modeller dialog.
	MenuName = "Create Implicit Surface Dialog"
	// DialogFile is the dialog definition loaded from the plugin directory.
	DialogFile = "ImplicitModeller.qml"
	// Samples per axis minus one, independent of the amount of periods.
	gridDivisions = 100
)

// Dialog property names read on acceptance.
const (
	PropFieldIndex = "implicitFunctionIndex"
	PropPeriods    = "periods"
	PropLineCount  = "lineCount"
	PropLineWidth  = "lineWidth"
	PropDimensions = "dimensions"
)

// Host is the application the modeller is installed in.
type Host interface {
	Scene() Scene
	// ActiveBuildPlate returns the build plate new nodes are placed on.
	ActiveBuildPlate() int
	// CreateDialog instantiates the dialog defined at path.
	CreateDialog(path string) (Dialog, error)
	// PluginPath returns the directory the plugin is installed in.
	PluginPath() string
}

// Dialog is a modal parameter dialog.
type Dialog interface {
	// Open shows the dialog. onAccept is called if the user accepts it.
	Open(onAccept func()) error
	Property(name string) (string, error)
}

// Scene receives the nodes created by the modeller.
type Scene interface {
	// Add inserts node under the scene root and signals the scene change.
	Add(node *Node) error
}

// Node is a scene node holding an extracted surface.
type Node struct {
	Name     string
	Vertices []ms3.Vec
	Normals  []ms3.Vec
	// Indices holds 3 vertex indices per triangle.
	Indices    []uint32
	Selectable bool
	BuildPlate int
	Sliceable  bool
}

// MenuItem is an entry the host adds to its extension menu.
type MenuItem struct {
	Name   string
	Action func() error
}

// Modeller creates implicit surface nodes from dialog parameters.
type Modeller struct {
	host   Host
	dialog Dialog
	// error of last accepted dialog.
	err error
}

// New returns a Modeller that works on host.
func New(host Host) *Modeller {
	if host == nil {
		panic("nil host")
	}
	return &Modeller{host: host}
}

// MenuItems returns the menu entries of the modeller.
func (m *Modeller) MenuItems() []MenuItem {
	return []MenuItem{{Name: MenuName, Action: m.OpenDialog}}
}

// OpenDialog shows the parameter dialog, creating it on first use.
// Accepting the dialog adds a new surface to the scene.
func (m *Modeller) OpenDialog() error {
	if m.dialog == nil {
		dialog, err := m.host.CreateDialog(filepath.Join(m.host.PluginPath(), DialogFile))
		if err != nil {
			return fmt.Errorf("creating dialog: %w", err)
		}
		m.dialog = dialog
	}
	return m.dialog.Open(func() {
		m.err = m.AddImplicitSurface()
	})
}

// Err returns the error encountered adding the surface of the last
// accepted dialog.
func (m *Modeller) Err() error { return m.err }

// AddImplicitSurface reads the dialog parameters, extracts the surface and
// adds it to the scene as a selectable and sliceable node on the active
// build plate.
func (m *Modeller) AddImplicitSurface() error {
	if m.dialog == nil {
		return errors.New("dialog not open")
	}
	req, err := m.request()
	if err != nil {
		return err
	}
	mesh, err := extract.Surface(req)
	if err != nil {
		return err
	}
	node := newNode(fmt.Sprintf("%s_%s", req.Field, uuid.New().String()[:8]), mesh)
	node.Selectable = true
	node.BuildPlate = m.host.ActiveBuildPlate()
	node.Sliceable = true
	return m.host.Scene().Add(node)
}

func (m *Modeller) request() (req extract.Request, err error) {
	idx, err := m.intProperty(PropFieldIndex)
	if err != nil {
		return req, err
	}
	switch idx {
	case 0:
		req.Field = implicit.Gyroid
	case 1:
		req.Field = implicit.FischerKochS
	default:
		return req, fmt.Errorf("%s=%d: %w", PropFieldIndex, idx, implicit.ErrUnknownField)
	}
	req.Periods, err = m.floatProperty(PropPeriods)
	if err != nil {
		return req, err
	}
	req.LineCount, err = m.intProperty(PropLineCount)
	if err != nil {
		return req, err
	}
	req.LineWidth, err = m.floatProperty(PropLineWidth)
	if err != nil {
		return req, err
	}
	req.Dimensions, err = m.floatProperty(PropDimensions)
	if err != nil {
		return req, err
	}
	req.Resolution = 2 * math.Pi * req.Periods / gridDivisions
	return req, nil
}

func (m *Modeller) floatProperty(name string) (float64, error) {
	s, err := m.dialog.Property(name)
	if err != nil {
		return 0, err
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fmt.Errorf("property %s: %v: %w", name, err, implicit.ErrInvalidParameter)
	}
	return v, nil
}

func (m *Modeller) intProperty(name string) (int, error) {
	s, err := m.dialog.Property(name)
	if err != nil {
		return 0, err
	}
	v, err := strconv.Atoi(s)
	if err != nil {
		return 0, fmt.Errorf("property %s: %v: %w", name, err, implicit.ErrInvalidParameter)
	}
	return v, nil
}

func newNode(name string, mesh render.Mesh) *Node {
	node := &Node{
		Name:     name,
		Vertices: make([]ms3.Vec, len(mesh.Vertices)),
		Normals:  make([]ms3.Vec, len(mesh.Normals)),
		Indices:  make([]uint32, 0, 3*len(mesh.Faces)),
	}
	for i, v := range mesh.Vertices {
		node.Vertices[i] = ms3.Vec{X: float32(v.X), Y: float32(v.Y), Z: float32(v.Z)}
	}
	for i, n := range mesh.Normals {
		node.Normals[i] = ms3.Vec{X: float32(n.X), Y: float32(n.Y), Z: float32(n.Z)}
	}
	for _, f := range mesh.Faces {
		node.Indices = append(node.Indices, uint32(f[0]), uint32(f[1]), uint32(f[2]))
	}
	return node
}
