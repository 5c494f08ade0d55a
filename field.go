package implicit

import (
	"fmt"
	"math"

	"github.com/soypat/implicit/internal/d3"
	"gonum.org/v1/gonum/spatial/r3"
)

// Field is a triply periodic implicit function with period 2π along each axis.
// Its zero level set is the surface extracted by this package.
type Field int

const (
	// Gyroid is Schoen's gyroid:
	//  sin(x)cos(y) + sin(y)cos(z) + sin(z)cos(x)
	Gyroid Field = iota
	// FischerKochS is the Fischer-Koch S surface:
	//  cos(2x)sin(y)cos(z) + cos(2y)sin(z)cos(x) + cos(2z)sin(x)cos(y)
	FischerKochS
	numFields
)

var fieldNames = [numFields]string{
	Gyroid:       "Gyroid",
	FischerKochS: "FisherKochS",
}

// Fields returns all known fields.
func Fields() []Field {
	fields := make([]Field, numFields)
	for i := range fields {
		fields[i] = Field(i)
	}
	return fields
}

// String returns the name the field is selected by.
func (f Field) String() string {
	if !f.valid() {
		return fmt.Sprintf("Field(%d)", int(f))
	}
	return fieldNames[f]
}

func (f Field) valid() bool { return f >= 0 && f < numFields }

// ParseField returns the Field selected by name. Names are case sensitive.
func ParseField(name string) (Field, error) {
	for i, fname := range fieldNames {
		if fname == name {
			return Field(i), nil
		}
	}
	return 0, fmt.Errorf("%q: %w", name, ErrUnknownField)
}

// Evaluate evaluates the field selected by name over pos positions and stores
// the result in dst. dst and pos must be of same length.
func Evaluate(name string, pos []r3.Vec, dst []float64, offset float64) error {
	f, err := ParseField(name)
	if err != nil {
		return err
	}
	return f.EvaluateGrid(pos, dst, offset)
}

// Evaluate returns the value of the field at p.
//
// For the gyroid a non-zero offset adds the z component of the normalized
// gradient to the field value. This does not shift the level set by offset
// in the normal direction. The Fischer-Koch S field ignores offset.
func (f Field) Evaluate(p r3.Vec, offset float64) float64 {
	switch f {
	case Gyroid:
		g := gyroid(p)
		if offset == 0 {
			return g
		}
		return g + GyroidGradient(p).Z
	case FischerKochS:
		return fischerKochS(p)
	}
	panic("bad field " + f.String())
}

// EvaluateGrid evaluates the field over pos positions. dst and pos must be of
// same length. Resulting values are stored in dst.
func (f Field) EvaluateGrid(pos []r3.Vec, dst []float64, offset float64) error {
	if !f.valid() {
		return fmt.Errorf("%s: %w", f, ErrUnknownField)
	}
	if len(pos) != len(dst) {
		return fmt.Errorf("position and destination length mismatch %d != %d: %w", len(pos), len(dst), ErrInvalidParameter)
	}
	switch {
	case f == Gyroid && offset == 0:
		for i, p := range pos {
			dst[i] = gyroid(p)
		}
	case f == Gyroid:
		for i, p := range pos {
			dst[i] = gyroid(p) + GyroidGradient(p).Z
		}
	case f == FischerKochS:
		for i, p := range pos {
			dst[i] = fischerKochS(p)
		}
	}
	return nil
}

func gyroid(p r3.Vec) float64 {
	sx, cx := math.Sincos(p.X)
	sy, cy := math.Sincos(p.Y)
	sz, cz := math.Sincos(p.Z)
	return sx*cy + sy*cz + sz*cx
}

// GyroidGradient returns the unit length gradient of the gyroid at p.
// Where the gradient vanishes the zero vector is returned.
func GyroidGradient(p r3.Vec) r3.Vec {
	sx, cx := math.Sincos(p.X)
	sy, cy := math.Sincos(p.Y)
	sz, cz := math.Sincos(p.Z)
	grad := r3.Vec{
		X: cx*cy - sz*sx,
		Y: -sx*sy + cy*cz,
		Z: -sy*sz + cz*cx,
	}
	return d3.UnitOrZero(grad)
}

func fischerKochS(p r3.Vec) float64 {
	sx, cx := math.Sincos(p.X)
	sy, cy := math.Sincos(p.Y)
	sz, cz := math.Sincos(p.Z)
	return math.Cos(2*p.X)*sy*cz + math.Cos(2*p.Y)*sz*cx + math.Cos(2*p.Z)*sx*cy
}
