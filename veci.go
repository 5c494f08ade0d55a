/*

Integer 3D Vectors

*/

package implicit

import "gonum.org/v1/gonum/spatial/r3"

// V3i is a 3D integer vector. It indexes points of a sampling grid.
type V3i [3]int

// ToV3 converts V3i (integer) to r3.Vec (float).
func (a V3i) ToV3() r3.Vec {
	return r3.Vec{X: float64(a[0]), Y: float64(a[1]), Z: float64(a[2])}
}

// Prod returns the product of the vector components, which is the
// amount of points of a grid of size a.
func (a V3i) Prod() int {
	return a[0] * a[1] * a[2]
}

// Add adds two vectors. Return v = a + b.
func (a V3i) Add(b V3i) V3i {
	return V3i{a[0] + b[0], a[1] + b[1], a[2] + b[2]}
}
