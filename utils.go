package implicit

import (
	"errors"
	"math"
)

const (
	pi  = math.Pi
	tau = 2 * pi
)

var (
	// ErrInvalidParameter is returned for malformed or non-positive numeric inputs.
	ErrInvalidParameter = errors.New("invalid parameter")
	// ErrUnknownField is returned when a field selector names no known field.
	ErrUnknownField = errors.New("unknown implicit field")
	// ErrEmptyIsosurface is returned when the level set does not intersect the sampled volume.
	ErrEmptyIsosurface = errors.New("empty isosurface")
)

// Lerp does a linear interpolation from a to b, t = [0,1]. It is computed
// as (1-t)*a + t*b so that t=1 yields b exactly.
func Lerp(a, b, t float64) float64 {
	return (1-t)*a + t*b
}

// InvLerp is the inverse of Lerp. It returns the fraction of the way
// val is from a to b.
func InvLerp(val, a, b float64) float64 {
	return (val - a) / (b - a)
}

// MapRange linearly maps val from the [min1,max1] range onto [min2,max2].
func MapRange(val, min1, max1, min2, max2 float64) float64 {
	return Lerp(min2, max2, InvLerp(val, min1, max1))
}

// finitePositive reports whether every argument is a finite number greater than zero.
func finitePositive(vals ...float64) bool {
	for _, v := range vals {
		if !(v > 0) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}
