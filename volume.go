package implicit

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/spatial/r3"
)

// MaxSamples is the largest amount of grid points a Volume may hold.
const MaxSamples = 1 << 26

// Volume is a dense scalar field sampled on a regular grid starting at the
// origin with a uniform step along each axis.
type Volume struct {
	// Size is the amount of samples along each axis.
	Size V3i
	// Step is the distance between neighbouring samples.
	Step float64
	// Data holds the samples, the value at grid index (i,j,k) is
	// stored at Data[(i*Size[1]+j)*Size[2]+k].
	Data []float64
}

// GridPoints returns the amount of samples along an axis of length span
// sampled every step, including the first sample at or past span.
// The result is only meaningful when span/step fits in an int.
func GridPoints(span, step float64) int {
	return int(math.Ceil(span/step)) + 1
}

// NewVolume allocates a cubic volume that covers [0,span] on each axis.
func NewVolume(span, step float64) (*Volume, error) {
	if !finitePositive(span, step) {
		return nil, fmt.Errorf("span=%g step=%g must be finite and positive: %w", span, step, ErrInvalidParameter)
	}
	// Checked as float so huge span/step ratios cannot overflow int.
	fn := math.Ceil(span/step) + 1
	if math.IsInf(fn, 0) || fn*fn*fn > MaxSamples {
		return nil, fmt.Errorf("grid of %g³ points exceeds %d samples: %w", fn, MaxSamples, ErrInvalidParameter)
	}
	n := int(fn)
	size := V3i{n, n, n}
	return &Volume{
		Size: size,
		Step: step,
		Data: make([]float64, size.Prod()),
	}, nil
}

// Sample evaluates f over every point of a cubic grid covering [0,span]
// sampled every step.
func Sample(f Field, span, step, offset float64) (*Volume, error) {
	if !f.valid() {
		return nil, fmt.Errorf("%s: %w", f, ErrUnknownField)
	}
	vol, err := NewVolume(span, step)
	if err != nil {
		return nil, err
	}
	// Evaluate one x-slab per batch to keep the position buffer small.
	slab := vol.Size[1] * vol.Size[2]
	pos := make([]r3.Vec, slab)
	for i := 0; i < vol.Size[0]; i++ {
		vol.slabPositions(pos, i)
		err = f.EvaluateGrid(pos, vol.Data[i*slab:(i+1)*slab], offset)
		if err != nil {
			return nil, err
		}
	}
	return vol, nil
}

// SampleFunc evaluates an arbitrary scalar function over a cubic grid covering [0,span].
func SampleFunc(fn func(r3.Vec) float64, span, step float64) (*Volume, error) {
	vol, err := NewVolume(span, step)
	if err != nil {
		return nil, err
	}
	slab := vol.Size[1] * vol.Size[2]
	pos := make([]r3.Vec, slab)
	for i := 0; i < vol.Size[0]; i++ {
		vol.slabPositions(pos, i)
		dst := vol.Data[i*slab : (i+1)*slab]
		for j, p := range pos {
			dst[j] = fn(p)
		}
	}
	return vol, nil
}

func (v *Volume) slabPositions(dst []r3.Vec, i int) {
	x := float64(i) * v.Step
	n := 0
	for j := 0; j < v.Size[1]; j++ {
		y := float64(j) * v.Step
		for k := 0; k < v.Size[2]; k++ {
			dst[n] = r3.Vec{X: x, Y: y, Z: float64(k) * v.Step}
			n++
		}
	}
}

// Index returns the Data index of grid point idx.
func (v *Volume) Index(idx V3i) int {
	return (idx[0]*v.Size[1]+idx[1])*v.Size[2] + idx[2]
}

// At returns the sample at grid point idx.
func (v *Volume) At(idx V3i) float64 {
	return v.Data[v.Index(idx)]
}

// Position returns the coordinates of grid point idx.
func (v *Volume) Position(idx V3i) r3.Vec {
	return r3.Scale(v.Step, idx.ToV3())
}

// Gradient returns the finite difference gradient of the samples at grid
// point idx in units of grid steps. Central differences are used in the
// interior and one-sided differences on the grid boundary.
func (v *Volume) Gradient(idx V3i) r3.Vec {
	var g [3]float64
	for axis := 0; axis < 3; axis++ {
		lo, hi := idx, idx
		if idx[axis] > 0 {
			lo[axis]--
		}
		if idx[axis] < v.Size[axis]-1 {
			hi[axis]++
		}
		if d := hi[axis] - lo[axis]; d > 0 {
			g[axis] = (v.At(hi) - v.At(lo)) / float64(d)
		}
	}
	return r3.Vec{X: g[0], Y: g[1], Z: g[2]}
}
