// Package simdops gathers the SIMD kernels used by the conversion stages
// behind one generic table, so float32 and float64 sample paths share code.
package simdops

import (
	"github.com/tphakala/simd/cpu"
	"github.com/tphakala/simd/f32"
	"github.com/tphakala/simd/f64"
)

// Float is the type constraint for floating point sample types.
type Float interface {
	float32 | float64
}

// Ops holds the SIMD-accelerated operations for type F.
type Ops[F Float] struct {
	// Dot computes the dot product of two slices of equal length.
	// It does not bounds check: callers slice both operands to the tap count.
	Dot func(a, b []F) F

	// Interleave2 writes dst[2i] = a[i], dst[2i+1] = b[i].
	Interleave2 func(dst, a, b []F)

	// Sum returns the sum of all elements.
	Sum func(a []F) F

	// Scale multiplies each element by s: dst[i] = a[i] * s.
	Scale func(dst, a []F, s F)
}

var (
	ops32 = Ops[float32]{
		Dot:         f32.DotProductUnsafe,
		Interleave2: f32.Interleave2,
		Sum:         f32.Sum,
		Scale:       f32.Scale,
	}
	ops64 = Ops[float64]{
		Dot:         f64.DotProductUnsafe,
		Interleave2: f64.Interleave2,
		Sum:         f64.Sum,
		Scale:       f64.Scale,
	}
)

// For returns the Ops instance for type F.
// The type switch runs once when a kernel is built, not per sample.
func For[F Float]() *Ops[F] {
	var zero F
	switch any(zero).(type) {
	case float32:
		ops, ok := any(&ops32).(*Ops[F])
		if !ok {
			panic("simdops: type assertion failed for float32")
		}
		return ops
	case float64:
		ops, ok := any(&ops64).(*Ops[F])
		if !ok {
			panic("simdops: type assertion failed for float64")
		}
		return ops
	default:
		panic("simdops: unsupported float type")
	}
}

// Description reports the instruction set the SIMD kernels dispatch to.
func Description() string {
	return cpu.Info()
}
