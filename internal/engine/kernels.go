package engine

import (
	"math"

	"github.com/tphakala/go-audio-converter/internal/buffer"
	"github.com/tphakala/go-audio-converter/internal/filter"
	"github.com/tphakala/go-audio-converter/internal/simdops"
)

// kernel computes output samples for one channel plane.
type kernel interface {
	name() string
	apply(dst, src []byte, steps []step)
}

// newKernel stores the bank in the coefficient type of format and returns
// the matching filter kernel. format has been validated.
func newKernel(format buffer.SampleFormat, bank *filter.Bank, linear bool, srcIncr int64) kernel {
	switch format {
	case buffer.FormatS16P:
		return &int16Kernel{
			taps:    quantizeTaps(bank, func(c float64) int16 { return int16(clipRound(c*q15One, math.MinInt16, math.MaxInt16)) }),
			length:  bank.FilterLength,
			linear:  linear,
			srcIncr: srcIncr,
		}
	case buffer.FormatS32P:
		return &int32Kernel{
			taps:    quantizeTaps(bank, func(c float64) int32 { return int32(clipRound(c*q30One, math.MinInt32, math.MaxInt32)) }),
			length:  bank.FilterLength,
			linear:  linear,
			srcIncr: srcIncr,
		}
	case buffer.FormatFLTP:
		return newFloatKernel[float32](bank, linear, srcIncr, "flt")
	default:
		return newFloatKernel[float64](bank, linear, srcIncr, "dbl")
	}
}

func newNearestKernel(format buffer.SampleFormat) kernel {
	switch format {
	case buffer.FormatS16P:
		return nearestKernel[int16]{}
	case buffer.FormatS32P:
		return nearestKernel[int32]{}
	case buffer.FormatFLTP:
		return nearestKernel[float32]{}
	default:
		return nearestKernel[float64]{}
	}
}

// quantizeTaps flattens every phase, including the extra one, into a
// single slice of phase-major taps.
func quantizeTaps[T buffer.Sample](bank *filter.Bank, q func(float64) T) []T {
	taps := make([]T, 0, len(bank.Phases)*bank.FilterLength)
	for _, phase := range bank.Phases {
		for _, c := range phase {
			taps = append(taps, q(c))
		}
	}
	return taps
}

// clipRound rounds half to even and clips to [lo, hi].
func clipRound(v, lo, hi float64) float64 {
	return max(lo, min(hi, math.RoundToEven(v)))
}

func kernelName(coeff string, linear bool) string {
	name := kernelPrefix + "_" + coeff
	if linear {
		name += linearSuffix
	}
	return name
}

// =============================================================================
// Nearest neighbour
// =============================================================================

type nearestKernel[T buffer.Sample] struct{}

func (nearestKernel[T]) name() string { return kernelNearest }

func (nearestKernel[T]) apply(dst, src []byte, steps []step) {
	out, in := buffer.View[T](dst), buffer.View[T](src)
	for i, s := range steps {
		out[i] = in[s.offset]
	}
}

// =============================================================================
// Floating point
// =============================================================================

type floatKernel[F simdops.Float] struct {
	ops     *simdops.Ops[F]
	taps    []F
	length  int
	linear  bool
	srcIncr F
	coeff   string
}

func newFloatKernel[F simdops.Float](bank *filter.Bank, linear bool, srcIncr int64, coeff string) *floatKernel[F] {
	return &floatKernel[F]{
		ops:     simdops.For[F](),
		taps:    quantizeTaps(bank, func(c float64) F { return F(c) }),
		length:  bank.FilterLength,
		linear:  linear,
		srcIncr: F(srcIncr),
		coeff:   coeff,
	}
}

func (k *floatKernel[F]) name() string { return kernelName(k.coeff, k.linear) }

func (k *floatKernel[F]) apply(dst, src []byte, steps []step) {
	out, in := buffer.View[F](dst), buffer.View[F](src)
	n := k.length
	for i, s := range steps {
		x := in[s.offset : s.offset+n]
		base := s.phase * n
		val := k.ops.Dot(x, k.taps[base:base+n])
		if k.linear {
			next := k.ops.Dot(x, k.taps[base+n:base+2*n])
			val += (next - val) * F(s.frac) / k.srcIncr
		}
		out[i] = val
	}
}

// =============================================================================
// Fixed point
// =============================================================================

// int16Kernel filters s16p with Q15 taps, accumulating in int32.
type int16Kernel struct {
	taps    []int16
	length  int
	linear  bool
	srcIncr int64
}

func (k *int16Kernel) name() string { return kernelName("s16p_q15", k.linear) }

func (k *int16Kernel) apply(dst, src []byte, steps []step) {
	out, in := buffer.View[int16](dst), buffer.View[int16](src)
	n := k.length
	for i, s := range steps {
		x := in[s.offset : s.offset+n]
		base := s.phase * n
		val := dot16(x, k.taps[base:base+n])
		if k.linear {
			next := dot16(x, k.taps[base+n:base+2*n])
			val += int32((int64(next) - int64(val)) * s.frac / k.srcIncr)
		}
		out[i] = outQ15(val)
	}
}

func dot16(x, taps []int16) int32 {
	var acc int32
	for j, v := range x {
		acc += int32(v) * int32(taps[j])
	}
	return acc
}

// outQ15 rounds a Q15 accumulator with ties toward +inf and clips.
func outQ15(v int32) int16 {
	v = (v + q15Round) >> q15Shift
	return int16(max(math.MinInt16, min(math.MaxInt16, v)))
}

// int32Kernel filters s32p with Q30 taps, accumulating in int64.
type int32Kernel struct {
	taps    []int32
	length  int
	linear  bool
	srcIncr int64
}

func (k *int32Kernel) name() string { return kernelName("s32p_q30", k.linear) }

func (k *int32Kernel) apply(dst, src []byte, steps []step) {
	out, in := buffer.View[int32](dst), buffer.View[int32](src)
	n := k.length
	for i, s := range steps {
		x := in[s.offset : s.offset+n]
		base := s.phase * n
		val := dot32(x, k.taps[base:base+n])
		if k.linear {
			next := dot32(x, k.taps[base+n:base+2*n])
			val += lerpQ30(next-val, s.frac, k.srcIncr)
		}
		out[i] = outQ30(val)
	}
}

func dot32(x, taps []int32) int64 {
	var acc int64
	for j, v := range x {
		acc += int64(v) * int64(taps[j])
	}
	return acc
}

// lerpQ30 returns d*frac/incr truncated toward zero without overflowing
// for any Q30 accumulator difference.
func lerpQ30(d, frac, incr int64) int64 {
	return d/incr*frac + d%incr*frac/incr
}

// outQ30 rounds a Q30 accumulator with ties toward +inf and clips.
func outQ30(v int64) int32 {
	v = (v + q30Round) >> q30Shift
	return int32(max(math.MinInt32, min(math.MaxInt32, v)))
}
