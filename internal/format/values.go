package format

import "math"

// roundShift divides v by 2^shift, rounding half away from zero.
func roundShift(v int64, shift uint) int64 {
	half := int64(1) << (shift - 1)
	if v >= 0 {
		return (v + half) >> shift
	}
	return -((-v + half) >> shift)
}

func clipU8(v int64) uint8 {
	switch {
	case v < 0:
		return 0
	case v > math.MaxUint8:
		return math.MaxUint8
	default:
		return uint8(v)
	}
}

func clip16(v int64) int16 {
	switch {
	case v < math.MinInt16:
		return math.MinInt16
	case v > math.MaxInt16:
		return math.MaxInt16
	default:
		return int16(v)
	}
}

func clip32(v int64) int32 {
	switch {
	case v < math.MinInt32:
		return math.MinInt32
	case v > math.MaxInt32:
		return math.MaxInt32
	default:
		return int32(v)
	}
}

// quantize rounds v half away from zero and clamps it to [lo, hi].
// NaN maps to zero.
func quantize(v, lo, hi float64) int64 {
	r := math.Round(v)
	switch {
	case r >= hi:
		return int64(hi)
	case r <= lo:
		return int64(lo)
	case r == r:
		return int64(r)
	default:
		return 0
	}
}

// Per-sample conversions, one per packed format pair.

func u8ToU8(x uint8) uint8     { return x }
func u8ToS16(x uint8) int16    { return int16(int(x)-u8Offset) << shiftU8ToS16 }
func u8ToS32(x uint8) int32    { return int32(int(x)-u8Offset) << shiftU8ToS32 }
func u8ToFLT(x uint8) float32  { return float32(int(x)-u8Offset) / scaleU8 }
func u8ToDBL(x uint8) float64  { return float64(int(x)-u8Offset) / scaleU8 }
func s16ToU8(x int16) uint8    { return clipU8(roundShift(int64(x), shiftU8ToS16) + u8Offset) }
func s16ToS16(x int16) int16   { return x }
func s16ToS32(x int16) int32   { return int32(x) << shiftS16ToS32 }
func s16ToFLT(x int16) float32 { return float32(x) / scaleS16 }
func s16ToDBL(x int16) float64 { return float64(x) / scaleS16 }
func s32ToU8(x int32) uint8    { return clipU8(roundShift(int64(x), shiftU8ToS32) + u8Offset) }
func s32ToS16(x int32) int16   { return clip16(roundShift(int64(x), shiftS16ToS32)) }
func s32ToS32(x int32) int32   { return x }

// s32ToFLT divides in float64 and rounds once to float32, so values below
// float32 precision are rounded rather than truncated.
func s32ToFLT(x int32) float32 { return float32(float64(x) / scaleS32) }
func s32ToDBL(x int32) float64 { return float64(x) / scaleS32 }

func fltToU8(x float32) uint8 {
	return uint8(quantize(float64(x)*scaleU8, -scaleU8, scaleU8-1) + u8Offset)
}
func fltToS16(x float32) int16 {
	return int16(quantize(float64(x)*scaleS16, math.MinInt16, math.MaxInt16))
}
func fltToS32(x float32) int32 {
	return int32(quantize(float64(x)*scaleS32, math.MinInt32, math.MaxInt32))
}
func fltToFLT(x float32) float32 { return x }
func fltToDBL(x float32) float64 { return float64(x) }

func dblToU8(x float64) uint8 {
	return uint8(quantize(x*scaleU8, -scaleU8, scaleU8-1) + u8Offset)
}
func dblToS16(x float64) int16 {
	return int16(quantize(x*scaleS16, math.MinInt16, math.MaxInt16))
}
func dblToS32(x float64) int32 {
	return int32(quantize(x*scaleS32, math.MinInt32, math.MaxInt32))
}
func dblToFLT(x float64) float32 { return float32(x) }
func dblToDBL(x float64) float64 { return x }
