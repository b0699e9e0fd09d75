package mix

import (
	"math"

	"github.com/tphakala/go-audio-converter/internal/buffer"
	"github.com/tphakala/go-audio-converter/internal/simdops"
)

// kernel mixes n samples of the reduced channel set in place.
type kernel func(planes [][]byte, n int)

// selectKernel returns the kernel for the current reduction, preferring a
// fixed channel-count kernel when the reduced shape has one.
func (m *Mixer) selectKernel() (kernel, string) {
	r := m.r
	if len(r.outIdx) == 0 || len(r.inIdx) == 0 {
		return nil, "none"
	}

	switch m.format {
	case buffer.FormatFLTP:
		if k, name := fixedFloatKernel[float32](m); k != nil {
			return k, name
		}
		return anyFloatKernel[float32](m), "any_fltp_flt"
	case buffer.FormatDBLP:
		if k, name := fixedFloatKernel[float64](m); k != nil {
			return k, name
		}
		return anyFloatKernel[float64](m), "any_dblp_flt"
	case buffer.FormatS16P:
		switch m.coeffType {
		case CoeffQ8:
			return anyFixedKernel(m, q8Bits, clip16), "any_s16p_q8"
		case CoeffQ15:
			return anyFixedKernel(m, q15Bits, clip16), "any_s16p_q15"
		default:
			return anyIntFloatKernel(m, clip16), "any_s16p_flt"
		}
	default: // s32p
		if m.coeffType == CoeffQ15 {
			return anyFixedKernel(m, q15Bits, clip32), "any_s32p_q15"
		}
		return anyIntFloatKernel(m, clip32), "any_s32p_flt"
	}
}

// reducedFloat returns the coefficients of the reduced channel set as T.
func reducedFloat[T simdops.Float](m *Mixer) [][]T {
	coef := make([][]T, len(m.r.outIdx))
	for ro, o := range m.r.outIdx {
		coef[ro] = make([]T, len(m.r.inIdx))
		for ri, i := range m.r.inIdx {
			coef[ro][ri] = T(m.coefFloat[o][i])
		}
	}
	return coef
}

func reducedFixed(m *Mixer) [][]int64 {
	coef := make([][]int64, len(m.r.outIdx))
	for ro, o := range m.r.outIdx {
		coef[ro] = make([]int64, len(m.r.inIdx))
		for ri, i := range m.r.inIdx {
			coef[ro][ri] = int64(m.coefFixed[o][i])
		}
	}
	return coef
}

func views[T buffer.Sample](dst [][]T, planes [][]byte, idx []int, n int) [][]T {
	for k, p := range idx {
		dst[k] = buffer.View[T](planes[p])[:n]
	}
	return dst
}

func anyFloatKernel[T simdops.Float](m *Mixer) kernel {
	inIdx, outIdx := m.r.inIdx, m.r.outIdx
	coef := reducedFloat[T](m)
	ins := make([][]T, len(inIdx))
	outs := make([][]T, len(outIdx))
	tmp := make([]T, len(outIdx))

	return func(planes [][]byte, n int) {
		src := views(ins, planes, inIdx, n)
		dst := views(outs, planes, outIdx, n)
		for s := range n {
			for ro, row := range coef {
				var sum T
				for ri, c := range row {
					sum += src[ri][s] * c
				}
				tmp[ro] = sum
			}
			for ro := range dst {
				dst[ro][s] = tmp[ro]
			}
		}
	}
}

func anyIntFloatKernel[T int16 | int32](m *Mixer, clip func(int64) T) kernel {
	inIdx, outIdx := m.r.inIdx, m.r.outIdx
	coef := reducedFloat[float64](m)
	ins := make([][]T, len(inIdx))
	outs := make([][]T, len(outIdx))
	tmp := make([]T, len(outIdx))

	return func(planes [][]byte, n int) {
		src := views(ins, planes, inIdx, n)
		dst := views(outs, planes, outIdx, n)
		for s := range n {
			for ro, row := range coef {
				var sum float64
				for ri, c := range row {
					sum += float64(src[ri][s]) * c
				}
				tmp[ro] = clip(clampToInt64(math.Round(sum)))
			}
			for ro := range dst {
				dst[ro][s] = tmp[ro]
			}
		}
	}
}

func anyFixedKernel[T int16 | int32](m *Mixer, shift uint, clip func(int64) T) kernel {
	inIdx, outIdx := m.r.inIdx, m.r.outIdx
	coef := reducedFixed(m)
	ins := make([][]T, len(inIdx))
	outs := make([][]T, len(outIdx))
	tmp := make([]T, len(outIdx))

	return func(planes [][]byte, n int) {
		src := views(ins, planes, inIdx, n)
		dst := views(outs, planes, outIdx, n)
		for s := range n {
			for ro, row := range coef {
				var sum int64
				for ri, c := range row {
					sum += int64(src[ri][s]) * c
				}
				tmp[ro] = clip(sum >> shift)
			}
			for ro := range dst {
				dst[ro][s] = tmp[ro]
			}
		}
	}
}

// fixedFloatKernel returns an unrolled kernel for the 2->1, 1->2, 6->2 and
// 2->6 shapes, or nil.
func fixedFloatKernel[T simdops.Float](m *Mixer) (kernel, string) {
	inIdx, outIdx := m.r.inIdx, m.r.outIdx
	coef := reducedFloat[T](m)
	ins := make([][]T, len(inIdx))
	outs := make([][]T, len(outIdx))

	switch {
	case len(inIdx) == 2 && len(outIdx) == 1:
		c0, c1 := coef[0][0], coef[0][1]
		return func(planes [][]byte, n int) {
			src := views(ins, planes, inIdx, n)
			dst := views(outs, planes, outIdx, n)[0]
			a, b := src[0], src[1]
			for s := range dst {
				dst[s] = a[s]*c0 + b[s]*c1
			}
		}, "mix_2_to_1"

	case len(inIdx) == 1 && len(outIdx) == 2:
		ops := simdops.For[T]()
		return func(planes [][]byte, n int) {
			src := views(ins, planes, inIdx, n)[0]
			dst := views(outs, planes, outIdx, n)
			// an output sharing the input plane is scaled last
			last := -1
			for ro := range dst {
				if outIdx[ro] == inIdx[0] {
					last = ro
					continue
				}
				ops.Scale(dst[ro], src, coef[ro][0])
			}
			if last >= 0 {
				ops.Scale(dst[last], src, coef[last][0])
			}
		}, "mix_1_to_2"

	case len(inIdx) == 6 && len(outIdx) == 2:
		l, r := coef[0], coef[1]
		return func(planes [][]byte, n int) {
			src := views(ins, planes, inIdx, n)
			dst := views(outs, planes, outIdx, n)
			for s := range n {
				v0, v1, v2 := src[0][s], src[1][s], src[2][s]
				v3, v4, v5 := src[3][s], src[4][s], src[5][s]
				left := v0*l[0] + v1*l[1] + v2*l[2] + v3*l[3] + v4*l[4] + v5*l[5]
				right := v0*r[0] + v1*r[1] + v2*r[2] + v3*r[3] + v4*r[4] + v5*r[5]
				dst[0][s] = left
				dst[1][s] = right
			}
		}, "mix_6_to_2"

	case len(inIdx) == 2 && len(outIdx) == 6:
		return func(planes [][]byte, n int) {
			src := views(ins, planes, inIdx, n)
			dst := views(outs, planes, outIdx, n)
			for s := range n {
				a, b := src[0][s], src[1][s]
				for ro, row := range coef {
					dst[ro][s] = a*row[0] + b*row[1]
				}
			}
		}, "mix_2_to_6"
	}
	return nil, ""
}

func clampToInt64(v float64) int64 {
	switch {
	case v >= math.MaxInt64:
		return math.MaxInt64
	case v <= math.MinInt64:
		return math.MinInt64
	default:
		return int64(v)
	}
}

func clip16(v int64) int16 {
	return int16(max(math.MinInt16, min(math.MaxInt16, v)))
}

func clip32(v int64) int32 {
	return int32(max(math.MinInt32, min(math.MaxInt32, v)))
}
