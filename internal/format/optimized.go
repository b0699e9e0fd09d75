package format

import (
	"github.com/tphakala/go-audio-converter/internal/buffer"
	"github.com/tphakala/go-audio-converter/internal/simdops"
)

// optimizedKernel is a faster replacement for a generic kernel. It may touch
// samples past the requested count, up to the count rounded to samplesAlign,
// so it only runs on buffers that allocate at least that much.
type optimizedKernel struct {
	name         string
	pair         pairKey
	shape        shape
	channels     int // 0 accepts any channel count
	ptrAlign     int
	samplesAlign int
	fn           kernel
}

var optimizedKernels = []optimizedKernel{
	{
		name:         "interleave2_flt_simd",
		pair:         pairKey{buffer.FormatFLT, buffer.FormatFLT},
		shape:        shapeInterleave,
		channels:     stereoChannels,
		ptrAlign:     simdPtrAlign,
		samplesAlign: interleaveN,
		fn:           interleave2SIMD[float32],
	},
	{
		name:         "interleave2_dbl_simd",
		pair:         pairKey{buffer.FormatDBL, buffer.FormatDBL},
		shape:        shapeInterleave,
		channels:     stereoChannels,
		ptrAlign:     simdPtrAlign,
		samplesAlign: interleaveN,
		fn:           interleave2SIMD[float64],
	},
	{
		name:         "s16_to_flt_unrolled",
		pair:         pairKey{buffer.FormatS16, buffer.FormatFLT},
		shape:        shapeFlat,
		ptrAlign:     simdPtrAlign,
		samplesAlign: unrollBlock,
		fn:           s16ToFLTUnrolled,
	},
	{
		name:         "flt_to_s16_unrolled",
		pair:         pairKey{buffer.FormatFLT, buffer.FormatS16},
		shape:        shapeFlat,
		ptrAlign:     simdPtrAlign,
		samplesAlign: unrollBlock,
		fn:           fltToS16Unrolled,
	},
	{
		name:         "deinterleave_s16_2ch",
		pair:         pairKey{buffer.FormatS16, buffer.FormatS16},
		shape:        shapeDeinterleave,
		channels:     stereoChannels,
		ptrAlign:     simdPtrAlign,
		samplesAlign: unrollBlock,
		fn:           deinterleaveS16Stereo,
	},
	{
		name:         "deinterleave_s16_6ch",
		pair:         pairKey{buffer.FormatS16, buffer.FormatS16},
		shape:        shapeDeinterleave,
		channels:     surroundChannels,
		ptrAlign:     simdPtrAlign,
		samplesAlign: unrollBlock,
		fn:           deinterleaveS16Surround,
	},
}

// findOptimized returns the first optimized kernel that handles the pair,
// shape and channel count, or nil.
func findOptimized(pair pairKey, s shape, channels int) *optimizedKernel {
	for i := range optimizedKernels {
		k := &optimizedKernels[i]
		if k.pair == pair && k.shape == s && (k.channels == 0 || k.channels == channels) {
			return k
		}
	}
	return nil
}

func interleave2SIMD[F simdops.Float](out, in [][]byte, n, _ int) {
	ops := simdops.For[F]()
	ops.Interleave2(buffer.View[F](out[0])[:2*n], buffer.View[F](in[0])[:n], buffer.View[F](in[1])[:n])
}

func s16ToFLTUnrolled(out, in [][]byte, n, _ int) {
	for p := range in {
		src := buffer.View[int16](in[p])[:n]
		dst := buffer.View[float32](out[p])[:n]
		for i := 0; i+unrollBlock <= n; i += unrollBlock {
			s := src[i : i+unrollBlock : i+unrollBlock]
			d := dst[i : i+unrollBlock : i+unrollBlock]
			d[0] = float32(s[0]) / scaleS16
			d[1] = float32(s[1]) / scaleS16
			d[2] = float32(s[2]) / scaleS16
			d[3] = float32(s[3]) / scaleS16
			d[4] = float32(s[4]) / scaleS16
			d[5] = float32(s[5]) / scaleS16
			d[6] = float32(s[6]) / scaleS16
			d[7] = float32(s[7]) / scaleS16
		}
	}
}

func fltToS16Unrolled(out, in [][]byte, n, _ int) {
	for p := range in {
		src := buffer.View[float32](in[p])[:n]
		dst := buffer.View[int16](out[p])[:n]
		for i := 0; i+unrollBlock <= n; i += unrollBlock {
			s := src[i : i+unrollBlock : i+unrollBlock]
			d := dst[i : i+unrollBlock : i+unrollBlock]
			d[0] = fltToS16(s[0])
			d[1] = fltToS16(s[1])
			d[2] = fltToS16(s[2])
			d[3] = fltToS16(s[3])
			d[4] = fltToS16(s[4])
			d[5] = fltToS16(s[5])
			d[6] = fltToS16(s[6])
			d[7] = fltToS16(s[7])
		}
	}
}

func deinterleaveS16Stereo(out, in [][]byte, n, _ int) {
	src := buffer.View[int16](in[0])[:2*n]
	left := buffer.View[int16](out[0])[:n]
	right := buffer.View[int16](out[1])[:n]
	for i := range left {
		f := src[2*i : 2*i+2 : 2*i+2]
		left[i] = f[0]
		right[i] = f[1]
	}
}

func deinterleaveS16Surround(out, in [][]byte, n, _ int) {
	src := buffer.View[int16](in[0])[:surroundChannels*n]
	c0 := buffer.View[int16](out[0])[:n]
	c1 := buffer.View[int16](out[1])[:n]
	c2 := buffer.View[int16](out[2])[:n]
	c3 := buffer.View[int16](out[3])[:n]
	c4 := buffer.View[int16](out[4])[:n]
	c5 := buffer.View[int16](out[5])[:n]
	for i := range c0 {
		j := surroundChannels * i
		f := src[j : j+surroundChannels : j+surroundChannels]
		c0[i] = f[0]
		c1[i] = f[1]
		c2[i] = f[2]
		c3[i] = f[3]
		c4[i] = f[4]
		c5[i] = f[5]
	}
}
