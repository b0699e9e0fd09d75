package format

import "github.com/tphakala/go-audio-converter/internal/buffer"

// shape is the plane layout change a kernel performs.
type shape int

const (
	shapeFlat         shape = iota // packed to packed, or planar to planar
	shapeInterleave                // planar to packed
	shapeDeinterleave              // packed to planar
)

func (s shape) String() string {
	switch s {
	case shapeFlat:
		return "flat"
	case shapeInterleave:
		return "interleave"
	case shapeDeinterleave:
		return "deinterleave"
	default:
		return "unknown"
	}
}

// kernel converts between byte planes.
//
// Flat kernels convert n elements of every input plane into the matching
// output plane. Interleave kernels read n samples from each of channels
// input planes into one packed output plane. Deinterleave kernels do the
// reverse.
type kernel func(out, in [][]byte, n, channels int)

// kernelSet holds one kernel per shape for a format pair.
type kernelSet [3]kernel

type pairKey struct {
	in, out buffer.SampleFormat
}

// genericKernels covers every packed format pair. Planar formats use the
// entry of their packed twin.
var genericKernels = map[pairKey]kernelSet{
	{buffer.FormatU8, buffer.FormatU8}:   makeSet(u8ToU8),
	{buffer.FormatU8, buffer.FormatS16}:  makeSet(u8ToS16),
	{buffer.FormatU8, buffer.FormatS32}:  makeSet(u8ToS32),
	{buffer.FormatU8, buffer.FormatFLT}:  makeSet(u8ToFLT),
	{buffer.FormatU8, buffer.FormatDBL}:  makeSet(u8ToDBL),
	{buffer.FormatS16, buffer.FormatU8}:  makeSet(s16ToU8),
	{buffer.FormatS16, buffer.FormatS16}: makeSet(s16ToS16),
	{buffer.FormatS16, buffer.FormatS32}: makeSet(s16ToS32),
	{buffer.FormatS16, buffer.FormatFLT}: makeSet(s16ToFLT),
	{buffer.FormatS16, buffer.FormatDBL}: makeSet(s16ToDBL),
	{buffer.FormatS32, buffer.FormatU8}:  makeSet(s32ToU8),
	{buffer.FormatS32, buffer.FormatS16}: makeSet(s32ToS16),
	{buffer.FormatS32, buffer.FormatS32}: makeSet(s32ToS32),
	{buffer.FormatS32, buffer.FormatFLT}: makeSet(s32ToFLT),
	{buffer.FormatS32, buffer.FormatDBL}: makeSet(s32ToDBL),
	{buffer.FormatFLT, buffer.FormatU8}:  makeSet(fltToU8),
	{buffer.FormatFLT, buffer.FormatS16}: makeSet(fltToS16),
	{buffer.FormatFLT, buffer.FormatS32}: makeSet(fltToS32),
	{buffer.FormatFLT, buffer.FormatFLT}: makeSet(fltToFLT),
	{buffer.FormatFLT, buffer.FormatDBL}: makeSet(fltToDBL),
	{buffer.FormatDBL, buffer.FormatU8}:  makeSet(dblToU8),
	{buffer.FormatDBL, buffer.FormatS16}: makeSet(dblToS16),
	{buffer.FormatDBL, buffer.FormatS32}: makeSet(dblToS32),
	{buffer.FormatDBL, buffer.FormatFLT}: makeSet(dblToFLT),
	{buffer.FormatDBL, buffer.FormatDBL}: makeSet(dblToDBL),
}

func makeSet[S, D buffer.Sample](conv func(S) D) kernelSet {
	return kernelSet{
		shapeFlat:         flatKernel(conv),
		shapeInterleave:   interleaveKernel(conv),
		shapeDeinterleave: deinterleaveKernel(conv),
	}
}

func flatKernel[S, D buffer.Sample](conv func(S) D) kernel {
	return func(out, in [][]byte, n, _ int) {
		for p := range in {
			src := buffer.View[S](in[p])[:n]
			dst := buffer.View[D](out[p])[:n]
			for i, x := range src {
				dst[i] = conv(x)
			}
		}
	}
}

func interleaveKernel[S, D buffer.Sample](conv func(S) D) kernel {
	return func(out, in [][]byte, n, channels int) {
		dst := buffer.View[D](out[0])[:n*channels]
		for ch := range channels {
			src := buffer.View[S](in[ch])[:n]
			for i, x := range src {
				dst[i*channels+ch] = conv(x)
			}
		}
	}
}

func deinterleaveKernel[S, D buffer.Sample](conv func(S) D) kernel {
	return func(out, in [][]byte, n, channels int) {
		src := buffer.View[S](in[0])[:n*channels]
		for ch := range channels {
			dst := buffer.View[D](out[ch])[:n]
			for i := range dst {
				dst[i] = conv(src[i*channels+ch])
			}
		}
	}
}
