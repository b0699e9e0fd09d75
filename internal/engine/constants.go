package engine

import "math"

// Fixed-point filter taps
const (
	q15Shift = 15 // s16p taps are Q15
	q30Shift = 30 // s32p taps are Q30
	q15Round = 1 << (q15Shift - 1)
	q30Round = 1 << (q30Shift - 1)
	q15One   = 1 << q15Shift
	q30One   = 1 << q30Shift
)

// Rate arithmetic
const (
	// maxIncrement bounds src_incr and dst_incr so index arithmetic on
	// one output step never overflows.
	maxIncrement = math.MaxInt32 / 2

	// maxOutputSamples bounds OutputSize estimates.
	maxOutputSamples = math.MaxInt32
)

// Configuration limits
const (
	MaxPhaseShift = 30
	MaxFilterSize = 32
	minRate       = 1
	minChannels   = 1
)

// Kernel names
const (
	kernelNearest = "nearest"
	kernelPrefix  = "polyphase"
	linearSuffix  = "_linear"
)
