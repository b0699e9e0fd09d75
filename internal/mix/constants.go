package mix

import "math"

// Mix levels
const (
	invSqrt2 = math.Sqrt2 / 2      // -3 dB
	sqrt3_2  = 1.2247448713915890 // sqrt(3/2), DPLII back-to-front level

	DefaultCenterMixLevel   = invSqrt2
	DefaultSurroundMixLevel = invSqrt2
	DefaultLFEMixLevel      = 0.0
)

// Fixed-point coefficient scales
const (
	q8Bits  = 8
	q15Bits = 15
	q8One   = 1 << q8Bits
	q15One  = 1 << q15Bits
)

// maxPositions is the number of bit positions a Layout can hold.
const maxPositions = 64
