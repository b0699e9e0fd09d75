package format

// Full-scale factors: a sample of b bits maps to [-1, 1) through 2^(b-1).
const (
	scaleU8  = 1 << 7
	scaleS16 = 1 << 15
	scaleS32 = 1 << 31

	u8Offset = 0x80 // Zero level of unsigned 8-bit samples
)

// Shift distances between integer widths.
const (
	shiftU8ToS16  = 8
	shiftU8ToS32  = 24
	shiftS16ToS32 = 16
)

// Optimized kernel requirements.
const (
	simdPtrAlign = 16 // Plane addresses must be multiples of this
	unrollBlock  = 8  // Samples per unrolled iteration
	interleaveN  = 4  // Sample multiple for the SIMD interleave kernels

	stereoChannels   = 2
	surroundChannels = 6
)
