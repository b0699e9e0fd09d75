package buffer

// Channel limits
const (
	MaxChannels = 32 // Maximum channels in any buffer or layout
	minChannels = 1
)

// Sample sizes in bytes
const (
	bytesU8  = 1
	bytesS16 = 2
	bytesS32 = 4
	bytesDBL = 8
)

// planarOffset is the distance between a packed format and its planar twin.
const planarOffset = FormatU8P - FormatU8

// Alignment
const (
	maxPtrAlign     = 64 // Largest pointer alignment tracked
	allocBlock      = 16 // Owned capacities are rounded up to this many samples
	allocGrowFactor = 2  // Minimum growth factor when an owned buffer reallocates
)

// u8Silence is the zero level of unsigned 8-bit samples.
const u8Silence = 0x80
