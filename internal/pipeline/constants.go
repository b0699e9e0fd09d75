package pipeline

// FIFO sizing
const (
	// DefaultFIFOCapacity is the initial FIFO capacity in samples per channel.
	DefaultFIFOCapacity = 1024

	// bufferGrowthFactor multiplies the capacity each time the FIFO grows.
	bufferGrowthFactor = 2
)

// Intermediate buffer sizing
const (
	// ResampleBufferSamples is the initial capacity of the resampler output buffer.
	ResampleBufferSamples = 1024
)

// Internal format selection thresholds, in bytes per sample.
const (
	shortBytes = 2
	wordBytes  = 4
)
