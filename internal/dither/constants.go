package dither

import "math"

// Quantization
const (
	// s16Scale attenuates full scale slightly so dither never clips.
	s16Scale = 32753.0

	// uniformScale maps a signed 32-bit draw to [-0.5, 0.5].
	uniformScale = 1.0 / (2.0 * math.MaxInt32)

	// highpassGain keeps the (-1, 2, -1) filtered noise at unit power: sqrt(1/6).
	highpassGain = 0.40824829046386301723
)

// Noise buffers
const (
	noiseAlign      = 16    // Noise is consumed in blocks of this many samples
	noisePad        = 16    // Extra samples generated past the aligned size
	minNoiseSamples = 32768 // Initial noise buffer size
)

// Muting
const (
	// muteThresholdSec is the run of silent input after which dither stops.
	muteThresholdSec = 0.000333

	// muteResetFactor scales the dither threshold into the noise shaping
	// history reset threshold.
	muteResetFactor = 4
)

// Noise shaping
const (
	nsTaps      = 4
	nsErrorClip = 1.5 // Bound on the fed-back quantization error, in LSB
)

// DefaultSeed seeds the per-channel noise generators.
const DefaultSeed uint64 = 0xC0FFEE

// Supported noise shaping rates
const (
	rate48k = 48000
	rate44k = 44100
)
