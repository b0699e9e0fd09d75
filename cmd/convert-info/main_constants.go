package main

// Default command-line flag values
const (
	defaultInputRate  = 44100 // CD quality sample rate
	defaultOutputRate = 48000 // DAT/DVD sample rate
	defaultLayout     = "stereo"
	defaultFormat     = "s16"
)

// Test signal parameters
const (
	testSignalFrequency = 1000.0 // 1 kHz test tone
	testSignalSamples   = 1000   // Default test signal length
	testSignalAmplitude = 0.5
)

// Demo parameters
const (
	demoSamples    = 48000 // One second at 48 kHz
	demoIterations = 20
	separatorWidth = 60
)
