package converter

import (
	"github.com/tphakala/go-audio-converter/internal/buffer"
	"github.com/tphakala/go-audio-converter/internal/engine"
	"github.com/tphakala/go-audio-converter/internal/filter"
)

// Common sample rates for the convenience constructors.
const (
	// RateTelephony is the telephony (PSTN narrowband) sample rate.
	RateTelephony = 8000

	// RateVoIP is the VoIP wideband sample rate.
	RateVoIP = 16000

	// RateSpeech is a common speech recognition sample rate.
	RateSpeech = 22050

	// RateCD is the CD quality sample rate (Red Book standard).
	RateCD = 44100

	// RateDAT is the DAT/DVD and video production sample rate.
	RateDAT = 48000

	// RateHiRes88 is the high-resolution 2x CD sample rate.
	RateHiRes88 = 88200

	// RateHiRes96 is the high-resolution 2x DAT sample rate.
	RateHiRes96 = 96000

	// RateHiRes192 is the very high resolution 4x DAT sample rate.
	RateHiRes192 = 192000
)

// Configuration defaults
const (
	DefaultFilterSize = 16
	DefaultPhaseShift = 10
	DefaultCutoff     = 0.8
	DefaultKaiserBeta = 9.0
)

// Configuration limits
const (
	MaxChannels   = buffer.MaxChannels
	MaxFilterSize = engine.MaxFilterSize
	MaxPhaseShift = engine.MaxPhaseShift
	MinKaiserBeta = filter.MinKaiserBeta
	MaxKaiserBeta = filter.MaxKaiserBeta

	// maxMixLevel bounds the center, surround and LFE levels.
	maxMixLevel = 32.0
)

// stereoChannels is the channel count of the stereo convenience helpers.
const stereoChannels = 2
