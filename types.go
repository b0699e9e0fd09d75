package converter

import (
	"github.com/tphakala/go-audio-converter/internal/buffer"
	"github.com/tphakala/go-audio-converter/internal/dither"
	"github.com/tphakala/go-audio-converter/internal/filter"
	"github.com/tphakala/go-audio-converter/internal/mix"
)

// SampleFormat identifies one of the ten sample representations.
type SampleFormat = buffer.SampleFormat

// Sample formats. The P suffix marks planar variants.
const (
	FormatNone = buffer.FormatNone
	FormatU8   = buffer.FormatU8
	FormatS16  = buffer.FormatS16
	FormatS32  = buffer.FormatS32
	FormatFLT  = buffer.FormatFLT
	FormatDBL  = buffer.FormatDBL
	FormatU8P  = buffer.FormatU8P
	FormatS16P = buffer.FormatS16P
	FormatS32P = buffer.FormatS32P
	FormatFLTP = buffer.FormatFLTP
	FormatDBLP = buffer.FormatDBLP
)

// ParseSampleFormat parses a short format name such as "s16" or "fltp".
func ParseSampleFormat(s string) (SampleFormat, error) { return buffer.ParseSampleFormat(s) }

// Layout is a set of speaker positions.
type Layout = mix.Layout

// Common channel layouts.
const (
	LayoutMono          = mix.LayoutMono
	LayoutStereo        = mix.LayoutStereo
	Layout2Point1       = mix.Layout2Point1
	LayoutSurround      = mix.LayoutSurround
	LayoutQuad          = mix.LayoutQuad
	Layout5Point0       = mix.Layout5Point0
	Layout5Point1       = mix.Layout5Point1
	Layout5Point1Back   = mix.Layout5Point1Back
	Layout6Point1       = mix.Layout6Point1
	Layout7Point1       = mix.Layout7Point1
	LayoutStereoDownmix = mix.LayoutStereoDownmix
)

// ParseLayout parses a layout name ("5.1"), a "+"-joined channel list
// ("FL+FR+LFE") or a numeric mask.
func ParseLayout(s string) (Layout, error) { return mix.ParseLayout(s) }

// DefaultLayout returns the conventional layout for a channel count, or 0.
func DefaultLayout(channels int) Layout { return mix.DefaultLayout(channels) }

// CoeffType selects how mixing coefficients are stored.
type CoeffType = mix.CoeffType

// Mixing coefficient types.
const (
	CoeffFLT = mix.CoeffFLT
	CoeffQ8  = mix.CoeffQ8
	CoeffQ15 = mix.CoeffQ15
)

// MatrixEncoding selects how surround channels fold into stereo.
type MatrixEncoding = mix.Encoding

// Matrix encodings.
const (
	MatrixEncodingNone  = mix.EncodingNone
	MatrixEncodingDolby = mix.EncodingDolby
	MatrixEncodingDPLII = mix.EncodingDPLII
)

// FilterType selects the window of the resampling filter.
type FilterType = filter.WindowType

// Resampling filter windows.
const (
	FilterCubic           = filter.WindowCubic
	FilterBlackmanNuttall = filter.WindowBlackmanNuttall
	FilterKaiser          = filter.WindowKaiser
)

// DitherMethod selects the dither applied when quantizing to 16 bits.
type DitherMethod = dither.Method

// Dither methods.
const (
	DitherNone               = dither.MethodNone
	DitherRectangular        = dither.MethodRectangular
	DitherTriangular         = dither.MethodTriangular
	DitherTriangularHighpass = dither.MethodTriangularHighpass
	DitherTriangularNS       = dither.MethodTriangularNS
)
