package converter

import (
	"fmt"
	"math"

	"github.com/tphakala/go-audio-converter/internal/dither"
	"github.com/tphakala/go-audio-converter/internal/engine"
	"github.com/tphakala/go-audio-converter/internal/mathutil"
	"github.com/tphakala/go-audio-converter/internal/mix"
)

// Config holds every option of a Context. Options may only change while the
// context is closed.
//
// Start from DefaultConfig: the zero value has no layouts, formats or rates
// and fails validation.
type Config struct {
	// InLayout and OutLayout are the channel layouts. Their speaker counts
	// give the channel counts (1..32).
	InLayout  Layout `yaml:"in_layout"`
	OutLayout Layout `yaml:"out_layout"`

	InFormat  SampleFormat `yaml:"in_format"`
	OutFormat SampleFormat `yaml:"out_format"`

	// InRate and OutRate are sample rates in Hz.
	InRate  int `yaml:"in_rate"`
	OutRate int `yaml:"out_rate"`

	// InternalFormat forces the planar working format of the mixing and
	// resampling stages. FormatNone picks one from the endpoint formats.
	InternalFormat SampleFormat `yaml:"internal_format"`

	// MixCoeffType is the representation of mixing coefficients.
	MixCoeffType CoeffType `yaml:"mix_coeff_type"`

	// Mix levels used when building the default matrix.
	CenterMixLevel    float64        `yaml:"center_mix_level"`
	SurroundMixLevel  float64        `yaml:"surround_mix_level"`
	LFEMixLevel       float64        `yaml:"lfe_mix_level"`
	NormalizeMixLevel bool           `yaml:"normalize_mix_level"`
	MatrixEncoding    MatrixEncoding `yaml:"matrix_encoding"`

	// ForceResampling runs the resampler even when the rates match.
	ForceResampling bool `yaml:"force_resampling"`

	// Resampling filter.
	FilterSize   int        `yaml:"filter_size"`
	PhaseShift   int        `yaml:"phase_shift"`
	LinearInterp bool       `yaml:"linear_interp"`
	Cutoff       float64    `yaml:"cutoff"`
	FilterType   FilterType `yaml:"filter_type"`
	KaiserBeta   float64    `yaml:"kaiser_beta"`

	// DitherMethod applies when converting samples wider than 16 bits to
	// s16 or s16p.
	DitherMethod DitherMethod `yaml:"dither_method"`

	// DitherSeed seeds the dither noise. Zero selects a fixed default.
	DitherSeed uint64 `yaml:"dither_seed"`
}

// DefaultConfig returns a stereo s16 48 kHz passthrough configuration with
// the default mixing, filter and dither options.
func DefaultConfig() Config {
	return Config{
		InLayout:          LayoutStereo,
		OutLayout:         LayoutStereo,
		InFormat:          FormatS16,
		OutFormat:         FormatS16,
		InRate:            RateDAT,
		OutRate:           RateDAT,
		MixCoeffType:      CoeffFLT,
		CenterMixLevel:    mix.DefaultCenterMixLevel,
		SurroundMixLevel:  mix.DefaultSurroundMixLevel,
		LFEMixLevel:       mix.DefaultLFEMixLevel,
		NormalizeMixLevel: true,
		MatrixEncoding:    MatrixEncodingNone,
		FilterSize:        DefaultFilterSize,
		PhaseShift:        DefaultPhaseShift,
		Cutoff:            DefaultCutoff,
		FilterType:        FilterKaiser,
		KaiserBeta:        DefaultKaiserBeta,
		DitherMethod:      DitherNone,
	}
}

// InChannels returns the number of input channels.
func (c *Config) InChannels() int { return c.InLayout.Channels() }

// OutChannels returns the number of output channels.
func (c *Config) OutChannels() int { return c.OutLayout.Channels() }

// Validate checks that every option is in range.
func (c *Config) Validate() error {
	for _, l := range []struct {
		name   string
		layout Layout
	}{{"input", c.InLayout}, {"output", c.OutLayout}} {
		if n := l.layout.Channels(); n < 1 || n > MaxChannels {
			return fmt.Errorf("%w: %s layout %v has %d channels, want 1..%d",
				ErrInvalidArgument, l.name, l.layout, n, MaxChannels)
		}
	}

	if !c.InFormat.Valid() || !c.OutFormat.Valid() {
		return fmt.Errorf("%w: sample formats %v -> %v", ErrInvalidArgument, c.InFormat, c.OutFormat)
	}
	if c.InternalFormat != FormatNone && !c.InternalFormat.IsPlanar() {
		return fmt.Errorf("%w: internal format %v must be planar", ErrInvalidArgument, c.InternalFormat)
	}
	if c.InRate <= 0 || c.OutRate <= 0 {
		return fmt.Errorf("%w: sample rates must be positive: in=%d out=%d", ErrInvalidArgument, c.InRate, c.OutRate)
	}

	if c.MixCoeffType < CoeffFLT || c.MixCoeffType > CoeffQ15 {
		return fmt.Errorf("%w: mix coefficient type %v", ErrInvalidArgument, c.MixCoeffType)
	}
	for _, lv := range []struct {
		name  string
		level float64
	}{{"center", c.CenterMixLevel}, {"surround", c.SurroundMixLevel}, {"LFE", c.LFEMixLevel}} {
		if math.IsNaN(lv.level) || math.Abs(lv.level) > maxMixLevel {
			return fmt.Errorf("%w: %s mix level %g out of range [-%g, %g]",
				ErrInvalidArgument, lv.name, lv.level, maxMixLevel, maxMixLevel)
		}
	}
	if c.MatrixEncoding < MatrixEncodingNone || c.MatrixEncoding > MatrixEncodingDPLII {
		return fmt.Errorf("%w: matrix encoding %v", ErrInvalidArgument, c.MatrixEncoding)
	}

	if c.FilterSize < 0 || c.FilterSize > MaxFilterSize {
		return fmt.Errorf("%w: filter size %d out of range [0, %d]", ErrInvalidArgument, c.FilterSize, MaxFilterSize)
	}
	if c.PhaseShift < 0 || c.PhaseShift > MaxPhaseShift {
		return fmt.Errorf("%w: phase shift %d out of range [0, %d]", ErrInvalidArgument, c.PhaseShift, MaxPhaseShift)
	}
	if !(c.Cutoff > 0 && c.Cutoff <= 1) {
		return fmt.Errorf("%w: cutoff %g out of range (0, 1]", ErrInvalidArgument, c.Cutoff)
	}
	if !c.FilterType.Valid() {
		return fmt.Errorf("%w: filter type %v", ErrInvalidArgument, c.FilterType)
	}
	if !(c.KaiserBeta >= MinKaiserBeta && c.KaiserBeta <= MaxKaiserBeta) {
		return fmt.Errorf("%w: kaiser beta %g out of range [%g, %g]",
			ErrInvalidArgument, c.KaiserBeta, MinKaiserBeta, MaxKaiserBeta)
	}

	if !c.DitherMethod.Valid() {
		return fmt.Errorf("%w: dither method %v", ErrInvalidArgument, c.DitherMethod)
	}
	return nil
}

// KaiserBetaFor returns the Kaiser window β that reaches the given stopband
// attenuation in dB. Attenuations below 21 dB give 0, which Validate
// rejects.
func KaiserBetaFor(attenuationDB float64) float64 {
	return mathutil.KaiserBeta(attenuationDB)
}

// KaiserAttenuation estimates the stopband attenuation in dB of a Kaiser
// window with parameter beta.
func KaiserAttenuation(beta float64) float64 {
	return mathutil.KaiserAttenuation(beta)
}

// matrixOptions returns the options used to build the default matrix.
func (c *Config) matrixOptions() mix.MatrixOptions {
	return mix.MatrixOptions{
		CenterMixLevel:   c.CenterMixLevel,
		SurroundMixLevel: c.SurroundMixLevel,
		LFEMixLevel:      c.LFEMixLevel,
		Normalize:        c.NormalizeMixLevel,
		Encoding:         c.MatrixEncoding,
	}
}

// engineConfig returns the resampler configuration for the given working
// format and channel count.
func (c *Config) engineConfig(format SampleFormat, channels int) engine.Config {
	return engine.Config{
		InRate:     c.InRate,
		OutRate:    c.OutRate,
		Channels:   channels,
		Format:     format,
		PhaseShift: c.PhaseShift,
		FilterSize: c.FilterSize,
		Window:     c.FilterType,
		KaiserBeta: c.KaiserBeta,
		Cutoff:     c.Cutoff,
		Linear:     c.LinearInterp,
	}
}

// ditherOptions returns the options shared by every ditherer of a context.
func (c *Config) ditherOptions() []dither.Option {
	if c.DitherSeed == 0 {
		return nil
	}
	return []dither.Option{dither.WithSeed(c.DitherSeed)}
}
