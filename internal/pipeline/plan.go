// Package pipeline decides which conversion stages a converter runs and
// holds the output FIFO that buffers converted samples between calls.
package pipeline

import (
	"fmt"
	"strings"

	"github.com/tphakala/go-audio-converter/internal/buffer"
	"github.com/tphakala/go-audio-converter/internal/dither"
	"github.com/tphakala/go-audio-converter/internal/mix"
)

// RemapPoint names the stage that applies a caller channel mapping.
type RemapPoint int

const (
	// RemapNone means no channel mapping is in effect.
	RemapNone RemapPoint = iota
	// RemapInCopy remaps while copying input into the internal buffer.
	RemapInCopy
	// RemapInConvert remaps while converting input to the internal format.
	RemapInConvert
	// RemapOutConvert remaps while converting to the output format.
	RemapOutConvert
	// RemapOutCopy remaps while copying into the caller's output.
	RemapOutCopy
)

var remapNames = [...]string{
	RemapNone:       "none",
	RemapInCopy:     "in_copy",
	RemapInConvert:  "in_convert",
	RemapOutConvert: "out_convert",
	RemapOutCopy:    "out_copy",
}

func (r RemapPoint) String() string {
	if r < 0 || int(r) >= len(remapNames) {
		return fmt.Sprintf("RemapPoint(%d)", int(r))
	}
	return remapNames[r]
}

// StageType identifies one step of a conversion.
type StageType int

const (
	// StageInCopy copies input into the internal buffer.
	StageInCopy StageType = iota
	// StageInConvert converts input to the internal format.
	StageInConvert
	// StageDownmix reduces the channel count before resampling.
	StageDownmix
	// StageResample changes the sample rate.
	StageResample
	// StageUpmix applies the mixing matrix after resampling.
	StageUpmix
	// StageOutConvert converts to the output format.
	StageOutConvert
)

var stageNames = [...]string{
	StageInCopy:     "in_copy",
	StageInConvert:  "in_convert",
	StageDownmix:    "downmix",
	StageResample:   "resample",
	StageUpmix:      "upmix",
	StageOutConvert: "out_convert",
}

func (s StageType) String() string {
	if s < 0 || int(s) >= len(stageNames) {
		return fmt.Sprintf("StageType(%d)", int(s))
	}
	return stageNames[s]
}

// StageSpec describes one planned stage.
type StageSpec struct {
	Type     StageType
	Format   buffer.SampleFormat // format the stage produces
	Channels int                 // channels the stage produces
	Dither   bool                // conversion quantizes through a ditherer
	Remap    bool                // stage applies the channel mapping
}

func (s StageSpec) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s(%v, %dch", s.Type, s.Format, s.Channels)
	if s.Dither {
		b.WriteString(", dither")
	}
	if s.Remap {
		b.WriteString(", remap")
	}
	b.WriteByte(')')
	return b.String()
}

// Params holds the inputs to planning.
type Params struct {
	InChannels  int
	OutChannels int
	InFormat    buffer.SampleFormat
	OutFormat   buffer.SampleFormat
	InRate      int
	OutRate     int

	// InternalFormat forces the working format; FormatNone selects one.
	InternalFormat buffer.SampleFormat
	CoeffType      mix.CoeffType

	// LayoutsDiffer is set when the channel layouts differ even though the
	// channel counts may match.
	LayoutsDiffer bool
	// CustomMatrix is set when the caller supplied a mixing matrix.
	CustomMatrix    bool
	ForceResampling bool
	ChannelMap      bool
	Dither          dither.Method
}

// Validate checks the parameters.
func (p *Params) Validate() error {
	for _, ch := range []int{p.InChannels, p.OutChannels} {
		if ch < 1 || ch > buffer.MaxChannels {
			return fmt.Errorf("%w: channel count %d out of range [1, %d]",
				buffer.ErrInvalidArgument, ch, buffer.MaxChannels)
		}
	}
	if !p.InFormat.Valid() || !p.OutFormat.Valid() {
		return fmt.Errorf("%w: sample formats %v -> %v", buffer.ErrInvalidArgument, p.InFormat, p.OutFormat)
	}
	if p.InternalFormat != buffer.FormatNone && !p.InternalFormat.IsPlanar() {
		return fmt.Errorf("%w: internal format %v must be planar", buffer.ErrInvalidArgument, p.InternalFormat)
	}
	if p.InRate <= 0 || p.OutRate <= 0 {
		return fmt.Errorf("%w: sample rates %d -> %d must be positive", buffer.ErrInvalidArgument, p.InRate, p.OutRate)
	}
	if !p.Dither.Valid() {
		return fmt.Errorf("%w: dither method %v", buffer.ErrInvalidArgument, p.Dither)
	}
	return nil
}

// Plan is the set of stages a conversion runs, derived once at open time.
type Plan struct {
	Params

	// ResampleChannels is the channel count seen by the resampler: downmix
	// runs before it and upmix after it.
	ResampleChannels int

	ResampleNeeded   bool
	DownmixNeeded    bool
	UpmixNeeded      bool
	MixingNeeded     bool
	InConvertNeeded  bool
	InCopyNeeded     bool
	OutConvertNeeded bool

	// Internal is the working format of the mixing and resampling stages.
	// It is FormatNone when neither runs.
	Internal buffer.SampleFormat
	Remap    RemapPoint

	InDither  bool
	OutDither bool
}

// NewPlan validates p and derives the stage plan.
func NewPlan(p Params) (*Plan, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}

	pl := &Plan{
		Params:           p,
		ResampleChannels: min(p.InChannels, p.OutChannels),
		Internal:         p.InternalFormat,
	}
	pl.DownmixNeeded = p.InChannels > p.OutChannels
	pl.UpmixNeeded = p.OutChannels > p.InChannels ||
		(!pl.DownmixNeeded && (p.CustomMatrix || p.LayoutsDiffer))
	pl.MixingNeeded = pl.DownmixNeeded || pl.UpmixNeeded
	pl.ResampleNeeded = p.InRate != p.OutRate || p.ForceResampling

	if pl.Internal == buffer.FormatNone && (pl.MixingNeeded || pl.ResampleNeeded) {
		pl.Internal = pl.selectInternal()
	}

	outPlanar := p.OutFormat.IsPlanarFor(p.OutChannels)

	// a packed output cannot be remapped while copying, so route the
	// samples through a planar conversion
	if p.ChannelMap && !pl.MixingNeeded && !pl.ResampleNeeded && !outPlanar {
		pl.Internal = p.OutFormat.Planar()
	}

	if pl.ResampleNeeded || pl.MixingNeeded {
		pl.InConvertNeeded = p.InFormat != pl.Internal
	} else {
		pl.InConvertNeeded = p.ChannelMap && !outPlanar
	}

	if pl.ResampleNeeded || pl.MixingNeeded || pl.InConvertNeeded {
		pl.OutConvertNeeded = pl.Internal != p.OutFormat
	} else {
		pl.OutConvertNeeded = p.InFormat != p.OutFormat
	}

	pl.InCopyNeeded = !pl.InConvertNeeded &&
		(pl.MixingNeeded || (p.ChannelMap && pl.ResampleNeeded))

	switch {
	case !p.ChannelMap:
		pl.Remap = RemapNone
	case pl.InCopyNeeded:
		pl.Remap = RemapInCopy
	case pl.InConvertNeeded:
		pl.Remap = RemapInConvert
	case pl.OutConvertNeeded:
		pl.Remap = RemapOutConvert
	default:
		pl.Remap = RemapOutCopy
	}

	pl.InDither = pl.InConvertNeeded && ditherable(p.Dither, p.InFormat, pl.Internal)
	pl.OutDither = pl.OutConvertNeeded && ditherable(p.Dither, pl.OutSource(), p.OutFormat)
	return pl, nil
}

// selectInternal picks the working format for mixing and resampling.
func (pl *Plan) selectInternal() buffer.SampleFormat {
	in := pl.InFormat.Planar()
	out := pl.OutFormat.Planar()
	maxBytes := max(in.BytesPerSample(), out.BytesPerSample())

	if pl.MixingNeeded {
		switch pl.CoeffType {
		case mix.CoeffQ8:
			return buffer.FormatS16P
		case mix.CoeffQ15:
			if maxBytes <= shortBytes {
				return buffer.FormatS16P
			}
			return buffer.FormatS32P
		}
	}

	switch {
	case maxBytes <= shortBytes:
		return buffer.FormatS16P
	case pl.MixingNeeded:
		return buffer.FormatFLTP
	case maxBytes > wordBytes:
		return buffer.FormatDBLP
	case in == buffer.FormatS32P || out == buffer.FormatS32P:
		// s32 against flt keeps both exact only in double
		if in == buffer.FormatFLTP || out == buffer.FormatFLTP {
			return buffer.FormatDBLP
		}
		return buffer.FormatS32P
	default:
		return buffer.FormatFLTP
	}
}

// ditherable reports whether converting from in to out quantizes to 16 bits
// through a ditherer.
func ditherable(method dither.Method, in, out buffer.SampleFormat) bool {
	return method != dither.MethodNone &&
		out.Packed() == buffer.FormatS16 &&
		in.BytesPerSample() > shortBytes
}

// OutSource returns the format fed to the output conversion.
func (pl *Plan) OutSource() buffer.SampleFormat {
	if pl.InConvertNeeded || pl.ResampleNeeded || pl.MixingNeeded {
		return pl.Internal
	}
	return pl.InFormat
}

// InBufferChannels is the channel storage the internal input buffer needs
// so that it can be mixed in place.
func (pl *Plan) InBufferChannels() int {
	return max(pl.InChannels, pl.OutChannels)
}

// Stages lists the stages in execution order. Downmix runs in place on the
// internal input buffer.
func (pl *Plan) Stages() []StageSpec {
	stages := make([]StageSpec, 0, len(stageNames))
	src := pl.InFormat

	if pl.InCopyNeeded {
		stages = append(stages, StageSpec{
			Type: StageInCopy, Format: src, Channels: pl.InChannels,
			Remap: pl.Remap == RemapInCopy,
		})
	}
	if pl.InConvertNeeded {
		src = pl.Internal
		stages = append(stages, StageSpec{
			Type: StageInConvert, Format: src, Channels: pl.InChannels,
			Dither: pl.InDither, Remap: pl.Remap == RemapInConvert,
		})
	}
	if pl.DownmixNeeded {
		stages = append(stages, StageSpec{Type: StageDownmix, Format: src, Channels: pl.OutChannels})
	}
	if pl.ResampleNeeded {
		stages = append(stages, StageSpec{Type: StageResample, Format: src, Channels: pl.ResampleChannels})
	}
	if pl.UpmixNeeded {
		stages = append(stages, StageSpec{Type: StageUpmix, Format: src, Channels: pl.OutChannels})
	}
	if pl.OutConvertNeeded {
		stages = append(stages, StageSpec{
			Type: StageOutConvert, Format: pl.OutFormat, Channels: pl.OutChannels,
			Dither: pl.OutDither, Remap: pl.Remap == RemapOutConvert,
		})
	}
	return stages
}

// String summarizes the plan, e.g. "in_convert(fltp, 2ch) -> resample(fltp, 2ch)".
func (pl *Plan) String() string {
	stages := pl.Stages()
	if len(stages) == 0 {
		if pl.Remap == RemapOutCopy {
			return "copy(remap)"
		}
		return "copy"
	}
	parts := make([]string, len(stages))
	for i, s := range stages {
		parts[i] = s.String()
	}
	return strings.Join(parts, " -> ")
}
