package converter

import (
	"github.com/tphakala/go-audio-converter/internal/dither"
	"github.com/tphakala/go-audio-converter/internal/format"
	"github.com/tphakala/go-audio-converter/internal/simdops"
)

// Info describes how an open context converts audio.
type Info struct {
	// Plan summarizes the stages, e.g. "in_convert(fltp, 2ch) -> resample(fltp, 2ch)".
	Plan string

	// Stages lists the stages in execution order.
	Stages []string

	// InternalFormat is the working format of the mixing and resampling
	// stages, or FormatNone when neither runs.
	InternalFormat SampleFormat

	// RemapPoint names the stage applying the channel mapping.
	RemapPoint string

	// InputKernel and OutputKernel name the kernels of the format
	// conversions, empty when the stage is not needed.
	InputKernel  string
	OutputKernel string

	// MixKernel names the mixing kernel, empty without mixing.
	MixKernel string

	// ResampleKernel names the resampling kernel, empty without resampling.
	ResampleKernel string

	// FilterLength is the number of taps per filter phase.
	FilterLength int

	// Phases is the number of polyphase filter phases.
	Phases int

	// StopbandAttenuation estimates the stopband attenuation in dB of a
	// Kaiser resampling filter, zero for other windows.
	StopbandAttenuation float64

	// Latency is the resampler's current delay in input samples.
	Latency int

	// SIMDType describes the instruction set the SIMD kernels use.
	SIMDType string
}

// Info returns a description of the open context.
func (c *Context) Info() (Info, error) {
	if err := c.checkOpen("describe"); err != nil {
		return Info{}, err
	}
	s := c.s

	info := Info{
		Plan:           s.plan.String(),
		InternalFormat: s.plan.Internal,
		RemapPoint:     s.plan.Remap.String(),
		InputKernel:    converterKernel(s.inConv),
		OutputKernel:   converterKernel(s.outConv),
		SIMDType:       simdops.Description(),
	}
	for _, st := range s.plan.Stages() {
		info.Stages = append(info.Stages, st.String())
	}
	if s.mixer != nil {
		info.MixKernel = s.mixer.KernelName()
	}
	if r := s.resampler; r != nil {
		info.ResampleKernel = r.KernelName()
		info.FilterLength = r.FilterLength()
		info.Phases = r.PhaseCount()
		if c.cfg.FilterType == FilterKaiser {
			info.StopbandAttenuation = KaiserAttenuation(c.cfg.KaiserBeta)
		}
		info.Latency = r.Delay()
	}
	return info, nil
}

func converterKernel(conv sampleConverter) string {
	switch v := conv.(type) {
	case *format.Converter:
		if name := v.OptimizedKernel(); name != "" {
			return name
		}
		return "generic"
	case *dither.Ditherer:
		return "dither_" + v.Method().String()
	}
	return ""
}
