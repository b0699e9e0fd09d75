package converter

import (
	"fmt"

	"github.com/tphakala/go-audio-converter/internal/buffer"
)

// openContext opens a context for cfg, returning it ready for Convert.
func openContext(cfg Config) (*Context, error) {
	c := NewContext(cfg)
	if err := c.Open(); err != nil {
		return nil, err
	}
	return c, nil
}

// NewDownmixToStereo opens a context folding the in layout down to stereo
// with the default mix levels. Format and rate are unchanged.
func NewDownmixToStereo(in Layout, format SampleFormat, rate int) (*Context, error) {
	cfg := DefaultConfig()
	cfg.InLayout, cfg.OutLayout = in, LayoutStereo
	cfg.InFormat, cfg.OutFormat = format, format
	cfg.InRate, cfg.OutRate = rate, rate
	return openContext(cfg)
}

// NewRateConverter opens a context changing only the sample rate.
func NewRateConverter(layout Layout, format SampleFormat, inRate, outRate int) (*Context, error) {
	cfg := DefaultConfig()
	cfg.InLayout, cfg.OutLayout = layout, layout
	cfg.InFormat, cfg.OutFormat = format, format
	cfg.InRate, cfg.OutRate = inRate, outRate
	return openContext(cfg)
}

// NewFormatConverter opens a context changing only the sample format. The
// rate only matters to noise-shaped dither and is set to 48 kHz.
func NewFormatConverter(layout Layout, in, out SampleFormat) (*Context, error) {
	cfg := DefaultConfig()
	cfg.InLayout, cfg.OutLayout = layout, layout
	cfg.InFormat, cfg.OutFormat = in, out
	return openContext(cfg)
}

// NewCDtoDAT opens a context for CD (44.1 kHz) to DAT (48 kHz) conversion,
// one of the most common professional audio conversions.
func NewCDtoDAT(layout Layout, format SampleFormat) (*Context, error) {
	return NewRateConverter(layout, format, RateCD, RateDAT)
}

// NewDATtoCD opens a context for DAT (48 kHz) to CD (44.1 kHz) conversion.
func NewDATtoCD(layout Layout, format SampleFormat) (*Context, error) {
	return NewRateConverter(layout, format, RateDAT, RateCD)
}

// ResampleMono is a convenience function for one-shot mono resampling.
// It opens a context, converts the input, flushes, and returns the result.
func ResampleMono(input []float64, inRate, outRate int) ([]float64, error) {
	out, err := resampleAll([][]float64{input}, FormatDBLP, inRate, outRate)
	if err != nil {
		return nil, err
	}
	return out[0], nil
}

// ResampleMonoFloat32 is the float32 equivalent of ResampleMono.
func ResampleMonoFloat32(input []float32, inRate, outRate int) ([]float32, error) {
	out, err := resampleAll([][]float32{input}, FormatFLTP, inRate, outRate)
	if err != nil {
		return nil, err
	}
	return out[0], nil
}

// ResampleStereo is a convenience function for one-shot stereo resampling
// of separate left and right channels.
func ResampleStereo(left, right []float64, inRate, outRate int) (leftOut, rightOut []float64, err error) {
	out, err := resampleAll([][]float64{left, right}, FormatDBLP, inRate, outRate)
	if err != nil {
		return nil, nil, err
	}
	return out[0], out[1], nil
}

// resampleAll runs whole planar channels through a rate converter and
// returns every output sample, including the flushed tail.
func resampleAll[T float32 | float64](planes [][]T, format SampleFormat, inRate, outRate int) ([][]T, error) {
	channels := len(planes)
	if channels == stereoChannels && len(planes[0]) != len(planes[1]) {
		return nil, fmt.Errorf("%w: channel lengths differ: %d and %d",
			ErrInvalidArgument, len(planes[0]), len(planes[1]))
	}

	c, err := NewRateConverter(DefaultLayout(channels), format, inRate, outRate)
	if err != nil {
		return nil, err
	}
	defer c.Close()

	if n := len(planes[0]); n > 0 {
		in := make([][]byte, channels)
		for ch, p := range planes {
			in[ch] = buffer.Bytes(p)
		}
		if _, err := c.Convert(nil, 0, in, n); err != nil {
			return nil, err
		}
	}
	if _, err := c.Convert(nil, 0, nil, 0); err != nil {
		return nil, fmt.Errorf("failed to flush: %w", err)
	}

	total := c.Available()
	result := make([][]T, channels)
	if total == 0 {
		for ch := range result {
			result[ch] = []T{}
		}
		return result, nil
	}
	out := make([][]byte, channels)
	for ch := range result {
		result[ch] = make([]T, total)
		out[ch] = buffer.Bytes(result[ch])
	}
	if _, err := c.Read(out, total); err != nil {
		return nil, err
	}
	return result, nil
}
