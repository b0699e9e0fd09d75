// Package converter converts streams of audio between sample formats,
// channel layouts and sample rates in pure Go.
//
// # Features
//
//   - Ten sample formats: u8, s16, s32, flt and dbl, each packed or planar
//   - Channel mixing with standard downmix and upmix matrices, center,
//     surround and LFE levels, Dolby and Dolby Pro Logic II encodings
//   - Polyphase FIR resampling with Kaiser, Blackman-Nuttall or cubic
//     windows, optional linear phase interpolation and drift compensation
//   - Rectangular, triangular, highpass triangular and noise-shaped dither
//     when quantizing to 16 bits
//   - Channel reordering and silencing with a channel mapping
//   - SIMD acceleration of the float kernels via github.com/tphakala/simd
//
// # Quick Start
//
// For one-shot resampling of float samples:
//
//	output, err := converter.ResampleMono(input, 44100, 48000)
//	if err != nil {
//	    log.Fatal(err)
//	}
//
// For streaming conversion configure a Context:
//
//	cfg := converter.DefaultConfig()
//	cfg.InLayout, cfg.OutLayout = converter.Layout5Point1, converter.LayoutStereo
//	cfg.InFormat, cfg.OutFormat = converter.FormatFLTP, converter.FormatS16
//	cfg.InRate, cfg.OutRate = 48000, 44100
//	cfg.DitherMethod = converter.DitherTriangular
//
//	c := converter.NewContext(cfg)
//	if err := c.Open(); err != nil {
//	    log.Fatal(err)
//	}
//	defer c.Close()
//
//	for chunk := range chunks {
//	    n, err := c.Convert(out, outSamples, chunk.Planes, chunk.Samples)
//	    if err != nil {
//	        log.Fatal(err)
//	    }
//	    write(out, n)
//	}
//
//	// flush the resampler and drain the FIFO
//	for {
//	    n, err := c.Convert(out, outSamples, nil, 0)
//	    if err != nil || n == 0 {
//	        break
//	    }
//	    write(out, n)
//	}
//
// # Pipeline
//
// Open plans the conversion once and builds only the stages it needs:
//
//	Input -> [convert/copy + downmix] -> [resample] -> [upmix] -> [convert/dither] -> Output
//
// Mixing and resampling run in an internal planar format chosen from the
// endpoint formats: s16p when both sides are 16-bit or narrower, fltp when
// mixing, and otherwise the narrowest of s32p, fltp and dblp that keeps both
// endpoints exact. Output that does not fit the caller's buffer is queued in
// a FIFO and returned by later Convert or Read calls. The FIFO grows without
// bound, so callers must drain it.
//
// # Thread Safety
//
// A Context is not safe for concurrent use. Use one Context per stream or
// serialize calls.
package converter
