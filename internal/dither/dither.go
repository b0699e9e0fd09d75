// Package dither reduces samples to 16 bits with optional dither noise and
// noise shaping.
//
// Input of any format is first converted to fltp, quantized to s16p per
// channel, then interleaved when the destination is packed s16.
package dither

import (
	"fmt"
	"math"

	"github.com/tphakala/go-audio-converter/internal/buffer"
	"github.com/tphakala/go-audio-converter/internal/format"
	"github.com/tphakala/go-audio-converter/internal/simdops"
)

// Ditherer converts buffers to s16 or s16p with dither.
//
// A Ditherer is not safe for concurrent use.
type Ditherer struct {
	method   Method
	in, out  buffer.SampleFormat
	channels int

	cmap *buffer.ChannelMap
	seed uint64

	toFloat  *format.Converter // nil when the input is fltp and unmapped
	toPacked *format.Converter // nil when the output is s16p
	flt      *buffer.Buffer
	s16      *buffer.Buffer

	shaper  *shaper
	muteAt  int
	resetAt int
	states  []*channelState

	ops    *simdops.Ops[float32]
	scaled []float32
}

// Option configures a Ditherer.
type Option func(*Ditherer)

// WithChannelMap reorders channels while converting the input to fltp.
func WithChannelMap(m *buffer.ChannelMap) Option {
	return func(d *Ditherer) {
		d.cmap = m
	}
}

// WithSeed sets the base seed of the per-channel noise generators.
func WithSeed(seed uint64) Option {
	return func(d *Ditherer) {
		d.seed = seed
	}
}

// New creates a ditherer from in to out, which must be s16 or s16p. The
// input must be wider than 16 bits.
func New(method Method, out, in buffer.SampleFormat, channels, sampleRate int, opts ...Option) (*Ditherer, error) {
	if !method.Valid() || method == MethodNone {
		return nil, fmt.Errorf("%w: dither method %v", buffer.ErrInvalidArgument, method)
	}
	if !in.Valid() || out.Packed() != buffer.FormatS16 || in.BytesPerSample() <= 2 {
		return nil, fmt.Errorf("%w: dithering %v to %v", buffer.ErrUnsupported, in, out)
	}
	if channels < 1 || channels > buffer.MaxChannels {
		return nil, fmt.Errorf("%w: channel count %d out of range [1, %d]",
			buffer.ErrInvalidArgument, channels, buffer.MaxChannels)
	}
	if sampleRate <= 0 {
		return nil, fmt.Errorf("%w: sample rate %d", buffer.ErrInvalidArgument, sampleRate)
	}

	d := &Ditherer{
		method:   method,
		in:       in,
		out:      out,
		channels: channels,
		seed:     DefaultSeed,
		ops:      simdops.For[float32](),
	}
	for _, opt := range opts {
		opt(d)
	}

	if method == MethodTriangularNS {
		sh, ok := shaperFor(sampleRate)
		if !ok {
			return nil, fmt.Errorf("%w: %v dither needs 44100 or 48000 Hz, got %d",
				buffer.ErrUnsupported, method, sampleRate)
		}
		d.shaper = sh
	}

	var err error
	if in != buffer.FormatFLTP || d.cmap != nil {
		var convOpts []format.Option
		if d.cmap != nil {
			convOpts = append(convOpts, format.WithChannelMap(d.cmap))
		}
		if d.toFloat, err = format.New(buffer.FormatFLTP, in, channels, convOpts...); err != nil {
			return nil, err
		}
		if d.flt, err = buffer.New("dither flt buffer", channels, 0, buffer.FormatFLTP); err != nil {
			return nil, err
		}
	}
	if out != buffer.FormatS16P {
		if d.toPacked, err = format.New(out, buffer.FormatS16P, channels); err != nil {
			return nil, err
		}
		if d.s16, err = buffer.New("dither s16 buffer", channels, 0, buffer.FormatS16P); err != nil {
			return nil, err
		}
	}

	d.muteAt = int(math.RoundToEven(float64(sampleRate) * muteThresholdSec))
	d.resetAt = d.muteAt * muteResetFactor

	d.states = make([]*channelState, channels)
	for ch := range d.states {
		s := newChannelState(d.seed, ch, d.resetAt+1)
		s.generate(method, max(minNoiseSamples, sampleRate/2))
		d.states[ch] = s
	}
	return d, nil
}

// Method returns the dither method.
func (d *Ditherer) Method() Method { return d.method }

// InFormat returns the source format.
func (d *Ditherer) InFormat() buffer.SampleFormat { return d.in }

// OutFormat returns the destination format.
func (d *Ditherer) OutFormat() buffer.SampleFormat { return d.out }

// MuteThreshold returns the silent run, in samples, after which dither stops.
func (d *Ditherer) MuteThreshold() int { return d.muteAt }

// Convert dithers every sample of in into out. Afterwards out holds as many
// samples as in.
func (d *Ditherer) Convert(out, in *buffer.Buffer) error {
	if in.Format() != d.in || out.Format() != d.out {
		return fmt.Errorf("%w: ditherer %v->%v given %s (%v) and %s (%v)",
			buffer.ErrInvalidArgument, d.in, d.out, in.Name(), in.Format(), out.Name(), out.Format())
	}
	if in.Channels() != d.channels || out.Channels() != d.channels {
		return fmt.Errorf("%w: ditherer for %d channels given %d and %d",
			buffer.ErrInvalidArgument, d.channels, in.Channels(), out.Channels())
	}

	n := in.Samples()
	flt := in
	if d.toFloat != nil {
		if err := d.toFloat.Convert(d.flt, in); err != nil {
			return fmt.Errorf("failed to convert dither input: %w", err)
		}
		flt = d.flt
	}

	s16 := out
	if d.toPacked != nil {
		s16 = d.s16
	}
	if err := s16.Realloc(n); err != nil {
		return err
	}

	if cap(d.scaled) < n {
		d.scaled = make([]float32, n)
	}
	scaled := d.scaled[:n]

	for ch, s := range d.states {
		d.ops.Scale(scaled, flt.Float32s(ch)[:n], s16Scale)
		dst := s16.Int16s(ch)[:n]
		noise := s.next(d.method, n)
		if d.shaper != nil {
			s.quantizeShaped(dst, scaled, noise, d.shaper, d.muteAt, d.resetAt)
		} else {
			s.quantize(dst, scaled, noise, d.muteAt)
		}
	}
	if err := s16.SetSamples(n); err != nil {
		return err
	}

	if d.toPacked != nil {
		if err := d.toPacked.Convert(out, d.s16); err != nil {
			return fmt.Errorf("failed to interleave dither output: %w", err)
		}
	}
	return nil
}
