// Package format converts samples between the ten sample formats, optionally
// reordering channels on the way.
package format

import (
	"fmt"

	"github.com/tphakala/go-audio-converter/internal/buffer"
)

// Converter converts buffers of one format and channel count into another
// format. The kernels are chosen once at construction.
type Converter struct {
	in, out  buffer.SampleFormat
	channels int
	shape    shape

	generic   kernel
	optimized *optimizedKernel

	cmap    *buffer.ChannelMap
	remapIn kernelSet  // kernels used while remapping
	planes  [][]byte   // scratch for reordered plane lists
}

// Option configures a Converter.
type Option func(*Converter)

// WithChannelMap reorders channels while converting. The destination must
// be planar.
func WithChannelMap(m *buffer.ChannelMap) Option {
	return func(c *Converter) {
		c.cmap = m
	}
}

// WithoutOptimized restricts the converter to the generic kernels.
func WithoutOptimized() Option {
	return func(c *Converter) {
		c.optimized = nil
	}
}

// New creates a converter from in to out for the given channel count.
func New(out, in buffer.SampleFormat, channels int, opts ...Option) (*Converter, error) {
	if !in.Valid() || !out.Valid() {
		return nil, fmt.Errorf("%w: conversion from %v to %v", buffer.ErrUnsupported, in, out)
	}
	if channels < 1 || channels > buffer.MaxChannels {
		return nil, fmt.Errorf("%w: channel count %d out of range [1, %d]",
			buffer.ErrInvalidArgument, channels, buffer.MaxChannels)
	}

	pair := pairKey{in.Packed(), out.Packed()}
	set, ok := genericKernels[pair]
	if !ok {
		return nil, fmt.Errorf("%w: conversion from %v to %v", buffer.ErrUnsupported, in, out)
	}

	c := &Converter{
		in:       in,
		out:      out,
		channels: channels,
		shape:    shapeFor(in, out, channels),
		remapIn:  set,
		planes:   make([][]byte, channels),
	}
	c.generic = set[c.shape]
	c.optimized = findOptimized(pair, c.shape, channels)

	for _, opt := range opts {
		opt(c)
	}
	if c.cmap != nil && len(c.cmap.Directives) != channels {
		return nil, fmt.Errorf("%w: channel map has %d entries for %d channels",
			buffer.ErrInvalidArgument, len(c.cmap.Directives), channels)
	}
	return c, nil
}

func shapeFor(in, out buffer.SampleFormat, channels int) shape {
	inPlanar := in.IsPlanarFor(channels)
	outPlanar := out.IsPlanarFor(channels)
	switch {
	case inPlanar == outPlanar:
		return shapeFlat
	case inPlanar:
		return shapeInterleave
	default:
		return shapeDeinterleave
	}
}

// InFormat returns the source format.
func (c *Converter) InFormat() buffer.SampleFormat { return c.in }

// OutFormat returns the destination format.
func (c *Converter) OutFormat() buffer.SampleFormat { return c.out }

// Channels returns the channel count the converter was built for.
func (c *Converter) Channels() int { return c.channels }

// OptimizedKernel returns the name of the optimized kernel, or "" when only
// the generic kernel is available.
func (c *Converter) OptimizedKernel() string {
	if c.optimized == nil {
		return ""
	}
	return c.optimized.name
}

// Convert converts every sample of in into out, growing out when it owns its
// storage. Afterwards out holds as many samples as in.
func (c *Converter) Convert(out, in *buffer.Buffer) error {
	if in.Format() != c.in || out.Format() != c.out {
		return fmt.Errorf("%w: converter %v->%v given %s (%v) and %s (%v)",
			buffer.ErrInvalidArgument, c.in, c.out, in.Name(), in.Format(), out.Name(), out.Format())
	}
	if in.Channels() != c.channels || out.Channels() != c.channels {
		return fmt.Errorf("%w: converter for %d channels given %d and %d",
			buffer.ErrInvalidArgument, c.channels, in.Channels(), out.Channels())
	}

	n := in.Samples()
	if err := out.Realloc(n); err != nil {
		return err
	}
	if n == 0 {
		return out.SetSamples(0)
	}

	if c.cmap != nil {
		if err := c.convertRemap(out, in, n); err != nil {
			return err
		}
		return out.SetSamples(n)
	}

	fn, length := c.generic, n
	if k := c.optimized; k != nil {
		aligned := (n + k.samplesAlign - 1) / k.samplesAlign * k.samplesAlign
		if in.PtrAlign()%k.ptrAlign == 0 && out.PtrAlign()%k.ptrAlign == 0 &&
			in.SamplesAlign() >= aligned && out.SamplesAlign() >= aligned {
			fn, length = k.fn, aligned
		}
	}
	c.run(fn, out, in, length)
	return out.SetSamples(n)
}

func (c *Converter) run(fn kernel, out, in *buffer.Buffer, n int) {
	if c.shape == shapeFlat && !in.IsPlanar() {
		// packed flat kernels walk the single interleaved plane
		n *= c.channels
	}
	fn(out.Planes(), in.Planes(), n, c.channels)
}

func (c *Converter) convertRemap(out, in *buffer.Buffer, n int) error {
	if !out.IsPlanar() {
		return fmt.Errorf("%w: cannot remap channels into packed %s (%v)",
			buffer.ErrInvalidArgument, out.Name(), out.Format())
	}

	m := c.cmap
	dst := out.Planes()
	switch {
	case !m.DoRemap:
		c.run(c.generic, out, in, n)
	case in.IsPlanar():
		src := in.Planes()
		flat := c.remapIn[shapeFlat]
		for p, d := range m.Directives {
			if d.Op == buffer.OpRemap {
				flat(dst[p:p+1], src[d.Index:d.Index+1], n, 1)
			}
		}
	default:
		// input channel ch lands in output plane InputMap[ch]
		for ch, p := range m.InputMap {
			c.planes[ch] = dst[p]
		}
		c.remapIn[shapeDeinterleave](c.planes, in.Planes(), n, c.channels)
	}

	m.ApplyCopies(dst, n, out.Stride(), c.out)
	return nil
}
