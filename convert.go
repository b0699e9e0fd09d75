package converter

import (
	"fmt"
	"math"

	"github.com/tphakala/go-audio-converter/internal/buffer"
	"github.com/tphakala/go-audio-converter/internal/pipeline"
)

// Convert pushes inSamples samples from in through the conversion and writes
// up to outSamples converted samples to out. It returns the number of
// samples written to out.
//
// in and out hold one plane per channel for planar formats and a single
// interleaved plane for packed formats, in host byte order. Output that does
// not fit in out is queued in the FIFO and returned by later calls or Read.
// A nil out queues everything. A nil in flushes: the resampler drains its
// tail and queued samples are delivered.
func (c *Context) Convert(out [][]byte, outSamples int, in [][]byte, inSamples int) (int, error) {
	if err := c.checkOpen("convert on"); err != nil {
		return 0, err
	}
	s := c.s
	plan := s.plan

	if err := s.reset(); err != nil {
		return 0, err
	}

	var output *buffer.Buffer
	if out != nil {
		var err error
		output, err = buffer.NewView("output", out, plan.OutChannels, outSamples, c.cfg.OutFormat, false)
		if err != nil {
			return 0, err
		}
		if err := output.SetSamples(0); err != nil {
			return 0, err
		}
	}
	direct := output != nil && s.fifo.Available() == 0

	var current *buffer.Buffer
	if in != nil {
		input, err := buffer.NewView("input", in, plan.InChannels, inSamples, c.cfg.InFormat, true)
		if err != nil {
			return 0, err
		}
		current = input

		switch {
		case plan.UpmixNeeded && !plan.InConvertNeeded && !plan.ResampleNeeded &&
			!plan.OutConvertNeeded && direct && outSamples >= inSamples:
			// upmix in place inside the caller's buffer
			if err := output.SetChannels(plan.InChannels); err != nil {
				return 0, err
			}
			if err := buffer.Copy(output, input, s.mapAt(pipeline.RemapInCopy)); err != nil {
				return 0, err
			}
			current = output

		case plan.Remap == pipeline.RemapOutCopy && (!direct || outSamples < inSamples):
			// remap before the samples reach the FIFO
			if err := buffer.Copy(s.outBuf, input, s.cmap); err != nil {
				return 0, err
			}
			current = s.outBuf

		case plan.InCopyNeeded || plan.InConvertNeeded:
			if err := s.inBuf.SetChannels(plan.InChannels); err != nil {
				return 0, err
			}
			if plan.InConvertNeeded {
				if err := s.inConv.Convert(s.inBuf, input); err != nil {
					return 0, fmt.Errorf("failed to convert input: %w", err)
				}
			} else if err := buffer.Copy(s.inBuf, input, s.mapAt(pipeline.RemapInCopy)); err != nil {
				return 0, err
			}
			if plan.DownmixNeeded {
				if err := s.mixer.Apply(s.inBuf); err != nil {
					return 0, fmt.Errorf("failed to downmix: %w", err)
				}
			}
			current = s.inBuf
		}
	} else if !plan.ResampleNeeded {
		return s.deliver(output, nil)
	}

	if plan.ResampleNeeded {
		dst := s.resampleOut
		if !plan.OutConvertNeeded && !plan.UpmixNeeded && direct {
			dst = output
		} else if err := dst.SetChannels(plan.ResampleChannels); err != nil {
			return 0, err
		}
		if err := s.resampler.Resample(dst, current); err != nil {
			return 0, fmt.Errorf("failed to resample: %w", err)
		}
		if dst.Samples() == 0 {
			return s.deliver(output, nil)
		}
		current = dst
	}

	if plan.UpmixNeeded {
		if err := s.mixer.Apply(current); err != nil {
			return 0, fmt.Errorf("failed to upmix: %w", err)
		}
	}

	if current == output {
		return output.Samples(), nil
	}

	if plan.OutConvertNeeded {
		if direct && outSamples >= current.Samples() {
			if err := s.outConv.Convert(output, current); err != nil {
				return 0, fmt.Errorf("failed to convert output: %w", err)
			}
			return output.Samples(), nil
		}
		if err := s.outConv.Convert(s.outBuf, current); err != nil {
			return 0, fmt.Errorf("failed to convert output: %w", err)
		}
		current = s.outBuf
	}

	return s.deliver(output, current)
}

// reset empties the intermediate buffers and restores their full channel
// storage.
func (s *stages) reset() error {
	for _, b := range []*buffer.Buffer{s.inBuf, s.resampleOut, s.outBuf} {
		if b == nil {
			continue
		}
		if err := b.SetSamples(0); err != nil {
			return err
		}
		if err := b.SetChannels(b.AllocatedChannels()); err != nil {
			return err
		}
	}
	return nil
}

// deliver hands converted samples to the caller. They are copied straight
// into output when it is large enough and nothing is queued ahead of them;
// otherwise they join the FIFO and output is filled from its head.
func (s *stages) deliver(output, converted *buffer.Buffer) (int, error) {
	if output == nil || s.fifo.Available() > 0 ||
		(converted != nil && output.Capacity() < converted.Samples()) {
		if converted != nil {
			if err := s.fifo.Write(converted, 0, converted.Samples()); err != nil {
				return 0, fmt.Errorf("failed to queue output: %w", err)
			}
		}
		if output != nil && output.Capacity() > 0 {
			return s.fifo.Read(output, output.Capacity())
		}
		return 0, nil
	}

	if converted == nil {
		return 0, nil
	}
	if err := buffer.Copy(output, converted, s.mapAt(pipeline.RemapOutCopy)); err != nil {
		return 0, err
	}
	return output.Samples(), nil
}

// Available returns the number of converted samples waiting in the FIFO.
func (c *Context) Available() int {
	if c.s == nil {
		return 0
	}
	return c.s.fifo.Available()
}

// Read moves up to n queued samples into out and returns how many were
// moved. A nil out discards them.
func (c *Context) Read(out [][]byte, n int) (int, error) {
	if err := c.checkOpen("read from"); err != nil {
		return 0, err
	}
	if n < 0 {
		return 0, fmt.Errorf("%w: negative read size %d", ErrInvalidArgument, n)
	}
	if out == nil {
		return c.s.fifo.Read(nil, n)
	}
	view, err := buffer.NewView("output", out, c.s.plan.OutChannels, n, c.cfg.OutFormat, false)
	if err != nil {
		return 0, err
	}
	return c.s.fifo.Read(view, n)
}

// OutSamples returns an upper bound on the samples the next Convert call
// produces for inSamples input samples, counting those already queued.
func (c *Context) OutSamples(inSamples int) (int, error) {
	if err := c.checkOpen("size output for"); err != nil {
		return 0, err
	}
	if inSamples < 0 {
		return 0, fmt.Errorf("%w: negative input size %d", ErrInvalidArgument, inSamples)
	}

	n := int64(inSamples)
	if r := c.s.resampler; r != nil {
		out, err := r.OutputSize(inSamples + r.Padding())
		if err != nil {
			return 0, err
		}
		n = int64(out)
	}
	n += int64(c.s.fifo.Available())
	if n > math.MaxInt32 {
		return 0, fmt.Errorf("%w: %d input samples yield too many output samples", ErrInvalidArgument, inSamples)
	}
	return int(n), nil
}

// Delay returns the number of input samples held by the resampler that
// have not yet produced output. It is zero when no resampling takes place.
func (c *Context) Delay() int {
	if c.s == nil || c.s.resampler == nil {
		return 0
	}
	return c.s.resampler.Delay()
}
