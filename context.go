package converter

import (
	"fmt"
	"slices"

	"github.com/tphakala/go-audio-converter/internal/buffer"
	"github.com/tphakala/go-audio-converter/internal/dither"
	"github.com/tphakala/go-audio-converter/internal/engine"
	"github.com/tphakala/go-audio-converter/internal/format"
	"github.com/tphakala/go-audio-converter/internal/mix"
	"github.com/tphakala/go-audio-converter/internal/pipeline"
)

// Context converts a stream of audio between sample formats, channel
// layouts and sample rates.
//
// A Context starts closed. Configure it, Open it, push audio through
// Convert, flush with a nil input and Close it. Closing keeps the
// configuration so the context can be opened again.
//
// A Context is not safe for concurrent use.
type Context struct {
	cfg   Config
	freed bool

	// matrix and chMap are caller settings waiting for the next Open.
	matrix [][]float64
	chMap  []int

	// s is nil while the context is closed.
	s *stages
}

// sampleConverter converts every sample of in into out.
type sampleConverter interface {
	Convert(out, in *buffer.Buffer) error
}

// stages holds the components built by Open. Only the stages the plan
// needs are non-nil.
type stages struct {
	plan *pipeline.Plan
	cmap *buffer.ChannelMap

	inBuf       *buffer.Buffer
	resampleOut *buffer.Buffer
	outBuf      *buffer.Buffer

	inConv    sampleConverter
	outConv   sampleConverter
	mixer     *mix.Mixer
	resampler *engine.Resampler
	fifo      *pipeline.FIFO
}

// NewContext returns a closed context holding cfg. The configuration is
// validated by Open.
func NewContext(cfg Config) *Context {
	return &Context{cfg: cfg}
}

// Config returns the current configuration.
func (c *Context) Config() Config { return c.cfg }

// SetConfig replaces the configuration. The context must be closed.
func (c *Context) SetConfig(cfg Config) error {
	if err := c.checkClosed("configure"); err != nil {
		return err
	}
	c.cfg = cfg
	return nil
}

// IsOpen reports whether the context is open.
func (c *Context) IsOpen() bool { return c.s != nil }

func (c *Context) checkUsable() error {
	if c.freed {
		return fmt.Errorf("%w: context has been freed", ErrInvalidState)
	}
	return nil
}

func (c *Context) checkClosed(op string) error {
	if err := c.checkUsable(); err != nil {
		return err
	}
	if c.s != nil {
		return fmt.Errorf("%w: cannot %s an open context", ErrInvalidState, op)
	}
	return nil
}

func (c *Context) checkOpen(op string) error {
	if err := c.checkUsable(); err != nil {
		return err
	}
	if c.s == nil {
		return fmt.Errorf("%w: cannot %s a closed context", ErrInvalidState, op)
	}
	return nil
}

// Open validates the configuration, plans the conversion and builds the
// stages it needs. On failure nothing is kept and the context stays closed.
//
// A matrix set while closed replaces the default one and is consumed here.
func (c *Context) Open() error {
	if err := c.checkClosed("open"); err != nil {
		return err
	}
	if err := c.cfg.Validate(); err != nil {
		return err
	}

	plan, err := pipeline.NewPlan(pipeline.Params{
		InChannels:      c.cfg.InChannels(),
		OutChannels:     c.cfg.OutChannels(),
		InFormat:        c.cfg.InFormat,
		OutFormat:       c.cfg.OutFormat,
		InRate:          c.cfg.InRate,
		OutRate:         c.cfg.OutRate,
		InternalFormat:  c.cfg.InternalFormat,
		CoeffType:       c.cfg.MixCoeffType,
		LayoutsDiffer:   c.cfg.InLayout != c.cfg.OutLayout,
		CustomMatrix:    c.matrix != nil,
		ForceResampling: c.cfg.ForceResampling,
		ChannelMap:      c.chMap != nil,
		Dither:          c.cfg.DitherMethod,
	})
	if err != nil {
		return fmt.Errorf("failed to plan conversion: %w", err)
	}

	s, err := buildStages(&c.cfg, plan, c.matrix, c.chMap)
	if err != nil {
		return err
	}
	c.s = s
	c.matrix = nil
	return nil
}

// buildStages allocates the buffers and components plan calls for.
func buildStages(cfg *Config, plan *pipeline.Plan, matrix [][]float64, chMap []int) (*stages, error) {
	s := &stages{plan: plan}
	inCh, outCh := plan.InChannels, plan.OutChannels

	var err error
	if chMap != nil {
		if s.cmap, err = buffer.NewChannelMap(chMap, inCh); err != nil {
			return nil, err
		}
	}

	if plan.InCopyNeeded || plan.InConvertNeeded {
		if s.inBuf, err = buffer.New("in_buffer", plan.InBufferChannels(), 0, plan.Internal); err != nil {
			return nil, err
		}
	}
	if plan.ResampleNeeded {
		s.resampleOut, err = buffer.New("resample_out_buffer", outCh, pipeline.ResampleBufferSamples, plan.Internal)
		if err != nil {
			return nil, err
		}
	}
	if plan.OutConvertNeeded || plan.Remap == pipeline.RemapOutCopy {
		if s.outBuf, err = buffer.New("out_buffer", outCh, 0, cfg.OutFormat); err != nil {
			return nil, err
		}
	}
	if s.fifo, err = pipeline.NewFIFO(cfg.OutFormat, outCh, pipeline.DefaultFIFOCapacity); err != nil {
		return nil, err
	}

	if plan.InConvertNeeded {
		s.inConv, err = newConverter(cfg, plan.Internal, cfg.InFormat, inCh, cfg.InRate,
			plan.InDither, s.mapAt(pipeline.RemapInConvert))
		if err != nil {
			return nil, fmt.Errorf("failed to create input converter: %w", err)
		}
	}
	if plan.OutConvertNeeded {
		s.outConv, err = newConverter(cfg, cfg.OutFormat, plan.OutSource(), outCh, cfg.OutRate,
			plan.OutDither, s.mapAt(pipeline.RemapOutConvert))
		if err != nil {
			return nil, fmt.Errorf("failed to create output converter: %w", err)
		}
	}

	if plan.ResampleNeeded {
		s.resampler, err = engine.New(cfg.engineConfig(plan.Internal, plan.ResampleChannels))
		if err != nil {
			return nil, fmt.Errorf("failed to create resampler: %w", err)
		}
	}

	if plan.MixingNeeded {
		if matrix == nil {
			matrix, err = mix.BuildMatrix(cfg.InLayout, cfg.OutLayout, cfg.matrixOptions())
			if err != nil {
				return nil, fmt.Errorf("failed to build mixing matrix: %w", err)
			}
		}
		s.mixer, err = mix.NewMixer(mix.Config{
			Format:      plan.Internal,
			CoeffType:   cfg.MixCoeffType,
			InChannels:  inCh,
			OutChannels: outCh,
			Matrix:      matrix,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to create mixer: %w", err)
		}
	}
	return s, nil
}

// newConverter returns a ditherer when the conversion quantizes to 16 bits
// with dither, or a plain format converter otherwise.
func newConverter(cfg *Config, out, in SampleFormat, channels, rate int, withDither bool,
	cmap *buffer.ChannelMap) (sampleConverter, error) {
	if withDither {
		opts := cfg.ditherOptions()
		if cmap != nil {
			opts = append(opts, dither.WithChannelMap(cmap))
		}
		return dither.New(cfg.DitherMethod, out, in, channels, rate, opts...)
	}

	var opts []format.Option
	if cmap != nil {
		opts = append(opts, format.WithChannelMap(cmap))
	}
	return format.New(out, in, channels, opts...)
}

// mapAt returns the channel map when it applies at point p.
func (s *stages) mapAt(p pipeline.RemapPoint) *buffer.ChannelMap {
	if s.plan.Remap != p {
		return nil
	}
	return s.cmap
}

// release drops every owned buffer.
func (s *stages) release() {
	for _, b := range []*buffer.Buffer{s.inBuf, s.resampleOut, s.outBuf} {
		if b != nil {
			b.Release()
		}
	}
	s.fifo.Clear()
}

// Close releases the stages, the FIFO and its samples, the mixing matrix and
// the channel mapping. The configuration is kept.
func (c *Context) Close() {
	if c.s != nil {
		c.s.release()
		c.s = nil
	}
	c.matrix = nil
	c.chMap = nil
}

// Free closes the context and drops its configuration. Every later call
// fails with ErrInvalidState.
func (c *Context) Free() {
	c.Close()
	c.cfg = Config{}
	c.freed = true
}

// SetChannelMapping reorders input channels before any other processing:
// output channel i takes input channel mapping[i], or silence when the entry
// is negative. The context must be closed; the mapping applies from the next
// Open until Close. A nil mapping removes it.
func (c *Context) SetChannelMapping(mapping []int) error {
	if err := c.checkClosed("set the channel mapping of"); err != nil {
		return err
	}
	if mapping == nil {
		c.chMap = nil
		return nil
	}
	if _, err := buffer.NewChannelMap(mapping, c.cfg.InChannels()); err != nil {
		return err
	}
	c.chMap = slices.Clone(mapping)
	return nil
}

// Matrix returns the mixing matrix, indexed [out][in]. While open it is the
// mixer's matrix; while closed it is the matrix set for the next Open.
func (c *Context) Matrix() ([][]float64, error) {
	if err := c.checkUsable(); err != nil {
		return nil, err
	}
	switch {
	case c.s != nil && c.s.mixer != nil:
		return c.s.mixer.Matrix(), nil
	case c.s == nil && c.matrix != nil:
		return cloneMatrix(c.matrix), nil
	}
	return nil, fmt.Errorf("%w: mixing matrix is not set", ErrInvalidArgument)
}

// SetMatrix sets the mixing matrix, indexed [out][in]. While open it
// replaces the active mixer's coefficients. While closed it is stored for
// the next Open, which then mixes even between identical layouts.
func (c *Context) SetMatrix(matrix [][]float64) error {
	if err := c.checkUsable(); err != nil {
		return err
	}
	if c.s != nil {
		if c.s.mixer == nil {
			return fmt.Errorf("%w: no mixing stage is active", ErrInvalidState)
		}
		return c.s.mixer.SetMatrix(matrix)
	}

	in, out := c.cfg.InChannels(), c.cfg.OutChannels()
	if in < 1 || in > MaxChannels || out < 1 || out > MaxChannels {
		return fmt.Errorf("%w: invalid layouts %v -> %v", ErrInvalidArgument, c.cfg.InLayout, c.cfg.OutLayout)
	}
	if len(matrix) != out {
		return fmt.Errorf("%w: matrix has %d rows, want %d", ErrInvalidArgument, len(matrix), out)
	}
	for o, row := range matrix {
		if len(row) != in {
			return fmt.Errorf("%w: matrix row %d has %d coefficients, want %d", ErrInvalidArgument, o, len(row), in)
		}
	}
	c.matrix = cloneMatrix(matrix)
	return nil
}

func cloneMatrix(m [][]float64) [][]float64 {
	out := make([][]float64, len(m))
	for i, row := range m {
		out[i] = slices.Clone(row)
	}
	return out
}

// SetCompensation adjusts the resampling ratio so that the output timing
// shifts by delta samples over the next distance output samples.
//
// When the context is open without a resampling stage it is reopened with
// forced resampling. Samples queued in the FIFO, the mixing matrix and the
// channel mapping survive the reopen.
func (c *Context) SetCompensation(delta, distance int) error {
	if distance < 0 {
		return fmt.Errorf("%w: negative compensation distance %d", ErrInvalidArgument, distance)
	}
	if distance == 0 && delta != 0 {
		return fmt.Errorf("%w: compensation of %d samples over zero distance", ErrInvalidArgument, delta)
	}
	if err := c.checkOpen("compensate"); err != nil {
		return err
	}

	if c.s.resampler == nil {
		if delta == 0 {
			return nil
		}
		if err := c.enableResampling(); err != nil {
			return err
		}
	}
	return c.s.resampler.SetCompensation(delta, distance)
}

// enableResampling reopens the context with forced resampling.
func (c *Context) enableResampling() error {
	var pending *buffer.Buffer
	if n := c.s.fifo.Available(); n > 0 {
		var err error
		pending, err = buffer.New("fifo_buffer", c.cfg.OutChannels(), n, c.cfg.OutFormat)
		if err != nil {
			return err
		}
		if _, err := c.s.fifo.Read(pending, n); err != nil {
			return err
		}
	}
	var matrix [][]float64
	if c.s.mixer != nil {
		matrix = c.s.mixer.Matrix()
	}
	chMap := c.chMap

	c.Close()
	c.cfg.ForceResampling = true
	c.matrix = matrix
	c.chMap = chMap
	if err := c.Open(); err != nil {
		return fmt.Errorf("failed to reopen with resampling: %w", err)
	}

	if pending != nil {
		return c.s.fifo.Write(pending, 0, pending.Samples())
	}
	return nil
}
