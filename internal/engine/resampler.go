// Package engine implements polyphase sample rate conversion over planar
// buffers in one of the four working formats (s16p, s32p, fltp, dblp).
//
// The input position is tracked exactly as an integer phase index plus a
// fraction with denominator src_incr, derived from the reduced ratio
// out_rate / (in_rate * phase_count), so long streams never drift.
package engine

import (
	"fmt"
	"math"

	"github.com/tphakala/go-audio-converter/internal/buffer"
	"github.com/tphakala/go-audio-converter/internal/filter"
	"github.com/tphakala/go-audio-converter/internal/mathutil"
)

// Config holds resampler parameters.
type Config struct {
	InRate  int
	OutRate int

	Channels int

	// Format is the planar working format: s16p, s32p, fltp or dblp.
	Format buffer.SampleFormat

	// PhaseShift sets phase_count = 1 << PhaseShift.
	PhaseShift int

	// FilterSize is the tap budget per unit of cutoff.
	FilterSize int

	Window     filter.WindowType
	KaiserBeta float64

	// Cutoff is the passband edge relative to the lower Nyquist frequency.
	Cutoff float64

	// Linear interpolates between adjacent phases.
	Linear bool
}

// Validate checks the configuration.
func (c *Config) Validate() error {
	if c.InRate < minRate || c.OutRate < minRate {
		return fmt.Errorf("%w: sample rates must be positive: in=%d out=%d", buffer.ErrInvalidArgument, c.InRate, c.OutRate)
	}
	if c.Channels < minChannels || c.Channels > buffer.MaxChannels {
		return fmt.Errorf("%w: channel count %d out of range [%d, %d]",
			buffer.ErrInvalidArgument, c.Channels, minChannels, buffer.MaxChannels)
	}
	switch c.Format {
	case buffer.FormatS16P, buffer.FormatS32P, buffer.FormatFLTP, buffer.FormatDBLP:
	default:
		return fmt.Errorf("%w: cannot resample in %v", buffer.ErrUnsupported, c.Format)
	}
	if c.PhaseShift < 0 || c.PhaseShift > MaxPhaseShift {
		return fmt.Errorf("%w: phase shift %d out of range [0, %d]", buffer.ErrInvalidArgument, c.PhaseShift, MaxPhaseShift)
	}
	if c.FilterSize < 0 || c.FilterSize > MaxFilterSize {
		return fmt.Errorf("%w: filter size %d out of range [0, %d]", buffer.ErrInvalidArgument, c.FilterSize, MaxFilterSize)
	}
	if !(c.Cutoff > 0 && c.Cutoff <= 1) {
		return fmt.Errorf("%w: cutoff %g out of range (0, 1]", buffer.ErrInvalidArgument, c.Cutoff)
	}
	return nil
}

// State is the priming state of a Resampler.
type State int

const (
	// StateNotPrimed waits for enough input to mirror the stream start.
	StateNotPrimed State = iota
	// StatePrimed produces output as input arrives.
	StatePrimed
	// StateDraining has appended the mirrored tail and runs out the history.
	StateDraining
)

func (s State) String() string {
	switch s {
	case StateNotPrimed:
		return "not-primed"
	case StatePrimed:
		return "primed"
	case StateDraining:
		return "draining"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

// step locates one output sample in the history.
type step struct {
	offset int   // first input sample under the filter
	phase  int   // filter phase
	frac   int64 // position between phase and phase+1, over srcIncr
}

// Resampler converts the sample rate of a planar stream.
//
// Input is appended to an internal history that starts with padding_size
// placeholder samples. Once the history holds 2*padding_size samples the
// placeholders are filled by mirroring the stream start. Flushing mirrors
// the stream end forward by padding_size samples and runs the history out.
//
// A Resampler is not safe for concurrent use.
type Resampler struct {
	cfg    Config
	bank   *filter.Bank
	kernel kernel
	near   kernel

	history *buffer.Buffer

	length     int
	phaseShift int
	phaseMask  int64
	padding    int

	srcIncr      int64
	dstIncr      int64
	idealDstIncr int64
	compDistance int

	index int64 // position in 1/phase_count input samples
	frac  int64 // sub-phase position over srcIncr

	state        State
	tailPadding  int
	finalPadding int

	steps []step
}

// New creates a resampler.
func New(cfg Config) (*Resampler, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	phases := 1 << cfg.PhaseShift
	factor := min(float64(cfg.OutRate)*cfg.Cutoff/float64(cfg.InRate), 1.0)
	length := filter.FilterLength(cfg.FilterSize, factor)

	bank, err := filter.BuildBank(filter.BankParams{
		FilterLength: length,
		PhaseCount:   phases,
		Factor:       factor,
		Window:       cfg.Window,
		KaiserBeta:   cfg.KaiserBeta,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to build filter bank: %w", err)
	}

	srcIncr, dstIncr, _ := mathutil.Reduce(int64(cfg.OutRate), int64(cfg.InRate)*int64(phases), maxIncrement)
	if srcIncr <= 0 || dstIncr <= 0 {
		return nil, fmt.Errorf("%w: rate ratio %d/%d cannot be represented with %d phases",
			buffer.ErrUnsupported, cfg.OutRate, cfg.InRate, phases)
	}

	r := &Resampler{
		cfg:          cfg,
		bank:         bank,
		kernel:       newKernel(cfg.Format, bank, cfg.Linear, srcIncr),
		near:         newNearestKernel(cfg.Format),
		length:       length,
		phaseShift:   cfg.PhaseShift,
		phaseMask:    int64(phases - 1),
		padding:      (length - 1) / 2,
		tailPadding:  length - 1 - (length-1)/2,
		srcIncr:      srcIncr,
		dstIncr:      dstIncr,
		idealDstIncr: dstIncr,
	}

	r.history, err = buffer.New("resample buffer", cfg.Channels, r.padding, cfg.Format)
	if err != nil {
		return nil, err
	}
	if err := r.history.SetSamples(r.padding); err != nil {
		return nil, err
	}
	return r, nil
}

// Resample appends src to the history and writes every output sample the
// history can produce into dst. A nil src flushes: the stream end is padded
// once and the remaining history is run out. dst is grown when allowed;
// otherwise output is limited to its capacity and the rest stays buffered.
func (r *Resampler) Resample(dst, src *buffer.Buffer) error {
	if err := r.checkBuffer(dst); err != nil {
		return err
	}
	if src != nil {
		if err := r.checkBuffer(src); err != nil {
			return err
		}
	}

	leftover := r.history.Samples()
	if src != nil {
		if err := buffer.Combine(r.history, leftover, src, 0, src.Samples()); err != nil {
			return fmt.Errorf("failed to buffer resampler input: %w", err)
		}
	} else if leftover <= r.finalPadding {
		return dst.SetSamples(0)
	}

	if r.state == StateNotPrimed {
		if src != nil && r.history.Samples() < 2*r.padding {
			return dst.SetSamples(0)
		}
		r.prime()
	}

	if src == nil && r.state != StateDraining {
		if err := r.padTail(leftover); err != nil {
			return err
		}
	}

	dstSize := dst.Capacity()
	if dst.Growable() {
		dstSize = math.MaxInt
	}
	consumed := r.advance(r.history.Samples(), dstSize)
	if err := dst.Realloc(len(r.steps)); err != nil {
		return err
	}

	k := r.kernel
	if r.nearest() {
		k = r.near
	}
	for ch, plane := range r.history.Planes() {
		k.apply(dst.Plane(ch), plane, r.steps)
	}

	r.history.Drain(consumed)
	return dst.SetSamples(len(r.steps))
}

// nearest reports whether output samples can copy the closest input
// sample instead of filtering.
func (r *Resampler) nearest() bool {
	return r.compDistance == 0 && r.length == 1 && r.phaseShift == 0
}

func (r *Resampler) checkBuffer(b *buffer.Buffer) error {
	if b.Format() != r.cfg.Format || b.Channels() != r.cfg.Channels {
		return fmt.Errorf("%w: %s is %v with %d channels, resampler expects %v with %d",
			buffer.ErrInvalidArgument, b.Name(), b.Format(), b.Channels(), r.cfg.Format, r.cfg.Channels)
	}
	return nil
}

// prime fills the leading placeholders by mirroring the samples after them
// around the first real sample. Missing samples become silence.
func (r *Resampler) prime() {
	n, p := r.history.Samples(), r.padding
	size := r.history.SampleSize()
	for _, plane := range r.history.Planes() {
		for i := range p {
			to := plane[i*size : (i+1)*size]
			if from := 2*p - i; n > from {
				copy(to, plane[from*size:(from+1)*size])
			} else {
				clear(to)
			}
		}
	}
	r.state = StatePrimed
}

// padTail appends tail padding mirroring the last n samples. The tail
// covers the taps right of the center, so the last input sample still gets
// a full window when the filter length is even.
func (r *Resampler) padTail(n int) error {
	p := r.tailPadding
	if err := r.history.Realloc(n + p); err != nil {
		return fmt.Errorf("failed to grow resample buffer: %w", err)
	}
	size := r.history.SampleSize()
	for _, plane := range r.history.Planes() {
		for i := range p {
			to := plane[(n+i)*size : (n+i+1)*size]
			if n > i {
				from := n - i - 1
				copy(to, plane[from*size:(from+1)*size])
			} else {
				clear(to)
			}
		}
	}
	r.finalPadding = p
	r.state = StateDraining
	return r.history.SetSamples(n + p)
}

// advance walks the input position over srcSize history samples, recording
// up to dstSize output steps, and returns the number of whole input samples
// consumed. Compensation ends exactly when its distance is reached.
func (r *Resampler) advance(srcSize, dstSize int) int {
	r.steps = r.steps[:0]

	index, frac := r.index, r.frac
	incr, incrFrac := r.dstIncr/r.srcIncr, r.dstIncr%r.srcIncr
	distance := r.compDistance

	for len(r.steps) < dstSize {
		offset := int(index >> r.phaseShift)
		if offset+r.length > srcSize {
			break
		}
		r.steps = append(r.steps, step{offset: offset, phase: int(index & r.phaseMask), frac: frac})

		frac += incrFrac
		index += incr
		if frac >= r.srcIncr {
			frac -= r.srcIncr
			index++
		}
		if len(r.steps) == distance {
			distance = 0
			incr, incrFrac = r.idealDstIncr/r.srcIncr, r.idealDstIncr%r.srcIncr
		}
	}

	consumed := min(int(index>>r.phaseShift), srcSize)
	r.index = index - int64(consumed)<<r.phaseShift
	r.frac = frac
	r.dstIncr = incr*r.srcIncr + incrFrac
	if distance > 0 {
		distance -= len(r.steps)
	}
	r.compDistance = distance
	return consumed
}

// SetCompensation biases the step so that the next distance output samples
// cover delta fewer input-rate samples, shifting output timing by delta.
// A zero distance with zero delta cancels compensation.
func (r *Resampler) SetCompensation(delta, distance int) error {
	if distance < 0 {
		return fmt.Errorf("%w: negative compensation distance %d", buffer.ErrInvalidArgument, distance)
	}
	if distance == 0 {
		if delta != 0 {
			return fmt.Errorf("%w: compensation delta %d needs a distance", buffer.ErrInvalidArgument, delta)
		}
		r.compDistance = 0
		r.dstIncr = r.idealDstIncr
		return nil
	}

	ideal := r.idealDstIncr
	if d := int64(delta); d > math.MaxInt64/ideal || d < -math.MaxInt64/ideal {
		return fmt.Errorf("%w: compensation delta %d too large", buffer.ErrInvalidArgument, delta)
	}
	incr := ideal - ideal*int64(delta)/int64(distance)
	if incr <= 0 || incr > math.MaxInt64/2 {
		return fmt.Errorf("%w: compensation %d over %d samples leaves no forward step",
			buffer.ErrInvalidArgument, delta, distance)
	}

	r.compDistance = distance
	r.dstIncr = incr
	return nil
}

// Delay returns the buffered input samples not yet visible in any output.
func (r *Resampler) Delay() int {
	return max(r.history.Samples()-r.padding, 0)
}

// OutputSize returns an upper estimate of the output produced by feeding n
// more input samples.
func (r *Resampler) OutputSize(n int) (int, error) {
	samples := int64(r.Delay()) + int64(n)
	out := (samples*int64(r.cfg.OutRate) + int64(r.cfg.InRate) - 1) / int64(r.cfg.InRate)
	if out > maxOutputSamples {
		return 0, fmt.Errorf("%w: %d input samples yield too many output samples", buffer.ErrInvalidArgument, n)
	}
	return int(out), nil
}

// State returns the priming state.
func (r *Resampler) State() State { return r.state }

// Compensating reports whether a compensation is in progress.
func (r *Resampler) Compensating() bool { return r.compDistance > 0 }

// FilterLength returns the taps per phase.
func (r *Resampler) FilterLength() int { return r.length }

// PhaseCount returns the number of filter phases.
func (r *Resampler) PhaseCount() int { return int(r.phaseMask) + 1 }

// Padding returns the mirrored samples placed before the stream start.
func (r *Resampler) Padding() int { return r.padding }

// TailPadding returns the mirrored samples appended when flushing. It
// exceeds Padding by one when the filter length is even.
func (r *Resampler) TailPadding() int { return r.tailPadding }

// Bank returns the filter bank in float64 form.
func (r *Resampler) Bank() *filter.Bank { return r.bank }

// Config returns the configuration the resampler was built with.
func (r *Resampler) Config() Config { return r.cfg }

// KernelName names the kernel used for the next call.
func (r *Resampler) KernelName() string {
	if r.nearest() {
		return r.near.name()
	}
	return r.kernel.name()
}
