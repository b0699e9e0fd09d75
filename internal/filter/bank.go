package filter

import (
	"fmt"
	"math"

	"github.com/tphakala/go-audio-converter/internal/buffer"
)

// BankParams describes a polyphase filter bank.
type BankParams struct {
	// FilterLength is the number of taps per phase.
	FilterLength int

	// PhaseCount is the number of sub-sample phases, a power of two.
	PhaseCount int

	// Factor is the cutoff relative to the input Nyquist frequency, in (0, 1].
	Factor float64

	// Window shapes each phase.
	Window WindowType

	// KaiserBeta is the Kaiser window parameter. Only used by WindowKaiser.
	KaiserBeta float64
}

// Validate checks the parameters.
func (p *BankParams) Validate() error {
	if p.FilterLength < 1 {
		return fmt.Errorf("%w: filter length must be positive, got %d", buffer.ErrInvalidArgument, p.FilterLength)
	}
	if p.PhaseCount < 1 || p.PhaseCount > maxPhases || p.PhaseCount&(p.PhaseCount-1) != 0 {
		return fmt.Errorf("%w: phase count must be a power of two up to 2^%d, got %d",
			buffer.ErrInvalidArgument, maxPhaseShift, p.PhaseCount)
	}
	if (p.PhaseCount+1)*p.FilterLength > maxBankTaps {
		return fmt.Errorf("%w: %d phases of %d taps exceeds the bank size limit",
			buffer.ErrResourceExhaustion, p.PhaseCount+1, p.FilterLength)
	}
	if !(p.Factor > 0 && p.Factor <= 1) {
		return fmt.Errorf("%w: cutoff factor must be in (0, 1], got %g", buffer.ErrInvalidArgument, p.Factor)
	}
	if !p.Window.Valid() {
		return fmt.Errorf("%w: unknown filter type %v", buffer.ErrInvalidArgument, p.Window)
	}
	if p.Window == WindowKaiser && (p.KaiserBeta < MinKaiserBeta || p.KaiserBeta > MaxKaiserBeta) {
		return fmt.Errorf("%w: kaiser beta must be in [%g, %g], got %g",
			buffer.ErrInvalidArgument, MinKaiserBeta, MaxKaiserBeta, p.KaiserBeta)
	}
	return nil
}

// Bank is a polyphase filter bank. Each phase holds FilterLength taps and
// sums to one.
//
// Phase ph, tap i filters the input sample i - Center() positions from the
// output position, offset by ph/PhaseCount of a sample. Phases has
// PhaseCount+1 entries: the last one is phase 0 advanced by one whole
// sample, so linear interpolation from the final phase never wraps.
type Bank struct {
	Phases       [][]float64
	FilterLength int
	PhaseCount   int
	Factor       float64
	Window       WindowType
	KaiserBeta   float64
}

// FilterLength returns the taps per phase for a filter size budget and a
// cutoff factor: max(ceil(size / factor), 1).
func FilterLength(filterSize int, factor float64) int {
	return max(int(math.Ceil(float64(filterSize)/factor)), 1)
}

// BuildBank designs a windowed-sinc polyphase filter bank.
func BuildBank(p BankParams) (*Bank, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}

	length, phases := p.FilterLength, p.PhaseCount
	center := (length - 1) / 2

	bank := &Bank{
		Phases:       make([][]float64, phases+1),
		FilterLength: length,
		PhaseCount:   phases,
		Factor:       p.Factor,
		Window:       p.Window,
		KaiserBeta:   p.KaiserBeta,
	}

	storage := make([]float64, (phases+1)*length)
	for ph := range phases {
		taps := storage[ph*length : (ph+1)*length : (ph+1)*length]
		var norm float64
		for i := range taps {
			t := float64(i-center) - float64(ph)/float64(phases)
			taps[i] = tap(t, p.Factor, length, p.Window, p.KaiserBeta)
			norm += taps[i]
		}
		// unit DC gain per phase
		for i := range taps {
			taps[i] /= norm
		}
		bank.Phases[ph] = taps
	}

	last := storage[phases*length:]
	last[0] = bank.Phases[0][length-1]
	copy(last[1:], bank.Phases[0][:length-1])
	bank.Phases[phases] = last

	return bank, nil
}

// Center returns the index of the tap aligned with the output position.
func (b *Bank) Center() int {
	return (b.FilterLength - 1) / 2
}

// Prototype interleaves the phases back into the single filter they were
// sampled from, PhaseCount times the input rate. Its DC gain is PhaseCount.
func (b *Bank) Prototype() []float64 {
	p := b.PhaseCount
	proto := make([]float64, b.FilterLength*p)
	for ph := range p {
		for i, c := range b.Phases[ph] {
			// offset i - center - ph/p, in 1/p sample steps from the first tap
			proto[i*p-ph+p-1] = c
		}
	}
	return proto
}
