package dither

import "math/rand/v2"

// channelState holds the noise and shaping history of one channel.
type channelState struct {
	pcg  *rand.PCG
	rng  *rand.Rand
	seed uint64
	ch   uint64

	noise []float32
	size  int // usable noise samples, a multiple of noiseAlign
	pos   int

	mute int

	// noise shaping history: a holds past shaping outputs, b past
	// requantization errors
	a, b [nsTaps]float32
}

func newChannelState(seed uint64, ch int, mute int) *channelState {
	pcg := rand.NewPCG(seed, uint64(ch))
	return &channelState{
		pcg:  pcg,
		rng:  rand.New(pcg),
		seed: seed,
		ch:   uint64(ch),
		mute: mute,
	}
}

func align16(n int) int {
	return (n + noiseAlign - 1) / noiseAlign * noiseAlign
}

// uniform returns a draw in [-0.5, 0.5].
func (s *channelState) uniform() float32 {
	return float32(int32(s.rng.Uint32())) * uniformScale
}

// generate refills the noise buffer with at least n usable samples,
// restarting the generator from the channel seed.
func (s *channelState) generate(method Method, n int) {
	total := align16(n) + noisePad
	if cap(s.noise) >= total {
		s.noise = s.noise[:total]
	} else {
		s.noise = make([]float32, total)
	}

	s.pcg.Seed(s.seed, s.ch)
	for i := range s.noise {
		if method == MethodRectangular {
			s.noise[i] = s.uniform()
		} else {
			s.noise[i] = s.uniform() + s.uniform()
		}
	}
	if method == MethodTriangularHighpass {
		highpass(s.noise)
	}

	s.size = align16(n)
	s.pos = 0
}

// highpass filters noise in place with (-1, 2, -1) scaled to unit gain.
// The last two samples are left unfiltered.
func highpass(noise []float32) {
	for i := 0; i < len(noise)-2; i++ {
		noise[i] = (-noise[i] + 2*noise[i+1] - noise[i+2]) * highpassGain
	}
}

// next returns n noise samples, regenerating or rewinding the buffer when
// fewer than align16(n) remain.
func (s *channelState) next(method Method, n int) []float32 {
	aligned := align16(n)
	switch {
	case s.size < aligned:
		s.generate(method, n)
	case s.size-s.pos < aligned:
		s.pos = 0
	}
	noise := s.noise[s.pos : s.pos+n]
	s.pos += aligned
	return noise
}
