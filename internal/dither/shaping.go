package dither

import "math"

// shaper holds the noise shaping filter for one sample rate.
type shaper struct {
	b, a [nsTaps]float32
}

var (
	shaper48k = shaper{
		b: [nsTaps]float32{2.2374, -0.7339, -0.1251, -0.6033},
		a: [nsTaps]float32{0.9030, 0.0116, -0.5853, -0.2571},
	}
	shaper44k = shaper{
		b: [nsTaps]float32{2.2061, -0.4707, -0.2534, -0.6213},
		a: [nsTaps]float32{1.0587, 0.0676, -0.6054, -0.2738},
	}
)

func shaperFor(rate int) (*shaper, bool) {
	switch rate {
	case rate48k:
		return &shaper48k, true
	case rate44k:
		return &shaper44k, true
	default:
		return nil, false
	}
}

// quantize rounds src, already scaled to the 16-bit range, adding dither
// unless the channel has been silent for longer than muteAt samples.
func (s *channelState) quantize(dst []int16, src, dither []float32, muteAt int) {
	for i, v := range src {
		sample := v
		if s.mute <= muteAt {
			sample += dither[i]
		}
		dst[i] = round16(sample)

		s.mute++
		if v != 0 {
			s.mute = 0
		}
	}
}

// quantizeShaped rounds src, already scaled to the 16-bit range, feeding the
// requantization error back through the shaping filter. The filter history is cleared after a
// silent run longer than resetAt samples.
func (s *channelState) quantizeShaped(dst []int16, src, dither []float32, sh *shaper, muteAt, resetAt int) {
	if s.mute > resetAt {
		s.a = [nsTaps]float32{}
	}

	for i, v := range src {
		sample := v

		var err float32
		for j := range nsTaps {
			err += sh.b[j]*s.b[j] - sh.a[j]*s.a[j]
		}
		copy(s.a[1:], s.a[:nsTaps-1])
		copy(s.b[1:], s.b[:nsTaps-1])
		s.a[0] = err
		sample -= err

		if s.mute > muteAt {
			dst[i] = round16(sample)
			s.b[0] = 0
		} else {
			dst[i] = round16(sample + dither[i])
			s.b[0] = max(-nsErrorClip, min(nsErrorClip, float32(dst[i])-sample))
		}

		s.mute++
		if v != 0 {
			s.mute = 0
		}
	}
}

// round16 rounds half to even and clips to int16.
func round16(v float32) int16 {
	r := math.RoundToEven(float64(v))
	return int16(max(math.MinInt16, min(math.MaxInt16, r)))
}
