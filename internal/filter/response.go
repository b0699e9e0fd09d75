package filter

import (
	"math"
	"math/cmplx"

	"gonum.org/v1/gonum/dsp/fourier"
)

// Response holds a sampled frequency response.
type Response struct {
	// Frequencies in cycles per sample, from 0 to 0.5.
	Frequencies []float64
	Magnitude   []float64
	Phase       []float64
}

// FrequencyResponse evaluates the response of an FIR filter at points
// frequencies from DC to Nyquist using a zero-padded FFT.
func FrequencyResponse(taps []float64, points int) Response {
	if points <= 0 {
		points = defaultResponsePoints
	}
	n := 2 * (points - 1)
	for n < len(taps) {
		n *= 2
	}

	seq := make([]float64, n)
	copy(seq, taps)
	fft := fourier.NewFFT(n)
	coeffs := fft.Coefficients(nil, seq)

	// keep every stride-th bin so exactly points bins span [0, 0.5]
	stride := n / (2 * (points - 1))
	if points == 1 {
		stride = 1
	}

	resp := Response{
		Frequencies: make([]float64, points),
		Magnitude:   make([]float64, points),
		Phase:       make([]float64, points),
	}
	for k := range points {
		c := coeffs[k*stride]
		resp.Frequencies[k] = fft.Freq(k * stride)
		resp.Magnitude[k] = cmplx.Abs(c)
		resp.Phase[k] = cmplx.Phase(c)
	}
	return resp
}

// MagnitudeDB converts linear magnitude to decibels.
func MagnitudeDB(magnitude float64) float64 {
	if magnitude < minMagnitude {
		magnitude = minMagnitude
	}
	return dbMultiplier * math.Log10(magnitude)
}

// StopbandAttenuation returns the smallest attenuation, in dB relative to
// the DC response, found at or above frequency from (cycles per sample).
func (r Response) StopbandAttenuation(from float64) float64 {
	if len(r.Magnitude) == 0 {
		return 0
	}
	dc := r.Magnitude[0]
	worst := math.Inf(1)
	for k, f := range r.Frequencies {
		if f < from {
			continue
		}
		worst = min(worst, MagnitudeDB(dc)-MagnitudeDB(r.Magnitude[k]))
	}
	return worst
}
