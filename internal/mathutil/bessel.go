// Package mathutil provides the numeric helpers used by filter design and
// rate arithmetic.
package mathutil

import "math"

// BesselI0 computes the modified Bessel function of the first kind, order
// zero, by summing its power series
//
//	I₀(x) = Σ ((x/2)^k / k!)²
//
// until the next term no longer changes the sum. The series converges for
// every x; for the window β values in use (≤ 16) it needs a few dozen terms.
func BesselI0(x float64) float64 {
	sum, term := 1.0, 1.0
	q := x * x / besselSeriesDivisor
	for k := 1; k < besselMaxTerms; k++ {
		term *= q / float64(k*k)
		next := sum + term
		if next == sum {
			break
		}
		sum = next
	}
	return sum
}

// KaiserBeta computes the Kaiser window β parameter from the desired
// stopband attenuation in decibels.
//
// Formula from Kaiser & Schafer:
//   - For att > 50 dB: β = 0.1102 * (att - 8.7)
//   - For 21 dB ≤ att ≤ 50 dB: β = 0.5842 * (att - 21)^0.4 + 0.07886 * (att - 21)
//   - For att < 21 dB: β = 0
func KaiserBeta(attenuation float64) float64 {
	if attenuation > kaiserAttHigh {
		return kaiserBetaHighCoeff1 * (attenuation - kaiserBetaHighOffset)
	} else if attenuation >= kaiserAttMedium {
		delta := attenuation - kaiserAttMedium
		return kaiserBetaMediumCoeff1*math.Pow(delta, kaiserBetaMediumPower) + kaiserBetaMediumCoeff2*delta
	}
	return 0.0
}

// KaiserAttenuation estimates the stopband attenuation achieved by a
// Kaiser window with the given β parameter. It inverts the high
// attenuation branch of KaiserBeta.
func KaiserAttenuation(beta float64) float64 {
	if beta < kaiserBetaMinThreshold {
		return 0.0
	}
	return kaiserBetaHighOffset + beta/kaiserBetaHighCoeff1
}
