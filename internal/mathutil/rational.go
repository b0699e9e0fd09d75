package mathutil

// Reduce returns num/den in lowest terms with both parts at most limit,
// using the best rational approximation from the continued fraction
// expansion when the exact ratio does not fit. exact reports whether the
// result equals num/den.
func Reduce(num, den, limit int64) (n, d int64, exact bool) {
	negative := (num < 0) != (den < 0)
	num, den = abs64(num), abs64(den)
	if g := GCD(num, den); g != 0 {
		num /= g
		den /= g
	}

	// convergents a0 = 0/1, a1 = 1/0
	a0n, a0d := int64(0), int64(1)
	a1n, a1d := int64(1), int64(0)
	if num <= limit && den <= limit {
		a1n, a1d = num, den
		den = 0
	}

	for den != 0 {
		x := num / den
		nextDen := num - den*x
		a2n := x*a1n + a0n
		a2d := x*a1d + a0d

		if a2n > limit || a2d > limit {
			// semiconvergent with the largest admissible coefficient
			if a1n != 0 {
				x = (limit - a0n) / a1n
			}
			if a1d != 0 {
				x = min(x, (limit-a0d)/a1d)
			}
			if den*(2*x*a1d+a0d) > num*a1d {
				a1n, a1d = x*a1n+a0n, x*a1d+a0d
			}
			break
		}

		a0n, a0d = a1n, a1d
		a1n, a1d = a2n, a2d
		num, den = den, nextDen
	}

	if negative {
		a1n = -a1n
	}
	return a1n, a1d, den == 0
}

// GCD returns the greatest common divisor of a and b.
func GCD(a, b int64) int64 {
	a, b = abs64(a), abs64(b)
	for b != 0 {
		a, b = b, a%b
	}
	return a
}

func abs64(v int64) int64 {
	if v < 0 {
		return -v
	}
	return v
}
