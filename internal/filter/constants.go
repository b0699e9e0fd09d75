package filter

// Cubic interpolation kernel
const (
	cubicDerivative = -0.5 // Slope of the kernel at its support edges
	cubicSupport    = 2.0  // Kernel is zero for |x| >= 2
)

// Blackman-Nuttall window coefficients
const (
	nuttallA0 = 0.3635819
	nuttallA1 = 0.4891775
	nuttallA2 = 0.1365995
	nuttallA3 = 0.0106411
)

// Kaiser β limits accepted by BuildBank
const (
	MinKaiserBeta = 2.0
	MaxKaiserBeta = 16.0
)

// Bank size limits
const (
	maxPhaseShift = 30
	maxPhases     = 1 << maxPhaseShift
	maxBankTaps   = 1 << 26 // Upper bound on (phases+1) * taps
)

// Frequency response
const (
	defaultResponsePoints = 512
	minMagnitude          = 1e-10 // Floor for dB conversion
	dbMultiplier          = 20.0  // 20*log10 for magnitude
)
