// Package filter designs the windowed-sinc polyphase filter banks used for
// sample rate conversion and analyzes their frequency response.
package filter

import (
	"fmt"
	"math"
	"strings"

	"github.com/tphakala/go-audio-converter/internal/buffer"
	"github.com/tphakala/go-audio-converter/internal/mathutil"
)

// WindowType selects the function that shapes each filter phase.
type WindowType int

const (
	// WindowCubic multiplies the sinc by the Keys cubic interpolation kernel.
	WindowCubic WindowType = iota
	// WindowBlackmanNuttall multiplies the sinc by a 4-term Blackman-Nuttall window.
	WindowBlackmanNuttall
	// WindowKaiser multiplies the sinc by a Kaiser window of parameter β.
	WindowKaiser
)

var windowNames = [...]string{
	WindowCubic:           "cubic",
	WindowBlackmanNuttall: "blackman-nuttall",
	WindowKaiser:          "kaiser",
}

func (w WindowType) String() string {
	if w < 0 || int(w) >= len(windowNames) {
		return fmt.Sprintf("WindowType(%d)", int(w))
	}
	return windowNames[w]
}

// Valid reports whether w is a known window type.
func (w WindowType) Valid() bool {
	return w >= WindowCubic && w <= WindowKaiser
}

// ParseWindowType parses a window name.
func ParseWindowType(s string) (WindowType, error) {
	name := strings.ToLower(strings.TrimSpace(s))
	for w, n := range windowNames {
		if n == name {
			return WindowType(w), nil
		}
	}
	return WindowKaiser, fmt.Errorf("%w: unknown filter type %q", buffer.ErrInvalidArgument, s)
}

// MarshalText implements encoding.TextMarshaler.
func (w WindowType) MarshalText() ([]byte, error) { return []byte(w.String()), nil }

// UnmarshalText implements encoding.TextUnmarshaler.
func (w *WindowType) UnmarshalText(text []byte) error {
	v, err := ParseWindowType(string(text))
	if err != nil {
		return err
	}
	*w = v
	return nil
}

// tap evaluates one filter tap at offset t input samples from the filter
// center. length is the number of taps per phase.
func tap(t, factor float64, length int, window WindowType, beta float64) float64 {
	x := math.Pi * t * factor
	y := 1.0
	if x != 0 {
		y = math.Sin(x) / x
	}

	switch window {
	case WindowCubic:
		y *= cubic(math.Abs(t * factor))
	case WindowBlackmanNuttall:
		w := 2*x/(factor*float64(length)) + math.Pi
		y *= nuttallA0 - nuttallA1*math.Cos(w) + nuttallA2*math.Cos(2*w) - nuttallA3*math.Cos(3*w)
	case WindowKaiser:
		w := 2 * x / (factor * float64(length) * math.Pi)
		y *= mathutil.BesselI0(beta * math.Sqrt(max(1-w*w, 0)))
	}
	return y
}

// cubic is the Keys cubic convolution kernel with a = -0.5.
func cubic(x float64) float64 {
	const d = cubicDerivative
	x2, x3 := x*x, x*x*x
	switch {
	case x < 1:
		return 1 - 3*x2 + 2*x3 + d*(-x2+x3)
	case x < cubicSupport:
		return d * (-4 + 8*x - 5*x2 + x3)
	default:
		return 0
	}
}
