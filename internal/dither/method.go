package dither

import (
	"fmt"
	"strings"

	"github.com/tphakala/go-audio-converter/internal/buffer"
)

// Method selects the dither noise added before quantizing to 16 bits.
type Method int

const (
	// MethodNone quantizes without dither.
	MethodNone Method = iota
	// MethodRectangular adds uniform noise of one LSB peak to peak.
	MethodRectangular
	// MethodTriangular adds the sum of two uniform draws.
	MethodTriangular
	// MethodTriangularHighpass adds high-passed triangular noise.
	MethodTriangularHighpass
	// MethodTriangularNS adds triangular noise and shapes the requantization
	// error away from the most audible band. Only 44100 and 48000 Hz are
	// supported.
	MethodTriangularNS
)

var methodNames = [...]string{
	MethodNone:               "none",
	MethodRectangular:        "rectangular",
	MethodTriangular:         "triangular",
	MethodTriangularHighpass: "triangular_hp",
	MethodTriangularNS:       "triangular_ns",
}

func (m Method) String() string {
	if m < 0 || int(m) >= len(methodNames) {
		return fmt.Sprintf("Method(%d)", int(m))
	}
	return methodNames[m]
}

// Valid reports whether m is a known method.
func (m Method) Valid() bool {
	return m >= MethodNone && m <= MethodTriangularNS
}

// ParseMethod parses a dither method name.
func ParseMethod(s string) (Method, error) {
	name := strings.ToLower(strings.TrimSpace(s))
	for m, n := range methodNames {
		if n == name {
			return Method(m), nil
		}
	}
	return MethodNone, fmt.Errorf("%w: unknown dither method %q", buffer.ErrInvalidArgument, s)
}

// MarshalText implements encoding.TextMarshaler.
func (m Method) MarshalText() ([]byte, error) { return []byte(m.String()), nil }

// UnmarshalText implements encoding.TextUnmarshaler.
func (m *Method) UnmarshalText(text []byte) error {
	v, err := ParseMethod(string(text))
	if err != nil {
		return err
	}
	*m = v
	return nil
}
