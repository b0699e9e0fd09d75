package mix

import (
	"fmt"
	"math"
	"math/bits"
	"strings"

	"github.com/tphakala/go-audio-converter/internal/buffer"
	"github.com/tphakala/go-audio-converter/internal/simdops"
)

// Encoding selects how surround channels are folded into a stereo pair.
type Encoding int

const (
	// EncodingNone folds surrounds in phase.
	EncodingNone Encoding = iota
	// EncodingDolby folds surrounds with opposite phase on left and right
	// for Dolby Surround decoders.
	EncodingDolby
	// EncodingDPLII weights back channels for Dolby Pro Logic II decoders.
	EncodingDPLII
)

var encodingNames = [...]string{
	EncodingNone:  "none",
	EncodingDolby: "dolby",
	EncodingDPLII: "dplii",
}

func (e Encoding) String() string {
	if e < 0 || int(e) >= len(encodingNames) {
		return fmt.Sprintf("Encoding(%d)", int(e))
	}
	return encodingNames[e]
}

// ParseEncoding parses an encoding name.
func ParseEncoding(s string) (Encoding, error) {
	name := strings.ToLower(strings.TrimSpace(s))
	for e, n := range encodingNames {
		if n == name {
			return Encoding(e), nil
		}
	}
	return EncodingNone, fmt.Errorf("%w: unknown matrix encoding %q", buffer.ErrInvalidArgument, s)
}

// MarshalText implements encoding.TextMarshaler.
func (e Encoding) MarshalText() ([]byte, error) { return []byte(e.String()), nil }

// UnmarshalText implements encoding.TextUnmarshaler.
func (e *Encoding) UnmarshalText(text []byte) error {
	v, err := ParseEncoding(string(text))
	if err != nil {
		return err
	}
	*e = v
	return nil
}

// MatrixOptions holds the levels used when folding channels that the output
// layout lacks.
type MatrixOptions struct {
	CenterMixLevel   float64
	SurroundMixLevel float64
	LFEMixLevel      float64
	Normalize        bool
	Encoding         Encoding
}

// DefaultMatrixOptions returns -3 dB center and surround levels, a muted
// LFE and normalization on.
func DefaultMatrixOptions() MatrixOptions {
	return MatrixOptions{
		CenterMixLevel:   DefaultCenterMixLevel,
		SurroundMixLevel: DefaultSurroundMixLevel,
		LFEMixLevel:      DefaultLFEMixLevel,
		Normalize:        true,
	}
}

// symmetricPairs lists the positions that must appear together.
var symmetricPairs = []Layout{
	Layout(FrontLeft | FrontRight),
	Layout(SideLeft | SideRight),
	Layout(BackLeft | BackRight),
	Layout(FrontLeftOfCenter | FrontRightOfCenter),
	Layout(TopFrontLeft | TopFrontRight),
	Layout(TopBackLeft | TopBackRight),
	Layout(StereoLeft | StereoRight),
	Layout(WideLeft | WideRight),
	Layout(SurroundDirectLeft | SurroundDirectRight),
}

// saneLayout reports whether l has a front speaker and no half pairs.
func saneLayout(l Layout) bool {
	if l&LayoutSurround == 0 {
		return false
	}
	for _, pair := range symmetricPairs {
		if bits.OnesCount64(uint64(l&pair)) == 1 {
			return false
		}
	}
	return true
}

// coeffs is the working matrix indexed by output and input bit position.
type coeffs [maxPositions][maxPositions]float64

func (m *coeffs) add(out, in Channel, v float64) {
	m[pos(out)][pos(in)] += v
}

func pos(c Channel) int { return bits.TrailingZeros64(uint64(c)) }

// BuildMatrix derives an out.Channels() x in.Channels() mixing matrix.
//
// Positions present in both layouts pass through at unity. Each input
// position the output lacks is folded into the nearest available positions;
// a position with no fold rule fails with ErrUnsupported. With Normalize set,
// rows whose absolute coefficient sum exceeds one are scaled down to one.
func BuildMatrix(in, out Layout, opts MatrixOptions) ([][]float64, error) {
	if out&LayoutStereoDownmix == LayoutStereoDownmix {
		out = LayoutStereo
	}

	inChannels, outChannels := in.Channels(), out.Channels()
	if in == 0 || inChannels > buffer.MaxChannels {
		return nil, fmt.Errorf("%w: input layout %v", buffer.ErrInvalidArgument, in)
	}
	if out == 0 || outChannels > buffer.MaxChannels {
		return nil, fmt.Errorf("%w: output layout %v", buffer.ErrInvalidArgument, out)
	}
	if !saneLayout(in) || !saneLayout(out) {
		return nil, fmt.Errorf("%w: cannot mix %v to %v: unbalanced or frontless layout",
			buffer.ErrUnsupported, in, out)
	}

	var m coeffs
	for _, c := range (in & out).ChannelList() {
		m.add(c, c, 1)
	}

	unaccounted := in &^ out
	if err := fold(&m, in, out, unaccounted, opts); err != nil {
		return nil, err
	}

	ops := simdops.For[float64]()
	magnitude := make([]float64, inChannels)
	matrix := make([][]float64, outChannels)
	for i, oc := range out.ChannelList() {
		row := make([]float64, inChannels)
		for j, ic := range in.ChannelList() {
			row[j] = m[pos(oc)][pos(ic)]
			magnitude[j] = math.Abs(row[j])
		}
		if sum := ops.Sum(magnitude); opts.Normalize && sum > 1 {
			for j := range row {
				row[j] /= sum
			}
		}
		matrix[i] = row
	}
	return matrix, nil
}

// fold routes every unaccounted input position into the output layout.
func fold(m *coeffs, in, out, unaccounted Layout, opts MatrixOptions) error {
	clev, slev, llev := opts.CenterMixLevel, opts.SurroundMixLevel, opts.LFEMixLevel
	unsupported := func(c Channel) error {
		return fmt.Errorf("%w: cannot mix %v to %v: no route for %v", buffer.ErrUnsupported, in, out, c)
	}
	matrixed := opts.Encoding == EncodingDolby || opts.Encoding == EncodingDPLII

	handled := Layout(0)
	markHandled := func(c Channel) { handled |= Layout(c) }

	// front center to front left/right
	if unaccounted.Has(FrontCenter) {
		markHandled(FrontCenter)
		if !out.Has(FrontLeft | FrontRight) {
			return unsupported(FrontCenter)
		}
		level := invSqrt2
		if in.Has(FrontLeft | FrontRight) {
			level = clev
		}
		m.add(FrontLeft, FrontCenter, level)
		m.add(FrontRight, FrontCenter, level)
	}

	// front left/right to front center
	if unaccounted&LayoutStereo != 0 {
		markHandled(FrontLeft | FrontRight)
		if !out.Has(FrontCenter) {
			return unsupported(FrontLeft)
		}
		m.add(FrontCenter, FrontLeft, invSqrt2)
		m.add(FrontCenter, FrontRight, invSqrt2)
		if in.Has(FrontCenter) {
			m[pos(FrontCenter)][pos(FrontCenter)] = clev * math.Sqrt2
		}
	}

	// back center to back, side or front
	if unaccounted.Has(BackCenter) {
		markHandled(BackCenter)
		switch {
		case out.Has(BackLeft):
			m.add(BackLeft, BackCenter, invSqrt2)
			m.add(BackRight, BackCenter, invSqrt2)
		case out.Has(SideLeft):
			m.add(SideLeft, BackCenter, invSqrt2)
			m.add(SideRight, BackCenter, invSqrt2)
		case out.Has(FrontLeft):
			switch {
			case matrixed && unaccounted&Layout(BackLeft|SideLeft) != 0:
				m.add(FrontLeft, BackCenter, -slev*invSqrt2)
				m.add(FrontRight, BackCenter, slev*invSqrt2)
			case matrixed:
				m.add(FrontLeft, BackCenter, -slev)
				m.add(FrontRight, BackCenter, slev)
			default:
				m.add(FrontLeft, BackCenter, slev*invSqrt2)
				m.add(FrontRight, BackCenter, slev*invSqrt2)
			}
		case out.Has(FrontCenter):
			m.add(FrontCenter, BackCenter, slev*invSqrt2)
		default:
			return unsupported(BackCenter)
		}
	}

	// back left/right to back center, side or front
	if unaccounted.Has(BackLeft) {
		markHandled(BackLeft | BackRight)
		switch {
		case out.Has(BackCenter):
			m.add(BackCenter, BackLeft, invSqrt2)
			m.add(BackCenter, BackRight, invSqrt2)
		case out.Has(SideLeft):
			level := 1.0
			if in.Has(SideLeft) {
				level = invSqrt2
			}
			m.add(SideLeft, BackLeft, level)
			m.add(SideRight, BackRight, level)
		case out.Has(FrontLeft):
			foldSurroundPair(m, BackLeft, BackRight, slev, opts.Encoding)
		case out.Has(FrontCenter):
			m.add(FrontCenter, BackLeft, slev*invSqrt2)
			m.add(FrontCenter, BackRight, slev*invSqrt2)
		default:
			return unsupported(BackLeft)
		}
	}

	// side left/right to back, back center or front
	if unaccounted.Has(SideLeft) {
		markHandled(SideLeft | SideRight)
		switch {
		case out.Has(BackLeft):
			level := 1.0
			if in.Has(BackLeft) {
				level = invSqrt2
			}
			m.add(BackLeft, SideLeft, level)
			m.add(BackRight, SideRight, level)
		case out.Has(BackCenter):
			m.add(BackCenter, SideLeft, invSqrt2)
			m.add(BackCenter, SideRight, invSqrt2)
		case out.Has(FrontLeft):
			foldSurroundPair(m, SideLeft, SideRight, slev, opts.Encoding)
		case out.Has(FrontCenter):
			m.add(FrontCenter, SideLeft, slev*invSqrt2)
			m.add(FrontCenter, SideRight, slev*invSqrt2)
		default:
			return unsupported(SideLeft)
		}
	}

	// left/right of center to front left/right or center
	if unaccounted.Has(FrontLeftOfCenter) {
		markHandled(FrontLeftOfCenter | FrontRightOfCenter)
		switch {
		case out.Has(FrontLeft):
			m.add(FrontLeft, FrontLeftOfCenter, 1)
			m.add(FrontRight, FrontRightOfCenter, 1)
		case out.Has(FrontCenter):
			m.add(FrontCenter, FrontLeftOfCenter, invSqrt2)
			m.add(FrontCenter, FrontRightOfCenter, invSqrt2)
		default:
			return unsupported(FrontLeftOfCenter)
		}
	}

	// LFE to front center or front left/right
	if unaccounted.Has(LowFrequency) {
		markHandled(LowFrequency)
		switch {
		case out.Has(FrontCenter):
			m.add(FrontCenter, LowFrequency, llev)
		case out.Has(FrontLeft):
			m.add(FrontLeft, LowFrequency, llev*invSqrt2)
			m.add(FrontRight, LowFrequency, llev*invSqrt2)
		default:
			return unsupported(LowFrequency)
		}
	}

	if rest := unaccounted &^ handled; rest != 0 {
		return unsupported(rest.ChannelList()[0])
	}
	return nil
}

// foldSurroundPair mixes a left/right surround pair into front left/right.
func foldSurroundPair(m *coeffs, left, right Channel, slev float64, enc Encoding) {
	switch enc {
	case EncodingDolby:
		m.add(FrontLeft, left, -slev*invSqrt2)
		m.add(FrontLeft, right, -slev*invSqrt2)
		m.add(FrontRight, left, slev*invSqrt2)
		m.add(FrontRight, right, slev*invSqrt2)
	case EncodingDPLII:
		m.add(FrontLeft, left, -slev*sqrt3_2)
		m.add(FrontLeft, right, -slev*invSqrt2)
		m.add(FrontRight, left, slev*invSqrt2)
		m.add(FrontRight, right, slev*sqrt3_2)
	default:
		m.add(FrontLeft, left, slev)
		m.add(FrontRight, right, slev)
	}
}
