package mix

import (
	"fmt"
	"math"
	"strings"

	"github.com/tphakala/go-audio-converter/internal/buffer"
)

// CoeffType is the representation mixing coefficients are stored in.
type CoeffType int

const (
	// CoeffFLT keeps coefficients as floating point.
	CoeffFLT CoeffType = iota
	// CoeffQ8 stores 8.8 fixed point coefficients (s16p only).
	CoeffQ8
	// CoeffQ15 stores 17.15 fixed point coefficients (s16p or s32p).
	CoeffQ15
)

var coeffNames = [...]string{
	CoeffFLT: "flt",
	CoeffQ8:  "q8",
	CoeffQ15: "q15",
}

func (c CoeffType) String() string {
	if c < 0 || int(c) >= len(coeffNames) {
		return fmt.Sprintf("CoeffType(%d)", int(c))
	}
	return coeffNames[c]
}

// ParseCoeffType parses a coefficient type name.
func ParseCoeffType(s string) (CoeffType, error) {
	name := strings.ToLower(strings.TrimSpace(s))
	for c, n := range coeffNames {
		if n == name {
			return CoeffType(c), nil
		}
	}
	return CoeffFLT, fmt.Errorf("%w: unknown mix coefficient type %q", buffer.ErrInvalidArgument, s)
}

// MarshalText implements encoding.TextMarshaler.
func (c CoeffType) MarshalText() ([]byte, error) { return []byte(c.String()), nil }

// UnmarshalText implements encoding.TextUnmarshaler.
func (c *CoeffType) UnmarshalText(text []byte) error {
	v, err := ParseCoeffType(string(text))
	if err != nil {
		return err
	}
	*c = v
	return nil
}

// Supports reports whether coefficients of type c can mix samples of the
// planar format f.
func (c CoeffType) Supports(f buffer.SampleFormat) bool {
	switch c {
	case CoeffQ8:
		return f == buffer.FormatS16P
	case CoeffQ15:
		return f == buffer.FormatS16P || f == buffer.FormatS32P
	case CoeffFLT:
		switch f {
		case buffer.FormatS16P, buffer.FormatS32P, buffer.FormatFLTP, buffer.FormatDBLP:
			return true
		}
	}
	return false
}

// Config describes a Mixer.
type Config struct {
	Format      buffer.SampleFormat // planar working format
	CoeffType   CoeffType
	InChannels  int
	OutChannels int
	Matrix      [][]float64 // OutChannels rows of InChannels coefficients
}

// Mixer applies a mixing matrix in place.
type Mixer struct {
	format    buffer.SampleFormat
	coeffType CoeffType
	in, out   int

	// quantized coefficients, indexed [out][in]
	coefFloat [][]float64
	coefFixed [][]int32

	r      reduction
	kernel kernel
	name   string
}

// NewMixer validates cfg and quantizes its matrix.
func NewMixer(cfg Config) (*Mixer, error) {
	if !cfg.CoeffType.Supports(cfg.Format) {
		return nil, fmt.Errorf("%w: %v coefficients cannot mix %v samples",
			buffer.ErrUnsupported, cfg.CoeffType, cfg.Format)
	}
	for _, ch := range []int{cfg.InChannels, cfg.OutChannels} {
		if ch < 1 || ch > buffer.MaxChannels {
			return nil, fmt.Errorf("%w: mixer channel count %d out of range [1, %d]",
				buffer.ErrInvalidArgument, ch, buffer.MaxChannels)
		}
	}

	m := &Mixer{
		format:    cfg.Format,
		coeffType: cfg.CoeffType,
		in:        cfg.InChannels,
		out:       cfg.OutChannels,
	}
	if err := m.SetMatrix(cfg.Matrix); err != nil {
		return nil, err
	}
	return m, nil
}

// InChannels returns the channel count Apply expects.
func (m *Mixer) InChannels() int { return m.in }

// OutChannels returns the channel count Apply produces.
func (m *Mixer) OutChannels() int { return m.out }

// Format returns the working format.
func (m *Mixer) Format() buffer.SampleFormat { return m.format }

// CoeffType returns the coefficient representation.
func (m *Mixer) CoeffType() CoeffType { return m.coeffType }

// KernelName names the kernel Apply uses.
func (m *Mixer) KernelName() string { return m.name }

// Matrix returns the effective matrix, dequantized from the stored
// coefficients.
func (m *Mixer) Matrix() [][]float64 {
	matrix := make([][]float64, m.out)
	for o := range matrix {
		row := make([]float64, m.in)
		for i := range row {
			switch m.coeffType {
			case CoeffQ8:
				row[i] = float64(m.coefFixed[o][i]) / q8One
			case CoeffQ15:
				row[i] = float64(m.coefFixed[o][i]) / q15One
			default:
				row[i] = m.coefFloat[o][i]
			}
		}
		matrix[o] = row
	}
	return matrix
}

// SetMatrix replaces the matrix wholesale. It must have OutChannels rows of
// InChannels finite coefficients.
func (m *Mixer) SetMatrix(matrix [][]float64) error {
	if len(matrix) != m.out {
		return fmt.Errorf("%w: matrix has %d rows, want %d", buffer.ErrInvalidArgument, len(matrix), m.out)
	}
	for o, row := range matrix {
		if len(row) != m.in {
			return fmt.Errorf("%w: matrix row %d has %d coefficients, want %d",
				buffer.ErrInvalidArgument, o, len(row), m.in)
		}
		for i, c := range row {
			if math.IsNaN(c) || math.IsInf(c, 0) {
				return fmt.Errorf("%w: matrix[%d][%d] is %v", buffer.ErrInvalidArgument, o, i, c)
			}
		}
	}

	m.coefFloat = make([][]float64, m.out)
	m.coefFixed = make([][]int32, m.out)
	for o, row := range matrix {
		m.coefFloat[o] = make([]float64, m.in)
		m.coefFixed[o] = make([]int32, m.in)
		for i, c := range row {
			switch m.coeffType {
			case CoeffQ8:
				m.coefFixed[o][i] = int32(clipRound(c*q8One, math.MinInt16, math.MaxInt16))
			case CoeffQ15:
				m.coefFixed[o][i] = int32(clipRound(c*q15One, math.MinInt32, math.MaxInt32))
			default:
				m.coefFloat[o][i] = c
			}
		}
	}

	// reduce over the effective coefficients so quantization to zero counts
	m.r = reduce(m.Matrix(), m.in, m.out)
	m.kernel, m.name = m.selectKernel()
	return nil
}

// clipRound rounds v half away from zero and clamps it to [lo, hi].
func clipRound(v, lo, hi float64) int64 {
	return int64(math.Max(lo, math.Min(hi, math.Round(v))))
}

// Apply mixes buf in place. buf must hold InChannels channels of the working
// format and have storage for max(InChannels, OutChannels) channels.
// Afterwards it holds OutChannels channels.
func (m *Mixer) Apply(buf *buffer.Buffer) error {
	if buf.Format() != m.format || buf.Channels() != m.in {
		return fmt.Errorf("%w: mixer for %d ch %v given %s with %d ch %v",
			buffer.ErrInvalidArgument, m.in, m.format, buf.Name(), buf.Channels(), buf.Format())
	}
	if buf.AllocatedChannels() < max(m.in, m.out) {
		return fmt.Errorf("%w: %s has storage for %d channels, mixing needs %d",
			buffer.ErrInvalidArgument, buf.Name(), buf.AllocatedChannels(), max(m.in, m.out))
	}
	if buf.ReadOnly() {
		return fmt.Errorf("%w: %s is read-only", buffer.ErrInvalidArgument, buf.Name())
	}

	n := buf.Samples()
	if n > 0 {
		planes := make([][]byte, max(m.in, m.out))
		for p := range planes {
			planes[p] = buf.Plane(p)
		}
		if m.kernel != nil {
			m.kernel(planes, n)
		}
		size := n * buf.Stride()
		for _, o := range m.r.zero {
			buffer.FillSilence(planes[o][:size], m.format)
		}
	}
	return buf.SetChannels(m.out)
}

// reduction records which channels actually need mixing.
type reduction struct {
	inIdx  []int // inputs read by the kernel
	outIdx []int // outputs written by the kernel
	zero   []int // outputs that are always silent
}

// reduce drops silent outputs and identity pass-through channels from the
// mixing work.
func reduce(matrix [][]float64, in, out int) reduction {
	var r reduction
	outZero := make([]bool, out)
	inSkip := make([]bool, in)
	outSkip := make([]bool, out)
	inActive, outActive := in, out

	for o := range out {
		zero := true
		for i := range in {
			if matrix[o][i] != 0 {
				zero = false
				break
			}
		}
		// the matching input must not be needed elsewhere either
		if zero && o < in {
			for oo := range out {
				if oo != o && matrix[oo][o] != 0 {
					zero = false
					break
				}
			}
		}
		if zero {
			outZero[o] = true
			r.zero = append(r.zero, o)
			outActive--
			if o < in {
				inActive--
			}
		}
	}

	if outActive > 0 && inActive > 0 {
		for i := range in {
			if i < out {
				inSkip[i] = isPassThrough(matrix, i, in, out)
			} else {
				inSkip[i] = !contributes(matrix, i, out)
			}
			if inSkip[i] {
				inActive--
			}
		}
		for o := range min(in, out) {
			if isPassThrough(matrix, o, in, out) {
				outSkip[o] = true
				outActive--
			}
		}
	}

	if outActive <= 0 || inActive <= 0 {
		return r
	}
	for i := range in {
		if !inSkip[i] && !(i < out && outZero[i]) {
			r.inIdx = append(r.inIdx, i)
		}
	}
	for o := range out {
		if !outZero[o] && !outSkip[o] {
			r.outIdx = append(r.outIdx, o)
		}
	}
	return r
}

// isPassThrough reports whether channel c is copied unchanged: unity on the
// diagonal, and nothing else in its row or column.
func isPassThrough(matrix [][]float64, c, in, out int) bool {
	for o := range out {
		if o != c && matrix[o][c] != 0 {
			return false
		}
	}
	for i := range in {
		want := 0.0
		if i == c {
			want = 1
		}
		if matrix[c][i] != want {
			return false
		}
	}
	return true
}

func contributes(matrix [][]float64, i, out int) bool {
	for o := range out {
		if matrix[o][i] != 0 {
			return true
		}
	}
	return false
}
