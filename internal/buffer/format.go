package buffer

import (
	"fmt"
	"strings"
)

// SampleFormat identifies a sample representation: one of five element types,
// each either packed (interleaved) or planar (one plane per channel).
type SampleFormat int

const (
	// FormatNone is the zero value and means "not set".
	FormatNone SampleFormat = iota
	FormatU8
	FormatS16
	FormatS32
	FormatFLT
	FormatDBL
	FormatU8P
	FormatS16P
	FormatS32P
	FormatFLTP
	FormatDBLP
)

var formatNames = [...]string{
	FormatNone: "none",
	FormatU8:   "u8",
	FormatS16:  "s16",
	FormatS32:  "s32",
	FormatFLT:  "flt",
	FormatDBL:  "dbl",
	FormatU8P:  "u8p",
	FormatS16P: "s16p",
	FormatS32P: "s32p",
	FormatFLTP: "fltp",
	FormatDBLP: "dblp",
}

// Valid reports whether f is one of the ten concrete sample formats.
func (f SampleFormat) Valid() bool {
	return f >= FormatU8 && f <= FormatDBLP
}

// IsPlanar reports whether f stores one plane per channel.
func (f SampleFormat) IsPlanar() bool {
	return f >= FormatU8P && f <= FormatDBLP
}

// IsFloat reports whether f holds floating point samples.
func (f SampleFormat) IsFloat() bool {
	p := f.Packed()
	return p == FormatFLT || p == FormatDBL
}

// Packed returns the interleaved variant of f.
func (f SampleFormat) Packed() SampleFormat {
	if f.IsPlanar() {
		return f - planarOffset
	}
	return f
}

// Planar returns the planar variant of f.
func (f SampleFormat) Planar() SampleFormat {
	if f.Valid() && !f.IsPlanar() {
		return f + planarOffset
	}
	return f
}

// BytesPerSample returns the size of one sample of one channel.
func (f SampleFormat) BytesPerSample() int {
	switch f.Packed() {
	case FormatU8:
		return bytesU8
	case FormatS16:
		return bytesS16
	case FormatS32, FormatFLT:
		return bytesS32
	case FormatDBL:
		return bytesDBL
	default:
		return 0
	}
}

// IsPlanarFor reports whether buffers of f with the given channel count have
// one plane per channel. A single channel is always planar.
func (f SampleFormat) IsPlanarFor(channels int) bool {
	return channels == 1 || f.IsPlanar()
}

// String returns the short name of f ("s16", "fltp", ...).
func (f SampleFormat) String() string {
	if f < 0 || int(f) >= len(formatNames) {
		return fmt.Sprintf("SampleFormat(%d)", int(f))
	}
	return formatNames[f]
}

// ParseSampleFormat parses a short format name.
func ParseSampleFormat(s string) (SampleFormat, error) {
	name := strings.ToLower(strings.TrimSpace(s))
	for f, n := range formatNames {
		if n == name && SampleFormat(f) != FormatNone {
			return SampleFormat(f), nil
		}
	}
	return FormatNone, fmt.Errorf("%w: unknown sample format %q", ErrInvalidArgument, s)
}

// MarshalText implements encoding.TextMarshaler.
func (f SampleFormat) MarshalText() ([]byte, error) {
	return []byte(f.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler. Unlike
// ParseSampleFormat it accepts "none", so unset fields round-trip.
func (f *SampleFormat) UnmarshalText(text []byte) error {
	if name := strings.TrimSpace(string(text)); name == "" || strings.EqualFold(name, FormatNone.String()) {
		*f = FormatNone
		return nil
	}
	v, err := ParseSampleFormat(string(text))
	if err != nil {
		return err
	}
	*f = v
	return nil
}
