package buffer

import "fmt"

// ChannelOp says how one output channel of a remapping is populated.
type ChannelOp uint8

const (
	// OpRemap takes the channel from input channel Index.
	OpRemap ChannelOp = iota
	// OpCopy duplicates output channel Index, which was already remapped.
	OpCopy
	// OpZero fills the channel with silence.
	OpZero
)

// Directive populates one output channel.
type Directive struct {
	Op    ChannelOp
	Index int
}

// ChannelMap describes a channel reordering applied while copying or
// converting. Remap, copy and zero directives are independent and may be
// combined within one map.
type ChannelMap struct {
	// Directives holds one entry per output channel.
	Directives []Directive

	// InputMap gives, for each input channel, the output channel that
	// receives it. Inputs nobody asked for are paired with the leftover
	// outputs so that a full deinterleave can write every plane.
	InputMap []int

	DoRemap bool
	DoCopy  bool
	DoZero  bool
}

// NewChannelMap builds a map from a caller mapping where mapping[out] is the
// input channel feeding output channel out, or negative for silence. An
// input referenced more than once is remapped on its first use and copied
// afterwards.
func NewChannelMap(mapping []int, inChannels int) (*ChannelMap, error) {
	if inChannels < minChannels || inChannels > MaxChannels {
		return nil, fmt.Errorf("%w: channel map for %d input channels", ErrInvalidArgument, inChannels)
	}
	if len(mapping) != inChannels {
		return nil, fmt.Errorf("%w: channel map has %d entries, want %d", ErrInvalidArgument, len(mapping), inChannels)
	}

	m := &ChannelMap{
		Directives: make([]Directive, inChannels),
		InputMap:   make([]int, inChannels),
	}
	for i := range m.InputMap {
		m.InputMap[i] = -1
	}

	for ch, src := range mapping {
		switch {
		case src >= inChannels:
			return nil, fmt.Errorf("%w: channel map entry %d references input %d of %d",
				ErrInvalidArgument, ch, src, inChannels)
		case src < 0:
			m.Directives[ch] = Directive{Op: OpZero, Index: -1}
			m.DoZero = true
		case m.InputMap[src] >= 0:
			m.Directives[ch] = Directive{Op: OpCopy, Index: m.InputMap[src]}
			m.DoCopy = true
		default:
			m.Directives[ch] = Directive{Op: OpRemap, Index: src}
			m.InputMap[src] = ch
			m.DoRemap = true
		}
	}

	// pair unused inputs with outputs that are not remapped
	in, out := 0, 0
	for {
		for in < inChannels && m.InputMap[in] >= 0 {
			in++
		}
		for out < inChannels && m.Directives[out].Op == OpRemap {
			out++
		}
		if in >= inChannels || out >= inChannels {
			break
		}
		m.InputMap[in] = out
		in++
		out++
	}

	return m, nil
}

// ApplyCopies performs the copy and zero directives on already-remapped
// planar planes holding n samples.
func (m *ChannelMap) ApplyCopies(planes [][]byte, n, stride int, format SampleFormat) {
	if !m.DoCopy && !m.DoZero {
		return
	}
	size := n * stride
	for p, d := range m.Directives {
		if p >= len(planes) {
			break
		}
		switch d.Op {
		case OpCopy:
			copy(planes[p][:size], planes[d.Index][:size])
		case OpZero:
			FillSilence(planes[p][:size], format)
		}
	}
}
