// Package mix builds channel mixing matrices from channel layouts and applies
// them to planar buffers.
package mix

import (
	"fmt"
	"math/bits"
	"strconv"
	"strings"

	"github.com/tphakala/go-audio-converter/internal/buffer"
)

// Channel is a single speaker position bit.
type Channel uint64

// Speaker positions. The bit order is also the channel order within a
// layout.
const (
	FrontLeft           Channel = 1 << 0
	FrontRight          Channel = 1 << 1
	FrontCenter         Channel = 1 << 2
	LowFrequency        Channel = 1 << 3
	BackLeft            Channel = 1 << 4
	BackRight           Channel = 1 << 5
	FrontLeftOfCenter   Channel = 1 << 6
	FrontRightOfCenter  Channel = 1 << 7
	BackCenter          Channel = 1 << 8
	SideLeft            Channel = 1 << 9
	SideRight           Channel = 1 << 10
	TopCenter           Channel = 1 << 11
	TopFrontLeft        Channel = 1 << 12
	TopFrontCenter      Channel = 1 << 13
	TopFrontRight       Channel = 1 << 14
	TopBackLeft         Channel = 1 << 15
	TopBackCenter       Channel = 1 << 16
	TopBackRight        Channel = 1 << 17
	StereoLeft          Channel = 1 << 29 // Left channel of a matrix-encoded downmix
	StereoRight         Channel = 1 << 30
	WideLeft            Channel = 1 << 31
	WideRight           Channel = 1 << 32
	SurroundDirectLeft  Channel = 1 << 33
	SurroundDirectRight Channel = 1 << 34
	LowFrequency2       Channel = 1 << 35
)

var channelNames = map[Channel]string{
	FrontLeft:           "FL",
	FrontRight:          "FR",
	FrontCenter:         "FC",
	LowFrequency:        "LFE",
	BackLeft:            "BL",
	BackRight:           "BR",
	FrontLeftOfCenter:   "FLC",
	FrontRightOfCenter:  "FRC",
	BackCenter:          "BC",
	SideLeft:            "SL",
	SideRight:           "SR",
	TopCenter:           "TC",
	TopFrontLeft:        "TFL",
	TopFrontCenter:      "TFC",
	TopFrontRight:       "TFR",
	TopBackLeft:         "TBL",
	TopBackCenter:       "TBC",
	TopBackRight:        "TBR",
	StereoLeft:          "DL",
	StereoRight:         "DR",
	WideLeft:            "WL",
	WideRight:           "WR",
	SurroundDirectLeft:  "SDL",
	SurroundDirectRight: "SDR",
	LowFrequency2:       "LFE2",
}

// String returns the short speaker name ("FL", "LFE", ...).
func (c Channel) String() string {
	if name, ok := channelNames[c]; ok {
		return name
	}
	return fmt.Sprintf("Channel(%#x)", uint64(c))
}

// Layout is a set of speaker positions.
type Layout uint64

// Named layouts.
const (
	LayoutMono          = Layout(FrontCenter)
	LayoutStereo        = Layout(FrontLeft | FrontRight)
	Layout2Point1       = LayoutStereo | Layout(LowFrequency)
	Layout2_1           = LayoutStereo | Layout(BackCenter)
	LayoutSurround      = LayoutStereo | Layout(FrontCenter)
	Layout3Point1       = LayoutSurround | Layout(LowFrequency)
	Layout4Point0       = LayoutSurround | Layout(BackCenter)
	Layout4Point1       = Layout4Point0 | Layout(LowFrequency)
	Layout2_2           = LayoutStereo | Layout(SideLeft|SideRight)
	LayoutQuad          = LayoutStereo | Layout(BackLeft|BackRight)
	Layout5Point0       = LayoutSurround | Layout(SideLeft|SideRight)
	Layout5Point1       = Layout5Point0 | Layout(LowFrequency)
	Layout5Point0Back   = LayoutSurround | Layout(BackLeft|BackRight)
	Layout5Point1Back   = Layout5Point0Back | Layout(LowFrequency)
	Layout6Point0       = Layout5Point0 | Layout(BackCenter)
	Layout6Point1       = Layout5Point1 | Layout(BackCenter)
	Layout7Point0       = Layout5Point0 | Layout(BackLeft|BackRight)
	Layout7Point1       = Layout5Point1 | Layout(BackLeft|BackRight)
	Layout7Point1Wide   = Layout5Point1 | Layout(FrontLeftOfCenter|FrontRightOfCenter)
	LayoutOctagonal     = Layout5Point0 | Layout(BackLeft|BackCenter|BackRight)
	LayoutStereoDownmix = Layout(StereoLeft | StereoRight)
)

var layoutNames = []struct {
	name   string
	layout Layout
}{
	{"mono", LayoutMono},
	{"stereo", LayoutStereo},
	{"2.1", Layout2Point1},
	{"3.0", LayoutSurround},
	{"3.0(back)", Layout2_1},
	{"3.1", Layout3Point1},
	{"4.0", Layout4Point0},
	{"4.1", Layout4Point1},
	{"quad", LayoutQuad},
	{"quad(side)", Layout2_2},
	{"5.0", Layout5Point0},
	{"5.1", Layout5Point1},
	{"5.0(back)", Layout5Point0Back},
	{"5.1(back)", Layout5Point1Back},
	{"6.0", Layout6Point0},
	{"6.1", Layout6Point1},
	{"7.0", Layout7Point0},
	{"7.1", Layout7Point1},
	{"7.1(wide)", Layout7Point1Wide},
	{"octagonal", LayoutOctagonal},
	{"downmix", LayoutStereoDownmix},
}

// defaultLayouts maps a channel count to its conventional layout.
var defaultLayouts = map[int]Layout{
	1: LayoutMono,
	2: LayoutStereo,
	3: LayoutSurround,
	4: LayoutQuad,
	5: Layout5Point0,
	6: Layout5Point1,
	7: Layout6Point1,
	8: Layout7Point1,
}

// DefaultLayout returns the conventional layout for a channel count, or 0
// when there is none.
func DefaultLayout(channels int) Layout {
	return defaultLayouts[channels]
}

// Channels returns the number of speaker positions in l.
func (l Layout) Channels() int {
	return bits.OnesCount64(uint64(l))
}

// Has reports whether every position of c is present in l.
func (l Layout) Has(c Channel) bool {
	return uint64(l)&uint64(c) == uint64(c)
}

// Index returns the position of channel c within l, or -1 when l lacks it.
func (l Layout) Index(c Channel) int {
	if !l.Has(c) || bits.OnesCount64(uint64(c)) != 1 {
		return -1
	}
	return bits.OnesCount64(uint64(l) & (uint64(c) - 1))
}

// ChannelList returns the positions of l in channel order.
func (l Layout) ChannelList() []Channel {
	list := make([]Channel, 0, l.Channels())
	for v := uint64(l); v != 0; v &= v - 1 {
		list = append(list, Channel(v&-v))
	}
	return list
}

// String returns the layout name, or the "+"-joined speaker names for
// layouts without one.
func (l Layout) String() string {
	for _, n := range layoutNames {
		if n.layout == l {
			return n.name
		}
	}
	if l == 0 {
		return "none"
	}
	names := make([]string, 0, l.Channels())
	for _, c := range l.ChannelList() {
		names = append(names, c.String())
	}
	return strings.Join(names, "+")
}

// ParseLayout accepts a layout name ("5.1"), "+"-joined speaker names
// ("FL+FR+LFE"), a channel count ("6c" or "6") or a hexadecimal mask
// ("0x3f").
func ParseLayout(s string) (Layout, error) {
	s = strings.TrimSpace(s)
	lower := strings.ToLower(s)
	for _, n := range layoutNames {
		if n.name == lower {
			return n.layout, nil
		}
	}

	if strings.HasPrefix(lower, "0x") {
		v, err := strconv.ParseUint(lower[2:], 16, 64)
		if err != nil || v == 0 {
			return 0, fmt.Errorf("%w: invalid layout mask %q", buffer.ErrInvalidArgument, s)
		}
		return Layout(v), nil
	}

	if n, err := strconv.Atoi(strings.TrimSuffix(lower, "c")); err == nil {
		if l := DefaultLayout(n); l != 0 {
			return l, nil
		}
		return 0, fmt.Errorf("%w: no default layout for %d channels", buffer.ErrInvalidArgument, n)
	}

	var l Layout
	for _, part := range strings.Split(s, "+") {
		c, ok := channelByName(strings.ToUpper(strings.TrimSpace(part)))
		if !ok {
			return 0, fmt.Errorf("%w: unknown layout or channel %q", buffer.ErrInvalidArgument, part)
		}
		l |= Layout(c)
	}
	return l, nil
}

func channelByName(name string) (Channel, bool) {
	for c, n := range channelNames {
		if n == name {
			return c, true
		}
	}
	return 0, false
}

// MarshalText implements encoding.TextMarshaler.
func (l Layout) MarshalText() ([]byte, error) {
	return []byte(l.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (l *Layout) UnmarshalText(text []byte) error {
	v, err := ParseLayout(string(text))
	if err != nil {
		return err
	}
	*l = v
	return nil
}
