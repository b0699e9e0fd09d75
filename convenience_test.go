package converter

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/floats"

	"github.com/tphakala/go-audio-converter/internal/buffer"
	"github.com/tphakala/go-audio-converter/internal/testutil"
)

const (
	// lengthTolerance allows for the filter tail at either end.
	lengthTolerance = 64
	// rmsTolerance bounds the relative level change of an in-band sine.
	rmsTolerance = 0.02
)

func rms(s []float64) float64 {
	return math.Sqrt(floats.Dot(s, s) / float64(len(s)))
}

// =============================================================================
// Constructors
// =============================================================================

func TestNewDownmixToStereo(t *testing.T) {
	c, err := NewDownmixToStereo(Layout5Point1, FormatFLTP, RateDAT)
	require.NoError(t, err)
	defer c.Close()

	assert.Equal(t, 6, c.Config().InChannels())
	assert.Equal(t, 2, c.Config().OutChannels())
	info, err := c.Info()
	require.NoError(t, err)
	assert.Equal(t, "in_copy(fltp, 6ch) -> downmix(fltp, 2ch)", info.Plan)
}

func TestNewFormatConverter(t *testing.T) {
	c, err := NewFormatConverter(LayoutStereo, FormatS16, FormatFLTP)
	require.NoError(t, err)
	defer c.Close()

	info, err := c.Info()
	require.NoError(t, err)
	assert.Equal(t, []string{"out_convert(fltp, 2ch)"}, info.Stages)
	assert.Empty(t, info.ResampleKernel)
}

func TestRateConverters(t *testing.T) {
	tests := []struct {
		name    string
		open    func() (*Context, error)
		inRate  int
		outRate int
	}{
		{"cd_to_dat", func() (*Context, error) { return NewCDtoDAT(LayoutStereo, FormatS16) }, RateCD, RateDAT},
		{"dat_to_cd", func() (*Context, error) { return NewDATtoCD(LayoutMono, FormatFLTP) }, RateDAT, RateCD},
		{"voip", func() (*Context, error) {
			return NewRateConverter(LayoutMono, FormatS16, RateVoIP, RateTelephony)
		}, RateVoIP, RateTelephony},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, err := tt.open()
			require.NoError(t, err)
			defer c.Close()

			cfg := c.Config()
			assert.Equal(t, tt.inRate, cfg.InRate)
			assert.Equal(t, tt.outRate, cfg.OutRate)

			info, err := c.Info()
			require.NoError(t, err)
			assert.NotEmpty(t, info.ResampleKernel)
		})
	}
}

func TestConvenience_InvalidArguments(t *testing.T) {
	_, err := NewRateConverter(LayoutStereo, FormatS16, 0, RateCD)
	require.ErrorIs(t, err, ErrInvalidArgument)

	_, err = NewFormatConverter(LayoutStereo, FormatS16, FormatNone)
	require.ErrorIs(t, err, ErrInvalidArgument)

	_, err = NewDownmixToStereo(0, FormatS16, RateDAT)
	require.ErrorIs(t, err, ErrInvalidArgument)
}

// =============================================================================
// One-shot resampling
// =============================================================================

func TestResampleMono(t *testing.T) {
	const n = RateCD / 10
	in := testutil.Sine(n, 440, RateCD, 0.5)

	out, err := ResampleMono(in, RateCD, RateDAT)
	require.NoError(t, err)

	want := n * RateDAT / RateCD
	testutil.AssertInRange(t, float64(len(out)), float64(want-lengthTolerance), float64(want+lengthTolerance))
	testutil.AssertNoNaNOrInf(t, out)

	// skip the edges, where the mirrored padding shapes the signal
	mid := out[lengthTolerance : len(out)-lengthTolerance]
	ref := in[lengthTolerance : len(in)-lengthTolerance]
	testutil.AssertRelativeError(t, rms(ref), rms(mid), rmsTolerance)
}

func TestResampleMonoFloat32(t *testing.T) {
	const n = RateDAT / 10
	in := toFloat32(testutil.Sine(n, 1000, RateDAT, 0.5))

	out, err := ResampleMonoFloat32(in, RateDAT, RateTelephony)
	require.NoError(t, err)

	want := n * RateTelephony / RateDAT
	testutil.AssertInRange(t, float64(len(out)), float64(want-lengthTolerance), float64(want+lengthTolerance))
	testutil.AssertAllInRange(t, toFloat64(out), -1, 1)
}

func TestResampleStereo(t *testing.T) {
	const n = 4800
	left := testutil.Sine(n, 440, RateDAT, 0.5)
	right := make([]float64, n)

	l, r, err := ResampleStereo(left, right, RateDAT, RateHiRes96)
	require.NoError(t, err)
	require.Len(t, r, len(l))
	testutil.AssertInRange(t, float64(len(l)), 2*n-lengthTolerance, 2*n+lengthTolerance)

	testutil.AssertAllZero(t, r, "silent channel stays silent")
	assert.Positive(t, rms(l))

	_, _, err = ResampleStereo(left, right[:10], RateDAT, RateCD)
	require.ErrorIs(t, err, ErrInvalidArgument)
}

func TestResample_EmptyInput(t *testing.T) {
	out, err := ResampleMono([]float64{}, RateCD, RateDAT)
	require.NoError(t, err)
	assert.Empty(t, out)
	assert.NotNil(t, out)

	_, err = ResampleMono([]float64{1}, 0, RateDAT)
	require.ErrorIs(t, err, ErrInvalidArgument)
}

func TestResample_SameRate(t *testing.T) {
	in := randomFloats(500)
	out, err := ResampleMono(in, RateCD, RateCD)
	require.NoError(t, err)
	assert.Equal(t, in, out)
}

// =============================================================================
// Benchmarks
// =============================================================================

func BenchmarkResampleMono(b *testing.B) {
	in := testutil.Sine(RateCD, 440, RateCD, 0.5)
	b.ReportAllocs()
	b.SetBytes(int64(len(buffer.Bytes(in))))
	for b.Loop() {
		if _, err := ResampleMono(in, RateCD, RateDAT); err != nil {
			b.Fatal(err)
		}
	}
}
