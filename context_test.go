package converter

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tphakala/go-audio-converter/internal/buffer"
	"github.com/tphakala/go-audio-converter/internal/testutil"
)

// =============================================================================
// Lifecycle
// =============================================================================

func TestContext_ClosedRejectsStreaming(t *testing.T) {
	c := NewContext(DefaultConfig())
	require.False(t, c.IsOpen())

	_, err := c.Convert(nil, 0, nil, 0)
	require.ErrorIs(t, err, ErrInvalidState)
	_, err = c.Read(nil, 1)
	require.ErrorIs(t, err, ErrInvalidState)
	_, err = c.OutSamples(1)
	require.ErrorIs(t, err, ErrInvalidState)
	_, err = c.Info()
	require.ErrorIs(t, err, ErrInvalidState)
	require.ErrorIs(t, c.SetCompensation(1, 100), ErrInvalidState)

	assert.Zero(t, c.Available())
	assert.Zero(t, c.Delay())
}

func TestContext_OpenCloseReopen(t *testing.T) {
	c := NewContext(DefaultConfig())
	require.NoError(t, c.Open())
	require.True(t, c.IsOpen())

	require.ErrorIs(t, c.Open(), ErrInvalidState)
	require.ErrorIs(t, c.SetConfig(DefaultConfig()), ErrInvalidState)

	c.Close()
	c.Close()
	require.False(t, c.IsOpen())

	cfg := DefaultConfig()
	cfg.OutRate = RateCD
	require.NoError(t, c.SetConfig(cfg))
	assert.Equal(t, RateCD, c.Config().OutRate)

	require.NoError(t, c.Open())
	defer c.Close()
	info, err := c.Info()
	require.NoError(t, err)
	assert.NotEmpty(t, info.ResampleKernel)
}

func TestContext_CloseDropsQueuedSamples(t *testing.T) {
	c := NewContext(DefaultConfig())
	require.NoError(t, c.Open())

	_, err := c.Convert(nil, 0, silence(FormatS16, 2, 100), 100)
	require.NoError(t, err)
	require.Equal(t, 100, c.Available())

	c.Close()
	require.NoError(t, c.Open())
	defer c.Close()
	assert.Zero(t, c.Available())
}

func TestContext_Free(t *testing.T) {
	c := NewContext(DefaultConfig())
	require.NoError(t, c.Open())
	c.Free()

	require.False(t, c.IsOpen())
	assert.Equal(t, Config{}, c.Config())
	require.ErrorIs(t, c.Open(), ErrInvalidState)
	require.ErrorIs(t, c.SetConfig(DefaultConfig()), ErrInvalidState)
	require.ErrorIs(t, c.SetMatrix([][]float64{{1, 0}, {0, 1}}), ErrInvalidState)
	require.ErrorIs(t, c.SetChannelMapping([]int{0, 1}), ErrInvalidState)
	_, err := c.Matrix()
	require.ErrorIs(t, err, ErrInvalidState)
}

func TestContext_OpenInvalidConfig(t *testing.T) {
	tests := []struct {
		name   string
		modify func(c *Config)
	}{
		{"zero_value", func(c *Config) { *c = Config{} }},
		{"no_input_layout", func(c *Config) { c.InLayout = 0 }},
		{"no_output_format", func(c *Config) { c.OutFormat = FormatNone }},
		{"packed_internal_format", func(c *Config) { c.InternalFormat = FormatFLT }},
		{"zero_in_rate", func(c *Config) { c.InRate = 0 }},
		{"negative_out_rate", func(c *Config) { c.OutRate = -48000 }},
		{"coeff_type", func(c *Config) { c.MixCoeffType = CoeffQ15 + 1 }},
		{"nan_center_level", func(c *Config) { c.CenterMixLevel = math.NaN() }},
		{"huge_surround_level", func(c *Config) { c.SurroundMixLevel = maxMixLevel + 1 }},
		{"matrix_encoding", func(c *Config) { c.MatrixEncoding = MatrixEncodingDPLII + 1 }},
		{"filter_size", func(c *Config) { c.FilterSize = MaxFilterSize + 1 }},
		{"phase_shift", func(c *Config) { c.PhaseShift = MaxPhaseShift + 1 }},
		{"zero_cutoff", func(c *Config) { c.Cutoff = 0 }},
		{"cutoff_above_one", func(c *Config) { c.Cutoff = 1.5 }},
		{"filter_type", func(c *Config) { c.FilterType = FilterKaiser + 1 }},
		{"kaiser_beta_low", func(c *Config) { c.KaiserBeta = MinKaiserBeta - 1 }},
		{"kaiser_beta_high", func(c *Config) { c.KaiserBeta = MaxKaiserBeta + 1 }},
		{"dither_method", func(c *Config) { c.DitherMethod = DitherTriangularNS + 1 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := NewContext(testConfig(tt.modify))
			require.ErrorIs(t, c.Open(), ErrInvalidArgument)
			assert.False(t, c.IsOpen())
		})
	}
}

func TestContext_OpenUnsupported(t *testing.T) {
	tests := []struct {
		name   string
		modify func(c *Config)
	}{
		{"unroutable_top_center", func(c *Config) {
			layout, err := ParseLayout("FL+FR+TC")
			require.NoError(t, err)
			c.InLayout = layout
		}},
		{"noise_shaping_rate", func(c *Config) {
			c.InFormat, c.OutFormat = FormatFLT, FormatS16
			c.InRate, c.OutRate = RateHiRes96, RateHiRes96
			c.DitherMethod = DitherTriangularNS
		}},
		{"q8_wide_internal", func(c *Config) {
			c.InLayout, c.MixCoeffType = Layout5Point1, CoeffQ8
			c.InternalFormat = FormatFLTP
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := NewContext(testConfig(tt.modify))
			require.ErrorIs(t, c.Open(), ErrUnsupported)
			assert.False(t, c.IsOpen())
		})
	}
}

// =============================================================================
// Mixing matrix
// =============================================================================

func TestContext_DefaultStereoToMonoMatrix(t *testing.T) {
	tests := []struct {
		name      string
		normalize bool
		want      float64
	}{
		{"normalized", true, 0.5},
		{"unnormalized", false, math.Sqrt2 / 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := openTest(t, testConfig(func(c *Config) {
				c.OutLayout = LayoutMono
				c.NormalizeMixLevel = tt.normalize
			}))
			m, err := c.Matrix()
			require.NoError(t, err)
			require.Len(t, m, 1)
			assert.InDeltaSlice(t, []float64{tt.want, tt.want}, m[0], identityTolerance)
		})
	}
}

func TestContext_MatrixWithoutMixing(t *testing.T) {
	c := openTest(t, DefaultConfig())

	_, err := c.Matrix()
	require.ErrorIs(t, err, ErrInvalidArgument)
	require.ErrorIs(t, c.SetMatrix([][]float64{{1, 0}, {0, 1}}), ErrInvalidState)
}

func TestContext_SetMatrixBeforeOpen(t *testing.T) {
	const n = 32
	c := NewContext(testConfig(func(c *Config) {
		c.InFormat, c.OutFormat = FormatFLTP, FormatFLTP
	}))

	require.ErrorIs(t, c.SetMatrix([][]float64{{0, 1}}), ErrInvalidArgument)
	require.ErrorIs(t, c.SetMatrix([][]float64{{0, 1}, {1}}), ErrInvalidArgument)

	swap := [][]float64{{0, 1}, {1, 0}}
	require.NoError(t, c.SetMatrix(swap))
	swap[0][0] = 5 // stored as a copy

	m, err := c.Matrix()
	require.NoError(t, err)
	assert.Equal(t, [][]float64{{0, 1}, {1, 0}}, m)

	require.NoError(t, c.Open())
	defer c.Close()
	info, err := c.Info()
	require.NoError(t, err)
	assert.NotEmpty(t, info.MixKernel, "a custom matrix mixes identical layouts")

	left := make([]float32, n)
	right := make([]float32, n)
	for i := range left {
		left[i], right[i] = 0.25, -0.5
	}
	out := convertAll(t, c, planes(left, right), n, n)
	assert.InDeltaSlice(t, toFloat64(right), toFloat64(buffer.View[float32](out[0])), identityTolerance)
	assert.InDeltaSlice(t, toFloat64(left), toFloat64(buffer.View[float32](out[1])), identityTolerance)

	// the matrix was consumed by Open
	c.Close()
	_, err = c.Matrix()
	require.ErrorIs(t, err, ErrInvalidArgument)
}

func TestContext_SetMatrixWhileOpen(t *testing.T) {
	const n = 16
	c := openTest(t, testConfig(func(c *Config) {
		c.OutLayout = LayoutMono
		c.InFormat, c.OutFormat = FormatFLTP, FormatFLTP
	}))

	require.ErrorIs(t, c.SetMatrix([][]float64{{1, 0}, {0, 1}}), ErrInvalidArgument)
	require.ErrorIs(t, c.SetMatrix([][]float64{{math.Inf(1), 0}}), ErrInvalidArgument)
	require.NoError(t, c.SetMatrix([][]float64{{1, 0}}))

	m, err := c.Matrix()
	require.NoError(t, err)
	assert.Equal(t, [][]float64{{1, 0}}, m)

	left := make([]float32, n)
	right := make([]float32, n)
	for i := range left {
		left[i], right[i] = 0.75, 0.25
	}
	out := convertAll(t, c, planes(left, right), n, n)
	assert.InDeltaSlice(t, toFloat64(left), toFloat64(buffer.View[float32](out[0])), identityTolerance)
}

// =============================================================================
// Channel mapping
// =============================================================================

func TestContext_ChannelMapping(t *testing.T) {
	const n = 64
	left := make([]int16, n)
	right := make([]int16, n)
	for i := range left {
		left[i] = int16(i + 1)
		right[i] = int16(-i - 1)
	}
	zero := make([]int16, n)

	interleave := func(a, b []int16) []int16 {
		out := make([]int16, 0, 2*len(a))
		for i := range a {
			out = append(out, a[i], b[i])
		}
		return out
	}

	tests := []struct {
		name    string
		format  SampleFormat
		mapping []int
		remap   string
		want    [][]int16
	}{
		{"swap_planar", FormatS16P, []int{1, 0}, "out_copy", [][]int16{right, left}},
		{"duplicate_planar", FormatS16P, []int{0, 0}, "out_copy", [][]int16{left, left}},
		{"silence_planar", FormatS16P, []int{0, -1}, "out_copy", [][]int16{left, zero}},
		{"swap_packed", FormatS16, []int{1, 0}, "in_convert", [][]int16{interleave(right, left)}},
		{"silence_packed", FormatS16, []int{-1, 1}, "in_convert", [][]int16{interleave(zero, right)}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := NewContext(testConfig(func(c *Config) {
				c.InFormat, c.OutFormat = tt.format, tt.format
			}))
			require.NoError(t, c.SetChannelMapping(tt.mapping))
			require.NoError(t, c.Open())
			defer c.Close()

			info, err := c.Info()
			require.NoError(t, err)
			assert.Equal(t, tt.remap, info.RemapPoint)

			in := planes(left, right)
			if !tt.format.IsPlanar() {
				in = planes(interleave(left, right))
			}
			out := convertAll(t, c, in, n, 24)
			require.Len(t, out, len(tt.want))
			for p, want := range tt.want {
				assert.Equal(t, want, buffer.View[int16](out[p]), "plane %d", p)
			}
		})
	}
}

func TestContext_ChannelMappingThroughFIFO(t *testing.T) {
	const n = 100
	left := make([]float32, n)
	right := make([]float32, n)
	for i := range left {
		left[i], right[i] = float32(i), float32(-i)
	}

	c := NewContext(testConfig(func(c *Config) {
		c.InFormat, c.OutFormat = FormatFLTP, FormatFLTP
	}))
	require.NoError(t, c.SetChannelMapping([]int{1, 0}))
	require.NoError(t, c.Open())
	defer c.Close()

	outL := make([]float32, n)
	outR := make([]float32, n)
	got, err := c.Convert(planes(outL, outR), 10, planes(left, right), n)
	require.NoError(t, err)
	require.Equal(t, 10, got)
	require.Equal(t, n-10, c.Available())

	got, err = c.Read(planes(outL[10:], outR[10:]), n-10)
	require.NoError(t, err)
	require.Equal(t, n-10, got)

	assert.Equal(t, right, outL)
	assert.Equal(t, left, outR)
}

func TestContext_ChannelMappingWithUpmix(t *testing.T) {
	const n = 32
	left := make([]int16, n)
	right := make([]int16, n)
	for i := range left {
		left[i], right[i] = int16(100+i), int16(-100-i)
	}
	zero := make([]int16, n)

	tests := []struct {
		name   string
		outCap int
	}{
		{"output_fits", n},
		{"output_short", n - 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := NewContext(testConfig(func(c *Config) {
				c.OutLayout = Layout2Point1
				c.InFormat, c.OutFormat = FormatS16P, FormatS16P
			}))
			require.NoError(t, c.SetChannelMapping([]int{1, 0}))
			require.NoError(t, c.Open())
			defer c.Close()

			info, err := c.Info()
			require.NoError(t, err)
			require.Equal(t, "in_copy", info.RemapPoint)

			out := [][]int16{make([]int16, n), make([]int16, n), make([]int16, n)}
			got, err := c.Convert(planes(out...), tt.outCap, planes(left, right), n)
			require.NoError(t, err)
			require.Equal(t, tt.outCap, got)

			rest := n - got
			require.Equal(t, rest, c.Available())
			if rest > 0 {
				read, err := c.Read(planes(out[0][got:], out[1][got:], out[2][got:]), rest)
				require.NoError(t, err)
				require.Equal(t, rest, read)
			}

			assert.Equal(t, right, out[0])
			assert.Equal(t, left, out[1])
			assert.Equal(t, zero, out[2])
		})
	}
}

// TestContext_ChannelMappingMatchesRemappedInput checks that a mapping gives
// the same output as an unmapped context fed the remapped channels.
func TestContext_ChannelMappingMatchesRemappedInput(t *testing.T) {
	const n = 480
	channels := [][]int16{make([]int16, n), make([]int16, n)}
	for i := range n {
		channels[0][i] = int16(1000 * math.Sin(float64(i)/7))
		channels[1][i] = int16(2000 * math.Cos(float64(i)/5))
	}

	input := func(format SampleFormat, chs [][]int16) [][]byte {
		switch format {
		case FormatFLTP:
			out := make([][]float32, len(chs))
			for ch, s := range chs {
				out[ch] = toFloat32(toFloat64(s))
			}
			return planes(out...)
		case FormatS16:
			packed := make([]int16, 0, n*len(chs))
			for i := range n {
				for _, s := range chs {
					packed = append(packed, s[i])
				}
			}
			return planes(packed)
		default:
			return planes(chs...)
		}
	}

	tests := []struct {
		name    string
		modify  func(c *Config)
		mapping []int
		remap   string
	}{
		{"upmix", func(c *Config) {
			c.OutLayout = Layout2Point1
			c.InFormat, c.OutFormat = FormatS16P, FormatS16P
		}, []int{1, 0}, "in_copy"},
		{"downmix", func(c *Config) {
			c.OutLayout = LayoutMono
			c.InFormat, c.OutFormat = FormatFLTP, FormatFLTP
		}, []int{1, -1}, "in_copy"},
		{"resample", func(c *Config) {
			c.InFormat, c.OutFormat = FormatFLTP, FormatFLTP
			c.InRate, c.OutRate = RateDAT, RateCD
		}, []int{1, 0}, "in_copy"},
		{"resample_packed", func(c *Config) {
			c.InFormat, c.OutFormat = FormatS16, FormatS16
			c.InRate, c.OutRate = RateDAT, RateCD
		}, []int{0, 0}, "in_convert"},
		{"upmix_resample", func(c *Config) {
			c.OutLayout = Layout2Point1
			c.InFormat, c.OutFormat = FormatS16P, FormatFLTP
			c.InRate, c.OutRate = RateCD, RateDAT
		}, []int{-1, 0}, "in_convert"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := testConfig(tt.modify)

			mapped := NewContext(cfg)
			require.NoError(t, mapped.SetChannelMapping(tt.mapping))
			require.NoError(t, mapped.Open())
			defer mapped.Close()

			info, err := mapped.Info()
			require.NoError(t, err)
			require.Equal(t, tt.remap, info.RemapPoint)

			remapped := make([][]int16, len(tt.mapping))
			for o, in := range tt.mapping {
				remapped[o] = make([]int16, n)
				if in >= 0 {
					copy(remapped[o], channels[in])
				}
			}
			reference := openTest(t, cfg)

			want := convertAll(t, reference, input(cfg.InFormat, remapped), n, 96)
			got := convertAll(t, mapped, input(cfg.InFormat, channels), n, 96)
			require.NotEmpty(t, got[0])
			assert.Equal(t, want, got)
		})
	}
}

func TestContext_ChannelMappingErrors(t *testing.T) {
	c := NewContext(DefaultConfig())
	require.ErrorIs(t, c.SetChannelMapping([]int{0, 2}), ErrInvalidArgument)
	require.ErrorIs(t, c.SetChannelMapping([]int{0}), ErrInvalidArgument)

	require.NoError(t, c.SetChannelMapping([]int{1, 0}))
	require.NoError(t, c.Open())
	require.ErrorIs(t, c.SetChannelMapping([]int{0, 1}), ErrInvalidState)

	// Close drops the mapping
	c.Close()
	require.NoError(t, c.Open())
	defer c.Close()
	info, err := c.Info()
	require.NoError(t, err)
	assert.Equal(t, "none", info.RemapPoint)
}

// =============================================================================
// Compensation
// =============================================================================

func TestContext_SetCompensationErrors(t *testing.T) {
	c := openTest(t, DefaultConfig())

	require.ErrorIs(t, c.SetCompensation(0, -1), ErrInvalidArgument)
	require.ErrorIs(t, c.SetCompensation(5, 0), ErrInvalidArgument)

	require.NoError(t, c.SetCompensation(0, 0))
	info, err := c.Info()
	require.NoError(t, err)
	assert.Empty(t, info.ResampleKernel, "zero compensation leaves the passthrough alone")
}

func TestContext_SetCompensationReopens(t *testing.T) {
	const n = 200
	in := toFloat32(randomFloats(n))

	c := NewContext(testConfig(func(c *Config) {
		c.InFormat, c.OutFormat = FormatFLTP, FormatFLTP
	}))
	require.NoError(t, c.SetChannelMapping([]int{1, 0}))
	require.NoError(t, c.Open())
	defer c.Close()

	zero := make([]float32, n)
	_, err := c.Convert(nil, 0, planes(in, zero), n)
	require.NoError(t, err)
	require.Equal(t, n, c.Available())

	require.NoError(t, c.SetCompensation(10, 1000))
	require.True(t, c.IsOpen())
	assert.True(t, c.Config().ForceResampling)

	info, err := c.Info()
	require.NoError(t, err)
	assert.NotEmpty(t, info.ResampleKernel)
	assert.NotEqual(t, "none", info.RemapPoint, "channel mapping survives the reopen")

	// queued samples survive the reopen untouched
	require.Equal(t, n, c.Available())
	outL := make([]float32, n)
	outR := make([]float32, n)
	got, err := c.Read(planes(outL, outR), n)
	require.NoError(t, err)
	require.Equal(t, n, got)
	assert.Equal(t, zero, outL)
	assert.Equal(t, in, outR)
}

func TestContext_CompensationAddsOutput(t *testing.T) {
	const (
		n     = 48000
		delta = 48
	)
	cfg := testConfig(func(c *Config) {
		c.InLayout, c.OutLayout = LayoutMono, LayoutMono
		c.InFormat, c.OutFormat = FormatFLTP, FormatFLTP
		c.ForceResampling = true
	})
	in := silence(FormatFLTP, 1, n)

	plain := openTest(t, cfg)
	base := len(convertAll(t, plain, in, n, 4800)[0]) / 4

	compensated := openTest(t, cfg)
	require.NoError(t, compensated.SetCompensation(delta, n/2))
	extra := len(convertAll(t, compensated, in, n, 4800)[0])/4 - base

	testutil.AssertInRange(t, float64(extra), delta-2, delta+2)
}

// =============================================================================
// Sizing and queries
// =============================================================================

func TestContext_OutSamples(t *testing.T) {
	passthrough := openTest(t, DefaultConfig())
	got, err := passthrough.OutSamples(1000)
	require.NoError(t, err)
	assert.Equal(t, 1000, got)

	_, err = passthrough.OutSamples(-1)
	require.ErrorIs(t, err, ErrInvalidArgument)

	_, err = passthrough.Convert(nil, 0, silence(FormatS16, 2, 10), 10)
	require.NoError(t, err)
	got, err = passthrough.OutSamples(1000)
	require.NoError(t, err)
	assert.Equal(t, 1010, got, "queued samples count")

	down := openTest(t, testConfig(func(c *Config) { c.OutRate = RateCD }))
	got, err = down.OutSamples(48000)
	require.NoError(t, err)
	assert.GreaterOrEqual(t, got, RateCD)

	_, err = down.OutSamples(math.MaxInt32)
	require.NoError(t, err)

	up := openTest(t, testConfig(func(c *Config) { c.InRate, c.OutRate = RateTelephony, RateHiRes192 }))
	_, err = up.OutSamples(math.MaxInt32)
	require.ErrorIs(t, err, ErrInvalidArgument)
}

func TestContext_ReadDiscards(t *testing.T) {
	c := openTest(t, DefaultConfig())
	_, err := c.Convert(nil, 0, silence(FormatS16, 2, 50), 50)
	require.NoError(t, err)

	_, err = c.Read(nil, -1)
	require.ErrorIs(t, err, ErrInvalidArgument)

	got, err := c.Read(nil, 20)
	require.NoError(t, err)
	assert.Equal(t, 20, got)
	assert.Equal(t, 30, c.Available())

	got, err = c.Read(nil, 100)
	require.NoError(t, err)
	assert.Equal(t, 30, got)
	assert.Zero(t, c.Available())
}

func TestContext_Delay(t *testing.T) {
	const n = 1000
	c := openTest(t, testConfig(func(c *Config) {
		c.InLayout, c.OutLayout = LayoutMono, LayoutMono
		c.InFormat, c.OutFormat = FormatFLTP, FormatFLTP
		c.OutRate = RateCD
	}))
	require.Zero(t, c.Delay())

	// output limited to 10 samples leaves most of the input buffered
	out := make([]float32, 10)
	got, err := c.Convert(planes(out), len(out), silence(FormatFLTP, 1, n), n)
	require.NoError(t, err)
	require.Equal(t, len(out), got)
	before := c.Delay()
	assert.Greater(t, before, n/2)

	_, err = c.Convert(nil, 0, nil, 0)
	require.NoError(t, err)
	assert.Less(t, c.Delay(), before)
	assert.Positive(t, c.Available())
}

func TestContext_Info(t *testing.T) {
	c := openTest(t, testConfig(func(c *Config) {
		c.InLayout, c.InFormat = Layout5Point1, FormatS32
		c.OutFormat, c.OutRate = FormatS16, RateCD
		c.DitherMethod = DitherTriangularHighpass
	}))

	info, err := c.Info()
	require.NoError(t, err)
	assert.Equal(t, FormatFLTP, info.InternalFormat)
	assert.Equal(t, []string{
		"in_convert(fltp, 6ch)",
		"downmix(fltp, 2ch)",
		"resample(fltp, 2ch)",
		"out_convert(s16, 2ch, dither)",
	}, info.Stages)
	assert.Equal(t, "in_convert(fltp, 6ch) -> downmix(fltp, 2ch) -> resample(fltp, 2ch) -> out_convert(s16, 2ch, dither)", info.Plan)
	assert.Equal(t, "none", info.RemapPoint)
	assert.NotEmpty(t, info.InputKernel)
	assert.Equal(t, "dither_triangular_hp", info.OutputKernel)
	assert.NotEmpty(t, info.MixKernel)
	assert.NotEmpty(t, info.ResampleKernel)
	assert.Greater(t, info.FilterLength, DefaultFilterSize, "downsampling widens the filter")
	assert.Equal(t, 1<<DefaultPhaseShift, info.Phases)
	assert.InDelta(t, KaiserAttenuation(DefaultKaiserBeta), info.StopbandAttenuation, identityTolerance)
	assert.NotEmpty(t, info.SIMDType)
}

func TestContext_InfoNonKaiserFilter(t *testing.T) {
	c := openTest(t, testConfig(func(c *Config) {
		c.OutRate = RateCD
		c.FilterType = FilterBlackmanNuttall
	}))
	info, err := c.Info()
	require.NoError(t, err)
	assert.NotEmpty(t, info.ResampleKernel)
	assert.Zero(t, info.StopbandAttenuation)
}
