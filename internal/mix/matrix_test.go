package mix

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/floats"

	"github.com/tphakala/go-audio-converter/internal/buffer"
)

const matrixTolerance = 1e-12

func noNormalize() MatrixOptions {
	opts := DefaultMatrixOptions()
	opts.Normalize = false
	return opts
}

func TestBuildMatrix_StereoToMono(t *testing.T) {
	m, err := BuildMatrix(LayoutStereo, LayoutMono, noNormalize())
	require.NoError(t, err)
	require.Len(t, m, 1)
	assert.InDeltaSlice(t, []float64{invSqrt2, invSqrt2}, m[0], matrixTolerance)

	// the row sums to sqrt(2), so normalization halves each coefficient
	m, err = BuildMatrix(LayoutStereo, LayoutMono, DefaultMatrixOptions())
	require.NoError(t, err)
	assert.InDeltaSlice(t, []float64{0.5, 0.5}, m[0], matrixTolerance)
}

func TestBuildMatrix_MonoToStereo(t *testing.T) {
	m, err := BuildMatrix(LayoutMono, LayoutStereo, DefaultMatrixOptions())
	require.NoError(t, err)
	assert.Equal(t, [][]float64{{invSqrt2}, {invSqrt2}}, m)
}

func TestBuildMatrix_Identity(t *testing.T) {
	m, err := BuildMatrix(Layout5Point1, Layout5Point1, DefaultMatrixOptions())
	require.NoError(t, err)
	for o, row := range m {
		for i, c := range row {
			want := 0.0
			if i == o {
				want = 1
			}
			assert.Equal(t, want, c, "m[%d][%d]", o, i)
		}
	}
}

func TestBuildMatrix_FiveOneToStereo(t *testing.T) {
	opts := noNormalize()
	opts.LFEMixLevel = 1
	m, err := BuildMatrix(Layout5Point1, LayoutStereo, opts)
	require.NoError(t, err)

	// columns: FL FR FC LFE SL SR
	assert.InDeltaSlice(t, []float64{1, 0, invSqrt2, invSqrt2, invSqrt2, 0}, m[0], matrixTolerance)
	assert.InDeltaSlice(t, []float64{0, 1, invSqrt2, invSqrt2, 0, invSqrt2}, m[1], matrixTolerance)
}

func TestBuildMatrix_CenterSelfLevel(t *testing.T) {
	m, err := BuildMatrix(LayoutSurround, LayoutMono, noNormalize())
	require.NoError(t, err)
	// FL and FR fold in at -3 dB; center keeps clev * sqrt(2)
	assert.InDeltaSlice(t, []float64{invSqrt2, invSqrt2, DefaultCenterMixLevel * math.Sqrt2}, m[0], matrixTolerance)
}

func TestBuildMatrix_Encodings(t *testing.T) {
	const slev = 0.5
	tests := []struct {
		name     string
		in       Layout
		encoding Encoding
		left     []float64
		right    []float64
	}{
		{
			name: "quad_none", in: LayoutQuad, encoding: EncodingNone,
			left:  []float64{1, 0, slev, 0},
			right: []float64{0, 1, 0, slev},
		},
		{
			name: "quad_dolby", in: LayoutQuad, encoding: EncodingDolby,
			left:  []float64{1, 0, -slev * invSqrt2, -slev * invSqrt2},
			right: []float64{0, 1, slev * invSqrt2, slev * invSqrt2},
		},
		{
			name: "quad_dplii", in: LayoutQuad, encoding: EncodingDPLII,
			left:  []float64{1, 0, -slev * sqrt3_2, -slev * invSqrt2},
			right: []float64{0, 1, slev * invSqrt2, slev * sqrt3_2},
		},
		{
			name: "back_center_dolby", in: Layout2_1, encoding: EncodingDolby,
			left:  []float64{1, 0, -slev},
			right: []float64{0, 1, slev},
		},
		{
			name: "back_center_none", in: Layout2_1, encoding: EncodingNone,
			left:  []float64{1, 0, slev * invSqrt2},
			right: []float64{0, 1, slev * invSqrt2},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			opts := noNormalize()
			opts.SurroundMixLevel = slev
			opts.Encoding = tt.encoding

			m, err := BuildMatrix(tt.in, LayoutStereo, opts)
			require.NoError(t, err)
			assert.InDeltaSlice(t, tt.left, m[0], matrixTolerance)
			assert.InDeltaSlice(t, tt.right, m[1], matrixTolerance)
		})
	}
}

func TestBuildMatrix_BackToSide(t *testing.T) {
	m, err := BuildMatrix(Layout5Point0Back, Layout5Point0, noNormalize())
	require.NoError(t, err)
	// out: FL FR FC SL SR, in: FL FR FC BL BR
	assert.InDelta(t, 1.0, m[3][3], matrixTolerance)
	assert.InDelta(t, 1.0, m[4][4], matrixTolerance)

	m, err = BuildMatrix(Layout7Point0, Layout5Point0, noNormalize())
	require.NoError(t, err)
	// side inputs already present, so backs mix in at -3 dB
	assert.InDelta(t, invSqrt2, m[3][3], matrixTolerance)
	assert.InDelta(t, 1.0, m[3][5], matrixTolerance)
}

func TestBuildMatrix_StereoDownmixOutput(t *testing.T) {
	a, err := BuildMatrix(Layout5Point1, LayoutStereoDownmix, DefaultMatrixOptions())
	require.NoError(t, err)
	b, err := BuildMatrix(Layout5Point1, LayoutStereo, DefaultMatrixOptions())
	require.NoError(t, err)
	assert.Equal(t, b, a)
}

func TestBuildMatrix_RowNormalization(t *testing.T) {
	for _, in := range layoutNames {
		for _, out := range layoutNames {
			for _, enc := range []Encoding{EncodingNone, EncodingDolby, EncodingDPLII} {
				opts := DefaultMatrixOptions()
				opts.Encoding = enc
				opts.LFEMixLevel = 1
				m, err := BuildMatrix(in.layout, out.layout, opts)
				if err != nil {
					require.ErrorIs(t, err, buffer.ErrUnsupported, "%s -> %s", in.name, out.name)
					continue
				}
				for o, row := range m {
					var sum float64
					for _, c := range row {
						sum += math.Abs(c)
					}
					assert.LessOrEqual(t, sum, 1+matrixTolerance, "%s -> %s row %d", in.name, out.name, o)
				}
			}
		}
	}
}

func TestBuildMatrix_NormalizedRowsSumToOne(t *testing.T) {
	m, err := BuildMatrix(Layout5Point1, LayoutStereo, noNormalize())
	require.NoError(t, err)
	assert.InDelta(t, 1+2*invSqrt2, floats.Norm(m[0], 1), matrixTolerance)

	m, err = BuildMatrix(Layout5Point1, LayoutStereo, DefaultMatrixOptions())
	require.NoError(t, err)
	for o, row := range m {
		assert.InDelta(t, 1.0, floats.Norm(row, 1), matrixTolerance, "row %d", o)
	}
}

func TestBuildMatrix_Errors(t *testing.T) {
	tests := []struct {
		name    string
		in, out Layout
		want    error
	}{
		{"empty_input", 0, LayoutStereo, buffer.ErrInvalidArgument},
		{"empty_output", LayoutStereo, 0, buffer.ErrInvalidArgument},
		{"half_pair", Layout(FrontLeft | FrontCenter), LayoutMono, buffer.ErrUnsupported},
		{"no_front", Layout(BackLeft | BackRight), LayoutStereo, buffer.ErrUnsupported},
		{"no_route_for_top", LayoutStereo | Layout(TopCenter), LayoutStereo, buffer.ErrUnsupported},
		{"frontless_output", LayoutMono, Layout(BackCenter), buffer.ErrUnsupported},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := BuildMatrix(tt.in, tt.out, DefaultMatrixOptions())
			require.ErrorIs(t, err, tt.want)
		})
	}
}

func TestParseEncoding(t *testing.T) {
	for _, e := range []Encoding{EncodingNone, EncodingDolby, EncodingDPLII} {
		got, err := ParseEncoding(e.String())
		require.NoError(t, err)
		assert.Equal(t, e, got)
	}
	_, err := ParseEncoding("dts")
	require.ErrorIs(t, err, buffer.ErrInvalidArgument)
}
