package main

import (
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/go-audio/audio"
	"github.com/go-audio/wav"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	converter "github.com/tphakala/go-audio-converter"
	"github.com/tphakala/go-audio-converter/internal/buffer"
)

const (
	testRate     = 44100
	testFrames   = 4410
	testToneFreq = 440.0
	// frames the resampler tail may add or drop
	lengthTolerance = 64
)

// writeTestWAV writes a sine tone on every channel with go-audio's encoder.
func writeTestWAV(t *testing.T, path string, rate, bits, channels, frames int) {
	t.Helper()
	f, err := os.Create(path)
	require.NoError(t, err)

	enc := wav.NewEncoder(f, rate, bits, channels, 1)
	amplitude := float64(int64(1)<<(bits-1)-1) / 2
	data := make([]int, frames*channels)
	for i := range frames {
		v := int(amplitude * math.Sin(2*math.Pi*testToneFreq*float64(i)/float64(rate)))
		for ch := range channels {
			data[i*channels+ch] = v
		}
	}
	buf := &audio.IntBuffer{
		Data:           data,
		Format:         &audio.Format{SampleRate: rate, NumChannels: channels},
		SourceBitDepth: bits,
	}
	require.NoError(t, enc.Write(buf))
	require.NoError(t, enc.Close())
	require.NoError(t, f.Close())
}

func readTestWAV(t *testing.T, path string) (*wav.Decoder, *audio.IntBuffer) {
	t.Helper()
	f, err := os.Open(path)
	require.NoError(t, err)
	t.Cleanup(func() { _ = f.Close() })

	dec := wav.NewDecoder(f)
	require.True(t, dec.IsValidFile())
	buf, err := dec.FullPCMBuffer()
	require.NoError(t, err)
	return dec, buf
}

// =============================================================================
// Input
// =============================================================================

func TestOpenWAVInput_FileNotFound(t *testing.T) {
	_, err := openWAVInput("/nonexistent/file.wav", false)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to open input file")
}

func TestOpenWAVInput_InvalidWAV(t *testing.T) {
	invalidFile := filepath.Join(t.TempDir(), "invalid.wav")
	require.NoError(t, os.WriteFile(invalidFile, []byte("not a wav file"), 0o644))

	_, err := openWAVInput(invalidFile, false)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid WAV file")
}

func TestOpenWAVInput_Format(t *testing.T) {
	path := filepath.Join(t.TempDir(), "in.wav")
	writeTestWAV(t, path, testRate, 24, 2, testFrames)

	input, err := openWAVInput(path, false)
	require.NoError(t, err)
	defer func() { _ = input.Close() }()

	assert.Equal(t, testRate, input.rate)
	assert.Equal(t, 2, input.channels)
	assert.Equal(t, 24, input.bitDepth)
	assert.InDelta(t, testFrames, input.totalSamples, 1)
}

// =============================================================================
// Configuration
// =============================================================================

func TestFormatForBits(t *testing.T) {
	tests := []struct {
		bits    int
		want    converter.SampleFormat
		wantErr bool
	}{
		{16, converter.FormatS16, false},
		{24, converter.FormatS32, false},
		{32, converter.FormatS32, false},
		{8, converter.FormatNone, true},
	}

	for _, tt := range tests {
		got, err := formatForBits(tt.bits)
		if tt.wantErr {
			require.Error(t, err, "bits %d", tt.bits)
			continue
		}
		require.NoError(t, err)
		assert.Equal(t, tt.want, got, "bits %d", tt.bits)
	}
}

func TestBitsForFormat(t *testing.T) {
	got, err := bitsForFormat(converter.FormatS16P, 24)
	require.NoError(t, err)
	assert.Equal(t, 16, got)

	got, err = bitsForFormat(converter.FormatS32, 24)
	require.NoError(t, err)
	assert.Equal(t, 24, got)

	got, err = bitsForFormat(converter.FormatS32, 16)
	require.NoError(t, err)
	assert.Equal(t, 32, got)

	_, err = bitsForFormat(converter.FormatFLT, 16)
	require.Error(t, err)
}

func TestBuildConfig(t *testing.T) {
	input := &wavInputInfo{rate: testRate, channels: 6, bitDepth: 24}

	tests := []struct {
		name     string
		opts     options
		wantRate int
		wantOut  converter.Layout
		wantBits int
	}{
		{"defaults_keep_input", options{}, testRate, converter.Layout5Point1, 24},
		{"rate", options{rateKHz: 48}, 48000, converter.Layout5Point1, 24},
		{"fractional_rate", options{rateKHz: 22.05}, 22050, converter.Layout5Point1, 24},
		{"downmix_to_16", options{layout: "stereo", bits: 16, dither: "triangular_hp"}, testRate, converter.LayoutStereo, 16},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg, bits, err := buildConfig(input, &tt.opts)
			require.NoError(t, err)

			assert.Equal(t, converter.Layout5Point1, cfg.InLayout)
			assert.Equal(t, converter.FormatS32, cfg.InFormat)
			assert.Equal(t, testRate, cfg.InRate)
			assert.Equal(t, tt.wantRate, cfg.OutRate)
			assert.Equal(t, tt.wantOut, cfg.OutLayout)
			assert.Equal(t, tt.wantBits, bits)
			if tt.opts.dither != "" {
				assert.Equal(t, converter.DitherTriangularHighpass, cfg.DitherMethod)
			}
		})
	}
}

func TestBuildConfig_Errors(t *testing.T) {
	tests := []struct {
		name  string
		input wavInputInfo
		opts  options
	}{
		{"bit_depth", wavInputInfo{rate: testRate, channels: 2, bitDepth: 8}, options{}},
		{"channels", wavInputInfo{rate: testRate, channels: 0, bitDepth: 16}, options{}},
		{"layout", wavInputInfo{rate: testRate, channels: 2, bitDepth: 16}, options{layout: "9.2"}},
		{"out_bits", wavInputInfo{rate: testRate, channels: 2, bitDepth: 16}, options{bits: 12}},
		{"dither", wavInputInfo{rate: testRate, channels: 2, bitDepth: 16}, options{dither: "blue"}},
		{"missing_config", wavInputInfo{rate: testRate, channels: 2, bitDepth: 16}, options{configPath: "/nonexistent.yaml"}},
		{"attenuation_too_low", wavInputInfo{rate: testRate, channels: 2, bitDepth: 16}, options{attenuation: 15}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := buildConfig(&tt.input, &tt.opts)
			require.Error(t, err)
		})
	}
}

func TestBuildConfig_File(t *testing.T) {
	path := filepath.Join(t.TempDir(), "options.yaml")
	doc := `
in_rate: 8000
out_layout: mono
out_format: s16
out_rate: 16000
filter_size: 24
cutoff: 0.9
dither_method: triangular
`
	require.NoError(t, os.WriteFile(path, []byte(doc), 0o644))
	input := &wavInputInfo{rate: testRate, channels: 2, bitDepth: 32}

	cfg, bits, err := buildConfig(input, &options{configPath: path})
	require.NoError(t, err)
	assert.Equal(t, testRate, cfg.InRate, "the input header wins over the file")
	assert.Equal(t, 16000, cfg.OutRate)
	assert.Equal(t, converter.LayoutMono, cfg.OutLayout)
	assert.Equal(t, 16, bits)
	assert.Equal(t, 24, cfg.FilterSize)
	assert.InDelta(t, 0.9, cfg.Cutoff, 1e-12)
	assert.Equal(t, converter.DitherTriangular, cfg.DitherMethod)

	// flags win over the file
	cfg, _, err = buildConfig(input, &options{configPath: path, rateKHz: 32})
	require.NoError(t, err)
	assert.Equal(t, 32000, cfg.OutRate)
}

func TestBuildConfig_Attenuation(t *testing.T) {
	input := &wavInputInfo{rate: testRate, channels: 2, bitDepth: 16}

	cfg, _, err := buildConfig(input, &options{rateKHz: 48})
	require.NoError(t, err)
	assert.InDelta(t, converter.DefaultKaiserBeta, cfg.KaiserBeta, 1e-12, "no flag keeps the default beta")

	path := filepath.Join(t.TempDir(), "options.yaml")
	require.NoError(t, os.WriteFile(path, []byte("filter_type: cubic\n"), 0o644))

	cfg, _, err = buildConfig(input, &options{rateKHz: 48, attenuation: 120, configPath: path})
	require.NoError(t, err)
	assert.Equal(t, converter.FilterKaiser, cfg.FilterType, "the flag selects the Kaiser window")
	assert.InDelta(t, converter.KaiserBetaFor(120), cfg.KaiserBeta, 1e-12)
	assert.InDelta(t, 120, converter.KaiserAttenuation(cfg.KaiserBeta), 1e-9)
}

func TestLoadConfig_UnknownField(t *testing.T) {
	path := filepath.Join(t.TempDir(), "options.yaml")
	require.NoError(t, os.WriteFile(path, []byte("out_rat: 48000\n"), 0o644))

	cfg := converter.DefaultConfig()
	require.Error(t, loadConfig(path, &cfg))
}

func TestLoadConfig_Empty(t *testing.T) {
	path := filepath.Join(t.TempDir(), "options.yaml")
	require.NoError(t, os.WriteFile(path, nil, 0o644))

	cfg := converter.DefaultConfig()
	require.NoError(t, loadConfig(path, &cfg))
	assert.Equal(t, converter.DefaultConfig(), cfg)
}

// =============================================================================
// Buffers
// =============================================================================

func TestPackInput(t *testing.T) {
	input := &wavInputInfo{channels: 1, bitDepth: 24, format: &audio.Format{NumChannels: 1}}
	b := newConvertBuffers(input, converter.DefaultConfig(), 16)

	got := buffer.View[int32](b.packInput([]int{1, -1, 0x7fffff}))
	assert.Equal(t, []int32{1 << 8, -1 << 8, 0x7fffff << 8}, got)

	input.bitDepth = 16
	b = newConvertBuffers(input, converter.DefaultConfig(), 16)
	assert.Equal(t, []int16{-32768, 7}, buffer.View[int16](b.packInput([]int{-32768, 7})))
}

func TestOutputPlane_NeverEmpty(t *testing.T) {
	input := &wavInputInfo{channels: 2, bitDepth: 16, format: &audio.Format{NumChannels: 2}}
	b := newConvertBuffers(input, converter.DefaultConfig(), 16)

	assert.Len(t, b.outputPlane(0), 2*2)
	assert.GreaterOrEqual(t, len(b.outputPlane(100)), 100*2*2)
}

// =============================================================================
// Output
// =============================================================================

func TestCreateWAVOutput_InvalidDirectory(t *testing.T) {
	_, err := createWAVOutput("/nonexistent/dir/output.wav", 48000, 16, 2)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to create output file")
}

func TestFastWAVWriter_ReadBack(t *testing.T) {
	tests := []struct {
		bits int
		in   []int32
		want []int
	}{
		{24, []int32{1 << 8, -1 << 8, 0x7fffff << 8}, []int{1, -1, 0x7fffff}},
		{32, []int32{math.MinInt32, 0, math.MaxInt32}, []int{math.MinInt32, 0, math.MaxInt32}},
	}

	for _, tt := range tests {
		path := filepath.Join(t.TempDir(), "out.wav")
		w, err := createWAVOutput(path, 48000, tt.bits, 1)
		require.NoError(t, err)
		require.NoError(t, w.writer.WriteInt32(tt.in))
		require.NoError(t, w.Close())

		dec, buf := readTestWAV(t, path)
		assert.Equal(t, tt.bits, int(dec.BitDepth))
		assert.Equal(t, 48000, buf.Format.SampleRate)
		assert.Equal(t, tt.want, buf.Data)
	}
}

// =============================================================================
// End to end
// =============================================================================

func TestConvertWAV(t *testing.T) {
	tests := []struct {
		name         string
		bits         int
		channels     int
		opts         options
		wantRate     int
		wantChannels int
		wantBits     int
	}{
		{"resample", 16, 2, options{rateKHz: 48}, 48000, 2, 16},
		{"downmix", 24, 6, options{layout: "stereo"}, testRate, 2, 24},
		{"reduce_depth", 32, 1, options{bits: 16, dither: "triangular_ns"}, testRate, 1, 16},
		{"everything", 24, 2, options{rateKHz: 16, layout: "mono", bits: 16}, 16000, 1, 16},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := t.TempDir()
			in := filepath.Join(dir, "in.wav")
			out := filepath.Join(dir, "out.wav")
			writeTestWAV(t, in, testRate, tt.bits, tt.channels, testFrames)

			stats, err := convertWAV(in, out, &tt.opts, false)
			require.NoError(t, err)
			assert.Equal(t, int64(testFrames), stats.inputSamples)

			dec, buf := readTestWAV(t, out)
			assert.Equal(t, tt.wantRate, buf.Format.SampleRate)
			assert.Equal(t, tt.wantChannels, buf.Format.NumChannels)
			assert.Equal(t, tt.wantBits, int(dec.BitDepth))

			frames := len(buf.Data) / tt.wantChannels
			assert.Equal(t, stats.outputSamples, int64(frames))
			want := testFrames * tt.wantRate / testRate
			assert.InDelta(t, want, frames, lengthTolerance)

			peak := 0
			for _, v := range buf.Data {
				peak = max(peak, v, -v)
			}
			assert.Positive(t, peak, "output carries the tone")
		})
	}
}

func TestConvertWAV_NothingToDo(t *testing.T) {
	dir := t.TempDir()
	in := filepath.Join(dir, "in.wav")
	writeTestWAV(t, in, testRate, 16, 2, 100)

	_, err := convertWAV(in, filepath.Join(dir, "out.wav"), &options{}, false)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "nothing to convert")
}
