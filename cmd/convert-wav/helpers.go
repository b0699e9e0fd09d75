package main

import (
	"errors"
	"fmt"
	"io"
	"log"
	"math"
	"os"

	"github.com/go-audio/audio"
	"github.com/go-audio/wav"
	"gopkg.in/yaml.v3"

	converter "github.com/tphakala/go-audio-converter"
	"github.com/tphakala/go-audio-converter/internal/buffer"
)

// Sample format constants
const (
	bitsPerSample16 = 16
	bitsPerSample24 = 24
	bitsPerSample32 = 32

	// 24-bit samples travel in the top bits of s32
	shift24 = 8
)

// options holds the command-line settings.
type options struct {
	rateKHz     float64
	layout      string
	bits        int
	dither      string
	attenuation float64
	configPath  string
}

// wavInputInfo holds validated input file information.
type wavInputInfo struct {
	file         *os.File
	decoder      *wav.Decoder
	rate         int
	channels     int
	bitDepth     int
	totalSamples int64
	format       *audio.Format
}

// openWAVInput opens and validates a WAV file, returning format information.
func openWAVInput(path string, verbose bool) (*wavInputInfo, error) {
	inputFile, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open input file: %w", err)
	}

	decoder := wav.NewDecoder(inputFile)
	if !decoder.IsValidFile() {
		_ = inputFile.Close()
		return nil, fmt.Errorf("invalid WAV file: %s", path)
	}

	format := decoder.Format()
	bitDepth := int(decoder.BitDepth)

	if verbose {
		log.Printf("Input format: %d Hz, %d channels, %d-bit", format.SampleRate, format.NumChannels, bitDepth)
	}

	// Get total duration for progress reporting
	duration, err := decoder.Duration()
	if err != nil {
		duration = 0
	}

	return &wavInputInfo{
		file:         inputFile,
		decoder:      decoder,
		rate:         format.SampleRate,
		channels:     format.NumChannels,
		bitDepth:     bitDepth,
		totalSamples: int64(duration.Seconds() * float64(format.SampleRate)),
		format:       format,
	}, nil
}

// Close closes the input file.
func (w *wavInputInfo) Close() error {
	return w.file.Close()
}

// formatForBits returns the packed sample format carrying PCM of the given
// bit depth.
func formatForBits(bits int) (converter.SampleFormat, error) {
	switch bits {
	case bitsPerSample16:
		return converter.FormatS16, nil
	case bitsPerSample24, bitsPerSample32:
		return converter.FormatS32, nil
	}
	return converter.FormatNone, fmt.Errorf("unsupported bit depth %d (want 16, 24 or 32)", bits)
}

// bitsForFormat returns the WAV bit depth written for format. s32 output
// keeps a 24-bit input at 24 bits.
func bitsForFormat(format converter.SampleFormat, inBits int) (int, error) {
	switch format.Packed() {
	case converter.FormatS16:
		return bitsPerSample16, nil
	case converter.FormatS32:
		if inBits == bitsPerSample24 {
			return bitsPerSample24, nil
		}
		return bitsPerSample32, nil
	}
	return 0, fmt.Errorf("unsupported output format %v for PCM WAV", format)
}

// loadConfig decodes a YAML options file over cfg. Fields the file leaves
// out keep their current values.
func loadConfig(path string, cfg *converter.Config) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("failed to open config file: %w", err)
	}
	defer func() { _ = f.Close() }()

	dec := yaml.NewDecoder(f)
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return fmt.Errorf("failed to parse config file %s: %w", path, err)
	}
	return nil
}

// buildConfig derives the converter configuration from the input file, the
// optional config file and the flags, in increasing precedence. It returns
// the configuration and the output bit depth.
func buildConfig(input *wavInputInfo, opts *options) (converter.Config, int, error) {
	inFormat, err := formatForBits(input.bitDepth)
	if err != nil {
		return converter.Config{}, 0, err
	}
	inLayout := converter.DefaultLayout(input.channels)
	if inLayout == 0 {
		return converter.Config{}, 0, fmt.Errorf("unsupported channel count %d", input.channels)
	}

	cfg := converter.DefaultConfig()
	cfg.InLayout, cfg.OutLayout = inLayout, inLayout
	cfg.InFormat, cfg.OutFormat = inFormat, inFormat
	cfg.InRate, cfg.OutRate = input.rate, input.rate

	if opts.configPath != "" {
		if err := loadConfig(opts.configPath, &cfg); err != nil {
			return converter.Config{}, 0, err
		}
	}

	// the input file is authoritative for its own properties
	if cfg.InLayout.Channels() != input.channels {
		cfg.InLayout = inLayout
	}
	cfg.InFormat = inFormat
	cfg.InRate = input.rate

	if opts.rateKHz > 0 {
		cfg.OutRate = int(math.Round(opts.rateKHz * kHzToHz))
	}
	if opts.layout != "" {
		layout, err := converter.ParseLayout(opts.layout)
		if err != nil {
			return converter.Config{}, 0, err
		}
		cfg.OutLayout = layout
	}
	if opts.dither != "" {
		if err := cfg.DitherMethod.UnmarshalText([]byte(opts.dither)); err != nil {
			return converter.Config{}, 0, err
		}
	}

	if opts.attenuation > 0 {
		cfg.FilterType = converter.FilterKaiser
		cfg.KaiserBeta = converter.KaiserBetaFor(opts.attenuation)
	}

	outBits := opts.bits
	if outBits == 0 {
		if outBits, err = bitsForFormat(cfg.OutFormat, input.bitDepth); err != nil {
			return converter.Config{}, 0, err
		}
	}
	if cfg.OutFormat, err = formatForBits(outBits); err != nil {
		return converter.Config{}, 0, err
	}

	if err := cfg.Validate(); err != nil {
		return converter.Config{}, 0, err
	}
	return cfg, outBits, nil
}

// convertBuffers holds all preallocated buffers for conversion.
type convertBuffers struct {
	intBuffer *audio.IntBuffer

	inBits      int
	outBits     int
	outChannels int

	in16  []int16
	in32  []int32
	out16 []int16
	out32 []int32
}

// newConvertBuffers creates and preallocates the processing buffers.
func newConvertBuffers(input *wavInputInfo, cfg converter.Config, outBits int) *convertBuffers {
	b := &convertBuffers{
		intBuffer: &audio.IntBuffer{
			Data:   make([]int, bufferSize*input.channels),
			Format: input.format,
		},
		inBits:      input.bitDepth,
		outBits:     outBits,
		outChannels: cfg.OutChannels(),
	}
	if input.bitDepth == bitsPerSample16 {
		b.in16 = make([]int16, bufferSize*input.channels)
	} else {
		b.in32 = make([]int32, bufferSize*input.channels)
	}
	return b
}

// packInput converts decoded integers to the converter's packed input plane.
func (b *convertBuffers) packInput(data []int) []byte {
	if b.inBits == bitsPerSample16 {
		s := b.in16[:len(data)]
		for i, v := range data {
			s[i] = int16(v)
		}
		return buffer.Bytes(s)
	}

	s := b.in32[:len(data)]
	shift := 0
	if b.inBits == bitsPerSample24 {
		shift = shift24
	}
	for i, v := range data {
		s[i] = int32(v) << shift
	}
	return buffer.Bytes(s)
}

// outputPlane returns a packed output plane holding at least frames frames.
func (b *convertBuffers) outputPlane(frames int) []byte {
	n := max(frames, 1) * b.outChannels
	if b.outBits == bitsPerSample16 {
		if len(b.out16) < n {
			b.out16 = make([]int16, n)
		}
		return buffer.Bytes(b.out16)
	}
	if len(b.out32) < n {
		b.out32 = make([]int32, n)
	}
	return buffer.Bytes(b.out32)
}

// writeOutput writes the first frames frames of the output plane.
func (b *convertBuffers) writeOutput(w *wavOutputWriter, frames int) error {
	n := frames * b.outChannels
	if b.outBits == bitsPerSample16 {
		return w.writer.WriteInt16(b.out16[:n])
	}
	return w.writer.WriteInt32(b.out32[:n])
}

// wavOutputWriter wraps output file and fast writer.
type wavOutputWriter struct {
	file   *os.File
	writer *fastWAVWriter
}

// createWAVOutput creates output file and writer.
func createWAVOutput(path string, sampleRate, bitDepth, channels int) (*wavOutputWriter, error) {
	outputFile, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("failed to create output file: %w", err)
	}

	fastWriter, err := newFastWAVWriter(outputFile, sampleRate, bitDepth, channels)
	if err != nil {
		_ = outputFile.Close()
		return nil, fmt.Errorf("failed to create WAV writer: %w", err)
	}

	return &wavOutputWriter{
		file:   outputFile,
		writer: fastWriter,
	}, nil
}

// Close closes the output writer and file.
func (w *wavOutputWriter) Close() error {
	if err := w.writer.Close(); err != nil {
		_ = w.file.Close()
		return err
	}
	return w.file.Close()
}

// progressTracker handles progress reporting.
type progressTracker struct {
	totalSamples int64
	lastProgress int
	verbose      bool
}

func newProgressTracker(totalSamples int64, verbose bool) *progressTracker {
	return &progressTracker{
		totalSamples: totalSamples,
		verbose:      verbose,
	}
}

// reportIfNeeded reports progress if threshold crossed.
func (p *progressTracker) reportIfNeeded(currentSamples int64) {
	if !p.verbose || p.totalSamples == 0 {
		return
	}

	progress := int(float64(currentSamples) / float64(p.totalSamples) * percentScale)
	if progress >= p.lastProgress+progressInterval {
		log.Printf("Progress: %d%%", progress)
		p.lastProgress = progress
	}
}
