// Command convert-wav converts WAV audio files between sample rates, channel
// layouts and bit depths.
//
// Usage:
//
//	convert-wav -rate 48 input.wav output.wav
//	convert-wav -layout stereo -bits 16 -dither triangular_hp surround.wav stereo.wav
//	convert-wav -rate 44.1 -attenuation 120 input.wav output.wav
//	convert-wav -config options.yaml input.wav output.wav
//
// A -config file holds converter options in YAML (see converter.Config).
// Input properties always come from the WAV header; flags override the file.
package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"runtime/pprof"
	"time"

	converter "github.com/tphakala/go-audio-converter"
)

const (
	// frames per read
	bufferSize = 65536

	// CLI defaults
	minRequiredArgs = 2
	kHzToHz         = 1000
	percentScale    = 100
	// Print progress every N%
	progressInterval = 10
)

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	var opts options
	flag.Float64Var(&opts.rateKHz, "rate", 0, "Target sample rate in kHz (e.g. 16, 44.1, 48, 96); 0 keeps the input rate")
	flag.StringVar(&opts.layout, "layout", "", "Output channel layout (mono, stereo, 5.1, FL+FR+LFE, ...); empty keeps the input layout")
	flag.IntVar(&opts.bits, "bits", 0, "Output bit depth: 16, 24 or 32; 0 keeps the input depth")
	flag.StringVar(&opts.dither, "dither", "", "Dither method when reducing to 16 bits: none, rectangular, triangular, triangular_hp, triangular_ns")
	flag.Float64Var(&opts.attenuation, "attenuation", 0, "Kaiser filter stopband attenuation in dB (e.g. 100); 0 keeps the configured beta")
	flag.StringVar(&opts.configPath, "config", "", "YAML file with converter options")
	verbose := flag.Bool("v", false, "Verbose output")
	cpuprofile := flag.String("cpuprofile", "", "Write CPU profile to file (for PGO)")
	flag.Parse()

	args := flag.Args()
	if len(args) < minRequiredArgs {
		fmt.Fprintf(os.Stderr, "Usage: %s [options] input.wav output.wav\n\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "Options:\n")
		flag.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nExamples:\n")
		fmt.Fprintf(os.Stderr, "  %s -rate 48 input.wav output.wav                 # Resample to 48kHz\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "  %s -layout stereo movie.wav movie_stereo.wav      # Downmix to stereo\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "  %s -bits 16 -dither triangular_hp hires.wav cd.wav # Reduce to 16-bit\n", os.Args[0])
		return fmt.Errorf("insufficient arguments")
	}

	// Start CPU profiling if requested (for PGO)
	if *cpuprofile != "" {
		f, err := os.Create(*cpuprofile)
		if err != nil {
			return fmt.Errorf("could not create CPU profile: %w", err)
		}
		if err := pprof.StartCPUProfile(f); err != nil {
			_ = f.Close()
			return fmt.Errorf("could not start CPU profile: %w", err)
		}
		defer func() {
			pprof.StopCPUProfile()
			_ = f.Close()
		}()
	}

	inputPath := args[0]
	outputPath := args[1]

	if *verbose {
		log.Printf("Input: %s", inputPath)
		log.Printf("Output: %s", outputPath)
	}

	start := time.Now()
	stats, err := convertWAV(inputPath, outputPath, &opts, *verbose)
	if err != nil {
		return err
	}
	elapsed := time.Since(start)

	fmt.Printf("Converted %s -> %s\n", filepath.Base(inputPath), filepath.Base(outputPath))
	fmt.Printf("  %d Hz -> %d Hz\n", stats.inputRate, stats.outputRate)
	fmt.Printf("  %s %d-bit -> %s %d-bit\n", stats.inputLayout, stats.inputBits, stats.outputLayout, stats.outputBits)
	fmt.Printf("  %d samples -> %d samples\n", stats.inputSamples, stats.outputSamples)
	fmt.Printf("  Duration: %.2fs, Speed: %.1fx realtime\n",
		elapsed.Seconds(),
		float64(stats.inputSamples)/float64(stats.inputRate)/elapsed.Seconds())

	return nil
}

type convertStats struct {
	inputRate     int
	outputRate    int
	inputLayout   converter.Layout
	outputLayout  converter.Layout
	inputBits     int
	outputBits    int
	inputSamples  int64
	outputSamples int64
}

func convertWAV(inputPath, outputPath string, opts *options, verbose bool) (stats *convertStats, err error) {
	// 1. Open and validate input
	input, err := openWAVInput(inputPath, verbose)
	if err != nil {
		return nil, err
	}
	defer func() { _ = input.Close() }()

	// 2. Build and open the conversion
	cfg, outBits, err := buildConfig(input, opts)
	if err != nil {
		return nil, err
	}
	if cfg.InRate == cfg.OutRate && cfg.InLayout == cfg.OutLayout && input.bitDepth == outBits {
		return nil, fmt.Errorf("nothing to convert: input is already %d Hz %s %d-bit",
			cfg.InRate, cfg.InLayout, outBits)
	}

	conv := converter.NewContext(cfg)
	if err := conv.Open(); err != nil {
		return nil, fmt.Errorf("failed to open converter: %w", err)
	}
	defer conv.Close()

	if verbose {
		info, err := conv.Info()
		if err != nil {
			return nil, err
		}
		log.Printf("Plan: %s", info.Plan)
		log.Printf("Kernels: in=%q out=%q mix=%q resample=%q (%s)",
			info.InputKernel, info.OutputKernel, info.MixKernel, info.ResampleKernel, info.SIMDType)
		if info.ResampleKernel != "" {
			log.Printf("Filter: %d taps, %d phases, ~%.0f dB stopband", info.FilterLength, info.Phases, info.StopbandAttenuation)
		}
	}

	// 3. Create output writer
	output, err := createWAVOutput(outputPath, cfg.OutRate, outBits, cfg.OutChannels())
	if err != nil {
		return nil, err
	}
	// Close output, capturing close errors on success path (important for WAV header updates)
	defer func() {
		if closeErr := output.Close(); err == nil {
			err = closeErr
		}
	}()

	// 4. Initialize processing buffers
	buffers := newConvertBuffers(input, cfg, outBits)

	stats = &convertStats{
		inputRate:    cfg.InRate,
		outputRate:   cfg.OutRate,
		inputLayout:  cfg.InLayout,
		outputLayout: cfg.OutLayout,
		inputBits:    input.bitDepth,
		outputBits:   outBits,
	}
	progress := newProgressTracker(input.totalSamples, verbose)

	// 5. Main processing loop
	for {
		n, err := input.decoder.PCMBuffer(buffers.intBuffer)
		if err != nil && !errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("failed to read audio data: %w", err)
		}
		frames := n / input.channels
		if frames == 0 {
			break
		}
		stats.inputSamples += int64(frames)

		in := buffers.packInput(buffers.intBuffer.Data[:frames*input.channels])
		written, err := convertChunk(conv, buffers, output, in, frames)
		if err != nil {
			return nil, err
		}
		stats.outputSamples += int64(written)

		progress.reportIfNeeded(stats.inputSamples)

		buffers.intBuffer.Data = buffers.intBuffer.Data[:cap(buffers.intBuffer.Data)]
	}

	// 6. Flush the resampler tail and queued samples
	for {
		written, err := convertChunk(conv, buffers, output, nil, 0)
		if err != nil {
			return nil, fmt.Errorf("failed to flush: %w", err)
		}
		stats.outputSamples += int64(written)
		if written == 0 && conv.Available() == 0 {
			break
		}
	}

	return stats, nil
}

// convertChunk converts frames input frames (nil flushes) and writes the
// result. It returns the number of frames written.
func convertChunk(conv *converter.Context, buffers *convertBuffers, output *wavOutputWriter, in []byte, frames int) (int, error) {
	size, err := conv.OutSamples(frames)
	if err != nil {
		return 0, err
	}
	out := buffers.outputPlane(size)

	var planes [][]byte
	if in != nil {
		planes = [][]byte{in}
	}
	n, err := conv.Convert([][]byte{out}, size, planes, frames)
	if err != nil {
		return 0, fmt.Errorf("conversion failed: %w", err)
	}
	if n == 0 {
		return 0, nil
	}
	if err := buffers.writeOutput(output, n); err != nil {
		return 0, fmt.Errorf("failed to write audio data: %w", err)
	}
	return n, nil
}
