// Command convert-info shows how a conversion is planned: the stages it
// runs, the kernels they use and the resampling filter geometry. It then
// pushes a test tone through the conversion.
//
// Usage:
//
//	convert-info -in-layout 5.1 -out-layout stereo -in-format s32 -out-format s16 -dither triangular
//	convert-info -config options.yaml
//	convert-info -demo
package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"math"
	"os"

	"gopkg.in/yaml.v3"

	converter "github.com/tphakala/go-audio-converter"
	"github.com/tphakala/go-audio-converter/internal/buffer"
)

func main() {
	var (
		inLayout   = flag.String("in-layout", defaultLayout, "Input channel layout")
		outLayout  = flag.String("out-layout", defaultLayout, "Output channel layout")
		inFormat   = flag.String("in-format", defaultFormat, "Input sample format (u8, s16, s32, flt, dbl, with p suffix for planar)")
		outFormat  = flag.String("out-format", defaultFormat, "Output sample format")
		inRate     = flag.Int("in-rate", defaultInputRate, "Input sample rate in Hz")
		outRate    = flag.Int("out-rate", defaultOutputRate, "Output sample rate in Hz")
		dither     = flag.String("dither", "none", "Dither method")
		coeff      = flag.String("coeff", "flt", "Mixing coefficient type: flt, q8, q15")
		configPath = flag.String("config", "", "YAML file with converter options (overrides the other flags)")
		demo       = flag.Bool("demo", false, "Run a demonstration")
	)
	flag.Parse()

	if *demo {
		runDemo()
		return
	}

	cfg := converter.DefaultConfig()
	if err := applyFlags(&cfg, *inLayout, *outLayout, *inFormat, *outFormat, *dither, *coeff); err != nil {
		log.Fatalf("Invalid option: %v", err)
	}
	cfg.InRate, cfg.OutRate = *inRate, *outRate

	if *configPath != "" {
		if err := loadConfig(*configPath, &cfg); err != nil {
			log.Fatalf("Failed to load config: %v", err)
		}
	}

	c := converter.NewContext(cfg)
	if err := c.Open(); err != nil {
		log.Fatalf("Failed to open converter: %v", err)
	}
	defer c.Close()

	info, err := c.Info()
	if err != nil {
		log.Fatalf("Failed to describe converter: %v", err)
	}
	printInfo(&cfg, &info)

	fmt.Println("\nProcessing test signal...")
	produced, err := processTestSignal(c, &cfg)
	if err != nil {
		log.Fatalf("Processing failed: %v", err)
	}
	fmt.Printf("Input samples: %d\n", testSignalSamples)
	fmt.Printf("Output samples: %d\n", produced)
	fmt.Printf("Expected output: %d\n", testSignalSamples*cfg.OutRate/cfg.InRate)
}

func applyFlags(cfg *converter.Config, inLayout, outLayout, inFormat, outFormat, dither, coeff string) error {
	for _, f := range []struct {
		value  string
		target interface{ UnmarshalText([]byte) error }
	}{
		{inLayout, &cfg.InLayout},
		{outLayout, &cfg.OutLayout},
		{inFormat, &cfg.InFormat},
		{outFormat, &cfg.OutFormat},
		{dither, &cfg.DitherMethod},
		{coeff, &cfg.MixCoeffType},
	} {
		if err := f.target.UnmarshalText([]byte(f.value)); err != nil {
			return err
		}
	}
	return nil
}

func loadConfig(path string, cfg *converter.Config) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer func() { _ = f.Close() }()

	dec := yaml.NewDecoder(f)
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return err
	}
	return nil
}

func printInfo(cfg *converter.Config, info *converter.Info) {
	fmt.Printf("Converter opened:\n")
	fmt.Printf("  %s %v %d Hz -> %s %v %d Hz\n",
		cfg.InLayout, cfg.InFormat, cfg.InRate, cfg.OutLayout, cfg.OutFormat, cfg.OutRate)
	fmt.Printf("  Plan: %s\n", info.Plan)
	fmt.Printf("  Internal format: %v\n", info.InternalFormat)
	fmt.Printf("  Channel remap: %s\n", info.RemapPoint)
	if info.InputKernel != "" {
		fmt.Printf("  Input kernel: %s\n", info.InputKernel)
	}
	if info.MixKernel != "" {
		fmt.Printf("  Mix kernel: %s\n", info.MixKernel)
	}
	if info.ResampleKernel != "" {
		fmt.Printf("  Resample kernel: %s\n", info.ResampleKernel)
		fmt.Printf("  Filter length: %d taps\n", info.FilterLength)
		fmt.Printf("  Phases: %d\n", info.Phases)
		if info.StopbandAttenuation > 0 {
			fmt.Printf("  Stopband attenuation: ~%.0f dB\n", info.StopbandAttenuation)
		}
	}
	if info.OutputKernel != "" {
		fmt.Printf("  Output kernel: %s\n", info.OutputKernel)
	}
	fmt.Printf("  SIMD: %s\n", info.SIMDType)
}

// processTestSignal converts a sine tone on every input channel, flushes,
// and returns the number of output samples.
func processTestSignal(c *converter.Context, cfg *converter.Config) (int, error) {
	in, err := testSignal(cfg.InFormat, cfg.InChannels(), cfg.InRate)
	if err != nil {
		return 0, err
	}
	if _, err := c.Convert(nil, 0, in, testSignalSamples); err != nil {
		return 0, err
	}
	if _, err := c.Convert(nil, 0, nil, 0); err != nil {
		return 0, err
	}
	return c.Read(nil, c.Available())
}

// testSignal generates a 1 kHz tone in the planes of format, normalized to
// the format's full scale.
func testSignal(format converter.SampleFormat, channels, rate int) ([][]byte, error) {
	planar := format.IsPlanarFor(channels)
	planes, perPlane := 1, channels
	if planar {
		planes, perPlane = channels, 1
	}

	// the tone is rendered as float64 and narrowed by a throwaway converter
	src := make([]float64, testSignalSamples*perPlane)
	omega := 2 * math.Pi * testSignalFrequency / float64(rate)
	for i := range testSignalSamples {
		for ch := range perPlane {
			src[i*perPlane+ch] = testSignalAmplitude * math.Sin(omega*float64(i))
		}
	}

	cfg := converter.DefaultConfig()
	cfg.InLayout = converter.DefaultLayout(perPlane)
	cfg.OutLayout = cfg.InLayout
	cfg.InFormat, cfg.OutFormat = converter.FormatDBL, format.Packed()
	if cfg.InLayout == 0 {
		return nil, fmt.Errorf("no default layout for %d channels", perPlane)
	}
	narrow := converter.NewContext(cfg)
	if err := narrow.Open(); err != nil {
		return nil, err
	}
	defer narrow.Close()

	size := format.BytesPerSample() * testSignalSamples * perPlane
	out := make([][]byte, planes)
	for p := range out {
		out[p] = make([]byte, size)
		if _, err := narrow.Convert([][]byte{out[p]}, testSignalSamples, [][]byte{buffer.Bytes(src)}, testSignalSamples); err != nil {
			return nil, err
		}
	}
	return out, nil
}
