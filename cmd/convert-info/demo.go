package main

import (
	"fmt"
	"strings"
	"time"

	converter "github.com/tphakala/go-audio-converter"
)

func runDemo() {
	fmt.Println("Audio Converter Demo")
	fmt.Println(strings.Repeat("=", separatorWidth))

	fmt.Println("\n1. Rate conversions:")
	for _, rc := range []struct{ in, out int }{
		{converter.RateCD, converter.RateDAT},
		{converter.RateDAT, converter.RateCD},
		{converter.RateDAT, converter.RateHiRes96},
		{converter.RateVoIP, converter.RateTelephony},
	} {
		cfg := converter.DefaultConfig()
		cfg.InFormat, cfg.OutFormat = converter.FormatFLTP, converter.FormatFLTP
		cfg.InRate, cfg.OutRate = rc.in, rc.out
		describe(fmt.Sprintf("%d -> %d Hz", rc.in, rc.out), &cfg)
	}

	fmt.Println("\n2. Channel mixing:")
	for _, lc := range []struct{ in, out converter.Layout }{
		{converter.LayoutMono, converter.LayoutStereo},
		{converter.LayoutStereo, converter.LayoutMono},
		{converter.Layout5Point1, converter.LayoutStereo},
		{converter.Layout7Point1, converter.Layout5Point1},
	} {
		cfg := converter.DefaultConfig()
		cfg.InLayout, cfg.OutLayout = lc.in, lc.out
		describe(fmt.Sprintf("%s -> %s", lc.in, lc.out), &cfg)
	}

	fmt.Println("\n3. Dither methods (s32 -> s16):")
	for _, m := range []converter.DitherMethod{
		converter.DitherRectangular,
		converter.DitherTriangular,
		converter.DitherTriangularHighpass,
		converter.DitherTriangularNS,
	} {
		cfg := converter.DefaultConfig()
		cfg.InFormat, cfg.OutFormat = converter.FormatS32, converter.FormatS16
		cfg.InRate, cfg.OutRate = converter.RateCD, converter.RateCD
		cfg.DitherMethod = m
		describe(m.String(), &cfg)
	}

	fmt.Println("\n4. Performance (5.1 s32 -> stereo s16, 48 -> 44.1 kHz):")
	cfg := converter.DefaultConfig()
	cfg.InLayout, cfg.OutLayout = converter.Layout5Point1, converter.LayoutStereo
	cfg.InFormat, cfg.OutFormat = converter.FormatS32, converter.FormatS16
	cfg.InRate, cfg.OutRate = converter.RateDAT, converter.RateCD
	cfg.DitherMethod = converter.DitherTriangularHighpass
	benchmark(&cfg)
}

func describe(label string, cfg *converter.Config) {
	c := converter.NewContext(*cfg)
	if err := c.Open(); err != nil {
		fmt.Printf("  %-24s error: %v\n", label, err)
		return
	}
	defer c.Close()

	info, err := c.Info()
	if err != nil {
		fmt.Printf("  %-24s error: %v\n", label, err)
		return
	}
	fmt.Printf("  %-24s %s\n", label, info.Plan)
	if info.FilterLength > 0 {
		fmt.Printf("  %-24s %d taps x %d phases, latency %d\n", "", info.FilterLength, info.Phases, info.Latency)
	}
}

func benchmark(cfg *converter.Config) {
	c := converter.NewContext(*cfg)
	if err := c.Open(); err != nil {
		fmt.Printf("  error: %v\n", err)
		return
	}
	defer c.Close()

	in := [][]byte{make([]byte, demoSamples*cfg.InChannels()*cfg.InFormat.BytesPerSample())}
	size, err := c.OutSamples(demoSamples)
	if err != nil {
		fmt.Printf("  error: %v\n", err)
		return
	}
	out := [][]byte{make([]byte, size*cfg.OutChannels()*cfg.OutFormat.BytesPerSample())}

	start := time.Now()
	for range demoIterations {
		if _, err := c.Convert(out, size, in, demoSamples); err != nil {
			fmt.Printf("  error: %v\n", err)
			return
		}
	}
	elapsed := time.Since(start)

	perSecond := float64(demoSamples*demoIterations) / elapsed.Seconds()
	fmt.Printf("  %d samples in %v\n", demoSamples*demoIterations, elapsed)
	fmt.Printf("  %.1f Msamples/sec (%.0fx realtime)\n", perSecond/1e6, perSecond/float64(cfg.InRate))
}
