// Command analyze-filter prints the DC gain, phase usage and stopband
// attenuation of the resampling filter banks built for common rate pairs.
package main

import (
	"flag"
	"fmt"
	"log"
	"math"

	converter "github.com/tphakala/go-audio-converter"
	"github.com/tphakala/go-audio-converter/internal/filter"
)

const (
	// Display limits
	maxPhasesToShow = 5    // Maximum phases to display in detail
	testIterations  = 1000 // Number of output positions for the phase usage test
	responsePoints  = 1 << 16 // Frequency response resolution

	// Stopband edge as a multiple of the cutoff frequency
	stopbandMargin = 1.2
)

func main() {
	var (
		windowName = flag.String("window", converter.FilterKaiser.String(), "Filter window: cubic, blackman-nuttall, kaiser")
		filterSize = flag.Int("filter-size", converter.DefaultFilterSize, "Filter size budget in taps")
		phaseShift = flag.Int("phase-shift", converter.DefaultPhaseShift, "log2 of the phase count")
		cutoff     = flag.Float64("cutoff", converter.DefaultCutoff, "Cutoff relative to the lower Nyquist frequency")
		beta       = flag.Float64("beta", converter.DefaultKaiserBeta, "Kaiser window beta")
	)
	flag.Parse()

	window, err := filter.ParseWindowType(*windowName)
	if err != nil {
		log.Fatalf("Invalid window: %v", err)
	}

	fmt.Println("=== Analyzing Filter DC Gain ===")

	testRatios := []struct {
		in, out int
		name    string
	}{
		{converter.RateDAT, converter.RateHiRes96, "2x upsampling"},
		{converter.RateHiRes96, converter.RateDAT, "2x downsampling"},
		{converter.RateCD, converter.RateDAT, "CD→DAT"},
		{converter.RateDAT, converter.RateCD, "DAT→CD"},
		{converter.RateVoIP, converter.RateTelephony, "VoIP→telephony"},
	}

	for _, test := range testRatios {
		ratio := float64(test.out) / float64(test.in)
		factor := min(ratio*(*cutoff), 1.0)
		bank, err := filter.BuildBank(filter.BankParams{
			FilterLength: filter.FilterLength(*filterSize, factor),
			PhaseCount:   1 << *phaseShift,
			Factor:       factor,
			Window:       window,
			KaiserBeta:   *beta,
		})
		if err != nil {
			log.Fatalf("%s: %v", test.name, err)
		}

		fmt.Printf("\n=== %s (ratio = %.6f) ===\n", test.name, ratio)
		fmt.Printf("  Window: %v\n", bank.Window)
		fmt.Printf("  Factor: %.6f\n", bank.Factor)
		fmt.Printf("  FilterLength: %d\n", bank.FilterLength)
		fmt.Printf("  PhaseCount: %d\n", bank.PhaseCount)

		phaseGains := make([]float64, bank.PhaseCount)
		for ph := range bank.PhaseCount {
			for _, c := range bank.Phases[ph] {
				phaseGains[ph] += c
			}
		}

		// step through input positions in 1/PhaseCount units, as the
		// resampler does
		step := float64(bank.PhaseCount) / ratio
		usedPhases := make(map[int]bool)
		var sumUsedPhaseDC float64
		var pos float64
		for range testIterations {
			phase := int(math.Mod(pos, float64(bank.PhaseCount)))
			if !usedPhases[phase] {
				usedPhases[phase] = true
				sumUsedPhaseDC += phaseGains[phase]
				if len(usedPhases) <= maxPhasesToShow {
					fmt.Printf("    Phase %d: DC gain = %.10f\n", phase, phaseGains[phase])
				}
			}
			pos += step
		}

		fmt.Printf("  Used %d unique phases (out of %d)\n", len(usedPhases), bank.PhaseCount)
		fmt.Printf("  Average DC gain of used phases: %.10f\n", sumUsedPhaseDC/float64(len(usedPhases)))

		// the prototype runs at PhaseCount times the input rate
		resp := filter.FrequencyResponse(bank.Prototype(), responsePoints)
		edge := stopbandMargin * factor / 2 / float64(bank.PhaseCount)
		fmt.Printf("  Stopband attenuation above %.6f cycles/sample: %.1f dB\n",
			edge*float64(bank.PhaseCount), resp.StopbandAttenuation(edge))
	}
}
