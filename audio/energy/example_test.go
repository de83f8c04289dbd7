package energy_test

import (
	"fmt"
	"math"

	"github.com/jnhankins/ffmv/audio/energy"
)

func ExampleAnalyze() {
	const rate = 8000.0

	// One second of a 1 kHz tone.
	samples := make([]float64, int(rate))
	for i := range samples {
		samples[i] = math.Sin(2 * math.Pi * 1000 * float64(i) / rate)
	}

	frames, err := energy.Analyze(samples, energy.Config{
		SampleRate: rate,
		FFTSize:    512,
	})
	if err != nil {
		panic(err)
	}

	mid := frames.FrameCount() / 2
	low, _ := frames.BandEnergyRange(mid, 0, 500)
	tone, _ := frames.BandEnergyRange(mid, 900, 1100)

	fmt.Printf("frame rate: %.2f Hz\n", frames.FrameRate())
	fmt.Printf("tone band louder: %v\n", tone > 10*low)

	// Output:
	// frame rate: 31.25 Hz
	// tone band louder: true
}
