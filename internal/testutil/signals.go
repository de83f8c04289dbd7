package testutil

import (
	"math"
	"math/rand/v2"
)

// DeterministicSine generates a deterministic sine wave.
func DeterministicSine(freqHz, sampleRate, amplitude float64, length int) []float64 {
	out := make([]float64, length)
	step := 2 * math.Pi * freqHz / sampleRate
	for i := range out {
		out[i] = amplitude * math.Sin(step*float64(i))
	}
	return out
}

// DeterministicNoise generates white noise with a fixed seed for reproducibility.
func DeterministicNoise(seed uint64, amplitude float64, length int) []float64 {
	out := make([]float64, length)
	rng := rand.New(rand.NewPCG(seed, seed))
	for i := range out {
		out[i] = (rng.Float64()*2 - 1) * amplitude
	}
	return out
}

// ClickTrain generates a beat-like test signal: short decaying tone bursts
// at the given tempo over a quiet noise floor. The bursts carry most of
// their energy at toneHz, so a band around toneHz sees a sharp energy rise
// on every beat.
func ClickTrain(sampleRate, bpm, toneHz, seconds float64, seed uint64) []float64 {
	length := int(sampleRate * seconds)
	out := DeterministicNoise(seed, 0.01, length)

	samplesPerBeat := sampleRate * 60 / bpm
	burstLen := int(sampleRate * 0.03)
	step := 2 * math.Pi * toneHz / sampleRate

	for beat := 0; ; beat++ {
		start := int(float64(beat) * samplesPerBeat)
		if start >= length {
			break
		}
		for j := 0; j < burstLen && start+j < length; j++ {
			decay := math.Exp(-5 * float64(j) / float64(burstLen))
			out[start+j] += 0.9 * decay * math.Sin(step*float64(j))
		}
	}

	return out
}

// BeatFrames returns the click positions of ClickTrain expressed as
// analysis frame indices for the given frame rate.
func BeatFrames(bpm, seconds, frameRate float64) []int {
	var out []int
	secPerBeat := 60 / bpm
	for t := 0.0; t < seconds; t += secPerBeat {
		out = append(out, int(t*frameRate))
	}
	return out
}
