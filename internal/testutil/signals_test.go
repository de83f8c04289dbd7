package testutil

import (
	"math"
	"testing"
)

func TestDeterministicSine(t *testing.T) {
	s := DeterministicSine(1000, 48000, 1.0, 48)
	if len(s) != 48 {
		t.Fatalf("len = %d, want 48", len(s))
	}
	// First sample of a sine at phase 0 should be 0.
	if math.Abs(s[0]) > 1e-15 {
		t.Fatalf("s[0] = %v, want 0", s[0])
	}
	// All values in [-1, 1].
	for i, v := range s {
		if v < -1 || v > 1 {
			t.Fatalf("s[%d] = %v out of range", i, v)
		}
	}
}

func TestDeterministicNoise(t *testing.T) {
	a := DeterministicNoise(42, 1.0, 64)
	b := DeterministicNoise(42, 1.0, 64)
	if len(a) != 64 {
		t.Fatalf("len = %d, want 64", len(a))
	}
	for i := range a {
		if a[i] != b[i] {
			t.Fatalf("noise not deterministic at index %d", i)
		}
	}
}

func TestDeterministicNoiseDifferentSeeds(t *testing.T) {
	a := DeterministicNoise(1, 1.0, 16)
	b := DeterministicNoise(2, 1.0, 16)
	same := true
	for i := range a {
		if a[i] != b[i] {
			same = false
			break
		}
	}
	if same {
		t.Fatal("different seeds produced identical noise")
	}
}

func TestClickTrainLength(t *testing.T) {
	s := ClickTrain(8000, 120, 1000, 2, 1)
	if len(s) != 16000 {
		t.Fatalf("len = %d, want 16000", len(s))
	}
}

func TestClickTrainBurstsLouderThanFloor(t *testing.T) {
	const rate = 8000.0
	s := ClickTrain(rate, 60, 1000, 2, 1)

	rms := func(seg []float64) float64 {
		var sum float64
		for _, v := range seg {
			sum += v * v
		}
		return math.Sqrt(sum / float64(len(seg)))
	}

	burst := rms(s[:int(rate*0.03)])
	quiet := rms(s[int(rate*0.5) : int(rate*0.5)+int(rate*0.03)])
	if burst < 10*quiet {
		t.Fatalf("burst rms %v not well above floor rms %v", burst, quiet)
	}
}

func TestBeatFrames(t *testing.T) {
	frames := BeatFrames(60, 2.5, 10)
	want := []int{0, 10, 20}
	if len(frames) != len(want) {
		t.Fatalf("got %v, want %v", frames, want)
	}
	for i := range want {
		if frames[i] != want[i] {
			t.Fatalf("got %v, want %v", frames, want)
		}
	}
}
