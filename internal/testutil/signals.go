package testutil

import (
	"math"
	"math/rand"
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
func DeterministicNoise(seed int64, amplitude float64, length int) []float64 {
	out := make([]float64, length)
	rng := rand.New(rand.NewSource(seed))
	for i := range out {
		out[i] = (rng.Float64()*2 - 1) * amplitude
	}
	return out
}

// PCM16 quantizes samples in [-1, 1] to little-endian signed 16-bit bytes.
func PCM16(samples []float64) []byte {
	out := make([]byte, 2*len(samples))
	for i, v := range samples {
		q := math.Round(v * 32767)
		if q > 32767 {
			q = 32767
		}
		if q < -32768 {
			q = -32768
		}
		u := uint16(int16(q))
		out[2*i] = byte(u)
		out[2*i+1] = byte(u >> 8)
	}
	return out
}

// SinePCM16 returns a quantized sine wave as 16-bit PCM bytes.
func SinePCM16(freqHz, sampleRate, amplitude float64, length int) []byte {
	return PCM16(DeterministicSine(freqHz, sampleRate, amplitude, length))
}

// SilencePCM16 returns length samples of digital silence.
func SilencePCM16(length int) []byte {
	return make([]byte, 2*length)
}

// MelodyPCM16 concatenates sine segments, one per frequency, each
// segmentLen samples long. A frequency of 0 produces silence.
func MelodyPCM16(freqs []float64, sampleRate, amplitude float64, segmentLen int) []byte {
	out := make([]byte, 0, 2*segmentLen*len(freqs))
	for _, f := range freqs {
		if f <= 0 {
			out = append(out, SilencePCM16(segmentLen)...)
			continue
		}
		out = append(out, SinePCM16(f, sampleRate, amplitude, segmentLen)...)
	}
	return out
}

// DC generates a constant-valued signal.
func DC(value float64, length int) []float64 {
	out := make([]float64, length)
	for i := range out {
		out[i] = value
	}
	return out
}
