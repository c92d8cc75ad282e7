package pitch

import (
	"errors"
	"math"
	"testing"

	"github.com/cwbudde/algo-singscore/dsp/core"
	"github.com/cwbudde/algo-singscore/internal/testutil"
)

const testSampleRate = 44100.0

func newTestEstimator(t *testing.T, method core.DifferenceMethod) *Estimator {
	t.Helper()
	e, err := NewEstimator(core.ApplyAnalysisOptions(core.WithDifference(method)))
	if err != nil {
		t.Fatalf("NewEstimator() error = %v", err)
	}
	return e
}

// steadyWindow skips the first samples so the window is not phase-aligned
// with the start of the tone.
func steadyWindow(freq float64, n int) []float64 {
	return testutil.DeterministicSine(freq, testSampleRate, 0.8, n+777)[777:]
}

func TestNewEstimatorRejectsInvalidConfig(t *testing.T) {
	_, err := NewEstimator(core.ApplyAnalysisOptions(core.WithThreshold(1.5)))
	if !errors.Is(err, core.ErrInvalidConfiguration) {
		t.Fatalf("error = %v, want invalid configuration", err)
	}
}

func TestEstimatorSine(t *testing.T) {
	for _, method := range []core.DifferenceMethod{core.DifferenceDirect, core.DifferenceFFT} {
		e := newTestEstimator(t, method)
		for _, freq := range []float64{110, 196, 261.63, 440, 659.25, 880} {
			t.Run(method.String(), func(t *testing.T) {
				got := e.Estimate(steadyWindow(freq, 2048))
				if !got.Voiced {
					t.Fatalf("%.2f Hz: unvoiced", freq)
				}
				if math.Abs(got.FrequencyHz-freq) > 1 {
					t.Fatalf("%.2f Hz: got %.3f Hz", freq, got.FrequencyHz)
				}
				if got.Confidence < 0.9 || got.Confidence > 1 {
					t.Fatalf("%.2f Hz: confidence %.3f", freq, got.Confidence)
				}
			})
		}
	}
}

func TestEstimatorQuantizedSine(t *testing.T) {
	// Window drawn from 16-bit PCM as the frame source would deliver it.
	raw := testutil.SinePCM16(440, testSampleRate, 0.5, 4096)
	window := make([]float64, 2048)
	for i := range window {
		v := int16(uint16(raw[2*(i+1000)]) | uint16(raw[2*(i+1000)+1])<<8)
		window[i] = float64(v) / 32768
	}

	got := EstimateYIN(window, testSampleRate, 0.15)
	if !got.Voiced || math.Abs(got.FrequencyHz-440) > 1 {
		t.Fatalf("got %+v, want voiced 440±1 Hz", got)
	}
}

func TestEstimatorSilenceIsUnvoiced(t *testing.T) {
	for _, method := range []core.DifferenceMethod{core.DifferenceDirect, core.DifferenceFFT} {
		e := newTestEstimator(t, method)
		if got := e.Estimate(make([]float64, 2048)); got != Unvoiced {
			t.Fatalf("%s: silence = %+v, want unvoiced", method, got)
		}
		if got := e.Estimate(testutil.DC(0.25, 2048)); got != Unvoiced {
			t.Fatalf("%s: DC = %+v, want unvoiced", method, got)
		}
	}
}

func TestEstimatorNoiseIsUnvoiced(t *testing.T) {
	e := newTestEstimator(t, core.DifferenceDirect)
	for seed := int64(1); seed <= 5; seed++ {
		got := e.Estimate(testutil.DeterministicNoise(seed, 0.5, 2048))
		if got.Voiced {
			t.Fatalf("seed %d: noise classified voiced at %.2f Hz", seed, got.FrequencyHz)
		}
	}
}

func TestEstimatorWrongLengthIsUnvoiced(t *testing.T) {
	e := newTestEstimator(t, core.DifferenceDirect)
	if got := e.Estimate(steadyWindow(440, 1024)); got.Voiced {
		t.Fatalf("short window should be unvoiced: %+v", got)
	}
}

func TestEstimateYINMatchesEstimator(t *testing.T) {
	e := newTestEstimator(t, core.DifferenceDirect)
	w := steadyWindow(330, 2048)
	a := e.Estimate(w)
	b := EstimateYIN(w, testSampleRate, 0.15)
	if a != b {
		t.Fatalf("Estimator = %+v, EstimateYIN = %+v", a, b)
	}
	if got := EstimateYIN(w[:3], testSampleRate, 0.15); got.Voiced {
		t.Fatalf("3-sample window should be unvoiced")
	}
	if got := EstimateYIN(w, 0, 0.15); got.Voiced {
		t.Fatalf("zero sample rate should be unvoiced")
	}
}

func TestVoicedEstimatesHavePositiveFrequency(t *testing.T) {
	// Periods of 2-3 samples put the candidate lag at or next to the lower
	// boundary of the lag range.
	for _, freq := range []float64{14000, 16000, 20000} {
		got := EstimateYIN(steadyWindow(freq, 2048), testSampleRate, 0.15)
		if got.Voiced && !(got.FrequencyHz > 0) {
			t.Fatalf("%.0f Hz: voiced estimate with frequency %v", freq, got.FrequencyHz)
		}
		if !got.Voiced && got.FrequencyHz != 0 {
			t.Fatalf("%.0f Hz: unvoiced estimate carries frequency %v", freq, got.FrequencyHz)
		}
	}
}

func TestFrequencyBelowLagRangeIsUnvoiced(t *testing.T) {
	// 30 Hz needs a lag of 1470 samples, beyond N/2 = 1024.
	got := EstimateYIN(steadyWindow(30, 2048), testSampleRate, 0.15)
	if got.Voiced && math.Abs(got.FrequencyHz-30) < 1 {
		t.Fatalf("30 Hz cannot be resolved with a 2048-sample window: %+v", got)
	}
}

func TestCumulativeMeanNormalize(t *testing.T) {
	d := []float64{0, 2, 4, 6}
	cumulativeMeanNormalize(d)
	want := []float64{1, 1, 4 * 2 / 6.0, 6 * 3 / 12.0}
	testutil.RequireSliceNearlyEqual(t, d, want, 1e-12)
}

func TestAbsoluteThresholdWalksToLocalMinimum(t *testing.T) {
	d := []float64{1, 0.9, 0.5, 0.12, 0.05, 0.02, 0.06, 0.01, 0.4}
	if got := absoluteThreshold(d, 0.15); got != 5 {
		t.Fatalf("absoluteThreshold = %d, want 5", got)
	}
	if got := absoluteThreshold(d, 0.001); got != -1 {
		t.Fatalf("absoluteThreshold = %d, want -1", got)
	}
}

func TestParabolicInterpolation(t *testing.T) {
	// Samples of (x-10.3)² at 9, 10, 11.
	f := func(x float64) float64 { return (x - 10.3) * (x - 10.3) }
	d := make([]float64, 12)
	for i := range d {
		d[i] = f(float64(i))
	}
	if got := parabolicInterpolation(d, 10); math.Abs(got-10.3) > 1e-9 {
		t.Fatalf("parabolicInterpolation = %v, want 10.3", got)
	}

	flat := []float64{1, 1, 1}
	if got := parabolicInterpolation(flat, 1); got != 1 {
		t.Fatalf("flat parabola = %v, want 1", got)
	}
}
