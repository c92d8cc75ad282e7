package pitch

import (
	"math"

	"github.com/cwbudde/algo-singscore/dsp/core"
)

// Estimator runs YIN over windows of a fixed length. It keeps scratch
// buffers between calls and is not safe for concurrent use; create one
// Estimator per analysis run.
type Estimator struct {
	sampleRate float64
	threshold  float64
	windowLen  int

	yinBuf []float64
	fft    *FFTDifference
}

// NewEstimator validates cfg and returns an Estimator for windows of
// cfg.WindowLength samples at cfg.SampleRate.
func NewEstimator(cfg core.AnalysisConfig) (*Estimator, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	e := &Estimator{
		sampleRate: float64(cfg.SampleRate),
		threshold:  cfg.Threshold,
		windowLen:  cfg.WindowLength,
		yinBuf:     make([]float64, cfg.WindowLength/2+1),
	}
	if cfg.Difference == core.DifferenceFFT {
		fft, err := NewFFTDifference(cfg.WindowLength)
		if err != nil {
			return nil, core.NewError(core.KindInvalidConfiguration, "pitch.new", err)
		}
		e.fft = fft
	}
	return e, nil
}

// SampleRate returns the sample rate in Hz.
func (e *Estimator) SampleRate() float64 { return e.sampleRate }

// Threshold returns the voicing threshold.
func (e *Estimator) Threshold() float64 { return e.threshold }

// Estimate returns the pitch of one window. Windows whose length differs
// from the configured window length are unvoiced.
func (e *Estimator) Estimate(samples []float64) Estimate {
	if len(samples) != e.windowLen {
		return Unvoiced
	}

	d := e.yinBuf
	if e.fft != nil {
		if err := e.fft.Compute(d, samples); err != nil {
			return Unvoiced
		}
	} else {
		DifferenceDirect(d, samples)
	}
	return yinFromDifference(d, e.sampleRate, e.threshold)
}

// EstimateYIN is the pure form of Estimator.Estimate using the direct
// difference function. It allocates one scratch slice per call.
func EstimateYIN(samples []float64, sampleRate, threshold float64) Estimate {
	if len(samples) < 4 || !core.IsFinitePositive(sampleRate) {
		return Unvoiced
	}
	d := make([]float64, len(samples)/2+1)
	DifferenceDirect(d, samples)
	return yinFromDifference(d, sampleRate, threshold)
}

// yinFromDifference runs steps 2-5 of YIN in place on d, which holds
// d(τ) for τ in [0, N/2].
func yinFromDifference(d []float64, sampleRate, threshold float64) Estimate {
	maxTau := len(d) - 1

	cumulativeMeanNormalize(d)

	tau := absoluteThreshold(d, threshold)
	if tau <= 1 || tau >= maxTau {
		return Unvoiced
	}

	period := parabolicInterpolation(d, tau)
	freq := sampleRate / period
	if !core.IsFinitePositive(freq) {
		return Unvoiced
	}

	return Estimate{
		FrequencyHz: freq,
		Voiced:      true,
		Confidence:  core.Clamp(1-d[tau], 0, 1),
	}
}

// cumulativeMeanNormalize replaces d(τ) by d(τ)·τ / Σ_{j=1}^{τ} d(j), with
// d'(0) = 1. A zero running sum (silence, DC) yields 1.
func cumulativeMeanNormalize(d []float64) {
	d[0] = 1
	runningSum := 0.0
	for tau := 1; tau < len(d); tau++ {
		runningSum += d[tau]
		if runningSum == 0 {
			d[tau] = 1
			continue
		}
		d[tau] *= float64(tau) / runningSum
	}
}

// absoluteThreshold returns the first lag whose normalized difference
// drops below threshold, walked down to the bottom of that dip, or -1.
func absoluteThreshold(d []float64, threshold float64) int {
	for tau := 1; tau < len(d); tau++ {
		if d[tau] < threshold {
			for tau+1 < len(d) && d[tau+1] < d[tau] {
				tau++
			}
			return tau
		}
	}
	return -1
}

// parabolicInterpolation refines tau with the vertex of the parabola through
// d(τ-1), d(τ), d(τ+1). The caller guarantees 0 < tau < len(d)-1.
func parabolicInterpolation(d []float64, tau int) float64 {
	s0, s1, s2 := d[tau-1], d[tau], d[tau+1]
	denom := 2 * (2*s1 - s2 - s0)
	if denom == 0 || math.IsNaN(denom) {
		return float64(tau)
	}
	shift := (s2 - s0) / denom
	if math.Abs(shift) > 1 {
		return float64(tau)
	}
	return float64(tau) + shift
}
