package core

import "fmt"

// DifferenceMethod selects how the YIN squared-difference function is computed.
type DifferenceMethod int

const (
	// DifferenceDirect evaluates the O(N²) lag sum directly.
	DifferenceDirect DifferenceMethod = iota
	// DifferenceFFT derives the same values from an FFT autocorrelation.
	DifferenceFFT
)

// String returns the lower-case method name.
func (m DifferenceMethod) String() string {
	switch m {
	case DifferenceDirect:
		return "direct"
	case DifferenceFFT:
		return "fft"
	default:
		return fmt.Sprintf("DifferenceMethod(%d)", int(m))
	}
}

// ParseDifferenceMethod maps "direct" or "fft" to a DifferenceMethod.
// The empty string selects the direct method.
func ParseDifferenceMethod(s string) (DifferenceMethod, error) {
	switch s {
	case "", "direct":
		return DifferenceDirect, nil
	case "fft":
		return DifferenceFFT, nil
	default:
		return DifferenceDirect, Errorf(KindInvalidConfiguration, "core.parse", "unknown difference method %q", s)
	}
}

// AnalysisConfig defines the settings shared by one pitch analysis and the
// comparison that consumes it.
type AnalysisConfig struct {
	SampleRate    int
	WindowLength  int
	Stride        int
	Threshold     float64
	ToleranceHz   float64
	ProgressEvery int
	Difference    DifferenceMethod
}

// AnalysisOption mutates an AnalysisConfig.
type AnalysisOption func(*AnalysisConfig)

// DefaultAnalysisConfig returns the defaults: 44.1 kHz, 2048-sample windows
// with 50% overlap, YIN threshold 0.15 and a 50 Hz match tolerance.
func DefaultAnalysisConfig() AnalysisConfig {
	return AnalysisConfig{
		SampleRate:    44100,
		WindowLength:  2048,
		Stride:        1024,
		Threshold:     0.15,
		ToleranceHz:   50,
		ProgressEvery: 5,
		Difference:    DifferenceDirect,
	}
}

// WithSampleRate sets the PCM sample rate in Hz.
func WithSampleRate(sampleRate int) AnalysisOption {
	return func(cfg *AnalysisConfig) {
		cfg.SampleRate = sampleRate
	}
}

// WithWindowLength sets the analysis window length in samples.
func WithWindowLength(n int) AnalysisOption {
	return func(cfg *AnalysisConfig) {
		cfg.WindowLength = n
	}
}

// WithStride sets the sample offset between consecutive windows.
func WithStride(n int) AnalysisOption {
	return func(cfg *AnalysisConfig) {
		cfg.Stride = n
	}
}

// WithThreshold sets the YIN voicing threshold.
func WithThreshold(threshold float64) AnalysisOption {
	return func(cfg *AnalysisConfig) {
		cfg.Threshold = threshold
	}
}

// WithToleranceHz sets the maximum frequency difference counted as a match.
func WithToleranceHz(hz float64) AnalysisOption {
	return func(cfg *AnalysisConfig) {
		cfg.ToleranceHz = hz
	}
}

// WithProgressEvery sets how many processed windows lie between progress reports.
func WithProgressEvery(windows int) AnalysisOption {
	return func(cfg *AnalysisConfig) {
		cfg.ProgressEvery = windows
	}
}

// WithDifference selects the difference function backend.
func WithDifference(m DifferenceMethod) AnalysisOption {
	return func(cfg *AnalysisConfig) {
		cfg.Difference = m
	}
}

// ApplyAnalysisOptions applies zero or more options to the default config.
//
// Unlike the processor options of the DSP packages, values are stored
// verbatim; call Validate before use.
func ApplyAnalysisOptions(opts ...AnalysisOption) AnalysisConfig {
	cfg := DefaultAnalysisConfig()
	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}
	return cfg
}

// Validate reports a KindInvalidConfiguration error for settings no analysis
// can run with.
func (c AnalysisConfig) Validate() error {
	const op = "core.validate"
	switch {
	case c.SampleRate <= 0:
		return Errorf(KindInvalidConfiguration, op, "sample rate must be > 0: %d", c.SampleRate)
	case c.WindowLength <= 0:
		return Errorf(KindInvalidConfiguration, op, "window length must be > 0: %d", c.WindowLength)
	case c.Stride <= 0:
		return Errorf(KindInvalidConfiguration, op, "stride must be > 0: %d", c.Stride)
	case c.WindowLength < c.Stride:
		return Errorf(KindInvalidConfiguration, op, "window length %d must be >= stride %d", c.WindowLength, c.Stride)
	case c.WindowLength < 4:
		return Errorf(KindInvalidConfiguration, op, "window length must be >= 4: %d", c.WindowLength)
	case !(c.Threshold > 0 && c.Threshold < 1):
		return Errorf(KindInvalidConfiguration, op, "threshold must be in (0,1): %f", c.Threshold)
	case !(c.ToleranceHz >= 0) || c.ToleranceHz > maxToleranceHz:
		return Errorf(KindInvalidConfiguration, op, "tolerance must be in [0,%g] Hz: %f", float64(maxToleranceHz), c.ToleranceHz)
	case c.ProgressEvery <= 0:
		return Errorf(KindInvalidConfiguration, op, "progress interval must be > 0: %d", c.ProgressEvery)
	case c.Difference != DifferenceDirect && c.Difference != DifferenceFFT:
		return Errorf(KindInvalidConfiguration, op, "unknown difference method: %s", c.Difference)
	}
	return nil
}

const maxToleranceHz = 20000
