package track

import (
	"context"
	"io"

	"github.com/cwbudde/algo-singscore/dsp/core"
	"github.com/cwbudde/algo-singscore/dsp/pcm"
	"github.com/cwbudde/algo-singscore/dsp/pitch"
)

// WindowSource yields analysis windows in stream order. *pcm.FrameSource
// implements it.
type WindowSource interface {
	NextWindow() (pcm.Window, bool, error)
	Release(pcm.Window)
	Close() error
}

// ProgressFunc receives a percentage in [0, 100]. It is called synchronously
// from the goroutine running the analysis.
type ProgressFunc func(percent int)

// Track is the result of one extraction run.
type Track struct {
	// Sequence holds the voiced estimates in stream order.
	Sequence pitch.Sequence
	// Windows is the number of windows analyzed, voiced or not.
	Windows int
	// Complete is false when the run was cancelled before the source ended.
	Complete bool
}

// Extractor analyzes recordings with a fixed configuration. It holds no
// per-run state and may run several extractions concurrently, each on its
// own source.
type Extractor struct {
	cfg core.AnalysisConfig
}

// NewExtractor validates cfg and returns an Extractor.
func NewExtractor(cfg core.AnalysisConfig) (*Extractor, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &Extractor{cfg: cfg}, nil
}

// Config returns the analysis configuration.
func (x *Extractor) Config() core.AnalysisConfig { return x.cfg }

// NewSource wraps r in a frame source matching the extractor's window
// length, stride and sample rate.
func (x *Extractor) NewSource(r io.Reader, opts ...pcm.SourceOption) (*pcm.FrameSource, error) {
	return pcm.NewFrameSource(r, x.cfg, opts...)
}

// Extract runs the decode and estimate loop over src until it is exhausted,
// fails or ctx is cancelled. src is closed on every return path.
//
// totalDurationMs only feeds the progress estimate; 0 means unknown, in
// which case intermediate reports stay at 0. onProgress may be nil.
//
// A read failure returns a KindIO error and no track. Cancellation returns
// the collected prefix with Complete set to false and a nil error.
func (x *Extractor) Extract(ctx context.Context, src WindowSource, totalDurationMs int64, onProgress ProgressFunc) (tr Track, err error) {
	const op = "track.extract"

	if src == nil {
		return Track{}, core.Errorf(core.KindInvalidConfiguration, op, "window source must not be nil")
	}
	defer func() {
		if cerr := src.Close(); cerr != nil && err == nil {
			tr, err = Track{}, cerr
		}
	}()
	if err := x.checkSource(src); err != nil {
		return Track{}, err
	}

	est, err := pitch.NewEstimator(x.cfg)
	if err != nil {
		return Track{}, err
	}

	reporter := newProgressReporter(
		pcm.TotalExpectedWindows(totalDurationMs, x.cfg.SampleRate, x.cfg.WindowLength),
		x.cfg.ProgressEvery,
		onProgress,
	)

	var voiced []pitch.Estimate
	processed := 0
	complete := true

	for {
		if ctx.Err() != nil {
			complete = false
			break
		}

		w, ok, err := src.NextWindow()
		if err != nil {
			return Track{}, err
		}
		if !ok {
			break
		}

		e := est.Estimate(w.Samples())
		src.Release(w)

		if e.Voiced {
			voiced = append(voiced, e)
		}
		processed++
		reporter.window(processed)
	}

	if complete {
		reporter.finish()
	}

	return Track{
		Sequence: pitch.NewSequence(x.cfg.SampleRate, voiced),
		Windows:  processed,
		Complete: complete,
	}, nil
}

// checkSource rejects sources whose geometry disagrees with the
// configuration when the source exposes it.
func (x *Extractor) checkSource(src WindowSource) error {
	const op = "track.extract"
	if s, ok := src.(interface{ WindowLength() int }); ok && s.WindowLength() != x.cfg.WindowLength {
		return core.Errorf(core.KindInvalidConfiguration, op,
			"source window length %d differs from configured %d", s.WindowLength(), x.cfg.WindowLength)
	}
	if s, ok := src.(interface{ SampleRate() int }); ok && s.SampleRate() != x.cfg.SampleRate {
		return core.Errorf(core.KindInvalidConfiguration, op,
			"source sample rate %d differs from configured %d", s.SampleRate(), x.cfg.SampleRate)
	}
	return nil
}
