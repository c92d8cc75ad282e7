package singing

import (
	"context"
	"io"
	"sync"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/cwbudde/algo-singscore/dsp/core"
	"github.com/cwbudde/algo-singscore/measure/score"
	"github.com/cwbudde/algo-singscore/measure/track"
)

// Stage identifies which recording a progress report refers to.
type Stage int

const (
	StageReference Stage = iota
	StageUser
)

func (s Stage) String() string {
	switch s {
	case StageReference:
		return "reference"
	case StageUser:
		return "user"
	default:
		return "unknown"
	}
}

// ProgressFunc receives per-stage progress. Calls are serialized, so the
// function need not be safe for concurrent use, but it runs on the analysis
// goroutines and should return quickly.
type ProgressFunc func(stage Stage, percent int)

// Recording is one PCM input: 16-bit little-endian mono samples.
type Recording struct {
	// Name is used for logging only.
	Name string
	// Reader yields the raw PCM bytes. If it implements io.Closer it is
	// closed when the run ends.
	Reader io.Reader
	// SampleRate overrides the scorer's configured rate when > 0.
	SampleRate int
	// DurationMs feeds the progress estimate; 0 means unknown.
	DurationMs int64
}

// Result is a comparison result plus run metadata.
type Result struct {
	score.Result `yaml:",inline"`

	// Complete is false when the run was cancelled and the score covers
	// only the prefixes analyzed before cancellation.
	Complete bool `json:"complete" yaml:"complete"`

	ReferenceVoiced  int `json:"referenceVoiced" yaml:"referenceVoiced"`
	UserVoiced       int `json:"userVoiced" yaml:"userVoiced"`
	ReferenceWindows int `json:"referenceWindows" yaml:"referenceWindows"`
	UserWindows      int `json:"userWindows" yaml:"userWindows"`
}

// Option configures a Scorer.
type Option func(*Scorer)

// WithLogger sets the logger used for per-stage analysis events.
func WithLogger(l logrus.FieldLogger) Option {
	return func(s *Scorer) {
		if l != nil {
			s.log = l
		}
	}
}

// WithComparator replaces the default index-aligned comparator.
func WithComparator(c score.Comparator) Option {
	return func(s *Scorer) {
		if c != nil {
			s.comparator = c
		}
	}
}

// WithSequentialAnalysis analyzes the reference first and the user recording
// second instead of both at once.
func WithSequentialAnalysis() Option {
	return func(s *Scorer) { s.sequential = true }
}

// Scorer orchestrates extraction and comparison. It is safe for concurrent
// use as long as every call receives its own recordings.
type Scorer struct {
	cfg        core.AnalysisConfig
	log        logrus.FieldLogger
	comparator score.Comparator
	sequential bool
}

// NewScorer validates cfg and returns a Scorer.
func NewScorer(cfg core.AnalysisConfig, opts ...Option) (*Scorer, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	s := &Scorer{cfg: cfg}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}
	if s.log == nil {
		l := logrus.New()
		l.SetOutput(io.Discard)
		s.log = l
	}
	if s.comparator == nil {
		c, err := score.NewIndexAligned(cfg.ToleranceHz)
		if err != nil {
			return nil, err
		}
		s.comparator = c
	}
	return s, nil
}

// Config returns the analysis configuration.
func (s *Scorer) Config() core.AnalysisConfig { return s.cfg }

// ScoreRecording analyzes both recordings and compares their pitch tracks.
// onProgress may be nil. Both readers are closed before it returns.
func (s *Scorer) ScoreRecording(ctx context.Context, reference, user Recording, onProgress ProgressFunc) (Result, error) {
	const op = "singing.score"

	progress := serializeProgress(onProgress)
	var tracks [2]track.Track

	run := func(ctx context.Context, stage Stage, rec Recording) error {
		tr, err := s.analyze(ctx, stage, rec, progress)
		tracks[stage] = tr
		return err
	}

	var err error
	if s.sequential {
		err = run(ctx, StageReference, reference)
		if err == nil {
			err = run(ctx, StageUser, user)
		} else {
			closeReader(user.Reader)
		}
	} else {
		g, gctx := errgroup.WithContext(ctx)
		g.Go(func() error { return run(gctx, StageReference, reference) })
		g.Go(func() error { return run(gctx, StageUser, user) })
		err = g.Wait()
	}
	if err != nil {
		s.log.WithError(err).Warn("analysis failed")
		return Result{}, core.NewError(core.KindAnalysisFailed, op, err)
	}

	cmp, err := s.comparator.Compare(tracks[StageReference].Sequence, tracks[StageUser].Sequence)
	if err != nil {
		s.log.WithError(err).Warn("comparison failed")
		return Result{}, core.NewError(core.KindAnalysisFailed, op, err)
	}

	res := Result{
		Result:           cmp,
		Complete:         tracks[StageReference].Complete && tracks[StageUser].Complete,
		ReferenceVoiced:  tracks[StageReference].Sequence.Len(),
		UserVoiced:       tracks[StageUser].Sequence.Len(),
		ReferenceWindows: tracks[StageReference].Windows,
		UserWindows:      tracks[StageUser].Windows,
	}
	s.log.WithFields(logrus.Fields{
		"score":    res.Score,
		"accuracy": res.Accuracy,
		"compared": res.Compared,
		"complete": res.Complete,
	}).Info("scored")
	return res, nil
}

// analyze runs one extraction. The recording's reader is closed on every
// path, including configuration errors raised before a source exists.
func (s *Scorer) analyze(ctx context.Context, stage Stage, rec Recording, progress ProgressFunc) (track.Track, error) {
	const op = "singing.analyze"

	if rec.Reader == nil {
		return track.Track{}, core.Errorf(core.KindInvalidConfiguration, op, "%s recording has no reader", stage)
	}

	cfg := s.cfg
	if rec.SampleRate > 0 {
		cfg.SampleRate = rec.SampleRate
	}
	x, err := track.NewExtractor(cfg)
	if err != nil {
		closeReader(rec.Reader)
		return track.Track{}, err
	}
	src, err := x.NewSource(rec.Reader)
	if err != nil {
		closeReader(rec.Reader)
		return track.Track{}, err
	}

	log := s.log.WithFields(logrus.Fields{
		"stage":      stage.String(),
		"recording":  rec.Name,
		"sampleRate": cfg.SampleRate,
	})
	log.Debug("analysis started")

	var onProgress track.ProgressFunc
	if progress != nil {
		onProgress = func(p int) { progress(stage, p) }
	}
	tr, err := x.Extract(ctx, src, rec.DurationMs, onProgress)
	if err != nil {
		log.WithError(err).Debug("analysis aborted")
		return track.Track{}, err
	}

	log.WithFields(logrus.Fields{
		"windows":  tr.Windows,
		"voiced":   tr.Sequence.Len(),
		"complete": tr.Complete,
	}).Info("analysis finished")
	return tr, nil
}

func serializeProgress(fn ProgressFunc) ProgressFunc {
	if fn == nil {
		return nil
	}
	var mu sync.Mutex
	return func(stage Stage, percent int) {
		mu.Lock()
		defer mu.Unlock()
		fn(stage, percent)
	}
}

func closeReader(r io.Reader) {
	if c, ok := r.(io.Closer); ok {
		_ = c.Close()
	}
}
