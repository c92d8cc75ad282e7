package cli

import (
	"context"
	"fmt"
	"io"
	"path/filepath"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/cwbudde/algo-singscore/internal/history"
	"github.com/cwbudde/algo-singscore/measure/singing"
)

func newScoreCommand(a *app) *cobra.Command {
	var showProgress bool

	cmd := &cobra.Command{
		Use:   "score <reference> <user>",
		Short: "Score a user recording against a reference",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runScore(cmd.Context(), args[0], args[1], showProgress)
		},
	}

	fs := cmd.Flags()
	addAnalysisFlags(fs)
	fs.Float64("tolerance", 50, "maximum pitch difference in Hz that still counts as a match")
	fs.Bool("sequential", false, "analyze the recordings one after the other")
	fs.Bool("history", false, "store the result in the score history")
	fs.String("history-path", "", "score history database")
	fs.BoolVar(&showProgress, "progress", false, "print analysis progress to stderr")
	withKey(fs, "tolerance", "analysis.tolerance_hz")
	withKey(fs, "sequential", "analysis.sequential")
	withKey(fs, "history", "history.enabled")
	withKey(fs, "history-path", "history.path")
	return cmd
}

func (a *app) runScore(ctx context.Context, refPath, userPath string, showProgress bool) error {
	cfg, err := a.cfg.AnalysisConfig()
	if err != nil {
		return err
	}

	opts := []singing.Option{singing.WithLogger(a.log)}
	if a.cfg.Analysis.Sequential {
		opts = append(opts, singing.WithSequentialAnalysis())
	}
	scorer, err := singing.NewScorer(cfg, opts...)
	if err != nil {
		return err
	}

	ref, err := a.openRecording(ctx, refPath)
	if err != nil {
		return err
	}
	user, err := a.openRecording(ctx, userPath)
	if err != nil {
		closeRecording(ref)
		return err
	}

	var progress singing.ProgressFunc
	if showProgress {
		progress = newProgressPrinter(a.stderr).stage
	}

	job := scorer.Start(ctx, ref, user, progress)
	res, err := job.Wait()
	if err != nil {
		return err
	}
	if !res.Complete {
		a.log.Warn("analysis cancelled, score covers only the analyzed part")
	}

	if a.cfg.History.Enabled && res.Complete {
		if err := a.saveHistory(ctx, refPath, userPath, ref.SampleRate, res); err != nil {
			return err
		}
	}
	return writeScore(a.stdout, a.cfg.Output, refPath, userPath, res)
}

func (a *app) openRecording(ctx context.Context, path string) (singing.Recording, error) {
	s, err := a.opener().Open(ctx, path)
	if err != nil {
		return singing.Recording{}, err
	}
	a.log.WithFields(logrus.Fields{
		"path":       path,
		"decoder":    s.Decoder,
		"sampleRate": s.SampleRate,
		"durationMs": s.DurationMs,
	}).Debug("opened recording")
	return singing.Recording{
		Name:       filepath.Base(path),
		Reader:     s,
		SampleRate: s.SampleRate,
		DurationMs: s.DurationMs,
	}, nil
}

func (a *app) saveHistory(ctx context.Context, refPath, userPath string, sampleRate int, res singing.Result) error {
	store, err := history.Open(a.cfg.History.Path)
	if err != nil {
		return err
	}
	defer store.Close()

	id, err := store.Save(ctx, history.Entry{
		Reference:   refPath,
		User:        userPath,
		Score:       res.Score,
		Accuracy:    res.Accuracy,
		Compared:    res.Compared,
		Matches:     res.Matches,
		Complete:    res.Complete,
		ToleranceHz: a.cfg.Analysis.ToleranceHz,
		SampleRate:  sampleRate,
	})
	if err != nil {
		return err
	}
	a.log.WithField("id", id).Debug("score saved")
	return nil
}

func scoreLabel(score int) string {
	switch {
	case score >= 90:
		return "excellent"
	case score >= 70:
		return "good"
	case score >= 40:
		return "fair"
	default:
		return "keep practicing"
	}
}

func describe(res singing.Result) string {
	return fmt.Sprintf("%d/%d aligned frames within tolerance", res.Matches, res.Compared)
}

func closeRecording(r singing.Recording) {
	if c, ok := r.Reader.(io.Closer); ok {
		_ = c.Close()
	}
}
