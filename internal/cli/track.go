package cli

import (
	"context"
	"fmt"
	"io"
	"path/filepath"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/cwbudde/algo-singscore/dsp/pitch"
	"github.com/cwbudde/algo-singscore/measure/track"
)

func newTrackCommand(a *app) *cobra.Command {
	var showProgress bool

	cmd := &cobra.Command{
		Use:   "track <file>",
		Short: "Print the pitch track of one recording",
		Long: `track prints one line per voiced analysis window with its frequency,
nearest note and confidence. Interrupting the command stops the analysis and
prints what was collected so far.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runTrack(cmd.Context(), args[0], showProgress)
		},
	}
	fs := cmd.Flags()
	addAnalysisFlags(fs)
	fs.BoolVar(&showProgress, "progress", false, "print analysis progress to stderr")
	return cmd
}

type trackPoint struct {
	Index       int     `json:"index" yaml:"index"`
	FrequencyHz float64 `json:"frequencyHz" yaml:"frequencyHz"`
	Note        string  `json:"note" yaml:"note"`
	Cents       float64 `json:"cents" yaml:"cents"`
	Confidence  float64 `json:"confidence" yaml:"confidence"`
}

type trackReport struct {
	Path       string       `json:"path" yaml:"path"`
	SampleRate int          `json:"sampleRate" yaml:"sampleRate"`
	Windows    int          `json:"windows" yaml:"windows"`
	Complete   bool         `json:"complete" yaml:"complete"`
	Points     []trackPoint `json:"points" yaml:"points"`
}

func (a *app) runTrack(ctx context.Context, path string, showProgress bool) error {
	cfg, err := a.cfg.AnalysisConfig()
	if err != nil {
		return err
	}

	stream, err := a.opener().Open(ctx, path)
	if err != nil {
		return err
	}
	cfg.SampleRate = stream.SampleRate

	x, err := track.NewExtractor(cfg)
	if err != nil {
		stream.Close()
		return err
	}
	src, err := x.NewSource(stream)
	if err != nil {
		stream.Close()
		return err
	}

	var onProgress track.ProgressFunc
	if showProgress {
		p := newProgressPrinter(a.stderr)
		label := filepath.Base(path)
		onProgress = func(pct int) { p.print(label, pct) }
	}

	task := x.Start(ctx, src, stream.DurationMs, onProgress)
	tr, err := task.Wait()
	if err != nil {
		return err
	}
	if !tr.Complete {
		a.log.Warn("analysis cancelled, printing partial track")
	}

	report := trackReport{
		Path:       path,
		SampleRate: tr.Sequence.SampleRate(),
		Windows:    tr.Windows,
		Complete:   tr.Complete,
		Points:     trackPoints(tr.Sequence),
	}
	if a.cfg.Output != "text" {
		return encode(a.stdout, a.cfg.Output, report)
	}
	return writeTrackText(a.stdout, report)
}

func trackPoints(seq pitch.Sequence) []trackPoint {
	points := make([]trackPoint, seq.Len())
	for i, e := range seq.Estimates() {
		note, cents := pitch.NoteName(e.FrequencyHz)
		points[i] = trackPoint{
			Index:       i,
			FrequencyHz: e.FrequencyHz,
			Note:        note,
			Cents:       cents,
			Confidence:  e.Confidence,
		}
	}
	return points
}

func writeTrackText(w io.Writer, r trackReport) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', tabwriter.AlignRight)
	fmt.Fprintln(tw, "#\tHz\tnote\tcents\tconfidence\t")
	for _, p := range r.Points {
		fmt.Fprintf(tw, "%d\t%.2f\t%s\t%+.0f\t%.2f\t\n", p.Index, p.FrequencyHz, p.Note, p.Cents, p.Confidence)
	}
	if err := tw.Flush(); err != nil {
		return err
	}
	status := "complete"
	if !r.Complete {
		status = "incomplete"
	}
	_, err := fmt.Fprintf(w, "%d voiced of %d windows at %d Hz (%s)\n", len(r.Points), r.Windows, r.SampleRate, status)
	return err
}
