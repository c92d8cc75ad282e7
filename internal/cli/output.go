package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/fatih/color"
	"gopkg.in/yaml.v3"

	"github.com/cwbudde/algo-singscore/measure/singing"
)

type scoreReport struct {
	Reference      string `json:"reference" yaml:"reference"`
	User           string `json:"user" yaml:"user"`
	singing.Result `yaml:",inline"`
}

func writeScore(w io.Writer, format, refPath, userPath string, res singing.Result) error {
	report := scoreReport{Reference: refPath, User: userPath, Result: res}
	switch format {
	case "json", "yaml":
		return encode(w, format, report)
	}

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintf(tw, "reference\t%s\n", refPath)
	fmt.Fprintf(tw, "user\t%s\n", userPath)
	fmt.Fprintf(tw, "score\t%s\n", scoreColor(res.Score).Sprintf("%d (%s)", res.Score, scoreLabel(res.Score)))
	fmt.Fprintf(tw, "accuracy\t%.3f (%s)\n", res.Accuracy, describe(res))
	fmt.Fprintf(tw, "voiced\treference %d of %d, user %d of %d windows\n",
		res.ReferenceVoiced, res.ReferenceWindows, res.UserVoiced, res.UserWindows)
	if !res.Complete {
		fmt.Fprintf(tw, "status\t%s\n", color.YellowString("incomplete (cancelled)"))
	}
	return tw.Flush()
}

func scoreColor(score int) *color.Color {
	switch {
	case score >= 70:
		return color.New(color.FgGreen, color.Bold)
	case score >= 40:
		return color.New(color.FgYellow, color.Bold)
	default:
		return color.New(color.FgRed, color.Bold)
	}
}

// encode writes v as indented JSON or as YAML.
func encode(w io.Writer, format string, v any) error {
	switch format {
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	case "yaml":
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(v); err != nil {
			return err
		}
		return enc.Close()
	default:
		return fmt.Errorf("unknown output format %q", format)
	}
}

// progressPrinter writes a line whenever a label's percentage changes.
type progressPrinter struct {
	w    io.Writer
	last map[string]int
}

func newProgressPrinter(w io.Writer) *progressPrinter {
	return &progressPrinter{w: w, last: map[string]int{}}
}

func (p *progressPrinter) stage(s singing.Stage, percent int) {
	p.print(s.String(), percent)
}

func (p *progressPrinter) print(label string, percent int) {
	if last, ok := p.last[label]; ok && last == percent {
		return
	}
	p.last[label] = percent
	fmt.Fprintf(p.w, "%-9s %3d%%\n", label, percent)
}
