// Package cli implements the singscore command tree.
package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/cwbudde/algo-singscore/internal/audiofile"
	"github.com/cwbudde/algo-singscore/internal/config"
)

// app carries state shared by all subcommands of one invocation.
type app struct {
	v          *viper.Viper
	configPath string
	cfg        config.Config
	log        *logrus.Logger
	stdout     io.Writer
	stderr     io.Writer
}

// Execute runs the command line and returns the process exit code.
func Execute() int {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cmd := NewRootCommand(os.Stdout, os.Stderr)
	if err := cmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		return 1
	}
	return 0
}

// NewRootCommand builds the command tree writing to stdout and stderr.
func NewRootCommand(stdout, stderr io.Writer) *cobra.Command {
	a := &app{
		v:      config.New(),
		stdout: stdout,
		stderr: stderr,
	}

	root := &cobra.Command{
		Use:   "singscore",
		Short: "Score a sung performance against a reference recording",
		Long: `singscore extracts the pitch track of two recordings with the YIN
algorithm and reports how closely the user's take follows the reference.

WAV files in 16-bit mono PCM are read directly; everything else is decoded
with ffmpeg.`,
		SilenceUsage:      true,
		SilenceErrors:     true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error { return a.load(cmd) },
	}
	root.SetOut(stdout)
	root.SetErr(stderr)

	pf := root.PersistentFlags()
	pf.StringVar(&a.configPath, "config", "", "config file (default ./singscore.yaml or $XDG_CONFIG_HOME/singscore/singscore.yaml)")
	pf.String("log-level", "info", "log level: debug, info, warn, error")
	pf.String("log-format", "text", "log format: text or json")
	pf.StringP("output", "o", "text", "output format: text, json or yaml")
	withKey(pf, "log-level", "log.level")
	withKey(pf, "log-format", "log.format")
	withKey(pf, "output", "output")

	root.AddCommand(
		newScoreCommand(a),
		newTrackCommand(a),
		newHistoryCommand(a),
		newConfigCommand(a),
	)
	return root
}

// load merges file, environment and flags and sets up the logger.
func (a *app) load(cmd *cobra.Command) error {
	if err := bindFlags(a.v, cmd.Flags()); err != nil {
		return err
	}
	cfg, err := config.Load(a.v, a.configPath)
	if err != nil {
		return err
	}
	a.cfg = cfg

	log, err := newLogger(cfg.Log, a.stderr)
	if err != nil {
		return err
	}
	a.log = log
	a.log.WithField("command", cmd.Name()).Debug("configuration loaded")
	return nil
}

func newLogger(c config.Log, w io.Writer) (*logrus.Logger, error) {
	log := logrus.New()
	log.SetOutput(w)

	level, err := logrus.ParseLevel(c.Level)
	if err != nil {
		return nil, fmt.Errorf("log level: %w", err)
	}
	log.SetLevel(level)

	switch c.Format {
	case "", "text":
		log.SetFormatter(&logrus.TextFormatter{DisableTimestamp: true})
	case "json":
		log.SetFormatter(&logrus.JSONFormatter{})
	default:
		return nil, fmt.Errorf("unknown log format %q", c.Format)
	}
	return log, nil
}

func (a *app) opener() audiofile.Opener {
	return audiofile.Opener{
		SampleRate:     a.cfg.Analysis.SampleRate,
		ForceTranscode: a.cfg.Input.ForceTranscode,
		Transcoder: &audiofile.Transcoder{
			FFmpegBin:  a.cfg.Input.FFmpeg,
			FFprobeBin: a.cfg.Input.FFprobe,
		},
	}
}
