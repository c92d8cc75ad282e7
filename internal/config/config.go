// Package config loads the singscore command configuration from a YAML
// file, SINGSCORE_* environment variables and command flags.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/cwbudde/algo-singscore/dsp/core"
)

// EnvPrefix is prepended to every environment override, for example
// SINGSCORE_ANALYSIS_TOLERANCE_HZ.
const EnvPrefix = "SINGSCORE"

// Config is the effective command configuration.
type Config struct {
	Analysis Analysis `mapstructure:"analysis" yaml:"analysis"`
	Input    Input    `mapstructure:"input" yaml:"input"`
	History  History  `mapstructure:"history" yaml:"history"`
	Log      Log      `mapstructure:"log" yaml:"log"`
	// Output is the result format: text, json or yaml.
	Output string `mapstructure:"output" yaml:"output"`
}

// Analysis mirrors core.AnalysisConfig plus facade switches.
type Analysis struct {
	SampleRate    int     `mapstructure:"sample_rate" yaml:"sample_rate"`
	WindowLength  int     `mapstructure:"window_length" yaml:"window_length"`
	Stride        int     `mapstructure:"stride" yaml:"stride"`
	Threshold     float64 `mapstructure:"threshold" yaml:"threshold"`
	ToleranceHz   float64 `mapstructure:"tolerance_hz" yaml:"tolerance_hz"`
	ProgressEvery int     `mapstructure:"progress_every" yaml:"progress_every"`
	Difference    string  `mapstructure:"difference" yaml:"difference"`
	Sequential    bool    `mapstructure:"sequential" yaml:"sequential"`
}

// Input configures how files become PCM.
type Input struct {
	FFmpeg         string `mapstructure:"ffmpeg" yaml:"ffmpeg"`
	FFprobe        string `mapstructure:"ffprobe" yaml:"ffprobe"`
	ForceTranscode bool   `mapstructure:"force_transcode" yaml:"force_transcode"`
}

// History configures score persistence.
type History struct {
	Enabled bool   `mapstructure:"enabled" yaml:"enabled"`
	Path    string `mapstructure:"path" yaml:"path"`
}

// Log configures the command logger.
type Log struct {
	Level  string `mapstructure:"level" yaml:"level"`
	Format string `mapstructure:"format" yaml:"format"`
}

// Default returns the built-in configuration.
func Default() Config {
	a := core.DefaultAnalysisConfig()
	return Config{
		Analysis: Analysis{
			SampleRate:    a.SampleRate,
			WindowLength:  a.WindowLength,
			Stride:        a.Stride,
			Threshold:     a.Threshold,
			ToleranceHz:   a.ToleranceHz,
			ProgressEvery: a.ProgressEvery,
			Difference:    a.Difference.String(),
		},
		Input: Input{
			FFmpeg:  "ffmpeg",
			FFprobe: "ffprobe",
		},
		History: History{
			Path: DefaultHistoryPath(),
		},
		Log: Log{
			Level:  "info",
			Format: "text",
		},
		Output: "text",
	}
}

// DefaultHistoryPath is $XDG_DATA_HOME/singscore/history.db, falling back
// to ~/.local/share.
func DefaultHistoryPath() string {
	dir := os.Getenv("XDG_DATA_HOME")
	if dir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return filepath.Join(".", "singscore-history.db")
		}
		dir = filepath.Join(home, ".local", "share")
	}
	return filepath.Join(dir, "singscore", "history.db")
}

// New returns a viper instance seeded with defaults and environment
// bindings. Flags are bound by the caller.
func New() *viper.Viper {
	v := viper.New()
	setDefaults(v, Default())
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	v.SetConfigType("yaml")
	return v
}

func setDefaults(v *viper.Viper, d Config) {
	v.SetDefault("analysis.sample_rate", d.Analysis.SampleRate)
	v.SetDefault("analysis.window_length", d.Analysis.WindowLength)
	v.SetDefault("analysis.stride", d.Analysis.Stride)
	v.SetDefault("analysis.threshold", d.Analysis.Threshold)
	v.SetDefault("analysis.tolerance_hz", d.Analysis.ToleranceHz)
	v.SetDefault("analysis.progress_every", d.Analysis.ProgressEvery)
	v.SetDefault("analysis.difference", d.Analysis.Difference)
	v.SetDefault("analysis.sequential", d.Analysis.Sequential)
	v.SetDefault("input.ffmpeg", d.Input.FFmpeg)
	v.SetDefault("input.ffprobe", d.Input.FFprobe)
	v.SetDefault("input.force_transcode", d.Input.ForceTranscode)
	v.SetDefault("history.enabled", d.History.Enabled)
	v.SetDefault("history.path", d.History.Path)
	v.SetDefault("log.level", d.Log.Level)
	v.SetDefault("log.format", d.Log.Format)
	v.SetDefault("output", d.Output)
}

// Load reads the config file and decodes the merged settings. An explicit
// path must exist; without one, singscore.yaml is looked up in the working
// directory and in $XDG_CONFIG_HOME/singscore and a missing file is fine.
func Load(v *viper.Viper, path string) (Config, error) {
	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("singscore")
		v.AddConfigPath(".")
		if dir, err := os.UserConfigDir(); err == nil {
			v.AddConfigPath(filepath.Join(dir, "singscore"))
		}
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &notFound) {
			return Config{}, fmt.Errorf("config: read: %w", err)
		}
	}

	var c Config
	if err := v.Unmarshal(&c); err != nil {
		return Config{}, fmt.Errorf("config: decode: %w", err)
	}
	if err := c.Validate(); err != nil {
		return Config{}, err
	}
	return c, nil
}

// Validate checks the analysis settings and the output format.
func (c Config) Validate() error {
	if _, err := c.AnalysisConfig(); err != nil {
		return fmt.Errorf("config: %w", err)
	}
	switch c.Output {
	case "text", "json", "yaml":
	default:
		return fmt.Errorf("config: unknown output format %q", c.Output)
	}
	return nil
}

// AnalysisConfig converts the analysis section into a validated
// core.AnalysisConfig.
func (c Config) AnalysisConfig() (core.AnalysisConfig, error) {
	method, err := core.ParseDifferenceMethod(c.Analysis.Difference)
	if err != nil {
		return core.AnalysisConfig{}, err
	}
	cfg := core.ApplyAnalysisOptions(
		core.WithSampleRate(c.Analysis.SampleRate),
		core.WithWindowLength(c.Analysis.WindowLength),
		core.WithStride(c.Analysis.Stride),
		core.WithThreshold(c.Analysis.Threshold),
		core.WithToleranceHz(c.Analysis.ToleranceHz),
		core.WithProgressEvery(c.Analysis.ProgressEvery),
		core.WithDifference(method),
	)
	if err := cfg.Validate(); err != nil {
		return core.AnalysisConfig{}, err
	}
	return cfg, nil
}

// YAML renders c as a YAML document.
func (c Config) YAML() ([]byte, error) {
	out, err := yaml.Marshal(c)
	if err != nil {
		return nil, fmt.Errorf("config: encode: %w", err)
	}
	return out, nil
}
