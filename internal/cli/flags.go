package cli

import (
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

const configKeyAnnotation = "singscore_config_key"

// withKey marks a flag as an override for a config key. The binding happens
// in bindFlags once the running subcommand is known, so that subcommands can
// share keys.
func withKey(fs *pflag.FlagSet, name, key string) {
	if err := fs.SetAnnotation(name, configKeyAnnotation, []string{key}); err != nil {
		panic(err)
	}
}

// bindFlags binds every annotated flag of the running command. An explicitly
// set flag wins over the file and the environment.
func bindFlags(v *viper.Viper, fs *pflag.FlagSet) error {
	var err error
	fs.VisitAll(func(f *pflag.Flag) {
		keys := f.Annotations[configKeyAnnotation]
		if len(keys) == 0 || err != nil {
			return
		}
		err = v.BindPFlag(keys[0], f)
	})
	return err
}

// addAnalysisFlags registers the analysis overrides shared by score and track.
func addAnalysisFlags(fs *pflag.FlagSet) {
	fs.Int("sample-rate", 44100, "sample rate requested from the transcoder")
	fs.Int("window", 2048, "analysis window length in samples")
	fs.Int("stride", 1024, "hop between windows in samples")
	fs.Float64("threshold", 0.15, "YIN voicing threshold")
	fs.String("difference", "direct", "difference function: direct or fft")
	fs.Bool("force-transcode", false, "decode WAV input with ffmpeg too")

	withKey(fs, "sample-rate", "analysis.sample_rate")
	withKey(fs, "window", "analysis.window_length")
	withKey(fs, "stride", "analysis.stride")
	withKey(fs, "threshold", "analysis.threshold")
	withKey(fs, "difference", "analysis.difference")
	withKey(fs, "force-transcode", "input.force_transcode")
}
