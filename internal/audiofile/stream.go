package audiofile

import (
	"context"
	"errors"
	"io"
	"path/filepath"
	"strings"
)

// ErrUnsupportedWAV is returned by OpenWAV for WAV files that are not mono
// 16-bit integer PCM.
var ErrUnsupportedWAV = errors.New("audiofile: unsupported wav layout")

// Stream is an opened recording: raw s16le mono PCM plus what is known
// about it. Closing it releases the file or the transcoder process.
type Stream struct {
	io.ReadCloser

	Path       string
	SampleRate int
	// DurationMs is 0 when the duration could not be determined.
	DurationMs int64
	// Decoder names how the PCM is produced: "wav" or "ffmpeg".
	Decoder string
}

// Opener opens files for analysis. The zero value passes WAV files through
// and transcodes everything else with ffmpeg found on PATH.
type Opener struct {
	// SampleRate is the rate requested from the transcoder. WAV files keep
	// their own rate. 0 means 44100.
	SampleRate int
	// Transcoder is used for non-WAV input and for WAV layouts that cannot be
	// passed through. nil means a Transcoder with default binaries.
	Transcoder *Transcoder
	// ForceTranscode sends WAV files through the transcoder as well, so that
	// every stream ends up at SampleRate.
	ForceTranscode bool
}

// Open opens path and returns its PCM stream.
func (o Opener) Open(ctx context.Context, path string) (*Stream, error) {
	if !o.ForceTranscode && strings.EqualFold(filepath.Ext(path), ".wav") {
		s, err := OpenWAV(path)
		if err == nil {
			return s, nil
		}
		if !errors.Is(err, ErrUnsupportedWAV) {
			return nil, err
		}
	}
	return o.transcoder().Open(ctx, path, o.sampleRate())
}

func (o Opener) sampleRate() int {
	if o.SampleRate > 0 {
		return o.SampleRate
	}
	return defaultSampleRate
}

func (o Opener) transcoder() *Transcoder {
	if o.Transcoder != nil {
		return o.Transcoder
	}
	return &Transcoder{}
}
