package audiofile

import (
	"fmt"
	"io"
	"os"

	"github.com/go-audio/wav"
)

const (
	defaultSampleRate = 44100
	wavFormatPCM      = 1
)

// WAVInfo is the header information of a WAV file.
type WAVInfo struct {
	SampleRate int
	Channels   int
	BitDepth   int
	Format     int
	// DataBytes is the size of the PCM data chunk.
	DataBytes int64
}

// DurationMs derives the duration from the data chunk size.
func (i WAVInfo) DurationMs() int64 {
	frameBytes := int64(i.Channels * i.BitDepth / 8)
	if i.SampleRate <= 0 || frameBytes <= 0 {
		return 0
	}
	return i.DataBytes / frameBytes * 1000 / int64(i.SampleRate)
}

// passthrough reports whether the data chunk is already s16le mono.
func (i WAVInfo) passthrough() bool {
	return i.Format == wavFormatPCM && i.Channels == 1 && i.BitDepth == 16
}

// ReadWAVInfo parses the header of the WAV file at path.
func ReadWAVInfo(path string) (WAVInfo, error) {
	f, err := os.Open(path)
	if err != nil {
		return WAVInfo{}, fmt.Errorf("audiofile: open %s: %w", path, err)
	}
	defer f.Close()

	_, info, err := decodeHeader(f)
	if err != nil {
		return WAVInfo{}, fmt.Errorf("audiofile: %s: %w", path, err)
	}
	return info, nil
}

// OpenWAV opens a mono 16-bit PCM WAV file and streams its data chunk.
// Other layouts return ErrUnsupportedWAV so the caller can transcode.
func OpenWAV(path string) (*Stream, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("audiofile: open %s: %w", path, err)
	}

	dec, info, err := decodeHeader(f)
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("audiofile: %s: %w", path, err)
	}
	if !info.passthrough() {
		f.Close()
		return nil, fmt.Errorf("%w: %s is %d-channel %d-bit format %d",
			ErrUnsupportedWAV, path, info.Channels, info.BitDepth, info.Format)
	}

	return &Stream{
		ReadCloser: readCloser{Reader: io.LimitReader(dec.PCMChunk, info.DataBytes), Closer: f},
		Path:       path,
		SampleRate: info.SampleRate,
		DurationMs: info.DurationMs(),
		Decoder:    "wav",
	}, nil
}

// decodeHeader reads the format chunk and leaves r positioned at the start
// of the PCM data.
func decodeHeader(r io.ReadSeeker) (*wav.Decoder, WAVInfo, error) {
	dec := wav.NewDecoder(r)
	if !dec.IsValidFile() {
		if err := dec.Err(); err != nil {
			return nil, WAVInfo{}, fmt.Errorf("invalid wav file: %w", err)
		}
		return nil, WAVInfo{}, fmt.Errorf("invalid wav file")
	}
	if err := dec.FwdToPCM(); err != nil {
		return nil, WAVInfo{}, fmt.Errorf("seek to pcm data: %w", err)
	}
	if dec.PCMChunk == nil {
		return nil, WAVInfo{}, fmt.Errorf("no pcm data chunk")
	}
	info := WAVInfo{
		SampleRate: int(dec.SampleRate),
		Channels:   int(dec.NumChans),
		BitDepth:   int(dec.BitDepth),
		Format:     int(dec.WavAudioFormat),
		DataBytes:  int64(dec.PCMChunk.Size),
	}
	return dec, info, nil
}

type readCloser struct {
	io.Reader
	io.Closer
}
