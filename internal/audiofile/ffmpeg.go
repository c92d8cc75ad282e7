package audiofile

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os/exec"
	"strconv"
	"strings"
	"sync"
)

// Transcoder decodes arbitrary audio with ffmpeg and probes it with ffprobe.
type Transcoder struct {
	// FFmpegBin and FFprobeBin default to "ffmpeg" and "ffprobe".
	FFmpegBin  string
	FFprobeBin string
}

func (t *Transcoder) ffmpeg() string {
	if t.FFmpegBin != "" {
		return t.FFmpegBin
	}
	return "ffmpeg"
}

func (t *Transcoder) ffprobe() string {
	if t.FFprobeBin != "" {
		return t.FFprobeBin
	}
	return "ffprobe"
}

// Args returns the ffmpeg arguments that decode in to s16le mono at
// sampleRate on stdout.
func Args(in string, sampleRate int) []string {
	return []string{
		"-hide_banner", "-nostats", "-loglevel", "error",
		"-vn", "-i", in,
		"-f", "s16le", "-acodec", "pcm_s16le",
		"-ac", "1", "-ar", strconv.Itoa(sampleRate),
		"pipe:1",
	}
}

// Open starts ffmpeg on path and streams its output. The duration comes
// from ffprobe and is left at 0 if probing fails. Cancelling ctx kills the
// process.
func (t *Transcoder) Open(ctx context.Context, path string, sampleRate int) (*Stream, error) {
	var durationMs int64
	if p, err := t.Probe(ctx, path); err == nil {
		durationMs = p.DurationMs()
	}

	cmd := exec.CommandContext(ctx, t.ffmpeg(), Args(path, sampleRate)...)
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return nil, fmt.Errorf("audiofile: ffmpeg stdout: %w", err)
	}
	pr := &processReader{cmd: cmd, stdout: stdout}
	cmd.Stderr = &pr.stderr
	if err := cmd.Start(); err != nil {
		return nil, fmt.Errorf("audiofile: start %s: %w", t.ffmpeg(), err)
	}

	return &Stream{
		ReadCloser: pr,
		Path:       path,
		SampleRate: sampleRate,
		DurationMs: durationMs,
		Decoder:    "ffmpeg",
	}, nil
}

// processReader reads a child's stdout and reports its exit status at EOF.
type processReader struct {
	cmd    *exec.Cmd
	stdout io.ReadCloser
	stderr bytes.Buffer

	once    sync.Once
	waitErr error
}

func (p *processReader) Read(b []byte) (int, error) {
	n, err := p.stdout.Read(b)
	if errors.Is(err, io.EOF) {
		if werr := p.wait(); werr != nil {
			return n, werr
		}
	}
	return n, err
}

// Close stops the process if it is still running and reaps it.
func (p *processReader) Close() error {
	if p.cmd.ProcessState == nil && p.cmd.Process != nil {
		_ = p.cmd.Process.Kill()
	}
	err := p.wait()
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		// Killed on purpose or already reported through Read.
		return nil
	}
	return err
}

func (p *processReader) wait() error {
	p.once.Do(func() {
		if err := p.cmd.Wait(); err != nil {
			msg := strings.TrimSpace(p.stderr.String())
			if msg != "" {
				p.waitErr = fmt.Errorf("audiofile: ffmpeg: %w: %s", err, msg)
			} else {
				p.waitErr = fmt.Errorf("audiofile: ffmpeg: %w", err)
			}
		}
	})
	return p.waitErr
}

// Probe is the subset of ffprobe output the analysis needs.
type Probe struct {
	FormatName string
	Duration   float64 // seconds
	SampleRate int
	Channels   int
	BitDepth   int
}

// DurationMs returns Duration in whole milliseconds.
func (p Probe) DurationMs() int64 {
	if p.Duration <= 0 {
		return 0
	}
	return int64(p.Duration * 1000)
}

// Probe runs ffprobe on path.
func (t *Transcoder) Probe(ctx context.Context, path string) (Probe, error) {
	args := []string{"-v", "error", "-show_format", "-show_streams", "-of", "json", path}
	var stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, t.ffprobe(), args...)
	cmd.Stderr = &stderr
	out, err := cmd.Output()
	if err != nil {
		return Probe{}, fmt.Errorf("audiofile: ffprobe %s: %w: %s", path, err, strings.TrimSpace(stderr.String()))
	}
	return ParseProbe(out)
}

// ParseProbe decodes `ffprobe -show_format -show_streams -of json` output.
// The first audio stream supplies rate, channels and bit depth.
func ParseProbe(data []byte) (Probe, error) {
	var ff struct {
		Format struct {
			FormatName string `json:"format_name"`
			Duration   string `json:"duration"`
		} `json:"format"`
		Streams []struct {
			CodecType        string `json:"codec_type"`
			SampleRate       string `json:"sample_rate"`
			Channels         int    `json:"channels"`
			BitsPerRawSample string `json:"bits_per_raw_sample"`
			BitsPerSample    int    `json:"bits_per_sample"`
			Duration         string `json:"duration"`
		} `json:"streams"`
	}
	if err := json.Unmarshal(data, &ff); err != nil {
		return Probe{}, fmt.Errorf("audiofile: parse ffprobe output: %w", err)
	}

	p := Probe{
		FormatName: ff.Format.FormatName,
		Duration:   parseFloat(ff.Format.Duration),
	}
	for _, s := range ff.Streams {
		if s.CodecType != "audio" {
			continue
		}
		p.SampleRate = parseInt(s.SampleRate)
		p.Channels = s.Channels
		if s.BitsPerSample > 0 {
			p.BitDepth = s.BitsPerSample
		} else {
			p.BitDepth = parseInt(s.BitsPerRawSample)
		}
		if p.Duration <= 0 {
			p.Duration = parseFloat(s.Duration)
		}
		return p, nil
	}
	return p, fmt.Errorf("audiofile: no audio stream")
}

func parseFloat(s string) float64 {
	v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return 0
	}
	return v
}

func parseInt(s string) int {
	v, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return 0
	}
	return v
}
