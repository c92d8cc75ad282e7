package pcm

import (
	"errors"
	"io"

	"github.com/cwbudde/algo-singscore/dsp/buffer"
	"github.com/cwbudde/algo-singscore/dsp/core"
	"github.com/cwbudde/algo-vecmath"
)

const int16Scale = 1.0 / 32768.0

var errShortRead = errors.New("pcm: short read")

// Window is one analysis frame. Its storage belongs to the FrameSource that
// produced it and must be handed back with Release once estimated.
type Window struct {
	// Index is the 0-based ordinal of the window in stream order.
	Index int
	// Start is the offset of the first sample in the stream.
	Start int64
	// SampleRate is the rate the samples were recorded at.
	SampleRate int

	buf *buffer.Buffer
}

// Samples returns the normalized window samples.
func (w Window) Samples() []float64 {
	if w.buf == nil {
		return nil
	}
	return w.buf.Samples()
}

// Len returns the number of samples in the window.
func (w Window) Len() int {
	if w.buf == nil {
		return 0
	}
	return w.buf.Len()
}

// SourceOption configures a FrameSource.
type SourceOption func(*FrameSource)

// WithPool makes the source draw window storage from p.
func WithPool(p *buffer.Pool) SourceOption {
	return func(s *FrameSource) {
		if p != nil {
			s.pool = p
		}
	}
}

// FrameSource reads PCM from an io.Reader and yields overlapping windows.
//
// The stream is consumed monotonically and never rewound. A FrameSource is
// not safe for concurrent use.
type FrameSource struct {
	r          io.Reader
	sampleRate int
	windowLen  int
	stride     int
	pool       *buffer.Pool

	history []float64
	raw     []byte
	ints    []float64
	index   int
	start   int64
	done    bool
	closed  bool
}

// NewFrameSource validates cfg and returns a source over r.
// Only SampleRate, WindowLength and Stride of cfg are used.
func NewFrameSource(r io.Reader, cfg core.AnalysisConfig, opts ...SourceOption) (*FrameSource, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if r == nil {
		return nil, core.Errorf(core.KindInvalidConfiguration, "pcm.new", "reader must not be nil")
	}

	s := &FrameSource{
		r:          r,
		sampleRate: cfg.SampleRate,
		windowLen:  cfg.WindowLength,
		stride:     cfg.Stride,
		history:    make([]float64, cfg.WindowLength),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}
	if s.pool == nil {
		s.pool = buffer.NewPool()
	}
	return s, nil
}

// SampleRate returns the configured sample rate in Hz.
func (s *FrameSource) SampleRate() int { return s.sampleRate }

// WindowLength returns the window length in samples.
func (s *FrameSource) WindowLength() int { return s.windowLen }

// Stride returns the offset between consecutive window starts in samples.
func (s *FrameSource) Stride() int { return s.stride }

// NextWindow returns the next full window. ok is false once fewer than a
// window's worth of samples remain; from then on every call returns false.
// A failed read of the underlying stream returns a KindIO error.
func (s *FrameSource) NextWindow() (w Window, ok bool, err error) {
	if s.done {
		return Window{}, false, nil
	}

	if s.index == 0 {
		err = s.readSamples(s.history)
	} else {
		keep := s.windowLen - s.stride
		copy(s.history, s.history[s.stride:])
		err = s.readSamples(s.history[keep:])
	}
	if err != nil {
		s.done = true
		if errors.Is(err, errShortRead) {
			return Window{}, false, nil
		}
		return Window{}, false, core.NewError(core.KindIO, "pcm.next", err)
	}

	buf := s.pool.Get(s.windowLen)
	buf.Fill(s.history)

	w = Window{
		Index:      s.index,
		Start:      s.start,
		SampleRate: s.sampleRate,
		buf:        buf,
	}
	s.index++
	s.start += int64(s.stride)
	return w, true, nil
}

// Release returns the window's storage to the pool. The window must not be
// used afterwards.
func (s *FrameSource) Release(w Window) {
	s.pool.Put(w.buf)
}

// Close stops the source and closes the underlying reader if it is an
// io.Closer. It is safe to call Close more than once.
func (s *FrameSource) Close() error {
	if s.closed {
		return nil
	}
	s.closed = true
	s.done = true
	if c, ok := s.r.(io.Closer); ok {
		if err := c.Close(); err != nil {
			return core.NewError(core.KindIO, "pcm.close", err)
		}
	}
	return nil
}

func (s *FrameSource) readSamples(dst []float64) error {
	need := 2 * len(dst)
	if cap(s.raw) < need {
		s.raw = make([]byte, need)
	}
	raw := s.raw[:need]

	if _, err := io.ReadFull(s.r, raw); err != nil {
		if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
			return errShortRead
		}
		return err
	}

	s.ints = core.EnsureLen(s.ints, len(dst))
	DecodeInt16LE(s.ints, raw)
	vecmath.ScaleBlock(dst, s.ints, int16Scale)
	return nil
}

// DecodeInt16LE converts little-endian signed 16-bit samples in src into
// unscaled float64 values in dst and returns the number of samples written.
func DecodeInt16LE(dst []float64, src []byte) int {
	n := len(src) / 2
	if len(dst) < n {
		n = len(dst)
	}
	for i := 0; i < n; i++ {
		dst[i] = float64(int16(uint16(src[2*i]) | uint16(src[2*i+1])<<8))
	}
	return n
}

// TotalExpectedWindows estimates the window count of a recording for progress
// reporting only. It returns 0 for unknown or invalid inputs.
func TotalExpectedWindows(durationMs int64, sampleRate, windowLen int) int {
	if durationMs <= 0 || sampleRate <= 0 || windowLen <= 0 {
		return 0
	}
	return int((durationMs * int64(sampleRate) / 1000) / int64(windowLen))
}
