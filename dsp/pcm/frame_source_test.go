package pcm

import (
	"bytes"
	"errors"
	"io"
	"testing"

	"github.com/cwbudde/algo-singscore/dsp/buffer"
	"github.com/cwbudde/algo-singscore/dsp/core"
	"github.com/cwbudde/algo-singscore/internal/testutil"
)

func newSource(t *testing.T, data []byte, window, stride int) *FrameSource {
	t.Helper()
	cfg := core.ApplyAnalysisOptions(core.WithWindowLength(window), core.WithStride(stride))
	s, err := NewFrameSource(bytes.NewReader(data), cfg)
	if err != nil {
		t.Fatalf("NewFrameSource() error = %v", err)
	}
	return s
}

func countWindows(t *testing.T, s *FrameSource) int {
	t.Helper()
	n := 0
	for {
		w, ok, err := s.NextWindow()
		if err != nil {
			t.Fatalf("NextWindow() error = %v", err)
		}
		if !ok {
			return n
		}
		if w.Index != n {
			t.Fatalf("window index = %d, want %d", w.Index, n)
		}
		if w.Len() != s.WindowLength() {
			t.Fatalf("short window: len %d", w.Len())
		}
		s.Release(w)
		n++
	}
}

func TestNewFrameSourceRejectsInvalidConfig(t *testing.T) {
	tests := []struct {
		name string
		cfg  core.AnalysisConfig
	}{
		{name: "zero rate", cfg: core.ApplyAnalysisOptions(core.WithSampleRate(0))},
		{name: "negative window", cfg: core.ApplyAnalysisOptions(core.WithWindowLength(-2048))},
		{name: "stride above window", cfg: core.ApplyAnalysisOptions(core.WithWindowLength(512), core.WithStride(1024))},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewFrameSource(bytes.NewReader(nil), tt.cfg)
			if !errors.Is(err, core.ErrInvalidConfiguration) {
				t.Fatalf("error = %v, want invalid configuration", err)
			}
		})
	}
}

func TestNextWindowCountNonOverlapping(t *testing.T) {
	for _, total := range []int{0, 1, 2047, 2048, 2049, 4096, 10000} {
		s := newSource(t, testutil.SilencePCM16(total), 2048, 2048)
		if got, want := countWindows(t, s), total/2048; got != want {
			t.Fatalf("total %d: windows = %d, want %d", total, got, want)
		}
	}
}

func TestNextWindowCountOverlapping(t *testing.T) {
	for _, total := range []int{0, 2047, 2048, 3071, 3072, 10000} {
		s := newSource(t, testutil.SilencePCM16(total), 2048, 1024)
		want := 0
		if total >= 2048 {
			want = (total-2048)/1024 + 1
		}
		if got := countWindows(t, s); got != want {
			t.Fatalf("total %d: windows = %d, want %d", total, got, want)
		}
	}
}

func TestNextWindowReturnsFalseRepeatedly(t *testing.T) {
	s := newSource(t, testutil.SilencePCM16(100), 64, 64)
	countWindows(t, s)
	for i := 0; i < 3; i++ {
		if _, ok, err := s.NextWindow(); ok || err != nil {
			t.Fatalf("call %d after end: ok=%v err=%v", i, ok, err)
		}
	}
}

func TestNextWindowOverlapSharesSamples(t *testing.T) {
	samples := make([]float64, 12)
	for i := range samples {
		samples[i] = float64(i+1) / 32767
	}
	s := newSource(t, testutil.PCM16(samples), 8, 4)

	first, ok, err := s.NextWindow()
	if !ok || err != nil {
		t.Fatalf("first window: ok=%v err=%v", ok, err)
	}
	a := append([]float64(nil), first.Samples()...)
	s.Release(first)

	second, ok, err := s.NextWindow()
	if !ok || err != nil {
		t.Fatalf("second window: ok=%v err=%v", ok, err)
	}
	if second.Start != 4 {
		t.Fatalf("second.Start = %d, want 4", second.Start)
	}
	testutil.RequireSliceNearlyEqual(t, second.Samples()[:4], a[4:], 0)
	s.Release(second)

	if _, ok, _ := s.NextWindow(); ok {
		t.Fatalf("expected no third window from 12 samples")
	}
}

func TestNextWindowNormalizesSamples(t *testing.T) {
	raw := []byte{0x00, 0x80, 0xff, 0x7f, 0x00, 0x00, 0x00, 0x40}
	s := newSource(t, raw, 4, 4)
	w, ok, err := s.NextWindow()
	if !ok || err != nil {
		t.Fatalf("NextWindow: ok=%v err=%v", ok, err)
	}
	want := []float64{-1, 32767.0 / 32768.0, 0, 0.5}
	testutil.RequireSliceNearlyEqual(t, w.Samples(), want, 1e-12)
}

func TestNextWindowPropagatesReadError(t *testing.T) {
	boom := errors.New("disk gone")
	cfg := core.ApplyAnalysisOptions(core.WithWindowLength(64), core.WithStride(64))
	s, err := NewFrameSource(testutil.NewFailingReader(testutil.SilencePCM16(64), boom), cfg)
	if err != nil {
		t.Fatalf("NewFrameSource() error = %v", err)
	}

	w, ok, err := s.NextWindow()
	if !ok || err != nil {
		t.Fatalf("first window: ok=%v err=%v", ok, err)
	}
	s.Release(w)

	_, ok, err = s.NextWindow()
	if ok {
		t.Fatalf("expected no window after failure")
	}
	if !errors.Is(err, core.ErrIO) || !errors.Is(err, boom) {
		t.Fatalf("error = %v, want KindIO wrapping cause", err)
	}
}

func TestFrameSourceUsesPoolAndCloses(t *testing.T) {
	pool := buffer.NewPool()
	r := testutil.NewTrackingReader(testutil.SilencePCM16(256))
	cfg := core.ApplyAnalysisOptions(core.WithWindowLength(64), core.WithStride(32))
	s, err := NewFrameSource(r, cfg, WithPool(pool))
	if err != nil {
		t.Fatalf("NewFrameSource() error = %v", err)
	}

	w, _, _ := s.NextWindow()
	if pool.Outstanding() != 1 {
		t.Fatalf("Outstanding() = %d, want 1", pool.Outstanding())
	}
	s.Release(w)
	if pool.Outstanding() != 0 {
		t.Fatalf("Outstanding() = %d, want 0", pool.Outstanding())
	}

	if err := s.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}
	if err := s.Close(); err != nil {
		t.Fatalf("second Close() error = %v", err)
	}
	if !r.Closed() {
		t.Fatalf("underlying reader not closed")
	}
	if _, ok, _ := s.NextWindow(); ok {
		t.Fatalf("closed source yielded a window")
	}
}

func TestDecodeInt16LE(t *testing.T) {
	dst := make([]float64, 2)
	n := DecodeInt16LE(dst, []byte{0x01, 0x00, 0xfe, 0xff, 0x09})
	if n != 2 || dst[0] != 1 || dst[1] != -2 {
		t.Fatalf("DecodeInt16LE = %d %v", n, dst)
	}
}

func TestTotalExpectedWindows(t *testing.T) {
	tests := []struct {
		durationMs int64
		rate, win  int
		want       int
	}{
		{durationMs: 1000, rate: 44100, win: 2048, want: 21},
		{durationMs: 60000, rate: 44100, win: 2048, want: 1291},
		{durationMs: 10, rate: 44100, win: 2048, want: 0},
		{durationMs: 0, rate: 44100, win: 2048, want: 0},
		{durationMs: 1000, rate: 0, win: 2048, want: 0},
		{durationMs: 1000, rate: 44100, win: 0, want: 0},
	}
	for _, tt := range tests {
		if got := TotalExpectedWindows(tt.durationMs, tt.rate, tt.win); got != tt.want {
			t.Fatalf("TotalExpectedWindows(%d, %d, %d) = %d, want %d",
				tt.durationMs, tt.rate, tt.win, got, tt.want)
		}
	}
}

var _ io.Closer = (*FrameSource)(nil)
