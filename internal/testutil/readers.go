package testutil

import (
	"bytes"
	"io"
	"sync/atomic"
)

// FailingReader serves data and then fails every subsequent read with Err.
type FailingReader struct {
	r   *bytes.Reader
	Err error
}

// NewFailingReader returns a reader that yields data and then err.
func NewFailingReader(data []byte, err error) *FailingReader {
	return &FailingReader{r: bytes.NewReader(data), Err: err}
}

func (f *FailingReader) Read(p []byte) (int, error) {
	if f.r.Len() == 0 {
		return 0, f.Err
	}
	return f.r.Read(p)
}

// TrackingReader wraps a reader and records whether Close was called.
type TrackingReader struct {
	io.Reader
	closes atomic.Int32
}

// NewTrackingReader wraps data in a TrackingReader.
func NewTrackingReader(data []byte) *TrackingReader {
	return &TrackingReader{Reader: bytes.NewReader(data)}
}

// Close records the call and always succeeds.
func (t *TrackingReader) Close() error {
	t.closes.Add(1)
	return nil
}

// Closed reports whether Close was called at least once.
func (t *TrackingReader) Closed() bool {
	return t.closes.Load() > 0
}
