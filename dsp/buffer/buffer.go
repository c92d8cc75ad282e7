package buffer

// Buffer is the sample storage of one analysis window.
type Buffer struct {
	data []float64
}

// New allocates a Buffer of n zero samples. Negative n yields an empty buffer.
func New(n int) *Buffer {
	return &Buffer{data: make([]float64, max(n, 0))}
}

// Samples exposes the stored samples. The slice is only valid until the
// buffer is returned to its pool.
func (b *Buffer) Samples() []float64 { return b.data }

// Len returns the number of stored samples.
func (b *Buffer) Len() int { return len(b.data) }

// Fill replaces the contents with src, growing the storage when needed.
func (b *Buffer) Fill(src []float64) {
	b.setLen(len(src))
	copy(b.data, src)
}

// setLen changes the length, keeping the backing array when it is large
// enough.
func (b *Buffer) setLen(n int) {
	n = max(n, 0)
	if n > cap(b.data) {
		b.data = make([]float64, n)
		return
	}
	b.data = b.data[:n]
}

func (b *Buffer) zero() {
	clear(b.data)
}
