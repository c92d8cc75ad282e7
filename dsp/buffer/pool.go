package buffer

import (
	"sync"
	"sync/atomic"
)

// Pool recycles window buffers and keeps count of the ones in use, which
// lets tests check that every window handed out was released.
type Pool struct {
	free  sync.Pool
	inUse atomic.Int64
}

// NewPool returns an empty Pool.
func NewPool() *Pool {
	p := &Pool{}
	p.free.New = func() any { return new(Buffer) }
	return p
}

// Get hands out a zeroed buffer of n samples. It must be given back with Put.
func (p *Pool) Get(n int) *Buffer {
	b := p.free.Get().(*Buffer)
	b.setLen(n)
	b.zero()
	p.inUse.Add(1)
	return b
}

// Put takes b back. b must not be touched afterwards. Put(nil) is a no-op.
func (p *Pool) Put(b *Buffer) {
	if b == nil {
		return
	}
	p.inUse.Add(-1)
	p.free.Put(b)
}

// Outstanding reports how many buffers are out between Get and Put.
func (p *Pool) Outstanding() int64 { return p.inUse.Load() }
