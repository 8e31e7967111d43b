package transpose

import (
	"fmt"
	"math"
	"math/bits"
	"sync"
)

// Scratch buffers up to this size are recycled between calls.
const poolMaxCap = 4 << 20

// maxScratch caps a single scratch allocation. Tests lower it to exercise
// the out-of-memory path.
var maxScratch = math.MaxInt

var scratchPool sync.Pool

// scratch is a buffer owned by exactly one orchestrator call between
// acquireScratch and release.
type scratch struct {
	buf    []byte
	pooled *[]byte
}

// acquireScratch returns a buffer of size*elemSize bytes. The contents are
// unspecified; every stage overwrites the whole buffer.
func acquireScratch(size, elemSize int) (*scratch, error) {
	hi, n := bits.Mul(uint(size), uint(elemSize))
	if hi != 0 || n > uint(maxScratch) {
		return nil, fmt.Errorf("%w: %d elements of %d bytes", ErrOutOfMemory, size, elemSize)
	}

	if n <= poolMaxCap {
		if p, ok := scratchPool.Get().(*[]byte); ok {
			if uint(cap(*p)) >= n {
				return &scratch{buf: (*p)[:n], pooled: p}, nil
			}
			scratchPool.Put(p)
		}
	}

	buf, err := allocate(int(n))
	if err != nil {
		return nil, err
	}
	return &scratch{buf: buf}, nil
}

// allocate converts an allocator refusal into ErrOutOfMemory.
func allocate(n int) (buf []byte, err error) {
	defer func() {
		if r := recover(); r != nil {
			buf, err = nil, fmt.Errorf("%w: %d bytes: %v", ErrOutOfMemory, n, r)
		}
	}()
	return make([]byte, n), nil
}

func (s *scratch) release() {
	p := s.pooled
	if p == nil && cap(s.buf) > 0 && cap(s.buf) <= poolMaxCap {
		p = new([]byte)
		*p = s.buf
	}
	if p != nil {
		*p = (*p)[:0]
		scratchPool.Put(p)
	}
	s.buf, s.pooled = nil, nil
}
