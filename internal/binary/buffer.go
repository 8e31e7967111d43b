package binary

import (
	"errors"
	"io"
)

// ErrNegativeOffset is returned by Buffer.WriteAt and ReadAt for offsets
// below zero.
var ErrNegativeOffset = errors.New("negative offset")

// Buffer is a growable in-memory byte slice implementing io.WriterAt and
// io.ReaderAt. Writes past the end extend the buffer with zeros.
type Buffer struct {
	buf []byte
}

// NewBuffer returns a Buffer with the given initial capacity.
func NewBuffer(capacity int) *Buffer {
	return &Buffer{buf: make([]byte, 0, capacity)}
}

// WriteAt copies p to the buffer at offset off.
func (b *Buffer) WriteAt(p []byte, off int64) (int, error) {
	if off < 0 {
		return 0, ErrNegativeOffset
	}
	end := int(off) + len(p)
	if end > len(b.buf) {
		if end > cap(b.buf) {
			grown := make([]byte, end, max(end, 2*cap(b.buf)))
			copy(grown, b.buf)
			b.buf = grown
		} else {
			// Zero the gap between the old length and off.
			tail := b.buf[len(b.buf):end]
			clear(tail)
			b.buf = b.buf[:end]
		}
	}
	return copy(b.buf[off:], p), nil
}

// ReadAt reads len(p) bytes from offset off.
func (b *Buffer) ReadAt(p []byte, off int64) (int, error) {
	if off < 0 {
		return 0, ErrNegativeOffset
	}
	if off >= int64(len(b.buf)) {
		return 0, io.EOF
	}
	n := copy(p, b.buf[off:])
	if n < len(p) {
		return n, io.EOF
	}
	return n, nil
}

// Bytes returns the buffer contents. The slice aliases the buffer until the
// next write.
func (b *Buffer) Bytes() []byte {
	return b.buf
}

// Len returns the number of bytes written so far, including any zero gaps.
func (b *Buffer) Len() int {
	return len(b.buf)
}
