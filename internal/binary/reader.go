// Package binary provides the low-level encoding used by the frame
// container: fixed-order integer readers and writers with a configurable
// offset width, an in-memory io.WriterAt and checksums.
package binary

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
)

// ErrInvalidOffsetSize is returned when an offset width other than 2, 4 or 8
// is configured.
var ErrInvalidOffsetSize = errors.New("invalid offset size: must be 2, 4, or 8")

// Config holds reader and writer configuration, typically taken from a frame
// header.
type Config struct {
	ByteOrder  binary.ByteOrder
	OffsetSize int // 2, 4, or 8 bytes
}

// DefaultConfig returns little-endian byte order with 8-byte offsets.
func DefaultConfig() Config {
	return Config{
		ByteOrder:  binary.LittleEndian,
		OffsetSize: 8,
	}
}

// Validate checks the offset width.
func (c Config) Validate() error {
	switch c.OffsetSize {
	case 2, 4, 8:
		return nil
	}
	return fmt.Errorf("%w: got %d", ErrInvalidOffsetSize, c.OffsetSize)
}

// MaxOffset returns the largest value an offset of the configured width
// can hold.
func (c Config) MaxOffset() uint64 {
	if c.OffsetSize >= 8 {
		return ^uint64(0)
	}
	return 1<<(8*uint(c.OffsetSize)) - 1
}

// Reader decodes integers from an io.ReaderAt, tracking its own position.
type Reader struct {
	r          io.ReaderAt
	order      binary.ByteOrder
	offsetSize int
	pos        int64
}

// NewReader creates a binary reader with the given configuration.
func NewReader(r io.ReaderAt, cfg Config) *Reader {
	return &Reader{
		r:          r,
		order:      cfg.ByteOrder,
		offsetSize: cfg.OffsetSize,
	}
}

// At returns a new reader positioned at the given offset.
// The new reader shares the underlying io.ReaderAt but has independent position.
func (r *Reader) At(offset int64) *Reader {
	return &Reader{
		r:          r.r,
		order:      r.order,
		offsetSize: r.offsetSize,
		pos:        offset,
	}
}

// WithOffsetSize returns a reader at the same position using a different
// offset width, once the width has been read from a header.
func (r *Reader) WithOffsetSize(offsetSize int) *Reader {
	nr := r.At(r.pos)
	nr.offsetSize = offsetSize
	return nr
}

// Pos returns the current read position.
func (r *Reader) Pos() int64 {
	return r.pos
}

// ReadBytes reads exactly n bytes from the current position. A short read is
// reported as io.ErrUnexpectedEOF.
func (r *Reader) ReadBytes(n int) ([]byte, error) {
	if n <= 0 {
		return nil, nil
	}
	buf := make([]byte, n)
	read, err := r.r.ReadAt(buf, r.pos)
	if read < n {
		if err == nil || errors.Is(err, io.EOF) {
			err = io.ErrUnexpectedEOF
		}
		return nil, err
	}
	r.pos += int64(n)
	return buf, nil
}

// ReadUint8 reads an unsigned 8-bit integer.
func (r *Reader) ReadUint8() (uint8, error) {
	buf, err := r.ReadBytes(1)
	if err != nil {
		return 0, err
	}
	return buf[0], nil
}

// ReadUint16 reads an unsigned 16-bit integer.
func (r *Reader) ReadUint16() (uint16, error) {
	buf, err := r.ReadBytes(2)
	if err != nil {
		return 0, err
	}
	return r.order.Uint16(buf), nil
}

// ReadUint32 reads an unsigned 32-bit integer.
func (r *Reader) ReadUint32() (uint32, error) {
	buf, err := r.ReadBytes(4)
	if err != nil {
		return 0, err
	}
	return r.order.Uint32(buf), nil
}

// ReadUint64 reads an unsigned 64-bit integer.
func (r *Reader) ReadUint64() (uint64, error) {
	buf, err := r.ReadBytes(8)
	if err != nil {
		return 0, err
	}
	return r.order.Uint64(buf), nil
}

// ReadOffset reads an offset or length using the configured offset width.
func (r *Reader) ReadOffset() (uint64, error) {
	buf, err := r.ReadBytes(r.offsetSize)
	if err != nil {
		return 0, err
	}
	switch r.offsetSize {
	case 2:
		return uint64(r.order.Uint16(buf)), nil
	case 4:
		return uint64(r.order.Uint32(buf)), nil
	default:
		return r.order.Uint64(buf), nil
	}
}

// Skip advances the position by n bytes.
func (r *Reader) Skip(n int64) {
	r.pos += n
}
