package frame

import (
	"fmt"
	"runtime"
	"strings"
)

// DefaultBlockSize is the target uncompressed block size in bytes. The
// block size actually used is rounded down to a multiple of 8 elements.
const DefaultBlockSize = 256 << 10

// Codec selects the compression stage of the pipeline.
type Codec int

const (
	CodecNone Codec = iota
	CodecZstd
	CodecDeflate
)

func (c Codec) String() string {
	switch c {
	case CodecNone:
		return "none"
	case CodecZstd:
		return "zstd"
	case CodecDeflate:
		return "deflate"
	default:
		return fmt.Sprintf("Codec(%d)", int(c))
	}
}

// ParseCodec returns the codec with the given name.
func ParseCodec(name string) (Codec, error) {
	switch strings.ToLower(name) {
	case "none", "":
		return CodecNone, nil
	case "zstd":
		return CodecZstd, nil
	case "deflate", "zlib":
		return CodecDeflate, nil
	}
	return 0, fmt.Errorf("%w: unknown codec %q", ErrInvalidOption, name)
}

// Prefilter selects the transform applied before compression.
type Prefilter int

const (
	PrefilterNone Prefilter = iota
	PrefilterShuffle
	PrefilterBitShuffle
)

func (p Prefilter) String() string {
	switch p {
	case PrefilterNone:
		return "none"
	case PrefilterShuffle:
		return "shuffle"
	case PrefilterBitShuffle:
		return "bitshuffle"
	default:
		return fmt.Sprintf("Prefilter(%d)", int(p))
	}
}

// ParsePrefilter returns the prefilter with the given name.
func ParsePrefilter(name string) (Prefilter, error) {
	switch strings.ToLower(name) {
	case "none", "":
		return PrefilterNone, nil
	case "shuffle", "byte":
		return PrefilterShuffle, nil
	case "bitshuffle", "bit":
		return PrefilterBitShuffle, nil
	}
	return 0, fmt.Errorf("%w: unknown prefilter %q", ErrInvalidOption, name)
}

// Option configures Compress and Decompress.
type Option func(*options)

type options struct {
	codec       Codec
	level       int
	elemSize    int
	blockSize   int
	prefilter   Prefilter
	delta       bool
	checksum    bool
	concurrency int
}

func defaultOptions() *options {
	return &options{
		codec:       CodecZstd,
		elemSize:    1,
		blockSize:   DefaultBlockSize,
		prefilter:   PrefilterBitShuffle,
		concurrency: runtime.GOMAXPROCS(0),
	}
}

// WithCodec sets the compressor applied after the prefilter.
func WithCodec(c Codec) Option {
	return func(o *options) {
		o.codec = c
	}
}

// WithLevel sets the compression level. 0 selects the codec's default;
// deflate accepts 1-9 and zstd 1-22.
func WithLevel(level int) Option {
	return func(o *options) {
		o.level = level
	}
}

// WithElemSize sets the element size in bytes used by the prefilters.
func WithElemSize(size int) Option {
	return func(o *options) {
		o.elemSize = size
	}
}

// WithBlockSize sets the target uncompressed block size in bytes.
func WithBlockSize(size int) Option {
	return func(o *options) {
		o.blockSize = size
	}
}

// WithPrefilter sets the transform applied before compression.
func WithPrefilter(p Prefilter) Option {
	return func(o *options) {
		o.prefilter = p
	}
}

// WithDelta enables the XOR delta filter ahead of the prefilter.
func WithDelta(enabled bool) Option {
	return func(o *options) {
		o.delta = enabled
	}
}

// WithChecksum appends a Fletcher-32 checksum to every stored block.
func WithChecksum(enabled bool) Option {
	return func(o *options) {
		o.checksum = enabled
	}
}

// WithConcurrency limits the number of blocks processed at once.
// Values below 1 are ignored.
func WithConcurrency(n int) Option {
	return func(o *options) {
		if n > 0 {
			o.concurrency = n
		}
	}
}

func (o *options) validate() error {
	if o.elemSize < 1 || o.elemSize > maxElemSize {
		return fmt.Errorf("%w: element size %d out of range 1-%d", ErrInvalidOption, o.elemSize, maxElemSize)
	}
	if o.blockSize < 1 {
		return fmt.Errorf("%w: block size %d", ErrInvalidOption, o.blockSize)
	}
	switch o.codec {
	case CodecNone:
	case CodecZstd:
		if o.level < 0 || o.level > 22 {
			return fmt.Errorf("%w: zstd level %d out of range 1-22", ErrInvalidOption, o.level)
		}
	case CodecDeflate:
		if o.level < 0 || o.level > 9 {
			return fmt.Errorf("%w: deflate level %d out of range 1-9", ErrInvalidOption, o.level)
		}
	default:
		return fmt.Errorf("%w: %v", ErrInvalidOption, o.codec)
	}
	switch o.prefilter {
	case PrefilterNone, PrefilterShuffle, PrefilterBitShuffle:
	default:
		return fmt.Errorf("%w: %v", ErrInvalidOption, o.prefilter)
	}
	return nil
}

// effectiveBlockSize rounds the block size down to a whole number of
// 8-element groups, with at least one group per block.
func (o *options) effectiveBlockSize() int {
	group := 8 * o.elemSize
	n := o.blockSize - o.blockSize%group
	if n == 0 {
		n = group
	}
	return min(n, maxBlockSize-maxBlockSize%group)
}
