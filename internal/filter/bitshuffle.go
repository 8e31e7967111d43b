package filter

import (
	"fmt"

	"github.com/robert-malhotra/go-bitshuffle/bitshuffle"
	"github.com/robert-malhotra/go-bitshuffle/internal/message"
)

// Block sizing used when client data leaves the block size at 0: aim for
// 8 KiB of input per block, in a multiple of 8 elements, never fewer than
// 128 elements.
const (
	targetBlockBytes = 8192
	minBlockElems    = 128
)

// Format version written to client data [0] and [1].
const (
	BitShuffleMajor = 0
	BitShuffleMinor = 4
)

// BitShuffle implements the bitshuffle filter. Data is cut into blocks of
// blockSize elements; each block is bit-transposed independently. In the
// final short block the largest multiple of 8 whole elements is transposed
// and the remaining bytes are copied.
type BitShuffle struct {
	elemSize  int
	blockSize int // elements
}

// NewBitShuffle creates a bitshuffle filter.
// Client data: [0], [1] = format version, [2] = element size in bytes,
// [3] = block size in elements (0 = automatic), [4] = built-in compression,
// which must be 0 (compression is a separate pipeline stage).
func NewBitShuffle(clientData []uint32) (*BitShuffle, error) {
	if len(clientData) < 3 || clientData[2] == 0 {
		return nil, fmt.Errorf("%w: bitshuffle needs an element size in client data [2]", ErrInvalidParams)
	}
	elemSize := int(clientData[2])

	blockSize := 0
	if len(clientData) > 3 {
		blockSize = int(clientData[3])
	}
	if blockSize == 0 {
		blockSize = DefaultBitShuffleBlock(elemSize)
	}
	if blockSize%8 != 0 {
		return nil, fmt.Errorf("%w: bitshuffle block size %d is not a multiple of 8", ErrInvalidParams, blockSize)
	}
	if len(clientData) > 4 && clientData[4] != 0 {
		return nil, fmt.Errorf("%w: bitshuffle built-in compression %d is not supported", ErrInvalidParams, clientData[4])
	}
	return &BitShuffle{elemSize: elemSize, blockSize: blockSize}, nil
}

// DefaultBitShuffleBlock returns the automatic block size in elements.
func DefaultBitShuffleBlock(elemSize int) int {
	n := targetBlockBytes / elemSize
	n -= n % 8
	return max(n, minBlockElems)
}

func (f *BitShuffle) ID() uint16 {
	return message.FilterBitShuffle
}

// BlockSize returns the number of elements transposed together.
func (f *BitShuffle) BlockSize() int {
	return f.blockSize
}

func (f *BitShuffle) Encode(input []byte) ([]byte, error) {
	return f.apply(input, bitshuffle.ShuffleBlock)
}

func (f *BitShuffle) Decode(input []byte) ([]byte, error) {
	return f.apply(input, bitshuffle.UnshuffleBlock)
}

func (f *BitShuffle) apply(input []byte, transform func(dst, src []byte, elemSize int) (int, error)) ([]byte, error) {
	output := make([]byte, len(input))
	step := f.blockSize * f.elemSize
	for off := 0; off < len(input); off += step {
		end := min(off+step, len(input))
		if _, err := transform(output[off:end], input[off:end], f.elemSize); err != nil {
			return nil, fmt.Errorf("bitshuffle block at %d: %w", off, err)
		}
	}
	return output, nil
}
