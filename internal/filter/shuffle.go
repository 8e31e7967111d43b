package filter

import (
	"github.com/robert-malhotra/go-bitshuffle/bitshuffle"
	"github.com/robert-malhotra/go-bitshuffle/internal/message"
)

// Shuffle implements the byte shuffle filter.
// This filter rearranges bytes to improve compression by grouping
// similar byte positions together (e.g., all MSBs, then all next bytes, etc.).
type Shuffle struct {
	elemSize int
}

// NewShuffle creates a new shuffle filter.
// Client data: [0] = element size in bytes
func NewShuffle(clientData []uint32) *Shuffle {
	elemSize := 1
	if len(clientData) > 0 && clientData[0] > 0 {
		elemSize = int(clientData[0])
	}
	return &Shuffle{elemSize: elemSize}
}

func (f *Shuffle) ID() uint16 {
	return message.FilterShuffle
}

// Encode groups byte j of every element together. Bytes after the last
// whole element are copied unchanged.
func (f *Shuffle) Encode(input []byte) ([]byte, error) {
	if f.elemSize <= 1 {
		return input, nil
	}
	output := make([]byte, len(input))
	if _, err := bitshuffle.ByteShuffle(output, input, f.elemSize); err != nil {
		return nil, err
	}
	return output, nil
}

// Decode reverses the shuffle transformation.
func (f *Shuffle) Decode(input []byte) ([]byte, error) {
	if f.elemSize <= 1 {
		// No shuffling for single-byte elements
		return input, nil
	}
	output := make([]byte, len(input))
	if _, err := bitshuffle.ByteUnshuffle(output, input, f.elemSize); err != nil {
		return nil, err
	}
	return output, nil
}
