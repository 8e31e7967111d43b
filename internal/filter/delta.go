package filter

import (
	"github.com/robert-malhotra/go-bitshuffle/internal/message"
)

// Delta implements the XOR delta filter: every element is replaced by its
// XOR with the element before it, and the first element is kept. XOR is
// bytewise, so the transform does not depend on byte order.
type Delta struct {
	word int
}

// NewDelta creates a new delta filter.
// Client data: [0] = element size in bytes
//
// Element sizes of 1, 2, 4 and 8 are used as the word width. Other sizes
// use 8-byte words when divisible by 8 and single bytes otherwise.
func NewDelta(clientData []uint32) *Delta {
	elemSize := 1
	if len(clientData) > 0 && clientData[0] > 0 {
		elemSize = int(clientData[0])
	}
	return &Delta{word: deltaWord(elemSize)}
}

func deltaWord(elemSize int) int {
	switch elemSize {
	case 1, 2, 4, 8:
		return elemSize
	}
	if elemSize%8 == 0 {
		return 8
	}
	return 1
}

func (f *Delta) ID() uint16 {
	return message.FilterDelta
}

// Encode XORs each word with its predecessor. Bytes after the last whole
// word are copied unchanged.
func (f *Delta) Encode(input []byte) ([]byte, error) {
	output := make([]byte, len(input))
	n := len(input) - len(input)%f.word
	copy(output[:min(f.word, n)], input)
	for i := f.word; i < n; i++ {
		output[i] = input[i] ^ input[i-f.word]
	}
	copy(output[n:], input[n:])
	return output, nil
}

// Decode undoes Encode by XORing with the already restored predecessor.
func (f *Delta) Decode(input []byte) ([]byte, error) {
	output := make([]byte, len(input))
	n := len(input) - len(input)%f.word
	copy(output[:min(f.word, n)], input)
	for i := f.word; i < n; i++ {
		output[i] = input[i] ^ output[i-f.word]
	}
	copy(output[n:], input[n:])
	return output, nil
}
