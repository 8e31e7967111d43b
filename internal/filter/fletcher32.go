package filter

import (
	"encoding/binary"
	"errors"
	"fmt"

	binpkg "github.com/robert-malhotra/go-bitshuffle/internal/binary"
	"github.com/robert-malhotra/go-bitshuffle/internal/message"
)

// ErrChecksumMismatch is returned when a stored Fletcher-32 checksum does
// not match the data.
var ErrChecksumMismatch = errors.New("fletcher32: checksum mismatch")

// Fletcher32Filter implements the Fletcher-32 checksum filter.
// This filter validates data integrity by checking a checksum
// appended to the data.
type Fletcher32Filter struct{}

// NewFletcher32 creates a new Fletcher-32 filter.
func NewFletcher32(clientData []uint32) *Fletcher32Filter {
	return &Fletcher32Filter{}
}

func (f *Fletcher32Filter) ID() uint16 {
	return message.FilterFletcher32
}

// Encode returns the data followed by its little-endian checksum.
func (f *Fletcher32Filter) Encode(input []byte) ([]byte, error) {
	output := make([]byte, len(input), len(input)+4)
	copy(output, input)
	return binary.LittleEndian.AppendUint32(output, binpkg.Fletcher32(input)), nil
}

// Decode verifies the Fletcher-32 checksum and returns the data without it.
// The checksum is stored as the last 4 bytes of the input.
func (f *Fletcher32Filter) Decode(input []byte) ([]byte, error) {
	if len(input) < 4 {
		return nil, fmt.Errorf("fletcher32: input too short for checksum")
	}

	data := input[:len(input)-4]
	stored := binary.LittleEndian.Uint32(input[len(input)-4:])
	if !binpkg.VerifyFletcher32(data, stored) {
		return nil, fmt.Errorf("%w (stored=0x%08x, computed=0x%08x)", ErrChecksumMismatch, stored, binpkg.Fletcher32(data))
	}
	return data, nil
}
