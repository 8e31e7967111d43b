package filter

import (
	"errors"
	"fmt"
	"io"

	"github.com/robert-malhotra/go-bitshuffle/internal/message"
)

// ErrInvalidParams is returned when a filter's client data cannot be used.
var ErrInvalidParams = errors.New("invalid filter parameters")

// Filter is the interface implemented by all filters.
type Filter interface {
	// ID returns the filter identifier.
	ID() uint16

	// Encode transforms data to its encoded form.
	Encode(input []byte) ([]byte, error)

	// Decode transforms encoded data back to its original form.
	Decode(input []byte) ([]byte, error)
}

// Registry maps filter IDs to filter constructors.
var Registry = map[uint16]func([]uint32) (Filter, error){
	message.FilterDeflate:    func(cd []uint32) (Filter, error) { return NewDeflate(cd) },
	message.FilterShuffle:    func(cd []uint32) (Filter, error) { return NewShuffle(cd), nil },
	message.FilterFletcher32: func(cd []uint32) (Filter, error) { return NewFletcher32(cd), nil },
	message.FilterBitShuffle: func(cd []uint32) (Filter, error) { return NewBitShuffle(cd) },
	message.FilterZstd:       func(cd []uint32) (Filter, error) { return NewZstd(cd) },
	message.FilterDelta:      func(cd []uint32) (Filter, error) { return NewDelta(cd), nil },
}

// compressors are skipped for blocks they do not shrink.
var compressors = map[uint16]bool{
	message.FilterDeflate: true,
	message.FilterZstd:    true,
}

var filterNames = map[uint16]string{
	message.FilterDeflate:    "deflate",
	message.FilterShuffle:    "shuffle",
	message.FilterFletcher32: "fletcher32",
	message.FilterBitShuffle: "bitshuffle",
	message.FilterZstd:       "zstd",
	message.FilterDelta:      "delta",
}

// Name returns the short name of a filter ID, or "filter-<id>" when the ID
// is unknown.
func Name(id uint16) string {
	if name, ok := filterNames[id]; ok {
		return name
	}
	return fmt.Sprintf("filter-%d", id)
}

// New creates a filter from a FilterInfo. An unknown optional filter yields
// a nil filter and no error.
func New(info message.FilterInfo) (Filter, error) {
	constructor, ok := Registry[info.ID]
	if !ok {
		if info.IsOptional() {
			return nil, nil // Optional filter not available
		}
		return nil, fmt.Errorf("unsupported filter ID: %d", info.ID)
	}
	return constructor(info.ClientData)
}

func closeFilter(f Filter) error {
	if c, ok := f.(io.Closer); ok {
		return c.Close()
	}
	return nil
}
