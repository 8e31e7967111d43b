// Package bitshuffle rearranges typed data so that bits at the same position
// in many elements become contiguous, ahead of a general-purpose compressor.
package bitshuffle

import (
	"errors"

	"github.com/robert-malhotra/go-bitshuffle/internal/transpose"
)

// Common errors
var (
	// ErrInvalidSize is returned when the element count is negative or not a
	// multiple of 8.
	ErrInvalidSize = transpose.ErrInvalidSize

	// ErrOutOfMemory is returned when the scratch buffer cannot be allocated.
	ErrOutOfMemory = transpose.ErrOutOfMemory

	ErrLengthMismatch  = errors.New("bitshuffle: buffer length does not match shape")
	ErrOverlap         = errors.New("bitshuffle: input and output overlap")
	ErrInvalidElemSize = errors.New("bitshuffle: element size must be at least 1")
)
