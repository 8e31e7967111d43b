package transpose

import (
	"errors"
	"fmt"
)

// Common errors
var (
	ErrInvalidSize = errors.New("bitshuffle: size is not a multiple of 8")
	ErrOutOfMemory = errors.New("bitshuffle: scratch allocation failed")
)

func checkMultEight(what string, n int) error {
	if n%8 != 0 {
		return fmt.Errorf("%w: %s = %d", ErrInvalidSize, what, n)
	}
	return nil
}

func checkShape(size, elemSize int) error {
	if size < 0 || elemSize < 0 {
		return fmt.Errorf("%w: negative shape (%d elements of %d bytes)", ErrInvalidSize, size, elemSize)
	}
	return nil
}
