package bitshuffle

import (
	"fmt"

	"github.com/robert-malhotra/go-bitshuffle/internal/transpose"
)

// ShuffleBlock bitshuffles a block of arbitrary length. The largest prefix
// holding a multiple of 8 whole elements is transformed; the remaining
// bytes (fewer than 8 elements plus any partial element) are copied
// verbatim. dst must be at least len(src) bytes and must not overlap src.
func ShuffleBlock(dst, src []byte, elemSize int) (int, error) {
	count, err := checkBlock(dst, src, elemSize)
	if err != nil {
		return 0, err
	}
	n, err := transpose.BitElem(src, dst, count, elemSize)
	if err != nil {
		return 0, err
	}
	copy(dst[n:len(src)], src[n:])
	return len(src), nil
}

// UnshuffleBlock reverses ShuffleBlock.
func UnshuffleBlock(dst, src []byte, elemSize int) (int, error) {
	count, err := checkBlock(dst, src, elemSize)
	if err != nil {
		return 0, err
	}
	n, err := transpose.UntransBitElem(src, dst, count, elemSize)
	if err != nil {
		return 0, err
	}
	copy(dst[n:len(src)], src[n:])
	return len(src), nil
}

// ByteShuffle groups byte j of every element together:
// dst[j*count+i] = src[i*elemSize+j]. Trailing bytes that do not form a
// whole element are copied verbatim.
func ByteShuffle(dst, src []byte, elemSize int) (int, error) {
	count, err := checkBytes(dst, src, elemSize)
	if err != nil {
		return 0, err
	}
	n, err := transpose.ByteElem(src, dst, count, elemSize)
	if err != nil {
		return 0, err
	}
	copy(dst[n:len(src)], src[n:])
	return len(src), nil
}

// ByteUnshuffle reverses ByteShuffle.
func ByteUnshuffle(dst, src []byte, elemSize int) (int, error) {
	count, err := checkBytes(dst, src, elemSize)
	if err != nil {
		return 0, err
	}
	n := transpose.Elem(src, dst, elemSize, count, 1)
	copy(dst[n:len(src)], src[n:])
	return len(src), nil
}

// checkBlock returns the number of elements the bit transform covers.
func checkBlock(dst, src []byte, elemSize int) (int, error) {
	count, err := checkBytes(dst, src, elemSize)
	if err != nil {
		return 0, err
	}
	return count - count%8, nil
}

func checkBytes(dst, src []byte, elemSize int) (int, error) {
	if elemSize < 1 {
		return 0, fmt.Errorf("%w: got %d", ErrInvalidElemSize, elemSize)
	}
	if len(dst) < len(src) {
		return 0, fmt.Errorf("%w: output has %d bytes, need %d", ErrLengthMismatch, len(dst), len(src))
	}
	if overlaps(dst[:len(src)], src) {
		return 0, ErrOverlap
	}
	return len(src) / elemSize, nil
}
