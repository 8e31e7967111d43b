package bitshuffle

import (
	"fmt"
	"math/bits"
	"unsafe"

	"github.com/robert-malhotra/go-bitshuffle/internal/transpose"
)

// Shuffle bitshuffles buf, which holds count elements of elemSize bytes, and
// returns the result in a new buffer of the same length.
//
// count must be a multiple of 8. The same (count, elemSize) pair must be
// passed to Unshuffle; a mismatch is not detected and yields wrong data.
func Shuffle(buf []byte, count, elemSize int) ([]byte, error) {
	n, err := shape(buf, count, elemSize)
	if err != nil {
		return nil, err
	}
	out := make([]byte, n)
	if _, err := transpose.BitElem(buf, out, count, elemSize); err != nil {
		return nil, err
	}
	return out, nil
}

// Unshuffle reverses Shuffle.
func Unshuffle(buf []byte, count, elemSize int) ([]byte, error) {
	n, err := shape(buf, count, elemSize)
	if err != nil {
		return nil, err
	}
	out := make([]byte, n)
	if _, err := transpose.UntransBitElem(buf, out, count, elemSize); err != nil {
		return nil, err
	}
	return out, nil
}

// ShuffleInto is Shuffle writing into dst, which must hold at least
// count*elemSize bytes and must not overlap src. It returns the number of
// bytes written.
func ShuffleInto(dst, src []byte, count, elemSize int) (int, error) {
	if err := checkInto(dst, src, count, elemSize); err != nil {
		return 0, err
	}
	return transpose.BitElem(src, dst, count, elemSize)
}

// UnshuffleInto is Unshuffle writing into dst.
func UnshuffleInto(dst, src []byte, count, elemSize int) (int, error) {
	if err := checkInto(dst, src, count, elemSize); err != nil {
		return 0, err
	}
	return transpose.UntransBitElem(src, dst, count, elemSize)
}

// Implementation names the transform variant selected for this process.
func Implementation() string {
	return transpose.Native().Name()
}

// shape validates count and elemSize against buf and returns the byte length.
func shape(buf []byte, count, elemSize int) (int, error) {
	if count < 0 || elemSize < 0 {
		return 0, fmt.Errorf("%w: negative shape (%d elements of %d bytes)", ErrInvalidSize, count, elemSize)
	}
	if count%8 != 0 {
		return 0, fmt.Errorf("%w: element count %d", ErrInvalidSize, count)
	}
	hi, n := bits.Mul(uint(count), uint(elemSize))
	if hi != 0 || n != uint(len(buf)) {
		return 0, fmt.Errorf("%w: %d elements of %d bytes, buffer has %d",
			ErrLengthMismatch, count, elemSize, len(buf))
	}
	return int(n), nil
}

func checkInto(dst, src []byte, count, elemSize int) error {
	n, err := shape(src, count, elemSize)
	if err != nil {
		return err
	}
	if len(dst) < n {
		return fmt.Errorf("%w: output has %d bytes, need %d", ErrLengthMismatch, len(dst), n)
	}
	if overlaps(dst[:n], src) {
		return ErrOverlap
	}
	return nil
}

func overlaps(a, b []byte) bool {
	if len(a) == 0 || len(b) == 0 {
		return false
	}
	a0 := uintptr(unsafe.Pointer(unsafe.SliceData(a)))
	b0 := uintptr(unsafe.Pointer(unsafe.SliceData(b)))
	return a0 < b0+uintptr(len(b)) && b0 < a0+uintptr(len(a))
}
