package transpose

import (
	"encoding/binary"

	"golang.org/x/sys/cpu"
)

// Butterfly rounds for an 8×8 bit matrix packed into a uint64 read in
// little-endian order (byte i is row i, bit j is column j). Each round swaps
// the off-diagonal blocks of size 1, 2 and 4 across the main diagonal.
const (
	leMask1  uint64 = 0x00AA00AA00AA00AA
	leShift1        = 7
	leMask2  uint64 = 0x0000CCCC0000CCCC
	leShift2        = 14
	leMask3  uint64 = 0x00000000F0F0F0F0
	leShift3        = 28
)

// Butterfly rounds for the same matrix read in big-endian order, where row i
// sits in byte 7-i. The swap is across the anti-diagonal, so the masks select
// the other half of each block pair and the shifts are 9, 18 and 36.
const (
	beMask1  uint64 = 0x0055005500550055
	beShift1        = 9
	beMask2  uint64 = 0x0000333300003333
	beShift2        = 18
	beMask3  uint64 = 0x000000000F0F0F0F
	beShift3        = 36
)

// Butterfly is one variant of the 8×8 bit transpose together with the byte
// order it loads words in and the direction it scatters bit-planes.
type Butterfly struct {
	name   string
	order  binary.ByteOrder
	masks  [3]uint64
	shifts [3]uint
	// descending variants write the first extracted byte to bit-plane 7
	// and walk downwards.
	descending bool
}

// LittleEndian transposes along the main diagonal.
var LittleEndian = &Butterfly{
	name:   "scalar-le",
	order:  binary.LittleEndian,
	masks:  [3]uint64{leMask1, leMask2, leMask3},
	shifts: [3]uint{leShift1, leShift2, leShift3},
}

// BigEndian transposes along the anti-diagonal.
var BigEndian = &Butterfly{
	name:       "scalar-be",
	order:      binary.BigEndian,
	masks:      [3]uint64{beMask1, beMask2, beMask3},
	shifts:     [3]uint{beShift1, beShift2, beShift3},
	descending: true,
}

var native = selectButterfly(cpu.IsBigEndian)

func selectButterfly(bigEndian bool) *Butterfly {
	if bigEndian {
		return BigEndian
	}
	return LittleEndian
}

// Native returns the variant matching the byte order of the running process.
func Native() *Butterfly {
	return native
}

// Name identifies the variant, e.g. "scalar-le".
func (b *Butterfly) Name() string {
	return b.name
}

// Transpose8x8 transposes the bit matrix packed in x. It is its own inverse.
func (b *Butterfly) Transpose8x8(x uint64) uint64 {
	for r := range b.masks {
		t := (x ^ (x >> b.shifts[r])) & b.masks[r]
		x = x ^ t ^ (t << b.shifts[r])
	}
	return x
}

// planeLayout returns the offset of the first bit-plane written and the
// signed distance between consecutive ones, for planes of rowLen bytes.
func (b *Butterfly) planeLayout(rowLen int) (offset, skip int) {
	if b.descending {
		return 7 * rowLen, -rowLen
	}
	return 0, rowLen
}

// BitByte transposes the bits within every group of 8 bytes of a
// byte-plane-major buffer. Byte ii of the output bit-plane k holds bit k of
// input bytes 8*ii..8*ii+7. The total byte count must be a multiple of 8.
func (b *Butterfly) BitByte(in, out []byte, size, elemSize int) (int, error) {
	return b.BitByteRemainder(in, out, size, elemSize, 0)
}

// BitByteRemainder is BitByte starting at byte startByte, which must be a
// multiple of 8.
func (b *Butterfly) BitByteRemainder(in, out []byte, size, elemSize, startByte int) (int, error) {
	if err := checkShape(size, elemSize); err != nil {
		return 0, err
	}
	nbyte := size * elemSize
	if err := checkMultEight("byte count", nbyte); err != nil {
		return 0, err
	}
	if err := checkMultEight("start byte", startByte); err != nil {
		return 0, err
	}

	nbyteBitrow := nbyte / 8
	offset, skip := b.planeLayout(nbyteBitrow)
	for ii := startByte / 8; ii < nbyteBitrow; ii++ {
		x := b.Transpose8x8(b.order.Uint64(in[ii*8:]))
		for kk := 0; kk < 8; kk++ {
			out[offset+kk*skip+ii] = byte(x)
			x >>= 8
		}
	}
	return nbyte, nil
}

// ShuffleBitEightElem is the fused second half of the inverse transform. For
// data laid out by ByteBitrow it transposes each 8-byte group back and
// scatters the resulting bytes directly into element-major order.
func (b *Butterfly) ShuffleBitEightElem(in, out []byte, size, elemSize int) (int, error) {
	if err := checkShape(size, elemSize); err != nil {
		return 0, err
	}
	if err := checkMultEight("size", size); err != nil {
		return 0, err
	}

	nbyte := size * elemSize
	offset, skip := b.planeLayout(elemSize)
	for jj := 0; jj < 8*elemSize; jj += 8 {
		for ii := 0; ii+8*elemSize-1 < nbyte; ii += 8 * elemSize {
			x := b.Transpose8x8(b.order.Uint64(in[ii+jj:]))
			base := ii + jj/8 + offset
			for kk := 0; kk < 8; kk++ {
				out[base+kk*skip] = byte(x)
				x >>= 8
			}
		}
	}
	return nbyte, nil
}
