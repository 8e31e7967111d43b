// Package transpose implements the scalar bit-transpose ("bitshuffle")
// kernels and the orchestrators that compose them.
//
// A buffer of size elements, each elemSize bytes wide, is viewed as a
// size × (8·elemSize) bit matrix. The forward transform writes that matrix
// transposed, so that bit b of byte j of every element ends up in one
// contiguous run (a bitrow). For typed numeric data this exposes
// redundancy that a byte-oriented compressor cannot see.
//
// # Stages
//
// The forward transform [BitElem] is composed of three permutations:
//
//   - [ByteElem]: element-major to byte-plane-major (a size × elemSize
//     byte transpose).
//   - [Butterfly.BitByte]: 8×8 bit-matrix transpose of every group of 8
//     bytes, scattering the eight resulting bytes into eight bit-planes.
//   - [BitrowEight]: regroups the bit-planes so that each bitrow is
//     contiguous across the whole buffer. It is [Elem] with 8 rows.
//
// The inverse [UntransBitElem] is not the forward stages run backwards. It
// first undoes the regroup with [ByteBitrow], then applies
// [Butterfly.ShuffleBitEightElem], which performs the (self-inverse)
// butterfly and scatters the bytes straight back to element-major order.
//
// # Byte order
//
// The butterfly reads 8 bytes as one uint64 in the machine's byte order.
// Two variants exist: [LittleEndian] transposes along the main diagonal and
// [BigEndian] along the anti-diagonal, writing bit-planes from the highest
// row downwards. [Native] is chosen once at package initialization from
// golang.org/x/sys/cpu and never re-checked. Both variants produce the
// same logical layout, so shuffled data is portable.
//
// # Preconditions
//
// The orchestrators require size to be a multiple of 8 and return
// [ErrInvalidSize] otherwise, before touching any memory. elemSize may be
// any non-negative value; zero yields zero work. Input and output must be
// distinct buffers of at least size·elemSize bytes.
package transpose
