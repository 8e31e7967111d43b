// Package frame stores a buffer as a sequence of independently encoded
// blocks behind a checksummed header.
//
// Every block passes through the same filter pipeline, by default a
// bitshuffle followed by zstd. Blocks are encoded and decoded in parallel.
// A block that the compressor cannot shrink is stored without that stage;
// its filter mask records the skip.
//
// # Layout
//
// All integers are little-endian.
//
//	0   magic "BSHF"
//	4   version (1)
//	5   flags (0)
//	6   offset size (4 or 8)
//	7   reserved
//	8   element size        uint32
//	12  block size          uint32, a multiple of 8 elements
//	16  uncompressed length uint64
//	24  block count         uint32
//	28  pipeline length     uint16, then the filter pipeline message
//	..  block table         {offset, length, filter mask uint32} per block
//	..  header checksum     uint32, low half of xxHash64 of the bytes above
//	..  block payloads
//
// Block offsets are measured from the start of the frame. Offsets and
// lengths are 4 bytes wide unless the frame exceeds 4 GiB.
//
// # Usage
//
//	packed, err := frame.Compress(samples, frame.WithElemSize(4))
//	samples, err = frame.Decompress(packed)
//
// [Inspect] verifies and returns the [Header] without decoding any block.
package frame
