package binary

import (
	"github.com/cespare/xxhash/v2"
)

// HeaderChecksum returns the 32-bit checksum stored after a frame header:
// the low half of the xxHash64 digest of data.
func HeaderChecksum(data []byte) uint32 {
	return uint32(xxhash.Sum64(data))
}

// VerifyHeader reports whether data matches the expected header checksum.
func VerifyHeader(data []byte, expected uint32) bool {
	return HeaderChecksum(data) == expected
}

// Fletcher32 computes the Fletcher-32 checksum over data read as
// little-endian 16-bit words. An odd trailing byte is treated as a word
// with a zero high byte.
func Fletcher32(data []byte) uint32 {
	var sum1, sum2 uint32

	// Sums stay below 2^32 for 359 words before they must be reduced.
	const chunk = 359 * 2
	for len(data) >= 2 {
		n := min(len(data)&^1, chunk)
		for i := 0; i < n; i += 2 {
			sum1 += uint32(data[i]) | uint32(data[i+1])<<8
			sum2 += sum1
		}
		sum1 %= 65535
		sum2 %= 65535
		data = data[n:]
	}
	if len(data) == 1 {
		sum1 = (sum1 + uint32(data[0])) % 65535
		sum2 = (sum2 + sum1) % 65535
	}
	return sum2<<16 | sum1
}

// VerifyFletcher32 verifies data against an expected Fletcher-32 checksum.
func VerifyFletcher32(data []byte, expected uint32) bool {
	return Fletcher32(data) == expected
}
