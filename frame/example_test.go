package frame_test

import (
	"bytes"
	"encoding/binary"
	"fmt"

	"github.com/robert-malhotra/go-bitshuffle/frame"
)

func ExampleCompress() {
	// 4096 little-endian uint32 counters.
	data := make([]byte, 4*4096)
	for i := 0; i < 4096; i++ {
		binary.LittleEndian.PutUint32(data[4*i:], uint32(i))
	}

	packed, err := frame.Compress(data, frame.WithElemSize(4), frame.WithChecksum(true))
	if err != nil {
		panic(err)
	}
	h, err := frame.Inspect(packed)
	if err != nil {
		panic(err)
	}
	fmt.Println(h.Filters(), len(h.Blocks), len(packed) < len(data))

	restored, err := frame.Decompress(packed)
	if err != nil {
		panic(err)
	}
	fmt.Println(bytes.Equal(restored, data))
	// Output:
	// [bitshuffle zstd fletcher32] 1 true
	// true
}
