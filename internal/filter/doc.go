// Package filter implements the per-block filter pipeline of a frame.
//
// A pipeline is an ordered list of filters. Encoding applies them first to
// last; decoding applies them in reverse. Each block carries a filter mask
// in which bit i set means filter i was not applied to that block.
//
// # Supported Filters
//
//   - DEFLATE (ID 1): zlib compression via [Deflate], using
//     github.com/klauspost/compress/zlib. Client data [0] is the level.
//
//   - Shuffle (ID 2): byte shuffle via [Shuffle]. Groups byte k of every
//     element together. Client data [0] is the element size.
//
//   - Fletcher32 (ID 3): checksum via [Fletcher32Filter]. Appends a 32-bit
//     Fletcher checksum on encode and verifies it on decode.
//
//   - BitShuffle (ID 32008): bit-plane transpose via [BitShuffle], in blocks
//     of a fixed number of elements. Client data [2] is the element size and
//     [3] the block size in elements (0 picks one).
//
//   - Zstandard (ID 32015): compression via [Zstd], using
//     github.com/klauspost/compress/zstd. Client data [0] is the level.
//
//   - Delta (ID 32100): XOR of each element with the previous one via
//     [Delta]. Client data [0] is the element size.
//
// # Incompressible Blocks
//
// A compression filter that does not shrink a block is skipped for that
// block: the pipeline keeps its input and sets the filter's bit in the
// returned mask, so decoding copies the block through unchanged.
//
// # Key Types
//
//   - [Filter]: interface implemented by all filters (ID, Encode, Decode)
//   - [Pipeline]: a sequence of filters built from a
//     [message.FilterPipeline]
package filter
