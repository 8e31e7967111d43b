package frame

import (
	"fmt"
	"math"

	log "github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/robert-malhotra/go-bitshuffle/internal/binary"
	"github.com/robert-malhotra/go-bitshuffle/internal/filter"
	"github.com/robert-malhotra/go-bitshuffle/internal/message"
)

// Compress splits data into blocks, encodes every block through the
// configured filter pipeline and returns the frame.
func Compress(data []byte, opts ...Option) ([]byte, error) {
	o := defaultOptions()
	for _, opt := range opts {
		opt(o)
	}
	if err := o.validate(); err != nil {
		return nil, err
	}

	fp := o.pipeline()
	pipeline, err := filter.NewPipeline(fp)
	if err != nil {
		return nil, fmt.Errorf("creating filter pipeline: %w", err)
	}
	defer pipeline.Close()

	encodedPipeline, err := message.Encode(fp)
	if err != nil {
		return nil, err
	}

	h := &Header{
		Version:   Version,
		ElemSize:  o.elemSize,
		BlockSize: o.effectiveBlockSize(),
		Length:    uint64(len(data)),
		Pipeline:  fp,
	}
	nblocks := (len(data) + h.BlockSize - 1) / h.BlockSize
	if uint64(nblocks) > math.MaxUint32 {
		return nil, fmt.Errorf("%w: %d blocks", ErrInvalidOption, nblocks)
	}
	h.Blocks = make([]BlockInfo, nblocks)

	payloads := make([][]byte, nblocks)
	g := new(errgroup.Group)
	g.SetLimit(o.concurrency)
	for i := range payloads {
		g.Go(func() error {
			lo, hi := h.blockBounds(i)
			out, mask, err := pipeline.Encode(data[lo:hi])
			if err != nil {
				return fmt.Errorf("block %d: %w", i, err)
			}
			payloads[i] = out
			h.Blocks[i].Length = uint64(len(out))
			h.Blocks[i].Mask = mask
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	var payloadSize uint64
	for _, p := range payloads {
		payloadSize += uint64(len(p))
	}
	h.OffsetSize = offsetSizeFor(len(encodedPipeline), nblocks, payloadSize)
	h.Size = headerSize(h.OffsetSize, len(encodedPipeline), nblocks)

	offset := uint64(h.Size)
	for i := range h.Blocks {
		h.Blocks[i].Offset = offset
		offset += h.Blocks[i].Length
	}

	buf := binary.NewBuffer(int(offset))
	w, err := marshalHeader(buf, h, encodedPipeline)
	if err != nil {
		return nil, err
	}
	for _, p := range payloads {
		if err := w.WriteBytes(p); err != nil {
			return nil, err
		}
	}

	log.WithFields(log.Fields{
		"blocks":   nblocks,
		"raw":      h.RawBlocks(),
		"filters":  pipeline.Names(),
		"in":       len(data),
		"out":      buf.Len(),
		"elemSize": h.ElemSize,
	}).Debug("frame encoded")
	return buf.Bytes(), nil
}

// Decompress decodes a frame produced by Compress. Only WithConcurrency
// affects decoding; the pipeline is read from the frame.
func Decompress(src []byte, opts ...Option) ([]byte, error) {
	o := defaultOptions()
	for _, opt := range opts {
		opt(o)
	}

	h, err := readHeader(src)
	if err != nil {
		return nil, err
	}
	pipeline, err := filter.NewPipeline(h.Pipeline)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidFrame, err)
	}
	defer pipeline.Close()

	// Blocks are decoded and measured before the output is allocated, so a
	// header cannot claim more output than its blocks produce.
	decoded := make([][]byte, len(h.Blocks))
	g := new(errgroup.Group)
	g.SetLimit(o.concurrency)
	for i, b := range h.Blocks {
		g.Go(func() error {
			lo, hi := h.blockBounds(i)
			data, err := pipeline.Decode(src[b.Offset:b.Offset+b.Length], b.Mask)
			if err != nil {
				return fmt.Errorf("%w: block %d: %w", ErrInvalidFrame, i, err)
			}
			if len(data) != hi-lo {
				return fmt.Errorf("%w: block %d decoded to %d bytes, want %d", ErrInvalidFrame, i, len(data), hi-lo)
			}
			decoded[i] = data
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	out := make([]byte, 0, h.Length)
	for _, data := range decoded {
		out = append(out, data...)
	}

	log.WithFields(log.Fields{
		"blocks":   len(h.Blocks),
		"in":       len(src),
		"out":      len(out),
		"verified": h.Pipeline.HasFilter(message.FilterFletcher32),
	}).Debug("frame decoded")
	return out, nil
}

// Inspect decodes and verifies the frame header without decoding blocks.
func Inspect(src []byte) (*Header, error) {
	return readHeader(src)
}

// offsetSizeFor returns the narrowest offset width that can address every
// byte of a frame with the given pipeline, block count and payload size.
func offsetSizeFor(pipelineLen, nblocks int, payloadSize uint64) int {
	cfg := binary.DefaultConfig()
	for _, size := range []int{2, 4} {
		cfg.OffsetSize = size
		if uint64(headerSize(size, pipelineLen, nblocks))+payloadSize <= cfg.MaxOffset() {
			return size
		}
	}
	return 8
}

// pipeline returns the filter list for the options: delta, then the
// prefilter, then the codec, then the checksum over the stored bytes.
func (o *options) pipeline() *message.FilterPipeline {
	fp := &message.FilterPipeline{Version: 2}
	elemSize := uint32(o.elemSize)

	if o.delta {
		fp.Filters = append(fp.Filters, message.FilterInfo{
			ID: message.FilterDelta, Name: "delta", ClientData: []uint32{elemSize},
		})
	}
	switch o.prefilter {
	case PrefilterShuffle:
		fp.Filters = append(fp.Filters, message.FilterInfo{
			ID: message.FilterShuffle, ClientData: []uint32{elemSize},
		})
	case PrefilterBitShuffle:
		blockElems := uint32(o.effectiveBlockSize() / o.elemSize)
		fp.Filters = append(fp.Filters, message.FilterInfo{
			ID:         message.FilterBitShuffle,
			Name:       "bitshuffle",
			ClientData: []uint32{filter.BitShuffleMajor, filter.BitShuffleMinor, elemSize, blockElems, 0},
		})
	}
	switch o.codec {
	case CodecDeflate:
		level := o.level
		if level == 0 {
			level = 6
		}
		fp.Filters = append(fp.Filters, message.FilterInfo{
			ID: message.FilterDeflate, ClientData: []uint32{uint32(level)},
		})
	case CodecZstd:
		level := o.level
		if level == 0 {
			level = filter.DefaultZstdLevel
		}
		fp.Filters = append(fp.Filters, message.FilterInfo{
			ID: message.FilterZstd, Name: "zstd", ClientData: []uint32{uint32(level)},
		})
	}
	if o.checksum {
		fp.Filters = append(fp.Filters, message.FilterInfo{ID: message.FilterFletcher32})
	}
	return fp
}
