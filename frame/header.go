package frame

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"math"

	"github.com/robert-malhotra/go-bitshuffle/internal/binary"
	"github.com/robert-malhotra/go-bitshuffle/internal/filter"
	"github.com/robert-malhotra/go-bitshuffle/internal/message"
)

// Magic identifies a frame.
var Magic = [4]byte{'B', 'S', 'H', 'F'}

// Version is the frame format version written by Compress.
const Version = 1

const (
	fixedHeaderSize = 30 // magic through pipeline length
	maxElemSize     = 1 << 24
	maxBlockSize    = 1 << 30
)

// BlockInfo locates one encoded block inside a frame.
type BlockInfo struct {
	Offset uint64 // from the start of the frame
	Length uint64 // encoded length
	Mask   uint32 // bit i set: filter i was not applied
}

// Header describes a frame.
type Header struct {
	Version    uint8
	Flags      uint8
	OffsetSize int
	ElemSize   int
	BlockSize  int    // uncompressed bytes per block; the last may be shorter
	Length     uint64 // uncompressed length
	Pipeline   *message.FilterPipeline
	Blocks     []BlockInfo
	Size       int // header bytes including the checksum
}

// Filters returns the filter names in pipeline order.
func (h *Header) Filters() []string {
	names := make([]string, len(h.Pipeline.Filters))
	for i, f := range h.Pipeline.Filters {
		names[i] = filter.Name(f.ID)
	}
	return names
}

// CompressedLength returns the sum of the encoded block lengths.
func (h *Header) CompressedLength() uint64 {
	var n uint64
	for _, b := range h.Blocks {
		n += b.Length
	}
	return n
}

// RawBlocks counts the blocks stored without their compression stage
// because compressing them did not save space.
func (h *Header) RawBlocks() int {
	idx := h.Pipeline.CompressionIndex()
	if idx < 0 {
		return 0
	}
	n := 0
	for _, b := range h.Blocks {
		if b.Mask&(1<<uint(idx)) != 0 {
			n++
		}
	}
	return n
}

// blockBounds returns the uncompressed byte range of block i.
func (h *Header) blockBounds(i int) (lo, hi int) {
	lo = i * h.BlockSize
	hi = min(lo+h.BlockSize, int(h.Length))
	return lo, hi
}

func headerSize(offsetSize, pipelineLen, nblocks int) int {
	return fixedHeaderSize + pipelineLen + nblocks*(2*offsetSize+4) + 4
}

// writeHeader writes everything up to the header checksum. The offset
// width byte is taken from w.
func writeHeader(w *binary.Writer, h *Header, pipeline []byte) error {
	if err := w.WriteBytes(Magic[:]); err != nil {
		return err
	}
	if err := w.WriteUint8(h.Version); err != nil {
		return err
	}
	if err := w.WriteUint8(h.Flags); err != nil {
		return err
	}
	if err := w.WriteUint8(uint8(w.OffsetSize())); err != nil {
		return err
	}
	if err := w.WriteZeros(1); err != nil {
		return err
	}
	if err := w.WriteUint32(uint32(h.ElemSize)); err != nil {
		return err
	}
	if err := w.WriteUint32(uint32(h.BlockSize)); err != nil {
		return err
	}
	if err := w.WriteUint64(h.Length); err != nil {
		return err
	}
	if err := w.WriteUint32(uint32(len(h.Blocks))); err != nil {
		return err
	}
	if err := w.WriteUint16(uint16(len(pipeline))); err != nil {
		return err
	}
	if err := w.WriteBytes(pipeline); err != nil {
		return err
	}
	for _, b := range h.Blocks {
		if err := w.WriteOffset(b.Offset); err != nil {
			return err
		}
		if err := w.WriteOffset(b.Length); err != nil {
			return err
		}
		if err := w.WriteUint32(b.Mask); err != nil {
			return err
		}
	}
	return nil
}

// marshalHeader writes the header of h followed by its checksum to buf,
// which must be empty, and returns a writer positioned after the checksum.
func marshalHeader(buf *binary.Buffer, h *Header, pipeline []byte) (*binary.Writer, error) {
	cfg := binary.DefaultConfig()
	cfg.OffsetSize = h.OffsetSize
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	w := binary.NewWriter(buf, cfg)
	if err := writeHeader(w, h, pipeline); err != nil {
		return nil, err
	}
	if err := w.WriteUint32(binary.HeaderChecksum(buf.Bytes())); err != nil {
		return nil, err
	}
	return w, nil
}

// readHeader decodes and validates the header at the start of src.
func readHeader(src []byte) (*Header, error) {
	r := binary.NewReader(bytes.NewReader(src), binary.DefaultConfig())

	magic, err := r.ReadBytes(len(Magic))
	if err != nil {
		return nil, truncated(err)
	}
	if !bytes.Equal(magic, Magic[:]) {
		return nil, fmt.Errorf("%w: bad magic %q", ErrInvalidFrame, magic)
	}

	h := &Header{}
	if h.Version, err = r.ReadUint8(); err != nil {
		return nil, truncated(err)
	}
	if h.Version != Version {
		return nil, fmt.Errorf("%w: %d", ErrUnsupportedVersion, h.Version)
	}
	h.Flags, _ = r.ReadUint8()
	offsetSize, _ := r.ReadUint8()
	h.OffsetSize = int(offsetSize)
	cfg := binary.DefaultConfig()
	cfg.OffsetSize = h.OffsetSize
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidFrame, err)
	}
	r = r.WithOffsetSize(h.OffsetSize)
	r.Skip(1)

	elemSize, _ := r.ReadUint32()
	blockSize, _ := r.ReadUint32()
	h.Length, _ = r.ReadUint64()
	nblocks, _ := r.ReadUint32()
	pipelineLen, err := r.ReadUint16()
	if err != nil {
		return nil, truncated(err)
	}
	h.ElemSize, h.BlockSize = int(elemSize), int(blockSize)

	if headerSize(h.OffsetSize, int(pipelineLen), int(nblocks)) > len(src) {
		return nil, fmt.Errorf("%w: header larger than input", ErrInvalidFrame)
	}

	pipeline, err := r.ReadBytes(int(pipelineLen))
	if err != nil {
		return nil, truncated(err)
	}
	h.Blocks = make([]BlockInfo, nblocks)
	for i := range h.Blocks {
		b := &h.Blocks[i]
		b.Offset, _ = r.ReadOffset()
		b.Length, _ = r.ReadOffset()
		if b.Mask, err = r.ReadUint32(); err != nil {
			return nil, truncated(err)
		}
	}

	end := int(r.Pos())
	stored, err := r.ReadUint32()
	if err != nil {
		return nil, truncated(err)
	}
	if !binary.VerifyHeader(src[:end], stored) {
		return nil, ErrChecksum
	}

	if err := h.checkShape(int(nblocks)); err != nil {
		return nil, err
	}
	if h.Pipeline, err = message.ParseFilterPipeline(pipeline); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidFrame, err)
	}
	h.Size = int(r.Pos())

	for i, b := range h.Blocks {
		if b.Offset < uint64(h.Size) || b.Offset > uint64(len(src)) || b.Length > uint64(len(src))-b.Offset {
			return nil, fmt.Errorf("%w: block %d out of bounds", ErrInvalidFrame, i)
		}
	}
	return h, nil
}

// checkShape validates element size, block size and block count against
// the uncompressed length.
func (h *Header) checkShape(nblocks int) error {
	if h.ElemSize < 1 || h.ElemSize > maxElemSize {
		return fmt.Errorf("%w: element size %d", ErrInvalidFrame, h.ElemSize)
	}
	if h.BlockSize < 1 || h.BlockSize > maxBlockSize || h.BlockSize%(8*h.ElemSize) != 0 {
		return fmt.Errorf("%w: block size %d", ErrInvalidFrame, h.BlockSize)
	}
	if h.Length > math.MaxInt-uint64(h.BlockSize) {
		return fmt.Errorf("%w: length %d", ErrInvalidFrame, h.Length)
	}
	want := (h.Length + uint64(h.BlockSize) - 1) / uint64(h.BlockSize)
	if uint64(nblocks) != want {
		return fmt.Errorf("%w: %d blocks for %d bytes, want %d", ErrInvalidFrame, nblocks, h.Length, want)
	}
	return nil
}

func truncated(err error) error {
	if errors.Is(err, io.ErrUnexpectedEOF) {
		return fmt.Errorf("%w: truncated header", ErrInvalidFrame)
	}
	return err
}
