package message

import (
	"bytes"
	"errors"
	"fmt"

	"github.com/robert-malhotra/go-bitshuffle/internal/binary"
)

// Filter IDs. IDs below 256 are reserved by HDF5; 32000 and above are the
// registered third-party range.
const (
	FilterDeflate    uint16 = 1     // DEFLATE (zlib)
	FilterShuffle    uint16 = 2     // Byte shuffle
	FilterFletcher32 uint16 = 3     // Fletcher32 checksum
	FilterBitShuffle uint16 = 32008 // Bitshuffle
	FilterZstd       uint16 = 32015 // Zstandard
	FilterDelta      uint16 = 32100 // XOR delta against the previous element
)

// MaxFilters is the largest pipeline a filter mask can describe.
const MaxFilters = 32

// ErrTruncated is returned when a message ends before its declared contents.
var ErrTruncated = errors.New("message truncated")

// FilterInfo describes a single filter in the pipeline.
type FilterInfo struct {
	ID         uint16   // Filter identifier
	Flags      uint16   // Filter flags (bit 0: optional)
	Name       string   // Filter name (optional)
	ClientData []uint32 // Filter parameters
}

// IsOptional returns true if this filter is optional.
func (f *FilterInfo) IsOptional() bool {
	return f.Flags&0x01 != 0
}

// hasName reports whether the name length field is encoded for this filter
// in the given message version.
func (f *FilterInfo) hasName(version uint8) bool {
	return version == 1 || f.ID >= 256
}

// FilterPipeline is the ordered list of filters applied to every block.
type FilterPipeline struct {
	Version uint8
	Filters []FilterInfo
}

// HasFilter returns true if the pipeline contains the given filter ID.
func (m *FilterPipeline) HasFilter(id uint16) bool {
	return m.Index(id) >= 0
}

// Index returns the position of the first filter with the given ID, or -1.
func (m *FilterPipeline) Index(id uint16) int {
	for i, f := range m.Filters {
		if f.ID == id {
			return i
		}
	}
	return -1
}

// CompressionIndex returns the position of the compression filter, or -1.
func (m *FilterPipeline) CompressionIndex() int {
	return max(m.Index(FilterDeflate), m.Index(FilterZstd))
}

// HasCompression returns true if the pipeline has any compression filter.
func (m *FilterPipeline) HasCompression() bool {
	return m.CompressionIndex() >= 0
}

// ParseFilterPipeline decodes a version 1 or 2 filter pipeline message.
func ParseFilterPipeline(data []byte) (*FilterPipeline, error) {
	r := binary.NewReader(bytes.NewReader(data), binary.DefaultConfig())

	version, err := r.ReadUint8()
	if err != nil {
		return nil, fmt.Errorf("filter pipeline: %w", ErrTruncated)
	}
	if version != 1 && version != 2 {
		return nil, fmt.Errorf("filter pipeline: unsupported version %d", version)
	}
	count, err := r.ReadUint8()
	if err != nil {
		return nil, fmt.Errorf("filter pipeline: %w", ErrTruncated)
	}
	if count > MaxFilters {
		return nil, fmt.Errorf("filter pipeline: %d filters exceeds maximum of %d", count, MaxFilters)
	}

	// Version 1 has 6 reserved bytes
	if version == 1 {
		r.Skip(6)
	}

	fp := &FilterPipeline{
		Version: version,
		Filters: make([]FilterInfo, count),
	}
	for i := range fp.Filters {
		if err := parseFilterInfo(r, version, &fp.Filters[i]); err != nil {
			return nil, fmt.Errorf("parsing filter %d: %w", i, err)
		}
	}
	return fp, nil
}

func parseFilterInfo(r *binary.Reader, version uint8, f *FilterInfo) error {
	id, err := r.ReadUint16()
	if err != nil {
		return ErrTruncated
	}
	f.ID = id

	var nameLen uint16
	if f.hasName(version) {
		if nameLen, err = r.ReadUint16(); err != nil {
			return ErrTruncated
		}
	}
	if f.Flags, err = r.ReadUint16(); err != nil {
		return ErrTruncated
	}
	numCD, err := r.ReadUint16()
	if err != nil {
		return ErrTruncated
	}

	if nameLen > 0 {
		name, err := r.ReadBytes(int(nameLen))
		if err != nil {
			return fmt.Errorf("filter name: %w", ErrTruncated)
		}
		if i := bytes.IndexByte(name, 0); i >= 0 {
			name = name[:i]
		}
		f.Name = string(name)

		// v1: names are padded to 8-byte boundary
		if version == 1 && nameLen%8 != 0 {
			r.Skip(int64(8 - nameLen%8))
		}
	}

	if numCD > 0 {
		f.ClientData = make([]uint32, numCD)
	}
	for j := range f.ClientData {
		if f.ClientData[j], err = r.ReadUint32(); err != nil {
			return fmt.Errorf("client data %d: %w", j, ErrTruncated)
		}
	}

	// v1: padding if odd number of client data values
	if version == 1 && numCD%2 != 0 {
		r.Skip(4)
	}
	return nil
}

// SerializedSize returns the encoded size of the pipeline in version 2
// layout.
func (m *FilterPipeline) SerializedSize() int {
	size := 2
	for i := range m.Filters {
		f := &m.Filters[i]
		size += 6 + 4*len(f.ClientData)
		if f.hasName(2) {
			size += 2 + encodedNameLen(f.Name)
		}
	}
	return size
}

// encodedNameLen includes the terminating NUL.
func encodedNameLen(name string) int {
	if name == "" {
		return 0
	}
	return len(name) + 1
}

// Serialize writes the pipeline in version 2 layout, which omits the name
// field for the reserved filter IDs and pads nothing.
func (m *FilterPipeline) Serialize(w *binary.Writer) error {
	if len(m.Filters) > MaxFilters {
		return fmt.Errorf("filter pipeline: %d filters exceeds maximum of %d", len(m.Filters), MaxFilters)
	}
	if err := w.WriteUint8(2); err != nil {
		return err
	}
	if err := w.WriteUint8(uint8(len(m.Filters))); err != nil {
		return err
	}

	for i := range m.Filters {
		f := &m.Filters[i]
		if len(f.ClientData) > 0xFFFF || encodedNameLen(f.Name) > 0xFFFF {
			return fmt.Errorf("filter %d: parameters too large to encode", f.ID)
		}
		if err := w.WriteUint16(f.ID); err != nil {
			return err
		}
		named := f.hasName(2)
		if named {
			if err := w.WriteUint16(uint16(encodedNameLen(f.Name))); err != nil {
				return err
			}
		}
		if err := w.WriteUint16(f.Flags); err != nil {
			return err
		}
		if err := w.WriteUint16(uint16(len(f.ClientData))); err != nil {
			return err
		}
		if named && f.Name != "" {
			if err := w.WriteBytes(append([]byte(f.Name), 0)); err != nil {
				return err
			}
		}
		for _, v := range f.ClientData {
			if err := w.WriteUint32(v); err != nil {
				return err
			}
		}
	}
	return nil
}
