package filter

import (
	"fmt"

	"github.com/klauspost/compress/zstd"

	"github.com/robert-malhotra/go-bitshuffle/internal/message"
)

// DefaultZstdLevel is the zstd level used when client data is empty.
const DefaultZstdLevel = 3

// Zstd implements the Zstandard filter. Its encoder and decoder are safe
// for concurrent EncodeAll/DecodeAll calls and are shared by every block.
type Zstd struct {
	level int
	enc   *zstd.Encoder
	dec   *zstd.Decoder
}

// NewZstd creates a new Zstandard filter.
// Client data: [0] = compression level (1-22, 0 or empty for the default)
func NewZstd(clientData []uint32) (*Zstd, error) {
	level := DefaultZstdLevel
	if len(clientData) > 0 && clientData[0] != 0 {
		if clientData[0] > 22 {
			return nil, fmt.Errorf("%w: zstd level %d out of range 1-22", ErrInvalidParams, clientData[0])
		}
		level = int(clientData[0])
	}

	enc, err := zstd.NewWriter(nil,
		zstd.WithEncoderLevel(zstd.EncoderLevelFromZstd(level)),
		zstd.WithEncoderCRC(false))
	if err != nil {
		return nil, fmt.Errorf("zstd encoder: %w", err)
	}
	dec, err := zstd.NewReader(nil)
	if err != nil {
		enc.Close()
		return nil, fmt.Errorf("zstd decoder: %w", err)
	}
	return &Zstd{level: level, enc: enc, dec: dec}, nil
}

func (f *Zstd) ID() uint16 {
	return message.FilterZstd
}

func (f *Zstd) Encode(input []byte) ([]byte, error) {
	return f.enc.EncodeAll(input, make([]byte, 0, len(input)/2+32)), nil
}

func (f *Zstd) Decode(input []byte) ([]byte, error) {
	output, err := f.dec.DecodeAll(input, nil)
	if err != nil {
		return nil, fmt.Errorf("zstd decode: %w", err)
	}
	return output, nil
}

// Close releases the encoder and decoder.
func (f *Zstd) Close() error {
	f.dec.Close()
	return f.enc.Close()
}
