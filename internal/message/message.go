// Package message encodes the header messages stored in a frame.
//
// The only message a frame carries today is the filter pipeline, laid out
// the way HDF5 lays out its filter pipeline header message (type 0x000B),
// so a block's filter list and client data can be read by any tool that
// understands that layout.
package message

import (
	"github.com/robert-malhotra/go-bitshuffle/internal/binary"
)

// Serializable is the interface for messages that can be serialized to bytes.
type Serializable interface {
	// Serialize writes the message to the writer.
	Serialize(w *binary.Writer) error
	// SerializedSize returns the size in bytes when serialized.
	SerializedSize() int
}

// Encode serializes msg into a new byte slice.
func Encode(msg Serializable) ([]byte, error) {
	buf := binary.NewBuffer(msg.SerializedSize())
	if err := msg.Serialize(binary.NewWriter(buf, binary.DefaultConfig())); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
