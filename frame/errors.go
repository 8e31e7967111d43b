package frame

import "errors"

// Common errors
var (
	ErrInvalidFrame       = errors.New("frame: invalid frame")
	ErrChecksum           = errors.New("frame: header checksum mismatch")
	ErrUnsupportedVersion = errors.New("frame: unsupported version")
	ErrInvalidOption      = errors.New("frame: invalid option")
)
