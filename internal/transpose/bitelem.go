package transpose

// BitElem bitshuffles size elements of elemSize bytes from in to out using
// the native butterfly.
func BitElem(in, out []byte, size, elemSize int) (int, error) {
	return native.BitElem(in, out, size, elemSize)
}

// UntransBitElem reverses BitElem using the native butterfly. size and
// elemSize must match the values used to shuffle.
func UntransBitElem(in, out []byte, size, elemSize int) (int, error) {
	return native.UntransBitElem(in, out, size, elemSize)
}

// BitElem transposes the bits within elements:
// ByteElem(in→out), BitByte(out→scratch), BitrowEight(scratch→out).
//
// size must be a multiple of 8. On error the contents of out are undefined,
// except that a shape error is reported before out is written.
func (b *Butterfly) BitElem(in, out []byte, size, elemSize int) (int, error) {
	if err := checkShape(size, elemSize); err != nil {
		return 0, err
	}
	if err := checkMultEight("size", size); err != nil {
		return 0, err
	}

	tmp, err := acquireScratch(size, elemSize)
	if err != nil {
		return 0, err
	}
	defer tmp.release()

	if _, err := ByteElem(in, out, size, elemSize); err != nil {
		return 0, err
	}
	if _, err := b.BitByte(out, tmp.buf, size, elemSize); err != nil {
		return 0, err
	}
	return BitrowEight(tmp.buf, out, size, elemSize)
}

// UntransBitElem undoes BitElem: ByteBitrow(in→scratch) followed by the
// fused ShuffleBitEightElem(scratch→out).
func (b *Butterfly) UntransBitElem(in, out []byte, size, elemSize int) (int, error) {
	if err := checkShape(size, elemSize); err != nil {
		return 0, err
	}
	if err := checkMultEight("size", size); err != nil {
		return 0, err
	}

	tmp, err := acquireScratch(size, elemSize)
	if err != nil {
		return 0, err
	}
	defer tmp.release()

	if _, err := ByteBitrow(in, tmp.buf, size, elemSize); err != nil {
		return 0, err
	}
	return b.ShuffleBitEightElem(tmp.buf, out, size, elemSize)
}
