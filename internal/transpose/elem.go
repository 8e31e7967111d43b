package transpose

// Copy duplicates size*elemSize bytes from in to out. It is the no-op
// baseline used when profiling the transforms and cannot fail.
func Copy(in, out []byte, size, elemSize int) int {
	n := size * elemSize
	copy(out[:n], in[:n])
	return n
}

// Elem transposes a rows × cols grid of elemSize-byte elements stored
// row-major in in, writing the cols × rows result to out.
func Elem(in, out []byte, rows, cols, elemSize int) int {
	for ii := 0; ii < rows; ii++ {
		for jj := 0; jj < cols; jj++ {
			dst := (jj*rows + ii) * elemSize
			src := (ii*cols + jj) * elemSize
			copy(out[dst:dst+elemSize], in[src:src+elemSize])
		}
	}
	return rows * cols * elemSize
}

// ByteElem transposes the bytes of every element across elements:
// out[j*size+i] = in[i*elemSize+j].
func ByteElem(in, out []byte, size, elemSize int) (int, error) {
	return ByteElemRemainder(in, out, size, elemSize, 0)
}

// ByteElemRemainder is ByteElem restricted to elements start..size-1, so a
// bulk kernel that handled the first start elements can hand the tail over.
// start must be a multiple of 8.
func ByteElemRemainder(in, out []byte, size, elemSize, start int) (int, error) {
	if err := checkShape(size, elemSize); err != nil {
		return 0, err
	}
	if err := checkMultEight("start", start); err != nil {
		return 0, err
	}

	if size > start {
		// Groups of 8 elements keep the inner loop fixed-length.
		ii := start
		for ; ii+7 < size; ii += 8 {
			for jj := 0; jj < elemSize; jj++ {
				row := out[jj*size+ii : jj*size+ii+8]
				for kk := range row {
					row[kk] = in[(ii+kk)*elemSize+jj]
				}
			}
		}
		for ; ii < size; ii++ {
			for jj := 0; jj < elemSize; jj++ {
				out[jj*size+ii] = in[ii*elemSize+jj]
			}
		}
	}
	return size * elemSize, nil
}

// BitrowEight regroups the output of BitByte so that every bitrow is
// contiguous: the 8 × elemSize grid of (size/8)-byte bit-planes is
// transposed.
func BitrowEight(in, out []byte, size, elemSize int) (int, error) {
	if err := checkShape(size, elemSize); err != nil {
		return 0, err
	}
	if err := checkMultEight("size", size); err != nil {
		return 0, err
	}
	return Elem(in, out, 8, elemSize, size/8), nil
}

// ByteBitrow undoes BitrowEight for data organized as 8*elemSize bitrows of
// size/8 bytes each, producing one 8-byte group per (element group, byte)
// pair ready for ShuffleBitEightElem.
func ByteBitrow(in, out []byte, size, elemSize int) (int, error) {
	if err := checkShape(size, elemSize); err != nil {
		return 0, err
	}
	if err := checkMultEight("size", size); err != nil {
		return 0, err
	}

	nbyteRow := size / 8
	for jj := 0; jj < elemSize; jj++ {
		for ii := 0; ii < nbyteRow; ii++ {
			group := out[ii*8*elemSize+jj*8 : ii*8*elemSize+jj*8+8]
			for kk := range group {
				group[kk] = in[(jj*8+kk)*nbyteRow+ii]
			}
		}
	}
	return size * elemSize, nil
}
