package transpose

import (
	"bytes"
	"encoding/binary"
	"errors"
	"math"
	"math/bits"
	"math/rand"
	"sync"
	"testing"
)

var butterflies = []*Butterfly{LittleEndian, BigEndian}

func randomBytes(t *testing.T, seed int64, n int) []byte {
	t.Helper()
	rng := rand.New(rand.NewSource(seed))
	buf := make([]byte, n)
	rng.Read(buf)
	return buf
}

func sequential(n int) []byte {
	buf := make([]byte, n)
	for i := range buf {
		buf[i] = byte(i)
	}
	return buf
}

// reference8x8 transposes the matrix one bit at a time: bit c of byte r
// moves to bit r of byte c, bytes taken in memory order.
func reference8x8(order binary.ByteOrder, x uint64) uint64 {
	var in, out [8]byte
	order.PutUint64(in[:], x)
	for row := 0; row < 8; row++ {
		for col := 0; col < 8; col++ {
			if in[row]&(1<<col) != 0 {
				out[col] |= 1 << row
			}
		}
	}
	return order.Uint64(out[:])
}

func onesCount(buf []byte) int {
	n := 0
	for _, b := range buf {
		n += bits.OnesCount8(b)
	}
	return n
}

func TestTranspose8x8MatchesReference(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	for _, b := range butterflies {
		for i := 0; i < 1000; i++ {
			x := rng.Uint64()
			got := b.Transpose8x8(x)
			want := reference8x8(b.order, x)
			if got != want {
				t.Fatalf("%s: Transpose8x8(%#016x) = %#016x, want %#016x", b.Name(), x, got, want)
			}
			if back := b.Transpose8x8(got); back != x {
				t.Fatalf("%s: Transpose8x8 not an involution for %#016x: got %#016x", b.Name(), x, back)
			}
		}
	}
}

func TestTranspose8x8KnownValues(t *testing.T) {
	tests := []struct {
		b    *Butterfly
		in   uint64
		want uint64
	}{
		{LittleEndian, 0, 0},
		{LittleEndian, ^uint64(0), ^uint64(0)},
		{LittleEndian, 0x0102040810204080, 0x0102040810204080},
		{LittleEndian, 0x00000000000000FF, 0x0101010101010101},
		{BigEndian, 0x00000000000000FF, 0x8080808080808080},
		{BigEndian, ^uint64(0), ^uint64(0)},
	}
	for _, tt := range tests {
		if got := tt.b.Transpose8x8(tt.in); got != tt.want {
			t.Errorf("%s: Transpose8x8(%#016x) = %#016x, want %#016x", tt.b.Name(), tt.in, got, tt.want)
		}
	}
}

func TestNativeSelection(t *testing.T) {
	if selectButterfly(false) != LittleEndian {
		t.Error("little-endian host should select the diagonal variant")
	}
	if selectButterfly(true) != BigEndian {
		t.Error("big-endian host should select the anti-diagonal variant")
	}
	if Native() != LittleEndian && Native() != BigEndian {
		t.Errorf("unexpected native variant %q", Native().Name())
	}
}

func TestCopy(t *testing.T) {
	in := sequential(24)
	out := make([]byte, 24)
	if n := Copy(in, out, 6, 4); n != 24 {
		t.Errorf("Copy returned %d, want 24", n)
	}
	if !bytes.Equal(in, out) {
		t.Errorf("Copy mismatch:\ngot:  %v\nwant: %v", out, in)
	}
	if n := Copy(nil, nil, 0, 4); n != 0 {
		t.Errorf("Copy of zero elements returned %d", n)
	}
}

func TestElem(t *testing.T) {
	// 2 × 3 grid of 2-byte elements.
	in := []byte{
		0x00, 0x01, 0x02, 0x03, 0x04, 0x05,
		0x10, 0x11, 0x12, 0x13, 0x14, 0x15,
	}
	want := []byte{
		0x00, 0x01, 0x10, 0x11,
		0x02, 0x03, 0x12, 0x13,
		0x04, 0x05, 0x14, 0x15,
	}
	out := make([]byte, len(in))
	if n := Elem(in, out, 2, 3, 2); n != len(in) {
		t.Errorf("Elem returned %d, want %d", n, len(in))
	}
	if !bytes.Equal(out, want) {
		t.Errorf("Elem mismatch:\ngot:  %v\nwant: %v", out, want)
	}

	back := make([]byte, len(in))
	Elem(out, back, 3, 2, 2)
	if !bytes.Equal(back, in) {
		t.Errorf("transposing twice should restore the grid:\ngot:  %v\nwant: %v", back, in)
	}
}

func TestByteElem(t *testing.T) {
	in := []byte{
		0x01, 0x02, 0x03, 0x04,
		0x11, 0x12, 0x13, 0x14,
		0x21, 0x22, 0x23, 0x24,
	}
	want := []byte{
		0x01, 0x11, 0x21,
		0x02, 0x12, 0x22,
		0x03, 0x13, 0x23,
		0x04, 0x14, 0x24,
	}
	out := make([]byte, len(in))
	n, err := ByteElem(in, out, 3, 4)
	if err != nil {
		t.Fatalf("ByteElem failed: %v", err)
	}
	if n != 12 {
		t.Errorf("ByteElem returned %d, want 12", n)
	}
	if !bytes.Equal(out, want) {
		t.Errorf("ByteElem mismatch:\ngot:  %v\nwant: %v", out, want)
	}
}

func TestByteElemRemainder(t *testing.T) {
	const size, elemSize = 21, 3
	in := randomBytes(t, 2, size*elemSize)
	full := make([]byte, len(in))
	if _, err := ByteElem(in, full, size, elemSize); err != nil {
		t.Fatalf("ByteElem failed: %v", err)
	}

	for _, start := range []int{8, 16, 24} {
		out := make([]byte, len(in))
		n, err := ByteElemRemainder(in, out, size, elemSize, start)
		if err != nil {
			t.Fatalf("start=%d: %v", start, err)
		}
		if n != size*elemSize {
			t.Errorf("start=%d: returned %d, want %d", start, n, size*elemSize)
		}
		for j := 0; j < elemSize; j++ {
			for i := 0; i < size; i++ {
				got := out[j*size+i]
				want := byte(0)
				if i >= start {
					want = full[j*size+i]
				}
				if got != want {
					t.Fatalf("start=%d: out[%d][%d] = %#x, want %#x", start, j, i, got, want)
				}
			}
		}
	}
}

func TestByteElemRemainderRejectsUnalignedStart(t *testing.T) {
	out := make([]byte, 32)
	_, err := ByteElemRemainder(make([]byte, 32), out, 16, 2, 4)
	if !errors.Is(err, ErrInvalidSize) {
		t.Fatalf("expected ErrInvalidSize, got %v", err)
	}
	if !bytes.Equal(out, make([]byte, 32)) {
		t.Error("output written despite error")
	}
}

func TestBitByte(t *testing.T) {
	for _, b := range butterflies {
		out := make([]byte, 8)
		if _, err := b.BitByte(sequential(8), out, 8, 1); err != nil {
			t.Fatalf("%s: BitByte failed: %v", b.Name(), err)
		}
		// Plane k collects bit k of bytes 0..7.
		want := []byte{0xAA, 0xCC, 0xF0, 0, 0, 0, 0, 0}
		if !bytes.Equal(out, want) {
			t.Errorf("%s: BitByte mismatch:\ngot:  %v\nwant: %v", b.Name(), out, want)
		}
	}
}

func TestBitByteRejectsUnalignedTotal(t *testing.T) {
	for _, b := range butterflies {
		_, err := b.BitByte(make([]byte, 12), make([]byte, 12), 4, 3)
		if !errors.Is(err, ErrInvalidSize) {
			t.Errorf("%s: expected ErrInvalidSize, got %v", b.Name(), err)
		}
		_, err = b.BitByteRemainder(make([]byte, 16), make([]byte, 16), 8, 2, 4)
		if !errors.Is(err, ErrInvalidSize) {
			t.Errorf("%s: expected ErrInvalidSize for start byte, got %v", b.Name(), err)
		}
	}
}

func TestBitByteRemainder(t *testing.T) {
	const size, elemSize = 16, 3
	in := randomBytes(t, 3, size*elemSize)
	for _, b := range butterflies {
		full := make([]byte, len(in))
		if _, err := b.BitByte(in, full, size, elemSize); err != nil {
			t.Fatalf("%s: %v", b.Name(), err)
		}
		out := make([]byte, len(in))
		if _, err := b.BitByteRemainder(in, out, size, elemSize, 16); err != nil {
			t.Fatalf("%s: %v", b.Name(), err)
		}
		rowLen := size * elemSize / 8
		for plane := 0; plane < 8; plane++ {
			for ii := 0; ii < rowLen; ii++ {
				want := full[plane*rowLen+ii]
				if ii < 2 {
					want = 0
				}
				if got := out[plane*rowLen+ii]; got != want {
					t.Fatalf("%s: plane %d byte %d = %#x, want %#x", b.Name(), plane, ii, got, want)
				}
			}
		}
	}
}

func TestBitrowEightAndByteBitrowShapes(t *testing.T) {
	if _, err := BitrowEight(make([]byte, 12), make([]byte, 12), 12, 1); !errors.Is(err, ErrInvalidSize) {
		t.Errorf("BitrowEight: expected ErrInvalidSize, got %v", err)
	}
	if _, err := ByteBitrow(make([]byte, 12), make([]byte, 12), 12, 1); !errors.Is(err, ErrInvalidSize) {
		t.Errorf("ByteBitrow: expected ErrInvalidSize, got %v", err)
	}
	if _, err := ByteElem(nil, nil, -1, 1); !errors.Is(err, ErrInvalidSize) {
		t.Errorf("ByteElem: expected ErrInvalidSize for negative size, got %v", err)
	}
}

func TestBitElemKnownVectors(t *testing.T) {
	tests := []struct {
		name           string
		size, elemSize int
		in             []byte
		want           []byte
	}{
		{
			name: "sequential 8x1",
			size: 8, elemSize: 1,
			in:   sequential(8),
			want: []byte{0xAA, 0xCC, 0xF0, 0, 0, 0, 0, 0},
		},
		{
			name: "single low bit",
			size: 8, elemSize: 1,
			in:   []byte{0x01, 0, 0, 0, 0, 0, 0, 0},
			want: []byte{0x01, 0, 0, 0, 0, 0, 0, 0},
		},
		{
			name: "single high bit",
			size: 8, elemSize: 1,
			in:   []byte{0x80, 0, 0, 0, 0, 0, 0, 0},
			want: []byte{0, 0, 0, 0, 0, 0, 0, 0x01},
		},
		{
			name: "sequential 16x4",
			size: 16, elemSize: 4,
			in: sequential(64),
			want: []byte{
				0, 0, 0, 0, 170, 170, 204, 204, 240, 240, 0, 255, 0, 0, 0, 0,
				255, 255, 0, 0, 170, 170, 204, 204, 240, 240, 0, 255, 0, 0, 0, 0,
				0, 0, 255, 255, 170, 170, 204, 204, 240, 240, 0, 255, 0, 0, 0, 0,
				255, 255, 255, 255, 170, 170, 204, 204, 240, 240, 0, 255, 0, 0, 0, 0,
			},
		},
	}

	for _, tt := range tests {
		for _, b := range butterflies {
			out := make([]byte, len(tt.in))
			n, err := b.BitElem(tt.in, out, tt.size, tt.elemSize)
			if err != nil {
				t.Fatalf("%s/%s: BitElem failed: %v", tt.name, b.Name(), err)
			}
			if n != len(tt.in) {
				t.Errorf("%s/%s: returned %d, want %d", tt.name, b.Name(), n, len(tt.in))
			}
			if !bytes.Equal(out, tt.want) {
				t.Errorf("%s/%s: mismatch:\ngot:  %v\nwant: %v", tt.name, b.Name(), out, tt.want)
			}
		}
	}
}

func TestBitElemRoundtrip(t *testing.T) {
	sizes := []int{0, 8, 16, 24, 64, 128, 1024}
	elemSizes := []int{0, 1, 2, 3, 4, 5, 8, 12, 16}
	for _, b := range butterflies {
		for _, size := range sizes {
			for _, elemSize := range elemSizes {
				in := randomBytes(t, int64(size*31+elemSize), size*elemSize)
				shuffled := make([]byte, len(in))
				restored := make([]byte, len(in))

				if _, err := b.BitElem(in, shuffled, size, elemSize); err != nil {
					t.Fatalf("%s size=%d elem=%d: BitElem: %v", b.Name(), size, elemSize, err)
				}
				if onesCount(shuffled) != onesCount(in) {
					t.Fatalf("%s size=%d elem=%d: bit count changed", b.Name(), size, elemSize)
				}
				if _, err := b.UntransBitElem(shuffled, restored, size, elemSize); err != nil {
					t.Fatalf("%s size=%d elem=%d: UntransBitElem: %v", b.Name(), size, elemSize, err)
				}
				if !bytes.Equal(restored, in) {
					t.Fatalf("%s size=%d elem=%d: roundtrip mismatch", b.Name(), size, elemSize)
				}

				// The inverse applied first must also be undone by the forward transform.
				if _, err := b.UntransBitElem(in, shuffled, size, elemSize); err != nil {
					t.Fatalf("%s: %v", b.Name(), err)
				}
				if _, err := b.BitElem(shuffled, restored, size, elemSize); err != nil {
					t.Fatalf("%s: %v", b.Name(), err)
				}
				if !bytes.Equal(restored, in) {
					t.Fatalf("%s size=%d elem=%d: inverse-then-forward mismatch", b.Name(), size, elemSize)
				}
			}
		}
	}
}

func TestVariantsAgree(t *testing.T) {
	in := randomBytes(t, 4, 64*7)
	le := make([]byte, len(in))
	be := make([]byte, len(in))
	if _, err := LittleEndian.BitElem(in, le, 64, 7); err != nil {
		t.Fatal(err)
	}
	if _, err := BigEndian.BitElem(in, be, 64, 7); err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(le, be) {
		t.Error("diagonal and anti-diagonal variants produced different layouts")
	}
}

func TestBitElemFixedPoints(t *testing.T) {
	for _, fill := range []byte{0x00, 0xFF} {
		in := bytes.Repeat([]byte{fill}, 32*6)
		out := make([]byte, len(in))
		if _, err := BitElem(in, out, 32, 6); err != nil {
			t.Fatal(err)
		}
		if !bytes.Equal(out, in) {
			t.Errorf("uniform %#x input was not a fixed point", fill)
		}
	}
}

func TestBitElemRejectsUnalignedSize(t *testing.T) {
	in := sequential(28)
	out := make([]byte, 28)
	for _, fn := range []func([]byte, []byte, int, int) (int, error){BitElem, UntransBitElem} {
		n, err := fn(in, out, 7, 4)
		if !errors.Is(err, ErrInvalidSize) {
			t.Fatalf("expected ErrInvalidSize, got %v", err)
		}
		if n != 0 {
			t.Errorf("expected 0 bytes processed, got %d", n)
		}
		if !bytes.Equal(out, make([]byte, 28)) {
			t.Error("output written despite size error")
		}
	}
}

func TestBitElemOutOfMemory(t *testing.T) {
	saved := maxScratch
	maxScratch = 15
	t.Cleanup(func() { maxScratch = saved })

	out := make([]byte, 16)
	_, err := BitElem(sequential(16), out, 16, 1)
	if !errors.Is(err, ErrOutOfMemory) {
		t.Fatalf("expected ErrOutOfMemory, got %v", err)
	}
	if !bytes.Equal(out, make([]byte, 16)) {
		t.Error("output written despite allocation failure")
	}
	if _, err := UntransBitElem(sequential(16), out, 16, 1); !errors.Is(err, ErrOutOfMemory) {
		t.Fatalf("expected ErrOutOfMemory from inverse, got %v", err)
	}
}

func TestScratchOverflow(t *testing.T) {
	_, err := acquireScratch(math.MaxInt, 3)
	if !errors.Is(err, ErrOutOfMemory) {
		t.Fatalf("expected ErrOutOfMemory, got %v", err)
	}
}

func TestScratchReuse(t *testing.T) {
	s, err := acquireScratch(64, 4)
	if err != nil {
		t.Fatal(err)
	}
	if len(s.buf) != 256 {
		t.Fatalf("scratch length %d, want 256", len(s.buf))
	}
	s.release()
	if s.buf != nil {
		t.Error("released scratch still references its buffer")
	}

	s, err = acquireScratch(8, 2)
	if err != nil {
		t.Fatal(err)
	}
	defer s.release()
	if len(s.buf) != 16 {
		t.Errorf("scratch length %d, want 16", len(s.buf))
	}
}

func TestBitElemConcurrent(t *testing.T) {
	var wg sync.WaitGroup
	errs := make(chan error, 16)
	for g := 0; g < 16; g++ {
		wg.Add(1)
		go func(g int) {
			defer wg.Done()
			size, elemSize := 8*(g+1), g%5+1
			in := make([]byte, size*elemSize)
			rand.New(rand.NewSource(int64(g))).Read(in)
			for i := 0; i < 50; i++ {
				shuffled := make([]byte, len(in))
				restored := make([]byte, len(in))
				if _, err := BitElem(in, shuffled, size, elemSize); err != nil {
					errs <- err
					return
				}
				if _, err := UntransBitElem(shuffled, restored, size, elemSize); err != nil {
					errs <- err
					return
				}
				if !bytes.Equal(in, restored) {
					errs <- errors.New("concurrent roundtrip mismatch")
					return
				}
			}
		}(g)
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		t.Error(err)
	}
}

func BenchmarkBitElem(b *testing.B) {
	in := make([]byte, 8192*4)
	rand.New(rand.NewSource(5)).Read(in)
	out := make([]byte, len(in))
	b.SetBytes(int64(len(in)))
	for i := 0; i < b.N; i++ {
		if _, err := BitElem(in, out, 8192, 4); err != nil {
			b.Fatal(err)
		}
	}
}

func BenchmarkCopy(b *testing.B) {
	in := make([]byte, 8192*4)
	out := make([]byte, len(in))
	b.SetBytes(int64(len(in)))
	for i := 0; i < b.N; i++ {
		Copy(in, out, 8192, 4)
	}
}
