package randpad

import (
	"bytes"
	"crypto/rand"
	"testing"
)

func TestPadAlwaysAddsAtLeastOneByte(t *testing.T) {
	for _, n := range []int{0, 1, 15, 16, 17, 31, 32} {
		data := bytes.Repeat([]byte{0x7A}, n)
		padded, err := Pad(rand.Reader, data, 16)
		if err != nil {
			t.Fatalf("Pad(%d bytes): unexpected error: %s", n, err)
		}
		if len(padded) <= n {
			t.Errorf("Pad(%d bytes) produced %d bytes, want more than input", n, len(padded))
		}
		if len(padded)%16 != 0 {
			t.Errorf("Pad(%d bytes) produced %d bytes, not a multiple of block size", n, len(padded))
		}
		if !bytes.Equal(padded[:n], data) {
			t.Errorf("Pad(%d bytes) does not preserve the original prefix", n)
		}
	}
}

func TestPadBlockSizeOutOfRange(t *testing.T) {
	if _, err := Pad(rand.Reader, []byte("x"), 0); err != ErrBlockSizeOutOfRange {
		t.Errorf("Pad(blockSize=0) err = %v, want ErrBlockSizeOutOfRange", err)
	}
	if _, err := Pad(rand.Reader, []byte("x"), maxBlockSize+1); err != ErrBlockSizeOutOfRange {
		t.Errorf("Pad(blockSize=max+1) err = %v, want ErrBlockSizeOutOfRange", err)
	}
}

func TestPadTailUnpadTailRoundTrip(t *testing.T) {
	payloads := [][]byte{
		[]byte("a"),
		[]byte("hello, world"),
		bytes.Repeat([]byte{0x01}, 33),
	}
	for _, p := range payloads {
		padded, err := PadTail(rand.Reader, p, 16)
		if err != nil {
			t.Fatalf("PadTail: unexpected error: %s", err)
		}
		if len(padded)%16 != 0 {
			t.Errorf("PadTail(%d bytes) produced %d bytes, not block aligned", len(p), len(padded))
		}
		got, err := UnpadTail(padded)
		if err != nil {
			t.Fatalf("UnpadTail: unexpected error: %s", err)
		}
		if !bytes.Equal(got, p) {
			t.Errorf("PadTail/UnpadTail round trip: got %v, want %v", got, p)
		}
	}
}

func TestUnpadTailEmptyInput(t *testing.T) {
	if _, err := UnpadTail(nil); err != ErrEmptyInput {
		t.Errorf("UnpadTail(nil) err = %v, want ErrEmptyInput", err)
	}
}
