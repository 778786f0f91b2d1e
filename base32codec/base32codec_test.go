package base32codec

import (
	"bytes"
	"testing"
)

func TestRFC4648KnownVectors(t *testing.T) {
	cases := []struct {
		in   []byte
		want string
	}{
		{[]byte{}, ""},
		{[]byte{102}, "MY======"},
		{[]byte{102, 111}, "MZXQ===="},
		{[]byte{102, 111, 111}, "MZXW6==="},
		{[]byte{102, 111, 111, 98}, "MZXW6YQ="},
		{[]byte{102, 111, 111, 98, 97}, "MZXW6YTB"},
	}
	for _, c := range cases {
		got := RFC4648.EncodePadded(c.in)
		if got != c.want {
			t.Errorf("EncodePadded(%v) = %q, want %q", c.in, got, c.want)
		}
		back, err := RFC4648.Decode(got)
		if err != nil {
			t.Fatalf("Decode(%q): unexpected error: %s", got, err)
		}
		if !bytes.Equal(back, c.in) {
			t.Errorf("Decode(Encode(%v)) = %v", c.in, back)
		}
	}
}

func TestSpellSafeKnownVectors(t *testing.T) {
	// Same bit groupings as RFC4648, projected through the spell-safe
	// alphabet's character table: index 12 -> 'M'/'J', index 24 -> 'Y'/'j'.
	got := SpellSafe.EncodePadded([]byte{102})
	if got != "Jj======" {
		t.Errorf("SpellSafe.EncodePadded([102]) = %q, want %q", got, "Jj======")
	}
}

func TestEncodeUnpaddedHasNoPadding(t *testing.T) {
	for n := 0; n < 20; n++ {
		data := make([]byte, n)
		for i := range data {
			data[i] = byte(i)
		}
		got := RFC4648.EncodeUnpadded(data)
		for _, c := range got {
			if c == '=' {
				t.Fatalf("EncodeUnpadded(%d bytes) contains padding: %q", n, got)
			}
		}
		back, err := RFC4648.Decode(got)
		if err != nil {
			t.Fatalf("Decode(unpadded, %d bytes): %s", n, err)
		}
		if !bytes.Equal(back, data) {
			t.Errorf("round trip mismatch for %d bytes", n)
		}
	}
}

func TestDecodeInvalidChar(t *testing.T) {
	if _, err := RFC4648.Decode("MY0*===="); err != ErrInvalidChar {
		t.Errorf("Decode with invalid char err = %v, want ErrInvalidChar", err)
	}
}

func TestDecodeInvalidLength(t *testing.T) {
	// A single leftover symbol (lastLen == 1 mod 8) can never decode to a
	// whole number of bytes.
	if _, err := RFC4648.Decode("M"); err != ErrInvalidLength {
		t.Errorf("Decode(\"M\") err = %v, want ErrInvalidLength", err)
	}
	if _, err := RFC4648.Decode("MZX"); err != ErrInvalidLength {
		t.Errorf("Decode(\"MZX\") err = %v, want ErrInvalidLength", err)
	}
}

func TestAlphabetsAreDistinct(t *testing.T) {
	if RFC4648.chars == SpellSafe.chars {
		t.Error("RFC4648 and SpellSafe must not be the same alphabet")
	}
}
