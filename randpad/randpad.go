// Package randpad implements the random block-padding scheme used by the
// current token format, plus the arbitrary-tail padding scheme the two
// oldest legacy formats use.
//
// Random padding never removes itself: it always appends at least one
// byte, even when the input already sits on a block boundary, because the
// blinded wrapper it pads carries the true payload length in-band.
package randpad

import (
	"errors"
	"io"
)

// ErrBlockSizeOutOfRange is returned by Pad when blockSize is outside
// [1, 65536].
var ErrBlockSizeOutOfRange = errors.New("randpad: block size out of range")

// ErrEmptyInput is returned by UnpadTail when data is empty.
var ErrEmptyInput = errors.New("randpad: empty input")

const maxBlockSize = 65536

// Pad appends cryptographically random bytes to data so the result is a
// whole number of blockSize-byte blocks; it always appends between 1 and
// blockSize bytes.
func Pad(rnd io.Reader, data []byte, blockSize int) ([]byte, error) {
	if blockSize < 1 || blockSize > maxBlockSize {
		return nil, ErrBlockSizeOutOfRange
	}

	p := blockSize - (len(data) % blockSize)

	out := make([]byte, len(data)+p)
	copy(out, data)
	if _, err := io.ReadFull(rnd, out[len(data):]); err != nil {
		return nil, err
	}
	return out, nil
}

// PadTail implements the legacy (format 1, 2) arbitrary-tail padding: the
// pad byte is a random value distinct from the last data byte, repeated
// blockSize-(len(data) mod blockSize) times, so the padded length is
// always a multiple of blockSize with at least one padding byte.
func PadTail(rnd io.Reader, data []byte, blockSize int) ([]byte, error) {
	if blockSize < 1 || blockSize > maxBlockSize {
		return nil, ErrBlockSizeOutOfRange
	}

	var last byte
	if len(data) > 0 {
		last = data[len(data)-1]
	}

	padByte, err := randomByteExcept(rnd, last)
	if err != nil {
		return nil, err
	}

	p := blockSize - (len(data) % blockSize)
	out := make([]byte, len(data)+p)
	copy(out, data)
	for i := len(data); i < len(out); i++ {
		out[i] = padByte
	}
	return out, nil
}

// UnpadTail reverses PadTail, scanning back from the end over every byte
// equal to the final byte.
func UnpadTail(data []byte) ([]byte, error) {
	if len(data) == 0 {
		return nil, ErrEmptyInput
	}
	last := data[len(data)-1]
	i := len(data)
	for i > 0 && data[i-1] == last {
		i--
	}
	return data[:i], nil
}

func randomByteExcept(rnd io.Reader, except byte) (byte, error) {
	var b [1]byte
	for {
		if _, err := io.ReadFull(rnd, b[:]); err != nil {
			return 0, err
		}
		if b[0] != except {
			return b[0], nil
		}
	}
}
