// Package blinding wraps a payload with random prefix/postfix bytes of
// randomized length so that the wrapped length reveals no useful bound on
// the payload's true length, while still carrying that true length in-band
// via the packedint codec.
package blinding

import (
	"errors"
	"io"

	"github.com/pschlump/splitkeycrypt/packedint"
)

// ErrMinLenOutOfRange is returned by Wrap when minTotalLen is outside
// [0, 256].
var ErrMinLenOutOfRange = errors.New("blinding: min_total_len out of range")

// ErrInvalidWrapper is returned by Unwrap whenever the input fails any of
// the blinded-wrapper structural rules.
var ErrInvalidWrapper = errors.New("blinding: invalid blinded byte array")

// MaxMinTotalLen is the largest min_total_len Wrap accepts.
const MaxMinTotalLen = 256

// Wrap assembles the blinded wrapper for payload, expanding the random
// prefix/postfix so the total length is at least minTotalLen.
func Wrap(rnd io.Reader, payload []byte, minTotalLen int) ([]byte, error) {
	if minTotalLen < 0 || minTotalLen > MaxMinTotalLen {
		return nil, ErrMinLenOutOfRange
	}

	prefixLen, err := randomNibble(rnd)
	if err != nil {
		return nil, err
	}
	postfixLen, err := randomNibble(rnd)
	if err != nil {
		return nil, err
	}

	packedLen, err := packedint.Encode(int64(len(payload)))
	if err != nil {
		return nil, err
	}

	h := 2 + len(packedLen) + prefixLen + len(payload) + postfixLen
	if h < minTotalLen {
		diff := minTotalLen - h
		half := diff / 2
		prefixLen += half
		postfixLen += half
		if diff%2 != 0 {
			if diff&0x2 != 0 {
				prefixLen++
			} else {
				postfixLen++
			}
		}
	}

	randomBytes := make([]byte, prefixLen+postfixLen)
	if _, err := io.ReadFull(rnd, randomBytes); err != nil {
		return nil, err
	}
	defer wipe(randomBytes)

	total := 2 + len(packedLen) + prefixLen + len(payload) + postfixLen
	out := make([]byte, 0, total)
	out = append(out, byte(prefixLen), byte(postfixLen))
	out = append(out, packedLen...)
	out = append(out, randomBytes[:prefixLen]...)
	out = append(out, payload...)
	out = append(out, randomBytes[prefixLen:]...)

	wipe(packedLen)

	return out, nil
}

// Unwrap recovers the original payload from a blinded wrapper produced by
// Wrap.
func Unwrap(wrapped []byte) ([]byte, error) {
	if len(wrapped) < 3 {
		return nil, ErrInvalidWrapper
	}

	prefixLen := int(wrapped[0])
	postfixLen := int(wrapped[1])
	if wrapped[0]&0x80 != 0 || wrapped[1]&0x80 != 0 {
		return nil, ErrInvalidWrapper
	}

	dataLen, k, err := packedint.DecodeAt(wrapped, 2)
	if err != nil {
		return nil, ErrInvalidWrapper
	}

	need := 2 + prefixLen + k + int(dataLen) + postfixLen
	if need > len(wrapped) || dataLen < 0 {
		return nil, ErrInvalidWrapper
	}

	start := 2 + prefixLen + k
	return wrapped[start : start+int(dataLen)], nil
}

func randomNibble(rnd io.Reader) (int, error) {
	var b [1]byte
	if _, err := io.ReadFull(rnd, b[:]); err != nil {
		return 0, err
	}
	return int(b[0] & 0x0F), nil
}

func wipe(b []byte) {
	for i := range b {
		b[i] = 0
	}
}
