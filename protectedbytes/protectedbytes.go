// Package protectedbytes provides an owning handle for a secret byte buffer
// that wipes itself on destruction and refuses reads afterward.
//
// The wiping discipline follows gocryptfs's internal/memprotect package:
// overwrite-then-let-go is treated as best effort, never as a reason to fail
// a call, and runtime.KeepAlive guards against the compiler eliding the
// overwrite as dead code.
package protectedbytes

import (
	"crypto/rand"
	"errors"
	"runtime"
)

// ErrDestroyed is returned by any operation on a Handle after Close.
var ErrDestroyed = errors.New("protectedbytes: handle has been destroyed")

// Handle owns a secret byte buffer. The zero value is not usable; obtain a
// Handle from New.
//
// Storage is kept XOR-masked against an internally generated random pad.
// This in-memory obfuscation is an optional hardening measure; the only
// required contract is that Close wipes the owned bytes and that reads
// after Close fail.
type Handle struct {
	masked    []byte
	mask      []byte
	destroyed bool
}

// New copies src into a newly owned Handle and wipes src, completing an
// ownership transfer: callers must not use src again.
func New(src []byte) *Handle {
	n := len(src)
	mask := make([]byte, n)
	if _, err := rand.Read(mask); err != nil {
		// crypto/rand.Reader does not fail on supported platforms; fall
		// back to an unmasked (zero mask) handle rather than losing data.
		for i := range mask {
			mask[i] = 0
		}
	}

	masked := make([]byte, n)
	for i := 0; i < n; i++ {
		masked[i] = src[i] ^ mask[i]
	}

	wipe(src)

	return &Handle{masked: masked, mask: mask}
}

// Data returns a fresh unmasked copy of the owned bytes. The caller is
// responsible for wiping the returned slice when done with it.
func (h *Handle) Data() ([]byte, error) {
	if h.destroyed {
		return nil, ErrDestroyed
	}
	out := make([]byte, len(h.masked))
	for i := range out {
		out[i] = h.masked[i] ^ h.mask[i]
	}
	return out, nil
}

// Len returns the length of the owned buffer.
func (h *Handle) Len() int {
	return len(h.masked)
}

// Close wipes the owned storage and marks the handle destroyed. Close is
// idempotent and never fails.
func (h *Handle) Close() error {
	if h.destroyed {
		return nil
	}
	wipe(h.masked)
	wipe(h.mask)
	h.destroyed = true
	return nil
}

// Equals reports whether h and other currently hold the same bytes. Both
// handles must be open.
func (h *Handle) Equals(other *Handle) (bool, error) {
	if h.destroyed || other.destroyed {
		return false, ErrDestroyed
	}
	a, err := h.Data()
	if err != nil {
		return false, err
	}
	defer wipe(a)
	b, err := other.Data()
	if err != nil {
		return false, err
	}
	defer wipe(b)
	if len(a) != len(b) {
		return false, nil
	}
	var acc byte
	for i := range a {
		acc |= a[i] ^ b[i]
	}
	return acc == 0, nil
}

// Hash returns an FNV-1a hash of the owned bytes. It fails if the handle is
// destroyed.
func (h *Handle) Hash() (uint64, error) {
	if h.destroyed {
		return 0, ErrDestroyed
	}
	data, err := h.Data()
	if err != nil {
		return 0, err
	}
	defer wipe(data)

	const offset64 = 14695981039346656037
	const prime64 = 1099511628211
	hash := uint64(offset64)
	for _, b := range data {
		hash ^= uint64(b)
		hash *= prime64
	}
	return hash, nil
}

func wipe(b []byte) {
	if len(b) == 0 {
		return
	}
	for i := range b {
		b[i] = 0
	}
	runtime.KeepAlive(b)
}
