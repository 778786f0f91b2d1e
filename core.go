// Package splitkeycrypt implements a split-key payload encryption core: a
// key derived from an externally supplied MAC key and one or more
// high-entropy source byte arrays encrypts and decrypts short payloads
// into a printable, self-describing, authenticated token.
//
// A small struct is built once by a constructor, exposes Seal/Open-like
// operations guarded by a state check, and reports failures through
// sentinel/typed errors instead of panics.
package splitkeycrypt

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/hmac"
	"crypto/sha256"
	"io"
	"sync"
	"unicode/utf8"

	"errors"

	"github.com/pschlump/splitkeycrypt/blinding"
	"github.com/pschlump/splitkeycrypt/ctcompare"
	"github.com/pschlump/splitkeycrypt/entropygate"
	"github.com/pschlump/splitkeycrypt/protectedbytes"
	"github.com/pschlump/splitkeycrypt/randpad"
)

// errCiphertextNotBlockAligned is wrapped as a CryptoPrimitiveError when a
// CBC-mode ciphertext is not a multiple of the block size.
var errCiphertextNotBlockAligned = errors.New("splitkeycrypt: ciphertext length is not a multiple of the block size")

const (
	aesKeySize  = 16
	macKeySize  = 16
	ivSize      = 16
	macSize     = 32
	blockSize   = 16
	minMacKey   = 14
	maxMacKey   = 32
	blindMinLen = blockSize + 1 // 17
)

// PrefixSalt and PostfixSalt bound the subject string in the
// subject-dependent key specialization HMAC.
var (
	PrefixSalt  = []byte{0x54, 0x75} // "Tu"
	PostfixSalt = []byte{0x70, 0x57} // "pW"
)

// state tracks a Core's lifecycle: Fresh->Active on construction,
// Active->Active on every call, Active->Closed on Close.
type state int

const (
	stateActive state = iota
	stateClosed
)

// Core owns the two derived key handles for one encryption/decryption
// relationship. Operations against the same Core are serialized by mu; a
// Core must be closed with Close when no longer needed so the underlying
// key material is wiped.
type Core struct {
	mu    sync.Mutex
	state state

	encKey *protectedbytes.Handle
	macKey *protectedbytes.Handle

	rnd   RandReader
	trace io.Writer
}

// NewCore derives the encryption and MAC keys from macKey and sources and
// returns a ready-to-use Core. macKey must be 14..32 bytes; sources must
// together pass the entropy gate's length and information-content floor.
func NewCore(macKey []byte, sources ...[]byte) (*Core, error) {
	return NewCoreWithRand(macKey, defaultRandReader, sources...)
}

// NewCoreWithRand is NewCore with an injectable randomness source, used
// by tests that need deterministic IVs/padding.
func NewCoreWithRand(macKey []byte, rnd RandReader, sources ...[]byte) (*Core, error) {
	if len(macKey) < minMacKey {
		return nil, argumentError("HMAC key length is less than %d", minMacKey)
	}
	if len(macKey) > maxMacKey {
		return nil, argumentError("HMAC key length is larger than %d", maxMacKey)
	}

	if err := entropygate.Check(sources); err != nil {
		return nil, argumentError("%s", err.Error())
	}

	mac := hmac.New(sha256.New, macKey)
	for _, s := range sources {
		mac.Write(s)
	}
	h := mac.Sum(nil)
	defer wipeBytes(h)

	encKeyBytes := make([]byte, aesKeySize)
	macKeyBytes := make([]byte, macKeySize)
	copy(encKeyBytes, h[:aesKeySize])
	copy(macKeyBytes, h[aesKeySize:aesKeySize+macKeySize])

	c := &Core{
		state:  stateActive,
		encKey: protectedbytes.New(encKeyBytes),
		macKey: protectedbytes.New(macKeyBytes),
		rnd:    rnd,
	}
	return c, nil
}

// Close destroys the Core's key handles. Close is idempotent.
func (c *Core) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state == stateClosed {
		return nil
	}
	c.encKey.Close()
	c.macKey.Close()
	c.state = stateClosed
	return nil
}

func (c *Core) checkActive() *Error {
	if c.state == stateClosed {
		return destroyedStateError("the encryption core has been closed")
	}
	return nil
}

// Encrypt encrypts payload under the given subject (pass "" for none) and
// returns the current (format 6) token.
func (c *Core) Encrypt(payload []byte, subject string) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.checkActive(); err != nil {
		return "", err
	}

	encKey, err := c.specializedKey(c.macKey, c.encKey, subject)
	if err != nil {
		return "", err
	}
	defer wipeBytes(encKey)

	macKey, err := c.specializedKey(c.encKey, c.macKey, subject)
	if err != nil {
		return "", err
	}
	defer wipeBytes(macKey)

	blinded, berr := blinding.Wrap(c.rnd, payload, blindMinLen)
	if berr != nil {
		return "", argumentError("%s", berr.Error())
	}
	defer wipeBytes(blinded)

	padded, perr := randpad.Pad(c.rnd, blinded, blockSize)
	if perr != nil {
		return "", cryptoPrimitiveError(perr)
	}
	defer wipeBytes(padded)

	iv := make([]byte, ivSize)
	if _, err := io.ReadFull(c.rnd, iv); err != nil {
		return "", cryptoPrimitiveError(err)
	}

	block, err := aes.NewCipher(encKey)
	if err != nil {
		return "", cryptoPrimitiveError(err)
	}
	ciphertext := make([]byte, len(padded))
	cbc := cipher.NewCBCEncrypter(block, iv)
	cbc.CryptBlocks(ciphertext, padded)

	tag := computeMAC(macKey, macDataFor(formatCurrent, iv, ciphertext))

	c.tracef("encrypt: format=%d iv_len=%d ct_len=%d mac_len=%d", int(formatCurrent), len(iv), len(ciphertext), len(tag))

	token := assembleToken(&parts{format: formatCurrent, iv: iv, ct: ciphertext, mac: tag})
	return token, nil
}

// EncryptString is Encrypt for a UTF-8 string payload.
func (c *Core) EncryptString(payload string, subject string) (string, error) {
	return c.Encrypt([]byte(payload), subject)
}

// DecryptAsBytes decrypts token under the given subject and returns the
// original payload bytes. It accepts tokens in any of the six wire
// formats.
func (c *Core) DecryptAsBytes(token string, subject string) ([]byte, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.checkActive(); err != nil {
		return nil, err
	}

	p, perr := parseToken(token)
	if perr != nil {
		return nil, perr
	}
	defer p.wipe()

	plaintext, derr := c.decryptParts(p, subject)
	if derr != nil {
		return nil, derr
	}
	return plaintext, nil
}

// DecryptAsString is DecryptAsBytes, decoding the recovered bytes as
// strict UTF-8 text.
func (c *Core) DecryptAsString(token string, subject string) (string, error) {
	b, err := c.DecryptAsBytes(token, subject)
	if err != nil {
		return "", err
	}
	defer wipeBytes(b)

	if !utf8.Valid(b) {
		return "", characterEncodingError("decrypted bytes are not valid UTF-8")
	}
	return string(b), nil
}

func (c *Core) decryptParts(p *parts, subject string) ([]byte, *Error) {
	var macKeyBytes []byte
	var err error
	if p.format >= formatCBCSpec {
		macKeyBytes, err = c.specializedKey(c.encKey, c.macKey, subject)
	} else {
		macKeyBytes, err = c.macKey.Data()
	}
	if err != nil {
		return nil, cryptoPrimitiveError(err)
	}
	defer wipeBytes(macKeyBytes)

	expectedMAC := computeMAC(macKeyBytes, macDataFor(p.format, p.iv, p.ct))
	defer wipeBytes(expectedMAC)

	ok, ceErr := ctcompare.Equal(expectedMAC, p.mac)
	if ceErr != nil || !ok {
		c.tracef("decrypt: format=%d mac mismatch", int(p.format))
		return nil, dataIntegrityError("Checksum does not match data")
	}

	var encKeyBytes []byte
	if p.format >= formatCBCSpec {
		encKeyBytes, err = c.specializedKey(c.macKey, c.encKey, subject)
	} else {
		encKeyBytes, err = c.encKey.Data()
	}
	if err != nil {
		return nil, cryptoPrimitiveError(err)
	}
	defer wipeBytes(encKeyBytes)

	padded, derr := decryptWithMode(p.format, encKeyBytes, p.iv, p.ct)
	if derr != nil {
		return nil, cryptoPrimitiveError(derr)
	}
	defer wipeBytes(padded)

	if p.format <= formatCTRLegacy {
		plain, uerr := randpad.UnpadTail(padded)
		if uerr != nil {
			return nil, dataIntegrityError("invalid padding in decrypted data")
		}
		out := make([]byte, len(plain))
		copy(out, plain)
		return out, nil
	}

	plain, uerr := blinding.Unwrap(padded)
	if uerr != nil {
		return nil, dataIntegrityError("invalid blinded byte array")
	}
	out := make([]byte, len(plain))
	copy(out, plain)
	return out, nil
}

// decryptWithMode dispatches on format to the cipher mode the wire format
// specifies: CFB for format 1, CTR for formats 2-3, CBC for formats 4-6.
func decryptWithMode(id formatID, key, iv, ct []byte) ([]byte, error) {
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, err
	}

	switch {
	case id == formatCFB:
		out := make([]byte, len(ct))
		cipher.NewCFBDecrypter(block, iv).XORKeyStream(out, ct)
		return out, nil
	case id == formatCTRLegacy || id == formatCTR:
		out := make([]byte, len(ct))
		cipher.NewCTR(block, iv).XORKeyStream(out, ct)
		return out, nil
	default:
		if len(ct)%block.BlockSize() != 0 {
			return nil, errCiphertextNotBlockAligned
		}
		out := make([]byte, len(ct))
		cipher.NewCBCDecrypter(block, iv).CryptBlocks(out, ct)
		return out, nil
	}
}

func computeMAC(key, data []byte) []byte {
	h := hmac.New(sha256.New, key)
	h.Write(data)
	return h.Sum(nil)
}

// specializedKey derives a fresh per-call key for subject when subject is
// non-empty: HMAC-SHA-256(k1, k2 || PrefixSalt || subject || PostfixSalt).
// The derived key is the full 32-byte HMAC output, so a subject-specialized
// encryption key runs the cipher as AES-256 and a subject-specialized MAC
// key is 32 bytes long.
// When subject is empty the stored key (k2) is returned unmodified. k1/k2
// ordering: (MAC_key, enc_key) when deriving an encryption key, (enc_key,
// MAC_key) when deriving a MAC key.
func (c *Core) specializedKey(k1, k2 *protectedbytes.Handle, subject string) ([]byte, error) {
	k2Bytes, err := k2.Data()
	if err != nil {
		return nil, err
	}
	if subject == "" {
		return k2Bytes, nil
	}
	defer wipeBytes(k2Bytes)

	k1Bytes, err := k1.Data()
	if err != nil {
		return nil, err
	}
	defer wipeBytes(k1Bytes)

	h := hmac.New(sha256.New, k1Bytes)
	h.Write(k2Bytes)
	h.Write(PrefixSalt)
	h.Write([]byte(subject))
	h.Write(PostfixSalt)
	return h.Sum(nil), nil
}
