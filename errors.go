package splitkeycrypt

import "fmt"

// Kind classifies an Error by its broad cause, so callers can distinguish
// "you gave me a bad argument" from "the data was tampered with" without
// parsing message text.
type Kind int

const (
	// KindArgument covers null/absent inputs, out-of-range lengths, a bad
	// HMAC key size, malformed token structure, bad Base32/Base64
	// characters, and out-of-range packed integers.
	KindArgument Kind = iota
	// KindDataIntegrity covers MAC mismatch, a malformed blinded wrapper,
	// or a packed length inconsistent with the carrier length.
	KindDataIntegrity
	// KindCharacterEncoding covers invalid UTF-8 when decoding plaintext
	// bytes as text.
	KindCharacterEncoding
	// KindDestroyedState covers an operation on a closed key handle or
	// closed core.
	KindDestroyedState
	// KindCryptoPrimitive wraps any failure from the underlying AES or
	// HMAC primitive. It must never carry partial plaintext.
	KindCryptoPrimitive
)

func (k Kind) String() string {
	switch k {
	case KindArgument:
		return "ArgumentError"
	case KindDataIntegrity:
		return "DataIntegrityError"
	case KindCharacterEncoding:
		return "CharacterEncodingError"
	case KindDestroyedState:
		return "DestroyedStateError"
	case KindCryptoPrimitive:
		return "CryptoPrimitiveError"
	default:
		return "UnknownError"
	}
}

// Error is the error type returned by every exported operation in this
// package. Message carries the exact literal text callers match on; Err
// optionally wraps an underlying cause for %w/errors.As.
type Error struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *Error) Error() string {
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is reports whether target is an *Error of the same Kind, enabling
// errors.Is(err, &splitkeycrypt.Error{Kind: splitkeycrypt.KindArgument})
// style comparisons by kind rather than by exact message.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return e.Kind == t.Kind
}

func argumentError(format string, args ...interface{}) *Error {
	return &Error{Kind: KindArgument, Message: fmt.Sprintf(format, args...)}
}

func dataIntegrityError(message string) *Error {
	return &Error{Kind: KindDataIntegrity, Message: message}
}

func characterEncodingError(message string) *Error {
	return &Error{Kind: KindCharacterEncoding, Message: message}
}

func destroyedStateError(message string) *Error {
	return &Error{Kind: KindDestroyedState, Message: message}
}

func cryptoPrimitiveError(err error) *Error {
	return &Error{Kind: KindCryptoPrimitive, Message: "invalid cryptographic parameter", Err: err}
}
