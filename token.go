package splitkeycrypt

import (
	"strings"

	"github.com/pschlump/splitkeycrypt/base32codec"
	"github.com/pschlump/splitkeycrypt/base64data"
)

// formatID identifies one of the six wire-format dialects.
type formatID int

const (
	formatCFB       formatID = 1
	formatCTRLegacy formatID = 2
	formatCTR       formatID = 3
	formatCBCLegacy formatID = 4
	formatCBCSpec   formatID = 5
	formatCurrent   formatID = 6

	minFormat = formatCFB
	maxFormat = formatCurrent
)

// parts is the in-memory decomposition of a token. All three byte fields
// must be wiped when the value is no longer needed; callers do so via
// parts.wipe.
type parts struct {
	format formatID
	iv     []byte
	ct     []byte
	mac    []byte
}

func (p *parts) wipe() {
	wipeBytes(p.iv)
	wipeBytes(p.ct)
	wipeBytes(p.mac)
}

func wipeBytes(b []byte) {
	for i := range b {
		b[i] = 0
	}
}

// separator returns the field separator for a given format: "$" for
// formats 1 through 5, "1" for format 6.
func (f formatID) separator() string {
	if f >= formatCurrent {
		return "1"
	}
	return "$"
}

// usesBase32Spell reports whether a format encodes its fields with the
// spell-safe Base32 alphabet (format 6) rather than Base64 (formats 1-5).
func (f formatID) usesBase32Spell() bool {
	return f >= formatCurrent
}

// assembleToken renders the final token string for the given parts. Only
// format 6 (the current format) is ever emitted; legacy formats are
// decode-only.
func assembleToken(p *parts) string {
	var b strings.Builder
	b.WriteByte('0' + byte(p.format))
	sep := p.format.separator()

	b.WriteString(sep)
	b.WriteString(base32codec.SpellSafe.EncodeUnpadded(p.iv))
	b.WriteString(sep)
	b.WriteString(base32codec.SpellSafe.EncodeUnpadded(p.ct))
	b.WriteString(sep)
	b.WriteString(base32codec.SpellSafe.EncodeUnpadded(p.mac))
	return b.String()
}

// parseToken splits a token string into its four pieces and decodes the
// IV/ciphertext/MAC fields per the format's encoding rule.
func parseToken(token string) (*parts, *Error) {
	if len(token) == 0 {
		return nil, argumentError("Empty encrypted text")
	}

	c := token[0]
	if c < '0' || c > '9' {
		return nil, argumentError("Invalid format id")
	}
	id := formatID(c - '0')
	if id < minFormat || id > maxFormat {
		return nil, argumentError("Unknown format id")
	}

	sep := id.separator()
	// token[1:] still carries the separator preceding the first field, so
	// a well-formed token splits into 4 pieces: an empty string standing
	// in for the already-parsed format id, then iv, ciphertext, mac.
	rest := token[1:]
	fields := strings.Split(rest, sep)

	if len(fields) != 4 {
		return nil, argumentError("Number of '%s' separated parts in encrypted text is not 4", sep)
	}

	var iv, ct, mac []byte
	var err error
	if id.usesBase32Spell() {
		iv, err = base32codec.SpellSafe.Decode(fields[1])
		if err == nil {
			ct, err = base32codec.SpellSafe.Decode(fields[2])
		}
		if err == nil {
			mac, err = base32codec.SpellSafe.Decode(fields[3])
		}
	} else {
		iv, err = base64data.UnpaddedDecode(fields[1])
		if err == nil {
			ct, err = base64data.UnpaddedDecode(fields[2])
		}
		if err == nil {
			mac, err = base64data.UnpaddedDecode(fields[3])
		}
	}
	if err != nil {
		return nil, argumentError("Invalid character in encrypted text: %s", err.Error())
	}

	return &parts{format: id, iv: iv, ct: ct, mac: mac}, nil
}

// macDataFor returns the byte sequence the MAC is computed over for a
// token of the given format: format_id || iv || ciphertext, for every
// format. Early formats compute this with a single doFinal(ciphertext)
// call, current ones with update(ciphertext) followed by doFinal(); both
// cover the identical bytes.
func macDataFor(id formatID, iv, ct []byte) []byte {
	out := make([]byte, 0, 1+len(iv)+len(ct))
	out = append(out, byte(id))
	out = append(out, iv...)
	out = append(out, ct...)
	return out
}
