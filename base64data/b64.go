// Package base64data decodes the Base64 token fields used by the legacy
// (format 1-5) wire dialects. Format 1 pads its fields; formats 2-5 do
// not, though some legacy encoders emit padding anyway, so decoding is
// lenient about a trailing '=' run regardless of format.
package base64data

import "encoding/base64"

// UnpaddedDecode decodes s as standard Base64, stripping any trailing '='
// padding first so both the padded (format 1) and unpadded (formats 2-5)
// field encodings decode through the same path.
func UnpaddedDecode(s string) ([]byte, error) {
	for len(s) > 0 && s[len(s)-1] == '=' {
		s = s[:len(s)-1]
	}
	return base64.RawStdEncoding.DecodeString(s)
}
