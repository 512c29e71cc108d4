package webauthn

import (
	"encoding/base64"
	"strings"
)

// Base64UrlEncode encodes b in the base64url alphabet without padding, the
// encoding WebAuthn uses for challenges and credential ids on the wire.
func Base64UrlEncode(b []byte) string {
	return base64.RawURLEncoding.EncodeToString(b)
}

// Base64UrlDecode decodes an unpadded base64url string. Padded input is
// tolerated. Invalid or empty input yields nil, never a panic or an error:
// the inputs this is used on come straight from clients.
func Base64UrlDecode(s string) []byte {
	s = strings.TrimRight(s, "=")
	if s == "" {
		return nil
	}
	b, err := base64.RawURLEncoding.DecodeString(s)
	if err != nil {
		return nil
	}
	return b
}
