package webauthn_test

import (
	"crypto/rand"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/splitsecure/go-webauthn/webauthn"
)

func TestBase64UrlRoundTrip(t *testing.T) {
	for _, size := range []int{1, 2, 3, 15, 16, 17, 64, 255} {
		buf := make([]byte, size)
		_, err := rand.Read(buf)
		require.NoError(t, err)

		encoded := webauthn.Base64UrlEncode(buf)
		require.NotContains(t, encoded, "+")
		require.NotContains(t, encoded, "/")
		require.NotContains(t, encoded, "=")
		require.Equal(t, buf, webauthn.Base64UrlDecode(encoded))
	}
}

func TestBase64UrlEncodeAlphabet(t *testing.T) {
	// 0xfb 0xff forces '-' and '_' into the standard alphabet positions of
	// '+' and '/'.
	encoded := webauthn.Base64UrlEncode([]byte{0xfb, 0xff, 0xbf})
	require.Equal(t, "-_-_", encoded)
}

func TestBase64UrlDecodeToleratesPadding(t *testing.T) {
	require.Equal(t, []byte("hi"), webauthn.Base64UrlDecode("aGk="))
	require.Equal(t, []byte("hi"), webauthn.Base64UrlDecode("aGk"))
}

func TestBase64UrlDecodeInvalid(t *testing.T) {
	require.Nil(t, webauthn.Base64UrlDecode(""))
	require.Nil(t, webauthn.Base64UrlDecode("not?base64"))
	require.Nil(t, webauthn.Base64UrlDecode(strings.Repeat("=", 4)))
}
