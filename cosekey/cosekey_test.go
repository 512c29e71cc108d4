package cosekey_test

import (
	"crypto"
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/rand"
	"crypto/rsa"
	"crypto/sha256"
	"testing"

	"github.com/fxamacker/cbor/v2"
	"github.com/stretchr/testify/require"

	"github.com/splitsecure/go-webauthn/cosekey"
	"github.com/splitsecure/go-webauthn/mint"
)

func TestIsSupportedAlgorithm(t *testing.T) {
	for _, alg := range []cosekey.Algorithm{
		cosekey.ES256, cosekey.ES384, cosekey.ES512, cosekey.RS256, cosekey.PS256,
	} {
		require.True(t, cosekey.IsSupportedAlgorithm(alg), alg.String())
	}

	// EdDSA (-8), RS384 (-258) and friends are structurally valid COSE
	// algorithms this package does not verify.
	require.False(t, cosekey.IsSupportedAlgorithm(cosekey.Algorithm(-8)))
	require.False(t, cosekey.IsSupportedAlgorithm(cosekey.Algorithm(-258)))
	require.False(t, cosekey.IsSupportedAlgorithm(cosekey.Algorithm(0)))
}

func TestDecodeEC2(t *testing.T) {
	key, err := ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
	require.NoError(t, err)

	b, err := mint.EncodeCOSEKey(&key.PublicKey, cosekey.ES256)
	require.NoError(t, err)

	decoded, err := cosekey.Decode(b)
	require.NoError(t, err)
	require.Equal(t, cosekey.KeyTypeEC2, decoded.Type)
	require.Equal(t, cosekey.ES256, decoded.Algorithm)
	require.Len(t, decoded.X, 32)
	require.Len(t, decoded.Y, 32)
}

func TestDecodeRSA(t *testing.T) {
	key, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)

	b, err := mint.EncodeCOSEKey(&key.PublicKey, cosekey.RS256)
	require.NoError(t, err)

	decoded, err := cosekey.Decode(b)
	require.NoError(t, err)
	require.Equal(t, cosekey.KeyTypeRSA, decoded.Type)
	require.Equal(t, cosekey.RS256, decoded.Algorithm)
	require.Len(t, decoded.N, 256)
}

func TestDecodeFirstReportsConsumedBytes(t *testing.T) {
	key, err := ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
	require.NoError(t, err)

	b, err := mint.EncodeCOSEKey(&key.PublicKey, cosekey.ES256)
	require.NoError(t, err)

	trailing := []byte{0x01, 0x02, 0x03}
	decoded, n, err := cosekey.DecodeFirst(append(append([]byte{}, b...), trailing...))
	require.NoError(t, err)
	require.Equal(t, len(b), n)
	require.NotNil(t, decoded)
}

func TestDecodeErrors(t *testing.T) {
	t.Run("empty", func(t *testing.T) {
		_, err := cosekey.Decode(nil)
		require.Error(t, err)
	})

	t.Run("not a map", func(t *testing.T) {
		b, err := cbor.Marshal([]byte{1, 2, 3})
		require.NoError(t, err)
		_, err = cosekey.Decode(b)
		require.Error(t, err)
	})

	t.Run("unsupported key type", func(t *testing.T) {
		b, err := cbor.Marshal(map[int64]any{1: int64(4), 3: int64(-7)})
		require.NoError(t, err)
		_, err = cosekey.Decode(b)
		require.Error(t, err)
	})

	t.Run("unsupported algorithm for EC2", func(t *testing.T) {
		// kty EC2 with EdDSA's algorithm label.
		b, err := cbor.Marshal(map[int64]any{
			1: int64(2), 3: int64(-8), -1: int64(1),
			-2: make([]byte, 32), -3: make([]byte, 32),
		})
		require.NoError(t, err)
		_, err = cosekey.Decode(b)
		require.Error(t, err)
	})

	t.Run("unsupported curve", func(t *testing.T) {
		b, err := cbor.Marshal(map[int64]any{
			1: int64(2), 3: int64(-7), -1: int64(8),
			-2: make([]byte, 32), -3: make([]byte, 32),
		})
		require.NoError(t, err)
		_, err = cosekey.Decode(b)
		require.Error(t, err)
	})

	t.Run("missing coordinates", func(t *testing.T) {
		b, err := cbor.Marshal(map[int64]any{1: int64(2), 3: int64(-7), -1: int64(1)})
		require.NoError(t, err)
		_, err = cosekey.Decode(b)
		require.Error(t, err)
	})

	t.Run("missing RSA modulus", func(t *testing.T) {
		b, err := cbor.Marshal(map[int64]any{1: int64(3), 3: int64(-257), -2: []byte{1, 0, 1}})
		require.NoError(t, err)
		_, err = cosekey.Decode(b)
		require.Error(t, err)
	})
}

func TestVerifyNeverPanics(t *testing.T) {
	key, err := ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
	require.NoError(t, err)

	b, err := mint.EncodeCOSEKey(&key.PublicKey, cosekey.ES256)
	require.NoError(t, err)
	decoded, err := cosekey.Decode(b)
	require.NoError(t, err)

	data := []byte("payload")
	for name, sig := range map[string][]byte{
		"empty":          {},
		"nil":            nil,
		"garbage":        {0xde, 0xad},
		"zeroed der":     make([]byte, 70),
		"truncated der":  {0x30, 0x44, 0x02, 0x20},
		"not a sequence": {0x02, 0x01, 0x01},
	} {
		t.Run(name, func(t *testing.T) {
			require.False(t, decoded.Verify(data, sig))
		})
	}

	t.Run("nil key", func(t *testing.T) {
		var k *cosekey.Key
		require.False(t, k.Verify(data, []byte{0x30}))
	})

	t.Run("off-curve point", func(t *testing.T) {
		bad := *decoded
		bad.X = make([]byte, 32)
		bad.X[31] = 1
		require.False(t, bad.Verify(data, []byte{0x30, 0x06, 0x02, 0x01, 0x01, 0x02, 0x01, 0x01}))
	})

	t.Run("unsupported algorithm", func(t *testing.T) {
		bad := *decoded
		bad.Algorithm = cosekey.Algorithm(-8)
		require.False(t, bad.Verify(data, []byte{0x30}))
	})
}

func signWith(t *testing.T, signer crypto.Signer, alg cosekey.Algorithm, data []byte) []byte {
	t.Helper()
	digest := sha256.Sum256(data)
	var opts crypto.SignerOpts = crypto.SHA256
	if alg == cosekey.PS256 {
		opts = &rsa.PSSOptions{SaltLength: rsa.PSSSaltLengthEqualsHash, Hash: crypto.SHA256}
	}
	sig, err := signer.Sign(rand.Reader, digest[:], opts)
	require.NoError(t, err)
	return sig
}

func TestVerifyRoundTrip(t *testing.T) {
	data := []byte("authenticated payload")

	t.Run("ES256", func(t *testing.T) {
		key, err := ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
		require.NoError(t, err)
		b, err := mint.EncodeCOSEKey(&key.PublicKey, cosekey.ES256)
		require.NoError(t, err)
		decoded, err := cosekey.Decode(b)
		require.NoError(t, err)

		sig := signWith(t, key, cosekey.ES256, data)
		require.True(t, decoded.Verify(data, sig))
		require.False(t, decoded.Verify([]byte("other payload"), sig))
	})

	t.Run("PS256", func(t *testing.T) {
		key, err := rsa.GenerateKey(rand.Reader, 2048)
		require.NoError(t, err)
		b, err := mint.EncodeCOSEKey(&key.PublicKey, cosekey.PS256)
		require.NoError(t, err)
		decoded, err := cosekey.Decode(b)
		require.NoError(t, err)

		sig := signWith(t, key, cosekey.PS256, data)
		require.True(t, decoded.Verify(data, sig))
		require.False(t, decoded.Verify([]byte("other payload"), sig))

		// A PS256 signature must not verify under RS256 padding.
		rs := *decoded
		rs.Algorithm = cosekey.RS256
		require.False(t, rs.Verify(data, sig))
	})
}
