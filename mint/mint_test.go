package mint_test

import (
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/rand"
	"crypto/x509"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/splitsecure/go-webauthn/cosekey"
	"github.com/splitsecure/go-webauthn/mint"
	"github.com/splitsecure/go-webauthn/webauthn"
)

func TestClientData(t *testing.T) {
	challenge := []byte("sixteen-byte-chl")
	b := mint.ClientData("webauthn.create", challenge, "https://example.com")

	var cd struct {
		Type      string `json:"type"`
		Challenge string `json:"challenge"`
		Origin    string `json:"origin"`
	}
	require.NoError(t, json.Unmarshal(b, &cd))
	require.Equal(t, "webauthn.create", cd.Type)
	require.Equal(t, "https://example.com", cd.Origin)
	require.Equal(t, challenge, webauthn.Base64UrlDecode(cd.Challenge))
}

func TestAttestationRoundtrip(t *testing.T) {
	key, err := ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
	require.NoError(t, err)

	challenge := []byte("another-challenge-value")
	clientDataJSON := mint.ClientData("webauthn.create", challenge, "https://login.example.com")

	minted, err := mint.AttestKey(&mint.AttestInput{
		PublicKey:      &key.PublicKey,
		Algorithm:      cosekey.ES256,
		RelyingPartyID: "example.com",
		CredentialID:   []byte("cred"),
		SignCount:      4,
	})
	require.NoError(t, err)

	out := webauthn.VerifyAttestation(&webauthn.VerifyAttestationInput{
		ClientDataJSON:  clientDataJSON,
		AttestationCBOR: minted.Attestation,
		Challenge:       challenge,
		AllowedOrigins:  []string{"https://login.example.com"},
		RelyingPartyID:  "example.com",
	})
	require.True(t, out.Result.IsValid)
	require.Equal(t, uint32(4), out.Result.NewSignCount)
	require.Equal(t, []byte("cred"), out.CredentialID)
}

func TestAssertionRoundtrip(t *testing.T) {
	key, err := ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
	require.NoError(t, err)

	challenge := []byte("assertion-challenge")
	clientDataJSON := mint.ClientData("webauthn.get", challenge, "https://login.example.com")

	assertion, err := mint.GenerateAssertion(&mint.AssertInput{
		Signer:         key,
		Algorithm:      cosekey.ES256,
		RelyingPartyID: "example.com",
		SignCount:      4,
		ClientDataJSON: clientDataJSON,
	})
	require.NoError(t, err)

	keyBytes, err := mint.EncodeCOSEKey(&key.PublicKey, cosekey.ES256)
	require.NoError(t, err)
	storedKey, err := cosekey.Decode(keyBytes)
	require.NoError(t, err)

	result := webauthn.VerifyAssertion(&webauthn.VerifyAssertionInput{
		ClientDataJSON:    clientDataJSON,
		AuthenticatorData: assertion.AuthenticatorData,
		Signature:         assertion.Signature,
		Challenge:         challenge,
		AllowedOrigins:    []string{"https://login.example.com"},
		RelyingPartyID:    "example.com",
		PublicKey:         storedKey,
		Algorithm:         cosekey.ES256,
		StoredSignCount:   3,
	})
	require.True(t, result.IsValid)
	require.Equal(t, uint32(4), result.NewSignCount)
}

func TestMintContext(t *testing.T) {
	mc, err := mint.NewMintContext()
	require.NoError(t, err)

	caCert, err := x509.ParseCertificate(mc.CACertDer)
	require.NoError(t, err)
	intCert, err := x509.ParseCertificate(mc.IntCertDer)
	require.NoError(t, err)

	require.True(t, caCert.IsCA)
	require.True(t, intCert.IsCA)
	require.NoError(t, intCert.CheckSignatureFrom(caCert))

	attKey, err := ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
	require.NoError(t, err)
	leafDER, err := mc.MintAttestationCert(&attKey.PublicKey, make([]byte, 16))
	require.NoError(t, err)

	leaf, err := x509.ParseCertificate(leafDER)
	require.NoError(t, err)
	require.False(t, leaf.IsCA)
	require.Equal(t, 3, leaf.Version)
	require.Equal(t, []string{"Authenticator Attestation"}, leaf.Subject.OrganizationalUnit)
	require.NoError(t, leaf.CheckSignatureFrom(intCert))
}
