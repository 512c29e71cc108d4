// Package authenticatordata parses and serializes the WebAuthn authenticator
// data layout.
//
// https://www.w3.org/TR/webauthn/#sctn-authenticator-data
package authenticatordata

import (
	"github.com/splitsecure/go-webauthn/cosekey"
)

// Authenticator data flag bits.
const (
	ADF_USER_PRESENT                 = byte(1)
	ADF_RFU1                         = byte(1 << 1)
	ADF_USER_VERIFIED                = byte(1 << 2)
	ADF_HAS_ATTESTED_CREDENTIAL_DATA = byte(1 << 6)
	ADF_HAS_EXTENSION_DATA           = byte(1 << 7)
)

// FixedLength is the size of the mandatory prefix: RP ID hash, flags and
// signature counter.
const FixedLength = 32 + 1 + 4

type T struct {
	RPIDHash  []byte
	Flags     byte
	SignCount uint32

	// Populated only when ADF_HAS_ATTESTED_CREDENTIAL_DATA is set.
	AttestedCredentialData AttestedCredentialData
	// Extensions (ignored)
}

type AttestedCredentialData struct {
	AAGUID       []byte
	CredentialID []byte

	// CredentialPublicKey is the decoded embedded COSE key.
	CredentialPublicKey *cosekey.Key

	// RawCredentialPublicKey holds the CBOR bytes the key was decoded from,
	// exactly as they appeared on the wire. Marshal writes them back out
	// verbatim.
	RawCredentialPublicKey []byte
}

// UserPresent reports the UP flag.
func (t *T) UserPresent() bool {
	return t.Flags&ADF_USER_PRESENT != 0
}

// UserVerified reports the UV flag.
func (t *T) UserVerified() bool {
	return t.Flags&ADF_USER_VERIFIED != 0
}
