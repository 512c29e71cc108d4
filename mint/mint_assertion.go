package mint

import (
	"crypto"
	"crypto/sha256"

	"github.com/splitsecure/go-webauthn/authenticatordata"
	"github.com/splitsecure/go-webauthn/cosekey"
)

type AssertInput struct {
	// Signer is the credential private key.
	Signer    crypto.Signer
	Algorithm cosekey.Algorithm

	RelyingPartyID string
	SignCount      uint32

	// Flags defaults to UP when zero. Set FlagsOverride to mint fixtures
	// with arbitrary flag bytes.
	Flags         byte
	FlagsOverride bool

	// ClientDataJSON is hashed and appended to the authenticator data to
	// form the signed payload.
	ClientDataJSON []byte
}

type AssertOutput struct {
	AuthenticatorData []byte
	Signature         []byte
}

// GenerateAssertion builds the raw authenticator data for an authentication
// ceremony and signs authenticatorData || SHA-256(clientDataJSON) with the
// credential key.
func GenerateAssertion(in *AssertInput) (AssertOutput, error) {
	flags := in.Flags
	if !in.FlagsOverride && flags == 0 {
		flags = authenticatordata.ADF_USER_PRESENT
	}

	rpIDHash := sha256.Sum256([]byte(in.RelyingPartyID))
	ad := authenticatordata.T{
		RPIDHash:  rpIDHash[:],
		Flags:     flags,
		SignCount: in.SignCount,
	}
	adb, err := authenticatordata.Marshal(&ad)
	if err != nil {
		return AssertOutput{}, err
	}

	clientDataHash := sha256.Sum256(in.ClientDataJSON)
	signed := append(append([]byte{}, adb...), clientDataHash[:]...)

	sig, err := signPayload(in.Signer, in.Algorithm, signed)
	if err != nil {
		return AssertOutput{}, err
	}

	return AssertOutput{
		AuthenticatorData: adb,
		Signature:         sig,
	}, nil
}
