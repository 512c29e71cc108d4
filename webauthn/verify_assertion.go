package webauthn

import (
	"crypto/sha256"

	"github.com/splitsecure/go-webauthn/authenticatordata"
	"github.com/splitsecure/go-webauthn/cosekey"
)

type VerifyAssertionInput struct {
	// ClientDataJSON, AuthenticatorData and Signature are the credential
	// assertion response fields, byte for byte. AuthenticatorData is the
	// flat binary blob, not a CBOR envelope.
	ClientDataJSON    []byte
	AuthenticatorData []byte
	Signature         []byte

	// Challenge is the value the server issued for this ceremony.
	Challenge []byte

	// AllowedOrigins is matched exactly against the client data origin.
	// Empty disables the origin check.
	AllowedOrigins []string

	// RelyingPartyID is the RP ID the credential is bound to.
	RelyingPartyID string

	// RequireUserVerification demands the UV flag in addition to UP.
	RequireUserVerification bool

	// PublicKey and Algorithm identify the credential being asserted. The
	// assertion itself carries no key material, so both come from whatever
	// the caller persisted at registration.
	PublicKey *cosekey.Key
	Algorithm cosekey.Algorithm

	// StoredSignCount is the last counter value the caller persisted for
	// this credential.
	StoredSignCount uint32
}

// VerifyAssertion validates an authentication ceremony. Checks run in a
// fixed order and stop at the first failure; the outcome is always encoded
// in the returned result, never an error or a panic.
//
// When both the stored and the reported counter are zero the anti-replay
// check is skipped: that is how authenticators without counter support
// present themselves. Otherwise the reported counter must be strictly
// greater than the stored one.
func VerifyAssertion(in *VerifyAssertionInput) ValidationResult {
	cd, ok := parseClientData(in.ClientDataJSON)
	if !ok {
		return failure(InvalidClientData)
	}
	if cd.Type != ceremonyGet {
		return failure(InvalidType)
	}
	if !cd.challengeMatches(in.Challenge) {
		return failure(ChallengeMismatch)
	}
	if !cd.originAllowed(in.AllowedOrigins) {
		return failure(OriginMismatch)
	}

	ad := authenticatordata.T{}
	if err := authenticatordata.UnmarshalFromAssertion(in.AuthenticatorData, &ad); err != nil {
		return failure(InvalidAuthenticatorData)
	}
	if kind, ok := checkAuthenticatorData(&ad, in.RelyingPartyID, in.RequireUserVerification); !ok {
		return failure(kind)
	}

	if !(in.StoredSignCount == 0 && ad.SignCount == 0) && ad.SignCount <= in.StoredSignCount {
		return failure(SignCountNotIncremented)
	}

	// The authenticator signs authenticatorData with the client data hash
	// appended: a raw concatenation, not a structured envelope.
	//
	// https://www.w3.org/TR/webauthn/#sctn-op-get-assertion
	clientDataHash := sha256.Sum256(in.ClientDataJSON)
	signed := make([]byte, 0, len(in.AuthenticatorData)+sha256.Size)
	signed = append(signed, in.AuthenticatorData...)
	signed = append(signed, clientDataHash[:]...)

	key := in.PublicKey
	if key != nil && in.Algorithm != 0 && in.Algorithm != key.Algorithm {
		// The caller-supplied algorithm is authoritative.
		k := *key
		k.Algorithm = in.Algorithm
		key = &k
	}
	if !key.Verify(signed, in.Signature) {
		return failure(InvalidSignature)
	}

	return ValidationResult{
		IsValid:      true,
		NewSignCount: ad.SignCount,
		UserVerified: ad.UserVerified(),
	}
}
