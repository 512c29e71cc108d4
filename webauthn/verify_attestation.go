package webauthn

import (
	"bytes"
	"crypto/sha256"

	"github.com/splitsecure/go-webauthn/authenticatordata"
	"github.com/splitsecure/go-webauthn/cosekey"
)

type VerifyAttestationInput struct {
	// ClientDataJSON and AttestationCBOR are the credential creation
	// response fields, byte for byte.
	ClientDataJSON  []byte
	AttestationCBOR []byte

	// Challenge is the value the server issued for this ceremony.
	Challenge []byte

	// AllowedOrigins is matched exactly against the client data origin.
	// Empty disables the origin check.
	AllowedOrigins []string

	// RelyingPartyID is the RP ID the credential must be bound to,
	// e.g. "example.com".
	RelyingPartyID string

	// RequireUserVerification demands the UV flag in addition to UP.
	RequireUserVerification bool

	// Packed enables cryptographic verification of "packed" attestation
	// statements. Nil keeps the format-generic behavior: the statement is
	// decoded but trusted as if the format were "none".
	Packed *PackedOptions
}

type VerifyAttestationOutput struct {
	Result ValidationResult

	// The fields below are populated on success when the authenticator
	// included attested credential data. They are what the relying party
	// persists for later assertions; this package never stores them.
	CredentialID []byte
	PublicKey    *cosekey.Key
	Algorithm    cosekey.Algorithm
	AAGUID       []byte

	// Format is the attestation statement format the authenticator claimed.
	Format string
}

// VerifyAttestation validates a registration ceremony. Checks run in a fixed
// order and stop at the first failure; the outcome is always encoded in the
// returned result, never an error or a panic, no matter how mangled the
// input bytes are.
//
// Unless Packed is configured, the attestation statement is decoded but its
// signature chain is NOT verified. That is equivalent to accepting the
// "none" format level of trust for every format and is a deliberate,
// documented limitation.
func VerifyAttestation(in *VerifyAttestationInput) VerifyAttestationOutput {
	cd, ok := parseClientData(in.ClientDataJSON)
	if !ok {
		return attestationFailure(InvalidClientData)
	}
	if cd.Type != ceremonyCreate {
		return attestationFailure(InvalidType)
	}
	if !cd.challengeMatches(in.Challenge) {
		return attestationFailure(ChallengeMismatch)
	}
	if !cd.originAllowed(in.AllowedOrigins) {
		return attestationFailure(OriginMismatch)
	}

	obj := DecodeAttestationObject(in.AttestationCBOR)
	if obj == nil {
		return attestationFailure(InvalidAttestationObject)
	}

	ad := authenticatordata.T{}
	if err := authenticatordata.Unmarshal(obj.AuthData, &ad); err != nil {
		return attestationFailure(InvalidAuthenticatorData)
	}
	if kind, ok := checkAuthenticatorData(&ad, in.RelyingPartyID, in.RequireUserVerification); !ok {
		return attestationFailure(kind)
	}

	if in.Packed != nil && obj.Format == FormatPacked {
		if err := verifyPackedStatement(obj, &ad, in.ClientDataJSON, in.Packed); err != nil {
			return attestationFailure(InvalidAttestationObject)
		}
	}

	out := VerifyAttestationOutput{
		Result: ValidationResult{
			IsValid:      true,
			NewSignCount: ad.SignCount,
			UserVerified: ad.UserVerified(),
		},
		Format: obj.Format,
	}
	if ad.Flags&authenticatordata.ADF_HAS_ATTESTED_CREDENTIAL_DATA != 0 {
		acd := &ad.AttestedCredentialData
		out.CredentialID = acd.CredentialID
		out.PublicKey = acd.CredentialPublicKey
		out.Algorithm = acd.CredentialPublicKey.Algorithm
		out.AAGUID = acd.AAGUID
	}
	return out
}

func attestationFailure(kind ErrorKind) VerifyAttestationOutput {
	return VerifyAttestationOutput{Result: failure(kind)}
}

// checkAuthenticatorData applies the flag and RP binding checks shared by
// both ceremonies.
func checkAuthenticatorData(ad *authenticatordata.T, rpID string, requireUV bool) (ErrorKind, bool) {
	rpIDHash := sha256.Sum256([]byte(rpID))
	if !bytes.Equal(rpIDHash[:], ad.RPIDHash) {
		return RpIdHashMismatch, false
	}
	if !ad.UserPresent() {
		return UserNotPresent, false
	}
	if requireUV && !ad.UserVerified() {
		return UserVerificationRequired, false
	}
	return 0, true
}
