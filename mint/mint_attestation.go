package mint

import (
	"crypto"
	"crypto/sha256"

	"github.com/fxamacker/cbor/v2"

	"github.com/splitsecure/go-webauthn/authenticatordata"
	"github.com/splitsecure/go-webauthn/cosekey"
	"github.com/splitsecure/go-webauthn/webauthn"
)

type AttestInput struct {
	// PublicKey is the credential public key embedded in the attested
	// credential data (*ecdsa.PublicKey or *rsa.PublicKey).
	PublicKey crypto.PublicKey
	Algorithm cosekey.Algorithm

	RelyingPartyID string
	CredentialID   []byte
	AAGUID         []byte // 16 bytes, zeroed when nil
	SignCount      uint32

	// Flags defaults to UP|AT when zero. Set FlagsOverride to mint
	// deliberately broken fixtures, including ones without UP.
	Flags         byte
	FlagsOverride bool
}

type AttestOutput struct {
	Attestation []byte
	AuthData    []byte
}

// AttestKey builds a "none"-format attestation object around the given
// credential key.
func AttestKey(in *AttestInput) (AttestOutput, error) {
	adb, err := buildAuthData(in)
	if err != nil {
		return AttestOutput{}, err
	}

	emptyStmt, err := cbor.Marshal(map[string]any{})
	if err != nil {
		return AttestOutput{}, err
	}

	obj := webauthn.AttestationObject{
		Format:               webauthn.FormatNone,
		AttestationStatement: emptyStmt,
		AuthData:             adb,
	}
	aob, err := cbor.Marshal(&obj)
	if err != nil {
		return AttestOutput{}, err
	}
	return AttestOutput{Attestation: aob, AuthData: adb}, nil
}

// PackedParams configures the statement for AttestKeyPacked.
type PackedParams struct {
	// Signer produces the statement signature. For self attestation this
	// is the credential private key and X5C stays empty; otherwise it is
	// the attestation certificate key, with the DER chain in X5C, leaf
	// first.
	Signer    crypto.Signer
	Algorithm cosekey.Algorithm
	X5C       [][]byte

	// ClientDataJSON is the client data the statement signs over.
	ClientDataJSON []byte
}

// AttestKeyPacked builds a "packed"-format attestation object whose
// statement signs authData || SHA-256(clientDataJSON).
func AttestKeyPacked(in *AttestInput, p *PackedParams) (AttestOutput, error) {
	adb, err := buildAuthData(in)
	if err != nil {
		return AttestOutput{}, err
	}

	clientDataHash := sha256.Sum256(p.ClientDataJSON)
	signed := append(append([]byte{}, adb...), clientDataHash[:]...)
	sig, err := signPayload(p.Signer, p.Algorithm, signed)
	if err != nil {
		return AttestOutput{}, err
	}

	stmtMap := map[string]any{
		"alg": int64(p.Algorithm),
		"sig": sig,
	}
	if len(p.X5C) > 0 {
		stmtMap["x5c"] = p.X5C
	}
	stmt, err := cbor.Marshal(stmtMap)
	if err != nil {
		return AttestOutput{}, err
	}

	obj := webauthn.AttestationObject{
		Format:               webauthn.FormatPacked,
		AttestationStatement: stmt,
		AuthData:             adb,
	}
	aob, err := cbor.Marshal(&obj)
	if err != nil {
		return AttestOutput{}, err
	}
	return AttestOutput{Attestation: aob, AuthData: adb}, nil
}

func buildAuthData(in *AttestInput) ([]byte, error) {
	coseKey, err := EncodeCOSEKey(in.PublicKey, in.Algorithm)
	if err != nil {
		return nil, err
	}

	flags := in.Flags
	if !in.FlagsOverride && flags == 0 {
		flags = authenticatordata.ADF_USER_PRESENT | authenticatordata.ADF_HAS_ATTESTED_CREDENTIAL_DATA
	}

	aaguid := in.AAGUID
	if aaguid == nil {
		aaguid = make([]byte, 16)
	}

	rpIDHash := sha256.Sum256([]byte(in.RelyingPartyID))
	ad := authenticatordata.T{
		RPIDHash:  rpIDHash[:],
		Flags:     flags,
		SignCount: in.SignCount,
		AttestedCredentialData: authenticatordata.AttestedCredentialData{
			AAGUID:                 aaguid,
			CredentialID:           in.CredentialID,
			RawCredentialPublicKey: coseKey,
		},
	}
	return authenticatordata.Marshal(&ad)
}
