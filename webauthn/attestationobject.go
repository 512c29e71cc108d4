package webauthn

import (
	"github.com/fxamacker/cbor/v2"
)

// decMode is the CBOR decode mode for everything arriving off the wire.
// WebAuthn payloads are at most two levels deep and never use indefinite
// lengths, so the limits double as a guard against adversarial nesting.
var decMode = func() cbor.DecMode {
	mode, err := cbor.DecOptions{
		MaxNestedLevels:  4,
		MaxArrayElements: 1024,
		MaxMapPairs:      1024,
		IndefLength:      cbor.IndefLengthForbidden,
	}.DecMode()
	if err != nil {
		panic(err)
	}
	return mode
}()

// AttestationObject is the CBOR envelope returned by a credential creation.
//
// https://www.w3.org/TR/webauthn/#attestation-object
type AttestationObject struct {
	Format string `cbor:"fmt"`
	// AttestationStatement is kept as raw CBOR. The format-generic
	// validation path never interprets it; packed verification decodes it
	// on demand.
	AttestationStatement cbor.RawMessage `cbor:"attStmt"`
	AuthData             []byte          `cbor:"authData"`
}

const cborMajorTypeMap = 5

// DecodeAttestationObject decodes an attestation object, returning nil for
// anything that is not a well-formed map carrying a text fmt, a byte-string
// authData and a map attStmt. Unknown extra keys are ignored. It never
// panics on malformed or truncated input.
func DecodeAttestationObject(b []byte) *AttestationObject {
	if len(b) == 0 {
		return nil
	}

	obj := &AttestationObject{}
	if err := decMode.Unmarshal(b, obj); err != nil {
		return nil
	}
	if obj.Format == "" || len(obj.AuthData) == 0 {
		return nil
	}
	if len(obj.AttestationStatement) == 0 || obj.AttestationStatement[0]>>5 != cborMajorTypeMap {
		return nil
	}
	return obj
}
