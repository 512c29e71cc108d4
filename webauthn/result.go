package webauthn

import "fmt"

// ErrorKind identifies which validation check rejected a ceremony.
type ErrorKind int

const (
	InvalidClientData ErrorKind = iota + 1
	InvalidType
	ChallengeMismatch
	OriginMismatch
	InvalidAttestationObject
	InvalidAuthenticatorData
	RpIdHashMismatch
	UserNotPresent
	UserVerificationRequired
	SignCountNotIncremented
	InvalidSignature
)

var errorKindStrings = map[ErrorKind]string{
	InvalidClientData:        "InvalidClientData",
	InvalidType:              "InvalidType",
	ChallengeMismatch:        "ChallengeMismatch",
	OriginMismatch:           "OriginMismatch",
	InvalidAttestationObject: "InvalidAttestationObject",
	InvalidAuthenticatorData: "InvalidAuthenticatorData",
	RpIdHashMismatch:         "RpIdHashMismatch",
	UserNotPresent:           "UserNotPresent",
	UserVerificationRequired: "UserVerificationRequired",
	SignCountNotIncremented:  "SignCountNotIncremented",
	InvalidSignature:         "InvalidSignature",
}

func (k ErrorKind) String() string {
	if s, ok := errorKindStrings[k]; ok {
		return s
	}
	return fmt.Sprintf("ErrorKind(%d)", int(k))
}

// ValidationResult is the outcome of an attestation or assertion ceremony.
//
// Errors carries set semantics: callers should test membership with
// HasError rather than compare against a fixed slice. The validators
// short-circuit at the first failing check, so today the set holds at most
// one element, but that is not part of the contract.
type ValidationResult struct {
	IsValid bool
	Errors  []ErrorKind

	// NewSignCount is the signature counter reported by the authenticator.
	// For assertions the caller must persist it (atomically, replacing the
	// stored value only while strictly greater) to keep the anti-replay
	// check meaningful.
	NewSignCount uint32

	// UserVerified reports the UV flag from the authenticator data.
	UserVerified bool
}

// HasError reports whether the result was rejected for the given reason.
func (r *ValidationResult) HasError(kind ErrorKind) bool {
	for _, k := range r.Errors {
		if k == kind {
			return true
		}
	}
	return false
}

func failure(kind ErrorKind) ValidationResult {
	return ValidationResult{Errors: []ErrorKind{kind}}
}
