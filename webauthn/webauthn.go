// Package webauthn validates WebAuthn registration (attestation) and
// authentication (assertion) ceremonies.
//
// The validators are pure functions over the byte buffers a browser hands
// to a relying party: clientDataJSON, the CBOR attestation object, raw
// authenticator data and signatures. They allocate per call, touch no
// shared state and perform no I/O, so they are safe to call from any number
// of goroutines. The one piece of cross-call state that matters for
// security, the per-credential signature counter, is the caller's to store;
// see ValidationResult.NewSignCount.
package webauthn

// Attestation statement formats this package recognizes.
const (
	FormatNone   = "none"
	FormatPacked = "packed"
)

// Validator validates both ceremony kinds with a fixed relying-party
// configuration.
type Validator interface {
	VerifyAttestation(in *VerifyAttestationInput) VerifyAttestationOutput
	VerifyAssertion(in *VerifyAssertionInput) ValidationResult
}

type ValidatorImpl struct {
	rpID      string
	origins   []string
	requireUV bool
	packed    *PackedOptions
}

type optionsState struct {
	origins   []string
	requireUV bool
	packed    *PackedOptions
}

type option struct {
	apply func(*optionsState)
}

func newoption(fn func(*optionsState)) option {
	return option{
		apply: fn,
	}
}

// WithAllowedOrigins restricts the client data origin to an exact-match
// allow-list. Without this option any origin is accepted.
func WithAllowedOrigins(origins []string) option {
	return newoption(func(s *optionsState) {
		s.origins = origins
	})
}

// WithUserVerification requires the UV flag for every ceremony.
func WithUserVerification() option {
	return newoption(func(s *optionsState) {
		s.requireUV = true
	})
}

// WithPackedAttestation turns on cryptographic verification of "packed"
// attestation statements, see PackedOptions.
func WithPackedAttestation(opts *PackedOptions) option {
	return newoption(func(s *optionsState) {
		s.packed = opts
	})
}

// New builds a Validator bound to the given relying-party ID.
func New(relyingPartyID string, options ...option) *ValidatorImpl {
	v := &ValidatorImpl{rpID: relyingPartyID}

	optionsState := optionsState{}

	// compute the options state from the provided options
	for _, option := range options {
		option.apply(&optionsState)
	}

	v.origins = optionsState.origins
	v.requireUV = optionsState.requireUV
	v.packed = optionsState.packed
	return v
}

func (v *ValidatorImpl) VerifyAttestation(in *VerifyAttestationInput) VerifyAttestationOutput {
	filled := *in
	filled.RelyingPartyID = v.rpID
	filled.AllowedOrigins = v.origins
	filled.RequireUserVerification = v.requireUV
	filled.Packed = v.packed
	return VerifyAttestation(&filled)
}

func (v *ValidatorImpl) VerifyAssertion(in *VerifyAssertionInput) ValidationResult {
	filled := *in
	filled.RelyingPartyID = v.rpID
	filled.AllowedOrigins = v.origins
	filled.RequireUserVerification = v.requireUV
	return VerifyAssertion(&filled)
}
