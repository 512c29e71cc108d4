// Package cosekey models WebAuthn credential public keys transported in
// COSE key format and verifies signatures made with them.
//
// https://www.rfc-editor.org/rfc/rfc8152#section-7
// https://www.iana.org/assignments/cose/cose.xhtml#algorithms
package cosekey

import (
	"fmt"

	"github.com/ldclabs/cose/iana"
)

// Algorithm is a COSE algorithm identifier.
//
// https://www.w3.org/TR/webauthn/#typedefdef-cosealgorithmidentifier
type Algorithm int64

// The algorithms this package can verify signatures for.
const (
	ES256 = Algorithm(iana.AlgorithmES256)
	ES384 = Algorithm(iana.AlgorithmES384)
	ES512 = Algorithm(iana.AlgorithmES512)
	RS256 = Algorithm(iana.AlgorithmRS256)
	PS256 = Algorithm(iana.AlgorithmPS256)
)

var algStrings = map[Algorithm]string{
	ES256: "ES256",
	ES384: "ES384",
	ES512: "ES512",
	RS256: "RS256",
	PS256: "PS256",
}

func (a Algorithm) String() string {
	if s, ok := algStrings[a]; ok {
		return s
	}
	return fmt.Sprintf("Algorithm(%d)", int64(a))
}

// IsSupportedAlgorithm reports whether a credential using the given COSE
// algorithm identifier can be verified by this package. Exposed so callers
// can filter out authenticator algorithms they must not accept.
func IsSupportedAlgorithm(a Algorithm) bool {
	_, ok := algStrings[a]
	return ok
}

// KeyType discriminates the key material carried by a Key.
type KeyType int

const (
	KeyTypeEC2 = KeyType(iana.KeyTypeEC2)
	KeyTypeRSA = KeyType(iana.KeyTypeRSA)
)

// Key is a decoded credential public key. Exactly one of the field pairs
// (X, Y) or (N, E) is populated, determined by Type.
//
// A Key is what a relying party persists after a successful registration and
// feeds back in for every assertion.
type Key struct {
	Type      KeyType
	Algorithm Algorithm

	// EC2 point coordinates, big-endian.
	X []byte
	Y []byte

	// RSA modulus and public exponent, big-endian.
	N []byte
	E []byte
}
