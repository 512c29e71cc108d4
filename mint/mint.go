// Package mint builds WebAuthn ceremony fixtures: client data, authenticator
// data, COSE keys, attestation objects and assertion signatures. It exists
// so the validation packages can be exercised end to end against freshly
// generated keys instead of canned byte blobs.
package mint

import (
	"crypto"
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/rand"
	"crypto/rsa"
	"crypto/sha256"
	"crypto/sha512"
	"encoding/json"
	"fmt"
	"math/big"

	"github.com/fxamacker/cbor/v2"
	"github.com/ldclabs/cose/iana"

	"github.com/splitsecure/go-webauthn/cosekey"
	"github.com/splitsecure/go-webauthn/webauthn"
)

// ClientData serializes a clientDataJSON payload for the given ceremony
// type ("webauthn.create" or "webauthn.get").
func ClientData(ceremonyType string, challenge []byte, origin string) []byte {
	b, err := json.Marshal(map[string]any{
		"type":      ceremonyType,
		"challenge": webauthn.Base64UrlEncode(challenge),
		"origin":    origin,
	})
	if err != nil {
		panic(err) // map of strings cannot fail to marshal
	}
	return b
}

// EncodeCOSEKey serializes a public key as a CBOR COSE key map labelled
// with the given algorithm.
func EncodeCOSEKey(pub crypto.PublicKey, alg cosekey.Algorithm) ([]byte, error) {
	switch pub := pub.(type) {
	case *ecdsa.PublicKey:
		var crv int64
		switch pub.Curve {
		case elliptic.P256():
			crv = iana.EllipticCurveP_256
		case elliptic.P384():
			crv = iana.EllipticCurveP_384
		case elliptic.P521():
			crv = iana.EllipticCurveP_521
		default:
			return nil, fmt.Errorf("unsupported curve: %v", pub.Curve)
		}
		size := (pub.Curve.Params().BitSize + 7) / 8
		return cbor.Marshal(map[int64]any{
			iana.KeyParameterKty:    int64(iana.KeyTypeEC2),
			iana.KeyParameterAlg:    int64(alg),
			iana.EC2KeyParameterCrv: crv,
			iana.EC2KeyParameterX:   pub.X.FillBytes(make([]byte, size)),
			iana.EC2KeyParameterY:   pub.Y.FillBytes(make([]byte, size)),
		})
	case *rsa.PublicKey:
		return cbor.Marshal(map[int64]any{
			iana.KeyParameterKty:  int64(iana.KeyTypeRSA),
			iana.KeyParameterAlg:  int64(alg),
			iana.RSAKeyParameterN: pub.N.Bytes(),
			iana.RSAKeyParameterE: big.NewInt(int64(pub.E)).Bytes(),
		})
	default:
		return nil, fmt.Errorf("unsupported public key type: %T", pub)
	}
}

// signPayload signs with the digest and padding the given COSE algorithm
// prescribes. ECDSA signatures come out ASN.1 DER encoded, matching the
// WebAuthn wire format.
func signPayload(signer crypto.Signer, alg cosekey.Algorithm, payload []byte) ([]byte, error) {
	switch alg {
	case cosekey.ES256, cosekey.RS256:
		digest := sha256.Sum256(payload)
		return signer.Sign(rand.Reader, digest[:], crypto.SHA256)
	case cosekey.ES384:
		digest := sha512.Sum384(payload)
		return signer.Sign(rand.Reader, digest[:], crypto.SHA384)
	case cosekey.ES512:
		digest := sha512.Sum512(payload)
		return signer.Sign(rand.Reader, digest[:], crypto.SHA512)
	case cosekey.PS256:
		digest := sha256.Sum256(payload)
		return signer.Sign(rand.Reader, digest[:], &rsa.PSSOptions{
			SaltLength: rsa.PSSSaltLengthEqualsHash,
			Hash:       crypto.SHA256,
		})
	default:
		return nil, fmt.Errorf("unsupported algorithm: %s", alg)
	}
}
