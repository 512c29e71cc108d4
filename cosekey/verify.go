package cosekey

import (
	"crypto"
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/rsa"
	"crypto/sha256"
	"math/big"

	// Register SHA-384 and SHA-512 for crypto.Hash.New.
	_ "crypto/sha512"
)

// Verify reports whether sig is a valid signature over data under the key's
// algorithm. It is a plain predicate: malformed signatures, off-curve points
// and undersized key material all come back false, never as a panic or an
// error. WebAuthn signatures sit directly on an authentication boundary, so
// every failure mode of attacker-controlled bytes has to degrade to a
// rejection.
//
// EC2 signatures are ASN.1 DER sequences of r and s per the WebAuthn
// signature format. The algorithm identifier, not the transported curve
// label, selects both curve and hash.
//
// https://www.w3.org/TR/webauthn/#sctn-signature-attestation-types
func (k *Key) Verify(data, sig []byte) bool {
	if k == nil || len(sig) == 0 {
		return false
	}

	switch k.Algorithm {
	case ES256:
		return k.verifyECDSA(elliptic.P256(), crypto.SHA256, data, sig)
	case ES384:
		return k.verifyECDSA(elliptic.P384(), crypto.SHA384, data, sig)
	case ES512:
		return k.verifyECDSA(elliptic.P521(), crypto.SHA512, data, sig)
	case RS256:
		pub, ok := k.rsaPublicKey()
		if !ok {
			return false
		}
		digest := sha256.Sum256(data)
		return rsa.VerifyPKCS1v15(pub, crypto.SHA256, digest[:], sig) == nil
	case PS256:
		pub, ok := k.rsaPublicKey()
		if !ok {
			return false
		}
		digest := sha256.Sum256(data)
		opts := &rsa.PSSOptions{SaltLength: rsa.PSSSaltLengthEqualsHash, Hash: crypto.SHA256}
		return rsa.VerifyPSS(pub, crypto.SHA256, digest[:], sig, opts) == nil
	default:
		return false
	}
}

func (k *Key) verifyECDSA(curve elliptic.Curve, hash crypto.Hash, data, sig []byte) bool {
	if k.Type != KeyTypeEC2 || len(k.X) == 0 || len(k.Y) == 0 {
		return false
	}

	pub := &ecdsa.PublicKey{
		Curve: curve,
		X:     new(big.Int).SetBytes(k.X),
		Y:     new(big.Int).SetBytes(k.Y),
	}
	if !pub.Curve.IsOnCurve(pub.X, pub.Y) {
		return false
	}

	h := hash.New()
	h.Write(data)
	return ecdsa.VerifyASN1(pub, h.Sum(nil), sig)
}

func (k *Key) rsaPublicKey() (*rsa.PublicKey, bool) {
	if k.Type != KeyTypeRSA || len(k.N) == 0 || len(k.E) == 0 || len(k.E) > 8 {
		return nil, false
	}
	e := new(big.Int).SetBytes(k.E)
	if !e.IsInt64() || e.Int64() < 3 || e.Int64() > int64(1)<<31-1 {
		return nil, false
	}
	return &rsa.PublicKey{
		N: new(big.Int).SetBytes(k.N),
		E: int(e.Int64()),
	}, true
}
