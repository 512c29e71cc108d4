package webauthn

import (
	"bytes"
	"crypto"
	"crypto/ecdsa"
	"crypto/rsa"
	"crypto/sha256"
	"crypto/x509"
	"encoding/asn1"
	"fmt"

	"github.com/pkg/errors"

	"github.com/splitsecure/go-webauthn/authenticatordata"
	"github.com/splitsecure/go-webauthn/cosekey"
)

// id-fido-gen-ce-aaguid, the certificate extension carrying the
// authenticator model id.
//
// https://www.w3.org/TR/webauthn/#sctn-packed-attestation-cert-requirements
var idFIDOGenCEAAGUIDOID = asn1.ObjectIdentifier{1, 3, 6, 1, 4, 1, 45724, 1, 1, 4}

// PackedOptions configures verification of "packed" attestation statements.
type PackedOptions struct {
	// AllowSelfAttested accepts statements signed with the credential key
	// itself instead of an attestation certificate.
	AllowSelfAttested bool

	// Roots are the trust anchors a certificate chain must lead to, for
	// example parsed out of the FIDO metadata service.
	Roots []*x509.Certificate
}

type packedStatement struct {
	Alg int64    `cbor:"alg"`
	Sig []byte   `cbor:"sig"`
	X5C [][]byte `cbor:"x5c"`
}

// verifyPackedStatement checks the attestation statement signature over
// authData || SHA-256(clientDataJSON), either self-attested or against the
// leaf of an x5c chain rooted in the configured anchors.
//
// https://www.w3.org/TR/webauthn/#sctn-packed-attestation
func verifyPackedStatement(obj *AttestationObject, ad *authenticatordata.T, clientDataJSON []byte, opts *PackedOptions) error {
	stmt := packedStatement{}
	if err := decMode.Unmarshal(obj.AttestationStatement, &stmt); err != nil {
		return errors.Wrap(err, "unmarshalling packed statement")
	}
	if stmt.Alg == 0 {
		return errors.New("packed statement without an algorithm")
	}
	if len(stmt.Sig) == 0 {
		return errors.New("packed statement without a signature")
	}

	clientDataHash := sha256.Sum256(clientDataJSON)
	signed := make([]byte, 0, len(obj.AuthData)+sha256.Size)
	signed = append(signed, obj.AuthData...)
	signed = append(signed, clientDataHash[:]...)

	if len(stmt.X5C) == 0 {
		// Self attestation: the statement is signed with the credential
		// private key and alg must match the credential key.
		if !opts.AllowSelfAttested {
			return errors.New("self-attested packed statement not permitted")
		}
		key := ad.AttestedCredentialData.CredentialPublicKey
		if key == nil {
			return errors.New("self-attested packed statement without attested credential data")
		}
		if cosekey.Algorithm(stmt.Alg) != key.Algorithm {
			return fmt.Errorf("self-attested alg %d does not match credential key alg %s", stmt.Alg, key.Algorithm)
		}
		if !key.Verify(signed, stmt.Sig) {
			return errors.New("self-attested signature did not verify")
		}
		return nil
	}

	chain := make([]*x509.Certificate, 0, len(stmt.X5C))
	for _, der := range stmt.X5C {
		cert, err := x509.ParseCertificate(der)
		if err != nil {
			return errors.Wrap(err, "parsing x5c certificate")
		}
		chain = append(chain, cert)
	}

	leaf := chain[0]
	if err := verifyWithPublicKey(leaf.PublicKey, cosekey.Algorithm(stmt.Alg), signed, stmt.Sig); err != nil {
		return errors.Wrap(err, "verifying with attestation certificate")
	}
	if err := checkAttestationCertificate(leaf, ad.AttestedCredentialData.AAGUID); err != nil {
		return err
	}
	return verifyChain(chain, opts.Roots)
}

// checkAttestationCertificate applies the packed attestation certificate
// requirements to the leaf.
func checkAttestationCertificate(cert *x509.Certificate, aaguid []byte) error {
	if cert.Version != 3 {
		return fmt.Errorf("attestation certificate uses version %d, must be version 3", cert.Version)
	}
	ou := cert.Subject.OrganizationalUnit
	if len(ou) != 1 || ou[0] != "Authenticator Attestation" {
		return fmt.Errorf("attestation certificate Subject-OU must be 'Authenticator Attestation', got %q", ou)
	}
	if cert.IsCA {
		return errors.New("attestation certificate must not be a CA")
	}

	var aaguidExt []byte
	for _, ext := range cert.Extensions {
		if ext.Id.Equal(idFIDOGenCEAAGUIDOID) {
			aaguidExt = ext.Value
			break
		}
	}
	if len(aaguidExt) == 0 {
		return errors.New("no id-fido-gen-ce-aaguid extension in attestation certificate")
	}
	var certAAGUID []byte
	if _, err := asn1.Unmarshal(aaguidExt, &certAAGUID); err != nil {
		return errors.Wrap(err, "parsing id-fido-gen-ce-aaguid extension")
	}
	if !bytes.Equal(certAAGUID, aaguid) {
		return errors.New("authenticator data aaguid does not match certificate aaguid")
	}
	return nil
}

// verifyWithPublicKey checks a signature with a certificate public key using
// the COSE algorithm the statement declared.
func verifyWithPublicKey(pub crypto.PublicKey, alg cosekey.Algorithm, data, sig []byte) error {
	switch alg {
	case cosekey.ES256, cosekey.ES384, cosekey.ES512:
		ecdsaPub, ok := pub.(*ecdsa.PublicKey)
		if !ok {
			return fmt.Errorf("public key type %T does not match algorithm %s", pub, alg)
		}
		h := hashForAlgorithm(alg).New()
		h.Write(data)
		if !ecdsa.VerifyASN1(ecdsaPub, h.Sum(nil), sig) {
			return fmt.Errorf("invalid %s signature", alg)
		}
	case cosekey.RS256:
		rsaPub, ok := pub.(*rsa.PublicKey)
		if !ok {
			return fmt.Errorf("public key type %T does not match algorithm %s", pub, alg)
		}
		digest := sha256.Sum256(data)
		if err := rsa.VerifyPKCS1v15(rsaPub, crypto.SHA256, digest[:], sig); err != nil {
			return fmt.Errorf("invalid RS256 signature: %w", err)
		}
	case cosekey.PS256:
		rsaPub, ok := pub.(*rsa.PublicKey)
		if !ok {
			return fmt.Errorf("public key type %T does not match algorithm %s", pub, alg)
		}
		digest := sha256.Sum256(data)
		pssOpts := &rsa.PSSOptions{SaltLength: rsa.PSSSaltLengthEqualsHash, Hash: crypto.SHA256}
		if err := rsa.VerifyPSS(rsaPub, crypto.SHA256, digest[:], sig, pssOpts); err != nil {
			return fmt.Errorf("invalid PS256 signature: %w", err)
		}
	default:
		return fmt.Errorf("unsupported signing algorithm: %d", alg)
	}
	return nil
}

func hashForAlgorithm(alg cosekey.Algorithm) crypto.Hash {
	switch alg {
	case cosekey.ES384:
		return crypto.SHA384
	case cosekey.ES512:
		return crypto.SHA512
	default:
		return crypto.SHA256
	}
}
