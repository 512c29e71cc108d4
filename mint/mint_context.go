package mint

import (
	"crypto"
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/rand"
	"crypto/x509"
	"crypto/x509/pkix"
	"encoding/asn1"
	"math/big"
	"time"
)

// MintContext is a throwaway CA/intermediate pair for minting packed
// attestation certificate chains in tests.
type MintContext struct {
	CAKey     *ecdsa.PrivateKey
	CACertDer []byte

	IntKey     *ecdsa.PrivateKey
	IntCertDer []byte
}

func NewMintContext() (*MintContext, error) {
	cader, capriv, err := generateCACert("go-webauthn Dev/Mock CA", nil, nil, 2)
	if err != nil {
		return nil, err
	}

	cacert, err := x509.ParseCertificate(cader)
	if err != nil {
		return nil, err
	}

	intder, intpriv, err := generateCACert("go-webauthn Dev/Mock Intermediate", cacert, capriv, 1)
	if err != nil {
		return nil, err
	}

	return &MintContext{
		CAKey:     capriv,
		CACertDer: cader,

		IntKey:     intpriv,
		IntCertDer: intder,
	}, nil
}

// Same OID the validator looks for, id-fido-gen-ce-aaguid.
var aaguidOID = asn1.ObjectIdentifier{1, 3, 6, 1, 4, 1, 45724, 1, 1, 4}

// MintAttestationCert issues a leaf certificate meeting the packed
// attestation certificate requirements for the given authenticator key and
// AAGUID, signed by the context's intermediate.
func (mc *MintContext) MintAttestationCert(pub crypto.PublicKey, aaguid []byte) ([]byte, error) {
	aaguidValue, err := asn1.Marshal(aaguid)
	if err != nil {
		return nil, err
	}

	intCert, err := x509.ParseCertificate(mc.IntCertDer)
	if err != nil {
		return nil, err
	}

	template := x509.Certificate{
		SerialNumber: big.NewInt(2),
		Subject: pkix.Name{
			CommonName:         "mock authenticator",
			OrganizationalUnit: []string{"Authenticator Attestation"},
		},
		NotBefore:             intCert.NotBefore,
		NotAfter:              intCert.NotAfter,
		KeyUsage:              x509.KeyUsageDigitalSignature,
		BasicConstraintsValid: true,
		ExtraExtensions: []pkix.Extension{
			{
				Id:    aaguidOID,
				Value: aaguidValue,
			},
		},
	}

	return x509.CreateCertificate(rand.Reader, &template, intCert, pub, mc.IntKey)
}

func generateCACert(commonName string, parent *x509.Certificate, parentKey *ecdsa.PrivateKey, maxPathLen int) ([]byte, *ecdsa.PrivateKey, error) {
	key, err := ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
	if err != nil {
		return nil, nil, err
	}

	notBefore := time.Now().Add(-time.Hour)
	notAfter := time.Now().Add(24 * time.Hour)
	if parent != nil {
		notBefore = parent.NotBefore
		notAfter = parent.NotAfter
	}

	template := x509.Certificate{
		SerialNumber:          big.NewInt(1),
		Subject:               pkix.Name{CommonName: commonName},
		NotBefore:             notBefore,
		NotAfter:              notAfter,
		KeyUsage:              x509.KeyUsageCertSign | x509.KeyUsageCRLSign,
		BasicConstraintsValid: true,
		IsCA:                  true,
		MaxPathLen:            maxPathLen,
	}

	signerCert := &template
	signerKey := key
	if parent != nil {
		signerCert = parent
		signerKey = parentKey
	}

	certDER, err := x509.CreateCertificate(rand.Reader, &template, signerCert, &key.PublicKey, signerKey)
	if err != nil {
		return nil, nil, err
	}
	return certDER, key, nil
}
