package webauthn

import (
	"bytes"
	"crypto/x509"
	"fmt"

	"github.com/pkg/errors"
)

func checkChainSignatureAlgorithm(cert *x509.Certificate) error {
	switch cert.SignatureAlgorithm {
	case x509.MD2WithRSA, x509.MD5WithRSA, x509.SHA1WithRSA, x509.ECDSAWithSHA1:
		return fmt.Errorf("weak signature algorithm: %v", cert.SignatureAlgorithm)
	}
	return nil
}

func checkChainBasicConstraints(cert *x509.Certificate, isCA bool, pathLen int) error {
	if isCA {
		if !cert.IsCA {
			return errors.New("intermediate must be a CA certificate")
		}
		if cert.MaxPathLen > 0 && pathLen > cert.MaxPathLen {
			return fmt.Errorf("path length %d exceeds maximum allowed %d", pathLen, cert.MaxPathLen)
		}
	} else if cert.IsCA {
		return errors.New("leaf certificate cannot be a CA")
	}
	return nil
}

// verifyChain walks an attestation certificate chain, ordered leaf to root,
// and checks that it terminates at one of the given trust anchors. Each
// link must chain by subject/issuer name, carry a valid signature from its
// parent and sit inside the parent's validity window.
func verifyChain(chain []*x509.Certificate, roots []*x509.Certificate) error {
	if len(chain) == 0 {
		return errors.New("chain is empty")
	}
	if len(roots) == 0 {
		return errors.New("no trust anchors configured")
	}

	for i, cert := range chain {
		if err := checkChainSignatureAlgorithm(cert); err != nil {
			return fmt.Errorf("certificate at index %d: %w", i, err)
		}
		// Everything above the leaf must be a CA.
		if err := checkChainBasicConstraints(cert, i != 0, len(chain)-1-i); err != nil {
			return fmt.Errorf("certificate at index %d: %w", i, err)
		}
	}

	for i := len(chain) - 1; i >= 1; i-- {
		parent := chain[i]
		child := chain[i-1]

		if !bytes.Equal(parent.RawSubject, child.RawIssuer) {
			return fmt.Errorf("certificate at index %d: issuer does not match parent subject", i-1)
		}
		if err := child.CheckSignatureFrom(parent); err != nil {
			return fmt.Errorf("certificate at index %d not signed by parent: %w", i-1, err)
		}
		if child.NotBefore.Before(parent.NotBefore) || child.NotAfter.After(parent.NotAfter) {
			return fmt.Errorf("certificate at index %d: validity period exceeds parent's", i-1)
		}
	}

	top := chain[len(chain)-1]
	for _, root := range roots {
		if !bytes.Equal(root.RawSubject, top.RawIssuer) {
			continue
		}
		if err := top.CheckSignatureFrom(root); err != nil {
			continue
		}
		if top.NotBefore.Before(root.NotBefore) || top.NotAfter.After(root.NotAfter) {
			continue
		}
		return nil
	}
	return errors.New("chain is not issued by any configured trust anchor")
}
