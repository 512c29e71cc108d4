package authenticatordata

import (
	"encoding/binary"
	"fmt"

	"github.com/pkg/errors"
)

// Marshal serializes authenticator data. The attested credential data block
// is written only when ADF_HAS_ATTESTED_CREDENTIAL_DATA is set, in which
// case RawCredentialPublicKey must already hold the CBOR-encoded COSE key.
func Marshal(t *T) ([]byte, error) {
	if len(t.RPIDHash) != 32 {
		return nil, fmt.Errorf("rp id hash must be 32 bytes, got %d", len(t.RPIDHash))
	}

	out := make([]byte, 0, FixedLength)
	out = append(out, t.RPIDHash...)
	out = append(out, t.Flags)
	out = binary.BigEndian.AppendUint32(out, t.SignCount)

	if t.Flags&ADF_HAS_ATTESTED_CREDENTIAL_DATA == 0 {
		return out, nil
	}

	acd := &t.AttestedCredentialData
	if len(acd.AAGUID) != 16 {
		return nil, fmt.Errorf("aaguid must be 16 bytes, got %d", len(acd.AAGUID))
	}
	if len(acd.CredentialID) > 0xffff {
		return nil, fmt.Errorf("credential id too long: %d bytes", len(acd.CredentialID))
	}
	if len(acd.RawCredentialPublicKey) == 0 {
		return nil, errors.New("attested credential data without an encoded public key")
	}

	out = append(out, acd.AAGUID...)
	out = binary.BigEndian.AppendUint16(out, uint16(len(acd.CredentialID)))
	out = append(out, acd.CredentialID...)
	out = append(out, acd.RawCredentialPublicKey...)
	return out, nil
}
