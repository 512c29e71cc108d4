package authenticatordata

import (
	"encoding/binary"
	"fmt"

	"github.com/pkg/errors"

	"github.com/splitsecure/go-webauthn/cosekey"
)

// Unmarshal parses authenticator data carried inside an attestation object.
// When the AT flag is set the attested credential data, including the
// embedded COSE public key, is parsed as well. Extension bytes after the
// credential key are ignored.
func Unmarshal(src []byte, dst *T) error {
	rest, err := unmarshalBase(src, dst)
	if err != nil {
		return err
	}
	if dst.Flags&ADF_HAS_ATTESTED_CREDENTIAL_DATA != 0 {
		if _, err := UnmarshalAttestedCredentialData(rest, &dst.AttestedCredentialData); err != nil {
			return err
		}
	}

	// ignoring extensions
	return nil
}

// UnmarshalFromAssertion parses the raw authenticatorData of an assertion
// response. Assertions never carry attested credential data, so only the
// fixed 37-byte prefix is read regardless of flags.
func UnmarshalFromAssertion(src []byte, dst *T) error {
	_, err := unmarshalBase(src, dst)
	return err
}

func unmarshalBase(src []byte, dst *T) (rest []byte, err error) {
	if len(src) < FixedLength {
		return nil, fmt.Errorf("authenticator data too short: %d bytes, need %d", len(src), FixedLength)
	}

	cursor := src

	dst.RPIDHash = cursor[0:32]
	cursor = cursor[32:]

	dst.Flags = cursor[0]
	cursor = cursor[1:]

	dst.SignCount = binary.BigEndian.Uint32(cursor)
	cursor = cursor[4:]

	return cursor, nil
}

func UnmarshalAttestedCredentialData(src []byte, dst *AttestedCredentialData) (rest []byte, err error) {
	if len(src) < 16+2 {
		return nil, errors.New("attested credential data too short")
	}

	dst.AAGUID = src[0:16]

	credLen := int(binary.BigEndian.Uint16(src[16:18]))
	if len(src) < 18+credLen {
		return nil, fmt.Errorf("attested credential data too short for credential id of %d bytes", credLen)
	}
	dst.CredentialID = src[18 : 18+credLen]

	key, n, err := cosekey.DecodeFirst(src[18+credLen:])
	if err != nil {
		return nil, errors.Wrap(err, "decoding credential public key")
	}
	dst.CredentialPublicKey = key
	dst.RawCredentialPublicKey = src[18+credLen : 18+credLen+n]

	return src[18+credLen+n:], nil
}
