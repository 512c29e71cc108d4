package cosekey

import (
	"bytes"
	"fmt"

	"github.com/fxamacker/cbor/v2"
	"github.com/ldclabs/cose/iana"
	"github.com/pkg/errors"
)

// COSE keys label their parameters with small integers. The -1 label is
// overloaded: curve id for EC2 keys, modulus for RSA keys, so it has to be
// kept raw until the key type is known.
//
// https://www.iana.org/assignments/cose/cose.xhtml#key-type-parameters
type coseKeyMap struct {
	Kty    int64           `cbor:"1,keyasint"`
	Alg    int64           `cbor:"3,keyasint"`
	Param1 cbor.RawMessage `cbor:"-1,keyasint,omitempty"`
	Param2 []byte          `cbor:"-2,keyasint,omitempty"`
	Param3 []byte          `cbor:"-3,keyasint,omitempty"`
}

// Decode parses a single CBOR-encoded COSE key.
//
// Unlike attestation object decoding, a COSE key is only ever decoded at a
// position where the surrounding structure already guarantees one is
// present, so structural or unsupported-algorithm problems are reported as
// errors rather than a nil result.
func Decode(b []byte) (*Key, error) {
	k, _, err := DecodeFirst(b)
	return k, err
}

// DecodeFirst parses the COSE key at the start of b and additionally returns
// the number of bytes it occupied. Authenticator data embeds the credential
// public key with no length prefix, directly followed by optional extension
// bytes, so the consumed count is the only way to find the boundary.
func DecodeFirst(b []byte) (*Key, int, error) {
	if len(b) == 0 {
		return nil, 0, errors.New("empty COSE key")
	}

	dec := cbor.NewDecoder(bytes.NewReader(b))
	raw := coseKeyMap{}
	if err := dec.Decode(&raw); err != nil {
		return nil, 0, errors.Wrap(err, "unmarshalling COSE key")
	}

	key, err := fromMap(&raw)
	if err != nil {
		return nil, 0, err
	}
	return key, dec.NumBytesRead(), nil
}

func fromMap(raw *coseKeyMap) (*Key, error) {
	alg := Algorithm(raw.Alg)

	switch raw.Kty {
	case iana.KeyTypeEC2:
		switch alg {
		case ES256, ES384, ES512:
		default:
			return nil, fmt.Errorf("unsupported algorithm %s for EC2 key", alg)
		}

		var crv int64
		if err := cbor.Unmarshal(raw.Param1, &crv); err != nil {
			return nil, errors.Wrap(err, "unmarshalling EC2 curve")
		}
		switch crv {
		case iana.EllipticCurveP_256, iana.EllipticCurveP_384, iana.EllipticCurveP_521:
		default:
			return nil, fmt.Errorf("unsupported curve id %d for EC2 key", crv)
		}
		if len(raw.Param2) == 0 {
			return nil, errors.New("no x coordinate for EC2 key")
		}
		if len(raw.Param3) == 0 {
			return nil, errors.New("no y coordinate for EC2 key")
		}

		return &Key{
			Type:      KeyTypeEC2,
			Algorithm: alg,
			X:         raw.Param2,
			Y:         raw.Param3,
		}, nil

	case iana.KeyTypeRSA:
		switch alg {
		case RS256, PS256:
		default:
			return nil, fmt.Errorf("unsupported algorithm %s for RSA key", alg)
		}

		var n []byte
		if err := cbor.Unmarshal(raw.Param1, &n); err != nil {
			return nil, errors.Wrap(err, "unmarshalling RSA modulus")
		}
		if len(n) == 0 {
			return nil, errors.New("no modulus for RSA key")
		}
		if len(raw.Param2) == 0 {
			return nil, errors.New("no public exponent for RSA key")
		}

		return &Key{
			Type:      KeyTypeRSA,
			Algorithm: alg,
			N:         n,
			E:         raw.Param2,
		}, nil

	default:
		return nil, fmt.Errorf("unsupported key type: %d", raw.Kty)
	}
}
