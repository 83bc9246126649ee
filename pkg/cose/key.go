package cose

import (
	"crypto/ed25519"
	"crypto/elliptic"
	"fmt"
	"math/big"

	"github.com/cloudflare/circl/sign/ed448"
	"github.com/fxamacker/cbor/v2"
	gocose "github.com/veraison/go-cose"
)

// DecodedPublicKey holds raw key parameters as produced by a COSE_Key
// decoder, tagged by key type. Byte fields are big-endian unsigned
// integers with no implied sign bit.
type DecodedPublicKey interface {
	isDecodedPublicKey()
}

// EC2PublicKeyData carries the parameters of an elliptic-curve key with
// explicit x/y coordinates.
type EC2PublicKeyData struct {
	Curve Curve
	X     []byte
	Y     []byte
}

// RSAPublicKeyData carries an RSA modulus and public exponent.
type RSAPublicKeyData struct {
	Modulus  []byte
	Exponent []byte
}

// OKPPublicKeyData carries an octet key pair (Ed25519/Ed448) public key.
type OKPPublicKeyData struct {
	Algorithm gocose.Algorithm
	Curve     Curve
	X         []byte
}

func (EC2PublicKeyData) isDecodedPublicKey() {}
func (RSAPublicKeyData) isDecodedPublicKey() {}
func (OKPPublicKeyData) isDecodedPublicKey() {}

// PublicKey is the canonical form of a credential public key, ready for
// signature verification. The set of variants is closed: ECDSAKey,
// RSAKey, Ed25519Key and Ed448Key.
type PublicKey interface {
	isPublicKey()
}

// ECDSAKey is a point on a named curve. Keys produced by DecodePublicKey
// are guaranteed to lie on their declared curve.
type ECDSAKey struct {
	Curve elliptic.Curve
	X     *big.Int
	Y     *big.Int
}

// RSAKey is an RSA public key.
type RSAKey struct {
	N *big.Int
	E int
}

// Ed25519Key is a raw 32-byte Ed25519 public key.
type Ed25519Key struct {
	Raw ed25519.PublicKey
}

// Ed448Key is a raw 57-byte Ed448 public key.
type Ed448Key struct {
	Raw ed448.PublicKey
}

func (ECDSAKey) isPublicKey()   {}
func (RSAKey) isPublicKey()     {}
func (Ed25519Key) isPublicKey() {}
func (Ed448Key) isPublicKey()   {}

// ParsePublicKey decodes a CBOR-encoded COSE_Key map (RFC 9052 §7) into
// its tagged raw form. Integer labels follow the IANA COSE Key Common
// Parameters registry; label -1 is the curve for EC2/OKP keys and the
// modulus for RSA keys, which is why decoding happens per key type.
func ParsePublicKey(data []byte) (DecodedPublicKey, error) {
	var base struct {
		KeyType   int64 `cbor:"1,keyasint"`
		Algorithm int64 `cbor:"3,keyasint,omitempty"`
	}
	if err := cbor.Unmarshal(data, &base); err != nil {
		return nil, fmt.Errorf("failed to parse COSE key: %w", err)
	}

	switch KeyType(base.KeyType) {
	case KeyTypeEC2:
		var k struct {
			Curve int64  `cbor:"-1,keyasint"`
			X     []byte `cbor:"-2,keyasint"`
			Y     []byte `cbor:"-3,keyasint"`
		}
		if err := cbor.Unmarshal(data, &k); err != nil {
			return nil, fmt.Errorf("failed to parse EC2 key parameters: %w", err)
		}
		return EC2PublicKeyData{Curve: Curve(k.Curve), X: k.X, Y: k.Y}, nil

	case KeyTypeRSA:
		var k struct {
			Modulus  []byte `cbor:"-1,keyasint"`
			Exponent []byte `cbor:"-2,keyasint"`
		}
		if err := cbor.Unmarshal(data, &k); err != nil {
			return nil, fmt.Errorf("failed to parse RSA key parameters: %w", err)
		}
		return RSAPublicKeyData{Modulus: k.Modulus, Exponent: k.Exponent}, nil

	case KeyTypeOKP:
		var k struct {
			Curve int64  `cbor:"-1,keyasint"`
			X     []byte `cbor:"-2,keyasint"`
		}
		if err := cbor.Unmarshal(data, &k); err != nil {
			return nil, fmt.Errorf("failed to parse OKP key parameters: %w", err)
		}
		return OKPPublicKeyData{
			Algorithm: gocose.Algorithm(base.Algorithm),
			Curve:     Curve(k.Curve),
			X:         k.X,
		}, nil

	default:
		return nil, fmt.Errorf("%w: COSE key type %d", ErrUnsupportedKey, base.KeyType)
	}
}

// bigEndianUint converts a big-endian unsigned byte buffer to an
// integer. Leading zero bytes are legal and carry no sign information.
func bigEndianUint(b []byte) *big.Int {
	return new(big.Int).SetBytes(b)
}

// DecodePublicKey converts raw COSE key parameters into a canonical
// PublicKey. EC2 points are checked to lie on their declared curve;
// an off-curve point is rejected to close the invalid-curve attack
// surface. Error messages never include key material.
func DecodePublicKey(raw DecodedPublicKey) (PublicKey, error) {
	switch k := raw.(type) {
	case EC2PublicKeyData:
		curve, err := ECDSACurve(k.Curve)
		if err != nil {
			return nil, err
		}
		x, y := bigEndianUint(k.X), bigEndianUint(k.Y)
		if !curve.IsOnCurve(x, y) {
			return nil, fmt.Errorf("%w: EC2 point is not on curve %s", ErrUnsupportedKey, curve.Params().Name)
		}
		return ECDSAKey{Curve: curve, X: x, Y: y}, nil

	case RSAPublicKeyData:
		n, e := bigEndianUint(k.Modulus), bigEndianUint(k.Exponent)
		if n.Sign() <= 0 || e.Sign() <= 0 {
			return nil, fmt.Errorf("%w: RSA modulus and exponent must be positive", ErrUnsupportedKey)
		}
		if e.BitLen() > 31 {
			return nil, fmt.Errorf("%w: RSA public exponent is too large", ErrUnsupportedKey)
		}
		return RSAKey{N: n, E: int(e.Int64())}, nil

	case OKPPublicKeyData:
		if k.Algorithm != AlgEdDSA {
			return nil, fmt.Errorf("%w: OKP algorithm %d is not EdDSA", ErrUnsupportedKey, k.Algorithm)
		}
		switch k.Curve {
		case CurveEd25519:
			if len(k.X) != ed25519.PublicKeySize {
				return nil, fmt.Errorf("%w: Ed25519 public key must be %d bytes, got %d", ErrUnsupportedKey, ed25519.PublicKeySize, len(k.X))
			}
			return Ed25519Key{Raw: ed25519.PublicKey(append([]byte(nil), k.X...))}, nil
		case CurveEd448:
			if len(k.X) != ed448.PublicKeySize {
				return nil, fmt.Errorf("%w: Ed448 public key must be %d bytes, got %d", ErrUnsupportedKey, ed448.PublicKeySize, len(k.X))
			}
			return Ed448Key{Raw: ed448.PublicKey(append([]byte(nil), k.X...))}, nil
		default:
			return nil, fmt.Errorf("%w: OKP curve %d", ErrUnsupportedKey, k.Curve)
		}

	default:
		return nil, fmt.Errorf("%w: key data %T", ErrUnsupportedKey, raw)
	}
}
