package cose

import (
	"crypto/ecdsa"
	"crypto/ed25519"
	"crypto/rsa"
	"errors"
	"fmt"
	"math/big"

	"github.com/cloudflare/circl/sign/ed448"
	gocose "github.com/veraison/go-cose"
	"golang.org/x/crypto/cryptobyte"
	cryptobyte_asn1 "golang.org/x/crypto/cryptobyte/asn1"
)

// VerifySignature checks signature over data using a canonical public
// key and a COSE algorithm identifier. Dispatch is strictly by key
// variant: pairing a key with an algorithm from a different family fails
// with ErrUnsupportedAlgorithm before any cryptographic work. A failing
// cryptographic check, including a malformed DER signature encoding for
// ECDSA, fails with ErrInvalidSignature.
//
// ECDSA signatures are DER-encoded (r, s) pairs; RSA and EdDSA
// signatures are raw fixed-length byte strings. EdDSA hashes
// internally, so alg is only checked to be EdDSA for Ed25519/Ed448 keys.
func VerifySignature(key PublicKey, alg gocose.Algorithm, signature, data []byte) error {
	switch k := key.(type) {
	case ECDSAKey:
		return verifyECDSA(k, alg, signature, data)
	case RSAKey:
		return verifyRSA(k, alg, signature, data)
	case Ed25519Key:
		if alg != AlgEdDSA {
			return fmt.Errorf("%w: COSE algorithm %d cannot be used with an Ed25519 key", ErrUnsupportedAlgorithm, alg)
		}
		if !ed25519.Verify(k.Raw, data, signature) {
			return fmt.Errorf("%w: Ed25519 verification failed", ErrInvalidSignature)
		}
		return nil
	case Ed448Key:
		if alg != AlgEdDSA {
			return fmt.Errorf("%w: COSE algorithm %d cannot be used with an Ed448 key", ErrUnsupportedAlgorithm, alg)
		}
		if !ed448.Verify(k.Raw, data, signature, "") {
			return fmt.Errorf("%w: Ed448 verification failed", ErrInvalidSignature)
		}
		return nil
	default:
		return fmt.Errorf("%w: public key %T", ErrUnsupportedAlgorithm, key)
	}
}

func verifyECDSA(key ECDSAKey, alg gocose.Algorithm, signature, data []byte) error {
	hash, err := ECDSAHash(alg)
	if err != nil {
		return err
	}
	r, s, err := parseECDSASignature(signature)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidSignature, err)
	}

	h := hash.New()
	h.Write(data)

	pub := &ecdsa.PublicKey{Curve: key.Curve, X: key.X, Y: key.Y}
	if !ecdsa.Verify(pub, h.Sum(nil), r, s) {
		return fmt.Errorf("%w: ECDSA verification failed", ErrInvalidSignature)
	}
	return nil
}

func verifyRSA(key RSAKey, alg gocose.Algorithm, signature, data []byte) error {
	pub := &rsa.PublicKey{N: key.N, E: key.E}

	switch {
	case IsRSAPKCS1(alg):
		hash, err := RSAPKCS1Hash(alg)
		if err != nil {
			return err
		}
		h := hash.New()
		h.Write(data)
		if err := rsa.VerifyPKCS1v15(pub, hash, h.Sum(nil), signature); err != nil {
			return fmt.Errorf("%w: RSA PKCS#1 v1.5 verification failed", ErrInvalidSignature)
		}
		return nil

	case IsRSAPSS(alg):
		hash, err := RSAPSSHash(alg)
		if err != nil {
			return err
		}
		h := hash.New()
		h.Write(data)
		// WebAuthn fixes the PSS salt length to the digest length.
		opts := &rsa.PSSOptions{SaltLength: rsa.PSSSaltLengthEqualsHash, Hash: hash}
		if err := rsa.VerifyPSS(pub, hash, h.Sum(nil), signature, opts); err != nil {
			return fmt.Errorf("%w: RSA PSS verification failed", ErrInvalidSignature)
		}
		return nil

	default:
		return fmt.Errorf("%w: COSE algorithm %d cannot be used with an RSA key", ErrUnsupportedAlgorithm, alg)
	}
}

// parseECDSASignature parses a DER-encoded ECDSA signature into its
// (r, s) pair. Trailing data and non-minimal encodings are rejected.
func parseECDSASignature(sig []byte) (r, s *big.Int, err error) {
	r, s = new(big.Int), new(big.Int)
	input := cryptobyte.String(sig)
	var inner cryptobyte.String
	if !input.ReadASN1(&inner, cryptobyte_asn1.SEQUENCE) ||
		!input.Empty() ||
		!inner.ReadASN1Integer(r) ||
		!inner.ReadASN1Integer(s) ||
		!inner.Empty() {
		return nil, nil, errors.New("malformed DER signature encoding")
	}
	return r, s, nil
}
