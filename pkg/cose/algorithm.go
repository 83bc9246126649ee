// Package cose implements decoding and signature verification for COSE
// credential public keys as delivered by WebAuthn authenticators.
//
// The package covers three concerns: resolving COSE algorithm and curve
// identifiers to concrete hash functions and curves, decoding raw COSE
// key parameters into canonical public keys, and verifying signatures
// against those keys. All functions are pure and safe for concurrent use.
package cose

import (
	"crypto"
	"crypto/elliptic"
	"fmt"

	// Register the hash functions the resolver tables hand out.
	_ "crypto/sha256"
	_ "crypto/sha512"

	gocose "github.com/veraison/go-cose"
)

// COSE Algorithm IDs (IANA COSE Algorithms Registry).
const (
	AlgES256 gocose.Algorithm = -7  // ECDSA w/ SHA-256
	AlgES384 gocose.Algorithm = -35 // ECDSA w/ SHA-384
	AlgES512 gocose.Algorithm = -36 // ECDSA w/ SHA-512
	AlgEdDSA gocose.Algorithm = -8  // EdDSA (Ed25519/Ed448)
	AlgPS256 gocose.Algorithm = -37 // RSASSA-PSS w/ SHA-256
	AlgPS384 gocose.Algorithm = -38 // RSASSA-PSS w/ SHA-384
	AlgPS512 gocose.Algorithm = -39 // RSASSA-PSS w/ SHA-512

	AlgRS256 gocose.Algorithm = -257 // RSASSA-PKCS1-v1_5 w/ SHA-256
	AlgRS384 gocose.Algorithm = -258 // RSASSA-PKCS1-v1_5 w/ SHA-384
	AlgRS512 gocose.Algorithm = -259 // RSASSA-PKCS1-v1_5 w/ SHA-512
)

// KeyType is the COSE key type (kty, label 1).
type KeyType int64

// COSE key types (IANA COSE Key Types Registry).
const (
	KeyTypeOKP KeyType = 1 // Octet Key Pair (Ed25519/Ed448)
	KeyTypeEC2 KeyType = 2 // Elliptic curve with x/y coordinates
	KeyTypeRSA KeyType = 3
)

// Curve is the COSE elliptic curve identifier (crv, label -1).
type Curve int64

// COSE curves (IANA COSE Elliptic Curves Registry).
const (
	CurveP256    Curve = 1
	CurveP384    Curve = 2
	CurveP521    Curve = 3
	CurveX25519  Curve = 4
	CurveX448    Curve = 5
	CurveEd25519 Curve = 6
	CurveEd448   Curve = 7
)

// Static resolver tables. Every supported algorithm appears in exactly
// one family table; unmapped identifiers are hard errors, never a
// fallback. Completeness is validated once at startup, see init below.
var (
	ecdsaHashes = map[gocose.Algorithm]crypto.Hash{
		AlgES256: crypto.SHA256,
		AlgES384: crypto.SHA384,
		AlgES512: crypto.SHA512,
	}

	rsaPKCS1Hashes = map[gocose.Algorithm]crypto.Hash{
		AlgRS256: crypto.SHA256,
		AlgRS384: crypto.SHA384,
		AlgRS512: crypto.SHA512,
	}

	rsaPSSHashes = map[gocose.Algorithm]crypto.Hash{
		AlgPS256: crypto.SHA256,
		AlgPS384: crypto.SHA384,
		AlgPS512: crypto.SHA512,
	}

	ecdsaCurves = map[Curve]elliptic.Curve{
		CurveP256: elliptic.P256(),
		CurveP384: elliptic.P384(),
		CurveP521: elliptic.P521(),
	}

	algorithmNames = map[gocose.Algorithm]string{
		AlgES256: "ES256",
		AlgES384: "ES384",
		AlgES512: "ES512",
		AlgEdDSA: "EdDSA",
		AlgPS256: "PS256",
		AlgPS384: "PS384",
		AlgPS512: "PS512",
		AlgRS256: "RS256",
		AlgRS384: "RS384",
		AlgRS512: "RS512",
	}
)

func init() {
	// Each named algorithm must resolve through exactly one family table.
	// A gap or an overlap here is a programming error, so panic rather
	// than surface it as a runtime verification failure.
	for alg := range algorithmNames {
		families := 0
		if _, ok := ecdsaHashes[alg]; ok {
			families++
		}
		if _, ok := rsaPKCS1Hashes[alg]; ok {
			families++
		}
		if _, ok := rsaPSSHashes[alg]; ok {
			families++
		}
		if alg == AlgEdDSA {
			families++
		}
		if families != 1 {
			panic(fmt.Sprintf("cose: algorithm %d resolves through %d family tables", alg, families))
		}
	}
}

// SupportedAlgorithms returns the COSE algorithm identifiers this
// package can verify signatures for.
func SupportedAlgorithms() []gocose.Algorithm {
	algs := make([]gocose.Algorithm, 0, len(algorithmNames))
	for alg := range algorithmNames {
		algs = append(algs, alg)
	}
	return algs
}

// AlgorithmName returns the registry name of a COSE algorithm, or an
// error for identifiers outside the supported set.
func AlgorithmName(alg gocose.Algorithm) (string, error) {
	name, ok := algorithmNames[alg]
	if !ok {
		return "", fmt.Errorf("%w: COSE algorithm %d", ErrUnsupportedAlgorithm, alg)
	}
	return name, nil
}

// AlgorithmByName resolves a registry name (e.g. "ES256") to its COSE
// algorithm identifier.
func AlgorithmByName(name string) (gocose.Algorithm, error) {
	for alg, n := range algorithmNames {
		if n == name {
			return alg, nil
		}
	}
	return 0, fmt.Errorf("%w: algorithm name %q", ErrUnsupportedAlgorithm, name)
}

// IsRSAPKCS1 reports whether alg is an RSASSA-PKCS1-v1_5 algorithm.
func IsRSAPKCS1(alg gocose.Algorithm) bool {
	_, ok := rsaPKCS1Hashes[alg]
	return ok
}

// IsRSAPSS reports whether alg is an RSASSA-PSS algorithm.
func IsRSAPSS(alg gocose.Algorithm) bool {
	_, ok := rsaPSSHashes[alg]
	return ok
}

// ECDSAHash resolves an ECDSA algorithm to its hash function.
func ECDSAHash(alg gocose.Algorithm) (crypto.Hash, error) {
	hash, ok := ecdsaHashes[alg]
	if !ok {
		return 0, fmt.Errorf("%w: COSE algorithm %d is not a supported ECDSA algorithm", ErrUnsupportedAlgorithm, alg)
	}
	return hash, nil
}

// RSAPKCS1Hash resolves an RSASSA-PKCS1-v1_5 algorithm to its hash function.
func RSAPKCS1Hash(alg gocose.Algorithm) (crypto.Hash, error) {
	hash, ok := rsaPKCS1Hashes[alg]
	if !ok {
		return 0, fmt.Errorf("%w: COSE algorithm %d is not a supported RSA PKCS#1 v1.5 algorithm", ErrUnsupportedAlgorithm, alg)
	}
	return hash, nil
}

// RSAPSSHash resolves an RSASSA-PSS algorithm to its hash function.
func RSAPSSHash(alg gocose.Algorithm) (crypto.Hash, error) {
	hash, ok := rsaPSSHashes[alg]
	if !ok {
		return 0, fmt.Errorf("%w: COSE algorithm %d is not a supported RSA PSS algorithm", ErrUnsupportedAlgorithm, alg)
	}
	return hash, nil
}

// ECDSACurve resolves a COSE EC2 curve identifier to a named curve.
func ECDSACurve(crv Curve) (elliptic.Curve, error) {
	curve, ok := ecdsaCurves[crv]
	if !ok {
		return nil, fmt.Errorf("%w: COSE curve %d", ErrUnsupportedCurve, crv)
	}
	return curve, nil
}
