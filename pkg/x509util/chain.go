// Package x509util provides certificate chain validation and loading
// helpers for WebAuthn attestation trust paths (x5c).
package x509util

import (
	"crypto/x509"
	"errors"
	"fmt"
)

// ErrInvalidCertChain is returned when an x5c chain cannot be parsed or
// does not sign up to a trusted root.
var ErrInvalidCertChain = errors.New("invalid certificate chain")

// ValidateChain checks that an x5c certificate chain signs up to one of
// the trusted roots. x5c is ordered leaf first, followed by zero or more
// intermediates, each certificate signed by the next one in the
// sequence; the last element must be signed by one of trustedRoots.
//
// An empty trustedRoots set means the caller opted out of chain
// validation and always yields success. This is a signature-chaining
// check only: expiry, revocation, basic constraints and name constraints
// are deliberately not evaluated.
func ValidateChain(x5c [][]byte, trustedRoots []*x509.Certificate) error {
	if len(trustedRoots) == 0 {
		return nil
	}
	if len(x5c) == 0 {
		return fmt.Errorf("%w: x5c was empty", ErrInvalidCertChain)
	}

	chain := make([]*x509.Certificate, len(x5c))
	for i, der := range x5c {
		cert, err := x509.ParseCertificate(der)
		if err != nil {
			if i == 0 {
				return fmt.Errorf("%w: failed to parse leaf certificate: %v", ErrInvalidCertChain, err)
			}
			return fmt.Errorf("%w: failed to parse intermediate certificate %d: %v", ErrInvalidCertChain, i-1, err)
		}
		chain[i] = cert
	}

	// Walk the chain pairwise: each certificate must be signed by the
	// next one. A broken link fails immediately, naming the link.
	for i := 0; i+1 < len(chain); i++ {
		child, issuer := chain[i], chain[i+1]
		if err := issuer.CheckSignature(child.SignatureAlgorithm, child.RawTBSCertificate, child.Signature); err != nil {
			return fmt.Errorf("%w: certificate %d is not signed by certificate %d in the chain", ErrInvalidCertChain, i, i+1)
		}
	}

	// The last element must validate against some trusted root; the
	// first root that verifies wins.
	last := chain[len(chain)-1]
	for _, root := range trustedRoots {
		if err := root.CheckSignature(last.SignatureAlgorithm, last.RawTBSCertificate, last.Signature); err == nil {
			return nil
		}
	}
	return fmt.Errorf("%w: could not validate against any trusted root", ErrInvalidCertChain)
}
