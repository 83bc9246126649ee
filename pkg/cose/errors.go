package cose

import "errors"

// Capability errors. The library does not recognize the requested
// algorithm, curve, or key shape. These indicate a configuration gap on
// the caller's side, not a forged input.
var (
	// ErrUnsupportedAlgorithm is returned when an algorithm identifier is
	// outside the set this package implements, or does not match the key
	// it was paired with.
	ErrUnsupportedAlgorithm = errors.New("unsupported algorithm")

	// ErrUnsupportedCurve is returned for EC2 curve identifiers outside
	// {P-256, P-384, P-521}.
	ErrUnsupportedCurve = errors.New("unsupported EC2 curve")

	// ErrUnsupportedKey is returned for key shapes this package cannot
	// decode into a canonical public key.
	ErrUnsupportedKey = errors.New("unsupported public key")
)

// ErrInvalidSignature is returned when a cryptographic check itself
// fails. This is an expected outcome when facing forged or corrupted
// input and is deliberately distinct from the capability errors above so
// callers can treat repeated failures as potential attacks rather than
// configuration problems.
var ErrInvalidSignature = errors.New("invalid signature")
