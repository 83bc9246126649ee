package x509util

import (
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/rand"
	"crypto/x509"
	"crypto/x509/pkix"
	"errors"
	"math/big"
	"strings"
	"testing"
	"time"
)

// =============================================================================
// Test Helpers
// =============================================================================

// createTestCertificate creates a test certificate signed by the issuer.
// If issuer is nil, the certificate is self-signed.
func createTestCertificate(t *testing.T, template *x509.Certificate, issuer *x509.Certificate, issuerKey *ecdsa.PrivateKey) (*x509.Certificate, []byte, *ecdsa.PrivateKey) {
	t.Helper()

	key, err := ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
	if err != nil {
		t.Fatalf("failed to generate key: %v", err)
	}

	if template.SerialNumber == nil {
		template.SerialNumber = big.NewInt(time.Now().UnixNano())
	}

	signingCert := template
	signingKey := key
	if issuer != nil {
		signingCert = issuer
		signingKey = issuerKey
	}

	der, err := x509.CreateCertificate(rand.Reader, template, signingCert, &key.PublicKey, signingKey)
	if err != nil {
		t.Fatalf("failed to create certificate: %v", err)
	}

	cert, err := x509.ParseCertificate(der)
	if err != nil {
		t.Fatalf("failed to parse certificate: %v", err)
	}

	return cert, der, key
}

// newTestChain builds a root -> intermediate -> leaf chain and returns
// the root certificate plus the leaf-first x5c DER sequence.
func newTestChain(t *testing.T) (*x509.Certificate, [][]byte) {
	t.Helper()

	rootTemplate := &x509.Certificate{
		Subject:               pkix.Name{CommonName: "Test Attestation Root"},
		NotBefore:             time.Now().Add(-time.Hour),
		NotAfter:              time.Now().Add(time.Hour),
		IsCA:                  true,
		BasicConstraintsValid: true,
	}
	root, _, rootKey := createTestCertificate(t, rootTemplate, nil, nil)

	interTemplate := &x509.Certificate{
		Subject:               pkix.Name{CommonName: "Test Attestation Intermediate"},
		NotBefore:             time.Now().Add(-time.Hour),
		NotAfter:              time.Now().Add(time.Hour),
		IsCA:                  true,
		BasicConstraintsValid: true,
	}
	inter, interDER, interKey := createTestCertificate(t, interTemplate, root, rootKey)

	leafTemplate := &x509.Certificate{
		Subject:   pkix.Name{CommonName: "Test Authenticator"},
		NotBefore: time.Now().Add(-time.Hour),
		NotAfter:  time.Now().Add(time.Hour),
	}
	_, leafDER, _ := createTestCertificate(t, leafTemplate, inter, interKey)

	return root, [][]byte{leafDER, interDER}
}

// =============================================================================
// ValidateChain Tests
// =============================================================================

func TestValidateChain_EmptyRootsSkipsValidation(t *testing.T) {
	// An empty trusted root set is the explicit opt-out: even garbage
	// x5c content succeeds without being parsed.
	if err := ValidateChain([][]byte{[]byte("not a certificate")}, nil); err != nil {
		t.Errorf("ValidateChain() error = %v, want nil", err)
	}
	if err := ValidateChain(nil, nil); err != nil {
		t.Errorf("ValidateChain() error = %v, want nil", err)
	}
}

func TestValidateChain_EmptyX5C(t *testing.T) {
	root, _ := newTestChain(t)

	err := ValidateChain(nil, []*x509.Certificate{root})
	if !errors.Is(err, ErrInvalidCertChain) {
		t.Fatalf("ValidateChain() error = %v, want ErrInvalidCertChain", err)
	}
	if !strings.Contains(err.Error(), "x5c was empty") {
		t.Errorf("error %q does not mention empty x5c", err)
	}
}

func TestValidateChain_LeafOnly(t *testing.T) {
	rootTemplate := &x509.Certificate{
		Subject:               pkix.Name{CommonName: "Direct Root"},
		NotBefore:             time.Now().Add(-time.Hour),
		NotAfter:              time.Now().Add(time.Hour),
		IsCA:                  true,
		BasicConstraintsValid: true,
	}
	root, _, rootKey := createTestCertificate(t, rootTemplate, nil, nil)

	leafTemplate := &x509.Certificate{
		Subject:   pkix.Name{CommonName: "Direct Leaf"},
		NotBefore: time.Now().Add(-time.Hour),
		NotAfter:  time.Now().Add(time.Hour),
	}
	_, leafDER, _ := createTestCertificate(t, leafTemplate, root, rootKey)

	if err := ValidateChain([][]byte{leafDER}, []*x509.Certificate{root}); err != nil {
		t.Errorf("ValidateChain() error = %v", err)
	}
}

func TestValidateChain_ThreeCertificates(t *testing.T) {
	root, x5c := newTestChain(t)

	if err := ValidateChain(x5c, []*x509.Certificate{root}); err != nil {
		t.Errorf("ValidateChain() error = %v", err)
	}
}

func TestValidateChain_RootIncludedInX5C(t *testing.T) {
	// Some authenticators ship the self-signed root as the last x5c
	// element; the walk then ends on the root, which verifies against
	// its own trusted copy.
	root, x5c := newTestChain(t)
	x5c = append(x5c, root.Raw)

	if err := ValidateChain(x5c, []*x509.Certificate{root}); err != nil {
		t.Errorf("ValidateChain() error = %v", err)
	}
}

func TestValidateChain_MultipleRootsFirstMatchWins(t *testing.T) {
	root, x5c := newTestChain(t)
	unrelated, _ := newTestChain(t)

	roots := []*x509.Certificate{unrelated, root}
	if err := ValidateChain(x5c, roots); err != nil {
		t.Errorf("ValidateChain() error = %v", err)
	}
}

func TestValidateChain_UntrustedRoot(t *testing.T) {
	_, x5c := newTestChain(t)
	unrelated, _ := newTestChain(t)

	err := ValidateChain(x5c, []*x509.Certificate{unrelated})
	if !errors.Is(err, ErrInvalidCertChain) {
		t.Fatalf("ValidateChain() error = %v, want ErrInvalidCertChain", err)
	}
	if !strings.Contains(err.Error(), "could not validate against any trusted root") {
		t.Errorf("error %q does not mention trusted roots", err)
	}
}

func TestValidateChain_CorruptedIntermediate(t *testing.T) {
	root, x5c := newTestChain(t)

	// The signature lives at the tail of the DER encoding; corrupting a
	// byte there breaks either parsing or the root verification step.
	corrupted := append([]byte(nil), x5c[1]...)
	corrupted[len(corrupted)-10] ^= 0xff
	x5c[1] = corrupted

	err := ValidateChain(x5c, []*x509.Certificate{root})
	if !errors.Is(err, ErrInvalidCertChain) {
		t.Errorf("ValidateChain() error = %v, want ErrInvalidCertChain", err)
	}
}

func TestValidateChain_BrokenLink(t *testing.T) {
	// Leaf signed by one intermediate, but a different intermediate
	// presented in the chain.
	root, x5c := newTestChain(t)
	_, otherX5C := newTestChain(t)
	x5c[1] = otherX5C[1]

	err := ValidateChain(x5c, []*x509.Certificate{root})
	if !errors.Is(err, ErrInvalidCertChain) {
		t.Fatalf("ValidateChain() error = %v, want ErrInvalidCertChain", err)
	}
	if !strings.Contains(err.Error(), "certificate 0 is not signed by certificate 1") {
		t.Errorf("error %q does not identify the failing link", err)
	}
}

func TestValidateChain_UnparsableLeaf(t *testing.T) {
	root, _ := newTestChain(t)

	err := ValidateChain([][]byte{[]byte("junk")}, []*x509.Certificate{root})
	if !errors.Is(err, ErrInvalidCertChain) {
		t.Fatalf("ValidateChain() error = %v, want ErrInvalidCertChain", err)
	}
	if !strings.Contains(err.Error(), "leaf certificate") {
		t.Errorf("error %q does not name the leaf certificate", err)
	}
}

func TestValidateChain_UnparsableIntermediate(t *testing.T) {
	root, x5c := newTestChain(t)
	x5c[1] = []byte("junk")

	err := ValidateChain(x5c, []*x509.Certificate{root})
	if !errors.Is(err, ErrInvalidCertChain) {
		t.Fatalf("ValidateChain() error = %v, want ErrInvalidCertChain", err)
	}
	if !strings.Contains(err.Error(), "intermediate certificate 0") {
		t.Errorf("error %q does not name the intermediate index", err)
	}
}
