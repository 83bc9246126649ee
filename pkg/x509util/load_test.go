package x509util

import (
	"crypto/x509"
	"crypto/x509/pkix"
	"encoding/pem"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func pemEncodeCert(t *testing.T, der []byte) []byte {
	t.Helper()
	return pem.EncodeToMemory(&pem.Block{Type: "CERTIFICATE", Bytes: der})
}

func TestParseCertificates_PEMBundle(t *testing.T) {
	_, x5c := newTestChain(t)

	bundle := append(pemEncodeCert(t, x5c[0]), pemEncodeCert(t, x5c[1])...)
	certs, err := ParseCertificates(bundle)
	if err != nil {
		t.Fatalf("ParseCertificates() error = %v", err)
	}
	if len(certs) != 2 {
		t.Errorf("ParseCertificates() returned %d certificates, want 2", len(certs))
	}
}

func TestParseCertificates_SingleDER(t *testing.T) {
	_, x5c := newTestChain(t)

	certs, err := ParseCertificates(x5c[0])
	if err != nil {
		t.Fatalf("ParseCertificates() error = %v", err)
	}
	if len(certs) != 1 {
		t.Errorf("ParseCertificates() returned %d certificates, want 1", len(certs))
	}
}

func TestParseCertificates_Garbage(t *testing.T) {
	if _, err := ParseCertificates([]byte("not a certificate")); err == nil {
		t.Error("expected error for garbage input")
	}
}

func TestLoadCertificates(t *testing.T) {
	root, _ := newTestChain(t)

	path := filepath.Join(t.TempDir(), "roots.pem")
	if err := os.WriteFile(path, pemEncodeCert(t, root.Raw), 0600); err != nil {
		t.Fatalf("failed to write roots file: %v", err)
	}

	certs, err := LoadCertificates(path)
	if err != nil {
		t.Fatalf("LoadCertificates() error = %v", err)
	}
	if len(certs) != 1 || certs[0].Subject.CommonName != root.Subject.CommonName {
		t.Errorf("unexpected certificates loaded: %v", certs)
	}
}

func TestLoadDER(t *testing.T) {
	template := &x509.Certificate{
		Subject:   pkix.Name{CommonName: "DER Test"},
		NotBefore: time.Now().Add(-time.Hour),
		NotAfter:  time.Now().Add(time.Hour),
	}
	_, der, _ := createTestCertificate(t, template, nil, nil)

	dir := t.TempDir()

	derPath := filepath.Join(dir, "cert.der")
	if err := os.WriteFile(derPath, der, 0600); err != nil {
		t.Fatalf("failed to write DER file: %v", err)
	}
	got, err := LoadDER(derPath)
	if err != nil {
		t.Fatalf("LoadDER(der) error = %v", err)
	}
	if len(got) != len(der) {
		t.Errorf("LoadDER(der) returned %d bytes, want %d", len(got), len(der))
	}

	pemPath := filepath.Join(dir, "cert.pem")
	if err := os.WriteFile(pemPath, pemEncodeCert(t, der), 0600); err != nil {
		t.Fatalf("failed to write PEM file: %v", err)
	}
	got, err = LoadDER(pemPath)
	if err != nil {
		t.Fatalf("LoadDER(pem) error = %v", err)
	}
	if len(got) != len(der) {
		t.Errorf("LoadDER(pem) returned %d bytes, want %d", len(got), len(der))
	}

	keyPath := filepath.Join(dir, "key.pem")
	block := pem.EncodeToMemory(&pem.Block{Type: "EC PRIVATE KEY", Bytes: []byte{0x01}})
	if err := os.WriteFile(keyPath, block, 0600); err != nil {
		t.Fatalf("failed to write key file: %v", err)
	}
	if _, err := LoadDER(keyPath); err == nil {
		t.Error("expected error for non-certificate PEM block")
	}
}
