// Package policy loads verification policy files for the credverify CLI.
//
// A policy restricts which COSE algorithms are accepted and names the
// trusted root bundles used for attestation chain validation:
//
//	allowed_algorithms:
//	  - ES256
//	  - EdDSA
//	trusted_roots:
//	  - /etc/credverify/roots.pem
package policy

import (
	"fmt"
	"os"

	gocose "github.com/veraison/go-cose"
	"gopkg.in/yaml.v3"

	"github.com/passkey-tools/credverify/pkg/cose"
)

// Policy is a declarative verification policy.
type Policy struct {
	// AllowedAlgorithms restricts which COSE algorithms the CLI accepts.
	// Empty means every algorithm the library supports.
	AllowedAlgorithms []string `yaml:"allowed_algorithms"`

	// TrustedRoots lists PEM/DER certificate bundle paths used for
	// attestation chain validation.
	TrustedRoots []string `yaml:"trusted_roots"`
}

// Load reads and validates a policy file.
func Load(path string) (*Policy, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read policy: %w", err)
	}

	var p Policy
	if err := yaml.Unmarshal(data, &p); err != nil {
		return nil, fmt.Errorf("failed to parse policy: %w", err)
	}

	// Reject unknown algorithm names at load time, not at first use.
	for _, name := range p.AllowedAlgorithms {
		if _, err := cose.AlgorithmByName(name); err != nil {
			return nil, fmt.Errorf("invalid policy: %w", err)
		}
	}

	return &p, nil
}

// AlgorithmAllowed reports whether the policy permits alg.
func (p *Policy) AlgorithmAllowed(alg gocose.Algorithm) bool {
	if p == nil || len(p.AllowedAlgorithms) == 0 {
		return true
	}
	for _, name := range p.AllowedAlgorithms {
		if allowed, err := cose.AlgorithmByName(name); err == nil && allowed == alg {
			return true
		}
	}
	return false
}
