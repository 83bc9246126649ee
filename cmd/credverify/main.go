// Command credverify verifies WebAuthn credential public keys,
// signatures, and attestation certificate chains.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/passkey-tools/credverify/internal/audit"
	"github.com/passkey-tools/credverify/internal/policy"
)

// Build-time variables (injected by GoReleaser)
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

// Global flags
var (
	auditLogPath string
	policyPath   string
)

var rootCmd = &cobra.Command{
	Use:   "credverify",
	Short: "WebAuthn credential verification toolkit",
	Long: `credverify verifies WebAuthn credential material offline:

  key        Decode and inspect a COSE credential public key
  signature  Verify a signature over data with a COSE key
  chain      Validate an attestation certificate chain (x5c)

All commands operate on local files and perform no network I/O.`,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&auditLogPath, "audit-log", "", "append hash-chained audit events to this JSONL file")
	rootCmd.PersistentFlags().StringVar(&policyPath, "policy", "", "verification policy file (YAML)")

	rootCmd.AddCommand(versionCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("credverify %s (commit %s, built %s)\n", version, commit, date)
	},
}

// openAuditWriter returns the configured audit writer, or a NopWriter
// when audit logging is disabled.
func openAuditWriter() (audit.Writer, error) {
	if auditLogPath == "" {
		return audit.NopWriter{}, nil
	}
	return audit.NewFileWriter(auditLogPath)
}

// loadPolicy returns the configured policy, or nil when none was given.
func loadPolicy() (*policy.Policy, error) {
	if policyPath == "" {
		return nil, nil
	}
	return policy.Load(policyPath)
}
