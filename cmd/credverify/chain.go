package main

import (
	"crypto/x509"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/passkey-tools/credverify/internal/audit"
	"github.com/passkey-tools/credverify/internal/cli"
	"github.com/passkey-tools/credverify/pkg/x509util"
)

var chainCmd = &cobra.Command{
	Use:   "chain <leaf> [intermediate ...]",
	Short: "Validate an attestation certificate chain (x5c)",
	Long: `Validate that an attestation certificate chain signs up to a trusted
root. Certificates are given leaf first, in DER or PEM form, matching
the x5c ordering of a WebAuthn attestation statement.

This is a signature-chaining check only: expiry, revocation and
constraints are not evaluated. Without --roots (or policy trusted_roots)
the check is skipped and the command succeeds.

Examples:
  credverify chain leaf.der intermediate.der --roots vendor-roots.pem
  credverify chain leaf.der --policy policy.yaml
  credverify chain leaf.der`,
	Args:          cobra.MinimumNArgs(1),
	RunE:          runChain,
	SilenceUsage:  true,
	SilenceErrors: true,
}

var chainRootFiles []string

func init() {
	flags := chainCmd.Flags()
	flags.StringArrayVar(&chainRootFiles, "roots", nil, "trusted root bundle (PEM/DER), repeatable")

	rootCmd.AddCommand(chainCmd)
}

func runChain(cmd *cobra.Command, args []string) error {
	writer, err := openAuditWriter()
	if err != nil {
		return err
	}
	defer writer.Close()

	pol, err := loadPolicy()
	if err != nil {
		return err
	}

	x5c := make([][]byte, 0, len(args))
	for _, path := range args {
		der, err := x509util.LoadDER(path)
		if err != nil {
			return fmt.Errorf("failed to read certificate %s: %w", path, err)
		}
		x5c = append(x5c, der)
	}

	rootFiles := chainRootFiles
	if pol != nil {
		rootFiles = append(rootFiles, pol.TrustedRoots...)
	}
	var roots []*x509.Certificate
	for _, path := range rootFiles {
		certs, err := x509util.LoadCertificates(path)
		if err != nil {
			return fmt.Errorf("failed to load trusted roots from %s: %w", path, err)
		}
		roots = append(roots, certs...)
	}

	validateErr := x509util.ValidateChain(x5c, roots)

	eventType := audit.EventChainValidated
	result := audit.ResultSuccess
	reason := ""
	if validateErr != nil {
		eventType = audit.EventChainRejected
		result = audit.ResultFailure
		reason = validateErr.Error()
	}
	event := audit.NewEvent(eventType, result).
		WithObject(audit.Object{Type: "certificate-chain", Path: args[0]}).
		WithContext(audit.Context{ChainLen: len(x5c), Roots: len(roots), Reason: reason})
	if auditErr := writer.Write(event); auditErr != nil {
		return auditErr
	}

	if validateErr != nil {
		fmt.Printf("Chain: %s\n", cli.FormatStatus("rejected"))
		return validateErr
	}
	if len(roots) == 0 {
		fmt.Printf("Chain: %s (no trusted roots configured)\n", cli.FormatStatus("skipped"))
		return nil
	}
	fmt.Printf("Chain: %s\n", cli.FormatStatus("verified"))
	return nil
}
