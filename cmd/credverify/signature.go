package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/passkey-tools/credverify/internal/audit"
	"github.com/passkey-tools/credverify/internal/cli"
	"github.com/passkey-tools/credverify/pkg/cose"
)

var signatureCmd = &cobra.Command{
	Use:   "signature <data-file>",
	Short: "Verify a signature over data with a COSE credential key",
	Long: `Verify that a signature was produced over the data file by the
credential public key, using the given COSE algorithm.

The signature is DER-encoded for ECDSA and a raw fixed-length byte
string for RSA and EdDSA. The data file must contain the exact signed
bytes (for WebAuthn: authenticator data concatenated with the client
data hash).

Examples:
  credverify signature signed-data.bin --key credential-key.cbor --alg ES256 --sig sig.bin
  credverify signature signed-data.bin --key key.cbor --alg EdDSA --sig sig.bin --policy policy.yaml`,
	Args:          cobra.ExactArgs(1),
	RunE:          runSignature,
	SilenceUsage:  true,
	SilenceErrors: true,
}

var (
	sigKeyFile string
	sigAlgName string
	sigFile    string
)

func init() {
	flags := signatureCmd.Flags()
	flags.StringVar(&sigKeyFile, "key", "", "COSE key file (CBOR)")
	flags.StringVar(&sigAlgName, "alg", "", "COSE algorithm name (e.g. ES256, RS256, PS256, EdDSA)")
	flags.StringVar(&sigFile, "sig", "", "signature file")

	_ = signatureCmd.MarkFlagRequired("key")
	_ = signatureCmd.MarkFlagRequired("alg")
	_ = signatureCmd.MarkFlagRequired("sig")

	rootCmd.AddCommand(signatureCmd)
}

func runSignature(cmd *cobra.Command, args []string) error {
	dataFile := args[0]

	writer, err := openAuditWriter()
	if err != nil {
		return err
	}
	defer writer.Close()

	pol, err := loadPolicy()
	if err != nil {
		return err
	}

	alg, err := cose.AlgorithmByName(sigAlgName)
	if err != nil {
		return err
	}
	if !pol.AlgorithmAllowed(alg) {
		return fmt.Errorf("algorithm %s is not permitted by the policy", sigAlgName)
	}

	keyData, err := os.ReadFile(sigKeyFile)
	if err != nil {
		return fmt.Errorf("failed to read key file: %w", err)
	}
	raw, err := cose.ParsePublicKey(keyData)
	if err != nil {
		return err
	}
	key, err := cose.DecodePublicKey(raw)
	if err != nil {
		return err
	}

	signature, err := os.ReadFile(sigFile)
	if err != nil {
		return fmt.Errorf("failed to read signature file: %w", err)
	}
	data, err := os.ReadFile(dataFile)
	if err != nil {
		return fmt.Errorf("failed to read data file: %w", err)
	}

	verifyErr := cose.VerifySignature(key, alg, signature, data)

	eventType := audit.EventSignatureVerified
	result := audit.ResultSuccess
	reason := ""
	if verifyErr != nil {
		eventType = audit.EventSignatureRejected
		result = audit.ResultFailure
		reason = verifyErr.Error()
	}
	event := audit.NewEvent(eventType, result).
		WithObject(audit.Object{Type: "signature", Path: dataFile}).
		WithContext(audit.Context{Algorithm: sigAlgName, KeyType: keyTypeName(raw), Reason: reason})
	if auditErr := writer.Write(event); auditErr != nil {
		return auditErr
	}

	switch {
	case verifyErr == nil:
		fmt.Printf("Signature: %s\n", cli.FormatStatus("verified"))
		return nil
	case errors.Is(verifyErr, cose.ErrInvalidSignature):
		fmt.Printf("Signature: %s\n", cli.FormatStatus("rejected"))
		return verifyErr
	default:
		fmt.Printf("Signature: %s\n", cli.FormatStatus("unsupported"))
		return verifyErr
	}
}
