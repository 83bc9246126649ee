package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/passkey-tools/credverify/internal/audit"
	"github.com/passkey-tools/credverify/pkg/cose"
)

var keyCmd = &cobra.Command{
	Use:   "key <cose-key-file>",
	Short: "Decode and inspect a COSE credential public key",
	Long: `Decode a CBOR-encoded COSE_Key and print its canonical form.

The file must contain the raw CBOR bytes of the credential public key as
delivered by the authenticator.

Examples:
  credverify key credential-key.cbor
  credverify key credential-key.cbor --audit-log audit.jsonl`,
	Args:          cobra.ExactArgs(1),
	RunE:          runKey,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.AddCommand(keyCmd)
}

func runKey(cmd *cobra.Command, args []string) error {
	keyFile := args[0]

	writer, err := openAuditWriter()
	if err != nil {
		return err
	}
	defer writer.Close()

	data, err := os.ReadFile(keyFile)
	if err != nil {
		return fmt.Errorf("failed to read key file: %w", err)
	}

	raw, err := cose.ParsePublicKey(data)
	var key cose.PublicKey
	if err == nil {
		key, err = cose.DecodePublicKey(raw)
	}

	result := audit.ResultSuccess
	reason := ""
	if err != nil {
		result = audit.ResultFailure
		reason = err.Error()
	}
	event := audit.NewEvent(audit.EventKeyDecoded, result).
		WithObject(audit.Object{Type: "cose-key", Path: keyFile}).
		WithContext(audit.Context{KeyType: keyTypeName(raw), Reason: reason})
	if auditErr := writer.Write(event); auditErr != nil {
		return auditErr
	}
	if err != nil {
		return err
	}

	describeKey(raw, key)
	return nil
}

// keyTypeName returns a short label for the decoded key shape.
func keyTypeName(raw cose.DecodedPublicKey) string {
	switch raw.(type) {
	case cose.EC2PublicKeyData:
		return "EC2"
	case cose.RSAPublicKeyData:
		return "RSA"
	case cose.OKPPublicKeyData:
		return "OKP"
	default:
		return ""
	}
}

func describeKey(raw cose.DecodedPublicKey, key cose.PublicKey) {
	switch k := key.(type) {
	case cose.ECDSAKey:
		fmt.Printf("Key type:  EC2\n")
		fmt.Printf("Curve:     %s\n", k.Curve.Params().Name)
	case cose.RSAKey:
		fmt.Printf("Key type:  RSA\n")
		fmt.Printf("Modulus:   %d bits\n", k.N.BitLen())
		fmt.Printf("Exponent:  %d\n", k.E)
	case cose.Ed25519Key:
		fmt.Printf("Key type:  OKP\n")
		fmt.Printf("Curve:     Ed25519\n")
	case cose.Ed448Key:
		fmt.Printf("Key type:  OKP\n")
		fmt.Printf("Curve:     Ed448\n")
	}
	if okp, ok := raw.(cose.OKPPublicKeyData); ok {
		if name, err := cose.AlgorithmName(okp.Algorithm); err == nil {
			fmt.Printf("Algorithm: %s\n", name)
		}
	}
}
