package cli

// ANSI color codes for terminal output.
const (
	ColorReset  = "\033[0m"
	ColorRed    = "\033[31m"
	ColorGreen  = "\033[32m"
	ColorYellow = "\033[33m"
)

// FormatStatus returns a colored status string.
func FormatStatus(status string) string {
	switch status {
	case "verified", "valid":
		return ColorGreen + status + ColorReset
	case "rejected", "invalid":
		return ColorRed + status + ColorReset
	case "skipped", "unsupported":
		return ColorYellow + status + ColorReset
	default:
		return status
	}
}
