package cli

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
)

// Version is set by main.go
var Version = "dev"

// rootCmd is the base command when called without subcommands
var rootCmd = &cobra.Command{
	Use:   "videocodec",
	Short: "Store arbitrary byte streams as fountain-coded video frames",
	Long: `videocodec turns any byte stream into a sequence of fixed-size
RGB video frames and back:
  - Per-frame CRC-32 for corruption detection
  - An LT-style fountain code for redundancy against lost or corrupted frames
  - Optional AES-256-GCM encryption with PBKDF2-HMAC-SHA256 key derivation

Frame-to-container muxing is delegated to an external tool; this binary
reads and writes raw .rgb frame files directly.`,
	Version: Version,
}

// Global reporter for signal handling
var globalReporter *Reporter

// Execute runs the CLI application.
// Returns true if a known subcommand or help/version flag was given and
// handled, false otherwise (the caller then prints usage).
func Execute(version string) bool {
	Version = version
	rootCmd.Version = version

	// Check if we're in CLI mode (have subcommands)
	if len(os.Args) < 2 {
		return false
	}

	// Check if first arg is a known subcommand
	cmd := os.Args[1]
	if cmd != "encode" && cmd != "decode" && cmd != "help" && cmd != "--help" && cmd != "-h" && cmd != "version" && cmd != "--version" && cmd != "-v" {
		return false
	}

	// Set up signal handling for graceful cancellation
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigChan
		if globalReporter != nil {
			globalReporter.Cancel()
			fmt.Fprintln(os.Stderr, "\nCancelling operation...")
		} else {
			os.Exit(1)
		}
	}()

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
	return true
}

func init() {
	// Disable default completion command
	rootCmd.CompletionOptions.DisableDefaultCmd = true
}
