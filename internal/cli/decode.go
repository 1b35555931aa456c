package cli

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/nyxtape/vidcodec/internal/codec"
	codecerrors "github.com/nyxtape/vidcodec/internal/errors"

	"github.com/spf13/cobra"
)

func init() {
	decodeCmd.SilenceErrors = true
	decodeCmd.SilenceUsage = true
}

var decodeCmd = &cobra.Command{
	Use:   "decode",
	Short: "Decode a directory of codec frames back into a file",
	Long: `Decode reads the .rgb frames produced by encode (or by a paired
demuxer reproducing them bit-for-bit) back into their original bytes,
running fountain recovery over any corrupted or missing frames.

Examples:
  # Decode frames back to a file
  videocodec decode -i frames/ -o video.bin

  # Decode an encrypted stream
  videocodec decode -i frames/ -o secret.txt -p "mypassword"`,
	RunE: runDecode,
}

var (
	decInput         string
	decOutput        string
	decPassword      string
	decPasswordStdin bool
	decQuiet         bool
)

func init() {
	rootCmd.AddCommand(decodeCmd)

	decodeCmd.Flags().StringVarP(&decInput, "input", "i", "", "Input directory of .rgb frames")
	decodeCmd.Flags().StringVarP(&decOutput, "output", "o", "", "Output file path")
	decodeCmd.Flags().StringVarP(&decPassword, "password", "p", "", "Decryption password")
	decodeCmd.Flags().BoolVarP(&decPasswordStdin, "password-stdin", "P", false, "Read password from stdin")
	decodeCmd.Flags().BoolVarP(&decQuiet, "quiet", "q", false, "Suppress progress output")

	_ = decodeCmd.MarkFlagRequired("input")
	_ = decodeCmd.MarkFlagRequired("output")
}

func runDecode(cmd *cobra.Command, args []string) error {
	source, err := NewDirSource(decInput)
	if err != nil {
		return err
	}

	password := decPassword
	if decPasswordStdin {
		password, err = ReadPasswordFromStdin()
		if err != nil {
			return err
		}
	}

	reporter := NewReporter(decQuiet)
	globalReporter = reporter
	reporter.SetStatus("decoding")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	reporter.BindCancel(cancel)

	if !decQuiet {
		fmt.Fprintf(os.Stderr, "Decoding %s to %s\n", decInput, decOutput)
	}

	source.reporter = reporter
	out, err := codec.New().Decode(ctx, source, codec.DecodeOptions{Password: password})

	if errors.Is(err, codecerrors.ErrPasswordRequired) && password == "" {
		password, err = ReadPasswordInteractive(false)
		if err != nil {
			reporter.Finish()
			return fmt.Errorf("password input: %w", err)
		}
		source, err = NewDirSource(decInput)
		if err != nil {
			reporter.Finish()
			return err
		}
		source.reporter = reporter
		out, err = codec.New().Decode(ctx, source, codec.DecodeOptions{Password: password})
	}
	reporter.Finish()

	if err != nil {
		reporter.PrintError("%v", err)
		return err
	}

	if err := os.WriteFile(decOutput, out.Bytes, 0o644); err != nil {
		return fmt.Errorf("writing output: %w", err)
	}

	reporter.PrintSuccess("Decoded %s (%d bytes) to %s", out.Name, len(out.Bytes), decOutput)
	return nil
}
