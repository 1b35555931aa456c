package cli

import (
	"context"
	"fmt"
	"mime"
	"os"
	"path/filepath"

	"github.com/nyxtape/vidcodec/internal/codec"

	"github.com/spf13/cobra"
)

func init() {
	encodeCmd.SilenceErrors = true
	encodeCmd.SilenceUsage = true
}

var encodeCmd = &cobra.Command{
	Use:   "encode",
	Short: "Encode a file into a directory of codec frames",
	Long: `Encode reads a file, runs it through the fountain-coded packet
pipeline, and writes each resulting frame as a raw FRAME_BYTES .rgb file
into an output directory. The directory stands in for an external video
muxer, which this tool does not implement.

Examples:
  # Encode a file
  videocodec encode -i video.bin -o frames/

  # Encode with password protection
  videocodec encode -i secret.txt -o frames/ -p "mypassword"

  # Read password from stdin (for scripts)
  echo "mypassword" | videocodec encode -i secret.txt -o frames/ -P`,
	RunE: runEncode,
}

var (
	encInput         string
	encOutput        string
	encPassword      string
	encPasswordStdin bool
	encRatio         float64
	encQuiet         bool
)

func init() {
	rootCmd.AddCommand(encodeCmd)

	encodeCmd.Flags().StringVarP(&encInput, "input", "i", "", "Input file to encode")
	encodeCmd.Flags().StringVarP(&encOutput, "output", "o", "", "Output directory for .rgb frames")
	encodeCmd.Flags().StringVarP(&encPassword, "password", "p", "", "Encryption password")
	encodeCmd.Flags().BoolVarP(&encPasswordStdin, "password-stdin", "P", false, "Read password from stdin")
	encodeCmd.Flags().Float64Var(&encRatio, "redundancy-ratio", 0, "Repair packet ratio (default 0.3)")
	encodeCmd.Flags().BoolVarP(&encQuiet, "quiet", "q", false, "Suppress progress output")

	_ = encodeCmd.MarkFlagRequired("input")
	_ = encodeCmd.MarkFlagRequired("output")
}

func runEncode(cmd *cobra.Command, args []string) error {
	data, err := os.ReadFile(encInput)
	if err != nil {
		return fmt.Errorf("reading input: %w", err)
	}

	password := encPassword
	if encPasswordStdin {
		password, err = ReadPasswordFromStdin()
		if err != nil {
			return err
		}
	}

	sink, err := NewDirSink(encOutput)
	if err != nil {
		return err
	}

	reporter := NewReporter(encQuiet)
	globalReporter = reporter
	reporter.SetStatus("encoding")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	reporter.BindCancel(cancel)

	mimeType := mime.TypeByExtension(filepath.Ext(encInput))
	if mimeType == "" {
		mimeType = "application/octet-stream"
	}

	input := codec.Input{
		Name:  filepath.Base(encInput),
		Bytes: data,
		MIME:  mimeType,
	}
	opts := codec.EncodeOptions{
		Password:        password,
		RedundancyRatio: encRatio,
	}

	if !encQuiet {
		fmt.Fprintf(os.Stderr, "Encoding %s to %s\n", encInput, encOutput)
	}

	sink.reporter = reporter
	err = codec.New().Encode(ctx, input, opts, sink)
	reporter.Finish()
	if err != nil {
		reporter.PrintError("%v", err)
		return err
	}

	reporter.PrintSuccess("Encoded %s into %d frame(s) in %s", encInput, sink.index, encOutput)
	return nil
}
