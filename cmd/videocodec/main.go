// videocodec stores arbitrary byte streams as a sequence of fixed-size
// RGB video frames, with CRC-32 corruption detection, LT-style fountain
// redundancy against lost or corrupted frames, and optional AES-256-GCM
// encryption.
//
// Frame-to-container muxing is an external collaborator's responsibility;
// this binary reads and writes raw .rgb frame files directly.

package main

import (
	"fmt"
	"os"

	"github.com/nyxtape/vidcodec/internal/cli"
)

const version = "v0.1.0"

func main() {
	if !cli.Execute(version) {
		fmt.Fprintf(os.Stderr, "videocodec %s\n", version)
		fmt.Fprintln(os.Stderr, "")
		fmt.Fprintln(os.Stderr, "Usage: videocodec <command> [options]")
		fmt.Fprintln(os.Stderr, "")
		fmt.Fprintln(os.Stderr, "Commands:")
		fmt.Fprintln(os.Stderr, "  encode    Encode a file into a directory of codec frames")
		fmt.Fprintln(os.Stderr, "  decode    Decode a directory of codec frames back into a file")
		fmt.Fprintln(os.Stderr, "")
		fmt.Fprintln(os.Stderr, "Run 'videocodec <command> --help' for more information.")
		os.Exit(1)
	}
}
