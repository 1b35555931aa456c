package cli

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestReporter(t *testing.T) {
	t.Run("NewReporter", func(t *testing.T) {
		r := NewReporter(false)
		if r == nil {
			t.Fatal("NewReporter returned nil")
		}
		if r.quiet {
			t.Error("quiet should be false")
		}

		r = NewReporter(true)
		if !r.quiet {
			t.Error("quiet should be true")
		}
	})

	t.Run("SetStatus", func(t *testing.T) {
		r := NewReporter(false)
		r.SetStatus("test status")
		if r.status != "test status" {
			t.Errorf("expected 'test status', got %q", r.status)
		}
	})

	t.Run("SetProgress", func(t *testing.T) {
		r := NewReporter(false)
		r.SetProgress(0.5, "50%")
		if r.progress != 0.5 {
			t.Errorf("expected progress 0.5, got %f", r.progress)
		}
		if r.info != "50%" {
			t.Errorf("expected info '50%%', got %q", r.info)
		}
	})

	t.Run("Cancel", func(t *testing.T) {
		r := NewReporter(false)
		if r.IsCancelled() {
			t.Error("should not be cancelled initially")
		}
		r.Cancel()
		if !r.IsCancelled() {
			t.Error("should be cancelled after Cancel()")
		}
	})

	t.Run("SetCanCancel", func(t *testing.T) {
		r := NewReporter(false)
		// Should be a no-op, just ensure it doesn't panic
		r.SetCanCancel(true)
	})

	t.Run("Cancel invokes bound cancel func", func(t *testing.T) {
		r := NewReporter(false)
		ctx, cancel := context.WithCancel(context.Background())
		r.BindCancel(cancel)

		select {
		case <-ctx.Done():
			t.Fatal("context should not be done before Cancel()")
		default:
		}

		r.Cancel()

		select {
		case <-ctx.Done():
		default:
			t.Error("Cancel() should invoke the bound cancel func and close ctx.Done()")
		}
	})
}

func TestReporterOutput(t *testing.T) {
	t.Run("quiet mode suppresses output", func(t *testing.T) {
		r := NewReporter(true)
		r.SetStatus("test")
		r.SetProgress(0.5, "50%")

		old := os.Stderr
		r2, w, _ := os.Pipe()
		os.Stderr = w

		r.Update()
		r.Finish()

		w.Close()
		os.Stderr = old

		var buf bytes.Buffer
		buf.ReadFrom(r2)

		if buf.Len() != 0 {
			t.Errorf("quiet mode should not produce output, got: %q", buf.String())
		}
	})

	t.Run("PrintSuccess respects quiet", func(t *testing.T) {
		r := NewReporter(true)

		old := os.Stderr
		r2, w, _ := os.Pipe()
		os.Stderr = w

		r.PrintSuccess("success message")

		w.Close()
		os.Stderr = old

		var buf bytes.Buffer
		buf.ReadFrom(r2)

		if buf.Len() != 0 {
			t.Errorf("quiet mode should suppress success, got: %q", buf.String())
		}
	})

	t.Run("PrintError always outputs", func(t *testing.T) {
		r := NewReporter(true) // Even in quiet mode

		old := os.Stderr
		r2, w, _ := os.Pipe()
		os.Stderr = w

		r.PrintError("error message")

		w.Close()
		os.Stderr = old

		var buf bytes.Buffer
		buf.ReadFrom(r2)

		if !strings.Contains(buf.String(), "error message") {
			t.Errorf("PrintError should always output, got: %q", buf.String())
		}
	})
}

func TestVersionFlag(t *testing.T) {
	Version = "v1.0.0"
	if rootCmd.Version != "v1.0.0" {
		rootCmd.Version = Version
	}
	if rootCmd.Version != "v1.0.0" {
		t.Errorf("expected version v1.0.0, got %s", rootCmd.Version)
	}
}

func TestDirSinkSourceRoundTrip(t *testing.T) {
	dir := t.TempDir()

	sink, err := NewDirSink(dir)
	if err != nil {
		t.Fatalf("NewDirSink failed: %v", err)
	}

	frames := [][]byte{
		bytes.Repeat([]byte{0x01}, 10),
		bytes.Repeat([]byte{0x02}, 10),
		bytes.Repeat([]byte{0x03}, 10),
	}
	for _, f := range frames {
		if err := sink.Push(context.Background(), f); err != nil {
			t.Fatalf("Push failed: %v", err)
		}
	}
	if err := sink.Finish(context.Background()); err != nil {
		t.Fatalf("Finish failed: %v", err)
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("ReadDir failed: %v", err)
	}
	if len(entries) != len(frames) {
		t.Fatalf("wrote %d files; want %d", len(entries), len(frames))
	}

	source, err := NewDirSource(dir)
	if err != nil {
		t.Fatalf("NewDirSource failed: %v", err)
	}

	for i, want := range frames {
		got, err := source.Next(context.Background())
		if err != nil {
			t.Fatalf("Next(%d) failed: %v", i, err)
		}
		if !bytes.Equal(got, want) {
			t.Errorf("frame %d = %v; want %v", i, got, want)
		}
	}

	if _, err := source.Next(context.Background()); err == nil {
		t.Error("Next should return io.EOF after the last frame")
	}
}

func TestDirSourceOrdersFramesNumerically(t *testing.T) {
	dir := t.TempDir()
	sink, err := NewDirSink(dir)
	if err != nil {
		t.Fatalf("NewDirSink failed: %v", err)
	}
	for i := 0; i < 12; i++ {
		if err := sink.Push(context.Background(), []byte{byte(i)}); err != nil {
			t.Fatalf("Push failed: %v", err)
		}
	}

	source, err := NewDirSource(dir)
	if err != nil {
		t.Fatalf("NewDirSource failed: %v", err)
	}
	for i := 0; i < 12; i++ {
		got, err := source.Next(context.Background())
		if err != nil {
			t.Fatalf("Next(%d) failed: %v", i, err)
		}
		if got[0] != byte(i) {
			t.Errorf("frame %d = %d; want %d (numeric ordering, not lexical)", i, got[0], i)
		}
	}
}

func TestDirSinkReportsProgress(t *testing.T) {
	dir := t.TempDir()
	sink, err := NewDirSink(dir)
	if err != nil {
		t.Fatalf("NewDirSink failed: %v", err)
	}
	reporter := NewReporter(true) // quiet: avoid noisy test output
	sink.reporter = reporter
	sink.SetTotal(4)

	for i := 0; i < 4; i++ {
		if err := sink.Push(context.Background(), []byte{byte(i)}); err != nil {
			t.Fatalf("Push failed: %v", err)
		}
		want := float32(i+1) / 4
		if reporter.progress != want {
			t.Errorf("after push %d: reporter.progress = %v; want %v", i, reporter.progress, want)
		}
	}
}

func TestDirSourceReportsProgress(t *testing.T) {
	dir := t.TempDir()
	sink, err := NewDirSink(dir)
	if err != nil {
		t.Fatalf("NewDirSink failed: %v", err)
	}
	for i := 0; i < 4; i++ {
		if err := sink.Push(context.Background(), []byte{byte(i)}); err != nil {
			t.Fatalf("Push failed: %v", err)
		}
	}

	source, err := NewDirSource(dir)
	if err != nil {
		t.Fatalf("NewDirSource failed: %v", err)
	}
	reporter := NewReporter(true)
	source.reporter = reporter

	for i := 0; i < 4; i++ {
		if _, err := source.Next(context.Background()); err != nil {
			t.Fatalf("Next failed: %v", err)
		}
		want := float32(i+1) / 4
		if reporter.progress != want {
			t.Errorf("after read %d: reporter.progress = %v; want %v", i, reporter.progress, want)
		}
	}
}

func TestDirSourceEmptyDirectory(t *testing.T) {
	dir := t.TempDir()
	source, err := NewDirSource(dir)
	if err != nil {
		t.Fatalf("NewDirSource failed: %v", err)
	}
	if _, err := source.Next(context.Background()); err == nil {
		t.Error("Next on an empty directory should return io.EOF immediately")
	}
}

func TestEncodeDecodeCommandsRoundTrip(t *testing.T) {
	tmpDir := t.TempDir()
	inputPath := filepath.Join(tmpDir, "input.bin")
	framesDir := filepath.Join(tmpDir, "frames")
	outputPath := filepath.Join(tmpDir, "output.bin")

	data := bytes.Repeat([]byte{0xAB, 0xCD}, 200)
	if err := os.WriteFile(inputPath, data, 0o644); err != nil {
		t.Fatalf("WriteFile failed: %v", err)
	}

	encInput, encOutput, encPassword, encPasswordStdin, encRatio, encQuiet =
		inputPath, framesDir, "", false, 0, true
	if err := runEncode(encodeCmd, nil); err != nil {
		t.Fatalf("runEncode failed: %v", err)
	}

	decInput, decOutput, decPassword, decPasswordStdin, decQuiet =
		framesDir, outputPath, "", false, true
	if err := runDecode(decodeCmd, nil); err != nil {
		t.Fatalf("runDecode failed: %v", err)
	}

	got, err := os.ReadFile(outputPath)
	if err != nil {
		t.Fatalf("ReadFile failed: %v", err)
	}
	if !bytes.Equal(got, data) {
		t.Error("decoded file does not match original input")
	}
}
