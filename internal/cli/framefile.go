package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"

	"github.com/nyxtape/vidcodec/internal/codec"
)

// DirSink is a codec.FrameSink that writes each frame as a raw
// FrameBytes-length .rgb file into a directory, standing in for the
// external muxer (out of scope for this codec).
type DirSink struct {
	dir      string
	index    int
	total    int
	reporter *Reporter
}

// NewDirSink creates dir if needed and returns a sink that writes
// sequentially numbered .rgb files into it.
func NewDirSink(dir string) (*DirSink, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating output directory: %w", err)
	}
	return &DirSink{dir: dir}, nil
}

// SetTotal records the eventual frame count, once Encode has computed it,
// so Push can report a meaningful fraction instead of just a running count.
// Codec.Encode calls this through an optional interface (see codec.go) on
// any sink that implements it.
func (s *DirSink) SetTotal(total int) {
	s.total = total
}

func (s *DirSink) framePath(index int) string {
	return filepath.Join(s.dir, fmt.Sprintf("frame-%06d.rgb", index))
}

func (s *DirSink) Push(ctx context.Context, rgb []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	path := s.framePath(s.index)
	if err := os.WriteFile(path, rgb, 0o644); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	s.index++
	if s.reporter != nil {
		var fraction float32
		if s.total > 0 {
			fraction = float32(s.index) / float32(s.total)
		}
		s.reporter.SetProgress(fraction, fmt.Sprintf("frame %d/%d emitted", s.index, s.total))
		s.reporter.Update()
	}
	return nil
}

func (s *DirSink) Finish(ctx context.Context) error {
	return ctx.Err()
}

// DirSource is a codec.FrameSource reading the .rgb files a DirSink (or
// an equivalent demuxer) produced, in numeric order.
type DirSource struct {
	paths    []string
	pos      int
	reporter *Reporter
}

// NewDirSource globs dir for *.rgb files and sorts them lexically, which
// matches DirSink's zero-padded numbering.
func NewDirSource(dir string) (*DirSource, error) {
	matches, err := filepath.Glob(filepath.Join(dir, "*.rgb"))
	if err != nil {
		return nil, fmt.Errorf("listing frames in %s: %w", dir, err)
	}
	sort.Strings(matches)
	return &DirSource{paths: matches}, nil
}

func (s *DirSource) Next(ctx context.Context) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if s.pos >= len(s.paths) {
		return nil, io.EOF
	}
	path := s.paths[s.pos]
	s.pos++
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	if s.reporter != nil {
		total := len(s.paths)
		var fraction float32
		if total > 0 {
			fraction = float32(s.pos) / float32(total)
		}
		s.reporter.SetProgress(fraction, fmt.Sprintf("frame %d/%d read", s.pos, total))
		s.reporter.Update()
	}
	return data, nil
}

var _ codec.FrameSink = (*DirSink)(nil)
var _ codec.FrameSource = (*DirSource)(nil)
