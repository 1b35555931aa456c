package codec

import (
	"context"
	"fmt"
	"io"
)

// FrameSink receives ordered RGB pixel buffers during Encode. A real
// implementation hands each buffer to a video muxer; the codec core only
// depends on this interface, never on a concrete muxer.
type FrameSink interface {
	Push(ctx context.Context, rgb []byte) error
	Finish(ctx context.Context) error
}

// frameCounter is an optional interface a FrameSink can implement to learn
// the total frame count as soon as Encode has computed it, for progress
// reporting. Encode checks for it via a type assertion rather than adding
// it to FrameSink itself, so the core sink contract stays minimal.
type frameCounter interface {
	SetTotal(total int)
}

// FrameSource yields ordered RGB pixel buffers during Decode. Next
// returns io.EOF once exhausted.
type FrameSource interface {
	Next(ctx context.Context) ([]byte, error)
}

// MemorySink is an in-memory FrameSink: every pushed frame is appended to
// Frames. Useful for tests and for callers that hold the whole encoded
// stream in RAM.
type MemorySink struct {
	Frames [][]byte
}

// NewMemorySink returns an empty MemorySink.
func NewMemorySink() *MemorySink {
	return &MemorySink{}
}

func (s *MemorySink) Push(ctx context.Context, rgb []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	frame := make([]byte, len(rgb))
	copy(frame, rgb)
	s.Frames = append(s.Frames, frame)
	return nil
}

func (s *MemorySink) Finish(ctx context.Context) error {
	return ctx.Err()
}

// MemorySource is an in-memory FrameSource over a pre-loaded slice of
// frames, yielded in order.
type MemorySource struct {
	Frames [][]byte
	pos    int
}

// NewMemorySource wraps frames for sequential Next() reads.
func NewMemorySource(frames [][]byte) *MemorySource {
	return &MemorySource{Frames: frames}
}

func (s *MemorySource) Next(ctx context.Context) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if s.pos >= len(s.Frames) {
		return nil, io.EOF
	}
	frame := s.Frames[s.pos]
	s.pos++
	return frame, nil
}

// drainAll reads every frame from src into a slice, stopping at io.EOF.
func drainAll(ctx context.Context, src FrameSource) ([][]byte, error) {
	var frames [][]byte
	for {
		frame, err := src.Next(ctx)
		if err == io.EOF {
			return frames, nil
		}
		if err != nil {
			return nil, fmt.Errorf("frame source: %w", err)
		}
		frames = append(frames, frame)
	}
}
