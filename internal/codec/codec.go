// Package codec implements the byte-stream-to-video-frame pipeline:
// chunking, fountain-code redundancy, optional AES-256-GCM encryption,
// and the per-packet wire format, end to end.
package codec

import (
	"context"
	"fmt"

	"github.com/nyxtape/vidcodec/internal/cipher"
	codecerrors "github.com/nyxtape/vidcodec/internal/errors"
	"github.com/nyxtape/vidcodec/internal/fountain"
	"github.com/nyxtape/vidcodec/internal/log"
	"github.com/nyxtape/vidcodec/internal/metadata"
	"github.com/nyxtape/vidcodec/internal/packet"
	"github.com/nyxtape/vidcodec/internal/util"
)

// chunkPool recycles MaxPayload-sized source-chunk buffers across Encode
// calls; a buffer is returned once its packet has been handed to the sink
// and no repair packet generation still needs to read it.
var chunkPool = util.NewBufferPool(packet.MaxPayload)

// Input is the user-supplied payload handed to Encode.
type Input struct {
	Name  string
	Bytes []byte
	MIME  string
}

// Output is what Decode reconstructs.
type Output struct {
	Name  string
	Bytes []byte
}

// EncodeOptions configures a single Encode call.
type EncodeOptions struct {
	// Password, if non-empty, wraps the input in an AES-256-GCM envelope
	// and sets frame 0's encrypted flag.
	Password string

	// RedundancyRatio is the fraction of source packets to generate as
	// repair packets (ceil(ratio*n), minimum 1). Zero means DefaultRatio.
	RedundancyRatio float64
}

// DecodeOptions configures a single Decode call.
type DecodeOptions struct {
	// Password unwraps the AEAD envelope; required when frame 0's
	// encrypted bit is set.
	Password string
}

// Codec is the stateless entry point for Encode/Decode. The zero value is
// ready to use.
type Codec struct{}

// New returns a ready-to-use Codec.
func New() *Codec {
	return &Codec{}
}

func (c *Codec) ratio(opts EncodeOptions) float64 {
	if opts.RedundancyRatio > 0 {
		return opts.RedundancyRatio
	}
	return fountain.DefaultRatio
}

// Encode chunks input.Bytes (after optional encryption) into source
// packets, generates fountain repair packets, and streams every packet
// as a pixel buffer to sink, in frame order: metadata, then sources,
// then repairs.
func (c *Codec) Encode(ctx context.Context, input Input, opts EncodeOptions, sink FrameSink) error {
	if len(input.Bytes) == 0 {
		return codecerrors.ErrEmptyInput
	}

	plaintext := input.Bytes
	origSize := uint32(len(plaintext))
	isEncrypted := opts.Password != ""

	payload := plaintext
	if isEncrypted {
		envelope, err := cipher.Encrypt(plaintext, opts.Password)
		if err != nil {
			return fmt.Errorf("encode: %w", err)
		}
		payload = envelope
	}

	sources := chunk(payload, packet.MaxPayload)
	n := len(sources)

	repairs, err := fountain.GenerateRepairPackets(ctx, sources, c.ratio(opts))
	if err != nil {
		return fmt.Errorf("encode: generate repair packets: %w", err)
	}
	m := len(repairs)
	total := uint32(1 + n + m)

	if fc, ok := sink.(frameCounter); ok {
		fc.SetTotal(int(total))
	}

	log.Info("encoding stream",
		log.String("name", input.Name),
		log.Int("origSize", int(origSize)),
		log.Int("sourceCount", n),
		log.Int("repairCount", m),
		log.Bool("encrypted", isEncrypted),
	)

	metaPayload := metadata.Encode(metadata.Metadata{
		Filename:  input.Name,
		OrigSize:  origSize,
		MIMEType:  input.MIME,
		Encrypted: isEncrypted,
	})

	var metaFlags byte
	if isEncrypted {
		metaFlags = packet.FlagEncrypted
	}

	if err := pushPacket(ctx, sink, 0, total, metaPayload, metaFlags); err != nil {
		return fmt.Errorf("encode: frame 0: %w", err)
	}

	lastChunkLen := len(payload) - (n-1)*packet.MaxPayload
	for i, src := range sources {
		actual := src
		if i == n-1 {
			actual = src[:lastChunkLen]
		}
		if err := pushPacket(ctx, sink, uint32(i+1), total, actual, 0); err != nil {
			return fmt.Errorf("encode: frame %d: %w", i+1, err)
		}
		chunkPool.Put(src)
	}

	for r, rp := range repairs {
		idx := uint32(n + 1 + r)
		if err := pushPacket(ctx, sink, idx, total, rp.Data, packet.FlagRepair); err != nil {
			return fmt.Errorf("encode: frame %d: %w", idx, err)
		}
	}

	if err := sink.Finish(ctx); err != nil {
		return fmt.Errorf("encode: finish: %w", err)
	}
	return nil
}

// pushPacket serializes a packet and hands it to sink. The serialized
// packet is already an RGB-triplet-layout buffer of exactly FrameBytes
// (§4.5): each byte triplet IS a pixel, so no separate pixel expansion is
// needed on this path. The pixels package exists for adapters that wrap
// a real image/video library expecting an RGBA buffer instead.
func pushPacket(ctx context.Context, sink FrameSink, index, total uint32, payload []byte, flags byte) error {
	raw := packet.EncodePacket(index, total, payload, flags)
	return sink.Push(ctx, raw)
}

// chunk splits data into ceil(len(data)/size) slices of length size,
// zero-padding the final slice. Buffers come from chunkPool when size
// matches packet.MaxPayload, the only size Encode ever passes.
func chunk(data []byte, size int) [][]byte {
	n := (len(data) + size - 1) / size
	if n == 0 {
		n = 1
	}
	chunks := make([][]byte, n)
	for i := 0; i < n; i++ {
		var buf []byte
		if size == packet.MaxPayload {
			buf = chunkPool.Get()
		} else {
			buf = make([]byte, size)
		}
		start := i * size
		end := start + size
		if end > len(data) {
			end = len(data)
		}
		copy(buf, data[start:end])
		chunks[i] = buf
	}
	return chunks
}
