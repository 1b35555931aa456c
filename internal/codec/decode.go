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
)

// decodedFrame is what survives DecodePacket for one received buffer.
// valid reports whether the payload's CRC matched; an invalid frame is
// treated the same as an absent one everywhere downstream.
type decodedFrame struct {
	header  packet.Header
	payload []byte
	valid   bool
}

// Decode reassembles the stream yielded by source into its original
// bytes, running fountain recovery over any absent or CRC-invalid source
// packets before concatenating and (if encrypted) decrypting.
func (c *Codec) Decode(ctx context.Context, source FrameSource, opts DecodeOptions) (Output, error) {
	rawFrames, err := drainAll(ctx, source)
	if err != nil {
		return Output{}, fmt.Errorf("decode: %w", err)
	}
	if len(rawFrames) == 0 {
		return Output{}, codecerrors.ErrNoFrames
	}

	decoded := make([]*decodedFrame, len(rawFrames))
	anyDecodable := false
	for i, raw := range rawFrames {
		hdr, payload, ok := packet.DecodePacket(raw)
		if !ok {
			log.Debug("skipping non-codec frame", log.Int("position", i))
			continue
		}
		valid := packet.VerifyPacket(payload, hdr.Checksum)
		if !valid {
			log.Debug("CRC mismatch", log.Int("position", i), log.Int("packetIndex", int(hdr.PacketIndex)))
		}
		decoded[i] = &decodedFrame{header: hdr, payload: payload, valid: valid}
		anyDecodable = true
	}
	if !anyDecodable {
		return Output{}, codecerrors.ErrNoFrames
	}

	frame0 := decoded[0]
	if frame0 == nil || !frame0.valid {
		return Output{}, codecerrors.ErrMetadataLost
	}

	meta, err := metadata.Decode(frame0.payload)
	if err != nil {
		return Output{}, fmt.Errorf("decode: metadata: %w", err)
	}
	if meta.Encrypted && opts.Password == "" {
		return Output{}, codecerrors.ErrPasswordRequired
	}

	total := int(frame0.header.TotalPackets)

	sources, repairs, err := partition(decoded, total)
	if err != nil {
		return Output{}, err
	}

	for i := range repairs {
		repairs[i].SourceIndices = fountain.GetRepairSources(repairs[i].RepairIndex, len(sources))
	}

	absent := fountain.RecoverPackets(sources, repairs, packet.MaxPayload)
	if absent > 0 {
		if missingErr := fountain.FirstMissingIndex(sources); missingErr != nil {
			return Output{}, missingErr
		}
	}

	log.Info("decoded stream",
		log.String("name", meta.Filename),
		log.Int("sourceCount", len(sources)),
		log.Int("repairCount", len(repairs)),
		log.Bool("encrypted", meta.Encrypted),
	)

	payload := make([]byte, 0, len(sources)*packet.MaxPayload)
	for _, s := range sources {
		payload = append(payload, s...)
	}

	var plaintext []byte
	if meta.Encrypted {
		envelopeSize := int(meta.OrigSize) + cipher.Overhead
		if envelopeSize > len(payload) {
			return Output{}, fmt.Errorf("decode: %w: declared origSize exceeds reassembled payload", codecerrors.ErrMalformedMetadata)
		}
		plaintext, err = cipher.Decrypt(payload[:envelopeSize], opts.Password)
		if err != nil {
			return Output{}, fmt.Errorf("decode: %w", err)
		}
	} else {
		if int(meta.OrigSize) > len(payload) {
			return Output{}, fmt.Errorf("decode: %w: declared origSize exceeds reassembled payload", codecerrors.ErrMalformedMetadata)
		}
		plaintext = payload[:meta.OrigSize]
	}

	return Output{Name: meta.Filename, Bytes: plaintext}, nil
}

// partition walks positions 1..total-1, classifying each as source or
// repair by its decoded frame's repair flag. A position with no valid
// decoded frame has no flag to read; it inherits the most recently
// observed phase (source-phase until the first confirmed repair frame,
// repair-phase afterward), since encode always emits every source before
// any repair. This is the one place an absent frame's classification is
// inferred rather than read directly — see DESIGN.md.
func partition(decoded []*decodedFrame, total int) ([][]byte, []fountain.RepairPacket, error) {
	var sources [][]byte
	var repairs []fountain.RepairPacket
	sawRepair := false
	sourceCount, repairCount := 0, 0

	for pos := 1; pos < total; pos++ {
		var entry *decodedFrame
		if pos < len(decoded) {
			entry = decoded[pos]
		}
		missing := entry == nil || !entry.valid

		isRepair := sawRepair
		if !missing {
			isRepair = entry.header.IsRepair()
			if isRepair {
				sawRepair = true
			}
		}

		if isRepair {
			if !missing {
				repairs = append(repairs, fountain.RepairPacket{
					RepairIndex: uint32(repairCount),
					Data:        padToMaxPayload(entry.payload),
				})
			}
			repairCount++
			continue
		}

		if missing {
			sources = append(sources, nil)
		} else {
			sources = append(sources, padToMaxPayload(entry.payload))
		}
		sourceCount++
	}

	if sourceCount+repairCount != total-1 {
		return nil, nil, fmt.Errorf("decode: %w: partitioned %d+%d != total-1 (%d)",
			codecerrors.ErrMalformedMetadata, sourceCount, repairCount, total-1)
	}

	return sources, repairs, nil
}

func padToMaxPayload(payload []byte) []byte {
	if len(payload) == packet.MaxPayload {
		return payload
	}
	buf := make([]byte, packet.MaxPayload)
	copy(buf, payload)
	return buf
}
