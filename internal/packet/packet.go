// Package packet encodes and decodes the codec's per-frame wire format:
// a 19-byte header, a payload, and zero padding out to FRAME_BYTES.
package packet

import (
	"encoding/binary"

	"github.com/nyxtape/vidcodec/internal/checksum"
)

// Frame geometry. Width 1920, height 1080, 3 bytes per pixel (RGB).
const (
	FrameWidth  = 1920
	FrameHeight = 1080
	FrameBytes  = FrameWidth * FrameHeight * 3 // 6,220,800

	// HeaderSize is the fixed 19-byte header: magic(2)+flags(1)+
	// packetIndex(4)+totalPackets(4)+payloadLength(4)+checksum(4).
	HeaderSize = 19

	// MaxPayload is the largest payload a single frame can carry.
	MaxPayload = FrameBytes - HeaderSize

	// Magic identifies a codec packet.
	Magic uint16 = 0xDB02
)

// Flag bits.
const (
	FlagEncrypted byte = 1 << 0 // set only on frame 0's metadata packet
	FlagRepair    byte = 1 << 1 // packet carries a fountain repair chunk
)

// Header is the fixed-size preamble of every packet.
type Header struct {
	Magic         uint16
	Flags         byte
	PacketIndex   uint32
	TotalPackets  uint32
	PayloadLength uint32
	Checksum      uint32
}

// IsEncrypted reports whether FlagEncrypted is set.
func (h Header) IsEncrypted() bool { return h.Flags&FlagEncrypted != 0 }

// IsRepair reports whether FlagRepair is set.
func (h Header) IsRepair() bool { return h.Flags&FlagRepair != 0 }

// EncodePacket serializes a header and payload into a FrameBytes-length
// buffer. It panics if len(payload) > MaxPayload; callers are expected to
// chunk input to MaxPayload before calling this.
func EncodePacket(index, total uint32, payload []byte, flags byte) []byte {
	if len(payload) > MaxPayload {
		panic("packet: payload exceeds MaxPayload")
	}

	buf := make([]byte, FrameBytes)
	binary.LittleEndian.PutUint16(buf[0:2], Magic)
	buf[2] = flags
	binary.LittleEndian.PutUint32(buf[3:7], index)
	binary.LittleEndian.PutUint32(buf[7:11], total)
	binary.LittleEndian.PutUint32(buf[11:15], uint32(len(payload)))
	binary.LittleEndian.PutUint32(buf[15:19], checksum.Checksum32(payload))
	copy(buf[HeaderSize:], payload)
	return buf
}

// DecodePacket parses raw into a Header and the payload slice it declares.
// ok is false when raw is too short to hold a header or the magic does not
// match; DecodePacket never verifies the checksum — use VerifyPacket for
// that, so callers can distinguish "not a codec packet" from "corrupted
// codec packet".
func DecodePacket(raw []byte) (hdr Header, payload []byte, ok bool) {
	if len(raw) < HeaderSize {
		return Header{}, nil, false
	}

	magic := binary.LittleEndian.Uint16(raw[0:2])
	if magic != Magic {
		return Header{}, nil, false
	}

	hdr = Header{
		Magic:         magic,
		Flags:         raw[2],
		PacketIndex:   binary.LittleEndian.Uint32(raw[3:7]),
		TotalPackets:  binary.LittleEndian.Uint32(raw[7:11]),
		PayloadLength: binary.LittleEndian.Uint32(raw[11:15]),
		Checksum:      binary.LittleEndian.Uint32(raw[15:19]),
	}

	end := HeaderSize + int(hdr.PayloadLength)
	if end > len(raw) {
		return hdr, nil, false
	}

	return hdr, raw[HeaderSize:end], true
}

// VerifyPacket reports whether checksum.Checksum32(payload) equals want.
func VerifyPacket(payload []byte, want uint32) bool {
	return checksum.Verify(payload, want)
}
