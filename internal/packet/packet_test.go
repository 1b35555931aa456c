package packet

import (
	"bytes"
	"testing"
)

func TestEncodeDecodeRoundTrip(t *testing.T) {
	payload := []byte("source chunk payload")

	raw := EncodePacket(3, 10, payload, 0)
	if len(raw) != FrameBytes {
		t.Fatalf("encoded packet length = %d; want %d", len(raw), FrameBytes)
	}

	hdr, got, ok := DecodePacket(raw)
	if !ok {
		t.Fatal("DecodePacket returned ok=false for a freshly encoded packet")
	}
	if hdr.Magic != Magic {
		t.Errorf("Magic = %#04x; want %#04x", hdr.Magic, Magic)
	}
	if hdr.PacketIndex != 3 {
		t.Errorf("PacketIndex = %d; want 3", hdr.PacketIndex)
	}
	if hdr.TotalPackets != 10 {
		t.Errorf("TotalPackets = %d; want 10", hdr.TotalPackets)
	}
	if hdr.PayloadLength != uint32(len(payload)) {
		t.Errorf("PayloadLength = %d; want %d", hdr.PayloadLength, len(payload))
	}
	if !bytes.Equal(got, payload) {
		t.Errorf("payload = %q; want %q", got, payload)
	}
	if !VerifyPacket(got, hdr.Checksum) {
		t.Error("VerifyPacket should succeed on a freshly encoded packet")
	}
}

func TestHeaderFlags(t *testing.T) {
	raw := EncodePacket(0, 1, []byte("meta"), FlagEncrypted)
	hdr, _, ok := DecodePacket(raw)
	if !ok {
		t.Fatal("DecodePacket returned ok=false")
	}
	if !hdr.IsEncrypted() {
		t.Error("IsEncrypted() should be true")
	}
	if hdr.IsRepair() {
		t.Error("IsRepair() should be false")
	}

	raw2 := EncodePacket(5, 10, make([]byte, MaxPayload), FlagRepair)
	hdr2, _, ok := DecodePacket(raw2)
	if !ok {
		t.Fatal("DecodePacket returned ok=false")
	}
	if !hdr2.IsRepair() {
		t.Error("IsRepair() should be true")
	}
	if hdr2.IsEncrypted() {
		t.Error("IsEncrypted() should be false")
	}
}

func TestDecodePacketRejectsShortBuffer(t *testing.T) {
	_, _, ok := DecodePacket(make([]byte, HeaderSize-1))
	if ok {
		t.Error("DecodePacket should reject buffers shorter than HeaderSize")
	}
}

func TestDecodePacketRejectsBadMagic(t *testing.T) {
	raw := EncodePacket(0, 1, []byte("x"), 0)
	raw[0] ^= 0xFF
	_, _, ok := DecodePacket(raw)
	if ok {
		t.Error("DecodePacket should reject a bad magic")
	}
}

func TestDecodePacketNoChecksumVerification(t *testing.T) {
	raw := EncodePacket(0, 1, []byte("intact"), 0)
	// Corrupt the payload without touching the header's declared checksum.
	raw[HeaderSize] ^= 0xFF

	hdr, payload, ok := DecodePacket(raw)
	if !ok {
		t.Fatal("DecodePacket should still parse a structurally valid packet")
	}
	if VerifyPacket(payload, hdr.Checksum) {
		t.Error("VerifyPacket should detect the corrupted payload")
	}
}

func TestEncodePacketZeroPadsToFrameBytes(t *testing.T) {
	payload := []byte("short")
	raw := EncodePacket(0, 1, payload, 0)
	tail := raw[HeaderSize+len(payload):]
	for i, b := range tail {
		if b != 0 {
			t.Fatalf("expected zero padding at offset %d, got %#02x", HeaderSize+len(payload)+i, b)
		}
	}
}

func TestEncodePacketPanicsOnOversizedPayload(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Error("EncodePacket should panic when payload exceeds MaxPayload")
		}
	}()
	EncodePacket(0, 1, make([]byte, MaxPayload+1), 0)
}
