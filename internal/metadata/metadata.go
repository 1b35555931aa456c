// Package metadata encodes and decodes frame 0's descriptor payload:
// filename, original size, media type, and the encrypted flag.
package metadata

import (
	"encoding/binary"
	"fmt"
	"unicode/utf8"

	codecerrors "github.com/nyxtape/vidcodec/internal/errors"
)

// FixedOverhead is the number of bytes in an encoded Metadata payload that
// are not the filename or mime type: nameLen(4) + origSize(4) + mimeLen(4)
// + encryptedFlag(1).
const FixedOverhead = 13

// Metadata is frame 0's descriptor.
type Metadata struct {
	Filename  string
	OrigSize  uint32
	MIMEType  string
	Encrypted bool
}

// Encode serializes m as: u32 nameLen | filename | u32 origSize |
// u32 mimeLen | mime | u8 encryptedFlag. All integers little-endian.
func Encode(m Metadata) []byte {
	nameBytes := []byte(m.Filename)
	mimeBytes := []byte(m.MIMEType)

	buf := make([]byte, 0, FixedOverhead+len(nameBytes)+len(mimeBytes))

	var u32 [4]byte
	binary.LittleEndian.PutUint32(u32[:], uint32(len(nameBytes)))
	buf = append(buf, u32[:]...)
	buf = append(buf, nameBytes...)

	binary.LittleEndian.PutUint32(u32[:], m.OrigSize)
	buf = append(buf, u32[:]...)

	binary.LittleEndian.PutUint32(u32[:], uint32(len(mimeBytes)))
	buf = append(buf, u32[:]...)
	buf = append(buf, mimeBytes...)

	var flag byte
	if m.Encrypted {
		flag = 1
	}
	buf = append(buf, flag)

	return buf
}

// Decode parses a Metadata payload produced by Encode. It returns
// ErrMalformedMetadata wrapped with context when the payload is shorter
// than its own declared lengths require.
func Decode(payload []byte) (Metadata, error) {
	var m Metadata
	off := 0

	nameLen, err := readU32(payload, off)
	if err != nil {
		return m, fmt.Errorf("metadata: name length: %w", err)
	}
	off += 4

	name, err := readString(payload, off, int(nameLen))
	if err != nil {
		return m, fmt.Errorf("metadata: filename: %w", err)
	}
	off += int(nameLen)

	origSize, err := readU32(payload, off)
	if err != nil {
		return m, fmt.Errorf("metadata: origSize: %w", err)
	}
	off += 4

	mimeLen, err := readU32(payload, off)
	if err != nil {
		return m, fmt.Errorf("metadata: mime length: %w", err)
	}
	off += 4

	mime, err := readString(payload, off, int(mimeLen))
	if err != nil {
		return m, fmt.Errorf("metadata: mime: %w", err)
	}
	off += int(mimeLen)

	if off >= len(payload) {
		return m, fmt.Errorf("metadata: encryptedFlag: %w", codecerrors.ErrMalformedMetadata)
	}
	encrypted := payload[off] != 0

	return Metadata{
		Filename:  name,
		OrigSize:  origSize,
		MIMEType:  mime,
		Encrypted: encrypted,
	}, nil
}

func readU32(payload []byte, off int) (uint32, error) {
	if off+4 > len(payload) {
		return 0, codecerrors.ErrMalformedMetadata
	}
	return binary.LittleEndian.Uint32(payload[off : off+4]), nil
}

func readString(payload []byte, off, n int) (string, error) {
	if n < 0 || off+n > len(payload) {
		return "", codecerrors.ErrMalformedMetadata
	}
	b := payload[off : off+n]
	if !utf8.Valid(b) {
		return "", codecerrors.ErrMalformedMetadata
	}
	return string(b), nil
}
