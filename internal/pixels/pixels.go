// Package pixels converts between FrameBytes RGB byte buffers and the
// RGBA pixel buffers a video frame sink/source exchanges.
package pixels

import "github.com/nyxtape/vidcodec/internal/packet"

// RGBAPixels is the number of bytes in an RGBA frame buffer:
// width * height * 4 channels.
const RGBAPixels = packet.FrameWidth * packet.FrameHeight * 4

// BytesToPixels expands a FrameBytes-length RGB buffer into an RGBA
// buffer: R, G, B come from three consecutive input bytes, A is always
// 255. Reads past the end of data are treated as zero, so data shorter
// than FrameBytes is accepted and zero-padded.
func BytesToPixels(data []byte) []byte {
	rgba := make([]byte, RGBAPixels)
	for i := 0; i < packet.FrameWidth*packet.FrameHeight; i++ {
		srcOff := i * 3
		dstOff := i * 4

		rgba[dstOff+0] = byteAt(data, srcOff+0)
		rgba[dstOff+1] = byteAt(data, srcOff+1)
		rgba[dstOff+2] = byteAt(data, srcOff+2)
		rgba[dstOff+3] = 255
	}
	return rgba
}

// PixelsToBytes is the inverse of BytesToPixels: it drops the alpha
// channel and returns a FrameBytes-length RGB buffer.
func PixelsToBytes(rgba []byte) []byte {
	out := make([]byte, packet.FrameBytes)
	for i := 0; i < packet.FrameWidth*packet.FrameHeight; i++ {
		srcOff := i * 4
		dstOff := i * 3

		out[dstOff+0] = byteAt(rgba, srcOff+0)
		out[dstOff+1] = byteAt(rgba, srcOff+1)
		out[dstOff+2] = byteAt(rgba, srcOff+2)
	}
	return out
}

func byteAt(b []byte, i int) byte {
	if i >= len(b) {
		return 0
	}
	return b[i]
}
