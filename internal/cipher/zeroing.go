package cipher

import "crypto/subtle"

// SecureZero overwrites b with zeros using a constant-time copy so the
// compiler cannot optimize the write away. It cannot guarantee the key
// never touched a spilled register or a GC-moved buffer, but it closes
// the obvious window where a derived key sits live in a slice after use.
func SecureZero(b []byte) {
	if len(b) == 0 {
		return
	}
	zeros := make([]byte, len(b))
	subtle.ConstantTimeCopy(1, b, zeros)
}
