// Package cipher implements the codec's password-based AEAD envelope.
//
// Envelope layout: salt(16) || iv(12) || ciphertext+tag(n+16).
package cipher

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"fmt"
	"hash"

	"golang.org/x/crypto/pbkdf2"

	codecerrors "github.com/nyxtape/vidcodec/internal/errors"
	"github.com/nyxtape/vidcodec/internal/log"
)

// Envelope field sizes.
const (
	SaltSize = 16
	IVSize   = 12
	TagSize  = 16
	KeySize  = 32 // AES-256

	// Overhead is the total number of non-plaintext bytes in an envelope:
	// salt + iv + tag. The decoder uses origSize+Overhead to know how many
	// trailing bytes of the reassembled, zero-padded source stream belong
	// to the envelope.
	Overhead = SaltSize + IVSize + TagSize

	// PBKDF2Iterations is fixed by the format; changing it breaks existing
	// envelopes and MUST NOT be done without a version bump elsewhere.
	PBKDF2Iterations = 100_000
)

// randomBytes generates n cryptographically secure random bytes.
func randomBytes(n int) ([]byte, error) {
	b := make([]byte, n)
	if _, err := rand.Read(b); err != nil {
		return nil, fmt.Errorf("%w: crypto/rand: %v", codecerrors.ErrCryptoFailure, err)
	}

	allZero := true
	for _, v := range b {
		if v != 0 {
			allZero = false
			break
		}
	}
	if allZero {
		return nil, fmt.Errorf("%w: crypto/rand produced zero bytes", codecerrors.ErrCryptoFailure)
	}

	return b, nil
}

// deriveKey derives a 256-bit AES key from password and salt using
// PBKDF2-HMAC-SHA256 with PBKDF2Iterations rounds.
func deriveKey(password, salt []byte) []byte {
	return pbkdf2.Key(password, salt, PBKDF2Iterations, KeySize, func() hash.Hash { return sha256.New() })
}

// Encrypt wraps plaintext in an AES-256-GCM envelope under password.
// Salt and IV are freshly generated from a cryptographically secure source.
func Encrypt(plaintext []byte, password string) ([]byte, error) {
	salt, err := randomBytes(SaltSize)
	if err != nil {
		return nil, err
	}
	iv, err := randomBytes(IVSize)
	if err != nil {
		return nil, err
	}

	key := deriveKey([]byte(password), salt)
	defer SecureZero(key)

	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, fmt.Errorf("%w: aes.NewCipher: %v", codecerrors.ErrCryptoFailure, err)
	}
	gcm, err := cipher.NewGCMWithNonceSize(block, IVSize)
	if err != nil {
		return nil, fmt.Errorf("%w: cipher.NewGCM: %v", codecerrors.ErrCryptoFailure, err)
	}

	ciphertext := gcm.Seal(nil, iv, plaintext, nil)

	envelope := make([]byte, 0, SaltSize+IVSize+len(ciphertext))
	envelope = append(envelope, salt...)
	envelope = append(envelope, iv...)
	envelope = append(envelope, ciphertext...)

	log.Debug("encrypted payload", log.Int("plaintextLen", len(plaintext)), log.Int("envelopeLen", len(envelope)))
	return envelope, nil
}

// Decrypt unwraps an AES-256-GCM envelope under password, returning the
// original plaintext. Returns ErrDecryptionAuthFailure on tag mismatch or
// wrong password.
func Decrypt(envelope []byte, password string) ([]byte, error) {
	if len(envelope) < Overhead {
		return nil, fmt.Errorf("%w: envelope too short (%d bytes)", codecerrors.ErrDecryptionAuthFailure, len(envelope))
	}

	salt := envelope[:SaltSize]
	iv := envelope[SaltSize : SaltSize+IVSize]
	ciphertext := envelope[SaltSize+IVSize:]

	key := deriveKey([]byte(password), salt)
	defer SecureZero(key)

	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, fmt.Errorf("%w: aes.NewCipher: %v", codecerrors.ErrCryptoFailure, err)
	}
	gcm, err := cipher.NewGCMWithNonceSize(block, IVSize)
	if err != nil {
		return nil, fmt.Errorf("%w: cipher.NewGCM: %v", codecerrors.ErrCryptoFailure, err)
	}

	plaintext, err := gcm.Open(nil, iv, ciphertext, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", codecerrors.ErrDecryptionAuthFailure, err)
	}

	log.Debug("decrypted payload", log.Int("envelopeLen", len(envelope)), log.Int("plaintextLen", len(plaintext)))
	return plaintext, nil
}
