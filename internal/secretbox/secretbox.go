// Package secretbox encrypts guest credentials for storage in cookies.
//
// Tokens live client-side in an untrusted cookie jar, so every value is
// sealed with AES-256-GCM before it leaves the process. The envelope
// layout is nonce || tag || ciphertext, base64-encoded so it is safe as
// a single cookie value.
package secretbox

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"errors"
	"fmt"
	"io"

	"golang.org/x/crypto/hkdf"
)

const (
	nonceSize = 12
	tagSize   = 16
	keySize   = 32
)

// ErrCorruptedCredential is returned when an envelope cannot be decrypted.
// Callers must treat this as "session invalid, require re-authentication",
// never as an expired token.
var ErrCorruptedCredential = errors.New("corrupted credential envelope")

// Codec seals and opens credential envelopes with a process-wide key.
type Codec struct {
	key []byte
}

// New derives a 32-byte AES key from the configured secret using
// HKDF-SHA256 and returns a ready Codec. The secret must be at least
// 32 bytes of entropy-bearing material.
func New(secret string) (*Codec, error) {
	if len(secret) < keySize {
		return nil, fmt.Errorf("cookie secret must be at least %d bytes, got %d", keySize, len(secret))
	}

	h := hkdf.New(sha256.New, []byte(secret), nil, []byte("guest-credential-v1"))
	key := make([]byte, keySize)
	if _, err := io.ReadFull(h, key); err != nil {
		return nil, fmt.Errorf("deriving credential key: %w", err)
	}

	return &Codec{key: key}, nil
}

// Encrypt seals plaintext into a transport-safe envelope. Each call
// draws a fresh random nonce.
func (c *Codec) Encrypt(plaintext string) (string, error) {
	gcm, err := c.aead()
	if err != nil {
		return "", err
	}

	nonce := make([]byte, nonceSize)
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return "", fmt.Errorf("generating nonce: %w", err)
	}

	// Seal appends ciphertext || tag; the envelope wants nonce || tag || ciphertext.
	sealed := gcm.Seal(nil, nonce, []byte(plaintext), nil)
	ct := sealed[:len(sealed)-tagSize]
	tag := sealed[len(sealed)-tagSize:]

	envelope := make([]byte, 0, nonceSize+tagSize+len(ct))
	envelope = append(envelope, nonce...)
	envelope = append(envelope, tag...)
	envelope = append(envelope, ct...)

	return base64.StdEncoding.EncodeToString(envelope), nil
}

// Decrypt opens an envelope produced by Encrypt. Any truncation, tag
// mismatch, or corrupt encoding yields ErrCorruptedCredential.
func (c *Codec) Decrypt(envelope string) (string, error) {
	data, err := base64.StdEncoding.DecodeString(envelope)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrCorruptedCredential, err)
	}
	if len(data) < nonceSize+tagSize {
		return "", fmt.Errorf("%w: envelope too short", ErrCorruptedCredential)
	}

	gcm, err := c.aead()
	if err != nil {
		return "", err
	}

	nonce := data[:nonceSize]
	tag := data[nonceSize : nonceSize+tagSize]
	ct := data[nonceSize+tagSize:]

	sealed := make([]byte, 0, len(ct)+tagSize)
	sealed = append(sealed, ct...)
	sealed = append(sealed, tag...)

	plaintext, err := gcm.Open(nil, nonce, sealed, nil)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrCorruptedCredential, err)
	}

	return string(plaintext), nil
}

func (c *Codec) aead() (cipher.AEAD, error) {
	block, err := aes.NewCipher(c.key)
	if err != nil {
		return nil, fmt.Errorf("creating cipher: %w", err)
	}
	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return nil, fmt.Errorf("creating GCM: %w", err)
	}
	return gcm, nil
}
