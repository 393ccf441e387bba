package secrets

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"errors"
	"fmt"
)

// ErrDecryptionFailed covers malformed ciphertext and key mismatch
// alike. Empty plaintext is not an error.
var ErrDecryptionFailed = errors.New("decryption failed")

// Cipher encrypts secret text with AES-256-GCM before storage and
// decrypts it on read. The storage layer never sees plaintext. The
// key is derived once at startup from a configured passphrase and is
// never logged or persisted.
type Cipher struct {
	aead cipher.AEAD
}

// NewCipher derives a 256-bit key from the passphrase and builds the
// AEAD. Encryption and decryption are pure and need no
// synchronization.
func NewCipher(passphrase string) (*Cipher, error) {
	if passphrase == "" {
		return nil, errors.New("secrets: encryption key must not be empty")
	}

	key := sha256.Sum256([]byte(passphrase))

	block, err := aes.NewCipher(key[:])
	if err != nil {
		return nil, fmt.Errorf("secrets: init cipher: %w", err)
	}
	aead, err := cipher.NewGCM(block)
	if err != nil {
		return nil, fmt.Errorf("secrets: init gcm: %w", err)
	}

	return &Cipher{aead: aead}, nil
}

// Encrypt seals the plaintext with a fresh random nonce. The nonce is
// prepended to the ciphertext so the result is self-contained; no
// separate IV storage exists.
func (c *Cipher) Encrypt(plaintext string) (string, error) {
	nonce := make([]byte, c.aead.NonceSize())
	if _, err := rand.Read(nonce); err != nil {
		return "", fmt.Errorf("secrets: nonce: %w", err)
	}

	sealed := c.aead.Seal(nonce, nonce, []byte(plaintext), nil)
	return base64.StdEncoding.EncodeToString(sealed), nil
}

// Decrypt reverses Encrypt. Any malformed input or key mismatch
// yields ErrDecryptionFailed.
func (c *Cipher) Decrypt(ciphertext string) (string, error) {
	sealed, err := base64.StdEncoding.DecodeString(ciphertext)
	if err != nil {
		return "", ErrDecryptionFailed
	}
	if len(sealed) < c.aead.NonceSize() {
		return "", ErrDecryptionFailed
	}

	nonce := sealed[:c.aead.NonceSize()]
	plaintext, err := c.aead.Open(nil, nonce, sealed[c.aead.NonceSize():], nil)
	if err != nil {
		return "", ErrDecryptionFailed
	}
	return string(plaintext), nil
}
