package cipher

import (
	"context"
	"crypto/aes"
	stdcipher "crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"errors"
	"io"
	"strings"

	"golang.org/x/crypto/nacl/secretbox"
)

// Algorithm selects the AEAD used by Local.
type Algorithm string

const (
	// AlgorithmSecretbox is XSalsa20-Poly1305 with a 24-byte nonce.
	AlgorithmSecretbox Algorithm = "secretbox"
	// AlgorithmAESGCM is AES-256-GCM with a 12-byte nonce.
	AlgorithmAESGCM Algorithm = "aes-gcm"
)

const secretboxNonceSize = 24

// ParseAlgorithm converts a configuration value into an Algorithm.
// Empty selects AlgorithmSecretbox.
func ParseAlgorithm(s string) (Algorithm, error) {
	switch a := Algorithm(strings.ToLower(strings.TrimSpace(s))); a {
	case "":
		return AlgorithmSecretbox, nil
	case AlgorithmSecretbox, AlgorithmAESGCM:
		return a, nil
	default:
		return "", ErrUnsupportedAlgorithm
	}
}

// LocalOption configures Local.
type LocalOption func(*Local)

// WithAlgorithm sets the sealing algorithm.
func WithAlgorithm(a Algorithm) LocalOption {
	return func(l *Local) {
		if a != "" {
			l.algorithm = a
		}
	}
}

// WithRandom sets the nonce source. Intended for tests.
func WithRandom(r io.Reader) LocalOption {
	return func(l *Local) {
		if r != nil {
			l.random = r
		}
	}
}

// Local encrypts with a key derived from a secret.
type Local struct {
	random    io.Reader
	algorithm Algorithm
	key       [32]byte
}

// NewLocal creates a Local cipher. The key is SHA-256(secret).
func NewLocal(secret string, opts ...LocalOption) (*Local, error) {
	if secret == "" {
		return nil, ErrMissingKey
	}

	l := &Local{
		key:       sha256.Sum256([]byte(secret)),
		algorithm: AlgorithmSecretbox,
		random:    rand.Reader,
	}
	for _, opt := range opts {
		opt(l)
	}

	if _, err := ParseAlgorithm(string(l.algorithm)); err != nil {
		return nil, err
	}

	return l, nil
}

// Algorithm returns the configured sealing algorithm.
func (l *Local) Algorithm() Algorithm {
	return l.algorithm
}

// Encrypt seals plaintext and returns base64(nonce || box).
func (l *Local) Encrypt(_ context.Context, plaintext string) (string, error) {
	var (
		sealed []byte
		err    error
	)
	switch l.algorithm {
	case AlgorithmAESGCM:
		sealed, err = l.sealGCM([]byte(plaintext))
	default:
		sealed, err = l.sealSecretbox([]byte(plaintext))
	}
	if err != nil {
		return "", errors.Join(ErrEncryptionFailed, err)
	}
	return base64.StdEncoding.EncodeToString(sealed), nil
}

// Decrypt reverses Encrypt.
// Returns ErrDecryptionFailed for bad base64, short input or failed authentication.
func (l *Local) Decrypt(_ context.Context, ciphertext string) (string, error) {
	data, err := base64.StdEncoding.DecodeString(ciphertext)
	if err != nil {
		return "", errors.Join(ErrDecryptionFailed, err)
	}

	var plaintext []byte
	switch l.algorithm {
	case AlgorithmAESGCM:
		plaintext, err = l.openGCM(data)
	default:
		plaintext, err = l.openSecretbox(data)
	}
	if err != nil {
		return "", errors.Join(ErrDecryptionFailed, err)
	}
	return string(plaintext), nil
}

func (l *Local) sealSecretbox(plaintext []byte) ([]byte, error) {
	var nonce [secretboxNonceSize]byte
	if _, err := io.ReadFull(l.random, nonce[:]); err != nil {
		return nil, err
	}
	return secretbox.Seal(nonce[:], plaintext, &nonce, &l.key), nil
}

func (l *Local) openSecretbox(data []byte) ([]byte, error) {
	if len(data) < secretboxNonceSize+secretbox.Overhead {
		return nil, errors.New("ciphertext too short")
	}

	var nonce [secretboxNonceSize]byte
	copy(nonce[:], data[:secretboxNonceSize])

	plaintext, ok := secretbox.Open(nil, data[secretboxNonceSize:], &nonce, &l.key)
	if !ok {
		return nil, errors.New("message authentication failed")
	}
	return plaintext, nil
}

func (l *Local) sealGCM(plaintext []byte) ([]byte, error) {
	aead, err := l.gcm()
	if err != nil {
		return nil, err
	}

	nonce := make([]byte, aead.NonceSize())
	if _, err := io.ReadFull(l.random, nonce); err != nil {
		return nil, err
	}

	return aead.Seal(nonce, nonce, plaintext, nil), nil
}

func (l *Local) openGCM(data []byte) ([]byte, error) {
	aead, err := l.gcm()
	if err != nil {
		return nil, err
	}

	if len(data) < aead.NonceSize() {
		return nil, errors.New("ciphertext too short")
	}

	nonce := data[:aead.NonceSize()]
	return aead.Open(nil, nonce, data[aead.NonceSize():], nil)
}

func (l *Local) gcm() (stdcipher.AEAD, error) {
	block, err := aes.NewCipher(l.key[:])
	if err != nil {
		return nil, err
	}
	return stdcipher.NewGCM(block)
}

var _ Cipher = (*Local)(nil)
