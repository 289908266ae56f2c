package cipher

import (
	"context"
	"strings"
)

// Cipher encrypts and decrypts serialized tokens.
// Implementations are safe for concurrent use.
type Cipher interface {
	Encrypt(ctx context.Context, plaintext string) (string, error)
	Decrypt(ctx context.Context, ciphertext string) (string, error)
}

// Kind selects a Cipher implementation.
type Kind string

const (
	// KindLocal encrypts with a key derived from a configured secret.
	KindLocal Kind = "local"
	// KindKMS delegates to AWS Key Management Service.
	KindKMS Kind = "kms"
)

// ParseKind converts a configuration value into a Kind.
func ParseKind(s string) (Kind, error) {
	switch k := Kind(strings.ToLower(strings.TrimSpace(s))); k {
	case KindLocal, KindKMS:
		return k, nil
	case "":
		return KindLocal, nil
	default:
		return "", ErrUnsupportedKind
	}
}
