package cipher

import "errors"

var (
	// ErrMissingKey is returned when a local cipher is created without a secret.
	ErrMissingKey = errors.New("cipher: encryption key required")

	// ErrMissingKeyID is returned when a KMS cipher is created without a key id.
	ErrMissingKeyID = errors.New("cipher: kms key id required")

	// ErrEncryptionFailed is returned when plaintext could not be encrypted.
	ErrEncryptionFailed = errors.New("cipher: encryption failed")

	// ErrDecryptionFailed is returned when ciphertext is malformed or fails authentication.
	ErrDecryptionFailed = errors.New("cipher: decryption failed")

	// ErrUnsupportedKind is returned for an unknown cipher kind.
	ErrUnsupportedKind = errors.New("cipher: unsupported kind")

	// ErrAWSConfig is returned when the AWS SDK configuration for KMS cannot be loaded.
	ErrAWSConfig = errors.New("cipher: failed to load aws configuration")

	// ErrUnsupportedAlgorithm is returned for an unknown local algorithm.
	ErrUnsupportedAlgorithm = errors.New("cipher: unsupported algorithm")
)
