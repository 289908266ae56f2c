package cipher

import (
	"context"
	"encoding/base64"
	"errors"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/kms"
)

// KMSAPI is the subset of *kms.Client used by KMS.
type KMSAPI interface {
	Encrypt(ctx context.Context, params *kms.EncryptInput, optFns ...func(*kms.Options)) (*kms.EncryptOutput, error)
	Decrypt(ctx context.Context, params *kms.DecryptInput, optFns ...func(*kms.Options)) (*kms.DecryptOutput, error)
}

// KMS delegates encryption to AWS Key Management Service.
type KMS struct {
	client KMSAPI
	keyID  string
}

// NewKMS creates a KMS cipher for the given key id, ARN or alias.
func NewKMS(client KMSAPI, keyID string) (*KMS, error) {
	if client == nil || keyID == "" {
		return nil, ErrMissingKeyID
	}
	return &KMS{client: client, keyID: keyID}, nil
}

// Encrypt returns the base64-encoded KMS ciphertext blob.
func (k *KMS) Encrypt(ctx context.Context, plaintext string) (string, error) {
	out, err := k.client.Encrypt(ctx, &kms.EncryptInput{
		KeyId:     aws.String(k.keyID),
		Plaintext: []byte(plaintext),
	})
	if err != nil {
		return "", errors.Join(ErrEncryptionFailed, err)
	}
	return base64.StdEncoding.EncodeToString(out.CiphertextBlob), nil
}

// Decrypt decodes and decrypts a value produced by Encrypt.
func (k *KMS) Decrypt(ctx context.Context, ciphertext string) (string, error) {
	blob, err := base64.StdEncoding.DecodeString(ciphertext)
	if err != nil {
		return "", errors.Join(ErrDecryptionFailed, err)
	}

	out, err := k.client.Decrypt(ctx, &kms.DecryptInput{
		KeyId:          aws.String(k.keyID),
		CiphertextBlob: blob,
	})
	if err != nil {
		return "", errors.Join(ErrDecryptionFailed, err)
	}
	return string(out.Plaintext), nil
}

var _ Cipher = (*KMS)(nil)
