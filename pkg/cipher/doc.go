// Package cipher provides the symmetric encryption used for tokens at rest.
//
// Two implementations satisfy [Cipher]:
//
//   - [Local] derives a 32-byte key by hashing a configured secret with SHA-256 and
//     seals data with NaCl secretbox (default) or AES-256-GCM. The output is
//     base64(nonce || sealed box).
//   - [KMS] sends plaintext to AWS KMS and returns the base64 ciphertext blob. No key
//     material is held locally.
//
// # Usage
//
//	c, err := cipher.NewLocal(os.Getenv("TOKEN_ENCRYPTION_KEY"))
//	if err != nil {
//		return err
//	}
//	ct, err := c.Encrypt(ctx, `{"access_token":"..."}`)
//	pt, err := c.Decrypt(ctx, ct)
//
// With KMS:
//
//	client := kms.NewFromConfig(awsCfg)
//	c, err := cipher.NewKMS(client, "alias/tokenvault")
//
// # Errors
//
// Decrypt returns [ErrDecryptionFailed] for malformed input and failed authentication.
// Use errors.Is to check.
package cipher
