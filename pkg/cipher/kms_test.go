package cipher_test

import (
	"context"
	"errors"
	"slices"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/kms"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/tokenvault/pkg/cipher"
)

// fakeKMS reverses the plaintext bytes and tags the key id, which is enough to
// prove the cipher hands data through untouched.
type fakeKMS struct {
	err      error
	lastKey  string
	encrypts int
	decrypts int
}

func (f *fakeKMS) Encrypt(_ context.Context, in *kms.EncryptInput, _ ...func(*kms.Options)) (*kms.EncryptOutput, error) {
	f.encrypts++
	f.lastKey = aws.ToString(in.KeyId)
	if f.err != nil {
		return nil, f.err
	}
	blob := slices.Clone(in.Plaintext)
	slices.Reverse(blob)
	return &kms.EncryptOutput{CiphertextBlob: blob}, nil
}

func (f *fakeKMS) Decrypt(_ context.Context, in *kms.DecryptInput, _ ...func(*kms.Options)) (*kms.DecryptOutput, error) {
	f.decrypts++
	f.lastKey = aws.ToString(in.KeyId)
	if f.err != nil {
		return nil, f.err
	}
	pt := slices.Clone(in.CiphertextBlob)
	slices.Reverse(pt)
	return &kms.DecryptOutput{Plaintext: pt}, nil
}

func TestNewKMS(t *testing.T) {
	t.Parallel()

	_, err := cipher.NewKMS(nil, "key")
	require.ErrorIs(t, err, cipher.ErrMissingKeyID)

	_, err = cipher.NewKMS(&fakeKMS{}, "")
	require.ErrorIs(t, err, cipher.ErrMissingKeyID)
}

func TestKMS_RoundTrip(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	client := &fakeKMS{}
	c, err := cipher.NewKMS(client, "alias/tokens")
	require.NoError(t, err)

	ct, err := c.Encrypt(ctx, "hello")
	require.NoError(t, err)
	require.NotEqual(t, "hello", ct)

	pt, err := c.Decrypt(ctx, ct)
	require.NoError(t, err)
	require.Equal(t, "hello", pt)

	require.Equal(t, 1, client.encrypts)
	require.Equal(t, 1, client.decrypts)
	require.Equal(t, "alias/tokens", client.lastKey)
}

func TestKMS_Failures(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	sdkErr := errors.New("AccessDeniedException")
	client := &fakeKMS{err: sdkErr}
	c, err := cipher.NewKMS(client, "alias/tokens")
	require.NoError(t, err)

	_, err = c.Encrypt(ctx, "hello")
	require.ErrorIs(t, err, cipher.ErrEncryptionFailed)
	require.ErrorIs(t, err, sdkErr)

	_, err = c.Decrypt(ctx, "aGVsbG8=")
	require.ErrorIs(t, err, cipher.ErrDecryptionFailed)
	require.ErrorIs(t, err, sdkErr)

	_, err = c.Decrypt(ctx, "%%%")
	require.ErrorIs(t, err, cipher.ErrDecryptionFailed)
	require.Equal(t, 1, client.decrypts, "bad base64 never reaches KMS")
}

func TestNewKMSClient(t *testing.T) {
	t.Parallel()

	t.Run("default credential chain", func(t *testing.T) {
		t.Parallel()

		client, err := cipher.NewKMSClient(context.Background(), cipher.KMSConfig{Region: "us-east-1"})
		require.NoError(t, err)
		require.NotNil(t, client.Options().Credentials)
		require.Equal(t, "us-east-1", client.Options().Region)
	})

	t.Run("static credentials", func(t *testing.T) {
		t.Parallel()

		client, err := cipher.NewKMSClient(context.Background(), cipher.KMSConfig{
			Region:    "eu-west-1",
			AccessKey: "AKID",
			SecretKey: "secret",
			Endpoint:  "http://localhost:4566",
		})
		require.NoError(t, err)

		creds, err := client.Options().Credentials.Retrieve(context.Background())
		require.NoError(t, err)
		require.Equal(t, "AKID", creds.AccessKeyID)
		require.Equal(t, "http://localhost:4566", aws.ToString(client.Options().BaseEndpoint))
	})
}
