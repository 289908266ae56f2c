package cipher

import (
	"context"
	"errors"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/kms"
)

// Config selects and configures a Cipher.
type Config struct {
	Kind      string `env:"TOKEN_CIPHER" envDefault:"local"`
	Secret    string `env:"TOKEN_ENCRYPTION_KEY"`
	Algorithm string `env:"TOKEN_CIPHER_ALGORITHM" envDefault:"secretbox"`
	KMS       KMSConfig
}

// KMSConfig holds AWS KMS settings.
type KMSConfig struct {
	KeyID     string `env:"KMS_KEY_ID"`
	Region    string `env:"KMS_REGION" envDefault:"us-east-1"`
	AccessKey string `env:"KMS_ACCESS_KEY"`
	SecretKey string `env:"KMS_SECRET_KEY"`
	// Endpoint overrides the service URL (LocalStack and similar).
	Endpoint string `env:"KMS_ENDPOINT"`
}

// New builds the Cipher described by cfg.
func New(ctx context.Context, cfg Config) (Cipher, error) {
	kind, err := ParseKind(cfg.Kind)
	if err != nil {
		return nil, err
	}

	switch kind {
	case KindKMS:
		client, err := NewKMSClient(ctx, cfg.KMS)
		if err != nil {
			return nil, err
		}
		return NewKMS(client, cfg.KMS.KeyID)
	default:
		alg, err := ParseAlgorithm(cfg.Algorithm)
		if err != nil {
			return nil, err
		}
		return NewLocal(cfg.Secret, WithAlgorithm(alg))
	}
}

// NewKMSClient creates a KMS client.
// Static credentials are used when AccessKey is set. Otherwise credentials come from
// the SDK default chain (environment, shared config, web identity, instance role).
func NewKMSClient(ctx context.Context, cfg KMSConfig) (*kms.Client, error) {
	awsCfg, err := loadAWSConfig(ctx, cfg.Region, cfg.AccessKey, cfg.SecretKey)
	if err != nil {
		return nil, err
	}

	return kms.NewFromConfig(awsCfg, func(o *kms.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
		}
	}), nil
}

func loadAWSConfig(ctx context.Context, region, accessKey, secretKey string) (aws.Config, error) {
	opts := []func(*config.LoadOptions) error{config.WithRegion(region)}
	if accessKey != "" {
		opts = append(opts, config.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(accessKey, secretKey, ""),
		))
	}

	awsCfg, err := config.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return aws.Config{}, errors.Join(ErrAWSConfig, err)
	}
	return awsCfg, nil
}
