package storage

import (
	"context"
	"fmt"
	"path"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// S3Config holds the configuration for S3 input fetching.
type S3Config struct {
	Region          string
	Endpoint        string // Optional: for custom S3-compatible endpoints
	AccessKeyID     string // Optional: AWS access key ID
	SecretAccessKey string // Optional: AWS secret access key
}

// S3Fetcher wraps LocalFetcher and adds s3:// input support.
// Remote objects are downloaded to the temp directory before analysis.
type S3Fetcher struct {
	*LocalFetcher
	client *s3.Client
}

// NewS3Fetcher creates a new S3Fetcher instance.
// The tempDir parameter specifies where downloaded files are stored.
// The cfg parameter contains S3 configuration.
func NewS3Fetcher(tempDir string, cfg S3Config) (*S3Fetcher, error) {
	local, err := NewLocalFetcher(tempDir)
	if err != nil {
		return nil, err
	}

	var configOpts []func(*config.LoadOptions) error
	configOpts = append(configOpts, config.WithRegion(cfg.Region))

	// Use static credentials if provided
	if cfg.AccessKeyID != "" && cfg.SecretAccessKey != "" {
		configOpts = append(configOpts, config.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKeyID, cfg.SecretAccessKey, ""),
		))
	}

	awsCfg, err := config.LoadDefaultConfig(context.Background(), configOpts...)
	if err != nil {
		return nil, fmt.Errorf("load AWS config: %w", err)
	}

	var clientOpts []func(*s3.Options)
	if cfg.Endpoint != "" {
		clientOpts = append(clientOpts, func(o *s3.Options) {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
			o.UsePathStyle = true
		})
	}

	client := s3.NewFromConfig(awsCfg, clientOpts...)

	return &S3Fetcher{
		LocalFetcher: local,
		client:       client,
	}, nil
}

// Fetch downloads an s3:// input to the temp directory and returns the
// local path. Non-S3 inputs are resolved by the embedded LocalFetcher.
func (f *S3Fetcher) Fetch(ctx context.Context, input string) (string, error) {
	if !IsS3URL(input) {
		return f.LocalFetcher.Fetch(ctx, input)
	}

	bucket, key, ok := ParseS3URL(input)
	if !ok {
		return "", fmt.Errorf("%w: %s", ErrInvalidS3URL, input)
	}

	out, err := f.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return "", fmt.Errorf("download from S3: %w", err)
	}
	defer out.Body.Close()

	return f.saveTemp(ctx, path.Base(key), out.Body)
}

// Compile-time check that S3Fetcher implements Fetcher.
var _ Fetcher = (*S3Fetcher)(nil)
