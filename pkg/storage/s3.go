package storage

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// Provider represents the S3-compatible storage provider
type Provider string

const (
	ProviderAWS    Provider = "aws"
	ProviderWasabi Provider = "wasabi"
)

// S3Config holds configuration for S3-compatible storage
type S3Config struct {
	Provider        Provider
	AccessKeyID     string
	SecretAccessKey string
	Region          string
	Bucket          string
	Endpoint        string // overrides the provider default, e.g. "s3.ap-southeast-1.wasabisys.com"
	PublicBaseURL   string // when empty, virtual-hosted AWS URLs are built
}

// WasabiEndpoints maps regions to Wasabi endpoints
var WasabiEndpoints = map[string]string{
	"us-east-1":      "s3.us-east-1.wasabisys.com",
	"us-east-2":      "s3.us-east-2.wasabisys.com",
	"us-west-1":      "s3.us-west-1.wasabisys.com",
	"eu-central-1":   "s3.eu-central-1.wasabisys.com",
	"ap-northeast-1": "s3.ap-northeast-1.wasabisys.com",
	"ap-southeast-1": "s3.ap-southeast-1.wasabisys.com",
	"ap-southeast-2": "s3.ap-southeast-2.wasabisys.com",
}

// endpoint resolves the custom endpoint host, or "" for plain AWS.
func (c S3Config) endpoint() string {
	if c.Endpoint != "" {
		return strings.TrimPrefix(strings.TrimPrefix(c.Endpoint, "https://"), "http://")
	}
	if c.Provider == ProviderWasabi {
		if ep, ok := WasabiEndpoints[c.Region]; ok {
			return ep
		}
		return "s3.ap-southeast-1.wasabisys.com"
	}
	return ""
}

// PublicURL builds the URL a stored object is served from.
func (c S3Config) PublicURL(key string) string {
	if c.PublicBaseURL != "" {
		return strings.TrimRight(c.PublicBaseURL, "/") + "/" + key
	}
	if ep := c.endpoint(); ep != "" {
		return fmt.Sprintf("https://%s/%s/%s", ep, c.Bucket, key)
	}
	return fmt.Sprintf("https://%s.s3.%s.amazonaws.com/%s", c.Bucket, c.Region, key)
}

// S3Storage stores uploads in an S3-compatible bucket.
type S3Storage struct {
	client *s3.Client
	cfg    S3Config
}

// NewS3Storage loads AWS config with static credentials. Wasabi and custom
// endpoints use path-style addressing.
func NewS3Storage(ctx context.Context, cfg S3Config) (*S3Storage, error) {
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx,
		awsconfig.WithRegion(cfg.Region),
		awsconfig.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			cfg.AccessKeyID,
			cfg.SecretAccessKey,
			"",
		)),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if ep := cfg.endpoint(); ep != "" {
			o.BaseEndpoint = aws.String("https://" + ep)
			o.UsePathStyle = true
		}
	})
	return &S3Storage{client: client, cfg: cfg}, nil
}

func (s *S3Storage) Put(ctx context.Context, key, contentType string, data []byte) (string, error) {
	_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(s.cfg.Bucket),
		Key:           aws.String(key),
		Body:          bytes.NewReader(data),
		ContentType:   aws.String(contentType),
		ContentLength: aws.Int64(int64(len(data))),
	})
	if err != nil {
		return "", fmt.Errorf("failed to put object %s: %w", key, err)
	}
	return s.cfg.PublicURL(key), nil
}

// Ping checks bucket access by listing at most one key.
func (s *S3Storage) Ping(ctx context.Context) error {
	_, err := s.client.ListObjectsV2(ctx, &s3.ListObjectsV2Input{
		Bucket:  aws.String(s.cfg.Bucket),
		MaxKeys: aws.Int32(1),
	})
	if err != nil {
		return fmt.Errorf("failed to access bucket %s: %w", s.cfg.Bucket, err)
	}
	return nil
}
