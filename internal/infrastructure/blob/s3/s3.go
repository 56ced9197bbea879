package s3

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	v4 "github.com/aws/aws-sdk-go-v2/aws/signer/v4"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"go.uber.org/zap"

	"github.com/Nithin3003/cloud-share-it/config"
	"github.com/Nithin3003/cloud-share-it/internal/application/ports"
)

type (
	objectAPI interface {
		PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
		DeleteObject(ctx context.Context, params *s3.DeleteObjectInput, optFns ...func(*s3.Options)) (*s3.DeleteObjectOutput, error)
	}
	presignAPI interface {
		PresignGetObject(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.PresignOptions)) (*v4.PresignedHTTPRequest, error)
	}

	Client struct {
		logger    *zap.Logger
		api       objectAPI
		presigner presignAPI
		region    string
		bucket    string
		endpoint  string
		public    string
	}
)

// New builds the S3 blob store. A custom endpoint (MinIO, LocalStack) switches to
// path-style addressing; PublicEndpoint, when set, is used for presigned links.
func New(
	ctx context.Context,
	logger *zap.Logger,
	cfg config.S3,
) (ports.BlobStore, error) {
	if cfg.BucketUploads == "" {
		return nil, fmt.Errorf("bucket name is required")
	}

	opts := []func(*awsconfig.LoadOptions) error{awsconfig.WithRegion(cfg.Region)}
	if cfg.AccessKeyID != "" {
		opts = append(opts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKeyID, cfg.SecretAccessKey, ""),
		))
	}
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	endpoint := withScheme(cfg.Endpoint)
	public := withScheme(cfg.PublicEndpoint)

	client := s3.NewFromConfig(awsCfg, withEndpoint(endpoint))
	presignBase := client
	if public != "" {
		presignBase = s3.NewFromConfig(awsCfg, withEndpoint(public))
	}

	logger.Info("s3 blob store ready",
		zap.String("bucket", cfg.BucketUploads),
		zap.String("region", cfg.Region),
	)

	return &Client{
		logger:    logger,
		api:       client,
		presigner: s3.NewPresignClient(presignBase),
		region:    cfg.Region,
		bucket:    cfg.BucketUploads,
		endpoint:  endpoint,
		public:    public,
	}, nil
}

func withEndpoint(endpoint string) func(*s3.Options) {
	return func(o *s3.Options) {
		if endpoint != "" {
			o.BaseEndpoint = aws.String(endpoint)
			o.UsePathStyle = true
		}
	}
}

func withScheme(endpoint string) string {
	if endpoint == "" || strings.HasPrefix(endpoint, "http://") || strings.HasPrefix(endpoint, "https://") {
		return strings.TrimRight(endpoint, "/")
	}
	return "http://" + strings.TrimRight(endpoint, "/")
}

// Put uploads body in a single PutObject. The SDK needs a seekable body to compute the
// payload checksum over plain HTTP, so anything else is read into memory first; uploads
// are bounded by the request size cap.
func (c *Client) Put(ctx context.Context, path string, body io.Reader, size int64, contentType string) error {
	if _, ok := body.(io.ReadSeeker); !ok {
		buf := bytes.NewBuffer(make([]byte, 0, max(size, 0)))
		if _, err := io.Copy(buf, body); err != nil {
			return fmt.Errorf("failed to read upload: %w", err)
		}
		body = bytes.NewReader(buf.Bytes())
		size = int64(buf.Len())
	}

	in := &s3.PutObjectInput{
		Bucket:      aws.String(c.bucket),
		Key:         aws.String(path),
		Body:        body,
		ContentType: aws.String(contentType),
	}
	if size >= 0 {
		in.ContentLength = aws.Int64(size)
	}

	if _, err := c.api.PutObject(ctx, in); err != nil {
		return fmt.Errorf("failed to upload to s3: %w", err)
	}
	return nil
}

// Remove is idempotent: S3 reports success for keys that do not exist.
func (c *Client) Remove(ctx context.Context, path string) error {
	_, err := c.api.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(c.bucket),
		Key:    aws.String(path),
	})
	if err != nil {
		return fmt.Errorf("failed to delete from s3: %w", err)
	}
	return nil
}

func (c *Client) SignedURL(ctx context.Context, path string, ttl time.Duration) (string, error) {
	req, err := c.presigner.PresignGetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(c.bucket),
		Key:    aws.String(path),
	}, func(opts *s3.PresignOptions) {
		opts.Expires = ttl
	})
	if err != nil {
		return "", fmt.Errorf("failed to generate presigned URL: %w", err)
	}

	return req.URL, nil
}

func (c *Client) PublicURL(path string) string {
	switch {
	case c.public != "":
		return fmt.Sprintf("%s/%s/%s", c.public, c.bucket, path)
	case c.endpoint != "":
		return fmt.Sprintf("%s/%s/%s", c.endpoint, c.bucket, path)
	}
	return fmt.Sprintf("https://%s.s3.%s.amazonaws.com/%s", c.bucket, c.region, path)
}
