package export

import (
	"context"
	"fmt"
	"os"
	"path"
	"path/filepath"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/rs/zerolog"

	"github.com/de-tools/ledger-sync/pkg/models/domain"
)

type ObjectPutter interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

// S3Mirror uploads every file the wrapped exporter writes to a bucket.
// Upload failures are logged; the local export stays authoritative.
type S3Mirror struct {
	next   Exporter
	client ObjectPutter
	bucket string
	prefix string
}

func NewS3Mirror(next Exporter, client ObjectPutter, bucket, prefix string) *S3Mirror {
	return &S3Mirror{
		next:   next,
		client: client,
		bucket: bucket,
		prefix: prefix,
	}
}

// NewS3MirrorFromEnv builds the S3 client from the default AWS credential chain.
func NewS3MirrorFromEnv(ctx context.Context, next Exporter, region, bucket, prefix string) (*S3Mirror, error) {
	if bucket == "" {
		return nil, fmt.Errorf("bucket cannot be empty")
	}
	opts := []func(*config.LoadOptions) error{}
	if region != "" {
		opts = append(opts, config.WithRegion(region))
	}
	cfg, err := config.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}
	return NewS3Mirror(next, s3.NewFromConfig(cfg), bucket, prefix), nil
}

func (m *S3Mirror) ExportTabular(ctx context.Context, record domain.ResponseRecord, baseName string) ([]string, error) {
	files, err := m.next.ExportTabular(ctx, record, baseName)
	if err != nil {
		return nil, err
	}

	logger := zerolog.Ctx(ctx)
	for _, file := range files {
		key := path.Join(m.prefix, filepath.Base(file))
		if err := m.upload(ctx, file, key); err != nil {
			logger.Warn().Err(err).Str("bucket", m.bucket).Str("key", key).Msg("failed to mirror export")
			continue
		}
		logger.Debug().Str("bucket", m.bucket).Str("key", key).Msg("export mirrored")
	}
	return files, nil
}

func (m *S3Mirror) upload(ctx context.Context, file, key string) error {
	body, err := os.Open(file)
	if err != nil {
		return err
	}
	defer body.Close()

	_, err = m.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket: aws.String(m.bucket),
		Key:    aws.String(key),
		Body:   body,
	})
	return err
}
