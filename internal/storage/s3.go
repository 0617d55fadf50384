package storage

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"go.uber.org/zap"

	"flashdeck/internal/config"
)

var _ RowStore = (*S3Store)(nil)

// objectAPI is the slice of the S3 client the store needs.
type objectAPI interface {
	GetObject(ctx context.Context, in *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
	PutObject(ctx context.Context, in *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

// S3Store keeps the deck as a single CSV object. Appends read the object,
// add a line and write it back, so concurrent appenders can lose rows.
type S3Store struct {
	client objectAPI
	bucket string
	key    string
	logger *zap.Logger
}

// OpenS3 builds a client from the default AWS credential chain. Endpoint and
// PathStyle allow S3-compatible servers such as MinIO.
func OpenS3(ctx context.Context, cfg config.S3Config, logger *zap.Logger) (*S3Store, error) {
	if cfg.Bucket == "" {
		return nil, errors.New("s3 bucket required")
	}
	region := cfg.Region
	if region == "" {
		region = "us-east-1"
	}
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(region))
	if err != nil {
		return nil, fmt.Errorf("aws config: %w", err)
	}
	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.PathStyle {
			o.UsePathStyle = true
		}
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
		}
	})
	return newS3Store(client, cfg.Bucket, cfg.Key, logger), nil
}

func newS3Store(client objectAPI, bucket, key string, logger *zap.Logger) *S3Store {
	if key == "" {
		key = "flashcards.csv"
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &S3Store{client: client, bucket: bucket, key: key, logger: logger}
}

func (s *S3Store) ListRows(ctx context.Context) ([]Row, error) {
	data, err := s.read(ctx)
	if err != nil {
		return nil, unavailable(err)
	}
	if len(data) == 0 {
		return nil, nil
	}
	rows, err := decodeCSV(bytes.NewReader(data))
	if err != nil {
		return nil, unavailable(fmt.Errorf("decode s3://%s/%s: %w", s.bucket, s.key, err))
	}
	return rows, nil
}

func (s *S3Store) AppendRow(ctx context.Context, rec Record) error {
	existing, err := s.read(ctx)
	if err != nil {
		return writeFailed(err)
	}
	data, err := appendCSV(existing, rec)
	if err != nil {
		return writeFailed(err)
	}
	_, err = s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(s.key),
		Body:        bytes.NewReader(data),
		ContentType: aws.String("text/csv"),
	})
	if err != nil {
		s.logger.Warn("append row", zap.Error(err))
		return writeFailed(err)
	}
	return nil
}

func (s *S3Store) Close() error { return nil }

// read returns the object body, or nil when the object does not exist yet.
func (s *S3Store) read(ctx context.Context) ([]byte, error) {
	out, err := s.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(s.key),
	})
	if err != nil {
		var missing *types.NoSuchKey
		if errors.As(err, &missing) {
			return nil, nil
		}
		return nil, fmt.Errorf("get s3://%s/%s: %w", s.bucket, s.key, err)
	}
	defer out.Body.Close()
	return io.ReadAll(out.Body)
}
