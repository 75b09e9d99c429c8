package storage

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"

	"logistics-scheduler-service/internal/platform/obs"
)

// S3ObjectStore keeps backup archives and attachments in one bucket.
type S3ObjectStore struct {
	client *s3.Client
	bucket string
}

type S3Options struct {
	Region string
	Bucket string
	// Endpoint overrides the AWS endpoint (MinIO, LocalStack).
	Endpoint     string
	UsePathStyle bool
}

func NewS3ObjectStore(ctx context.Context, opts S3Options) (*S3ObjectStore, error) {
	if opts.Bucket == "" {
		return nil, errors.New("s3 object store: bucket is required")
	}

	cfg, err := config.LoadDefaultConfig(ctx, config.WithRegion(opts.Region))
	if err != nil {
		return nil, fmt.Errorf("unable to load SDK config: %w", err)
	}

	client := s3.NewFromConfig(cfg, func(o *s3.Options) {
		if opts.Endpoint != "" {
			o.BaseEndpoint = aws.String(opts.Endpoint)
		}
		o.UsePathStyle = opts.UsePathStyle
	})

	return &S3ObjectStore{client: client, bucket: opts.Bucket}, nil
}

func (s *S3ObjectStore) Put(ctx context.Context, key string, body []byte, contentType string) (err error) {
	defer obs.Time(ctx, "s3.Put")(&err)

	_, err = s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(body),
		ContentType: aws.String(contentType),
	})
	if err != nil {
		return fmt.Errorf("unable to upload %q to S3: %w", key, err)
	}
	return nil
}

func (s *S3ObjectStore) Get(ctx context.Context, key string) ([]byte, error) {
	out, err := s.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		var nsk *types.NoSuchKey
		if errors.As(err, &nsk) {
			return nil, fmt.Errorf("get %q: %w", key, ErrObjectNotFound)
		}
		return nil, fmt.Errorf("unable to download %q from S3: %w", key, err)
	}
	defer out.Body.Close()

	b, err := io.ReadAll(out.Body)
	if err != nil {
		return nil, fmt.Errorf("read %q: %w", key, err)
	}
	return b, nil
}

func (s *S3ObjectStore) Delete(ctx context.Context, key string) (err error) {
	defer obs.Time(ctx, "s3.Delete")(&err)

	_, err = s.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return fmt.Errorf("unable to delete %q from S3: %w", key, err)
	}
	return nil
}
