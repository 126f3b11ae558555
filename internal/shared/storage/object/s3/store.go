package s3

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sort"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	s3types "github.com/aws/aws-sdk-go-v2/service/s3/types"

	"github.com/yaroslaavl/recruiter-cv-service/internal/shared/storage/object"
	"github.com/yaroslaavl/recruiter-cv-service/internal/shared/telemetry"
)

// Options configures the S3-backed object store. Endpoint is optional and
// points the client at any S3-compatible backend (MinIO, OCI, B2).
type Options struct {
	Region          string
	Bucket          string
	Endpoint        string
	AccessKeyID     string
	SecretAccessKey string
	ForcePathStyle  bool
}

// Store implements object.ObjectStore using the AWS SDK v2 S3 client.
type Store struct {
	client  *s3.Client
	presign *s3.PresignClient
	bucket  string
}

// New creates an S3-backed object store.
func New(ctx context.Context, opts Options) (*Store, error) {
	if strings.TrimSpace(opts.Bucket) == "" {
		return nil, fmt.Errorf("s3 bucket is required")
	}

	loadOpts := []func(*awsconfig.LoadOptions) error{}
	if opts.Region != "" {
		loadOpts = append(loadOpts, awsconfig.WithRegion(opts.Region))
	}
	if opts.AccessKeyID != "" {
		loadOpts = append(loadOpts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(opts.AccessKeyID, opts.SecretAccessKey, ""),
		))
	}

	cfg, err := awsconfig.LoadDefaultConfig(ctx, loadOpts...)
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}

	client := s3.NewFromConfig(cfg, func(o *s3.Options) {
		if opts.Endpoint != "" {
			o.BaseEndpoint = aws.String(opts.Endpoint)
		}
		o.UsePathStyle = opts.ForcePathStyle
	})

	return &Store{
		client:  client,
		presign: s3.NewPresignClient(client),
		bucket:  opts.Bucket,
	}, nil
}

// EnsureBucket creates the bucket if it does not exist yet.
func (s *Store) EnsureBucket(ctx context.Context) error {
	_, err := s.client.HeadBucket(ctx, &s3.HeadBucketInput{
		Bucket: aws.String(s.bucket),
	})
	if err == nil {
		return nil
	}

	var notFound *s3types.NotFound
	if !errors.As(err, &notFound) {
		return &object.StorageError{Op: "head bucket", Err: err}
	}

	_, err = s.client.CreateBucket(ctx, &s3.CreateBucketInput{
		Bucket: aws.String(s.bucket),
	})
	if err != nil {
		var owned *s3types.BucketAlreadyOwnedByYou
		var exists *s3types.BucketAlreadyExists
		if errors.As(err, &owned) || errors.As(err, &exists) {
			return nil
		}
		return &object.StorageError{Op: "create bucket", Err: err}
	}
	return nil
}

// FindByPrefix returns the single occupant key under prefix. More than one
// match is a leftover from a previous partial failure; the smallest key wins
// and the anomaly is logged.
func (s *Store) FindByPrefix(ctx context.Context, prefix string) (string, error) {
	out, err := s.client.ListObjectsV2(ctx, &s3.ListObjectsV2Input{
		Bucket: aws.String(s.bucket),
		Prefix: aws.String(prefix),
	})
	if err != nil {
		var noBucket *s3types.NoSuchBucket
		if errors.As(err, &noBucket) {
			return "", object.ErrNotFound
		}
		return "", &object.StorageError{Op: "list", Key: prefix, Err: err}
	}

	var keys []string
	for _, obj := range out.Contents {
		if obj.Key != nil && strings.HasPrefix(*obj.Key, prefix) {
			keys = append(keys, *obj.Key)
		}
	}
	if len(keys) == 0 {
		return "", object.ErrNotFound
	}
	sort.Strings(keys)
	if len(keys) > 1 {
		telemetry.Error("object.prefix.multiple_occupants", map[string]any{
			"prefix":  prefix,
			"matches": len(keys),
			"picked":  keys[0],
		})
	}
	return keys[0], nil
}

// Put uploads object content, overwriting any existing object at key.
func (s *Store) Put(ctx context.Context, key string, r io.Reader, size int64, contentType string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	input := &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(key),
		Body:        r,
		ContentType: aws.String(contentType),
	}
	if size > 0 {
		input.ContentLength = aws.Int64(size)
	}

	if _, err := s.client.PutObject(ctx, input); err != nil {
		return &object.StorageError{Op: "put", Key: key, Err: err}
	}
	return nil
}

// Remove deletes an object. S3 DeleteObject already succeeds for missing keys.
func (s *Store) Remove(ctx context.Context, key string) error {
	_, err := s.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		var noKey *s3types.NoSuchKey
		if errors.As(err, &noKey) {
			return nil
		}
		return &object.StorageError{Op: "remove", Key: key, Err: err}
	}
	return nil
}

// PresignGet issues a time-scoped GET URL for key.
func (s *Store) PresignGet(ctx context.Context, key string, ttl time.Duration) (string, error) {
	out, err := s.presign.PresignGetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	}, func(opts *s3.PresignOptions) {
		opts.Expires = ttl
	})
	if err != nil {
		return "", &object.StorageError{Op: "presign", Key: key, Err: err}
	}
	return out.URL, nil
}

// List returns all objects under prefix.
func (s *Store) List(ctx context.Context, prefix string) ([]object.Info, error) {
	var infos []object.Info
	paginator := s3.NewListObjectsV2Paginator(s.client, &s3.ListObjectsV2Input{
		Bucket: aws.String(s.bucket),
		Prefix: aws.String(prefix),
	})
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return nil, &object.StorageError{Op: "list", Key: prefix, Err: err}
		}
		for _, obj := range page.Contents {
			if obj.Key == nil {
				continue
			}
			info := object.Info{Key: *obj.Key}
			if obj.Size != nil {
				info.Size = *obj.Size
			}
			if obj.LastModified != nil {
				info.LastModified = *obj.LastModified
			}
			infos = append(infos, info)
		}
	}
	return infos, nil
}

var _ object.ObjectStore = (*Store)(nil)
