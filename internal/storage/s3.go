// Package storage provides the S3-compatible binary store used when media
// binaries live outside MongoDB (AWS S3, MinIO, R2 and friends).
package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync/atomic"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"go.uber.org/zap"

	"travelgram/internal/common"
	appcfg "travelgram/internal/config"
)

type s3API interface {
	HeadBucket(ctx context.Context, in *s3.HeadBucketInput, optFns ...func(*s3.Options)) (*s3.HeadBucketOutput, error)
	CreateBucket(ctx context.Context, in *s3.CreateBucketInput, optFns ...func(*s3.Options)) (*s3.CreateBucketOutput, error)
	PutObject(ctx context.Context, in *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
	GetObject(ctx context.Context, in *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
	DeleteObject(ctx context.Context, in *s3.DeleteObjectInput, optFns ...func(*s3.Options)) (*s3.DeleteObjectOutput, error)
}

// S3Store keys objects by their generated name, so object id and stored
// name are the same string.
type S3Store struct {
	client s3API
	bucket string
	logger *zap.Logger
	ready  atomic.Bool
}

func NewS3Store(ctx context.Context, c *appcfg.Config, logger *zap.Logger) (*S3Store, error) {
	var opts []func(*config.LoadOptions) error
	opts = append(opts, config.WithRegion(c.Storage.S3Region))

	if c.Storage.S3AccessKey != "" && c.Storage.S3SecretKey != "" {
		opts = append(opts, config.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(c.Storage.S3AccessKey, c.Storage.S3SecretKey, ""),
		))
	}

	awsCfg, err := config.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	var client *s3.Client
	if c.Storage.S3Endpoint != "" {
		client = s3.NewFromConfig(awsCfg, func(o *s3.Options) {
			o.BaseEndpoint = aws.String(c.Storage.S3Endpoint)
			o.UsePathStyle = true // MinIO
		})
	} else {
		client = s3.NewFromConfig(awsCfg)
	}

	store := &S3Store{client: client, bucket: c.Storage.S3Bucket, logger: logger}
	go store.ensureBucketLoop(ctx)
	return store, nil
}

func (s *S3Store) ensureBucketLoop(ctx context.Context) {
	backoff := time.Second
	for {
		err := s.ensureBucket(ctx)
		if err == nil {
			s.ready.Store(true)
			s.logger.Info("s3 bucket ready", zap.String("bucket", s.bucket))
			return
		}
		s.logger.Warn("s3 bucket not ready yet", zap.String("bucket", s.bucket), zap.Error(err))
		select {
		case <-ctx.Done():
			return
		case <-time.After(backoff):
		}
		if backoff < 30*time.Second {
			backoff *= 2
		}
	}
}

// ensureBucket checks if bucket exists, creates it if not
func (s *S3Store) ensureBucket(ctx context.Context) error {
	_, err := s.client.HeadBucket(ctx, &s3.HeadBucketInput{Bucket: aws.String(s.bucket)})
	if err == nil {
		return nil
	}

	_, err = s.client.CreateBucket(ctx, &s3.CreateBucketInput{Bucket: aws.String(s.bucket)})
	if err != nil {
		return fmt.Errorf("bucket %q does not exist and could not be created: %w", s.bucket, err)
	}
	return nil
}

func (s *S3Store) Ready() bool {
	return s.ready.Load()
}

func (s *S3Store) Put(ctx context.Context, r io.Reader, suggestedName string, meta common.BlobMeta) (common.StoredBlob, error) {
	if !s.Ready() {
		return common.StoredBlob{}, fmt.Errorf("%w: binary store is not connected", common.ErrUnavailable)
	}

	key, err := common.GenerateStoredName(suggestedName)
	if err != nil {
		return common.StoredBlob{}, fmt.Errorf("%w: generate name: %v", common.ErrStorage, err)
	}

	size, err := readerSize(r)
	if err != nil {
		return common.StoredBlob{}, fmt.Errorf("%w: %v", common.ErrStorage, err)
	}

	metadata := map[string]string{
		"original-name": meta.OriginalName,
		"user-id":       meta.OwnerID,
		"kind":          meta.Kind.String(),
	}
	for k, v := range meta.Extra {
		if _, taken := metadata[k]; !taken {
			metadata[k] = v
		}
	}

	_, err = s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(s.bucket),
		Key:           aws.String(key),
		Body:          r,
		ContentLength: aws.Int64(size),
		ContentType:   aws.String(meta.ContentType),
		Metadata:      metadata,
	})
	if err != nil {
		return common.StoredBlob{}, s3Err("put", err)
	}

	return common.StoredBlob{ObjectID: key, StoredName: key, Size: size}, nil
}

func (s *S3Store) Open(ctx context.Context, storedName string) (*common.BlobReader, error) {
	if !s.Ready() {
		return nil, fmt.Errorf("%w: binary store is not connected", common.ErrUnavailable)
	}

	out, err := s.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(storedName),
	})
	if err != nil {
		var noKey *types.NoSuchKey
		if errors.As(err, &noKey) {
			return nil, fmt.Errorf("%w: object %s", common.ErrNotFound, storedName)
		}
		return nil, s3Err("get", err)
	}

	blob := &common.BlobReader{
		ReadCloser:  out.Body,
		Size:        aws.ToInt64(out.ContentLength),
		ContentType: aws.ToString(out.ContentType),
	}
	if out.LastModified != nil {
		blob.UploadedAt = *out.LastModified
	}
	return blob, nil
}

// Delete is idempotent because S3 DeleteObject is
func (s *S3Store) Delete(ctx context.Context, objectID string) error {
	if !s.Ready() {
		return fmt.Errorf("%w: binary store is not connected", common.ErrUnavailable)
	}

	_, err := s.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(objectID),
	})
	if err != nil {
		return s3Err("delete", err)
	}
	return nil
}

// readerSize needs a seekable body; staged uploads are always files
func readerSize(r io.Reader) (int64, error) {
	seeker, ok := r.(io.Seeker)
	if !ok {
		return 0, errors.New("s3 upload body must be seekable")
	}
	cur, err := seeker.Seek(0, io.SeekCurrent)
	if err != nil {
		return 0, err
	}
	end, err := seeker.Seek(0, io.SeekEnd)
	if err != nil {
		return 0, err
	}
	if _, err := seeker.Seek(cur, io.SeekStart); err != nil {
		return 0, err
	}
	return end - cur, nil
}

func s3Err(op string, err error) error {
	if errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("%w: s3 %s: %w", common.ErrTimeout, op, err)
	}
	return fmt.Errorf("%w: s3 %s: %v", common.ErrStorage, op, err)
}
