package storage

import (
	"bytes"
	"context"
	"errors"
	"io"
	"sync"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"travelgram/internal/common"
)

type fakeObject struct {
	body        []byte
	contentType string
	metadata    map[string]string
}

type fakeS3 struct {
	mu         sync.Mutex
	bucketOK   bool
	objects    map[string]fakeObject
	putErr     error
	deleteHits int
}

func newFakeS3() *fakeS3 {
	return &fakeS3{objects: make(map[string]fakeObject)}
}

func (f *fakeS3) HeadBucket(context.Context, *s3.HeadBucketInput, ...func(*s3.Options)) (*s3.HeadBucketOutput, error) {
	if !f.bucketOK {
		return nil, errors.New("NotFound")
	}
	return &s3.HeadBucketOutput{}, nil
}

func (f *fakeS3) CreateBucket(context.Context, *s3.CreateBucketInput, ...func(*s3.Options)) (*s3.CreateBucketOutput, error) {
	f.bucketOK = true
	return &s3.CreateBucketOutput{}, nil
}

func (f *fakeS3) PutObject(_ context.Context, in *s3.PutObjectInput, _ ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	if f.putErr != nil {
		return nil, f.putErr
	}
	body, err := io.ReadAll(in.Body)
	if err != nil {
		return nil, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.objects[aws.ToString(in.Key)] = fakeObject{body: body, contentType: aws.ToString(in.ContentType), metadata: in.Metadata}
	return &s3.PutObjectOutput{}, nil
}

func (f *fakeS3) GetObject(_ context.Context, in *s3.GetObjectInput, _ ...func(*s3.Options)) (*s3.GetObjectOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	obj, ok := f.objects[aws.ToString(in.Key)]
	if !ok {
		return nil, &types.NoSuchKey{}
	}
	return &s3.GetObjectOutput{
		Body:          io.NopCloser(bytes.NewReader(obj.body)),
		ContentLength: aws.Int64(int64(len(obj.body))),
		ContentType:   aws.String(obj.contentType),
	}, nil
}

func (f *fakeS3) DeleteObject(_ context.Context, in *s3.DeleteObjectInput, _ ...func(*s3.Options)) (*s3.DeleteObjectOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.deleteHits++
	delete(f.objects, aws.ToString(in.Key))
	return &s3.DeleteObjectOutput{}, nil
}

func readyStore(t *testing.T, client *fakeS3) *S3Store {
	t.Helper()
	s := &S3Store{client: client, bucket: "uploads", logger: zap.NewNop()}
	require.NoError(t, s.ensureBucket(context.Background()))
	s.ready.Store(true)
	return s
}

func TestS3Store_RoundTrip(t *testing.T) {
	client := newFakeS3()
	s := readyStore(t, client)
	ctx := context.Background()
	assert.True(t, client.bucketOK, "bucket should be created on demand")

	content := []byte("ID3 fake mp3 payload")
	blob, err := s.Put(ctx, bytes.NewReader(content), "voice memo.MP3", common.BlobMeta{
		OwnerID:      "u1",
		OriginalName: "voice memo.MP3",
		ContentType:  "audio/mpeg",
		Kind:         common.MediaKindAudio,
	})
	require.NoError(t, err)
	assert.Equal(t, blob.ObjectID, blob.StoredName)
	assert.Regexp(t, `^[0-9a-f]{32}\.mp3$`, blob.StoredName)
	assert.Equal(t, int64(len(content)), blob.Size)
	assert.Equal(t, "u1", client.objects[blob.StoredName].metadata["user-id"])

	r, err := s.Open(ctx, blob.StoredName)
	require.NoError(t, err)
	got, err := io.ReadAll(r)
	require.NoError(t, err)
	require.NoError(t, r.Close())
	assert.Equal(t, content, got)
	assert.Equal(t, "audio/mpeg", r.ContentType)

	require.NoError(t, s.Delete(ctx, blob.ObjectID))
	require.NoError(t, s.Delete(ctx, blob.ObjectID))
	assert.Equal(t, 2, client.deleteHits)

	_, err = s.Open(ctx, blob.StoredName)
	assert.ErrorIs(t, err, common.ErrNotFound)
}

func TestS3Store_NotReady(t *testing.T) {
	s := &S3Store{client: newFakeS3(), bucket: "uploads", logger: zap.NewNop()}
	ctx := context.Background()

	_, err := s.Put(ctx, bytes.NewReader([]byte("x")), "a.png", common.BlobMeta{})
	assert.ErrorIs(t, err, common.ErrUnavailable)
	_, err = s.Open(ctx, "a.png")
	assert.ErrorIs(t, err, common.ErrUnavailable)
	assert.ErrorIs(t, s.Delete(ctx, "a.png"), common.ErrUnavailable)
}

func TestS3Store_PutFailures(t *testing.T) {
	client := newFakeS3()
	s := readyStore(t, client)

	// non-seekable bodies are refused before any network call
	_, err := s.Put(context.Background(), io.LimitReader(bytes.NewReader([]byte("abc")), 3), "a.png", common.BlobMeta{})
	assert.ErrorIs(t, err, common.ErrStorage)

	client.putErr = errors.New("connection reset")
	_, err = s.Put(context.Background(), bytes.NewReader([]byte("abc")), "a.png", common.BlobMeta{})
	assert.ErrorIs(t, err, common.ErrStorage)
	assert.Empty(t, client.objects)
}

func TestReaderSize_FromCurrentOffset(t *testing.T) {
	r := bytes.NewReader([]byte("0123456789"))
	_, err := r.Seek(4, io.SeekStart)
	require.NoError(t, err)

	n, err := readerSize(r)
	require.NoError(t, err)
	assert.Equal(t, int64(6), n)

	rest, _ := io.ReadAll(r)
	assert.Equal(t, "456789", string(rest))
}
