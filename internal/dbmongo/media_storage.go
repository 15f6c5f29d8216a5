package dbmongo

import (
	"context"
	"errors"
	"fmt"
	"io"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo/gridfs"
	"go.mongodb.org/mongo-driver/mongo/options"

	"travelgram/internal/common"
)

// MediaStorage is the GridFS backed binary store
type MediaStorage struct {
	gridFS *gridfs.Bucket
	ready  func() bool
}

func NewMediaStorage(mongoClient *MongoClient) *MediaStorage {
	return &MediaStorage{
		gridFS: mongoClient.GridFS,
		ready:  mongoClient.Ready,
	}
}

func (ms *MediaStorage) Ready() bool {
	return ms.ready != nil && ms.ready()
}

func (ms *MediaStorage) Put(ctx context.Context, content io.Reader, suggestedName string, meta common.BlobMeta) (common.StoredBlob, error) {
	if !ms.Ready() {
		return common.StoredBlob{}, fmt.Errorf("%w: binary store is not connected", common.ErrUnavailable)
	}

	storedName, err := common.GenerateStoredName(suggestedName)
	if err != nil {
		return common.StoredBlob{}, fmt.Errorf("%w: generate name: %v", common.ErrStorage, err)
	}

	metadata := bson.M{
		"originalName": meta.OriginalName,
		"contentType":  meta.ContentType,
		"userId":       meta.OwnerID,
		"kind":         meta.Kind.String(),
	}
	for k, v := range meta.Extra {
		if _, taken := metadata[k]; !taken {
			metadata[k] = v
		}
	}

	opts := options.GridFSUpload().SetMetadata(metadata)
	stream, err := ms.gridFS.OpenUploadStream(storedName, opts)
	if err != nil {
		return common.StoredBlob{}, storageErr("open upload stream", err)
	}
	if deadline, ok := ctx.Deadline(); ok {
		_ = stream.SetWriteDeadline(deadline)
	}

	size, err := io.Copy(stream, content)
	if err != nil {
		_ = stream.Abort()
		return common.StoredBlob{}, storageErr("copy", err)
	}
	// Close flushes the last chunk and writes the files document
	if err := stream.Close(); err != nil {
		return common.StoredBlob{}, storageErr("finalize", err)
	}

	fileID, ok := stream.FileID.(primitive.ObjectID)
	if !ok {
		return common.StoredBlob{}, fmt.Errorf("%w: unexpected file id type %T", common.ErrStorage, stream.FileID)
	}

	return common.StoredBlob{
		ObjectID:   fileID.Hex(),
		StoredName: storedName,
		Size:       size,
	}, nil
}

func (ms *MediaStorage) Open(ctx context.Context, storedName string) (*common.BlobReader, error) {
	if !ms.Ready() {
		return nil, fmt.Errorf("%w: binary store is not connected", common.ErrUnavailable)
	}

	stream, err := ms.gridFS.OpenDownloadStreamByName(storedName)
	if err != nil {
		if errors.Is(err, gridfs.ErrFileNotFound) {
			return nil, fmt.Errorf("%w: file %s", common.ErrNotFound, storedName)
		}
		return nil, storageErr("open download stream", err)
	}
	if deadline, ok := ctx.Deadline(); ok {
		_ = stream.SetReadDeadline(deadline)
	}

	file := stream.GetFile()
	var metadata bson.M
	if file.Metadata != nil {
		_ = bson.Unmarshal(file.Metadata, &metadata)
	}

	return &common.BlobReader{
		ReadCloser:  stream,
		Size:        file.Length,
		ContentType: getStringFromMap(metadata, "contentType"),
		UploadedAt:  file.UploadDate,
	}, nil
}

// Delete removes the files document and its chunks. A missing file is not an error.
func (ms *MediaStorage) Delete(ctx context.Context, objectID string) error {
	if !ms.Ready() {
		return fmt.Errorf("%w: binary store is not connected", common.ErrUnavailable)
	}

	oid, err := primitive.ObjectIDFromHex(objectID)
	if err != nil {
		// nothing with that id can exist in this bucket
		return nil
	}
	if err := ms.gridFS.Delete(oid); err != nil {
		if errors.Is(err, gridfs.ErrFileNotFound) {
			return nil
		}
		return storageErr("delete", err)
	}
	return nil
}

func storageErr(op string, err error) error {
	if errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("%w: gridfs %s: %w", common.ErrTimeout, op, err)
	}
	return fmt.Errorf("%w: gridfs %s: %v", common.ErrStorage, op, err)
}

// Helper function for metadata extraction
func getStringFromMap(m bson.M, key string) string {
	if m == nil {
		return ""
	}
	if val, ok := m[key]; ok {
		if str, ok := val.(string); ok {
			return str
		}
	}
	return ""
}
