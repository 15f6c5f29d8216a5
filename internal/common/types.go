package common

import (
	"io"
	"time"
)

// BlobMeta is attached to a binary object when it is written
type BlobMeta struct {
	OwnerID      string
	OriginalName string
	ContentType  string
	Kind         MediaKind
	Extra        map[string]string
}

// StoredBlob identifies a binary object after a successful write
type StoredBlob struct {
	ObjectID   string
	StoredName string
	Size       int64
}

// BlobReader streams a stored object; callers must Close it
type BlobReader struct {
	io.ReadCloser
	Size        int64
	ContentType string
	UploadedAt  time.Time
}
