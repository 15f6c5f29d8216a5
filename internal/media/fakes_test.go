package media

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"travelgram/internal/common"
	"travelgram/internal/dbmongo"
)

type memObject struct {
	id          string
	data        []byte
	contentType string
}

// memBlobs is an in-memory BlobStore
type memBlobs struct {
	mu       sync.Mutex
	ready    bool
	byName   map[string]*memObject
	putErr   error
	delErr   error
	deletes  int
	lastMeta common.BlobMeta
}

func newMemBlobs() *memBlobs {
	return &memBlobs{ready: true, byName: map[string]*memObject{}}
}

func (m *memBlobs) Ready() bool { return m.ready }

func (m *memBlobs) Put(_ context.Context, r io.Reader, suggestedName string, meta common.BlobMeta) (common.StoredBlob, error) {
	if !m.ready {
		return common.StoredBlob{}, common.ErrUnavailable
	}
	if m.putErr != nil {
		return common.StoredBlob{}, m.putErr
	}
	data, err := io.ReadAll(r)
	if err != nil {
		return common.StoredBlob{}, err
	}
	name, err := common.GenerateStoredName(suggestedName)
	if err != nil {
		return common.StoredBlob{}, err
	}
	obj := &memObject{id: primitive.NewObjectID().Hex(), data: data, contentType: meta.ContentType}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.byName[name] = obj
	m.lastMeta = meta
	return common.StoredBlob{ObjectID: obj.id, StoredName: name, Size: int64(len(data))}, nil
}

func (m *memBlobs) Open(_ context.Context, storedName string) (*common.BlobReader, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	obj, ok := m.byName[storedName]
	if !ok {
		return nil, fmt.Errorf("%w: %s", common.ErrNotFound, storedName)
	}
	return &common.BlobReader{
		ReadCloser:  io.NopCloser(bytes.NewReader(obj.data)),
		Size:        int64(len(obj.data)),
		ContentType: obj.contentType,
	}, nil
}

func (m *memBlobs) Delete(_ context.Context, objectID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.deletes++
	if m.delErr != nil {
		return m.delErr
	}
	for name, obj := range m.byName {
		if obj.id == objectID {
			delete(m.byName, name)
		}
	}
	return nil
}

func (m *memBlobs) count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.byName)
}

// memAssets is an in-memory AssetStore
type memAssets struct {
	mu        sync.Mutex
	ready     bool
	rows      map[string]*dbmongo.MediaAsset
	insertErr error
	clock     time.Time
}

func newMemAssets() *memAssets {
	return &memAssets{
		ready: true,
		rows:  map[string]*dbmongo.MediaAsset{},
		clock: time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC),
	}
}

func (m *memAssets) Ready() bool { return m.ready }

func (m *memAssets) Insert(_ context.Context, asset *dbmongo.MediaAsset) (string, error) {
	if m.insertErr != nil {
		return "", m.insertErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	asset.ID = primitive.NewObjectID()
	m.clock = m.clock.Add(time.Second)
	asset.UploadDate = m.clock
	cp := *asset
	m.rows[asset.ID.Hex()] = &cp
	return asset.ID.Hex(), nil
}

func (m *memAssets) FindByID(_ context.Context, kind common.MediaKind, id string) (*dbmongo.MediaAsset, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	row, ok := m.rows[id]
	if !ok || row.Kind != kind {
		return nil, fmt.Errorf("%w: %s %s", common.ErrNotFound, kind, id)
	}
	cp := *row
	return &cp, nil
}

func (m *memAssets) FindByOwner(_ context.Context, kind common.MediaKind, ownerID string) ([]*dbmongo.MediaAsset, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := []*dbmongo.MediaAsset{}
	for _, row := range m.rows {
		if row.Kind == kind && row.UserID == ownerID {
			cp := *row
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].UploadDate.After(out[j].UploadDate) })
	return out, nil
}

func (m *memAssets) DeleteByID(_ context.Context, kind common.MediaKind, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	row, ok := m.rows[id]
	if !ok || row.Kind != kind {
		return fmt.Errorf("%w: %s %s", common.ErrNotFound, kind, id)
	}
	delete(m.rows, id)
	return nil
}

func (m *memAssets) count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.rows)
}

// Helper: write a staged file the way the handler would
func stageTemp(t *testing.T, name string, data []byte) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, data, 0o600))
	return path
}

func testLimits() Limits {
	return Limits{ImageMaxBytes: 5 * 1024 * 1024, AudioMaxBytes: 10 * 1024 * 1024}
}
