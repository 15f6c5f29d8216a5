package media

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"travelgram/internal/common"
)

func TestStager_Stage(t *testing.T) {
	dir := t.TempDir()
	s := NewStager(dir)

	staged, err := s.Stage(strings.NewReader("hello"), "Beach.PNG", "image/png", 100)
	require.NoError(t, err)

	assert.Equal(t, dir, filepath.Dir(staged.Path))
	assert.Equal(t, ".png", filepath.Ext(staged.Path))
	assert.Equal(t, "Beach.PNG", staged.OriginalName)
	assert.Equal(t, "image/png", staged.ContentType)
	assert.Equal(t, int64(5), staged.Size)

	data, err := os.ReadFile(staged.Path)
	require.NoError(t, err)
	assert.Equal(t, "hello", string(data))

	require.NoError(t, Remove(staged.Path))
	require.NoError(t, Remove(staged.Path), "removing twice is fine")
	require.NoError(t, Remove(""))
}

func TestStager_OversizeIsDetectable(t *testing.T) {
	s := NewStager(t.TempDir())

	staged, err := s.Stage(bytes.NewReader(bytes.Repeat([]byte{7}, 1000)), "big.jpg", "image/jpeg", 10)
	require.NoError(t, err)
	defer Remove(staged.Path)

	// one byte past the limit, never the whole body
	assert.Equal(t, int64(11), staged.Size)
}

type failingReader struct{}

func (failingReader) Read([]byte) (int, error) { return 0, errors.New("client went away") }

func TestStager_CopyFailureRemovesPartialFile(t *testing.T) {
	dir := t.TempDir()
	s := NewStager(dir)

	_, err := s.Stage(failingReader{}, "x.jpg", "image/jpeg", 10)
	assert.ErrorIs(t, err, common.ErrStorage)

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Empty(t, entries)
}
