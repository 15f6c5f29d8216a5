package ai

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/color"
	_ "image/jpeg"
	"image/png"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"travelgram/internal/common"
	"travelgram/internal/dbmongo"
)

type stubFinder map[string]*dbmongo.MediaAsset

func (f stubFinder) FindByID(_ context.Context, _ common.MediaKind, id string) (*dbmongo.MediaAsset, error) {
	if a, ok := f[id]; ok {
		return a, nil
	}
	return nil, fmt.Errorf("%w: image %s", common.ErrNotFound, id)
}

// stubBlobs serves fixed bytes by stored name; only Open is exercised
type stubBlobs map[string][]byte

func (b stubBlobs) Ready() bool { return true }
func (b stubBlobs) Put(context.Context, io.Reader, string, common.BlobMeta) (common.StoredBlob, error) {
	return common.StoredBlob{}, nil
}
func (b stubBlobs) Delete(context.Context, string) error { return nil }
func (b stubBlobs) Open(_ context.Context, name string) (*common.BlobReader, error) {
	data, ok := b[name]
	if !ok {
		return nil, common.ErrNotFound
	}
	return &common.BlobReader{ReadCloser: io.NopCloser(bytes.NewReader(data)), Size: int64(len(data))}, nil
}

func pngBytes(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for x := 0; x < w; x++ {
		for y := 0; y < h; y++ {
			img.Set(x, y, color.NRGBA{R: uint8(x), G: uint8(y), B: 200, A: 255})
		}
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

const storedID = "65f1c0ffee0000000000abcd"

func TestImageSource_Load(t *testing.T) {
	photo := pngBytes(t, 4, 4)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/photo.png":
			w.Header().Set("Content-Type", "image/png")
			_, _ = w.Write(photo)
		case "/huge.png":
			_, _ = w.Write(bytes.Repeat([]byte{1}, 2048))
		default:
			http.NotFound(w, r)
		}
	}))
	defer srv.Close()

	src := NewImageSource(srv.Client(),
		stubFinder{storedID: {Filename: "abc.png", UserID: "u1"}},
		stubBlobs{"abc.png": photo})

	tests := []struct {
		name    string
		ref     string
		want    []byte
		wantErr error
	}{
		{name: "external url", ref: srv.URL + "/photo.png", want: photo},
		{name: "external 404", ref: srv.URL + "/missing.png", wantErr: common.ErrUpstream},
		{name: "bare id", ref: storedID, want: photo},
		{name: "path ending in id", ref: "images/" + storedID, want: photo},
		{name: "own api url", ref: "https://travelgram.example/api/images/" + storedID, want: photo},
		{name: "unknown id", ref: "0123456789abcdef01234567", wantErr: common.ErrNotFound},
		{name: "garbage", ref: "file:///etc/passwd", wantErr: common.ErrValidation},
		{name: "empty", ref: "   ", wantErr: common.ErrValidation},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got, err := src.Load(context.Background(), tc.ref)
			if tc.wantErr != nil {
				assert.ErrorIs(t, err, tc.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}

	t.Run("size cap", func(t *testing.T) {
		capped := NewImageSource(srv.Client(), nil, nil)
		capped.maxBytes = 1024
		_, err := capped.Load(context.Background(), srv.URL+"/huge.png")
		assert.ErrorIs(t, err, common.ErrValidation)
	})
}

func TestPrepareImage(t *testing.T) {
	t.Run("png is re-encoded as jpeg", func(t *testing.T) {
		mimeType, out, err := PrepareImage(pngBytes(t, 8, 6))
		require.NoError(t, err)
		assert.Equal(t, "image/jpeg", mimeType)
		assert.Equal(t, "image/jpeg", http.DetectContentType(out))
	})

	t.Run("large images are shrunk", func(t *testing.T) {
		_, out, err := PrepareImage(pngBytes(t, maxEdge+100, 10))
		require.NoError(t, err)
		img, _, err := image.Decode(bytes.NewReader(out))
		require.NoError(t, err)
		assert.LessOrEqual(t, img.Bounds().Dx(), maxEdge)
	})

	t.Run("undecodable image passes through with sniffed type", func(t *testing.T) {
		webp := append([]byte("RIFF\x00\x00\x00\x00WEBPVP8 "), bytes.Repeat([]byte{0}, 32)...)
		mimeType, out, err := PrepareImage(webp)
		require.NoError(t, err)
		assert.Equal(t, "image/webp", mimeType)
		assert.Equal(t, webp, out)
	})

	t.Run("not an image", func(t *testing.T) {
		_, _, err := PrepareImage([]byte("<html>hello</html>"))
		assert.ErrorIs(t, err, common.ErrValidation)
	})
}

func TestLastSegment(t *testing.T) {
	assert.Equal(t, storedID, lastSegment("http://x/api/images/"+storedID+"?v=2"))
	assert.Equal(t, storedID, lastSegment(storedID+"/"))
	assert.Equal(t, "abc", lastSegment("abc"))
}
