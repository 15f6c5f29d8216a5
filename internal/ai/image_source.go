package ai

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"io"
	"net/http"
	"strings"

	"github.com/disintegration/imaging"

	"travelgram/internal/common"
	"travelgram/internal/dbmongo"
)

const (
	defaultMaxImageBytes = 10 << 20
	// longest edge sent to the model
	maxEdge = 2048
)

type AssetFinder interface {
	FindByID(ctx context.Context, kind common.MediaKind, id string) (*dbmongo.MediaAsset, error)
}

// ImageSource turns an imageUrl from the client into image bytes. Absolute
// http(s) URLs are fetched; anything else must end in an image id.
type ImageSource struct {
	client   *http.Client
	assets   AssetFinder
	blobs    common.BlobStore
	maxBytes int64
}

func NewImageSource(client *http.Client, assets AssetFinder, blobs common.BlobStore) *ImageSource {
	if client == nil {
		client = http.DefaultClient
	}
	return &ImageSource{client: client, assets: assets, blobs: blobs, maxBytes: defaultMaxImageBytes}
}

func (s *ImageSource) Load(ctx context.Context, ref string) ([]byte, error) {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return nil, fmt.Errorf("%w: imageUrl is required", common.ErrValidation)
	}

	lower := strings.ToLower(ref)
	if strings.HasPrefix(lower, "http://") || strings.HasPrefix(lower, "https://") {
		// our own /api/images/{id} URLs are read straight from the store
		if id := lastSegment(ref); common.IsObjectIDHex(id) && strings.Contains(lower, "/api/images/") {
			return s.loadStored(ctx, id)
		}
		return s.fetch(ctx, ref)
	}
	if id := lastSegment(ref); common.IsObjectIDHex(id) {
		return s.loadStored(ctx, id)
	}
	return nil, fmt.Errorf("%w: imageUrl must be an http(s) URL or an image id", common.ErrValidation)
}

func (s *ImageSource) fetch(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid image URL: %v", common.ErrValidation, err)
	}
	resp, err := s.client.Do(req)
	if err != nil {
		return nil, transportErr("fetch image", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("%w: image fetch returned status %d", common.ErrUpstream, resp.StatusCode)
	}
	return s.readCapped(resp.Body)
}

func (s *ImageSource) loadStored(ctx context.Context, id string) ([]byte, error) {
	asset, err := s.assets.FindByID(ctx, common.MediaKindImage, id)
	if err != nil {
		return nil, err
	}
	reader, err := s.blobs.Open(ctx, asset.Filename)
	if err != nil {
		return nil, err
	}
	defer reader.Close()
	return s.readCapped(reader)
}

func (s *ImageSource) readCapped(r io.Reader) ([]byte, error) {
	data, err := io.ReadAll(io.LimitReader(r, s.maxBytes+1))
	if err != nil {
		return nil, transportErr("read image", err)
	}
	if int64(len(data)) > s.maxBytes {
		return nil, fmt.Errorf("%w: image is larger than %d bytes", common.ErrValidation, s.maxBytes)
	}
	if len(data) == 0 {
		return nil, fmt.Errorf("%w: image is empty", common.ErrValidation)
	}
	return data, nil
}

func lastSegment(ref string) string {
	ref = strings.SplitN(ref, "?", 2)[0]
	ref = strings.TrimRight(ref, "/")
	if i := strings.LastIndex(ref, "/"); i >= 0 {
		return ref[i+1:]
	}
	return ref
}

// PrepareImage normalizes what is sent to the model: decodable images are
// auto-oriented, shrunk to maxEdge and re-encoded as JPEG. Formats imaging
// cannot decode (webp) are passed through with their sniffed type.
func PrepareImage(data []byte) (string, []byte, error) {
	img, err := imaging.Decode(bytes.NewReader(data), imaging.AutoOrientation(true))
	if err != nil {
		mimeType := http.DetectContentType(data)
		if !strings.HasPrefix(mimeType, "image/") {
			return "", nil, fmt.Errorf("%w: content is not an image (%s)", common.ErrValidation, mimeType)
		}
		return mimeType, data, nil
	}

	if b := img.Bounds(); b.Dx() > maxEdge || b.Dy() > maxEdge {
		img = imaging.Fit(img, maxEdge, maxEdge, imaging.Lanczos)
	}
	var buf bytes.Buffer
	if err := imaging.Encode(&buf, flatten(img), imaging.JPEG, imaging.JPEGQuality(85)); err != nil {
		return "", nil, fmt.Errorf("%w: re-encode image: %v", common.ErrValidation, err)
	}
	return "image/jpeg", buf.Bytes(), nil
}

// JPEG has no alpha; composite onto white so transparent PNGs do not turn black
func flatten(img image.Image) image.Image {
	b := img.Bounds()
	bg := imaging.New(b.Dx(), b.Dy(), image.White.C)
	return imaging.Overlay(bg, img, image.Pt(0, 0), 1.0)
}
