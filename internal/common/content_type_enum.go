package common

import (
	"mime"
	"path/filepath"
	"strings"
)

// MediaKind is the kind of asset a user can upload
type MediaKind string

const (
	MediaKindImage MediaKind = "image"
	MediaKindAudio MediaKind = "audio"
)

var imageSubtypes = map[string]bool{
	"jpeg": true,
	"jpg":  true,
	"png":  true,
	"gif":  true,
	"webp": true,
}

var kindExtensions = map[MediaKind]map[string]bool{
	MediaKindImage: {".jpeg": true, ".jpg": true, ".png": true, ".gif": true, ".webp": true},
	MediaKindAudio: {".mp3": true, ".wav": true, ".ogg": true, ".m4a": true, ".aac": true},
}

// String returns the string representation
func (k MediaKind) String() string {
	return string(k)
}

// IsValid checks if the media kind is known
func (k MediaKind) IsValid() bool {
	return k == MediaKindImage || k == MediaKindAudio
}

// FormField is the multipart field carrying the file
func (k MediaKind) FormField() string {
	return string(k)
}

// Collection is the metadata collection holding rows of this kind
func (k MediaKind) Collection() string {
	if k == MediaKindAudio {
		return "audios"
	}
	return "images"
}

func (k MediaKind) AllowsExtension(filename string) bool {
	return kindExtensions[k][strings.ToLower(filepath.Ext(filename))]
}

// AllowsMIME checks the declared content type. Images must name one of the
// allowed subtypes, audio only has to be audio/*.
func (k MediaKind) AllowsMIME(contentType string) bool {
	mediaType, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		return false
	}
	major, minor, ok := strings.Cut(mediaType, "/")
	if !ok {
		return false
	}
	switch k {
	case MediaKindImage:
		return major == "image" && imageSubtypes[minor]
	case MediaKindAudio:
		return major == "audio"
	}
	return false
}
