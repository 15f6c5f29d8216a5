package media

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"

	"travelgram/internal/common"
)

// StagedFile is an upload buffered on local disk before it is handed to
// the binary store.
type StagedFile struct {
	Path         string
	OriginalName string
	ContentType  string
	Size         int64
}

type Stager struct {
	dir string
}

func NewStager(dir string) *Stager {
	if dir == "" {
		dir = os.TempDir()
	}
	return &Stager{dir: dir}
}

// Stage copies at most limit+1 bytes of r into a fresh file so an oversize
// upload is still detectable by size.
func (s *Stager) Stage(r io.Reader, originalName, contentType string, limit int64) (*StagedFile, error) {
	if err := os.MkdirAll(s.dir, 0o700); err != nil {
		return nil, fmt.Errorf("%w: create staging dir: %v", common.ErrStorage, err)
	}

	name, err := common.GenerateStoredName(originalName)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", common.ErrStorage, err)
	}
	path := filepath.Join(s.dir, name)

	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o600)
	if err != nil {
		return nil, fmt.Errorf("%w: create staging file: %v", common.ErrStorage, err)
	}

	n, copyErr := io.Copy(f, io.LimitReader(r, limit+1))
	closeErr := f.Close()
	if copyErr != nil || closeErr != nil {
		_ = os.Remove(path)
		if copyErr == nil {
			copyErr = closeErr
		}
		var maxErr *http.MaxBytesError
		if errors.As(copyErr, &maxErr) {
			return nil, fmt.Errorf("%w: request body too large", common.ErrValidation)
		}
		return nil, fmt.Errorf("%w: write staging file: %v", common.ErrStorage, copyErr)
	}

	return &StagedFile{
		Path:         path,
		OriginalName: originalName,
		ContentType:  contentType,
		Size:         n,
	}, nil
}

// Remove deletes a staged file; a file that is already gone is fine.
func Remove(path string) error {
	if path == "" {
		return nil
	}
	if err := os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return err
	}
	return nil
}
