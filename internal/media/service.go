package media

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strconv"

	"go.uber.org/zap"

	"travelgram/internal/common"
	"travelgram/internal/dbmongo"
	"travelgram/internal/observability"
)

// AssetStore is the slice of the metadata repository the upload path needs
type AssetStore interface {
	Ready() bool
	Insert(ctx context.Context, asset *dbmongo.MediaAsset) (string, error)
	FindByID(ctx context.Context, kind common.MediaKind, id string) (*dbmongo.MediaAsset, error)
	FindByOwner(ctx context.Context, kind common.MediaKind, ownerID string) ([]*dbmongo.MediaAsset, error)
	DeleteByID(ctx context.Context, kind common.MediaKind, id string) error
}

// MediaUsecase is what the HTTP handlers call into
type MediaUsecase interface {
	UploadMedia(ctx context.Context, req UploadRequest) (UploadResult, error)
	Open(ctx context.Context, kind common.MediaKind, id string) (*dbmongo.MediaAsset, *common.BlobReader, error)
	Delete(ctx context.Context, kind common.MediaKind, id, requesterID string) error
	ListByOwner(ctx context.Context, kind common.MediaKind, ownerID string) ([]*dbmongo.MediaAsset, error)
	MaxBytes(kind common.MediaKind) int64
}

// Limits caps the staged size per media kind
type Limits struct {
	ImageMaxBytes int64
	AudioMaxBytes int64
}

type UploadRequest struct {
	Kind         common.MediaKind
	OwnerID      string
	TempFilePath string
	OriginalName string
	ContentType  string

	Description string
	Location    string

	// audio only
	Duration   *float64
	Transcript string
	ImageID    string
}

type UploadResult struct {
	AssetID    string
	StoredName string
}

type Service struct {
	assets  AssetStore
	blobs   common.BlobStore
	limits  Limits
	logger  *zap.Logger
	metrics *observability.Metrics
}

func NewService(assets AssetStore, blobs common.BlobStore, limits Limits, logger *zap.Logger, metrics *observability.Metrics) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		assets:  assets,
		blobs:   blobs,
		limits:  limits,
		logger:  logger,
		metrics: metrics,
	}
}

func (s *Service) MaxBytes(kind common.MediaKind) int64 {
	if kind == common.MediaKindAudio {
		return s.limits.AudioMaxBytes
	}
	return s.limits.ImageMaxBytes
}

// UploadMedia moves a staged file into the binary store and records its
// metadata row. The staged file is removed on every return path. The binary
// write always completes before the row is written; a failed row write
// leaves an orphaned object, which is logged and counted but not rolled back.
func (s *Service) UploadMedia(ctx context.Context, req UploadRequest) (UploadResult, error) {
	defer func() {
		if err := Remove(req.TempFilePath); err != nil {
			s.logger.Warn("failed to remove staged upload", zap.String("path", req.TempFilePath), zap.Error(err))
		}
	}()

	result, err := s.upload(ctx, req)
	s.metrics.UploadOutcome(req.Kind.String(), outcomeLabel(err))
	return result, err
}

func (s *Service) upload(ctx context.Context, req UploadRequest) (UploadResult, error) {
	if req.TempFilePath == "" {
		return UploadResult{}, common.ErrMissingFile
	}
	info, err := os.Stat(req.TempFilePath)
	if err != nil || info.IsDir() {
		return UploadResult{}, common.ErrMissingFile
	}

	if err := common.ValidateUpload(req.Kind, req.OriginalName, req.ContentType, info.Size(), s.MaxBytes(req.Kind)); err != nil {
		return UploadResult{}, err
	}
	if err := validateExtras(req); err != nil {
		return UploadResult{}, err
	}

	if !s.blobs.Ready() || !s.assets.Ready() {
		return UploadResult{}, fmt.Errorf("%w: storage is still connecting, retry shortly", common.ErrUnavailable)
	}

	if req.ImageID != "" {
		if err := s.checkLinkedImage(ctx, req.ImageID, req.OwnerID); err != nil {
			return UploadResult{}, err
		}
	}

	f, err := os.Open(req.TempFilePath)
	if err != nil {
		return UploadResult{}, common.ErrMissingFile
	}
	defer f.Close()

	blob, err := s.blobs.Put(ctx, f, req.OriginalName, common.BlobMeta{
		OwnerID:      req.OwnerID,
		OriginalName: req.OriginalName,
		ContentType:  req.ContentType,
		Kind:         req.Kind,
		Extra:        blobExtras(req),
	})
	if err != nil {
		s.logger.Error("binary store write failed",
			zap.String("kind", req.Kind.String()),
			zap.String("owner", req.OwnerID),
			zap.Error(err))
		return UploadResult{}, err
	}

	asset := &dbmongo.MediaAsset{
		Kind:         req.Kind,
		Filename:     blob.StoredName,
		OriginalName: req.OriginalName,
		ContentType:  req.ContentType,
		Size:         blob.Size,
		UserID:       req.OwnerID,
		GridFSID:     blob.ObjectID,
		Description:  req.Description,
		Location:     req.Location,
		Duration:     req.Duration,
		Transcript:   req.Transcript,
		ImageID:      req.ImageID,
	}
	id, err := s.assets.Insert(ctx, asset)
	if err != nil {
		s.logger.Error("metadata write failed after binary write, object orphaned",
			zap.String("kind", req.Kind.String()),
			zap.String("object_id", blob.ObjectID),
			zap.String("stored_name", blob.StoredName),
			zap.Error(err))
		s.metrics.OrphanedBlob(req.Kind.String(), "metadata_insert_failed")
		return UploadResult{}, err
	}

	s.logger.Info("media uploaded",
		zap.String("kind", req.Kind.String()),
		zap.String("asset_id", id),
		zap.String("owner", req.OwnerID),
		zap.Int64("size", blob.Size))

	return UploadResult{AssetID: id, StoredName: blob.StoredName}, nil
}

func validateExtras(req UploadRequest) error {
	if req.Kind != common.MediaKindAudio {
		return nil
	}
	if req.Duration != nil && *req.Duration < 0 {
		return fmt.Errorf("%w: duration must not be negative", common.ErrValidation)
	}
	if req.ImageID != "" && !common.IsObjectIDHex(req.ImageID) {
		return fmt.Errorf("%w: imageId %q is not a valid id", common.ErrValidation, req.ImageID)
	}
	return nil
}

func (s *Service) checkLinkedImage(ctx context.Context, imageID, ownerID string) error {
	image, err := s.assets.FindByID(ctx, common.MediaKindImage, imageID)
	if errors.Is(err, common.ErrNotFound) {
		return fmt.Errorf("%w: linked image %s does not exist", common.ErrValidation, imageID)
	}
	if err != nil {
		return err
	}
	if image.UserID != ownerID {
		return fmt.Errorf("%w: linked image belongs to another user", common.ErrForbidden)
	}
	return nil
}

func blobExtras(req UploadRequest) map[string]string {
	extra := map[string]string{}
	if req.Description != "" {
		extra["description"] = req.Description
	}
	if req.Location != "" {
		extra["location"] = req.Location
	}
	if req.Transcript != "" {
		extra["transcript"] = req.Transcript
	}
	if req.ImageID != "" {
		extra["imageId"] = req.ImageID
	}
	if req.Duration != nil {
		extra["duration"] = strconv.FormatFloat(*req.Duration, 'f', -1, 64)
	}
	return extra
}

// Open returns the metadata row and a stream of its bytes; the caller
// closes the stream.
func (s *Service) Open(ctx context.Context, kind common.MediaKind, id string) (*dbmongo.MediaAsset, *common.BlobReader, error) {
	asset, err := s.assets.FindByID(ctx, kind, id)
	if err != nil {
		return nil, nil, err
	}
	reader, err := s.blobs.Open(ctx, asset.Filename)
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			s.logger.Warn("metadata row without binary object",
				zap.String("kind", kind.String()),
				zap.String("asset_id", id),
				zap.String("stored_name", asset.Filename))
		}
		return nil, nil, err
	}
	return asset, reader, nil
}

// Delete removes an asset owned by requesterID. The binary object goes
// first on a best-effort basis; the metadata row is removed regardless.
func (s *Service) Delete(ctx context.Context, kind common.MediaKind, id, requesterID string) error {
	asset, err := s.assets.FindByID(ctx, kind, id)
	if err != nil {
		return err
	}
	if asset.UserID != requesterID {
		return fmt.Errorf("%w: %s %s is owned by another user", common.ErrForbidden, kind, id)
	}

	if err := s.blobs.Delete(ctx, asset.GridFSID); err != nil {
		s.logger.Warn("binary delete failed, removing metadata anyway",
			zap.String("kind", kind.String()),
			zap.String("asset_id", id),
			zap.String("object_id", asset.GridFSID),
			zap.Error(err))
		s.metrics.OrphanedBlob(kind.String(), "blob_delete_failed")
	}

	if err := s.assets.DeleteByID(ctx, kind, id); err != nil {
		return err
	}
	s.logger.Info("media deleted", zap.String("kind", kind.String()), zap.String("asset_id", id))
	return nil
}

func (s *Service) ListByOwner(ctx context.Context, kind common.MediaKind, ownerID string) ([]*dbmongo.MediaAsset, error) {
	return s.assets.FindByOwner(ctx, kind, ownerID)
}

func outcomeLabel(err error) string {
	switch {
	case err == nil:
		return "ok"
	case common.IsClientError(err):
		return "rejected"
	case errors.Is(err, common.ErrUnavailable):
		return "unavailable"
	case errors.Is(err, common.ErrRepository):
		return "repository_error"
	case common.IsTimeout(err):
		return "timeout"
	default:
		return "storage_error"
	}
}
