package media

import (
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"travelgram/internal/common"
	"travelgram/internal/dbmongo"
)

const (
	// room for the multipart framing and the text fields around the file
	formOverhead  = 1 << 20
	maxFieldBytes = 4 << 10
)

// Handler serves one media kind under /api/images or /api/audio
type Handler struct {
	kind   common.MediaKind
	svc    MediaUsecase
	stager *Stager
	logger *zap.Logger
}

func NewHandler(kind common.MediaKind, svc MediaUsecase, stager *Stager, logger *zap.Logger) *Handler {
	return &Handler{kind: kind, svc: svc, stager: stager, logger: logger}
}

type ListResponse struct {
	Success bool                  `json:"success"`
	Count   int                   `json:"count"`
	Data    []*dbmongo.MediaAsset `json:"data"`
}

type UploadResponse struct {
	Success  bool   `json:"success"`
	ImageID  string `json:"imageId,omitempty"`
	AudioID  string `json:"audioId,omitempty"`
	Filename string `json:"filename"`
}

type StatusResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

// Upload streams the multipart body: the file part goes straight to the
// staging dir, text parts are collected as extra fields.
func (h *Handler) Upload(w http.ResponseWriter, r *http.Request) {
	uid, ok := common.UserIDFromContext(r.Context())
	if !ok {
		common.WriteErrorMessage(w, http.StatusUnauthorized, "user not authenticated")
		return
	}

	limit := h.svc.MaxBytes(h.kind)
	r.Body = http.MaxBytesReader(w, r.Body, limit+formOverhead)

	mr, err := r.MultipartReader()
	if err != nil {
		common.WriteError(w, fmt.Errorf("%w: expected a multipart/form-data body", common.ErrValidation))
		return
	}

	var staged *StagedFile
	defer func() {
		if staged != nil {
			_ = Remove(staged.Path)
		}
	}()

	fields := map[string]string{}
	for {
		part, err := mr.NextPart()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			h.fail(w, r, bodyErr(err))
			return
		}

		if part.FileName() != "" {
			if part.FormName() != h.kind.FormField() || staged != nil {
				_, _ = io.Copy(io.Discard, part)
				part.Close()
				continue
			}
			staged, err = h.stager.Stage(part, filepath.Base(part.FileName()), part.Header.Get("Content-Type"), limit)
			part.Close()
			if err != nil {
				h.fail(w, r, err)
				return
			}
			continue
		}

		value, err := io.ReadAll(io.LimitReader(part, maxFieldBytes+1))
		part.Close()
		if err != nil {
			h.fail(w, r, bodyErr(err))
			return
		}
		if len(value) > maxFieldBytes {
			common.WriteError(w, fmt.Errorf("%w: field %q is too long", common.ErrValidation, part.FormName()))
			return
		}
		fields[part.FormName()] = strings.TrimSpace(string(value))
	}

	if staged == nil {
		common.WriteError(w, fmt.Errorf("%w: expected form field %q", common.ErrMissingFile, h.kind.FormField()))
		return
	}

	req := UploadRequest{
		Kind:         h.kind,
		OwnerID:      uid,
		TempFilePath: staged.Path,
		OriginalName: staged.OriginalName,
		ContentType:  staged.ContentType,
		Description:  fields["description"],
	}
	switch h.kind {
	case common.MediaKindImage:
		req.Location = fields["location"]
	case common.MediaKindAudio:
		req.Transcript = fields["transcript"]
		req.ImageID = fields["imageId"]
		if raw := fields["duration"]; raw != "" {
			d, err := strconv.ParseFloat(raw, 64)
			if err != nil {
				common.WriteError(w, fmt.Errorf("%w: duration must be a number of seconds", common.ErrValidation))
				return
			}
			req.Duration = &d
		}
	}

	result, err := h.svc.UploadMedia(r.Context(), req)
	if err != nil {
		h.fail(w, r, err)
		return
	}

	resp := UploadResponse{Success: true, Filename: result.StoredName}
	if h.kind == common.MediaKindAudio {
		resp.AudioID = result.AssetID
	} else {
		resp.ImageID = result.AssetID
	}
	common.WriteJSON(w, http.StatusCreated, resp)
}

// Get streams the stored bytes with the content type recorded at upload
func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	asset, reader, err := h.svc.Open(r.Context(), h.kind, mux.Vars(r)["id"])
	if err != nil {
		h.fail(w, r, err)
		return
	}
	defer reader.Close()

	w.Header().Set("Content-Type", contentTypeFor(asset, reader))
	if reader.Size > 0 {
		w.Header().Set("Content-Length", strconv.FormatInt(reader.Size, 10))
	}
	w.WriteHeader(http.StatusOK)

	if _, err := io.Copy(w, reader); err != nil {
		h.logger.Warn("error streaming media",
			zap.String("kind", h.kind.String()),
			zap.String("asset_id", asset.IDHex()),
			zap.Error(err))
	}
}

func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	uid, ok := common.UserIDFromContext(r.Context())
	if !ok {
		common.WriteErrorMessage(w, http.StatusUnauthorized, "user not authenticated")
		return
	}
	if err := h.svc.Delete(r.Context(), h.kind, mux.Vars(r)["id"], uid); err != nil {
		h.fail(w, r, err)
		return
	}
	common.WriteJSON(w, http.StatusOK, StatusResponse{Success: true, Message: h.kind.String() + " deleted"})
}

// ListMine lists the caller's own uploads, newest first
func (h *Handler) ListMine(w http.ResponseWriter, r *http.Request) {
	uid, ok := common.UserIDFromContext(r.Context())
	if !ok {
		common.WriteErrorMessage(w, http.StatusUnauthorized, "user not authenticated")
		return
	}
	assets, err := h.svc.ListByOwner(r.Context(), h.kind, uid)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	common.WriteJSON(w, http.StatusOK, ListResponse{Success: true, Count: len(assets), Data: assets})
}

func (h *Handler) fail(w http.ResponseWriter, r *http.Request, err error) {
	if !common.IsClientError(err) {
		h.logger.Error("media request failed",
			zap.String("kind", h.kind.String()),
			zap.String("path", r.URL.Path),
			zap.Error(err))
	}
	common.WriteError(w, err)
}

func bodyErr(err error) error {
	var maxErr *http.MaxBytesError
	if errors.As(err, &maxErr) {
		return fmt.Errorf("%w: request body too large", common.ErrValidation)
	}
	return fmt.Errorf("%w: malformed multipart body", common.ErrValidation)
}

func contentTypeFor(asset *dbmongo.MediaAsset, reader *common.BlobReader) string {
	if asset.ContentType != "" {
		return asset.ContentType
	}
	if reader.ContentType != "" {
		return reader.ContentType
	}
	if ct := mime.TypeByExtension(strings.ToLower(filepath.Ext(asset.Filename))); ct != "" {
		return ct
	}
	return "application/octet-stream"
}
