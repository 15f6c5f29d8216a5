package ai

import (
	"encoding/json"
	"fmt"
	"net/http"

	"go.uber.org/zap"

	"travelgram/internal/common"
)

type Handler struct {
	svc    AIUsecase
	logger *zap.Logger
}

func NewHandler(svc AIUsecase, logger *zap.Logger) *Handler {
	return &Handler{svc: svc, logger: logger}
}

type ImageRequest struct {
	ImageURL string `json:"imageUrl"`
}

type AnalysisResponse struct {
	Success  bool      `json:"success"`
	Analysis *Analysis `json:"analysis"`
}

func (h *Handler) GenerateDescription(w http.ResponseWriter, r *http.Request) {
	ref, ok := h.decode(w, r)
	if !ok {
		return
	}
	analysis, err := h.svc.GenerateDescription(r.Context(), ref)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	common.WriteJSON(w, http.StatusOK, AnalysisResponse{Success: true, Analysis: analysis})
}

func (h *Handler) AnalyzeImage(w http.ResponseWriter, r *http.Request) {
	ref, ok := h.decode(w, r)
	if !ok {
		return
	}
	analysis, err := h.svc.AnalyzeImage(r.Context(), ref)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	common.WriteJSON(w, http.StatusOK, AnalysisResponse{Success: true, Analysis: analysis})
}

func (h *Handler) decode(w http.ResponseWriter, r *http.Request) (string, bool) {
	var req ImageRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, 64<<10)).Decode(&req); err != nil {
		common.WriteFailure(w, fmt.Errorf("%w: invalid JSON body", common.ErrValidation))
		return "", false
	}
	if req.ImageURL == "" {
		common.WriteFailure(w, fmt.Errorf("%w: imageUrl is required", common.ErrValidation))
		return "", false
	}
	return req.ImageURL, true
}

func (h *Handler) fail(w http.ResponseWriter, r *http.Request, err error) {
	if !common.IsClientError(err) {
		h.logger.Error("AI request failed", zap.String("path", r.URL.Path), zap.Error(err))
	}
	common.WriteFailure(w, err)
}
