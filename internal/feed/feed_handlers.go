package feed

import (
	"net/http"
	"strings"
	"time"

	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"travelgram/internal/common"
)

type FeedHandlers struct {
	FeedSvc FeedUsecase

	// absolute base for media URLs; empty means derive it from the request
	PublicBaseURL string
	Logger        *zap.Logger
}

// Item is the wire shape of an Entry
type Item struct {
	ID           string    `json:"_id"`
	ImageURL     string    `json:"imageUrl"`
	AudioURL     *string   `json:"audioUrl"`
	Description  string    `json:"description"`
	Location     string    `json:"location"`
	UploadDate   time.Time `json:"uploadDate"`
	UserID       string    `json:"userId"`
	Username     string    `json:"username"`
	UserPhotoURL *string   `json:"userPhotoURL"`
}

func (h *FeedHandlers) GetFeed(w http.ResponseWriter, r *http.Request) {
	uid, ok := common.UserIDFromContext(r.Context())
	if !ok {
		common.WriteErrorMessage(w, http.StatusUnauthorized, "user not authenticated")
		return
	}

	entries, err := h.FeedSvc.ComposeFeed(r.Context(), uid)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	common.WriteJSON(w, http.StatusOK, map[string][]Item{"feed": h.render(r, entries)})
}

func (h *FeedHandlers) GetProfileFeed(w http.ResponseWriter, r *http.Request) {
	subject := mux.Vars(r)["userId"]
	if subject == "" {
		common.WriteErrorMessage(w, http.StatusBadRequest, "userId is required")
		return
	}

	entries, err := h.FeedSvc.ComposeProfileFeed(r.Context(), subject)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	common.WriteJSON(w, http.StatusOK, map[string][]Item{"images": h.render(r, entries)})
}

func (h *FeedHandlers) render(r *http.Request, entries []Entry) []Item {
	base := h.baseURL(r)
	items := make([]Item, 0, len(entries))
	for _, e := range entries {
		item := Item{
			ID:          e.Image.IDHex(),
			ImageURL:    base + "/api/images/" + e.Image.IDHex(),
			Description: e.Image.Description,
			Location:    e.Image.Location,
			UploadDate:  e.Image.UploadDate,
			UserID:      e.Image.UserID,
			Username:    e.Username,
		}
		if e.Audio != nil {
			audioURL := base + "/api/audio/" + e.Audio.IDHex()
			item.AudioURL = &audioURL
		}
		if e.PhotoURL != "" {
			photo := e.PhotoURL
			item.UserPhotoURL = &photo
		}
		items = append(items, item)
	}
	return items
}

func (h *FeedHandlers) baseURL(r *http.Request) string {
	if h.PublicBaseURL != "" {
		return strings.TrimRight(h.PublicBaseURL, "/")
	}
	scheme := "http"
	if r.TLS != nil {
		scheme = "https"
	}
	if proto := r.Header.Get("X-Forwarded-Proto"); proto == "http" || proto == "https" {
		scheme = proto
	}
	return scheme + "://" + r.Host
}

func (h *FeedHandlers) fail(w http.ResponseWriter, r *http.Request, err error) {
	if !common.IsClientError(err) && h.Logger != nil {
		h.Logger.Error("feed request failed", zap.String("path", r.URL.Path), zap.Error(err))
	}
	common.WriteError(w, err)
}
