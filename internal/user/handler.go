package user

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"travelgram/internal/common"
	"travelgram/internal/dbmysql"
)

// Handler exposes the social graph over /api/users
type Handler struct {
	userService UserService
	logger      *zap.Logger
}

func NewHandler(userService UserService, logger *zap.Logger) *Handler {
	return &Handler{userService: userService, logger: logger}
}

type StatusResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

func (h *Handler) SearchUsers(w http.ResponseWriter, r *http.Request) {
	users, err := h.userService.SearchUsers(r.Context(), r.URL.Query().Get("q"))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	common.WriteJSON(w, http.StatusOK, map[string][]*dbmysql.User{"users": users})
}

func (h *Handler) CreateProfile(w http.ResponseWriter, r *http.Request) {
	uid, ok := common.UserIDFromContext(r.Context())
	if !ok {
		common.WriteErrorMessage(w, http.StatusUnauthorized, "user not authenticated")
		return
	}

	var in ProfileInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		common.WriteError(w, fmt.Errorf("%w: invalid JSON body", common.ErrValidation))
		return
	}

	user, err := h.userService.CreateProfile(r.Context(), uid, in)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	common.WriteJSON(w, http.StatusCreated, user)
}

func (h *Handler) GetProfile(w http.ResponseWriter, r *http.Request) {
	user, err := h.userService.GetProfile(r.Context(), mux.Vars(r)["userId"])
	if err != nil {
		h.fail(w, r, err)
		return
	}
	common.WriteJSON(w, http.StatusOK, user)
}

func (h *Handler) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	uid, ok := common.UserIDFromContext(r.Context())
	if !ok {
		common.WriteErrorMessage(w, http.StatusUnauthorized, "user not authenticated")
		return
	}

	var in ProfileInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		common.WriteError(w, fmt.Errorf("%w: invalid JSON body", common.ErrValidation))
		return
	}

	user, err := h.userService.UpdateProfile(r.Context(), uid, mux.Vars(r)["userId"], in)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	common.WriteJSON(w, http.StatusOK, user)
}

func (h *Handler) Follow(w http.ResponseWriter, r *http.Request) {
	uid, ok := common.UserIDFromContext(r.Context())
	if !ok {
		common.WriteErrorMessage(w, http.StatusUnauthorized, "user not authenticated")
		return
	}
	if err := h.userService.Follow(r.Context(), uid, mux.Vars(r)["userId"]); err != nil {
		h.fail(w, r, err)
		return
	}
	common.WriteJSON(w, http.StatusOK, StatusResponse{Success: true, Message: "User followed"})
}

func (h *Handler) Unfollow(w http.ResponseWriter, r *http.Request) {
	uid, ok := common.UserIDFromContext(r.Context())
	if !ok {
		common.WriteErrorMessage(w, http.StatusUnauthorized, "user not authenticated")
		return
	}
	if err := h.userService.Unfollow(r.Context(), uid, mux.Vars(r)["userId"]); err != nil {
		h.fail(w, r, err)
		return
	}
	common.WriteJSON(w, http.StatusOK, StatusResponse{Success: true, Message: "User unfollowed"})
}

func (h *Handler) ListFollowers(w http.ResponseWriter, r *http.Request) {
	users, err := h.userService.ListFollowers(r.Context(), mux.Vars(r)["userId"])
	if err != nil {
		h.fail(w, r, err)
		return
	}
	common.WriteJSON(w, http.StatusOK, map[string][]*dbmysql.User{"followers": users})
}

func (h *Handler) ListFollowing(w http.ResponseWriter, r *http.Request) {
	users, err := h.userService.ListFollowing(r.Context(), mux.Vars(r)["userId"])
	if err != nil {
		h.fail(w, r, err)
		return
	}
	common.WriteJSON(w, http.StatusOK, map[string][]*dbmysql.User{"following": users})
}

func (h *Handler) fail(w http.ResponseWriter, r *http.Request, err error) {
	if !common.IsClientError(err) {
		h.logger.Error("user request failed", zap.String("path", r.URL.Path), zap.Error(err))
	}
	common.WriteError(w, err)
}
