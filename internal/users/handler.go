package users

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"path/filepath"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.uber.org/zap"

	"github.com/arjun/music-app-backend/internal/auth"
	"github.com/arjun/music-app-backend/internal/middleware"
	"github.com/arjun/music-app-backend/internal/models"
	"github.com/arjun/music-app-backend/internal/store"
)

const maxAvatarSize = 10 << 20 // 10 MiB multipart memory cap

// UserStore defines the persistence the user-mutation handlers need.
type UserStore interface {
	GetByID(ctx context.Context, id string) (*models.User, error)
	List(ctx context.Context) ([]models.User, error)
	UpdateFields(ctx context.Context, id string, fields bson.M) (*models.User, error)
	Delete(ctx context.Context, id string) (*models.User, error)
}

// ListCache caches the full user list between mutations.
type ListCache interface {
	Get(ctx context.Context) ([]models.User, error)
	Set(ctx context.Context, users []models.User) error
	Invalidate(ctx context.Context) error
}

// AvatarStore holds the image objects behind avatarFile references.
type AvatarStore interface {
	Upload(ctx context.Context, key string, data []byte, contentType string) error
	Download(ctx context.Context, key string) ([]byte, string, error)
}

// Handler implements the authenticated update endpoints. Every mutating route
// follows the same shape: verify the body token, resolve the target id, $set
// the named fields wholesale, and return the post-update record.
type Handler struct {
	store   UserStore
	cache   ListCache
	avatars AvatarStore
	tokens  *auth.TokenService
	logger  *zap.SugaredLogger
}

func NewHandler(st UserStore, cache ListCache, avatars AvatarStore, tokens *auth.TokenService, logger *zap.SugaredLogger) *Handler {
	return &Handler{store: st, cache: cache, avatars: avatars, tokens: tokens, logger: logger}
}

// UpdateProfile replaces fname, lname and avatarFile on the caller's record.
func (h *Handler) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	var req models.UpdateProfileRequest
	if !h.decode(w, r, &req) {
		return
	}
	if err := req.Validate(); err != nil {
		h.message(w, http.StatusBadRequest, err.Error())
		return
	}

	userID, ok := h.verify(w, req.Token)
	if !ok {
		return
	}

	h.replaceFields(w, r, userID, bson.M{
		"avatarFile": req.AvatarFile,
		"fname":      req.FName,
		"lname":      req.LName,
	})
}

// UpdateSongs replaces the favoriteSongs map wholesale; {} clears it.
func (h *Handler) UpdateSongs(w http.ResponseWriter, r *http.Request) {
	var req models.UpdateSongsRequest
	if !h.decode(w, r, &req) {
		return
	}
	if err := req.Validate(); err != nil {
		h.message(w, http.StatusBadRequest, err.Error())
		return
	}

	userID, ok := h.verify(w, req.Token)
	if !ok {
		return
	}

	h.replaceFields(w, r, userID, bson.M{"favoriteSongs": req.SongList})
}

// UpdateArtists replaces the favoriteArtists map wholesale.
func (h *Handler) UpdateArtists(w http.ResponseWriter, r *http.Request) {
	var req models.UpdateArtistsRequest
	if !h.decode(w, r, &req) {
		return
	}
	if err := req.Validate(); err != nil {
		h.message(w, http.StatusBadRequest, err.Error())
		return
	}

	userID, ok := h.verify(w, req.Token)
	if !ok {
		return
	}

	h.replaceFields(w, r, userID, bson.M{"favoriteArtists": req.ArtistList})
}

// UpdateRecentlyPlayed replaces the recentlyPlayed sequence wholesale.
func (h *Handler) UpdateRecentlyPlayed(w http.ResponseWriter, r *http.Request) {
	var req models.UpdateRecentlyPlayedRequest
	if !h.decode(w, r, &req) {
		return
	}
	if err := req.Validate(); err != nil {
		h.message(w, http.StatusBadRequest, err.Error())
		return
	}

	userID, ok := h.verify(w, req.Token)
	if !ok {
		return
	}

	h.replaceFields(w, r, userID, bson.M{"recentlyPlayed": req.RecentlyPlayed})
}

// UpdatePlaylists replaces the playlists map wholesale.
func (h *Handler) UpdatePlaylists(w http.ResponseWriter, r *http.Request) {
	var req models.UpdatePlaylistsRequest
	if !h.decode(w, r, &req) {
		return
	}
	if err := req.Validate(); err != nil {
		h.message(w, http.StatusBadRequest, err.Error())
		return
	}

	userID, ok := h.verify(w, req.Token)
	if !ok {
		return
	}

	h.replaceFields(w, r, userID, bson.M{"playlists": req.Playlists})
}

// GetUsers returns every user record. Served from the Redis cache when warm.
func (h *Handler) GetUsers(w http.ResponseWriter, r *http.Request) {
	var req models.GetUsersRequest
	if !h.decode(w, r, &req) {
		return
	}

	if _, ok := h.verify(w, req.Token); !ok {
		return
	}

	if cached, err := h.cache.Get(r.Context()); err != nil {
		h.logger.Warnw("user list cache get", "err", err)
	} else if cached != nil {
		h.writeJSON(w, http.StatusOK, map[string]any{"users": cached, "status": "OK"})
		return
	}

	users, err := h.store.List(r.Context())
	if err != nil {
		h.internal(w, "list users", err)
		return
	}
	if err := h.cache.Set(r.Context(), users); err != nil {
		h.logger.Warnw("user list cache set", "err", err)
	}

	h.writeJSON(w, http.StatusOK, map[string]any{"users": users, "status": "OK"})
}

// DeleteUser removes the record with the given id and returns it alongside
// the refreshed list. Deleting an absent id yields a null userDeleted without
// an error.
func (h *Handler) DeleteUser(w http.ResponseWriter, r *http.Request) {
	var req models.DeleteUserRequest
	if !h.decode(w, r, &req) {
		return
	}
	if err := req.Validate(); err != nil {
		h.message(w, http.StatusBadRequest, err.Error())
		return
	}

	userID, ok := h.verify(w, req.Token)
	if !ok {
		return
	}
	if !h.authorize(w, r, userID, req.UserID) {
		return
	}

	deleted, err := h.store.Delete(r.Context(), req.UserID)
	if err != nil {
		h.internal(w, "delete user", err)
		return
	}

	h.invalidate(r.Context())

	users, err := h.store.List(r.Context())
	if err != nil {
		h.internal(w, "list users", err)
		return
	}

	h.writeJSON(w, http.StatusOK, map[string]any{
		"userDeleted": deleted,
		"users":       users,
		"status":      "OK",
	})
}

// EditUser replaces profile fields and userType on an explicit target record.
// The userDeleted response key is historical; clients read the edited user
// from it.
func (h *Handler) EditUser(w http.ResponseWriter, r *http.Request) {
	var req models.EditUserRequest
	if !h.decode(w, r, &req) {
		return
	}
	if err := req.Validate(); err != nil {
		h.message(w, http.StatusBadRequest, err.Error())
		return
	}

	userID, ok := h.verify(w, req.Token)
	if !ok {
		return
	}
	if !h.authorize(w, r, userID, req.UserID) {
		return
	}

	edited, err := h.store.UpdateFields(r.Context(), req.UserID, bson.M{
		"fname":      req.FName,
		"lname":      req.LName,
		"avatarFile": req.AvatarFile,
		"userType":   req.UserType,
	})
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			h.message(w, http.StatusBadRequest, "User not found.")
			return
		}
		h.internal(w, "edit user", err)
		return
	}

	h.invalidate(r.Context())

	users, err := h.store.List(r.Context())
	if err != nil {
		h.internal(w, "list users", err)
		return
	}

	h.writeJSON(w, http.StatusOK, map[string]any{
		"userDeleted": edited,
		"users":       users,
		"status":      "OK",
	})
}

// UploadAvatar stores a multipart image and returns the generated avatarFile
// key. The caller then attaches it to their record via /update-profile.
func (h *Handler) UploadAvatar(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(maxAvatarSize); err != nil {
		h.message(w, http.StatusBadRequest, "Invalid multipart body.")
		return
	}

	file, header, err := r.FormFile("avatar")
	if err != nil {
		h.message(w, http.StatusBadRequest, "avatar file is required.")
		return
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		h.internal(w, "read avatar", err)
		return
	}

	contentType := header.Header.Get("Content-Type")
	if contentType == "" {
		contentType = http.DetectContentType(data)
	}

	key := uuid.New().String() + filepath.Ext(header.Filename)
	if err := h.avatars.Upload(r.Context(), key, data, contentType); err != nil {
		h.internal(w, "upload avatar", err)
		return
	}

	h.logger.Infow("avatar uploaded", "user", middleware.UserIDFrom(r.Context()), "key", key)
	h.writeJSON(w, http.StatusCreated, map[string]any{"avatarFile": key, "status": "OK"})
}

// GetAvatar streams a stored avatar image.
func (h *Handler) GetAvatar(w http.ResponseWriter, r *http.Request) {
	key := chi.URLParam(r, "key")
	data, contentType, err := h.avatars.Download(r.Context(), key)
	if err != nil {
		h.message(w, http.StatusNotFound, "Avatar not found.")
		return
	}

	w.Header().Set("Content-Type", contentType)
	_, _ = w.Write(data)
}

// replaceFields performs the shared $set-and-return step of every
// self-updating route.
func (h *Handler) replaceFields(w http.ResponseWriter, r *http.Request, userID string, fields bson.M) {
	user, err := h.store.UpdateFields(r.Context(), userID, fields)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			h.message(w, http.StatusBadRequest, "User not found.")
			return
		}
		h.internal(w, "update user", err)
		return
	}

	h.invalidate(r.Context())
	h.writeJSON(w, http.StatusOK, map[string]any{"user": user, "status": "OK"})
}

// verify resolves the body token to its subject, responding on failure.
func (h *Handler) verify(w http.ResponseWriter, token string) (string, bool) {
	userID, err := h.tokens.Verify(token)
	if err != nil {
		h.message(w, http.StatusBadRequest, "Verification failed.")
		return "", false
	}
	return userID, true
}

// authorize allows self-service operations; acting on any other record
// requires the caller's userType to be admin.
func (h *Handler) authorize(w http.ResponseWriter, r *http.Request, callerID, targetID string) bool {
	if callerID == targetID {
		return true
	}

	caller, err := h.store.GetByID(r.Context(), callerID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			h.message(w, http.StatusForbidden, "Not allowed.")
			return false
		}
		h.internal(w, "resolve caller", err)
		return false
	}
	if !caller.IsAdmin() {
		h.message(w, http.StatusForbidden, "Not allowed.")
		return false
	}
	return true
}

func (h *Handler) invalidate(ctx context.Context) {
	if err := h.cache.Invalidate(ctx); err != nil {
		h.logger.Warnw("invalidate user list cache", "err", err)
	}
}

func (h *Handler) decode(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		h.message(w, http.StatusBadRequest, "Invalid request body.")
		return false
	}
	return true
}

func (h *Handler) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func (h *Handler) message(w http.ResponseWriter, status int, msg string) {
	h.writeJSON(w, status, map[string]string{"message": msg})
}

// internal logs the real error and returns an opaque body to the client.
func (h *Handler) internal(w http.ResponseWriter, op string, err error) {
	h.logger.Errorw(op, "err", err)
	h.writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
}
