package auth

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/arjun/music-app-backend/internal/models"
	"github.com/arjun/music-app-backend/internal/store"
)

// UserStore defines the persistence the auth handlers need.
type UserStore interface {
	Create(ctx context.Context, u *models.User) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
}

// ListCache is invalidated when registration changes the user list.
type ListCache interface {
	Invalidate(ctx context.Context) error
}

// Handler holds the registration and login HTTP handlers.
type Handler struct {
	users  UserStore
	tokens *TokenService
	cache  ListCache
	logger *zap.SugaredLogger
}

func NewHandler(users UserStore, tokens *TokenService, cache ListCache, logger *zap.SugaredLogger) *Handler {
	return &Handler{users: users, tokens: tokens, cache: cache, logger: logger}
}

// Register creates a new user and issues a token for it.
func (h *Handler) Register(w http.ResponseWriter, r *http.Request) {
	var req models.RegisterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.message(w, http.StatusBadRequest, "Invalid request body.")
		return
	}
	if err := req.Validate(); err != nil {
		h.message(w, http.StatusBadRequest, err.Error())
		return
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		h.internal(w, "hash password", err)
		return
	}

	user, err := h.users.Create(r.Context(), &models.User{
		FName:    req.FName,
		LName:    req.LName,
		Email:    req.Email,
		Password: string(hashed),
		UserType: req.Type,
	})
	if err != nil {
		if errors.Is(err, store.ErrDuplicateEmail) {
			h.message(w, http.StatusBadRequest, "User with the same email already exists.")
			return
		}
		h.internal(w, "create user", err)
		return
	}

	token, err := h.tokens.Issue(user.ID.Hex())
	if err != nil {
		h.internal(w, "issue token", err)
		return
	}

	if err := h.cache.Invalidate(r.Context()); err != nil {
		h.logger.Warnw("invalidate user list cache", "err", err)
	}

	h.writeJSON(w, http.StatusCreated, map[string]any{
		"token":  token,
		"user":   user,
		"status": "OK",
	})
}

// Login authenticates a user by email and password and issues a token.
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var req models.LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.message(w, http.StatusBadRequest, "Invalid request body.")
		return
	}
	if err := req.Validate(); err != nil {
		h.message(w, http.StatusBadRequest, err.Error())
		return
	}

	user, err := h.users.GetByEmail(r.Context(), req.Email)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			h.message(w, http.StatusBadRequest, "User not found.")
			return
		}
		h.internal(w, "find user", err)
		return
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(req.Password)); err != nil {
		h.message(w, http.StatusBadRequest, "Incorrect password.")
		return
	}

	token, err := h.tokens.Issue(user.ID.Hex())
	if err != nil {
		h.internal(w, "issue token", err)
		return
	}

	h.writeJSON(w, http.StatusCreated, map[string]any{
		"token":  token,
		"user":   user,
		"status": "OK",
	})
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
