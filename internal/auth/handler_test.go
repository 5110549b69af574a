package auth

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"

	"github.com/arjun/music-app-backend/internal/models"
	"github.com/arjun/music-app-backend/internal/store"
)

type fakeUserStore struct {
	byEmail map[string]*models.User
}

func newFakeUserStore() *fakeUserStore {
	return &fakeUserStore{byEmail: map[string]*models.User{}}
}

func (f *fakeUserStore) Create(_ context.Context, u *models.User) (*models.User, error) {
	if _, ok := f.byEmail[u.Email]; ok {
		return nil, store.ErrDuplicateEmail
	}
	u.ID = primitive.NewObjectID()
	if u.FavoriteSongs == nil {
		u.FavoriteSongs = map[string]any{}
	}
	if u.FavoriteArtists == nil {
		u.FavoriteArtists = map[string]any{}
	}
	if u.Playlists == nil {
		u.Playlists = map[string]any{}
	}
	if u.RecentlyPlayed == nil {
		u.RecentlyPlayed = []any{}
	}
	f.byEmail[u.Email] = u
	return u, nil
}

func (f *fakeUserStore) GetByEmail(_ context.Context, email string) (*models.User, error) {
	u, ok := f.byEmail[email]
	if !ok {
		return nil, store.ErrNotFound
	}
	return u, nil
}

type noopCache struct{}

func (noopCache) Invalidate(context.Context) error { return nil }

func newTestHandler(t *testing.T) (*Handler, *TokenService) {
	t.Helper()
	tokens := NewTokenService("test-secret")
	return NewHandler(newFakeUserStore(), tokens, noopCache{}, zap.NewNop().Sugar()), tokens
}

func post(t *testing.T, h http.HandlerFunc, body any) *httptest.ResponseRecorder {
	t.Helper()
	data, err := json.Marshal(body)
	require.NoError(t, err)
	req := httptest.NewRequest(http.MethodPost, "/", bytes.NewReader(data))
	rec := httptest.NewRecorder()
	h(rec, req)
	return rec
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body
}

func validRegistration() map[string]any {
	return map[string]any{
		"fname":    "Ada",
		"lname":    "Lovelace",
		"email":    "ada@example.com",
		"password": "secret1",
		"type":     "listener",
	}
}

func TestRegister_Success(t *testing.T) {
	h, tokens := newTestHandler(t)

	rec := post(t, h.Register, validRegistration())
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	body := decodeBody(t, rec)
	assert.Equal(t, "OK", body["status"])

	user, ok := body["user"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "ada@example.com", user["email"])
	assert.Equal(t, map[string]any{}, user["favoriteSongs"])
	assert.Equal(t, []any{}, user["recentlyPlayed"])

	// the bcrypt hash must never reach the client
	_, leaked := user["password"]
	assert.False(t, leaked)

	// the issued token binds the new user's id
	subject, err := tokens.Verify(body["token"].(string))
	require.NoError(t, err)
	assert.Equal(t, user["_id"], subject)
}

func TestRegister_DuplicateEmail(t *testing.T) {
	h, _ := newTestHandler(t)

	rec := post(t, h.Register, validRegistration())
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = post(t, h.Register, validRegistration())
	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "User with the same email already exists.", decodeBody(t, rec)["message"])
}

func TestRegister_Validation(t *testing.T) {
	h, _ := newTestHandler(t)

	cases := []struct {
		name    string
		mutate  func(map[string]any)
		message string
	}{
		{"short password", func(m map[string]any) { m["password"] = "five5" }, "Please enter a valid password with at least six characters."},
		{"bad email", func(m map[string]any) { m["email"] = "not-an-email" }, "Please enter a valid email address."},
		{"blank fname", func(m map[string]any) { m["fname"] = "   " }, "First name is required."},
		{"missing type", func(m map[string]any) { m["type"] = "" }, "User type is required."},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			body := validRegistration()
			tc.mutate(body)
			rec := post(t, h.Register, body)
			require.Equal(t, http.StatusBadRequest, rec.Code)
			assert.Equal(t, tc.message, decodeBody(t, rec)["message"])
		})
	}
}

func TestLogin_Scenario(t *testing.T) {
	h, tokens := newTestHandler(t)

	reg := validRegistration()
	reg["email"] = "a@b.com"
	reg["password"] = "secret1"
	rec := post(t, h.Register, reg)
	require.Equal(t, http.StatusCreated, rec.Code)

	// correct password succeeds and issues a verifiable token
	rec = post(t, h.Login, map[string]any{"email": "a@b.com", "password": "secret1"})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	body := decodeBody(t, rec)
	assert.Equal(t, "OK", body["status"])
	_, err := tokens.Verify(body["token"].(string))
	require.NoError(t, err)

	// wrong password fails with the fixed message
	rec = post(t, h.Login, map[string]any{"email": "a@b.com", "password": "secret2"})
	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "Incorrect password.", decodeBody(t, rec)["message"])
}

func TestLogin_UnknownEmail(t *testing.T) {
	h, _ := newTestHandler(t)

	rec := post(t, h.Login, map[string]any{"email": "ghost@example.com", "password": "secret1"})
	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "User not found.", decodeBody(t, rec)["message"])
}
