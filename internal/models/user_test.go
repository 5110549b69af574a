package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegisterRequest_Validate(t *testing.T) {
	base := func() RegisterRequest {
		return RegisterRequest{
			FName: " Ada ", LName: "Lovelace", Email: "ada@example.com",
			Password: "secret1", Type: "listener",
		}
	}

	t.Run("valid input is trimmed", func(t *testing.T) {
		r := base()
		require.NoError(t, r.Validate())
		assert.Equal(t, "Ada", r.FName)
	})

	cases := []struct {
		name    string
		mutate  func(*RegisterRequest)
		message string
	}{
		{"blank fname", func(r *RegisterRequest) { r.FName = "  " }, "First name is required."},
		{"blank lname", func(r *RegisterRequest) { r.LName = "" }, "Last name is required."},
		{"blank type", func(r *RegisterRequest) { r.Type = "" }, "User type is required."},
		{"no at sign", func(r *RegisterRequest) { r.Email = "ada.example.com" }, "Please enter a valid email address."},
		{"no tld", func(r *RegisterRequest) { r.Email = "ada@example" }, "Please enter a valid email address."},
		{"spaces in email", func(r *RegisterRequest) { r.Email = "ada lovelace@example.com" }, "Please enter a valid email address."},
		{"short password", func(r *RegisterRequest) { r.Password = "12345" }, "Please enter a valid password with at least six characters."},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			r := base()
			tc.mutate(&r)
			err := r.Validate()
			require.Error(t, err)
			assert.Equal(t, tc.message, err.Error())
		})
	}
}

func TestEmailPattern(t *testing.T) {
	valid := []string{"a@b.co", "first.last@sub.example.com", "UPPER@EXAMPLE.ORG"}
	for _, email := range valid {
		r := RegisterRequest{FName: "A", LName: "B", Email: email, Password: "secret1", Type: "t"}
		assert.NoError(t, r.Validate(), email)
	}
}

func TestUpdateRequests_RequireShapes(t *testing.T) {
	assert.EqualError(t, (&UpdateSongsRequest{}).Validate(), "songList is required.")
	assert.NoError(t, (&UpdateSongsRequest{SongList: map[string]any{}}).Validate())

	assert.EqualError(t, (&UpdateArtistsRequest{}).Validate(), "artistList is required.")
	assert.EqualError(t, (&UpdatePlaylistsRequest{}).Validate(), "playlists is required.")
	assert.EqualError(t, (&UpdateRecentlyPlayedRequest{}).Validate(), "recentlyPlayed is required.")
	assert.NoError(t, (&UpdateRecentlyPlayedRequest{RecentlyPlayed: []any{}}).Validate())
}

func TestIsAdmin(t *testing.T) {
	assert.True(t, (&User{UserType: UserTypeAdmin}).IsAdmin())
	assert.False(t, (&User{UserType: "listener"}).IsAdmin())
}
