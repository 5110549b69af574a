package models

import (
	"errors"
	"regexp"
	"strings"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// UserTypeAdmin is the only userType value the backend interprets; every
// other value is opaque application data.
const UserTypeAdmin = "admin"

// emailRe matches the permissive RFC-5322-ish pattern used by the mobile
// clients, so both sides accept the same set of addresses.
var emailRe = regexp.MustCompile(`(?i)^(([^<>()\[\].,;:\s@"]+(\.[^<>()\[\].,;:\s@"]+)*)|(".+"))@(([^<>()\[\].,;:\s@"]+\.)+[^<>()\[\].,;:\s@"]{2,})$`)

// User is a document in the users collection. The favorites, playlists and
// recently-played fields are opaque client payload: the backend validates
// that they are maps/arrays but never looks inside.
type User struct {
	ID              primitive.ObjectID `bson:"_id,omitempty" json:"_id"`
	FName           string             `bson:"fname" json:"fname"`
	LName           string             `bson:"lname" json:"lname"`
	Email           string             `bson:"email" json:"email"`
	Password        string             `bson:"password" json:"-"` // bcrypt hash, never serialized
	AvatarFile      string             `bson:"avatarFile" json:"avatarFile"`
	UserType        string             `bson:"userType" json:"userType"`
	FavoriteSongs   map[string]any     `bson:"favoriteSongs" json:"favoriteSongs"`
	FavoriteArtists map[string]any     `bson:"favoriteArtists" json:"favoriteArtists"`
	Playlists       map[string]any     `bson:"playlists" json:"playlists"`
	RecentlyPlayed  []any              `bson:"recentlyPlayed" json:"recentlyPlayed"`
}

// IsAdmin reports whether the user may act on records other than their own.
func (u *User) IsAdmin() bool {
	return u.UserType == UserTypeAdmin
}

// RegisterRequest is the JSON body for POST /register.
type RegisterRequest struct {
	FName    string `json:"fname"`
	LName    string `json:"lname"`
	Email    string `json:"email"`
	Password string `json:"password"`
	Type     string `json:"type"`
}

// Validate trims the textual fields and checks the schema constraints the
// store relies on. The returned error text is client-facing.
func (r *RegisterRequest) Validate() error {
	r.FName = strings.TrimSpace(r.FName)
	r.LName = strings.TrimSpace(r.LName)
	r.Email = strings.TrimSpace(r.Email)
	r.Type = strings.TrimSpace(r.Type)

	if r.FName == "" {
		return errors.New("First name is required.")
	}
	if r.LName == "" {
		return errors.New("Last name is required.")
	}
	if r.Type == "" {
		return errors.New("User type is required.")
	}
	if !emailRe.MatchString(r.Email) {
		return errors.New("Please enter a valid email address.")
	}
	if len(r.Password) < 6 {
		return errors.New("Please enter a valid password with at least six characters.")
	}
	return nil
}

// LoginRequest is the JSON body for POST /login.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (r *LoginRequest) Validate() error {
	r.Email = strings.TrimSpace(r.Email)
	if r.Email == "" || r.Password == "" {
		return errors.New("Email and password are required.")
	}
	return nil
}

// UpdateProfileRequest is the JSON body for POST /update-profile.
type UpdateProfileRequest struct {
	Token      string `json:"token"`
	AvatarFile string `json:"avatarFile"`
	FName      string `json:"fname"`
	LName      string `json:"lname"`
}

func (r *UpdateProfileRequest) Validate() error {
	r.FName = strings.TrimSpace(r.FName)
	r.LName = strings.TrimSpace(r.LName)
	if r.FName == "" {
		return errors.New("First name is required.")
	}
	if r.LName == "" {
		return errors.New("Last name is required.")
	}
	return nil
}

// UpdateSongsRequest is the JSON body for POST /update-songs. SongList
// replaces favoriteSongs wholesale; an empty map clears every favorite.
type UpdateSongsRequest struct {
	Token    string         `json:"token"`
	SongList map[string]any `json:"songList"`
}

func (r *UpdateSongsRequest) Validate() error {
	if r.SongList == nil {
		return errors.New("songList is required.")
	}
	return nil
}

// UpdateArtistsRequest is the JSON body for POST /update-artists.
type UpdateArtistsRequest struct {
	Token      string         `json:"token"`
	ArtistList map[string]any `json:"artistList"`
}

func (r *UpdateArtistsRequest) Validate() error {
	if r.ArtistList == nil {
		return errors.New("artistList is required.")
	}
	return nil
}

// UpdateRecentlyPlayedRequest is the JSON body for POST /update-recently-played.
type UpdateRecentlyPlayedRequest struct {
	Token          string `json:"token"`
	RecentlyPlayed []any  `json:"recentlyPlayed"`
}

func (r *UpdateRecentlyPlayedRequest) Validate() error {
	if r.RecentlyPlayed == nil {
		return errors.New("recentlyPlayed is required.")
	}
	return nil
}

// UpdatePlaylistsRequest is the JSON body for POST /update-playlists.
type UpdatePlaylistsRequest struct {
	Token     string         `json:"token"`
	Playlists map[string]any `json:"playlists"`
}

func (r *UpdatePlaylistsRequest) Validate() error {
	if r.Playlists == nil {
		return errors.New("playlists is required.")
	}
	return nil
}

// GetUsersRequest is the JSON body for POST /get-users.
type GetUsersRequest struct {
	Token string `json:"token"`
}

// DeleteUserRequest is the JSON body for POST /delete-user.
type DeleteUserRequest struct {
	Token  string `json:"token"`
	UserID string `json:"userId"`
}

func (r *DeleteUserRequest) Validate() error {
	if strings.TrimSpace(r.UserID) == "" {
		return errors.New("userId is required.")
	}
	return nil
}

// EditUserRequest is the JSON body for POST /edit-user.
type EditUserRequest struct {
	Token      string `json:"token"`
	UserID     string `json:"userId"`
	FName      string `json:"fname"`
	LName      string `json:"lname"`
	AvatarFile string `json:"avatarFile"`
	UserType   string `json:"userType"`
}

func (r *EditUserRequest) Validate() error {
	r.FName = strings.TrimSpace(r.FName)
	r.LName = strings.TrimSpace(r.LName)
	r.UserType = strings.TrimSpace(r.UserType)
	if strings.TrimSpace(r.UserID) == "" {
		return errors.New("userId is required.")
	}
	if r.FName == "" {
		return errors.New("First name is required.")
	}
	if r.LName == "" {
		return errors.New("Last name is required.")
	}
	if r.UserType == "" {
		return errors.New("User type is required.")
	}
	return nil
}
