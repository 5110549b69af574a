package store

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/arjun/music-app-backend/internal/models"
)

var (
	// ErrNotFound is returned when no user matches the given id or email.
	ErrNotFound = errors.New("user not found")
	// ErrDuplicateEmail is returned when a create collides with the unique
	// email index.
	ErrDuplicateEmail = errors.New("email already registered")
)

// UserStore handles user document CRUD in MongoDB. Every mutation is a
// single-document $set replace, so atomicity comes from the store itself;
// concurrent writers to the same user are last-writer-wins.
type UserStore struct {
	col *mongo.Collection
}

func NewUserStore(db *mongo.Database) *UserStore {
	return &UserStore{col: db.Collection("users")}
}

// EnsureIndexes creates the unique email index that backs the one-user-per-
// email invariant.
func (s *UserStore) EnsureIndexes(ctx context.Context) error {
	_, err := s.col.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "email", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	if err != nil {
		return fmt.Errorf("mongo ensure indexes: %w", err)
	}
	return nil
}

// Create inserts a new user and returns it with the assigned id. The opaque
// sub-documents are initialized to empty so they serialize as {} / [].
func (s *UserStore) Create(ctx context.Context, u *models.User) (*models.User, error) {
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

	res, err := s.col.InsertOne(ctx, u)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return nil, ErrDuplicateEmail
		}
		return nil, fmt.Errorf("mongo insert user: %w", err)
	}
	u.ID = res.InsertedID.(primitive.ObjectID)
	return u, nil
}

// GetByEmail looks up the user with the given login email.
func (s *UserStore) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	var u models.User
	err := s.col.FindOne(ctx, bson.M{"email": email}).Decode(&u)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("mongo find user by email: %w", err)
	}
	return &u, nil
}

// GetByID looks up a user by its hex document id.
func (s *UserStore) GetByID(ctx context.Context, id string) (*models.User, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, ErrNotFound
	}
	var u models.User
	if err := s.col.FindOne(ctx, bson.M{"_id": oid}).Decode(&u); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("mongo find user by id: %w", err)
	}
	return &u, nil
}

// List returns every user record. No pagination; the caller owns that gap.
func (s *UserStore) List(ctx context.Context) ([]models.User, error) {
	cur, err := s.col.Find(ctx, bson.M{})
	if err != nil {
		return nil, fmt.Errorf("mongo list users: %w", err)
	}
	defer cur.Close(ctx)

	users := []models.User{}
	if err := cur.All(ctx, &users); err != nil {
		return nil, fmt.Errorf("mongo decode users: %w", err)
	}
	return users, nil
}

// UpdateFields overwrites the named fields on the matching record with the
// exact values supplied (full-field replace, never a merge) and returns the
// post-update document. Fails with ErrNotFound when no record matches.
func (s *UserStore) UpdateFields(ctx context.Context, id string, fields bson.M) (*models.User, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, ErrNotFound
	}

	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	var u models.User
	err = s.col.FindOneAndUpdate(ctx, bson.M{"_id": oid}, bson.M{"$set": fields}, opts).Decode(&u)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("mongo update user: %w", err)
	}
	return &u, nil
}

// Delete removes the record with the given id and returns it. A missing id
// is not an error: the removed-record indicator is simply nil.
func (s *UserStore) Delete(ctx context.Context, id string) (*models.User, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, nil
	}

	var u models.User
	err = s.col.FindOneAndDelete(ctx, bson.M{"_id": oid}).Decode(&u)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, nil
		}
		return nil, fmt.Errorf("mongo delete user: %w", err)
	}
	return &u, nil
}
