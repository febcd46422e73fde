package userstore

import (
	"context"

	"github.com/dalemusser/studyhub/internal/app/system/auth"
	"github.com/dalemusser/studyhub/internal/app/system/timeouts"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Fetcher implements auth.UserFetcher so a session whose account no longer
// exists is treated as signed out.
type Fetcher struct {
	users *mongo.Collection
}

// NewFetcher creates a UserFetcher that queries the given database.
func NewFetcher(db *mongo.Database) *Fetcher {
	return &Fetcher{users: db.Collection("users")}
}

// FetchUser returns nil if the user is not found or any error occurs.
func (f *Fetcher) FetchUser(ctx context.Context, username string) *auth.SessionUser {
	if username == "" {
		return nil
	}
	ctx, cancel := context.WithTimeout(ctx, timeouts.Short())
	defer cancel()

	var row struct {
		Username string `bson:"username"`
	}
	opts := options.FindOne().SetProjection(bson.M{"username": 1})
	if err := f.users.FindOne(ctx, bson.M{"username": username}, opts).Decode(&row); err != nil {
		return nil
	}
	return &auth.SessionUser{Username: row.Username}
}
