package testutil

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/dalemusser/studyhub/internal/domain/models"
	"github.com/dalemusser/waffle/pantry/text"
	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"golang.org/x/crypto/bcrypt"
)

// WithChiURLParam adds a chi URL parameter to the request context.
// Calling it again on the same request adds to the existing route context.
func WithChiURLParam(r *http.Request, key, value string) *http.Request {
	rctx, ok := r.Context().Value(chi.RouteCtxKey).(*chi.Context)
	if !ok || rctx == nil {
		rctx = chi.NewRouteContext()
	}
	rctx.URLParams.Add(key, value)
	return r.WithContext(context.WithValue(r.Context(), chi.RouteCtxKey, rctx))
}

// Fixtures provides helper methods for creating test data.
type Fixtures struct {
	db *mongo.Database
	t  *testing.T
}

// NewFixtures creates a new Fixtures instance for the given test database.
func NewFixtures(t *testing.T, db *mongo.Database) *Fixtures {
	t.Helper()
	return &Fixtures{db: db, t: t}
}

// DB returns the underlying database for direct access in tests.
func (f *Fixtures) DB() *mongo.Database {
	return f.db
}

// CreateUser registers a user with the given password (bcrypt, minimum cost).
func (f *Fixtures) CreateUser(ctx context.Context, username, password string) models.User {
	f.t.Helper()

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	if err != nil {
		f.t.Fatalf("failed to hash password: %v", err)
	}
	user := models.User{
		ID:           primitive.NewObjectID(),
		Username:     username,
		PasswordHash: string(hash),
		CreatedAt:    time.Now().UTC(),
	}
	if _, err := f.db.Collection("users").InsertOne(ctx, user); err != nil {
		f.t.Fatalf("failed to create test user: %v", err)
	}
	return user
}

// CreateGroup creates a live group whose roster is the creator followed by members.
func (f *Fixtures) CreateGroup(ctx context.Context, name, subject, creator string, members ...string) models.Group {
	f.t.Helper()
	return f.CreateGroupExpiring(ctx, name, subject, creator, nil, members...)
}

// CreateGroupExpiring creates a group with the given expiration instant (nil for none).
func (f *Fixtures) CreateGroupExpiring(ctx context.Context, name, subject, creator string, expiresAt *time.Time, members ...string) models.Group {
	f.t.Helper()

	now := time.Now().UTC()
	group := models.Group{
		ID:          primitive.NewObjectID(),
		Name:        name,
		NameCI:      text.Fold(name),
		Subject:     subject,
		Description: "Test group description",
		Creator:     creator,
		Members:     append([]string{creator}, members...),
		ExpiresAt:   expiresAt,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if _, err := f.db.Collection("groups").InsertOne(ctx, group); err != nil {
		f.t.Fatalf("failed to create test group: %v", err)
	}
	return group
}

// CreateMessage creates a chat message; file may be nil.
func (f *Fixtures) CreateMessage(ctx context.Context, groupID primitive.ObjectID, sender, content string, file *models.Attachment) models.Message {
	f.t.Helper()

	msg := models.Message{
		ID:        primitive.NewObjectID(),
		GroupID:   groupID,
		Sender:    sender,
		Content:   content,
		File:      file,
		CreatedAt: time.Now().UTC(),
	}
	if _, err := f.db.Collection("messages").InsertOne(ctx, msg); err != nil {
		f.t.Fatalf("failed to create test message: %v", err)
	}
	return msg
}

// CreateTask creates an open task; assignee may be empty.
func (f *Fixtures) CreateTask(ctx context.Context, groupID primitive.ObjectID, title, creator, assignee string) models.Task {
	f.t.Helper()

	task := models.Task{
		ID:        primitive.NewObjectID(),
		GroupID:   groupID,
		Title:     title,
		Creator:   creator,
		CreatedAt: time.Now().UTC(),
	}
	if assignee != "" {
		task.Assignee = &assignee
	}
	if _, err := f.db.Collection("tasks").InsertOne(ctx, task); err != nil {
		f.t.Fatalf("failed to create test task: %v", err)
	}
	return task
}

// Count returns the number of documents in coll matching filter.
func (f *Fixtures) Count(ctx context.Context, coll string, filter bson.M) int64 {
	f.t.Helper()
	n, err := f.db.Collection(coll).CountDocuments(ctx, filter)
	if err != nil {
		f.t.Fatalf("CountDocuments(%s) failed: %v", coll, err)
	}
	return n
}

// Group reloads a group document by ID.
func (f *Fixtures) Group(ctx context.Context, id primitive.ObjectID) models.Group {
	f.t.Helper()
	var g models.Group
	if err := f.db.Collection("groups").FindOne(ctx, bson.M{"_id": id}).Decode(&g); err != nil {
		f.t.Fatalf("failed to load group %s: %v", id.Hex(), err)
	}
	return g
}
