// internal/app/store/messages/messagestore.go
package messagestore

import (
	"context"
	"time"

	"github.com/dalemusser/studyhub/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type Store struct {
	c *mongo.Collection
}

func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection("messages")}
}

// Create appends a message. A zero ID is assigned; a preset one is kept.
// Messages are never updated afterwards.
func (s *Store) Create(ctx context.Context, m models.Message) (models.Message, error) {
	if m.ID.IsZero() {
		m.ID = primitive.NewObjectID()
	}
	m.CreatedAt = time.Now().UTC()
	if _, err := s.c.InsertOne(ctx, m); err != nil {
		return models.Message{}, err
	}
	return m, nil
}

// GetInGroup loads a message only if it belongs to groupID.
func (s *Store) GetInGroup(ctx context.Context, groupID, msgID primitive.ObjectID) (models.Message, error) {
	var m models.Message
	if err := s.c.FindOne(ctx, bson.M{"_id": msgID, "group_id": groupID}).Decode(&m); err != nil {
		return models.Message{}, err
	}
	return m, nil
}

// ListByGroup returns a group's messages oldest first.
func (s *Store) ListByGroup(ctx context.Context, groupID primitive.ObjectID) ([]models.Message, error) {
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: 1}, {Key: "_id", Value: 1}})
	cur, err := s.c.Find(ctx, bson.M{"group_id": groupID}, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var out []models.Message
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// ListAttachments returns the file references of every message in the group
// that carries an upload.
func (s *Store) ListAttachments(ctx context.Context, groupID primitive.ObjectID) ([]models.Attachment, error) {
	filter := bson.M{"group_id": groupID, "file.path": bson.M{"$exists": true, "$ne": ""}}
	opts := options.Find().SetProjection(bson.M{"file": 1})
	cur, err := s.c.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var out []models.Attachment
	for cur.Next(ctx) {
		var row struct {
			File *models.Attachment `bson:"file"`
		}
		if err := cur.Decode(&row); err != nil {
			return nil, err
		}
		if row.File != nil {
			out = append(out, *row.File)
		}
	}
	return out, cur.Err()
}

// DeleteByGroup removes all messages for a group.
// Returns the number of documents deleted.
func (s *Store) DeleteByGroup(ctx context.Context, groupID primitive.ObjectID) (int64, error) {
	res, err := s.c.DeleteMany(ctx, bson.M{"group_id": groupID})
	if err != nil {
		return 0, err
	}
	return res.DeletedCount, nil
}

