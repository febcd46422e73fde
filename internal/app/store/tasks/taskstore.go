// internal/app/store/tasks/taskstore.go
package taskstore

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
	return &Store{c: db.Collection("tasks")}
}

func (s *Store) Create(ctx context.Context, t models.Task) (models.Task, error) {
	t.ID = primitive.NewObjectID()
	t.Completed = false
	t.CreatedAt = time.Now().UTC()
	if _, err := s.c.InsertOne(ctx, t); err != nil {
		return models.Task{}, err
	}
	return t, nil
}

// GetInGroup loads a task only if it belongs to groupID.
func (s *Store) GetInGroup(ctx context.Context, groupID, taskID primitive.ObjectID) (models.Task, error) {
	var t models.Task
	if err := s.c.FindOne(ctx, bson.M{"_id": taskID, "group_id": groupID}).Decode(&t); err != nil {
		return models.Task{}, err
	}
	return t, nil
}

// ListByGroup returns a group's tasks, open tasks first, then oldest first.
func (s *Store) ListByGroup(ctx context.Context, groupID primitive.ObjectID) ([]models.Task, error) {
	opts := options.Find().SetSort(bson.D{
		{Key: "completed", Value: 1},
		{Key: "created_at", Value: 1},
		{Key: "_id", Value: 1},
	})
	cur, err := s.c.Find(ctx, bson.M{"group_id": groupID}, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var out []models.Task
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// Toggle flips the completion flag in a single pipeline update and returns
// the task as stored afterwards.
func (s *Store) Toggle(ctx context.Context, groupID, taskID primitive.ObjectID) (models.Task, error) {
	pipeline := mongo.Pipeline{
		{{Key: "$set", Value: bson.M{"completed": bson.M{"$not": bson.A{"$completed"}}}}},
	}
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	var t models.Task
	err := s.c.FindOneAndUpdate(ctx, bson.M{"_id": taskID, "group_id": groupID}, pipeline, opts).Decode(&t)
	if err != nil {
		return models.Task{}, err
	}
	return t, nil
}

// Delete removes one task from a group. Returns the number of documents deleted (0 or 1).
func (s *Store) Delete(ctx context.Context, groupID, taskID primitive.ObjectID) (int64, error) {
	res, err := s.c.DeleteOne(ctx, bson.M{"_id": taskID, "group_id": groupID})
	if err != nil {
		return 0, err
	}
	return res.DeletedCount, nil
}

// DeleteByGroup removes all tasks for a group.
// Returns the number of documents deleted.
func (s *Store) DeleteByGroup(ctx context.Context, groupID primitive.ObjectID) (int64, error) {
	res, err := s.c.DeleteMany(ctx, bson.M{"group_id": groupID})
	if err != nil {
		return 0, err
	}
	return res.DeletedCount, nil
}

