// internal/app/store/groups/groupstore.go
package groupstore

import (
	"context"
	"time"

	"github.com/dalemusser/studyhub/internal/domain/models"
	"github.com/dalemusser/waffle/pantry/text"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type Store struct {
	c *mongo.Collection
}

func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection("groups")}
}

// Info holds the creator-editable fields of a group.
type Info struct {
	Name         string
	Subject      string
	CourseNumber *string
	Description  string
	VideoLink    *string
	ExpiresAt    *time.Time
}

func (s *Store) GetByID(ctx context.Context, id primitive.ObjectID) (models.Group, error) {
	var g models.Group
	if err := s.c.FindOne(ctx, bson.M{"_id": id}).Decode(&g); err != nil {
		return models.Group{}, err
	}
	return g, nil
}

// Create inserts a new group. The creator is always the first roster entry.
func (s *Store) Create(ctx context.Context, g models.Group) (models.Group, error) {
	now := time.Now().UTC()
	g.ID = primitive.NewObjectID()
	g.NameCI = text.Fold(g.Name)
	g.Members = []string{g.Creator}
	g.PendingDelete = false
	g.CreatedAt = now
	g.UpdatedAt = now
	if _, err := s.c.InsertOne(ctx, g); err != nil {
		return models.Group{}, err
	}
	return g, nil
}

// UpdateInfo overwrites the editable fields. Creator and roster are untouched.
func (s *Store) UpdateInfo(ctx context.Context, id primitive.ObjectID, in Info) error {
	set := bson.M{
		"name":          in.Name,
		"name_ci":       text.Fold(in.Name),
		"subject":       in.Subject,
		"course_number": in.CourseNumber,
		"description":   in.Description,
		"video_link":    in.VideoLink,
		"expires_at":    in.ExpiresAt,
		"updated_at":    time.Now().UTC(),
	}
	res, err := s.c.UpdateOne(ctx, bson.M{"_id": id, "pending_delete": false}, bson.M{"$set": set})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return mongo.ErrNoDocuments
	}
	return nil
}

// AddMember appends username to the roster only if it is absent.
// Returns false when the filter did not match (already a member, or no such group).
func (s *Store) AddMember(ctx context.Context, id primitive.ObjectID, username string) (bool, error) {
	res, err := s.c.UpdateOne(ctx,
		bson.M{"_id": id, "pending_delete": false, "members": bson.M{"$ne": username}},
		bson.M{"$push": bson.M{"members": username}},
	)
	if err != nil {
		return false, err
	}
	return res.ModifiedCount > 0, nil
}

// RemoveMember pulls username from the roster only if it is present.
// Returns false when the filter did not match (not a member, or no such group).
func (s *Store) RemoveMember(ctx context.Context, id primitive.ObjectID, username string) (bool, error) {
	res, err := s.c.UpdateOne(ctx,
		bson.M{"_id": id, "pending_delete": false, "members": username},
		bson.M{"$pull": bson.M{"members": username}},
	)
	if err != nil {
		return false, err
	}
	return res.ModifiedCount > 0, nil
}

// activeFilter excludes expired groups and groups awaiting cascade deletion.
func activeFilter(now time.Time) bson.M {
	return bson.M{
		"pending_delete": false,
		"$or": []bson.M{
			{"expires_at": nil},
			{"expires_at": bson.M{"$gt": now}},
		},
	}
}

// Filter narrows ListActive. The zero value lists every subject.
type Filter struct {
	Subject         string
	ExcludeSubjects []string
}

// ListActive returns live groups ordered by name.
func (s *Store) ListActive(ctx context.Context, f Filter, now time.Time) ([]models.Group, error) {
	filter := activeFilter(now)
	switch {
	case f.Subject != "":
		filter["subject"] = f.Subject
	case len(f.ExcludeSubjects) > 0:
		filter["subject"] = bson.M{"$nin": f.ExcludeSubjects}
	}
	opts := options.Find().SetSort(bson.D{{Key: "name_ci", Value: 1}, {Key: "_id", Value: 1}})
	cur, err := s.c.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var out []models.Group
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// ListSweepable returns groups whose expiration has passed or whose cascade
// was started but never finished.
func (s *Store) ListSweepable(ctx context.Context, now time.Time) ([]models.Group, error) {
	filter := bson.M{"$or": []bson.M{
		{"expires_at": bson.M{"$lte": now}},
		{"pending_delete": true},
	}}
	cur, err := s.c.Find(ctx, filter, options.Find().SetSort(bson.D{{Key: "_id", Value: 1}}))
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var out []models.Group
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// MarkPendingDelete flags a group so a later sweep can finish an interrupted cascade.
func (s *Store) MarkPendingDelete(ctx context.Context, id primitive.ObjectID) error {
	res, err := s.c.UpdateByID(ctx, id, bson.M{"$set": bson.M{
		"pending_delete": true,
		"updated_at":     time.Now().UTC(),
	}})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return mongo.ErrNoDocuments
	}
	return nil
}

// Delete removes a group by ID. Returns the number of documents deleted (0 or 1).
func (s *Store) Delete(ctx context.Context, id primitive.ObjectID) (int64, error) {
	res, err := s.c.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return 0, err
	}
	return res.DeletedCount, nil
}
