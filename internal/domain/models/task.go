// internal/domain/models/task.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Task is a shared to-do item inside a study group.
type Task struct {
	ID          primitive.ObjectID `bson:"_id" json:"id"`
	GroupID     primitive.ObjectID `bson:"group_id" json:"group_id"`
	Title       string             `bson:"title" json:"title"`
	Description string             `bson:"description,omitempty" json:"description,omitempty"`
	Assignee    *string            `bson:"assignee" json:"assignee"`
	Creator     string             `bson:"creator" json:"creator"`
	Completed   bool               `bson:"completed" json:"completed"`
	CreatedAt   time.Time          `bson:"created_at" json:"created_at"`
}

// CanDelete reports whether username may delete the task (creator or assignee).
func (t *Task) CanDelete(username string) bool {
	if t.Creator == username {
		return true
	}
	return t.Assignee != nil && *t.Assignee == username
}
