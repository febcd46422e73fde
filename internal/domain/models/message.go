// internal/domain/models/message.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Attachment references an uploaded file. The app never reads the contents;
// Path is the storage key used for deletion, URL is what templates link to.
type Attachment struct {
	URL         string `bson:"url" json:"url"`
	Path        string `bson:"path" json:"path"`
	Name        string `bson:"name" json:"name"`
	ContentType string `bson:"content_type" json:"content_type"`
}

// Message is a chat entry inside a study group. Content may be empty when a
// file is attached.
type Message struct {
	ID        primitive.ObjectID `bson:"_id" json:"id"`
	GroupID   primitive.ObjectID `bson:"group_id" json:"group_id"`
	Sender    string             `bson:"sender" json:"sender"`
	Content   string             `bson:"content,omitempty" json:"content,omitempty"`
	File      *Attachment        `bson:"file,omitempty" json:"file,omitempty"`
	CreatedAt time.Time          `bson:"created_at" json:"created_at"`
}

// HasFile returns true if this message carries an uploaded file.
func (m *Message) HasFile() bool {
	return m.File != nil && m.File.Path != ""
}
