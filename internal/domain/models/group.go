// internal/domain/models/group.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Group is a study group with an embedded roster.
//
// NOTE:
//   - Members is an ordered set of usernames. It is only ever modified with
//     conditional $push / $pull updates so concurrent joins and leaves on the
//     same group never overwrite each other.
//   - Creator is set once at creation and never rewritten.
//   - PendingDelete is set before a cascade starts; a sweep finishes any group
//     left in that state.
type Group struct {
	ID           primitive.ObjectID `bson:"_id" json:"id"`
	Name         string             `bson:"name" json:"name"`
	NameCI       string             `bson:"name_ci" json:"name_ci"`
	Subject      string             `bson:"subject" json:"subject"`
	CourseNumber *string            `bson:"course_number" json:"course_number"`
	Description  string             `bson:"description" json:"description"`
	VideoLink    *string            `bson:"video_link" json:"video_link"`
	Creator      string             `bson:"creator" json:"creator"`
	Members      []string           `bson:"members" json:"members"`

	ExpiresAt     *time.Time `bson:"expires_at" json:"expires_at"`
	PendingDelete bool       `bson:"pending_delete" json:"pending_delete"`

	CreatedAt time.Time `bson:"created_at" json:"created_at"`
	UpdatedAt time.Time `bson:"updated_at" json:"updated_at"`
}

// HasMember reports whether username is on the roster.
func (g *Group) HasMember(username string) bool {
	for _, m := range g.Members {
		if m == username {
			return true
		}
	}
	return false
}

// IsExpired reports whether the group's expiration instant is at or before now.
func (g *Group) IsExpired(now time.Time) bool {
	return g.ExpiresAt != nil && !g.ExpiresAt.After(now)
}
