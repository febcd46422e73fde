// Package lifecycle holds the group rules: who may see and change a group,
// how membership changes, and how a group and everything attached to it
// is removed when it expires or its creator deletes it.
//
// Every operation takes the acting identity explicitly. Handlers pass the
// session username; background jobs pass none.
package lifecycle

import (
	"time"

	groupstore "github.com/dalemusser/studyhub/internal/app/store/groups"
	messagestore "github.com/dalemusser/studyhub/internal/app/store/messages"
	taskstore "github.com/dalemusser/studyhub/internal/app/store/tasks"
	"github.com/dalemusser/waffle/pantry/storage"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// Service is safe for concurrent use.
type Service struct {
	db       *mongo.Database
	groups   *groupstore.Store
	messages *messagestore.Store
	tasks    *taskstore.Store
	files    storage.Store
	log      *zap.Logger

	// Now is the clock used for expiration checks. Tests replace it.
	Now func() time.Time
}

// New wires the service to db and the attachment store.
func New(db *mongo.Database, files storage.Store, logger *zap.Logger) *Service {
	return &Service{
		db:       db,
		groups:   groupstore.New(db),
		messages: messagestore.New(db),
		tasks:    taskstore.New(db),
		files:    files,
		log:      logger,
		Now:      func() time.Time { return time.Now().UTC() },
	}
}

// Files returns the attachment store.
func (s *Service) Files() storage.Store {
	return s.files
}

func (s *Service) now() time.Time {
	return s.Now().UTC()
}
