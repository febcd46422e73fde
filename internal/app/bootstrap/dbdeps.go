// internal/app/bootstrap/dbdeps.go
package bootstrap

import (
	"github.com/dalemusser/studyhub/internal/app/system/tasks"
	"github.com/dalemusser/waffle/pantry/storage"
	"go.mongodb.org/mongo-driver/mongo"
)

// DBDeps holds database/back-end dependencies for the app.
type DBDeps struct {
	StudyHubMongoClient   *mongo.Client
	StudyHubMongoDatabase *mongo.Database

	// Files holds chat attachments (local disk or S3).
	Files storage.Store

	// Jobs runs periodic background work. Started in Startup, stopped in
	// Shutdown.
	Jobs *tasks.Runner
}
