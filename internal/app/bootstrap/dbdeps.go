// internal/app/bootstrap/dbdeps.go
package bootstrap

import (
	"go.mongodb.org/mongo-driver/mongo"
)

// DBDeps holds database/back-end dependencies for the app.
//
// Background is allocated by ConnectDB and filled by Startup, so the
// long-running pieces it starts reach BuildHandler and Shutdown.
type DBDeps struct {
	FacultrackMongoClient   *mongo.Client
	FacultrackMongoDatabase *mongo.Database

	Background *Background
}
