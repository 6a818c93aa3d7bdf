// internal/app/bootstrap/dbdeps.go
package bootstrap

import (
	"github.com/dalemusser/nearby/internal/app/store/docstore"
	"go.mongodb.org/mongo-driver/mongo"
)

// DBDeps holds the backend handles created at startup. The Mongo fields are
// nil when the memory backend is selected; Store is always set.
type DBDeps struct {
	MongoClient   *mongo.Client
	MongoDatabase *mongo.Database
	Store         docstore.Store
}
