// internal/app/bootstrap/dbdeps.go
package bootstrap

import (
	"github.com/dalemusser/sasquatch/internal/app/system/graphqlclient"
	"github.com/dalemusser/sasquatch/internal/app/system/payments"
	"github.com/dalemusser/waffle/pantry/storage"
	"go.mongodb.org/mongo-driver/mongo"
)

// DBDeps holds the database and back-end client handles built in ConnectDB.
type DBDeps struct {
	MongoClient   *mongo.Client
	MongoDatabase *mongo.Database

	Payments *payments.Client
	GraphQL  *graphqlclient.Client
	Uploads  storage.Store // nil when uploads are disabled
}
