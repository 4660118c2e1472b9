package mongodb

import (
	"context"

	"github.com/pkg/errors"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type MongoDB struct {
	Database *mongo.Database
}

func NewMongoDB(ctx context.Context, uri string, dbName string) (*MongoDB, error) {
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, errors.Wrap(err, "failed to connect to MongoDB")
	}

	db := client.Database(dbName)
	return &MongoDB{Database: db}, nil
}

// EnsureSessionsCollection creates the sessions collection with schema
// validation. Existing collections are left untouched.
func EnsureSessionsCollection(ctx context.Context, db *mongo.Database) error {
	sessionValidation := bson.M{
		"$jsonSchema": bson.M{
			"bsonType": "object",
			"required": []string{"_id", "session_blob"},
			"properties": bson.M{
				"session_blob": bson.M{"bsonType": "string"},
				"display_name": bson.M{"bsonType": "string"},
				"last_sync":    bson.M{"bsonType": "date"},
			},
		},
	}

	opt := options.CreateCollection().SetValidator(sessionValidation)
	if err := db.CreateCollection(ctx, SessionsCollection, opt); err != nil {
		var cmdErr mongo.CommandError
		if errors.As(err, &cmdErr) && cmdErr.Name == "NamespaceExists" {
			return nil
		}
		return errors.Wrap(err, "failed to create sessions collection")
	}

	return nil
}
