package mongodb

import (
	"context"

	"garminbridge/internal/domain"
	"garminbridge/internal/ports"

	"github.com/pkg/errors"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const SessionsCollection = "sessions"

type SessionRepository struct {
	collection *mongo.Collection
}

func NewSessionRepository(db *MongoDB) ports.SessionRepository {
	return &SessionRepository{
		collection: db.Database.Collection(SessionsCollection),
	}
}

func (r *SessionRepository) Get(ctx context.Context, userID string) (domain.Session, error) {
	var session domain.Session
	err := r.collection.FindOne(ctx, bson.M{"_id": userID}).Decode(&session)
	if err == mongo.ErrNoDocuments {
		return domain.Session{}, domain.ErrSessionNotFound
	}
	if err != nil {
		return domain.Session{}, errors.Wrap(err, "failed to find session")
	}

	// A stored record without a blob is indistinguishable from "not logged in".
	if session.Blob == "" {
		return domain.Session{}, domain.ErrSessionNotFound
	}

	return session, nil
}

// Upsert merges only the supplied fields into the stored document. last_sync
// is stamped with $currentDate so the timestamp comes from the store's clock,
// not ours.
func (r *SessionRepository) Upsert(ctx context.Context, userID string, update domain.SessionUpdate) error {
	doc := buildUpdateDocument(update)
	if len(doc) == 0 {
		return nil
	}

	opts := options.Update().SetUpsert(true)
	_, err := r.collection.UpdateOne(ctx, bson.M{"_id": userID}, doc, opts)
	if err != nil {
		return errors.Wrap(err, "failed to upsert session")
	}

	return nil
}

func buildUpdateDocument(update domain.SessionUpdate) bson.M {
	set := bson.M{}
	if update.Blob != nil {
		set["session_blob"] = *update.Blob
	}
	if update.DisplayName != nil {
		set["display_name"] = *update.DisplayName
	}

	doc := bson.M{}
	if len(set) > 0 {
		doc["$set"] = set
	}
	if update.TouchLastSync {
		doc["$currentDate"] = bson.M{"last_sync": true}
	}

	return doc
}
