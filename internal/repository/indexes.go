package repository

import (
	"aptitude_backend/internal/model"
	"context"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// EnsureIndexes creates the lecture topic uniqueness index and the listing
// indexes. Creating an existing index is a no-op, so it runs on every connect.
func EnsureIndexes(ctx context.Context, db *mongo.Database) error {
	createdAt := mongo.IndexModel{Keys: bson.D{{Key: "createdAt", Value: -1}}}

	if _, err := db.Collection(model.Question{}.CollectionName()).Indexes().CreateMany(ctx, []mongo.IndexModel{
		createdAt,
		{Keys: bson.D{{Key: "topic", Value: 1}, {Key: "company", Value: 1}}},
	}); err != nil {
		return err
	}

	_, err := db.Collection(model.Lecture{}.CollectionName()).Indexes().CreateMany(ctx, []mongo.IndexModel{
		createdAt,
		{
			Keys:    bson.D{{Key: "topic", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
	})
	return err
}
