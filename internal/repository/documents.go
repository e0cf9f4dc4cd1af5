package repository

import (
	"aptitude_backend/internal/util"
	"aptitude_backend/pkg/tracing"
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Store hands out collections over the shared connection. *database.MongoManager
// satisfies it.
type Store interface {
	Collection(ctx context.Context, name string) (*mongo.Collection, error)
	OperationContext(ctx context.Context) (context.Context, context.CancelFunc)
}

// newestFirst orders listings by creation time, newest first; _id breaks ties.
var newestFirst = bson.D{{Key: "createdAt", Value: -1}, {Key: "_id", Value: -1}}

// documents implements CRUD for one collection of T.
type documents[T any] struct {
	store Store
	name  string
}

func (d documents[T]) begin(ctx context.Context, op string) (context.Context, *mongo.Collection, func(error), error) {
	ctx, span := tracing.StartDBSpan(ctx, d.name, op)
	coll, err := d.store.Collection(ctx, d.name)
	if err != nil {
		tracing.EndSpan(span, err)
		return nil, nil, nil, err
	}
	ctx, cancel := d.store.OperationContext(ctx)
	return ctx, coll, func(err error) {
		cancel()
		tracing.EndSpan(span, err)
	}, nil
}

func (d documents[T]) insert(ctx context.Context, doc *T) (err error) {
	ctx, coll, end, err := d.begin(ctx, "insert")
	if err != nil {
		return err
	}
	defer func() { end(err) }()

	_, err = coll.InsertOne(ctx, doc)
	return translateError(err)
}

func (d documents[T]) find(ctx context.Context, filter bson.M) (out []T, err error) {
	ctx, coll, end, err := d.begin(ctx, "find")
	if err != nil {
		return nil, err
	}
	defer func() { end(err) }()

	cursor, err := coll.Find(ctx, filter, options.Find().SetSort(newestFirst))
	if err != nil {
		return nil, translateError(err)
	}
	out = make([]T, 0)
	if err = cursor.All(ctx, &out); err != nil {
		return nil, translateError(err)
	}
	return out, nil
}

func (d documents[T]) findByID(ctx context.Context, id primitive.ObjectID) (_ *T, err error) {
	ctx, coll, end, err := d.begin(ctx, "findOne")
	if err != nil {
		return nil, err
	}
	defer func() { end(err) }()

	var doc T
	if err = coll.FindOne(ctx, bson.M{"_id": id}).Decode(&doc); err != nil {
		return nil, translateError(err)
	}
	return &doc, nil
}

func (d documents[T]) update(ctx context.Context, id primitive.ObjectID, set bson.M) (_ *T, err error) {
	ctx, coll, end, err := d.begin(ctx, "findOneAndUpdate")
	if err != nil {
		return nil, err
	}
	defer func() { end(err) }()

	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	var doc T
	err = coll.FindOneAndUpdate(ctx, bson.M{"_id": id}, bson.M{"$set": set}, opts).Decode(&doc)
	if err != nil {
		return nil, translateError(err)
	}
	return &doc, nil
}

func (d documents[T]) delete(ctx context.Context, id primitive.ObjectID) (err error) {
	ctx, coll, end, err := d.begin(ctx, "delete")
	if err != nil {
		return err
	}
	defer func() { end(err) }()

	res, err := coll.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return translateError(err)
	}
	if res.DeletedCount == 0 {
		return fmt.Errorf("%w: %s", util.ErrNotFound, id.Hex())
	}
	return nil
}

// translateError maps driver errors onto the util taxonomy.
func translateError(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, util.ErrConnection):
		return err
	case errors.Is(err, mongo.ErrNoDocuments):
		return fmt.Errorf("%w: %v", util.ErrNotFound, err)
	case mongo.IsDuplicateKeyError(err):
		return fmt.Errorf("%w: %v", util.ErrDuplicate, err)
	case mongo.IsNetworkError(err), mongo.IsTimeout(err), errors.Is(err, context.DeadlineExceeded):
		return fmt.Errorf("%w: %v", util.ErrConnection, err)
	}
	return err
}
