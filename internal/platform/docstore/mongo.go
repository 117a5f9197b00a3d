package docstore

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/readpref"
)

// MongoCollection stores documents in a MongoDB collection. Documents must
// map their id to the "_id" bson field.
type MongoCollection[T Document[T]] struct {
	coll *mongo.Collection
}

// NewMongoCollection binds a collection of db.
func NewMongoCollection[T Document[T]](db *mongo.Database, name string) *MongoCollection[T] {
	return &MongoCollection[T]{coll: db.Collection(name)}
}

func (c *MongoCollection[T]) List(ctx context.Context) ([]T, error) {
	cursor, err := c.coll.Find(ctx, bson.D{})
	if err != nil {
		return nil, fmt.Errorf("docstore: list %s: %w", c.coll.Name(), err)
	}
	out := make([]T, 0)
	if err := cursor.All(ctx, &out); err != nil {
		return nil, fmt.Errorf("docstore: list %s: %w", c.coll.Name(), err)
	}
	return out, nil
}

func (c *MongoCollection[T]) Get(ctx context.Context, id string) (T, error) {
	return c.findOne(ctx, "get", bson.D{{Key: "_id", Value: id}})
}

func (c *MongoCollection[T]) FindOne(ctx context.Context, field, value string) (T, error) {
	if err := validField(field); err != nil {
		var zero T
		return zero, err
	}
	return c.findOne(ctx, "find", bson.D{{Key: field, Value: value}})
}

func (c *MongoCollection[T]) findOne(ctx context.Context, op string, filter bson.D) (T, error) {
	var doc T
	err := c.coll.FindOne(ctx, filter).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		var zero T
		return zero, ErrNotFound
	}
	if err != nil {
		var zero T
		return zero, fmt.Errorf("docstore: %s %s: %w", op, c.coll.Name(), err)
	}
	return doc, nil
}

func (c *MongoCollection[T]) Insert(ctx context.Context, doc T) (T, error) {
	if doc.DocID() == "" {
		doc = doc.WithDocID(bson.NewObjectID().Hex())
	}
	if _, err := c.coll.InsertOne(ctx, doc); err != nil {
		var zero T
		return zero, fmt.Errorf("docstore: insert %s: %w", c.coll.Name(), err)
	}
	return doc, nil
}

func (c *MongoCollection[T]) Replace(ctx context.Context, id string, doc T) error {
	res, err := c.coll.ReplaceOne(ctx, bson.D{{Key: "_id", Value: id}}, doc.WithDocID(id))
	if err != nil {
		return fmt.Errorf("docstore: replace %s: %w", c.coll.Name(), err)
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (c *MongoCollection[T]) Delete(ctx context.Context, id string) error {
	res, err := c.coll.DeleteOne(ctx, bson.D{{Key: "_id", Value: id}})
	if err != nil {
		return fmt.Errorf("docstore: delete %s: %w", c.coll.Name(), err)
	}
	if res.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (c *MongoCollection[T]) Ping(ctx context.Context) error {
	return c.coll.Database().Client().Ping(ctx, readpref.Primary())
}
