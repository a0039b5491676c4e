package docstore

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// MongoBackend stores each collection in a MongoDB collection keyed by _id.
// Ingestion timestamps come from the server clock.
type MongoBackend struct {
	client *mongo.Client
	db     *mongo.Database
}

// OpenMongo connects to uri and verifies the server is reachable.
func OpenMongo(ctx context.Context, uri, database string) (*MongoBackend, error) {
	if uri == "" {
		return nil, errors.New("mongo URI is empty")
	}
	if database == "" {
		return nil, errors.New("mongo database is empty")
	}
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("connecting to mongo: %w", err)
	}
	pingCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx, nil); err != nil {
		client.Disconnect(context.Background())
		return nil, fmt.Errorf("pinging mongo: %w", err)
	}
	return &MongoBackend{client: client, db: client.Database(database)}, nil
}

// Close disconnects the client.
func (b *MongoBackend) Close() error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return b.client.Disconnect(ctx)
}

// Drop removes a whole collection.
func (b *MongoBackend) Drop(ctx context.Context, collection string) error {
	return b.db.Collection(collection).Drop(ctx)
}

func (b *MongoBackend) Exists(ctx context.Context, collection, key string) (bool, error) {
	n, err := b.db.Collection(collection).CountDocuments(ctx,
		bson.M{"_id": key}, options.Count().SetLimit(1))
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

func (b *MongoBackend) Get(ctx context.Context, collection, key string) (Document, error) {
	var raw bson.M
	err := b.db.Collection(collection).FindOne(ctx, bson.M{"_id": key}).Decode(&raw)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	delete(raw, "_id")
	doc := make(Document, len(raw))
	for k, v := range raw {
		doc[k] = fromBSON(v)
	}
	return doc, nil
}

// Put replaces the document in one round trip. The update pipeline merges the
// literal document with the server's $$NOW so the timestamp is server-assigned.
func (b *MongoBackend) Put(ctx context.Context, collection, key string, doc Document) error {
	body := bson.M{}
	for k, v := range doc {
		body[k] = v
	}
	body["_id"] = key

	pipeline := mongo.Pipeline{
		{{Key: "$replaceWith", Value: bson.M{
			"$mergeObjects": bson.A{
				bson.M{"$literal": body},
				bson.M{FieldIngestedAt: "$$NOW"},
			},
		}}},
	}
	_, err := b.db.Collection(collection).UpdateOne(ctx,
		bson.M{"_id": key}, pipeline, options.Update().SetUpsert(true))
	return err
}

func (b *MongoBackend) Delete(ctx context.Context, collection, key string) (bool, error) {
	res, err := b.db.Collection(collection).DeleteOne(ctx, bson.M{"_id": key})
	if err != nil {
		return false, err
	}
	return res.DeletedCount > 0, nil
}

func (b *MongoBackend) UpdateField(ctx context.Context, collection, key, field string, value any) (bool, error) {
	res, err := b.db.Collection(collection).UpdateOne(ctx,
		bson.M{"_id": key}, bson.M{"$set": bson.M{field: value}})
	if err != nil {
		return false, err
	}
	return res.MatchedCount > 0, nil
}

// fromBSON converts driver value types to plain Go values.
func fromBSON(v any) any {
	switch x := v.(type) {
	case primitive.DateTime:
		return x.Time().UTC()
	case primitive.A:
		out := make([]any, len(x))
		for i, e := range x {
			out[i] = fromBSON(e)
		}
		return out
	case bson.M:
		out := make(map[string]any, len(x))
		for k, e := range x {
			out[k] = fromBSON(e)
		}
		return out
	case bson.D:
		out := make(map[string]any, len(x))
		for _, e := range x {
			out[e.Key] = fromBSON(e.Value)
		}
		return out
	default:
		return v
	}
}
