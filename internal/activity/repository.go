package activity

import (
	"context"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Entry is a single audit record. Beyond id and timestamp the shape is
// freeform, so entries travel as plain maps.
type Entry = map[string]interface{}

// Repository reads the append-only activity log. Nothing in this service
// writes or deletes entries.
type Repository interface {
	ListRecent(ctx context.Context, limit int) ([]Entry, error)
}

// MongoRepository implements Repository on the activities collection.
type MongoRepository struct {
	col *mongo.Collection
}

func NewMongoRepository(col *mongo.Collection) *MongoRepository {
	return &MongoRepository{col: col}
}

func (r *MongoRepository) ListRecent(ctx context.Context, limit int) ([]Entry, error) {
	opts := options.Find().
		SetSort(bson.D{{Key: "timestamp", Value: -1}}).
		SetLimit(int64(limit))
	cur, err := r.col.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)
	out := []Entry{}
	for cur.Next(ctx) {
		var e bson.M
		if err := cur.Decode(&e); err != nil {
			return nil, err
		}
		if id, ok := e["_id"]; ok {
			delete(e, "_id")
			e["id"] = idString(id)
		}
		out = append(out, Entry(e))
	}
	return out, cur.Err()
}
