package entity

import (
	"context"
	"fmt"

	"github.com/pacific-clothing/personnel-api/pkg/metrics"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// MongoRepository implements Repository against one Mongo collection.
// The driver translations worth getting right: ErrNoDocuments and zero
// Matched/Deleted counts become ErrNotFound, everything else stays a wrapped
// store error so the HTTP layer reports it as a 500 without leaking detail.
type MongoRepository struct {
	col *mongo.Collection
}

func NewMongoRepository(col *mongo.Collection) *MongoRepository {
	return &MongoRepository{col: col}
}

func (r *MongoRepository) List(ctx context.Context) ([]Document, error) {
	metrics.StoreOps.WithLabelValues(r.col.Name(), "find").Inc()
	cur, err := r.col.Find(ctx, bson.M{})
	if err != nil {
		return nil, fmt.Errorf("list %s: %w", r.col.Name(), err)
	}
	defer cur.Close(ctx)
	out := []Document{}
	for cur.Next(ctx) {
		var d Document
		if err := cur.Decode(&d); err != nil {
			return nil, fmt.Errorf("decode %s: %w", r.col.Name(), err)
		}
		out = append(out, d)
	}
	if err := cur.Err(); err != nil {
		return nil, fmt.Errorf("list %s: %w", r.col.Name(), err)
	}
	return out, nil
}

func (r *MongoRepository) Get(ctx context.Context, id primitive.ObjectID) (Document, error) {
	metrics.StoreOps.WithLabelValues(r.col.Name(), "find_one").Inc()
	var d Document
	if err := r.col.FindOne(ctx, bson.M{"_id": id}).Decode(&d); err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get %s: %w", r.col.Name(), err)
	}
	return d, nil
}

func (r *MongoRepository) Create(ctx context.Context, value bson.M) (primitive.ObjectID, error) {
	metrics.StoreOps.WithLabelValues(r.col.Name(), "insert").Inc()
	res, err := r.col.InsertOne(ctx, value)
	if err != nil {
		return primitive.NilObjectID, fmt.Errorf("create %s: %w", r.col.Name(), err)
	}
	id, ok := res.InsertedID.(primitive.ObjectID)
	if !ok {
		return primitive.NilObjectID, ErrWriteRejected
	}
	return id, nil
}

func (r *MongoRepository) Replace(ctx context.Context, id primitive.ObjectID, value bson.M) error {
	metrics.StoreOps.WithLabelValues(r.col.Name(), "replace").Inc()
	res, err := r.col.ReplaceOne(ctx, bson.M{"_id": id}, value)
	if err != nil {
		return fmt.Errorf("replace %s: %w", r.col.Name(), err)
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *MongoRepository) Merge(ctx context.Context, id primitive.ObjectID, partial bson.M) (UpdateOutcome, error) {
	// the server rejects an empty $set; a merge with nothing to write is
	// still success against an existing document
	if len(partial) == 0 {
		metrics.StoreOps.WithLabelValues(r.col.Name(), "find_one").Inc()
		err := r.col.FindOne(ctx, bson.M{"_id": id}, options.FindOne().SetProjection(bson.M{"_id": 1})).Err()
		if err == mongo.ErrNoDocuments {
			return OutcomeNoChange, ErrNotFound
		}
		if err != nil {
			return OutcomeNoChange, fmt.Errorf("merge %s: %w", r.col.Name(), err)
		}
		return OutcomeNoChange, nil
	}
	metrics.StoreOps.WithLabelValues(r.col.Name(), "update").Inc()
	res, err := r.col.UpdateByID(ctx, id, bson.M{"$set": partial})
	if err != nil {
		return OutcomeNoChange, fmt.Errorf("merge %s: %w", r.col.Name(), err)
	}
	if res.MatchedCount == 0 {
		return OutcomeNoChange, ErrNotFound
	}
	if res.ModifiedCount == 0 {
		return OutcomeNoChange, nil
	}
	return OutcomeMerged, nil
}

func (r *MongoRepository) Delete(ctx context.Context, id primitive.ObjectID) error {
	metrics.StoreOps.WithLabelValues(r.col.Name(), "delete").Inc()
	res, err := r.col.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return fmt.Errorf("delete %s: %w", r.col.Name(), err)
	}
	if res.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}
