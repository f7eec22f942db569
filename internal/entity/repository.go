package entity

import (
	"context"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Document is one stored instance of an entity: the store-assigned _id plus
// the schema field values.
type Document = bson.M

// UpdateOutcome distinguishes a merge that changed the document from an
// idempotent re-submission. Both are success from the caller's view.
type UpdateOutcome int

const (
	OutcomeMerged UpdateOutcome = iota
	OutcomeNoChange
)

// Repository performs the canonical operations for one entity collection.
// Absent identifiers yield ErrNotFound, never an empty success; store
// failures surface as wrapped errors distinct from domain outcomes.
type Repository interface {
	// List returns every document, materialized in full. Order is not
	// guaranteed.
	List(ctx context.Context) ([]Document, error)
	// Get returns the document for id, or ErrNotFound.
	Get(ctx context.Context, id primitive.ObjectID) (Document, error)
	// Create persists a new document and returns the store-assigned id.
	// An unacknowledged write fails with ErrWriteRejected.
	Create(ctx context.Context, value bson.M) (primitive.ObjectID, error)
	// Replace overwrites the whole document, or returns ErrNotFound.
	Replace(ctx context.Context, id primitive.ObjectID, value bson.M) error
	// Merge overwrites only the supplied fields, retaining the rest
	// verbatim. Reports OutcomeNoChange when nothing differed.
	Merge(ctx context.Context, id primitive.ObjectID, partial bson.M) (UpdateOutcome, error)
	// Delete removes the document, or returns ErrNotFound.
	Delete(ctx context.Context, id primitive.ObjectID) error
}
